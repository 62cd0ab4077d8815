package genetic

import (
	"errors"
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// scenarioItems is a 2x2 grid flattened row-major; the optimum at capacity 5 is
// items 0 and 1 (weight 5, value 7).
var scenarioItems = []Item{
	{Weight: 2, Value: 3},
	{Weight: 3, Value: 4},
	{Weight: 4, Value: 5},
	{Weight: 5, Value: 6},
}

func scenarioConfig() GeneticAlgorithmConfig {
	return GeneticAlgorithmConfig{
		PopulationSize:   20,
		ChromosomeLength: 4,
		CrossoverRate:    0.5,
		MutationRate:     0.01,
		Capacity:         5,
		TournamentSize:   3,
		Dimensions:       2,
	}
}

func newScenario(t *testing.T, seed int64) *GeneticAlgorithm {
	t.Helper()
	ga, err := NewGeneticAlgorithm(scenarioConfig(), scenarioItems, WithSeed(seed))
	require.NoError(t, err)
	return ga
}

func TestGeneticAlgorithmConfig_Validate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(c *GeneticAlgorithmConfig)
		items  int
		want   error
	}{
		{"valid", func(c *GeneticAlgorithmConfig) {}, 4, nil},
		{"empty catalog", func(c *GeneticAlgorithmConfig) {}, 0, ErrEmptyCatalog},
		{"zero population", func(c *GeneticAlgorithmConfig) { c.PopulationSize = 0 }, 4, ErrInvalidPopulationSize},
		{"negative population", func(c *GeneticAlgorithmConfig) { c.PopulationSize = -2 }, 4, ErrInvalidPopulationSize},
		{"odd population", func(c *GeneticAlgorithmConfig) { c.PopulationSize = 21 }, 4, ErrOddPopulationSize},
		{"tournament too large", func(c *GeneticAlgorithmConfig) { c.TournamentSize = 21 }, 4, ErrInvalidTournamentSize},
		{"tournament zero", func(c *GeneticAlgorithmConfig) { c.TournamentSize = 0 }, 4, ErrInvalidTournamentSize},
		{"tournament equals population", func(c *GeneticAlgorithmConfig) { c.TournamentSize = 20 }, 4, nil},
		{"length mismatch", func(c *GeneticAlgorithmConfig) {}, 9, ErrChromosomeLengthMismatch},
		{"dimensions mismatch", func(c *GeneticAlgorithmConfig) { c.Dimensions = 3 }, 4, ErrDimensionsMismatch},
		{"crossover rate above one", func(c *GeneticAlgorithmConfig) { c.CrossoverRate = 1.5 }, 4, ErrInvalidRate},
		{"mutation rate negative", func(c *GeneticAlgorithmConfig) { c.MutationRate = -0.1 }, 4, ErrInvalidRate},
		{"mutation rate NaN", func(c *GeneticAlgorithmConfig) { c.MutationRate = math.NaN() }, 4, ErrInvalidRate},
		{"negative capacity", func(c *GeneticAlgorithmConfig) { c.Capacity = -1 }, 4, ErrInvalidCapacity},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := scenarioConfig()
			tt.modify(&cfg)
			err := cfg.Validate(tt.items)
			if tt.want == nil {
				assert.NoError(t, err)
				return
			}
			assert.True(t, errors.Is(err, tt.want), "got %v, want %v", err, tt.want)
		})
	}
}

func TestNewGeneticAlgorithm_FailsFast(t *testing.T) {
	cfg := scenarioConfig()
	cfg.TournamentSize = 50

	ga, err := NewGeneticAlgorithm(cfg, scenarioItems)
	assert.Nil(t, ga)
	assert.ErrorIs(t, err, ErrInvalidTournamentSize)

	_, err = NewGeneticAlgorithm(scenarioConfig(), nil)
	assert.ErrorIs(t, err, ErrEmptyCatalog)
}

func TestNewGeneticAlgorithm_InitialPopulation(t *testing.T) {
	ga := newScenario(t, 1)

	pop := ga.Population()
	assert.Equal(t, 20, pop.Size())
	for i, c := range pop.Chromosomes {
		assert.Equal(t, 4, c.Len(), "chromosome %d", i)
	}
	assert.Equal(t, 0, ga.Generation())
	assert.Empty(t, ga.History())
}

func TestNewGeneticAlgorithm_CopiesCatalog(t *testing.T) {
	items := append([]Item(nil), scenarioItems...)
	ga, err := NewGeneticAlgorithm(scenarioConfig(), items, WithSeed(1))
	require.NoError(t, err)

	items[0].Value = 1000
	assert.Equal(t, scenarioItems, ga.Items())

	got := ga.Items()
	got[1].Weight = 0
	assert.Equal(t, scenarioItems, ga.Items())
}

func TestBest_NoneBeforeFirstGeneration(t *testing.T) {
	ga := newScenario(t, 1)

	best, ok := ga.Best()
	assert.False(t, ok)
	assert.True(t, math.IsInf(best.Fitness, -1))
	assert.Nil(t, ga.Decode())
}

func TestAdvance_KeepsPopulationSize(t *testing.T) {
	ga := newScenario(t, 7)

	for g := 1; g <= 30; g++ {
		ga.Advance()
		pop := ga.Population()
		require.Equal(t, 20, pop.Size(), "generation %d", g)
		for _, c := range pop.Chromosomes {
			require.Equal(t, 4, c.Len())
		}
		assert.Equal(t, g, ga.Generation())
	}
	assert.Len(t, ga.History(), 30)
}

func TestAdvance_BestIsMonotonic(t *testing.T) {
	ga := newScenario(t, 3)

	prev := math.Inf(-1)
	for g := 0; g < 40; g++ {
		ga.Advance()
		best, ok := ga.Best()
		require.True(t, ok)
		assert.GreaterOrEqual(t, best.Fitness, prev, "generation %d", g+1)
		prev = best.Fitness
	}
}

func TestAdvance_BestIsSnapshot(t *testing.T) {
	ga := newScenario(t, 11)
	ga.Advance()

	for _, c := range ga.population.Chromosomes {
		assert.NotSame(t, &c[0], &ga.best.Chromosome[0])
	}

	best, ok := ga.Best()
	require.True(t, ok)
	best.Chromosome[0] = !best.Chromosome[0]

	again, _ := ga.Best()
	assert.NotEqual(t, best.Chromosome, again.Chromosome)
	assert.Equal(t, Fitness(again.Chromosome, scenarioItems, 5), again.Fitness)
}

func TestAdvance_BestMatchesHistory(t *testing.T) {
	ga := newScenario(t, 5)
	for i := 0; i < 25; i++ {
		ga.Advance()
	}

	maxSeen := math.Inf(-1)
	for _, s := range ga.History() {
		maxSeen = math.Max(maxSeen, s.BestFitness)
		assert.LessOrEqual(t, s.AverageFitness, s.BestFitness)
		assert.LessOrEqual(t, s.FeasibleCount, 20)
	}

	best, _ := ga.Best()
	assert.Equal(t, maxSeen, best.Fitness)
	assert.Equal(t, ga.History()[best.Generation-1].BestFitness, best.Fitness)
}

func TestAdvance_TiesKeepEarliestBest(t *testing.T) {
	ga := newScenario(t, 2)
	for i := 0; i < 50; i++ {
		ga.Advance()
	}

	best, _ := ga.Best()
	for _, s := range ga.History()[:best.Generation-1] {
		assert.Less(t, s.BestFitness, best.Fitness)
	}
}

func TestAdvance_SameSeedSameRun(t *testing.T) {
	a := newScenario(t, 99)
	b := newScenario(t, 99)
	for i := 0; i < 20; i++ {
		a.Advance()
		b.Advance()
	}

	assert.Equal(t, a.Population(), b.Population())
	assert.Equal(t, a.History(), b.History())
	bestA, _ := a.Best()
	bestB, _ := b.Best()
	assert.Equal(t, bestA, bestB)
}

func TestAdvance_InfeasibleRun(t *testing.T) {
	items := []Item{{Weight: 10, Value: 1}, {Weight: 10, Value: 2}, {Weight: 10, Value: 3}, {Weight: 10, Value: 4}}
	cfg := scenarioConfig()
	cfg.Capacity = 1
	cfg.MutationRate = 0

	ga, err := NewGeneticAlgorithm(cfg, items, WithSeed(4))
	require.NoError(t, err)
	ga.Advance()

	best, ok := ga.Best()
	require.True(t, ok)
	assert.Equal(t, 0.0, best.Fitness)
	assert.Equal(t, best.Weight <= 1, best.Feasible)
}

func TestInitialize_KeepsBest(t *testing.T) {
	ga := newScenario(t, 8)
	ga.Advance()
	before, _ := ga.Best()

	ga.Initialize()
	after, ok := ga.Best()
	assert.True(t, ok)
	assert.Equal(t, before, after)
	assert.Equal(t, 20, ga.Population().Size())
}

// The grid [[(2,3),(3,4)],[(4,5),(5,6)]] at capacity 5 has optimum 7. With the
// small scenario parameters a single run finds it in roughly four runs out of
// five, so the check is made across many seeds.
func TestRun_KnapsackScenario(t *testing.T) {
	const seeds = 40
	optimal := 0
	for seed := int64(1); seed <= seeds; seed++ {
		ga := newScenario(t, seed)
		for g := 0; g < 50; g++ {
			ga.Advance()
		}

		best, ok := ga.Best()
		require.True(t, ok, "seed %d", seed)
		require.LessOrEqual(t, best.Fitness, 7.0, "seed %d", seed)
		assert.True(t, best.Feasible, "seed %d", seed)
		if best.Fitness == 7 {
			optimal++
			assert.Equal(t, []int{0, 1}, ga.Decode(), "seed %d", seed)
			assert.Equal(t, 5.0, best.Weight, "seed %d", seed)
		}
	}
	assert.GreaterOrEqual(t, optimal, seeds/2)
}

func TestRun_KnapsackScenarioLargePopulation(t *testing.T) {
	cfg := scenarioConfig()
	cfg.PopulationSize = 100

	for _, seed := range []int64{1, 42} {
		ga, err := NewGeneticAlgorithm(cfg, scenarioItems, WithSeed(seed))
		require.NoError(t, err)
		for g := 0; g < 100; g++ {
			ga.Advance()
		}

		best, _ := ga.Best()
		assert.Equal(t, 7.0, best.Fitness, "seed %d", seed)
		assert.Equal(t, []int{0, 1}, ga.Decode(), "seed %d", seed)
	}
}

func TestWithRand_SharedSource(t *testing.T) {
	rng := rand.New(rand.NewSource(5))
	ga, err := NewGeneticAlgorithm(scenarioConfig(), scenarioItems, WithRand(rng))
	require.NoError(t, err)
	assert.Same(t, rng, ga.rng)
	assert.Equal(t, 0.5, ga.crossoverGateRate())
	assert.Equal(t, ga.crossoverGateRate(), ga.crossoverMixRate())
}
