package genetic

import (
	"math/rand"
	"time"

	"github.com/kasuganosora/knapsackga/pkg/logger"
)

// GeneticAlgorithm is a generational optimizer for one 0/1 knapsack instance.
// It is not safe for concurrent use; one caller drives one run.
type GeneticAlgorithm struct {
	config  GeneticAlgorithmConfig
	items   []Item
	fitness FitnessFunc

	selector  SelectionOperator
	crossover CrossoverOperator
	mutator   MutationOperator

	rng    *rand.Rand
	logger logger.Logger

	population *Population
	best       BestSolution
	generation int
	history    []GenerationStats
}

// Option customizes a GeneticAlgorithm.
type Option func(*GeneticAlgorithm)

// WithRand sets the random source shared by every operator.
func WithRand(rng *rand.Rand) Option {
	return func(ga *GeneticAlgorithm) {
		ga.rng = rng
	}
}

// WithSeed seeds a fresh random source, for reproducible runs.
func WithSeed(seed int64) Option {
	return WithRand(rand.New(rand.NewSource(seed)))
}

// WithLogger sets the logger used for per-generation progress.
func WithLogger(l logger.Logger) Option {
	return func(ga *GeneticAlgorithm) {
		ga.logger = l
	}
}

// NewGeneticAlgorithm validates config against items and builds the initial
// random population. items must already be flattened to ChromosomeLength entries.
func NewGeneticAlgorithm(config GeneticAlgorithmConfig, items []Item, opts ...Option) (*GeneticAlgorithm, error) {
	if err := config.Validate(len(items)); err != nil {
		return nil, err
	}

	catalog := make([]Item, len(items))
	copy(catalog, items)

	ga := &GeneticAlgorithm{
		config:  config,
		items:   catalog,
		fitness: KnapsackFitness(catalog, config.Capacity),
		logger:  logger.NewNoOpLogger(),
		best:    emptyBest(),
	}
	for _, opt := range opts {
		opt(ga)
	}
	if ga.rng == nil {
		ga.rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}

	ga.selector = NewTournamentSelector(config.PopulationSize, config.TournamentSize, ga.rng)
	ga.crossover = NewUniformCrossover(ga.crossoverMixRate(), ga.rng)
	ga.mutator = NewBitFlipMutation(config.MutationRate, ga.rng)

	ga.initializePopulation()
	return ga, nil
}

// crossoverGateRate is the probability that a parent pair recombines at all.
func (ga *GeneticAlgorithm) crossoverGateRate() float64 {
	return ga.config.CrossoverRate
}

// crossoverMixRate is the per-gene probability that a recombining pair keeps
// its genes in original order. Same configured value as crossoverGateRate.
func (ga *GeneticAlgorithm) crossoverMixRate() float64 {
	return ga.config.CrossoverRate
}

// initializePopulation replaces the population with random chromosomes, each
// gene set with probability one half.
func (ga *GeneticAlgorithm) initializePopulation() {
	pop := &Population{
		Chromosomes: make([]Chromosome, 0, ga.config.PopulationSize),
	}
	for i := 0; i < ga.config.PopulationSize; i++ {
		c := make(Chromosome, ga.config.ChromosomeLength)
		for j := range c {
			c[j] = ga.rng.Intn(2) == 1
		}
		pop.Chromosomes = append(pop.Chromosomes, c)
	}
	ga.population = pop
}

// Initialize discards the current population and builds a new random one. The
// best solution and generation counter are kept.
func (ga *GeneticAlgorithm) Initialize() {
	ga.initializePopulation()
}

// Advance produces the next generation: tournament selection into a mating
// pool, random pairing with replacement, gated uniform crossover, bit-flip
// mutation of every child, best-solution update, then wholesale replacement.
func (ga *GeneticAlgorithm) Advance() {
	pool := ga.selector.Select(ga.population, ga.fitness)

	next := &Population{
		Chromosomes: make([]Chromosome, 0, ga.config.PopulationSize),
	}
	for next.Size() < ga.config.PopulationSize {
		parent1 := pool[ga.rng.Intn(len(pool))]
		parent2 := pool[ga.rng.Intn(len(pool))]

		var child1, child2 Chromosome
		if ga.rng.Float64() < ga.crossoverGateRate() {
			child1, child2 = ga.crossover.Crossover(parent1, parent2)
		} else {
			child1, child2 = parent1.Clone(), parent2.Clone()
		}

		child1 = ga.mutator.Mutate(child1)
		child2 = ga.mutator.Mutate(child2)
		next.Chromosomes = append(next.Chromosomes, child1, child2)
	}

	ga.generation++
	ga.record(next)
	ga.population = next
}

// record updates the best solution and appends the generation's statistics.
func (ga *GeneticAlgorithm) record(pop *Population) {
	stats := GenerationStats{Generation: ga.generation}

	total := 0.0
	bestIndex, bestFitness := -1, ga.best.Fitness
	for i, c := range pop.Chromosomes {
		weight, _ := Load(c, ga.items)
		if weight <= ga.config.Capacity {
			stats.FeasibleCount++
		}

		f := ga.fitness(c)
		total += f
		if i == 0 || f > stats.BestFitness {
			stats.BestFitness = f
		}
		// ties keep the earlier best
		if f > bestFitness {
			bestIndex, bestFitness = i, f
		}
	}
	stats.AverageFitness = total / float64(pop.Size())

	if bestIndex >= 0 {
		winner := pop.Chromosomes[bestIndex]
		weight, _ := Load(winner, ga.items)
		ga.best = BestSolution{
			Chromosome: winner.Clone(),
			Fitness:    bestFitness,
			Weight:     weight,
			Feasible:   weight <= ga.config.Capacity,
			Generation: ga.generation,
		}
		ga.logger.Debug("[GeneticAlgorithm] Generation %d, new best fitness: %.4f (%s)",
			ga.generation, ga.best.Fitness, ga.best.Chromosome)
	}

	ga.history = append(ga.history, stats)
	ga.logger.Debug("[GeneticAlgorithm] Generation %d, best: %.4f, average: %.4f, feasible: %d/%d",
		stats.Generation, stats.BestFitness, stats.AverageFitness, stats.FeasibleCount, pop.Size())
}

// Best returns a copy of the best solution seen in any generation produced by
// Advance. ok is false until the first Advance.
func (ga *GeneticAlgorithm) Best() (best BestSolution, ok bool) {
	if ga.best.Chromosome == nil {
		return ga.best, false
	}
	best = ga.best
	best.Chromosome = ga.best.Chromosome.Clone()
	return best, true
}

// Decode returns the indices of the items packed by the best solution, or nil
// when no generation has been produced yet.
func (ga *GeneticAlgorithm) Decode() []int {
	if ga.best.Chromosome == nil {
		return nil
	}
	return ga.best.Chromosome.SelectedIndices()
}

// Items returns a copy of the item catalog.
func (ga *GeneticAlgorithm) Items() []Item {
	items := make([]Item, len(ga.items))
	copy(items, ga.items)
	return items
}

// Population returns a deep copy of the current population.
func (ga *GeneticAlgorithm) Population() *Population {
	return ga.population.Clone()
}

// Generation returns the number of completed Advance calls.
func (ga *GeneticAlgorithm) Generation() int {
	return ga.generation
}

// History returns the statistics of every generation produced so far.
func (ga *GeneticAlgorithm) History() []GenerationStats {
	history := make([]GenerationStats, len(ga.history))
	copy(history, ga.history)
	return history
}

// Config returns the run configuration.
func (ga *GeneticAlgorithm) Config() GeneticAlgorithmConfig {
	return ga.config
}
