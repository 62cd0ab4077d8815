package genetic

import (
	"math/rand"
)

// SelectionOperator builds a mating pool from a population.
type SelectionOperator interface {
	Select(pop *Population, fitness FitnessFunc) []Chromosome
}

// CrossoverOperator recombines two parents into two children.
type CrossoverOperator interface {
	Crossover(parent1, parent2 Chromosome) (Chromosome, Chromosome)
}

// MutationOperator perturbs a chromosome.
type MutationOperator interface {
	Mutate(c Chromosome) Chromosome
}

// TournamentSelector fills a mating pool of poolSize winners, each the fittest of
// tournamentSize contestants drawn without replacement.
type TournamentSelector struct {
	poolSize       int
	tournamentSize int
	rng            *rand.Rand
	indices        []int
}

// NewTournamentSelector creates a tournament selector. tournamentSize must not
// exceed the size of the populations it is given.
func NewTournamentSelector(poolSize, tournamentSize int, rng *rand.Rand) *TournamentSelector {
	return &TournamentSelector{
		poolSize:       poolSize,
		tournamentSize: tournamentSize,
		rng:            rng,
	}
}

// Select runs poolSize independent tournaments. The winners are the population's
// own chromosomes, not copies; variation operators never modify their inputs.
func (s *TournamentSelector) Select(pop *Population, fitness FitnessFunc) []Chromosome {
	pool := make([]Chromosome, 0, s.poolSize)
	for len(pool) < s.poolSize {
		pool = append(pool, s.tournament(pop.Chromosomes, fitness))
	}
	return pool
}

// tournament samples contestants with a partial Fisher-Yates shuffle over an index
// buffer and keeps the first contestant of maximum fitness.
func (s *TournamentSelector) tournament(chromosomes []Chromosome, fitness FitnessFunc) Chromosome {
	n := len(chromosomes)
	if cap(s.indices) < n {
		s.indices = make([]int, n)
	}
	s.indices = s.indices[:n]
	for i := range s.indices {
		s.indices[i] = i
	}

	var winner Chromosome
	bestFitness := 0.0
	for i := 0; i < s.tournamentSize; i++ {
		j := i + s.rng.Intn(n-i)
		s.indices[i], s.indices[j] = s.indices[j], s.indices[i]

		contestant := chromosomes[s.indices[i]]
		f := fitness(contestant)
		if i == 0 || f > bestFitness {
			winner = contestant
			bestFitness = f
		}
	}
	return winner
}

// UniformCrossover decides every gene independently: with probability mixRate
// child1 takes parent1's gene and child2 takes parent2's, otherwise they swap.
type UniformCrossover struct {
	mixRate float64
	rng     *rand.Rand
}

// NewUniformCrossover creates a uniform crossover operator.
func NewUniformCrossover(mixRate float64, rng *rand.Rand) *UniformCrossover {
	return &UniformCrossover{
		mixRate: mixRate,
		rng:     rng,
	}
}

// Crossover returns two fresh children; the parents are left untouched.
func (c *UniformCrossover) Crossover(parent1, parent2 Chromosome) (Chromosome, Chromosome) {
	child1 := make(Chromosome, len(parent1))
	child2 := make(Chromosome, len(parent2))
	for i := range parent1 {
		if c.rng.Float64() < c.mixRate {
			child1[i], child2[i] = parent1[i], parent2[i]
		} else {
			child1[i], child2[i] = parent2[i], parent1[i]
		}
	}
	return child1, child2
}

// BitFlipMutation flips every gene independently with probability mutationRate.
type BitFlipMutation struct {
	mutationRate float64
	rng          *rand.Rand
}

// NewBitFlipMutation creates a bit-flip mutation operator.
func NewBitFlipMutation(mutationRate float64, rng *rand.Rand) *BitFlipMutation {
	return &BitFlipMutation{
		mutationRate: mutationRate,
		rng:          rng,
	}
}

// Mutate flips genes of c in place and returns it.
func (m *BitFlipMutation) Mutate(c Chromosome) Chromosome {
	for i := range c {
		if m.rng.Float64() < m.mutationRate {
			c[i] = !c[i]
		}
	}
	return c
}
