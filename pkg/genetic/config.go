package genetic

import (
	"errors"
	"fmt"
	"math"
)

var (
	// ErrEmptyCatalog is returned when the item catalog has no items.
	ErrEmptyCatalog = errors.New("genetic: item catalog is empty")
	// ErrInvalidPopulationSize is returned when the population size is not positive.
	ErrInvalidPopulationSize = errors.New("genetic: population size must be positive")
	// ErrOddPopulationSize is returned when the population size is odd. Children are
	// produced in pairs, so an odd size would overflow the population by one.
	ErrOddPopulationSize = errors.New("genetic: population size must be even")
	// ErrInvalidTournamentSize is returned when the tournament size is outside [1, PopulationSize].
	ErrInvalidTournamentSize = errors.New("genetic: tournament size out of range")
	// ErrChromosomeLengthMismatch is returned when the chromosome length differs from the item count.
	ErrChromosomeLengthMismatch = errors.New("genetic: chromosome length does not match item count")
	// ErrDimensionsMismatch is returned when the chromosome length is not dimensions squared.
	ErrDimensionsMismatch = errors.New("genetic: chromosome length does not match grid dimensions")
	// ErrInvalidRate is returned when a crossover or mutation rate is outside [0, 1].
	ErrInvalidRate = errors.New("genetic: rate must be a probability in [0, 1]")
	// ErrInvalidCapacity is returned when the knapsack capacity is negative or NaN.
	ErrInvalidCapacity = errors.New("genetic: knapsack capacity must be a non-negative number")
)

// GeneticAlgorithmConfig holds the fixed parameters of one optimization run.
// Every field is required; there are no defaults at this level.
type GeneticAlgorithmConfig struct {
	PopulationSize   int
	ChromosomeLength int
	// CrossoverRate is read at two sites: as the probability that a parent pair
	// recombines at all, and as the per-gene probability that a recombining pair
	// passes its genes on in original order.
	CrossoverRate  float64
	MutationRate   float64
	Capacity       float64
	TournamentSize int
	Dimensions     int
}

// Validate checks the configuration against a catalog of itemCount items.
func (c *GeneticAlgorithmConfig) Validate(itemCount int) error {
	if itemCount == 0 {
		return ErrEmptyCatalog
	}
	if c.PopulationSize <= 0 {
		return fmt.Errorf("%w: got %d", ErrInvalidPopulationSize, c.PopulationSize)
	}
	if c.PopulationSize%2 != 0 {
		return fmt.Errorf("%w: got %d", ErrOddPopulationSize, c.PopulationSize)
	}
	if c.TournamentSize < 1 || c.TournamentSize > c.PopulationSize {
		return fmt.Errorf("%w: got %d, population size %d", ErrInvalidTournamentSize, c.TournamentSize, c.PopulationSize)
	}
	if c.ChromosomeLength != itemCount {
		return fmt.Errorf("%w: length %d, %d items", ErrChromosomeLengthMismatch, c.ChromosomeLength, itemCount)
	}
	if c.Dimensions <= 0 || c.Dimensions*c.Dimensions != c.ChromosomeLength {
		return fmt.Errorf("%w: length %d, dimensions %d", ErrDimensionsMismatch, c.ChromosomeLength, c.Dimensions)
	}
	if !isProbability(c.CrossoverRate) {
		return fmt.Errorf("%w: crossover rate %v", ErrInvalidRate, c.CrossoverRate)
	}
	if !isProbability(c.MutationRate) {
		return fmt.Errorf("%w: mutation rate %v", ErrInvalidRate, c.MutationRate)
	}
	if math.IsNaN(c.Capacity) || c.Capacity < 0 {
		return fmt.Errorf("%w: got %v", ErrInvalidCapacity, c.Capacity)
	}
	return nil
}

func isProbability(p float64) bool {
	return !math.IsNaN(p) && p >= 0 && p <= 1
}
