package genetic

import "math"

// Item is a single knapsack item.
type Item struct {
	Weight float64 `json:"weight"`
	Value  float64 `json:"value"`
}

// Chromosome is a bit vector; gene i set means item i is packed.
type Chromosome []bool

// Len returns the number of genes.
func (c Chromosome) Len() int {
	return len(c)
}

// Clone returns an independent copy of the chromosome.
func (c Chromosome) Clone() Chromosome {
	cloned := make(Chromosome, len(c))
	copy(cloned, c)
	return cloned
}

// SelectedIndices returns the positions of the set genes in ascending order.
func (c Chromosome) SelectedIndices() []int {
	picks := make([]int, 0, len(c))
	for i, gene := range c {
		if gene {
			picks = append(picks, i)
		}
	}
	return picks
}

// String renders the chromosome as a bit string, gene 0 first.
func (c Chromosome) String() string {
	b := make([]byte, len(c))
	for i, gene := range c {
		if gene {
			b[i] = '1'
		} else {
			b[i] = '0'
		}
	}
	return string(b)
}

// Population is an ordered collection of chromosomes.
type Population struct {
	Chromosomes []Chromosome
}

// Size returns the number of chromosomes.
func (p *Population) Size() int {
	return len(p.Chromosomes)
}

// Clone deep-copies the population.
func (p *Population) Clone() *Population {
	cloned := &Population{Chromosomes: make([]Chromosome, len(p.Chromosomes))}
	for i, c := range p.Chromosomes {
		cloned.Chromosomes[i] = c.Clone()
	}
	return cloned
}

// BestSolution is a snapshot of the best chromosome seen so far. It never
// aliases a chromosome of the live population.
type BestSolution struct {
	Chromosome Chromosome `json:"chromosome"`
	Fitness    float64    `json:"fitness"`
	Weight     float64    `json:"weight"`
	// Feasible reports whether the packed weight fits the capacity. A run in which
	// every child was overweight still tracks a zero-fitness best.
	Feasible   bool `json:"feasible"`
	Generation int  `json:"generation"`
}

func emptyBest() BestSolution {
	return BestSolution{Fitness: math.Inf(-1)}
}

// GenerationStats summarizes one generation produced by Advance.
type GenerationStats struct {
	Generation     int     `json:"generation"`
	BestFitness    float64 `json:"best_fitness"`
	AverageFitness float64 `json:"average_fitness"`
	FeasibleCount  int     `json:"feasible_count"`
}
