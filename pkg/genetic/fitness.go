package genetic

// Load sums the weight and value of the packed items.
func Load(c Chromosome, items []Item) (weight, value float64) {
	for i, gene := range c {
		if gene {
			weight += items[i].Weight
			value += items[i].Value
		}
	}
	return weight, value
}

// Fitness scores a chromosome: the packed value, or 0 when the packed weight
// exceeds capacity. The chromosome must be as long as items.
func Fitness(c Chromosome, items []Item, capacity float64) float64 {
	weight, value := Load(c, items)
	if weight > capacity {
		return 0
	}
	return value
}

// FitnessFunc scores a chromosome.
type FitnessFunc func(c Chromosome) float64

// KnapsackFitness binds Fitness to a catalog and capacity.
func KnapsackFitness(items []Item, capacity float64) FitnessFunc {
	return func(c Chromosome) float64 {
		return Fitness(c, items, capacity)
	}
}
