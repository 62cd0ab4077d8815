package main

import (
	"io"

	"github.com/kasuganosora/knapsackga/pkg/catalog"
	"github.com/kasuganosora/knapsackga/pkg/solver"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// writeReport prints the run summary and the packed items with their grid cells.
func writeReport(w io.Writer, inst *catalog.Instance, capacity float64, result *solver.Result) {
	p := message.NewPrinter(language.English)

	p.Fprintf(w, "Run:          %s\n", result.RunID)
	p.Fprintf(w, "Grid:         %d x %d (%d items)\n", inst.Dimensions, inst.Dimensions, inst.Dimensions*inst.Dimensions)
	p.Fprintf(w, "Capacity:     %v\n", capacity)
	p.Fprintf(w, "Generations:  %d (seed %d)\n", result.Generations, result.Seed)
	p.Fprintf(w, "Duration:     %v\n", result.Duration)

	if !result.Best.Feasible {
		p.Fprintf(w, "No feasible packing found; every candidate exceeded the capacity.\n")
		return
	}

	p.Fprintf(w, "Best value:   %v (weight %v, found in generation %d)\n",
		result.Best.Fitness, result.Best.Weight, result.Best.Generation)
	p.Fprintf(w, "Chromosome:   %s\n", result.Best.Chromosome.String())
	p.Fprintf(w, "Packed items: %d\n", len(result.Selection.Indices))
	for i, idx := range result.Selection.Indices {
		row, col := catalog.Position(idx, inst.Dimensions)
		item := result.Selection.Items[i]
		p.Fprintf(w, "  #%d (%d, %d)  weight %v  value %v\n", idx, row, col, item.Weight, item.Value)
	}
}
