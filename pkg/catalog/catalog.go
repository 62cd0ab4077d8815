// Package catalog supplies the item list consumed by the genetic optimizer: it
// loads square item grids, flattens them row-major and maps decoded picks back
// to items.
package catalog

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/kasuganosora/knapsackga/pkg/genetic"
)

var (
	// ErrInvalidDimensions is returned for a non-positive grid side length.
	ErrInvalidDimensions = errors.New("catalog: dimensions must be positive")
	// ErrGridShape is returned when the grid is not dimensions x dimensions.
	ErrGridShape = errors.New("catalog: grid is not square with the given dimensions")
	// ErrPickOutOfRange is returned when a decoded index has no item.
	ErrPickOutOfRange = errors.New("catalog: pick index out of range")
)

// Grid is a square grid of items, indexed [row][column].
type Grid [][]genetic.Item

// Flatten lays the grid out row-major: item (i, j) lands at i*dimensions + j.
func Flatten(grid Grid, dimensions int) ([]genetic.Item, error) {
	if dimensions <= 0 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidDimensions, dimensions)
	}
	if len(grid) != dimensions {
		return nil, fmt.Errorf("%w: %d rows, dimensions %d", ErrGridShape, len(grid), dimensions)
	}

	items := make([]genetic.Item, 0, dimensions*dimensions)
	for i, row := range grid {
		if len(row) != dimensions {
			return nil, fmt.Errorf("%w: row %d has %d columns, dimensions %d", ErrGridShape, i, len(row), dimensions)
		}
		items = append(items, row...)
	}
	return items, nil
}

// Position converts a flat index back to its grid cell.
func Position(index, dimensions int) (row, col int) {
	return index / dimensions, index % dimensions
}

// Selection is the set of items packed by a decoded chromosome.
type Selection struct {
	Indices     []int          `json:"indices"`
	Items       []genetic.Item `json:"items"`
	TotalWeight float64        `json:"total_weight"`
	TotalValue  float64        `json:"total_value"`
}

// Select resolves decoded indices against the flat item list.
func Select(items []genetic.Item, picks []int) (*Selection, error) {
	sel := &Selection{
		Indices: make([]int, 0, len(picks)),
		Items:   make([]genetic.Item, 0, len(picks)),
	}
	for _, idx := range picks {
		if idx < 0 || idx >= len(items) {
			return nil, fmt.Errorf("%w: %d of %d items", ErrPickOutOfRange, idx, len(items))
		}
		item := items[idx]
		sel.Indices = append(sel.Indices, idx)
		sel.Items = append(sel.Items, item)
		sel.TotalWeight += item.Weight
		sel.TotalValue += item.Value
	}
	return sel, nil
}

// Cell is one grid entry on the wire. It accepts either {"weight":w,"value":v}
// or the pair form [w, v].
type Cell genetic.Item

// UnmarshalJSON implements json.Unmarshaler.
func (c *Cell) UnmarshalJSON(data []byte) error {
	var pair []float64
	if err := json.Unmarshal(data, &pair); err == nil {
		if len(pair) != 2 {
			return fmt.Errorf("catalog: item pair must have 2 numbers, got %d", len(pair))
		}
		c.Weight, c.Value = pair[0], pair[1]
		return nil
	}

	var item struct {
		Weight *float64 `json:"weight"`
		Value  *float64 `json:"value"`
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&item); err != nil {
		return fmt.Errorf("catalog: invalid item %s: %w", string(data), err)
	}
	if item.Weight == nil || item.Value == nil {
		return fmt.Errorf("catalog: item %s needs both weight and value", string(data))
	}
	c.Weight, c.Value = *item.Weight, *item.Value
	return nil
}

// Instance is a loaded item grid.
type Instance struct {
	Dimensions int
	Grid       Grid
}

// Items flattens the instance's grid.
func (inst *Instance) Items() ([]genetic.Item, error) {
	return Flatten(inst.Grid, inst.Dimensions)
}

// ParseGrid decodes a JSON grid of cells. dimensions of 0 means the row count.
func ParseGrid(data []byte, dimensions int) (*Instance, error) {
	var cells [][]Cell
	if err := json.Unmarshal(data, &cells); err != nil {
		return nil, fmt.Errorf("catalog: parse grid: %w", err)
	}
	return newInstance(cells, dimensions)
}

func newInstance(cells [][]Cell, dimensions int) (*Instance, error) {
	if dimensions == 0 {
		dimensions = len(cells)
	}
	grid := make(Grid, len(cells))
	for i, row := range cells {
		grid[i] = make([]genetic.Item, len(row))
		for j, cell := range row {
			grid[i][j] = genetic.Item(cell)
		}
	}

	inst := &Instance{Dimensions: dimensions, Grid: grid}
	if _, err := inst.Items(); err != nil {
		return nil, err
	}
	return inst, nil
}
