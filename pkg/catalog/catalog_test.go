package catalog

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/kasuganosora/knapsackga/pkg/genetic"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

var squareGrid = Grid{
	{{Weight: 2, Value: 3}, {Weight: 3, Value: 4}},
	{{Weight: 4, Value: 5}, {Weight: 5, Value: 6}},
}

func TestFlatten_RowMajor(t *testing.T) {
	items, err := Flatten(squareGrid, 2)
	require.NoError(t, err)
	assert.Equal(t, []genetic.Item{
		{Weight: 2, Value: 3},
		{Weight: 3, Value: 4},
		{Weight: 4, Value: 5},
		{Weight: 5, Value: 6},
	}, items)

	for i := range items {
		row, col := Position(i, 2)
		assert.Equal(t, squareGrid[row][col], items[i])
	}
}

func TestFlatten_Errors(t *testing.T) {
	tests := []struct {
		name string
		grid Grid
		dims int
		want error
	}{
		{"zero dimensions", squareGrid, 0, ErrInvalidDimensions},
		{"too few rows", squareGrid[:1], 2, ErrGridShape},
		{"too many rows", squareGrid, 1, ErrGridShape},
		{"ragged", Grid{{{Weight: 1}}, {{Weight: 1}, {Weight: 2}}}, 2, ErrGridShape},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Flatten(tt.grid, tt.dims)
			assert.True(t, errors.Is(err, tt.want), "got %v", err)
		})
	}
}

func TestSelect(t *testing.T) {
	items, err := Flatten(squareGrid, 2)
	require.NoError(t, err)

	sel, err := Select(items, []int{0, 1})
	require.NoError(t, err)
	assert.Equal(t, []int{0, 1}, sel.Indices)
	assert.Equal(t, 5.0, sel.TotalWeight)
	assert.Equal(t, 7.0, sel.TotalValue)

	empty, err := Select(items, nil)
	require.NoError(t, err)
	assert.Empty(t, empty.Items)

	_, err = Select(items, []int{4})
	assert.ErrorIs(t, err, ErrPickOutOfRange)
}

func TestParseGrid_CellForms(t *testing.T) {
	inst, err := ParseGrid([]byte(`[[[2,3],{"weight":3,"value":4}],[[4,5],[5,6]]]`), 0)
	require.NoError(t, err)
	assert.Equal(t, 2, inst.Dimensions)
	assert.Equal(t, squareGrid, inst.Grid)

	_, err = ParseGrid([]byte(`[[[2,3,4]]]`), 0)
	assert.Error(t, err)

	_, err = ParseGrid([]byte(`[[[2,3]],[[4,5]]]`), 0)
	assert.ErrorIs(t, err, ErrGridShape)
}

func TestLoadJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "items.json")
	doc := `{"dimensions": 2, "items": [[[2,3],[3,4]],[[4,5],[5,6]]]}`
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o644))

	inst, err := Load(path, "", "")
	require.NoError(t, err)
	items, err := inst.Items()
	require.NoError(t, err)
	assert.Len(t, items, 4)
	assert.Equal(t, genetic.Item{Weight: 5, Value: 6}, items[3])

	_, err = LoadJSON(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}

func writeWorkbook(t *testing.T, rows [][]string) string {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	for r, row := range rows {
		for c, v := range row {
			cell, err := excelize.CoordinatesToCellName(c+1, r+1)
			require.NoError(t, err)
			require.NoError(t, f.SetCellValue("Sheet1", cell, v))
		}
	}
	path := filepath.Join(t.TempDir(), "items.xlsx")
	require.NoError(t, f.SaveAs(path))
	return path
}

func TestLoadExcel(t *testing.T) {
	path := writeWorkbook(t, [][]string{
		{"2,3", "3,4"},
		{"4;5", " 5 , 6 "},
	})

	inst, err := Load(path, "", "")
	require.NoError(t, err)
	assert.Equal(t, 2, inst.Dimensions)
	assert.Equal(t, squareGrid, inst.Grid)

	inst, err = LoadExcel(path, "Sheet1")
	require.NoError(t, err)
	assert.Equal(t, squareGrid, inst.Grid)
}

func TestLoadExcel_BadCell(t *testing.T) {
	path := writeWorkbook(t, [][]string{
		{"2,3", "heavy"},
		{"4,5", "5,6"},
	})

	_, err := LoadExcel(path, "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "B1")
}

func TestLoad_UnknownFormat(t *testing.T) {
	_, err := Load("items.csv", "csv", "")
	assert.Error(t, err)
}

func writeSparseWorkbook(t *testing.T, cells map[string]string) string {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	for cell, v := range cells {
		require.NoError(t, f.SetCellValue("Sheet1", cell, v))
	}
	path := filepath.Join(t.TempDir(), "sparse.xlsx")
	require.NoError(t, f.SaveAs(path))
	return path
}

func TestLoadExcel_GapInRow(t *testing.T) {
	path := writeSparseWorkbook(t, map[string]string{
		"A1": "2,3", "C1": "3,4",
		"A2": "4,5", "B2": "5,6",
	})

	_, err := LoadExcel(path, "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "B1")
	assert.Contains(t, err.Error(), "empty cell")
}

func TestLoadExcel_TrailingBlanksIgnored(t *testing.T) {
	path := writeSparseWorkbook(t, map[string]string{
		"A1": "2,3", "B1": "3,4", "C1": "  ",
		"A2": "4,5", "B2": "5,6",
	})

	inst, err := LoadExcel(path, "")
	require.NoError(t, err)
	assert.Equal(t, squareGrid, inst.Grid)
}

func TestParseGrid_ObjectCellNeedsKnownKeys(t *testing.T) {
	tests := []struct {
		name string
		cell string
	}{
		{"misspelled key", `{"wieght":2,"value":3}`},
		{"missing value", `{"weight":3}`},
		{"missing weight", `{"value":3}`},
		{"extra key", `{"weight":2,"value":3,"color":"red"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseGrid([]byte(`[[`+tt.cell+`]]`), 0)
			assert.Error(t, err)
		})
	}

	inst, err := ParseGrid([]byte(`[[{"weight":0,"value":0}]]`), 0)
	require.NoError(t, err)
	assert.Equal(t, Grid{{{Weight: 0, Value: 0}}}, inst.Grid)
}
