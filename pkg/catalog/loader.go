package catalog

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"
)

const (
	FormatJSON  = "json"
	FormatExcel = "xlsx"
)

// jsonDocument is the on-disk JSON layout.
type jsonDocument struct {
	Dimensions int      `json:"dimensions"`
	Items      [][]Cell `json:"items"`
}

// Load reads an item grid from path. An empty format is inferred from the file
// extension; sheet is only used for workbooks.
func Load(path, format, sheet string) (*Instance, error) {
	if format == "" {
		format = formatFromExt(path)
	}
	switch strings.ToLower(format) {
	case FormatJSON:
		return LoadJSON(path)
	case FormatExcel, "excel":
		return LoadExcel(path, sheet)
	default:
		return nil, fmt.Errorf("catalog: unsupported item format %q", format)
	}
}

func formatFromExt(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".xlsm":
		return FormatExcel
	default:
		return FormatJSON
	}
}

// LoadJSON reads {"dimensions": d, "items": [[cell, ...], ...]}.
func LoadJSON(path string) (*Instance, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("catalog: read %s: %w", path, err)
	}

	var doc jsonDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("catalog: parse %s: %w", path, err)
	}
	return newInstance(doc.Items, doc.Dimensions)
}

// LoadExcel reads a grid from a worksheet. Each non-empty row is a grid row and
// each cell holds "weight,value". Cells must be contiguous from column A; a gap
// inside a row is an error. An empty sheet name selects the first sheet.
func LoadExcel(path, sheet string) (*Instance, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("catalog: open workbook %s: %w", path, err)
	}
	defer f.Close()

	if sheet == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return nil, fmt.Errorf("catalog: workbook %s has no sheets", path)
		}
		sheet = sheets[0]
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("catalog: read sheet %q: %w", sheet, err)
	}

	var cells [][]Cell
	for r, row := range rows {
		if isBlankRow(row) {
			continue
		}
		row = trimTrailingBlanks(row)
		parsed := make([]Cell, 0, len(row))
		for c, raw := range row {
			name, _ := excelize.CoordinatesToCellName(c+1, r+1)
			raw = strings.TrimSpace(raw)
			if raw == "" {
				return nil, fmt.Errorf("catalog: sheet %q cell %s: empty cell inside the grid", sheet, name)
			}
			cell, err := parseCellText(raw)
			if err != nil {
				return nil, fmt.Errorf("catalog: sheet %q cell %s: %w", sheet, name, err)
			}
			parsed = append(parsed, cell)
		}
		cells = append(cells, parsed)
	}
	return newInstance(cells, 0)
}

func isBlankRow(row []string) bool {
	for _, v := range row {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

// trimTrailingBlanks drops blank cells after the last filled one. Blanks
// before it keep their column and are reported by the caller.
func trimTrailingBlanks(row []string) []string {
	end := len(row)
	for end > 0 && strings.TrimSpace(row[end-1]) == "" {
		end--
	}
	return row[:end]
}

// parseCellText parses "weight,value" (a semicolon also separates).
func parseCellText(s string) (Cell, error) {
	parts := strings.FieldsFunc(s, func(r rune) bool { return r == ',' || r == ';' })
	if len(parts) != 2 {
		return Cell{}, fmt.Errorf("want \"weight,value\", got %q", s)
	}
	weight, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	if err != nil {
		return Cell{}, fmt.Errorf("weight: %w", err)
	}
	value, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil {
		return Cell{}, fmt.Errorf("value: %w", err)
	}
	return Cell{Weight: weight, Value: value}, nil
}
