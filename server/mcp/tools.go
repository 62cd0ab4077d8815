package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/kasuganosora/knapsackga/pkg/catalog"
	"github.com/kasuganosora/knapsackga/pkg/history"
	"github.com/kasuganosora/knapsackga/pkg/logger"
	"github.com/kasuganosora/knapsackga/pkg/solver"
	"github.com/mark3labs/mcp-go/mcp"
)

const defaultListLimit = 10

// ToolDeps holds shared dependencies for MCP tool handlers
type ToolDeps struct {
	Service  *solver.Service
	Defaults solver.Params
	Logger   logger.Logger
}

// PackedItem is one packed item with its grid position.
type PackedItem struct {
	Index  int     `json:"index"`
	Row    int     `json:"row"`
	Column int     `json:"column"`
	Weight float64 `json:"weight"`
	Value  float64 `json:"value"`
}

// SolveResponse is the text payload of solve_knapsack.
type SolveResponse struct {
	RunID           string       `json:"run_id"`
	Fitness         float64      `json:"fitness"`
	Weight          float64      `json:"weight"`
	Feasible        bool         `json:"feasible"`
	Chromosome      string       `json:"chromosome"`
	FoundGeneration int          `json:"found_generation"`
	Generations     int          `json:"generations"`
	Seed            int64        `json:"seed,string"`
	Items           []PackedItem `json:"items"`
	DurationMillis  int64        `json:"duration_ms"`
}

// HandleSolve runs the optimizer on an item grid
func (d *ToolDeps) HandleSolve(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	items := request.GetString("items", "")
	if items == "" {
		return mcp.NewToolResultError("items parameter is required"), nil
	}
	capacity := request.GetFloat("capacity", math.NaN())
	if math.IsNaN(capacity) {
		return mcp.NewToolResultError("capacity parameter is required"), nil
	}

	inst, err := catalog.ParseGrid([]byte(items), request.GetInt("dimensions", 0))
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid items: %v", err)), nil
	}

	params := solver.Params{
		PopulationSize: request.GetInt("population_size", d.Defaults.PopulationSize),
		TournamentSize: request.GetInt("tournament_size", d.Defaults.TournamentSize),
		CrossoverRate:  request.GetFloat("crossover_rate", d.Defaults.CrossoverRate),
		MutationRate:   request.GetFloat("mutation_rate", d.Defaults.MutationRate),
		Generations:    request.GetInt("generations", d.Defaults.Generations),
		Seed:           d.Defaults.Seed,
	}
	if raw, ok := request.GetArguments()["seed"]; ok {
		seed, err := parseSeed(raw)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		params.Seed = seed
	}

	start := time.Now()
	result, err := d.Service.Solve(ctx, solver.Request{
		Instance: inst,
		Capacity: capacity,
		Params:   params,
	})
	if err != nil {
		d.log().Warn("[MCP] solve_knapsack failed after %s: %v", time.Since(start), err)
		return mcp.NewToolResultError(fmt.Sprintf("solve failed: %v", err)), nil
	}

	resp := SolveResponse{
		RunID:           result.RunID,
		Fitness:         result.Best.Fitness,
		Weight:          result.Best.Weight,
		Feasible:        result.Best.Feasible,
		Chromosome:      result.Best.Chromosome.String(),
		FoundGeneration: result.Best.Generation,
		Generations:     result.Generations,
		Seed:            result.Seed,
		Items:           make([]PackedItem, 0, len(result.Selection.Indices)),
		DurationMillis:  result.Duration.Milliseconds(),
	}
	for i, idx := range result.Selection.Indices {
		row, col := catalog.Position(idx, inst.Dimensions)
		item := result.Selection.Items[i]
		resp.Items = append(resp.Items, PackedItem{
			Index:  idx,
			Row:    row,
			Column: col,
			Weight: item.Weight,
			Value:  item.Value,
		})
	}

	return jsonResult(resp)
}

// HandleListRuns lists recorded runs
func (d *ToolDeps) HandleListRuns(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	limit := request.GetInt("limit", defaultListLimit)

	runs, err := d.Service.Runs(ctx, limit)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("list runs failed: %v", err)), nil
	}
	if runs == nil {
		runs = []*history.Record{}
	}
	return jsonResult(runs)
}

// HandleGetRun returns one recorded run
func (d *ToolDeps) HandleGetRun(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id := request.GetString("id", "")
	if id == "" {
		return mcp.NewToolResultError("id parameter is required"), nil
	}

	run, err := d.Service.Run(ctx, id)
	if errors.Is(err, history.ErrNotFound) {
		return mcp.NewToolResultError(fmt.Sprintf("run %s not found", id)), nil
	}
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("get run failed: %v", err)), nil
	}
	return jsonResult(run)
}

// maxExactSeed is the largest integer a JSON number carries without rounding.
const maxExactSeed = 1 << 53

// parseSeed accepts a decimal string for the full int64 range, or a JSON number
// when it is an integer that float64 represents exactly.
func parseSeed(raw interface{}) (int64, error) {
	switch v := raw.(type) {
	case string:
		seed, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
		if err != nil {
			return 0, fmt.Errorf("invalid seed %q: want a decimal integer", v)
		}
		return seed, nil
	case float64:
		if v != math.Trunc(v) || math.Abs(v) > maxExactSeed {
			return 0, fmt.Errorf("invalid seed %v: numbers must be integers within ±2^53, pass larger seeds as a string", v)
		}
		return int64(v), nil
	case int:
		return int64(v), nil
	case int64:
		return v, nil
	default:
		return 0, fmt.Errorf("invalid seed %v: want a decimal integer", raw)
	}
}

func (d *ToolDeps) log() logger.Logger {
	if d.Logger == nil {
		return logger.NewNoOpLogger()
	}
	return d.Logger
}

func jsonResult(v interface{}) (*mcp.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("encode result: %v", err)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}
