// Package solver runs the genetic optimizer for a loaded item grid and records
// finished runs.
package solver

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/kasuganosora/knapsackga/pkg/catalog"
	"github.com/kasuganosora/knapsackga/pkg/config"
	"github.com/kasuganosora/knapsackga/pkg/genetic"
	"github.com/kasuganosora/knapsackga/pkg/history"
	"github.com/kasuganosora/knapsackga/pkg/logger"
)

var (
	// ErrNoInstance is returned when a request carries no item grid.
	ErrNoInstance = errors.New("solver: request has no item grid")
	// ErrInvalidGenerations is returned when fewer than one generation is requested.
	ErrInvalidGenerations = errors.New("solver: generations must be positive")
	// ErrHistoryDisabled is returned by history queries when no store is configured.
	ErrHistoryDisabled = errors.New("solver: run history is disabled")
)

// Params are the tunable parameters of one run.
type Params struct {
	PopulationSize int     `json:"population_size"`
	TournamentSize int     `json:"tournament_size"`
	CrossoverRate  float64 `json:"crossover_rate"`
	MutationRate   float64 `json:"mutation_rate"`
	Generations    int     `json:"generations"`
	// Seed of 0 draws a seed from the clock; the seed used is reported in Result.
	Seed int64 `json:"seed"`
}

// ParamsFromConfig copies the solver section of the application config.
func ParamsFromConfig(cfg config.SolverConfig) Params {
	return Params{
		PopulationSize: cfg.PopulationSize,
		TournamentSize: cfg.TournamentSize,
		CrossoverRate:  cfg.CrossoverRate,
		MutationRate:   cfg.MutationRate,
		Generations:    cfg.Generations,
		Seed:           cfg.Seed,
	}
}

// Request describes one knapsack instance to optimize.
type Request struct {
	Instance *catalog.Instance
	Capacity float64
	Params   Params
}

// Result is the outcome of a finished run.
type Result struct {
	RunID       string                    `json:"run_id"`
	Best        genetic.BestSolution      `json:"best"`
	Selection   *catalog.Selection        `json:"selection"`
	Generations int                       `json:"generations"`
	Seed        int64                     `json:"seed"`
	History     []genetic.GenerationStats `json:"history"`
	Duration    time.Duration             `json:"duration"`
}

// Service runs optimizations. The history store is optional.
type Service struct {
	logger logger.Logger
	store  history.Store
	now    func() time.Time
}

// NewService creates a solver service. A nil logger discards output; a nil store
// disables run history.
func NewService(log logger.Logger, store history.Store) *Service {
	if log == nil {
		log = logger.NewNoOpLogger()
	}
	return &Service{
		logger: log,
		store:  store,
		now:    time.Now,
	}
}

// Solve builds a GeneticAlgorithm for the request and advances it the requested
// number of generations. ctx is checked between generations; a cancelled run
// returns ctx's error and is not recorded.
func (s *Service) Solve(ctx context.Context, req Request) (*Result, error) {
	if req.Instance == nil {
		return nil, ErrNoInstance
	}
	if req.Params.Generations < 1 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidGenerations, req.Params.Generations)
	}

	items, err := req.Instance.Items()
	if err != nil {
		return nil, err
	}

	seed := req.Params.Seed
	if seed == 0 {
		seed = s.now().UnixNano()
	}

	cfg := genetic.GeneticAlgorithmConfig{
		PopulationSize:   req.Params.PopulationSize,
		ChromosomeLength: len(items),
		CrossoverRate:    req.Params.CrossoverRate,
		MutationRate:     req.Params.MutationRate,
		Capacity:         req.Capacity,
		TournamentSize:   req.Params.TournamentSize,
		Dimensions:       req.Instance.Dimensions,
	}
	ga, err := genetic.NewGeneticAlgorithm(cfg, items, genetic.WithSeed(seed), genetic.WithLogger(s.logger))
	if err != nil {
		return nil, err
	}

	runID := uuid.New().String()
	start := s.now()
	s.logger.Info("[Solver] Run %s started: %d items, capacity %g, population %d, %d generations, seed %d",
		runID, len(items), req.Capacity, cfg.PopulationSize, req.Params.Generations, seed)

	for ga.Generation() < req.Params.Generations {
		if err := ctx.Err(); err != nil {
			s.logger.Warn("[Solver] Run %s stopped after %d generations: %v", runID, ga.Generation(), err)
			return nil, err
		}
		ga.Advance()
	}

	best, _ := ga.Best()
	selection, err := catalog.Select(items, ga.Decode())
	if err != nil {
		return nil, err
	}

	result := &Result{
		RunID:       runID,
		Best:        best,
		Selection:   selection,
		Generations: ga.Generation(),
		Seed:        seed,
		History:     ga.History(),
		Duration:    s.now().Sub(start),
	}
	s.logger.Info("[Solver] Run %s finished: best fitness %g, weight %g, feasible %t, found in generation %d",
		runID, best.Fitness, best.Weight, best.Feasible, best.Generation)

	s.record(ctx, req, result)
	return result, nil
}

// record saves the run summary. Store failures are logged and do not fail the run.
func (s *Service) record(ctx context.Context, req Request, result *Result) {
	if s.store == nil {
		return
	}
	rec := &history.Record{
		ID:             result.RunID,
		CreatedAt:      s.now().UTC(),
		Dimensions:     req.Instance.Dimensions,
		Capacity:       req.Capacity,
		PopulationSize: req.Params.PopulationSize,
		TournamentSize: req.Params.TournamentSize,
		CrossoverRate:  req.Params.CrossoverRate,
		MutationRate:   req.Params.MutationRate,
		Generations:    result.Generations,
		Seed:           result.Seed,
		BestFitness:    result.Best.Fitness,
		BestWeight:     result.Best.Weight,
		Feasible:       result.Best.Feasible,
		Chromosome:     result.Best.Chromosome.String(),
		Picks:          result.Selection.Indices,
		DurationMillis: result.Duration.Milliseconds(),
	}
	if err := s.store.Save(ctx, rec); err != nil {
		s.logger.Warn("[Solver] Failed to record run %s: %v", result.RunID, err)
	}
}

// Runs lists recorded runs, newest first.
func (s *Service) Runs(ctx context.Context, limit int) ([]*history.Record, error) {
	if s.store == nil {
		return nil, ErrHistoryDisabled
	}
	return s.store.List(ctx, limit)
}

// Run returns one recorded run.
func (s *Service) Run(ctx context.Context, id string) (*history.Record, error) {
	if s.store == nil {
		return nil, ErrHistoryDisabled
	}
	return s.store.Get(ctx, id)
}
