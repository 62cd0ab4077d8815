// Package history persists summaries of finished optimization runs.
package history

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/kasuganosora/knapsackga/pkg/config"
)

// ErrNotFound is returned when no run has the requested ID.
var ErrNotFound = errors.New("history: run not found")

// Record summarizes one finished run.
type Record struct {
	ID             string    `json:"id"`
	CreatedAt      time.Time `json:"created_at"`
	Dimensions     int       `json:"dimensions"`
	Capacity       float64   `json:"capacity"`
	PopulationSize int       `json:"population_size"`
	TournamentSize int       `json:"tournament_size"`
	CrossoverRate  float64   `json:"crossover_rate"`
	MutationRate   float64   `json:"mutation_rate"`
	Generations    int       `json:"generations"`
	Seed           int64     `json:"seed,string"`
	BestFitness    float64   `json:"best_fitness"`
	BestWeight     float64   `json:"best_weight"`
	Feasible       bool      `json:"feasible"`
	Chromosome     string    `json:"chromosome"`
	Picks          []int     `json:"picks"`
	DurationMillis int64     `json:"duration_ms"`
}

// Store saves and queries run records.
type Store interface {
	Save(ctx context.Context, rec *Record) error
	Get(ctx context.Context, id string) (*Record, error)
	// List returns up to limit records, newest first. limit <= 0 means all.
	List(ctx context.Context, limit int) ([]*Record, error)
	Close() error
}

// Open creates the store selected by cfg.
func Open(ctx context.Context, cfg config.HistoryConfig) (Store, error) {
	switch cfg.Backend {
	case "badger":
		return OpenBadgerStore(cfg.DataDir)
	case "sqlite", "mysql", "postgres":
		dialect, err := DialectFor(cfg.Backend)
		if err != nil {
			return nil, err
		}
		return OpenSQLStore(ctx, dialect, cfg.DSN)
	default:
		return nil, fmt.Errorf("history: unsupported backend %q", cfg.Backend)
	}
}
