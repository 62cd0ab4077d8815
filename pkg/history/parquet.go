package history

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	pq "github.com/parquet-go/parquet-go"
	"github.com/parquet-go/parquet-go/compress"
)

// parquetRun is the columnar layout of a Record.
type parquetRun struct {
	ID             string  `parquet:"id"`
	CreatedAt      int64   `parquet:"created_at"` // unix nanoseconds
	Dimensions     int32   `parquet:"dimensions"`
	Capacity       float64 `parquet:"capacity"`
	PopulationSize int32   `parquet:"population_size"`
	TournamentSize int32   `parquet:"tournament_size"`
	CrossoverRate  float64 `parquet:"crossover_rate"`
	MutationRate   float64 `parquet:"mutation_rate"`
	Generations    int32   `parquet:"generations"`
	Seed           int64   `parquet:"seed"`
	BestFitness    float64 `parquet:"best_fitness"`
	BestWeight     float64 `parquet:"best_weight"`
	Feasible       bool    `parquet:"feasible"`
	Chromosome     string  `parquet:"chromosome"`
	Picks          []int64 `parquet:"picks"`
	DurationMillis int64   `parquet:"duration_ms"`
}

func toParquetRun(rec *Record) parquetRun {
	picks := make([]int64, len(rec.Picks))
	for i, p := range rec.Picks {
		picks[i] = int64(p)
	}
	return parquetRun{
		ID:             rec.ID,
		CreatedAt:      rec.CreatedAt.UnixNano(),
		Dimensions:     int32(rec.Dimensions),
		Capacity:       rec.Capacity,
		PopulationSize: int32(rec.PopulationSize),
		TournamentSize: int32(rec.TournamentSize),
		CrossoverRate:  rec.CrossoverRate,
		MutationRate:   rec.MutationRate,
		Generations:    int32(rec.Generations),
		Seed:           rec.Seed,
		BestFitness:    rec.BestFitness,
		BestWeight:     rec.BestWeight,
		Feasible:       rec.Feasible,
		Chromosome:     rec.Chromosome,
		Picks:          picks,
		DurationMillis: rec.DurationMillis,
	}
}

func (r parquetRun) record() *Record {
	picks := make([]int, len(r.Picks))
	for i, p := range r.Picks {
		picks[i] = int(p)
	}
	return &Record{
		ID:             r.ID,
		CreatedAt:      time.Unix(0, r.CreatedAt).UTC(),
		Dimensions:     int(r.Dimensions),
		Capacity:       r.Capacity,
		PopulationSize: int(r.PopulationSize),
		TournamentSize: int(r.TournamentSize),
		CrossoverRate:  r.CrossoverRate,
		MutationRate:   r.MutationRate,
		Generations:    int(r.Generations),
		Seed:           r.Seed,
		BestFitness:    r.BestFitness,
		BestWeight:     r.BestWeight,
		Feasible:       r.Feasible,
		Chromosome:     r.Chromosome,
		Picks:          picks,
		DurationMillis: r.DurationMillis,
	}
}

// ExportParquet writes every record of store to a parquet file, newest first.
// It returns the number of records written.
func ExportParquet(ctx context.Context, store Store, path, compression string) (int, error) {
	records, err := store.List(ctx, 0)
	if err != nil {
		return 0, err
	}
	if err := WriteParquet(path, records, compression); err != nil {
		return 0, err
	}
	return len(records), nil
}

// WriteParquet writes records to path atomically through a temp file in the
// same directory.
func WriteParquet(path string, records []*Record, compression string) error {
	tmpFile, err := os.CreateTemp(filepath.Dir(path), ".runs_tmp_*.parquet")
	if err != nil {
		return fmt.Errorf("history: create temp file: %w", err)
	}
	tmpPath := tmpFile.Name()

	success := false
	defer func() {
		if !success {
			tmpFile.Close()
			os.Remove(tmpPath)
		}
	}()

	var opts []pq.WriterOption
	if codec := compressionCodec(compression); codec != nil {
		opts = append(opts, pq.Compression(codec))
	}
	writer := pq.NewGenericWriter[parquetRun](tmpFile, opts...)

	rows := make([]parquetRun, len(records))
	for i, rec := range records {
		rows[i] = toParquetRun(rec)
	}
	if len(rows) > 0 {
		if _, err := writer.Write(rows); err != nil {
			return fmt.Errorf("history: write runs: %w", err)
		}
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("history: close parquet writer: %w", err)
	}
	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("history: close temp file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("history: rename temp file: %w", err)
	}

	success = true
	return nil
}

// ReadParquet reads records written by WriteParquet.
func ReadParquet(path string) ([]*Record, error) {
	rows, err := pq.ReadFile[parquetRun](path)
	if err != nil {
		return nil, fmt.Errorf("history: read %s: %w", path, err)
	}
	records := make([]*Record, len(rows))
	for i, row := range rows {
		records[i] = row.record()
	}
	return records, nil
}

func compressionCodec(name string) compress.Codec {
	switch strings.ToLower(name) {
	case "snappy", "":
		return &pq.Snappy
	case "gzip":
		return &pq.Gzip
	case "zstd":
		return &pq.Zstd
	case "none", "uncompressed":
		return nil
	default:
		return &pq.Snappy
	}
}
