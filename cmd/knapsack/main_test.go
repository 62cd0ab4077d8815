package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/kasuganosora/knapsackga/pkg/config"
	"github.com/kasuganosora/knapsackga/pkg/history"
	"github.com/kasuganosora/knapsackga/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRun_SolveThenExport(t *testing.T) {
	dir := t.TempDir()
	itemsPath := filepath.Join(dir, "items.json")
	require.NoError(t, os.WriteFile(itemsPath,
		[]byte(`{"dimensions": 2, "items": [[[2,3],[3,4]],[[4,5],[5,6]]]}`), 0644))

	cfg := config.DefaultConfig()
	cfg.Items.Path = itemsPath
	cfg.Items.Capacity = 5
	cfg.Solver.Generations = 10
	cfg.Solver.Seed = 11
	cfg.History.Enabled = true
	cfg.History.Backend = "badger"
	cfg.History.DataDir = filepath.Join(dir, "history")
	require.NoError(t, cfg.Validate())

	ctx := context.Background()
	log := logger.NewNoOpLogger()
	require.NoError(t, run(ctx, cfg, log, ""))

	exportPath := filepath.Join(dir, "runs.parquet")
	require.NoError(t, run(ctx, cfg, log, exportPath))

	records, err := history.ReadParquet(exportPath)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, int64(11), records[0].Seed)
	assert.Equal(t, 10, records[0].Generations)
	assert.Equal(t, 5.0, records[0].Capacity)
}

func TestRun_Errors(t *testing.T) {
	ctx := context.Background()
	log := logger.NewNoOpLogger()

	cfg := config.DefaultConfig()
	assert.ErrorContains(t, run(ctx, cfg, log, ""), "no item grid")

	assert.ErrorContains(t, run(ctx, cfg, log, filepath.Join(t.TempDir(), "runs.parquet")), "history.enabled")

	cfg.Items.Path = filepath.Join(t.TempDir(), "missing.json")
	assert.Error(t, run(ctx, cfg, log, ""))
}

func TestLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"solver": {"generations": 7}}`), 0644))

	cfg, err := loadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, 7, cfg.Solver.Generations)
	assert.Equal(t, 20, cfg.Solver.PopulationSize)

	_, err = loadConfig(filepath.Join(t.TempDir(), "absent.json"))
	assert.Error(t, err)
}
