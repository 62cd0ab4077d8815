package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/kasuganosora/knapsackga/pkg/catalog"
	"github.com/kasuganosora/knapsackga/pkg/config"
	"github.com/kasuganosora/knapsackga/pkg/history"
	"github.com/kasuganosora/knapsackga/pkg/logger"
	"github.com/kasuganosora/knapsackga/pkg/solver"
	mcpserver "github.com/kasuganosora/knapsackga/server/mcp"
)

func main() {
	var (
		configPath  = flag.String("config", "", "config file (default: $KNAPSACK_CONFIG or the usual locations)")
		itemsPath   = flag.String("items", "", "item grid file, .json or .xlsx (overrides items.path)")
		sheet       = flag.String("sheet", "", "workbook sheet (overrides items.sheet)")
		capacity    = flag.Float64("capacity", -1, "knapsack capacity (overrides items.capacity)")
		generations = flag.Int("generations", 0, "number of generations (overrides solver.generations)")
		seed        = flag.Int64("seed", 0, "random seed (overrides solver.seed)")
		serveMCP    = flag.Bool("mcp", false, "serve the MCP tools instead of solving once")
		logLevel    = flag.String("log-level", "", "error, warn, info or debug (overrides log.level)")
		exportPath  = flag.String("export", "", "write the recorded runs to a parquet file and exit")
	)
	flag.Parse()

	cfg, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}
	if *itemsPath != "" {
		cfg.Items.Path = *itemsPath
	}
	if *sheet != "" {
		cfg.Items.Sheet = *sheet
	}
	if *capacity >= 0 {
		cfg.Items.Capacity = *capacity
	}
	if *generations > 0 {
		cfg.Solver.Generations = *generations
	}
	if *seed != 0 {
		cfg.Solver.Seed = *seed
	}
	if *serveMCP {
		cfg.MCP.Enabled = true
	}
	if *logLevel != "" {
		cfg.Log.Level = *logLevel
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "invalid config: %v\n", err)
		os.Exit(1)
	}

	level, _ := logger.ParseLevel(cfg.Log.Level)
	log := logger.NewDefaultLogger(level)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log, *exportPath); err != nil {
		log.Error("%v", err)
		stop()
		os.Exit(1)
	}
}

func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		return config.LoadConfig(path)
	}
	return config.LoadConfigOrDefault(), nil
}

func run(ctx context.Context, cfg *config.Config, log logger.Logger, exportPath string) error {
	var store history.Store
	if cfg.History.Enabled {
		s, err := history.Open(ctx, cfg.History)
		if err != nil {
			return fmt.Errorf("open history: %w", err)
		}
		defer s.Close()
		store = s
		log.Info("History backend: %s", cfg.History.Backend)
	}

	if exportPath != "" {
		if store == nil {
			return fmt.Errorf("export needs history.enabled")
		}
		n, err := history.ExportParquet(ctx, store, exportPath, "snappy")
		if err != nil {
			return fmt.Errorf("export runs: %w", err)
		}
		log.Info("Exported %d runs to %s", n, exportPath)
		return nil
	}

	service := solver.NewService(log, store)

	if cfg.MCP.Enabled {
		srv := mcpserver.NewServer(service, cfg, log)
		errCh := make(chan error, 1)
		go func() {
			errCh <- srv.Start()
		}()
		select {
		case err := <-errCh:
			return fmt.Errorf("mcp server: %w", err)
		case <-ctx.Done():
			log.Info("MCP server stopped")
			return nil
		}
	}

	if cfg.Items.Path == "" {
		return fmt.Errorf("no item grid given: set items.path or -items")
	}
	inst, err := catalog.Load(cfg.Items.Path, cfg.Items.Format, cfg.Items.Sheet)
	if err != nil {
		return err
	}

	result, err := service.Solve(ctx, solver.Request{
		Instance: inst,
		Capacity: cfg.Items.Capacity,
		Params:   solver.ParamsFromConfig(cfg.Solver),
	})
	if err != nil {
		return err
	}

	writeReport(os.Stdout, inst, cfg.Items.Capacity, result)
	return nil
}
