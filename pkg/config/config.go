package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/kasuganosora/knapsackga/pkg/logger"
)

// EnvConfigPath names the environment variable holding the config file path.
const EnvConfigPath = "KNAPSACK_CONFIG"

// Config is the application configuration.
type Config struct {
	Solver  SolverConfig  `json:"solver"`
	Items   ItemsConfig   `json:"items"`
	Log     LogConfig     `json:"log"`
	History HistoryConfig `json:"history"`
	MCP     MCPConfig     `json:"mcp"`
}

// SolverConfig holds the genetic algorithm parameters.
type SolverConfig struct {
	PopulationSize int     `json:"population_size"`
	CrossoverRate  float64 `json:"crossover_rate"`
	MutationRate   float64 `json:"mutation_rate"`
	TournamentSize int     `json:"tournament_size"`
	Generations    int     `json:"generations"`
	Seed           int64   `json:"seed"` // 0 seeds from the clock
}

// ItemsConfig locates the item grid and the knapsack capacity.
type ItemsConfig struct {
	Path     string  `json:"path"`
	Format   string  `json:"format"` // json or xlsx; empty infers from the extension
	Sheet    string  `json:"sheet"`
	Capacity float64 `json:"capacity"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level string `json:"level"`
}

// HistoryConfig configures the run-history store.
type HistoryConfig struct {
	Enabled bool   `json:"enabled"`
	Backend string `json:"backend"` // sqlite, mysql, postgres or badger
	DSN     string `json:"dsn"`
	DataDir string `json:"data_dir"` // badger only; empty keeps history in memory
}

// MCPConfig configures the MCP tool server.
type MCPConfig struct {
	Enabled bool   `json:"enabled"`
	Host    string `json:"host"`
	Port    int    `json:"port"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Solver: SolverConfig{
			PopulationSize: 20,
			CrossoverRate:  0.5,
			MutationRate:   0.01,
			TournamentSize: 3,
			Generations:    50,
		},
		Log: LogConfig{
			Level: "info",
		},
		History: HistoryConfig{
			Enabled: false,
			Backend: "sqlite",
			DSN:     "knapsackga.db",
		},
		MCP: MCPConfig{
			Enabled: false,
			Host:    "127.0.0.1",
			Port:    8090,
		},
	}
}

// LoadConfig reads a JSON config file over the defaults. An empty path yields
// the defaults.
func LoadConfig(configPath string) (*Config, error) {
	if configPath == "" {
		return DefaultConfig(), nil
	}

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("config file not found: %s", configPath)
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	config := DefaultConfig()
	if err := json.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("parse config file: %w", err)
	}

	if err := validateConfig(config); err != nil {
		return nil, err
	}

	return config, nil
}

// LoadConfigOrDefault tries $KNAPSACK_CONFIG and then the usual locations,
// falling back to the defaults.
func LoadConfigOrDefault() *Config {
	possiblePaths := []string{
		"config.json",
		"./config/config.json",
		"/etc/knapsackga/config.json",
	}

	if envPath := os.Getenv(EnvConfigPath); envPath != "" {
		if config, err := LoadConfig(envPath); err == nil {
			return config
		}
	}

	for _, path := range possiblePaths {
		if absPath, err := filepath.Abs(path); err == nil {
			if config, err := LoadConfig(absPath); err == nil {
				return config
			}
		}
	}

	return DefaultConfig()
}

// Validate checks the configuration.
func (c *Config) Validate() error {
	return validateConfig(c)
}

func validateConfig(config *Config) error {
	s := config.Solver
	if s.PopulationSize < 2 || s.PopulationSize%2 != 0 {
		return fmt.Errorf("population_size must be a positive even number: %d", s.PopulationSize)
	}
	if s.TournamentSize < 1 || s.TournamentSize > s.PopulationSize {
		return fmt.Errorf("tournament_size must be between 1 and population_size: %d", s.TournamentSize)
	}
	if s.CrossoverRate < 0 || s.CrossoverRate > 1 {
		return fmt.Errorf("crossover_rate must be in [0, 1]: %v", s.CrossoverRate)
	}
	if s.MutationRate < 0 || s.MutationRate > 1 {
		return fmt.Errorf("mutation_rate must be in [0, 1]: %v", s.MutationRate)
	}
	if s.Generations < 1 {
		return fmt.Errorf("generations must be greater than 0: %d", s.Generations)
	}

	if config.Items.Capacity < 0 {
		return fmt.Errorf("capacity must not be negative: %v", config.Items.Capacity)
	}
	switch strings.ToLower(config.Items.Format) {
	case "", "json", "xlsx", "excel":
	default:
		return fmt.Errorf("unsupported items format: %s", config.Items.Format)
	}

	if _, err := logger.ParseLevel(config.Log.Level); err != nil {
		return err
	}

	if config.History.Enabled {
		switch config.History.Backend {
		case "sqlite", "mysql", "postgres":
			if config.History.DSN == "" {
				return fmt.Errorf("history backend %s requires a dsn", config.History.Backend)
			}
		case "badger":
		default:
			return fmt.Errorf("unsupported history backend: %s", config.History.Backend)
		}
	}

	if config.MCP.Enabled && (config.MCP.Port < 1 || config.MCP.Port > 65535) {
		return fmt.Errorf("invalid mcp port: %d", config.MCP.Port)
	}

	return nil
}

// MCPListenAddress returns the MCP server listen address.
func (c *Config) MCPListenAddress() string {
	return fmt.Sprintf("%s:%d", c.MCP.Host, c.MCP.Port)
}
