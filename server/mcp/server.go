package mcp

import (
	"github.com/kasuganosora/knapsackga/pkg/config"
	"github.com/kasuganosora/knapsackga/pkg/logger"
	"github.com/kasuganosora/knapsackga/pkg/solver"
	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"
)

const (
	serverName    = "knapsackga"
	serverVersion = "1.0.0"
)

// Server is the MCP protocol server
type Server struct {
	service *solver.Service
	cfg     *config.Config
	logger  logger.Logger
}

// NewServer creates a new MCP server
func NewServer(service *solver.Service, cfg *config.Config, log logger.Logger) *Server {
	if log == nil {
		log = logger.NewNoOpLogger()
	}
	return &Server{
		service: service,
		cfg:     cfg,
		logger:  log,
	}
}

// Start serves the tools over streamable HTTP at /mcp (blocking)
func (s *Server) Start() error {
	addr := s.cfg.MCPListenAddress()

	httpServer := mcpserver.NewStreamableHTTPServer(
		s.newMCPServer(),
		mcpserver.WithEndpointPath("/mcp"),
	)

	s.logger.Info("[MCP] Starting MCP server: %s", addr)
	return httpServer.Start(addr)
}

func (s *Server) newMCPServer() *mcpserver.MCPServer {
	deps := &ToolDeps{
		Service:  s.service,
		Defaults: solver.ParamsFromConfig(s.cfg.Solver),
		Logger:   s.logger,
	}

	mcpSrv := mcpserver.NewMCPServer(
		serverName,
		serverVersion,
		mcpserver.WithToolCapabilities(true),
		mcpserver.WithRecovery(),
	)

	solveTool := mcp.NewTool("solve_knapsack",
		mcp.WithDescription("Solve a 0/1 knapsack instance with a genetic algorithm. Items are a square grid flattened row-major; the result lists the packed items."),
		mcp.WithString("items", mcp.Description(`JSON grid of items, e.g. [[[2,3],[3,4]],[[4,5],[5,6]]] or [[{"weight":2,"value":3}, ...], ...]`), mcp.Required()),
		mcp.WithNumber("capacity", mcp.Description("Maximum total weight of the knapsack"), mcp.Required()),
		mcp.WithNumber("dimensions", mcp.Description("Grid side length (optional, defaults to the number of rows)")),
		mcp.WithNumber("population_size", mcp.Description("Population size, must be even (optional)")),
		mcp.WithNumber("tournament_size", mcp.Description("Tournament size (optional)")),
		mcp.WithNumber("crossover_rate", mcp.Description("Crossover rate in [0, 1] (optional)")),
		mcp.WithNumber("mutation_rate", mcp.Description("Per-gene mutation rate in [0, 1] (optional)")),
		mcp.WithNumber("generations", mcp.Description("Number of generations to run (optional)")),
		mcp.WithString("seed", mcp.Description("Random seed as a decimal integer string for a reproducible run (optional, 0 uses the clock; the result reports the seed used the same way)")),
	)

	listRunsTool := mcp.NewTool("list_runs",
		mcp.WithDescription("List recorded solver runs, newest first"),
		mcp.WithNumber("limit", mcp.Description("Maximum number of runs to return (optional, default 10)")),
	)

	getRunTool := mcp.NewTool("get_run",
		mcp.WithDescription("Get the summary of one recorded solver run"),
		mcp.WithString("id", mcp.Description("The run ID"), mcp.Required()),
	)

	mcpSrv.AddTool(solveTool, deps.HandleSolve)
	mcpSrv.AddTool(listRunsTool, deps.HandleListRuns)
	mcpSrv.AddTool(getRunTool, deps.HandleGetRun)

	return mcpSrv
}
