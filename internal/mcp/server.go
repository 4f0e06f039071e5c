package mcp

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"

	sdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/ThePyProgrammer/breadboards/internal/logging"
	"github.com/ThePyProgrammer/breadboards/pkg/simulator"
)

// Server wraps the MCP SDK server around one simulator. Tool calls may
// arrive concurrently, so every handler holds mu.
type Server struct {
	server *sdk.Server
	logger *slog.Logger

	mu            sync.Mutex
	sim           *simulator.Simulator
	stepsPerFrame int
}

// Config holds server configuration.
type Config struct {
	Name          string // Server name (e.g., "breadboard")
	Version       string // Server version
	StepsPerFrame int    // default step count of step_transient
	Logger        *slog.Logger
}

// NewServer creates an MCP server driving sim.
func NewServer(cfg *Config, sim *simulator.Simulator) *Server {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Discard()
	}
	steps := cfg.StepsPerFrame
	if steps < 1 {
		steps = 1
	}

	mcpServer := sdk.NewServer(&sdk.Implementation{
		Name:    cfg.Name,
		Version: cfg.Version,
	}, nil)

	s := &Server{
		server:        mcpServer,
		logger:        logger,
		sim:           sim,
		stepsPerFrame: steps,
	}
	s.registerTools()
	return s
}

// Run serves over stdio until the client disconnects, ctx is done or the
// process is interrupted.
func (s *Server) Run(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	s.logger.Info("mcp server listening on stdio")
	return s.server.Run(ctx, &sdk.StdioTransport{})
}
