package controllers

import (
	"context"
	"os/signal"
	"syscall"

	logger "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/rios0rios0/npmdiffscan/internal/domain/commands"
	"github.com/rios0rios0/npmdiffscan/internal/domain/entities"
)

// ServeController handles the "serve" subcommand.
type ServeController struct {
	command commands.Serve
}

// NewServeController creates a new ServeController.
func NewServeController(command commands.Serve) *ServeController {
	return &ServeController{command: command}
}

// GetBind returns the Cobra command metadata for the serve controller.
func (it *ServeController) GetBind() entities.ControllerBind {
	return entities.ControllerBind{
		Use:   "serve",
		Short: "Run the background over HTTP",
		Long: `Run the background context as an HTTP service. Page scans configured
with "lookup: background" send their registry lookups and statistics here,
and stay subscribed while they run so that toggles reach them.

Endpoints:
  POST /messages   boundary messages (updateStats, fetchPackageVersion, ...)
  GET  /pages      WebSocket that running page scans subscribe on
  GET  /healthz    liveness check
  GET  /metrics    Prometheus metrics`,
		Args: cobra.NoArgs,
	}
}

// Execute serves until interrupted.
func (it *ServeController) Execute(cmd *cobra.Command, _ []string) {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	settings, err := loadSettings(cmd)
	if err != nil {
		logger.Errorf("failed to load config: %v", err)
		return
	}
	if listen, _ := cmd.Flags().GetString("listen"); listen != "" {
		settings.ListenAddress = listen
	}

	if err := it.command.Execute(ctx, settings); err != nil {
		logger.Errorf("Serve failed: %v", err)
	}
}

// AddFlags adds the serve-specific flags to the given Cobra command.
func (it *ServeController) AddFlags(cmd *cobra.Command) {
	cmd.Flags().String("listen", "", "Address to listen on (overrides listen_address)")
}
