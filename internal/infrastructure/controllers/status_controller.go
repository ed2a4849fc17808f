package controllers

import (
	"context"
	"fmt"

	logger "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/rios0rios0/npmdiffscan/internal/domain/commands"
	"github.com/rios0rios0/npmdiffscan/internal/domain/entities"
)

// StatusController handles the "status" subcommand.
type StatusController struct {
	command commands.Status
}

// NewStatusController creates a new StatusController.
func NewStatusController(command commands.Status) *StatusController {
	return &StatusController{command: command}
}

// GetBind returns the Cobra command metadata for the status controller.
func (it *StatusController) GetBind() entities.ControllerBind {
	return entities.ControllerBind{
		Use:   "status",
		Short: "Show whether scanning is enabled and the last scan statistics",
		Args:  cobra.NoArgs,
	}
}

// Execute prints the persisted state.
func (it *StatusController) Execute(cmd *cobra.Command, _ []string) {
	settings, err := loadSettings(cmd)
	if err != nil {
		logger.Errorf("failed to load config: %v", err)
		return
	}

	status, err := it.command.Execute(context.Background(), settings)
	if err != nil {
		logger.Errorf("failed to read state: %v", err)
		return
	}

	state := "Disabled"
	if status.Enabled {
		state = "Enabled"
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "NPM Package Scanner: %s\n", state)
	fmt.Fprintf(out, "Packages Scanned:    %d\n", status.Stats.PackagesScanned)
	fmt.Fprintf(out, "Outdated Found:      %d\n", status.Stats.OutdatedPackages)
	fmt.Fprintf(out, "Last Scan:           %s\n", status.Stats.LastScanLabel())
}
