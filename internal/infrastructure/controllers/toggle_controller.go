package controllers

import (
	"context"
	"fmt"

	logger "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/rios0rios0/npmdiffscan/internal/domain/commands"
	"github.com/rios0rios0/npmdiffscan/internal/domain/entities"
)

// ToggleController handles the "toggle" subcommand.
type ToggleController struct {
	command commands.Toggle
}

// NewToggleController creates a new ToggleController.
func NewToggleController(command commands.Toggle) *ToggleController {
	return &ToggleController{command: command}
}

// GetBind returns the Cobra command metadata for the toggle controller.
func (it *ToggleController) GetBind() entities.ControllerBind {
	return entities.ControllerBind{
		Use:   "toggle",
		Short: "Enable or disable page annotation",
		Args:  cobra.NoArgs,
	}
}

// Execute flips the enabled flag.
func (it *ToggleController) Execute(cmd *cobra.Command, _ []string) {
	settings, err := loadSettings(cmd)
	if err != nil {
		logger.Errorf("failed to load config: %v", err)
		return
	}

	enabled, err := it.command.Execute(context.Background(), settings)
	if err != nil {
		logger.Errorf("Toggle failed: %v", err)
		return
	}

	if enabled {
		fmt.Fprintln(cmd.OutOrStdout(), "Enabled")
	} else {
		fmt.Fprintln(cmd.OutOrStdout(), "Disabled")
	}
}
