package controllers

import (
	"context"
	"fmt"

	logger "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/rios0rios0/npmdiffscan/internal/domain/commands"
	"github.com/rios0rios0/npmdiffscan/internal/domain/entities"
)

// ClearController handles the "clear" subcommand.
type ClearController struct {
	command commands.Clear
}

// NewClearController creates a new ClearController.
func NewClearController(command commands.Clear) *ClearController {
	return &ClearController{command: command}
}

// GetBind returns the Cobra command metadata for the clear controller.
func (it *ClearController) GetBind() entities.ControllerBind {
	return entities.ControllerBind{
		Use:   "clear",
		Short: "Reset the stored statistics and enabled flag",
		Args:  cobra.NoArgs,
	}
}

// Execute clears the persisted state.
func (it *ClearController) Execute(cmd *cobra.Command, _ []string) {
	settings, err := loadSettings(cmd)
	if err != nil {
		logger.Errorf("failed to load config: %v", err)
		return
	}

	if err := it.command.Execute(context.Background(), settings); err != nil {
		logger.Errorf("Clear failed: %v", err)
		return
	}
	fmt.Fprintln(cmd.OutOrStdout(), "State cleared")
}
