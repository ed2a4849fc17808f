package controllers

import (
	"context"
	"fmt"

	logger "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/rios0rios0/npmdiffscan/internal/domain/commands"
	"github.com/rios0rios0/npmdiffscan/internal/domain/entities"
)

// LookupController handles the "lookup" subcommand.
type LookupController struct {
	command commands.Lookup
}

// NewLookupController creates a new LookupController.
func NewLookupController(command commands.Lookup) *LookupController {
	return &LookupController{command: command}
}

// GetBind returns the Cobra command metadata for the lookup controller.
func (it *LookupController) GetBind() entities.ControllerBind {
	return entities.ControllerBind{
		Use:   "lookup <package>",
		Short: "Print the latest published version of an npm package",
		Args:  cobra.ExactArgs(1),
	}
}

// Execute resolves one package through the background.
func (it *LookupController) Execute(cmd *cobra.Command, args []string) {
	settings, err := loadSettings(cmd)
	if err != nil {
		logger.Errorf("failed to load config: %v", err)
		return
	}

	version, err := it.command.Execute(context.Background(), settings, args[0])
	if err != nil {
		logger.Errorf("Lookup failed: %v", err)
		return
	}
	fmt.Fprintln(cmd.OutOrStdout(), version)
}
