package controllers

import (
	"github.com/spf13/cobra"

	"github.com/rios0rios0/npmdiffscan/internal/domain/entities"
)

// loadSettings resolves the --config flag into Settings.
func loadSettings(cmd *cobra.Command) (*entities.Settings, error) {
	configPath, _ := cmd.Flags().GetString("config")
	return entities.LoadSettings(configPath)
}
