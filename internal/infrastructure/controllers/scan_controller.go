package controllers

import (
	"context"
	"io"
	"os"

	logger "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/rios0rios0/npmdiffscan/internal/domain/commands"
	"github.com/rios0rios0/npmdiffscan/internal/domain/entities"
)

// ScanController handles the "scan" subcommand.
type ScanController struct {
	command commands.Scan
}

// NewScanController creates a new ScanController.
func NewScanController(command commands.Scan) *ScanController {
	return &ScanController{command: command}
}

// GetBind returns the Cobra command metadata for the scan controller.
func (it *ScanController) GetBind() entities.ControllerBind {
	return entities.ControllerBind{
		Use:   "scan <page>",
		Short: "Annotate outdated npm dependencies in a pull-request diff page",
		Long: `Scan a pull-request page for package.json and package-lock.json diffs
and mark every changed dependency line whose version differs from the
latest version published on the npm registry.

The page can be a file path, an http(s) URL or "-" for stdin. Diffs that
the host page loads lazily can be given with --fragment; they are appended
to the page after the first scan and picked up by the change observer.`,
		Args: cobra.ExactArgs(1),
	}
}

// Execute runs the scan.
func (it *ScanController) Execute(cmd *cobra.Command, args []string) {
	ctx := context.Background()

	fragments, _ := cmd.Flags().GetStringSlice("fragment")
	outputPath, _ := cmd.Flags().GetString("output")

	settings, err := loadSettings(cmd)
	if err != nil {
		logger.Errorf("failed to load config: %v", err)
		return
	}

	output, closeOutput, err := openOutput(cmd, outputPath)
	if err != nil {
		logger.Errorf("failed to open output: %v", err)
		return
	}
	defer closeOutput()

	result, err := it.command.Execute(ctx, settings, commands.ScanOptions{
		Source:    args[0],
		Fragments: fragments,
		Output:    output,
	})
	if err != nil {
		logger.Errorf("Scan failed: %v", err)
		return
	}

	for _, entry := range result.Entries {
		if entry.IsOutdated {
			logger.Infof("  %s: %s -> %s (%s)", entry.Name, entry.CurrentVersion, entry.LatestVersion, entry.Bump())
		}
	}
}

// AddFlags adds the scan-specific flags to the given Cobra command.
func (it *ScanController) AddFlags(cmd *cobra.Command) {
	cmd.Flags().StringSlice("fragment", nil, "HTML fragment loaded after the page (repeatable)")
	cmd.Flags().StringP("output", "o", "-", `Where to write the annotated page ("-" for stdout, "" to discard)`)
}

func openOutput(cmd *cobra.Command, path string) (io.Writer, func(), error) {
	switch path {
	case "":
		return nil, func() {}, nil
	case "-":
		return cmd.OutOrStdout(), func() {}, nil
	default:
		file, err := os.Create(path)
		if err != nil {
			return nil, nil, err
		}
		return file, func() { _ = file.Close() }, nil
	}
}
