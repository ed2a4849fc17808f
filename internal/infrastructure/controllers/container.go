package controllers

import (
	"go.uber.org/dig"

	"github.com/rios0rios0/npmdiffscan/internal/domain/entities"
)

// RegisterProviders registers all controller providers with the DIG container.
func RegisterProviders(container *dig.Container) error {
	// Register controller constructors
	constructors := []any{
		NewScanController,
		NewStatusController,
		NewToggleController,
		NewClearController,
		NewLookupController,
		NewServeController,
		NewControllers,
	}
	for _, constructor := range constructors {
		if err := container.Provide(constructor); err != nil {
			return err
		}
	}

	return nil
}

// NewControllers aggregates all controllers into a slice for the AppInternal.
func NewControllers(
	scanController *ScanController,
	statusController *StatusController,
	toggleController *ToggleController,
	clearController *ClearController,
	lookupController *LookupController,
	serveController *ServeController,
) *[]entities.Controller {
	return &[]entities.Controller{
		scanController,
		statusController,
		toggleController,
		clearController,
		lookupController,
		serveController,
	}
}
