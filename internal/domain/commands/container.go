package commands

import (
	"go.uber.org/dig"
)

// RegisterProviders registers all command providers with the DIG container.
func RegisterProviders(container *dig.Container) error {
	// Register command constructors
	constructors := []any{
		NewScanCommand,
		NewStatusCommand,
		NewToggleCommand,
		NewClearCommand,
		NewLookupCommand,
		NewServeCommand,
	}
	for _, constructor := range constructors {
		if err := container.Provide(constructor); err != nil {
			return err
		}
	}

	// Bind interfaces to implementations
	bindings := []any{
		func(impl *ScanCommand) Scan { return impl },
		func(impl *StatusCommand) Status { return impl },
		func(impl *ToggleCommand) Toggle { return impl },
		func(impl *ClearCommand) Clear { return impl },
		func(impl *LookupCommand) Lookup { return impl },
		func(impl *ServeCommand) Serve { return impl },
	}
	for _, binding := range bindings {
		if err := container.Provide(binding); err != nil {
			return err
		}
	}

	return nil
}
