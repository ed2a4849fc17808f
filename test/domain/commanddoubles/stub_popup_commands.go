//go:build integration || unit || test

package commanddoubles //nolint:revive,staticcheck // Test package naming follows established project structure

import (
	"context"

	"github.com/rios0rios0/npmdiffscan/internal/domain/commands"
	"github.com/rios0rios0/npmdiffscan/internal/domain/entities"
)

// StubStatusCommand is a stub implementation of commands.Status.
type StubStatusCommand struct {
	Result     *commands.StatusResult
	ExecuteErr error
}

var _ commands.Status = (*StubStatusCommand)(nil)

func (s *StubStatusCommand) Execute(_ context.Context, _ *entities.Settings) (*commands.StatusResult, error) {
	return s.Result, s.ExecuteErr
}

// StubToggleCommand is a stub implementation of commands.Toggle.
type StubToggleCommand struct {
	ExecuteCallCount int
	Enabled          bool
	ExecuteErr       error
}

var _ commands.Toggle = (*StubToggleCommand)(nil)

func (s *StubToggleCommand) Execute(_ context.Context, _ *entities.Settings) (bool, error) {
	s.ExecuteCallCount++
	return s.Enabled, s.ExecuteErr
}

// StubLookupCommand is a stub implementation of commands.Lookup.
type StubLookupCommand struct {
	Version         string
	ExecuteErr      error
	LastPackageName string
}

var _ commands.Lookup = (*StubLookupCommand)(nil)

func (s *StubLookupCommand) Execute(_ context.Context, _ *entities.Settings, packageName string) (string, error) {
	s.LastPackageName = packageName
	return s.Version, s.ExecuteErr
}

// StubClearCommand is a stub implementation of commands.Clear.
type StubClearCommand struct {
	ExecuteCallCount int
	ExecuteErr       error
}

var _ commands.Clear = (*StubClearCommand)(nil)

func (s *StubClearCommand) Execute(_ context.Context, _ *entities.Settings) error {
	s.ExecuteCallCount++
	return s.ExecuteErr
}
