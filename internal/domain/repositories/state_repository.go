package repositories

import (
	"context"

	"github.com/rios0rios0/npmdiffscan/internal/domain/entities"
)

// StateRepository is the persisted key-value state shared between the page
// scanner and the display commands: the enabled flag and the last scan stats.
type StateRepository interface {
	Stats(ctx context.Context) (entities.ExtensionStats, error)
	SaveStats(ctx context.Context, stats entities.ExtensionStats) error
	Enabled(ctx context.Context) (bool, error)
	SetEnabled(ctx context.Context, enabled bool) error
	// Clear resets every key to its default.
	Clear(ctx context.Context) error
}
