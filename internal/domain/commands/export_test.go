package commands

import "time"

// SetBackgroundClock replaces the timestamp source of a BackgroundCommand for testing.
func SetBackgroundClock(it *BackgroundCommand, now func() time.Time) { it.now = now }
