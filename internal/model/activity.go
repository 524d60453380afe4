package model

import "time"

// Activity is one polled snapshot of the foreground application, window and
// idle state. Descriptive fields are nil when the sampler could not read
// them; that is normal, not an error.
type Activity struct {
	Timestamp   time.Time
	AppName     *string
	BundleID    *string
	WindowTitle *string
	FilePath    *string
	URL         *string
	Idle        bool
}

// Str returns a *string for literal activity values, mostly in tests and
// when building an activity from CLI flags.
func Str(s string) *string {
	return &s
}
