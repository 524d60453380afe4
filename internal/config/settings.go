package config

// Settings is a snapshot of the runtime tunables stored in the settings
// table. The daemon reloads it every poll tick and pushes it into the
// session manager, so edits made through twctl take effect without a
// restart. All durations are in seconds.
type Settings struct {
	PollInterval          int
	IdleThreshold         int
	IdleGracePeriod       int
	SessionGracePeriod    int
	MinSessionDuration    int
	RetentionDays         int
	BlocksRetentionDays   int
	SessionsRetentionDays int
	WeekStart             string
	TrackingPaused        bool
	TrackingPausedAt      string
}

// DefaultSettings returns the values seeded into a fresh database.
func DefaultSettings() Settings {
	return Settings{
		PollInterval:          2,
		IdleThreshold:         120,
		IdleGracePeriod:       300,
		SessionGracePeriod:    120,
		MinSessionDuration:    60,
		RetentionDays:         90,
		BlocksRetentionDays:   90,
		SessionsRetentionDays: 0,
		WeekStart:             "monday",
	}
}
