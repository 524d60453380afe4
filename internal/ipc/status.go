package ipc

// StatusPayload is the JSON document returned by GetStatus.
type StatusPayload struct {
	TrackingPaused bool             `json:"tracking_paused"`
	LastActivity   *ActivityPayload `json:"last_activity"`
	Session        *SessionPayload  `json:"session"`
}

// ActivityPayload mirrors the last observed sample.
type ActivityPayload struct {
	Timestamp   string  `json:"timestamp"`
	AppName     *string `json:"app_name"`
	BundleID    *string `json:"bundle_id"`
	WindowTitle *string `json:"window_title"`
	FilePath    *string `json:"file_path"`
	URL         *string `json:"url"`
	Idle        bool    `json:"idle"`
}

// SessionPayload describes the open session. GraceRemaining is only
// populated while the most recent sample was idle; a non-idle gap reports
// null.
type SessionPayload struct {
	ProjectID      int64  `json:"project_id"`
	TriggeredBy    string `json:"triggered_by"`
	Duration       int    `json:"duration"`
	GraceRemaining *int   `json:"grace_remaining"`
}
