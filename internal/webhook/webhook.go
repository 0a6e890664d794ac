package webhook

import "context"

// HighlightReport is the notification sent after post-processing finishes.
type HighlightReport struct {
	SchemaVersion     int             `json:"schema_version"`
	PracticeSessionID string          `json:"practice_session_id"`
	PresentationID    string          `json:"presentation_id"`
	WeakAreas         []WeakAreaEntry `json:"weak_areas"`
}

// WeakAreaEntry is one flagged span of the session recording.
type WeakAreaEntry struct {
	StartSeconds float64 `json:"start_seconds"`
	EndSeconds   float64 `json:"end_seconds"`
	Transcript   string  `json:"transcript"`
	Explanation  string  `json:"explanation"`
}

type Sender interface {
	SendHighlights(ctx context.Context, report HighlightReport) error
}
