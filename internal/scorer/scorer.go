package scorer

import "context"

// TranscriptLine is one numbered transcript segment submitted for scoring.
type TranscriptLine struct {
	ID   int
	Text string
}

// WeakArea points back at a transcript line the model judged weak.
type WeakArea struct {
	ID          int    `json:"id"`
	Explanation string `json:"explanation"`
}

// Scorer evaluates a practice transcript and returns its weak areas.
type Scorer interface {
	ScoreTranscript(ctx context.Context, lines []TranscriptLine) ([]WeakArea, error)
}
