package transcriber

import "context"

// Segment is one recognized span of the combined session recording, with
// offsets in seconds from the start of the recording.
type Segment struct {
	ID    int     `json:"id"`
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Text  string  `json:"text"`
}

// Transcriber turns a finished recording into timed transcript segments.
type Transcriber interface {
	Transcribe(ctx context.Context, audio []byte, language string) ([]Segment, error)
}
