package capture

import "context"

// Recorder is the local-capture collaborator for one practice session: it
// answers whether the presenter granted microphone access and accumulates
// the chunked audio the client records while the session is live.
type Recorder interface {
	RequestPermission(ctx context.Context) (bool, error)
	Start(ctx context.Context) error
	Stop() error
	// AppendChunk adds one chunk of recorded audio. Chunks delivered while
	// the recorder is stopped are discarded.
	AppendChunk(data []byte)
	// Bytes returns everything captured so far, in arrival order.
	Bytes() []byte
}

// RecorderFactory builds an independent Recorder per practice session.
type RecorderFactory func(practiceSessionID string) Recorder
