package capture

import (
	"context"
	"sync"

	"github.com/pitchperfect/pitchperfect/internal/capture"
)

// MemoryRecorder buffers uploaded audio chunks for one practice session.
// Chunks arrive over HTTP from the presenter's browser; permission is granted
// by the client before the first chunk and reported through Grant.
type MemoryRecorder struct {
	mu        sync.Mutex
	sessionID string
	permitted bool
	running   bool
	chunks    [][]byte
}

func NewMemoryRecorder(practiceSessionID string) *MemoryRecorder {
	return &MemoryRecorder{sessionID: practiceSessionID}
}

// Grant marks the client-side microphone permission as obtained.
func (r *MemoryRecorder) Grant() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.permitted = true
}

func (r *MemoryRecorder) RequestPermission(_ context.Context) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.permitted, nil
}

func (r *MemoryRecorder) Start(_ context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.running = true
	return nil
}

func (r *MemoryRecorder) Stop() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.running = false
	return nil
}

// AppendChunk drops data received while capture is stopped, so chunks that
// race a pause do not leak into the recording.
func (r *MemoryRecorder) AppendChunk(data []byte) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.running || len(data) == 0 {
		return
	}
	buf := make([]byte, len(data))
	copy(buf, data)
	r.chunks = append(r.chunks, buf)
}

func (r *MemoryRecorder) Bytes() []byte {
	r.mu.Lock()
	defer r.mu.Unlock()
	total := 0
	for _, c := range r.chunks {
		total += len(c)
	}
	out := make([]byte, 0, total)
	for _, c := range r.chunks {
		out = append(out, c...)
	}
	return out
}

var _ capture.Recorder = (*MemoryRecorder)(nil)
