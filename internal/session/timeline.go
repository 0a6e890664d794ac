package session

import (
	"math"
	"time"
)

// clockResolution is the granularity of all timeline readings.
const clockResolution = 0.1

// sessionClock is a pausable wall clock measuring seconds since the practice
// session started recording. While paused it keeps returning the reading at
// which it was frozen; resuming continues from that reading rather than
// resetting, so segment timestamps never jump backwards.
type sessionClock struct {
	now         func() time.Time
	accumulated time.Duration
	startedAt   time.Time
	running     bool
}

func newSessionClock(now func() time.Time) *sessionClock {
	if now == nil {
		now = time.Now
	}
	return &sessionClock{now: now}
}

func (c *sessionClock) Start() {
	if c.running {
		return
	}
	c.startedAt = c.now()
	c.running = true
}

func (c *sessionClock) Pause() {
	if !c.running {
		return
	}
	c.accumulated += c.now().Sub(c.startedAt)
	c.running = false
}

func (c *sessionClock) Resume() {
	c.Start()
}

// Seconds returns the elapsed reading rounded to the clock resolution.
func (c *sessionClock) Seconds() float64 {
	elapsed := c.accumulated
	if c.running {
		elapsed += c.now().Sub(c.startedAt)
	}
	return math.Round(elapsed.Seconds()/clockResolution) * clockResolution
}

// Segment is one closed span of the session timeline attributed to a single
// speaker: a participant id or UserOwner.
type Segment struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Owner string  `json:"owner_id"`
}

// timelineRecorder translates floor transitions into a contiguous,
// non-overlapping segment sequence. The first segment opens at 0 owned by
// the user, because no agent can be speaking before any connection
// completes. Like floorState it is guarded by the controller's mutex.
type timelineRecorder struct {
	closed    []Segment
	openOwner string
	openStart float64
	finalized bool
}

func newTimelineRecorder() *timelineRecorder {
	return &timelineRecorder{openOwner: UserOwner}
}

// Transition closes the open segment at the given reading and opens a new
// one for owner at the same reading. A transition to the owner of the open
// segment is a no-op, which guards against duplicate or out-of-order
// mode-change delivery.
func (r *timelineRecorder) Transition(owner string, at float64) {
	if r.finalized || owner == r.openOwner {
		return
	}
	r.closed = append(r.closed, Segment{Start: r.openStart, End: at, Owner: r.openOwner})
	r.openOwner = owner
	r.openStart = at
}

// Finalize closes the still-open segment at the final clock reading and
// returns the complete timeline. Further transitions are ignored.
func (r *timelineRecorder) Finalize(at float64) []Segment {
	if !r.finalized {
		r.closed = append(r.closed, Segment{Start: r.openStart, End: at, Owner: r.openOwner})
		r.finalized = true
	}
	out := make([]Segment, len(r.closed))
	copy(out, r.closed)
	return out
}

// Closed returns a copy of the segments closed so far, open segment excluded.
func (r *timelineRecorder) Closed() []Segment {
	out := make([]Segment, len(r.closed))
	copy(out, r.closed)
	return out
}

// OpenOwner reports who owns the currently open segment.
func (r *timelineRecorder) OpenOwner() string {
	return r.openOwner
}
