package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/pitchperfect/pitchperfect/internal/capture"
	"github.com/pitchperfect/pitchperfect/internal/voice"
)

// Status is the lifecycle state of one practice session.
type Status string

const (
	StatusNotStarted Status = "not_started"
	StatusRecording  Status = "recording"
	StatusPaused     Status = "paused"
	StatusFinished   Status = "finished"
	StatusProcessing Status = "processing"
)

var (
	// ErrPermissionDenied is returned by Start when the presenter refused
	// microphone access. No state changes have happened; Start may be retried.
	ErrPermissionDenied = errors.New("microphone permission denied")
	// ErrInvalidState is returned when a lifecycle transition is requested
	// from a state that does not allow it.
	ErrInvalidState = errors.New("invalid state for requested transition")
)

// Participant is one audience-member agent attached to a practice session.
type Participant struct {
	ID       ParticipantID
	Identity voice.AgentIdentity

	session        voice.Session
	conversationID string
}

// TimestampEntry is the hand-off shape consumed by post-processing: a closed
// timeline span keyed by the platform conversation id, or "user" for spans
// the presenter owns.
type TimestampEntry struct {
	Start          float64 `json:"start"`
	End            float64 `json:"end"`
	ConversationID string  `json:"conversation_id"`
}

// PostProcessor receives the finalized session exactly once. capturedAudio
// is everything the local microphone recorder accumulated, in arrival order.
type PostProcessor interface {
	ProcessRecording(ctx context.Context, practiceSessionID string, timeline []TimestampEntry, conversationIDs []string, capturedAudio []byte) error
}

// StartResult reports the outcome of Start. Warnings carry per-participant
// connect failures; those participants simply never take part in arbitration.
type StartResult struct {
	Warnings []string
}

// Snapshot is the read-only view exposed for rendering.
type Snapshot struct {
	Status            Status  `json:"recording_status"`
	ElapsedSeconds    float64 `json:"elapsed_seconds"`
	CurrentSpeakerID  string  `json:"current_speaker_id,omitempty"`
	ConnectedAgents   int     `json:"connected_agents"`
	TimelineFinalized bool    `json:"timeline_finalized"`
}

// Controller coordinates one practice session: it owns the floor state, the
// timeline, the session clock and the participant sessions, and it is their
// single writer. Transport callbacks from every agent funnel into the one
// mutex-guarded handler, so two near-simultaneous speaking claims can never
// both be granted.
type Controller struct {
	id       string
	platform voice.Platform
	recorder capture.Recorder
	post     PostProcessor

	mu           sync.Mutex
	status       Status
	clock        *sessionClock
	floor        *floorState
	timeline     *timelineRecorder
	participants map[ParticipantID]*Participant
	order        []ParticipantID
	warnings     []string
	finalized    []Segment
}

// NewController builds a controller in the not-started state. Every practice
// session gets an independent instance; nothing here is process-wide.
func NewController(id string, participants []Participant, platform voice.Platform, recorder capture.Recorder, post PostProcessor) *Controller {
	byID := make(map[ParticipantID]*Participant, len(participants))
	order := make([]ParticipantID, 0, len(participants))
	ids := make([]ParticipantID, 0, len(participants))
	for i := range participants {
		p := participants[i]
		byID[p.ID] = &p
		order = append(order, p.ID)
		ids = append(ids, p.ID)
	}
	return &Controller{
		id:           id,
		platform:     platform,
		recorder:     recorder,
		post:         post,
		status:       StatusNotStarted,
		clock:        newSessionClock(nil),
		floor:        newFloorState(ids),
		timeline:     newTimelineRecorder(),
		participants: byID,
		order:        order,
	}
}

// GrantCapturePermission relays the client's microphone permission decision
// to recorders that accept one ahead of Start. Recorders that decide on their
// own ignore it.
func (c *Controller) GrantCapturePermission() {
	if g, ok := c.recorder.(interface{ Grant() }); ok {
		g.Grant()
	}
}

// Start requests microphone access, connects every participant concurrently,
// then begins the clock and the local capture. A denied permission aborts
// with no state change. Individual connect failures are tolerated and
// surfaced as warnings.
func (c *Controller) Start(ctx context.Context) (*StartResult, error) {
	c.mu.Lock()
	if c.status != StatusNotStarted {
		c.mu.Unlock()
		return nil, fmt.Errorf("start from %s: %w", c.status, ErrInvalidState)
	}
	c.mu.Unlock()

	granted, err := c.recorder.RequestPermission(ctx)
	if err != nil {
		return nil, fmt.Errorf("request microphone permission: %w", err)
	}
	if !granted {
		return nil, ErrPermissionDenied
	}

	var wg sync.WaitGroup
	for _, id := range c.order {
		p := c.participants[id]
		wg.Add(1)
		go func() {
			defer wg.Done()
			c.connectParticipant(ctx, p)
		}()
	}
	wg.Wait()

	if err := c.recorder.Start(ctx); err != nil {
		c.endAllSessions(ctx)
		return nil, fmt.Errorf("start local capture: %w", err)
	}

	c.mu.Lock()
	c.setStatusLocked(StatusRecording)
	c.clock.Start()
	warnings := append([]string(nil), c.warnings...)
	c.mu.Unlock()

	slog.Info("practice session started", "session_id", c.id, "participants", len(c.order), "connect_warnings", len(warnings))
	return &StartResult{Warnings: warnings}, nil
}

func (c *Controller) connectParticipant(ctx context.Context, p *Participant) {
	id := p.ID
	callbacks := voice.Callbacks{
		OnConnect: func() {
			slog.Debug("participant connected", "session_id", c.id, "participant_id", id)
		},
		OnDisconnect: func() { c.onDisconnect(id) },
		OnError: func(err error) {
			slog.Error("participant session error", "session_id", c.id, "participant_id", id, "error", err)
		},
		OnModeChange: func(mode voice.Mode) { c.onModeChange(id, mode) },
	}

	sess, err := c.platform.Connect(ctx, p.Identity, callbacks)
	if err != nil {
		c.mu.Lock()
		c.warnings = append(c.warnings, fmt.Sprintf("participant %s failed to connect: %v", id, err))
		c.mu.Unlock()
		slog.Warn("participant connect failed", "session_id", c.id, "participant_id", id, "error", err)
		return
	}

	c.mu.Lock()
	p.session = sess
	p.conversationID = sess.RemoteID()
	c.mu.Unlock()
	slog.Info("participant session established", "session_id", c.id, "participant_id", id, "conversation_id", sess.RemoteID())
}

// onModeChange is the single arbitration point: every mode-change event from
// every participant passes through here, serialized by the mutex, so the
// at-most-one-speaker invariant holds under any interleaving.
func (c *Controller) onModeChange(p ParticipantID, mode voice.Mode) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.status == StatusFinished || c.status == StatusProcessing {
		return
	}

	var changed bool
	switch mode {
	case voice.ModeSpeaking:
		changed = c.floor.handleSpeaking(p)
	case voice.ModeListening:
		changed = c.floor.handleListening(p)
	default:
		slog.Warn("dropping malformed mode-change event", "session_id", c.id, "participant_id", p, "mode", mode)
		metricStaleEvents.Inc()
		return
	}
	if !changed {
		return
	}
	c.applyFloorLocked()
}

// applyFloorLocked pushes the current floor decision to the volume gate and,
// while recording, to the timeline. Paused sessions keep arbitrating but
// record no boundaries; the timeline catches up on resume.
func (c *Controller) applyFloorLocked() {
	applyFloorState(c.sessionsLocked(), c.floor.currentSpeakerID)
	if c.status != StatusRecording {
		return
	}
	owner := UserOwner
	if c.floor.currentSpeakerID != "" {
		owner = string(c.floor.currentSpeakerID)
	}
	c.timeline.Transition(owner, c.clock.Seconds())
}

func (c *Controller) sessionsLocked() map[ParticipantID]voice.Session {
	sessions := make(map[ParticipantID]voice.Session, len(c.participants))
	for id, p := range c.participants {
		sessions[id] = p.session
	}
	return sessions
}

func (c *Controller) onDisconnect(id ParticipantID) {
	c.mu.Lock()
	defer c.mu.Unlock()
	p, ok := c.participants[id]
	if !ok || p.session == nil {
		return
	}
	p.session = nil
	slog.Info("participant disconnected", "session_id", c.id, "participant_id", id)
	if c.floor.currentSpeakerID == id {
		c.floor.reset()
		c.applyFloorLocked()
	}
}

// Pause freezes the clock and stops local capture. Arbitration keeps
// running so floor state never desynchronizes from the transport.
func (c *Controller) Pause() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.status != StatusRecording {
		return fmt.Errorf("pause from %s: %w", c.status, ErrInvalidState)
	}
	c.clock.Pause()
	if err := c.recorder.Stop(); err != nil {
		slog.Warn("failed to stop local capture on pause", "session_id", c.id, "error", err)
	}
	c.setStatusLocked(StatusPaused)
	return nil
}

// Resume restarts the clock and capture, and returns the floor to the user
// without touching the speaking history. If an agent owned the open segment
// when floor changes went unrecorded during the pause, the timeline closes
// that segment now, at the frozen reading.
func (c *Controller) Resume(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.status != StatusPaused {
		return fmt.Errorf("resume from %s: %w", c.status, ErrInvalidState)
	}
	if err := c.recorder.Start(ctx); err != nil {
		return fmt.Errorf("restart local capture: %w", err)
	}
	c.floor.reset()
	c.clock.Resume()
	c.setStatusLocked(StatusRecording)
	applyFloorState(c.sessionsLocked(), "")
	c.timeline.Transition(UserOwner, c.clock.Seconds())
	return nil
}

// Finish stops the clock and capture, ends every connected session and waits
// for all of them, then closes the final open segment. Teardown failures are
// logged and never block finalizing the timeline.
func (c *Controller) Finish(ctx context.Context) ([]Segment, error) {
	c.mu.Lock()
	if c.status != StatusRecording && c.status != StatusPaused {
		c.mu.Unlock()
		return nil, fmt.Errorf("finish from %s: %w", c.status, ErrInvalidState)
	}
	c.clock.Pause()
	// Clear the floor before tearing sessions down so no ending session is
	// left registered as the current speaker.
	c.floor.reset()
	c.setStatusLocked(StatusFinished)
	c.mu.Unlock()

	if err := c.recorder.Stop(); err != nil {
		slog.Warn("failed to stop local capture on finish", "session_id", c.id, "error", err)
	}

	c.endAllSessions(ctx)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.finalized = c.timeline.Finalize(c.clock.Seconds())
	slog.Info("practice session finished", "session_id", c.id, "duration_seconds", c.clock.Seconds(), "segments", len(c.finalized))
	return append([]Segment(nil), c.finalized...), nil
}

func (c *Controller) endAllSessions(ctx context.Context) {
	c.mu.Lock()
	type target struct {
		id   ParticipantID
		sess voice.Session
	}
	var targets []target
	for _, id := range c.order {
		p := c.participants[id]
		if p.session == nil {
			if p.conversationID != "" {
				slog.Info("participant already disconnected; skipping end", "session_id", c.id, "participant_id", id)
			}
			continue
		}
		targets = append(targets, target{id: id, sess: p.session})
		p.session = nil
	}
	c.mu.Unlock()

	var wg sync.WaitGroup
	for _, t := range targets {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := t.sess.End(ctx); err != nil {
				slog.Error("failed to end participant session", "session_id", c.id, "participant_id", t.id, "error", err)
			}
		}()
	}
	wg.Wait()
}

// Process hands the finalized timeline and the set of conversation ids to
// post-processing. One-way: the session stays in processing for the rest of
// its lifetime regardless of the pipeline outcome.
func (c *Controller) Process(ctx context.Context) error {
	c.mu.Lock()
	if c.status != StatusFinished {
		c.mu.Unlock()
		return fmt.Errorf("process from %s: %w", c.status, ErrInvalidState)
	}
	c.setStatusLocked(StatusProcessing)
	entries, conversationIDs := c.handoffLocked()
	c.mu.Unlock()

	return c.post.ProcessRecording(ctx, c.id, entries, conversationIDs, c.recorder.Bytes())
}

// handoffLocked translates timeline owners from participant ids to platform
// conversation ids. The translation happens here, at hand-off time, because
// conversation ids only exist once connects have completed.
func (c *Controller) handoffLocked() ([]TimestampEntry, []string) {
	entries := make([]TimestampEntry, 0, len(c.finalized))
	seen := make(map[string]struct{})
	var conversationIDs []string
	for _, seg := range c.finalized {
		conversationID := UserOwner
		if seg.Owner != UserOwner {
			p, ok := c.participants[ParticipantID(seg.Owner)]
			if !ok || p.conversationID == "" {
				slog.Warn("timeline segment owner has no conversation id; attributing to user", "session_id", c.id, "owner", seg.Owner)
			} else {
				conversationID = p.conversationID
				if _, dup := seen[conversationID]; !dup {
					seen[conversationID] = struct{}{}
					conversationIDs = append(conversationIDs, conversationID)
				}
			}
		}
		entries = append(entries, TimestampEntry{Start: seg.Start, End: seg.End, ConversationID: conversationID})
	}
	return entries, conversationIDs
}

// HandoffView returns the translated timeline and conversation id set
// without changing state. Empty before Finish.
func (c *Controller) HandoffView() ([]TimestampEntry, []string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.finalized == nil {
		return nil, nil
	}
	return c.handoffLocked()
}

// Snapshot returns the read-only state used for rendering.
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	connected := 0
	for _, p := range c.participants {
		if p.session != nil {
			connected++
		}
	}
	return Snapshot{
		Status:            c.status,
		ElapsedSeconds:    c.clock.Seconds(),
		CurrentSpeakerID:  string(c.floor.currentSpeakerID),
		ConnectedAgents:   connected,
		TimelineFinalized: c.finalized != nil,
	}
}

// Timeline returns the finalized timeline after Finish, or the segments
// closed so far while the session is still live.
func (c *Controller) Timeline() []Segment {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.finalized != nil {
		return append([]Segment(nil), c.finalized...)
	}
	return c.timeline.Closed()
}

// AppendCaptureChunk forwards one uploaded audio chunk to the local
// recorder, which discards it if capture is not running.
func (c *Controller) AppendCaptureChunk(data []byte) {
	c.recorder.AppendChunk(data)
}

func (c *Controller) setStatusLocked(next Status) {
	metricStateTransitions.WithLabelValues(string(c.status), string(next)).Inc()
	c.status = next
}

// withClock swaps the controller's time source. Test hook.
func (c *Controller) withClock(now func() time.Time) *Controller {
	c.clock = newSessionClock(now)
	return c
}
