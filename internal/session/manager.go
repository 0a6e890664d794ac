package session

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/pitchperfect/pitchperfect/internal/capture"
	"github.com/pitchperfect/pitchperfect/internal/config"
	"github.com/pitchperfect/pitchperfect/internal/repository"
	"github.com/pitchperfect/pitchperfect/internal/voice"
)

// Manager owns the live practice sessions of this process: one Controller
// per practice session id, each with fully independent floor and timeline
// state. It also keeps the repository's view of a session in step with the
// controller's lifecycle.
type Manager struct {
	cfg         *config.Config
	repo        repository.Repository
	platform    voice.Platform
	newRecorder capture.RecorderFactory
	post        PostProcessor

	mu          sync.Mutex
	controllers map[string]*Controller
	autoFinish  map[string]*time.Timer
}

func NewManager(cfg *config.Config, repo repository.Repository, platform voice.Platform, newRecorder capture.RecorderFactory, post PostProcessor) *Manager {
	return &Manager{
		cfg:         cfg,
		repo:        repo,
		platform:    platform,
		newRecorder: newRecorder,
		post:        post,
		controllers: make(map[string]*Controller),
		autoFinish:  make(map[string]*time.Timer),
	}
}

// CreateSession creates a practice session for a presentation and builds its
// controller from the presentation's agent roster. Agents that are not fully
// provisioned yet are left out.
func (m *Manager) CreateSession(ctx context.Context, presentationID string) (*repository.PracticeSession, error) {
	agents, err := m.repo.ListAgentsByPresentation(ctx, presentationID)
	if err != nil {
		return nil, fmt.Errorf("list presentation agents: %w", err)
	}

	created, err := m.repo.CreatePracticeSession(ctx, repository.CreatePracticeSessionInput{PresentationID: presentationID})
	if err != nil {
		return nil, fmt.Errorf("create practice session: %w", err)
	}

	participants := make([]Participant, 0, len(agents))
	for _, a := range agents {
		if a.CreationStatus != repository.AgentCreationStatusReady || a.PlatformAgentID == "" {
			slog.Warn("skipping unprovisioned agent", "session_id", created.ID, "agent_id", a.ID, "creation_status", a.CreationStatus)
			continue
		}
		participants = append(participants, Participant{
			ID:       ParticipantID(a.ID),
			Identity: voice.AgentIdentity{AgentID: a.PlatformAgentID, DisplayName: a.Name},
		})
	}

	controller := NewController(created.ID, participants, m.platform, m.newRecorder(created.ID), m.post)

	m.mu.Lock()
	m.controllers[created.ID] = controller
	m.mu.Unlock()

	slog.Info("practice session created", "session_id", created.ID, "presentation_id", presentationID, "participants", len(participants))
	return created, nil
}

// Get returns the live controller for a practice session, or nil.
func (m *Manager) Get(sessionID string) *Controller {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.controllers[sessionID]
}

// Start begins a created session. micGranted is the browser's microphone
// permission decision; a false value aborts before any agent is connected.
func (m *Manager) Start(ctx context.Context, sessionID string, micGranted bool) (*StartResult, error) {
	c := m.Get(sessionID)
	if c == nil {
		return nil, fmt.Errorf("unknown practice session %q", sessionID)
	}
	if micGranted {
		c.GrantCapturePermission()
	}
	result, err := c.Start(ctx)
	if err != nil {
		return nil, err
	}
	if err := m.repo.UpdatePracticeSessionStarted(ctx, sessionID, time.Now()); err != nil {
		slog.Error("failed to mark practice session started", "session_id", sessionID, "error", err)
	}
	m.armAutoFinish(sessionID)
	return result, nil
}

func (m *Manager) Pause(sessionID string) error {
	c := m.Get(sessionID)
	if c == nil {
		return fmt.Errorf("unknown practice session %q", sessionID)
	}
	return c.Pause()
}

func (m *Manager) Resume(ctx context.Context, sessionID string) error {
	c := m.Get(sessionID)
	if c == nil {
		return fmt.Errorf("unknown practice session %q", sessionID)
	}
	return c.Resume(ctx)
}

// Finish finalizes the live timeline and persists it.
func (m *Manager) Finish(ctx context.Context, sessionID string) ([]Segment, error) {
	c := m.Get(sessionID)
	if c == nil {
		return nil, fmt.Errorf("unknown practice session %q", sessionID)
	}
	timeline, err := c.Finish(ctx)
	if err != nil {
		return nil, err
	}
	m.disarmAutoFinish(sessionID)

	entries, _ := c.HandoffView()
	for i, seg := range timeline {
		input := repository.InsertTimelineSegmentInput{
			SessionID:    sessionID,
			SegmentIndex: i,
			StartSeconds: seg.Start,
			EndSeconds:   seg.End,
			OwnerID:      seg.Owner,
		}
		if i < len(entries) {
			input.ConversationID = entries[i].ConversationID
		}
		if err := m.repo.InsertTimelineSegment(ctx, input); err != nil {
			slog.Error("failed to persist timeline segment", "session_id", sessionID, "segment_index", i, "error", err)
		}
	}
	if err := m.repo.CompletePracticeSession(ctx, repository.CompletePracticeSessionInput{
		SessionID: sessionID,
		EndedAt:   time.Now(),
	}); err != nil {
		slog.Error("failed to mark practice session finished", "session_id", sessionID, "error", err)
	}
	return timeline, nil
}

// Process hands the session off to post-processing and, on success, marks it
// processed and retires the controller.
func (m *Manager) Process(ctx context.Context, sessionID string) error {
	c := m.Get(sessionID)
	if c == nil {
		return fmt.Errorf("unknown practice session %q", sessionID)
	}
	if err := c.Process(ctx); err != nil {
		return err
	}
	if err := m.repo.UpdatePracticeSessionStatus(ctx, sessionID, repository.PracticeSessionStatusProcessed); err != nil {
		slog.Error("failed to mark practice session processed", "session_id", sessionID, "error", err)
	}
	m.mu.Lock()
	delete(m.controllers, sessionID)
	m.mu.Unlock()
	return nil
}

// Snapshot returns the live view of a session, if its controller is still
// resident.
func (m *Manager) Snapshot(sessionID string) (Snapshot, bool) {
	c := m.Get(sessionID)
	if c == nil {
		return Snapshot{}, false
	}
	return c.Snapshot(), true
}

// Timeline returns the closed segments recorded so far.
func (m *Manager) Timeline(sessionID string) ([]Segment, bool) {
	c := m.Get(sessionID)
	if c == nil {
		return nil, false
	}
	return c.Timeline(), true
}

func (m *Manager) AppendCaptureChunk(sessionID string, data []byte) error {
	c := m.Get(sessionID)
	if c == nil {
		return fmt.Errorf("unknown practice session %q", sessionID)
	}
	c.AppendCaptureChunk(data)
	return nil
}

func (m *Manager) armAutoFinish(sessionID string) {
	limit := time.Duration(m.cfg.MaxSessionDurationMin) * time.Minute
	m.mu.Lock()
	defer m.mu.Unlock()
	m.autoFinish[sessionID] = time.AfterFunc(limit, func() {
		slog.Warn("practice session hit the duration limit; finishing", "session_id", sessionID, "limit", limit)
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if _, err := m.Finish(ctx, sessionID); err != nil {
			slog.Error("auto-finish failed", "session_id", sessionID, "error", err)
		}
	})
}

func (m *Manager) disarmAutoFinish(sessionID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if t, ok := m.autoFinish[sessionID]; ok {
		t.Stop()
		delete(m.autoFinish, sessionID)
	}
}
