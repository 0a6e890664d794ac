package api

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/pitchperfect/pitchperfect/internal/agents"
	"github.com/pitchperfect/pitchperfect/internal/repository"
	"github.com/pitchperfect/pitchperfect/internal/session"
)

// stubRepo embeds the interface so only the methods a test exercises need
// implementations; anything else panics and fails the test loudly.
type stubRepo struct {
	repository.Repository
	presentation *repository.Presentation
	agent        *repository.Agent
	segments     []repository.TimelineSegment
}

func (s *stubRepo) CreatePresentation(_ context.Context, input repository.CreatePresentationInput) (*repository.Presentation, error) {
	return &repository.Presentation{ID: "pres-1", Title: input.Title, Description: input.Description}, nil
}

func (s *stubRepo) GetPresentation(_ context.Context, id string) (*repository.Presentation, error) {
	if s.presentation != nil && s.presentation.ID == id {
		return s.presentation, nil
	}
	return nil, nil
}

func (s *stubRepo) GetAgent(_ context.Context, id string) (*repository.Agent, error) {
	if s.agent != nil && s.agent.ID == id {
		return s.agent, nil
	}
	return nil, nil
}

func (s *stubRepo) GetPracticeSession(_ context.Context, _ string) (*repository.PracticeSession, error) {
	return nil, nil
}

func (s *stubRepo) ListTimelineSegments(_ context.Context, _ string) ([]repository.TimelineSegment, error) {
	return s.segments, nil
}

type stubManager struct {
	startErr   error
	started    []string
	paused     []string
	chunks     map[string][]byte
	snapshot   *session.Snapshot
	timeline   []session.Segment
	hasLive    bool
	finishErr  error
	processErr error
}

func (m *stubManager) CreateSession(_ context.Context, presentationID string) (*repository.PracticeSession, error) {
	return &repository.PracticeSession{ID: "sess-1", PresentationID: presentationID, Status: repository.PracticeSessionStatusCreated}, nil
}

func (m *stubManager) Start(_ context.Context, sessionID string, _ bool) (*session.StartResult, error) {
	if m.startErr != nil {
		return nil, m.startErr
	}
	m.started = append(m.started, sessionID)
	return &session.StartResult{}, nil
}

func (m *stubManager) Pause(sessionID string) error {
	m.paused = append(m.paused, sessionID)
	return nil
}

func (m *stubManager) Resume(_ context.Context, _ string) error { return nil }

func (m *stubManager) Finish(_ context.Context, _ string) ([]session.Segment, error) {
	return m.timeline, m.finishErr
}

func (m *stubManager) Process(_ context.Context, _ string) error { return m.processErr }

func (m *stubManager) Snapshot(_ string) (session.Snapshot, bool) {
	if m.snapshot == nil {
		return session.Snapshot{}, false
	}
	return *m.snapshot, true
}

func (m *stubManager) Timeline(_ string) ([]session.Segment, bool) {
	return m.timeline, m.hasLive
}

func (m *stubManager) AppendCaptureChunk(sessionID string, data []byte) error {
	if m.chunks == nil {
		m.chunks = make(map[string][]byte)
	}
	m.chunks[sessionID] = append(m.chunks[sessionID], data...)
	return nil
}

type stubProvisioner struct {
	setups  []string
	intents []string
	err     error
}

func (p *stubProvisioner) SetupVoice(_ context.Context, agentID string) error {
	if p.err != nil {
		return p.err
	}
	p.setups = append(p.setups, agentID)
	return nil
}

func (p *stubProvisioner) ApplyIntent(_ context.Context, agentID, _, intent string) error {
	if p.err != nil {
		return p.err
	}
	p.intents = append(p.intents, agentID+":"+intent)
	return nil
}

type stubIssuer struct{}

func (stubIssuer) GetSignedURL(_ context.Context, agentID string) (string, error) {
	return "wss://example.invalid/" + agentID, nil
}

func newTestRouter(repo *stubRepo, mgr *stubManager, prov *stubProvisioner) http.Handler {
	return NewRouter(NewHandlers(repo, mgr, prov, stubIssuer{}))
}

func doRequest(t *testing.T, router http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestCreatePresentation(t *testing.T) {
	router := newTestRouter(&stubRepo{}, &stubManager{}, &stubProvisioner{})

	rec := doRequest(t, router, http.MethodPost, "/presentations", `{"title":"Q3 pitch"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}

	rec = doRequest(t, router, http.MethodPost, "/presentations", `{"description":"no title"}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for missing title, got %d", rec.Code)
	}

	rec = doRequest(t, router, http.MethodGet, "/presentations", "")
	if rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405, got %d", rec.Code)
	}
}

func TestGetPresentation_NotFound(t *testing.T) {
	router := newTestRouter(&stubRepo{}, &stubManager{}, &stubProvisioner{})
	rec := doRequest(t, router, http.MethodGet, "/presentations/nope", "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestSetupVoiceRoutes(t *testing.T) {
	prov := &stubProvisioner{}
	router := newTestRouter(&stubRepo{}, &stubManager{}, prov)

	rec := doRequest(t, router, http.MethodPost, "/agents/agent-1/setup-voice", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if len(prov.setups) != 1 || prov.setups[0] != "agent-1" {
		t.Fatalf("unexpected setups: %v", prov.setups)
	}

	rec = doRequest(t, router, http.MethodPatch, "/agents/agent-1/setup-voice",
		`{"presentation_id":"pres-1","intent":"Push back on pricing."}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if len(prov.intents) != 1 || prov.intents[0] != "agent-1:Push back on pricing." {
		t.Fatalf("unexpected intents: %v", prov.intents)
	}
}

func TestSetupVoice_UnknownAgentIs404(t *testing.T) {
	prov := &stubProvisioner{err: fmt.Errorf("agent ghost: %w", agents.ErrAgentNotFound)}
	router := newTestRouter(&stubRepo{}, &stubManager{}, prov)

	rec := doRequest(t, router, http.MethodPost, "/agents/ghost/setup-voice", "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d: %s", rec.Code, rec.Body.String())
	}

	rec = doRequest(t, router, http.MethodPatch, "/agents/ghost/setup-voice",
		`{"presentation_id":"pres-1","intent":"x"}`)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestSignedURL(t *testing.T) {
	router := newTestRouter(&stubRepo{}, &stubManager{}, &stubProvisioner{})

	rec := doRequest(t, router, http.MethodGet, "/signed-url?agent_id=agent-1", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "wss://example.invalid/agent-1") {
		t.Fatalf("unexpected body: %s", rec.Body.String())
	}

	rec = doRequest(t, router, http.MethodGet, "/signed-url", "")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 without agent_id, got %d", rec.Code)
	}
}

func TestSessionLifecycleRoutes(t *testing.T) {
	mgr := &stubManager{}
	router := newTestRouter(&stubRepo{}, mgr, &stubProvisioner{})

	rec := doRequest(t, router, http.MethodPost, "/presentations/pres-1/sessions", "")
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}

	rec = doRequest(t, router, http.MethodPost, "/sessions/sess-1/start", `{"mic_granted":true}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if len(mgr.started) != 1 {
		t.Fatalf("start not routed: %v", mgr.started)
	}

	rec = doRequest(t, router, http.MethodPost, "/sessions/sess-1/pause", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if len(mgr.paused) != 1 {
		t.Fatalf("pause not routed: %v", mgr.paused)
	}

	rec = doRequest(t, router, http.MethodGet, "/sessions/sess-1/start", "")
	if rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405, got %d", rec.Code)
	}
}

func TestStartSession_PermissionDenied(t *testing.T) {
	mgr := &stubManager{startErr: session.ErrPermissionDenied}
	router := newTestRouter(&stubRepo{}, mgr, &stubProvisioner{})

	rec := doRequest(t, router, http.MethodPost, "/sessions/sess-1/start", "")
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", rec.Code)
	}
}

func TestFinishSession_InvalidState(t *testing.T) {
	mgr := &stubManager{finishErr: session.ErrInvalidState}
	router := newTestRouter(&stubRepo{}, mgr, &stubProvisioner{})

	rec := doRequest(t, router, http.MethodPost, "/sessions/sess-1/finish", "")
	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", rec.Code)
	}
}

func TestAppendChunk(t *testing.T) {
	mgr := &stubManager{}
	router := newTestRouter(&stubRepo{}, mgr, &stubProvisioner{})

	rec := doRequest(t, router, http.MethodPost, "/sessions/sess-1/chunks", "audio-bytes")
	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rec.Code)
	}
	if string(mgr.chunks["sess-1"]) != "audio-bytes" {
		t.Fatalf("chunk not delivered: %q", mgr.chunks["sess-1"])
	}
}

func TestGetSession_LiveSnapshotPreferred(t *testing.T) {
	mgr := &stubManager{snapshot: &session.Snapshot{Status: session.StatusRecording, ElapsedSeconds: 4.2}}
	router := newTestRouter(&stubRepo{}, mgr, &stubProvisioner{})

	rec := doRequest(t, router, http.MethodGet, "/sessions/sess-1", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"recording_status":"recording"`) {
		t.Fatalf("expected live snapshot, got %s", rec.Body.String())
	}
}

func TestGetTimeline_FallsBackToRepository(t *testing.T) {
	repo := &stubRepo{segments: []repository.TimelineSegment{
		{SessionID: "sess-1", SegmentIndex: 0, StartSeconds: 0, EndSeconds: 2, OwnerID: "user"},
	}}
	router := newTestRouter(repo, &stubManager{}, &stubProvisioner{})

	rec := doRequest(t, router, http.MethodGet, "/sessions/sess-1/timeline", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "timeline") {
		t.Fatalf("unexpected body: %s", rec.Body.String())
	}
}

func TestHealthz(t *testing.T) {
	router := newTestRouter(&stubRepo{}, &stubManager{}, &stubProvisioner{})
	rec := doRequest(t, router, http.MethodGet, "/healthz", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}
