package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/pitchperfect/pitchperfect/internal/agents"
	"github.com/pitchperfect/pitchperfect/internal/repository"
	"github.com/pitchperfect/pitchperfect/internal/session"
)

// maxChunkBytes bounds one capture upload.
const maxChunkBytes = 4 << 20

// SessionManager is the slice of the session manager the API drives.
type SessionManager interface {
	CreateSession(ctx context.Context, presentationID string) (*repository.PracticeSession, error)
	Start(ctx context.Context, sessionID string, micGranted bool) (*session.StartResult, error)
	Pause(sessionID string) error
	Resume(ctx context.Context, sessionID string) error
	Finish(ctx context.Context, sessionID string) ([]session.Segment, error)
	Process(ctx context.Context, sessionID string) error
	Snapshot(sessionID string) (session.Snapshot, bool)
	Timeline(sessionID string) ([]session.Segment, bool)
	AppendCaptureChunk(sessionID string, data []byte) error
}

// AgentProvisioner covers agent setup operations.
type AgentProvisioner interface {
	SetupVoice(ctx context.Context, agentID string) error
	ApplyIntent(ctx context.Context, agentID, presentationID, intent string) error
}

// SignedURLIssuer mints client connection credentials for an agent.
type SignedURLIssuer interface {
	GetSignedURL(ctx context.Context, agentID string) (string, error)
}

type Handlers struct {
	repo        repository.Repository
	sessions    SessionManager
	provisioner AgentProvisioner
	issuer      SignedURLIssuer
}

func NewHandlers(repo repository.Repository, sessions SessionManager, provisioner AgentProvisioner, issuer SignedURLIssuer) *Handlers {
	return &Handlers{
		repo:        repo,
		sessions:    sessions,
		provisioner: provisioner,
		issuer:      issuer,
	}
}

func (h *Handlers) HandleCreatePresentation(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Title       string `json:"title"`
		Description string `json:"description"`
	}
	if !decodeJSON(w, r, &body) {
		return
	}
	if body.Title == "" {
		http.Error(w, "title is required", http.StatusBadRequest)
		return
	}
	p, err := h.repo.CreatePresentation(r.Context(), repository.CreatePresentationInput{
		Title:       body.Title,
		Description: body.Description,
	})
	if err != nil {
		serverError(w, "create presentation", err)
		return
	}
	writeJSON(w, http.StatusCreated, p)
}

func (h *Handlers) HandleGetPresentation(w http.ResponseWriter, r *http.Request, id string) {
	p, err := h.repo.GetPresentation(r.Context(), id)
	if err != nil {
		serverError(w, "get presentation", err)
		return
	}
	if p == nil {
		http.NotFound(w, r)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (h *Handlers) HandleDeletePresentation(w http.ResponseWriter, r *http.Request, id string) {
	if err := h.repo.DeletePresentation(r.Context(), id); err != nil {
		serverError(w, "delete presentation", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handlers) HandleAddPresentationFile(w http.ResponseWriter, r *http.Request, id string) {
	var body struct {
		Name string `json:"name"`
		URL  string `json:"url"`
	}
	if !decodeJSON(w, r, &body) {
		return
	}
	if body.Name == "" || body.URL == "" {
		http.Error(w, "name and url are required", http.StatusBadRequest)
		return
	}
	f, err := h.repo.AddPresentationFile(r.Context(), repository.AddPresentationFileInput{
		PresentationID: id,
		Name:           body.Name,
		URL:            body.URL,
	})
	if err != nil {
		serverError(w, "add presentation file", err)
		return
	}
	writeJSON(w, http.StatusCreated, f)
}

func (h *Handlers) HandleListPresentationFiles(w http.ResponseWriter, r *http.Request, id string) {
	files, err := h.repo.ListPresentationFiles(r.Context(), id)
	if err != nil {
		serverError(w, "list presentation files", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"files": files})
}

func (h *Handlers) HandleListPresentationAgents(w http.ResponseWriter, r *http.Request, id string) {
	agents, err := h.repo.ListAgentsByPresentation(r.Context(), id)
	if err != nil {
		serverError(w, "list presentation agents", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"agents": agents})
}

func (h *Handlers) HandleLinkAgent(w http.ResponseWriter, r *http.Request, id string) {
	var body struct {
		AgentID string `json:"agent_id"`
	}
	if !decodeJSON(w, r, &body) {
		return
	}
	if body.AgentID == "" {
		http.Error(w, "agent_id is required", http.StatusBadRequest)
		return
	}
	if err := h.repo.LinkAgentToPresentation(r.Context(), id, body.AgentID); err != nil {
		serverError(w, "link agent", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handlers) HandleCreateAgent(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Name             string `json:"name"`
		Persona          string `json:"persona"`
		VoiceDescription string `json:"voice_description"`
	}
	if !decodeJSON(w, r, &body) {
		return
	}
	if body.Name == "" || body.Persona == "" || body.VoiceDescription == "" {
		http.Error(w, "name, persona and voice_description are required", http.StatusBadRequest)
		return
	}
	a, err := h.repo.CreateAgent(r.Context(), repository.CreateAgentInput{
		Name:             body.Name,
		Persona:          body.Persona,
		VoiceDescription: body.VoiceDescription,
	})
	if err != nil {
		serverError(w, "create agent", err)
		return
	}
	writeJSON(w, http.StatusCreated, a)
}

func (h *Handlers) HandleGetAgent(w http.ResponseWriter, r *http.Request, id string) {
	a, err := h.repo.GetAgent(r.Context(), id)
	if err != nil {
		serverError(w, "get agent", err)
		return
	}
	if a == nil {
		http.NotFound(w, r)
		return
	}
	writeJSON(w, http.StatusOK, a)
}

func (h *Handlers) HandleSetupVoice(w http.ResponseWriter, r *http.Request, id string) {
	if err := h.provisioner.SetupVoice(r.Context(), id); err != nil {
		if errors.Is(err, agents.ErrAgentNotFound) {
			http.Error(w, "agent not found", http.StatusNotFound)
			return
		}
		serverError(w, "setup voice", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

func (h *Handlers) HandleApplyIntent(w http.ResponseWriter, r *http.Request, id string) {
	var body struct {
		PresentationID string `json:"presentation_id"`
		Intent         string `json:"intent"`
	}
	if !decodeJSON(w, r, &body) {
		return
	}
	if body.PresentationID == "" {
		http.Error(w, "presentation_id is required", http.StatusBadRequest)
		return
	}
	if err := h.provisioner.ApplyIntent(r.Context(), id, body.PresentationID, body.Intent); err != nil {
		if errors.Is(err, agents.ErrAgentNotFound) {
			http.Error(w, "agent not found", http.StatusNotFound)
			return
		}
		serverError(w, "apply intent", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

func (h *Handlers) HandleSignedURL(w http.ResponseWriter, r *http.Request) {
	agentID := r.URL.Query().Get("agent_id")
	if agentID == "" {
		http.Error(w, "agent_id is required", http.StatusBadRequest)
		return
	}
	u, err := h.issuer.GetSignedURL(r.Context(), agentID)
	if err != nil {
		serverError(w, "get signed url", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"signed_url": u})
}

func (h *Handlers) HandleCreateSession(w http.ResponseWriter, r *http.Request, presentationID string) {
	s, err := h.sessions.CreateSession(r.Context(), presentationID)
	if err != nil {
		serverError(w, "create practice session", err)
		return
	}
	writeJSON(w, http.StatusCreated, s)
}

func (h *Handlers) HandleStartSession(w http.ResponseWriter, r *http.Request, id string) {
	var body struct {
		MicGranted bool `json:"mic_granted"`
	}
	// An absent body means the client never asked for the microphone.
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil && !errors.Is(err, io.EOF) {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	result, err := h.sessions.Start(r.Context(), id, body.MicGranted)
	if err != nil {
		switch {
		case errors.Is(err, session.ErrPermissionDenied):
			http.Error(w, err.Error(), http.StatusForbidden)
		case errors.Is(err, session.ErrInvalidState):
			http.Error(w, err.Error(), http.StatusConflict)
		default:
			serverError(w, "start practice session", err)
		}
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true, "warnings": result.Warnings})
}

func (h *Handlers) HandlePauseSession(w http.ResponseWriter, r *http.Request, id string) {
	h.lifecycle(w, "pause practice session", h.sessions.Pause(id))
}

func (h *Handlers) HandleResumeSession(w http.ResponseWriter, r *http.Request, id string) {
	h.lifecycle(w, "resume practice session", h.sessions.Resume(r.Context(), id))
}

func (h *Handlers) HandleFinishSession(w http.ResponseWriter, r *http.Request, id string) {
	timeline, err := h.sessions.Finish(r.Context(), id)
	if err != nil {
		if errors.Is(err, session.ErrInvalidState) {
			http.Error(w, err.Error(), http.StatusConflict)
			return
		}
		serverError(w, "finish practice session", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true, "timeline": timeline})
}

func (h *Handlers) HandleProcessSession(w http.ResponseWriter, r *http.Request, id string) {
	h.lifecycle(w, "process practice session", h.sessions.Process(r.Context(), id))
}

func (h *Handlers) HandleGetSession(w http.ResponseWriter, r *http.Request, id string) {
	if snap, ok := h.sessions.Snapshot(id); ok {
		writeJSON(w, http.StatusOK, snap)
		return
	}
	s, err := h.repo.GetPracticeSession(r.Context(), id)
	if err != nil {
		serverError(w, "get practice session", err)
		return
	}
	if s == nil {
		http.NotFound(w, r)
		return
	}
	writeJSON(w, http.StatusOK, s)
}

func (h *Handlers) HandleGetTimeline(w http.ResponseWriter, r *http.Request, id string) {
	if timeline, ok := h.sessions.Timeline(id); ok {
		writeJSON(w, http.StatusOK, map[string]any{"timeline": timeline})
		return
	}
	segments, err := h.repo.ListTimelineSegments(r.Context(), id)
	if err != nil {
		serverError(w, "list timeline segments", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"timeline": segments})
}

func (h *Handlers) HandleListWeakAreas(w http.ResponseWriter, r *http.Request, id string) {
	areas, err := h.repo.ListWeakAreas(r.Context(), id)
	if err != nil {
		serverError(w, "list weak areas", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"weak_areas": areas})
}

func (h *Handlers) HandleAppendChunk(w http.ResponseWriter, r *http.Request, id string) {
	data, err := io.ReadAll(io.LimitReader(r.Body, maxChunkBytes))
	if err != nil {
		http.Error(w, "failed to read chunk", http.StatusBadRequest)
		return
	}
	if err := h.sessions.AppendCaptureChunk(id, data); err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handlers) lifecycle(w http.ResponseWriter, op string, err error) {
	if err != nil {
		if errors.Is(err, session.ErrInvalidState) {
			http.Error(w, err.Error(), http.StatusConflict)
			return
		}
		serverError(w, op, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Warn("failed to encode response", "error", err)
	}
}

func serverError(w http.ResponseWriter, op string, err error) {
	slog.Error("request failed", "op", op, "error", err)
	http.Error(w, "internal server error", http.StatusInternalServerError)
}
