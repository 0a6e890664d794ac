package repository

import (
	"context"
	"time"
)

type CreatePresentationInput struct {
	Title       string
	Description string
}

type AddPresentationFileInput struct {
	PresentationID string
	Name           string
	URL            string
}

type CreateAgentInput struct {
	Name             string
	Persona          string
	VoiceDescription string
}

type UpdateAgentProvisioningInput struct {
	AgentID         string
	PlatformAgentID string
	PlatformVoiceID string
	SystemPrompt    string
	CreationStatus  AgentCreationStatus
}

type UpdateAgentPersonaInput struct {
	AgentID      string
	Persona      string
	SystemPrompt string
}

type CreatePracticeSessionInput struct {
	PresentationID string
}

type CompletePracticeSessionInput struct {
	SessionID string
	EndedAt   time.Time
}

type InsertTimelineSegmentInput struct {
	SessionID      string
	SegmentIndex   int
	StartSeconds   float64
	EndSeconds     float64
	OwnerID        string
	ConversationID string
}

type InsertWeakAreaInput struct {
	SessionID    string
	StartSeconds float64
	EndSeconds   float64
	Transcript   string
	Explanation  string
	Clip         []byte
}

type PresentationRepository interface {
	CreatePresentation(ctx context.Context, input CreatePresentationInput) (*Presentation, error)
	GetPresentation(ctx context.Context, id string) (*Presentation, error)
	DeletePresentation(ctx context.Context, id string) error
	AddPresentationFile(ctx context.Context, input AddPresentationFileInput) (*PresentationFile, error)
	ListPresentationFiles(ctx context.Context, presentationID string) ([]PresentationFile, error)
	LinkAgentToPresentation(ctx context.Context, presentationID, agentID string) error
	ListAgentsByPresentation(ctx context.Context, presentationID string) ([]Agent, error)
}

type AgentRepository interface {
	CreateAgent(ctx context.Context, input CreateAgentInput) (*Agent, error)
	GetAgent(ctx context.Context, id string) (*Agent, error)
	UpdateAgentProvisioning(ctx context.Context, input UpdateAgentProvisioningInput) error
	UpdateAgentPersona(ctx context.Context, input UpdateAgentPersonaInput) error
}

type PracticeSessionRepository interface {
	CreatePracticeSession(ctx context.Context, input CreatePracticeSessionInput) (*PracticeSession, error)
	GetPracticeSession(ctx context.Context, id string) (*PracticeSession, error)
	UpdatePracticeSessionStarted(ctx context.Context, sessionID string, startedAt time.Time) error
	UpdatePracticeSessionStatus(ctx context.Context, sessionID string, status PracticeSessionStatus) error
	CompletePracticeSession(ctx context.Context, input CompletePracticeSessionInput) error
	InsertTimelineSegment(ctx context.Context, input InsertTimelineSegmentInput) error
	ListTimelineSegments(ctx context.Context, sessionID string) ([]TimelineSegment, error)
}

type HighlightRepository interface {
	InsertWeakArea(ctx context.Context, input InsertWeakAreaInput) (*WeakArea, error)
	ListWeakAreas(ctx context.Context, sessionID string) ([]WeakArea, error)
}

type Repository interface {
	PresentationRepository
	AgentRepository
	PracticeSessionRepository
	HighlightRepository
}
