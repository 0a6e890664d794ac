package repository

import "time"

type PracticeSessionStatus string

const (
	PracticeSessionStatusCreated   PracticeSessionStatus = "created"
	PracticeSessionStatusRecording PracticeSessionStatus = "recording"
	PracticeSessionStatusFinished  PracticeSessionStatus = "finished"
	PracticeSessionStatusProcessed PracticeSessionStatus = "processed"
)

type AgentCreationStatus string

const (
	AgentCreationStatusPending          AgentCreationStatus = "pending"
	AgentCreationStatusSettingUpVoice   AgentCreationStatus = "setting_up_voice"
	AgentCreationStatusSettingUpPersona AgentCreationStatus = "setting_up_persona"
	AgentCreationStatusReady            AgentCreationStatus = "ready"
)

type Presentation struct {
	ID          string
	Title       string
	Description string
	CreatedAt   time.Time
}

type PresentationFile struct {
	ID             string
	PresentationID string
	Name           string
	URL            string
	CreatedAt      time.Time
}

type Agent struct {
	ID               string
	Name             string
	Persona          string
	VoiceDescription string
	PlatformAgentID  string
	PlatformVoiceID  string
	SystemPrompt     string
	CreationStatus   AgentCreationStatus
	CreatedAt        time.Time
}

type PracticeSession struct {
	ID             string
	PresentationID string
	Status         PracticeSessionStatus
	StartedAt      *time.Time
	EndedAt        *time.Time
	CreatedAt      time.Time
}

type TimelineSegment struct {
	ID             string
	SessionID      string
	SegmentIndex   int
	StartSeconds   float64
	EndSeconds     float64
	OwnerID        string
	ConversationID string
}

type WeakArea struct {
	ID           string
	SessionID    string
	StartSeconds float64
	EndSeconds   float64
	Transcript   string
	Explanation  string
	Clip         []byte
	CreatedAt    time.Time
}
