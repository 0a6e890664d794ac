package voice

import "context"

// Mode is the speaking state a connected agent reports about itself.
type Mode string

const (
	ModeSpeaking  Mode = "speaking"
	ModeListening Mode = "listening"
)

// Gain is the output level applied to an agent's audio.
type Gain string

const (
	GainAudible Gain = "audible"
	GainMuted   Gain = "muted"
)

// AgentIdentity identifies an audience-member agent on the voice platform.
type AgentIdentity struct {
	AgentID     string
	DisplayName string
}

// Callbacks are push notifications delivered by the platform for one session.
// OnModeChange may fire from the transport's read goroutine at any time after
// Connect returns.
type Callbacks struct {
	OnConnect    func()
	OnDisconnect func()
	OnError      func(err error)
	OnModeChange func(mode Mode)
}

// Session is one live duplex connection to a voice agent.
type Session interface {
	// RemoteID returns the platform-assigned conversation identifier.
	// Only valid after Connect has returned.
	RemoteID() string
	SetGain(gain Gain) error
	End(ctx context.Context) error
}

// Platform establishes agent sessions and issues client credentials.
type Platform interface {
	Connect(ctx context.Context, identity AgentIdentity, callbacks Callbacks) (Session, error)
	GetSignedURL(ctx context.Context, agentID string) (string, error)
}

// VoicePreview is a generated voice candidate not yet in the voice library.
type VoicePreview struct {
	GeneratedVoiceID string
}

// ProvisionAgentInput describes a new audience-member agent to create.
type ProvisionAgentInput struct {
	Name         string
	SystemPrompt string
	VoiceID      string
}

// UpdateAgentInput patches an existing agent's prompt and knowledge base.
type UpdateAgentInput struct {
	PlatformAgentID   string
	SystemPrompt      string
	KnowledgeBaseURLs []string
}

// Admin covers the provisioning surface of the voice platform.
type Admin interface {
	CreateVoicePreview(ctx context.Context, description, sampleText string) (VoicePreview, error)
	CreateVoiceFromPreview(ctx context.Context, name, description, generatedVoiceID string) (voiceID string, err error)
	CreateAgent(ctx context.Context, input ProvisionAgentInput) (platformAgentID string, err error)
	UpdateAgent(ctx context.Context, input UpdateAgentInput) error
}

// AudioFetcher retrieves the recorded audio of a finished conversation.
type AudioFetcher interface {
	FetchConversationAudio(ctx context.Context, conversationID string) ([]byte, error)
}
