package agents

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/pitchperfect/pitchperfect/internal/repository"
	"github.com/pitchperfect/pitchperfect/internal/voice"
)

// ErrAgentNotFound is returned when the requested agent does not exist.
var ErrAgentNotFound = errors.New("agent not found")

// Store is the slice of the repository provisioning reads and writes.
type Store interface {
	GetAgent(ctx context.Context, id string) (*repository.Agent, error)
	UpdateAgentProvisioning(ctx context.Context, input repository.UpdateAgentProvisioningInput) error
	UpdateAgentPersona(ctx context.Context, input repository.UpdateAgentPersonaInput) error
	ListPresentationFiles(ctx context.Context, presentationID string) ([]repository.PresentationFile, error)
}

// Service provisions audience-member agents on the voice platform and keeps
// the repository's view of each agent's creation status current.
type Service struct {
	repo  Store
	admin voice.Admin
}

func NewService(repo Store, admin voice.Admin) *Service {
	return &Service{repo: repo, admin: admin}
}

// SetupVoice walks an agent through provisioning: generate a voice preview
// from its voice description, promote the preview into the voice library,
// then create the platform agent with the persona system prompt. Status moves
// through setting_up_voice and setting_up_persona so a client polling the
// agent can render progress.
func (s *Service) SetupVoice(ctx context.Context, agentID string) error {
	agent, err := s.repo.GetAgent(ctx, agentID)
	if err != nil {
		return fmt.Errorf("load agent: %w", err)
	}
	if agent == nil {
		return fmt.Errorf("agent %s: %w", agentID, ErrAgentNotFound)
	}
	if agent.CreationStatus == repository.AgentCreationStatusReady {
		return fmt.Errorf("agent %s is already provisioned", agentID)
	}

	if err := s.updateStatus(ctx, agent, repository.AgentCreationStatusSettingUpVoice, "", "", ""); err != nil {
		return err
	}

	preview, err := s.admin.CreateVoicePreview(ctx, agent.VoiceDescription, voiceSampleText)
	if err != nil {
		return fmt.Errorf("create voice preview: %w", err)
	}
	voiceID, err := s.admin.CreateVoiceFromPreview(ctx, agent.Name+"_voice", agent.VoiceDescription, preview.GeneratedVoiceID)
	if err != nil {
		return fmt.Errorf("create voice from preview: %w", err)
	}

	systemPrompt := PersonaSystemPrompt(agent.Persona)
	if err := s.updateStatus(ctx, agent, repository.AgentCreationStatusSettingUpPersona, "", voiceID, systemPrompt); err != nil {
		return err
	}

	platformAgentID, err := s.admin.CreateAgent(ctx, voice.ProvisionAgentInput{
		Name:         agent.Name,
		SystemPrompt: systemPrompt,
		VoiceID:      voiceID,
	})
	if err != nil {
		return fmt.Errorf("create platform agent: %w", err)
	}

	if err := s.updateStatus(ctx, agent, repository.AgentCreationStatusReady, platformAgentID, voiceID, systemPrompt); err != nil {
		return err
	}
	slog.Info("agent provisioned", "agent_id", agentID, "platform_agent_id", platformAgentID, "voice_id", voiceID)
	return nil
}

// ApplyIntent rewrites a provisioned agent's prompt around a session intent
// and refreshes its knowledge base from the presentation's files. An empty
// intent restores the base persona prompt.
func (s *Service) ApplyIntent(ctx context.Context, agentID, presentationID, intent string) error {
	agent, err := s.repo.GetAgent(ctx, agentID)
	if err != nil {
		return fmt.Errorf("load agent: %w", err)
	}
	if agent == nil {
		return fmt.Errorf("agent %s: %w", agentID, ErrAgentNotFound)
	}
	if agent.CreationStatus != repository.AgentCreationStatusReady || agent.PlatformAgentID == "" {
		return fmt.Errorf("agent %s is not provisioned yet", agentID)
	}

	files, err := s.repo.ListPresentationFiles(ctx, presentationID)
	if err != nil {
		return fmt.Errorf("list presentation files: %w", err)
	}
	urls := make([]string, 0, len(files))
	for _, f := range files {
		urls = append(urls, f.URL)
	}

	prompt := WithIntent(agent.SystemPrompt, intent)
	if err := s.admin.UpdateAgent(ctx, voice.UpdateAgentInput{
		PlatformAgentID:   agent.PlatformAgentID,
		SystemPrompt:      prompt,
		KnowledgeBaseURLs: urls,
	}); err != nil {
		return fmt.Errorf("update platform agent: %w", err)
	}

	if err := s.repo.UpdateAgentPersona(ctx, repository.UpdateAgentPersonaInput{
		AgentID:      agentID,
		Persona:      agent.Persona,
		SystemPrompt: prompt,
	}); err != nil {
		return fmt.Errorf("persist agent prompt: %w", err)
	}
	slog.Info("agent intent applied", "agent_id", agentID, "presentation_id", presentationID, "knowledge_files", len(urls))
	return nil
}

func (s *Service) updateStatus(ctx context.Context, agent *repository.Agent, status repository.AgentCreationStatus, platformAgentID, voiceID, systemPrompt string) error {
	if err := s.repo.UpdateAgentProvisioning(ctx, repository.UpdateAgentProvisioningInput{
		AgentID:         agent.ID,
		PlatformAgentID: platformAgentID,
		PlatformVoiceID: voiceID,
		SystemPrompt:    systemPrompt,
		CreationStatus:  status,
	}); err != nil {
		return fmt.Errorf("update agent status to %s: %w", status, err)
	}
	return nil
}
