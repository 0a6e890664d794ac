package voice

import (
	"context"
	"fmt"
	"net/url"

	"github.com/pitchperfect/pitchperfect/internal/voice"
)

// Admin provisions voices and agents through the platform's REST API.
type Admin struct {
	api *apiClient
}

func NewAdmin(apiKey, baseURL string) *Admin {
	return &Admin{api: newAPIClient(apiKey, baseURL)}
}

func (a *Admin) CreateVoicePreview(ctx context.Context, description, sampleText string) (voice.VoicePreview, error) {
	reqBody := struct {
		VoiceDescription string `json:"voice_description"`
		Text             string `json:"text"`
	}{
		VoiceDescription: description,
		Text:             sampleText,
	}
	var respBody struct {
		Previews []struct {
			GeneratedVoiceID string `json:"generated_voice_id"`
		} `json:"previews"`
	}
	if err := a.api.doJSON(ctx, "POST", "/text-to-voice/create-previews", reqBody, &respBody); err != nil {
		return voice.VoicePreview{}, fmt.Errorf("failed to create voice preview: %w", err)
	}
	if len(respBody.Previews) == 0 {
		return voice.VoicePreview{}, fmt.Errorf("voice platform returned no previews")
	}
	return voice.VoicePreview{GeneratedVoiceID: respBody.Previews[0].GeneratedVoiceID}, nil
}

func (a *Admin) CreateVoiceFromPreview(ctx context.Context, name, description, generatedVoiceID string) (string, error) {
	reqBody := struct {
		VoiceName        string `json:"voice_name"`
		VoiceDescription string `json:"voice_description"`
		GeneratedVoiceID string `json:"generated_voice_id"`
	}{
		VoiceName:        name,
		VoiceDescription: description,
		GeneratedVoiceID: generatedVoiceID,
	}
	var respBody struct {
		VoiceID string `json:"voice_id"`
	}
	if err := a.api.doJSON(ctx, "POST", "/text-to-voice/create-voice-from-preview", reqBody, &respBody); err != nil {
		return "", fmt.Errorf("failed to create voice from preview: %w", err)
	}
	return respBody.VoiceID, nil
}

func (a *Admin) CreateAgent(ctx context.Context, input voice.ProvisionAgentInput) (string, error) {
	reqBody := map[string]any{
		"name": input.Name,
		"conversation_config": map[string]any{
			"agent": map[string]any{
				"prompt": map[string]any{
					"prompt": input.SystemPrompt,
				},
			},
			"tts": map[string]any{
				"voice_id": input.VoiceID,
			},
		},
	}
	var respBody struct {
		AgentID string `json:"agent_id"`
	}
	if err := a.api.doJSON(ctx, "POST", "/convai/agents/create", reqBody, &respBody); err != nil {
		return "", fmt.Errorf("failed to create agent: %w", err)
	}
	return respBody.AgentID, nil
}

func (a *Admin) UpdateAgent(ctx context.Context, input voice.UpdateAgentInput) error {
	prompt := map[string]any{
		"prompt": input.SystemPrompt,
	}
	if len(input.KnowledgeBaseURLs) > 0 {
		kb := make([]map[string]any, 0, len(input.KnowledgeBaseURLs))
		for _, u := range input.KnowledgeBaseURLs {
			kb = append(kb, map[string]any{"type": "url", "url": u})
		}
		prompt["knowledge_base"] = kb
	}
	reqBody := map[string]any{
		"conversation_config": map[string]any{
			"agent": map[string]any{
				"prompt": prompt,
			},
		},
	}
	path := "/convai/agents/" + url.PathEscape(input.PlatformAgentID)
	if err := a.api.doJSON(ctx, "PATCH", path, reqBody, nil); err != nil {
		return fmt.Errorf("failed to update agent %s: %w", input.PlatformAgentID, err)
	}
	return nil
}

func (a *Admin) FetchConversationAudio(ctx context.Context, conversationID string) ([]byte, error) {
	path := "/convai/conversations/" + url.PathEscape(conversationID) + "/audio"
	audio, err := a.api.doRaw(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch audio for conversation %s: %w", conversationID, err)
	}
	return audio, nil
}
