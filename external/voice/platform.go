package voice

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/gorilla/websocket"

	"github.com/pitchperfect/pitchperfect/internal/voice"
)

// Platform dials live conversational sessions over websocket and issues
// signed client URLs through the REST API.
type Platform struct {
	api    *apiClient
	wsBase string
}

func NewPlatform(apiKey, baseURL, wsBaseURL string) *Platform {
	return &Platform{
		api:    newAPIClient(apiKey, baseURL),
		wsBase: wsBaseURL,
	}
}

func (p *Platform) Connect(ctx context.Context, identity voice.AgentIdentity, callbacks voice.Callbacks) (voice.Session, error) {
	wsURL := p.wsBase + "/convai/conversation?agent_id=" + url.QueryEscape(identity.AgentID)
	header := http.Header{}
	header.Set("xi-api-key", p.api.apiKey)

	conn, _, err := websocket.DefaultDialer.DialContext(ctx, wsURL, header)
	if err != nil {
		return nil, fmt.Errorf("failed to dial agent %s: %w", identity.AgentID, err)
	}

	sess := newWSSession(conn, identity, callbacks)
	if err := sess.awaitInitiation(ctx); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("agent %s session initiation failed: %w", identity.AgentID, err)
	}
	if callbacks.OnConnect != nil {
		callbacks.OnConnect()
	}
	return sess, nil
}

func (p *Platform) GetSignedURL(ctx context.Context, agentID string) (string, error) {
	var respBody struct {
		SignedURL string `json:"signed_url"`
	}
	path := "/convai/conversation/get-signed-url?agent_id=" + url.QueryEscape(agentID)
	if err := p.api.doJSON(ctx, "GET", path, nil, &respBody); err != nil {
		return "", fmt.Errorf("failed to get signed url for agent %s: %w", agentID, err)
	}
	return respBody.SignedURL, nil
}
