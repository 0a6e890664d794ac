package scorer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/pitchperfect/pitchperfect/internal/scorer"
)

const highlightSystemPrompt = `You are the world's best speech coach. You will be given a transcript of a speech and your job is to highlight the areas of the speech that are not good.
You want to focus on the following:
- Are there areas where the speaker is using filler words? Like "um", "ah", "like", etc.
- Are there areas where the speaker is not speaking clearly?
- Are there areas where the speaker did not clearly communicate their point?
- Are there areas where the speaker did not answer an audience question well?

You will be given the transcript in the format of a list of tuples with the id and text, like this:
[
  (0, "Hello, my name is John."),
  (1, "Today, I want to talk about..."),
  ...
]

You will output the list of ids of the areas that are not good along with a short explanation for why they are not good.
The response should be in a json format like so:
{
  "weak_areas": [
    {
      "id": 0,
      "explanation": "The speaker used the word 'like' too much."
    }
  ]
}`

// ChatScorer scores transcripts through an OpenAI-compatible chat
// completions endpoint.
type ChatScorer struct {
	apiKey  string
	baseURL string
	model   string
	client  *http.Client
}

func NewChatScorer(apiKey, baseURL, model string) *ChatScorer {
	return &ChatScorer{
		apiKey:  apiKey,
		baseURL: strings.TrimRight(baseURL, "/"),
		model:   model,
		client:  &http.Client{Timeout: 120 * time.Second},
	}
}

func (s *ChatScorer) ScoreTranscript(ctx context.Context, lines []scorer.TranscriptLine) ([]scorer.WeakArea, error) {
	if len(lines) == 0 {
		return nil, nil
	}

	payload := map[string]any{
		"model": s.model,
		"messages": []map[string]string{
			{"role": "system", "content": highlightSystemPrompt},
			{"role": "user", "content": formatTranscript(lines)},
		},
		"response_format": map[string]string{"type": "json_object"},
	}
	bodyBytes, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+"/chat/completions", bytes.NewReader(bodyBytes))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+s.apiKey)

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("scorer request failed: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("scorer returned status %d", resp.StatusCode)
	}

	var out struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode scorer response: %w", err)
	}
	if len(out.Choices) == 0 {
		return nil, fmt.Errorf("scorer returned no choices")
	}

	var parsed struct {
		WeakAreas []scorer.WeakArea `json:"weak_areas"`
	}
	if err := json.Unmarshal([]byte(out.Choices[0].Message.Content), &parsed); err != nil {
		return nil, fmt.Errorf("parse weak areas: %w", err)
	}
	return parsed.WeakAreas, nil
}

func formatTranscript(lines []scorer.TranscriptLine) string {
	var b strings.Builder
	for _, line := range lines {
		fmt.Fprintf(&b, "%d, %q\n", line.ID, line.Text)
	}
	return b.String()
}
