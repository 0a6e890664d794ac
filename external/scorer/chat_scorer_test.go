package scorer

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	internalscorer "github.com/pitchperfect/pitchperfect/internal/scorer"
)

func TestScoreTranscript_Success(t *testing.T) {
	var gotUserContent string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Fatalf("unexpected path: %s", r.URL.Path)
		}
		if !strings.HasPrefix(r.Header.Get("Authorization"), "Bearer ") {
			t.Fatalf("missing bearer token")
		}
		var reqBody struct {
			Messages []struct {
				Role    string `json:"role"`
				Content string `json:"content"`
			} `json:"messages"`
		}
		if err := json.NewDecoder(r.Body).Decode(&reqBody); err != nil {
			t.Fatalf("failed to decode request: %v", err)
		}
		if len(reqBody.Messages) != 2 || reqBody.Messages[0].Role != "system" {
			t.Fatalf("unexpected messages: %+v", reqBody.Messages)
		}
		gotUserContent = reqBody.Messages[1].Content

		content, _ := json.Marshal(map[string]any{
			"weak_areas": []map[string]any{
				{"id": 1, "explanation": "Too many filler words."},
			},
		})
		_ = json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{
				{"message": map[string]any{"content": string(content)}},
			},
		})
	}))
	defer server.Close()

	s := NewChatScorer("key", server.URL, "test-model")
	weakAreas, err := s.ScoreTranscript(context.Background(), []internalscorer.TranscriptLine{
		{ID: 0, Text: "Hello everyone."},
		{ID: 1, Text: "Um, so, like, yeah."},
	})
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if len(weakAreas) != 1 || weakAreas[0].ID != 1 {
		t.Fatalf("unexpected weak areas: %+v", weakAreas)
	}
	if !strings.Contains(gotUserContent, `1, "Um, so, like, yeah."`) {
		t.Fatalf("unexpected transcript formatting: %s", gotUserContent)
	}
}

func TestScoreTranscript_EmptyTranscript(t *testing.T) {
	s := NewChatScorer("key", "http://unused.invalid", "test-model")
	weakAreas, err := s.ScoreTranscript(context.Background(), nil)
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if weakAreas != nil {
		t.Fatalf("expected no weak areas, got %+v", weakAreas)
	}
}

func TestScoreTranscript_MalformedModelOutput(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{
				{"message": map[string]any{"content": "not json"}},
			},
		})
	}))
	defer server.Close()

	s := NewChatScorer("key", server.URL, "test-model")
	if _, err := s.ScoreTranscript(context.Background(), []internalscorer.TranscriptLine{{ID: 0, Text: "x"}}); err == nil {
		t.Fatal("expected error for malformed model output")
	}
}

func TestScoreTranscript_Non2xx(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	s := NewChatScorer("key", server.URL, "test-model")
	if _, err := s.ScoreTranscript(context.Background(), []internalscorer.TranscriptLine{{ID: 0, Text: "x"}}); err == nil {
		t.Fatal("expected error for non-2xx response")
	}
}
