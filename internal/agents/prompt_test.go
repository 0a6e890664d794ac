package agents

import (
	"strings"
	"testing"
)

func TestPersonaSystemPrompt_WrapsPersona(t *testing.T) {
	prompt := PersonaSystemPrompt("A skeptical venture capitalist.")
	if !strings.Contains(prompt, "<persona>\nA skeptical venture capitalist.\n</persona>") {
		t.Fatalf("persona not wrapped in tags:\n%s", prompt)
	}
	if !strings.Contains(prompt, "<rules>") {
		t.Fatalf("rules block missing:\n%s", prompt)
	}
}

func TestWithIntent_AppendsIntentTag(t *testing.T) {
	base := PersonaSystemPrompt("p")
	got := WithIntent(base, "Ask about revenue.")
	if !strings.HasSuffix(got, "<intent>Ask about revenue.</intent>") {
		t.Fatalf("intent not appended: %s", got)
	}
	if !strings.HasPrefix(got, base) {
		t.Fatal("base prompt was altered")
	}
}

func TestWithIntent_EmptyIntentRestoresBasePrompt(t *testing.T) {
	base := PersonaSystemPrompt("p")
	if got := WithIntent(base, ""); got != base {
		t.Fatalf("expected base prompt, got %s", got)
	}
}
