package audio

import "testing"

func TestBuildSplicePlan_AlternatingSession(t *testing.T) {
	entries := []TimelineEntry{
		{Start: 0, End: 2, ConversationID: UserSource},
		{Start: 2, End: 10, ConversationID: "conv-a"},
		{Start: 10, End: 12, ConversationID: UserSource},
		{Start: 12, End: 20, ConversationID: "conv-b"},
	}
	plan, err := BuildSplicePlan(entries)
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	want := []Cut{
		{SourceConversationID: "conv-a", Start: 0, Duration: 2},
		{SourceConversationID: "conv-a", Start: 2, Duration: 10},
		{SourceConversationID: "conv-b", Start: 12, Duration: 8},
	}
	if len(plan) != len(want) {
		t.Fatalf("expected %d cuts, got %v", len(want), plan)
	}
	for i := range want {
		if plan[i] != want[i] {
			t.Fatalf("cut %d: expected %+v, got %+v", i, want[i], plan[i])
		}
	}
}

func TestBuildSplicePlan_AgentSpanMergedWithUserAnswer(t *testing.T) {
	entries := []TimelineEntry{
		{Start: 0, End: 5, ConversationID: UserSource},
		{Start: 5, End: 8, ConversationID: "conv-a"},
		{Start: 8, End: 15, ConversationID: UserSource},
	}
	plan, err := BuildSplicePlan(entries)
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if len(plan) != 2 {
		t.Fatalf("expected 2 cuts, got %v", plan)
	}
	// The agent question and the user's answer come out as one clip from the
	// agent's own recording.
	if plan[1].SourceConversationID != "conv-a" || plan[1].Start != 5 || plan[1].Duration != 10 {
		t.Fatalf("unexpected merged cut: %+v", plan[1])
	}
}

func TestBuildSplicePlan_UserOnlySessionHasNoPlan(t *testing.T) {
	entries := []TimelineEntry{
		{Start: 0, End: 30, ConversationID: UserSource},
	}
	plan, err := BuildSplicePlan(entries)
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if plan != nil {
		t.Fatalf("expected no plan for a user-only session, got %v", plan)
	}
}

func TestBuildSplicePlan_EmptyTimeline(t *testing.T) {
	plan, err := BuildSplicePlan(nil)
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if plan != nil {
		t.Fatalf("expected nil plan, got %v", plan)
	}
}

func TestBuildSplicePlan_CoversWholeTimeline(t *testing.T) {
	entries := []TimelineEntry{
		{Start: 0, End: 3, ConversationID: UserSource},
		{Start: 3, End: 7, ConversationID: "conv-a"},
		{Start: 7, End: 11, ConversationID: UserSource},
		{Start: 11, End: 14, ConversationID: "conv-b"},
		{Start: 14, End: 22, ConversationID: UserSource},
	}
	plan, err := BuildSplicePlan(entries)
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	var total float64
	for _, c := range plan {
		total += c.Duration
	}
	if total != 22 {
		t.Fatalf("expected cuts to cover the full 22s timeline, got %v from %v", total, plan)
	}
}
