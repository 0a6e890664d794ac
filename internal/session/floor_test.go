package session

import "testing"

func newTestFloor(ids ...ParticipantID) *floorState {
	return newFloorState(ids)
}

func TestHandleSpeaking_GrantsFreeFloor(t *testing.T) {
	f := newTestFloor("a", "b")
	if !f.handleSpeaking("a") {
		t.Fatal("expected first claim on a free floor to be granted")
	}
	if f.currentSpeakerID != "a" {
		t.Fatalf("expected a to hold the floor, got %q", f.currentSpeakerID)
	}
	if len(f.speakingHistory) != 1 || f.speakingHistory[0] != "a" {
		t.Fatalf("expected history [a], got %v", f.speakingHistory)
	}
}

func TestHandleSpeaking_NoPreemption(t *testing.T) {
	f := newTestFloor("a", "b")
	f.handleSpeaking("a")
	if f.handleSpeaking("b") {
		t.Fatal("expected claim to be ignored while another participant holds the floor")
	}
	if f.currentSpeakerID != "a" {
		t.Fatalf("expected a to keep the floor, got %q", f.currentSpeakerID)
	}
	if len(f.speakingHistory) != 1 {
		t.Fatalf("expected history unchanged, got %v", f.speakingHistory)
	}
}

func TestHandleSpeaking_RedundantClaimFromHolder(t *testing.T) {
	f := newTestFloor("a", "b")
	f.handleSpeaking("a")
	if f.handleSpeaking("a") {
		t.Fatal("expected redundant claim from the current holder to be ignored")
	}
	if len(f.speakingHistory) != 1 {
		t.Fatalf("expected no duplicate history entry, got %v", f.speakingHistory)
	}
}

func TestHandleSpeaking_FairnessWithholdsFrontRunner(t *testing.T) {
	f := newTestFloor("a", "b")
	f.handleSpeaking("a")
	f.handleListening("a")
	if f.handleSpeaking("a") {
		t.Fatal("expected a's reclaim to be withheld while b has had fewer turns")
	}
	if f.currentSpeakerID != "" {
		t.Fatalf("expected floor to stay free, got %q", f.currentSpeakerID)
	}
	if !f.handleSpeaking("b") {
		t.Fatal("expected b to be granted the floor")
	}
}

func TestHandleSpeaking_TieBreaksToLowestID(t *testing.T) {
	f := newTestFloor("a", "b")
	f.handleSpeaking("a")
	f.handleListening("a")
	f.handleSpeaking("b")
	f.handleListening("b")

	// Both have one turn; the tie resolves to the lowest id, so only a is
	// treated as the front-runner.
	if f.handleSpeaking("a") {
		t.Fatal("expected a to be withheld on a tie")
	}
	if !f.handleSpeaking("b") {
		t.Fatal("expected b to be granted on a tie")
	}
}

func TestHandleSpeaking_SingleParticipantAlwaysGranted(t *testing.T) {
	f := newTestFloor("a")
	for i := 0; i < 3; i++ {
		if !f.handleSpeaking("a") {
			t.Fatalf("turn %d: expected the only participant to always be granted", i)
		}
		f.handleListening("a")
	}
}

func TestHandleSpeaking_UnknownParticipantDropped(t *testing.T) {
	f := newTestFloor("a")
	if f.handleSpeaking("ghost") {
		t.Fatal("expected claim from unknown participant to be dropped")
	}
	if f.currentSpeakerID != "" || len(f.speakingHistory) != 0 {
		t.Fatal("expected floor state untouched by unknown participant")
	}
}

func TestHandleListening_StaleSignalIgnored(t *testing.T) {
	f := newTestFloor("a", "b")
	f.handleSpeaking("a")
	if f.handleListening("b") {
		t.Fatal("expected listening signal from a non-holder to be ignored")
	}
	if f.currentSpeakerID != "a" {
		t.Fatalf("expected a to keep the floor, got %q", f.currentSpeakerID)
	}
}

func TestHandleListening_ReleasesFloor(t *testing.T) {
	f := newTestFloor("a", "b")
	f.handleSpeaking("a")
	if !f.handleListening("a") {
		t.Fatal("expected the holder's listening signal to release the floor")
	}
	if f.currentSpeakerID != "" {
		t.Fatalf("expected free floor, got %q", f.currentSpeakerID)
	}
}

func TestReset_KeepsHistory(t *testing.T) {
	f := newTestFloor("a", "b")
	f.handleSpeaking("a")
	if !f.reset() {
		t.Fatal("expected reset to report a change")
	}
	if f.reset() {
		t.Fatal("expected reset of a free floor to report no change")
	}
	if len(f.speakingHistory) != 1 {
		t.Fatalf("expected history preserved across reset, got %v", f.speakingHistory)
	}
}

func TestMutualExclusion_ArbitraryInterleaving(t *testing.T) {
	f := newTestFloor("a", "b", "c")
	steps := []struct {
		p    ParticipantID
		mode string
		want ParticipantID
	}{
		{"a", "speaking", "a"},  // free floor, empty history
		{"b", "speaking", "a"},  // ignored, a holds
		{"c", "speaking", "a"},  // ignored, a holds
		{"b", "listening", "a"}, // stale, b never held
		{"a", "listening", ""},  // released
		{"c", "speaking", "c"},  // granted, a is front-runner but c claimed
		{"c", "listening", ""},  // released
		{"b", "speaking", "b"},  // granted, b has fewest turns
		{"a", "speaking", "b"},  // ignored, b holds
	}
	for i, st := range steps {
		if st.mode == "speaking" {
			f.handleSpeaking(st.p)
		} else {
			f.handleListening(st.p)
		}
		if f.currentSpeakerID != st.want {
			t.Fatalf("step %d: expected holder %q, got %q", i, st.want, f.currentSpeakerID)
		}
	}
}
