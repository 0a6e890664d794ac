package session

import "log/slog"

// ParticipantID identifies one audience-member agent within a practice
// session. It is the agent's repository id, not the platform-assigned
// conversation id.
type ParticipantID string

// UserOwner is the timeline owner for spans where the human presenter
// holds the floor.
const UserOwner = "user"

// floorState decides who holds the floor. An empty currentSpeakerID means
// the human presenter holds it. speakingHistory is an append-only log of
// every grant, in grant order, and drives the fairness rule: a participant
// that alone has the most past turns is made to yield to peers that have
// spoken less.
//
// floorState is not safe for concurrent use; the owning controller
// serializes every mutation behind its mutex.
type floorState struct {
	participants     map[ParticipantID]struct{}
	currentSpeakerID ParticipantID
	speakingHistory  []ParticipantID
}

func newFloorState(ids []ParticipantID) *floorState {
	known := make(map[ParticipantID]struct{}, len(ids))
	for _, id := range ids {
		known[id] = struct{}{}
	}
	return &floorState{participants: known}
}

// handleSpeaking processes a "speaking" claim from p and reports whether the
// floor was granted. Claims are never preemptive: while anyone holds the
// floor, new claims are ignored.
func (f *floorState) handleSpeaking(p ParticipantID) bool {
	if _, known := f.participants[p]; !known {
		slog.Warn("dropping speaking claim from unknown participant", "participant_id", p)
		metricStaleEvents.Inc()
		return false
	}
	if f.currentSpeakerID != "" {
		metricFloorIgnored.Inc()
		return false
	}
	if !f.eligible(p) {
		metricFloorWithheld.Inc()
		return false
	}
	f.currentSpeakerID = p
	f.speakingHistory = append(f.speakingHistory, p)
	metricFloorGranted.Inc()
	return true
}

// handleListening processes a "listening" signal from p and reports whether
// the floor was released. Signals from a participant that does not hold the
// floor are stale and ignored.
func (f *floorState) handleListening(p ParticipantID) bool {
	if _, known := f.participants[p]; !known {
		slog.Warn("dropping listening signal from unknown participant", "participant_id", p)
		metricStaleEvents.Inc()
		return false
	}
	if f.currentSpeakerID != p {
		metricStaleEvents.Inc()
		return false
	}
	f.currentSpeakerID = ""
	return true
}

// reset returns the floor to the user without touching the history.
// Reports whether an agent actually held the floor.
func (f *floorState) reset() bool {
	if f.currentSpeakerID == "" {
		return false
	}
	f.currentSpeakerID = ""
	return true
}

// eligible applies the fairness rule: p may take a free floor unless p alone
// holds the highest past-turn count while other participants exist.
func (f *floorState) eligible(p ParticipantID) bool {
	if len(f.speakingHistory) == 0 || len(f.participants) == 1 {
		return true
	}
	return f.mostTurnsID() != p
}

// mostTurnsID returns the participant with the highest turn count so far.
// Ties break to the lexicographically lowest id so the outcome never depends
// on map iteration order.
func (f *floorState) mostTurnsID() ParticipantID {
	counts := make(map[ParticipantID]int, len(f.participants))
	for _, id := range f.speakingHistory {
		counts[id]++
	}
	var most ParticipantID
	mostCount := -1
	for id, n := range counts {
		if n > mostCount || (n == mostCount && id < most) {
			most = id
			mostCount = n
		}
	}
	return most
}
