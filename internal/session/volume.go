package session

import (
	"log/slog"

	"github.com/pitchperfect/pitchperfect/internal/voice"
)

// applyFloorState drives every live session's output gain from the floor
// decision: the session matching currentSpeakerID is audible, every other
// one is muted. An empty currentSpeakerID mutes all sessions (the human is
// audible through the local microphone, outside our control). Sessions that
// are not connected are skipped; redundant calls are harmless.
func applyFloorState(sessions map[ParticipantID]voice.Session, currentSpeakerID ParticipantID) {
	for id, sess := range sessions {
		if sess == nil {
			continue
		}
		gain := voice.GainMuted
		if currentSpeakerID != "" && id == currentSpeakerID {
			gain = voice.GainAudible
		}
		if err := sess.SetGain(gain); err != nil {
			slog.Warn("failed to set session gain", "participant_id", id, "gain", gain, "error", err)
		}
	}
}
