package audio

import (
	"context"
	"fmt"
)

// UserSource marks a timeline span owned by the presenter rather than an
// agent conversation.
const UserSource = "user"

// TimelineEntry is one closed span of the session timeline, keyed by the
// conversation whose recording contains it.
type TimelineEntry struct {
	Start          float64
	End            float64
	ConversationID string
}

// Cut extracts one span out of a conversation recording.
type Cut struct {
	SourceConversationID string
	Start                float64
	Duration             float64
}

// Splicer performs the file-level audio operations of post-processing.
// Sources and destinations are paths in the working directory.
type Splicer interface {
	Cut(ctx context.Context, srcPath string, startSeconds, durationSeconds float64, dstPath string) error
	Concat(ctx context.Context, srcPaths []string, dstPath string) error
}

// BuildSplicePlan maps a finalized timeline onto cuts from the per-agent
// conversation recordings. Each agent platform records the full session from
// its own connect, so any conversation file contains the user's audio too.
//
// The opening user span is cut from the first conversation's recording. Each
// agent span is merged with the user span that follows it and cut from that
// agent's own recording, which keeps the agent question and the user's answer
// in one contiguous clip. Consecutive cuts are returned in timeline order, so
// concatenating them reproduces the session.
func BuildSplicePlan(entries []TimelineEntry) ([]Cut, error) {
	if len(entries) == 0 {
		return nil, nil
	}

	firstSource := ""
	for _, e := range entries {
		if e.ConversationID != UserSource {
			firstSource = e.ConversationID
			break
		}
	}
	if firstSource == "" {
		// The user spoke the whole time; there is no platform recording to
		// splice from.
		return nil, nil
	}

	plan := []Cut{{
		SourceConversationID: firstSource,
		Start:                0,
		Duration:             entries[0].End,
	}}

	currSource := ""
	currStart := 0.0
	for i := 1; i < len(entries); i++ {
		e := entries[i]
		last := i == len(entries)-1
		if e.ConversationID != UserSource {
			currSource = e.ConversationID
			currStart = e.Start
			if !last {
				continue
			}
		}
		if currSource == "" {
			return nil, fmt.Errorf("timeline entry %d: user span with no preceding agent span", i)
		}
		plan = append(plan, Cut{
			SourceConversationID: currSource,
			Start:                currStart,
			Duration:             e.End - currStart,
		})
	}
	return plan, nil
}
