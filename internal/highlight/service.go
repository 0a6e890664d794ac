package highlight

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/pitchperfect/pitchperfect/internal/audio"
	"github.com/pitchperfect/pitchperfect/internal/config"
	"github.com/pitchperfect/pitchperfect/internal/repository"
	"github.com/pitchperfect/pitchperfect/internal/scorer"
	"github.com/pitchperfect/pitchperfect/internal/session"
	"github.com/pitchperfect/pitchperfect/internal/transcriber"
	"github.com/pitchperfect/pitchperfect/internal/voice"
	"github.com/pitchperfect/pitchperfect/internal/webhook"
)

// Store is the slice of the repository post-processing writes to.
type Store interface {
	GetPracticeSession(ctx context.Context, id string) (*repository.PracticeSession, error)
	InsertWeakArea(ctx context.Context, input repository.InsertWeakAreaInput) (*repository.WeakArea, error)
}

// Service turns a finished practice session into weak-area highlights: it
// reassembles the session audio from the per-agent conversation recordings,
// transcribes it, has the scorer flag weak segments, clips those segments and
// stores them.
type Service struct {
	cfg     *config.Config
	repo    Store
	fetcher voice.AudioFetcher
	splicer audio.Splicer
	scribe  transcriber.Transcriber
	scorer  scorer.Scorer
	sender  webhook.Sender
}

func NewService(
	cfg *config.Config,
	repo Store,
	fetcher voice.AudioFetcher,
	splicer audio.Splicer,
	scribe transcriber.Transcriber,
	sc scorer.Scorer,
	sender webhook.Sender,
) *Service {
	return &Service{
		cfg:     cfg,
		repo:    repo,
		fetcher: fetcher,
		splicer: splicer,
		scribe:  scribe,
		scorer:  sc,
		sender:  sender,
	}
}

func (s *Service) ProcessRecording(ctx context.Context, practiceSessionID string, timeline []session.TimestampEntry, conversationIDs []string, capturedAudio []byte) error {
	slog.Info("post-processing practice session", "session_id", practiceSessionID, "segments", len(timeline), "conversations", len(conversationIDs), "captured_bytes", len(capturedAudio))

	entries := make([]audio.TimelineEntry, 0, len(timeline))
	for _, e := range timeline {
		entries = append(entries, audio.TimelineEntry{
			Start:          e.Start,
			End:            e.End,
			ConversationID: e.ConversationID,
		})
	}
	plan, err := audio.BuildSplicePlan(entries)
	if err != nil {
		return fmt.Errorf("build splice plan: %w", err)
	}
	if len(plan) == 0 && len(capturedAudio) == 0 {
		slog.Info("no agent conversations and no captured audio; skipping highlights", "session_id", practiceSessionID)
		return nil
	}

	workDir := filepath.Join(s.cfg.WorkDir, "sessions", practiceSessionID+"-"+uuid.NewString())
	if err := os.MkdirAll(workDir, 0o755); err != nil {
		return fmt.Errorf("create work dir: %w", err)
	}
	defer func() {
		if err := os.RemoveAll(workDir); err != nil {
			slog.Warn("failed to clean up work dir", "path", workDir, "error", err)
		}
	}()

	var combinedPath string
	if len(plan) > 0 {
		combinedPath, err = s.assembleRecording(ctx, workDir, plan, conversationIDs)
		if err != nil {
			return err
		}
	} else {
		// The user spoke alone the whole session; there is no agent
		// conversation to cut from, so the local capture is the recording.
		combinedPath = filepath.Join(workDir, "capture.webm")
		if err := os.WriteFile(combinedPath, capturedAudio, 0o644); err != nil {
			return fmt.Errorf("write captured audio: %w", err)
		}
	}
	combined, err := os.ReadFile(combinedPath)
	if err != nil {
		return fmt.Errorf("read combined recording: %w", err)
	}

	segments, err := s.scribe.Transcribe(ctx, combined, s.cfg.TranscribeLanguage)
	if err != nil {
		return fmt.Errorf("transcribe recording: %w", err)
	}
	if len(segments) == 0 {
		slog.Info("empty transcript; skipping highlights", "session_id", practiceSessionID)
		return nil
	}

	lines := make([]scorer.TranscriptLine, 0, len(segments))
	for _, seg := range segments {
		lines = append(lines, scorer.TranscriptLine{ID: seg.ID, Text: seg.Text})
	}
	weakAreas, err := s.scorer.ScoreTranscript(ctx, lines)
	if err != nil {
		return fmt.Errorf("score transcript: %w", err)
	}

	report := webhook.HighlightReport{
		SchemaVersion:     1,
		PracticeSessionID: practiceSessionID,
	}
	if ps, err := s.repo.GetPracticeSession(ctx, practiceSessionID); err == nil && ps != nil {
		report.PresentationID = ps.PresentationID
	} else {
		slog.Warn("failed to load practice session for report", "session_id", practiceSessionID, "error", err)
	}

	for _, area := range weakAreas {
		seg, ok := findSegment(segments, area.ID)
		if !ok {
			slog.Warn("scorer referenced an unknown transcript segment", "session_id", practiceSessionID, "segment_id", area.ID)
			continue
		}
		clip, err := s.clipSegment(ctx, workDir, combinedPath, seg)
		if err != nil {
			slog.Warn("failed to clip weak area", "session_id", practiceSessionID, "segment_id", seg.ID, "error", err)
		}
		if _, err := s.repo.InsertWeakArea(ctx, repository.InsertWeakAreaInput{
			SessionID:    practiceSessionID,
			StartSeconds: seg.Start,
			EndSeconds:   seg.End,
			Transcript:   seg.Text,
			Explanation:  area.Explanation,
			Clip:         clip,
		}); err != nil {
			return fmt.Errorf("store weak area: %w", err)
		}
		report.WeakAreas = append(report.WeakAreas, webhook.WeakAreaEntry{
			StartSeconds: seg.Start,
			EndSeconds:   seg.End,
			Transcript:   seg.Text,
			Explanation:  area.Explanation,
		})
	}

	if err := s.sender.SendHighlights(ctx, report); err != nil {
		slog.Warn("failed to deliver highlight report", "session_id", practiceSessionID, "error", err)
	}

	slog.Info("post-processing complete", "session_id", practiceSessionID, "weak_areas", len(report.WeakAreas))
	return nil
}

// assembleRecording downloads each conversation's audio, cuts the planned
// spans and concatenates them back into one recording in timeline order.
func (s *Service) assembleRecording(ctx context.Context, workDir string, plan []audio.Cut, conversationIDs []string) (string, error) {
	sourcePaths := make(map[string]string, len(conversationIDs))
	for _, convID := range conversationIDs {
		data, err := s.fetcher.FetchConversationAudio(ctx, convID)
		if err != nil {
			return "", fmt.Errorf("fetch conversation %s: %w", convID, err)
		}
		p := filepath.Join(workDir, convID+".mp3")
		if err := os.WriteFile(p, data, 0o644); err != nil {
			return "", fmt.Errorf("write conversation %s: %w", convID, err)
		}
		sourcePaths[convID] = p
	}

	clipPaths := make([]string, 0, len(plan))
	for i, cut := range plan {
		src, ok := sourcePaths[cut.SourceConversationID]
		if !ok {
			return "", fmt.Errorf("cut %d references unfetched conversation %s", i, cut.SourceConversationID)
		}
		dst := filepath.Join(workDir, fmt.Sprintf("clip_%d.mp3", i))
		if err := s.splicer.Cut(ctx, src, cut.Start, cut.Duration, dst); err != nil {
			return "", fmt.Errorf("cut %d: %w", i, err)
		}
		clipPaths = append(clipPaths, dst)
	}

	combinedPath := filepath.Join(workDir, "combined.mp3")
	if err := s.splicer.Concat(ctx, clipPaths, combinedPath); err != nil {
		return "", fmt.Errorf("concatenate clips: %w", err)
	}
	return combinedPath, nil
}

func (s *Service) clipSegment(ctx context.Context, workDir, combinedPath string, seg transcriber.Segment) ([]byte, error) {
	if seg.End <= seg.Start {
		return nil, nil
	}
	// Stream-copy cuts keep the source container, so the clip inherits the
	// source extension.
	dst := filepath.Join(workDir, fmt.Sprintf("weak_%d%s", seg.ID, filepath.Ext(combinedPath)))
	if err := s.splicer.Cut(ctx, combinedPath, seg.Start, seg.End-seg.Start, dst); err != nil {
		return nil, err
	}
	return os.ReadFile(dst)
}

func findSegment(segments []transcriber.Segment, id int) (transcriber.Segment, bool) {
	for _, seg := range segments {
		if seg.ID == id {
			return seg, true
		}
	}
	return transcriber.Segment{}, false
}
