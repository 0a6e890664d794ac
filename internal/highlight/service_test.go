package highlight

import (
	"context"
	"errors"
	"fmt"
	"os"
	"testing"

	"github.com/pitchperfect/pitchperfect/internal/config"
	"github.com/pitchperfect/pitchperfect/internal/repository"
	"github.com/pitchperfect/pitchperfect/internal/scorer"
	"github.com/pitchperfect/pitchperfect/internal/session"
	"github.com/pitchperfect/pitchperfect/internal/transcriber"
	"github.com/pitchperfect/pitchperfect/internal/webhook"
)

type fakeStore struct {
	sessionGone bool
	inserted    []repository.InsertWeakAreaInput
}

func (s *fakeStore) GetPracticeSession(_ context.Context, id string) (*repository.PracticeSession, error) {
	// Deleted sessions answer (nil, nil), matching the repository contract.
	if s.sessionGone {
		return nil, nil
	}
	return &repository.PracticeSession{ID: id, PresentationID: "pres-1"}, nil
}

func (s *fakeStore) InsertWeakArea(_ context.Context, input repository.InsertWeakAreaInput) (*repository.WeakArea, error) {
	s.inserted = append(s.inserted, input)
	return &repository.WeakArea{SessionID: input.SessionID}, nil
}

type fakeFetcher struct {
	fetched []string
	err     error
}

func (f *fakeFetcher) FetchConversationAudio(_ context.Context, conversationID string) ([]byte, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.fetched = append(f.fetched, conversationID)
	return []byte("audio-" + conversationID), nil
}

// fakeSplicer records operations and materializes destination files so the
// service can read them back.
type fakeSplicer struct {
	cuts    []string
	concats int
}

func (s *fakeSplicer) Cut(_ context.Context, srcPath string, start, duration float64, dstPath string) error {
	s.cuts = append(s.cuts, fmt.Sprintf("%.1f+%.1f", start, duration))
	return os.WriteFile(dstPath, []byte("cut"), 0o644)
}

func (s *fakeSplicer) Concat(_ context.Context, srcPaths []string, dstPath string) error {
	s.concats++
	return os.WriteFile(dstPath, []byte("combined"), 0o644)
}

type fakeTranscriber struct {
	segments []transcriber.Segment
	err      error
	gotAudio []byte
}

func (t *fakeTranscriber) Transcribe(_ context.Context, audio []byte, _ string) ([]transcriber.Segment, error) {
	t.gotAudio = audio
	return t.segments, t.err
}

type fakeScorer struct {
	weakAreas []scorer.WeakArea
	gotLines  []scorer.TranscriptLine
}

func (s *fakeScorer) ScoreTranscript(_ context.Context, lines []scorer.TranscriptLine) ([]scorer.WeakArea, error) {
	s.gotLines = lines
	return s.weakAreas, nil
}

type fakeSender struct {
	reports []webhook.HighlightReport
	err     error
}

func (s *fakeSender) SendHighlights(_ context.Context, report webhook.HighlightReport) error {
	s.reports = append(s.reports, report)
	return s.err
}

func testTimeline() []session.TimestampEntry {
	return []session.TimestampEntry{
		{Start: 0, End: 2, ConversationID: "user"},
		{Start: 2, End: 10, ConversationID: "conv-a"},
		{Start: 10, End: 12, ConversationID: "user"},
	}
}

func TestProcessRecording_EndToEnd(t *testing.T) {
	cfg := &config.Config{WorkDir: t.TempDir(), TranscribeLanguage: "en-US"}
	store := &fakeStore{}
	fetcher := &fakeFetcher{}
	splicer := &fakeSplicer{}
	scribe := &fakeTranscriber{segments: []transcriber.Segment{
		{ID: 0, Start: 0, End: 4, Text: "Hello everyone."},
		{ID: 1, Start: 4, End: 9, Text: "Um, so, like, yeah."},
	}}
	sc := &fakeScorer{weakAreas: []scorer.WeakArea{{ID: 1, Explanation: "Filler words."}}}
	sender := &fakeSender{}

	svc := NewService(cfg, store, fetcher, splicer, scribe, sc, sender)
	err := svc.ProcessRecording(context.Background(), "sess-1", testTimeline(), []string{"conv-a"}, nil)
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}

	if len(fetcher.fetched) != 1 || fetcher.fetched[0] != "conv-a" {
		t.Fatalf("unexpected fetches: %v", fetcher.fetched)
	}
	if splicer.concats != 1 {
		t.Fatalf("expected one concat, got %d", splicer.concats)
	}
	if len(sc.gotLines) != 2 {
		t.Fatalf("expected full transcript scored, got %v", sc.gotLines)
	}
	if len(store.inserted) != 1 {
		t.Fatalf("expected one weak area stored, got %v", store.inserted)
	}
	got := store.inserted[0]
	if got.StartSeconds != 4 || got.EndSeconds != 9 || got.Transcript != "Um, so, like, yeah." {
		t.Fatalf("unexpected weak area: %+v", got)
	}
	if len(got.Clip) == 0 {
		t.Fatal("expected a clip attached to the weak area")
	}
	if len(sender.reports) != 1 {
		t.Fatalf("expected one report sent, got %d", len(sender.reports))
	}
	report := sender.reports[0]
	if report.PresentationID != "pres-1" || len(report.WeakAreas) != 1 {
		t.Fatalf("unexpected report: %+v", report)
	}
}

func TestProcessRecording_DeletedSessionStillCompletes(t *testing.T) {
	cfg := &config.Config{WorkDir: t.TempDir(), TranscribeLanguage: "en-US"}
	store := &fakeStore{sessionGone: true}
	scribe := &fakeTranscriber{segments: []transcriber.Segment{
		{ID: 0, Start: 0, End: 4, Text: "Hello everyone."},
	}}
	sender := &fakeSender{}

	svc := NewService(cfg, store, &fakeFetcher{}, &fakeSplicer{}, scribe, &fakeScorer{}, sender)
	err := svc.ProcessRecording(context.Background(), "sess-1", testTimeline(), []string{"conv-a"}, nil)
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if len(sender.reports) != 1 {
		t.Fatalf("expected one report sent, got %d", len(sender.reports))
	}
	if sender.reports[0].PresentationID != "" {
		t.Fatalf("expected empty presentation id, got %q", sender.reports[0].PresentationID)
	}
}

func TestProcessRecording_UserOnlySessionWithoutCaptureIsSkipped(t *testing.T) {
	cfg := &config.Config{WorkDir: t.TempDir()}
	fetcher := &fakeFetcher{}
	sender := &fakeSender{}
	svc := NewService(cfg, &fakeStore{}, fetcher, &fakeSplicer{}, &fakeTranscriber{}, &fakeScorer{}, sender)

	timeline := []session.TimestampEntry{{Start: 0, End: 30, ConversationID: "user"}}
	if err := svc.ProcessRecording(context.Background(), "sess-1", timeline, nil, nil); err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if len(fetcher.fetched) != 0 {
		t.Fatalf("expected no fetches, got %v", fetcher.fetched)
	}
	if len(sender.reports) != 0 {
		t.Fatalf("expected no report, got %v", sender.reports)
	}
}

func TestProcessRecording_UserOnlySessionUsesLocalCapture(t *testing.T) {
	cfg := &config.Config{WorkDir: t.TempDir(), TranscribeLanguage: "en-US"}
	fetcher := &fakeFetcher{}
	scribe := &fakeTranscriber{segments: []transcriber.Segment{
		{ID: 0, Start: 0, End: 4, Text: "Hello everyone."},
	}}
	sender := &fakeSender{}
	svc := NewService(cfg, &fakeStore{}, fetcher, &fakeSplicer{}, scribe, &fakeScorer{}, sender)

	timeline := []session.TimestampEntry{{Start: 0, End: 30, ConversationID: "user"}}
	captured := []byte("mic-audio")
	if err := svc.ProcessRecording(context.Background(), "sess-1", timeline, nil, captured); err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if len(fetcher.fetched) != 0 {
		t.Fatalf("expected no fetches, got %v", fetcher.fetched)
	}
	if string(scribe.gotAudio) != "mic-audio" {
		t.Fatalf("expected local capture to be transcribed, got %q", scribe.gotAudio)
	}
	if len(sender.reports) != 1 {
		t.Fatalf("expected one report sent, got %d", len(sender.reports))
	}
}

func TestProcessRecording_FetchFailureIsFatal(t *testing.T) {
	cfg := &config.Config{WorkDir: t.TempDir()}
	fetcher := &fakeFetcher{err: errors.New("download failed")}
	svc := NewService(cfg, &fakeStore{}, fetcher, &fakeSplicer{}, &fakeTranscriber{}, &fakeScorer{}, &fakeSender{})

	if err := svc.ProcessRecording(context.Background(), "sess-1", testTimeline(), []string{"conv-a"}, nil); err == nil {
		t.Fatal("expected error when conversation audio cannot be fetched")
	}
}

func TestProcessRecording_UnknownScoredSegmentIsSkipped(t *testing.T) {
	cfg := &config.Config{WorkDir: t.TempDir()}
	store := &fakeStore{}
	scribe := &fakeTranscriber{segments: []transcriber.Segment{
		{ID: 0, Start: 0, End: 4, Text: "Hello."},
	}}
	sc := &fakeScorer{weakAreas: []scorer.WeakArea{{ID: 99, Explanation: "Bogus."}}}
	sender := &fakeSender{}

	svc := NewService(cfg, store, &fakeFetcher{}, &fakeSplicer{}, scribe, sc, sender)
	if err := svc.ProcessRecording(context.Background(), "sess-1", testTimeline(), []string{"conv-a"}, nil); err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if len(store.inserted) != 0 {
		t.Fatalf("expected no weak areas stored, got %v", store.inserted)
	}
	if len(sender.reports) != 1 || len(sender.reports[0].WeakAreas) != 0 {
		t.Fatalf("expected an empty report, got %v", sender.reports)
	}
}

func TestProcessRecording_WebhookFailureIsNotFatal(t *testing.T) {
	cfg := &config.Config{WorkDir: t.TempDir()}
	scribe := &fakeTranscriber{segments: []transcriber.Segment{
		{ID: 0, Start: 0, End: 4, Text: "Hello."},
	}}
	sender := &fakeSender{err: errors.New("delivery failed")}

	svc := NewService(cfg, &fakeStore{}, &fakeFetcher{}, &fakeSplicer{}, scribe, &fakeScorer{}, sender)
	if err := svc.ProcessRecording(context.Background(), "sess-1", testTimeline(), []string{"conv-a"}, nil); err != nil {
		t.Fatalf("expected webhook failure to be tolerated, got %v", err)
	}
}
