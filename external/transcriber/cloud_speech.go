package transcriber

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"

	"cloud.google.com/go/auth/credentials"
	speech "cloud.google.com/go/speech/apiv2"
	speechpb "cloud.google.com/go/speech/apiv2/speechpb"
	"google.golang.org/api/option"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/pitchperfect/pitchperfect/internal/transcriber"
)

const (
	speechAPIEndpointPort = 443
	audioChunkBytes       = 32 * 1024
)

type CloudSpeechConfig struct {
	ProjectID       string
	CredentialsJSON string
	Language        string
	Location        string
	Model           string
}

type CloudSpeechTranscriber struct {
	projectID       string
	credentialsJSON string
	defaultLanguage string
	location        string
	model           string
}

func NewCloudSpeechTranscriber(cfg CloudSpeechConfig) transcriber.Transcriber {
	return &CloudSpeechTranscriber{
		projectID:       cfg.ProjectID,
		credentialsJSON: cfg.CredentialsJSON,
		defaultLanguage: cfg.Language,
		location:        strings.TrimSpace(cfg.Location),
		model:           strings.TrimSpace(cfg.Model),
	}
}

// Transcribe streams the recording through Cloud Speech and collects the
// final results into timed segments. Streams abort after five minutes of
// audio; the writer reconnects and the collector rebases offsets so segment
// times stay relative to the start of the recording.
func (t *CloudSpeechTranscriber) Transcribe(ctx context.Context, audio []byte, language string) ([]transcriber.Segment, error) {
	if language == "" {
		language = t.defaultLanguage
	}
	slog.Info("starting cloud speech transcription", "location", t.location, "language", language, "model", t.model, "audio_bytes", len(audio))

	creds, err := credentials.DetectDefault(&credentials.DetectOptions{
		CredentialsJSON: []byte(t.credentialsJSON),
		Scopes:          []string{"https://www.googleapis.com/auth/cloud-platform"},
	})
	if err != nil {
		return nil, fmt.Errorf("detect credentials: %w", err)
	}

	opts := []option.ClientOption{
		option.WithAuthCredentials(creds),
	}
	if t.location != "global" {
		opts = append(opts, option.WithEndpoint(fmt.Sprintf("%s-speech.googleapis.com:%d", t.location, speechAPIEndpointPort)))
	}

	client, err := speech.NewClient(ctx, opts...)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = client.Close()
	}()

	recognizer := fmt.Sprintf("projects/%s/locations/%s/recognizers/_", t.projectID, t.location)
	sendConfig := func(s speechpb.Speech_StreamingRecognizeClient) error {
		return s.Send(&speechpb.StreamingRecognizeRequest{
			Recognizer: recognizer,
			StreamingRequest: &speechpb.StreamingRecognizeRequest_StreamingConfig{
				StreamingConfig: &speechpb.StreamingRecognitionConfig{
					Config: &speechpb.RecognitionConfig{
						Model:         t.model,
						LanguageCodes: []string{language},
						DecodingConfig: &speechpb.RecognitionConfig_AutoDecodingConfig{
							AutoDecodingConfig: &speechpb.AutoDetectDecodingConfig{},
						},
						Features: &speechpb.RecognitionFeatures{},
					},
				},
			},
		})
	}

	newStream := func() (speechpb.Speech_StreamingRecognizeClient, error) {
		s, err := client.StreamingRecognize(ctx)
		if err != nil {
			return nil, err
		}
		if err := sendConfig(s); err != nil {
			_ = s.CloseSend()
			return nil, err
		}
		return s, nil
	}

	c := &segmentCollector{}
	stream, err := newStream()
	if err != nil {
		return nil, err
	}
	done := c.startReceiver(stream)

	for offset := 0; offset < len(audio); offset += audioChunkBytes {
		end := offset + audioChunkBytes
		if end > len(audio) {
			end = len(audio)
		}
		req := &speechpb.StreamingRecognizeRequest{
			StreamingRequest: &speechpb.StreamingRecognizeRequest_Audio{
				Audio: audio[offset:end],
			},
		}
		if err := stream.Send(req); err != nil {
			if !isReconnectableStreamError(err) {
				_ = stream.CloseSend()
				<-done
				return nil, fmt.Errorf("send audio: %w", err)
			}
			slog.Warn("transcriber stream aborted; reconnecting", "error", err)
			<-done
			_ = stream.CloseSend()
			c.rebase()
			stream, err = newStream()
			if err != nil {
				return nil, fmt.Errorf("reconnect stream: %w", err)
			}
			done = c.startReceiver(stream)
			if err := stream.Send(req); err != nil {
				_ = stream.CloseSend()
				<-done
				return nil, fmt.Errorf("send audio after reconnect: %w", err)
			}
		}
	}

	if err := stream.CloseSend(); err != nil {
		<-done
		return nil, err
	}
	<-done

	segments, recvErr := c.result()
	if recvErr != nil {
		return nil, recvErr
	}
	slog.Info("cloud speech transcription finished", "segments", len(segments))
	return segments, nil
}

// segmentCollector accumulates final results across stream reconnects.
type segmentCollector struct {
	mu       sync.Mutex
	segments []transcriber.Segment
	timeBase float64
	err      error
}

func (c *segmentCollector) startReceiver(stream speechpb.Speech_StreamingRecognizeClient) <-chan struct{} {
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			resp, err := stream.Recv()
			if err != nil {
				if err == io.EOF || strings.Contains(err.Error(), "context canceled") {
					return
				}
				if isReconnectableStreamError(err) {
					slog.Warn("transcriber receive loop ended with reconnectable abort", "error", err)
					return
				}
				c.mu.Lock()
				if c.err == nil {
					c.err = err
				}
				c.mu.Unlock()
				return
			}
			for _, result := range resp.GetResults() {
				if !result.GetIsFinal() || len(result.GetAlternatives()) == 0 {
					continue
				}
				c.append(result.GetAlternatives()[0].GetTranscript(), result.GetResultEndOffset().AsDuration().Seconds())
			}
		}
	}()
	return done
}

func (c *segmentCollector) append(text string, endOffset float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	start := c.timeBase
	if n := len(c.segments); n > 0 {
		start = c.segments[n-1].End
	}
	c.segments = append(c.segments, transcriber.Segment{
		ID:    len(c.segments),
		Start: start,
		End:   c.timeBase + endOffset,
		Text:  strings.TrimSpace(text),
	})
}

// rebase anchors the next stream's offsets after the audio already consumed.
func (c *segmentCollector) rebase() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if n := len(c.segments); n > 0 {
		c.timeBase = c.segments[n-1].End
	}
}

func (c *segmentCollector) result() ([]transcriber.Segment, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.segments, c.err
}

func isReconnectableStreamError(err error) bool {
	if err == io.EOF || strings.Contains(strings.ToLower(err.Error()), "eof") {
		return true
	}
	st, ok := status.FromError(err)
	if !ok || st.Code() != codes.Aborted {
		return false
	}
	msg := strings.ToLower(st.Message())
	return strings.Contains(msg, "max duration of 5 minutes") ||
		strings.Contains(msg, "stream timed out after receiving no more client requests")
}
