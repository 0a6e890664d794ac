package voice

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/pitchperfect/pitchperfect/internal/voice"
)

const (
	writeTimeout   = 5 * time.Second
	initiationWait = 10 * time.Second
)

// serverEvent is the envelope of every message the platform pushes over the
// conversation websocket. Only the fields we react to are decoded.
type serverEvent struct {
	Type string `json:"type"`

	InitiationMetadata *struct {
		ConversationID string `json:"conversation_id"`
	} `json:"conversation_initiation_metadata_event,omitempty"`

	Ping *struct {
		EventID int `json:"event_id"`
	} `json:"ping_event,omitempty"`
}

type wsSession struct {
	conn      *websocket.Conn
	identity  voice.AgentIdentity
	callbacks voice.Callbacks

	writeMu sync.Mutex

	mu             sync.Mutex
	conversationID string
	gain           voice.Gain
	lastMode       voice.Mode

	initiated chan struct{}
	closed    chan struct{}
	closeOnce sync.Once
}

func newWSSession(conn *websocket.Conn, identity voice.AgentIdentity, callbacks voice.Callbacks) *wsSession {
	s := &wsSession{
		conn:      conn,
		identity:  identity,
		callbacks: callbacks,
		gain:      voice.GainAudible,
		lastMode:  voice.ModeListening,
		initiated: make(chan struct{}),
		closed:    make(chan struct{}),
	}
	go s.readLoop()
	return s
}

// awaitInitiation blocks until the platform has assigned a conversation id.
func (s *wsSession) awaitInitiation(ctx context.Context) error {
	timer := time.NewTimer(initiationWait)
	defer timer.Stop()
	select {
	case <-s.initiated:
		return nil
	case <-s.closed:
		return fmt.Errorf("connection closed before initiation")
	case <-timer.C:
		return fmt.Errorf("timed out waiting for initiation metadata")
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *wsSession) RemoteID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.conversationID
}

// SetGain attenuates the agent locally. The platform keeps streaming either
// way; the gain only decides whether that stream is surfaced.
func (s *wsSession) SetGain(gain voice.Gain) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.gain == gain {
		return nil
	}
	s.gain = gain
	slog.Debug("agent gain changed",
		slog.String("agent_id", s.identity.AgentID),
		slog.String("gain", string(gain)))
	return nil
}

func (s *wsSession) End(ctx context.Context) error {
	var err error
	s.closeOnce.Do(func() {
		close(s.closed)
		deadline := time.Now().Add(writeTimeout)
		if d, ok := ctx.Deadline(); ok {
			deadline = d
		}
		_ = s.conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), deadline)
		err = s.conn.Close()
	})
	return err
}

func (s *wsSession) readLoop() {
	for {
		_, data, err := s.conn.ReadMessage()
		if err != nil {
			select {
			case <-s.closed:
			default:
				slog.Warn("agent session read failed",
					slog.String("agent_id", s.identity.AgentID),
					slog.String("error", err.Error()))
				if s.callbacks.OnError != nil {
					s.callbacks.OnError(err)
				}
			}
			if s.callbacks.OnDisconnect != nil {
				s.callbacks.OnDisconnect()
			}
			return
		}

		var event serverEvent
		if err := json.Unmarshal(data, &event); err != nil {
			continue
		}
		s.handleEvent(event)
	}
}

func (s *wsSession) handleEvent(event serverEvent) {
	switch event.Type {
	case "conversation_initiation_metadata":
		if event.InitiationMetadata == nil {
			return
		}
		s.mu.Lock()
		first := s.conversationID == ""
		s.conversationID = event.InitiationMetadata.ConversationID
		s.mu.Unlock()
		if first {
			close(s.initiated)
		}
	case "ping":
		eventID := 0
		if event.Ping != nil {
			eventID = event.Ping.EventID
		}
		s.writeJSON(map[string]any{"type": "pong", "event_id": eventID})
	case "audio", "agent_response":
		// The platform has begun producing agent speech.
		s.emitMode(voice.ModeSpeaking)
	case "user_transcript", "interruption", "agent_response_correction":
		s.emitMode(voice.ModeListening)
	}
}

// emitMode collapses repeated events for the same mode into one callback.
func (s *wsSession) emitMode(mode voice.Mode) {
	s.mu.Lock()
	changed := s.lastMode != mode
	s.lastMode = mode
	s.mu.Unlock()
	if !changed || s.callbacks.OnModeChange == nil {
		return
	}
	s.callbacks.OnModeChange(mode)
}

func (s *wsSession) writeJSON(payload any) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	_ = s.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	if err := s.conn.WriteJSON(payload); err != nil {
		slog.Warn("agent session write failed",
			slog.String("agent_id", s.identity.AgentID),
			slog.String("error", err.Error()))
	}
}
