// Package events publishes analytics events about conversational turns.
// Publishing is fire-and-forget: a missing or unreachable broker never
// affects request handling.
package events

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
	"go.uber.org/zap"
)

// TurnEvent summarizes one conversational turn for downstream consumers.
type TurnEvent struct {
	ConversationID string    `json:"conversation_id"`
	Utterance      string    `json:"utterance"`
	Intents        []string  `json:"intents"`
	Location       string    `json:"location,omitempty"`
	ResultCount    int       `json:"result_count"`
	Applied        []string  `json:"applied,omitempty"`
	Relaxed        []string  `json:"relaxed,omitempty"`
	TookMs         int64     `json:"took_ms"`
	At             time.Time `json:"at"`
}

// FeedbackEvent reports a user action on a listing.
type FeedbackEvent struct {
	ConversationID string    `json:"conversation_id"`
	ListingID      string    `json:"listing_id"`
	Action         string    `json:"action"`
	At             time.Time `json:"at"`
}

// Publisher emits events to NATS. A nil Publisher is a valid no-op.
type Publisher struct {
	conn          *nats.Conn
	subjectPrefix string
	logger        *zap.Logger
}

// NewPublisher connects to the broker. Reconnects are handled by the client.
func NewPublisher(url, subjectPrefix string, logger *zap.Logger) (*Publisher, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	conn, err := nats.Connect(url,
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to nats: %w", err)
	}
	return &Publisher{conn: conn, subjectPrefix: subjectPrefix, logger: logger}, nil
}

// PublishTurn emits a turn event. Errors are logged, never returned.
func (p *Publisher) PublishTurn(event *TurnEvent) {
	p.publish("turn", event)
}

// PublishFeedback emits a feedback event.
func (p *Publisher) PublishFeedback(event *FeedbackEvent) {
	p.publish("feedback", event)
}

func (p *Publisher) publish(kind string, event any) {
	if p == nil || p.conn == nil {
		return
	}
	data, err := json.Marshal(event)
	if err != nil {
		p.logger.Warn("failed to encode event", zap.String("kind", kind), zap.Error(err))
		return
	}
	subject := p.subjectPrefix + "." + kind
	if err := p.conn.Publish(subject, data); err != nil {
		p.logger.Warn("failed to publish event", zap.String("subject", subject), zap.Error(err))
	}
}

// Close drains pending publishes and disconnects.
func (p *Publisher) Close() {
	if p == nil || p.conn == nil {
		return
	}
	_ = p.conn.Drain()
}
