// Package events publishes lifecycle events to NATS. Publishing is
// fire-and-forget: a broker outage must never fail the originating request.
package events

import (
	"encoding/json"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog"
)

// Subjects for storefront lifecycle events.
const (
	SubjectOrderCreated       = "floresya.orders.created"
	SubjectOrderStatusChanged = "floresya.orders.status_changed"
	SubjectUserRegistered     = "floresya.users.registered"
	SubjectUserDeactivated    = "floresya.users.deactivated"
)

// Event is the envelope published on every subject.
type Event struct {
	Subject   string                 `json:"subject"`
	Timestamp time.Time              `json:"timestamp"`
	Payload   map[string]interface{} `json:"payload"`
}

// Publisher publishes events to NATS. A nil connection disables publishing.
type Publisher struct {
	conn   *nats.Conn
	logger zerolog.Logger
}

// NewPublisher creates a publisher over an established NATS connection.
func NewPublisher(conn *nats.Conn, logger zerolog.Logger) *Publisher {
	return &Publisher{
		conn:   conn,
		logger: logger.With().Str("component", "events").Logger(),
	}
}

// Publish emits one event. Failures are logged, never returned.
func (p *Publisher) Publish(subject string, payload map[string]interface{}) {
	if p.conn == nil {
		return
	}

	event := Event{
		Subject:   subject,
		Timestamp: time.Now().UTC(),
		Payload:   payload,
	}

	data, err := json.Marshal(event)
	if err != nil {
		p.logger.Error().Err(err).Str("subject", subject).Msg("event not serializable")
		return
	}

	if err := p.conn.Publish(subject, data); err != nil {
		p.logger.Warn().Err(err).Str("subject", subject).Msg("event publish failed")
		return
	}

	p.logger.Debug().Str("subject", subject).Msg("event published")
}
