// internal/adapter/events/publisher.go

package events

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
)

// Event types published by the tracker
const (
	TypePosition = "position"
	TypeFact     = "fact"
)

// Envelope wraps every published event
type Envelope struct {
	ID      string      `json:"id"`
	Type    string      `json:"type"`
	Time    time.Time   `json:"time"`
	Payload interface{} `json:"payload"`
}

// NewEnvelope creates an envelope with a fresh id
func NewEnvelope(eventType string, payload interface{}) Envelope {
	return Envelope{
		ID:      uuid.New().String(),
		Type:    eventType,
		Time:    time.Now().UTC(),
		Payload: payload,
	}
}

// Publisher publishes tracker events
type Publisher interface {
	Publish(eventType string, payload interface{}) error
}

// Subject returns the NATS subject for an event type under topic
func Subject(topic, eventType string) string {
	return fmt.Sprintf("%s.%s", topic, eventType)
}

// Wildcard returns the subject matching every event under topic
func Wildcard(topic string) string {
	return fmt.Sprintf("%s.>", topic)
}

// NATSPublisher publishes JSON envelopes to NATS
type NATSPublisher struct {
	conn  *nats.Conn
	topic string
}

// NewNATSPublisher creates a publisher for subjects under topic
func NewNATSPublisher(conn *nats.Conn, topic string) *NATSPublisher {
	return &NATSPublisher{
		conn:  conn,
		topic: topic,
	}
}

// Publish implements Publisher
func (p *NATSPublisher) Publish(eventType string, payload interface{}) error {
	data, err := json.Marshal(NewEnvelope(eventType, payload))
	if err != nil {
		return fmt.Errorf("error marshaling %s event: %w", eventType, err)
	}

	return p.conn.Publish(Subject(p.topic, eventType), data)
}

// NopPublisher drops every event. It is used when NATS is unavailable.
type NopPublisher struct{}

// Publish implements Publisher
func (NopPublisher) Publish(string, interface{}) error { return nil }
