package testutils

import (
	"encoding/json"
	"sync"

	"spoolman/spoolman/broker"
	"spoolman/spoolman/models"
)

// PublishedEvent is one call recorded by RecordingPublisher.
type PublishedEvent struct {
	Topic broker.Topic
	Event models.ChangeEvent
}

// RecordingPublisher captures published change events instead of
// delivering them.
type RecordingPublisher struct {
	mu     sync.Mutex
	events []PublishedEvent
}

func (p *RecordingPublisher) Publish(topic broker.Topic, event interface{}) int {
	p.mu.Lock()
	defer p.mu.Unlock()

	change, _ := event.(models.ChangeEvent)
	p.events = append(p.events, PublishedEvent{Topic: topic, Event: change})
	return 0
}

func (p *RecordingPublisher) Events() []PublishedEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]PublishedEvent(nil), p.events...)
}

func (p *RecordingPublisher) Reset() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = nil
}

// WireEvent is a change event as a websocket client decodes it.
type WireEvent struct {
	Type     models.EventType `json:"type"`
	Resource string           `json:"resource"`
	Date     string           `json:"date"`
	Payload  map[string]any   `json:"payload"`
}

func DecodeWireEvent(data []byte) (WireEvent, error) {
	var event WireEvent
	err := json.Unmarshal(data, &event)
	return event, err
}
