package models

import (
	"time"
)

type EventType string

const (
	EventAdded   EventType = "added"
	EventUpdated EventType = "updated"
	EventDeleted EventType = "deleted"
)

const (
	PrintJobResource = "print_job"
	SpoolResource    = "spool"
)

// ChangeEvent is pushed to websocket subscribers whenever an entity changes.
type ChangeEvent struct {
	Type     EventType   `json:"type"`
	Resource string      `json:"resource"`
	Date     time.Time   `json:"date"`
	Payload  interface{} `json:"payload"`
}

func NewChangeEvent(typ EventType, resource string, payload interface{}) ChangeEvent {
	return ChangeEvent{
		Type:     typ,
		Resource: resource,
		Date:     time.Now().UTC(),
		Payload:  payload,
	}
}
