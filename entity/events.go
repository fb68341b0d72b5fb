package entity

import (
	"time"

	"github.com/google/uuid"
)

const (
	AuditVehicleBooked  = "VEHICLE_BOOKED"
	AuditUserRegistered = "USER_REGISTERED"
	AuditVehicleAdded   = "VEHICLE_ADDED"
)

type EventHeader struct {
	ID            string    `json:"id"`
	PublishedAt   time.Time `json:"published_at"`
	CorrelationID string    `json:"correlation_id,omitempty"`
}

func NewEventHeader() EventHeader {
	return EventHeader{
		ID:          uuid.NewString(),
		PublishedAt: time.Now().UTC(),
	}
}

func NewEventHeaderWithCorrelationID(correlationID string) EventHeader {
	h := NewEventHeader()
	h.CorrelationID = correlationID
	return h
}

// AuditEvent is the envelope written to the event log.
type AuditEvent struct {
	Header    EventHeader    `json:"header"`
	EventType string         `json:"event_type"`
	Details   map[string]any `json:"details"`
}
