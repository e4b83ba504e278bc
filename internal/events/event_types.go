package events

import (
	"time"

	"github.com/spec-kit/grievance-service/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventGrievanceCreated  EventType = "grievance_created"
	EventGrievanceUpdated  EventType = "grievance_updated"
	EventGrievanceResolved EventType = "grievance_resolved"
)

// Event represents a domain event emitted by services.
type Event struct {
	ID          string      `json:"id"`
	Type        EventType   `json:"type"`
	GrievanceID int64       `json:"grievance_id"`
	Timestamp   time.Time   `json:"timestamp"`
	Payload     interface{} `json:"payload"`
}

// GrievanceCreatedPayload payload.
type GrievanceCreatedPayload struct {
	OwnerID  *int64                 `json:"owner_id,omitempty"`
	Category string                 `json:"category"`
	Status   domain.GrievanceStatus `json:"status"`
}

// GrievanceUpdatedPayload payload.
type GrievanceUpdatedPayload struct {
	OldStatus        domain.GrievanceStatus `json:"old_status"`
	NewStatus        domain.GrievanceStatus `json:"new_status"`
	AdminImagesAdded int                    `json:"admin_images_added"`
	UserImagesAdded  int                    `json:"user_images_added"`
}

// GrievanceResolvedPayload carries what the resolution notice needs.
type GrievanceResolvedPayload struct {
	OwnerEmail     string `json:"owner_email"`
	ResolutionNote string `json:"resolution_note"`
}
