package dto

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"
)

// DateLayout is the wire format of dateRaised.
const DateLayout = "2006-01-02"

// Date is a calendar date encoded as YYYY-MM-DD.
type Date struct {
	time.Time
}

func (d *Date) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		return nil
	}
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if raw == "" {
		return nil
	}
	parsed, err := time.Parse(DateLayout, raw)
	if err != nil {
		return fmt.Errorf("dateRaised: %w", err)
	}
	d.Time = parsed
	return nil
}

func (d Date) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(d.Format(DateLayout))
}

// UserRef identifies a user by id inside a grievance payload.
type UserRef struct {
	ID *int64 `json:"id"`
}

// CreateGrievanceRequest payload for POST /api/grievances/add.
type CreateGrievanceRequest struct {
	Category        string   `json:"category"`
	Description     string   `json:"description"`
	Status          string   `json:"status"`
	ReadByAuthority bool     `json:"readByAuthority"`
	DateRaised      *Date    `json:"dateRaised"`
	User            *UserRef `json:"user"`
	RejectionReason *string  `json:"rejectionReason"`
	ResolutionNote  *string  `json:"resolutionNote"`
	UserImages      []string `json:"userImages"`
	AdminImages     []string `json:"adminImages"`
}

// UpdateGrievanceRequest payload for PUT /api/grievances/update/:id.
// Absent or null fields leave the stored value unchanged.
type UpdateGrievanceRequest struct {
	Category        *string  `json:"category"`
	Description     *string  `json:"description"`
	Status          *string  `json:"status"`
	RejectionReason *string  `json:"rejectionReason"`
	ResolutionNote  *string  `json:"resolutionNote"`
	UserImages      []string `json:"userImages"`
	AdminImages     []string `json:"adminImages"`
}

// GrievanceResponse is the wire form of a grievance.
type GrievanceResponse struct {
	ID              int64         `json:"id"`
	Category        string        `json:"category"`
	Description     string        `json:"description"`
	Status          string        `json:"status"`
	ReadByAuthority bool          `json:"readByAuthority"`
	DateRaised      Date          `json:"dateRaised"`
	User            *UserResponse `json:"user"`
	RejectionReason *string       `json:"rejectionReason"`
	ResolutionNote  *string       `json:"resolutionNote"`
	UserImages      []string      `json:"userImages"`
	AdminImages     []string      `json:"adminImages"`
}
