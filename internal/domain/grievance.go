package domain

import "time"

// GrievanceStatus is free text; the constants are the values the workflow recognizes.
type GrievanceStatus string

const (
	GrievanceStatusPending    GrievanceStatus = "Pending"
	GrievanceStatusInProgress GrievanceStatus = "In Progress"
	GrievanceStatusResolved   GrievanceStatus = "Resolved"
)

// Grievance is a citizen complaint tracked through its status lifecycle.
type Grievance struct {
	ID              int64
	OwnerID         *int64
	Owner           *User
	Category        string
	Description     string
	Status          GrievanceStatus
	ReadByAuthority bool
	DateRaised      time.Time
	RejectionReason *string
	ResolutionNote  *string
	UserImages      []string
	AdminImages     []string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// OwnerEmail returns the owner's address, or "" when no owner is attached.
func (g *Grievance) OwnerEmail() string {
	if g == nil || g.Owner == nil {
		return ""
	}
	return g.Owner.Email
}

// Clone returns a deep copy so callers can mutate image lists independently.
func (g Grievance) Clone() Grievance {
	out := g
	if g.OwnerID != nil {
		id := *g.OwnerID
		out.OwnerID = &id
	}
	if g.Owner != nil {
		owner := *g.Owner
		out.Owner = &owner
	}
	if g.RejectionReason != nil {
		v := *g.RejectionReason
		out.RejectionReason = &v
	}
	if g.ResolutionNote != nil {
		v := *g.ResolutionNote
		out.ResolutionNote = &v
	}
	out.UserImages = append([]string{}, g.UserImages...)
	out.AdminImages = append([]string{}, g.AdminImages...)
	return out
}
