package models

import (
	"time"

	"github.com/google/uuid"
)

// MembershipStatus is the stored status of a join request.
type MembershipStatus string

const (
	StatusPending  MembershipStatus = "pending"
	StatusAccepted MembershipStatus = "accepted"
	StatusRejected MembershipStatus = "rejected"
)

// Valid reports whether s is one of the three stored statuses.
func (s MembershipStatus) Valid() bool {
	switch s {
	case StatusPending, StatusAccepted, StatusRejected:
		return true
	}
	return false
}

// MembershipRequest maps to the project_members table.
// At most one row exists per (project_id, user_id).
type MembershipRequest struct {
	ID        uuid.UUID        `json:"id,omitempty"`
	ProjectID uuid.UUID        `json:"project_id"`
	UserID    uuid.UUID        `json:"user_id"`
	Status    MembershipStatus `json:"status"`
	CreatedAt time.Time        `json:"created_at"`
}
