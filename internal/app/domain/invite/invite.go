// Package invite defines contact candidates and the invites issued to them.
package invite

import "time"

// ContactCandidate is a selectable contact sourced from the device address
// book or the internal roster.
type ContactCandidate struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Phone string `json:"phone,omitempty"`
	Email string `json:"email,omitempty"`
}

// Status tracks invite delivery.
type Status string

const (
	StatusPending Status = "pending"
	StatusSent    Status = "sent"
	StatusFailed  Status = "failed"
)

// Invite is a persisted invitation to join an entity.
type Invite struct {
	ID        string    `json:"id"`
	InviterID string    `json:"inviter_id"`
	EntityID  string    `json:"entity_id"`
	Name      string    `json:"name"`
	Phone     string    `json:"phone,omitempty"`
	Email     string    `json:"email,omitempty"`
	Message   string    `json:"message"`
	Status    Status    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
