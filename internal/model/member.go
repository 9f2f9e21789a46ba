package model

import (
	"time"
)

// Role is a user's permission level on a board
type Role string

const (
	RoleOwner  Role = "owner"
	RoleAdmin  Role = "admin"
	RoleMember Role = "member"
	RoleViewer Role = "viewer"
)

// ParseRole parses an invitable role. Owner is implicit and never parsed.
func ParseRole(s string) (Role, bool) {
	switch Role(s) {
	case RoleAdmin, RoleMember, RoleViewer:
		return Role(s), true
	}
	return "", false
}

// CanManageMembers reports whether the role may invite or remove members
func (r Role) CanManageMembers() bool {
	return r == RoleOwner || r == RoleAdmin
}

// CanEdit reports whether the role may change cards and columns
func (r Role) CanEdit() bool {
	return r == RoleOwner || r == RoleAdmin || r == RoleMember
}

// BoardMember links a user to a board with a role.
// The owner is implicit via Board.UserID and never has a membership row.
type BoardMember struct {
	ID        string    `json:"id"`
	BoardID   string    `json:"board_id"`
	UserID    string    `json:"user_id"`
	Role      Role      `json:"role"`
	CreatedAt time.Time `json:"created_at"`

	// Loaded relationship (not stored in board_members)
	User *User `json:"user,omitempty"`
}

// EntityID implements store.Entity
func (m BoardMember) EntityID() string { return m.ID }
