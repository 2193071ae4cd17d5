package models

// Role is a member's permission level within a group.
type Role string

const (
	// RoleAdmin may update the group and remove other members.
	RoleAdmin Role = "admin"
	// RoleMember may record expenses and remove only themselves.
	RoleMember Role = "member"
)

// Member is one user's membership in a group. At most one membership row
// exists per (group, user) pair.
type Member struct {
	// GroupID is the group this membership belongs to.
	GroupID string

	// UserID is the opaque external identity of the member.
	UserID string

	// Role is the member's permission level.
	Role Role

	// JoinedAt is the Unix timestamp when the member joined.
	JoinedAt int64
}
