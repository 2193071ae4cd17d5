package models

// SplitType selects how an expense is divided when no explicit splits are
// supplied.
type SplitType string

const (
	// SplitTypeEqual divides the expense equally among all current members.
	SplitTypeEqual SplitType = "equal"
	// SplitTypeExact requires the caller to supply every split amount.
	SplitTypeExact SplitType = "exact"
)

// InvitePolicy controls who may add new members to a group.
type InvitePolicy string

const (
	// InvitePolicyAdmin allows only admins to add members.
	InvitePolicyAdmin InvitePolicy = "admin"
	// InvitePolicyAnyMember allows any current member to add members.
	InvitePolicyAnyMember InvitePolicy = "any_member"
)

// GroupSettings holds per-group behavior toggles.
type GroupSettings struct {
	// DefaultSplitType applies when an expense is created without splits.
	DefaultSplitType SplitType

	// InvitePolicy controls who may invite new members.
	InvitePolicy InvitePolicy
}

// Group represents a set of members who share expenses in one currency.
// Groups are never hard-deleted; membership lives in its own table.
type Group struct {
	// ID is the unique identifier for the group (UUID format).
	ID string

	// Name is the display name of the group (e.g., "Roommates", "Ski Trip").
	Name string

	// Currency is the ISO 4217 code all amounts in this group use.
	Currency string

	// OwnerID is the user who created the group. The owner is always
	// inserted as an admin member at creation time.
	OwnerID string

	// Settings holds the group's split and invite behavior.
	Settings GroupSettings

	// CreatedAt is the Unix timestamp when the group was created.
	CreatedAt int64
}
