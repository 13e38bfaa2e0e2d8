package domain

import "strings"

// Role names used by the remote service.
const (
	RoleAdmin = "Admin"
	RoleUser  = "User"
)

// Identity is a person known to the remote service.
//
// ID is the stable identifier. Binding decisions compare IDs and fall
// back to the exact username only when the ID is unknown.
type Identity struct {
	ID                 int64  `json:"id" yaml:"id"`
	Username           string `json:"username" yaml:"username"`
	FullName           string `json:"full_name" yaml:"full_name"`
	Department         string `json:"department,omitempty" yaml:"department,omitempty"`
	Role               string `json:"role,omitempty" yaml:"role,omitempty"`
	IsActive           bool   `json:"is_active" yaml:"is_active"`
	MustChangePassword bool   `json:"must_change_password" yaml:"must_change_password"`
}

// Valid reports whether the identity carries the fields a session needs.
func (i *Identity) Valid() bool {
	return i != nil && i.ID > 0 && strings.TrimSpace(i.Username) != ""
}

// IsEmployee reports whether the identity may redeem tokens.
func (i *Identity) IsEmployee() bool {
	return i != nil && i.IsActive && i.Role == RoleUser
}

// IsAdmin reports whether the identity may issue tokens.
func (i *Identity) IsAdmin() bool {
	return i != nil && i.Role == RoleAdmin
}

// DisplayName returns the full name, falling back to the username.
func (i *Identity) DisplayName() string {
	if i == nil {
		return ""
	}
	if i.FullName != "" {
		return i.FullName
	}
	return i.Username
}

// Clone returns a deep copy, or nil.
func (i *Identity) Clone() *Identity {
	if i == nil {
		return nil
	}
	c := *i
	return &c
}

// SameAs reports whether other names the same person. IDs are compared
// when i carries one; otherwise the usernames must match exactly.
func (i *Identity) SameAs(other *Identity) bool {
	if i == nil || other == nil {
		return false
	}
	if i.ID > 0 {
		return i.ID == other.ID
	}
	return i.Username != "" && i.Username == other.Username
}

// Claimable reports whether i can be presented as a redemption claim.
func (i *Identity) Claimable() bool {
	return i != nil && (i.ID > 0 || strings.TrimSpace(i.Username) != "")
}
