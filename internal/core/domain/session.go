package domain

// SessionStateVersion is the version of the persisted session envelope.
const SessionStateVersion = 1

// SessionState is the durable part of an operator or employee session.
//
// Authenticated is true iff Identity is set and BearerCredential is
// non-empty. Nothing else is ever serialised.
type SessionState struct {
	Identity         *Identity `json:"identity"`
	BearerCredential string    `json:"bearer_credential"`
	Authenticated    bool      `json:"authenticated"`
	MustRotate       bool      `json:"must_rotate"`
}

// Consistent reports whether the state satisfies the authentication invariant
// and can be hydrated without partial fields.
func (s *SessionState) Consistent() bool {
	if s == nil {
		return false
	}
	hasBoth := s.Identity.Valid() && s.BearerCredential != ""
	return s.Authenticated == hasBoth
}

// Clone returns a deep copy of the state.
func (s SessionState) Clone() SessionState {
	s.Identity = s.Identity.Clone()
	return s
}

// PersistedSession is the versioned envelope written to durable storage.
type PersistedSession struct {
	Version int          `json:"version"`
	State   SessionState `json:"state"`
	SavedAt int64        `json:"saved_at"` // Unix milliseconds
}
