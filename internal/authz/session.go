package authz

import "github.com/EnpoDev/camlikspor-sub001/internal/model"

// Session is the resolved snapshot of an actor's identity, dealer and
// capabilities, fixed at sign-in. Every authorization decision during the
// session's lifetime reads from this value; nothing re-derives capabilities
// from the role after issuance, so the sub-dealer restriction applied at
// sign-in cannot be bypassed by a later hierarchy change within the token's
// lifetime.
type Session struct {
	UserID     uint       `json:"user_id"`
	Email      string     `json:"email"`
	Name       string     `json:"name"`
	Role       model.Role `json:"role"`
	DealerID   *uint      `json:"dealer_id,omitempty"`
	DealerName string     `json:"dealer_name,omitempty"`
	DealerSlug string     `json:"dealer_slug,omitempty"`
	SubDealer  bool       `json:"sub_dealer"`

	capSet CapabilitySet
}

// NewSession builds an immutable session snapshot. caps must already be
// filtered for the sub-dealer restriction; NewSession does not re-filter.
func NewSession(user *model.User, dealer *model.Dealer, caps CapabilitySet) *Session {
	s := &Session{
		UserID: user.ID,
		Email:  user.Email,
		Name:   user.Name,
		Role:   user.Role,
		capSet: caps,
	}
	if dealer != nil {
		id := dealer.ID
		s.DealerID = &id
		s.DealerName = dealer.Name
		s.DealerSlug = dealer.Slug
		s.SubDealer = dealer.IsSub()
	}
	return s
}

// RestoreSession rebuilds a session from an already-verified token payload.
func RestoreSession(s Session, caps []Capability) *Session {
	s.capSet = NewSet(caps...)
	return &s
}

// HasCapability is a pure membership check against the session's resolved
// capability set. No I/O.
func (s *Session) HasCapability(c Capability) bool {
	return s.capSet.Has(c)
}

// Capabilities returns the resolved capability list, sorted.
func (s *Session) Capabilities() []Capability {
	return s.capSet.List()
}

// IsSuperAdmin reports whether the session belongs to the platform operator.
func (s *Session) IsSuperAdmin() bool {
	return s.Role == model.RoleSuperAdmin
}
