package authz

import "gorm.io/gorm"

// DealerScope is the predicate restricting which dealer-owned rows a
// session may read or write.
type DealerScope struct {
	// Unrestricted skips dealer filtering entirely (superadmin only).
	Unrestricted bool
	// DealerIDs is the visible dealer id set when restricted. Empty and
	// not unrestricted means no rows are visible (a dealer-less,
	// non-superadmin session — should not occur, but fails closed).
	DealerIDs []uint
}

// TenantFilter computes the dealer-filter predicate for a session. This is
// the single general rule: superadmin sees everything, everyone else sees
// exactly their own dealer.
func TenantFilter(s *Session) DealerScope {
	if s.IsSuperAdmin() {
		return DealerScope{Unrestricted: true}
	}
	if s.DealerID == nil {
		return DealerScope{}
	}
	return DealerScope{DealerIDs: []uint{*s.DealerID}}
}

// UserListingFilter is the one documented widening of TenantFilter: on the
// user listing and user detail read paths, a dealer admin also sees users
// belonging to the child dealers of their own dealer. childIDs comes from
// the dealer hierarchy store; the caller fetches it so this stays pure.
// The widening applies to that read path only — it must not be used as a
// general dealer filter.
func UserListingFilter(s *Session, childIDs []uint) DealerScope {
	scope := TenantFilter(s)
	if scope.Unrestricted || len(scope.DealerIDs) == 0 {
		return scope
	}
	scope.DealerIDs = append(scope.DealerIDs, childIDs...)
	return scope
}

// Apply appends the scope's dealer predicate to a gorm query over a table
// with a dealer_id column.
func (sc DealerScope) Apply(db *gorm.DB) *gorm.DB {
	if sc.Unrestricted {
		return db
	}
	if len(sc.DealerIDs) == 0 {
		// Fail closed: match nothing rather than everything.
		return db.Where("1 = 0")
	}
	return db.Where("dealer_id IN ?", sc.DealerIDs)
}

// Contains reports whether a given dealer id falls inside the scope.
func (sc DealerScope) Contains(dealerID uint) bool {
	if sc.Unrestricted {
		return true
	}
	for _, id := range sc.DealerIDs {
		if id == dealerID {
			return true
		}
	}
	return false
}
