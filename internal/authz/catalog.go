package authz

import (
	"fmt"

	"github.com/EnpoDev/camlikspor-sub001/internal/model"
)

// roleDefaults maps each role to its default capability set. The table is
// consulted only when a user has zero explicit permission grants.
var roleDefaults = map[model.Role][]Capability{
	model.RoleSuperAdmin: catalog, // everything, including dealer management

	model.RoleDealerAdmin: {
		CapPreRegView, CapPreRegManage,
		CapStudentsView, CapStudentsCreate, CapStudentsEdit, CapStudentsDelete,
		CapTrainersView, CapTrainersCreate, CapTrainersEdit, CapTrainersDelete,
		CapGroupsView, CapGroupsCreate, CapGroupsEdit, CapGroupsDelete,
		CapAttendanceView, CapAttendanceEdit,
		CapPaymentsView, CapPaymentsManage,
		CapExpensesView, CapExpensesManage,
		CapSalariesView, CapSalariesManage,
		CapReportsView,
		CapSMSSend, CapSMSSettings,
		CapUsersView, CapUsersCreate, CapUsersEdit, CapUsersDelete,
		CapSettingsView, CapSettingsEdit,
		CapDealersView,
	},

	model.RoleTrainer: {
		CapPreRegView,
		CapStudentsView,
		CapGroupsView,
		CapAttendanceView, CapAttendanceEdit,
	},
}

// DefaultsForRole returns the default capability set for a role. The role
// enum is closed, so an unknown role is a programming error and panics
// rather than degrading into an empty permission set.
func DefaultsForRole(role model.Role) CapabilitySet {
	caps, ok := roleDefaults[role]
	if !ok {
		panic(fmt.Sprintf("authz: no default capability set for role %q", role))
	}
	return NewSet(caps...)
}

// SubDealerRestricted is the fixed set of capabilities stripped from every
// sub-dealer session, regardless of role or explicit grants. Financial and
// administrative control stays with top-level dealers; this is platform
// policy, not per-dealer configuration.
var SubDealerRestricted = NewSet(
	CapPaymentsManage,
	CapExpensesView, CapExpensesManage,
	CapSalariesView, CapSalariesManage,
	CapSMSSettings,
	CapUsersDelete,
	CapSettingsEdit,
	CapDealersManage,
)
