package authz

import "sort"

// Capability is an atomic permission identifier. The set of capabilities is
// closed: every identifier used anywhere in the system is declared here and
// mapped by DefaultsForRole, so an unmapped capability is caught by the
// catalog tests rather than discovered at runtime.
type Capability string

// Pre-registration funnel.
const (
	CapPreRegView   Capability = "prereg.view"
	CapPreRegManage Capability = "prereg.manage"
)

// Students.
const (
	CapStudentsView   Capability = "students.view"
	CapStudentsCreate Capability = "students.create"
	CapStudentsEdit   Capability = "students.edit"
	CapStudentsDelete Capability = "students.delete"
)

// Trainers.
const (
	CapTrainersView   Capability = "trainers.view"
	CapTrainersCreate Capability = "trainers.create"
	CapTrainersEdit   Capability = "trainers.edit"
	CapTrainersDelete Capability = "trainers.delete"
)

// Training groups.
const (
	CapGroupsView   Capability = "groups.view"
	CapGroupsCreate Capability = "groups.create"
	CapGroupsEdit   Capability = "groups.edit"
	CapGroupsDelete Capability = "groups.delete"
)

// Attendance.
const (
	CapAttendanceView Capability = "attendance.view"
	CapAttendanceEdit Capability = "attendance.edit"
)

// Accounting sub-areas.
const (
	CapPaymentsView   Capability = "accounting.payments.view"
	CapPaymentsManage Capability = "accounting.payments.manage"
	CapExpensesView   Capability = "accounting.expenses.view"
	CapExpensesManage Capability = "accounting.expenses.manage"
	CapSalariesView   Capability = "accounting.salaries.view"
	CapSalariesManage Capability = "accounting.salaries.manage"
)

// Reports.
const (
	CapReportsView Capability = "reports.view"
)

// SMS.
const (
	CapSMSSend     Capability = "sms.send"
	CapSMSSettings Capability = "sms.settings"
)

// Back-office users.
const (
	CapUsersView   Capability = "users.view"
	CapUsersCreate Capability = "users.create"
	CapUsersEdit   Capability = "users.edit"
	CapUsersDelete Capability = "users.delete"
)

// Dealer settings.
const (
	CapSettingsView Capability = "settings.view"
	CapSettingsEdit Capability = "settings.edit"
)

// Dealer management.
const (
	CapDealersView   Capability = "dealers.view"
	CapDealersManage Capability = "dealers.manage"
)

// catalog is the full, ordered list of declared capabilities.
var catalog = []Capability{
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
	CapDealersView, CapDealersManage,
}

// All returns the complete capability catalog.
func All() []Capability {
	out := make([]Capability, len(catalog))
	copy(out, catalog)
	return out
}

// Valid reports whether c is a declared capability.
func Valid(c Capability) bool {
	_, ok := catalogIndex[c]
	return ok
}

var catalogIndex = func() map[Capability]struct{} {
	idx := make(map[Capability]struct{}, len(catalog))
	for _, c := range catalog {
		idx[c] = struct{}{}
	}
	return idx
}()

// CapabilitySet is an unordered set of capabilities.
type CapabilitySet map[Capability]struct{}

// NewSet builds a set from the given capabilities.
func NewSet(caps ...Capability) CapabilitySet {
	s := make(CapabilitySet, len(caps))
	for _, c := range caps {
		s[c] = struct{}{}
	}
	return s
}

// Has reports membership.
func (s CapabilitySet) Has(c Capability) bool {
	_, ok := s[c]
	return ok
}

// Without returns a copy of s with every capability in strip removed.
func (s CapabilitySet) Without(strip CapabilitySet) CapabilitySet {
	out := make(CapabilitySet, len(s))
	for c := range s {
		if _, drop := strip[c]; !drop {
			out[c] = struct{}{}
		}
	}
	return out
}

// List returns the set's members sorted by identifier, so serialized
// sessions come out deterministic.
func (s CapabilitySet) List() []Capability {
	out := make([]Capability, 0, len(s))
	for c := range s {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
