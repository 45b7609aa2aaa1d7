// Package auth issues session tokens and answers every "may this role do
// that" question through CanAccess.
package auth

import "go-pos-ledger/internal/models"

// Resource is something a role may or may not reach.
type Resource string

const (
	ResourceDashboard Resource = "dashboard"
	ResourceProducts  Resource = "products"
	ResourceSales     Resource = "sales"
	ResourceExpenses  Resource = "expenses"
	ResourceCustomers Resource = "customers"
	ResourceReports   Resource = "reports"
	ResourceSettings  Resource = "settings"
	ResourceUsers     Resource = "users"
	ResourceDiscounts Resource = "discounts"
	ResourceAssistant Resource = "assistant"
)

var grants = map[string]map[Resource]bool{
	models.RoleAdmin: {
		ResourceDashboard: true,
		ResourceProducts:  true,
		ResourceSales:     true,
		ResourceExpenses:  true,
		ResourceCustomers: true,
		ResourceReports:   true,
		ResourceSettings:  true,
		ResourceUsers:     true,
		ResourceDiscounts: true,
		ResourceAssistant: true,
	},
	models.RoleCashier: {
		ResourceDashboard: true,
		ResourceProducts:  true,
		ResourceSales:     true,
		ResourceExpenses:  true,
		ResourceCustomers: true,
		ResourceReports:   true,
	},
}

// CanAccess is the one authorization check. Unknown roles get nothing.
func CanAccess(role string, resource Resource) bool {
	return grants[role][resource]
}

// ValidRole reports whether role can be assigned to a user.
func ValidRole(role string) bool {
	_, ok := grants[role]
	return ok
}
