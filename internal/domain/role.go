package domain

// Role is the closed set of dashboard roles a session may carry.
type Role string

const (
	RoleCustomer         Role = "CUSTOMER"
	RoleAdmin            Role = "ADMIN"
	RoleVerifiedMechanic Role = "VERIFIED_MECHANIC"
	RoleUnrecognized     Role = "UNRECOGNIZED"
)

// ParseRole maps a raw backend role string onto the closed enumeration.
// Matching is exact and case-sensitive; anything else, including the empty
// string, resolves to RoleUnrecognized. The function is total and never fails.
func ParseRole(raw string) Role {
	switch raw {
	case string(RoleCustomer):
		return RoleCustomer
	case string(RoleAdmin):
		return RoleAdmin
	case string(RoleVerifiedMechanic):
		return RoleVerifiedMechanic
	default:
		return RoleUnrecognized
	}
}

// Known reports whether the role maps to a real dashboard. Unrecognized
// sessions are authenticated but land on the fallback screen.
func (r Role) Known() bool {
	switch r {
	case RoleCustomer, RoleAdmin, RoleVerifiedMechanic:
		return true
	default:
		return false
	}
}
