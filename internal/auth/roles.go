package auth

// Role represents an API caller role within the energy community.
type Role string

const (
	// RoleParticipant may read its own ledger and invoices.
	RoleParticipant Role = "participant"
	// RoleOperator manages billing for the whole community.
	RoleOperator Role = "operator"
	// RoleAdmin additionally manages participant master data.
	RoleAdmin Role = "admin"
)

// NormalizeRole validates and normalizes a role string.
func NormalizeRole(value string) (Role, bool) {
	switch Role(value) {
	case RoleParticipant, RoleOperator, RoleAdmin:
		return Role(value), true
	default:
		return "", false
	}
}

// RoleAtLeast returns true when role satisfies required role.
func RoleAtLeast(role Role, required Role) bool {
	return roleRank(role) >= roleRank(required)
}

func roleRank(role Role) int {
	switch role {
	case RoleParticipant:
		return 1
	case RoleOperator:
		return 2
	case RoleAdmin:
		return 3
	default:
		return 0
	}
}
