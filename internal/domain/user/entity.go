package user

type Role string

const (
	RoleOwner    Role = "owner"    // Company owner - full access
	RoleHR       Role = "hr"       // Runs payroll and decides leave
	RoleEmployee Role = "employee" // Regular employee
)

func (r Role) Valid() bool {
	switch r {
	case RoleOwner, RoleHR, RoleEmployee:
		return true
	}
	return false
}

// Actor is the authenticated caller, resolved from the access token claims.
type Actor struct {
	UserID     string
	EmployeeID string
	CompanyID  string
	Role       Role
}

// HasEmployee reports whether the caller is linked to an employee record.
func (a Actor) HasEmployee() bool {
	return a.EmployeeID != ""
}
