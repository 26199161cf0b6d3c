package user

type Permission string

const (
	// Payroll
	PermissionPayrollReadOwn Permission = "payroll:read_own"
	PermissionPayrollReadAll Permission = "payroll:read_all"
	PermissionPayrollWrite   Permission = "payroll:write"
	PermissionPayrollPay     Permission = "payroll:pay"

	// Leave
	PermissionLeaveCreate             Permission = "leave:create"
	PermissionLeaveReadOwn            Permission = "leave:read_own"
	PermissionLeaveReadAll            Permission = "leave:read_all"
	PermissionLeaveDecide             Permission = "leave:decide"
	PermissionLeaveManageEntitlements Permission = "leave:manage_entitlements"

	// Attendance
	PermissionAttendanceWrite Permission = "attendance:write"
)

// RolePermissions is the default policy loaded into the authorizer.
var RolePermissions = map[Role][]Permission{
	RoleOwner: {
		PermissionPayrollReadOwn,
		PermissionPayrollReadAll,
		PermissionPayrollWrite,
		PermissionPayrollPay,
		PermissionLeaveCreate,
		PermissionLeaveReadOwn,
		PermissionLeaveReadAll,
		PermissionLeaveDecide,
		PermissionLeaveManageEntitlements,
		PermissionAttendanceWrite,
	},
	RoleHR: {
		PermissionPayrollReadOwn,
		PermissionPayrollReadAll,
		PermissionPayrollWrite,
		PermissionPayrollPay,
		PermissionLeaveCreate,
		PermissionLeaveReadOwn,
		PermissionLeaveReadAll,
		PermissionLeaveDecide,
		PermissionLeaveManageEntitlements,
		PermissionAttendanceWrite,
	},
	RoleEmployee: {
		PermissionPayrollReadOwn,
		PermissionLeaveCreate,
		PermissionLeaveReadOwn,
	},
}

// Authorizer answers whether a role holds a permission.
type Authorizer interface {
	Allowed(role Role, permission Permission) bool
}
