package user

type Permission string

const (
	// Self service
	PermissionAttendanceSelf Permission = "attendance.self"
	PermissionTaskViewOwn    Permission = "task.view_own"

	// Company management
	PermissionCompanyCreate Permission = "company.create"
	PermissionCompanyDelete Permission = "company.delete"
	PermissionCompanyManage Permission = "company.manage"

	// Employee management
	PermissionEmployeeManage Permission = "employee.manage"

	// Attendance management
	PermissionAttendanceManage Permission = "attendance.manage"

	// Task management
	PermissionTaskManage Permission = "task.manage"

	// Reports
	PermissionReportsView Permission = "reports.view"
)

var managerPermissions = []Permission{
	PermissionAttendanceSelf,
	PermissionTaskViewOwn,
	PermissionCompanyManage,
	PermissionEmployeeManage,
	PermissionAttendanceManage,
	PermissionTaskManage,
	PermissionReportsView,
}

// RolePermissions maps roles to their permissions
var RolePermissions = map[Role][]Permission{
	RoleSuperAdmin: append([]Permission{
		PermissionCompanyCreate,
		PermissionCompanyDelete,
	}, managerPermissions...),
	RoleCompanyAdmin: managerPermissions,
	RoleSubAdmin:     managerPermissions,
	RoleEmployee: {
		PermissionAttendanceSelf,
		PermissionTaskViewOwn,
		PermissionReportsView,
	},
}

// HasPermission checks if a role has a specific permission
func HasPermission(role Role, permission Permission) bool {
	for _, p := range RolePermissions[role] {
		if p == permission {
			return true
		}
	}
	return false
}
