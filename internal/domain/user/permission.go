package user

type Permission string

const (
	// Payroll
	PermissionPayrollView    Permission = "payroll.view"
	PermissionPayrollManage  Permission = "payroll.manage"
	PermissionPayrollProcess Permission = "payroll.process"

	// Reports
	PermissionReportsView Permission = "reports.view"

	// Settings
	PermissionSettingsManage Permission = "settings.manage"
)

// RolePermissions maps roles to their permissions
var RolePermissions = map[Role][]Permission{
	RoleOwner: {
		// Owner has all permissions
		PermissionPayrollView,
		PermissionPayrollManage,
		PermissionPayrollProcess,
		PermissionReportsView,
		PermissionSettingsManage,
	},
	RoleManager: {
		PermissionPayrollView,
		PermissionReportsView,
	},
	RoleEmployee: {},
}

// HasPermission checks if a role has a specific permission
func HasPermission(role Role, permission Permission) bool {
	permissions, exists := RolePermissions[role]
	if !exists {
		return false
	}

	for _, p := range permissions {
		if p == permission {
			return true
		}
	}

	return false
}
