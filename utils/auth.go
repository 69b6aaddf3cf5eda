package utils

// Permission levels
const (
	SuperAdminPermission = "super_admin"
	DeveloperPermission  = "developer"
	AdminPermission      = "admin"
	ModPermission        = "mod"
	GuestPermission      = "guest"
)

// contains checks if a slice of strings contains an element.
func contains(slice []string, item string) bool {
	for _, a := range slice {
		if a == item {
			return true
		}
	}
	return false
}

// CheckPermission checks the highest permission level for a member's role
// IDs against the configured roles.
func CheckPermission(memberRoleIDs []string, userID string, adminRoleIDs, modRoleIDs, developerUserIDs, superAdminRoleIDs []string) string {
	if contains(developerUserIDs, userID) {
		return DeveloperPermission
	}

	// Super Admin check
	for _, roleID := range memberRoleIDs {
		if contains(superAdminRoleIDs, roleID) {
			return SuperAdminPermission
		}
	}

	// Admin check
	for _, roleID := range memberRoleIDs {
		if contains(adminRoleIDs, roleID) {
			return AdminPermission
		}
	}

	// Mod check
	for _, roleID := range memberRoleIDs {
		if contains(modRoleIDs, roleID) {
			return ModPermission
		}
	}

	return GuestPermission
}

// CanModerate reports whether the permission level is allowed to issue
// warnings and manage enforcements.
func CanModerate(level string) bool {
	switch level {
	case DeveloperPermission, SuperAdminPermission, AdminPermission, ModPermission:
		return true
	}
	return false
}
