package authz

// Permission is one of the fixed capability tags an actor may hold within
// a project. The tag strings are a stable contract: audit logs, admin UIs
// and API clients reference permissions by these exact names.
type Permission string

const (
	PermProjectSettings      Permission = "project.settings"
	PermProjectDelete        Permission = "project.delete"
	PermTicketsCreate        Permission = "tickets.create"
	PermTicketsManageOwn     Permission = "tickets.manage_own"
	PermTicketsManageAny     Permission = "tickets.manage_any"
	PermSprintsManage        Permission = "sprints.manage"
	PermLabelsManage         Permission = "labels.manage"
	PermBoardManage          Permission = "board.manage"
	PermMembersInvite        Permission = "members.invite"
	PermMembersManage        Permission = "members.manage"
	PermMembersAdmin         Permission = "members.admin"
	PermCommentsManageAny    Permission = "comments.manage_any"
	PermAttachmentsManageAny Permission = "attachments.manage_any"
)

// AllPermissions enumerates the full catalog. Adding a tag is a versioned
// change: the default role templates below must be updated deliberately,
// nothing is inherited implicitly.
var AllPermissions = []Permission{
	PermProjectSettings,
	PermProjectDelete,
	PermTicketsCreate,
	PermTicketsManageOwn,
	PermTicketsManageAny,
	PermSprintsManage,
	PermLabelsManage,
	PermBoardManage,
	PermMembersInvite,
	PermMembersManage,
	PermMembersAdmin,
	PermCommentsManageAny,
	PermAttachmentsManageAny,
}

// Valid reports whether p is a known catalog tag.
func Valid(p Permission) bool {
	for _, known := range AllPermissions {
		if p == known {
			return true
		}
	}
	return false
}

// Built-in role names. These are only used when provisioning a new
// project; all authority comparisons operate on role positions, never on
// names, so renamed or custom roles compose correctly.
const (
	RoleNameOwner  = "Owner"
	RoleNameAdmin  = "Admin"
	RoleNameMember = "Member"
)

// RoleTemplate describes a role to seed when a project is created.
type RoleTemplate struct {
	Name        string
	Position    int
	IsDefault   bool
	Permissions []Permission
}

// DefaultRoleTemplates returns the three built-in role templates:
//
//	Owner  (position 0): every permission, marked default
//	Admin  (position 1): everything except project.delete and members.admin
//	Member (position 2): tickets.create and tickets.manage_own
func DefaultRoleTemplates() []RoleTemplate {
	owner := make([]Permission, len(AllPermissions))
	copy(owner, AllPermissions)

	admin := make([]Permission, 0, len(AllPermissions)-2)
	for _, p := range AllPermissions {
		if p == PermProjectDelete || p == PermMembersAdmin {
			continue
		}
		admin = append(admin, p)
	}

	return []RoleTemplate{
		{Name: RoleNameOwner, Position: 0, IsDefault: true, Permissions: owner},
		{Name: RoleNameAdmin, Position: 1, Permissions: admin},
		{Name: RoleNameMember, Position: 2, Permissions: []Permission{
			PermTicketsCreate,
			PermTicketsManageOwn,
		}},
	}
}
