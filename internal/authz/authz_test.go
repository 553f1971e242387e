package authz

import (
	"errors"

	"github.com/tracknest/tracknest/internal/models"
)

// fakeStore is an in-memory Store for engine tests.
type fakeStore struct {
	admins      map[uint]bool
	memberships map[[2]uint]*models.ProjectMember // (userID, projectID)
	roles       map[uint][]models.Role            // projectID
	failWith    error
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		admins:      make(map[uint]bool),
		memberships: make(map[[2]uint]*models.ProjectMember),
		roles:       make(map[uint][]models.Role),
	}
}

func (f *fakeStore) FindMembership(userID, projectID uint) (*models.ProjectMember, error) {
	if f.failWith != nil {
		return nil, f.failWith
	}
	return f.memberships[[2]uint{userID, projectID}], nil
}

func (f *fakeStore) ListRoles(projectID uint) ([]models.Role, error) {
	if f.failWith != nil {
		return nil, f.failWith
	}
	return f.roles[projectID], nil
}

func (f *fakeStore) IsSystemAdmin(userID uint) (bool, error) {
	if f.failWith != nil {
		return false, f.failWith
	}
	return f.admins[userID], nil
}

func (f *fakeStore) addRole(projectID uint, id uint, name string, position int, perms []Permission) *models.Role {
	tags := make(models.PermissionList, len(perms))
	for i, p := range perms {
		tags[i] = string(p)
	}
	role := models.Role{
		ID:          id,
		ProjectID:   projectID,
		Name:        name,
		Position:    position,
		Permissions: tags,
		IsDefault:   position == 0,
	}
	f.roles[projectID] = append(f.roles[projectID], role)
	return &f.roles[projectID][len(f.roles[projectID])-1]
}

func (f *fakeStore) addMember(userID, projectID uint, role *models.Role) {
	f.memberships[[2]uint{userID, projectID}] = &models.ProjectMember{
		ID:        uint(len(f.memberships) + 1),
		ProjectID: projectID,
		UserID:    userID,
		RoleID:    role.ID,
		Role:      role,
	}
}

// Test fixture: project 1 with the three default roles and one user per
// role, a system admin with no membership anywhere, and a stranger.
const (
	ownerUser    = uint(1)
	adminUser    = uint(2)
	memberUser   = uint(3)
	strangerUser = uint(5)
	sysAdminUser = uint(9)

	projectID = uint(1)

	ownerRoleID  = uint(10)
	adminRoleID  = uint(11)
	memberRoleID = uint(12)
)

func defaultWorld() (*fakeStore, *Service) {
	store := newFakeStore()
	store.admins[sysAdminUser] = true

	var ownerRole, adminRole, memberRole *models.Role
	for _, tpl := range DefaultRoleTemplates() {
		var id uint
		switch tpl.Name {
		case RoleNameOwner:
			id = ownerRoleID
		case RoleNameAdmin:
			id = adminRoleID
		case RoleNameMember:
			id = memberRoleID
		}
		role := store.addRole(projectID, id, tpl.Name, tpl.Position, tpl.Permissions)
		switch tpl.Name {
		case RoleNameOwner:
			ownerRole = role
		case RoleNameAdmin:
			adminRole = role
		case RoleNameMember:
			memberRole = role
		}
	}

	store.addMember(ownerUser, projectID, ownerRole)
	store.addMember(adminUser, projectID, adminRole)
	store.addMember(memberUser, projectID, memberRole)

	return store, NewService(store)
}

var errStoreDown = errors.New("store unavailable")
