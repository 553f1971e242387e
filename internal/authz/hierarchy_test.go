package authz

import "testing"

func TestCanManageMember_PositionAsymmetry(t *testing.T) {
	_, svc := defaultWorld()

	tests := []struct {
		name     string
		actor    uint
		target   uint
		expected bool
	}{
		{"owner manages admin", ownerUser, adminUser, true},
		{"owner manages member", ownerUser, memberUser, true},
		{"admin manages member", adminUser, memberUser, true},
		{"admin cannot manage owner", adminUser, ownerUser, false},
		{"member cannot manage anyone", memberUser, adminUser, false},
		{"system admin manages owner", sysAdminUser, ownerUser, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := svc.CanManageMember(tt.actor, tt.target, projectID)
			if err != nil {
				t.Fatalf("CanManageMember() error = %v", err)
			}
			if got != tt.expected {
				t.Errorf("CanManageMember(%d, %d) = %v, expected %v", tt.actor, tt.target, got, tt.expected)
			}
		})
	}
}

func TestCanManageMember_NoSelfManagement(t *testing.T) {
	_, svc := defaultWorld()

	for _, u := range []uint{ownerUser, adminUser, memberUser, sysAdminUser} {
		got, err := svc.CanManageMember(u, u, projectID)
		if err != nil {
			t.Fatalf("CanManageMember() error = %v", err)
		}
		if got {
			t.Errorf("user %d must not manage their own membership", u)
		}
	}
}

func TestCanManageMember_MissingMemberships(t *testing.T) {
	_, svc := defaultWorld()

	// Actor with no membership has no position and is not a valid actor.
	got, err := svc.CanManageMember(strangerUser, memberUser, projectID)
	if err != nil || got {
		t.Errorf("stranger as actor = (%v, %v), expected (false, nil)", got, err)
	}

	// Target with no membership cannot be compared either.
	got, err = svc.CanManageMember(ownerUser, strangerUser, projectID)
	if err != nil || got {
		t.Errorf("stranger as target = (%v, %v), expected (false, nil)", got, err)
	}
}

func TestCanManageMember_EqualPositions(t *testing.T) {
	// Two roles at the same position cannot manage each other. Safe
	// default for states left behind by a buggy reorder.
	store, svc := defaultWorld()
	coAdmin := store.addRole(projectID, 25, "Co-Admin", 1, []Permission{PermMembersManage})
	store.addMember(50, projectID, coAdmin)

	got, err := svc.CanManageMember(50, adminUser, projectID)
	if err != nil {
		t.Fatalf("CanManageMember() error = %v", err)
	}
	if got {
		t.Error("equal positions must not manage each other")
	}

	got, _ = svc.CanManageMember(adminUser, 50, projectID)
	if got {
		t.Error("equal positions must not manage each other (reverse)")
	}
}

func TestCanManageMember_RequiresMembersPermission(t *testing.T) {
	// A strong position without members.manage/members.admin is not
	// enough: a custom top role lacking both cannot manage anyone.
	store, svc := defaultWorld()
	lead := store.addRole(projectID, 26, "Tech Lead", 1, []Permission{PermTicketsManageAny})
	store.addMember(51, projectID, lead)

	got, err := svc.CanManageMember(51, memberUser, projectID)
	if err != nil {
		t.Fatalf("CanManageMember() error = %v", err)
	}
	if got {
		t.Error("actor without members.manage or members.admin cannot manage")
	}
}

func TestCanAssignRole(t *testing.T) {
	_, svc := defaultWorld()

	tests := []struct {
		name     string
		actor    uint
		roleID   uint
		expected bool
	}{
		{"owner assigns admin role", ownerUser, adminRoleID, true},
		{"owner assigns member role", ownerUser, memberRoleID, true},
		{"owner cannot assign owner role", ownerUser, ownerRoleID, false},
		{"admin assigns member role", adminUser, memberRoleID, true},
		{"admin cannot assign admin role", adminUser, adminRoleID, false},
		{"admin cannot assign owner role", adminUser, ownerRoleID, false},
		{"member cannot assign any role", memberUser, memberRoleID, false},
		{"system admin assigns owner role", sysAdminUser, ownerRoleID, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := svc.CanAssignRole(tt.actor, projectID, tt.roleID)
			if err != nil {
				t.Fatalf("CanAssignRole() error = %v", err)
			}
			if got != tt.expected {
				t.Errorf("CanAssignRole(%d, role %d) = %v, expected %v", tt.actor, tt.roleID, got, tt.expected)
			}
		})
	}
}

func TestCanAssignRole_UnknownOrForeignRole(t *testing.T) {
	store, svc := defaultWorld()

	// Role id that does not exist.
	got, err := svc.CanAssignRole(ownerUser, projectID, 999)
	if err != nil || got {
		t.Errorf("unknown role = (%v, %v), expected (false, nil)", got, err)
	}

	// Role that belongs to a different project is invisible here.
	foreign := store.addRole(2, 60, "Owner", 0, AllPermissions)
	got, err = svc.CanAssignRole(ownerUser, projectID, foreign.ID)
	if err != nil || got {
		t.Errorf("foreign role = (%v, %v), expected (false, nil)", got, err)
	}
}

func TestCanAssignRole_ActorWithoutMembership(t *testing.T) {
	_, svc := defaultWorld()

	got, err := svc.CanAssignRole(strangerUser, projectID, memberRoleID)
	if err != nil || got {
		t.Errorf("stranger = (%v, %v), expected (false, nil)", got, err)
	}
}
