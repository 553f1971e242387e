package authz

import (
	"testing"

	"github.com/tracknest/tracknest/internal/models"
)

func TestResolve_OwnerHasAllPermissions(t *testing.T) {
	_, svc := defaultWorld()

	set, err := svc.Resolve(ownerUser, projectID)
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if set.Len() != 13 {
		t.Errorf("owner effective set has %d permissions, expected 13", set.Len())
	}
	if set.IsSystemAdmin {
		t.Error("project owner is not a system admin")
	}
}

func TestResolve_AdminRoleExclusions(t *testing.T) {
	_, svc := defaultWorld()

	set, err := svc.Resolve(adminUser, projectID)
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if set.Len() != 11 {
		t.Errorf("admin effective set has %d permissions, expected 11", set.Len())
	}
	if set.Has(PermProjectDelete) {
		t.Error("Admin role must not grant project.delete")
	}
	if set.Has(PermMembersAdmin) {
		t.Error("Admin role must not grant members.admin")
	}
	if !set.Has(PermProjectSettings) {
		t.Error("Admin role should grant project.settings")
	}
}

func TestResolve_MemberExactlyTwoPermissions(t *testing.T) {
	_, svc := defaultWorld()

	set, err := svc.Resolve(memberUser, projectID)
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if set.Len() != 2 {
		t.Errorf("member effective set has %d permissions, expected exactly 2", set.Len())
	}
	if !set.Has(PermTicketsCreate) || !set.Has(PermTicketsManageOwn) {
		t.Errorf("member effective set = %v", set.Permissions())
	}
}

func TestResolve_SystemAdminVirtualMembership(t *testing.T) {
	// The system admin has no membership row in any project but resolves
	// to the full catalog everywhere, including project.delete.
	_, svc := defaultWorld()

	for _, pid := range []uint{projectID, 42, 9000} {
		set, err := svc.Resolve(sysAdminUser, pid)
		if err != nil {
			t.Fatalf("Resolve(admin, %d) error = %v", pid, err)
		}
		if !set.IsSystemAdmin {
			t.Errorf("project %d: IsSystemAdmin = false", pid)
		}
		if set.Len() != 13 {
			t.Errorf("project %d: admin set has %d permissions, expected 13", pid, set.Len())
		}
		if !set.Has(PermProjectDelete) {
			t.Errorf("project %d: admin should have project.delete despite no membership row", pid)
		}
	}
}

func TestResolve_SystemAdminSkipsMembershipLookup(t *testing.T) {
	// The admin override must be evaluated before any membership read:
	// a store whose membership lookups always fail still resolves admins.
	store, _ := defaultWorld()
	svc := NewService(&membershipFailingStore{fakeStore: store})

	set, err := svc.Resolve(sysAdminUser, projectID)
	if err != nil {
		t.Fatalf("admin resolution must not touch memberships: %v", err)
	}
	if set.Len() != 13 {
		t.Errorf("admin set has %d permissions, expected 13", set.Len())
	}
}

// membershipFailingStore errors on any membership read.
type membershipFailingStore struct {
	*fakeStore
}

func (s *membershipFailingStore) FindMembership(userID, projectID uint) (*models.ProjectMember, error) {
	return nil, errStoreDown
}

func TestResolve_NoMembershipEmptySet(t *testing.T) {
	_, svc := defaultWorld()

	set, err := svc.Resolve(strangerUser, projectID)
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if set.Len() != 0 {
		t.Errorf("stranger effective set has %d permissions, expected 0", set.Len())
	}
	if set.IsSystemAdmin {
		t.Error("stranger is not a system admin")
	}
}

func TestIsMember(t *testing.T) {
	_, svc := defaultWorld()

	tests := []struct {
		name     string
		userID   uint
		project  uint
		expected bool
	}{
		{"owner is member", ownerUser, projectID, true},
		{"member is member", memberUser, projectID, true},
		{"stranger is not", strangerUser, projectID, false},
		{"system admin is virtual member", sysAdminUser, projectID, true},
		{"system admin is member of fresh project", sysAdminUser, 77, true},
		{"member of other project is not", memberUser, 77, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := svc.IsMember(tt.userID, tt.project)
			if err != nil {
				t.Fatalf("IsMember() error = %v", err)
			}
			if got != tt.expected {
				t.Errorf("IsMember(%d, %d) = %v, expected %v", tt.userID, tt.project, got, tt.expected)
			}
		})
	}
}

func TestResolve_StoreFailurePropagates(t *testing.T) {
	store, svc := defaultWorld()
	store.failWith = errStoreDown

	if _, err := svc.Resolve(memberUser, projectID); err == nil {
		t.Error("store failures must propagate, not be swallowed")
	}
}
