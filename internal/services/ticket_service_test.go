package services

import (
	"testing"

	"github.com/tracknest/tracknest/internal/authz"
	"github.com/tracknest/tracknest/internal/models"
)

func TestTicketCreate_SequentialNumbers(t *testing.T) {
	db := newTestDB(t)
	authzSvc := newTestAuthz(db)
	owner := createTestUser(t, db, "alice", false)
	svc := NewTicketService(db, authzSvc, nil)

	project := createTestProject(t, db, authzSvc, owner.ID, "PAY")

	for want := 1; want <= 3; want++ {
		ticket, err := svc.Create(owner.ID, project.ID, &CreateTicketRequest{Title: "Task"})
		if err != nil {
			t.Fatalf("Create failed: %v", err)
		}
		if ticket.Number != want {
			t.Errorf("ticket Number = %d, expected %d", ticket.Number, want)
		}
	}

	// Numbers are independent across projects
	other := createTestProject(t, db, authzSvc, owner.ID, "OPS")
	ticket, err := svc.Create(owner.ID, other.ID, &CreateTicketRequest{Title: "First"})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if ticket.Number != 1 {
		t.Errorf("new project should start at 1, got %d", ticket.Number)
	}
	if got := ticket.DisplayKey(other.Key); got != "OPS-1" {
		t.Errorf("DisplayKey = %q, expected %q", got, "OPS-1")
	}
}

func TestTicketCreate_DefaultsToFirstColumn(t *testing.T) {
	db := newTestDB(t)
	authzSvc := newTestAuthz(db)
	owner := createTestUser(t, db, "alice", false)
	svc := NewTicketService(db, authzSvc, nil)

	project := createTestProject(t, db, authzSvc, owner.ID, "PAY")

	ticket, err := svc.Create(owner.ID, project.ID, &CreateTicketRequest{Title: "Task"})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if ticket.BoardColumnID == nil {
		t.Fatal("ticket should land in the first board column")
	}

	var column models.BoardColumn
	db.First(&column, *ticket.BoardColumnID)
	if column.Name != "Backlog" {
		t.Errorf("default column = %q, expected Backlog", column.Name)
	}
	if ticket.Type != "task" || ticket.Priority != "medium" {
		t.Errorf("defaults = %s/%s, expected task/medium", ticket.Type, ticket.Priority)
	}
}

func TestTicketUpdate_AuthorNeedsOwnGrant(t *testing.T) {
	db := newTestDB(t)
	authzSvc := newTestAuthz(db)
	owner := createTestUser(t, db, "alice", false)
	reporter := createTestUser(t, db, "bob", false)
	svc := NewTicketService(db, authzSvc, nil)

	project := createTestProject(t, db, authzSvc, owner.ID, "PAY")

	// Reporter role: may open tickets but not edit them afterwards
	projectSvc := NewProjectService(db, authzSvc)
	role, err := projectSvc.CreateRole(owner.ID, project.ID, &RoleRequest{
		Name:     "Reporter",
		Position: 3,
		Permissions: []string{
			string(authz.PermTicketsCreate),
		},
	})
	if err != nil {
		t.Fatalf("CreateRole failed: %v", err)
	}
	addMemberWithRole(t, db, project.ID, reporter.ID, role.ID)

	ticket, err := svc.Create(reporter.ID, project.ID, &CreateTicketRequest{Title: "Mine"})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	// Authorship alone does not grant editing
	if _, err := svc.Update(reporter.ID, project.ID, ticket.ID, &UpdateTicketRequest{Title: "Edited"}); !authz.IsForbidden(err) {
		t.Errorf("author without tickets.manage_own should be forbidden, got %v", err)
	}

	// The owner holds tickets.manage_any and may edit anything
	if _, err := svc.Update(owner.ID, project.ID, ticket.ID, &UpdateTicketRequest{Title: "Edited"}); err != nil {
		t.Errorf("owner update failed: %v", err)
	}
}

func TestTicketUpdate_MemberEditsOwnOnly(t *testing.T) {
	db := newTestDB(t)
	authzSvc := newTestAuthz(db)
	owner := createTestUser(t, db, "alice", false)
	bob := createTestUser(t, db, "bob", false)
	carol := createTestUser(t, db, "carol", false)
	svc := NewTicketService(db, authzSvc, nil)

	project := createTestProject(t, db, authzSvc, owner.ID, "PAY")
	memberRole := projectRole(t, db, project.ID, authz.RoleNameMember)
	addMemberWithRole(t, db, project.ID, bob.ID, memberRole.ID)
	addMemberWithRole(t, db, project.ID, carol.ID, memberRole.ID)

	ticket, err := svc.Create(bob.ID, project.ID, &CreateTicketRequest{Title: "Bob's"})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	// The default Member role carries tickets.manage_own
	if _, err := svc.Update(bob.ID, project.ID, ticket.ID, &UpdateTicketRequest{Title: "Bob's v2"}); err != nil {
		t.Errorf("author with tickets.manage_own failed: %v", err)
	}

	// Another member without manage_any cannot touch it
	if _, err := svc.Update(carol.ID, project.ID, ticket.ID, &UpdateTicketRequest{Title: "Hijack"}); !authz.IsForbidden(err) {
		t.Errorf("non-author member should be forbidden, got %v", err)
	}
}

func TestTicketMove_EnforcesWIPLimit(t *testing.T) {
	db := newTestDB(t)
	authzSvc := newTestAuthz(db)
	owner := createTestUser(t, db, "alice", false)
	svc := NewTicketService(db, authzSvc, nil)
	boardSvc := NewBoardService(db, authzSvc)

	project := createTestProject(t, db, authzSvc, owner.ID, "PAY")

	limit := 1
	column, err := boardSvc.CreateColumn(owner.ID, project.ID, &BoardColumnRequest{
		Name: "Review", WIPLimit: &limit,
	})
	if err != nil {
		t.Fatalf("CreateColumn failed: %v", err)
	}

	first, _ := svc.Create(owner.ID, project.ID, &CreateTicketRequest{Title: "One"})
	second, _ := svc.Create(owner.ID, project.ID, &CreateTicketRequest{Title: "Two"})

	if _, err := svc.Move(owner.ID, project.ID, first.ID, column.ID); err != nil {
		t.Fatalf("first move failed: %v", err)
	}
	if _, err := svc.Move(owner.ID, project.ID, second.ID, column.ID); err == nil {
		t.Error("move into a full column should fail")
	}
}

func TestTicketMove_RejectsForeignColumn(t *testing.T) {
	db := newTestDB(t)
	authzSvc := newTestAuthz(db)
	owner := createTestUser(t, db, "alice", false)
	svc := NewTicketService(db, authzSvc, nil)

	project := createTestProject(t, db, authzSvc, owner.ID, "PAY")
	other := createTestProject(t, db, authzSvc, owner.ID, "OPS")

	var foreign models.BoardColumn
	db.Where("project_id = ?", other.ID).Order("position ASC").First(&foreign)

	ticket, _ := svc.Create(owner.ID, project.ID, &CreateTicketRequest{Title: "One"})
	if _, err := svc.Move(owner.ID, project.ID, ticket.ID, foreign.ID); err == nil {
		t.Error("moving into another project's column should fail")
	}
}

func TestTicketAssign_AssigneeMustBeMember(t *testing.T) {
	db := newTestDB(t)
	authzSvc := newTestAuthz(db)
	owner := createTestUser(t, db, "alice", false)
	outsider := createTestUser(t, db, "mallory", false)
	svc := NewTicketService(db, authzSvc, nil)

	project := createTestProject(t, db, authzSvc, owner.ID, "PAY")
	ticket, _ := svc.Create(owner.ID, project.ID, &CreateTicketRequest{Title: "One"})

	if _, err := svc.Assign(owner.ID, project.ID, ticket.ID, &outsider.ID); err == nil {
		t.Error("assigning a non-member should fail")
	}

	updated, err := svc.Assign(owner.ID, project.ID, ticket.ID, &owner.ID)
	if err != nil {
		t.Fatalf("Assign failed: %v", err)
	}
	if updated.AssigneeID == nil || *updated.AssigneeID != owner.ID {
		t.Error("assignee not set")
	}

	cleared, err := svc.Assign(owner.ID, project.ID, ticket.ID, nil)
	if err != nil {
		t.Fatalf("clearing assignee failed: %v", err)
	}
	if cleared.AssigneeID != nil {
		t.Error("assignee should be cleared")
	}
}

func TestTicketLabels_ScopedToProject(t *testing.T) {
	db := newTestDB(t)
	authzSvc := newTestAuthz(db)
	owner := createTestUser(t, db, "alice", false)
	svc := NewTicketService(db, authzSvc, nil)
	labelSvc := NewLabelService(db, authzSvc)

	project := createTestProject(t, db, authzSvc, owner.ID, "PAY")
	other := createTestProject(t, db, authzSvc, owner.ID, "OPS")

	ours, err := labelSvc.Create(owner.ID, project.ID, &LabelRequest{Name: "backend"})
	if err != nil {
		t.Fatalf("label create failed: %v", err)
	}
	foreign, err := labelSvc.Create(owner.ID, other.ID, &LabelRequest{Name: "ops"})
	if err != nil {
		t.Fatalf("label create failed: %v", err)
	}

	if _, err := svc.Create(owner.ID, project.ID, &CreateTicketRequest{
		Title: "Bad", LabelIDs: []uint{foreign.ID},
	}); err == nil {
		t.Error("foreign label should be rejected")
	}

	ticket, err := svc.Create(owner.ID, project.ID, &CreateTicketRequest{
		Title: "Good", LabelIDs: []uint{ours.ID},
	})
	if err != nil {
		t.Fatalf("Create with label failed: %v", err)
	}

	loaded, err := svc.Get(owner.ID, project.ID, ticket.ID)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if len(loaded.Labels) != 1 || loaded.Labels[0].Name != "backend" {
		t.Errorf("labels = %v, expected [backend]", loaded.Labels)
	}
}
