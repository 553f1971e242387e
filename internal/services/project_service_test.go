package services

import (
	"testing"

	"github.com/tracknest/tracknest/internal/authz"
	"github.com/tracknest/tracknest/internal/models"
)

func TestProjectCreate_SeedsDefaultRoles(t *testing.T) {
	db := newTestDB(t)
	authzSvc := newTestAuthz(db)
	owner := createTestUser(t, db, "alice", false)

	project := createTestProject(t, db, authzSvc, owner.ID, "PAY")

	var roles []models.Role
	if err := db.Where("project_id = ?", project.ID).Order("position ASC").Find(&roles).Error; err != nil {
		t.Fatalf("failed to list roles: %v", err)
	}
	if len(roles) != 3 {
		t.Fatalf("expected 3 seeded roles, got %d", len(roles))
	}

	tests := []struct {
		name      string
		position  int
		permCount int
		isDefault bool
	}{
		{"Owner", 0, 13, true},
		{"Admin", 1, 11, false},
		{"Member", 2, 2, false},
	}
	for i, tt := range tests {
		role := roles[i]
		if role.Name != tt.name {
			t.Errorf("role[%d].Name = %q, expected %q", i, role.Name, tt.name)
		}
		if role.Position != tt.position {
			t.Errorf("role %s Position = %d, expected %d", role.Name, role.Position, tt.position)
		}
		if len(role.Permissions) != tt.permCount {
			t.Errorf("role %s has %d permissions, expected %d", role.Name, len(role.Permissions), tt.permCount)
		}
		if role.IsDefault != tt.isDefault {
			t.Errorf("role %s IsDefault = %v, expected %v", role.Name, role.IsDefault, tt.isDefault)
		}
	}

	admin := roles[1]
	if admin.Permissions.Contains(string(authz.PermProjectDelete)) {
		t.Error("Admin role must not hold project.delete")
	}
	if admin.Permissions.Contains(string(authz.PermMembersAdmin)) {
		t.Error("Admin role must not hold members.admin")
	}
}

func TestProjectCreate_CreatorBecomesOwner(t *testing.T) {
	db := newTestDB(t)
	authzSvc := newTestAuthz(db)
	owner := createTestUser(t, db, "alice", false)

	project := createTestProject(t, db, authzSvc, owner.ID, "PAY")

	set, err := authzSvc.Resolve(owner.ID, project.ID)
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if set.Len() != len(authz.AllPermissions) {
		t.Errorf("creator resolves to %d permissions, expected the full catalog (%d)",
			set.Len(), len(authz.AllPermissions))
	}
	if !set.Has(authz.PermProjectDelete) {
		t.Error("creator should hold project.delete")
	}
}

func TestProjectCreate_SeedsBoardColumns(t *testing.T) {
	db := newTestDB(t)
	authzSvc := newTestAuthz(db)
	owner := createTestUser(t, db, "alice", false)

	project := createTestProject(t, db, authzSvc, owner.ID, "PAY")

	var columns []models.BoardColumn
	db.Where("project_id = ?", project.ID).Order("position ASC").Find(&columns)
	if len(columns) != 3 {
		t.Fatalf("expected 3 default columns, got %d", len(columns))
	}
	for i, name := range []string{"Backlog", "In Progress", "Done"} {
		if columns[i].Name != name || columns[i].Position != i {
			t.Errorf("column[%d] = %q at %d, expected %q at %d",
				i, columns[i].Name, columns[i].Position, name, i)
		}
	}
}

func TestProjectCreate_RejectsBadKeys(t *testing.T) {
	db := newTestDB(t)
	authzSvc := newTestAuthz(db)
	owner := createTestUser(t, db, "alice", false)
	svc := NewProjectService(db, authzSvc)

	for _, key := range []string{"", "1AB", "A", "TOOLONGKEY123", "pa y"} {
		if _, err := svc.Create(&CreateProjectRequest{Key: key, Name: "X"}, owner.ID); err == nil {
			t.Errorf("key %q should be rejected", key)
		}
	}

	// Lowercase input is normalized, not rejected
	project, err := svc.Create(&CreateProjectRequest{Key: "pay", Name: "Payments"}, owner.ID)
	if err != nil {
		t.Fatalf("lowercase key should be normalized: %v", err)
	}
	if project.Key != "PAY" {
		t.Errorf("Key = %q, expected %q", project.Key, "PAY")
	}
}

func TestProjectCreate_DuplicateKey(t *testing.T) {
	db := newTestDB(t)
	authzSvc := newTestAuthz(db)
	owner := createTestUser(t, db, "alice", false)
	svc := NewProjectService(db, authzSvc)

	createTestProject(t, db, authzSvc, owner.ID, "PAY")
	if _, err := svc.Create(&CreateProjectRequest{Key: "PAY", Name: "Again"}, owner.ID); err == nil {
		t.Error("duplicate project key should be rejected")
	}
}

func TestProjectUpdate_RequiresSettingsPermission(t *testing.T) {
	db := newTestDB(t)
	authzSvc := newTestAuthz(db)
	owner := createTestUser(t, db, "alice", false)
	member := createTestUser(t, db, "bob", false)
	svc := NewProjectService(db, authzSvc)

	project := createTestProject(t, db, authzSvc, owner.ID, "PAY")
	memberRole := projectRole(t, db, project.ID, authz.RoleNameMember)
	addMemberWithRole(t, db, project.ID, member.ID, memberRole.ID)

	if _, err := svc.Update(member.ID, project.ID, &UpdateProjectRequest{Name: "Hijacked"}); !authz.IsForbidden(err) {
		t.Errorf("member update should be forbidden, got %v", err)
	}

	updated, err := svc.Update(owner.ID, project.ID, &UpdateProjectRequest{Name: "Payments v2"})
	if err != nil {
		t.Fatalf("owner update failed: %v", err)
	}
	if updated.Name != "Payments v2" {
		t.Errorf("Name = %q, expected %q", updated.Name, "Payments v2")
	}
}

func TestProjectDelete_OnlyWithDeletePermission(t *testing.T) {
	db := newTestDB(t)
	authzSvc := newTestAuthz(db)
	owner := createTestUser(t, db, "alice", false)
	adminUser := createTestUser(t, db, "bob", false)
	svc := NewProjectService(db, authzSvc)

	project := createTestProject(t, db, authzSvc, owner.ID, "PAY")
	adminRole := projectRole(t, db, project.ID, authz.RoleNameAdmin)
	addMemberWithRole(t, db, project.ID, adminUser.ID, adminRole.ID)

	// Project Admin lacks project.delete
	if err := svc.Delete(adminUser.ID, project.ID); !authz.IsForbidden(err) {
		t.Errorf("admin-role delete should be forbidden, got %v", err)
	}

	if err := svc.Delete(owner.ID, project.ID); err != nil {
		t.Fatalf("owner delete failed: %v", err)
	}

	var count int64
	db.Model(&models.Project{}).Where("id = ?", project.ID).Count(&count)
	if count != 0 {
		t.Error("project should be gone after delete")
	}
}

func TestProjectList_MembershipScoped(t *testing.T) {
	db := newTestDB(t)
	authzSvc := newTestAuthz(db)
	alice := createTestUser(t, db, "alice", false)
	bob := createTestUser(t, db, "bob", false)
	sysAdmin := createTestUser(t, db, "root", true)
	svc := NewProjectService(db, authzSvc)

	createTestProject(t, db, authzSvc, alice.ID, "AAA")
	createTestProject(t, db, authzSvc, bob.ID, "BBB")

	aliceProjects, err := svc.List(alice.ID)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(aliceProjects) != 1 || aliceProjects[0].Key != "AAA" {
		t.Errorf("alice should see only AAA, got %d project(s)", len(aliceProjects))
	}

	adminProjects, err := svc.List(sysAdmin.ID)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(adminProjects) != 2 {
		t.Errorf("system admin should see all 2 projects, got %d", len(adminProjects))
	}
}

func TestRoleCRUD_CustomRoles(t *testing.T) {
	db := newTestDB(t)
	authzSvc := newTestAuthz(db)
	owner := createTestUser(t, db, "alice", false)
	svc := NewProjectService(db, authzSvc)

	project := createTestProject(t, db, authzSvc, owner.ID, "PAY")

	role, err := svc.CreateRole(owner.ID, project.ID, &RoleRequest{
		Name:     "Reporter",
		Position: 3,
		Permissions: []string{
			string(authz.PermTicketsCreate),
		},
	})
	if err != nil {
		t.Fatalf("CreateRole failed: %v", err)
	}

	// Unknown permission tags are rejected
	if _, err := svc.CreateRole(owner.ID, project.ID, &RoleRequest{
		Name: "Broken", Position: 4, Permissions: []string{"tickets.embiggen"},
	}); err == nil {
		t.Error("unknown permission tag should be rejected")
	}

	// The Owner role (IsDefault) cannot be deleted
	ownerRole := projectRole(t, db, project.ID, authz.RoleNameOwner)
	if err := svc.DeleteRole(owner.ID, project.ID, ownerRole.ID); err == nil {
		t.Error("deleting the default role should fail")
	}

	// A role in use cannot be deleted
	user := createTestUser(t, db, "carol", false)
	addMemberWithRole(t, db, project.ID, user.ID, role.ID)
	if err := svc.DeleteRole(owner.ID, project.ID, role.ID); err == nil {
		t.Error("deleting a role with members should fail")
	}

	db.Where("project_id = ? AND user_id = ?", project.ID, user.ID).Delete(&models.ProjectMember{})
	if err := svc.DeleteRole(owner.ID, project.ID, role.ID); err != nil {
		t.Errorf("deleting an unused custom role failed: %v", err)
	}
}

func TestRoleCreate_PositionAndNameUnique(t *testing.T) {
	db := newTestDB(t)
	authzSvc := newTestAuthz(db)
	owner := createTestUser(t, db, "alice", false)
	svc := NewProjectService(db, authzSvc)

	project := createTestProject(t, db, authzSvc, owner.ID, "PAY")

	// Position 1 already belongs to the built-in Admin role
	if _, err := svc.CreateRole(owner.ID, project.ID, &RoleRequest{
		Name: "Shadow Admin", Position: 1,
	}); err == nil {
		t.Error("creating a role at an occupied position should fail")
	}

	var count int64
	db.Model(&models.Role{}).Where("project_id = ? AND position = ?", project.ID, 1).Count(&count)
	if count != 1 {
		t.Errorf("roles at position 1 = %d, expected 1", count)
	}

	// Names are unique within a project too
	if _, err := svc.CreateRole(owner.ID, project.ID, &RoleRequest{
		Name: "Admin", Position: 5,
	}); err == nil {
		t.Error("creating a role with a taken name should fail")
	}

	// A free slot works
	role, err := svc.CreateRole(owner.ID, project.ID, &RoleRequest{
		Name: "Triager", Position: 5,
	})
	if err != nil {
		t.Fatalf("CreateRole failed: %v", err)
	}

	// Updates cannot move onto another role's slot either
	if _, err := svc.UpdateRole(owner.ID, project.ID, role.ID, &RoleRequest{
		Name: "Triager", Position: 2,
	}); err == nil {
		t.Error("updating onto an occupied position should fail")
	}
	if _, err := svc.UpdateRole(owner.ID, project.ID, role.ID, &RoleRequest{
		Name: "Member", Position: 5,
	}); err == nil {
		t.Error("updating onto a taken name should fail")
	}

	// Keeping its own slot while renaming is fine
	if _, err := svc.UpdateRole(owner.ID, project.ID, role.ID, &RoleRequest{
		Name: "Screener", Position: 5,
	}); err != nil {
		t.Errorf("update keeping the same position failed: %v", err)
	}
}

func TestProjectDelete_CascadesTicketData(t *testing.T) {
	db := newTestDB(t)
	authzSvc := newTestAuthz(db)
	owner := createTestUser(t, db, "alice", false)
	svc := NewProjectService(db, authzSvc)

	project := createTestProject(t, db, authzSvc, owner.ID, "PAY")

	labelSvc := NewLabelService(db, authzSvc)
	label, err := labelSvc.Create(owner.ID, project.ID, &LabelRequest{Name: "bug"})
	if err != nil {
		t.Fatalf("label create failed: %v", err)
	}

	ticketSvc := NewTicketService(db, authzSvc, nil)
	ticket, err := ticketSvc.Create(owner.ID, project.ID, &CreateTicketRequest{
		Title: "Task", LabelIDs: []uint{label.ID},
	})
	if err != nil {
		t.Fatalf("ticket create failed: %v", err)
	}

	commentSvc := NewCommentService(db, authzSvc, nil)
	if _, err := commentSvc.Create(owner.ID, project.ID, ticket.ID, &CommentRequest{Body: "note"}); err != nil {
		t.Fatalf("comment create failed: %v", err)
	}

	db.Create(&models.Attachment{
		TicketID: ticket.ID, UploaderID: owner.ID,
		FileName: "log.txt", StoredName: "deadbeef", Size: 3,
	})

	hook := models.Webhook{ProjectID: project.ID, URL: "https://example.com/hook", IsActive: true}
	db.Create(&hook)
	db.Create(&models.WebhookDelivery{WebhookID: hook.ID, Event: EventTicketCreated, StatusCode: 200})

	if err := svc.Delete(owner.ID, project.ID); err != nil {
		t.Fatalf("project delete failed: %v", err)
	}

	checks := []struct {
		name  string
		count func() int64
	}{
		{"tickets", func() (n int64) { db.Model(&models.Ticket{}).Where("project_id = ?", project.ID).Count(&n); return }},
		{"comments", func() (n int64) { db.Model(&models.Comment{}).Where("ticket_id = ?", ticket.ID).Count(&n); return }},
		{"attachments", func() (n int64) { db.Model(&models.Attachment{}).Where("ticket_id = ?", ticket.ID).Count(&n); return }},
		{"ticket_labels", func() (n int64) { db.Table("ticket_labels").Where("ticket_id = ?", ticket.ID).Count(&n); return }},
		{"webhook_deliveries", func() (n int64) { db.Model(&models.WebhookDelivery{}).Where("webhook_id = ?", hook.ID).Count(&n); return }},
		{"webhooks", func() (n int64) { db.Model(&models.Webhook{}).Where("project_id = ?", project.ID).Count(&n); return }},
	}
	for _, c := range checks {
		if n := c.count(); n != 0 {
			t.Errorf("%s left behind after project delete: %d", c.name, n)
		}
	}
}
