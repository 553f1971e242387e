package authz

import "testing"

// Policy A: editing a ticket always needs an explicit permission, even for
// the ticket's own author.

func TestTicketGuard_OwnRequiresExplicitPermission(t *testing.T) {
	_, svc := defaultWorld()

	// Member edits their own ticket: allowed via tickets.manage_own.
	if err := svc.RequireTicketPermission(memberUser, projectID, memberUser); err != nil {
		t.Errorf("member with tickets.manage_own edits own ticket, got %v", err)
	}

	// Member edits someone else's ticket: needs tickets.manage_any.
	err := svc.RequireTicketPermission(memberUser, projectID, ownerUser)
	fe, ok := err.(*ForbiddenError)
	if !ok {
		t.Fatalf("expected forbidden, got %v", err)
	}
	if fe.Permission != PermTicketsManageAny {
		t.Errorf("missing tag = %q, expected tickets.manage_any", fe.Permission)
	}
}

func TestTicketGuard_CustomRoleWithoutManageOwn(t *testing.T) {
	// A custom role omitting tickets.manage_own blocks the author from
	// editing their own ticket: ownership alone is never enough here.
	store, svc := defaultWorld()
	reporter := store.addRole(projectID, 20, "Reporter", 3, []Permission{PermTicketsCreate})
	store.addMember(30, projectID, reporter)

	err := svc.RequireTicketPermission(30, projectID, 30)
	fe, ok := err.(*ForbiddenError)
	if !ok {
		t.Fatalf("expected forbidden, got %v", err)
	}
	if fe.Permission != PermTicketsManageOwn {
		t.Errorf("missing tag = %q, expected tickets.manage_own", fe.Permission)
	}
}

func TestTicketGuard_ManageAnyCoversOthers(t *testing.T) {
	_, svc := defaultWorld()

	// Admin holds tickets.manage_any and may edit the member's ticket.
	if err := svc.RequireTicketPermission(adminUser, projectID, memberUser); err != nil {
		t.Errorf("admin edits member's ticket, got %v", err)
	}
}

func TestTicketGuard_SystemAdminBypasses(t *testing.T) {
	_, svc := defaultWorld()

	if err := svc.RequireTicketPermission(sysAdminUser, projectID, memberUser); err != nil {
		t.Errorf("system admin edits any ticket, got %v", err)
	}
}

// Policy B: comment and attachment authors always manage their own, with
// no permission check at all. The asymmetry with tickets is deliberate.

func TestCommentGuard_AuthorAlwaysAllowed(t *testing.T) {
	store, svc := defaultWorld()

	// Even a role with zero permissions can delete its own comment.
	nobody := store.addRole(projectID, 21, "Observer", 4, nil)
	store.addMember(31, projectID, nobody)

	if err := svc.RequireCommentPermission(31, projectID, 31); err != nil {
		t.Errorf("comment author always manages own comment, got %v", err)
	}
}

func TestCommentGuard_OthersNeedManageAny(t *testing.T) {
	_, svc := defaultWorld()

	err := svc.RequireCommentPermission(memberUser, projectID, ownerUser)
	fe, ok := err.(*ForbiddenError)
	if !ok {
		t.Fatalf("expected forbidden, got %v", err)
	}
	if fe.Permission != PermCommentsManageAny {
		t.Errorf("missing tag = %q, expected comments.manage_any", fe.Permission)
	}

	if err := svc.RequireCommentPermission(adminUser, projectID, memberUser); err != nil {
		t.Errorf("admin holds comments.manage_any, got %v", err)
	}
	if err := svc.RequireCommentPermission(sysAdminUser, projectID, memberUser); err != nil {
		t.Errorf("system admin moderates any comment, got %v", err)
	}
}

func TestAttachmentGuard(t *testing.T) {
	_, svc := defaultWorld()

	// Uploader needs nothing.
	if err := svc.RequireAttachmentPermission(memberUser, projectID, memberUser); err != nil {
		t.Errorf("uploader deletes own attachment, got %v", err)
	}

	// Someone else needs attachments.manage_any.
	err := svc.RequireAttachmentPermission(memberUser, projectID, ownerUser)
	fe, ok := err.(*ForbiddenError)
	if !ok {
		t.Fatalf("expected forbidden, got %v", err)
	}
	if fe.Permission != PermAttachmentsManageAny {
		t.Errorf("missing tag = %q, expected attachments.manage_any", fe.Permission)
	}
}

func TestOwnershipPolicyAsymmetry(t *testing.T) {
	// The product rule in one test: a user whose role grants nothing can
	// delete their own comment but cannot edit their own ticket.
	store, svc := defaultWorld()
	bare := store.addRole(projectID, 22, "Guest", 5, nil)
	store.addMember(40, projectID, bare)

	if err := svc.RequireCommentPermission(40, projectID, 40); err != nil {
		t.Errorf("own comment requires no permission, got %v", err)
	}
	if err := svc.RequireAttachmentPermission(40, projectID, 40); err != nil {
		t.Errorf("own attachment requires no permission, got %v", err)
	}
	if err := svc.RequireTicketPermission(40, projectID, 40); err == nil {
		t.Error("own ticket still requires tickets.manage_own")
	}
}
