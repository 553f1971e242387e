package services

import (
	"testing"

	"github.com/tracknest/tracknest/internal/authz"
)

func TestCommentAuthorAlwaysEditsOwn(t *testing.T) {
	db := newTestDB(t)
	authzSvc := newTestAuthz(db)
	owner := createTestUser(t, db, "alice", false)
	member := createTestUser(t, db, "bob", false)

	project := createTestProject(t, db, authzSvc, owner.ID, "PAY")
	memberRole := projectRole(t, db, project.ID, authz.RoleNameMember)
	addMemberWithRole(t, db, project.ID, member.ID, memberRole.ID)

	ticketSvc := NewTicketService(db, authzSvc, nil)
	ticket, err := ticketSvc.Create(owner.ID, project.ID, &CreateTicketRequest{Title: "Task"})
	if err != nil {
		t.Fatalf("ticket create failed: %v", err)
	}

	svc := NewCommentService(db, authzSvc, nil)
	comment, err := svc.Create(member.ID, project.ID, ticket.ID, &CommentRequest{Body: "first"})
	if err != nil {
		t.Fatalf("comment create failed: %v", err)
	}

	// The Member role holds no comment permission at all, yet the
	// author may edit and delete their own comment.
	updated, err := svc.Update(member.ID, project.ID, ticket.ID, comment.ID, &CommentRequest{Body: "edited"})
	if err != nil {
		t.Fatalf("author edit failed: %v", err)
	}
	if updated.Body != "edited" {
		t.Errorf("Body = %q, expected %q", updated.Body, "edited")
	}
	if updated.EditedAt == nil {
		t.Error("EditedAt should be stamped on edit")
	}

	if err := svc.Delete(member.ID, project.ID, ticket.ID, comment.ID); err != nil {
		t.Errorf("author delete failed: %v", err)
	}
}

func TestCommentOthersNeedManageAny(t *testing.T) {
	db := newTestDB(t)
	authzSvc := newTestAuthz(db)
	owner := createTestUser(t, db, "alice", false)
	author := createTestUser(t, db, "bob", false)
	other := createTestUser(t, db, "carol", false)

	project := createTestProject(t, db, authzSvc, owner.ID, "PAY")
	memberRole := projectRole(t, db, project.ID, authz.RoleNameMember)
	addMemberWithRole(t, db, project.ID, author.ID, memberRole.ID)
	addMemberWithRole(t, db, project.ID, other.ID, memberRole.ID)

	ticketSvc := NewTicketService(db, authzSvc, nil)
	ticket, _ := ticketSvc.Create(owner.ID, project.ID, &CreateTicketRequest{Title: "Task"})

	svc := NewCommentService(db, authzSvc, nil)
	comment, err := svc.Create(author.ID, project.ID, ticket.ID, &CommentRequest{Body: "mine"})
	if err != nil {
		t.Fatalf("comment create failed: %v", err)
	}

	// Another plain member cannot touch it
	if _, err := svc.Update(other.ID, project.ID, ticket.ID, comment.ID, &CommentRequest{Body: "x"}); !authz.IsForbidden(err) {
		t.Errorf("non-author member should be forbidden, got %v", err)
	}

	// The owner holds comments.manage_any
	if err := svc.Delete(owner.ID, project.ID, ticket.ID, comment.ID); err != nil {
		t.Errorf("moderator delete failed: %v", err)
	}
}

func TestCommentCreate_RequiresMembership(t *testing.T) {
	db := newTestDB(t)
	authzSvc := newTestAuthz(db)
	owner := createTestUser(t, db, "alice", false)
	stranger := createTestUser(t, db, "mallory", false)

	project := createTestProject(t, db, authzSvc, owner.ID, "PAY")
	ticketSvc := NewTicketService(db, authzSvc, nil)
	ticket, _ := ticketSvc.Create(owner.ID, project.ID, &CreateTicketRequest{Title: "Task"})

	svc := NewCommentService(db, authzSvc, nil)
	if _, err := svc.Create(stranger.ID, project.ID, ticket.ID, &CommentRequest{Body: "hi"}); !authz.IsForbidden(err) {
		t.Errorf("stranger comment should be forbidden, got %v", err)
	}
}

func TestCommentTicketScoping(t *testing.T) {
	db := newTestDB(t)
	authzSvc := newTestAuthz(db)
	owner := createTestUser(t, db, "alice", false)

	project := createTestProject(t, db, authzSvc, owner.ID, "PAY")
	other := createTestProject(t, db, authzSvc, owner.ID, "OPS")

	ticketSvc := NewTicketService(db, authzSvc, nil)
	foreign, _ := ticketSvc.Create(owner.ID, other.ID, &CreateTicketRequest{Title: "Elsewhere"})

	svc := NewCommentService(db, authzSvc, nil)
	// A ticket id from another project is not reachable
	if _, err := svc.Create(owner.ID, project.ID, foreign.ID, &CommentRequest{Body: "x"}); err == nil {
		t.Error("commenting across projects should fail")
	}
}
