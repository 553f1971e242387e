package services

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/tracknest/tracknest/internal/models"
)

func TestSignPayload(t *testing.T) {
	secret := "s3cret"
	payload := []byte(`{"type":"ticket.created"}`)

	got := SignPayload(secret, payload)

	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(payload)
	want := hex.EncodeToString(mac.Sum(nil))

	if got != want {
		t.Errorf("SignPayload = %q, expected %q", got, want)
	}
	if len(got) != 64 {
		t.Errorf("signature length = %d, expected 64 hex chars", len(got))
	}
}

func TestWebhookMatchesEvent(t *testing.T) {
	tests := []struct {
		name   string
		events string
		event  string
		want   bool
	}{
		{"empty filter matches everything", "", EventTicketCreated, true},
		{"whitespace filter matches everything", "  ", EventSprintClosed, true},
		{"exact match", "ticket.created", EventTicketCreated, true},
		{"list match", "ticket.created,comment.created", EventCommentCreated, true},
		{"list with spaces", "ticket.created, comment.created", EventCommentCreated, true},
		{"no match", "ticket.created", EventTicketMoved, false},
		{"prefix is not a match", "ticket", EventTicketCreated, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hook := &models.Webhook{Events: tt.events}
			if got := webhookMatchesEvent(hook, tt.event); got != tt.want {
				t.Errorf("webhookMatchesEvent(%q, %q) = %v, expected %v",
					tt.events, tt.event, got, tt.want)
			}
		})
	}
}

func TestWebhookPost_SignsAndDelivers(t *testing.T) {
	var gotSignature string
	var gotBody []byte
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotSignature = r.Header.Get("X-Tracknest-Signature")
		buf := make([]byte, r.ContentLength)
		r.Body.Read(buf)
		gotBody = buf
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	svc := &WebhookService{httpClient: server.Client()}
	hook := &models.Webhook{URL: server.URL, Secret: "s3cret"}
	payload := []byte(`{"type":"ticket.created"}`)

	status, err := svc.post(context.Background(), hook, payload)
	if err != nil {
		t.Fatalf("post failed: %v", err)
	}
	if status != http.StatusOK {
		t.Errorf("status = %d, expected 200", status)
	}

	want := "sha256=" + SignPayload("s3cret", payload)
	if gotSignature != want {
		t.Errorf("signature header = %q, expected %q", gotSignature, want)
	}
	if string(gotBody) != string(payload) {
		t.Errorf("delivered body = %q, expected %q", gotBody, payload)
	}
}

func TestWebhookPost_NoSecretNoSignature(t *testing.T) {
	var hadHeader bool
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, hadHeader = r.Header["X-Tracknest-Signature"]
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	svc := &WebhookService{httpClient: server.Client()}
	hook := &models.Webhook{URL: server.URL}

	if _, err := svc.post(context.Background(), hook, []byte(`{}`)); err != nil {
		t.Fatalf("post failed: %v", err)
	}
	if hadHeader {
		t.Error("signature header should be absent without a secret")
	}
}

func TestWebhookPost_ErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	svc := &WebhookService{httpClient: server.Client()}
	hook := &models.Webhook{URL: server.URL}

	status, err := svc.post(context.Background(), hook, []byte(`{}`))
	if err == nil {
		t.Error("4xx/5xx response should be an error")
	}
	if status != http.StatusBadGateway {
		t.Errorf("status = %d, expected 502", status)
	}
	if err != nil && !strings.Contains(err.Error(), "502") {
		t.Errorf("error should carry the status code, got %v", err)
	}
}

func TestProcessEvent_RecordsDeliveries(t *testing.T) {
	db := newTestDB(t)
	authzSvc := newTestAuthz(db)
	owner := createTestUser(t, db, "alice", false)
	project := createTestProject(t, db, authzSvc, owner.ID, "PAY")

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	svc := NewWebhookService(db, authzSvc, nil)
	svc.httpClient = server.Client()

	hook, err := svc.Create(owner.ID, project.ID, &WebhookRequest{
		URL:    server.URL,
		Events: []string{EventTicketCreated},
	})
	if err != nil {
		t.Fatalf("webhook create failed: %v", err)
	}

	// A matching event is delivered and recorded
	evt := newEvent(EventTicketCreated, project.ID, project.Key, owner.ID, "PAY-1 Task", nil)
	if err := svc.ProcessEvent(context.Background(), evt); err != nil {
		t.Fatalf("ProcessEvent failed: %v", err)
	}

	var deliveries []models.WebhookDelivery
	db.Where("webhook_id = ?", hook.ID).Find(&deliveries)
	if len(deliveries) != 1 {
		t.Fatalf("expected 1 delivery record, got %d", len(deliveries))
	}
	if deliveries[0].StatusCode != http.StatusOK || deliveries[0].Error != "" {
		t.Errorf("delivery = %+v, expected clean 200", deliveries[0])
	}

	// A filtered-out event leaves no trace
	other := newEvent(EventSprintClosed, project.ID, project.Key, owner.ID, "Sprint done", nil)
	if err := svc.ProcessEvent(context.Background(), other); err != nil {
		t.Fatalf("ProcessEvent failed: %v", err)
	}
	var count int64
	db.Model(&models.WebhookDelivery{}).Where("webhook_id = ?", hook.ID).Count(&count)
	if count != 1 {
		t.Errorf("filtered event should not be delivered, got %d records", count)
	}
}

func TestWebhookCRUD_RequiresSettingsPermission(t *testing.T) {
	db := newTestDB(t)
	authzSvc := newTestAuthz(db)
	owner := createTestUser(t, db, "alice", false)
	member := createTestUser(t, db, "bob", false)
	project := createTestProject(t, db, authzSvc, owner.ID, "PAY")

	memberRole := projectRole(t, db, project.ID, "Member")
	addMemberWithRole(t, db, project.ID, member.ID, memberRole.ID)

	svc := NewWebhookService(db, authzSvc, nil)
	if _, err := svc.Create(member.ID, project.ID, &WebhookRequest{URL: "https://example.com/hook"}); err == nil {
		t.Error("member without project.settings must not create webhooks")
	}
	if _, err := svc.List(member.ID, project.ID); err == nil {
		t.Error("member without project.settings must not list webhooks")
	}
}
