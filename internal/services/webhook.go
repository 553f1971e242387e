package services

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/tracknest/tracknest/internal/authz"
	"github.com/tracknest/tracknest/internal/models"
	"github.com/tracknest/tracknest/pkg/logger"
	"gorm.io/gorm"
)

type WebhookService struct {
	db           *gorm.DB
	authz        *authz.Service
	notification *NotificationService
	httpClient   *http.Client
}

func NewWebhookService(db *gorm.DB, authzSvc *authz.Service, notification *NotificationService) *WebhookService {
	return &WebhookService{
		db:           db,
		authz:        authzSvc,
		notification: notification,
		httpClient:   &http.Client{Timeout: 10 * time.Second},
	}
}

type WebhookRequest struct {
	URL      string   `json:"url" binding:"required,url"`
	Secret   string   `json:"secret"`
	Events   []string `json:"events"`
	IsActive *bool    `json:"is_active"`
}

func (s *WebhookService) List(userID, projectID uint) ([]models.Webhook, error) {
	if err := s.authz.RequirePermission(userID, projectID, authz.PermProjectSettings); err != nil {
		return nil, err
	}
	var hooks []models.Webhook
	if err := s.db.Where("project_id = ?", projectID).Find(&hooks).Error; err != nil {
		return nil, err
	}
	return hooks, nil
}

func (s *WebhookService) Create(userID, projectID uint, req *WebhookRequest) (*models.Webhook, error) {
	if err := s.authz.RequirePermission(userID, projectID, authz.PermProjectSettings); err != nil {
		return nil, err
	}

	hook := models.Webhook{
		ProjectID: projectID,
		URL:       req.URL,
		Secret:    req.Secret,
		Events:    strings.Join(req.Events, ","),
		IsActive:  true,
	}
	if req.IsActive != nil {
		hook.IsActive = *req.IsActive
	}
	if err := s.db.Create(&hook).Error; err != nil {
		return nil, err
	}
	return &hook, nil
}

func (s *WebhookService) Update(userID, projectID, webhookID uint, req *WebhookRequest) (*models.Webhook, error) {
	if err := s.authz.RequirePermission(userID, projectID, authz.PermProjectSettings); err != nil {
		return nil, err
	}

	var hook models.Webhook
	if err := s.db.Where("project_id = ?", projectID).First(&hook, webhookID).Error; err != nil {
		return nil, err
	}

	hook.URL = req.URL
	hook.Secret = req.Secret
	hook.Events = strings.Join(req.Events, ",")
	if req.IsActive != nil {
		hook.IsActive = *req.IsActive
	}
	if err := s.db.Save(&hook).Error; err != nil {
		return nil, err
	}
	return &hook, nil
}

func (s *WebhookService) Delete(userID, projectID, webhookID uint) error {
	if err := s.authz.RequirePermission(userID, projectID, authz.PermProjectSettings); err != nil {
		return err
	}
	return s.db.Where("project_id = ?", projectID).Delete(&models.Webhook{}, webhookID).Error
}

func (s *WebhookService) ListDeliveries(userID, projectID, webhookID uint, limit int) ([]models.WebhookDelivery, error) {
	if err := s.authz.RequirePermission(userID, projectID, authz.PermProjectSettings); err != nil {
		return nil, err
	}
	if limit <= 0 || limit > 100 {
		limit = 50
	}

	var hook models.Webhook
	if err := s.db.Where("project_id = ?", projectID).First(&hook, webhookID).Error; err != nil {
		return nil, err
	}

	var deliveries []models.WebhookDelivery
	if err := s.db.Where("webhook_id = ?", hook.ID).
		Order("created_at DESC").Limit(limit).
		Find(&deliveries).Error; err != nil {
		return nil, err
	}
	return deliveries, nil
}

// ProcessEvent is the queue processor: it delivers the event to every
// matching webhook on the project and forwards it to the project's chat
// bot. A failed endpoint never blocks the others.
func (s *WebhookService) ProcessEvent(ctx context.Context, evt *Event) error {
	var hooks []models.Webhook
	if err := s.db.Where("project_id = ? AND is_active = ?", evt.ProjectID, true).Find(&hooks).Error; err != nil {
		return err
	}

	for i := range hooks {
		hook := &hooks[i]
		if !webhookMatchesEvent(hook, evt.Type) {
			continue
		}
		s.deliver(ctx, hook, evt)
	}

	if s.notification != nil {
		var project models.Project
		if err := s.db.First(&project, evt.ProjectID).Error; err == nil {
			if err := s.notification.SendEventNotification(&project, evt); err != nil {
				logger.Errorf("[Webhook] Chat notification failed for project %d: %v", project.ID, err)
			}
		}
	}

	return nil
}

// webhookMatchesEvent checks the hook's event filter; an empty filter
// subscribes to everything.
func webhookMatchesEvent(hook *models.Webhook, eventType string) bool {
	if strings.TrimSpace(hook.Events) == "" {
		return true
	}
	for _, e := range strings.Split(hook.Events, ",") {
		if strings.TrimSpace(e) == eventType {
			return true
		}
	}
	return false
}

func (s *WebhookService) deliver(ctx context.Context, hook *models.Webhook, evt *Event) {
	payload, err := json.Marshal(evt)
	if err != nil {
		return
	}

	delivery := models.WebhookDelivery{
		WebhookID: hook.ID,
		Event:     evt.Type,
		Payload:   string(payload),
	}

	start := time.Now()
	statusCode, err := s.post(ctx, hook, payload)
	delivery.Duration = time.Since(start).Milliseconds()
	delivery.StatusCode = statusCode
	if err != nil {
		delivery.Error = err.Error()
		logger.Errorf("[Webhook] Delivery to %s failed: %v", hook.URL, err)
	}

	if dbErr := s.db.Create(&delivery).Error; dbErr != nil {
		logger.Errorf("[Webhook] Failed to record delivery: %v", dbErr)
	}
}

func (s *WebhookService) post(ctx context.Context, hook *models.Webhook, payload []byte) (int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, hook.URL, bytes.NewReader(payload))
	if err != nil {
		return 0, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", "tracknest-webhook")
	if hook.Secret != "" {
		req.Header.Set("X-Tracknest-Signature", "sha256="+SignPayload(hook.Secret, payload))
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))

	if resp.StatusCode >= 400 {
		return resp.StatusCode, fmt.Errorf("endpoint returned status %d", resp.StatusCode)
	}
	return resp.StatusCode, nil
}

// SignPayload computes the hex HMAC-SHA256 signature receivers use to
// verify a delivery.
func SignPayload(secret string, payload []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(payload)
	return hex.EncodeToString(mac.Sum(nil))
}
