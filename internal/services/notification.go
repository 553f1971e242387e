package services

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/tracknest/tracknest/internal/models"
	"github.com/tracknest/tracknest/pkg/logger"
	"gorm.io/gorm"
)

type NotificationService struct {
	db         *gorm.DB
	httpClient *http.Client
}

func NewNotificationService(db *gorm.DB) *NotificationService {
	return &NotificationService{
		db:         db,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

// SendEventNotification pushes a project event to the project's bound
// chat bot, if one is enabled.
func (s *NotificationService) SendEventNotification(project *models.Project, evt *Event) error {
	if !project.IMEnabled || project.IMBotID == nil {
		return nil
	}

	var bot models.IMBot
	if err := s.db.First(&bot, *project.IMBotID).Error; err != nil {
		return fmt.Errorf("IM bot not found: %w", err)
	}
	if !bot.IsActive {
		logger.Infof("[Notification] IM bot %d is not active", bot.ID)
		return nil
	}

	var err error
	switch bot.Type {
	case "wechat_work":
		err = s.sendWeComNotification(&bot, project, evt)
	case "dingtalk":
		err = s.sendDingTalkNotification(&bot, project, evt)
	case "feishu":
		err = s.sendFeishuNotification(&bot, project, evt)
	case "slack":
		err = s.sendSlackNotification(&bot, project, evt)
	case "discord":
		err = s.sendDiscordNotification(&bot, project, evt)
	default:
		err = s.sendGenericWebhook(&bot, project, evt)
	}

	if err != nil {
		logger.Errorf("[Notification] Failed to send notification: %v", err)
		return err
	}
	return nil
}

// eventTitle maps an event type to the human heading used in chat
// messages.
func eventTitle(eventType string) string {
	switch eventType {
	case EventTicketCreated:
		return "Ticket created"
	case EventTicketUpdated:
		return "Ticket updated"
	case EventTicketMoved:
		return "Ticket moved"
	case EventTicketAssigned:
		return "Ticket assigned"
	case EventTicketDeleted:
		return "Ticket deleted"
	case EventCommentCreated:
		return "New comment"
	case EventSprintStarted:
		return "Sprint started"
	case EventSprintClosed:
		return "Sprint closed"
	case EventDueDigest:
		return "Due tickets"
	default:
		return eventType
	}
}

func (s *NotificationService) buildMessage(project *models.Project, evt *Event) string {
	msg := fmt.Sprintf("**%s**\n\n**Project**: %s (%s)\n%s",
		eventTitle(evt.Type), project.Name, project.Key, evt.Summary)

	if key, ok := evt.Payload["ticket_key"].(string); ok && key != "" {
		msg += fmt.Sprintf("\n**Ticket**: %s", key)
	}
	return msg
}

func (s *NotificationService) postJSON(webhookURL string, payload interface{}) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	resp, err := s.httpClient.Post(webhookURL, "application/json", bytes.NewReader(body))
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	if resp.StatusCode >= 400 {
		return fmt.Errorf("webhook returned status %d: %s", resp.StatusCode, string(respBody))
	}
	return nil
}
