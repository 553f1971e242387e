package services

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"net/url"
	"time"

	"github.com/tracknest/tracknest/internal/models"
)

func (s *NotificationService) sendWeComNotification(bot *models.IMBot, project *models.Project, evt *Event) error {
	payload := map[string]interface{}{
		"msgtype": "markdown",
		"markdown": map[string]string{
			"content": s.buildMessage(project, evt),
		},
	}
	return s.postJSON(bot.Webhook, payload)
}

func (s *NotificationService) sendDingTalkNotification(bot *models.IMBot, project *models.Project, evt *Event) error {
	webhookURL := bot.Webhook
	if bot.Secret != "" {
		timestamp := time.Now().UnixMilli()
		sign := dingTalkSign(timestamp, bot.Secret)
		webhookURL = fmt.Sprintf("%s&timestamp=%d&sign=%s", bot.Webhook, timestamp, url.QueryEscape(sign))
	}

	payload := map[string]interface{}{
		"msgtype": "markdown",
		"markdown": map[string]string{
			"title": fmt.Sprintf("%s: %s", eventTitle(evt.Type), project.Name),
			"text":  s.buildMessage(project, evt),
		},
	}
	return s.postJSON(webhookURL, payload)
}

func dingTalkSign(timestamp int64, secret string) string {
	stringToSign := fmt.Sprintf("%d\n%s", timestamp, secret)
	h := hmac.New(sha256.New, []byte(secret))
	h.Write([]byte(stringToSign))
	return base64.StdEncoding.EncodeToString(h.Sum(nil))
}

func (s *NotificationService) sendFeishuNotification(bot *models.IMBot, project *models.Project, evt *Event) error {
	content := s.buildMessage(project, evt)

	if bot.Secret != "" {
		timestamp := time.Now().Unix()
		payload := map[string]interface{}{
			"timestamp": fmt.Sprintf("%d", timestamp),
			"sign":      feishuSign(timestamp, bot.Secret),
			"msg_type":  "text",
			"content": map[string]string{
				"text": content,
			},
		}
		return s.postJSON(bot.Webhook, payload)
	}

	payload := map[string]interface{}{
		"msg_type": "text",
		"content": map[string]string{
			"text": content,
		},
	}
	return s.postJSON(bot.Webhook, payload)
}

func feishuSign(timestamp int64, secret string) string {
	stringToSign := fmt.Sprintf("%d\n%s", timestamp, secret)
	h := hmac.New(sha256.New, []byte(stringToSign))
	return base64.StdEncoding.EncodeToString(h.Sum(nil))
}

func (s *NotificationService) sendSlackNotification(bot *models.IMBot, project *models.Project, evt *Event) error {
	header := fmt.Sprintf("*%s*\n*Project*: %s (%s)", eventTitle(evt.Type), project.Name, project.Key)

	payload := map[string]interface{}{
		"text": header,
		"blocks": []map[string]interface{}{
			{
				"type": "section",
				"text": map[string]string{
					"type": "mrkdwn",
					"text": header,
				},
			},
			{
				"type": "section",
				"text": map[string]string{
					"type": "mrkdwn",
					"text": evt.Summary,
				},
			},
		},
	}
	return s.postJSON(bot.Webhook, payload)
}

func (s *NotificationService) sendDiscordNotification(bot *models.IMBot, project *models.Project, evt *Event) error {
	payload := map[string]interface{}{
		"content": s.buildMessage(project, evt),
	}
	return s.postJSON(bot.Webhook, payload)
}

func (s *NotificationService) sendGenericWebhook(bot *models.IMBot, project *models.Project, evt *Event) error {
	payload := map[string]interface{}{
		"event":       evt.Type,
		"project":     project.Name,
		"project_key": project.Key,
		"summary":     evt.Summary,
		"payload":     evt.Payload,
		"occurred_at": evt.OccurredAt,
	}
	return s.postJSON(bot.Webhook, payload)
}
