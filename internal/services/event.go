package services

import "time"

// Project event types fanned out to webhooks, chat bots and SSE clients.
const (
	EventTicketCreated  = "ticket.created"
	EventTicketUpdated  = "ticket.updated"
	EventTicketMoved    = "ticket.moved"
	EventTicketAssigned = "ticket.assigned"
	EventTicketDeleted  = "ticket.deleted"
	EventCommentCreated = "comment.created"
	EventSprintStarted  = "sprint.started"
	EventSprintClosed   = "sprint.closed"
	EventDueDigest      = "digest.due_tickets"
)

// Event is one project activity record. It is the unit the task queue
// carries and the payload webhooks and SSE clients receive.
type Event struct {
	Type       string                 `json:"type"`
	ProjectID  uint                   `json:"project_id"`
	ProjectKey string                 `json:"project_key"`
	ActorID    uint                   `json:"actor_id"`
	Summary    string                 `json:"summary"`
	Payload    map[string]interface{} `json:"payload,omitempty"`
	OccurredAt time.Time              `json:"occurred_at"`
}

func newEvent(eventType string, projectID uint, projectKey string, actorID uint, summary string, payload map[string]interface{}) *Event {
	return &Event{
		Type:       eventType,
		ProjectID:  projectID,
		ProjectKey: projectKey,
		ActorID:    actorID,
		Summary:    summary,
		Payload:    payload,
		OccurredAt: time.Now(),
	}
}
