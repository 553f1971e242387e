package services

import (
	"github.com/tracknest/tracknest/pkg/logger"
)

// Dispatcher fans a project event out to the live SSE hub and the
// delivery queue (webhooks and chat bots). Publishing to the hub is
// immediate; queue processing happens off the request path.
type Dispatcher struct {
	queue TaskQueue
	hub   *EventHub
}

func NewDispatcher(queue TaskQueue, hub *EventHub) *Dispatcher {
	return &Dispatcher{queue: queue, hub: hub}
}

func (d *Dispatcher) Dispatch(evt *Event) {
	if d == nil || evt == nil {
		return
	}

	if d.hub != nil {
		d.hub.Publish(*evt)
	}

	if d.queue != nil {
		if err := d.queue.Enqueue(evt); err != nil {
			logger.Errorf("[Dispatcher] Failed to enqueue event %s: %v", evt.Type, err)
		}
	}
}
