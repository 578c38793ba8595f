package pushnotification

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/kazz187/wbsgantt/internal/eventbus"
)

// Dispatcher turns task overdue events into push notifications.
type Dispatcher struct {
	eventBus *eventbus.Bus
	notifier Notifier
}

func NewDispatcher(eventBus *eventbus.Bus, notifier Notifier) *Dispatcher {
	return &Dispatcher{
		eventBus: eventBus,
		notifier: notifier,
	}
}

func (d *Dispatcher) Start(ctx context.Context) error {
	subID, ch := d.eventBus.Subscribe(256)
	defer d.eventBus.Unsubscribe(subID)

	slog.Info("push notification dispatcher started")
	for {
		select {
		case <-ctx.Done():
			slog.Info("push notification dispatcher stopped")
			return nil
		case event, ok := <-ch:
			if !ok {
				return nil
			}
			if event.Type == eventbus.EventTypeTaskOverdue {
				d.notifier.SendToAll(ctx, overduePayload(event))
			}
		}
	}
}

func overduePayload(event *eventbus.Event) *NotificationPayload {
	md := event.Metadata
	name := md["task_name"]
	if name == "" {
		name = event.ResourceID
	}
	body := fmt.Sprintf("%s was due %s", name, md["end_date"])
	if p := md["project_name"]; p != "" {
		body = fmt.Sprintf("%s: %s", p, body)
	}
	return &NotificationPayload{
		Title: "Task overdue",
		Body:  body,
		URL:   fmt.Sprintf("/projects/%s/tasks/%s", md["project_id"], event.ResourceID),
		Tag:   md["project_id"] + "/" + event.ResourceID,
	}
}
