package worker

import (
	"github.com/spec-kit/servicedesk/internal/push"
	"github.com/spec-kit/servicedesk/internal/service"
)

// StartNotificationWorker wires the event-driven consumers: the notification
// service (email stubs, logging) and the websocket bridge. Both run inline
// on the dispatcher; there is no background goroutine to stop.
func StartNotificationWorker(notificationService *service.NotificationService, bridge *push.Bridge) {
	if notificationService != nil {
		notificationService.RegisterHandlers()
	}
	if bridge != nil {
		bridge.RegisterHandlers()
	}
}
