package service

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/spec-kit/servicedesk/internal/config"
	"github.com/spec-kit/servicedesk/internal/events"
)

// NotificationService turns domain events into outbound notifications.
// Email delivery is a logged stub; a failed or skipped notification never
// affects the mutation that produced the event.
type NotificationService struct {
	dispatcher events.Dispatcher
	logger     *zap.Logger
	cfg        config.NotifyConfig
}

// NewNotificationService creates the service.
func NewNotificationService(dispatcher events.Dispatcher, logger *zap.Logger, cfg config.NotifyConfig) *NotificationService {
	return &NotificationService{
		dispatcher: dispatcher,
		logger:     logger,
		cfg:        cfg,
	}
}

// RegisterHandlers subscribes to events.
func (n *NotificationService) RegisterHandlers() {
	if n.dispatcher == nil {
		return
	}
	n.dispatcher.Subscribe(events.EventMentionCreated, n.handleMentionCreated)
	n.dispatcher.Subscribe(events.EventTicketCreated, n.handleTicketCreated)
	n.dispatcher.Subscribe(events.EventTicketAssigned, n.handleTicketAssigned)
}

func (n *NotificationService) handleMentionCreated(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.MentionCreatedPayload)
	if !ok {
		return nil
	}
	n.logger.Info("MentionCreated",
		zap.Int64("ticket_id", payload.TicketID),
		zap.Int64("mentioned_user_id", payload.MentionedUserID))
	n.sendEmailStub(payload.MentionedUserID,
		fmt.Sprintf("%s mentioned you on ticket %q", payload.MentionedBy, payload.TicketSubject),
		fmt.Sprintf("%s/admin?ticket=%d", n.cfg.AppURL, payload.TicketID))
	return nil
}

func (n *NotificationService) handleTicketCreated(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.TicketCreatedPayload)
	if !ok {
		return nil
	}
	n.logger.Info("TicketCreated",
		zap.Int64("ticket_id", payload.TicketID),
		zap.String("priority", string(payload.Priority)))
	return nil
}

func (n *NotificationService) handleTicketAssigned(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.TicketAssignedPayload)
	if !ok {
		return nil
	}
	n.logger.Info("TicketAssigned",
		zap.Int64("ticket_id", payload.TicketID),
		zap.Any("assigned_to", payload.AssignedTo))
	return nil
}

func (n *NotificationService) sendEmailStub(userID int64, subject, link string) {
	if strings.TrimSpace(n.cfg.EmailFrom) == "" {
		return
	}
	n.logger.Debug("sendEmailStub",
		zap.String("from", n.cfg.EmailFrom),
		zap.Int64("user_id", userID),
		zap.String("subject", subject),
		zap.String("link", link))
}
