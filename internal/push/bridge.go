package push

import (
	"context"
	"strconv"

	"github.com/spec-kit/servicedesk/internal/events"
)

// Push event names consumed by the UI to invalidate cached views.
const (
	EventActivityCreated = "activity:created"
	EventTicketUpdated   = "ticket:updated"
	EventMentionCreated  = "mention:created"
)

// Bridge forwards dispatcher events onto the websocket hub. Activity and
// ticket events fan out to everyone; mention events go only to the
// mentioned user's room.
type Bridge struct {
	hub        *Hub
	dispatcher events.Dispatcher
}

// NewBridge constructs the bridge.
func NewBridge(hub *Hub, dispatcher events.Dispatcher) *Bridge {
	return &Bridge{hub: hub, dispatcher: dispatcher}
}

// RegisterHandlers subscribes the bridge to the dispatcher.
func (b *Bridge) RegisterHandlers() {
	if b.dispatcher == nil {
		return
	}
	b.dispatcher.Subscribe(events.EventActivityRecorded, b.handleActivityRecorded)
	b.dispatcher.Subscribe(events.EventTicketCreated, b.handleTicketMutated)
	b.dispatcher.Subscribe(events.EventTicketStatusChanged, b.handleTicketMutated)
	b.dispatcher.Subscribe(events.EventTicketAssigned, b.handleTicketMutated)
	b.dispatcher.Subscribe(events.EventMentionCreated, b.handleMentionCreated)
}

func (b *Bridge) handleActivityRecorded(ctx context.Context, event events.Event) error {
	b.hub.BroadcastAll(Envelope{Event: EventActivityCreated, Payload: event.Payload})
	return nil
}

func (b *Bridge) handleTicketMutated(ctx context.Context, event events.Event) error {
	b.hub.BroadcastAll(Envelope{Event: EventTicketUpdated, Payload: event.Payload})
	return nil
}

func (b *Bridge) handleMentionCreated(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.MentionCreatedPayload)
	if !ok {
		return nil
	}
	room := strconv.FormatInt(payload.MentionedUserID, 10)
	b.hub.Broadcast(room, Envelope{Event: EventMentionCreated, Payload: payload})
	return nil
}
