package services

import (
	"context"

	"github.com/yungbote/pictures2pages-backend/internal/modules/generation"
	"github.com/yungbote/pictures2pages-backend/internal/platform/apierr"
	"github.com/yungbote/pictures2pages-backend/internal/platform/ctxutil"
	"github.com/yungbote/pictures2pages-backend/internal/platform/logger"
	"github.com/yungbote/pictures2pages-backend/internal/realtime"
	"github.com/yungbote/pictures2pages-backend/internal/realtime/bus"
)

// EventPublisher pushes user-scoped notifications onto the bus. Publishing is
// best effort and never fails the operation that triggered it. A nil
// publisher is valid and drops everything.
type EventPublisher struct {
	log *logger.Logger
	bus bus.Bus
}

func NewEventPublisher(log *logger.Logger, b bus.Bus) *EventPublisher {
	return &EventPublisher{log: log.With("service", "EventPublisher"), bus: b}
}

func (p *EventPublisher) Publish(ctx context.Context, userID uint, event realtime.SSEEvent, data any) {
	if p == nil || p.bus == nil || userID == 0 {
		return
	}
	msg := realtime.SSEMessage{Channel: realtime.UserChannel(userID), Event: event, Data: data}
	if err := p.bus.Publish(context.WithoutCancel(ctx), msg); err != nil {
		p.log.Warn("Event publish failed", "event", event, "error", err)
	}
}

type generationStatePayload struct {
	State     string `json:"state"`
	Kind      string `json:"kind"`
	RequestID string `json:"request_id,omitempty"`
	Error     string `json:"error,omitempty"`
}

// GenerationTransitions reports every pipeline state change to the owner,
// tagged with the originating request id when one is on ctx.
func (p *EventPublisher) GenerationTransitions() generation.TransitionFunc {
	return func(ctx context.Context, req generation.Request, to generation.State, err error) {
		payload := generationStatePayload{State: string(to), Kind: string(req.Kind)}
		if td := ctxutil.GetTraceData(ctx); td != nil {
			payload.RequestID = td.RequestID
		}
		if err != nil {
			payload.Error = apierr.From(err).PublicMessage()
		}
		p.Publish(ctx, req.OwnerID, realtime.SSEEventGenerationState, payload)
	}
}
