package services

import (
	"context"
	"errors"
	"testing"

	"github.com/yungbote/pictures2pages-backend/internal/data/repos/testutil"
	"github.com/yungbote/pictures2pages-backend/internal/modules/generation"
	"github.com/yungbote/pictures2pages-backend/internal/platform/ctxutil"
	"github.com/yungbote/pictures2pages-backend/internal/realtime"
)

func TestGenerationTransitionsPublishToOwnerChannel(t *testing.T) {
	events, captured := newCapturingPublisher(t, testutil.Logger(t))
	hook := events.GenerationTransitions()

	req := generation.Request{OwnerID: 12, Kind: "story"}
	hook(context.Background(), req, generation.StateLabelsExtracted, nil)
	hook(context.Background(), req, generation.StateFailed, &generation.PersistenceError{Err: errors.New("pq: secret detail")})

	captured.mu.Lock()
	defer captured.mu.Unlock()
	if len(captured.msgs) != 2 {
		t.Fatalf("want 2 messages got %d", len(captured.msgs))
	}
	for _, m := range captured.msgs {
		if m.Channel != realtime.UserChannel(12) || m.Event != realtime.SSEEventGenerationState {
			t.Fatalf("unexpected message: %+v", m)
		}
	}
	failed := captured.msgs[1].Data.(generationStatePayload)
	if failed.State != "failed" || failed.Error != "content was generated but could not be saved" {
		t.Fatalf("unexpected failure payload: %+v", failed)
	}
	if failed.RequestID != "" {
		t.Fatalf("no request id on ctx, got %q", failed.RequestID)
	}
}

func TestGenerationTransitionsCarryRequestID(t *testing.T) {
	events, captured := newCapturingPublisher(t, testutil.Logger(t))
	ctx := ctxutil.WithTraceData(context.Background(), &ctxutil.TraceData{TraceID: "t-1", RequestID: "req-42"})

	events.GenerationTransitions()(ctx, generation.Request{OwnerID: 3, Kind: "poem"}, generation.StatePersisted, nil)

	captured.mu.Lock()
	defer captured.mu.Unlock()
	if len(captured.msgs) != 1 {
		t.Fatalf("want 1 message got %d", len(captured.msgs))
	}
	got := captured.msgs[0].Data.(generationStatePayload)
	if got.RequestID != "req-42" || got.State != "persisted" || got.Kind != "poem" {
		t.Fatalf("unexpected payload: %+v", got)
	}
}

func TestNilEventPublisherIsSafe(t *testing.T) {
	var p *EventPublisher
	p.Publish(context.Background(), 1, realtime.SSEEventContentDeleted, nil)
	p.GenerationTransitions()(context.Background(), generation.Request{OwnerID: 1}, generation.StateRequested, nil)
}

func TestPublishSkipsAnonymous(t *testing.T) {
	events, captured := newCapturingPublisher(t, testutil.Logger(t))
	events.Publish(context.Background(), 0, realtime.SSEEventContentCreated, nil)
	if len(captured.events()) != 0 {
		t.Fatalf("anonymous publish should be dropped")
	}
}
