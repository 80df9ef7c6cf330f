package realtime

import (
	"bufio"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/yungbote/pictures2pages-backend/internal/platform/logger"
)

func mustTestLogger(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.New("development", logger.WithLevel("warn"))
	if err != nil {
		t.Fatalf("logger.New: %v", err)
	}
	t.Cleanup(log.Sync)
	return log
}

func recvMessage(t *testing.T, ch <-chan SSEMessage, timeout time.Duration) SSEMessage {
	t.Helper()
	select {
	case msg := <-ch:
		return msg
	case <-time.After(timeout):
		t.Fatalf("timed out waiting for SSE message")
	}
	return SSEMessage{}
}

func TestSSEHubReconnectAndOrdering(t *testing.T) {
	hub := NewSSEHub(mustTestLogger(t))
	channel := UserChannel(7)

	clientA := hub.NewSSEClient(7)
	hub.AddChannel(clientA, channel)

	hub.Broadcast(SSEMessage{Channel: channel, Event: SSEEventGenerationState, Data: map[string]any{"state": "requested"}})
	hub.Broadcast(SSEMessage{Channel: channel, Event: SSEEventContentCreated, Data: map[string]any{"id": 1}})

	if got := recvMessage(t, clientA.Outbound, time.Second); got.Event != SSEEventGenerationState {
		t.Fatalf("first event: want=%s got=%s", SSEEventGenerationState, got.Event)
	}
	if got := recvMessage(t, clientA.Outbound, time.Second); got.Event != SSEEventContentCreated {
		t.Fatalf("second event: want=%s got=%s", SSEEventContentCreated, got.Event)
	}

	hub.CloseClient(clientA)
	hub.CloseClient(clientA)
	select {
	case _, ok := <-clientA.Outbound:
		if ok {
			t.Fatalf("clientA outbound should be closed after disconnect")
		}
	case <-time.After(500 * time.Millisecond):
		t.Fatalf("timed out waiting for clientA channel close")
	}
	if hub.Subscribers(channel) != 0 {
		t.Fatalf("closed client still subscribed")
	}

	clientB := hub.NewSSEClient(7)
	hub.AddChannel(clientB, channel)
	hub.Broadcast(SSEMessage{Channel: channel, Event: SSEEventContentDeleted})
	if got := recvMessage(t, clientB.Outbound, time.Second); got.Event != SSEEventContentDeleted {
		t.Fatalf("reconnect event: want=%s got=%s", SSEEventContentDeleted, got.Event)
	}
}

func TestSSEHubChannelsAreIsolated(t *testing.T) {
	hub := NewSSEHub(mustTestLogger(t))
	owner := hub.NewSSEClient(1)
	other := hub.NewSSEClient(2)
	hub.AddChannel(owner, UserChannel(1))
	hub.AddChannel(other, UserChannel(2))

	hub.Broadcast(SSEMessage{Channel: UserChannel(1), Event: SSEEventContentCreated})
	recvMessage(t, owner.Outbound, time.Second)
	select {
	case msg := <-other.Outbound:
		t.Fatalf("other user received %v", msg)
	case <-time.After(50 * time.Millisecond):
	}

	hub.RemoveChannel(owner, UserChannel(1))
	hub.Broadcast(SSEMessage{Channel: UserChannel(1), Event: SSEEventContentDeleted})
	select {
	case msg := <-owner.Outbound:
		t.Fatalf("unsubscribed client received %v", msg)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestSSEHubServeHTTPStreamsEvents(t *testing.T) {
	hub := NewSSEHub(mustTestLogger(t))
	client := hub.NewSSEClient(3)
	hub.AddChannel(client, UserChannel(3))

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hub.ServeHTTP(w, r, client)
	}))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	req, _ := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL, nil)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	defer resp.Body.Close()
	if ct := resp.Header.Get("Content-Type"); ct != "text/event-stream" {
		t.Fatalf("content type: %q", ct)
	}

	hub.Broadcast(SSEMessage{Channel: UserChannel(3), Event: SSEEventContentCreated, Data: map[string]any{"id": 9}})

	reader := bufio.NewReader(resp.Body)
	var lines []string
	for len(lines) < 2 {
		line, err := reader.ReadString('\n')
		if err != nil {
			t.Fatalf("read stream: %v (lines so far %v)", err, lines)
		}
		if line = strings.TrimSpace(line); line != "" {
			lines = append(lines, line)
		}
	}
	if lines[0] != "event: ContentCreated" || !strings.HasPrefix(lines[1], "data: ") || !strings.Contains(lines[1], `"id":9`) {
		t.Fatalf("unexpected frame: %v", lines)
	}
}

func TestSSEHubCloseAllEndsStreams(t *testing.T) {
	hub := NewSSEHub(mustTestLogger(t))
	a := hub.NewSSEClient(1)
	b := hub.NewSSEClient(2)
	hub.AddChannel(a, UserChannel(1))
	hub.AddChannel(b, UserChannel(2))
	hub.AddChannel(b, "broadcast")

	hub.CloseAll()

	for _, c := range []*SSEClient{a, b} {
		if _, ok := <-c.Outbound; ok {
			t.Fatalf("client %s outbound still open", c.ID)
		}
	}
	if hub.Subscribers(UserChannel(1))+hub.Subscribers(UserChannel(2))+hub.Subscribers("broadcast") != 0 {
		t.Fatalf("subscriptions left after CloseAll")
	}
	hub.CloseClient(a)
}
