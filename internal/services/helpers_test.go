package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"testing"

	"gorm.io/gorm"

	"github.com/yungbote/pictures2pages-backend/internal/data/repos"
	"github.com/yungbote/pictures2pages-backend/internal/data/repos/testutil"
	"github.com/yungbote/pictures2pages-backend/internal/platform/ctxutil"
	"github.com/yungbote/pictures2pages-backend/internal/platform/logger"
	"github.com/yungbote/pictures2pages-backend/internal/platform/objectstore"
	"github.com/yungbote/pictures2pages-backend/internal/realtime"
	"github.com/yungbote/pictures2pages-backend/internal/realtime/bus"
)

type memStore struct {
	mu        sync.Mutex
	objects   map[string][]byte
	failPut   error
	deletions []string
}

func newMemStore() *memStore { return &memStore{objects: map[string][]byte{}} }

func (m *memStore) path(category objectstore.Category, key string) string {
	return string(category) + "/" + key
}

func (m *memStore) Upload(_ context.Context, category objectstore.Category, key string, r io.Reader, _ int64) error {
	if m.failPut != nil {
		return m.failPut
	}
	b, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[m.path(category, key)] = b
	return nil
}

func (m *memStore) Delete(_ context.Context, category objectstore.Category, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.deletions = append(m.deletions, key)
	delete(m.objects, m.path(category, key))
	return nil
}

func (m *memStore) Download(_ context.Context, category objectstore.Category, key string) (io.ReadCloser, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.objects[m.path(category, key)]
	if !ok {
		return nil, fmt.Errorf("object %s not found", key)
	}
	return io.NopCloser(bytes.NewReader(b)), nil
}

func (m *memStore) OpenObject(ctx context.Context, _ string, key string) (io.ReadCloser, error) {
	return m.Download(ctx, objectstore.CategoryImage, key)
}

func (m *memStore) PublicURL(category objectstore.Category, key string) string {
	return "https://cdn.test/" + m.BucketName(category) + "/" + key
}

func (m *memStore) BucketName(category objectstore.Category) string { return string(category) + "s" }
func (m *memStore) Mode() objectstore.Mode                         { return objectstore.ModeGCS }

func (m *memStore) has(category objectstore.Category, key string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.objects[m.path(category, key)]
	return ok
}

func (m *memStore) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.objects)
}

type capturedEvents struct {
	mu   sync.Mutex
	msgs []realtime.SSEMessage
}

func (c *capturedEvents) add(m realtime.SSEMessage) {
	c.mu.Lock()
	c.msgs = append(c.msgs, m)
	c.mu.Unlock()
}

func (c *capturedEvents) events() []realtime.SSEEvent {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]realtime.SSEEvent, 0, len(c.msgs))
	for _, m := range c.msgs {
		out = append(out, m.Event)
	}
	return out
}

func newCapturingPublisher(t *testing.T, log *logger.Logger) (*EventPublisher, *capturedEvents) {
	t.Helper()
	b := bus.NewLocalBus(log)
	captured := &capturedEvents{}
	if err := b.StartForwarder(context.Background(), captured.add); err != nil {
		t.Fatalf("start forwarder: %v", err)
	}
	return NewEventPublisher(log, b), captured
}

type fixture struct {
	db     *gorm.DB
	log    *logger.Logger
	users  repos.UserRepo
	tokens repos.UserTokenRepo
	images repos.ImageRepo
	posts  repos.GeneratedContentRepo
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := testutil.DB(t)
	log := testutil.Logger(t)
	return &fixture{
		db:     db,
		log:    log,
		users:  repos.NewUserRepo(db, log),
		tokens: repos.NewUserTokenRepo(db, log),
		images: repos.NewImageRepo(db, log),
		posts:  repos.NewGeneratedContentRepo(db, log),
	}
}

func asUser(id uint) context.Context {
	return ctxutil.WithRequestData(context.Background(), &ctxutil.RequestData{UserID: id})
}

func requireErrorAs[T error](t *testing.T, err error) T {
	t.Helper()
	var target T
	if !errors.As(err, &target) {
		t.Fatalf("want %T, got %v", target, err)
	}
	return target
}
