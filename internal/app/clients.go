package app

import (
	"context"
	"fmt"
	"strings"

	"github.com/yungbote/pictures2pages-backend/internal/modules/generation"
	"github.com/yungbote/pictures2pages-backend/internal/platform/gcp"
	"github.com/yungbote/pictures2pages-backend/internal/platform/logger"
	"github.com/yungbote/pictures2pages-backend/internal/platform/objectstore"
	"github.com/yungbote/pictures2pages-backend/internal/platform/ollama"
	"github.com/yungbote/pictures2pages-backend/internal/platform/openai"
	"github.com/yungbote/pictures2pages-backend/internal/realtime/bus"
)

type Clients struct {
	Store  objectstore.Store
	Vision *gcp.VisionLabels
	Text   generation.TextGenerator
	Bus    bus.Bus
}

func wireClients(ctx context.Context, log *logger.Logger, cfg Config) (Clients, error) {
	log.Info("Wiring clients...")
	var c Clients

	store, err := resolveObjectStore(ctx, log, cfg)
	if err != nil {
		return Clients{}, err
	}
	c.Store = store

	// Cloud Vision reads gs:// URIs only from real GCS; emulator and MinIO
	// objects are sent inline.
	inline := store.Mode() != objectstore.ModeGCS
	vision, err := gcp.NewVisionLabels(ctx, log, cfg.GoogleCredentials(), store, inline)
	if err != nil {
		c.Close()
		return Clients{}, fmt.Errorf("init vision client: %w", err)
	}
	c.Vision = vision

	text, err := newTextGenerator(log, cfg)
	if err != nil {
		c.Close()
		return Clients{}, fmt.Errorf("init text provider: %w", err)
	}
	c.Text = text

	if strings.TrimSpace(cfg.RedisAddr) != "" {
		b, err := bus.NewRedisBus(ctx, log, bus.RedisConfig{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
			Channel:  cfg.RedisChannel,
		})
		if err != nil {
			c.Close()
			return Clients{}, fmt.Errorf("init redis SSE bus: %w", err)
		}
		c.Bus = b
	} else {
		c.Bus = bus.NewLocalBus(log)
	}
	return c, nil
}

func newTextGenerator(log *logger.Logger, cfg Config) (generation.TextGenerator, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.TextProvider)) {
	case TextProviderOllama:
		return ollama.NewClient(log, cfg.OllamaConfig())
	default:
		return openai.NewClient(log, cfg.OpenAIConfig())
	}
}

func (c *Clients) Close() {
	if c == nil {
		return
	}
	if c.Bus != nil {
		_ = c.Bus.Close()
	}
	if c.Vision != nil {
		_ = c.Vision.Close()
	}
	if closer, ok := c.Store.(interface{ Close() error }); ok {
		_ = closer.Close()
	}
}
