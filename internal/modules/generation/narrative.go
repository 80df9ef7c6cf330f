package generation

import (
	"context"
	"regexp"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"

	types "github.com/yungbote/pictures2pages-backend/internal/domain"
	"github.com/yungbote/pictures2pages-backend/internal/platform/logger"
)

// TextGenerator is a single-shot, stateless completion call.
type TextGenerator interface {
	Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}

type Narrative struct {
	Title string
	Body  string
}

var (
	titleLine      = regexp.MustCompile(`^Title:[ \t\r\f\v]*(.*)`)
	titleLineStrip = regexp.MustCompile(`^Title:.*\n?`)
)

// ParseNarrative splits a raw completion into title and body. Only a leading
// "Title: ..." line counts as a title.
func ParseNarrative(raw string, kind types.ContentKind) (Narrative, error) {
	return parseNarrative(defaultPrompts, raw, kind)
}

func parseNarrative(p *Prompts, raw string, kind types.ContentKind) (Narrative, error) {
	if strings.TrimSpace(raw) == "" {
		return Narrative{}, &GenerationError{Reason: "empty response"}
	}
	var n Narrative
	if m := titleLine.FindStringSubmatch(raw); m != nil {
		n.Title = strings.TrimSpace(m[1])
	}
	if n.Title == "" {
		n.Title = p.FallbackTitle(kind)
	}
	n.Body = strings.TrimSpace(titleLineStrip.ReplaceAllString(raw, ""))
	if n.Body == "" {
		return Narrative{}, &GenerationError{Reason: "response has a title but no body"}
	}
	return n, nil
}

type NarrativeGenerator struct {
	log     *logger.Logger
	text    TextGenerator
	prompts *Prompts
	timeout time.Duration
	metrics *Metrics
}

// NewNarrativeGenerator builds a generator. timeout bounds the external call
// once dispatched; zero means no bound beyond the provider's own.
func NewNarrativeGenerator(log *logger.Logger, text TextGenerator, timeout time.Duration, metrics *Metrics) *NarrativeGenerator {
	return &NarrativeGenerator{
		log:     log.With("service", "NarrativeGenerator"),
		text:    text,
		prompts: defaultPrompts,
		timeout: timeout,
		metrics: metrics,
	}
}

// WithPrompts swaps the prompt set. Used by tests and by PROMPTS_PATH overrides.
func (g *NarrativeGenerator) WithPrompts(p *Prompts) *NarrativeGenerator {
	if p != nil {
		g.prompts = p
	}
	return g
}

// Generate performs exactly one completion call. Cancelling ctx before the
// call aborts; after dispatch the call runs to completion or timeout.
func (g *NarrativeGenerator) Generate(ctx context.Context, labels [3][]string, theme string, kind types.ContentKind) (Narrative, error) {
	if !kind.Valid() {
		return Narrative{}, &ValidationError{Field: "kind", Reason: "must be story or poem"}
	}
	if err := ctx.Err(); err != nil {
		return Narrative{}, &GenerationError{Reason: "cancelled before dispatch", Err: err}
	}

	system := g.prompts.Persona(kind)
	user := g.prompts.Instruction(labels, theme, kind)
	g.log.Debug("Dispatching narrative generation", "kind", kind, "prompt", user)

	ctx, span := tracer.Start(ctx, "narrative.generate")
	defer span.End()
	span.SetAttributes(attribute.String("content.kind", string(kind)))

	callCtx := context.WithoutCancel(ctx)
	if g.timeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(callCtx, g.timeout)
		defer cancel()
	}

	start := time.Now()
	raw, err := g.text.Complete(callCtx, system, user)
	elapsed := time.Since(start)
	if err != nil {
		g.metrics.observeGeneration(string(kind), "error", elapsed)
		g.log.Warn("Text generation call failed", "kind", kind, "error", err)
		span.RecordError(err)
		return Narrative{}, &GenerationError{Reason: "text service call failed", Err: err}
	}

	n, err := parseNarrative(g.prompts, raw, kind)
	if err != nil {
		g.metrics.observeGeneration(string(kind), "unusable", elapsed)
		g.log.Warn("Unusable text generation response", "kind", kind, "error", err)
		span.RecordError(err)
		return Narrative{}, err
	}
	g.metrics.observeGeneration(string(kind), "ok", elapsed)
	g.log.Info("Narrative generated", "kind", kind, "title", n.Title, "took_ms", elapsed.Milliseconds())
	return n, nil
}
