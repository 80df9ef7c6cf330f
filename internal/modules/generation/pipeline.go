package generation

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/errgroup"

	types "github.com/yungbote/pictures2pages-backend/internal/domain"
	"github.com/yungbote/pictures2pages-backend/internal/platform/logger"
)

type State string

const (
	StateRequested        State = "requested"
	StateLabelsExtracted  State = "labels_extracted"
	StateContentGenerated State = "content_generated"
	StatePersisted        State = "persisted"
	StateFailed           State = "failed"
)

// FailurePolicy decides what a soft extraction failure does to the run.
// Hard failures (unusable reference, cancellation) always abort.
type FailurePolicy string

const (
	// PolicyDegrade substitutes an empty label set and keeps going.
	PolicyDegrade FailurePolicy = "degrade"
	// PolicyAbort fails the whole run with the extraction error.
	PolicyAbort FailurePolicy = "abort"
)

func ParseFailurePolicy(raw string) (FailurePolicy, error) {
	switch FailurePolicy(strings.ToLower(strings.TrimSpace(raw))) {
	case "", PolicyDegrade:
		return PolicyDegrade, nil
	case PolicyAbort:
		return PolicyAbort, nil
	default:
		return "", fmt.Errorf("unknown extraction failure policy %q (want degrade or abort)", raw)
	}
}

type LabelSource interface {
	Extract(ctx context.Context, imageRef string) LabelResult
}

type NarrativeSource interface {
	Generate(ctx context.Context, labels [3][]string, theme string, kind types.ContentKind) (Narrative, error)
}

type RecordSink interface {
	AssembleAndPersist(ctx context.Context, in AssembleInput) (*types.GeneratedContent, error)
}

type Request struct {
	ImageRefs [3]string
	Theme     string
	Kind      types.ContentKind
	OwnerID   uint
	IsPublic  bool
}

// TransitionFunc observes every state the run enters, Failed included.
// It must not block.
type TransitionFunc func(ctx context.Context, req Request, to State, err error)

type Option func(*Pipeline)

func WithTransitionHook(fn TransitionFunc) Option {
	return func(p *Pipeline) {
		if fn != nil {
			p.hooks = append(p.hooks, fn)
		}
	}
}

type Pipeline struct {
	log        *logger.Logger
	labels     LabelSource
	narratives NarrativeSource
	sink       RecordSink
	policy     FailurePolicy
	metrics    *Metrics
	hooks      []TransitionFunc
}

func NewPipeline(log *logger.Logger, labels LabelSource, narratives NarrativeSource, sink RecordSink, policy FailurePolicy, metrics *Metrics, opts ...Option) *Pipeline {
	if policy == "" {
		policy = PolicyDegrade
	}
	p := &Pipeline{
		log:        log.With("service", "GenerationPipeline"),
		labels:     labels,
		narratives: narratives,
		sink:       sink,
		policy:     policy,
		metrics:    metrics,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *Pipeline) Policy() FailurePolicy { return p.policy }

func validate(req Request) error {
	if !req.Kind.Valid() {
		return &ValidationError{Field: "kind", Reason: "must be story or poem"}
	}
	if req.OwnerID == 0 {
		return &ValidationError{Field: "owner", Reason: "an authenticated owner is required"}
	}
	for i, ref := range req.ImageRefs {
		if strings.TrimSpace(ref) == "" {
			return &ValidationError{Field: fmt.Sprintf("image_urls[%d]", i), Reason: "must not be empty"}
		}
	}
	return nil
}

// Run drives one request through extraction, generation and persistence.
// Returned errors keep their concrete type so callers can tell which step failed.
func (p *Pipeline) Run(ctx context.Context, req Request) (*types.GeneratedContent, error) {
	if err := validate(req); err != nil {
		return nil, err
	}
	req.Theme = strings.TrimSpace(req.Theme)

	ctx, span := tracer.Start(ctx, "pipeline.run")
	defer span.End()
	span.SetAttributes(
		attribute.String("content.kind", string(req.Kind)),
		attribute.Bool("content.public", req.IsPublic),
		attribute.String("pipeline.policy", string(p.policy)),
	)

	start := time.Now()
	fail := func(err error) (*types.GeneratedContent, error) {
		span.RecordError(err)
		p.transition(ctx, req, StateFailed, err)
		p.metrics.observeRun(string(req.Kind), StateFailed, time.Since(start))
		p.log.Warn("Generation pipeline failed", "owner_id", req.OwnerID, "kind", req.Kind, "error", err)
		return nil, err
	}

	p.transition(ctx, req, StateRequested, nil)

	labelSets, err := p.extractAll(ctx, req.ImageRefs)
	if err != nil {
		return fail(err)
	}
	p.transition(ctx, req, StateLabelsExtracted, nil)

	narrative, err := p.narratives.Generate(ctx, labelSets, req.Theme, req.Kind)
	if err != nil {
		return fail(err)
	}
	p.transition(ctx, req, StateContentGenerated, nil)

	// The text was already paid for; a caller that went away does not void the write.
	rec, err := p.sink.AssembleAndPersist(context.WithoutCancel(ctx), AssembleInput{
		ImageRefs: req.ImageRefs,
		LabelSets: labelSets,
		Narrative: narrative,
		Theme:     req.Theme,
		Kind:      req.Kind,
		OwnerID:   req.OwnerID,
		IsPublic:  req.IsPublic,
	})
	if err != nil {
		return fail(err)
	}
	p.transition(ctx, req, StatePersisted, nil)
	p.metrics.observeRun(string(req.Kind), StatePersisted, time.Since(start))
	return rec, nil
}

// extractAll fans out one extraction per image and joins before returning.
// Slot i of the result always belongs to image i.
func (p *Pipeline) extractAll(ctx context.Context, refs [3]string) ([3][]string, error) {
	var results [3]LabelResult
	g, gctx := errgroup.WithContext(ctx)
	for i, ref := range refs {
		g.Go(func() error {
			r := p.labels.Extract(gctx, ref)
			if r.Err != nil {
				r.Err.Index = i
				r.Err.ImageRef = ref
			}
			results[i] = r
			if r.Err != nil && (r.Err.Hard || p.policy == PolicyAbort) {
				return r.Err
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return [3][]string{}, err
	}

	var sets [3][]string
	for i, r := range results {
		if r.Err != nil {
			p.metrics.observeDegraded()
			p.log.Warn("Continuing with empty label set", "image_index", i, "error", r.Err)
			sets[i] = []string{}
			continue
		}
		sets[i] = r.Labels
		if sets[i] == nil {
			sets[i] = []string{}
		}
	}
	return sets, nil
}

func (p *Pipeline) transition(ctx context.Context, req Request, to State, err error) {
	p.metrics.observeTransition(to)
	p.log.Debug("Pipeline transition", "owner_id", req.OwnerID, "kind", req.Kind, "state", to)
	for _, h := range p.hooks {
		h(ctx, req, to, err)
	}
}
