package pdf

import (
	"context"
	stderrors "errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/jwalitptl/pdf-api/internal/document"
	"github.com/jwalitptl/pdf-api/internal/model"
	"github.com/jwalitptl/pdf-api/internal/render"
	"github.com/jwalitptl/pdf-api/internal/service/audit"
	"github.com/jwalitptl/pdf-api/pkg/circuitbreaker"
	"github.com/jwalitptl/pdf-api/pkg/errors"
	"github.com/jwalitptl/pdf-api/pkg/metrics"
)

const tracerName = "github.com/jwalitptl/pdf-api/internal/service/pdf"

// Config bounds a single generation.
type Config struct {
	// Timeout caps the render call; zero disables it.
	Timeout time.Duration
	// MaxContentBytes rejects larger assembled documents; zero disables it.
	MaxContentBytes int
	// ProbeTimeout caps the health probe render.
	ProbeTimeout time.Duration
}

type Service struct {
	renderer render.Renderer
	breaker  *circuitbreaker.CircuitBreaker
	metrics  *metrics.Metrics
	auditor  *audit.Service
	tracer   trace.Tracer
	cfg      Config
	now      func() time.Time
}

func NewService(renderer render.Renderer, breaker *circuitbreaker.CircuitBreaker, m *metrics.Metrics,
	auditor *audit.Service, cfg Config) *Service {
	if breaker == nil {
		breaker = circuitbreaker.NewCircuitBreaker(circuitbreaker.DefaultSettings("renderer"))
	}
	if cfg.ProbeTimeout <= 0 {
		cfg.ProbeTimeout = 5 * time.Second
	}
	return &Service{
		renderer: renderer,
		breaker:  breaker,
		metrics:  m,
		auditor:  auditor,
		tracer:   otel.Tracer(tracerName),
		cfg:      cfg,
		now:      time.Now,
	}
}

// GeneratePrescription validates nothing: req must already satisfy its
// binding constraints.
func (s *Service) GeneratePrescription(ctx context.Context, req *model.PrescriptionRequest) Result {
	return s.generate(ctx, document.KindPrescription, func() (*document.Document, error) {
		if req == nil {
			return nil, fmt.Errorf("missing prescription request")
		}
		r := *req
		r.ApplyDefaults(s.now())
		return document.BuildPrescription(&r)
	})
}

// GenerateInvoice computes invoice totals, assembles and renders the invoice.
func (s *Service) GenerateInvoice(ctx context.Context, req *model.InvoiceRequest) Result {
	return s.generate(ctx, document.KindInvoice, func() (*document.Document, error) {
		if req == nil {
			return nil, fmt.Errorf("missing invoice request")
		}
		r := *req
		r.ApplyDefaults(s.now())
		inv, err := document.BuildInvoice(&r)
		if err != nil {
			return nil, err
		}
		return inv.Document, nil
	})
}

func (s *Service) generate(ctx context.Context, kind document.Kind, assemble func() (*document.Document, error)) (res Result) {
	ctx, span := s.tracer.Start(ctx, "pdf.generate", trace.WithAttributes(attribute.String("document.kind", string(kind))))
	defer span.End()

	logger := zerolog.Ctx(ctx).With().Str("component", "pdf").Str("kind", string(kind)).Logger()
	start := time.Now()
	var filename string

	defer func() {
		if p := recover(); p != nil {
			logger.Error().Interface("panic", p).Msg("document generation panicked")
			res = Failed(errors.KindRender, failureMessage(kind, fmt.Errorf("%v", p)))
		}
		s.observe(ctx, kind, filename, res, time.Since(start))
		if f := res.Failure(); f != nil {
			span.SetStatus(codes.Error, f.Message)
			logger.Warn().Str("failure", f.Kind.String()).Str("reason", f.Message).Msg("document generation failed")
		} else {
			span.SetAttributes(attribute.Int("document.size_bytes", len(res.output.Data)))
		}
	}()

	doc, err := assemble()
	if err != nil {
		return Failed(errors.KindRender, failureMessage(kind, err))
	}
	filename = doc.Filename

	if max := s.cfg.MaxContentBytes; max > 0 {
		if size := doc.Size(); size > max {
			return Failed(errors.KindTooLarge, fmt.Sprintf("%s content is %d bytes, limit is %d", kind, size, max))
		}
	}

	data, err := s.render(ctx, doc)
	if err != nil {
		switch {
		case stderrors.Is(err, context.DeadlineExceeded):
			return Failed(errors.KindTimeout, failureMessage(kind, fmt.Errorf("rendering timed out")))
		case stderrors.Is(err, context.Canceled):
			return Failed(errors.KindCanceled, failureMessage(kind, fmt.Errorf("request canceled")))
		case stderrors.Is(err, circuitbreaker.ErrOpen):
			return Failed(errors.KindUnavailable, failureMessage(kind, render.ErrEngineUnavailable))
		default:
			return Failed(errors.KindRender, failureMessage(kind, err))
		}
	}
	if len(data) == 0 {
		return Failed(errors.KindRender, failureMessage(kind, fmt.Errorf("renderer returned no data")))
	}

	return Succeeded(&Output{
		Kind:     kind,
		Filename: doc.Filename,
		Message:  fmt.Sprintf("%s PDF generated successfully", title(kind)),
		Data:     data,
	})
}

type renderResult struct {
	data []byte
	err  error
}

// render runs the renderer through the breaker. When the deadline passes
// first the late result is discarded.
func (s *Service) render(ctx context.Context, doc *document.Document) ([]byte, error) {
	if s.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.cfg.Timeout)
		defer cancel()
	}

	var out []byte
	err := s.breaker.Execute(func() error {
		done := make(chan renderResult, 1)
		go func() {
			defer func() {
				if p := recover(); p != nil {
					done <- renderResult{err: fmt.Errorf("renderer panic: %v", p)}
				}
			}()
			data, err := s.renderer.Render(ctx, doc)
			done <- renderResult{data: data, err: err}
		}()

		select {
		case r := <-done:
			out = r.data
			return r.err
		case <-ctx.Done():
			return ctx.Err()
		}
	})
	return out, err
}

func (s *Service) observe(ctx context.Context, kind document.Kind, filename string, res Result, elapsed time.Duration) {
	status := audit.OutcomeSuccess
	meta := map[string]interface{}{"duration_ms": elapsed.Milliseconds()}
	if f := res.Failure(); f != nil {
		status = audit.OutcomeFailure
		meta["failure"] = f.Kind.String()
	} else {
		meta["size_bytes"] = len(res.output.Data)
	}

	if s.metrics != nil {
		s.metrics.DocumentsGenerated.WithLabelValues(string(kind), status).Inc()
		s.metrics.RenderLatency.WithLabelValues(string(kind)).Observe(elapsed.Seconds())
		if res.OK() {
			s.metrics.DocumentSize.WithLabelValues(string(kind)).Observe(float64(len(res.output.Data)))
		}
	}

	s.auditor.Log(ctx, audit.Event{
		Action:     audit.ActionDocumentGenerate,
		Actor:      actorFrom(ctx),
		Resource:   string(kind),
		ResourceID: filename,
		Outcome:    status,
		Metadata:   meta,
	})
}

func failureMessage(kind document.Kind, err error) string {
	return fmt.Sprintf("Failed to generate %s PDF: %v", kind, err)
}

func title(kind document.Kind) string {
	s := string(kind)
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

type actorKey struct{}

// WithActor records who requested a document, for audit records.
func WithActor(ctx context.Context, actor string) context.Context {
	return context.WithValue(ctx, actorKey{}, actor)
}

func actorFrom(ctx context.Context) string {
	actor, _ := ctx.Value(actorKey{}).(string)
	return actor
}
