package audit

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/jwalitptl/pdf-api/internal/model"
	"github.com/jwalitptl/pdf-api/pkg/messaging"
)

// Actions recorded by the service.
const (
	ActionRegister         = "user.register"
	ActionLogin            = "auth.login"
	ActionLoginFailed      = "auth.login_failed"
	ActionUserUpdate       = "user.update"
	ActionUserDelete       = "user.delete"
	ActionDocumentGenerate = "document.generate"
)

const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
)

const (
	messageType    = "audit"
	publishTimeout = 2 * time.Second
)

// Event is one audit record
type Event struct {
	Action     string
	Actor      string
	Resource   string
	ResourceID string
	Outcome    string
	Metadata   model.JSONMap
}

// Record is the published form of an Event.
type Record struct {
	At         time.Time     `json:"at"`
	RequestID  string        `json:"request_id,omitempty"`
	Action     string        `json:"action"`
	Actor      string        `json:"actor,omitempty"`
	Resource   string        `json:"resource"`
	ResourceID string        `json:"resource_id,omitempty"`
	Outcome    string        `json:"outcome"`
	Metadata   model.JSONMap `json:"metadata,omitempty"`
}

// Service writes audit events to a dedicated structured log stream and,
// when configured, publishes them to a message channel.
type Service struct {
	logger    zerolog.Logger
	publisher messaging.Publisher
	channel   string
	now       func() time.Time
}

type Option func(*Service)

// WithPublisher also publishes every event on channel. Publish failures are
// logged and never reach the caller.
func WithPublisher(p messaging.Publisher, channel string) Option {
	return func(s *Service) {
		s.publisher = p
		s.channel = channel
	}
}

func NewService(logger zerolog.Logger, opts ...Option) *Service {
	s := &Service{
		logger: logger.With().Str("component", "audit").Logger(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Log records e. Request scoped fields such as request_id come from the
// logger carried by ctx.
func (s *Service) Log(ctx context.Context, e Event) {
	if s == nil {
		return
	}
	if e.Outcome == "" {
		e.Outcome = OutcomeSuccess
	}

	rec := Record{
		At:         s.now().UTC(),
		RequestID:  requestID(ctx),
		Action:     e.Action,
		Actor:      e.Actor,
		Resource:   e.Resource,
		ResourceID: e.ResourceID,
		Outcome:    e.Outcome,
		Metadata:   e.Metadata,
	}

	evt := s.logger.Info()
	if e.Outcome != OutcomeSuccess {
		evt = s.logger.Warn()
	}
	if rec.RequestID != "" {
		evt = evt.Str("request_id", rec.RequestID)
	}
	evt.Time("at", rec.At).
		Str("action", rec.Action).
		Str("actor", rec.Actor).
		Str("resource", rec.Resource).
		Str("resource_id", rec.ResourceID).
		Str("outcome", rec.Outcome).
		Fields(map[string]interface{}(rec.Metadata)).
		Msg("audit")

	s.publish(ctx, rec)
}

func (s *Service) publish(ctx context.Context, rec Record) {
	if s.publisher == nil {
		return
	}
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()

	msg := messaging.Message{Type: messageType, Payload: rec}
	if err := s.publisher.Publish(ctx, s.channel, msg); err != nil {
		s.logger.Warn().Err(err).Str("channel", s.channel).Str("action", rec.Action).Msg("failed to publish audit event")
	}
}

type requestIDKey struct{}

// WithRequestID stores the request id for audit records.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

func requestID(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}
