// Package app wires the codec core to transports: it turns verified
// plaintext callback bodies into typed messages, runs the user handler,
// and renders whatever it returned into a response body.
package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/artpar/wxgate/adapters/metrics"
	"github.com/artpar/wxgate/core/field"
	"github.com/artpar/wxgate/core/wire"
	"github.com/artpar/wxgate/domain/component"
	"github.com/artpar/wxgate/domain/message"
	"github.com/artpar/wxgate/domain/reply"
	"github.com/artpar/wxgate/ports"
	"github.com/rs/zerolog"
)

// Handler reacts to one inbound message. It may return nil (acknowledge
// without replying), a string, a reply.Reply, or a []field.Article; the
// shapes reply.Create accepts.
type Handler func(ctx context.Context, msg message.Message) (any, error)

// EventHandler reacts to one component event.
type EventHandler func(ctx context.Context, ev component.Event) error

// WebhookService orchestrates parse, handle, and render for one webhook
// endpoint. The transport hands it decrypted, signature-validated
// plaintext and returns whatever body it produces.
type WebhookService struct {
	handler      Handler
	eventHandler EventHandler
	logger       zerolog.Logger
	metrics      *metrics.Collector
	clock        ports.Clock
	ids          ports.IDGenerator
}

// NewWebhookService creates a webhook service. A nil collector gets a
// private, unexported registry so callers never have to check.
func NewWebhookService(handler Handler, logger zerolog.Logger, m *metrics.Collector, clock ports.Clock, ids ports.IDGenerator) *WebhookService {
	if m == nil {
		m, _ = metrics.New()
	}
	return &WebhookService{
		handler: handler,
		logger:  logger,
		metrics: m,
		clock:   clock,
		ids:     ids,
	}
}

// SetEventHandler installs the component event handler.
func (s *WebhookService) SetEventHandler(h EventHandler) {
	s.eventHandler = h
}

// Handle processes one inbound message body and returns the response body
// to hand back to the platform. An empty response is a valid
// acknowledgement; the platform will not retry.
func (s *WebhookService) Handle(ctx context.Context, body string) (string, error) {
	start := s.clock.Now()
	traceID := s.ids.New()

	msg, err := message.Parse(body)
	if err != nil {
		s.metrics.ParseErrors.Inc()
		s.logger.Error().Err(err).Str("trace_id", traceID).Msg("inbound message parse failed")
		return "", fmt.Errorf("parse message: %w", err)
	}
	s.metrics.MessagesTotal.WithLabelValues(msg.Type()).Inc()

	log := s.logger.With().
		Str("trace_id", traceID).
		Str("msg_type", msg.Type()).
		Str("source", msg.Source()).
		Logger()

	result, err := s.handler(ctx, msg)
	if err != nil {
		s.metrics.HandlerErrors.Inc()
		log.Error().Err(err).Msg("handler failed")
		return "", fmt.Errorf("handle %s message: %w", msg.Type(), err)
	}

	r, err := reply.Create(result, msg)
	if err != nil {
		s.metrics.RenderErrors.Inc()
		log.Error().Err(err).Msg("reply construction failed")
		return "", fmt.Errorf("create reply: %w", err)
	}
	out, err := r.Render()
	if err != nil {
		s.metrics.RenderErrors.Inc()
		log.Error().Err(err).Str("reply_type", r.Type()).Msg("reply render failed")
		return "", fmt.Errorf("render %s reply: %w", r.Type(), err)
	}
	s.metrics.RepliesTotal.WithLabelValues(r.Type()).Inc()
	s.metrics.HandleDuration.WithLabelValues(msg.Type()).Observe(s.clock.Now().Sub(start).Seconds())

	log.Debug().Str("reply_type", r.Type()).Msg("handled message")
	return out, nil
}

// HandleComponent processes one component event body. The platform
// expects the literal string "success" as acknowledgement.
func (s *WebhookService) HandleComponent(ctx context.Context, body string) (string, error) {
	ev, err := component.Parse(body)
	if err != nil {
		s.metrics.ParseErrors.Inc()
		s.logger.Error().Err(err).Msg("component event parse failed")
		return "", fmt.Errorf("parse component event: %w", err)
	}
	s.metrics.MessagesTotal.WithLabelValues("component_" + ev.Type()).Inc()

	if s.eventHandler != nil {
		if err := s.eventHandler(ctx, ev); err != nil {
			s.metrics.HandlerErrors.Inc()
			s.logger.Error().Err(err).Str("info_type", ev.Type()).Msg("event handler failed")
			return "", fmt.Errorf("handle %s event: %w", ev.Type(), err)
		}
	}
	return "success", nil
}

// IsDecodeError reports whether err came from envelope or field decoding,
// as opposed to a handler failure. Transports use it to pick a status.
func IsDecodeError(err error) bool {
	var convErr *field.ConvertError
	var wireErr *wire.DecodeError
	return errors.As(err, &convErr) || errors.As(err, &wireErr)
}
