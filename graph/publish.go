// Package graph publishes metadata records and projection failures to the
// knowledge graph over NATS.
package graph

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/c360studio/semconv/convert"
	"github.com/c360studio/semconv/instance"
)

// Subjects for graph ingestion and failure reports.
const (
	GraphIngestSubject    = "graph.ingest.entity"
	DefaultFailureSubject = "semconv.projection.failure"
)

// StreamPublisher publishes to a JetStream subject. *natsclient.Client
// satisfies it.
type StreamPublisher interface {
	PublishToStream(ctx context.Context, subject string, data []byte) error
}

// PublishRecord publishes a record to the knowledge graph as triples.
func PublishRecord(ctx context.Context, pub StreamPublisher, r *instance.Record, source string) error {
	if pub == nil {
		return nil // Skip publishing if no NATS client (graceful degradation)
	}

	now := time.Now()
	payload := &RecordPayload{
		ID:         r.GUID,
		Type:       r.Type,
		End1:       r.End1,
		End2:       r.End2,
		TripleData: instance.ToTriples(r, source, now),
		UpdatedAt:  now,
	}
	if err := payload.Validate(); err != nil {
		return fmt.Errorf("invalid record payload: %w", err)
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal record payload: %w", err)
	}

	if err := pub.PublishToStream(ctx, GraphIngestSubject, data); err != nil {
		return fmt.Errorf("publish record %s: %w", r.GUID, err)
	}
	return nil
}

// FailurePublisher is a convert.Reporter that publishes every report to a
// NATS subject. Delivery errors are logged and otherwise dropped.
type FailurePublisher struct {
	pub     StreamPublisher
	subject string
	timeout time.Duration
	logger  *slog.Logger
}

// PublisherOption configures a FailurePublisher.
type PublisherOption func(*FailurePublisher)

// WithSubject sets the subject reports are published to.
func WithSubject(subject string) PublisherOption {
	return func(p *FailurePublisher) {
		if subject != "" {
			p.subject = subject
		}
	}
}

// WithTimeout bounds each publish call.
func WithTimeout(d time.Duration) PublisherOption {
	return func(p *FailurePublisher) {
		p.timeout = d
	}
}

// WithLogger sets the logger for delivery errors.
func WithLogger(logger *slog.Logger) PublisherOption {
	return func(p *FailurePublisher) {
		p.logger = logger
	}
}

// NewFailurePublisher creates a FailurePublisher.
func NewFailurePublisher(pub StreamPublisher, opts ...PublisherOption) *FailurePublisher {
	p := &FailurePublisher{
		pub:     pub,
		subject: DefaultFailureSubject,
		timeout: 5 * time.Second,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.logger == nil {
		p.logger = slog.Default()
	}
	return p
}

var _ convert.Reporter = (*FailurePublisher)(nil)

// Report publishes r.
func (p *FailurePublisher) Report(r convert.Report) {
	if p.pub == nil {
		return
	}

	data, err := json.Marshal(&FailurePayload{Report: r})
	if err != nil {
		p.logger.Warn("Failed to marshal failure report", "id", r.ID, "error", err)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), p.timeout)
	defer cancel()

	if err := p.pub.PublishToStream(ctx, p.subject, data); err != nil {
		p.logger.Warn("Failed to publish failure report",
			"id", r.ID,
			"subject", p.subject,
			"error", err)
	}
}
