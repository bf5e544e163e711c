package natsadapter

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/fairwage/fairwage/internal/core/domain"
	"github.com/nats-io/nats.go"
)

// Subjects for wage report lifecycle events. Consumers subscribe with
// wage.report.> to see everything.
const (
	SubjectReportSubmitted = "wage.report.submitted"
	SubjectReportApproved  = "wage.report.approved"
)

// Publisher implements ports.EventPublisher using NATS JetStream.
type Publisher struct {
	conn *nats.Conn
	js   nats.JetStreamContext
}

// NewPublisher connects to NATS and ensures the wage report stream exists.
func NewPublisher(url string) (*Publisher, error) {
	conn, err := nats.Connect(url,
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("nats connect: %w", err)
	}

	js, err := conn.JetStream()
	if err != nil {
		return nil, fmt.Errorf("jetstream: %w", err)
	}

	cfg := nats.StreamConfig{
		Name:      "WAGE_REPORTS",
		Subjects:  []string{"wage.report.>"},
		Retention: nats.InterestPolicy,
		MaxAge:    24 * time.Hour,
		Storage:   nats.FileStorage,
	}
	if _, err := js.AddStream(&cfg); err != nil {
		// Stream may already exist, try update
		if _, err := js.UpdateStream(&cfg); err != nil {
			return nil, fmt.Errorf("ensure stream %s: %w", cfg.Name, err)
		}
	}

	return &Publisher{conn: conn, js: js}, nil
}

// PublishReportSubmitted announces a new pending submission.
func (p *Publisher) PublishReportSubmitted(ctx context.Context, r *domain.WageReport) error {
	return p.publish(SubjectReportSubmitted, r)
}

// PublishReportApproved announces a report passing moderation. Live consumers
// (the WebSocket relay) fan this out to connected clients.
func (p *Publisher) PublishReportApproved(ctx context.Context, r *domain.WageReport) error {
	return p.publish(SubjectReportApproved, r)
}

func (p *Publisher) publish(subject string, r *domain.WageReport) error {
	data, err := json.Marshal(r)
	if err != nil {
		return err
	}
	_, err = p.js.Publish(subject, data)
	return err
}

// Close drains and closes the connection.
func (p *Publisher) Close() {
	_ = p.conn.Drain()
}

// RawConn creates a plain NATS connection for subscribing (e.g. WebSocket relay).
func RawConn(url string) (*nats.Conn, error) {
	return nats.Connect(url,
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
	)
}
