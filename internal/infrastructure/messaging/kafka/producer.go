package kafka

import (
	"context"
	"encoding/json"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/turtacn/AcroLex/internal/config"
	"github.com/turtacn/AcroLex/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/AcroLex/pkg/errors"
	"github.com/turtacn/AcroLex/pkg/types/acronym"
)

// writer abstracts kafka.Writer for testing.
type writer interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// AuditProducer publishes audit entries to the audit topic, keyed by
// document id so one document's entries stay in partition order.
type AuditProducer struct {
	writer writer
	logger logging.Logger
}

// NewAuditProducer builds an AuditProducer for the configured audit topic.
func NewAuditProducer(cfg config.KafkaConfig, logger logging.Logger) (*AuditProducer, error) {
	if len(cfg.Brokers) == 0 {
		return nil, errors.New(errors.CodeMessagingError, "kafka brokers not configured")
	}
	if cfg.AuditTopic == "" {
		return nil, errors.New(errors.CodeMessagingError, "audit topic not configured")
	}

	timeout := cfg.WriteTimeout
	if timeout == 0 {
		timeout = 10 * time.Second
	}
	w := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Topic:        cfg.AuditTopic,
		Balancer:     &kafka.Hash{},
		WriteTimeout: timeout,
		RequiredAcks: kafka.RequireAll,
		BatchTimeout: 100 * time.Millisecond,
	}
	return &AuditProducer{writer: w, logger: logger}, nil
}

// newAuditProducerWithWriter is the test seam.
func newAuditProducerWithWriter(w writer, logger logging.Logger) *AuditProducer {
	return &AuditProducer{writer: w, logger: logger}
}

// Publish sends a run's audit entries.  Entries are marshaled individually;
// the batch either fully succeeds or the caller retries it whole, which is
// safe because consumers key on (run_id, location).
func (p *AuditProducer) Publish(ctx context.Context, entries []acronym.AuditEntry) error {
	if len(entries) == 0 {
		return nil
	}

	msgs := make([]kafka.Message, len(entries))
	for i, e := range entries {
		value, err := json.Marshal(e)
		if err != nil {
			return errors.Wrap(err, errors.CodeMessagingError, "marshaling audit entry")
		}
		msgs[i] = kafka.Message{
			Key:   []byte(e.DocumentID),
			Value: value,
		}
	}

	if err := p.writer.WriteMessages(ctx, msgs...); err != nil {
		return errors.Wrap(err, errors.CodeMessagingError, "publishing audit entries")
	}
	p.logger.Info("audit entries published",
		logging.String("run_id", entries[0].RunID),
		logging.Int("entries", len(entries)))
	return nil
}

// Close flushes and releases the underlying writer.
func (p *AuditProducer) Close() error {
	return p.writer.Close()
}
