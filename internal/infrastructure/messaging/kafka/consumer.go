// Package kafka is the streaming front door: tokenized documents arrive on
// one topic, audit entries leave on another.  Document batches are the unit
// of work; a corpus run needs its whole corpus before the resolution phase,
// so the consumer assembles batches and hands them to the engine rather
// than processing messages one by one.
package kafka

import (
	"context"
	"encoding/json"
	"sync/atomic"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/turtacn/AcroLex/internal/config"
	"github.com/turtacn/AcroLex/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/AcroLex/pkg/errors"
	"github.com/turtacn/AcroLex/pkg/types/document"
)

// documentMessage is the wire shape of one document, matching the JSONL
// corpus format.
type documentMessage struct {
	ID        string     `json:"id"`
	Sentences [][]string `json:"sentences"`
}

// DocumentHandler processes one batch of documents.  Returning an error
// leaves the batch uncommitted so it is redelivered.
type DocumentHandler func(ctx context.Context, docs []document.Document) error

// reader abstracts kafka.Reader for testing.
type reader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// ConsumerMetrics counts consumption outcomes.
type ConsumerMetrics struct {
	MessagesConsumed atomic.Int64
	MessagesFailed   atomic.Int64
	BatchesHandled   atomic.Int64
}

// Consumer reads tokenized documents from the documents topic and delivers
// them to a handler in batches.
type Consumer struct {
	reader    reader
	batchSize int
	batchWait time.Duration
	logger    logging.Logger
	metrics   ConsumerMetrics
}

// ConsumerOption customizes a Consumer.
type ConsumerOption func(*Consumer)

// WithBatchSize caps how many documents one handler call receives.
func WithBatchSize(n int) ConsumerOption {
	return func(c *Consumer) {
		if n > 0 {
			c.batchSize = n
		}
	}
}

// WithBatchWait bounds how long a partial batch may wait before being
// flushed to the handler.
func WithBatchWait(d time.Duration) ConsumerOption {
	return func(c *Consumer) {
		if d > 0 {
			c.batchWait = d
		}
	}
}

// NewConsumer builds a Consumer for the configured documents topic.
func NewConsumer(cfg config.KafkaConfig, logger logging.Logger, opts ...ConsumerOption) (*Consumer, error) {
	if len(cfg.Brokers) == 0 {
		return nil, errors.New(errors.CodeMessagingError, "kafka brokers not configured")
	}
	if cfg.DocumentsTopic == "" {
		return nil, errors.New(errors.CodeMessagingError, "documents topic not configured")
	}

	rc := kafka.ReaderConfig{
		Brokers:  cfg.Brokers,
		GroupID:  cfg.GroupID,
		Topic:    cfg.DocumentsTopic,
		MinBytes: cfg.MinBytes,
		MaxBytes: cfg.MaxBytes,
		MaxWait:  cfg.MaxWait,
	}
	if rc.MaxBytes == 0 {
		rc.MaxBytes = 10 << 20
	}
	if rc.MaxWait == 0 {
		rc.MaxWait = time.Second
	}

	c := &Consumer{
		reader:    kafka.NewReader(rc),
		batchSize: 256,
		batchWait: 5 * time.Second,
		logger:    logger,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// newConsumerWithReader is the test seam.
func newConsumerWithReader(r reader, logger logging.Logger, opts ...ConsumerOption) *Consumer {
	c := &Consumer{reader: r, batchSize: 256, batchWait: 5 * time.Second, logger: logger}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Run consumes until ctx is cancelled.  Malformed messages are logged,
// counted, and committed so they are not redelivered forever; handler
// failures leave the batch uncommitted.
func (c *Consumer) Run(ctx context.Context, handle DocumentHandler) error {
	var (
		batch    []document.Document
		messages []kafka.Message
		deadline time.Time
	)

	flush := func() error {
		if len(batch) == 0 {
			if len(messages) > 0 {
				// Batch was all malformed; still advance past it.
				if err := c.reader.CommitMessages(ctx, messages...); err != nil {
					return errors.Wrap(err, errors.CodeMessagingError, "committing offsets")
				}
				messages = nil
			}
			return nil
		}
		if err := handle(ctx, batch); err != nil {
			return err
		}
		if err := c.reader.CommitMessages(ctx, messages...); err != nil {
			return errors.Wrap(err, errors.CodeMessagingError, "committing offsets")
		}
		c.metrics.BatchesHandled.Add(1)
		c.logger.Info("document batch handled", logging.Int("documents", len(batch)))
		batch, messages = nil, nil
		return nil
	}

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		fetchCtx := ctx
		var cancel context.CancelFunc
		if !deadline.IsZero() {
			fetchCtx, cancel = context.WithDeadline(ctx, deadline)
		}
		msg, err := c.reader.FetchMessage(fetchCtx)
		if cancel != nil {
			cancel()
		}
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			// Partial-batch deadline expired; flush what we have.
			if !deadline.IsZero() && time.Now().After(deadline) {
				deadline = time.Time{}
				if err := flush(); err != nil {
					return err
				}
				continue
			}
			return errors.Wrap(err, errors.CodeMessagingError, "fetching message")
		}

		c.metrics.MessagesConsumed.Add(1)
		messages = append(messages, msg)

		var dm documentMessage
		if err := json.Unmarshal(msg.Value, &dm); err != nil {
			c.metrics.MessagesFailed.Add(1)
			c.logger.Warn("dropping malformed document message",
				logging.String("topic", msg.Topic),
				logging.Int64("offset", msg.Offset),
				logging.Err(err))
		} else {
			batch = append(batch, toDocument(dm))
			if len(batch) == 1 {
				deadline = time.Now().Add(c.batchWait)
			}
		}

		if len(batch) >= c.batchSize {
			deadline = time.Time{}
			if err := flush(); err != nil {
				return err
			}
		}
	}
}

// Metrics exposes the consumption counters.
func (c *Consumer) Metrics() *ConsumerMetrics {
	return &c.metrics
}

// Close releases the underlying reader.
func (c *Consumer) Close() error {
	return c.reader.Close()
}

func toDocument(dm documentMessage) document.Document {
	doc := document.Document{ID: dm.ID}
	for si, words := range dm.Sentences {
		sent := document.Sentence{ID: si + 1}
		for i, w := range words {
			sent.Tokens = append(sent.Tokens, document.Token{Text: w, Offset: i})
		}
		doc.Sentences = append(doc.Sentences, sent)
	}
	return doc
}
