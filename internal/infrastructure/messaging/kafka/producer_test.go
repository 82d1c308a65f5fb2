package kafka

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/AcroLex/internal/config"
	"github.com/turtacn/AcroLex/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/AcroLex/pkg/types/acronym"
)

type fakeWriter struct {
	written []kafka.Message
	err     error
}

func (w *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if w.err != nil {
		return w.err
	}
	w.written = append(w.written, msgs...)
	return nil
}

func (w *fakeWriter) Close() error { return nil }

func TestAuditProducerPublish(t *testing.T) {
	w := &fakeWriter{}
	p := newAuditProducerWithWriter(w, logging.NewNopLogger())

	entries := []acronym.AuditEntry{
		{RunID: "run-1", Acronym: "WHO", DocumentID: "doc-1", SentenceID: 1, Offset: 5,
			Outcome: "defined", PrototypeID: "WHO#1", Expansion: "world health organization", Confidence: 1.0},
		{RunID: "run-1", Acronym: "NASA", DocumentID: "doc-2", SentenceID: 2, Offset: 0,
			Outcome: "unresolved"},
	}
	require.NoError(t, p.Publish(context.Background(), entries))

	require.Len(t, w.written, 2)
	assert.Equal(t, []byte("doc-1"), w.written[0].Key)
	assert.Equal(t, []byte("doc-2"), w.written[1].Key)

	var got acronym.AuditEntry
	require.NoError(t, json.Unmarshal(w.written[0].Value, &got))
	assert.Equal(t, entries[0], got)
}

func TestAuditProducerPublishEmpty(t *testing.T) {
	w := &fakeWriter{}
	p := newAuditProducerWithWriter(w, logging.NewNopLogger())

	require.NoError(t, p.Publish(context.Background(), nil))
	assert.Empty(t, w.written)
}

func TestAuditProducerPublishError(t *testing.T) {
	w := &fakeWriter{err: assert.AnError}
	p := newAuditProducerWithWriter(w, logging.NewNopLogger())

	err := p.Publish(context.Background(), []acronym.AuditEntry{{RunID: "run-1"}})
	assert.Error(t, err)
}

func TestNewAuditProducerValidation(t *testing.T) {
	_, err := NewAuditProducer(config.KafkaConfig{}, logging.NewNopLogger())
	assert.Error(t, err)

	_, err = NewAuditProducer(config.KafkaConfig{Brokers: []string{"localhost:9092"}}, logging.NewNopLogger())
	assert.Error(t, err)

	p, err := NewAuditProducer(config.KafkaConfig{
		Brokers:    []string{"localhost:9092"},
		AuditTopic: "acrolex.audit",
	}, logging.NewNopLogger())
	require.NoError(t, err)
	assert.NoError(t, p.Close())
}
