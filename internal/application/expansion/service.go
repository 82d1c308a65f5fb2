// Package expansion is the application service behind every entry point:
// CLI runs, the streaming worker, and the HTTP apiserver all funnel corpus
// work through here.  The service owns run orchestration and the optional
// side effects (postgres archive, kafka audit publish); the engine itself
// stays free of infrastructure.
package expansion

import (
	"context"
	"time"

	"github.com/turtacn/AcroLex/internal/engine/pipeline"
	"github.com/turtacn/AcroLex/internal/infrastructure/database/postgres/repositories"
	"github.com/turtacn/AcroLex/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/AcroLex/pkg/types/acronym"
	"github.com/turtacn/AcroLex/pkg/types/document"
)

// RunStore archives finalized runs.  *repositories.RunRepository satisfies
// it; tests substitute mocks.
type RunStore interface {
	SaveRun(ctx context.Context, rec repositories.RunRecord) error
	SavePrototypes(ctx context.Context, runID string, protos []acronym.Prototype) error
	SaveAudit(ctx context.Context, entries []acronym.AuditEntry) error
}

// AuditPublisher streams a run's audit entries; *kafka.AuditProducer
// satisfies it.
type AuditPublisher interface {
	Publish(ctx context.Context, entries []acronym.AuditEntry) error
}

// Service orchestrates corpus runs.  store and publisher are optional; nil
// disables the corresponding side effect.
type Service struct {
	pipeline  *pipeline.Pipeline
	store     RunStore
	publisher AuditPublisher
	logger    logging.Logger
}

// NewService wires a Service.
func NewService(p *pipeline.Pipeline, store RunStore, publisher AuditPublisher, logger logging.Logger) *Service {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &Service{pipeline: p, store: store, publisher: publisher, logger: logger}
}

// Run processes a corpus and applies the configured side effects.  The run
// result is returned even when archiving or publishing fails, so callers
// can still write their output files; the first side-effect error is
// returned alongside it.
func (s *Service) Run(ctx context.Context, docs []document.Document) (*pipeline.Result, error) {
	startedAt := time.Now().UTC()
	result, err := s.pipeline.Run(ctx, docs)
	if err != nil {
		return nil, err
	}

	if s.store != nil {
		if err := s.archive(ctx, result, startedAt); err != nil {
			s.logger.Error("archiving run failed",
				logging.String("run_id", result.RunID),
				logging.Err(err))
			return result, err
		}
	}
	if s.publisher != nil {
		if err := s.publisher.Publish(ctx, result.Audit); err != nil {
			s.logger.Error("publishing audit entries failed",
				logging.String("run_id", result.RunID),
				logging.Err(err))
			return result, err
		}
	}
	return result, nil
}

// archive persists the run summary, the prototype snapshot, and the audit
// log.
func (s *Service) archive(ctx context.Context, result *pipeline.Result, startedAt time.Time) error {
	rec := repositories.RunRecord{
		ID:          result.RunID,
		StartedAt:   startedAt,
		Documents:   result.Stats.Documents,
		Occurrences: result.Stats.Occurrences,
		Unresolved:  result.Stats.Unresolved,
	}
	if err := s.store.SaveRun(ctx, rec); err != nil {
		return err
	}
	if err := s.store.SavePrototypes(ctx, result.RunID, Snapshot(result.Registry)); err != nil {
		return err
	}
	return s.store.SaveAudit(ctx, result.Audit)
}

// registrySnapshot is the read surface Snapshot needs.
type registrySnapshot interface {
	Acronyms() []string
	Lookup(surface string) []acronym.Prototype
}

// Snapshot flattens a registry into its full prototype list, acronyms in
// sorted order and prototypes in lookup rank order.
func Snapshot(reg registrySnapshot) []acronym.Prototype {
	var out []acronym.Prototype
	for _, surface := range reg.Acronyms() {
		out = append(out, reg.Lookup(surface)...)
	}
	return out
}
