// Package repositories implements postgres persistence for finalized corpus
// runs.  A run is written once, after the resolution barrier; nothing here
// sits on the engine's hot path.
package repositories

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/turtacn/AcroLex/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/AcroLex/pkg/errors"
	"github.com/turtacn/AcroLex/pkg/types/acronym"
)

// RunRecord is the persisted summary of one corpus run.
type RunRecord struct {
	ID          string
	StartedAt   time.Time
	Documents   int
	Occurrences int
	Unresolved  int
}

// RunRepository persists run summaries, prototype snapshots, and audit logs.
type RunRepository struct {
	pool   *pgxpool.Pool
	logger logging.Logger
}

// NewRunRepository constructs a ready-to-use RunRepository.
func NewRunRepository(pool *pgxpool.Pool, logger logging.Logger) *RunRepository {
	return &RunRepository{pool: pool, logger: logger}
}

// SaveRun persists the run summary row.  It must be called before the
// prototype and audit writes that reference it.
func (r *RunRepository) SaveRun(ctx context.Context, rec RunRecord) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO runs (id, started_at, documents, occurrences, unresolved)
		VALUES ($1, $2, $3, $4, $5)`,
		rec.ID, rec.StartedAt, rec.Documents, rec.Occurrences, rec.Unresolved,
	)
	if err != nil {
		return errors.Wrap(err, errors.CodeDatabaseError, "inserting run")
	}
	return nil
}

// SavePrototypes persists the finalized registry snapshot for a run using
// the COPY protocol; registries from large corpora carry thousands of
// prototypes.  The slice index is stored as the row's position so listings
// reproduce the snapshot order exactly; ids like "PPP#10" sort after
// "PPP#2" only with an integer tie-break.
func (r *RunRepository) SavePrototypes(ctx context.Context, runID string, protos []acronym.Prototype) error {
	if len(protos) == 0 {
		return nil
	}
	rows := make([][]any, len(protos))
	for i, p := range protos {
		rows[i] = []any{runID, p.ID, p.Acronym, p.Expansion, p.Support(), p.Aggregate, i}
	}

	n, err := r.pool.CopyFrom(ctx,
		pgx.Identifier{"prototypes"},
		[]string{"run_id", "prototype_id", "acronym", "expansion", "support", "aggregate", "position"},
		pgx.CopyFromRows(rows),
	)
	if err != nil {
		return errors.Wrap(err, errors.CodeDatabaseError, "copying prototypes")
	}
	r.logger.Debug("persisted prototype snapshot",
		logging.String("run_id", runID),
		logging.Int64("rows", n))
	return nil
}

// SaveAudit persists the run's audit log via COPY.
func (r *RunRepository) SaveAudit(ctx context.Context, entries []acronym.AuditEntry) error {
	if len(entries) == 0 {
		return nil
	}
	rows := make([][]any, len(entries))
	for i, e := range entries {
		rows[i] = []any{e.RunID, e.DocumentID, e.SentenceID, e.Offset,
			e.Acronym, e.Outcome, nullable(e.PrototypeID), nullable(e.Expansion), e.Confidence}
	}

	n, err := r.pool.CopyFrom(ctx,
		pgx.Identifier{"audit_entries"},
		[]string{"run_id", "document_id", "sentence_id", "token_offset",
			"acronym", "outcome", "prototype_id", "expansion", "confidence"},
		pgx.CopyFromRows(rows),
	)
	if err != nil {
		return errors.Wrap(err, errors.CodeDatabaseError, "copying audit entries")
	}
	r.logger.Debug("persisted audit log",
		logging.String("run_id", entries[0].RunID),
		logging.Int64("rows", n))
	return nil
}

// ListPrototypes returns a run's prototypes for one acronym surface,
// best-ranked first, matching the in-memory registry's lookup order.
func (r *RunRepository) ListPrototypes(ctx context.Context, runID, surface string) ([]acronym.Prototype, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT prototype_id, acronym, expansion, support, aggregate
		FROM prototypes
		WHERE run_id = $1 AND acronym = $2
		ORDER BY aggregate DESC, support DESC, position ASC`,
		runID, surface,
	)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeDatabaseError, "querying prototypes")
	}
	defer rows.Close()

	var out []acronym.Prototype
	for rows.Next() {
		var p acronym.Prototype
		var support int
		if err := rows.Scan(&p.ID, &p.Acronym, &p.Expansion, &support, &p.Aggregate); err != nil {
			return nil, errors.Wrap(err, errors.CodeDatabaseError, "scanning prototype")
		}
		p.Occurrences = make([]acronym.Occurrence, support)
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, errors.CodeDatabaseError, "iterating prototypes")
	}
	return out, nil
}

// ListAuditByDocument returns a document's audit entries in sentence and
// offset order.
func (r *RunRepository) ListAuditByDocument(ctx context.Context, runID, documentID string) ([]acronym.AuditEntry, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT run_id, document_id, sentence_id, token_offset,
		       acronym, outcome, COALESCE(prototype_id, ''), COALESCE(expansion, ''), confidence
		FROM audit_entries
		WHERE run_id = $1 AND document_id = $2
		ORDER BY sentence_id ASC, token_offset ASC`,
		runID, documentID,
	)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeDatabaseError, "querying audit entries")
	}
	defer rows.Close()

	var out []acronym.AuditEntry
	for rows.Next() {
		var e acronym.AuditEntry
		if err := rows.Scan(&e.RunID, &e.DocumentID, &e.SentenceID, &e.Offset,
			&e.Acronym, &e.Outcome, &e.PrototypeID, &e.Expansion, &e.Confidence); err != nil {
			return nil, errors.Wrap(err, errors.CodeDatabaseError, "scanning audit entry")
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, errors.CodeDatabaseError, "iterating audit entries")
	}
	return out, nil
}

// nullable maps empty strings to NULL so unresolved entries store NULL
// rather than empty prototype references.
func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}
