//go:build integration

// Package repositories_test provides integration tests for the run
// persistence layer.  Tests require Docker and are gated behind the
// "integration" build tag.
package repositories_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/turtacn/AcroLex/internal/infrastructure/database/postgres"
	"github.com/turtacn/AcroLex/internal/infrastructure/database/postgres/repositories"
	"github.com/turtacn/AcroLex/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/AcroLex/pkg/types/acronym"
)

// startPostgres launches a PostgreSQL 16 container, applies the embedded
// migrations, and returns a connected pool.
func startPostgres(t *testing.T) *pgxpool.Pool {
	t.Helper()
	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        "postgres:16-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_USER":     "test",
			"POSTGRES_PASSWORD": "test",
			"POSTGRES_DB":       "acrolex_test",
		},
		WaitingFor: wait.ForListeningPort("5432/tcp").WithStartupTimeout(60 * time.Second),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Terminate(ctx) })

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "5432")
	require.NoError(t, err)

	dsn := fmt.Sprintf("postgres://test:test@%s:%s/acrolex_test?sslmode=disable", host, port.Port())
	require.NoError(t, postgres.Migrate(dsn))

	pool, err := pgxpool.New(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(pool.Close)
	return pool
}

func saveRun(t *testing.T, repo *repositories.RunRepository) string {
	t.Helper()
	runID := uuid.NewString()
	require.NoError(t, repo.SaveRun(context.Background(), repositories.RunRecord{
		ID:          runID,
		StartedAt:   time.Now().UTC(),
		Documents:   2,
		Occurrences: 3,
		Unresolved:  1,
	}))
	return runID
}

func TestRunRepositoryPrototypes(t *testing.T) {
	pool := startPostgres(t)
	repo := repositories.NewRunRepository(pool, logging.NewNopLogger())
	ctx := context.Background()
	runID := saveRun(t, repo)

	protos := []acronym.Prototype{
		{
			ID: "PPP#1", Acronym: "PPP", Expansion: "purchasing power parity",
			Occurrences: make([]acronym.Occurrence, 2), Aggregate: 1.0,
		},
		{
			ID: "PPP#2", Acronym: "PPP", Expansion: "public-private partnership",
			Occurrences: make([]acronym.Occurrence, 1), Aggregate: 1.0,
		},
		{
			ID: "WHO#1", Acronym: "WHO", Expansion: "world health organization",
			Occurrences: make([]acronym.Occurrence, 1), Aggregate: 0.9,
		},
	}
	require.NoError(t, repo.SavePrototypes(ctx, runID, protos))

	got, err := repo.ListPrototypes(ctx, runID, "PPP")
	require.NoError(t, err)
	require.Len(t, got, 2)
	// Aggregates tie; higher support ranks first.
	assert.Equal(t, "PPP#1", got[0].ID)
	assert.Equal(t, 2, got[0].Support())
	assert.Equal(t, "PPP#2", got[1].ID)

	missing, err := repo.ListPrototypes(ctx, runID, "NASA")
	require.NoError(t, err)
	assert.Empty(t, missing)
}

func TestRunRepositoryPrototypes_TieBreakByPosition(t *testing.T) {
	pool := startPostgres(t)
	repo := repositories.NewRunRepository(pool, logging.NewNopLogger())
	ctx := context.Background()
	runID := saveRun(t, repo)

	// Eleven fully tied prototypes: lexicographic id ordering would put
	// PPP#10 and PPP#11 between PPP#1 and PPP#2.
	protos := make([]acronym.Prototype, 11)
	for i := range protos {
		protos[i] = acronym.Prototype{
			ID:          fmt.Sprintf("PPP#%d", i+1),
			Acronym:     "PPP",
			Expansion:   fmt.Sprintf("expansion %d", i+1),
			Occurrences: make([]acronym.Occurrence, 1),
			Aggregate:   1.0,
		}
	}
	require.NoError(t, repo.SavePrototypes(ctx, runID, protos))

	got, err := repo.ListPrototypes(ctx, runID, "PPP")
	require.NoError(t, err)
	require.Len(t, got, 11)
	for i, p := range got {
		assert.Equal(t, fmt.Sprintf("PPP#%d", i+1), p.ID)
	}
}

func TestRunRepositoryAudit(t *testing.T) {
	pool := startPostgres(t)
	repo := repositories.NewRunRepository(pool, logging.NewNopLogger())
	ctx := context.Background()
	runID := saveRun(t, repo)

	entries := []acronym.AuditEntry{
		{RunID: runID, Acronym: "WHO", DocumentID: "doc-1", SentenceID: 2, Offset: 4,
			Outcome: "resolved", PrototypeID: "WHO#1", Expansion: "world health organization", Confidence: 0.9},
		{RunID: runID, Acronym: "NASA", DocumentID: "doc-1", SentenceID: 1, Offset: 0,
			Outcome: "unresolved"},
	}
	require.NoError(t, repo.SaveAudit(ctx, entries))

	got, err := repo.ListAuditByDocument(ctx, runID, "doc-1")
	require.NoError(t, err)
	require.Len(t, got, 2)
	// Returned in sentence then offset order, not insertion order.
	assert.Equal(t, "NASA", got[0].Acronym)
	assert.Equal(t, "unresolved", got[0].Outcome)
	assert.Empty(t, got[0].PrototypeID)
	assert.Equal(t, "WHO", got[1].Acronym)
	assert.Equal(t, "WHO#1", got[1].PrototypeID)
}

func TestMigrateIdempotent(t *testing.T) {
	pool := startPostgres(t)
	defer pool.Close()

	cfg := pool.Config().ConnConfig
	dsn := fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=disable",
		cfg.User, cfg.Password, cfg.Host, cfg.Port, cfg.Database)
	require.NoError(t, postgres.Migrate(dsn))

	version, dirty, err := postgres.MigrationVersion(dsn)
	require.NoError(t, err)
	assert.False(t, dirty)
	assert.Equal(t, uint(2), version)
}
