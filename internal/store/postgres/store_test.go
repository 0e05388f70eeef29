package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	pgcontainer "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/samit-dev/wisuda/internal/models"
)

// setupTestDB spins up a disposable Postgres and applies the real migrations
func setupTestDB(t *testing.T) (*PostgresStore, func()) {
	ctx := context.Background()

	container, err := pgcontainer.Run(
		ctx,
		"postgres:16-alpine",
		testcontainers.WithEnv(map[string]string{
			"POSTGRES_DB":       "testdb",
			"POSTGRES_USER":     "test",
			"POSTGRES_PASSWORD": "test",
		}),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(5*time.Second)),
	)
	require.NoError(t, err)

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	s, err := NewPostgresStore(dsn)
	require.NoError(t, err, "Failed to create store")

	require.NoError(t, s.ApplyMigrations("../../../migrations"))

	cleanup := func() {
		s.Close()
		container.Terminate(ctx)
	}

	return s, cleanup
}

func seedStudent(t *testing.T, s *PostgresStore, uuid, name string) {
	t.Helper()
	_, err := s.DB.Exec(
		`INSERT INTO students (uuid, password, name) VALUES ($1, $2, $3)`,
		uuid, "$2a$04$notsecret", name,
	)
	require.NoError(t, err, "Failed to seed student")
}

func strPtr(s string) *string {
	return &s
}

func TestSubmissionLifecycle(t *testing.T) {
	s, cleanup := setupTestDB(t)
	defer cleanup()

	seedStudent(t, s, "s001", "Eva Student")

	t.Run("ensure is idempotent", func(t *testing.T) {
		for i := 0; i < 3; i++ {
			require.NoError(t, s.EnsureRecord("s001"))
		}

		var count int
		require.NoError(t, s.DB.Get(&count, `SELECT COUNT(*) FROM wisuda_questionnaire WHERE uuid = $1`, "s001"))
		assert.Equal(t, 1, count)
	})

	first := time.Date(2025, 6, 14, 10, 0, 0, 0, time.UTC)
	second := first.Add(time.Hour)

	t.Run("upsert overwrites on resubmission", func(t *testing.T) {
		require.NoError(t, s.UpsertNomination(&models.Nomination{
			UUID: "s001", Class: "A", Vote1: "Eva",
			Vote2: strPtr("Fifi"), Reason1: "kind", Reason2: strPtr("patient"),
			UpdatedAt: first,
		}))
		require.NoError(t, s.UpsertNomination(&models.Nomination{
			UUID: "s001", Class: "B", Vote1: "Gita", Reason1: "wise",
			UpdatedAt: second,
		}))

		record, err := s.GetRecord("s001")
		require.NoError(t, err)
		require.NotNil(t, record)
		assert.Equal(t, "Gita", *record.Vote1)
		assert.Nil(t, record.Vote2)
		assert.Nil(t, record.Reason2)
		assert.True(t, record.DoneNomination)
		require.NotNil(t, record.UpdatedAt)
		assert.True(t, record.UpdatedAt.Equal(second))
	})

	t.Run("dreams flag is monotonic and independent", func(t *testing.T) {
		require.NoError(t, s.MarkDreamsDone("s001"))
		require.NoError(t, s.MarkDreamsDone("s001"))

		record, err := s.GetRecord("s001")
		require.NoError(t, err)
		assert.True(t, record.DoneDreams)
		assert.True(t, record.DoneNomination)
		assert.Equal(t, "Gita", *record.Vote1)
	})
}

func TestAggregation(t *testing.T) {
	s, cleanup := setupTestDB(t)
	defer cleanup()

	seedStudent(t, s, "a", "Student A")
	seedStudent(t, s, "b", "Student B")
	seedStudent(t, s, "c", "Student C")

	base := time.Date(2025, 6, 14, 10, 0, 0, 0, time.UTC)
	require.NoError(t, s.UpsertNomination(&models.Nomination{
		UUID: "a", Class: "A", Vote1: "X", Vote2: strPtr("Y"),
		Reason1: "r", Reason2: strPtr("r"), UpdatedAt: base,
	}))
	require.NoError(t, s.UpsertNomination(&models.Nomination{
		UUID: "b", Class: "A", Vote1: "X", Reason1: "r", UpdatedAt: base.Add(time.Minute),
	}))
	require.NoError(t, s.UpsertNomination(&models.Nomination{
		UUID: "c", Class: "B", Vote1: "Y", Vote2: strPtr("X"),
		Reason1: "r", Reason2: strPtr("r"), UpdatedAt: base.Add(2 * time.Minute),
	}))

	summary, err := s.FetchVoteSummary()
	require.NoError(t, err)
	require.Len(t, summary, 2)
	assert.Equal(t, models.VoteTally{Vote: "X", Total: 3}, summary[0])
	assert.Equal(t, models.VoteTally{Vote: "Y", Total: 2}, summary[1])

	details, err := s.ListNominations()
	require.NoError(t, err)
	require.Len(t, details, 3)
	assert.Equal(t, "c", details[0].UUID)
	require.NotNil(t, details[0].StudentName)
	assert.Equal(t, "Student C", *details[0].StudentName)
}
