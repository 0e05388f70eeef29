package store

import (
	"database/sql"
	"fmt"
	"os"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/samit-dev/wisuda/internal/models"
)

type SubmissionStore interface {
	Close() error
	ApplyMigrations(dir string) error

	GetStudentByUUID(uuid string) (*models.Student, error)

	EnsureRecord(uuid string) error
	GetRecord(uuid string) (*models.SubmissionRecord, error)
	UpsertNomination(nom *models.Nomination) error
	MarkDreamsDone(uuid string) error

	ListNominations() ([]models.NominationDetail, error)
	FetchVoteSummary() ([]models.VoteTally, error)
}

// BaseStore provides common functionality for different DB implementations
type BaseStore struct {
	DB        *sqlx.DB
	Converter func(string) string
}

func (s *BaseStore) Close() error {
	if s.DB != nil {
		return s.DB.Close()
	}
	return nil
}

// ApplyMigrations applies SQL migrations from a directory, translating dialect if needed
func (s *BaseStore) ApplyMigrations(dir string, translateSQL func(string) string) error {
	files, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("failed to read migrations directory: %w", err)
	}

	for _, file := range files {
		if !strings.HasSuffix(file.Name(), ".sql") {
			continue
		}

		content, err := os.ReadFile(fmt.Sprintf("%s/%s", dir, file.Name()))
		if err != nil {
			return fmt.Errorf("failed to read migration %s: %w", file.Name(), err)
		}

		sql := string(content)
		if translateSQL != nil {
			sql = translateSQL(sql)
		}

		if _, err := s.DB.Exec(sql); err != nil {
			return fmt.Errorf("failed to apply migration %s: %w", file.Name(), err)
		}
	}

	return nil
}

func (s *BaseStore) GetStudentByUUID(uuid string) (*models.Student, error) {
	var student models.Student
	query := s.Converter(`
		SELECT id, uuid, password, name
		FROM students
		WHERE uuid = ?
		LIMIT 1
	`)

	err := s.DB.Get(&student, query, uuid)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get student: %w", err)
	}
	return &student, nil
}

// EnsureRecord guarantees a questionnaire row exists for the uuid without
// touching any previously set field. The unique constraint on uuid is the
// only mechanism preventing duplicate rows under concurrent first logins.
func (s *BaseStore) EnsureRecord(uuid string) error {
	query := s.Converter(`
		INSERT INTO wisuda_questionnaire (uuid)
		VALUES (?)
		ON CONFLICT (uuid) DO NOTHING
	`)

	if _, err := s.DB.Exec(query, uuid); err != nil {
		return fmt.Errorf("failed to ensure questionnaire row: %w", err)
	}
	return nil
}

func (s *BaseStore) GetRecord(uuid string) (*models.SubmissionRecord, error) {
	var record models.SubmissionRecord
	query := s.Converter(`
		SELECT
			uuid,
			class,
			nomination_vote_1,
			nomination_vote_2,
			nomination_reason_1,
			nomination_reason_2,
			is_done_nomination,
			is_done_dreams,
			updated_at
		FROM wisuda_questionnaire
		WHERE uuid = ?
		LIMIT 1
	`)

	err := s.DB.Get(&record, query, uuid)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get questionnaire row: %w", err)
	}
	return &record, nil
}

// UpsertNomination is a full replace keyed on uuid: a retry with identical
// input is a no-op, a differing resubmission overwrites the previous answers.
func (s *BaseStore) UpsertNomination(nom *models.Nomination) error {
	_, err := s.DB.NamedExec(`
		INSERT INTO wisuda_questionnaire
			(uuid, class, nomination_vote_1, nomination_vote_2, nomination_reason_1, nomination_reason_2, is_done_nomination, updated_at)
		VALUES
			(:uuid, :class, :nomination_vote_1, :nomination_vote_2, :nomination_reason_1, :nomination_reason_2, TRUE, :updated_at)
		ON CONFLICT (uuid) DO UPDATE SET
			class = excluded.class,
			nomination_vote_1 = excluded.nomination_vote_1,
			nomination_vote_2 = excluded.nomination_vote_2,
			nomination_reason_1 = excluded.nomination_reason_1,
			nomination_reason_2 = excluded.nomination_reason_2,
			is_done_nomination = TRUE,
			updated_at = excluded.updated_at
	`, nom)
	if err != nil {
		return fmt.Errorf("failed to upsert nomination: %w", err)
	}
	return nil
}

// MarkDreamsDone sets the dreams flag, creating the row if needed. The flag
// is never cleared by any operation here.
func (s *BaseStore) MarkDreamsDone(uuid string) error {
	query := s.Converter(`
		INSERT INTO wisuda_questionnaire (uuid, is_done_dreams)
		VALUES (?, TRUE)
		ON CONFLICT (uuid) DO UPDATE SET is_done_dreams = TRUE
	`)

	if _, err := s.DB.Exec(query, uuid); err != nil {
		return fmt.Errorf("failed to mark dreams done: %w", err)
	}
	return nil
}

func (s *BaseStore) ListNominations() ([]models.NominationDetail, error) {
	var details []models.NominationDetail
	err := s.DB.Select(&details, `
		SELECT
			w.uuid,
			s.name AS student_name,
			w.class AS student_class,
			w.nomination_vote_1 AS vote1,
			w.nomination_reason_1 AS reason1,
			w.nomination_vote_2 AS vote2,
			w.nomination_reason_2 AS reason2,
			w.updated_at
		FROM wisuda_questionnaire w
		LEFT JOIN students s ON s.uuid = w.uuid
		WHERE w.is_done_nomination = TRUE
		ORDER BY w.updated_at DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list nominations: %w", err)
	}

	return details, nil
}

// FetchVoteSummary unions both vote columns of completed submissions into a
// single multiset and counts per nominee, most voted first.
func (s *BaseStore) FetchVoteSummary() ([]models.VoteTally, error) {
	var summary []models.VoteTally
	err := s.DB.Select(&summary, `
		SELECT vote, COUNT(*) AS total
		FROM (
			SELECT nomination_vote_1 AS vote
			FROM wisuda_questionnaire
			WHERE is_done_nomination = TRUE
			  AND nomination_vote_1 IS NOT NULL
			  AND nomination_vote_1 <> ''

			UNION ALL

			SELECT nomination_vote_2 AS vote
			FROM wisuda_questionnaire
			WHERE is_done_nomination = TRUE
			  AND nomination_vote_2 IS NOT NULL
			  AND nomination_vote_2 <> ''
		) t
		GROUP BY vote
		ORDER BY total DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch vote summary: %w", err)
	}

	return summary, nil
}
