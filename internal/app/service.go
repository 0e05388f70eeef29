package app

import (
	"context"
	"fmt"
	"time"

	"github.com/samit-dev/wisuda/internal/models"
	"github.com/samit-dev/wisuda/internal/store"
)

// ValidationError is a client error: the message names the violated rule and
// is safe to surface.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return e.Reason
}

type Service struct {
	Config   *Config
	Store    store.SubmissionStore
	Auth     *Auth
	Throttle *LoginThrottle
}

func NewService(configPath string) (*Service, error) {
	config, err := LoadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	store, err := NewStore(config.Database.DSN)
	if err != nil {
		return nil, fmt.Errorf("failed to init store: %w", err)
	}

	auth, err := NewAuth(config)
	if err != nil {
		return nil, fmt.Errorf("failed to init auth: %w", err)
	}

	throttle, err := NewLoginThrottle(config)
	if err != nil {
		return nil, fmt.Errorf("failed to init login throttle: %w", err)
	}

	return &Service{
		Config:   config,
		Store:    store,
		Auth:     auth,
		Throttle: throttle,
	}, nil
}

// Login verifies credentials and returns a fresh session. On success the
// student's questionnaire row is guaranteed to exist; a failed login touches
// nothing.
func (s *Service) Login(ctx context.Context, uuid, password string) (*models.Session, error) {
	if err := s.Throttle.Allow(ctx, uuid); err != nil {
		return nil, err
	}

	student, err := s.Store.GetStudentByUUID(uuid)
	if err != nil {
		return nil, err
	}
	if student == nil {
		return nil, ErrInvalidCredentials
	}

	if err := VerifyPassword(student.PasswordHash, password); err != nil {
		return nil, err
	}

	if err := s.Store.EnsureRecord(student.UUID); err != nil {
		return nil, err
	}

	token, expiresAt, err := s.Auth.IssueToken(student, time.Now().UTC())
	if err != nil {
		return nil, err
	}

	return &models.Session{
		Token: token,
		User: models.UserInfo{
			ID:   student.ID,
			UUID: student.UUID,
			Name: student.Name,
		},
		ExpiresAt: expiresAt,
	}, nil
}

// SubmitNomination validates and records 1-2 votes with reasons for the
// student. The upsert is a full replace keyed on uuid, so a resubmission
// overwrites earlier answers; blocking repeats is left to the frontend.
func (s *Service) SubmitNomination(uuid string, in *models.NominationInput) error {
	in.Normalize()
	if err := in.Validate(); err != nil {
		return &ValidationError{Reason: err.Error()}
	}

	nom := models.NewNomination(uuid, in, time.Now().UTC())
	return s.Store.UpsertNomination(nom)
}

// MarkDreamsDone flags the dreams questionnaire complete. Repeat calls are
// no-ops; the flag never goes back to false.
func (s *Service) MarkDreamsDone(uuid string) error {
	return s.Store.MarkDreamsDone(uuid)
}

// Status returns the student's completion state, lazily creating the row on
// first sight.
func (s *Service) Status(uuid string) (*models.SubmissionRecord, error) {
	if err := s.Store.EnsureRecord(uuid); err != nil {
		return nil, err
	}
	return s.Store.GetRecord(uuid)
}

// AggregateNominations builds the admin view: completed submissions newest
// first plus a per-nominee tally over both vote columns.
func (s *Service) AggregateNominations() ([]models.NominationDetail, []models.VoteTally, error) {
	details, err := s.Store.ListNominations()
	if err != nil {
		return nil, nil, err
	}

	summary, err := s.Store.FetchVoteSummary()
	if err != nil {
		return nil, nil, err
	}

	return details, summary, nil
}

func (s *Service) Close() error {
	var errs []error

	if err := s.Store.Close(); err != nil {
		errs = append(errs, fmt.Errorf("store: %w", err))
	}
	if err := s.Throttle.Close(); err != nil {
		errs = append(errs, fmt.Errorf("throttle: %w", err))
	}

	if len(errs) > 0 {
		return fmt.Errorf("errors while closing: %v", errs)
	}
	return nil
}
