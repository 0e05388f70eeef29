package models

import (
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// SubmissionRecord is the per-student questionnaire row, keyed by the unique
// student uuid. All fields start null/false and are filled in by the
// submission endpoints.
type SubmissionRecord struct {
	UUID           string     `db:"uuid" json:"-"`
	Class          *string    `db:"class" json:"class"`
	Vote1          *string    `db:"nomination_vote_1" json:"nomination_vote_1"`
	Vote2          *string    `db:"nomination_vote_2" json:"nomination_vote_2"`
	Reason1        *string    `db:"nomination_reason_1" json:"nomination_reason_1"`
	Reason2        *string    `db:"nomination_reason_2" json:"nomination_reason_2"`
	DoneNomination bool       `db:"is_done_nomination" json:"isDone_nomination"`
	DoneDreams     bool       `db:"is_done_dreams" json:"isDone_dreams"`
	UpdatedAt      *time.Time `db:"updated_at" json:"-"`
}

// NominationInput is the request body of the nomination endpoint. Vote2 is
// optional; when present it requires Reason2 and must differ from Vote1.
type NominationInput struct {
	Class   string `json:"student_class" validate:"required"`
	Vote1   string `json:"vote1" validate:"required"`
	Vote2   string `json:"vote2"`
	Reason1 string `json:"reason1" validate:"required"`
	Reason2 string `json:"reason2"`
}

// Normalize trims all fields before validation and persistence.
func (n *NominationInput) Normalize() {
	n.Class = strings.TrimSpace(n.Class)
	n.Vote1 = strings.TrimSpace(n.Vote1)
	n.Vote2 = strings.TrimSpace(n.Vote2)
	n.Reason1 = strings.TrimSpace(n.Reason1)
	n.Reason2 = strings.TrimSpace(n.Reason2)
}

// Validate reports the first violated rule. Call Normalize first.
func (n *NominationInput) Validate() error {
	if err := validate.Struct(n); err != nil {
		return errors.New("nomination data is incomplete")
	}
	if n.Vote2 != "" && n.Reason2 == "" {
		return errors.New("reason for vote 2 is required")
	}
	if n.Vote2 != "" && n.Vote2 == n.Vote1 {
		return errors.New("vote 1 and vote 2 must not be the same")
	}
	return nil
}

// Nomination is the validated payload handed to the store. Vote2 and Reason2
// are nil unless a second vote was given; a stray reason without a second
// vote is dropped, matching the upsert contract.
type Nomination struct {
	UUID      string    `db:"uuid"`
	Class     string    `db:"class"`
	Vote1     string    `db:"nomination_vote_1"`
	Vote2     *string   `db:"nomination_vote_2"`
	Reason1   string    `db:"nomination_reason_1"`
	Reason2   *string   `db:"nomination_reason_2"`
	UpdatedAt time.Time `db:"updated_at"`
}

// NewNomination builds the store payload from validated input.
func NewNomination(uuid string, in *NominationInput, now time.Time) *Nomination {
	nom := &Nomination{
		UUID:      uuid,
		Class:     in.Class,
		Vote1:     in.Vote1,
		Reason1:   in.Reason1,
		UpdatedAt: now,
	}
	if in.Vote2 != "" {
		nom.Vote2 = &in.Vote2
		nom.Reason2 = &in.Reason2
	}
	return nom
}

// NominationDetail is one row of the admin view: a completed submission
// joined with the student display name.
type NominationDetail struct {
	UUID        string    `db:"uuid" json:"uuid"`
	StudentName *string   `db:"student_name" json:"student_name"`
	Class       *string   `db:"student_class" json:"student_class"`
	Vote1       string    `db:"vote1" json:"vote1"`
	Reason1     *string   `db:"reason1" json:"reason1"`
	Vote2       *string   `db:"vote2" json:"vote2"`
	Reason2     *string   `db:"reason2" json:"reason2"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}

// VoteTally is the per-nominee count over vote_1 and vote_2 combined.
type VoteTally struct {
	Vote  string `db:"vote" json:"vote"`
	Total int    `db:"total" json:"total"`
}
