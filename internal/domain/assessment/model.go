package assessment

import (
	"time"

	"github.com/google/uuid"

	"github.com/psyscale/psyscale/internal/domain/scoring"
)

// Assessment statuses. Answers may only change while in progress; a
// submitted assessment's response set is frozen.
const (
	StatusInProgress = "in_progress"
	StatusSubmitted  = "submitted"
	StatusScored     = "scored"
)

// Assessment maps to the assessment table. PatientRef is an opaque
// identifier owned by the patient-identity collaborator; this service
// never interprets it.
type Assessment struct {
	ID              uuid.UUID        `db:"id" json:"id"`
	PatientRef      string           `db:"patient_ref" json:"patient_ref"`
	TemplateID      string           `db:"template_id" json:"template_id"`
	TemplateVersion int              `db:"template_version" json:"template_version"`
	Status          string           `db:"status" json:"status"`
	Answers         []scoring.Answer `db:"answers" json:"answers"`
	StartedAt       time.Time        `db:"started_at" json:"started_at"`
	SubmittedAt     *time.Time       `db:"submitted_at" json:"submitted_at,omitempty"`
	UpdatedAt       time.Time        `db:"updated_at" json:"updated_at"`
}

// ResponseSet builds the frozen view of this assessment's answers for
// the scoring engine.
func (a *Assessment) ResponseSet() *scoring.ResponseSet {
	return &scoring.ResponseSet{
		AssessmentID:    a.ID,
		TemplateID:      a.TemplateID,
		TemplateVersion: a.TemplateVersion,
		Answers:         a.Answers,
	}
}

// ResultRecord maps to the scoring_result table. Results are
// append-only: a re-score inserts a new row and earlier rows remain.
type ResultRecord struct {
	ID              uuid.UUID       `db:"id" json:"id"`
	AssessmentID    uuid.UUID       `db:"assessment_id" json:"assessment_id"`
	TemplateID      string          `db:"template_id" json:"template_id"`
	TemplateVersion int             `db:"template_version" json:"template_version"`
	Result          *scoring.Result `db:"result" json:"result"`
	ScoredAt        time.Time       `db:"scored_at" json:"scored_at"`
}
