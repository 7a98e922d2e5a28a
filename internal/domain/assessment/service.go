package assessment

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/psyscale/psyscale/internal/domain/scale"
	"github.com/psyscale/psyscale/internal/domain/scoring"
	"github.com/psyscale/psyscale/internal/platform/db"
)

var (
	// ErrFrozen rejects answer changes once an assessment leaves the
	// in-progress state.
	ErrFrozen = errors.New("assessment is no longer accepting answers")

	// ErrNotSubmitted rejects scoring of an assessment that was never
	// submitted.
	ErrNotSubmitted = errors.New("assessment has not been submitted")

	// ErrAlreadySubmitted rejects a second submit.
	ErrAlreadySubmitted = errors.New("assessment already submitted")
)

// Catalog is the slice of the template catalog the assessment
// lifecycle needs.
type Catalog interface {
	Get(ctx context.Context, id string, version int) (*scale.Compiled, error)
	GetLatest(ctx context.Context, id string) (*scale.Compiled, error)
}

// Service drives the assessment lifecycle: start, collect answers,
// submit and score, re-score. Scoring itself is delegated to the
// engine and never mutates the frozen response set.
type Service struct {
	repo    Repository
	results ResultRepository
	catalog Catalog
	engine  *scoring.Engine
	pool    *pgxpool.Pool
}

// NewService wires the lifecycle. pool may be nil (in-memory repos);
// when present, submit runs its writes in one transaction.
func NewService(repo Repository, results ResultRepository, catalog Catalog, engine *scoring.Engine, pool *pgxpool.Pool) *Service {
	return &Service{repo: repo, results: results, catalog: catalog, engine: engine, pool: pool}
}

// inTx runs fn with a transaction on the context so the repositories'
// conn() helpers pick it up. Without a pool fn runs directly.
func (s *Service) inTx(ctx context.Context, fn func(context.Context) error) error {
	if s.pool == nil {
		return fn(ctx)
	}
	txCtx, tx, err := db.WithTx(ctx, s.pool)
	if err != nil {
		return err
	}
	if err := fn(txCtx); err != nil {
		_ = tx.Rollback(ctx)
		return err
	}
	return tx.Commit(ctx)
}

// Start opens a new in-progress assessment against a published
// template. Version 0 pins the latest active version at start time.
func (s *Service) Start(ctx context.Context, patientRef, templateID string, version int) (*Assessment, error) {
	var tpl *scale.Compiled
	var err error
	if version > 0 {
		tpl, err = s.catalog.Get(ctx, templateID, version)
	} else {
		tpl, err = s.catalog.GetLatest(ctx, templateID)
	}
	if err != nil {
		return nil, err
	}

	a := &Assessment{
		PatientRef:      patientRef,
		TemplateID:      tpl.Template.ID,
		TemplateVersion: tpl.Template.Version,
		Status:          StatusInProgress,
		Answers:         []scoring.Answer{},
	}
	if err := s.repo.Create(ctx, a); err != nil {
		return nil, fmt.Errorf("create assessment: %w", err)
	}
	return s.repo.GetByID(ctx, a.ID)
}

// Answer merges a batch of answers into an in-progress assessment.
// A later answer for the same item and factor replaces the earlier
// one; items not mentioned keep their current answer.
func (s *Service) Answer(ctx context.Context, id uuid.UUID, answers []scoring.Answer) (*Assessment, error) {
	a, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("assessment %s not found: %w", id, err)
	}
	if a.Status != StatusInProgress {
		return nil, ErrFrozen
	}

	now := time.Now().UTC()
	for _, ans := range answers {
		if ans.AnsweredAt == nil {
			ts := now
			ans.AnsweredAt = &ts
		}
		a.Answers = mergeAnswer(a.Answers, ans)
	}

	if err := s.repo.Update(ctx, a); err != nil {
		return nil, fmt.Errorf("update assessment %s: %w", id, err)
	}
	return s.repo.GetByID(ctx, id)
}

func mergeAnswer(answers []scoring.Answer, ans scoring.Answer) []scoring.Answer {
	for i := range answers {
		if answers[i].Item == ans.Item && answers[i].Factor == ans.Factor {
			answers[i] = ans
			return answers
		}
	}
	return append(answers, ans)
}

// Submit freezes the response set, scores it, and persists the result.
// Validation violations surface to the caller and leave the assessment
// in progress so the answers can be corrected.
func (s *Service) Submit(ctx context.Context, id uuid.UUID) (*Assessment, *scoring.Result, *scoring.ValidationFailure, error) {
	a, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("assessment %s not found: %w", id, err)
	}
	if a.Status != StatusInProgress {
		return nil, nil, nil, ErrAlreadySubmitted
	}

	tpl, err := s.catalog.Get(ctx, a.TemplateID, a.TemplateVersion)
	if err != nil {
		return nil, nil, nil, err
	}

	result, failure, err := s.engine.Score(tpl, a.ResponseSet())
	if err != nil {
		return nil, nil, nil, err
	}
	if failure != nil {
		return a, nil, failure, nil
	}

	now := time.Now().UTC()
	a.Status = StatusScored
	a.SubmittedAt = &now
	err = s.inTx(ctx, func(ctx context.Context) error {
		if err := s.repo.Update(ctx, a); err != nil {
			return fmt.Errorf("update assessment %s: %w", id, err)
		}
		return s.saveResult(ctx, a, result)
	})
	if err != nil {
		return nil, nil, nil, err
	}
	return a, result, nil, nil
}

// Rescore runs the engine again over a frozen assessment and appends
// a new result row. Scoring the same response set against the same
// template version yields the same numbers; earlier rows are kept as
// an audit trail.
func (s *Service) Rescore(ctx context.Context, id uuid.UUID) (*scoring.Result, error) {
	a, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("assessment %s not found: %w", id, err)
	}
	if a.Status == StatusInProgress {
		return nil, ErrNotSubmitted
	}

	tpl, err := s.catalog.Get(ctx, a.TemplateID, a.TemplateVersion)
	if err != nil {
		return nil, err
	}

	result, failure, err := s.engine.Score(tpl, a.ResponseSet())
	if err != nil {
		return nil, err
	}
	if failure != nil {
		return nil, fmt.Errorf("frozen response set failed validation: %d violations", len(failure.Violations))
	}
	if err := s.saveResult(ctx, a, result); err != nil {
		return nil, err
	}
	return result, nil
}

func (s *Service) saveResult(ctx context.Context, a *Assessment, result *scoring.Result) error {
	rec := &ResultRecord{
		ID:              result.ID,
		AssessmentID:    a.ID,
		TemplateID:      a.TemplateID,
		TemplateVersion: a.TemplateVersion,
		Result:          result,
		ScoredAt:        result.ScoredAt,
	}
	if err := s.results.Create(ctx, rec); err != nil {
		return fmt.Errorf("store scoring result for assessment %s: %w", a.ID, err)
	}
	return nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Assessment, error) {
	return s.repo.GetByID(ctx, id)
}

// Results returns the scoring history for an assessment, newest first.
func (s *Service) Results(ctx context.Context, id uuid.UUID) ([]*ResultRecord, error) {
	return s.results.ListByAssessment(ctx, id)
}

func (s *Service) ListByPatient(ctx context.Context, patientRef string, limit, offset int) ([]*Assessment, int, error) {
	return s.repo.ListByPatient(ctx, patientRef, limit, offset)
}

func (s *Service) Search(ctx context.Context, params map[string]string, limit, offset int) ([]*Assessment, int, error) {
	return s.repo.Search(ctx, params, limit, offset)
}
