package assessment

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/psyscale/psyscale/internal/domain/scoring"
	"github.com/psyscale/psyscale/internal/platform/db"
)

type queryable interface {
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
}

// =========== Assessment Repository ===========

type repoPG struct{ pool *pgxpool.Pool }

func NewRepoPG(pool *pgxpool.Pool) Repository {
	return &repoPG{pool: pool}
}

func (r *repoPG) conn(ctx context.Context) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	if c := db.ConnFromContext(ctx); c != nil {
		return c
	}
	return r.pool
}

const assessmentCols = `id, patient_ref, template_id, template_version, status, answers, started_at, submitted_at, updated_at`

func scanAssessment(row pgx.Row) (*Assessment, error) {
	var a Assessment
	var answers []byte
	err := row.Scan(&a.ID, &a.PatientRef, &a.TemplateID, &a.TemplateVersion, &a.Status,
		&answers, &a.StartedAt, &a.SubmittedAt, &a.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if len(answers) > 0 {
		if err := json.Unmarshal(answers, &a.Answers); err != nil {
			return nil, fmt.Errorf("decode answers for assessment %s: %w", a.ID, err)
		}
	}
	return &a, nil
}

func (r *repoPG) Create(ctx context.Context, a *Assessment) error {
	a.ID = uuid.New()
	answers, err := json.Marshal(a.Answers)
	if err != nil {
		return fmt.Errorf("encode answers: %w", err)
	}
	_, err = r.conn(ctx).Exec(ctx, `
		INSERT INTO assessment (id, patient_ref, template_id, template_version, status, answers)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		a.ID, a.PatientRef, a.TemplateID, a.TemplateVersion, a.Status, answers)
	return err
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*Assessment, error) {
	return scanAssessment(r.conn(ctx).QueryRow(ctx,
		`SELECT `+assessmentCols+` FROM assessment WHERE id = $1`, id))
}

func (r *repoPG) Update(ctx context.Context, a *Assessment) error {
	answers, err := json.Marshal(a.Answers)
	if err != nil {
		return fmt.Errorf("encode answers: %w", err)
	}
	_, err = r.conn(ctx).Exec(ctx, `
		UPDATE assessment SET status=$2, answers=$3, submitted_at=$4, updated_at=NOW()
		WHERE id = $1`,
		a.ID, a.Status, answers, a.SubmittedAt)
	return err
}

func (r *repoPG) ListByPatient(ctx context.Context, patientRef string, limit, offset int) ([]*Assessment, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM assessment WHERE patient_ref = $1`, patientRef).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+assessmentCols+` FROM assessment WHERE patient_ref = $1 ORDER BY started_at DESC LIMIT $2 OFFSET $3`,
		patientRef, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var items []*Assessment
	for rows.Next() {
		a, err := scanAssessment(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, a)
	}
	return items, total, nil
}

func (r *repoPG) Search(ctx context.Context, params map[string]string, limit, offset int) ([]*Assessment, int, error) {
	query := `SELECT ` + assessmentCols + ` FROM assessment WHERE 1=1`
	countQuery := `SELECT COUNT(*) FROM assessment WHERE 1=1`
	var args []interface{}
	idx := 1

	if p, ok := params["patient_ref"]; ok {
		query += fmt.Sprintf(` AND patient_ref = $%d`, idx)
		countQuery += fmt.Sprintf(` AND patient_ref = $%d`, idx)
		args = append(args, p)
		idx++
	}
	if p, ok := params["template_id"]; ok {
		query += fmt.Sprintf(` AND template_id = $%d`, idx)
		countQuery += fmt.Sprintf(` AND template_id = $%d`, idx)
		args = append(args, p)
		idx++
	}
	if p, ok := params["status"]; ok {
		query += fmt.Sprintf(` AND status = $%d`, idx)
		countQuery += fmt.Sprintf(` AND status = $%d`, idx)
		args = append(args, p)
		idx++
	}

	var total int
	if err := r.conn(ctx).QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query += fmt.Sprintf(` ORDER BY started_at DESC LIMIT $%d OFFSET $%d`, idx, idx+1)
	args = append(args, limit, offset)

	rows, err := r.conn(ctx).Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var items []*Assessment
	for rows.Next() {
		a, err := scanAssessment(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, a)
	}
	return items, total, nil
}

// =========== Result Repository ===========

type resultRepoPG struct{ pool *pgxpool.Pool }

func NewResultRepoPG(pool *pgxpool.Pool) ResultRepository {
	return &resultRepoPG{pool: pool}
}

func (r *resultRepoPG) conn(ctx context.Context) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	if c := db.ConnFromContext(ctx); c != nil {
		return c
	}
	return r.pool
}

func (r *resultRepoPG) Create(ctx context.Context, rec *ResultRecord) error {
	body, err := json.Marshal(rec.Result)
	if err != nil {
		return fmt.Errorf("encode scoring result: %w", err)
	}
	_, err = r.conn(ctx).Exec(ctx, `
		INSERT INTO scoring_result (id, assessment_id, template_id, template_version, result, scored_at)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		rec.ID, rec.AssessmentID, rec.TemplateID, rec.TemplateVersion, body, rec.ScoredAt)
	return err
}

func (r *resultRepoPG) ListByAssessment(ctx context.Context, assessmentID uuid.UUID) ([]*ResultRecord, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT id, assessment_id, template_id, template_version, result, scored_at
		FROM scoring_result WHERE assessment_id = $1 ORDER BY scored_at DESC`, assessmentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []*ResultRecord
	for rows.Next() {
		var rec ResultRecord
		var body []byte
		if err := rows.Scan(&rec.ID, &rec.AssessmentID, &rec.TemplateID, &rec.TemplateVersion, &body, &rec.ScoredAt); err != nil {
			return nil, err
		}
		if len(body) > 0 {
			rec.Result = &scoring.Result{}
			if err := json.Unmarshal(body, rec.Result); err != nil {
				return nil, fmt.Errorf("decode scoring result %s: %w", rec.ID, err)
			}
		}
		items = append(items, &rec)
	}
	return items, nil
}
