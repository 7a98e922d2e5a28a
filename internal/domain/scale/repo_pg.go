package scale

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/psyscale/psyscale/internal/platform/db"
)

type queryable interface {
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
}

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

const templateCols = `id, version, name, category, definition, active, published_at`

func scanRecord(row pgx.Row) (*Record, error) {
	var rec Record
	var def []byte
	if err := row.Scan(&rec.ID, &rec.Version, &rec.Name, &rec.Category, &def, &rec.Active, &rec.PublishedAt); err != nil {
		return nil, err
	}
	if len(def) > 0 {
		rec.Definition = &Template{}
		if err := json.Unmarshal(def, rec.Definition); err != nil {
			return nil, fmt.Errorf("decode template definition %s v%d: %w", rec.ID, rec.Version, err)
		}
	}
	return &rec, nil
}

func (r *repoPG) Create(ctx context.Context, rec *Record) error {
	def, err := json.Marshal(rec.Definition)
	if err != nil {
		return fmt.Errorf("encode template definition: %w", err)
	}
	_, err = r.conn(ctx).Exec(ctx, `
		INSERT INTO scale_template (id, version, name, category, definition, active)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		rec.ID, rec.Version, rec.Name, rec.Category, def, rec.Active)
	return err
}

func (r *repoPG) GetByIDVersion(ctx context.Context, id string, version int) (*Record, error) {
	return scanRecord(r.conn(ctx).QueryRow(ctx,
		`SELECT `+templateCols+` FROM scale_template WHERE id = $1 AND version = $2`, id, version))
}

func (r *repoPG) GetLatest(ctx context.Context, id string) (*Record, error) {
	return scanRecord(r.conn(ctx).QueryRow(ctx,
		`SELECT `+templateCols+` FROM scale_template WHERE id = $1 AND active ORDER BY version DESC LIMIT 1`, id))
}

func (r *repoPG) List(ctx context.Context, params map[string]string, limit, offset int) ([]*Record, int, error) {
	query := `SELECT id, version, name, category, NULL::jsonb, active, published_at FROM scale_template WHERE 1=1`
	countQuery := `SELECT COUNT(*) FROM scale_template WHERE 1=1`
	var args []interface{}
	idx := 1

	if p, ok := params["category"]; ok {
		query += fmt.Sprintf(` AND category = $%d`, idx)
		countQuery += fmt.Sprintf(` AND category = $%d`, idx)
		args = append(args, p)
		idx++
	}
	if p, ok := params["active"]; ok {
		query += fmt.Sprintf(` AND active = $%d`, idx)
		countQuery += fmt.Sprintf(` AND active = $%d`, idx)
		args = append(args, p == "true")
		idx++
	}

	var total int
	if err := r.conn(ctx).QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query += fmt.Sprintf(` ORDER BY id, version DESC LIMIT $%d OFFSET $%d`, idx, idx+1)
	args = append(args, limit, offset)

	rows, err := r.conn(ctx).Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var items []*Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, rec)
	}
	return items, total, nil
}
