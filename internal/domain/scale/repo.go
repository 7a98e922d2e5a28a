package scale

import "context"

type Repository interface {
	Create(ctx context.Context, rec *Record) error
	GetByIDVersion(ctx context.Context, id string, version int) (*Record, error)
	GetLatest(ctx context.Context, id string) (*Record, error)
	List(ctx context.Context, params map[string]string, limit, offset int) ([]*Record, int, error)
}
