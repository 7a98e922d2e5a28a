package scale

import (
	"context"
	"fmt"
)

// Service is the template catalog: publish-once storage plus a
// compiled-template cache for scoring.
type Service struct {
	repo  Repository
	cache *Cache
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo, cache: NewCache()}
}

// Publish compiles and stores a finalized template. Integrity problems
// reject the template before anything is written; published templates
// are never mutated in place.
func (s *Service) Publish(ctx context.Context, t *Template) (*Compiled, error) {
	compiled, err := Compile(t)
	if err != nil {
		return nil, err
	}

	if existing, err := s.repo.GetByIDVersion(ctx, t.ID, t.Version); err == nil && existing != nil {
		return nil, fmt.Errorf("template %s v%d already published", t.ID, t.Version)
	}

	rec := &Record{
		ID:         t.ID,
		Version:    t.Version,
		Name:       t.Name,
		Category:   t.Category,
		Definition: t,
		Active:     true,
	}
	if err := s.repo.Create(ctx, rec); err != nil {
		return nil, fmt.Errorf("store template %s v%d: %w", t.ID, t.Version, err)
	}

	s.cache.Put(compiled)
	return compiled, nil
}

// Get returns a compiled template, serving from cache when possible.
func (s *Service) Get(ctx context.Context, id string, version int) (*Compiled, error) {
	if compiled, ok := s.cache.Get(id, version); ok {
		return compiled, nil
	}

	rec, err := s.repo.GetByIDVersion(ctx, id, version)
	if err != nil {
		return nil, fmt.Errorf("template %s v%d not found: %w", id, version, err)
	}
	if rec.Definition == nil {
		return nil, fmt.Errorf("template %s v%d has no stored definition", id, version)
	}

	compiled, err := Compile(rec.Definition)
	if err != nil {
		return nil, err
	}
	s.cache.Put(compiled)
	return compiled, nil
}

// GetLatest returns the newest active version of a scale.
func (s *Service) GetLatest(ctx context.Context, id string) (*Compiled, error) {
	rec, err := s.repo.GetLatest(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("scale %s not found: %w", id, err)
	}
	return s.Get(ctx, rec.ID, rec.Version)
}

// List returns catalog rows without definitions.
func (s *Service) List(ctx context.Context, params map[string]string, limit, offset int) ([]*Record, int, error) {
	return s.repo.List(ctx, params, limit, offset)
}

// SeedBuiltins publishes every builtin instrument that is not already
// in the catalog. Returns the number published.
func (s *Service) SeedBuiltins(ctx context.Context) (int, error) {
	count := 0
	for _, t := range BuiltinTemplates() {
		if existing, err := s.repo.GetByIDVersion(ctx, t.ID, t.Version); err == nil && existing != nil {
			continue
		}
		if _, err := s.Publish(ctx, t); err != nil {
			return count, fmt.Errorf("seed %s v%d: %w", t.ID, t.Version, err)
		}
		count++
	}
	return count, nil
}
