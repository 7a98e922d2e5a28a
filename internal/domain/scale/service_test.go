package scale

import (
	"context"
	"errors"
	"strings"
	"testing"
)

type mockRepo struct {
	records map[string]*Record
	creates int
	gets    int
}

func newMockRepo() *mockRepo {
	return &mockRepo{records: map[string]*Record{}}
}

func key(id string, version int) string {
	return id + ":" + string(rune('0'+version))
}

func (m *mockRepo) Create(_ context.Context, rec *Record) error {
	m.creates++
	m.records[key(rec.ID, rec.Version)] = rec
	return nil
}

func (m *mockRepo) GetByIDVersion(_ context.Context, id string, version int) (*Record, error) {
	m.gets++
	rec, ok := m.records[key(id, version)]
	if !ok {
		return nil, errors.New("no rows")
	}
	return rec, nil
}

func (m *mockRepo) GetLatest(_ context.Context, id string) (*Record, error) {
	var best *Record
	for _, rec := range m.records {
		if rec.ID != id || !rec.Active {
			continue
		}
		if best == nil || rec.Version > best.Version {
			best = rec
		}
	}
	if best == nil {
		return nil, errors.New("no rows")
	}
	return best, nil
}

func (m *mockRepo) List(_ context.Context, params map[string]string, limit, offset int) ([]*Record, int, error) {
	var out []*Record
	for _, rec := range m.records {
		if cat, ok := params["category"]; ok && rec.Category != cat {
			continue
		}
		out = append(out, rec)
	}
	return out, len(out), nil
}

func TestPublishRejectsBrokenTemplate(t *testing.T) {
	repo := newMockRepo()
	svc := NewService(repo)

	tpl := minimalTemplate()
	tpl.Interpretations = nil
	if _, err := svc.Publish(context.Background(), tpl); err == nil {
		t.Fatal("expected integrity rejection")
	}
	if repo.creates != 0 {
		t.Error("broken template reached the store")
	}
}

func TestPublishRejectsDuplicateVersion(t *testing.T) {
	svc := NewService(newMockRepo())

	if _, err := svc.Publish(context.Background(), minimalTemplate()); err != nil {
		t.Fatalf("first publish: %v", err)
	}
	_, err := svc.Publish(context.Background(), minimalTemplate())
	if err == nil || !strings.Contains(err.Error(), "already published") {
		t.Errorf("err = %v, want already-published rejection", err)
	}
}

func TestGetServesFromCache(t *testing.T) {
	repo := newMockRepo()
	svc := NewService(repo)

	if _, err := svc.Publish(context.Background(), minimalTemplate()); err != nil {
		t.Fatalf("Publish: %v", err)
	}
	repo.gets = 0

	for i := 0; i < 3; i++ {
		if _, err := svc.Get(context.Background(), "test-scale", 1); err != nil {
			t.Fatalf("Get: %v", err)
		}
	}
	if repo.gets != 0 {
		t.Errorf("cache missed %d times after publish", repo.gets)
	}
}

func TestGetCompilesStoredDefinitionOnce(t *testing.T) {
	repo := newMockRepo()
	tpl := minimalTemplate()
	repo.records[key(tpl.ID, tpl.Version)] = &Record{
		ID: tpl.ID, Version: tpl.Version, Name: tpl.Name, Definition: tpl, Active: true,
	}
	svc := NewService(repo)

	if _, err := svc.Get(context.Background(), "test-scale", 1); err != nil {
		t.Fatalf("Get: %v", err)
	}
	repo.gets = 0
	if _, err := svc.Get(context.Background(), "test-scale", 1); err != nil {
		t.Fatalf("Get: %v", err)
	}
	if repo.gets != 0 {
		t.Error("second Get hit the store instead of the cache")
	}
}

func TestGetLatestResolvesNewestActive(t *testing.T) {
	repo := newMockRepo()
	svc := NewService(repo)

	v1 := minimalTemplate()
	if _, err := svc.Publish(context.Background(), v1); err != nil {
		t.Fatalf("publish v1: %v", err)
	}
	v2 := minimalTemplate()
	v2.Version = 2
	if _, err := svc.Publish(context.Background(), v2); err != nil {
		t.Fatalf("publish v2: %v", err)
	}

	got, err := svc.GetLatest(context.Background(), "test-scale")
	if err != nil {
		t.Fatalf("GetLatest: %v", err)
	}
	if got.Template.Version != 2 {
		t.Errorf("latest version = %d, want 2", got.Template.Version)
	}
}

func TestSeedBuiltinsIsIdempotent(t *testing.T) {
	svc := NewService(newMockRepo())

	first, err := svc.SeedBuiltins(context.Background())
	if err != nil {
		t.Fatalf("SeedBuiltins: %v", err)
	}
	if want := len(BuiltinTemplates()); first != want {
		t.Errorf("first seed published %d, want %d", first, want)
	}

	second, err := svc.SeedBuiltins(context.Background())
	if err != nil {
		t.Fatalf("SeedBuiltins again: %v", err)
	}
	if second != 0 {
		t.Errorf("second seed published %d, want 0", second)
	}
}
