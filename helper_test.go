package crowdfund

import (
	"cmp"
	"errors"
	"testing"
	"time"

	"github.com/etnz/crowdfund/date"
	"github.com/shopspring/decimal"
)

// now is the fixed time used by tests: "today" is 2025-06-15.
var now = time.Date(2025, time.June, 15, 12, 0, 0, 0, time.UTC)

var today = date.Of(now)

// D is a helper for test to create decimals from const.
func D(s string) decimal.Decimal { return decimal.RequireFromString(s) }

// fixture is a memory store with its components.
type fixture struct {
	store    *Store
	catalog  *Catalog
	registry *Registry
	ledger   *Ledger
	engine   *Engine
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	return newFixtureOn(t, NewMemoryStore())
}

func newFixtureOn(t *testing.T, s *Store) *fixture {
	t.Helper()
	f := &fixture{store: s, catalog: s.Catalog(), registry: s.Registry(), ledger: s.Ledger()}
	f.engine = NewEngine(f.catalog, f.registry, f.ledger, WithClock(func() time.Time { return now }))
	return f
}

func (f *fixture) project(t *testing.T, id, target string, deadline date.Date) Project {
	t.Helper()
	p, err := f.catalog.AddProject(Project{
		ID:        id,
		Name:      "Project " + id,
		Target:    D(target),
		Deadline:  deadline,
		CreatedAt: now.Add(-time.Hour),
	})
	if err != nil {
		t.Fatalf("AddProject(%q) error: %v", id, err)
	}
	return p
}

func (f *fixture) tier(t *testing.T, projectID, min string, quota int) RewardTier {
	t.Helper()
	tier, err := f.registry.Add(RewardTier{ProjectID: projectID, Name: "Tier of " + projectID, MinAmount: D(min), Quota: quota})
	if err != nil {
		t.Fatalf("Add tier error: %v", err)
	}
	return tier
}

func (f *fixture) getProject(t *testing.T, id string) Project {
	t.Helper()
	p, ok, err := f.catalog.Get(id)
	if err != nil || !ok {
		t.Fatalf("Get(%q) = %v, %v", id, ok, err)
	}
	return p
}

func (f *fixture) getTier(t *testing.T, id int64) RewardTier {
	t.Helper()
	tier, ok, err := f.registry.Get(id)
	if err != nil || !ok {
		t.Fatalf("Get tier %d = %v, %v", id, ok, err)
	}
	return tier
}

var errDiskFull = errors.New("disk full")

// failingRepo wraps a Repository and fails the operations that are switched on.
type failingRepo[K cmp.Ordered, R any] struct {
	Repository[K, R]
	failGet, failList, failInsert, failUpdate bool
}

func (r *failingRepo[K, R]) Get(id K) (R, bool, error) {
	if r.failGet {
		var zero R
		return zero, false, errDiskFull
	}
	return r.Repository.Get(id)
}

func (r *failingRepo[K, R]) List(filter func(R) bool) ([]R, error) {
	if r.failList {
		return nil, errDiskFull
	}
	return r.Repository.List(filter)
}

func (r *failingRepo[K, R]) Insert(rec R) (R, error) {
	if r.failInsert {
		return rec, errDiskFull
	}
	return r.Repository.Insert(rec)
}

func (r *failingRepo[K, R]) Update(rec R) error {
	if r.failUpdate {
		return errDiskFull
	}
	return r.Repository.Update(rec)
}
