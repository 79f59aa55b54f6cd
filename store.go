package crowdfund

import (
	"cmp"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"sync"
)

// Repository is a keyed collection of records.
//
// It is the only way the catalog, the registry, the ledger and the backers
// reach their data. Collections are durable but not transactional with each
// other.
type Repository[K cmp.Ordered, R any] interface {
	// Get returns the record with key id, and false if there is none.
	Get(id K) (R, bool, error)
	// List returns all records accepted by filter in key order. A nil filter accepts all.
	List(filter func(R) bool) ([]R, error)
	// Insert adds r and returns it. If r has a zero key, a new key is generated
	// when the collection supports it.
	Insert(r R) (R, error)
	// Update replaces the record with the same key as r.
	Update(r R) error
}

// Table is an in-memory Repository indexed by key, with an optional
// write-through JSONL file.
//
// Generated keys come from a counter initialized to the greatest key found
// on load, so they are strictly increasing.
type Table[K cmp.Ordered, R any] struct {
	name string
	file string // empty for a memory only table.

	key    func(R) K
	seq    func(last K) K // nil when keys are assigned by the caller.
	assign func(R, K) R

	mu   sync.RWMutex
	rows map[K]R
	last K
}

// NewKeyedTable returns an empty table whose keys are always provided by the caller.
func NewKeyedTable[K cmp.Ordered, R any](name string, key func(R) K) *Table[K, R] {
	return &Table[K, R]{name: name, key: key, rows: make(map[K]R)}
}

// NewSequenceTable returns an empty table that assigns 1, 2, 3... to records inserted with a zero key.
func NewSequenceTable[R any](name string, key func(R) int64, assign func(R, int64) R) *Table[int64, R] {
	t := NewKeyedTable(name, key)
	t.seq = func(last int64) int64 { return last + 1 }
	t.assign = assign
	return t
}

// Name returns the collection name.
func (t *Table[K, R]) Name() string { return t.name }

func (t *Table[K, R]) Get(id K) (R, bool, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	r, ok := t.rows[id]
	return r, ok, nil
}

func (t *Table[K, R]) List(filter func(R) bool) ([]R, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.sorted(filter), nil
}

// sorted returns the rows accepted by filter in key order. Caller must hold the lock.
func (t *Table[K, R]) sorted(filter func(R) bool) []R {
	list := make([]R, 0, len(t.rows))
	for _, r := range t.rows {
		if filter == nil || filter(r) {
			list = append(list, r)
		}
	}
	slices.SortFunc(list, func(a, b R) int { return cmp.Compare(t.key(a), t.key(b)) })
	return list
}

func (t *Table[K, R]) Insert(r R) (R, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	var zero K
	k := t.key(r)
	if k == zero {
		if t.seq == nil {
			return r, fmt.Errorf("%s: %w", t.name, ErrMissingKey)
		}
		k = t.seq(t.last)
		r = t.assign(r, k)
	} else if _, exists := t.rows[k]; exists {
		return r, fmt.Errorf("%s %v: %w", t.name, k, ErrDuplicateKey)
	}

	// Persist first: memory is only changed once the write is confirmed.
	if err := t.appendLine(r); err != nil {
		return r, err
	}
	t.rows[k] = r
	if k > t.last {
		t.last = k
	}
	return r, nil
}

func (t *Table[K, R]) Update(r R) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	k := t.key(r)
	old, ok := t.rows[k]
	if !ok {
		return fmt.Errorf("%s %v: %w", t.name, k, ErrNotFound)
	}
	t.rows[k] = r
	if err := t.rewrite(); err != nil {
		t.rows[k] = old
		return err
	}
	return nil
}

// Store gathers the five collections of a crowdfunding database.
type Store struct {
	Projects   Repository[string, Project]
	Categories Repository[int64, Category]
	Rewards    Repository[int64, RewardTier]
	Pledges    Repository[int64, Pledge]
	Backers    Repository[int64, Backer]
}

// Collection file names inside a data directory.
const (
	projectsFile   = "projects.jsonl"
	categoriesFile = "categories.jsonl"
	rewardsFile    = "rewards.jsonl"
	pledgesFile    = "pledges.jsonl"
	backersFile    = "backers.jsonl"
)

func newTables() (*Table[string, Project], *Table[int64, Category], *Table[int64, RewardTier], *Table[int64, Pledge], *Table[int64, Backer]) {
	return NewKeyedTable("projects", func(p Project) string { return p.ID }),
		NewSequenceTable("categories", func(c Category) int64 { return c.ID }, func(c Category, id int64) Category { c.ID = id; return c }),
		NewSequenceTable("rewards", func(r RewardTier) int64 { return r.ID }, func(r RewardTier, id int64) RewardTier { r.ID = id; return r }),
		NewSequenceTable("pledges", func(p Pledge) int64 { return p.ID }, func(p Pledge, id int64) Pledge { p.ID = id; return p }),
		NewSequenceTable("backers", func(b Backer) int64 { return b.ID }, func(b Backer, id int64) Backer { b.ID = id; return b })
}

// NewMemoryStore returns an empty store that is not persisted.
func NewMemoryStore() *Store {
	projects, categories, rewards, pledges, backers := newTables()
	return &Store{projects, categories, rewards, pledges, backers}
}

// Open loads the store persisted in dir, creating the directory if needed.
// Every later change is written through to the collection files.
func Open(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("cannot create data directory %q: %w", dir, err)
	}
	projects, categories, rewards, pledges, backers := newTables()

	err := errors.Join(
		projects.Load(filepath.Join(dir, projectsFile)),
		categories.Load(filepath.Join(dir, categoriesFile)),
		rewards.Load(filepath.Join(dir, rewardsFile)),
		pledges.Load(filepath.Join(dir, pledgesFile)),
		backers.Load(filepath.Join(dir, backersFile)),
	)
	if err != nil {
		return nil, err
	}
	return &Store{projects, categories, rewards, pledges, backers}, nil
}

// Catalog returns the project catalog over this store.
func (s *Store) Catalog() *Catalog { return NewCatalog(s.Projects, s.Categories) }

// Registry returns the reward tier registry over this store.
func (s *Store) Registry() *Registry { return NewRegistry(s.Rewards) }

// Ledger returns the pledge ledger over this store.
func (s *Store) Ledger() *Ledger { return NewLedger(s.Pledges) }
