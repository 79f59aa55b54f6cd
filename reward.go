package crowdfund

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/shopspring/decimal"
)

// RewardTier is a perk offered by a project to backers pledging at least
// MinAmount, limited to Quota backers.
//
// Remaining starts at Quota and only decreases, one unit per successful
// pledge that selects the tier: 0 <= Remaining <= Quota.
type RewardTier struct {
	ID          int64
	ProjectID   string
	Name        string
	Description string
	MinAmount   decimal.Decimal
	Quota       int
	Remaining   int
}

// IsAvailable reports whether the tier can still be claimed.
func (t RewardTier) IsAvailable() bool { return t.Remaining > 0 }

// Claimed returns the number of units already claimed.
func (t RewardTier) Claimed() int { return t.Quota - t.Remaining }

// MarshalJSON implements the json.Marshaler interface for RewardTier.
func (t RewardTier) MarshalJSON() ([]byte, error) {
	var w jsonObjectWriter
	w.Append("id", t.ID)
	w.Append("project", t.ProjectID)
	w.Append("name", t.Name)
	w.Optional("description", t.Description)
	w.Append("minAmount", t.MinAmount)
	w.Append("quota", t.Quota)
	w.Append("remaining", t.Remaining)
	return w.MarshalJSON()
}

type jrewardTier struct {
	ID          int64           `json:"id"`
	ProjectID   string          `json:"project"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	MinAmount   decimal.Decimal `json:"minAmount"`
	Quota       int             `json:"quota"`
	Remaining   int             `json:"remaining"`
}

// UnmarshalJSON implements the json.Unmarshaler interface for RewardTier.
func (t *RewardTier) UnmarshalJSON(data []byte) error {
	var temp jrewardTier
	if err := json.Unmarshal(data, &temp); err != nil {
		return err
	}
	*t = RewardTier(temp)
	return nil
}

// Registry gives access to the reward tiers of all projects.
type Registry struct {
	tiers Repository[int64, RewardTier]

	mu sync.Mutex // makes DecrementQuota atomic
}

// NewRegistry returns a registry over the given collection.
func NewRegistry(tiers Repository[int64, RewardTier]) *Registry {
	return &Registry{tiers: tiers}
}

// Get returns the tier with this id, and false if there is none.
func (r *Registry) Get(id int64) (RewardTier, bool, error) { return r.tiers.Get(id) }

// List returns all tiers in id order.
func (r *Registry) List() ([]RewardTier, error) { return r.tiers.List(nil) }

// ListByProject returns the tiers offered by a project.
func (r *Registry) ListByProject(projectID string) ([]RewardTier, error) {
	return r.tiers.List(func(t RewardTier) bool { return t.ProjectID == projectID })
}

// ListAvailableByProject returns the tiers of a project that can still be claimed.
func (r *Registry) ListAvailableByProject(projectID string) ([]RewardTier, error) {
	return r.tiers.List(func(t RewardTier) bool { return t.ProjectID == projectID && t.IsAvailable() })
}

// DecrementQuota claims one unit of the tier. It returns false, and changes
// nothing, if the tier is already exhausted.
func (r *Registry) DecrementQuota(id int64) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	t, ok, err := r.tiers.Get(id)
	if err != nil {
		return false, err
	}
	if !ok {
		return false, fmt.Errorf("reward tier %d: %w", id, ErrNotFound)
	}
	if t.Remaining <= 0 {
		return false, nil
	}
	t.Remaining--
	if err := r.tiers.Update(t); err != nil {
		return false, err
	}
	return true, nil
}

// Add creates a reward tier with its full quota available. A zero id is
// assigned by the store.
func (r *Registry) Add(t RewardTier) (RewardTier, error) {
	var errs error
	if t.ProjectID == "" {
		errs = errors.Join(errs, errors.New("reward tier project is missing"))
	}
	if strings.TrimSpace(t.Name) == "" {
		errs = errors.Join(errs, errors.New("reward tier name is missing"))
	}
	if t.MinAmount.IsNegative() {
		errs = errors.Join(errs, fmt.Errorf("reward tier minimum must not be negative, got %s", t.MinAmount))
	}
	if t.Quota < 0 {
		errs = errors.Join(errs, fmt.Errorf("reward tier quota must not be negative, got %d", t.Quota))
	}
	if t.Remaining != 0 && t.Remaining != t.Quota {
		errs = errors.Join(errs, fmt.Errorf("reward tier must start with its full quota %d, got %d remaining", t.Quota, t.Remaining))
	}
	if errs != nil {
		return t, fmt.Errorf("invalid reward tier %q: %w", t.Name, errs)
	}
	t.Remaining = t.Quota
	return r.tiers.Insert(t)
}
