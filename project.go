package crowdfund

import (
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/etnz/crowdfund/date"
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// Project is a crowdfunding campaign.
//
// Current is only ever changed by the admission engine, and always equals the
// sum of the SUCCESS pledges recorded for the project.
type Project struct {
	ID          string
	Name        string
	Description string
	Target      decimal.Decimal
	Current     decimal.Decimal
	Deadline    date.Date
	CategoryID  int64
	CreatedAt   time.Time
}

// IsActive reports whether the project still accepts pledges on day today.
// The deadline day itself is active.
func (p Project) IsActive(today date.Date) bool { return !p.Deadline.Before(today) }

// Progress returns the funded percentage, capped at 100. It is 0 when the target is not positive.
func (p Project) Progress() decimal.Decimal {
	if !p.Target.IsPositive() {
		return decimal.Zero
	}
	return decimal.Min(hundred, p.Current.Div(p.Target).Mul(hundred))
}

// DaysLeft returns the number of days before the deadline, 0 once it is reached.
func (p Project) DaysLeft(today date.Date) int {
	return max(0, p.Deadline.Sub(today))
}

// MarshalJSON implements the json.Marshaler interface for Project.
func (p Project) MarshalJSON() ([]byte, error) {
	var w jsonObjectWriter
	w.Append("id", p.ID)
	w.Append("name", p.Name)
	w.Optional("description", p.Description)
	w.Append("target", p.Target)
	w.Append("current", p.Current)
	w.Append("deadline", p.Deadline)
	w.Append("category", p.CategoryID)
	w.Optional("createdAt", p.CreatedAt)
	return w.MarshalJSON()
}

// jproject has the same fields as Project, with their record names.
type jproject struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Target      decimal.Decimal `json:"target"`
	Current     decimal.Decimal `json:"current"`
	Deadline    date.Date       `json:"deadline"`
	CategoryID  int64           `json:"category"`
	CreatedAt   time.Time       `json:"createdAt"`
}

// UnmarshalJSON implements the json.Unmarshaler interface for Project.
func (p *Project) UnmarshalJSON(data []byte) error {
	var temp jproject
	if err := json.Unmarshal(data, &temp); err != nil {
		return err
	}
	*p = Project(temp)
	return nil
}

// Category is a read only classification of projects.
type Category struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

// SortOrder selects how Catalog.Sorted orders projects.
type SortOrder int

const (
	// ByNewest orders projects by creation time, most recent first.
	ByNewest SortOrder = iota
	// ByDeadline orders projects by deadline, closest first.
	ByDeadline
	// ByFunding orders projects by current amount, largest first.
	ByFunding
)

func (s SortOrder) String() string {
	switch s {
	case ByNewest:
		return "newest"
	case ByDeadline:
		return "deadline"
	case ByFunding:
		return "funding"
	default:
		return "unknown"
	}
}

// ParseSortOrder parses a string into a SortOrder.
func ParseSortOrder(s string) (SortOrder, error) {
	switch s {
	case "newest", "":
		return ByNewest, nil
	case "deadline":
		return ByDeadline, nil
	case "funding":
		return ByFunding, nil
	default:
		return 0, fmt.Errorf("unknown sort order: %q", s)
	}
}

// Catalog gives access to projects and categories.
type Catalog struct {
	projects   Repository[string, Project]
	categories Repository[int64, Category]

	mu sync.Mutex // serializes funding updates
}

// NewCatalog returns a catalog over the given collections.
func NewCatalog(projects Repository[string, Project], categories Repository[int64, Category]) *Catalog {
	return &Catalog{projects: projects, categories: categories}
}

// Get returns the project with this id, and false if there is none.
func (c *Catalog) Get(id string) (Project, bool, error) { return c.projects.Get(id) }

// List returns all projects in id order.
func (c *Catalog) List() ([]Project, error) { return c.projects.List(nil) }

// ListByCategory returns the projects of a category.
func (c *Catalog) ListByCategory(categoryID int64) ([]Project, error) {
	return c.projects.List(func(p Project) bool { return p.CategoryID == categoryID })
}

// SearchByName returns the projects whose name contains substr, ignoring case.
func (c *Catalog) SearchByName(substr string) ([]Project, error) {
	substr = strings.ToLower(substr)
	return c.projects.List(func(p Project) bool {
		return strings.Contains(strings.ToLower(p.Name), substr)
	})
}

// ListActive returns the projects still accepting pledges on day today.
func (c *Catalog) ListActive(today date.Date) ([]Project, error) {
	return c.projects.List(func(p Project) bool { return p.IsActive(today) })
}

// Sorted returns all projects in the given order. Ties keep id order.
func (c *Catalog) Sorted(by SortOrder) ([]Project, error) {
	list, err := c.List()
	if err != nil {
		return nil, err
	}
	SortProjects(list, by)
	return list, nil
}

// SortProjects sorts a list of projects in place. The sort is stable.
func SortProjects(list []Project, by SortOrder) {
	switch by {
	case ByNewest:
		slices.SortStableFunc(list, func(a, b Project) int { return b.CreatedAt.Compare(a.CreatedAt) })
	case ByDeadline:
		slices.SortStableFunc(list, func(a, b Project) int { return a.Deadline.Compare(b.Deadline) })
	case ByFunding:
		slices.SortStableFunc(list, func(a, b Project) int { return b.Current.Cmp(a.Current) })
	}
}

// ApplyFundingDelta adds delta to the project current amount and persists it.
//
// It is meant for the admission engine only. Negative deltas are not refused.
func (c *Catalog) ApplyFundingDelta(id string, delta decimal.Decimal) (Project, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	p, ok, err := c.projects.Get(id)
	if err != nil {
		return p, err
	}
	if !ok {
		return p, fmt.Errorf("project %q: %w", id, ErrNotFound)
	}
	p.Current = p.Current.Add(delta)
	if err := c.projects.Update(p); err != nil {
		return p, err
	}
	return p, nil
}

// AddProject creates a new project. The project starts with no funding.
func (c *Catalog) AddProject(p Project) (Project, error) {
	var errs error
	if p.ID == "" {
		errs = errors.Join(errs, errors.New("project id is missing"))
	}
	if strings.TrimSpace(p.Name) == "" {
		errs = errors.Join(errs, errors.New("project name is missing"))
	}
	if !p.Target.IsPositive() {
		errs = errors.Join(errs, fmt.Errorf("project target must be positive, got %s", p.Target))
	}
	if !p.Current.IsZero() {
		errs = errors.Join(errs, fmt.Errorf("project current amount must start at 0, got %s", p.Current))
	}
	if p.Deadline.IsZero() {
		errs = errors.Join(errs, errors.New("project deadline is missing"))
	}
	if errs != nil {
		return p, fmt.Errorf("invalid project %q: %w", p.ID, errs)
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now().UTC()
	}
	return c.projects.Insert(p)
}

// Category returns the category with this id, and false if there is none.
func (c *Catalog) Category(id int64) (Category, bool, error) { return c.categories.Get(id) }

// Categories returns all categories in id order.
func (c *Catalog) Categories() ([]Category, error) { return c.categories.List(nil) }

// AddCategory creates a category. A zero id is assigned by the store.
func (c *Catalog) AddCategory(cat Category) (Category, error) {
	if strings.TrimSpace(cat.Name) == "" {
		return cat, errors.New("category name is missing")
	}
	return c.categories.Insert(cat)
}
