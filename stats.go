package crowdfund

import (
	"fmt"

	"github.com/etnz/crowdfund/date"
	"github.com/shopspring/decimal"
)

// UnknownCategory is the category name reported for a dangling category reference.
const UnknownCategory = "Unknown"

// PledgeCounts counts pledges by status.
type PledgeCounts struct {
	Total      int
	Successful int
	Rejected   int
}

func (c *PledgeCounts) add(p Pledge) {
	c.Total++
	switch p.Status {
	case Success:
		c.Successful++
	case Rejected:
		c.Rejected++
	}
}

// SystemStats summarizes all projects and pledges.
type SystemStats struct {
	Pledges      PledgeCounts
	Projects     int
	Active       int
	Completed    int // projects past their deadline
	TotalTarget  decimal.Decimal
	TotalCurrent decimal.Decimal
	Progress     decimal.Decimal // TotalCurrent over TotalTarget in percent, 0 without target.
}

// ProjectStats summarizes the pledges of one project.
type ProjectStats struct {
	Project  Project
	Active   bool
	Progress decimal.Decimal
	Pledges  PledgeCounts
	Backers  int // distinct backers with a successful pledge
}

// RankedProject is a project with the name of its category.
type RankedProject struct {
	Project  Project
	Category string
}

// BackerStats summarizes the pledges of one backer.
type BackerStats struct {
	BackerID int64
	Pledges  PledgeCounts
	Pledged  decimal.Decimal // sum of successful pledges
	Projects int             // distinct projects successfully backed
}

// Aggregator computes statistics from the catalog and the ledger.
//
// Nothing is cached: every call scans the current content of the stores.
type Aggregator struct {
	catalog *Catalog
	ledger  *Ledger
}

// NewAggregator returns an aggregator over a catalog and a ledger.
func NewAggregator(catalog *Catalog, ledger *Ledger) *Aggregator {
	return &Aggregator{catalog: catalog, ledger: ledger}
}

// System returns the system-wide statistics on day today.
func (a *Aggregator) System(today date.Date) (SystemStats, error) {
	var s SystemStats
	pledges, err := a.ledger.All()
	if err != nil {
		return s, err
	}
	for _, p := range pledges {
		s.Pledges.add(p)
	}

	projects, err := a.catalog.List()
	if err != nil {
		return s, err
	}
	for _, p := range projects {
		s.Projects++
		if p.IsActive(today) {
			s.Active++
		}
		s.TotalTarget = s.TotalTarget.Add(p.Target)
		s.TotalCurrent = s.TotalCurrent.Add(p.Current)
	}
	s.Completed = s.Projects - s.Active
	s.Progress = percent(s.TotalCurrent, s.TotalTarget)
	return s, nil
}

// Project returns the statistics of a project on day today.
func (a *Aggregator) Project(id string, today date.Date) (ProjectStats, error) {
	project, ok, err := a.catalog.Get(id)
	if err != nil {
		return ProjectStats{}, err
	}
	if !ok {
		return ProjectStats{}, fmt.Errorf("%w: %q", ErrProjectNotFound, id)
	}
	s := ProjectStats{
		Project:  project,
		Active:   project.IsActive(today),
		Progress: project.Progress(),
	}
	pledges, err := a.ledger.ListByProject(id)
	if err != nil {
		return s, err
	}
	backers := make(map[int64]bool)
	for _, p := range pledges {
		s.Pledges.add(p)
		if p.Status == Success {
			backers[p.BackerID] = true
		}
	}
	s.Backers = len(backers)
	return s, nil
}

// Top returns the n projects with the largest current amount, each with its
// category name. Ties keep id order. n <= 0 returns all projects.
func (a *Aggregator) Top(n int) ([]RankedProject, error) {
	projects, err := a.catalog.Sorted(ByFunding)
	if err != nil {
		return nil, err
	}
	if n > 0 && len(projects) > n {
		projects = projects[:n]
	}
	ranked := make([]RankedProject, 0, len(projects))
	for _, p := range projects {
		name := UnknownCategory
		cat, ok, err := a.catalog.Category(p.CategoryID)
		if err != nil {
			return nil, err
		}
		if ok {
			name = cat.Name
		}
		ranked = append(ranked, RankedProject{Project: p, Category: name})
	}
	return ranked, nil
}

// Backer returns the statistics of a backer.
func (a *Aggregator) Backer(id int64) (BackerStats, error) {
	s := BackerStats{BackerID: id}
	pledges, err := a.ledger.ListByBacker(id)
	if err != nil {
		return s, err
	}
	projects := make(map[string]bool)
	for _, p := range pledges {
		s.Pledges.add(p)
		if p.Status == Success {
			s.Pledged = s.Pledged.Add(p.Amount)
			projects[p.ProjectID] = true
		}
	}
	s.Projects = len(projects)
	return s, nil
}

// percent returns part over total in percent, or 0 if total is not positive.
func percent(part, total decimal.Decimal) decimal.Decimal {
	if !total.IsPositive() {
		return decimal.Zero
	}
	return part.Div(total).Mul(hundred)
}
