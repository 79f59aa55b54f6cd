package renderer

import (
	"strconv"
	"time"

	"github.com/etnz/crowdfund"
	"github.com/etnz/crowdfund/date"
)

// ProjectRow is a project as displayed in lists.
type ProjectRow struct {
	ID       string
	Name     string
	Category string
	Target   Money
	Current  Money
	Progress Percent
	Deadline date.Date
	DaysLeft int
	Active   bool
}

func newProjectRow(p crowdfund.Project, category string, today date.Date, cur string) ProjectRow {
	return ProjectRow{
		ID:       p.ID,
		Name:     p.Name,
		Category: category,
		Target:   M(p.Target, cur),
		Current:  M(p.Current, cur),
		Progress: Percent(p.Progress()),
		Deadline: p.Deadline,
		DaysLeft: p.DaysLeft(today),
		Active:   p.IsActive(today),
	}
}

// ProjectList is a titled list of projects.
type ProjectList struct {
	Title    string
	Today    date.Date
	Projects []ProjectRow
}

// NewProjectList builds the list view. Category names are looked up in
// categories, by id.
func NewProjectList(title string, projects []crowdfund.Project, categories []crowdfund.Category, today date.Date, cur string) *ProjectList {
	names := make(map[int64]string, len(categories))
	for _, c := range categories {
		names[c.ID] = c.Name
	}
	l := &ProjectList{Title: title, Today: today, Projects: make([]ProjectRow, 0, len(projects))}
	for _, p := range projects {
		name, ok := names[p.CategoryID]
		if !ok {
			name = crowdfund.UnknownCategory
		}
		l.Projects = append(l.Projects, newProjectRow(p, name, today, cur))
	}
	return l
}

// TierRow is a reward tier as displayed.
type TierRow struct {
	ID          int64
	Name        string
	Description string
	MinAmount   Money
	Quota       int
	Remaining   int
	Available   bool
}

// ProjectDetail is the full view of a project.
type ProjectDetail struct {
	ProjectRow
	Description string
	CreatedAt   time.Time
	Tiers       []TierRow
	Pledges     crowdfund.PledgeCounts
	Backers     int
}

// NewProjectDetail builds the detail view of a project from its statistics.
func NewProjectDetail(s crowdfund.ProjectStats, category string, tiers []crowdfund.RewardTier, today date.Date, cur string) *ProjectDetail {
	d := &ProjectDetail{
		ProjectRow:  newProjectRow(s.Project, category, today, cur),
		Description: s.Project.Description,
		CreatedAt:   s.Project.CreatedAt,
		Tiers:       make([]TierRow, 0, len(tiers)),
		Pledges:     s.Pledges,
		Backers:     s.Backers,
	}
	for _, t := range tiers {
		d.Tiers = append(d.Tiers, TierRow{
			ID:          t.ID,
			Name:        t.Name,
			Description: t.Description,
			MinAmount:   M(t.MinAmount, cur),
			Quota:       t.Quota,
			Remaining:   t.Remaining,
			Available:   t.IsAvailable(),
		})
	}
	return d
}

// PledgeRow is a ledger record as displayed.
type PledgeRow struct {
	ID        int64
	Backer    int64
	Project   string
	Tier      string // empty without reward tier
	Amount    Money
	Status    crowdfund.Status
	Reason    string
	CreatedAt string
}

func newPledgeRow(p crowdfund.Pledge, cur string) PledgeRow {
	r := PledgeRow{
		ID:        p.ID,
		Backer:    p.BackerID,
		Project:   p.ProjectID,
		Amount:    M(p.Amount, cur),
		Status:    p.Status,
		Reason:    p.Reason,
		CreatedAt: p.CreatedAt.Format(time.DateTime),
	}
	if p.RewardTierID != nil {
		r.Tier = "#" + strconv.FormatInt(*p.RewardTierID, 10)
	}
	return r
}

// PledgeList is a titled list of ledger records.
type PledgeList struct {
	Title   string
	Pledges []PledgeRow
}

// NewPledgeList builds the list view of pledges.
func NewPledgeList(title string, pledges []crowdfund.Pledge, cur string) *PledgeList {
	l := &PledgeList{Title: title, Pledges: make([]PledgeRow, 0, len(pledges))}
	for _, p := range pledges {
		l.Pledges = append(l.Pledges, newPledgeRow(p, cur))
	}
	return l
}

// Admission is the outcome of a pledge submission or check.
type Admission struct {
	Accepted bool
	Checked  bool // validation only, nothing recorded
	Pledge   PledgeRow
	Reason   string
	Warning  string // set when the pledge was recorded but not fully applied
}

// NewAdmission builds the view of a submitted pledge. err is the error
// returned along with an accepted admission, if any.
func NewAdmission(a crowdfund.Admission, err error, cur string) *Admission {
	v := &Admission{Accepted: a.Accepted, Pledge: newPledgeRow(a.Pledge, cur)}
	if a.Reason != nil {
		v.Reason = a.Reason.Error()
	}
	if err != nil {
		v.Warning = err.Error()
	}
	return v
}

// NewCheck builds the view of a validated, but not submitted, pledge.
func NewCheck(req crowdfund.PledgeRequest, reason error, cur string) *Admission {
	v := &Admission{
		Accepted: reason == nil,
		Checked:  true,
		Pledge:   newPledgeRow(crowdfund.Pledge{BackerID: req.BackerID, ProjectID: req.ProjectID, RewardTierID: req.RewardTierID, Amount: req.Amount}, cur),
	}
	if reason != nil {
		v.Reason = reason.Error()
	}
	return v
}

// Stats is the view of the system statistics.
type Stats struct {
	Today        date.Date
	Pledges      crowdfund.PledgeCounts
	Projects     int
	Active       int
	Completed    int
	TotalTarget  Money
	TotalCurrent Money
	Progress     Percent
}

// NewStats builds the view of system statistics.
func NewStats(s crowdfund.SystemStats, today date.Date, cur string) *Stats {
	return &Stats{
		Today:        today,
		Pledges:      s.Pledges,
		Projects:     s.Projects,
		Active:       s.Active,
		Completed:    s.Completed,
		TotalTarget:  M(s.TotalTarget, cur),
		TotalCurrent: M(s.TotalCurrent, cur),
		Progress:     Percent(s.Progress),
	}
}

// BackerSummary is the view of one backer's pledges.
type BackerSummary struct {
	ID       int64
	Username string
	Pledges  crowdfund.PledgeCounts
	Pledged  Money
	Projects int
}

// NewBackerSummary builds the view of a backer's statistics. username may be empty.
func NewBackerSummary(s crowdfund.BackerStats, username, cur string) *BackerSummary {
	return &BackerSummary{ID: s.BackerID, Username: username, Pledges: s.Pledges, Pledged: M(s.Pledged, cur), Projects: s.Projects}
}

// Ranking is the view of the top funded projects.
type Ranking struct {
	Projects []ProjectRow
}

// NewRanking builds the view of ranked projects.
func NewRanking(ranked []crowdfund.RankedProject, today date.Date, cur string) *Ranking {
	r := &Ranking{Projects: make([]ProjectRow, 0, len(ranked))}
	for _, p := range ranked {
		r.Projects = append(r.Projects, newProjectRow(p.Project, p.Category, today, cur))
	}
	return r
}

// AuditReport is the view of an audit.
type AuditReport struct {
	Discrepancies []crowdfund.Discrepancy
}
