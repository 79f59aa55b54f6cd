package crowdfund

import (
	"errors"
	"fmt"
)

// Ledger is the append-only record of every pledge attempt, successful or
// rejected. It is the source of truth for audits and statistics.
//
// Pledges are listed in id order, which is also their recording order.
type Ledger struct {
	pledges Repository[int64, Pledge]
}

// NewLedger returns a ledger over the given collection.
func NewLedger(pledges Repository[int64, Pledge]) *Ledger {
	return &Ledger{pledges: pledges}
}

// Append records a new pledge and returns the id assigned to it. Ids are
// strictly increasing, starting at 1 for an empty ledger.
func (l *Ledger) Append(p Pledge) (int64, error) {
	if p.ID != 0 {
		return 0, fmt.Errorf("pledge already has id %d: the ledger assigns ids", p.ID)
	}
	if p.Status != Success && p.Status != Rejected {
		return 0, fmt.Errorf("invalid pledge status %q", p.Status)
	}
	if p.Status == Success && !p.Amount.IsPositive() {
		return 0, errors.New("a successful pledge must have a positive amount")
	}
	rec, err := l.pledges.Insert(p)
	if err != nil {
		return 0, err
	}
	return rec.ID, nil
}

// Get returns the pledge with this id, and false if there is none.
func (l *Ledger) Get(id int64) (Pledge, bool, error) { return l.pledges.Get(id) }

// Pledges returns the pledges accepted by all filters.
func (l *Ledger) Pledges(filters ...func(Pledge) bool) ([]Pledge, error) {
	return l.pledges.List(func(p Pledge) bool {
		for _, accept := range filters {
			if !accept(p) {
				return false
			}
		}
		return true
	})
}

// All returns every pledge.
func (l *Ledger) All() ([]Pledge, error) { return l.Pledges() }

// ListByBacker returns the pledges of a backer.
func (l *Ledger) ListByBacker(id int64) ([]Pledge, error) { return l.Pledges(ByBacker(id)) }

// ListByProject returns the pledges made to a project.
func (l *Ledger) ListByProject(id string) ([]Pledge, error) { return l.Pledges(ByProject(id)) }

// ListByStatus returns the pledges with the given outcome.
func (l *Ledger) ListByStatus(status Status) ([]Pledge, error) { return l.Pledges(ByStatus(status)) }

// ListSuccessfulByProject returns the accepted pledges of a project.
func (l *Ledger) ListSuccessfulByProject(id string) ([]Pledge, error) {
	return l.Pledges(ByProject(id), ByStatus(Success))
}

// ListRejectedByProject returns the rejected pledges of a project.
func (l *Ledger) ListRejectedByProject(id string) ([]Pledge, error) {
	return l.Pledges(ByProject(id), ByStatus(Rejected))
}

// ByBacker returns a filter that accepts pledges made by a backer.
func ByBacker(id int64) func(Pledge) bool {
	return func(p Pledge) bool { return p.BackerID == id }
}

// ByProject returns a filter that accepts pledges made to a project.
func ByProject(id string) func(Pledge) bool {
	return func(p Pledge) bool { return p.ProjectID == id }
}

// ByStatus returns a filter that accepts pledges with the given status.
func ByStatus(status Status) func(Pledge) bool {
	return func(p Pledge) bool { return p.Status == status }
}

// ByRewardTier returns a filter that accepts pledges selecting a reward tier.
func ByRewardTier(id int64) func(Pledge) bool {
	return func(p Pledge) bool { return p.RewardTierID != nil && *p.RewardTierID == id }
}
