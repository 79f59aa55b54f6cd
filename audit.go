package crowdfund

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Discrepancy is a stored value that does not match its derivation from the ledger.
type Discrepancy struct {
	Kind    string // "project" or "reward"
	ID      string
	Stored  decimal.Decimal
	Derived decimal.Decimal
}

func (d Discrepancy) String() string {
	return fmt.Sprintf("%s %s: stored %s, ledger says %s", d.Kind, d.ID, d.Stored, d.Derived)
}

// Audit re-derives every project current amount and every tier remaining
// quota from the ledger and reports the values that differ from the stored ones.
//
// A project current amount must be the sum of its SUCCESS pledges. A tier
// remaining quota must be its quota minus the number of SUCCESS pledges that
// selected it, and never negative.
func Audit(catalog *Catalog, registry *Registry, ledger *Ledger) ([]Discrepancy, error) {
	successful, err := ledger.ListByStatus(Success)
	if err != nil {
		return nil, err
	}
	funded := make(map[string]decimal.Decimal)
	claimed := make(map[int64]int)
	for _, p := range successful {
		funded[p.ProjectID] = funded[p.ProjectID].Add(p.Amount)
		if p.RewardTierID != nil {
			claimed[*p.RewardTierID]++
		}
	}

	var found []Discrepancy
	projects, err := catalog.List()
	if err != nil {
		return nil, err
	}
	for _, p := range projects {
		if derived := funded[p.ID]; !derived.Equal(p.Current) {
			found = append(found, Discrepancy{Kind: "project", ID: p.ID, Stored: p.Current, Derived: derived})
		}
	}

	tiers, err := registry.List()
	if err != nil {
		return nil, err
	}
	for _, t := range tiers {
		derived := t.Quota - claimed[t.ID]
		if derived != t.Remaining || t.Remaining < 0 {
			found = append(found, Discrepancy{
				Kind:    "reward",
				ID:      fmt.Sprint(t.ID),
				Stored:  decimal.NewFromInt(int64(t.Remaining)),
				Derived: decimal.NewFromInt(int64(derived)),
			})
		}
	}
	return found, nil
}
