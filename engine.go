package crowdfund

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/etnz/crowdfund/date"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
)

// PledgeRequest is a backer's request to pledge Amount to a project,
// optionally claiming a reward tier.
type PledgeRequest struct {
	BackerID     int64
	ProjectID    string
	Amount       decimal.Decimal
	RewardTierID *int64
}

// Tier returns a reward tier reference for a PledgeRequest.
func Tier(id int64) *int64 { return &id }

// Admission is the outcome of Engine.Submit.
type Admission struct {
	Accepted bool
	Pledge   Pledge // the ledger record, with its assigned id.
	Reason   error  // the rejection reason, nil when accepted.
}

// Engine admits pledges: it validates them against the catalog and the
// registry, records them in the ledger, and applies their effects.
//
// All the work for a project runs under a lock dedicated to that project id,
// so checking a tier quota and claiming it cannot interleave with another
// pledge to the same project. Tiers belong to a single project, so they are
// covered by the same lock.
type Engine struct {
	catalog  *Catalog
	registry *Registry
	ledger   *Ledger
	now      func() time.Time

	locks keyedMutex
}

// Option configures an Engine.
type Option func(*Engine)

// WithClock sets the function used to read the current time. The current
// day, in the time location, decides whether a project is expired.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// NewEngine returns an engine over the given components.
func NewEngine(catalog *Catalog, registry *Registry, ledger *Ledger, opts ...Option) *Engine {
	e := &Engine{catalog: catalog, registry: registry, ledger: ledger, now: time.Now}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Validate checks whether req would be accepted, without recording anything.
//
// It returns nil when the pledge is eligible, a rejection (see IsRejection)
// when it is not, or an ErrStorageFailure. Given the same stores it takes the
// same decision as Submit.
func (e *Engine) Validate(req PledgeRequest) error {
	unlock := e.locks.Lock(req.ProjectID)
	defer unlock()
	_, _, err := e.check(req, date.Of(e.now()))
	return err
}

// Submit admits or rejects req, and records the attempt in the ledger.
//
// Validation failures are not errors: the returned Admission is not accepted,
// carries the reason and the REJECTED ledger record, and no other store is
// touched. An error is returned only when the stores fail; in that case
// nothing is recorded as rejected.
//
// An accepted pledge is recorded first, then the project funding and the tier
// quota are updated. If one of these updates fails the pledge stays recorded
// (there is no rollback): Submit returns the accepted Admission along with an
// error wrapping ErrIntegrity.
func (e *Engine) Submit(req PledgeRequest) (Admission, error) {
	unlock := e.locks.Lock(req.ProjectID)
	defer unlock()

	now := e.now()
	project, tier, reason := e.check(req, date.Of(now))
	if reason != nil && !IsRejection(reason) {
		return Admission{}, reason
	}

	pledge := Pledge{
		BackerID:     req.BackerID,
		ProjectID:    req.ProjectID,
		RewardTierID: cloneID(req.RewardTierID),
		Amount:       req.Amount,
		CreatedAt:    now.UTC(),
	}
	fields := log.Fields{"backer": req.BackerID, "project": req.ProjectID, "amount": req.Amount.String()}
	if req.RewardTierID != nil {
		fields["tier"] = *req.RewardTierID
	}

	if reason != nil {
		pledge.Status = Rejected
		pledge.Reason = reason.Error()
		id, err := e.ledger.Append(pledge)
		if err != nil {
			return Admission{}, fmt.Errorf("%w: cannot record rejected pledge: %w", ErrStorageFailure, err)
		}
		pledge.ID = id
		log.WithFields(fields).WithField("pledge", id).Infof("pledge rejected: %v", reason)
		return Admission{Pledge: pledge, Reason: reason}, nil
	}

	pledge.Status = Success
	id, err := e.ledger.Append(pledge)
	if err != nil {
		return Admission{}, fmt.Errorf("%w: cannot record pledge: %w", ErrStorageFailure, err)
	}
	pledge.ID = id
	admission := Admission{Accepted: true, Pledge: pledge}

	var errs error
	if _, err := e.catalog.ApplyFundingDelta(project.ID, req.Amount); err != nil {
		errs = errors.Join(errs, fmt.Errorf("%w: funding of project %q: %w", ErrStorageFailure, project.ID, err))
	}
	if tier != nil {
		claimed, err := e.registry.DecrementQuota(tier.ID)
		switch {
		case err != nil:
			errs = errors.Join(errs, fmt.Errorf("%w: quota of reward tier %d: %w", ErrStorageFailure, tier.ID, err))
		case !claimed:
			errs = errors.Join(errs, fmt.Errorf("reward tier %d was exhausted before it could be claimed", tier.ID))
		}
	}
	if errs != nil {
		log.WithFields(fields).WithFields(log.Fields{"pledge": id, "integrity": true}).
			Warnf("pledge recorded but not fully applied: %v", errs)
		return admission, fmt.Errorf("%w: pledge %d: %w", ErrIntegrity, id, errs)
	}

	log.WithFields(fields).WithField("pledge", id).Info("pledge accepted")
	return admission, nil
}

// check applies the admission rules in their fixed order and returns the
// first failure. On success it returns the project and the selected tier, if any.
func (e *Engine) check(req PledgeRequest, today date.Date) (Project, *RewardTier, error) {
	project, ok, err := e.catalog.Get(req.ProjectID)
	if err != nil {
		return project, nil, fmt.Errorf("%w: reading project %q: %w", ErrStorageFailure, req.ProjectID, err)
	}
	if !ok {
		return project, nil, fmt.Errorf("%w: %q", ErrProjectNotFound, req.ProjectID)
	}
	if !project.IsActive(today) {
		return project, nil, fmt.Errorf("%w: %q closed on %s", ErrProjectExpired, project.ID, project.Deadline)
	}
	if !req.Amount.IsPositive() {
		return project, nil, fmt.Errorf("%w: amount must be positive, got %s", ErrInvalidAmount, req.Amount)
	}
	if req.RewardTierID == nil {
		return project, nil, nil
	}

	tierID := *req.RewardTierID
	tier, ok, err := e.registry.Get(tierID)
	if err != nil {
		return project, nil, fmt.Errorf("%w: reading reward tier %d: %w", ErrStorageFailure, tierID, err)
	}
	if !ok {
		return project, nil, fmt.Errorf("%w: %d", ErrRewardTierNotFound, tierID)
	}
	if tier.ProjectID != project.ID {
		return project, nil, fmt.Errorf("%w: tier %d belongs to %q, not %q", ErrRewardTierMismatch, tierID, tier.ProjectID, project.ID)
	}
	if !tier.IsAvailable() {
		return project, nil, fmt.Errorf("%w: no unit left of %q (quota %d)", ErrRewardTierExhausted, tier.Name, tier.Quota)
	}
	if req.Amount.LessThan(tier.MinAmount) {
		return project, nil, fmt.Errorf("%w: %q requires at least %s, got %s", ErrAmountBelowTierMinimum, tier.Name, tier.MinAmount, req.Amount)
	}
	return project, &tier, nil
}

func cloneID(id *int64) *int64 {
	if id == nil {
		return nil
	}
	v := *id
	return &v
}

// keyedMutex is a set of mutexes indexed by key. Unused mutexes are released.
type keyedMutex struct {
	mu    sync.Mutex
	locks map[string]*refMutex
}

type refMutex struct {
	sync.Mutex
	refs int
}

// Lock locks the mutex for key and returns the function that unlocks it.
func (k *keyedMutex) Lock(key string) (unlock func()) {
	k.mu.Lock()
	if k.locks == nil {
		k.locks = make(map[string]*refMutex)
	}
	m, ok := k.locks[key]
	if !ok {
		m = new(refMutex)
		k.locks[key] = m
	}
	m.refs++
	k.mu.Unlock()

	m.Lock()
	return func() {
		m.Unlock()
		k.mu.Lock()
		m.refs--
		if m.refs == 0 {
			delete(k.locks, key)
		}
		k.mu.Unlock()
	}
}
