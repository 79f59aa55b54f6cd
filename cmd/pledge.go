package cmd

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/etnz/crowdfund"
	"github.com/etnz/crowdfund/renderer"
	"github.com/google/subcommands"
	"github.com/shopspring/decimal"
)

// requestFlags are the flags describing a pledge request.
type requestFlags struct {
	backer   int64
	user     string
	password string
	project  string
	amount   string
	tier     int64
}

func (r *requestFlags) SetFlags(f *flag.FlagSet) {
	f.Int64Var(&r.backer, "backer", 0, "id of the backer making the pledge")
	f.StringVar(&r.user, "user", "", "username of the backer making the pledge, instead of -backer. Requires -password.")
	f.StringVar(&r.password, "password", "", "password of -user")
	f.StringVar(&r.project, "project", "", "id of the project to back")
	f.StringVar(&r.amount, "amount", "", "amount pledged, in the display currency")
	f.Int64Var(&r.tier, "tier", 0, "id of the reward tier to claim, if any")
}

// errUsage marks an invalid command line.
var errUsage = errors.New("usage")

// request returns the pledge request described by the flags.
func (r *requestFlags) request(a *app) (crowdfund.PledgeRequest, error) {
	req := crowdfund.PledgeRequest{BackerID: r.backer, ProjectID: r.project}
	if r.project == "" {
		return req, fmt.Errorf("%w: -project is required", errUsage)
	}
	amount, err := decimal.NewFromString(r.amount)
	if err != nil {
		return req, fmt.Errorf("%w: invalid -amount %q", errUsage, r.amount)
	}
	req.Amount = amount
	if r.tier != 0 {
		req.RewardTierID = crowdfund.Tier(r.tier)
	}

	switch {
	case r.user != "":
		b, err := a.backers.Authenticate(r.user, r.password)
		if err != nil {
			return req, err
		}
		req.BackerID = b.ID
	case r.backer == 0:
		return req, fmt.Errorf("%w: -backer or -user is required", errUsage)
	}
	return req, nil
}

// failure prints err and returns the matching exit status.
func failure(err error) subcommands.ExitStatus {
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	if errors.Is(err, errUsage) {
		return subcommands.ExitUsageError
	}
	return subcommands.ExitFailure
}

type pledgeCmd struct {
	requestFlags
}

func (*pledgeCmd) Name() string     { return "pledge" }
func (*pledgeCmd) Synopsis() string { return "submit a pledge" }
func (*pledgeCmd) Usage() string {
	return `cfd pledge (-backer <id> | -user <name> -password <pw>) -project <id> -amount <amount> [-tier <id>]

  Submits a pledge. The pledge is validated against its project and reward
  tier, then recorded in the ledger whatever the outcome. An accepted pledge
  raises the project funding and claims one unit of the reward tier.

  Exits with a failure status when the pledge is rejected.

Usage Examples:
$ cfd pledge -backer 1 -project P1 -amount 60 -tier 1
`
}

func (c *pledgeCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	a, err := openApp()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening store: %v\n", err)
		return subcommands.ExitFailure
	}
	req, err := c.request(a)
	if err != nil {
		return failure(err)
	}

	admission, err := a.engine.Submit(req)
	if err != nil && !errors.Is(err, crowdfund.ErrIntegrity) {
		return failure(err)
	}
	printMarkdown(renderer.RenderAdmission(renderer.NewAdmission(admission, err, *currency)))
	if err != nil || !admission.Accepted {
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}

type checkCmd struct {
	requestFlags
}

func (*checkCmd) Name() string     { return "check" }
func (*checkCmd) Synopsis() string { return "check whether a pledge would be accepted, without recording it" }
func (*checkCmd) Usage() string {
	return `cfd check (-backer <id> | -user <name> -password <pw>) -project <id> -amount <amount> [-tier <id>]

  Applies the same rules as 'cfd pledge' but records nothing.

  Exits with a failure status when the pledge would be rejected.
`
}

func (c *checkCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	a, err := openApp()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening store: %v\n", err)
		return subcommands.ExitFailure
	}
	req, err := c.request(a)
	if err != nil {
		return failure(err)
	}

	reason := a.engine.Validate(req)
	if reason != nil && !crowdfund.IsRejection(reason) {
		return failure(reason)
	}
	printMarkdown(renderer.RenderAdmission(renderer.NewCheck(req, reason, *currency)))
	if reason != nil {
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}
