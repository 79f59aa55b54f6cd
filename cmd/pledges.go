package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/etnz/crowdfund"
	"github.com/etnz/crowdfund/renderer"
	"github.com/google/subcommands"
)

type pledgesCmd struct {
	project string
	backer  int64
	status  string
	tier    int64
}

func (*pledgesCmd) Name() string     { return "pledges" }
func (*pledgesCmd) Synopsis() string { return "list the pledges recorded in the ledger" }
func (*pledgesCmd) Usage() string {
	return `cfd pledges [-project <id>] [-backer <id>] [-status success|rejected] [-tier <id>]

  Lists ledger records, accepted and rejected, in recording order. Filters combine.
`
}

func (c *pledgesCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.project, "project", "", "only list the pledges to this project")
	f.Int64Var(&c.backer, "backer", 0, "only list the pledges of this backer")
	f.StringVar(&c.status, "status", "", "only list the pledges with this status")
	f.Int64Var(&c.tier, "tier", 0, "only list the pledges selecting this reward tier")
}

func (c *pledgesCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	var filters []func(crowdfund.Pledge) bool
	var title []string
	if c.status != "" {
		status, err := crowdfund.ParseStatus(c.status)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return subcommands.ExitUsageError
		}
		filters = append(filters, crowdfund.ByStatus(status))
		title = append(title, strings.ToLower(string(status)))
	}
	if c.project != "" {
		filters = append(filters, crowdfund.ByProject(c.project))
		title = append(title, "to "+c.project)
	}
	if c.backer != 0 {
		filters = append(filters, crowdfund.ByBacker(c.backer))
		title = append(title, fmt.Sprintf("by backer #%d", c.backer))
	}
	if c.tier != 0 {
		filters = append(filters, crowdfund.ByRewardTier(c.tier))
		title = append(title, fmt.Sprintf("for reward tier #%d", c.tier))
	}

	a, err := openApp()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening store: %v\n", err)
		return subcommands.ExitFailure
	}
	pledges, err := a.ledger.Pledges(filters...)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error listing pledges: %v\n", err)
		return subcommands.ExitFailure
	}
	printMarkdown(renderer.RenderPledgeList(renderer.NewPledgeList(strings.Join(append([]string{"Pledges"}, title...), " "), pledges, *currency)))
	return subcommands.ExitSuccess
}
