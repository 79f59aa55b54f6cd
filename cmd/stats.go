package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/etnz/crowdfund"
	"github.com/etnz/crowdfund/date"
	"github.com/etnz/crowdfund/renderer"
	"github.com/google/subcommands"
)

type statsCmd struct {
	backer int64
}

func (*statsCmd) Name() string     { return "stats" }
func (*statsCmd) Synopsis() string { return "display pledge and funding statistics" }
func (*statsCmd) Usage() string {
	return `cfd stats [-backer <id>]

  Displays the system statistics: pledges by outcome, active and completed
  projects, and the overall funding. With -backer, displays the statistics
  of a single backer instead.
`
}

func (c *statsCmd) SetFlags(f *flag.FlagSet) {
	f.Int64Var(&c.backer, "backer", 0, "display the statistics of this backer")
}

func (c *statsCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	a, err := openApp()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening store: %v\n", err)
		return subcommands.ExitFailure
	}
	agg := crowdfund.NewAggregator(a.catalog, a.ledger)

	if c.backer != 0 {
		s, err := agg.Backer(c.backer)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error computing backer statistics: %v\n", err)
			return subcommands.ExitFailure
		}
		b, _, err := a.backers.Get(c.backer)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error reading backer: %v\n", err)
			return subcommands.ExitFailure
		}
		printMarkdown(renderer.RenderBackerSummary(renderer.NewBackerSummary(s, b.Username, *currency)))
		return subcommands.ExitSuccess
	}

	today := date.Today()
	s, err := agg.System(today)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error computing statistics: %v\n", err)
		return subcommands.ExitFailure
	}
	printMarkdown(renderer.RenderStats(renderer.NewStats(s, today, *currency)))
	return subcommands.ExitSuccess
}
