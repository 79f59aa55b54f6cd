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

type topCmd struct {
	n int
}

func (*topCmd) Name() string     { return "top" }
func (*topCmd) Synopsis() string { return "list the most funded projects" }
func (*topCmd) Usage() string {
	return `cfd top [-n <count>]

  Lists the projects with the largest funding, with their category.
`
}

func (c *topCmd) SetFlags(f *flag.FlagSet) {
	f.IntVar(&c.n, "n", 10, "number of projects to list, 0 for all")
}

func (c *topCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	a, err := openApp()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening store: %v\n", err)
		return subcommands.ExitFailure
	}
	ranked, err := crowdfund.NewAggregator(a.catalog, a.ledger).Top(c.n)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error ranking projects: %v\n", err)
		return subcommands.ExitFailure
	}
	printMarkdown(renderer.RenderRanking(renderer.NewRanking(ranked, date.Today(), *currency)))
	return subcommands.ExitSuccess
}
