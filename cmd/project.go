package cmd

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/etnz/crowdfund"
	"github.com/etnz/crowdfund/date"
	"github.com/etnz/crowdfund/renderer"
	"github.com/google/subcommands"
)

type projectCmd struct{}

func (*projectCmd) Name() string     { return "project" }
func (*projectCmd) Synopsis() string { return "display a project, its reward tiers and pledges" }
func (*projectCmd) Usage() string {
	return `cfd project <id>

  Displays a project with its funding progress, its reward tiers and the
  count of pledges it received.
`
}

func (*projectCmd) SetFlags(f *flag.FlagSet) {}

func (*projectCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "Error: project requires exactly one project id")
		return subcommands.ExitUsageError
	}
	id := f.Arg(0)
	a, err := openApp()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening store: %v\n", err)
		return subcommands.ExitFailure
	}
	today := date.Today()

	stats, err := crowdfund.NewAggregator(a.catalog, a.ledger).Project(id, today)
	if errors.Is(err, crowdfund.ErrProjectNotFound) {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error computing project statistics: %v\n", err)
		return subcommands.ExitFailure
	}
	tiers, err := a.registry.ListByProject(id)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error listing reward tiers: %v\n", err)
		return subcommands.ExitFailure
	}
	category, err := a.categoryName(stats.Project.CategoryID)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading category: %v\n", err)
		return subcommands.ExitFailure
	}
	printMarkdown(renderer.RenderProjectDetail(renderer.NewProjectDetail(stats, category, tiers, today, *currency)))
	return subcommands.ExitSuccess
}
