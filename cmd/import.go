package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/etnz/crowdfund"
	"github.com/google/subcommands"
)

type importCmd struct {
	paths crowdfund.SeedPaths
}

func (*importCmd) Name() string     { return "import" }
func (*importCmd) Synopsis() string { return "import categories, projects and reward tiers from a JSON document" }
func (*importCmd) Usage() string {
	return `cfd import [-categories <path>] [-projects <path>] [-rewards <path>] <seed.json>

  Creates the categories, projects and reward tiers described in a JSON
  document. Each section is located with a jsonpath expression, by default:

    {"categories": [...], "projects": [...], "rewards": [...]}

  Records use the same fields as the collection files. Projects start with
  no funding and reward tiers with their full quota.

Usage Examples:
$ cfd import seed.json
$ cfd import -projects '$.data.items' -categories '' -rewards '' export.json
`
}

func (c *importCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.paths.Categories, "categories", seedPaths.Categories, "jsonpath of the categories, empty to skip them")
	f.StringVar(&c.paths.Projects, "projects", seedPaths.Projects, "jsonpath of the projects, empty to skip them")
	f.StringVar(&c.paths.Rewards, "rewards", seedPaths.Rewards, "jsonpath of the reward tiers, empty to skip them")
}

func (c *importCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "Error: import requires exactly one seed file")
		return subcommands.ExitUsageError
	}
	a, err := openApp()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening store: %v\n", err)
		return subcommands.ExitFailure
	}

	file, err := os.Open(f.Arg(0))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening seed: %v\n", err)
		return subcommands.ExitFailure
	}
	defer file.Close()

	report, err := crowdfund.ImportSeed(file, a.catalog, a.registry, c.paths)
	fmt.Fprintf(stdout, "Imported %d categories, %d projects, %d reward tiers.\n", report.Categories, report.Projects, report.Rewards)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error importing %q: %v\n", f.Arg(0), err)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}
