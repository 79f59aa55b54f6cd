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

type projectsCmd struct {
	category int64
	search   string
	active   bool
	sort     string
}

func (*projectsCmd) Name() string     { return "projects" }
func (*projectsCmd) Synopsis() string { return "list projects" }
func (*projectsCmd) Usage() string {
	return `cfd projects [-category <id>] [-search <text>] [-active] [-sort newest|deadline|funding]

  Lists projects with their funding progress and deadline. Filters combine.
`
}

func (c *projectsCmd) SetFlags(f *flag.FlagSet) {
	f.Int64Var(&c.category, "category", 0, "only list the projects of this category id")
	f.StringVar(&c.search, "search", "", "only list the projects whose name contains this text, ignoring case")
	f.BoolVar(&c.active, "active", false, "only list the projects still accepting pledges")
	f.StringVar(&c.sort, "sort", "newest", "sort order: newest, deadline or funding")
}

func (c *projectsCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	order, err := crowdfund.ParseSortOrder(c.sort)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitUsageError
	}
	a, err := openApp()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening store: %v\n", err)
		return subcommands.ExitFailure
	}
	today := date.Today()

	var list []crowdfund.Project
	title := "Projects"
	switch {
	case c.search != "":
		list, err = a.catalog.SearchByName(c.search)
		title = fmt.Sprintf("Projects matching %q", c.search)
	case c.category != 0:
		list, err = a.catalog.ListByCategory(c.category)
	case c.active:
		list, err = a.catalog.ListActive(today)
	default:
		list, err = a.catalog.List()
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error listing projects: %v\n", err)
		return subcommands.ExitFailure
	}

	// Filters not used for the query above.
	kept := list[:0]
	for _, p := range list {
		if c.category != 0 && p.CategoryID != c.category {
			continue
		}
		if c.active && !p.IsActive(today) {
			continue
		}
		kept = append(kept, p)
	}
	if c.active {
		title = "Active " + title
	}
	crowdfund.SortProjects(kept, order)

	categories, err := a.catalog.Categories()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error listing categories: %v\n", err)
		return subcommands.ExitFailure
	}
	printMarkdown(renderer.RenderProjectList(renderer.NewProjectList(title, kept, categories, today, *currency)))
	return subcommands.ExitSuccess
}
