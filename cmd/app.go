// Package cmd implements the CLI application to run a crowdfunding ledger.
package cmd

import (
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/glamour"
	"github.com/etnz/crowdfund"
	"github.com/google/subcommands"
	log "github.com/sirupsen/logrus"
)

// as a CLI application, it has a very short lived lifecycle, so it is ok to use global variables.

var dataDir = flag.String("data-dir", ".crowdfund", "Path to the folder holding the collection files (JSONL format)")
var configFile = flag.String("config", "cfd.toml", "Path to a TOML configuration file. A missing default file is ignored.")
var currency = flag.String("currency", "USD", "Currency used to display amounts")
var Debug = flag.Bool("debug", false, "Log debug messages")
var raw = flag.Bool("raw", false, "Print markdown as is, without terminal formatting")

// stdout receives the command outputs.
var stdout io.Writer = os.Stdout

// commands lists the subcommands by group.
var commands = []struct {
	group string
	cmd   subcommands.Command
}{
	{"setup", &importCmd{}},
	{"setup", &registerCmd{}},

	{"projects", &projectsCmd{}},
	{"projects", &projectCmd{}},
	{"projects", &topCmd{}},
	{"projects", &statsCmd{}},

	{"pledges", &pledgeCmd{}},
	{"pledges", &checkCmd{}},
	{"pledges", &pledgesCmd{}},
	{"pledges", &auditCmd{}},

	{"help", &topicCmd{}},
}

// Commands returns all the subcommands.
func Commands() []subcommands.Command {
	list := make([]subcommands.Command, 0, len(commands))
	for _, c := range commands {
		list = append(list, c.cmd)
	}
	return list
}

// Register the subcommands.
// A main package will call Register() to allow subcommands, and Execute() on the user-selected one.
func Register(c *subcommands.Commander) {
	for _, x := range commands {
		c.Register(x.cmd, x.group)
	}
}

// app gathers the components over the data directory.
type app struct {
	store    *crowdfund.Store
	catalog  *crowdfund.Catalog
	registry *crowdfund.Registry
	ledger   *crowdfund.Ledger
	engine   *crowdfund.Engine
	backers  *crowdfund.Backers
}

// openApp opens the store in the data directory and builds its components.
func openApp() (*app, error) {
	store, err := crowdfund.Open(*dataDir)
	if err != nil {
		return nil, err
	}
	a := &app{
		store:    store,
		catalog:  store.Catalog(),
		registry: store.Registry(),
		ledger:   store.Ledger(),
		backers:  crowdfund.NewBackers(store.Backers),
	}
	a.engine = crowdfund.NewEngine(a.catalog, a.registry, a.ledger)
	log.WithField("dir", *dataDir).Debug("store opened")
	return a, nil
}

// categoryName returns the name of a category, or crowdfund.UnknownCategory.
func (a *app) categoryName(id int64) (string, error) {
	c, ok, err := a.catalog.Category(id)
	if err != nil || !ok {
		return crowdfund.UnknownCategory, err
	}
	return c.Name, nil
}

// printMarkdown prints md, formatted for the terminal unless -raw is set.
func printMarkdown(md string) {
	if *raw {
		fmt.Fprint(stdout, md)
		return
	}
	out, err := glamour.Render(md, "auto")
	if err != nil {
		log.Debugf("cannot format markdown: %v", err)
		fmt.Fprint(stdout, md)
		return
	}
	fmt.Fprint(stdout, out)
}
