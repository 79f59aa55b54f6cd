package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/etnz/crowdfund"
	"github.com/etnz/crowdfund/renderer"
	"github.com/google/subcommands"
	log "github.com/sirupsen/logrus"
)

type auditCmd struct{}

func (*auditCmd) Name() string     { return "audit" }
func (*auditCmd) Synopsis() string { return "check project funding and reward quotas against the ledger" }
func (*auditCmd) Usage() string {
	return `cfd audit

  Recomputes every project funding and every reward tier remaining quota from
  the successful pledges of the ledger, and lists the stored values that
  differ. A difference is left by a pledge recorded but not fully applied.

  Exits with a failure status when a difference is found.
`
}

func (*auditCmd) SetFlags(f *flag.FlagSet) {}

func (*auditCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	a, err := openApp()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening store: %v\n", err)
		return subcommands.ExitFailure
	}
	found, err := crowdfund.Audit(a.catalog, a.registry, a.ledger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error auditing: %v\n", err)
		return subcommands.ExitFailure
	}
	for _, d := range found {
		log.WithField("integrity", true).Warn(d.String())
	}
	printMarkdown(renderer.RenderAudit(&renderer.AuditReport{Discrepancies: found}))
	if len(found) > 0 {
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}
