package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/etnz/crowdfund/date"
	"github.com/google/subcommands"
)

// run executes a subcommand with its own arguments.
func run(t *testing.T, c subcommands.Command, args ...string) subcommands.ExitStatus {
	t.Helper()
	f := flag.NewFlagSet(c.Name(), flag.ContinueOnError)
	c.SetFlags(f)
	if err := f.Parse(args); err != nil {
		t.Fatalf("%s %v: %v", c.Name(), args, err)
	}
	return c.Execute(context.Background(), f)
}

func TestCommands(t *testing.T) {
	dir := t.TempDir()
	out := withGlobals(t, filepath.Join(dir, "data"), "USD")

	deadline := date.Today().Add(30)
	seed := fmt.Sprintf(`{
  "categories": [{"id": 1, "name": "Games"}],
  "projects": [
    {"id": "P1", "name": "Board game", "target": 1000, "deadline": %q, "category": 1},
    {"id": "P2", "name": "Old watch", "target": 100, "deadline": "2020-01-01"}
  ],
  "rewards": [{"project": "P1", "name": "Early bird", "minAmount": 50, "quota": 1}]
}`, deadline.String())
	seedFile := filepath.Join(dir, "seed.json")
	if err := os.WriteFile(seedFile, []byte(seed), 0644); err != nil {
		t.Fatal(err)
	}

	steps := []struct {
		name string
		cmd  subcommands.Command
		args []string
		want subcommands.ExitStatus
		out  []string
	}{
		{"import", &importCmd{}, []string{seedFile}, subcommands.ExitSuccess, []string{"Imported 1 categories, 2 projects, 1 reward tiers."}},
		{"import usage", &importCmd{}, nil, subcommands.ExitUsageError, nil},
		{"register", &registerCmd{}, []string{"-username", "alice", "-email", "alice@example.com", "-password", "pw"}, subcommands.ExitSuccess, []string{`Registered backer #1 "alice".`}},
		{"register twice", &registerCmd{}, []string{"-username", "Alice", "-email", "a2@example.com", "-password", "pw"}, subcommands.ExitFailure, nil},
		{"check eligible", &checkCmd{}, []string{"-backer", "2", "-project", "P1", "-amount", "60", "-tier", "1"}, subcommands.ExitSuccess, []string{"# Pledge eligible"}},
		{"pledge with password", &pledgeCmd{}, []string{"-user", "alice", "-password", "pw", "-project", "P1", "-amount", "60", "-tier", "1"}, subcommands.ExitSuccess, []string{"# Pledge #1 accepted", "- Backer: 1", "- Amount: $60.00"}},
		{"pledge wrong password", &pledgeCmd{}, []string{"-user", "alice", "-password", "nope", "-project", "P1", "-amount", "60"}, subcommands.ExitFailure, nil},
		{"pledge exhausted", &pledgeCmd{}, []string{"-backer", "2", "-project", "P1", "-amount", "60", "-tier", "1"}, subcommands.ExitFailure, []string{"# Pledge #2 rejected", "reward tier exhausted"}},
		{"pledge expired", &pledgeCmd{}, []string{"-backer", "2", "-project", "P2", "-amount", "5"}, subcommands.ExitFailure, []string{"# Pledge #3 rejected", "project expired"}},
		{"pledge bad amount", &pledgeCmd{}, []string{"-backer", "2", "-project", "P1", "-amount", "ten"}, subcommands.ExitUsageError, nil},
		{"pledge no backer", &pledgeCmd{}, []string{"-project", "P1", "-amount", "10"}, subcommands.ExitUsageError, nil},
		{"check not eligible", &checkCmd{}, []string{"-backer", "2", "-project", "P1", "-amount", "-1"}, subcommands.ExitFailure, []string{"# Pledge not eligible", "invalid amount"}},
		{"pledges", &pledgesCmd{}, []string{"-project", "P1"}, subcommands.ExitSuccess, []string{"| 1 | 1 | P1 | #1 | $60.00 | SUCCESS |", "| 2 | 2 | P1 | #1 | $60.00 | REJECTED |"}},
		{"pledges rejected", &pledgesCmd{}, []string{"-status", "rejected", "-backer", "2"}, subcommands.ExitSuccess, []string{"| 2 |", "| 3 |"}},
		{"pledges bad status", &pledgesCmd{}, []string{"-status", "pending"}, subcommands.ExitUsageError, nil},
		{"project", &projectCmd{}, []string{"P1"}, subcommands.ExitSuccess, []string{"# Board game (P1)", "- Funded: $60.00 of $1,000.00 (6.0%)", "| 1 | Early bird | $50.00 | sold out |", "- Backers: 1"}},
		{"unknown project", &projectCmd{}, []string{"P9"}, subcommands.ExitFailure, nil},
		{"projects", &projectsCmd{}, []string{"-sort", "funding"}, subcommands.ExitSuccess, []string{"| P1 | Board game | Games | $60.00 |", "| P2 | Old watch | Unknown | $0.00 |"}},
		{"active projects", &projectsCmd{}, []string{"-active"}, subcommands.ExitSuccess, []string{"# Active Projects", "| P1 |"}},
		{"search", &projectsCmd{}, []string{"-search", "WATCH"}, subcommands.ExitSuccess, []string{"| P2 |"}},
		{"bad sort", &projectsCmd{}, []string{"-sort", "popular"}, subcommands.ExitUsageError, nil},
		{"top", &topCmd{}, []string{"-n", "1"}, subcommands.ExitSuccess, []string{"| P1 | Board game | Games |"}},
		{"stats", &statsCmd{}, nil, subcommands.ExitSuccess, []string{"- Total: 3", "- Successful: 1", "- Rejected: 2", "- Completed: 1"}},
		{"backer stats", &statsCmd{}, []string{"-backer", "1"}, subcommands.ExitSuccess, []string{"# Backer alice (#1)", "- Pledged: $60.00 to 1 project(s)"}},
		{"audit", &auditCmd{}, nil, subcommands.ExitSuccess, []string{"The ledger and the stores agree."}},
	}
	for _, s := range steps {
		out.Reset()
		if got := run(t, s.cmd, s.args...); got != s.want {
			t.Errorf("%s: exit status = %v, want %v\n%s", s.name, got, s.want, out)
		}
		for _, want := range s.out {
			if !strings.Contains(out.String(), want) {
				t.Errorf("%s: output missing %q:\n%s", s.name, want, out)
			}
		}
	}
	// P2 is excluded from active projects.
	out.Reset()
	run(t, &projectsCmd{}, "-active")
	if strings.Contains(out.String(), "| P2 |") {
		t.Errorf("active projects list P2:\n%s", out)
	}
}

func TestCommands_AuditDrift(t *testing.T) {
	dir := t.TempDir()
	out := withGlobals(t, dir, "USD")

	deadline := date.Today().Add(3)
	projects := fmt.Sprintf(`{"id":"P1","name":"a","target":100,"current":40,"deadline":%q,"category":0}`+"\n", deadline.String())
	if err := os.WriteFile(filepath.Join(dir, "projects.jsonl"), []byte(projects), 0644); err != nil {
		t.Fatal(err)
	}
	if got := run(t, &auditCmd{}); got != subcommands.ExitFailure {
		t.Errorf("audit exit status = %v, want %v", got, subcommands.ExitFailure)
	}
	if !strings.Contains(out.String(), "| project P1 | 40 | 0 |") {
		t.Errorf("audit output:\n%s", out)
	}
}

func TestCompletion(t *testing.T) {
	global := globalFlags(t)
	global.Bool("raw", false, "")
	c := Completion(global)
	for _, sub := range Commands() {
		if _, ok := c.Sub[sub.Name()]; !ok {
			t.Errorf("Completion() misses subcommand %q", sub.Name())
		}
	}
	for _, name := range []string{"data-dir", "config", "currency", "debug", "raw"} {
		if _, ok := c.Flags[name]; !ok {
			t.Errorf("Completion() misses global flag %q", name)
		}
	}
	for _, name := range []string{"backer", "user", "password", "project", "amount", "tier"} {
		if _, ok := c.Sub["pledge"].Flags[name]; !ok {
			t.Errorf("Completion() misses pledge flag %q", name)
		}
	}
	if c.Sub["import"].Args == nil {
		t.Error("Completion() does not predict import arguments")
	}
}

func TestTopicCmd(t *testing.T) {
	out := withGlobals(t, t.TempDir(), "USD")
	if got := run(t, &topicCmd{}); got != subcommands.ExitSuccess {
		t.Fatalf("topic exit status = %v", got)
	}
	if !strings.Contains(out.String(), "# cfd documentation") {
		t.Errorf("topic output:\n%s", out)
	}
	out.Reset()
	if got := run(t, &topicCmd{}, "pledges", "audit"); got != subcommands.ExitSuccess {
		t.Fatalf("topic pledges audit exit status = %v", got)
	}
	if !strings.Contains(out.String(), "# Pledges") || !strings.Contains(out.String(), "# Audit") {
		t.Errorf("topic output:\n%s", out)
	}
	if got := run(t, &topicCmd{}, "nope"); got != subcommands.ExitFailure {
		t.Errorf("topic nope exit status = %v, want %v", got, subcommands.ExitFailure)
	}
}
