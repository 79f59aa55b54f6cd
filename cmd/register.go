package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"
)

type registerCmd struct {
	username string
	email    string
	password string
}

func (*registerCmd) Name() string     { return "register" }
func (*registerCmd) Synopsis() string { return "register a new backer" }
func (*registerCmd) Usage() string {
	return `cfd register -username <name> -email <email> -password <password>

  Registers a backer. Usernames and emails are unique, ignoring case. The
  password is stored as a bcrypt hash; it is required to pledge with -user.
`
}

func (c *registerCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.username, "username", "", "backer username")
	f.StringVar(&c.email, "email", "", "backer email")
	f.StringVar(&c.password, "password", "", "backer password")
}

func (c *registerCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	a, err := openApp()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening store: %v\n", err)
		return subcommands.ExitFailure
	}
	b, err := a.backers.Register(c.username, c.email, c.password)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error registering backer: %v\n", err)
		return subcommands.ExitFailure
	}
	fmt.Fprintf(stdout, "Registered backer #%d %q.\n", b.ID, b.Username)
	return subcommands.ExitSuccess
}
