package cmd

import (
	"errors"
	"os"
	"os/exec"
	"strconv"

	log "github.com/sirupsen/logrus"
)

// Environment of an extension: the global flags of the cfd invocation.
const (
	EnvDataDir  = "CFD_DATA_DIR"
	EnvCurrency = "CFD_CURRENCY"
	EnvDebug    = "CFD_DEBUG"
)

// RunExtension attempts to find and execute an external cfd-<subcommand> binary.
// It returns (true, exitCode) if an extension was found and executed,
// and (false, 0) if no extension was found.
func RunExtension(subcommand string, args []string) (bool, int) {
	name := "cfd-" + subcommand

	lp, err := exec.LookPath(name)
	if err != nil {
		log.WithField("extension", name).Debugf("extension not found: %v", err)
		return false, 0
	}

	cmd := exec.Command(lp, args...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = stdout
	cmd.Stderr = os.Stderr

	// Pass global flags as environment variables
	cmd.Env = append(os.Environ(),
		EnvDataDir+"="+*dataDir,
		EnvCurrency+"="+*currency,
		EnvDebug+"="+strconv.FormatBool(*Debug),
	)

	if err := cmd.Run(); err != nil {
		var exitError *exec.ExitError
		if errors.As(err, &exitError) {
			return true, exitError.ExitCode()
		}
		log.WithField("extension", name).Errorf("cannot execute extension: %v", err)
		return true, 1
	}
	return true, 0
}
