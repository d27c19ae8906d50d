package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/pflag"

	"github.com/target/matrix-leader/config"
	apperrors "github.com/target/matrix-leader/internal/errors"
)

// cliFlags holds command-line overrides of the environment configuration.
type cliFlags struct {
	isMaster    bool
	travisEntry string
	exportFile  string
	help        bool

	exportFileSet bool
}

func parseFlags(args []string, stderr io.Writer) (cliFlags, error) {
	var f cliFlags

	flagSet := pflag.NewFlagSet("matrix-leader", pflag.ContinueOnError)
	flagSet.SetOutput(stderr)
	flagSet.BoolVar(&f.isMaster, "is_master", false, "act as the leader regardless of the job index")
	flagSet.StringVar(&f.travisEntry, "travis_entry", "", "Travis API root (overrides TRAVIS_ENTRY)")
	flagSet.StringVar(&f.exportFile, "export-file", "", "file receiving export statements, empty disables (overrides LEADER_EXPORT_FILE)")
	flagSet.BoolVarP(&f.help, "help", "h", false, "show help")
	flagSet.Usage = func() { printHelp(stderr, flagSet) }

	if err := flagSet.Parse(args); err != nil {
		if err == pflag.ErrHelp {
			f.help = true
			return f, nil
		}
		return f, apperrors.Wrap(err, apperrors.ErrCodeConfiguration, "parse flags")
	}
	if f.help {
		printHelp(stderr, flagSet)
		return f, nil
	}
	if rest := flagSet.Args(); len(rest) > 0 {
		return f, apperrors.Configuration("", fmt.Sprintf("unexpected argument: %s", rest[0]))
	}

	f.exportFileSet = flagSet.Changed("export-file")
	return f, nil
}

// apply overlays the flags on cfg.
func (f cliFlags) apply(cfg *config.AppConfig) {
	if f.isMaster {
		cfg.Leader.ForceLeader = true
	}
	if entry := strings.TrimSpace(f.travisEntry); entry != "" {
		cfg.Travis.Entry = strings.TrimRight(entry, "/")
	}
	if f.exportFileSet {
		cfg.Export.File = strings.TrimSpace(f.exportFile)
	}
}

func printHelp(w io.Writer, flagSet *pflag.FlagSet) {
	fmt.Fprintf(w, `matrix-leader designates one job of a CI build matrix as the leader, waits
for every other job to finish and exports their aggregate status.

Job number 1 leads by default (LEADER_MASTER_INDEX). The leader polls the
Travis API every LEADER_POLLING_INTERVAL seconds and writes
BUILD_LEADER and BUILD_AGGREGATE_STATUS to the export file; other jobs write
BUILD_MINION and exit immediately.

Usage:
  matrix-leader [flags]

Flags:
%s
Exit status:
  0  minion, or leader with a final aggregate status
  1  configuration error (for example TRAVIS_JOB_NUMBER unset)
  2  Travis authentication, fetch or payload error
  3  interrupted or LEADER_MAX_WAIT exceeded
`, flagSet.FlagUsages())
}
