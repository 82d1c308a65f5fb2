// Package cli defines the acrolex command tree.
package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/turtacn/AcroLex/internal/config"
	"github.com/turtacn/AcroLex/internal/infrastructure/monitoring/logging"
)

// Build-time variables injected via ldflags.
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// rootState carries the initialized config and logger to subcommands.
type rootState struct {
	configPath string
	logLevel   string

	cfg    *config.Config
	logger logging.Logger
}

// init loads configuration and builds the logger.  Runs once, from the root
// command's PersistentPreRunE.
func (s *rootState) init() error {
	cfg, err := config.Load(s.configPath)
	if err != nil {
		return err
	}
	if s.logLevel != "" {
		cfg.Log.Level = s.logLevel
	}
	logger, err := logging.NewLogger(logging.LogConfig(cfg.Log))
	if err != nil {
		return err
	}
	s.cfg = cfg
	s.logger = logger
	return nil
}

// NewRootCommand builds the root command with global flags and all
// subcommands attached.
func NewRootCommand() *cobra.Command {
	state := &rootState{}

	cmd := &cobra.Command{
		Use:     "acrolex",
		Short:   "AcroLex — corpus-wide acronym detection and expansion",
		Long:    "AcroLex scans tokenized corpora for acronyms, learns their expansions\nfrom parenthetical definitions, and rewrites every resolvable occurrence\nwith a full audit trail.",
		Version: fmt.Sprintf("%s (commit: %s, built: %s)", Version, GitCommit, BuildDate),
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return state.init()
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := cmd.PersistentFlags()
	pf.StringVarP(&state.configPath, "config", "c", "", "config file path (default: ./acrolex.yaml)")
	pf.StringVar(&state.logLevel, "log-level", "", "log level override (debug, info, warn, error)")

	cmd.AddCommand(
		newRunCommand(state),
		newRegistryCommand(state),
		newScoreCommand(state),
	)
	return cmd
}
