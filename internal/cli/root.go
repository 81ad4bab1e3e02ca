// internal/cli/root.go
package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"nil-matching/internal/common/config"
	"nil-matching/internal/common/logger"
	"nil-matching/internal/common/metrics"
	"nil-matching/internal/matching"
	"nil-matching/internal/qualitative"
)

var (
	version   = "dev"
	commit    = "unknown"
	buildTime = "unknown"
)

// SetVersionInfo sets version information from build flags
func SetVersionInfo(v, c, b string) {
	version = v
	commit = c
	buildTime = b
}

// rootOptions carries the persistent flags. Values are read through viper so
// MATCH_OUTPUT, MATCH_TABLES and MATCH_LOG_LEVEL can stand in for the flags.
type rootOptions struct {
	v          *viper.Viper
	configFile string
}

func (o *rootOptions) output() string { return strings.ToLower(o.v.GetString("output")) }

func (o *rootOptions) logger() logger.Logger {
	return logger.NewStructured(o.v.GetString("log-level"), "console")
}

func (o *rootOptions) loadConfig() (*config.Config, error) {
	if o.configFile != "" {
		return config.LoadFromFile(o.configFile)
	}
	return config.Load()
}

// engine loads the scoring tables named by --tables, or the defaults.
func (o *rootOptions) engine() (*matching.Scorer, error) {
	tables, err := matching.LoadTablesFile(o.v.GetString("tables"))
	if err != nil {
		return nil, err
	}
	return matching.NewScorer(tables), nil
}

// enhancer builds the qualitative stage from the service configuration.
func (o *rootOptions) enhancer(ctx context.Context, scorer *matching.Scorer, log logger.Logger) (*qualitative.Enhancer, error) {
	cfg, err := o.loadConfig()
	if err != nil {
		return nil, err
	}
	assessor, err := qualitative.New(ctx, cfg.Qualitative)
	if err != nil {
		return nil, err
	}
	return qualitative.NewEnhancer(assessor, scorer, cfg.Qualitative.Weight, log,
		qualitative.WithTimeout(config.GetDuration(cfg.Qualitative.Timeout)),
		qualitative.WithRecorder(metrics.Recorder{}),
		qualitative.WithRateLimit(cfg.Qualitative.RateLimit, cfg.Qualitative.RateBurst),
	), nil
}

// NewRootCommand builds the match-cli command tree.
func NewRootCommand() *cobra.Command {
	opts := &rootOptions{v: viper.New()}

	cmd := &cobra.Command{
		Use:   "match-cli",
		Short: "Score and rank NIL athlete/brand matches",
		Long: `match-cli runs the matching engine outside the workflow engine.

It provides:
  - score: one athlete against one brand
  - rank: a candidate set against one brand
  - tables: the active scoring tables
  - index: load athlete profiles into the search index
  - registry: inspect the activity registry`,
		SilenceUsage: true,
	}

	flags := cmd.PersistentFlags()
	flags.StringVarP(&opts.configFile, "config", "c", "", "config file (default: ./configs/config.yaml)")
	flags.StringP("output", "o", "table", "output format (table, json)")
	flags.String("tables", "", "TOML file overriding the scoring tables")
	flags.String("log-level", "warn", "log level (debug, info, warn, error)")

	for _, name := range []string{"output", "tables", "log-level"} {
		_ = opts.v.BindPFlag(name, flags.Lookup(name))
	}
	opts.v.SetEnvPrefix("MATCH")
	opts.v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	opts.v.AutomaticEnv()

	cmd.AddCommand(
		newScoreCommand(opts),
		newRankCommand(opts),
		newRecommendCommand(opts),
		newTablesCommand(opts),
		newIndexCommand(opts),
		newRegistryCommand(opts),
		newVersionCommand(),
	)
	return cmd
}

// Execute runs the root command
func Execute() error {
	return NewRootCommand().Execute()
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "match-cli %s\n", version)
			fmt.Fprintf(out, "  commit: %s\n", commit)
			fmt.Fprintf(out, "  built:  %s\n", buildTime)
		},
	}
}
