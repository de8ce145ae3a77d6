// Package cmd contains the vnkeyctl commands.
package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"vnkey/internal/config"
	"vnkey/internal/ime"
	"vnkey/internal/logging"
	"vnkey/internal/metrics"
	"vnkey/internal/store"
)

var (
	cfgFile  string
	logLevel string
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "vnkeyctl",
	Short: "Vietnamese Telex/VNI input engine tools",
	Long: `vnkeyctl drives the vnkey transformation engine outside an input method
front end.

It builds and inspects the PHT3 dictionaries the engine uses to decide
whether a typed word was English, replays keystrokes through the engine,
and manages the custom words and macros kept in the local store.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is "+config.ConfigPath()+")")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "override the configured log level")
}

// loadConfig reads the config file and flag overrides.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if logLevel != "" {
		cfg.Logging.Level = logLevel
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// newLogger builds the logger described by cfg and makes it the default.
func newLogger(cfg *config.Config) (*logging.Logger, error) {
	lc, err := logging.FromConfig(cfg.Logging)
	if err != nil {
		return nil, err
	}
	log, err := logging.New(lc)
	if err != nil {
		return nil, err
	}
	logging.SetDefault(log)
	return log, nil
}

// openStore opens the configured word and macro store.
func openStore(cfg *config.Config) (*store.Store, error) {
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, err
	}
	return store.Open(cfg.Storage.Path)
}

// newEngine builds an engine from cfg with dictionaries loaded and stored
// macros merged over the inline ones.
func newEngine(ctx context.Context, cfg *config.Config, log *logging.Logger, st *store.Store, m *metrics.Engine) (*ime.Engine, ime.LoadReport, error) {
	e, err := ime.FromConfig(cfg, log)
	if err != nil {
		return nil, ime.LoadReport{}, err
	}
	e.SetMetrics(m)
	report := e.LoadDictionaries()

	if st != nil && cfg.Macros.Enabled {
		table, err := st.MacroTable(ctx)
		if err != nil {
			return nil, report, err
		}
		for k, v := range cfg.Macros.Entries {
			if _, ok := table[k]; !ok {
				table[k] = v
			}
		}
		e.SetMacros(table)
	}
	return e, report, nil
}
