package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/vnykmshr/flowrt"
	"github.com/vnykmshr/flowrt/pkg/config"
)

type rootOptions struct {
	configPath string
	logLevel   string
}

func (o *rootOptions) addFlags(fs *pflag.FlagSet) {
	fs.StringVarP(&o.configPath, "config", "c", "", "path to a JSON, YAML or TOML config file")
	fs.StringVar(&o.logLevel, "log-level", "", "override logging.level (debug, info, warn, error)")
}

// runtime loads configuration and builds a Runtime from it.
func (o *rootOptions) runtime(mutate func(*config.Config)) (*flowrt.Runtime, error) {
	cfg, err := config.Load(o.configPath)
	if err != nil {
		return nil, err
	}
	if o.logLevel != "" {
		cfg.Logging.Level = o.logLevel
	}
	if mutate != nil {
		mutate(cfg)
	}
	rt, err := flowrt.New(*cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to start runtime: %w", err)
	}
	return rt, nil
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	cmd := &cobra.Command{
		Use:   "flowrt",
		Short: "flowrt - thread pool and timer runtime demo",
		Long: `flowrt drives the flowrt thread pool and timer manager so their
behaviour can be observed from a shell. It is an illustrative caller only.`,
		Version:      Version,
		SilenceUsage: true,
	}
	opts.addFlags(cmd.PersistentFlags())

	cmd.AddCommand(newPoolCmd(opts))
	cmd.AddCommand(newTimersCmd(opts))
	return cmd
}
