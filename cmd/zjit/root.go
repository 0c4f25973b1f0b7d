package main

import (
	"flag"

	"github.com/brimdata/zjit/cli/logflags"
	"github.com/brimdata/zjit/config"
	"github.com/brimdata/zjit/service/logger"
	"github.com/brimdata/zjit/stream"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
)

type rootOptions struct {
	config config.Flags
	log    logflags.Flags
}

// engine builds the engine a subcommand runs on.  Log flags override the
// logger section of a config file.
func (o *rootOptions) engine(cmd *cobra.Command, registerer prometheus.Registerer) (*stream.Engine, error) {
	conf := o.config.Config
	conf.Logger = o.log.Override(conf.Logger, cmd.Flags().Changed)
	l, err := logger.New(conf.Logger)
	if err != nil {
		return nil, err
	}
	return stream.New(conf, registerer, l)
}

func newRootCommand() *cobra.Command {
	opts := &rootOptions{}
	cmd := &cobra.Command{
		Use:   "zjit",
		Short: "inspect and exercise the zjit query compiler",
		Long: `
zjit compiles chains of stream operations into specialized code, one program
per distinct chain shape, and caches the programs for reuse.  The explain
command shows what the compiler makes of a demo chain; the bench command runs
demo chains from many goroutines against one shared cache.`,
		SilenceUsage: true,
	}
	fs := flag.NewFlagSet("zjit", flag.ContinueOnError)
	opts.config.SetFlags(fs)
	opts.log.SetFlags(fs)
	cmd.PersistentFlags().AddGoFlagSet(fs)
	cmd.AddCommand(newExplainCommand(opts))
	cmd.AddCommand(newBenchCommand(opts))
	cmd.AddCommand(newDemosCommand())
	return cmd
}
