// Command medium relays the pseudo-TCP traffic between a sender and a
// receiver and impairs the sender->receiver path once it exceeds a
// given number of packets per second.
//
// Type quit on the standard input (or press Ctrl-C) to stop.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/apex/log"
	"github.com/ooni/medium/internal/impair"
	"github.com/ooni/medium/internal/logx"
	"github.com/ooni/medium/internal/medium"
	"github.com/ooni/medium/internal/version"
	"github.com/spf13/cobra"
)

// Options contains the options you can set from the CLI.
type Options struct {
	ConfigFile          string
	Debug               bool
	ECN                 bool
	Emoji               bool
	Limit               int64
	PCAPFile            string
	PrometheusAddress   string
	ReceiverAddress     string
	ReceiverSideAddress string
	RecvBufferSize      int
	ReportSeconds       bool
	Seed                uint64
	SenderAddress       string
	SenderSideAddress   string
	Verbose             bool
}

// runFunc is the function running the medium with a given config.
type runFunc func(ctx context.Context, config *medium.Config, options *Options) error

func main() {
	var options Options
	rootCmd := newRootCommand(&options, func(ctx context.Context, config *medium.Config, options *Options) error {
		handler := logx.NewHandlerWithDefaultSettings()
		handler.Emoji = options.Emoji
		logger := logx.NewLogger(handler, config.Verbose || config.Debug)
		log.Log = logger
		ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
		defer stop()
		return run(ctx, logger, config, os.Stdin)
	})
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// newRootCommand creates the root command. The runner is invoked with
// the configuration obtained by applying the command line flags on top
// of the configuration file, if any.
func newRootCommand(options *Options, runner runFunc) *cobra.Command {
	defaults := medium.DefaultConfig()
	rootCmd := &cobra.Command{
		Use:          "medium",
		Short:        "medium relays and impairs pseudo-TCP traffic",
		Args:         cobra.NoArgs,
		Version:      version.Version,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			config, err := newConfig(cmd, options)
			if err != nil {
				return err
			}
			return runner(cmd.Context(), config, options)
		},
	}
	rootCmd.SetVersionTemplate("{{ .Version }}\n")
	flags := rootCmd.Flags()

	flags.StringVar(
		&options.ConfigFile,
		"config",
		"",
		"read the configuration from the given HuJSON file (flags take precedence)",
	)

	flags.BoolVarP(
		&options.Debug,
		"debug",
		"d",
		false,
		"print the raw bytes of every packet",
	)

	flags.BoolVarP(
		&options.ECN,
		"ecn",
		"e",
		false,
		"set the ECN bit of one packet per second instead of dropping packets",
	)

	flags.BoolVar(
		&options.Emoji,
		"emoji",
		false,
		"whether to use emojis when logging",
	)

	flags.Int64VarP(
		&options.Limit,
		"limit",
		"l",
		defaults.Limit,
		"number of packets per second after which we impair the traffic",
	)

	flags.StringVar(
		&options.PCAPFile,
		"pcap",
		"",
		"write the forwarded packets to the given pcap file",
	)

	flags.StringVar(
		&options.PrometheusAddress,
		"prometheus",
		"",
		"serve prometheus metrics at the given address",
	)

	flags.StringVar(
		&options.ReceiverAddress,
		"receiver",
		defaults.ReceiverAddress,
		"address of the receiver",
	)

	flags.StringVar(
		&options.ReceiverSideAddress,
		"receiver-side",
		defaults.ReceiverSideAddress,
		"address where we receive packets from the receiver",
	)

	flags.IntVar(
		&options.RecvBufferSize,
		"recv-buffer",
		0,
		"socket receive buffer size in bytes (zero means system default)",
	)

	flags.BoolVarP(
		&options.ReportSeconds,
		"second",
		"s",
		false,
		"print the number of packets received each second",
	)

	flags.Uint64Var(
		&options.Seed,
		"seed",
		0,
		"seed for the random drops (zero means seeding from system entropy)",
	)

	flags.StringVar(
		&options.SenderAddress,
		"sender",
		defaults.SenderAddress,
		"address of the sender",
	)

	flags.StringVar(
		&options.SenderSideAddress,
		"sender-side",
		defaults.SenderSideAddress,
		"address where we receive packets from the sender",
	)

	flags.BoolVarP(
		&options.Verbose,
		"verbose",
		"v",
		false,
		"print the decoded header of every packet",
	)

	return rootCmd
}

// newConfig loads the configuration file, when given, and overrides
// it with the flags that have been explicitly set.
func newConfig(cmd *cobra.Command, options *Options) (*medium.Config, error) {
	config := medium.DefaultConfig()
	if options.ConfigFile != "" {
		var err error
		if config, err = medium.LoadConfig(options.ConfigFile); err != nil {
			return nil, err
		}
	}
	flags := cmd.Flags()
	if flags.Changed("debug") {
		config.Debug = options.Debug
	}
	if flags.Changed("ecn") {
		config.Mode = impair.ModeDrop.String()
		if options.ECN {
			config.Mode = impair.ModeECN.String()
		}
	}
	if flags.Changed("limit") {
		config.Limit = options.Limit
	}
	if flags.Changed("pcap") {
		config.PCAPFile = options.PCAPFile
	}
	if flags.Changed("prometheus") {
		config.PrometheusAddress = options.PrometheusAddress
	}
	if flags.Changed("receiver") {
		config.ReceiverAddress = options.ReceiverAddress
	}
	if flags.Changed("receiver-side") {
		config.ReceiverSideAddress = options.ReceiverSideAddress
	}
	if flags.Changed("recv-buffer") {
		config.RecvBufferSize = options.RecvBufferSize
	}
	if flags.Changed("second") {
		config.ReportSeconds = options.ReportSeconds
	}
	if flags.Changed("seed") {
		config.Seed = options.Seed
	}
	if flags.Changed("sender") {
		config.SenderAddress = options.SenderAddress
	}
	if flags.Changed("sender-side") {
		config.SenderSideAddress = options.SenderSideAddress
	}
	if flags.Changed("verbose") {
		config.Verbose = options.Verbose
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}
