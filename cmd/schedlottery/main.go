package main

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/schedlottery/schedlottery/internal/loader"
	"github.com/schedlottery/schedlottery/internal/version"
)

var (
	cfgFile  string
	logLevel string
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "schedlottery",
		Short: "eBPF lottery-scheduler telemetry tracer",
		Long: `schedlottery loads a sched_switch BPF handler that maintains
per-task runtime, switch counts, and lottery ticket weights in a
pinned BPF map. Once pinned, the tracer runs independently of this
process until explicitly detached; any process with read access to
the map pin can consume the statistics.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVar(
		&cfgFile, "config", "",
		"path to YAML config file (flags override it)",
	)
	cmd.PersistentFlags().StringVar(
		&logLevel, "log-level", "info",
		"log level (debug, info, warn, error)",
	)

	cmd.AddCommand(loadCmd())
	cmd.AddCommand(detachCmd())
	cmd.AddCommand(versionCmd())

	return cmd
}

func loadCmd() *cobra.Command {
	var (
		objPath string
		progPin string
		mapPin  string
		linkPin string
		trace   string
		btfPath string
	)

	cmd := &cobra.Command{
		Use:   "load",
		Short: "Load, attach, and pin the sched_switch tracer",
		RunE: func(cmd *cobra.Command, args []string) error {
			log, err := newLogger()
			if err != nil {
				return err
			}

			cfg, err := buildConfig()
			if err != nil {
				return err
			}

			flags := cmd.Flags()
			if flags.Changed("obj") {
				cfg.ObjectPath = objPath
			}

			if flags.Changed("prog-pin") {
				cfg.ProgPin = progPin
			}

			if flags.Changed("map-pin") {
				cfg.MapPin = mapPin
			}

			if flags.Changed("link-pin") {
				cfg.LinkPin = linkPin
			}

			if flags.Changed("trace") {
				cfg.Trace = trace
			}

			if flags.Changed("btf") {
				cfg.BTFPath = btfPath
			}

			if err := cfg.Validate(); err != nil {
				_ = cmd.Usage()

				return err
			}

			res, err := loader.New(log, cfg).Run()
			if err != nil {
				return err
			}

			fmt.Printf(
				"Loaded %s: tracepoint=%s prog=%s map=%s link=%s\n",
				cfg.ObjectPath, res.Tracepoint,
				res.ProgPin, res.MapPin, res.LinkPin,
			)

			return nil
		},
	}

	cmd.Flags().StringVar(&objPath, "obj", "", "compiled BPF object path")
	cmd.Flags().StringVar(&progPin, "prog-pin", "", "program pin path")
	cmd.Flags().StringVar(&mapPin, "map-pin", "", "stats map pin path")
	cmd.Flags().StringVar(&linkPin, "link-pin", "", "tracepoint link pin path")
	cmd.Flags().StringVar(
		&trace, "trace", "sched:sched_switch",
		"tracepoint as category:name",
	)
	cmd.Flags().StringVar(
		&btfPath, "btf", "",
		"BTF file overriding the running kernel's types",
	)

	return cmd
}

func detachCmd() *cobra.Command {
	var (
		progPin string
		mapPin  string
		linkPin string
	)

	cmd := &cobra.Command{
		Use:   "detach",
		Short: "Detach the tracer and remove its pins",
		RunE: func(cmd *cobra.Command, args []string) error {
			log, err := newLogger()
			if err != nil {
				return err
			}

			cfg, err := buildConfig()
			if err != nil {
				return err
			}

			flags := cmd.Flags()
			if flags.Changed("prog-pin") {
				cfg.ProgPin = progPin
			}

			if flags.Changed("map-pin") {
				cfg.MapPin = mapPin
			}

			if flags.Changed("link-pin") {
				cfg.LinkPin = linkPin
			}

			if err := cfg.ValidateDetach(); err != nil {
				_ = cmd.Usage()

				return err
			}

			return loader.Detach(log, cfg)
		},
	}

	cmd.Flags().StringVar(&progPin, "prog-pin", "", "program pin path")
	cmd.Flags().StringVar(&mapPin, "map-pin", "", "stats map pin path")
	cmd.Flags().StringVar(&linkPin, "link-pin", "", "tracepoint link pin path")

	return cmd
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Println(version.String())
		},
	}
}

// buildConfig returns the defaults, overlaid with the config file when one
// was given. Flag overrides are applied by the caller.
func buildConfig() (*loader.Config, error) {
	if cfgFile == "" {
		return loader.DefaultConfig(), nil
	}

	cfg, err := loader.LoadConfig(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	return cfg, nil
}

func newLogger() (logrus.FieldLogger, error) {
	log := logrus.New()
	log.SetFormatter(&logrus.TextFormatter{
		FullTimestamp: true,
	})

	level, err := logrus.ParseLevel(logLevel)
	if err != nil {
		return nil, fmt.Errorf("parsing log level %q: %w", logLevel, err)
	}

	log.SetLevel(level)

	return log, nil
}
