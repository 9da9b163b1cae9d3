package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/yairfalse/machine/internal/config"
	"github.com/yairfalse/machine/internal/provider/digitalocean"
	"github.com/yairfalse/machine/internal/telemetry"
)

var (
	version = "0.1.0"

	cfgFile string
	debug   bool
	tracing bool

	rootCmd = &cobra.Command{
		Use:   "machine",
		Short: "Create and query DigitalOcean droplets",
		Long: `machine creates droplets that initialize themselves on first boot
and finds them again by name, tag, type or region.

Droplets created by machine carry the "machine-created" tag; other droplets
are hidden unless --all is given.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			telemetry.SetupLogger(os.Stderr, debug)
		},
	}
)

// Execute runs the root command
func Execute() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	cancel()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.SetVersionTemplate(`machine {{.Version}}
`)
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", config.DefaultPath(), "config file")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "Enable debug logging")
	rootCmd.PersistentFlags().BoolVar(&tracing, "trace", false, "Print API call spans to stderr")
}

// session holds what every API-backed command needs.
type session struct {
	cfg    *config.Config
	client *digitalocean.Client
	tp     *telemetry.Provider
}

func newSession(ctx context.Context) (*session, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, err
	}

	tp, err := telemetry.NewProvider(ctx, telemetry.TraceConfig{
		ServiceName: "machine",
		Enabled:     tracing,
		Writer:      os.Stderr,
	})
	if err != nil {
		return nil, fmt.Errorf("setup tracing: %w", err)
	}

	return &session{
		cfg:    cfg,
		client: digitalocean.New(cfg.DigitalOcean.AccessToken),
		tp:     tp,
	}, nil
}

func (s *session) Close(ctx context.Context) {
	_ = s.tp.Shutdown(context.WithoutCancel(ctx))
}
