package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/afero"
	"github.com/spf13/pflag"

	"fxtrend/internal/config"
)

const usage = `Usage: fxtrend [--config FILE] COMMAND [ARGS]

Commands:
  trend CODE [--days N]              show the daily rate history of CODE
  convert AMOUNT FROM TO             convert with the latest rates
  currencies [--search KW] [--sort ORDER]
                                     list currencies and their latest rates
  history [--clear]                  show or clear past conversions
`

var errUsage = errors.New("invalid usage")

func main() {
	// Create context with cancellation for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle interrupt signals for graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		fmt.Fprintln(os.Stderr, "\nReceived interrupt signal, shutting down...")
		cancel()
	}()

	if err := run(ctx, os.Args[1:], os.Stdout); err != nil {
		if !errors.Is(err, errUsage) && !errors.Is(err, pflag.ErrHelp) {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, stdout io.Writer) error {
	flags := pflag.NewFlagSet("fxtrend", pflag.ContinueOnError)
	flags.SetInterspersed(false)
	flags.Usage = func() { fmt.Fprint(os.Stderr, usage) }
	configFile := flags.StringP("config", "c", "", "path to a config file")

	if err := flags.Parse(args); err != nil {
		return err
	}
	if flags.NArg() == 0 {
		flags.Usage()
		return errUsage
	}

	// Load configuration
	cfg, err := config.Load(*configFile)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	level, err := cfg.SlogLevel()
	if err != nil {
		return err
	}
	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(log)

	reg := prometheus.NewRegistry()

	a, err := newApp(cfg, afero.NewOsFs(), stdout, log, reg)
	if err != nil {
		return err
	}
	defer a.Close()

	err = a.dispatch(ctx, flags.Arg(0), flags.Args()[1:])

	if cfg.MetricsTextfile != "" {
		if werr := prometheus.WriteToTextfile(cfg.MetricsTextfile, reg); werr != nil {
			log.Warn("Failed to write metrics textfile", "path", cfg.MetricsTextfile, "error", werr)
		}
	}

	return err
}
