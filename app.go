package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/afero"
	"github.com/spf13/pflag"

	"fxtrend/internal/catalog"
	"fxtrend/internal/config"
	"fxtrend/internal/fetcher"
	"fxtrend/internal/history"
	"fxtrend/internal/metrics"
	"fxtrend/internal/openexchange"
	"fxtrend/internal/ratecache"
	"fxtrend/internal/ratelimit"
	"fxtrend/internal/series"
)

// app wires the configured components behind the CLI commands.
type app struct {
	cfg     *config.Config
	out     io.Writer
	log     *slog.Logger
	metrics *metrics.Metrics

	assembler *series.Assembler
	catalog   *catalog.Loader
	history   *history.Store

	closers []func() error
}

func newApp(cfg *config.Config, fsys afero.Fs, out io.Writer, log *slog.Logger, reg prometheus.Registerer) (*app, error) {
	a := &app{
		cfg:     cfg,
		out:     out,
		log:     log,
		metrics: metrics.NewMetrics(reg),
	}

	httpOpts := fetcher.DefaultClientOptions()
	httpOpts.Timeout = cfg.RequestTimeout
	httpOpts.RetryCount = cfg.RetryCount

	client := openexchange.NewClient(cfg.OpenExchangeAppID, cfg.OpenExchangeBaseURL, httpOpts,
		openexchange.WithLimiter(ratelimit.NewDefault(cfg.RequestsPerSecond)),
		openexchange.WithLogger(log),
	)

	store, err := a.newStore(fsys)
	if err != nil {
		return nil, err
	}

	a.assembler = series.NewAssembler(client, ratecache.New(store, log),
		series.WithLogger(log),
		series.WithMetrics(a.metrics),
	)
	a.catalog = catalog.NewLoader(client, log)
	a.history = history.NewStore(fsys, cfg.HistoryPath, history.WithLogger(log))

	return a, nil
}

func (a *app) newStore(fsys afero.Fs) (ratecache.Store, error) {
	switch a.cfg.CacheBackend {
	case config.BackendFile:
		return ratecache.NewFileStore(fsys, a.cfg.CachePath, a.log), nil
	case config.BackendRedis:
		client := redis.NewClient(&redis.Options{Addr: a.cfg.RedisAddr})
		a.closers = append(a.closers, client.Close)
		return ratecache.NewRedisStore(client, a.cfg.RedisKey), nil
	case config.BackendMemory:
		return ratecache.NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unknown cache backend %q", a.cfg.CacheBackend)
	}
}

// Close releases connections held by the cache backend.
func (a *app) Close() error {
	var errs []error
	for _, c := range a.closers {
		errs = append(errs, c())
	}
	return errors.Join(errs...)
}

func (a *app) dispatch(ctx context.Context, command string, args []string) error {
	switch command {
	case "trend":
		return a.trend(ctx, args)
	case "convert":
		return a.convert(ctx, args)
	case "currencies":
		return a.currencies(ctx, args)
	case "history":
		return a.showHistory(args)
	default:
		return fmt.Errorf("%w: unknown command %q", errUsage, command)
	}
}

func (a *app) trend(ctx context.Context, args []string) error {
	flags := pflag.NewFlagSet("trend", pflag.ContinueOnError)
	days := flags.IntP("days", "d", a.cfg.WindowDays, "number of days to look back")
	if err := flags.Parse(args); err != nil {
		return err
	}
	if flags.NArg() != 1 {
		return fmt.Errorf("%w: trend takes exactly one currency code", errUsage)
	}

	tracker := series.NewTracker(a.assembler, *days)
	state := tracker.Select(ctx, flags.Arg(0))
	if len(state.Points) == 0 {
		if state.Err != nil {
			return state.Err
		}
		return series.ErrNoCurrency
	}

	source := "fetched"
	if state.FromCache {
		source = "cached"
	}
	fmt.Fprintf(a.out, "%s, last %d days (%s)\n", state.Code, *days, source)

	w := tabwriter.NewWriter(a.out, 0, 0, 2, ' ', 0)
	for _, p := range state.Points {
		fmt.Fprintf(w, "%s\t%s\n", p.Date, formatRate(p.Rate))
	}
	if err := w.Flush(); err != nil {
		return err
	}

	if state.Failed {
		fmt.Fprintf(a.out, "Some dates could not be fetched: %v\n", state.Err)
	}
	return nil
}

func (a *app) convert(ctx context.Context, args []string) error {
	if len(args) != 3 {
		return fmt.Errorf("%w: convert takes AMOUNT FROM TO", errUsage)
	}

	amount, err := strconv.ParseFloat(args[0], 64)
	if err != nil {
		return fmt.Errorf("invalid amount %q: %w", args[0], err)
	}
	from, to := strings.ToUpper(args[1]), strings.ToUpper(args[2])

	c, err := a.catalog.Load(ctx)
	if err != nil {
		return err
	}

	result, err := c.Convert(amount, from, to)
	if err != nil {
		return err
	}
	a.metrics.Conversion()

	fmt.Fprintf(a.out, "%s %s = %s %s\n", formatAmount(amount), from, formatAmount(result), to)

	if _, err := a.history.Add(from, to, amount, result); err != nil {
		a.log.Warn("Failed to record conversion", "error", err)
	}
	return nil
}

func (a *app) currencies(ctx context.Context, args []string) error {
	flags := pflag.NewFlagSet("currencies", pflag.ContinueOnError)
	search := flags.StringP("search", "s", "", "filter by code or name")
	sortBy := flags.String("sort", string(catalog.NameAsc), "name-asc, name-desc, rate-asc or rate-desc")
	if err := flags.Parse(args); err != nil {
		return err
	}

	order, err := catalog.ParseSortOrder(*sortBy)
	if err != nil {
		return err
	}

	c, err := a.catalog.Load(ctx)
	if err != nil {
		return err
	}

	list := catalog.Sort(catalog.Search(c.Currencies, *search), order)

	fmt.Fprintf(a.out, "Rates relative to %s\n", c.Base)
	w := tabwriter.NewWriter(a.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "CODE\tNAME\tRATE")
	for _, cur := range list {
		fmt.Fprintf(w, "%s\t%s\t%s\n", cur.Code, cur.Name, formatRate(cur.Rate))
	}
	return w.Flush()
}

func (a *app) showHistory(args []string) error {
	flags := pflag.NewFlagSet("history", pflag.ContinueOnError)
	clearAll := flags.Bool("clear", false, "delete every recorded conversion")
	if err := flags.Parse(args); err != nil {
		return err
	}

	if *clearAll {
		if err := a.history.Clear(); err != nil {
			return err
		}
		fmt.Fprintln(a.out, "History cleared")
		return nil
	}

	records, err := a.history.List()
	if err != nil {
		return err
	}
	if len(records) == 0 {
		fmt.Fprintln(a.out, "No conversions yet")
		return nil
	}

	w := tabwriter.NewWriter(a.out, 0, 0, 2, ' ', 0)
	for _, r := range records {
		fmt.Fprintf(w, "%s\t%s %s\t->\t%s %s\n",
			r.Time().Format(time.DateTime),
			formatAmount(r.Amount), r.FromCurrency,
			formatAmount(r.Result), r.ToCurrency)
	}
	return w.Flush()
}

func formatRate(v float64) string {
	if math.IsNaN(v) {
		return "n/a"
	}
	return strconv.FormatFloat(v, 'f', 4, 64)
}

func formatAmount(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}
