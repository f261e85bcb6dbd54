// solarplot reduces solar monitor logs to per-day power charts.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/olekukonko/tablewriter"

	"github.com/xtxerr/solarplot/internal/errors"
	"github.com/xtxerr/solarplot/internal/logging"
	"github.com/xtxerr/solarplot/internal/storage"
	"github.com/xtxerr/solarplot/internal/storage/config"
	"github.com/xtxerr/solarplot/internal/storage/source"
)

// Version is set at build time via ldflags
var Version = "dev"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

// options holds the parsed command line.
type options struct {
	configPath string
	output     string
	avgSec     int
	workers    int
	utcOffset  int
	onCorrupt  string
	exportDir  string
	keepDays   int
	dryRun     bool
	summary    bool
	sql        string
	noChart    bool
	watch      bool
	replot     bool
	logLevel   string
	logFormat  string
	version    bool

	inputDir string

	// set records which flags were given explicitly
	set map[string]bool
}

func parseFlags(args []string, stderr io.Writer) (*options, error) {
	opts := &options{set: make(map[string]bool)}

	fs := flag.NewFlagSet("solarplot", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() {
		fmt.Fprintf(stderr, "usage: solarplot [flags] <logdir>\n\nflags:\n")
		fs.PrintDefaults()
	}

	// CLI flags
	fs.StringVar(&opts.configPath, "config", "", "config file path (YAML)")
	fs.StringVar(&opts.output, "o", "out", "chart output prefix; a .png or .svg suffix selects the format")
	fs.IntVar(&opts.avgSec, "avg", 300, "averaging window in seconds")
	fs.IntVar(&opts.workers, "workers", 1, "number of ingestion workers")
	fs.IntVar(&opts.utcOffset, "utc-offset", 0, "UTC offset in seconds used to assign days")
	fs.StringVar(&opts.onCorrupt, "on-corrupt", "abort", "corrupt archive policy: abort, skip")
	fs.StringVar(&opts.exportDir, "export", "", "export averaged buckets as Parquet into this directory")
	fs.IntVar(&opts.keepDays, "keep-days", 0, "keep only this many exported days up to the newest (0 keeps all)")
	fs.BoolVar(&opts.dryRun, "dry-run", false, "with -keep-days, list the day files that would be deleted and keep them")
	fs.BoolVar(&opts.summary, "summary", false, "print a DuckDB daily summary of the export")
	fs.StringVar(&opts.sql, "sql", "", "run this SQL over the export (view \"buckets\") after the summary; implies -summary")
	fs.BoolVar(&opts.noChart, "no-chart", false, "do not render charts")
	fs.BoolVar(&opts.watch, "watch", false, "keep running and rerun when log files change")
	fs.BoolVar(&opts.replot, "replot", false, "render charts from the Parquet day files of the export directory instead of reading logs")
	fs.StringVar(&opts.logLevel, "log-level", "info", "log level: debug, info, warn, error")
	fs.StringVar(&opts.logFormat, "log-format", "auto", "log format: auto, text, json")
	fs.BoolVar(&opts.version, "version", false, "print version and exit")

	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return nil, err
		}
		return nil, errors.Wrap(errors.ErrUsage, err.Error())
	}
	fs.Visit(func(f *flag.Flag) { opts.set[f.Name] = true })

	switch fs.NArg() {
	case 0:
	case 1:
		opts.inputDir = fs.Arg(0)
	default:
		fs.Usage()
		return nil, errors.Wrapf(errors.ErrUsage, "expected one log directory, got %d arguments", fs.NArg())
	}

	return opts, nil
}

// buildConfig loads the config file and applies explicit flags over it.
func buildConfig(opts *options) (*config.Config, error) {
	cfg := config.DefaultConfig()
	if opts.configPath != "" {
		loaded, err := config.Load(opts.configPath)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	// CLI overrides
	if opts.inputDir != "" {
		cfg.InputDir = opts.inputDir
	}
	if opts.set["o"] {
		cfg.Chart.Output = opts.output
	}
	if opts.set["avg"] {
		cfg.Averaging.Window = time.Duration(opts.avgSec) * time.Second
	}
	if opts.set["workers"] {
		cfg.Ingestion.Workers = opts.workers
	}
	if opts.set["utc-offset"] {
		cfg.Calendar.UTCOffsetSec = opts.utcOffset
	}
	if opts.set["on-corrupt"] {
		cfg.Ingestion.OnCorrupt = opts.onCorrupt
	}
	if opts.exportDir != "" {
		cfg.Export.Enabled = true
		cfg.Export.Dir = opts.exportDir
	}
	if opts.set["keep-days"] {
		cfg.Export.RetentionDays = opts.keepDays
	}
	if opts.dryRun {
		cfg.Export.DryRun = true
	}
	if opts.summary {
		cfg.Summary.Enabled = true
	}
	if opts.sql != "" {
		cfg.Summary.Enabled = true
		cfg.Summary.Query = opts.sql
	}
	if opts.noChart {
		cfg.Chart.Enabled = false
	}
	if opts.watch {
		cfg.Watch.Enabled = true
	}
	if opts.set["log-level"] {
		cfg.Logging.Level = opts.logLevel
	}
	if opts.set["log-format"] {
		cfg.Logging.Format = opts.logFormat
	}

	if opts.replot && cfg.Watch.Enabled {
		return nil, errors.Wrap(errors.ErrUsage, "-replot cannot be combined with -watch")
	}
	if cfg.InputDir == "" && !opts.replot {
		return nil, errors.Wrap(errors.ErrUsage, "missing <logdir>")
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	opts, err := parseFlags(args, stderr)
	if err == flag.ErrHelp {
		return errors.ExitOK
	}
	if err != nil {
		fmt.Fprintf(stderr, "solarplot: %v\n", err)
		return errors.ExitCode(err)
	}

	if opts.version {
		fmt.Fprintf(stdout, "solarplot %s\n", Version)
		return errors.ExitOK
	}

	cfg, err := buildConfig(opts)
	if err != nil {
		fmt.Fprintf(stderr, "solarplot: %v\n", err)
		return errors.ExitCode(err)
	}

	level, _ := logging.ParseLevel(cfg.Logging.Level)
	if f, ok := stderr.(*os.File); ok && f == os.Stderr {
		logging.Init(level, cfg.Logging.Format)
	} else {
		format := cfg.Logging.Format
		if format == logging.FormatAuto {
			format = logging.FormatText
		}
		logging.InitWriter(stderr, level, format)
	}
	log := logging.Component("main")
	log.Info("solarplot starting", "version", Version, "input", cfg.InputDir)

	svc, err := storage.New(cfg)
	if err != nil {
		log.Error("create pipeline", "error", err)
		return errors.ExitCode(err)
	}
	defer svc.Close()

	if opts.replot {
		res, err := svc.Replot(ctx)
		if err != nil {
			log.Error("replot failed", "error", err, "exit", errors.ExitName(errors.ExitCode(err)))
			return errors.ExitCode(err)
		}
		printSummary(stdout, res)
		return errors.ExitOK
	}

	res, err := svc.Run(ctx)
	if err != nil {
		log.Error("run failed", "error", err, "exit", errors.ExitName(errors.ExitCode(err)))
		// in watch mode only a missing directory is fatal; files may still arrive
		if !cfg.Watch.Enabled || errors.Is(err, errors.ErrInputDir) || errors.Is(err, errors.ErrMissingField) {
			return errors.ExitCode(err)
		}
	} else {
		printSummary(stdout, res)
	}

	if !cfg.Watch.Enabled {
		return errors.ExitOK
	}
	return watch(ctx, cfg, svc, stdout)
}

// watch reruns the pipeline on log changes until ctx is cancelled.
func watch(ctx context.Context, cfg *config.Config, svc *storage.Service, stdout io.Writer) int {
	w, err := source.NewWatcher(cfg.InputDir, cfg.Watch.Debounce)
	if err != nil {
		logging.Error("watch", "error", err)
		return errors.ExitCode(err)
	}
	defer w.Close()

	err = w.Run(ctx, func(ctx context.Context) error {
		res, err := svc.Run(ctx)
		if err != nil {
			return err
		}
		printSummary(stdout, res)
		return nil
	})
	if err != nil {
		logging.Error("watch stopped", "error", err)
		return errors.ExitInternal
	}

	logging.Info("watch stopped")
	return errors.ExitOK
}

// printSummary writes the per-day table and, when present, the DuckDB
// summary of the export.
func printSummary(w io.Writer, res *storage.Result) {
	if len(res.Summaries) == 0 {
		fmt.Fprintf(w, "no complete window in %d records\n", res.Records)
		return
	}

	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Date", "Buckets", "Records", "Energy Wh", "Peak W", "Mean W", "P50 W", "P90 W"})
	table.SetAlignment(tablewriter.ALIGN_RIGHT)
	for _, s := range res.Summaries {
		table.Append([]string{
			s.Date.String(),
			fmt.Sprintf("%d", s.Buckets),
			fmt.Sprintf("%d", s.Records),
			fmt.Sprintf("%.1f", s.EnergyWh),
			fmt.Sprintf("%.1f", s.PeakW),
			fmt.Sprintf("%.1f", s.MeanW),
			fmt.Sprintf("%.1f", s.P50),
			fmt.Sprintf("%.1f", s.P90),
		})
	}
	table.Render()

	for _, p := range res.Charts {
		fmt.Fprintf(w, "chart: %s\n", p)
	}
	for _, p := range res.Exports {
		fmt.Fprintf(w, "export: %s\n", p)
	}
	pruneLabel := "pruned"
	if res.PruneDryRun {
		pruneLabel = "would prune"
	}
	for _, p := range res.Pruned {
		fmt.Fprintf(w, "%s: %s\n", pruneLabel, p)
	}

	if len(res.Daily) == 0 {
		return
	}

	fmt.Fprintln(w)
	daily := tablewriter.NewWriter(w)
	daily.SetHeader([]string{"Date", "Buckets", "Records", "Energy Wh", "Peak W", "Avg V"})
	daily.SetAlignment(tablewriter.ALIGN_RIGHT)
	for _, d := range res.Daily {
		daily.Append([]string{
			d.Date,
			fmt.Sprintf("%d", d.Buckets),
			fmt.Sprintf("%d", d.Records),
			fmt.Sprintf("%.1f", d.EnergyWh),
			fmt.Sprintf("%.1f", d.PeakW),
			fmt.Sprintf("%.2f", d.AvgVoltage),
		})
	}
	daily.Render()

	if res.Query == nil {
		return
	}

	fmt.Fprintln(w)
	q := tablewriter.NewWriter(w)
	q.SetHeader(res.Query.Columns)
	for _, row := range res.Query.Values {
		cells := make([]string, len(row))
		for i, v := range row {
			cells[i] = fmt.Sprint(v)
		}
		q.Append(cells)
	}
	q.Render()
}
