package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"catpost/internal/catalysis"
	"catpost/internal/config"
	apperrors "catpost/internal/errors"
	"catpost/internal/formula"
	"catpost/internal/infrastructure"
	"catpost/internal/tableio"
	"catpost/internal/transform"
	"catpost/internal/validation"
)

// inputList collects repeated -in flags.
type inputList []string

func (l *inputList) String() string {
	return strings.Join(*l, ",")
}

func (l *inputList) Set(v string) error {
	*l = append(*l, v)
	return nil
}

type options struct {
	recipe string
	config string
	out    string
	list   bool
	inputs inputList
}

func main() {
	if err := run(context.Background(), os.Args[1:], os.Stdout, os.Stderr); err != nil {
		if !errors.Is(err, flag.ErrHelp) {
			slog.Error("catpost failed", "error", err)
		}
		os.Exit(1)
	}
}

func parseFlags(args []string, stderr io.Writer) (options, error) {
	var opts options
	fs := flag.NewFlagSet("catpost", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&opts.recipe, "recipe", "", "YAML recipe listing the transforms to apply")
	fs.StringVar(&opts.config, "config", "", "config file (defaults to catpost.yaml or config.yaml when present)")
	fs.StringVar(&opts.out, "out", "", "output directory (overrides output.dir)")
	fs.Var(&opts.inputs, "in", "input table or glob pattern, .csv or .xlsx (repeatable)")
	fs.BoolVar(&opts.list, "list", false, "list the available functions and exit")
	if err := fs.Parse(args); err != nil {
		return opts, err
	}
	opts.inputs = append(opts.inputs, fs.Args()...)
	if opts.list {
		return opts, nil
	}
	if opts.recipe == "" {
		return opts, fmt.Errorf("-recipe is required")
	}
	if len(opts.inputs) == 0 {
		return opts, fmt.Errorf("at least one -in file is required")
	}
	return opts, nil
}

// app holds everything one invocation needs.
type app struct {
	cfg        *config.Config
	logger     *slog.Logger
	dispatcher *transform.Dispatcher
	recipe     *transform.Recipe
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	opts, err := parseFlags(args, stderr)
	if err != nil {
		return err
	}

	cfg, err := config.Load(opts.config)
	if err != nil {
		return err
	}
	if opts.out != "" {
		cfg.Output.Dir = opts.out
	}

	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		slog.Warn("Failed to initialize logger, using default", "error", err)
		logger = slog.Default()
	}
	defer infrastructure.CloseLogFile()

	providers, err := infrastructure.InitializeOTel(cfg.Telemetry, logger)
	if err != nil {
		return err
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := providers.Shutdown(shutdownCtx); err != nil {
			logger.Warn("OpenTelemetry shutdown failed", slog.String("error", err.Error()))
		}
	}()

	resolver, registry, err := buildRegistry(cfg, logger)
	if err != nil {
		return err
	}
	if opts.list {
		_, err := io.WriteString(stdout, describe(registry))
		return err
	}

	a, err := newApp(cfg, logger, resolver, registry, opts.recipe)
	if err != nil {
		return err
	}

	files := validation.NewFileValidator(logger)
	inputs, err := files.ExpandInputs(opts.inputs)
	if err != nil {
		return err
	}
	if err := files.ValidateTableFiles(inputs); err != nil {
		return err
	}
	if err := files.ValidateOutputDirectory(cfg.Output.Dir); err != nil {
		return err
	}

	ctx = infrastructure.EnsureRunID(ctx)
	logger.InfoContext(ctx, "Starting catpost",
		slog.String("recipe", opts.recipe),
		slog.Int("inputs", len(inputs)),
		slog.String("output_dir", cfg.Output.Dir),
		slog.Int("workers", cfg.Workers))

	err = a.processAll(ctx, inputs)

	if cfg.Telemetry.Metrics && cfg.Telemetry.MetricsFile != "" {
		if werr := providers.WriteMetrics(cfg.Telemetry.MetricsFile); werr != nil {
			logger.WarnContext(ctx, "Failed to write metrics", slog.String("error", werr.Error()))
		}
	}
	return err
}

// buildRegistry registers the calculators with the configured species
// aliases and default families.
func buildRegistry(cfg *config.Config, logger *slog.Logger) (*transform.Resolver, *transform.Registry, error) {
	formulas := formula.Default()
	if cfg.Formula.Aliases != "" {
		var err error
		if formulas, err = formula.LoadAliases(cfg.Formula.Aliases); err != nil {
			return nil, nil, err
		}
		logger.Info("Loaded species aliases", slog.String("path", cfg.Formula.Aliases))
	}

	resolver := transform.NewResolver(cfg.Transform.Families())
	registry := transform.NewRegistry()
	if err := catalysis.NewCalculator(formulas, resolver, logger).Register(registry); err != nil {
		return nil, nil, err
	}
	return resolver, registry, nil
}

func newApp(cfg *config.Config, logger *slog.Logger, resolver *transform.Resolver, registry *transform.Registry, recipePath string) (*app, error) {
	recipe, err := transform.LoadRecipe(recipePath)
	if err != nil {
		return nil, err
	}
	if err := recipe.Validate(registry); err != nil {
		return nil, fmt.Errorf("%s: %w", recipePath, err)
	}

	return &app{
		cfg:        cfg,
		logger:     logger,
		dispatcher: transform.NewDispatcher(registry, resolver, logger),
		recipe:     recipe,
	}, nil
}

// processAll runs the recipe on every input, at most cfg.Workers at a time.
// Each table is owned by exactly one goroutine.
func (a *app) processAll(ctx context.Context, inputs []string) error {
	outputs, err := a.outputPaths(inputs)
	if err != nil {
		return err
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(a.cfg.Workers)
	for _, in := range inputs {
		out := outputs[in]
		g.Go(func() error {
			return a.process(gctx, in, out)
		})
	}
	return g.Wait()
}

func (a *app) process(ctx context.Context, in, out string) error {
	logger := a.logger.With(slog.String("input", in))
	start := time.Now()

	tbl, err := tableio.Load(in, tableio.Options{Logger: logger})
	if err != nil {
		return err
	}
	if err := a.dispatcher.Run(ctx, tbl, a.recipe.Specs()); err != nil {
		return fmt.Errorf("%s: %w", in, err)
	}
	if err := tableio.Save(out, tbl, tableio.Options{Sigma: a.sigma(), Logger: logger}); err != nil {
		return err
	}

	logger.InfoContext(ctx, "Processed table",
		slog.String("output", out),
		slog.Int("rows", tbl.Len()),
		slog.Int("columns", len(tbl.Columns())),
		slog.Int("transforms", len(transform.Provenance(tbl))),
		slog.Duration("duration", time.Since(start)))
	return nil
}

// outputPaths maps every input to its output file. Inputs that would write
// the same file are rejected before any of them is processed.
func (a *app) outputPaths(inputs []string) (map[string]string, error) {
	single := len(inputs) == 1
	outputs := make(map[string]string, len(inputs))
	writers := make(map[string]string, len(inputs))
	for _, in := range inputs {
		out, err := a.outputPath(in, single)
		if err != nil {
			return nil, err
		}
		key := filepath.Clean(out)
		if prev, ok := writers[key]; ok {
			return nil, apperrors.NewValidationError(fmt.Sprintf("inputs %s and %s would both be saved as %s", prev, in, out)).
				WithContext("output", out)
		}
		writers[key] = in
		outputs[in] = out
	}
	return outputs, nil
}

// outputPath places the result in the output directory. A recipe save
// target names the file for a single input and sets the format otherwise.
func (a *app) outputPath(in string, single bool) (string, error) {
	format := tableio.Format(a.cfg.Output.Format)
	if save := a.recipe.Save; save != nil {
		if single {
			if filepath.IsAbs(save.As) {
				return save.As, nil
			}
			return filepath.Join(a.cfg.Output.Dir, save.As), nil
		}
		f, err := tableio.FormatOf(save.As)
		if err != nil {
			return "", err
		}
		format = f
	}
	base := strings.TrimSuffix(filepath.Base(in), filepath.Ext(in))
	return filepath.Join(a.cfg.Output.Dir, base+"."+string(format)), nil
}

func (a *app) sigma() bool {
	if a.recipe.Save != nil && a.recipe.Save.Sigma != nil {
		return *a.recipe.Save.Sigma
	}
	return a.cfg.Output.Sigma
}

// describe lists every registered function with its parameters.
func describe(reg *transform.Registry) string {
	var b strings.Builder
	for _, c := range reg.List() {
		names := make([]string, 0, len(c.Params))
		for _, p := range c.Params {
			names = append(names, p.Name)
		}
		fmt.Fprintf(&b, "%s(%s)\n", c.Name, strings.Join(names, ", "))
	}
	return b.String()
}
