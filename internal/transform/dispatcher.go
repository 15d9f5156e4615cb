package transform

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strconv"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"catpost/internal/infrastructure"
	"catpost/internal/table"
)

// TracerName identifies spans emitted by the dispatcher.
const TracerName = "catpost.transform"

// ProvenancePrefix starts every provenance attribute key.
const ProvenancePrefix = "transform."

// Dispatcher runs registered contracts against tables.
type Dispatcher struct {
	registry *Registry
	resolver *Resolver
	logger   *slog.Logger
	tracer   trace.Tracer
	metrics  *infrastructure.TransformMetrics
}

// NewDispatcher creates a dispatcher. A nil resolver means DefaultResolver
// and a nil logger means slog.Default(). Spans and metrics go to the global
// OpenTelemetry providers.
func NewDispatcher(registry *Registry, resolver *Resolver, logger *slog.Logger) *Dispatcher {
	if resolver == nil {
		resolver = DefaultResolver()
	}
	if logger == nil {
		logger = slog.Default()
	}
	logger = infrastructure.WithComponent(logger, "transform")
	metrics, err := infrastructure.CreateTransformMetrics(otel.Meter(TracerName))
	if err != nil {
		logger.Warn("transform metrics unavailable", slog.String("error", err.Error()))
		metrics = nil
	}
	return &Dispatcher{
		registry: registry,
		resolver: resolver,
		logger:   logger,
		tracer:   otel.Tracer(TracerName),
		metrics:  metrics,
	}
}

// Registry returns the registry the dispatcher looks contracts up in.
func (d *Dispatcher) Registry() *Registry {
	return d.registry
}

// Apply runs one spec. On error the table is unchanged.
func (d *Dispatcher) Apply(ctx context.Context, tbl *table.Table, spec Spec) error {
	start := time.Now()
	ctx, span := d.tracer.Start(ctx, "transform."+spec.Function,
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(
			attribute.String("transform.function", spec.Function),
			attribute.Int("transform.rows", tbl.Len()),
		),
	)
	defer span.End()

	err := d.apply(ctx, tbl, spec)
	d.metrics.RecordTransform(ctx, spec.Function, tbl.Len(), time.Since(start), err)

	if err != nil {
		infrastructure.RecordError(ctx, err)
		infrastructure.WithError(d.logger, err).ErrorContext(ctx, "transform failed",
			slog.String("function", spec.Function),
			slog.String("args", formatArgs(spec.Args)))
		return err
	}

	span.SetStatus(codes.Ok, "transform applied")
	d.logger.InfoContext(ctx, "transform applied",
		slog.String("function", spec.Function),
		slog.String("args", formatArgs(spec.Args)),
		slog.Int("rows", tbl.Len()),
		slog.Duration("duration", time.Since(start)))
	return nil
}

func (d *Dispatcher) apply(ctx context.Context, tbl *table.Table, spec Spec) error {
	c, err := d.registry.Get(spec.Function)
	if err != nil {
		return err
	}
	return Invoke(ctx, tbl, c, d.resolver, spec.Args)
}

// Transform applies function once per argument set in using, in order.
func (d *Dispatcher) Transform(ctx context.Context, tbl *table.Table, function string, using []Args) error {
	if len(using) == 0 {
		using = []Args{{}}
	}
	for i, args := range using {
		if err := d.Apply(ctx, tbl, Spec{Function: function, Args: args}); err != nil {
			return fmt.Errorf("%s using[%d]: %w", function, i, err)
		}
	}
	return nil
}

// Run applies specs in order, each fully before the next, and stops at the
// first failure.
func (d *Dispatcher) Run(ctx context.Context, tbl *table.Table, specs []Spec) error {
	for i, spec := range specs {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := d.Apply(ctx, tbl, spec); err != nil {
			return fmt.Errorf("step %d: %w", i, err)
		}
	}
	return nil
}

// Invoke binds args, runs c and writes its outputs and a provenance
// attribute to tbl. It is the single write path shared by the dispatcher
// and direct calculator calls.
func Invoke(ctx context.Context, tbl *table.Table, c Contract, resolver *Resolver, args Args) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if resolver == nil {
		resolver = DefaultResolver()
	}
	in, err := resolver.Bind(tbl, c, args)
	if err != nil {
		return err
	}
	cols, err := c.Run(ctx, in)
	if err != nil {
		return err
	}
	if err := tbl.SetColumns(cols...); err != nil {
		return fmt.Errorf("%s: %w", c.Name, err)
	}
	recordProvenance(ctx, tbl, c.Name, args)
	infrastructure.AddSpanEvent(ctx, "columns written", map[string]interface{}{
		"transform.function": c.Name,
		"transform.columns":  len(cols),
	})
	return nil
}

func recordProvenance(ctx context.Context, tbl *table.Table, function string, args Args) {
	runID := infrastructure.GetRunID(ctx)
	if runID == "" {
		runID = infrastructure.GenerateRunID()
	}
	value := function
	if a := formatArgs(args); a != "" {
		value += " " + a
	}
	value += " run=" + runID
	tbl.SetAttr(nextProvenanceKey(tbl), value)
}

// Provenance returns the provenance attribute values of tbl in the order
// they were written.
func Provenance(tbl *table.Table) []string {
	type entry struct {
		n     int
		value string
	}
	var entries []entry
	for k, v := range tbl.Attrs() {
		if n, ok := provenanceIndex(k); ok {
			entries = append(entries, entry{n, v})
		}
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].n < entries[j].n })
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.value
	}
	return out
}

func nextProvenanceKey(tbl *table.Table) string {
	next := 0
	for _, k := range tbl.AttrKeys() {
		if n, ok := provenanceIndex(k); ok && n >= next {
			next = n + 1
		}
	}
	return ProvenancePrefix + strconv.Itoa(next)
}

func provenanceIndex(key string) (int, bool) {
	rest, ok := strings.CutPrefix(key, ProvenancePrefix)
	if !ok {
		return 0, false
	}
	n, err := strconv.Atoi(rest)
	if err != nil || n < 0 {
		return 0, false
	}
	return n, true
}

func formatArgs(args Args) string {
	keys := make([]string, 0, len(args))
	for k := range args {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = k + "=" + args[k]
	}
	return strings.Join(parts, " ")
}
