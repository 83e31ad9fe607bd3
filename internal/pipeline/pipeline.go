package pipeline

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"log/slog"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	sharedretry "github.com/couchcryptid/storm-data-shared/retry"

	"github.com/ncasuk/ncas-aws-10-software/internal/amof"
	"github.com/ncasuk/ncas-aws-10-software/internal/domain"
	"github.com/ncasuk/ncas-aws-10-software/internal/observability"
)

// ErrNoRecords is returned when a raw file holds no data lines.
var ErrNoRecords = errors.New("no records in input")

// RecordSource yields parsed records from one raw file.
type RecordSource interface {
	Records() iter.Seq2[domain.ParsedRecord, error]
	Path() string
}

// RecordSink receives every parsed record, e.g. the intermediate CSV.
type RecordSink interface {
	Write(rec domain.ParsedRecord) error
}

// ObservationSink publishes quality-controlled observations downstream.
type ObservationSink interface {
	Publish(ctx context.Context, observations []domain.Observation) error
}

// Options configures a Pipeline. Creator and QC are required.
type Options struct {
	Creator    domain.DatasetCreator
	QC         *domain.QC
	Instrument amof.Instrument
	Product    amof.Product
	Sources    []domain.VariableSource

	// Attributes from the deployment metadata file; they override defaults.
	Attributes []amof.GlobalAttr
	Latitude   *float32
	Longitude  *float32

	Records      RecordSink      // optional
	Observations ObservationSink // optional
}

// Result summarises a completed run.
type Result struct {
	Path      string
	Records   int
	Start     time.Time
	End       time.Time
	Flags     map[string]map[int8]int
	Published int
}

// Pipeline turns one raw station file into one AMOF netCDF file:
// parse, column, QC, write, and optionally publish.
type Pipeline struct {
	opts    Options
	logger  *slog.Logger
	metrics *observability.Metrics
}

// New creates a Pipeline.
func New(opts Options, logger *slog.Logger, metrics *observability.Metrics) *Pipeline {
	if opts.Sources == nil {
		opts.Sources = domain.SurfaceMetSources()
	}
	return &Pipeline{opts: opts, logger: logger, metrics: metrics}
}

// Run processes src end to end. The netCDF file is only written when every
// step before it succeeds.
func (p *Pipeline) Run(ctx context.Context, src RecordSource) (Result, error) {
	start := time.Now()
	defer func() {
		p.metrics.RunDuration.Observe(time.Since(start).Seconds())
	}()

	p.logger.Debug("reading raw file", "path", src.Path())
	records, err := p.readRecords(src)
	if err != nil {
		return Result{}, err
	}

	cols, err := domain.BuildColumns(records, p.opts.Sources)
	if err != nil {
		return Result{}, fmt.Errorf("build columns: %w", err)
	}
	for _, name := range cols.Order {
		if n := cols.Missing[name]; n > 0 {
			p.metrics.MissingValues.WithLabelValues(name).Add(float64(n))
			p.logger.Debug("variable has missing values", "variable", name, "missing", n)
		}
	}

	p.logger.Debug("running qc checks")
	flags, err := p.opts.QC.CheckValid(cols.Variables)
	if err != nil {
		return Result{}, fmt.Errorf("qc: %w", err)
	}
	counts := countFlags(flags)
	for name, byFlag := range counts {
		for flag, n := range byFlag {
			p.metrics.QCFlags.WithLabelValues(name, strconv.Itoa(int(flag))).Add(float64(n))
		}
	}

	first, last, err := domain.Coverage(cols.Times)
	if err != nil {
		return Result{}, err
	}

	path, err := p.writeDataset(ctx, src, cols, flags, first, last)
	if err != nil {
		return Result{}, err
	}
	p.metrics.FilesWritten.Inc()

	res := Result{
		Path:    path,
		Records: len(records),
		Start:   first,
		End:     last,
		Flags:   counts,
	}

	if p.opts.Observations != nil {
		obs := domain.Observations(p.opts.Instrument.Name, cols, observationFlags(flags, p.opts.QC), domain.Now())
		if err := p.publish(ctx, obs); err != nil {
			return res, err
		}
		p.metrics.ObservationsSent.Add(float64(len(obs)))
		res.Published = len(obs)
	}

	p.logger.Info("run complete",
		"input", src.Path(),
		"output", path,
		"records", res.Records,
		"time_coverage_start", first.Format(domain.CoverageLayout),
		"time_coverage_end", last.Format(domain.CoverageLayout),
		"duration", time.Since(start),
	)
	return res, nil
}

func (p *Pipeline) readRecords(src RecordSource) ([]domain.ParsedRecord, error) {
	var records []domain.ParsedRecord
	for rec, err := range src.Records() {
		if err != nil {
			p.metrics.LinesRejected.Inc()
			return nil, fmt.Errorf("read %s: %w", filepath.Base(src.Path()), err)
		}
		p.metrics.LinesParsed.Inc()
		for _, d := range rec.Diagnostics {
			p.metrics.FieldDiagnostics.WithLabelValues(diagnosticKind(d)).Inc()
		}
		if p.opts.Records != nil {
			if err := p.opts.Records.Write(rec); err != nil {
				return nil, fmt.Errorf("write intermediate record: %w", err)
			}
		}
		records = append(records, rec)
	}
	if len(records) == 0 {
		return nil, ErrNoRecords
	}
	return records, nil
}

func (p *Pipeline) writeDataset(ctx context.Context, src RecordSource, cols domain.Columns, flags map[string]domain.FlagArray, first, last time.Time) (string, error) {
	inst, prod := p.opts.Instrument, p.opts.Product
	id := amof.FileID{
		Instrument: inst.Name,
		Platform:   inst.Platform,
		Date:       domain.FileDate(first, last),
		Product:    prod.Name,
		Version:    prod.Version,
	}

	ds, err := p.opts.Creator.Create(ctx, id, map[string]int{amof.DimTime: len(cols.Times)})
	if err != nil {
		return "", fmt.Errorf("create dataset: %w", err)
	}

	if err := p.writeVariables(ds, cols, flags); err != nil {
		return "", err
	}
	if err := p.writeAttributes(ds, src, cols.Times, first, last); err != nil {
		return "", err
	}

	for _, a := range ds.GlobalAttrs() {
		if a.Value == "" {
			p.logger.Warn("global attribute has no value", "attribute", a.Name)
		}
	}

	if err := ds.Close(); err != nil {
		return "", fmt.Errorf("close dataset: %w", err)
	}
	return ds.Path(), nil
}

type column struct {
	name   string
	values any
}

func (p *Pipeline) writeVariables(ds domain.Dataset, cols domain.Columns, flags map[string]domain.FlagArray) error {
	ax := domain.BuildTimeAxis(cols.Times)
	lat, lon := p.coordinates()

	vars := []column{
		{"time", ax.Unix},
		{"latitude", []float32{lat}},
		{"longitude", []float32{lon}},
		{"day_of_year", ax.DayOfYear},
		{"year", ax.Year},
		{"month", ax.Month},
		{"day", ax.Day},
		{"hour", ax.Hour},
		{"minute", ax.Minute},
		{"second", ax.Second},
	}
	for _, name := range cols.Order {
		vars = append(vars, column{name, cols.Variables[name].Float32s()})
	}
	for _, name := range sortedKeys(flags) {
		vars = append(vars, column{name, flags[name].Data})
	}

	for _, v := range vars {
		if err := ds.WriteVariable(v.name, v.values); err != nil {
			return fmt.Errorf("write variable: %w", err)
		}
	}
	return nil
}

// writeAttributes fills the data-derived attributes, then applies deployment
// metadata over them. geospatial_bounds is derived from the coordinates only
// while it still holds its template placeholder.
func (p *Pipeline) writeAttributes(ds domain.Dataset, src RecordSource, times []time.Time, first, last time.Time) error {
	now := domain.Now()
	attrs := []amof.GlobalAttr{
		{Name: "time_coverage_start", Value: first.Format(domain.CoverageLayout)},
		{Name: "time_coverage_end", Value: last.Format(domain.CoverageLayout)},
		{Name: "last_revised_date", Value: now.Format(domain.CoverageLayout)},
	}
	if secs, ok := domain.SamplingInterval(times); ok {
		attrs = append(attrs, amof.GlobalAttr{Name: "sampling_interval", Value: domain.FormatSamplingInterval(secs)})
	}
	if h, _ := ds.GlobalAttr("history"); h == "" {
		attrs = append(attrs, amof.GlobalAttr{
			Name:  "history",
			Value: fmt.Sprintf("%s: created from %s", now.Format(domain.CoverageLayout), filepath.Base(src.Path())),
		})
	}
	attrs = append(attrs, p.opts.Attributes...)

	for _, a := range attrs {
		if err := ds.SetGlobalAttr(a.Name, a.Value); err != nil {
			return fmt.Errorf("set global attribute: %w", err)
		}
	}

	if bounds, ok := ds.GlobalAttr("geospatial_bounds"); ok && amof.NeedsChange(bounds) {
		lat, lon := p.coordinates()
		if err := ds.SetGlobalAttr("geospatial_bounds", amof.GeospatialBounds(lat, lon)); err != nil {
			return fmt.Errorf("set global attribute: %w", err)
		}
	}
	return nil
}

func (p *Pipeline) coordinates() (lat, lon float32) {
	lat, lon = p.opts.Instrument.Latitude, p.opts.Instrument.Longitude
	if p.opts.Latitude != nil {
		lat = *p.opts.Latitude
	}
	if p.opts.Longitude != nil {
		lon = *p.opts.Longitude
	}
	return lat, lon
}

// publish sends observations, retrying with exponential backoff: start at
// 200ms, double each retry, cap at 5s.
func (p *Pipeline) publish(ctx context.Context, obs []domain.Observation) error {
	const attempts = 3
	backoff := 200 * time.Millisecond
	maxBackoff := 5 * time.Second

	var err error
	for i := 1; i <= attempts; i++ {
		if err = p.opts.Observations.Publish(ctx, obs); err == nil {
			return nil
		}
		p.logger.Warn("publish observations failed", "error", err, "attempt", i)
		if i == attempts || !sharedretry.SleepWithContext(ctx, backoff) {
			break
		}
		backoff = sharedretry.NextBackoff(backoff, maxBackoff)
	}
	return fmt.Errorf("publish observations: %w", err)
}

func countFlags(flags map[string]domain.FlagArray) map[string]map[int8]int {
	out := make(map[string]map[int8]int, len(flags))
	for name, f := range flags {
		byFlag := make(map[int8]int)
		for _, v := range f.Data {
			byFlag[v]++
		}
		out[name] = byFlag
	}
	return out
}

// observationFlags re-keys QC flags from flag variable to measured variable.
func observationFlags(flags map[string]domain.FlagArray, qc *domain.QC) map[string]domain.FlagArray {
	out := make(map[string]domain.FlagArray, len(flags))
	for _, variable := range qc.Ranges().Variables() {
		r, _ := qc.Ranges().Lookup(variable)
		if f, ok := flags[r.FlagName]; ok {
			out[variable] = f
		}
	}
	return out
}

func diagnosticKind(err error) string {
	var mismatch *domain.UnitMismatchError
	var unrecognized *domain.UnrecognizedUnitError
	switch {
	case errors.As(err, &mismatch):
		return "unit_mismatch"
	case errors.As(err, &unrecognized):
		return "unrecognized_unit"
	default:
		return "other"
	}
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
