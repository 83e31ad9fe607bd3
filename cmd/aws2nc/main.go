// Command aws2nc converts a raw ncas-aws-10 data file into an AMOF
// surface-met netCDF file, with range QC flags.
//
// Usage:
//
//	aws2nc [-v] [-m metadata.csv] [-o outdir] [-csv parsed.csv] [-ranges ranges.toml] input_file
//
// Settings not given as flags come from the environment (see internal/config).
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/dustin/go-humanize"

	"github.com/ncasuk/ncas-aws-10-software/internal/adapter/awsfile"
	"github.com/ncasuk/ncas-aws-10-software/internal/adapter/csvfile"
	kafkaadapter "github.com/ncasuk/ncas-aws-10-software/internal/adapter/kafka"
	"github.com/ncasuk/ncas-aws-10-software/internal/adapter/metadata"
	"github.com/ncasuk/ncas-aws-10-software/internal/adapter/netcdf"
	"github.com/ncasuk/ncas-aws-10-software/internal/amof"
	"github.com/ncasuk/ncas-aws-10-software/internal/config"
	"github.com/ncasuk/ncas-aws-10-software/internal/domain"
	"github.com/ncasuk/ncas-aws-10-software/internal/observability"
	"github.com/ncasuk/ncas-aws-10-software/internal/pipeline"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	os.Exit(execute())
}

func execute() int {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		return 1
	}

	fs := flag.NewFlagSet("aws2nc", flag.ExitOnError)
	verbose := fs.Bool("v", false, "print additional information")
	fs.StringVar(&cfg.MetadataFile, "m", cfg.MetadataFile, "csv or yaml file with global attributes and additional metadata")
	fs.StringVar(&cfg.OutputDir, "o", cfg.OutputDir, "directory to write the netCDF file to")
	fs.StringVar(&cfg.IntermediateCSV, "csv", cfg.IntermediateCSV, "also write parsed records to this csv file")
	fs.StringVar(&cfg.QCRangesFile, "ranges", cfg.QCRangesFile, "toml file overriding the qc operating ranges")
	fs.Usage = func() {
		fmt.Fprintf(fs.Output(), "Create an AMOF-compliant netCDF file for the ncas-aws-10 instrument.\n\nUsage: aws2nc [flags] input_file\n\n")
		fs.PrintDefaults()
	}
	_ = fs.Parse(os.Args[1:])

	if fs.NArg() != 1 {
		fs.Usage()
		return 2
	}
	if err := cfg.Validate(); err != nil {
		slog.Error("invalid config", "error", err)
		return 1
	}

	logger := observability.NewLogger(cfg, *verbose)
	metrics := observability.NewMetrics()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	runCtx, cancel := context.WithTimeout(ctx, cfg.RunTimeout)
	defer cancel()

	runErr := run(runCtx, cfg, fs.Arg(0), *verbose, logger, metrics)

	if cfg.PushgatewayURL != "" {
		pushCtx, pushCancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		if err := metrics.Push(pushCtx, cfg.PushgatewayURL, "aws2nc"); err != nil {
			logger.Error("metrics push failed", "error", err)
		}
		pushCancel()
	}

	if runErr != nil {
		logger.Error("processing failed", "input", fs.Arg(0), "error", runErr)
		return 1
	}
	return 0
}

func run(ctx context.Context, cfg *config.Config, input string, verbose bool, logger *slog.Logger, metrics *observability.Metrics) (err error) {
	inst, prod := amof.NCASAWS10(), amof.SurfaceMet()
	sources := domain.SurfaceMetSources()
	ranges, err := config.LoadRanges(cfg.QCRangesFile, prod, sources)
	if err != nil {
		return err
	}

	opts := pipeline.Options{
		Creator:    netcdf.NewCreator(cfg.OutputDir, prod, amof.GlobalAttributes(inst, prod, version), logger),
		QC:         domain.NewQC(ranges, logger, verbose),
		Instrument: inst,
		Product:    prod,
		Sources:    sources,
	}

	if cfg.MetadataFile != "" {
		md, err := metadata.Load(cfg.MetadataFile)
		if err != nil {
			return err
		}
		opts.Attributes = md.Attributes
		opts.Latitude, opts.Longitude = md.Latitude, md.Longitude
		logger.Debug("metadata loaded", "path", cfg.MetadataFile, "attributes", len(md.Attributes))
	}

	fields := domain.DefaultFieldSpec()

	if cfg.IntermediateCSV != "" {
		w, createErr := csvfile.Create(cfg.IntermediateCSV, fields)
		if createErr != nil {
			return createErr
		}
		defer func() {
			if cerr := w.Close(); cerr != nil {
				err = errors.Join(err, cerr)
				return
			}
			logger.Info("intermediate csv written", "path", cfg.IntermediateCSV, "rows", humanize.Comma(int64(w.Rows())))
		}()
		opts.Records = w
	}

	if cfg.KafkaEnabled() {
		writer := kafkaadapter.NewWriter(cfg, logger)
		defer func() {
			if cerr := writer.Close(); cerr != nil {
				logger.Error("kafka writer close error", "error", cerr)
			}
		}()
		opts.Observations = writer
		logger.Info("publishing observations", "topic", cfg.KafkaTopic, "brokers", cfg.KafkaBrokers)
	}

	reader := awsfile.NewReader(input, domain.NewParser(fields, logger))
	res, err := pipeline.New(opts, logger, metrics).Run(ctx, reader)
	if err != nil {
		return err
	}

	attrs := []any{"path", res.Path, "records", humanize.Comma(int64(res.Records))}
	if info, statErr := os.Stat(res.Path); statErr == nil {
		attrs = append(attrs, "size", humanize.Bytes(uint64(info.Size())))
	}
	logger.Info("netcdf file written", attrs...)
	return nil
}
