// Command awscsv converts a raw ncas-aws-10 data file into a CSV table with
// one column per field code and air temperature in Kelvin.
//
// Usage:
//
//	awscsv [-o out.csv] input_file
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/ncasuk/ncas-aws-10-software/internal/adapter/awsfile"
	"github.com/ncasuk/ncas-aws-10-software/internal/adapter/csvfile"
	"github.com/ncasuk/ncas-aws-10-software/internal/config"
	"github.com/ncasuk/ncas-aws-10-software/internal/domain"
	"github.com/ncasuk/ncas-aws-10-software/internal/observability"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	fs := flag.NewFlagSet("awscsv", flag.ExitOnError)
	verbose := fs.Bool("v", false, "print additional information")
	out := fs.String("o", "", "output csv path (default: input path with .csv extension)")
	fs.Usage = func() {
		fmt.Fprintf(fs.Output(), "Convert raw ncas-aws-10 data to csv.\n\nUsage: awscsv [flags] input_file\n\n")
		fs.PrintDefaults()
	}
	_ = fs.Parse(os.Args[1:])

	if fs.NArg() != 1 {
		fs.Usage()
		os.Exit(2)
	}
	input := fs.Arg(0)
	if *out == "" {
		*out = csvPath(input)
	}

	logger := observability.NewLogger(cfg, *verbose)
	fields := domain.DefaultFieldSpec()
	reader := awsfile.NewReader(input, domain.NewParser(fields, logger))

	records, err := reader.ReadAll()
	if err != nil {
		logger.Error("read raw file failed", "input", input, "error", err)
		os.Exit(1)
	}
	if err := csvfile.WriteFile(*out, fields, records); err != nil {
		logger.Error("write csv failed", "output", *out, "error", err)
		os.Exit(1)
	}

	logger.Info("csv written", "output", *out, "records", humanize.Comma(int64(len(records))))
}

// csvPath replaces the extension of path with .csv.
func csvPath(path string) string {
	return strings.TrimSuffix(path, filepath.Ext(path)) + ".csv"
}
