// Command validate checks that the outputs of a processing run agree with the
// raw file they came from: the intermediate CSV must have one row per raw line
// with identical field values, and the netCDF file must have one timestep per
// line with QC flags drawn from each flag variable's flag_values.
//
// Usage:
//
//	go run ./cmd/validate \
//	  -raw data/mock/ncas-aws-10_20220307.txt \
//	  -csv /tmp/ncas-aws-10_20220307.csv \
//	  -nc /tmp/ncas-aws-10_iao_20220307_surface-met_v1.0.nc
package main

import (
	"encoding/csv"
	"flag"
	"fmt"
	"os"
	"slices"
	"strings"

	"github.com/batchatco/go-native-netcdf/netcdf"
	"github.com/dustin/go-humanize"

	"github.com/ncasuk/ncas-aws-10-software/internal/adapter/awsfile"
	"github.com/ncasuk/ncas-aws-10-software/internal/amof"
	"github.com/ncasuk/ncas-aws-10-software/internal/domain"
)

// phase tracks pass/fail for a validation phase.
type phase struct {
	name   string
	errors []string
}

func (p *phase) errorf(format string, args ...any) {
	p.errors = append(p.errors, fmt.Sprintf(format, args...))
}

func (p *phase) passed() bool { return len(p.errors) == 0 }

// maxErrors caps the detail printed per phase.
const maxErrors = 20

func main() {
	rawPath := flag.String("raw", "", "path to the raw ncas-aws-10 data file")
	csvPath := flag.String("csv", "", "path to the intermediate csv written from it")
	ncPath := flag.String("nc", "", "path to the netCDF file written from it (optional)")
	flag.Parse()

	if *rawPath == "" || *csvPath == "" {
		flag.Usage()
		os.Exit(1)
	}

	if code := run(*rawPath, *csvPath, *ncPath); code != 0 {
		os.Exit(code)
	}
}

func run(rawPath, csvPath, ncPath string) int {
	fmt.Println("=== AWS Data Integrity Validation ===")
	fmt.Println()

	fields := domain.DefaultFieldSpec()
	records, err := awsfile.NewReader(rawPath, domain.NewParser(fields, nil)).ReadAll()
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: parse raw file: %v\n", err)
		return 1
	}

	header, rows, err := loadCSV(csvPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: load csv: %v\n", err)
		return 1
	}

	phases := []*phase{
		validateHeader(header, fields),
		validateRows(records, header, rows),
	}
	if ncPath != "" {
		phases = append(phases, validateNetCDF(ncPath, len(records)))
	}

	fmt.Println()
	allPassed := true
	for _, p := range phases {
		status := "\033[32mPASS\033[0m"
		if !p.passed() {
			status = fmt.Sprintf("\033[31mFAIL (%d errors)\033[0m", len(p.errors))
			allPassed = false
		}
		fmt.Printf("  %-42s %s\n", p.name, status)
	}

	fmt.Println()
	fmt.Printf("Records: %s raw, %s csv\n", humanize.Comma(int64(len(records))), humanize.Comma(int64(len(rows))))

	for _, p := range phases {
		if p.passed() {
			continue
		}
		fmt.Printf("\n--- %s ---\n", p.name)
		for i, e := range p.errors {
			if i == maxErrors {
				fmt.Printf("  ... %d more\n", len(p.errors)-maxErrors)
				break
			}
			fmt.Printf("  [%d] %s\n", i+1, e)
		}
	}

	if allPassed {
		fmt.Println("\nAll validations passed.")
		return 0
	}
	fmt.Println("\nValidation FAILED.")
	return 1
}

// ── Data loading ──

func loadCSV(path string) ([]string, [][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}
	defer f.Close()

	all, err := csv.NewReader(f).ReadAll()
	if err != nil {
		return nil, nil, err
	}
	if len(all) == 0 {
		return nil, nil, fmt.Errorf("no header in %s", path)
	}
	return all[0], all[1:], nil
}

// ── Phases ──

func validateHeader(header []string, fields domain.FieldSpec) *phase {
	p := &phase{name: "CSV header matches field codes"}
	if want := fields.Codes(); !slices.Equal(header, want) {
		p.errorf("header %s, want %s", strings.Join(header, ","), strings.Join(want, ","))
	}
	return p
}

func validateRows(records []domain.ParsedRecord, header []string, rows [][]string) *phase {
	p := &phase{name: "CSV rows match raw lines"}
	if len(rows) != len(records) {
		p.errorf("row count: csv=%d raw=%d", len(rows), len(records))
	}
	for i := range min(len(rows), len(records)) {
		row, rec := rows[i], records[i]
		if len(row) != len(header) {
			p.errorf("row %d: %d columns, want %d", i+1, len(row), len(header))
			continue
		}
		for j, code := range header {
			if got, want := row[j], rec.Text(code); got != want {
				p.errorf("row %d %s: csv=%q raw=%q", i+1, code, got, want)
			}
		}
	}
	return p
}

func validateNetCDF(path string, records int) *phase {
	p := &phase{name: "netCDF timesteps and flag values"}
	nc, err := netcdf.Open(path)
	if err != nil {
		p.errorf("open: %v", err)
		return p
	}
	defer nc.Close()

	tv, err := nc.GetVariable("time")
	if err != nil {
		p.errorf("time variable: %v", err)
		return p
	}
	if times, ok := tv.Values.([]float64); !ok {
		p.errorf("time variable has type %T", tv.Values)
	} else if len(times) != records {
		p.errorf("time length %d, raw lines %d", len(times), records)
	}

	for _, def := range amof.SurfaceMet().Variables {
		if def.Type != amof.Int8 {
			continue
		}
		v, err := nc.GetVariable(def.Name)
		if err != nil {
			continue // omitted when never written
		}
		data, ok := v.Values.([]int8)
		if !ok {
			p.errorf("%s has type %T", def.Name, v.Values)
			continue
		}
		allowed, _ := v.Attributes.Get("flag_values")
		valid, ok := allowed.([]int8)
		if !ok {
			p.errorf("%s: flag_values has type %T", def.Name, allowed)
			continue
		}
		for i, f := range data {
			if f == domain.FlagNotUsed {
				p.errorf("%s[%d] uses the reserved flag %d", def.Name, i, f)
				continue
			}
			if !slices.Contains(valid, f) {
				p.errorf("%s[%d] = %d not in flag_values %v", def.Name, i, f, valid)
			}
		}
	}
	return p
}
