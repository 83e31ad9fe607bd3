// Command genmock generates a synthetic raw ncas-aws-10 data file for test
// fixtures. Output is deterministic for a given seed. With -anomalies it
// injects the cases the QC and parser must handle: out-of-range pressure,
// calm wind, missing hail fields, Fahrenheit temperature, and wrong unit
// suffixes. It then parses the file back through the real parser and QC and
// prints the flag counts for updating test assertions.
//
// Usage:
//
//	go run ./cmd/genmock -out data/mock/ncas-aws-10_20220307.txt -n 8 -anomalies
package main

import (
	"bufio"
	"flag"
	"fmt"
	"log"
	"math/rand/v2"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/ncasuk/ncas-aws-10-software/internal/adapter/awsfile"
	"github.com/ncasuk/ncas-aws-10-software/internal/domain"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	out := flag.String("out", "", "output path for the raw data file")
	start := flag.String("start", "2022-03-07T12:00:00Z", "timestamp of the first line (RFC3339)")
	n := flag.Int("n", 720, "number of lines")
	interval := flag.Duration("interval", 5*time.Second, "time between lines")
	seed := flag.Uint64("seed", 1, "random seed")
	anomalies := flag.Bool("anomalies", false, "inject out-of-range, calm, missing, and unit anomalies")
	flag.Parse()

	if *out == "" || *n <= 0 {
		flag.Usage()
		return fmt.Errorf("missing required flags: -out, -n")
	}
	t0, err := time.Parse(time.RFC3339, *start)
	if err != nil {
		return fmt.Errorf("parse -start: %w", err)
	}

	clock := clockwork.NewFakeClockAt(t0.UTC())
	gen := &generator{rng: rand.New(rand.NewPCG(*seed, *seed)), anomalies: *anomalies}

	lines := make([]string, 0, *n)
	for i := range *n {
		lines = append(lines, gen.line(i, clock.Now()))
		clock.Advance(*interval)
	}

	if err := writeLines(*out, lines); err != nil {
		return fmt.Errorf("writing raw file: %w", err)
	}
	log.Printf("wrote %d lines: %s", len(lines), *out)

	return printStats(*out)
}

// generator produces plausible WXT536 readings that drift slowly.
type generator struct {
	rng       *rand.Rand
	anomalies bool
	rain      float64
}

func (g *generator) line(i int, ts time.Time) string {
	v := map[string]string{
		"Dn": fmt.Sprintf("%.0fD", g.between(0, 359)),
		"Dm": fmt.Sprintf("%.0fD", g.between(0, 359)),
		"Dx": fmt.Sprintf("%.0fD", g.between(0, 359)),
		"Sn": fmt.Sprintf("%.1fM", g.between(0.1, 2)),
		"Sm": fmt.Sprintf("%.1fM", g.between(2, 6)),
		"Sx": fmt.Sprintf("%.1fM", g.between(6, 12)),
		"Ta": fmt.Sprintf("%.1fC", g.between(4, 8)),
		"Tp": fmt.Sprintf("%.1fC", g.between(4, 8)),
		"Ua": fmt.Sprintf("%.1fP", g.between(60, 95)),
		"Pa": fmt.Sprintf("%.1fH", 1012+g.between(-1, 1)),
		"Rc": fmt.Sprintf("%.2fM", g.rain),
		"Rd": "0s",
		"Ri": "0.0M",
		"Hc": "0.0M",
		"Hd": "0s",
		"Hi": "0.0M",
		"Rp": "0.0M",
		"Hp": "0.0M",
		"Th": fmt.Sprintf("%.1fC", g.between(5, 9)),
		"Vh": "0.0#",
		"Vs": fmt.Sprintf("%.1fV", g.between(11.8, 12.4)),
		"Vr": "3.50V",
		"Id": "HEL",
	}
	if g.rng.Float64() < 0.05 {
		g.rain += 0.01
	}

	if g.anomalies {
		switch i % 8 {
		case 3:
			v["Pa"] = "1200.0H"
		case 4:
			v["Sm"], v["Dm"] = "0.0M", "0D"
		case 5:
			delete(v, "Hc")
		case 6:
			v["Ta"] = "41.0F"
		case 7:
			v["Ua"] = strings.TrimSuffix(v["Ua"], "P") + "#"
		}
	}

	var b strings.Builder
	b.WriteString(ts.Format("2006-01-02T15:04:05.000"))
	b.WriteString(",0R0")
	for _, code := range domain.DefaultFieldSpec().Codes() {
		val, ok := v[code]
		if !ok {
			continue
		}
		b.WriteString("," + code + "=" + val)
	}
	return b.String()
}

func (g *generator) between(lo, hi float64) float64 {
	return lo + g.rng.Float64()*(hi-lo)
}

func writeLines(path string, lines []string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	w := bufio.NewWriter(f)
	for _, l := range lines {
		if _, err := w.WriteString(l + "\r\n"); err != nil {
			_ = f.Close()
			return err
		}
	}
	if err := w.Flush(); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

func printStats(path string) error {
	records, err := awsfile.NewReader(path, domain.NewParser(domain.DefaultFieldSpec(), nil)).ReadAll()
	if err != nil {
		return fmt.Errorf("re-parse generated file: %w", err)
	}
	cols, err := domain.BuildColumns(records, domain.SurfaceMetSources())
	if err != nil {
		return err
	}
	flags, err := domain.NewQC(domain.DefaultRanges(), nil, false).CheckValid(cols.Variables)
	if err != nil {
		return err
	}

	var diagnostics int
	for _, r := range records {
		diagnostics += len(r.Diagnostics)
	}

	fmt.Println("\n=== Stats for updating test assertions ===")
	fmt.Printf("Records: %d\n", len(records))
	fmt.Printf("Diagnostics: %d\n", diagnostics)
	if secs, ok := domain.SamplingInterval(cols.Times); ok {
		fmt.Printf("Sampling interval: %s\n", domain.FormatSamplingInterval(secs))
	}

	names := make([]string, 0, len(flags))
	for name := range flags {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		counts := map[int8]int{}
		for _, f := range flags[name].Data {
			counts[f]++
		}
		fmt.Printf("  %-30s good=%d flag2=%d flag3=%d\n", name, counts[1], counts[2], counts[3])
	}

	for _, name := range cols.Order {
		if m := cols.Missing[name]; m > 0 {
			fmt.Printf("Missing %s: %d\n", name, m)
		}
	}
	return nil
}
