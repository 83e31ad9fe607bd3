package config

import (
	"fmt"

	"github.com/BurntSushi/toml"

	"github.com/ncasuk/ncas-aws-10-software/internal/amof"
	"github.com/ncasuk/ncas-aws-10-software/internal/domain"
)

// rangeFile is the TOML layout of a QC range override file:
//
//	[air_temperature]
//	min = 233.15
//	max = 333.15
//	units = "K"
//	flag_name = "qc_flag_temperature"
type rangeFile map[string]rangeEntry

type rangeEntry struct {
	Min      *float64 `toml:"min"`
	Max      *float64 `toml:"max"`
	Units    string   `toml:"units"`
	FlagName string   `toml:"flag_name"`
}

// LoadRanges returns the default range table with any overrides from path
// applied. An empty path returns the defaults. Fields left out of an entry
// keep their default value; new variables must give both bounds.
//
// Every variable in the result must be read from a station field listed in
// sources, and its flag name must be a QC flag variable of prod not shared
// with another variable, so that a run can always write the flags it computes.
func LoadRanges(path string, prod amof.Product, sources []domain.VariableSource) (domain.RangeTable, error) {
	base := domain.DefaultRanges()
	if path == "" {
		return base, nil
	}

	var file rangeFile
	md, err := toml.DecodeFile(path, &file)
	if err != nil {
		return domain.RangeTable{}, fmt.Errorf("decode qc ranges: %w", err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return domain.RangeTable{}, fmt.Errorf("decode qc ranges: unknown key %s", undecoded[0])
	}

	overrides := make(map[string]domain.VariableRange, len(file))
	for name, e := range file {
		r, known := base.Lookup(name)
		if !known && (e.Min == nil || e.Max == nil) {
			return domain.RangeTable{}, fmt.Errorf("qc range %s: min and max are required", name)
		}
		if e.Min != nil {
			r.Min = *e.Min
		}
		if e.Max != nil {
			r.Max = *e.Max
		}
		if e.Units != "" {
			r.Units = e.Units
		}
		if e.FlagName != "" {
			r.FlagName = e.FlagName
		}
		if r.Min > r.Max {
			return domain.RangeTable{}, fmt.Errorf("qc range %s: min %g greater than max %g", name, r.Min, r.Max)
		}
		overrides[name] = r
	}
	table := base.With(overrides)
	if err := checkRanges(table, prod, sources); err != nil {
		return domain.RangeTable{}, err
	}
	return table, nil
}

func checkRanges(table domain.RangeTable, prod amof.Product, sources []domain.VariableSource) error {
	sourced := make(map[string]bool, len(sources))
	for _, s := range sources {
		sourced[s.Variable] = true
	}

	flagOwner := make(map[string]string)
	for _, name := range table.Variables() {
		r, _ := table.Lookup(name)
		if !sourced[name] {
			return fmt.Errorf("qc range %s: no station field is read into this variable", name)
		}
		if r.FlagName == "" {
			return fmt.Errorf("qc range %s: flag_name is required", name)
		}
		if v, ok := prod.Variable(r.FlagName); !ok || v.Type != amof.Int8 {
			return fmt.Errorf("qc range %s: %s is not a qc flag variable of %s", name, r.FlagName, prod.Name)
		}
		if owner, ok := flagOwner[r.FlagName]; ok {
			return fmt.Errorf("qc range %s: flag %s already used by %s", name, r.FlagName, owner)
		}
		flagOwner[r.FlagName] = name
	}
	return nil
}
