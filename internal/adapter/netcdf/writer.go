// Package netcdf writes AMOF products as classic netCDF files.
package netcdf

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"os"
	"path/filepath"

	"github.com/batchatco/go-native-netcdf/netcdf/api"
	"github.com/batchatco/go-native-netcdf/netcdf/cdf"
	"github.com/batchatco/go-native-netcdf/netcdf/util"

	"github.com/ncasuk/ncas-aws-10-software/internal/amof"
	"github.com/ncasuk/ncas-aws-10-software/internal/domain"
)

// Creator creates product files in a directory.
// It implements domain.DatasetCreator.
type Creator struct {
	dir     string
	product amof.Product
	attrs   []amof.GlobalAttr
	logger  *slog.Logger
}

// NewCreator creates files for product in dir. Every new file starts with
// the given global attributes.
func NewCreator(dir string, product amof.Product, attrs []amof.GlobalAttr, logger *slog.Logger) *Creator {
	return &Creator{dir: dir, product: product, attrs: attrs, logger: logger}
}

// Create opens a new file. Nothing touches disk until Close.
func (c *Creator) Create(ctx context.Context, id amof.FileID, dims map[string]int) (domain.Dataset, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if dims[amof.DimTime] <= 0 {
		return nil, errors.New("create netcdf: time dimension must be positive")
	}

	attrs := make([]amof.GlobalAttr, len(c.attrs))
	copy(attrs, c.attrs)

	d := make(map[string]int, len(dims))
	for k, v := range dims {
		d[k] = v
	}
	for _, name := range []string{amof.DimLatitude, amof.DimLongitude} {
		if _, ok := d[name]; !ok {
			d[name] = 1
		}
	}

	return &File{
		path:    filepath.Join(c.dir, id.FileName()),
		product: c.product,
		dims:    d,
		attrs:   attrs,
		values:  make(map[string]any),
		logger:  c.logger,
	}, nil
}

// File buffers variables and attributes and writes them on Close.
type File struct {
	path    string
	product amof.Product
	dims    map[string]int
	attrs   []amof.GlobalAttr
	values  map[string]any
	logger  *slog.Logger
	closed  bool
}

// Path returns the destination of the file.
func (f *File) Path() string { return f.path }

// WriteVariable stores values for a product variable after checking its type
// and length. NaN in float variables with a _FillValue is replaced by it.
func (f *File) WriteVariable(name string, values any) error {
	if f.closed {
		return fmt.Errorf("write %s: file closed", name)
	}
	def, ok := f.product.Variable(name)
	if !ok {
		return fmt.Errorf("write %s: not a %s variable", name, f.product.Name)
	}

	n, err := length(def.Type, values)
	if err != nil {
		return fmt.Errorf("write %s: %w", name, err)
	}
	want := 1
	for _, dim := range def.Dims {
		want *= f.dims[dim]
	}
	if n != want {
		return fmt.Errorf("write %s: got %d values, want %d", name, n, want)
	}

	if fill, ok := def.FillValue(); ok {
		if vs, isFloat := values.([]float32); isFloat {
			values = fillNaN(vs, fill)
		}
	}
	f.values[name] = values
	return nil
}

// SetGlobalAttr sets or replaces a global attribute, keeping its position.
func (f *File) SetGlobalAttr(name, value string) error {
	if f.closed {
		return fmt.Errorf("set attribute %s: file closed", name)
	}
	for i := range f.attrs {
		if f.attrs[i].Name == name {
			f.attrs[i].Value = value
			return nil
		}
	}
	f.attrs = append(f.attrs, amof.GlobalAttr{Name: name, Value: value})
	return nil
}

// GlobalAttr returns a global attribute.
func (f *File) GlobalAttr(name string) (string, bool) {
	for _, a := range f.attrs {
		if a.Name == name {
			return a.Value, true
		}
	}
	return "", false
}

// GlobalAttrs returns all global attributes in file order.
func (f *File) GlobalAttrs() []amof.GlobalAttr {
	out := make([]amof.GlobalAttr, len(f.attrs))
	copy(out, f.attrs)
	return out
}

// Close writes the file. Product variables that were never written, or hold
// only their _FillValue, are left out rather than stored empty.
func (f *File) Close() (err error) {
	if f.closed {
		return nil
	}
	f.closed = true

	tmp := f.path + ".tmp"
	w, err := cdf.OpenWriter(tmp)
	if err != nil {
		return fmt.Errorf("open netcdf writer: %w", err)
	}
	defer func() {
		if err != nil {
			_ = os.Remove(tmp)
		}
	}()

	for _, def := range f.product.Variables {
		values, ok := f.values[def.Name]
		if !ok || allFill(def, values) {
			if f.logger != nil {
				f.logger.Debug("omitting empty variable", "variable", def.Name, "written", ok)
			}
			continue
		}
		attrs, err := variableAttrs(def.Attrs)
		if err != nil {
			_ = w.Close()
			return fmt.Errorf("attributes for %s: %w", def.Name, err)
		}
		if err := w.AddVar(def.Name, api.Variable{
			Values:     values,
			Dimensions: def.Dims,
			Attributes: attrs,
		}); err != nil {
			_ = w.Close()
			return fmt.Errorf("add variable %s: %w", def.Name, err)
		}
	}

	global, err := globalAttrs(f.attrs)
	if err != nil {
		_ = w.Close()
		return fmt.Errorf("global attributes: %w", err)
	}
	if err := w.AddGlobalAttrs(global); err != nil {
		_ = w.Close()
		return fmt.Errorf("add global attributes: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("close netcdf writer: %w", err)
	}
	if err := os.Rename(tmp, f.path); err != nil {
		return fmt.Errorf("rename netcdf file: %w", err)
	}
	return nil
}

func variableAttrs(attrs []amof.Attr) (api.AttributeMap, error) {
	keys := make([]string, 0, len(attrs))
	vals := make(map[string]any, len(attrs))
	for _, a := range attrs {
		keys = append(keys, a.Name)
		vals[a.Name] = a.Value
	}
	return util.NewOrderedMap(keys, vals)
}

func globalAttrs(attrs []amof.GlobalAttr) (api.AttributeMap, error) {
	keys := make([]string, 0, len(attrs))
	vals := make(map[string]any, len(attrs))
	for _, a := range attrs {
		keys = append(keys, a.Name)
		vals[a.Name] = a.Value
	}
	return util.NewOrderedMap(keys, vals)
}

func length(t amof.DataType, values any) (int, error) {
	switch t {
	case amof.Float64:
		if v, ok := values.([]float64); ok {
			return len(v), nil
		}
	case amof.Float32:
		if v, ok := values.([]float32); ok {
			return len(v), nil
		}
	case amof.Int32:
		if v, ok := values.([]int32); ok {
			return len(v), nil
		}
	case amof.Int8:
		if v, ok := values.([]int8); ok {
			return len(v), nil
		}
	}
	return 0, fmt.Errorf("values of type %T do not match %s", values, t)
}

// allFill reports whether every value of a float variable is its _FillValue.
func allFill(def amof.Variable, values any) bool {
	fill, ok := def.FillValue()
	if !ok {
		return false
	}
	vs, ok := values.([]float32)
	if !ok || len(vs) == 0 {
		return false
	}
	for _, v := range vs {
		if v != fill {
			return false
		}
	}
	return true
}

func fillNaN(values []float32, fill float32) []float32 {
	out := make([]float32, len(values))
	for i, v := range values {
		if math.IsNaN(float64(v)) {
			out[i] = fill
			continue
		}
		out[i] = v
	}
	return out
}
