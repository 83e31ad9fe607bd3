package netcdf

import (
	"context"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/batchatco/go-native-netcdf/netcdf"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ncasuk/ncas-aws-10-software/internal/amof"
)

func testID() amof.FileID {
	return amof.FileID{Instrument: "ncas-aws-10", Platform: "iao", Date: "20220307", Product: "surface-met", Version: "1.0"}
}

func newFile(t *testing.T, n int) (*File, string) {
	t.Helper()
	dir := t.TempDir()
	c := NewCreator(dir, amof.SurfaceMet(), []amof.GlobalAttr{{Name: "Conventions", Value: "CF-1.6, NCAS-AMF-2.0.0"}}, nil)
	ds, err := c.Create(context.Background(), testID(), map[string]int{amof.DimTime: n})
	require.NoError(t, err)
	f, ok := ds.(*File)
	require.True(t, ok)
	return f, dir
}

func TestCreate_Path(t *testing.T) {
	f, dir := newFile(t, 2)
	assert.Equal(t, filepath.Join(dir, "ncas-aws-10_iao_20220307_surface-met_v1.0.nc"), f.Path())
}

func TestCreate_RejectsEmptyTime(t *testing.T) {
	c := NewCreator(t.TempDir(), amof.SurfaceMet(), nil, nil)
	_, err := c.Create(context.Background(), testID(), map[string]int{amof.DimTime: 0})
	require.Error(t, err)
}

func TestCreate_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	c := NewCreator(t.TempDir(), amof.SurfaceMet(), nil, nil)
	_, err := c.Create(ctx, testID(), map[string]int{amof.DimTime: 1})
	require.ErrorIs(t, err, context.Canceled)
}

func TestWriteVariable_Validation(t *testing.T) {
	f, _ := newFile(t, 3)

	t.Run("unknown variable", func(t *testing.T) {
		err := f.WriteVariable("dew_point", []float32{1, 2, 3})
		require.Error(t, err)
	})

	t.Run("wrong type", func(t *testing.T) {
		err := f.WriteVariable("air_pressure", []float64{1, 2, 3})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "float32")
	})

	t.Run("wrong length", func(t *testing.T) {
		err := f.WriteVariable("qc_flag_pressure", []int8{1, 1})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "want 3")
	})

	t.Run("coordinate has length one", func(t *testing.T) {
		require.NoError(t, f.WriteVariable("latitude", []float32{52.3}))
	})
}

func TestWriteVariable_FillsNaN(t *testing.T) {
	f, _ := newFile(t, 3)
	in := []float32{1000, float32(math.NaN()), 1001}
	require.NoError(t, f.WriteVariable("air_pressure", in))

	got, ok := f.values["air_pressure"].([]float32)
	require.True(t, ok)
	assert.Equal(t, []float32{1000, amof.FillValue, 1001}, got)
	assert.True(t, math.IsNaN(float64(in[1])), "input must not be modified")
}

func TestGlobalAttrs(t *testing.T) {
	f, _ := newFile(t, 1)

	require.NoError(t, f.SetGlobalAttr("title", "one"))
	require.NoError(t, f.SetGlobalAttr("Conventions", "CF-1.6"))
	require.NoError(t, f.SetGlobalAttr("title", "two"))

	v, ok := f.GlobalAttr("title")
	require.True(t, ok)
	assert.Equal(t, "two", v)
	assert.Equal(t, []amof.GlobalAttr{
		{Name: "Conventions", Value: "CF-1.6"},
		{Name: "title", Value: "two"},
	}, f.GlobalAttrs())

	_, ok = f.GlobalAttr("missing")
	assert.False(t, ok)
}

func TestCreate_CopiesTemplateAttrs(t *testing.T) {
	template := []amof.GlobalAttr{{Name: "title", Value: "template"}}
	c := NewCreator(t.TempDir(), amof.SurfaceMet(), template, nil)
	ds, err := c.Create(context.Background(), testID(), map[string]int{amof.DimTime: 1})
	require.NoError(t, err)
	require.NoError(t, ds.SetGlobalAttr("title", "changed"))
	assert.Equal(t, "template", template[0].Value)
}

func TestClose_WritesFile(t *testing.T) {
	f, _ := newFile(t, 2)

	require.NoError(t, f.WriteVariable("time", []float64{1646654400, 1646654405}))
	require.NoError(t, f.WriteVariable("latitude", []float32{52.5}))
	require.NoError(t, f.WriteVariable("longitude", []float32{-1.25}))
	require.NoError(t, f.WriteVariable("air_pressure", []float32{1000.5, float32(math.NaN())}))
	require.NoError(t, f.WriteVariable("qc_flag_pressure", []int8{1, 1}))
	nan := float32(math.NaN())
	require.NoError(t, f.WriteVariable("hail_intensity", []float32{nan, nan}))
	require.NoError(t, f.SetGlobalAttr("title", "Surface meteorology"))
	require.NoError(t, f.Close())

	_, err := os.Stat(f.Path())
	require.NoError(t, err)
	_, err = os.Stat(f.Path() + ".tmp")
	assert.True(t, os.IsNotExist(err))

	nc, err := netcdf.Open(f.Path())
	require.NoError(t, err)
	defer nc.Close()

	v, err := nc.GetVariable("air_pressure")
	require.NoError(t, err)
	assert.Equal(t, []float32{1000.5, amof.FillValue}, v.Values)
	units, ok := v.Attributes.Get("units")
	require.True(t, ok)
	assert.Equal(t, "hPa", units)

	flags, err := nc.GetVariable("qc_flag_pressure")
	require.NoError(t, err)
	assert.Equal(t, []int8{1, 1}, flags.Values)

	_, err = nc.GetVariable("hail_rate")
	assert.Error(t, err, "unwritten variables are omitted")
	_, err = nc.GetVariable("hail_intensity")
	assert.Error(t, err, "variables holding only fill values are omitted")

	title, ok := nc.Attributes().Get("title")
	require.True(t, ok)
	assert.Equal(t, "Surface meteorology", title)
}

func TestClose_Idempotent(t *testing.T) {
	f, _ := newFile(t, 1)
	require.NoError(t, f.WriteVariable("time", []float64{0}))
	require.NoError(t, f.Close())
	require.NoError(t, f.Close())
	require.Error(t, f.WriteVariable("time", []float64{0}))
}
