package domain

import (
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testLine = "2022-03-07T12:00:00.125,0R0,Dn=236D,Dm=240D,Dx=244D,Sn=2.1M,Sm=2.6M,Sx=3.0M,Ta=21.3C,Tp=22.0C,Ua=45.2P,Pa=1012.4H,Rc=0.00M,Rd=0s,Ri=0.0M,Hc=0.0M,Hd=0s,Hi=0.0M,Rp=0.0M,Hp=0.0M,Th=21.8C,Vh=12.1N,Vs=12.2V,Vr=3.47V,Id=HEL"

func newTestParser() *Parser {
	return NewParser(DefaultFieldSpec(), slog.Default())
}

func TestParseText(t *testing.T) {
	t.Run("full line", func(t *testing.T) {
		rec, err := newTestParser().ParseText(testLine)
		require.NoError(t, err)

		assert.Equal(t, "2022-03-07T12:00:00.125", rec.Timestamp)
		assert.Equal(t, "240", rec.Text("Dm"))
		assert.Equal(t, "2.6", rec.Text("Sm"))
		assert.Equal(t, "1012.4", rec.Text("Pa"))
		assert.Equal(t, "0.00", rec.Text("Rc"))
		assert.Equal(t, "12.1", rec.Text("Vh"))
		assert.Equal(t, "HEL", rec.Text("Id"))
		assert.Len(t, rec.Values, 23)
		assert.Empty(t, rec.Diagnostics)
	})

	t.Run("sentinel is discarded", func(t *testing.T) {
		rec, err := newTestParser().ParseText("2022-03-07T12:00:00,anything,Pa=1000.0H")
		require.NoError(t, err)
		assert.Len(t, rec.Values, 1)
		assert.Equal(t, "1000.0", rec.Text("Pa"))
	})

	t.Run("trailing newline", func(t *testing.T) {
		rec, err := newTestParser().ParseText("2022-03-07T12:00:00,0R0,Ua=50.0P\r\n")
		require.NoError(t, err)
		assert.Equal(t, "50.0", rec.Text("Ua"))
	})

	t.Run("timestamp only", func(t *testing.T) {
		rec, err := newTestParser().ParseText("2022-03-07T12:00:00,0R0")
		require.NoError(t, err)
		assert.Empty(t, rec.Values)
	})
}

func TestParseLine_AirTemperature(t *testing.T) {
	tests := []struct {
		name  string
		token string
		want  float64
	}{
		{"celsius", "Ta=21.3C", 294.45},
		{"negative celsius", "Ta=-5.0C", 268.15},
		{"freezing fahrenheit", "Ta=32.0F", 273.15},
		{"fahrenheit equals celsius at -40", "Ta=-40.0F", 233.15},
		{"fahrenheit", "Ta=70.0F", (70.0-32)*5/9 + 273.15},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, err := newTestParser().ParseLine([]string{"2022-03-07T12:00:00", "0R0", tt.token})
			require.NoError(t, err)

			v, ok, err := rec.Float("Ta")
			require.NoError(t, err)
			require.True(t, ok)
			assert.InDelta(t, tt.want, v, 1e-9)
		})
	}
}

func TestParseLine_UnrecognizedTemperatureUnit(t *testing.T) {
	rec, err := newTestParser().ParseLine([]string{"2022-03-07T12:00:00", "0R0", "Ta=290.0K", "Pa=1000.0H"})
	require.NoError(t, err)

	_, present := rec.Values["Ta"]
	assert.False(t, present, "Ta should be left unset")
	assert.Equal(t, "1000.0", rec.Text("Pa"))

	var unitErr *UnrecognizedUnitError
	found := false
	for _, d := range rec.Diagnostics {
		if errors.As(d, &unitErr) {
			found = true
			assert.Equal(t, "K", unitErr.Unit)
		}
	}
	assert.True(t, found, "expected an UnrecognizedUnitError diagnostic")
}

func TestParseLine_UnitMismatchIsDiagnostic(t *testing.T) {
	rec, err := newTestParser().ParseLine([]string{"2022-03-07T12:00:00", "0R0", "Pa=29.9I"})
	require.NoError(t, err)

	assert.Equal(t, "29.9", rec.Text("Pa"))
	require.Len(t, rec.Diagnostics, 1)

	var mismatch *UnitMismatchError
	require.ErrorAs(t, rec.Diagnostics[0], &mismatch)
	assert.Equal(t, "Pa", mismatch.Code)
	assert.Equal(t, "I", mismatch.Got)
	assert.Equal(t, "H", mismatch.Want)
}

func TestParseLine_SkippedUnitChecks(t *testing.T) {
	rec, err := newTestParser().ParseLine([]string{"2022-03-07T12:00:00", "0R0", "Vh=12.1W", "Id=STN1"})
	require.NoError(t, err)
	assert.Empty(t, rec.Diagnostics)
	assert.Equal(t, "12.1", rec.Text("Vh"))
	assert.Equal(t, "STN1", rec.Text("Id"))
}

func TestParseLine_Errors(t *testing.T) {
	t.Run("missing separator", func(t *testing.T) {
		_, err := newTestParser().ParseLine([]string{"2022-03-07T12:00:00", "0R0", "Pa1000.0H"})
		var malformed *MalformedLineError
		require.ErrorAs(t, err, &malformed)
		assert.Equal(t, "Pa1000.0H", malformed.Token)
	})

	t.Run("empty value", func(t *testing.T) {
		_, err := newTestParser().ParseLine([]string{"2022-03-07T12:00:00", "0R0", "Pa="})
		var malformed *MalformedLineError
		require.ErrorAs(t, err, &malformed)
	})

	t.Run("too few tokens", func(t *testing.T) {
		_, err := newTestParser().ParseLine([]string{"2022-03-07T12:00:00"})
		var malformed *MalformedLineError
		require.ErrorAs(t, err, &malformed)
	})

	t.Run("unparsable temperature", func(t *testing.T) {
		_, err := newTestParser().ParseLine([]string{"2022-03-07T12:00:00", "0R0", "Ta=abcC"})
		var malformed *MalformedLineError
		require.ErrorAs(t, err, &malformed)
	})

	t.Run("unknown field", func(t *testing.T) {
		_, err := newTestParser().ParseLine([]string{"2022-03-07T12:00:00", "0R0", "Zz=1.0M"})
		var unknown *UnknownFieldError
		require.ErrorAs(t, err, &unknown)
		assert.Equal(t, "Zz", unknown.Code)
	})
}

func TestParseLine_Deterministic(t *testing.T) {
	p := newTestParser()
	first, err := p.ParseText(testLine)
	require.NoError(t, err)
	second, err := p.ParseText(testLine)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestParseLine_InjectedFieldSpec(t *testing.T) {
	spec := NewFieldSpec([]string{"Timestamp", "Xa"}, []byte{'0', 'Q'})
	p := NewParser(spec, nil)

	rec, err := p.ParseLine([]string{"2022-03-07T12:00:00", "0R0", "Xa=4.5Q"})
	require.NoError(t, err)
	assert.Equal(t, "4.5", rec.Text("Xa"))

	_, err = p.ParseLine([]string{"2022-03-07T12:00:00", "0R0", "Pa=1000.0H"})
	var unknown *UnknownFieldError
	require.ErrorAs(t, err, &unknown)
}

func TestParsedRecord_Float(t *testing.T) {
	rec := ParsedRecord{Values: map[string]Value{
		"Pa": {Text: "1012.4"},
		"Id": {Text: "HEL"},
	}}

	v, ok, err := rec.Float("Pa")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.InDelta(t, 1012.4, v, 1e-9)

	v, ok, err = rec.Float("Ua")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.True(t, v != v, "missing field should be NaN")

	_, _, err = rec.Float("Id")
	require.Error(t, err)
}
