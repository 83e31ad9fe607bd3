package domain

// Field codes that are not physical measurements and carry no unit.
const (
	FieldTimestamp = "Timestamp"
	FieldID        = "Id"
)

// Field codes with special handling in the parser.
const (
	FieldAirTemperature = "Ta"
	FieldSupplyVoltage  = "Vh"
)

// FieldSpec is the ordered set of field codes emitted by the weather station,
// each with the single-character unit suffix its value is expected to carry.
// A FieldSpec is immutable once built.
type FieldSpec struct {
	codes []string
	units map[string]byte
}

// NewFieldSpec builds a FieldSpec from parallel code and unit slices.
// It panics if the slices differ in length, since the tables are static.
func NewFieldSpec(codes []string, units []byte) FieldSpec {
	if len(codes) != len(units) {
		panic("domain: field codes and units differ in length")
	}
	fs := FieldSpec{
		codes: make([]string, len(codes)),
		units: make(map[string]byte, len(codes)),
	}
	copy(fs.codes, codes)
	for i, c := range codes {
		fs.units[c] = units[i]
	}
	return fs
}

// DefaultFieldSpec returns the Vaisala WXT536 field table used by ncas-aws-10.
//
//	D  degrees       M  m/s, mm or hits/cm2 (per field)
//	C  Celsius       P  percent
//	H  hPa           s  seconds
//	V  volts         0  unitless
func DefaultFieldSpec() FieldSpec {
	return NewFieldSpec(
		[]string{
			"Timestamp", "Dn", "Dm", "Dx", "Sn", "Sm", "Sx", "Ta", "Tp", "Ua", "Pa", "Rc",
			"Rd", "Ri", "Hc", "Hd", "Hi", "Rp", "Hp", "Th", "Vh", "Vs", "Vr", "Id",
		},
		[]byte{
			'0', 'D', 'D', 'D', 'M', 'M', 'M', 'C', 'C', 'P', 'H', 'M',
			's', 'M', 'M', 's', 'M', 'M', 'M', 'C', 'V', 'V', 'V', '0',
		},
	)
}

// Codes returns the field codes in station order.
func (fs FieldSpec) Codes() []string {
	out := make([]string, len(fs.codes))
	copy(out, fs.codes)
	return out
}

// Unit returns the expected unit suffix for code.
func (fs FieldSpec) Unit(code string) (byte, bool) {
	u, ok := fs.units[code]
	return u, ok
}

// Len reports the number of field codes.
func (fs FieldSpec) Len() int { return len(fs.codes) }
