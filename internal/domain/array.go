package domain

// Array is an n-dimensional float array stored flat in row-major order.
type Array struct {
	Shape []int
	Data  []float64
}

// Vector wraps data as a one-dimensional Array.
func Vector(data ...float64) Array {
	return Array{Shape: []int{len(data)}, Data: data}
}

// Len reports the number of elements.
func (a Array) Len() int { return len(a.Data) }

// Float32s converts the data to float32, the storage type of the netCDF variables.
func (a Array) Float32s() []float32 {
	out := make([]float32, len(a.Data))
	for i, v := range a.Data {
		out[i] = float32(v)
	}
	return out
}

// FlagArray holds QC flag codes with the shape of the array they describe.
type FlagArray struct {
	Shape []int
	Data  []int8
}

func newFlagArray(shape []int, n int) FlagArray {
	s := make([]int, len(shape))
	copy(s, shape)
	if len(s) == 0 {
		s = []int{n}
	}
	data := make([]int8, n)
	for i := range data {
		data[i] = FlagGood
	}
	return FlagArray{Shape: s, Data: data}
}
