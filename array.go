package mcmc

import (
	"errors"
	"fmt"
	"math"
)

// DType identifies the numeric representation of an Array.
// Values are stored as float64 regardless of DType; the DType records the
// logical kind so consumers can materialize exact integers or booleans.
type DType string

// Supported numeric kinds. Float64 is the sampler-native default.
const (
	Float64 DType = "float64"
	Int64   DType = "int64"
	Bool    DType = "bool"
)

// Array is a dense numeric array with row-major storage.
//
// Shape lists the extent of each dimension. An empty Shape denotes a scalar
// holding exactly one element. Data always holds exactly Size() elements.
type Array struct {
	Shape []int     `json:"shape"`
	DType DType     `json:"dtype"`
	Data  []float64 `json:"data"`
}

// NewArray allocates a zero-filled array of the given kind and shape.
func NewArray(dtype DType, shape ...int) *Array {
	size := 1
	for _, dim := range shape {
		size *= dim
	}
	return &Array{
		Shape: append([]int(nil), shape...),
		DType: dtype,
		Data:  make([]float64, size),
	}
}

// NDim returns the number of dimensions.
func (a *Array) NDim() int {
	return len(a.Shape)
}

// Size returns the total number of elements.
func (a *Array) Size() int {
	size := 1
	for _, dim := range a.Shape {
		size *= dim
	}
	return size
}

// offset converts a multi-index into a flat row-major position.
// It panics on rank mismatch or out-of-range indices, mirroring slice
// indexing semantics.
func (a *Array) offset(idx []int) int {
	if len(idx) != len(a.Shape) {
		panic(fmt.Sprintf("mcmc: index rank %d does not match array rank %d",
			len(idx), len(a.Shape)))
	}
	pos := 0
	for d, i := range idx {
		if i < 0 || i >= a.Shape[d] {
			panic(fmt.Sprintf("mcmc: index %d out of range for dimension %d (size %d)",
				i, d, a.Shape[d]))
		}
		pos = pos*a.Shape[d] + i
	}
	return pos
}

// At returns the element at the given multi-index.
func (a *Array) At(idx ...int) float64 {
	return a.Data[a.offset(idx)]
}

// Set stores v at the given multi-index.
func (a *Array) Set(v float64, idx ...int) {
	a.Data[a.offset(idx)] = v
}

// AsType returns a copy of the array cast to the given kind.
// Int64 truncates toward zero; Bool maps nonzero to 1. Casting to the
// array's own kind still returns a fresh copy.
func (a *Array) AsType(dtype DType) *Array {
	out := &Array{
		Shape: append([]int(nil), a.Shape...),
		DType: dtype,
		Data:  make([]float64, len(a.Data)),
	}
	switch dtype {
	case Int64:
		for i, v := range a.Data {
			out.Data[i] = float64(int64(v))
		}
	case Bool:
		for i, v := range a.Data {
			if v != 0 {
				out.Data[i] = 1
			}
		}
	default:
		copy(out.Data, a.Data)
	}
	return out
}

// Equal reports whether two arrays have identical kind, shape, and
// bit-identical element values. NaN payloads are compared exactly.
func (a *Array) Equal(b *Array) bool {
	if a.DType != b.DType || len(a.Shape) != len(b.Shape) {
		return false
	}
	for i, dim := range a.Shape {
		if b.Shape[i] != dim {
			return false
		}
	}
	if len(a.Data) != len(b.Data) {
		return false
	}
	for i, v := range a.Data {
		if math.Float64bits(v) != math.Float64bits(b.Data[i]) {
			return false
		}
	}
	return true
}

// FromColumns reconstructs a (draws, *shape) array from flat scalar columns.
//
// Column k holds the saved values of the element whose multi-index is the
// column-major (first-index-fastest) unraveling of k over shape. This is the
// storage order used by Stan-style samplers when they flatten a shaped
// variable into named scalar columns: theta[0,0], theta[1,0], theta[0,1], ...
// for a (2,3) variable enumerates the first index fastest.
//
// Only the trailing draws rows of each column are consumed, so callers trim
// warm-up by passing the post-warm-up draw count. len(cols) must equal the
// element count of shape (one column for a scalar's empty shape).
func FromColumns(cols [][]float64, draws int, shape []int) (*Array, error) {
	elems := 1
	for _, dim := range shape {
		elems *= dim
	}
	if len(cols) != elems {
		return nil, fmt.Errorf("column count %d does not match shape %v (%d elements)",
			len(cols), shape, elems)
	}
	if draws < 0 {
		return nil, fmt.Errorf("negative draw count %d", draws)
	}

	out := NewArray(Float64, append([]int{draws}, shape...)...)

	for k, col := range cols {
		if len(col) < draws {
			return nil, fmt.Errorf("column %d holds %d rows, need at least %d",
				k, len(col), draws)
		}
		// Row-major position of the column-major unraveling of k.
		pos := rowMajorOffset(k, shape)
		tail := col[len(col)-draws:]
		for d := 0; d < draws; d++ {
			out.Data[d*elems+pos] = tail[d]
		}
	}
	return out, nil
}

// rowMajorOffset maps flat column-major index k over shape to the
// corresponding flat row-major offset.
func rowMajorOffset(k int, shape []int) int {
	if len(shape) == 0 {
		return 0
	}
	idx := make([]int, len(shape))
	for d := 0; d < len(shape); d++ {
		idx[d] = k % shape[d]
		k /= shape[d]
	}
	pos := 0
	for d := 0; d < len(shape); d++ {
		pos = pos*shape[d] + idx[d]
	}
	return pos
}

// StackChains stacks equal-shaped arrays along a new leading axis, producing
// a (len(arrays), *shape) result. All inputs must share shape and kind; the
// extractor relies on this to enforce equal draws-after-warmup across chains.
func StackChains(arrays []*Array) (*Array, error) {
	if len(arrays) == 0 {
		return nil, errors.New("no arrays to stack")
	}
	first := arrays[0]
	for i, a := range arrays[1:] {
		if a.DType != first.DType {
			return nil, fmt.Errorf("array %d kind %q differs from %q", i+1, a.DType, first.DType)
		}
		if len(a.Shape) != len(first.Shape) {
			return nil, fmt.Errorf("array %d rank %d differs from %d", i+1, a.NDim(), first.NDim())
		}
		for d, dim := range a.Shape {
			if dim != first.Shape[d] {
				return nil, fmt.Errorf("array %d dimension %d is %d, want %d", i+1, d, dim, first.Shape[d])
			}
		}
	}

	out := NewArray(first.DType, append([]int{len(arrays)}, first.Shape...)...)
	step := first.Size()
	for i, a := range arrays {
		copy(out.Data[i*step:(i+1)*step], a.Data)
	}
	return out, nil
}
