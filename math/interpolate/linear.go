package interpolate

import (
	"fmt"
)

// Linear is a linear interpolator.
type Linear struct {
	xs   searcher
	vals []float64
}

// NewLinear creates a linear interpolator for a sequence of strictly increasing
// or strictly decreasing point, xs, which take on the values given by vals.
//
// Lookups will occur in O(log |xs|), possibly faster depending on the access
// pattern and data layout.
func NewLinear(xs, vals []float64) *Linear {
	if len(xs) != len(vals) {
		panic("Length of input slices are not equal.")
	}
	lin := &Linear{}
	lin.xs.init(xs)
	lin.vals = vals
	return lin
}

// NewUniformLinear creates a linear interplator where a uniformly spaced
// sequence of x values starting at x0 and separated by dx and whose values are
// given by vals.
//
// Lookups will be O(1).
func NewUniformLinear(x0, dx float64, vals []float64) *Linear {
	lin := &Linear{}
	lin.xs.unifInit(x0, dx, len(vals))
	lin.vals = vals
	return lin
}

// Eval returns the interpolated value at x.
//
// Eval panics if called on a values outside the supplied range on inputs.
func (lin *Linear) Eval(x float64) float64 {
	i1 := lin.xs.search(x)
	i2 := i1 + 1
	x1, x2 := lin.xs.val(i1), lin.xs.val(i2)
	v1, v2 := lin.vals[i1], lin.vals[i2]

	return ((v2-v1)/(x2-x1))*(x-x1) + v1
}

// EvalAll evaluates the interpolator at all the given x values. If an output
// array is given, the output is written to that array (the array is still
// returned as a convenience).
func (lin *Linear) EvalAll(xs []float64, out ...[]float64) []float64 {
	return evalAll(lin.Eval, xs, out)
}

// Contains returns true if x is inside the tabulated range.
func (lin *Linear) Contains(x float64) bool { return lin.xs.contains(x) }

// BiLinear is a bi-linear interpolator.
type BiLinear struct {
	xs, ys searcher
	vals   []float64
	nx     int
}

// NewBiLinear creates a bi-linear interpolator on top of a grid with the
// values given by vals. The values of the x and y grid lines are given by
// xs ans ys. The vals grid is indexed in the usual way:
// vals(ix, iy) -> vals[ix + iy*nx].
//
// Panics if len(xs) * len(ys) != len(vals).
func NewBiLinear(xs, ys, vals []float64) *BiLinear {
	if len(xs)*len(ys) != len(vals) {
		panic(fmt.Sprintf(
			"len(vals) = %d, but len(xs) = %d and len(ys) = %d",
			len(vals), len(xs), len(ys),
		))
	}

	bi := &BiLinear{}
	bi.xs.init(xs)
	bi.ys.init(ys)
	bi.nx = len(xs)
	bi.vals = vals
	return bi
}

// NewUniformBiLinear creates a bi-linear interpolator on top of a uniform
// grid with the values given by vals. The values of the x and y grid lines
// start at x0 and y0 and increase with steps of dx and dy, respectively.
// The vals grid is indexed in the usual way: vals(ix, iy) -> vals[ix + iy*nx].
//
// Panics if nx * ny != len(vals).
func NewUniformBiLinear(
	x0, dx float64, nx int,
	y0, dy float64, ny int,
	vals []float64,
) *BiLinear {
	if nx*ny != len(vals) {
		panic(fmt.Sprintf(
			"len(vals) = %d, but nx = %d and ny = %d",
			len(vals), nx, ny,
		))
	}

	bi := &BiLinear{}
	bi.xs.unifInit(x0, dx, nx)
	bi.ys.unifInit(y0, dy, ny)
	bi.nx = nx
	bi.vals = vals
	return bi
}

// Eval evaluates the bi-linear interpolator at the coordinate (x, y).
//
// Panics if (x, y) is outside the range of the starting grid.
func (bi *BiLinear) Eval(x, y float64) float64 {
	ix1, iy1 := bi.xs.search(x), bi.ys.search(y)
	ix2, iy2 := ix1+1, iy1+1

	x1, x2 := bi.xs.val(ix1), bi.xs.val(ix2)
	y1, y2 := bi.ys.val(iy1), bi.ys.val(iy2)

	i11, i12 := ix1+bi.nx*iy1, ix1+bi.nx*iy2
	i21, i22 := ix2+bi.nx*iy1, ix2+bi.nx*iy2

	v11, v12 := bi.vals[i11], bi.vals[i12]
	v21, v22 := bi.vals[i21], bi.vals[i22]

	dx, dy := x2-x1, y2-y1
	dx1, dx2 := x-x1, x2-x
	dy1, dy2 := y-y1, y2-y

	return (v11*dx2*dy2 + v12*dx2*dy1 +
		v21*dx1*dy2 + v22*dx1*dy1) / (dx * dy)
}

// EvalAll evaluates the interpolator at all the given (x, y) values. If an
// output array is given, the output is written to that array (the array is
// still returned as a convenience).
func (bi *BiLinear) EvalAll(xs, ys []float64, out ...[]float64) []float64 {
	if len(out) == 0 {
		out = [][]float64{make([]float64, len(xs))}
	}
	for i := range xs {
		out[0][i] = bi.Eval(xs[i], ys[i])
	}
	return out[0]
}

// Contains returns true if (x, y) is inside the tabulated grid.
func (bi *BiLinear) Contains(x, y float64) bool {
	return bi.xs.contains(x) && bi.ys.contains(y)
}
