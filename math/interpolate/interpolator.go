/*package interpolate implements one- and two-dimensional interpolators over
tabulated data, as well as smoothing filters for noisy sequences.

Interpolators never extrapolate: evaluating outside the tabulated range
panics. Callers handling user input should check Contains first.
Interpolators hold no mutable state after construction, so a single
instance may be shared between goroutines.
*/
package interpolate

// Interpolator is a 1D interpolator.
type Interpolator interface {
	// Eval evaluates the interpolator at x.
	Eval(x float64) float64
	// EvalAll evaluates a sequeunce of values and returns the result. An
	// optional output array can be supplied to prevent unneeded heap
	// allocations.
	EvalAll(xs []float64, out ...[]float64) []float64
	// Contains returns true if x is inside the tabulated range.
	Contains(x float64) bool
}

var (
	_ Interpolator = &Spline{}
	_ Interpolator = &Linear{}
)

// BiInterpolator is a 2D interpolator.
type BiInterpolator interface {
	// Eval evaluates the interpolator at a point.
	Eval(x, y float64) float64
	// EvalAll evaluates a sequeunce of points and returns the result. An
	// optional output array can be supplied to prevent unneeded heap
	// allocations.
	EvalAll(xs, ys []float64, out ...[]float64) []float64
	// Contains returns true if (x, y) is inside the tabulated grid.
	Contains(x, y float64) bool
}

var _ BiInterpolator = &BiLinear{}

func evalAll(f func(float64) float64, xs []float64, out [][]float64) []float64 {
	if len(out) == 0 {
		out = [][]float64{make([]float64, len(xs))}
	}
	for i, x := range xs {
		out[0][i] = f(x)
	}
	return out[0]
}
