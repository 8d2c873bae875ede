package calc

import (
	"math"

	"github.com/pkg/errors"
)

// ErrNonFinite is returned by Quad when the integrand evaluates to NaN or
// an infinity.
var ErrNonFinite = errors.New("calc: non-finite integrand")

type quadParams struct {
	rtol, atol float64
	maxDepth   int
}

type QuadOption func(*quadParams)

// Tol sets the relative and absolute tolerances used by Quad. The defaults
// are 1e-8 and 0.
func Tol(rtol, atol float64) QuadOption {
	return func(p *quadParams) { p.rtol, p.atol = rtol, atol }
}

// MaxDepth sets the maximum number of bisections Quad will perform on any
// single subinterval. The default is 50.
func MaxDepth(depth int) QuadOption {
	return func(p *quadParams) { p.maxDepth = depth }
}

// Quad integrates f from a to b with adaptive Simpson quadrature. Intervals
// which reach the maximum depth without meeting the tolerance contribute
// their best estimate.
func Quad(f func(float64) float64, a, b float64, opts ...QuadOption) (float64, error) {
	p := &quadParams{rtol: 1e-8, atol: 0, maxDepth: 50}
	for _, opt := range opts {
		opt(p)
	}

	if a == b {
		return 0, nil
	}

	fa, fb, m := f(a), f(b), (a+b)/2
	fm := f(m)
	whole := (b - a) / 6 * (fa + 4*fm + fb)
	if !finite(fa, fm, fb) {
		return math.NaN(), errors.Wrapf(ErrNonFinite, "on [%g, %g]", a, b)
	}

	q := &quad{f: f, p: p}
	return q.adapt(a, b, fa, fm, fb, whole, p.maxDepth)
}

type quad struct {
	f func(float64) float64
	p *quadParams
}

func (q *quad) adapt(
	a, b, fa, fm, fb, whole float64, depth int,
) (float64, error) {
	m := (a + b) / 2
	lm, rm := (a+m)/2, (m+b)/2
	flm, frm := q.f(lm), q.f(rm)
	if !finite(flm, frm) {
		return math.NaN(), errors.Wrapf(ErrNonFinite, "on [%g, %g]", a, b)
	}

	left := (m - a) / 6 * (fa + 4*flm + fm)
	right := (b - m) / 6 * (fm + 4*frm + fb)
	delta := left + right - whole

	tol := math.Max(q.p.atol, q.p.rtol*math.Abs(left+right))
	if depth <= 0 || math.Abs(delta) <= 15*tol || m == a || m == b {
		return left + right + delta/15, nil
	}

	l, err := q.adapt(a, m, fa, flm, fm, left, depth-1)
	if err != nil {
		return l, err
	}
	r, err := q.adapt(m, b, fm, frm, fb, right, depth-1)
	return l + r, err
}

func finite(xs ...float64) bool {
	for _, x := range xs {
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return false
		}
	}
	return true
}

// Trapz integrates sampled data with the trapezoid rule.
func Trapz(ys, xs []float64) float64 {
	if len(xs) != len(ys) {
		panic("Length of ys and xs are not the same.")
	}
	sum := 0.0
	for i := 1; i < len(xs); i++ {
		sum += (xs[i] - xs[i-1]) * (ys[i] + ys[i-1]) / 2
	}
	return sum
}

// Simpson integrates sampled data with Simpson's rule, generalized to
// non-uniform spacing. With an odd number of intervals the last interval is
// integrated with the trapezoid rule.
func Simpson(ys, xs []float64) float64 {
	if len(xs) != len(ys) {
		panic("Length of ys and xs are not the same.")
	}
	n := len(xs)
	if n < 3 {
		return Trapz(ys, xs)
	}

	sum := 0.0
	i := 0
	for ; i+2 < n; i += 2 {
		h0, h1 := xs[i+1]-xs[i], xs[i+2]-xs[i+1]
		hs := h0 + h1
		sum += hs / 6 * ((2-h1/h0)*ys[i] +
			hs*hs/(h0*h1)*ys[i+1] +
			(2-h0/h1)*ys[i+2])
	}
	if i+1 < n {
		sum += (xs[i+1] - xs[i]) * (ys[i+1] + ys[i]) / 2
	}
	return sum
}
