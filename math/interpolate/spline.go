package interpolate

import (
	"fmt"

	"github.com/pkg/errors"
)

// ErrSpline is returned when a spline cannot be constructed from a table.
var ErrSpline = errors.New("interpolate: cannot build spline")

type splineCoeff struct {
	a, b, c, d float64
}

// Spline represents a 1D natural cubic spline which can be used to
// interpolate between points.
type Spline struct {
	xs      searcher
	ys, y2s []float64
	coeffs  []splineCoeff
	// cum[i] is the integral from xs[0] to xs[i].
	cum []float64
}

// NewSpline creates a spline based off a table of x and y values. The values
// must be sorted in increasing or decreasing order in x.
//
// NewSpline panics on malformed tables. Use BuildSpline when the table comes
// from outside the program.
func NewSpline(xs, ys []float64) *Spline {
	sp, err := BuildSpline(xs, ys)
	if err != nil {
		panic(err.Error())
	}
	return sp
}

// BuildSpline is identical to NewSpline, but returns an error instead of
// panicking if the table is unsorted, too short, or produces a singular
// system.
func BuildSpline(xs, ys []float64) (*Spline, error) {
	if len(xs) != len(ys) {
		return nil, errors.Wrapf(ErrSpline,
			"len(xs) = %d but len(ys) = %d", len(xs), len(ys))
	} else if len(xs) <= 2 {
		return nil, errors.Wrapf(ErrSpline, "table has length %d", len(xs))
	}

	incr := xs[1] > xs[0]
	for i := 0; i < len(xs)-1; i++ {
		if (xs[i+1] > xs[i]) != incr || xs[i+1] == xs[i] {
			return nil, errors.Wrapf(ErrSpline,
				"xs not strictly sorted at index %d", i+1)
		}
	}

	sp := &Spline{
		ys:     ys,
		y2s:    make([]float64, len(xs)),
		coeffs: make([]splineCoeff, len(xs)-1),
	}
	sp.xs.init(xs)

	if err := sp.calcY2s(xs); err != nil {
		return nil, err
	}
	sp.calcCoeffs(xs)
	return sp, nil
}

// Eval computes the value of the spline at the given point.
//
// x must be within the range of x values given to NewSpline().
func (sp *Spline) Eval(x float64) float64 {
	i := sp.xs.search(x)
	dx := x - sp.xs.val(i)
	c := &sp.coeffs[i]
	return c.a*dx*dx*dx + c.b*dx*dx + c.c*dx + c.d
}

// EvalAll evaluates the spline at all the given x values.
func (sp *Spline) EvalAll(xs []float64, out ...[]float64) []float64 {
	return evalAll(sp.Eval, xs, out)
}

// Contains returns true if x is inside the tabulated range.
func (sp *Spline) Contains(x float64) bool { return sp.xs.contains(x) }

// Deriv computes the derivative of spline at the given point to the
// specified order.
//
// x must be within the range of x values given to NewSpline().
func (sp *Spline) Deriv(x float64, order int) float64 {
	i := sp.xs.search(x)
	dx := x - sp.xs.val(i)
	a, b, c, d := sp.coeffs[i].a, sp.coeffs[i].b, sp.coeffs[i].c, sp.coeffs[i].d
	switch order {
	case 0:
		return a*dx*dx*dx + b*dx*dx + c*dx + d
	case 1:
		return 3*a*dx*dx + 2*b*dx + c
	case 2:
		return 6*a*dx + 2*b
	case 3:
		return 6 * a
	default:
		return 0
	}
}

// Integrate integrates the spline from lo to hi.
func (sp *Spline) Integrate(lo, hi float64) float64 {
	if !sp.xs.contains(lo) {
		panic(fmt.Sprintf("Low bound %g in Spline.Integrate() out of bounds.", lo))
	} else if !sp.xs.contains(hi) {
		panic(fmt.Sprintf("High bound %g in Spline.Integrate() out of bounds.", hi))
	}
	return sp.primitive(hi) - sp.primitive(lo)
}

// primitive returns the integral of the spline from the first tabulated
// point to x.
func (sp *Spline) primitive(x float64) float64 {
	i := sp.xs.search(x)
	return sp.cum[i] + sp.integTerm(i, sp.xs.val(i), x)
}

// integTerm integrates the i-th cubic between lo and hi.
func (sp *Spline) integTerm(i int, lo, hi float64) float64 {
	c := &sp.coeffs[i]
	x0 := sp.xs.val(i)
	prim := func(x float64) float64 {
		dx := x - x0
		return c.a*dx*dx*dx*dx/4 + c.b*dx*dx*dx/3 + c.c*dx*dx/2 + c.d*dx
	}
	return prim(hi) - prim(lo)
}

// calcY2s computes the second derivative at every point in the table. The
// boundaries are set to zero.
func (sp *Spline) calcY2s(xs []float64) error {
	n := len(xs)
	as, bs := make([]float64, n-2), make([]float64, n-2)
	cs, rs := make([]float64, n-2), make([]float64, n-2)
	sp.y2s[0], sp.y2s[n-1] = 0, 0

	ys := sp.ys
	for i := range rs {
		// j indexes into xs and ys.
		j := i + 1

		as[i] = (xs[j] - xs[j-1]) / 6
		bs[i] = (xs[j+1] - xs[j-1]) / 3
		cs[i] = (xs[j+1] - xs[j]) / 6
		rs[i] = ((ys[j+1] - ys[j]) / (xs[j+1] - xs[j])) -
			((ys[j] - ys[j-1]) / (xs[j] - xs[j-1]))
	}

	return TriDiagAt(as, bs, cs, rs, sp.y2s[1:n-1])
}

func (sp *Spline) calcCoeffs(xs []float64) {
	coeffs, ys, y2s := sp.coeffs, sp.ys, sp.y2s
	for i := range coeffs {
		dx := xs[i+1] - xs[i]
		coeffs[i].a = (-y2s[i]/6 + y2s[i+1]/6) / dx
		coeffs[i].b = y2s[i] / 2
		coeffs[i].c = (ys[i+1]-ys[i])/dx + dx*(-y2s[i]/3-y2s[i+1]/6)
		coeffs[i].d = ys[i]
	}

	sp.cum = make([]float64, len(xs))
	for i := range coeffs {
		sp.cum[i+1] = sp.cum[i] + sp.integTerm(i, xs[i], xs[i+1])
	}
}

// TriDiagAt solves the system of equations
//
// | b0 c0 ..    |   | out0 |   | r0 |
// | a1 b1 c1 .. |   | out1 |   | r1 |
// | ..          | * | ..   | = | .. |
// | ..    an bn |   | outn |   | rn |
//
// For out0 .. outn in place in the given slice. An error is returned if the
// system has a zero pivot.
func TriDiagAt(as, bs, cs, rs, out []float64) error {
	if len(as) != len(bs) || len(as) != len(cs) ||
		len(as) != len(out) || len(as) != len(rs) {

		panic("Length of arugments to TriDiagAt are unequal.")
	}

	tmp := make([]float64, len(as))

	beta := bs[0]
	if beta == 0 {
		return errors.Wrap(ErrSpline, "zero pivot in row 0")
	}
	out[0] = rs[0] / beta

	for i := 1; i < len(out); i++ {
		tmp[i] = cs[i-1] / beta
		beta = bs[i] - as[i]*tmp[i]
		if beta == 0 {
			return errors.Wrapf(ErrSpline, "zero pivot in row %d", i)
		}
		out[i] = (rs[i] - as[i]*out[i-1]) / beta
	}

	for i := len(out) - 2; i >= 0; i-- {
		out[i] -= tmp[i+1] * out[i+1]
	}
	return nil
}
