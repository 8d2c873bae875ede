/*package mat contains the small amount of dense linear algebra needed to
build smoothing kernels: square matrices, LU decomposition, and solving
linear systems against a decomposition.
*/
package mat

import (
	"math"

	"github.com/pkg/errors"
)

// ErrSingular is returned when a matrix cannot be decomposed.
var ErrSingular = errors.New("mat: singular matrix")

// Matrix represents a row-major matrix of float64 values.
type Matrix struct {
	Vals          []float64
	Width, Height int
}

// LUFactors holds the LU decomposition of a square matrix. Keeping it around
// lets callers solve many systems without refactorizing.
type LUFactors struct {
	lu    Matrix
	pivot []int
	d     float64
}

// NewMatrix creates a matrix with the specified values and dimensions.
func NewMatrix(vals []float64, width, height int) *Matrix {
	m := &Matrix{}
	m.Init(vals, width, height)
	return m
}

// Init initializes a matrix with the specified values and dimensions.
func (m *Matrix) Init(vals []float64, width, height int) {
	if width <= 0 {
		panic("width must be positive.")
	} else if height <= 0 {
		panic("height must be positive.")
	} else if width*height != len(vals) {
		panic("height * width must equal len(vals).")
	}

	m.Vals = vals
	m.Width, m.Height = width, height
}

// Mult multiplies two matrices together.
func (m1 *Matrix) Mult(m2 *Matrix) *Matrix {
	h, w := m1.Height, m2.Width
	out := NewMatrix(make([]float64, h*w), w, h)
	return m1.MultAt(m2, out)
}

// MultAt multiplies two matrices together and writes the result to out.
func (m1 *Matrix) MultAt(m2, out *Matrix) *Matrix {
	if m1.Width != m2.Height {
		panic("m1.Width != m2.Height")
	} else if out.Width != m2.Width || out.Height != m1.Height {
		panic("out has the wrong dimensions.")
	}

	for i := 0; i < m1.Height; i++ {
		for j := 0; j < m2.Width; j++ {
			sum := 0.0
			for k := 0; k < m1.Width; k++ {
				sum += m1.Vals[i*m1.Width+k] * m2.Vals[k*m2.Width+j]
			}
			out.Vals[i*out.Width+j] = sum
		}
	}
	return out
}

// NewLUFactors creates an LUFactors instance of the requested dimensions.
func NewLUFactors(n int) *LUFactors {
	luf := new(LUFactors)

	luf.lu.Vals, luf.lu.Width, luf.lu.Height = make([]float64, n*n), n, n
	luf.pivot = make([]int, n)
	luf.d = 1

	return luf
}

// LU returns the LU decomposition of a square matrix.
func (m *Matrix) LU() (*LUFactors, error) {
	if m.Width != m.Height {
		panic("m is non-square.")
	}

	lu := NewLUFactors(m.Width)
	if err := m.LUFactorsAt(lu); err != nil {
		return nil, err
	}
	return lu, nil
}

// LUFactorsAt stores the LU decomposition of a matrix at the specified
// location.
func (m *Matrix) LUFactorsAt(luf *LUFactors) error {
	if luf.lu.Width != m.Width || luf.lu.Height != m.Height {
		panic("luf has different dimenstions than m.")
	}
	copy(luf.lu.Vals, m.Vals)
	return luf.factorizeInPlace()
}

// Crout's method with implicit partial pivoting.
func (lu *LUFactors) factorizeInPlace() error {
	m, n := &lu.lu, lu.lu.Width
	vv := make([]float64, n)
	lu.d = 1
	for i := 0; i < n; i++ {
		big := 0.0
		for j := 0; j < n; j++ {
			tmp := math.Abs(m.Vals[i*n+j])
			if tmp > big {
				big = tmp
			}
		}
		if big == 0 {
			return errors.Wrapf(ErrSingular, "row %d is zero", i)
		}
		vv[i] = 1 / big
	}

	for k := 0; k < n; k++ {
		big, imax := 0.0, k
		for i := k; i < n; i++ {
			tmp := vv[i] * math.Abs(m.Vals[i*n+k])
			if tmp > big {
				big = tmp
				imax = i
			}
		}
		if k != imax {
			for j := 0; j < n; j++ {
				m.Vals[imax*n+j], m.Vals[k*n+j] = m.Vals[k*n+j], m.Vals[imax*n+j]
			}
			lu.d = -lu.d
			vv[imax] = vv[k]
		}
		lu.pivot[k] = imax
		if m.Vals[k*n+k] == 0 {
			m.Vals[k*n+k] = 1e-20
		}
		for i := k + 1; i < n; i++ {
			m.Vals[i*n+k] /= m.Vals[k*n+k]
			tmp := m.Vals[i*n+k]
			for j := k + 1; j < n; j++ {
				m.Vals[i*n+j] -= tmp * m.Vals[k*n+j]
			}
		}
	}
	return nil
}

// SolveVector solves M * xs = bs for xs.
//
// bs and xs may point to the same physical memory.
func (luf *LUFactors) SolveVector(bs, xs []float64) []float64 {
	n := luf.lu.Width
	if n != len(bs) {
		panic("len(b) != luf.Width")
	} else if n != len(xs) {
		panic("len(x) != luf.Width")
	}
	if &bs[0] != &xs[0] {
		copy(xs, bs)
	}

	lu := luf.lu.Vals
	// Forward substitution, unscrambling the pivots as we go.
	for i := 0; i < n; i++ {
		ip := luf.pivot[i]
		sum := xs[ip]
		xs[ip] = xs[i]
		for j := 0; j < i; j++ {
			sum -= lu[i*n+j] * xs[j]
		}
		xs[i] = sum
	}
	// Back substitution.
	for i := n - 1; i >= 0; i-- {
		sum := xs[i]
		for j := i + 1; j < n; j++ {
			sum -= lu[i*n+j] * xs[j]
		}
		xs[i] = sum / lu[i*n+i]
	}

	return xs
}

// Determinant computes the determinant of the decomposed matrix.
func (luf *LUFactors) Determinant() float64 {
	n := luf.lu.Width
	d := luf.d
	for i := 0; i < n; i++ {
		d *= luf.lu.Vals[i*n+i]
	}
	return d
}
