package calc

import (
	"math"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func linspace(low, high float64, n int) []float64 {
	xs := make([]float64, n)
	dx := (high - low) / float64(n-1)
	for i := range xs {
		xs[i] = low + dx*float64(i)
	}
	return xs
}

func TestDeriv(t *testing.T) {
	xs := linspace(0, 2, 41)
	ys := make([]float64, len(xs))
	for i, x := range xs {
		ys[i] = x * x
	}

	// Second order stencils are exact for quadratics.
	d2 := Deriv(xs, ys, 2)
	for i, x := range xs {
		assert.InDelta(t, 2*x, d2[i], 1e-10, "x = %g", x)
	}

	for i, x := range xs {
		ys[i] = x * x * x * x
	}
	out := make([]float64, len(xs))
	d4 := Deriv(xs, ys, 4, Out(out))
	assert.Equal(t, &out[0], &d4[0])
	for i, x := range xs {
		assert.InDelta(t, 4*x*x*x, d4[i], 1e-6, "x = %g", x)
	}

	assert.Panics(t, func() { Deriv(xs, ys, 3) })
	assert.Panics(t, func() { Deriv(xs[:2], ys[:2], 2) })
}

func TestQuad(t *testing.T) {
	tests := []struct {
		name string
		f    func(float64) float64
		a, b float64
		want float64
	}{
		{"sin", math.Sin, 0, math.Pi, 2},
		{"reversed", math.Sin, math.Pi, 0, -2},
		{"cubic", func(x float64) float64 { return x * x * x }, -1, 2, 3.75},
		{"power law", func(x float64) float64 { return math.Pow(x, -3) }, 1, 100,
			0.5 * (1 - 1e-4)},
		{"empty", math.Exp, 1, 1, 0},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			got, err := Quad(test.f, test.a, test.b, Tol(1e-10, 0))
			require.NoError(t, err)
			assert.InDelta(t, test.want, got, 1e-8)
		})
	}
}

func TestQuadNonFinite(t *testing.T) {
	_, err := Quad(func(x float64) float64 { return 1 / x }, 0, 1)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNonFinite))
}

func TestQuadMaxDepth(t *testing.T) {
	// A step function never converges, but the estimate is still close.
	step := func(x float64) float64 {
		if x < 1/math.Sqrt2 {
			return 0
		}
		return 1
	}
	got, err := Quad(step, 0, 1, MaxDepth(20))
	require.NoError(t, err)
	assert.InDelta(t, 1-1/math.Sqrt2, got, 1e-5)
}

func TestSampledIntegrators(t *testing.T) {
	xs := []float64{0, 0.1, 0.3, 0.4, 0.7, 1.0, 1.2}
	ys := make([]float64, len(xs))
	for i, x := range xs {
		ys[i] = 3*x*x + 1
	}
	want := 1.2*1.2*1.2 + 1.2

	// Non-uniform Simpson is exact for quadratics.
	assert.InDelta(t, want, Simpson(ys, xs), 1e-12)
	assert.InDelta(t, want, Trapz(ys, xs), 0.05)

	// Odd number of intervals falls back to the trapezoid rule for the last.
	lin := []float64{1, 2, 3, 4}
	assert.InDelta(t, 7.5, Simpson(lin, []float64{0, 1, 2, 3}), 1e-12)
	assert.InDelta(t, 7.5, Trapz(lin, []float64{0, 1, 2, 3}), 1e-12)
}
