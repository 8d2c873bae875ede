package mat

import (
	"math/rand"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func randomMatrices(w, h, n int) []*Matrix {
	ms := make([]*Matrix, n)
	for i := range ms {
		ms[i] = NewMatrix(make([]float64, w*h), w, h)
		for j := range ms[i].Vals {
			ms[i].Vals[j] = rand.Float64()
		}
	}
	return ms
}

func TestMult(t *testing.T) {
	m1 := NewMatrix([]float64{1, 2, 3, 4, 5, 6}, 3, 2)
	m2 := NewMatrix([]float64{7, 8, 9, 10, 11, 12}, 2, 3)

	out := m1.Mult(m2)
	assert.Equal(t, 2, out.Width)
	assert.Equal(t, 2, out.Height)
	assert.Equal(t, []float64{58, 64, 139, 154}, out.Vals)
}

func TestSolveVector(t *testing.T) {
	tests := []struct {
		vals, bs, xs []float64
	}{
		{[]float64{2}, []float64{4}, []float64{2}},
		{[]float64{0, 1, 1, 0}, []float64{3, 5}, []float64{5, 3}},
		{
			[]float64{2, 1, -1, -3, -1, 2, -2, 1, 2},
			[]float64{8, -11, -3},
			[]float64{2, 3, -1},
		},
	}

	for i, test := range tests {
		n := len(test.bs)
		m := NewMatrix(test.vals, n, n)
		lu, err := m.LU()
		require.NoError(t, err, "test %d", i)

		out := lu.SolveVector(test.bs, make([]float64, n))
		assert.InDeltaSlice(t, test.xs, out, 1e-10, "test %d", i)

		// In-place solves must give the same answer.
		bs := append([]float64{}, test.bs...)
		lu.SolveVector(bs, bs)
		assert.InDeltaSlice(t, test.xs, bs, 1e-10, "test %d", i)
	}
}

func TestSolveVectorRandom(t *testing.T) {
	rand.Seed(1)
	for _, m := range randomMatrices(6, 6, 20) {
		xs := []float64{1, -2, 3, -4, 5, -6}
		bs := m.Mult(NewMatrix(append([]float64{}, xs...), 1, 6)).Vals

		lu, err := m.LU()
		require.NoError(t, err)
		assert.InDeltaSlice(t, xs, lu.SolveVector(bs, make([]float64, 6)), 1e-6)
	}
}

func TestDeterminant(t *testing.T) {
	m := NewMatrix([]float64{0, 1, 1, 0}, 2, 2)
	lu, err := m.LU()
	require.NoError(t, err)
	assert.InDelta(t, -1.0, lu.Determinant(), 1e-12)

	m = NewMatrix([]float64{2, 0, 0, 0, 3, 0, 0, 0, 4}, 3, 3)
	lu, err = m.LU()
	require.NoError(t, err)
	assert.InDelta(t, 24.0, lu.Determinant(), 1e-12)
}

func TestSingular(t *testing.T) {
	m := NewMatrix([]float64{1, 2, 0, 0}, 2, 2)
	_, err := m.LU()
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrSingular))
}

func BenchmarkLU3(b *testing.B) {
	n := 10
	ms := randomMatrices(3, 3, n)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		ms[i%n].LU()
	}
}
