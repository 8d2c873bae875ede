package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/phil-mansfield/ares/sim"
	"github.com/phil-mansfield/ares/version"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "runs.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func testHistory(t *testing.T) *sim.History {
	h := sim.NewHistory(sim.ColZ, sim.ColTs, sim.ColDTb)
	for i := 0; i < 5; i++ {
		z := 20 - float64(i)
		require.NoError(t, h.Append(map[string]float64{
			sim.ColZ: z, sim.ColTs: 10 + z, sim.ColDTb: -z * 1.5,
		}))
	}
	return h
}

func TestOpen(t *testing.T) {
	_, err := Open("  ")
	assert.Error(t, err)

	path := filepath.Join(t.TempDir(), "runs.db")
	s, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, s.Close())

	// Reopening keeps the schema.
	s, err = Open(path)
	require.NoError(t, err)
	require.NoError(t, s.Close())
	assert.NoError(t, (*Store)(nil).Close())
}

func TestSaveLoad(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)
	p := sim.DefaultParams()
	h := testHistory(t)

	id, err := s.Save(ctx, "fiducial", p, h)
	require.NoError(t, err)
	_, err = uuid.Parse(id)
	require.NoError(t, err)

	run, err := s.Load(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, id, run.ID)
	assert.Equal(t, "fiducial", run.Name)
	assert.Equal(t, version.SourceVersion, run.Version)
	assert.Equal(t, 5, run.Rows)
	assert.Equal(t, p, run.Params)
	assert.Equal(t, h.Names(), run.History.Names())
	for _, name := range h.Names() {
		want, _ := h.Get(name)
		got, err := run.History.Get(name)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}

	_, err = s.Load(ctx, "not-a-run")
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestListFind(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	runs, err := s.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, runs)

	p1 := sim.DefaultParams()
	p2 := sim.DefaultParams()
	p2.J.Amp = 100

	id1, err := s.Save(ctx, "a", p1, testHistory(t))
	require.NoError(t, err)
	id2, err := s.Save(ctx, "b", p2, testHistory(t))
	require.NoError(t, err)
	id3, err := s.Save(ctx, "c", p1, testHistory(t))
	require.NoError(t, err)

	runs, err = s.List(ctx)
	require.NoError(t, err)
	require.Len(t, runs, 3)
	ids := map[string]bool{}
	for _, r := range runs {
		ids[r.ID] = true
	}
	assert.Equal(t, map[string]bool{id1: true, id2: true, id3: true}, ids)

	same, err := s.FindByHash(ctx, p1)
	require.NoError(t, err)
	require.Len(t, same, 2)
	for _, r := range same {
		assert.NotEqual(t, id2, r.ID)
	}

	h1, _, err := HashParams(p1)
	require.NoError(t, err)
	h2, _, err := HashParams(p2)
	require.NoError(t, err)
	assert.NotEqual(t, h1, h2)
	assert.Len(t, h1, 16)

	require.NoError(t, s.Delete(ctx, id1))
	assert.True(t, errors.Is(s.Delete(ctx, id1), ErrNotFound))
	same, err = s.FindByHash(ctx, p1)
	require.NoError(t, err)
	require.Len(t, same, 1)
	assert.Equal(t, id3, same[0].ID)
}
