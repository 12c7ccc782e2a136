package toolchain

import (
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFixed(t *testing.T) {
	t.Parallel()

	v, err := Fixed("1.80.0").Select()
	require.NoError(t, err)
	assert.Equal(t, "1.80.0", v)

	_, err = Fixed("").Select()
	assert.ErrorIs(t, err, ErrNoVersions)
}

func TestRandom(t *testing.T) {
	t.Parallel()

	versions := []string{"1.79.0", "1.80.0", "1.81.0"}

	t.Run("selects only configured versions", func(t *testing.T) {
		t.Parallel()
		r := NewRandom(versions, rand.NewPCG(1, 2))
		seen := map[string]bool{}
		for i := 0; i < 300; i++ {
			v, err := r.Select()
			require.NoError(t, err)
			require.Contains(t, versions, v)
			seen[v] = true
		}
		assert.Len(t, seen, len(versions), "every version should eventually be drawn")
	})

	t.Run("same seed same sequence", func(t *testing.T) {
		t.Parallel()
		a := NewRandom(versions, rand.NewPCG(7, 7))
		b := NewRandom(versions, rand.NewPCG(7, 7))
		for i := 0; i < 20; i++ {
			va, _ := a.Select()
			vb, _ := b.Select()
			require.Equal(t, va, vb)
		}
	})

	t.Run("empty list", func(t *testing.T) {
		t.Parallel()
		_, err := NewRandom(nil, nil).Select()
		assert.ErrorIs(t, err, ErrNoVersions)
	})

	t.Run("does not alias caller slice", func(t *testing.T) {
		t.Parallel()
		in := []string{"1.80.0"}
		r := NewRandom(in, nil)
		in[0] = "mutated"
		assert.Equal(t, []string{"1.80.0"}, r.Versions())
	})
}

func TestNew(t *testing.T) {
	t.Parallel()

	assert.Equal(t, Fixed("1.81.0"), New("1.81.0", []string{"1.79.0"}))
	_, ok := New("", []string{"1.79.0"}).(*Random)
	assert.True(t, ok)
}
