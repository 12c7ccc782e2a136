package dag

import (
	"context"
	"fmt"
	"math/rand"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/specialistvlad/wasmrepro/internal/artifact"
	"github.com/specialistvlad/wasmrepro/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func indexOf(order []string) map[string]int {
	pos := make(map[string]int, len(order))
	for i, p := range order {
		pos[p] = i
	}
	return pos
}

func TestSortArtifacts_TokenBeforeLiquidityPool(t *testing.T) {
	t.Parallel()

	paths := []string{
		filepath.Join("out", "liquidity_pool.wasm"),
		filepath.Join("out", "token.wasm"),
	}
	pairs := []config.DependencyPair{{Name: "pool", Before: "token", After: "liquidity_pool"}}

	got, err := SortArtifacts(context.Background(), paths, pairs)
	require.NoError(t, err)

	want := []string{filepath.Join("out", "token.wasm"), filepath.Join("out", "liquidity_pool.wasm")}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("order mismatch (-want +got):\n%s", diff)
	}
}

func TestSortArtifacts_MatchesByIdentityAcrossDirectoriesAndOptimization(t *testing.T) {
	t.Parallel()

	paths := []string{
		filepath.Join("b", "atomic_multiswap.optimized.wasm"),
		filepath.Join("a", "atomic_multiswap.wasm"),
		filepath.Join("z", "atomic_swap.optimized.wasm"),
		filepath.Join("y", "atomic_swap.wasm"),
	}
	pairs := []config.DependencyPair{{Name: "swap", Before: "atomic-swap", After: "atomic-multiswap"}}

	got, err := SortArtifacts(context.Background(), paths, pairs)
	require.NoError(t, err)

	want := []string{
		filepath.Join("y", "atomic_swap.wasm"),
		filepath.Join("z", "atomic_swap.optimized.wasm"),
		filepath.Join("a", "atomic_multiswap.wasm"),
		filepath.Join("b", "atomic_multiswap.optimized.wasm"),
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("order mismatch (-want +got):\n%s", diff)
	}
}

func TestSortArtifacts_IdentityIsNotSubstring(t *testing.T) {
	t.Parallel()

	// "token" must not capture "token_wrapper" or "my_token".
	paths := []string{"token_wrapper.wasm", "my_token.wasm", "pool.wasm"}
	pairs := []config.DependencyPair{{Name: "pool", Before: "pool", After: "token"}}

	got, err := SortArtifacts(context.Background(), paths, pairs)
	require.NoError(t, err)
	assert.Equal(t, []string{"my_token.wasm", "pool.wasm", "token_wrapper.wasm"}, got)
}

func TestSortArtifacts_IgnoresPairsWithMissingSide(t *testing.T) {
	t.Parallel()

	pairs := []config.DependencyPair{
		{Name: "pool", Before: "token", After: "liquidity_pool"},
		{Name: "ghost", Before: "ghost", After: "token"},
	}
	got, err := SortArtifacts(context.Background(), []string{"token.wasm", "hello_world.wasm"}, pairs)
	require.NoError(t, err)
	assert.Equal(t, []string{"hello_world.wasm", "token.wasm"}, got)
}

func TestSortArtifacts_DeduplicatesPaths(t *testing.T) {
	t.Parallel()

	got, err := SortArtifacts(context.Background(), []string{"token.wasm", "token.wasm"}, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"token.wasm"}, got)
}

func TestSortArtifacts_EmptyInput(t *testing.T) {
	t.Parallel()

	got, err := SortArtifacts(context.Background(), nil, nil)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestSortArtifacts_CycleIsFatal(t *testing.T) {
	t.Parallel()

	paths := []string{"token.wasm", "liquidity_pool.wasm", "single_offer.wasm"}
	pairs := []config.DependencyPair{
		{Name: "pool", Before: "token", After: "liquidity_pool"},
		{Name: "offer", Before: "liquidity_pool", After: "single_offer"},
		{Name: "injected", Before: "single_offer", After: "token"},
	}

	got, err := SortArtifacts(context.Background(), paths, pairs)
	assert.Nil(t, got)
	var cycleErr *DependencyCycleError
	require.ErrorAs(t, err, &cycleErr)
	assert.Len(t, cycleErr.Cycle, 4)
	assert.Equal(t, cycleErr.Cycle[0], cycleErr.Cycle[len(cycleErr.Cycle)-1])
}

// randomTable builds an acyclic pair table over names by only pointing
// from earlier to later positions in a random permutation.
func randomTable(r *rand.Rand, names []string) []config.DependencyPair {
	perm := r.Perm(len(names))
	var pairs []config.DependencyPair
	for i := 0; i < len(perm); i++ {
		for j := i + 1; j < len(perm); j++ {
			if r.Intn(4) == 0 {
				pairs = append(pairs, config.DependencyPair{
					Name:   fmt.Sprintf("p%d_%d", i, j),
					Before: names[perm[i]],
					After:  names[perm[j]],
				})
			}
		}
	}
	return pairs
}

func TestSortArtifacts_RespectsEveryApplicablePair(t *testing.T) {
	t.Parallel()

	r := rand.New(rand.NewSource(1))
	names := make([]string, 12)
	for i := range names {
		names[i] = fmt.Sprintf("contract_%02d", i)
	}

	for round := 0; round < 200; round++ {
		pairs := randomTable(r, names)

		var paths []string
		for _, n := range names {
			if r.Intn(3) == 0 {
				continue
			}
			paths = append(paths, filepath.Join(fmt.Sprintf("dir%d", r.Intn(3)), n+artifact.Ext))
			if r.Intn(2) == 0 {
				paths = append(paths, filepath.Join("opt", n+"."+artifact.OptimizedMarker+artifact.Ext))
			}
		}
		r.Shuffle(len(paths), func(i, j int) { paths[i], paths[j] = paths[j], paths[i] })

		got, err := SortArtifacts(context.Background(), paths, pairs)
		require.NoError(t, err, "round %d", round)
		require.ElementsMatch(t, paths, got, "round %d", round)

		pos := indexOf(got)
		for _, p := range pairs {
			for _, b := range got {
				if artifact.Identity(b) != p.Before {
					continue
				}
				for _, a := range got {
					if artifact.Identity(a) == p.After {
						require.Less(t, pos[b], pos[a], "round %d: %s must precede %s", round, b, a)
					}
				}
			}
		}

		// Closing any applicable chain back on itself must be rejected.
		if len(pairs) > 0 {
			first := pairs[0]
			if containsIdentity(got, first.Before) && containsIdentity(got, first.After) {
				cyclic := append(append([]config.DependencyPair{}, pairs...), config.DependencyPair{
					Name: "back", Before: first.After, After: first.Before,
				})
				_, err := SortArtifacts(context.Background(), paths, cyclic)
				var cycleErr *DependencyCycleError
				require.ErrorAs(t, err, &cycleErr, "round %d", round)
			}
		}
	}
}

func containsIdentity(paths []string, id string) bool {
	for _, p := range paths {
		if artifact.Identity(p) == id {
			return true
		}
	}
	return false
}

func TestPlanArtifacts_DownstreamAndDependencies(t *testing.T) {
	t.Parallel()

	paths := []string{"token.wasm", "liquidity_pool.wasm", "liquidity_pool.optimized.wasm", "router.wasm", "hello.wasm"}
	pairs := []config.DependencyPair{
		{Name: "pool", Before: "token", After: "liquidity_pool"},
		{Name: "router", Before: "liquidity_pool", After: "router"},
		{Name: "absent", Before: "token", After: "not_discovered"},
	}

	plan, err := PlanArtifacts(context.Background(), paths, pairs)
	require.NoError(t, err)
	assert.Len(t, plan.Order, len(paths))

	assert.Equal(t, []string{"liquidity_pool", "router"}, plan.Downstream("token"))
	assert.Equal(t, []string{"router"}, plan.Downstream("liquidity_pool"))
	assert.Empty(t, plan.Downstream("hello"))
	assert.Empty(t, plan.Downstream("not_discovered"))

	assert.Equal(t, []string{"token"}, plan.Dependencies("liquidity_pool"))
	assert.Empty(t, plan.Dependencies("token"))
	assert.Nil(t, plan.Dependencies("not_discovered"))
}

func TestValidateDependencies(t *testing.T) {
	t.Parallel()

	t.Run("acyclic table", func(t *testing.T) {
		t.Parallel()
		require.NoError(t, ValidateDependencies([]config.DependencyPair{
			{Name: "pool", Before: "token", After: "liquidity_pool"},
			{Name: "offer", Before: "token", After: "single_offer"},
		}))
	})

	t.Run("cycle through identities never discovered together", func(t *testing.T) {
		t.Parallel()
		err := ValidateDependencies([]config.DependencyPair{
			{Name: "ab", Before: "a", After: "b-contract"},
			{Name: "bc", Before: "b_contract", After: "c"},
			{Name: "ca", Before: "c", After: "a"},
		})
		var cycleErr *DependencyCycleError
		require.ErrorAs(t, err, &cycleErr)
		assert.Equal(t, []string{"a", "b_contract", "c", "a"}, cycleErr.Cycle)
	})

	t.Run("empty table", func(t *testing.T) {
		t.Parallel()
		assert.NoError(t, ValidateDependencies(nil))
	})
}
