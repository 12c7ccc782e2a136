package fsutil

import (
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFiles(t *testing.T, root string, names ...string) {
	t.Helper()
	for _, name := range names {
		p := filepath.Join(root, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
		require.NoError(t, os.WriteFile(p, []byte("\x00asm"), 0o644))
	}
}

func TestFindFilesByExtension(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeFiles(t, root,
		"token.wasm",
		"nested/liquidity_pool.wasm",
		"nested/deeper/atomic_swap.optimized.wasm",
		"nested/readme.md",
		"notwasm.wasm.bak",
	)
	require.NoError(t, os.MkdirAll(filepath.Join(root, "dir.wasm"), 0o755))

	got, err := FindFilesByExtension(root, ".wasm")
	require.NoError(t, err)

	want := []string{
		filepath.Join(root, "nested/deeper/atomic_swap.optimized.wasm"),
		filepath.Join(root, "nested/liquidity_pool.wasm"),
		filepath.Join(root, "token.wasm"),
	}
	sort.Strings(got)
	sort.Strings(want)
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("files mismatch (-want +got):\n%s", diff)
	}
}

func TestFindFilesByExtension_EmptyDirectory(t *testing.T) {
	t.Parallel()

	got, err := FindFilesByExtension(t.TempDir(), ".wasm")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestFindFilesByExtension_InvalidRoot(t *testing.T) {
	t.Parallel()

	t.Run("missing root", func(t *testing.T) {
		t.Parallel()
		missing := filepath.Join(t.TempDir(), "does-not-exist")
		got, err := FindFilesByExtension(missing, ".wasm")
		var dirErr *InvalidDirectoryError
		require.ErrorAs(t, err, &dirErr)
		assert.Equal(t, missing, dirErr.Path)
		assert.ErrorIs(t, err, os.ErrNotExist)
		assert.Nil(t, got)
	})

	t.Run("root is a file", func(t *testing.T) {
		t.Parallel()
		root := t.TempDir()
		writeFiles(t, root, "token.wasm")
		got, err := FindFilesByExtension(filepath.Join(root, "token.wasm"), ".wasm")
		var dirErr *InvalidDirectoryError
		require.ErrorAs(t, err, &dirErr)
		assert.ErrorContains(t, err, "not a directory")
		assert.Nil(t, got)
	})
}

func TestFindFilesByExtension_PanicsOnEmptyExtension(t *testing.T) {
	t.Parallel()
	assert.Panics(t, func() { _, _ = FindFilesByExtension(t.TempDir(), "") })
}
