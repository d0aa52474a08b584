package archive

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func TestListEntries(t *testing.T) {
	src := t.TempDir()
	writeTree(t, src, map[string]string{"a.txt": "aaaa", "dir/b.txt": "bb"})

	out := filepath.Join(t.TempDir(), "list.zip")
	_, err := NewBuilder(zaptest.NewLogger(t), "").Build(src, out, "p", 6)
	require.NoError(t, err)

	info, err := ListEntries(out)
	require.NoError(t, err)

	assert.Equal(t, "list.zip", info.Filename)
	assert.Equal(t, 2, info.FileCount)
	assert.Equal(t, uint64(6), info.TotalSize)
	require.Len(t, info.Entries, 2)
	assert.Equal(t, "a.txt", info.Entries[0].Path)
	assert.Equal(t, "dir/b.txt", info.Entries[1].Path)
	for _, e := range info.Entries {
		assert.True(t, e.Encrypted)
		assert.Equal(t, "deflated", e.Method)
		assert.False(t, e.ModifiedAt.IsZero())
	}
}

func TestListEntries_SkipsDirectories(t *testing.T) {
	out := filepath.Join(t.TempDir(), "dirs.zip")
	writeRawZip(t, out, testEntry{"dir/", ""}, testEntry{"dir/a.txt", "a"})

	info, err := ListEntries(out)
	require.NoError(t, err)
	assert.Equal(t, 1, info.FileCount)
	assert.False(t, info.Entries[0].Encrypted)
}

func TestListEntries_InvalidContainer(t *testing.T) {
	src := filepath.Join(t.TempDir(), "bad.zip")
	require.NoError(t, os.WriteFile(src, []byte("garbage"), 0644))

	_, err := ListEntries(src)
	assert.ErrorIs(t, err, ErrInvalidContainer)
}
