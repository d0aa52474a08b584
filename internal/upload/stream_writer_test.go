package upload

import (
	"bytes"
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"testing/iotest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/sunr3d/rezip/internal/config"
)

func setupTestWriter(t *testing.T, maxSize int64, chunkSize int) (*Writer, *config.Config) {
	root := t.TempDir()
	cfg := &config.Config{
		UploadDir:         filepath.Join(root, "uploads"),
		TempDir:           filepath.Join(root, "temp"),
		ChunkSize:         chunkSize,
		MaxFileSize:       maxSize,
		ChecksumAlgorithm: "sha256",
	}
	require.NoError(t, os.MkdirAll(cfg.UploadDir, 0755))
	require.NoError(t, os.MkdirAll(cfg.TempDir, 0755))

	w, err := NewWriter(zaptest.NewLogger(t), cfg)
	require.NoError(t, err)

	return w, cfg
}

func dirEntries(t *testing.T, dir string) []os.DirEntry {
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	return entries
}

func TestWriter_Write_SizeAndChecksum(t *testing.T) {
	w, cfg := setupTestWriter(t, 1<<20, 1000)

	data := make([]byte, 4500)
	_, err := rand.Read(data)
	require.NoError(t, err)

	desc, err := w.Write(context.Background(), bytes.NewReader(data), "a.zip", "application/zip")
	require.NoError(t, err)

	sum := sha256.Sum256(data)
	assert.Equal(t, int64(len(data)), desc.Size)
	assert.Equal(t, hex.EncodeToString(sum[:]), desc.Checksum)
	assert.Equal(t, "sha256", desc.ChecksumAlgorithm)
	assert.Equal(t, "a.zip", desc.OriginalName)
	assert.True(t, strings.HasSuffix(desc.StoredName, "_a.zip"))
	assert.Equal(t, filepath.Join(cfg.UploadDir, desc.StoredName), desc.StoredPath)

	written, err := os.ReadFile(desc.StoredPath)
	require.NoError(t, err)
	assert.Equal(t, data, written)
	assert.Empty(t, dirEntries(t, cfg.TempDir))
}

func TestWriter_Write_ExactChunkMultiple(t *testing.T) {
	w, _ := setupTestWriter(t, 1<<20, 10)

	data := bytes.Repeat([]byte("x"), 30)
	desc, err := w.Write(context.Background(), iotest.OneByteReader(bytes.NewReader(data)), "b.zip", "")
	require.NoError(t, err)
	assert.Equal(t, int64(30), desc.Size)
}

func TestWriter_Write_EmptySource(t *testing.T) {
	w, _ := setupTestWriter(t, 100, 10)

	desc, err := w.Write(context.Background(), bytes.NewReader(nil), "empty.zip", "")
	require.NoError(t, err)
	assert.Equal(t, int64(0), desc.Size)

	sum := sha256.Sum256(nil)
	assert.Equal(t, hex.EncodeToString(sum[:]), desc.Checksum)
}

func TestWriter_Write_SizeLimitExceeded(t *testing.T) {
	w, cfg := setupTestWriter(t, 100, 30)

	data := bytes.Repeat([]byte("y"), 101)
	desc, err := w.Write(context.Background(), bytes.NewReader(data), "big.zip", "")

	assert.Nil(t, desc)
	assert.ErrorIs(t, err, ErrSizeLimitExceeded)
	assert.Contains(t, err.Error(), "100")
	assert.Empty(t, dirEntries(t, cfg.UploadDir))
	assert.Empty(t, dirEntries(t, cfg.TempDir))
}

func TestWriter_Write_AtLimit(t *testing.T) {
	w, _ := setupTestWriter(t, 100, 30)

	desc, err := w.Write(context.Background(), bytes.NewReader(bytes.Repeat([]byte("z"), 100)), "edge.zip", "")
	require.NoError(t, err)
	assert.Equal(t, int64(100), desc.Size)
}

func TestWriter_Write_ReadError(t *testing.T) {
	w, cfg := setupTestWriter(t, 100, 10)

	src := iotest.TimeoutReader(bytes.NewReader(bytes.Repeat([]byte("q"), 50)))
	_, err := w.Write(context.Background(), src, "broken.zip", "")

	assert.ErrorIs(t, err, ErrReadFailed)
	assert.Empty(t, dirEntries(t, cfg.UploadDir))
	assert.Empty(t, dirEntries(t, cfg.TempDir))
}

func TestWriter_Write_ContextCanceled(t *testing.T) {
	w, cfg := setupTestWriter(t, 100, 10)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := w.Write(ctx, bytes.NewReader([]byte("data")), "c.zip", "")
	assert.True(t, errors.Is(err, ErrContextDone))
	assert.Empty(t, dirEntries(t, cfg.TempDir))
}

func TestNewWriter_UnknownAlgorithm(t *testing.T) {
	_, err := NewWriter(zaptest.NewLogger(t), &config.Config{ChecksumAlgorithm: "md4"})
	assert.ErrorIs(t, err, ErrUnknownChecksum)
}

func TestStoredName(t *testing.T) {
	a := StoredName("dir/a.zip")
	b := StoredName("dir/a.zip")

	assert.NotEqual(t, a, b)
	assert.True(t, strings.HasSuffix(a, "_a.zip"))
	assert.True(t, strings.HasSuffix(StoredName(`C:\docs\b.zip`), "_b.zip"))
	assert.True(t, strings.HasSuffix(StoredName(".."), "_upload"))
}
