package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0:8000", cfg.Addr())
	assert.Equal(t, 10, cfg.MaxFilesPerRequest)
	assert.Equal(t, int64(500<<20), cfg.MaxFileSize)
	assert.Equal(t, 5<<20, cfg.ChunkSize)
	assert.Equal(t, []string{".zip"}, cfg.AllowedExtensions)
	assert.Equal(t, 6, cfg.DefaultCompressionLevel)
	assert.Equal(t, "sha256", cfg.ChecksumAlgorithm)
	assert.Equal(t, 1, cfg.MaxParallelFiles)
	assert.Equal(t, time.Hour, cfg.TaskTTL)
	assert.Equal(t, 10*time.Minute, cfg.HTTPReadTimeout)
}

func TestLoad_FromEnv(t *testing.T) {
	t.Setenv("HTTP_PORT", "9090")
	t.Setenv("MAX_FILES_PER_REQUEST", "2")
	t.Setenv("ALLOWED_EXTENSIONS", ".ZIP, .jar")
	t.Setenv("TASK_TTL", "30s")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.HTTPPort)
	assert.Equal(t, 2, cfg.MaxFilesPerRequest)
	assert.Equal(t, []string{".zip", ".jar"}, cfg.AllowedExtensions)
	assert.Equal(t, 30*time.Second, cfg.TaskTTL)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		key  string
		val  string
	}{
		{"нулевой лимит файлов", "MAX_FILES_PER_REQUEST", "0"},
		{"уровень сжатия вне диапазона", "DEFAULT_COMPRESSION_LEVEL", "10"},
		{"чанк больше файла", "CHUNK_SIZE", "600000000"},
		{"расширение без точки", "ALLOWED_EXTENSIONS", "zip"},
		{"нулевой параллелизм", "MAX_PARALLEL_FILES", "0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.val)

			_, err := Load()
			assert.ErrorIs(t, err, ErrInvalidConfig)
		})
	}
}

func TestLoad_BadValue(t *testing.T) {
	t.Setenv("MAX_FILE_SIZE", "много")

	_, err := Load()
	assert.Error(t, err)
}

func TestConfig_MaxRequestBody(t *testing.T) {
	cfg := &Config{MaxFilesPerRequest: 2, MaxFileSize: 100, MultipartMemory: 10}
	assert.Equal(t, int64(210), cfg.MaxRequestBody())
}
