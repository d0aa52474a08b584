package entrypoint

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/sunr3d/rezip/internal/config"
)

func testConfig(t *testing.T) *config.Config {
	root := t.TempDir()
	return &config.Config{
		AppVersion:              "v0.0.1",
		UploadDir:               filepath.Join(root, "uploads"),
		TempDir:                 filepath.Join(root, "temp"),
		CompressedDir:           filepath.Join(root, "compressed"),
		MaxFilesPerRequest:      2,
		MaxFileSize:             1024,
		ChunkSize:               256,
		MultipartMemory:         1024,
		AllowedExtensions:       []string{".zip"},
		DefaultCompressionLevel: 6,
		ChecksumAlgorithm:       "sha256",
		MaxParallelFiles:        1,
		MaxTasksInProcess:       1,
		TaskTTL:                 time.Minute,
		CORSAllowedOrigins:      []string{"*"},
	}
}

func TestNewHandler_CreatesDirs(t *testing.T) {
	cfg := testConfig(t)

	_, err := NewHandler(cfg, zaptest.NewLogger(t))
	require.NoError(t, err)

	for _, dir := range []string{cfg.UploadDir, cfg.TempDir, cfg.CompressedDir} {
		info, err := os.Stat(dir)
		require.NoError(t, err)
		assert.True(t, info.IsDir())
	}
}

func TestNewHandler_Routing(t *testing.T) {
	cfg := testConfig(t)
	h, err := NewHandler(cfg, zaptest.NewLogger(t))
	require.NoError(t, err)

	tests := []struct {
		name   string
		method string
		path   string
		ct     string
		body   string
		want   int
	}{
		{"health", http.MethodGet, "/api/health", "", "", http.StatusOK},
		{"version", http.MethodGet, "/api/version", "", "", http.StatusOK},
		{"json вместо multipart", http.MethodPost, "/api/rezip", "application/json", "{}", http.StatusUnsupportedMediaType},
		{"превышен размер тела", http.MethodPost, "/api/rezip", "multipart/form-data; boundary=x", strings.Repeat("x", 4096), http.StatusRequestEntityTooLarge},
		{"preflight", http.MethodOptions, "/api/rezip", "", "", http.StatusNoContent},
		{"неверный метод", http.MethodGet, "/api/rezip", "", "", http.StatusMethodNotAllowed},
		{"неизвестный путь", http.MethodGet, "/api/unknown", "", "", http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.path, strings.NewReader(tt.body))
			if tt.ct != "" {
				req.Header.Set("Content-Type", tt.ct)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			assert.Equal(t, tt.want, rec.Code)
			assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
		})
	}
}
