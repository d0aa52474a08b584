package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

var ErrInvalidConfig = errors.New("некорректная конфигурация")

type Config struct {
	HTTPHost         string        `envconfig:"HTTP_HOST" default:"0.0.0.0"`
	HTTPPort         string        `envconfig:"HTTP_PORT" default:"8000"`
	HTTPReadTimeout  time.Duration `envconfig:"HTTP_READ_TIMEOUT" default:"10m"`
	HTTPWriteTimeout time.Duration `envconfig:"HTTP_WRITE_TIMEOUT" default:"10m"`

	LogLevel       string `envconfig:"LOG_LEVEL" default:"info"`
	LogDevelopment bool   `envconfig:"LOG_DEVELOPMENT" default:"false"`
	AppVersion     string `envconfig:"APP_VERSION" default:"v1.0.0"`

	UploadDir     string `envconfig:"UPLOAD_DIR" default:"./uploads"`
	TempDir       string `envconfig:"TEMP_DIR" default:"./temp"`
	CompressedDir string `envconfig:"COMPRESSED_DIR" default:"./compressed"`

	MaxFilesPerRequest int      `envconfig:"MAX_FILES_PER_REQUEST" default:"10"`
	MaxFileSize        int64    `envconfig:"MAX_FILE_SIZE" default:"524288000"`
	ChunkSize          int      `envconfig:"CHUNK_SIZE" default:"5242880"`
	MultipartMemory    int64    `envconfig:"MULTIPART_MEMORY" default:"33554432"`
	AllowedExtensions  []string `envconfig:"ALLOWED_EXTENSIONS" default:".zip"`

	DefaultCompressionLevel int    `envconfig:"DEFAULT_COMPRESSION_LEVEL" default:"6"`
	ChecksumAlgorithm       string `envconfig:"CHECKSUM_ALGORITHM" default:"sha256"`
	MaxParallelFiles        int    `envconfig:"MAX_PARALLEL_FILES" default:"1"`

	MaxTasksInProcess int           `envconfig:"MAX_TASKS_IN_PROCESS" default:"3"`
	TaskTTL           time.Duration `envconfig:"TASK_TTL" default:"1h"`

	CORSAllowedOrigins []string `envconfig:"CORS_ALLOWED_ORIGINS" default:"*"`
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("не удалось прочитать переменные окружения: %w", err)
	}

	for i, ext := range cfg.AllowedExtensions {
		cfg.AllowedExtensions[i] = strings.ToLower(strings.TrimSpace(ext))
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) Validate() error {
	switch {
	case c.MaxFilesPerRequest <= 0:
		return fmt.Errorf("%w: MAX_FILES_PER_REQUEST должен быть больше 0", ErrInvalidConfig)
	case c.MaxFileSize <= 0:
		return fmt.Errorf("%w: MAX_FILE_SIZE должен быть больше 0", ErrInvalidConfig)
	case c.ChunkSize <= 0:
		return fmt.Errorf("%w: CHUNK_SIZE должен быть больше 0", ErrInvalidConfig)
	case int64(c.ChunkSize) > c.MaxFileSize:
		return fmt.Errorf("%w: CHUNK_SIZE не может превышать MAX_FILE_SIZE", ErrInvalidConfig)
	case c.DefaultCompressionLevel < 0 || c.DefaultCompressionLevel > 9:
		return fmt.Errorf("%w: DEFAULT_COMPRESSION_LEVEL должен быть в диапазоне 0-9", ErrInvalidConfig)
	case c.MaxParallelFiles <= 0:
		return fmt.Errorf("%w: MAX_PARALLEL_FILES должен быть больше 0", ErrInvalidConfig)
	case c.MaxTasksInProcess <= 0:
		return fmt.Errorf("%w: MAX_TASKS_IN_PROCESS должен быть больше 0", ErrInvalidConfig)
	case len(c.AllowedExtensions) == 0:
		return fmt.Errorf("%w: ALLOWED_EXTENSIONS не может быть пустым", ErrInvalidConfig)
	}

	for _, ext := range c.AllowedExtensions {
		if !strings.HasPrefix(ext, ".") {
			return fmt.Errorf("%w: расширение %q должно начинаться с точки", ErrInvalidConfig, ext)
		}
	}

	return nil
}

func (c *Config) Addr() string {
	return c.HTTPHost + ":" + c.HTTPPort
}

// MaxRequestBody - верхняя граница тела POST /rezip.
func (c *Config) MaxRequestBody() int64 {
	return int64(c.MaxFilesPerRequest)*c.MaxFileSize + c.MultipartMemory
}
