package upload

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/sunr3d/rezip/internal/config"
	"github.com/sunr3d/rezip/models"
)

// Validator проверяет пакет файлов целиком до того, как что-либо попадет на диск.
type Validator struct {
	maxFiles int
	maxSize  int64
	allowed  []string
}

func NewValidator(cfg *config.Config) *Validator {
	allowed := make([]string, 0, len(cfg.AllowedExtensions))
	for _, ext := range cfg.AllowedExtensions {
		allowed = append(allowed, strings.ToLower(ext))
	}

	return &Validator{
		maxFiles: cfg.MaxFilesPerRequest,
		maxSize:  cfg.MaxFileSize,
		allowed:  allowed,
	}
}

func (v *Validator) Validate(files []models.FileMeta) error {
	if len(files) == 0 {
		return fmt.Errorf("%w: %w", ErrValidation, ErrEmptyBatch)
	}

	seen := make(map[string]struct{}, len(files))
	for _, f := range files {
		if _, ok := seen[f.Name]; ok {
			return fmt.Errorf("%w: %w: %s", ErrValidation, ErrDuplicateName, f.Name)
		}
		seen[f.Name] = struct{}{}
	}

	if len(files) > v.maxFiles {
		return fmt.Errorf("%w: %w: максимум %d", ErrValidation, ErrTooManyFiles, v.maxFiles)
	}

	for _, f := range files {
		if err := v.validateOne(f); err != nil {
			return err
		}
	}

	return nil
}

func (v *Validator) validateOne(f models.FileMeta) error {
	if strings.TrimSpace(f.Name) == "" {
		return fmt.Errorf("%w: %w", ErrValidation, ErrEmptyFilename)
	}

	if !v.Allowed(f.Name) {
		return fmt.Errorf("%w: %w: %q, допустимые: %s",
			ErrValidation, ErrUnsupportedType, Extension(f.Name), strings.Join(v.allowed, ", "))
	}

	if f.Size > v.maxSize {
		return fmt.Errorf("%w: %w: %s, лимит %d байт", ErrValidation, ErrSizeLimitExceeded, f.Name, v.maxSize)
	}

	return nil
}

func (v *Validator) Allowed(name string) bool {
	lower := strings.ToLower(name)
	for _, ext := range v.allowed {
		if strings.HasSuffix(lower, ext) && len(lower) > len(ext) {
			return true
		}
	}
	return false
}

func (v *Validator) Extensions() []string {
	return append([]string(nil), v.allowed...)
}

func Extension(name string) string {
	return strings.ToLower(filepath.Ext(name))
}
