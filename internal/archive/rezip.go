package archive

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/sunr3d/rezip/models"
)

const partSuffix = ".part"

// Rezipper распаковывает архив во временную директорию и собирает его заново
// с новым паролем и уровнем сжатия. Временная директория удаляется всегда.
type Rezipper struct {
	logger    *zap.Logger
	tempDir   string
	extractor *Extractor
	builder   *Builder
}

func NewRezipper(log *zap.Logger, tempDir string) *Rezipper {
	return &Rezipper{
		logger:    log,
		tempDir:   tempDir,
		extractor: NewExtractor(log),
		builder:   NewBuilder(log, tempDir),
	}
}

func (r *Rezipper) Rezip(ctx context.Context, req models.TransformRequest) (string, error) {
	select {
	case <-ctx.Done():
		return "", &FileError{FileName: req.SourceName, Err: fmt.Errorf("%w: %v", ErrContextDone, ctx.Err())}
	default:
	}

	scratch := filepath.Join(r.tempDir, "extract_"+strings.ReplaceAll(uuid.NewString(), "-", ""))
	if err := os.MkdirAll(scratch, 0755); err != nil {
		return "", &FileError{FileName: req.SourceName, Err: fmt.Errorf("%w: %v", ErrExtractionFailed, err)}
	}
	defer func() {
		if err := os.RemoveAll(scratch); err != nil {
			r.logger.Error("не удалось удалить временную директорию",
				zap.String("path", scratch),
				zap.Error(err),
			)
		}
	}()

	files, err := r.extractor.Extract(req.SourcePath, scratch, req.ExtractPassword)
	if err != nil {
		return "", &FileError{FileName: req.SourceName, Err: err}
	}
	if len(files) == 0 {
		return "", &FileError{FileName: req.SourceName, Err: ErrEmptyArchive}
	}

	// Итоговое имя появляется только после успешной сборки.
	partPath := req.OutputPath + partSuffix
	if _, err := r.builder.Build(scratch, partPath, req.CompressPassword, req.CompressionLevel); err != nil {
		r.removePartial(partPath)
		return "", &FileError{FileName: req.SourceName, Err: err}
	}

	if err := os.Rename(partPath, req.OutputPath); err != nil {
		r.removePartial(partPath)
		return "", &FileError{FileName: req.SourceName, Err: fmt.Errorf("%w: %v", ErrBuildFailed, err)}
	}

	r.logger.Info("архив перепакован",
		zap.String("filename", req.SourceName),
		zap.String("output", req.OutputPath),
		zap.Int("files", len(files)),
		zap.Int("level", req.CompressionLevel),
	)

	return req.OutputPath, nil
}

func (r *Rezipper) removePartial(path string) {
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		r.logger.Error("не удалось удалить недособранный архив",
			zap.String("path", path),
			zap.Error(err),
		)
	}
}
