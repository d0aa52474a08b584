package upload

import (
	"context"
	_ "crypto/sha256"
	_ "crypto/sha512"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/opencontainers/go-digest"
	"go.uber.org/zap"

	"github.com/sunr3d/rezip/internal/config"
	"github.com/sunr3d/rezip/models"
)

// Writer потоково пишет загрузку на диск чанками фиксированного размера,
// параллельно считая контрольную сумму и проверяя лимит размера.
type Writer struct {
	logger    *zap.Logger
	uploadDir string
	tempDir   string
	chunkSize int
	maxSize   int64
	algorithm digest.Algorithm
}

func NewWriter(log *zap.Logger, cfg *config.Config) (*Writer, error) {
	alg := digest.Algorithm(cfg.ChecksumAlgorithm)
	if !alg.Available() {
		return nil, fmt.Errorf("%w: %s", ErrUnknownChecksum, cfg.ChecksumAlgorithm)
	}

	return &Writer{
		logger:    log,
		uploadDir: cfg.UploadDir,
		tempDir:   cfg.TempDir,
		chunkSize: cfg.ChunkSize,
		maxSize:   cfg.MaxFileSize,
		algorithm: alg,
	}, nil
}

func (w *Writer) Write(ctx context.Context, src io.Reader, originalName, contentType string) (*models.UploadDescriptor, error) {
	storedName := StoredName(originalName)
	tmpPath := filepath.Join(w.tempDir, storedName+".tmp")
	finalPath := filepath.Join(w.uploadDir, storedName)

	f, err := os.OpenFile(tmpPath, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFileCreateFailed, err)
	}

	fail := func(err error) (*models.UploadDescriptor, error) {
		f.Close()
		if rmErr := os.Remove(tmpPath); rmErr != nil && !errors.Is(rmErr, os.ErrNotExist) {
			w.logger.Warn("не удалось удалить временный файл",
				zap.String("path", tmpPath),
				zap.Error(rmErr),
			)
		}
		return nil, err
	}

	digester := w.algorithm.Digester()
	buf := make([]byte, w.chunkSize)
	var total int64

	for {
		select {
		case <-ctx.Done():
			return fail(fmt.Errorf("%w: %v", ErrContextDone, ctx.Err()))
		default:
		}

		n, rerr := io.ReadFull(src, buf)
		if n > 0 {
			total += int64(n)
			if total > w.maxSize {
				w.logger.Warn("загрузка прервана: превышен лимит размера",
					zap.String("filename", originalName),
					zap.Int64("limit", w.maxSize),
				)
				return fail(fmt.Errorf("%w: лимит %d байт", ErrSizeLimitExceeded, w.maxSize))
			}
			if _, err := f.Write(buf[:n]); err != nil {
				return fail(fmt.Errorf("%w: %v", ErrWriteFailed, err))
			}
			digester.Hash().Write(buf[:n])
		}

		if errors.Is(rerr, io.EOF) || errors.Is(rerr, io.ErrUnexpectedEOF) {
			break
		}
		if rerr != nil {
			return fail(fmt.Errorf("%w: %v", ErrReadFailed, rerr))
		}
	}

	if err := f.Close(); err != nil {
		return fail(fmt.Errorf("%w: %v", ErrWriteFailed, err))
	}

	if err := os.Rename(tmpPath, finalPath); err != nil {
		return fail(fmt.Errorf("%w: %v", ErrRenameFailed, err))
	}

	desc := &models.UploadDescriptor{
		OriginalName:      originalName,
		StoredName:        storedName,
		StoredPath:        finalPath,
		Size:              total,
		Checksum:          digester.Digest().Encoded(),
		ChecksumAlgorithm: w.algorithm.String(),
		ContentType:       contentType,
		UploadedAt:        time.Now(),
	}

	w.logger.Info("файл загружен",
		zap.String("filename", originalName),
		zap.String("stored_name", storedName),
		zap.Int64("size", total),
		zap.String("checksum", desc.Checksum),
	)

	return desc, nil
}

// StoredName строит уникальное имя файла на диске: случайный токен плюс
// базовое имя исходного файла.
func StoredName(originalName string) string {
	return strings.ReplaceAll(uuid.NewString(), "-", "") + "_" + baseName(originalName)
}

func baseName(name string) string {
	name = filepath.Base(strings.ReplaceAll(name, `\`, "/"))
	if name == "." || name == "/" || name == ".." || name == "" {
		return "upload"
	}
	return name
}
