package upload

import (
	"errors"
	"os"

	"go.uber.org/zap"

	"github.com/sunr3d/rezip/models"
)

// Cleaner удаляет загруженные файлы пакета. Ошибки только логируются.
type Cleaner struct {
	logger *zap.Logger
}

func NewCleaner(log *zap.Logger) *Cleaner {
	return &Cleaner{logger: log}
}

// Cleanup возвращает количество удаленных файлов. nil-элементы пропускаются.
func (c *Cleaner) Cleanup(uploads []*models.UploadDescriptor) int {
	removed := 0
	for _, u := range uploads {
		if u == nil {
			continue
		}

		if err := os.Remove(u.StoredPath); err != nil {
			if errors.Is(err, os.ErrNotExist) {
				continue
			}
			c.logger.Error("не удалось удалить загруженный файл",
				zap.String("path", u.StoredPath),
				zap.Error(err),
			)
			continue
		}
		removed++
	}

	c.logger.Info("загруженные файлы очищены",
		zap.Int("total", len(uploads)),
		zap.Int("removed", removed),
	)

	return removed
}
