package archive

import (
	"fmt"
	"path/filepath"

	"github.com/yeka/zip"

	"github.com/sunr3d/rezip/models"
)

func ListEntries(src string) (*models.ArchiveInfo, error) {
	rc, err := zip.OpenReader(src)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidContainer, err)
	}
	defer rc.Close()

	info := &models.ArchiveInfo{
		Filename: filepath.Base(src),
		Entries:  make([]models.ArchiveEntry, 0, len(rc.File)),
	}

	for _, f := range rc.File {
		if f.Mode().IsDir() {
			continue
		}

		info.Entries = append(info.Entries, models.ArchiveEntry{
			Path:             f.Name,
			UncompressedSize: f.UncompressedSize64,
			CompressedSize:   f.CompressedSize64,
			Method:           methodName(f.Method),
			Encrypted:        f.IsEncrypted(),
			ModifiedAt:       f.ModTime(),
		})
		info.TotalSize += f.UncompressedSize64
	}
	info.FileCount = len(info.Entries)

	return info, nil
}

func methodName(m uint16) string {
	switch m {
	case zip.Store:
		return "stored"
	case zip.Deflate:
		return "deflated"
	default:
		return fmt.Sprintf("method_%d", m)
	}
}
