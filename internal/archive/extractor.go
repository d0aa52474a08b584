package archive

import (
	"compress/flate"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/yeka/zip"
	"go.uber.org/zap"
)

// Extractor распаковывает zip-архив, отбрасывая записи, путь которых
// выходит за пределы целевой директории.
type Extractor struct {
	logger *zap.Logger
}

func NewExtractor(log *zap.Logger) *Extractor {
	return &Extractor{logger: log}
}

// Extract возвращает пути распакованных обычных файлов в порядке записей архива.
func (e *Extractor) Extract(src, dest, password string) ([]string, error) {
	rc, err := zip.OpenReader(src)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidContainer, err)
	}
	defer rc.Close()

	if err := os.MkdirAll(dest, 0755); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrExtractionFailed, err)
	}

	extracted := make([]string, 0, len(rc.File))
	for _, f := range rc.File {
		rel, ok := SafePath(f.Name)
		if !ok {
			e.logger.Warn("запись архива пропущена: небезопасный путь",
				zap.String("archive", src),
				zap.String("entry", f.Name),
			)
			continue
		}

		target := filepath.Join(dest, rel)
		mode := f.Mode()

		switch {
		case mode.IsDir():
			if err := os.MkdirAll(target, 0755); err != nil {
				return nil, fmt.Errorf("%w: %v", ErrExtractionFailed, err)
			}
			continue
		case !mode.IsRegular():
			e.logger.Warn("запись архива пропущена: не обычный файл",
				zap.String("archive", src),
				zap.String("entry", f.Name),
				zap.String("mode", mode.String()),
			)
			continue
		}

		if err := e.extractFile(f, target, password); err != nil {
			return nil, err
		}
		extracted = append(extracted, target)
	}

	e.logger.Info("архив распакован",
		zap.String("archive", src),
		zap.Int("entries", len(rc.File)),
		zap.Int("extracted", len(extracted)),
	)

	return extracted, nil
}

func (e *Extractor) extractFile(f *zip.File, target, password string) error {
	if f.IsEncrypted() {
		if password == "" {
			return fmt.Errorf("%w: %s: архив защищен паролем", ErrBadPassword, f.Name)
		}
		f.SetPassword(password)
	}

	r, err := f.Open()
	if err != nil {
		return classify(f, err)
	}
	defer r.Close()

	if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
		return fmt.Errorf("%w: %v", ErrExtractionFailed, err)
	}

	out, err := os.OpenFile(target, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrExtractionFailed, err)
	}

	if _, err := io.Copy(out, r); err != nil {
		out.Close()
		os.Remove(target)

		var pathErr *fs.PathError
		if errors.As(err, &pathErr) {
			return fmt.Errorf("%w: %v", ErrExtractionFailed, err)
		}
		return classify(f, err)
	}

	if err := out.Close(); err != nil {
		return fmt.Errorf("%w: %v", ErrExtractionFailed, err)
	}

	if mt := f.ModTime(); !mt.IsZero() {
		if err := os.Chtimes(target, mt, mt); err != nil {
			e.logger.Debug("не удалось установить время изменения",
				zap.String("path", target),
				zap.Error(err),
			)
		}
	}

	return nil
}

// classify разделяет ошибки пароля и прочие ошибки декодирования.
// ZipCrypto не проверяет пароль явно, поэтому для зашифрованной записи
// ошибка контрольной суммы или разбора deflate означает неверный пароль.
func classify(f *zip.File, err error) error {
	if errors.Is(err, zip.ErrPassword) {
		return fmt.Errorf("%w: %s", ErrBadPassword, f.Name)
	}

	if f.IsEncrypted() {
		var corrupt flate.CorruptInputError
		if errors.Is(err, zip.ErrChecksum) ||
			errors.Is(err, zip.ErrAuthentication) ||
			errors.Is(err, zip.ErrDecryption) ||
			errors.Is(err, io.ErrUnexpectedEOF) ||
			errors.As(err, &corrupt) {
			return fmt.Errorf("%w: %s: %v", ErrBadPassword, f.Name, err)
		}
	}

	return fmt.Errorf("%w: %s: %v", ErrExtractionFailed, f.Name, err)
}

// SafePath нормализует имя записи архива в относительный путь.
// ok == false для абсолютных путей, путей с диском и любых сегментов "..".
func SafePath(name string) (string, bool) {
	name = strings.ReplaceAll(name, `\`, "/")
	if name == "" || strings.HasPrefix(name, "/") || hasDriveLetter(name) {
		return "", false
	}

	for _, seg := range strings.Split(name, "/") {
		if seg == ".." {
			return "", false
		}
	}

	clean := path.Clean(name)
	if clean == "." {
		return "", false
	}

	return filepath.FromSlash(clean), true
}

func hasDriveLetter(name string) bool {
	if len(name) < 2 || name[1] != ':' {
		return false
	}
	c := name[0]
	return ('a' <= c && c <= 'z') || ('A' <= c && c <= 'Z')
}
