package archive

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"unicode/utf8"

	"github.com/klauspost/compress/flate"
	"github.com/klauspost/compress/zip"
	"go.uber.org/zap"
)

// Builder собирает zip-архив из содержимого директории.
type Builder struct {
	logger     *zap.Logger
	stagingDir string
}

// NewBuilder создает Builder. stagingDir используется для промежуточных
// файлов зашифрованных записей; пустая строка означает системный temp.
func NewBuilder(log *zap.Logger, stagingDir string) *Builder {
	return &Builder{
		logger:     log,
		stagingDir: stagingDir,
	}
}

func (b *Builder) Build(srcDir, outPath, password string, level int) (string, error) {
	if level < 0 || level > 9 {
		return "", fmt.Errorf("%w: %w: %d", ErrBuildFailed, ErrInvalidLevel, level)
	}

	info, err := os.Stat(srcDir)
	if err != nil || !info.IsDir() {
		return "", fmt.Errorf("%w: %s", ErrSourceNotFound, srcDir)
	}

	if err := os.MkdirAll(filepath.Dir(outPath), 0755); err != nil {
		return "", fmt.Errorf("%w: %v", ErrBuildFailed, err)
	}

	out, err := os.Create(outPath)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrBuildFailed, err)
	}

	method := zip.Deflate
	if level == 0 {
		method = zip.Store
	}

	zw := zip.NewWriter(out)
	zw.RegisterCompressor(zip.Deflate, func(w io.Writer) (io.WriteCloser, error) {
		return flate.NewWriter(w, level)
	})

	count := 0
	walkErr := filepath.WalkDir(srcDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.Type().IsRegular() {
			return nil
		}

		rel, err := filepath.Rel(srcDir, path)
		if err != nil {
			return err
		}

		if password != "" {
			err = b.addEncrypted(zw, path, filepath.ToSlash(rel), password, method, level)
		} else {
			err = b.addPlain(zw, path, filepath.ToSlash(rel), method)
		}
		if err != nil {
			return fmt.Errorf("%s: %w", rel, err)
		}
		count++
		return nil
	})

	closeErr := errors.Join(zw.Close(), out.Close())
	if walkErr != nil {
		return "", fmt.Errorf("%w: %v", ErrBuildFailed, walkErr)
	}
	if closeErr != nil {
		return "", fmt.Errorf("%w: %v", ErrBuildFailed, closeErr)
	}

	b.logger.Info("архив собран",
		zap.String("path", outPath),
		zap.Int("files", count),
		zap.Int("level", level),
		zap.Bool("encrypted", password != ""),
	)

	return outPath, nil
}

func (b *Builder) addPlain(zw *zip.Writer, path, name string, method uint16) error {
	src, err := os.Open(path)
	if err != nil {
		return err
	}
	defer src.Close()

	info, err := src.Stat()
	if err != nil {
		return err
	}

	fh, err := zip.FileInfoHeader(info)
	if err != nil {
		return err
	}
	fh.Name = name
	fh.Method = method

	w, err := zw.CreateHeader(fh)
	if err != nil {
		return err
	}

	_, err = io.Copy(w, src)
	return err
}

// addEncrypted сжимает и шифрует файл во временный файл, затем
// переносит готовые байты в архив через CreateRaw.
func (b *Builder) addEncrypted(zw *zip.Writer, path, name, password string, method uint16, level int) error {
	src, err := os.Open(path)
	if err != nil {
		return err
	}
	defer src.Close()

	info, err := src.Stat()
	if err != nil {
		return err
	}

	staged, err := os.CreateTemp(b.stagingDir, "aes_*.tmp")
	if err != nil {
		return err
	}
	defer func() {
		staged.Close()
		os.Remove(staged.Name())
	}()

	aw, err := newAESWriter(staged, password)
	if err != nil {
		return err
	}

	var comp io.WriteCloser = nopWriteCloser{aw}
	if method == zip.Deflate {
		fw, err := flate.NewWriter(aw, level)
		if err != nil {
			return err
		}
		comp = fw
	}

	n, err := io.Copy(comp, src)
	if err != nil {
		return err
	}
	if err := comp.Close(); err != nil {
		return err
	}
	if err := aw.Close(); err != nil {
		return err
	}

	size, err := staged.Seek(0, io.SeekCurrent)
	if err != nil {
		return err
	}
	if _, err := staged.Seek(0, io.SeekStart); err != nil {
		return err
	}

	fh := &zip.FileHeader{
		Name:               name,
		CreatorVersion:     aesReaderVersion,
		ReaderVersion:      aesReaderVersion,
		Flags:              flagEncrypted,
		Method:             methodWinZipAES,
		CompressedSize64:   uint64(size),
		UncompressedSize64: uint64(n),
		Extra:              aesExtra(method),
	}
	if !isASCII(name) && utf8.ValidString(name) {
		fh.Flags |= flagUTF8
	}
	fh.SetModTime(info.ModTime())
	fh.SetMode(info.Mode())

	w, err := zw.CreateRaw(fh)
	if err != nil {
		return err
	}

	_, err = io.Copy(w, staged)
	return err
}

type nopWriteCloser struct {
	io.Writer
}

func (nopWriteCloser) Close() error { return nil }

func isASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] >= utf8.RuneSelf {
			return false
		}
	}
	return true
}
