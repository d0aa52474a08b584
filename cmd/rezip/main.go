package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/goccy/go-json"
	"go.uber.org/zap"

	"github.com/sunr3d/rezip/internal/archive"
	"github.com/sunr3d/rezip/internal/logger"
	"github.com/sunr3d/rezip/models"
)

var errUsage = errors.New("необходимо указать -in")

func main() {
	if err := run(context.Background(), os.Args[1:], os.Stdout, os.Stderr); err != nil {
		if !errors.Is(err, flag.ErrHelp) {
			fmt.Fprintf(os.Stderr, "rezip: %v\n", err)
		}
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("rezip", flag.ContinueOnError)
	fs.SetOutput(stderr)

	in := fs.String("in", "", "исходный архив")
	out := fs.String("out", "", "путь результата (по умолчанию <in>.rezip.zip)")
	level := fs.Int("level", 6, "уровень сжатия 0-9")
	list := fs.Bool("list", false, "вывести содержимое архива в JSON и выйти")
	ask := fs.Bool("ask-passwords", false, "запросить пароли распаковки и упаковки")
	tempDir := fs.String("temp", os.TempDir(), "директория для временных файлов")
	logLevel := fs.String("log-level", "warn", "уровень логирования")

	if err := fs.Parse(args); err != nil {
		return err
	}
	if *in == "" {
		fs.Usage()
		return errUsage
	}

	if *list {
		info, err := archive.ListEntries(*in)
		if err != nil {
			return err
		}
		enc := json.NewEncoder(stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(info)
	}

	log, err := logger.New(*logLevel, true)
	if err != nil {
		return err
	}
	defer log.Sync()

	req := models.TransformRequest{
		SourceName:       filepath.Base(*in),
		SourcePath:       *in,
		OutputPath:       *out,
		CompressionLevel: *level,
	}
	if req.OutputPath == "" {
		req.OutputPath = strings.TrimSuffix(*in, filepath.Ext(*in)) + ".rezip.zip"
	}

	if *ask {
		if req.ExtractPassword, err = askPassword(stderr, "Пароль исходного архива"); err != nil {
			return err
		}
		if req.CompressPassword, err = askPassword(stderr, "Пароль нового архива"); err != nil {
			return err
		}
	}

	path, err := archive.NewRezipper(log, *tempDir).Rezip(ctx, req)
	if err != nil {
		return err
	}

	log.Info("архив перепакован", zap.String("output", path))
	fmt.Fprintln(stdout, path)
	return nil
}
