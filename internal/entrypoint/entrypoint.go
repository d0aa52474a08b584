package entrypoint

import (
	"fmt"
	"net/http"
	"os"

	"go.uber.org/zap"

	"github.com/sunr3d/rezip/internal/api"
	"github.com/sunr3d/rezip/internal/config"
	"github.com/sunr3d/rezip/internal/infra/inmem"
	"github.com/sunr3d/rezip/internal/middleware"
	"github.com/sunr3d/rezip/internal/server"
	"github.com/sunr3d/rezip/internal/services/rezip_service"
)

func Run(cfg *config.Config, log *zap.Logger) error {
	router, err := NewHandler(cfg, log)
	if err != nil {
		return err
	}

	srv := server.New(cfg.Addr(), cfg.HTTPReadTimeout, cfg.HTTPWriteTimeout, router, log)
	return srv.Start()
}

// NewHandler готовит рабочие директории и собирает HTTP-обработчик со всеми middleware.
func NewHandler(cfg *config.Config, log *zap.Logger) (http.Handler, error) {
	dirs := []struct {
		path string
		name string
	}{
		{cfg.UploadDir, "загрузок"},
		{cfg.TempDir, "временных файлов"},
		{cfg.CompressedDir, "перепакованных архивов"},
	}
	for _, d := range dirs {
		if err := os.MkdirAll(d.path, 0755); err != nil {
			return nil, fmt.Errorf("не удалось создать директорию %s: %w", d.name, err)
		}
		log.Info("директория "+d.name+" готова", zap.String("path", d.path))
	}

	db := inmem.New(log, cfg.TaskTTL)
	svc, err := rezip_service.New(log, cfg, db)
	if err != nil {
		return nil, fmt.Errorf("не удалось создать сервис перепаковки: %w", err)
	}
	controller := api.New(svc, log, cfg)

	mux := http.NewServeMux()
	controller.Register(mux)

	router := http.Handler(mux)
	router = middleware.MultipartValidator()(router)
	router = middleware.BodyLimit(cfg.MaxRequestBody())(router)
	router = middleware.CORS(cfg.CORSAllowedOrigins)(router)
	router = middleware.ReqLogger(log)(router)
	router = middleware.Recovery(log)(router)

	return router, nil
}
