package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/sunr3d/rezip/internal/config"
	"github.com/sunr3d/rezip/internal/entrypoint"
	"github.com/sunr3d/rezip/internal/logger"
)

func main() {
	// .env необязателен, переменные окружения имеют приоритет
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "ошибка загрузки конфигурации: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(cfg.LogLevel, cfg.LogDevelopment)
	if err != nil {
		fmt.Fprintf(os.Stderr, "ошибка инициализации логгера: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	log.Info("запуск сервиса перепаковки архивов", zap.String("version", cfg.AppVersion))

	if err := entrypoint.Run(cfg, log); err != nil {
		log.Error("сервис завершился с ошибкой", zap.Error(err))
		os.Exit(1)
	}
}
