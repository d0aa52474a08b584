package api

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"sort"
	"strconv"

	"github.com/goccy/go-json"
	"go.uber.org/zap"

	"github.com/sunr3d/rezip/internal/config"
	"github.com/sunr3d/rezip/internal/interfaces/services"
	"github.com/sunr3d/rezip/internal/services/rezip_service"
	"github.com/sunr3d/rezip/internal/upload"
	"github.com/sunr3d/rezip/models"
)

const (
	filesField      = "files"
	defaultPage     = 1
	defaultPageSize = 10
)

type RezipAPI struct {
	service services.RezipService
	logger  *zap.Logger
	cfg     *config.Config
}

func New(service services.RezipService, logger *zap.Logger, cfg *config.Config) *RezipAPI {
	return &RezipAPI{
		service: service,
		logger:  logger,
		cfg:     cfg,
	}
}

func (h *RezipAPI) Register(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/rezip", h.Rezip)
	mux.HandleFunc("GET /api/rezip/tasks/{id}", h.GetTask)
	mux.HandleFunc("GET /api/compress/files", h.ListFiles)
	mux.HandleFunc("GET /api/compressed/download/{filename}", h.Download)
	mux.HandleFunc("GET /api/compressed/info/{filename}", h.Info)
	mux.HandleFunc("GET /api/formats", h.Formats)
	mux.HandleFunc("GET /api/health", h.Health)
	mux.HandleFunc("GET /api/healthz", h.Health)
	mux.HandleFunc("GET /api/version", h.Version)
}

// POST /api/rezip
func (h *RezipAPI) Rezip(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(h.cfg.MultipartMemory); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			h.writeError(w, http.StatusRequestEntityTooLarge, "Превышен допустимый размер запроса")
			return
		}
		h.logger.Warn("ошибка разбора multipart формы", zap.Error(err))
		h.writeError(w, http.StatusBadRequest, "Некорректная multipart форма")
		return
	}
	defer r.MultipartForm.RemoveAll()

	level, err := h.compressionLevel(r.FormValue("compression_level"))
	if err != nil {
		h.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	background := false
	if v := r.FormValue("background"); v != "" {
		background, err = strconv.ParseBool(v)
		if err != nil {
			h.writeError(w, http.StatusBadRequest, "Некорректный запрос: параметр background должен быть true или false")
			return
		}
	}

	req := models.BatchRequest{
		Files:            incomingFiles(r.MultipartForm),
		ExtractPassword:  r.FormValue("extract_password"),
		CompressPassword: r.FormValue("compress_password"),
		CompressionLevel: level,
	}

	ctx := r.Context()
	if background {
		task, err := h.service.SubmitBatch(ctx, req)
		if err != nil {
			h.writeServiceError(w, err)
			return
		}
		h.writeJSON(w, http.StatusAccepted, task)
		return
	}

	report, err := h.service.ProcessBatch(ctx, req)
	switch {
	case err == nil:
		h.writeJSON(w, http.StatusOK, report)
	case errors.Is(err, rezip_service.ErrAllFailed):
		h.writeJSON(w, http.StatusBadRequest, report)
	default:
		h.writeServiceError(w, err)
	}
}

// GET /api/rezip/tasks/{id}
func (h *RezipAPI) GetTask(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	task, err := h.service.GetTask(r.Context(), id)
	if err != nil {
		h.logger.Info("задача не найдена", zap.String("task_id", id), zap.Error(err))
		h.writeError(w, http.StatusNotFound, "Задача не найдена")
		return
	}

	h.writeJSON(w, http.StatusOK, task)
}

// GET /api/compress/files?page={page}&page_size={page_size}
func (h *RezipAPI) ListFiles(w http.ResponseWriter, r *http.Request) {
	page, err := queryInt(r, "page", defaultPage)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	pageSize, err := queryInt(r, "page_size", defaultPageSize)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	files, err := h.service.ListCompressed(r.Context(), page, pageSize)
	if err != nil {
		if errors.Is(err, rezip_service.ErrInvalidPage) {
			h.writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		h.writeServiceError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, files)
}

// GET /api/compressed/download/{filename}
func (h *RezipAPI) Download(w http.ResponseWriter, r *http.Request) {
	filename := r.PathValue("filename")

	path, err := h.service.CompressedPath(r.Context(), filename)
	if err != nil {
		h.logger.Info("архив для скачивания не найден", zap.String("filename", filename), zap.Error(err))
		h.writeError(w, http.StatusNotFound, "Файл не найден")
		return
	}

	w.Header().Set("Content-Type", "application/zip")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))

	http.ServeFile(w, r, path)
}

// GET /api/compressed/info/{filename}
func (h *RezipAPI) Info(w http.ResponseWriter, r *http.Request) {
	filename := r.PathValue("filename")

	info, err := h.service.CompressedInfo(r.Context(), filename)
	switch {
	case err == nil:
		h.writeJSON(w, http.StatusOK, info)
	case errors.Is(err, rezip_service.ErrInvalidName), errors.Is(err, rezip_service.ErrFileNotFound):
		h.writeError(w, http.StatusNotFound, "Файл не найден")
	default:
		h.writeServiceError(w, err)
	}
}

// GET /api/formats
func (h *RezipAPI) Formats(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, formatsResp{Formats: h.service.Formats()})
}

// GET /api/health
func (h *RezipAPI) Health(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, healthResp{Status: "ok"})
}

// GET /api/version
func (h *RezipAPI) Version(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, versionResp{Version: h.cfg.AppVersion})
}

func (h *RezipAPI) compressionLevel(raw string) (int, error) {
	if raw == "" {
		return h.cfg.DefaultCompressionLevel, nil
	}

	level, err := strconv.Atoi(raw)
	if err != nil || level < 0 || level > 9 {
		return 0, errors.New("Некорректный запрос: compression_level должен быть целым числом от 0 до 9")
	}

	return level, nil
}

func (h *RezipAPI) writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, upload.ErrValidation):
		h.logger.Info("запрос отклонен валидацией", zap.Error(err))
		h.writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, rezip_service.ErrServerBusy):
		h.writeError(w, http.StatusServiceUnavailable, err.Error())
	default:
		h.logger.Error("ошибка обработки запроса", zap.Error(err))
		h.writeError(w, http.StatusInternalServerError, "Внутренняя ошибка сервера")
	}
}

func (h *RezipAPI) writeError(w http.ResponseWriter, status int, msg string) {
	h.writeJSON(w, status, errorResp{Error: msg})
}

func (h *RezipAPI) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.logger.Error("ошибка кодирования JSON ответа", zap.Error(err))
	}
}

// incomingFiles собирает файлы из всех полей формы: сначала поле files,
// затем остальные в алфавитном порядке.
func incomingFiles(form *multipart.Form) []models.IncomingFile {
	fields := make([]string, 0, len(form.File))
	for field := range form.File {
		fields = append(fields, field)
	}
	sort.Slice(fields, func(i, j int) bool {
		if (fields[i] == filesField) != (fields[j] == filesField) {
			return fields[i] == filesField
		}
		return fields[i] < fields[j]
	})

	var files []models.IncomingFile
	for _, field := range fields {
		for _, fh := range form.File[field] {
			files = append(files, models.IncomingFile{
				Name:        fh.Filename,
				Size:        fh.Size,
				ContentType: fh.Header.Get("Content-Type"),
				Open: func() (io.ReadCloser, error) {
					return fh.Open()
				},
			})
		}
	}

	return files
}

func queryInt(r *http.Request, key string, def int) (int, error) {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return def, nil
	}

	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("Некорректный запрос: параметр %s должен быть целым числом", key)
	}

	return v, nil
}
