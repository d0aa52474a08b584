package rezip_service

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sunr3d/rezip/internal/archive"
	"github.com/sunr3d/rezip/internal/config"
	"github.com/sunr3d/rezip/internal/interfaces/infra"
	"github.com/sunr3d/rezip/internal/interfaces/services"
	"github.com/sunr3d/rezip/internal/upload"
	"github.com/sunr3d/rezip/models"
)

const MaxPageSize = 100

var _ services.RezipService = (*rezipService)(nil)

type rezipService struct {
	repo   infra.TaskStore
	logger *zap.Logger
	cfg    *config.Config

	validator *upload.Validator
	writer    *upload.Writer
	cleaner   *upload.Cleaner
	rezipper  *archive.Rezipper

	submitMu sync.Mutex
}

func New(log *zap.Logger, cfg *config.Config, repo infra.TaskStore) (services.RezipService, error) {
	writer, err := upload.NewWriter(log, cfg)
	if err != nil {
		return nil, err
	}

	return &rezipService{
		repo:      repo,
		logger:    log,
		cfg:       cfg,
		validator: upload.NewValidator(cfg),
		writer:    writer,
		cleaner:   upload.NewCleaner(log),
		rezipper:  archive.NewRezipper(log, cfg.TempDir),
	}, nil
}

// ProcessBatch: валидация -> загрузка -> перепаковка -> отчет -> очистка.
// Ошибка валидации возвращается до записи на диск. Если не удался ни один
// файл, вместе с отчетом возвращается ErrAllFailed.
func (s *rezipService) ProcessBatch(ctx context.Context, req models.BatchRequest) (*models.BatchReport, error) {
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%w: %v", ErrContextDone, ctx.Err())
	default:
	}

	if err := s.validate(req); err != nil {
		s.logger.Info("пакет отклонен", zap.Error(err))
		return nil, err
	}

	n := len(req.Files)
	uploads := make([]*models.UploadDescriptor, n)
	results := make([]models.TransformResult, n)
	defer s.cleaner.Cleanup(uploads)

	s.forEach(n, func(i int) {
		desc, err := s.uploadOne(ctx, req.Files[i])
		if err != nil {
			results[i] = failure(req.Files[i].Name, err)
			return
		}
		uploads[i] = desc
		results[i] = s.transformOne(ctx, desc, req)
	}, func(i int, err error) {
		results[i] = failure(req.Files[i].Name, err)
	})

	report := newReport(results)
	s.logger.Info("пакет обработан",
		zap.Int("total", report.Total),
		zap.Int("successful", report.Successful),
		zap.Int("failed", report.Failed),
	)

	if report.Successful == 0 {
		return report, ErrAllFailed
	}
	return report, nil
}

// SubmitBatch загружает файлы синхронно и перепаковывает их в фоне.
func (s *rezipService) SubmitBatch(ctx context.Context, req models.BatchRequest) (*models.Task, error) {
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%w: %v", ErrContextDone, ctx.Err())
	default:
	}

	if err := s.validate(req); err != nil {
		return nil, err
	}

	s.submitMu.Lock()
	defer s.submitMu.Unlock()

	inProcess, err := s.repo.CountTasksInProcess(ctx)
	if err != nil {
		return nil, fmt.Errorf("не удалось получить количество задач в обработке: %w", err)
	}
	if inProcess >= s.cfg.MaxTasksInProcess {
		return nil, ErrServerBusy
	}

	n := len(req.Files)
	uploads := make([]*models.UploadDescriptor, n)
	results := make([]models.TransformResult, n)

	s.forEach(n, func(i int) {
		desc, err := s.uploadOne(ctx, req.Files[i])
		if err != nil {
			results[i] = failure(req.Files[i].Name, err)
			return
		}
		uploads[i] = desc
	}, func(i int, err error) {
		results[i] = failure(req.Files[i].Name, err)
	})

	now := time.Now()
	task := &models.Task{
		ID:        uuid.New().String(),
		Status:    models.TaskStatusPending,
		Files:     req.Names(),
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.repo.SaveTask(ctx, task); err != nil {
		s.cleaner.Cleanup(uploads)
		return nil, fmt.Errorf("%w: %v", ErrTaskSave, err)
	}

	s.logger.Info("задача поставлена в обработку",
		zap.String("task_id", task.ID),
		zap.Int("files", n),
	)

	bg := *task
	go s.runTask(context.WithoutCancel(ctx), &bg, req, uploads, results)

	return task, nil
}

func (s *rezipService) runTask(ctx context.Context, task *models.Task, req models.BatchRequest, uploads []*models.UploadDescriptor, results []models.TransformResult) {
	defer s.cleaner.Cleanup(uploads)

	task.Status = models.TaskStatusProcessing
	task.UpdatedAt = time.Now()
	s.saveTask(ctx, task)

	s.forEach(len(uploads), func(i int) {
		if uploads[i] == nil {
			return
		}
		results[i] = s.transformOne(ctx, uploads[i], req)
	}, func(i int, err error) {
		results[i] = failure(req.Files[i].Name, err)
	})

	report := newReport(results)
	task.Report = report
	task.Status = models.TaskStatusDone
	if report.Successful == 0 {
		task.Status = models.TaskStatusFailed
	}
	for _, r := range report.Results {
		if !r.Success {
			task.Errors = append(task.Errors, fmt.Sprintf("%s - %s", r.FileName, r.Error))
		}
	}
	task.UpdatedAt = time.Now()
	s.saveTask(ctx, task)

	s.logger.Info("задача завершена",
		zap.String("task_id", task.ID),
		zap.String("status", string(task.Status)),
		zap.Int("successful", report.Successful),
		zap.Int("failed", report.Failed),
	)
}

func (s *rezipService) saveTask(ctx context.Context, task *models.Task) {
	if err := s.repo.SaveTask(ctx, task); err != nil {
		s.logger.Error("не удалось сохранить задачу",
			zap.String("task_id", task.ID),
			zap.Error(err),
		)
	}
}

func (s *rezipService) GetTask(ctx context.Context, id string) (*models.Task, error) {
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%w: %v", ErrContextDone, ctx.Err())
	default:
	}

	task, err := s.repo.GetTask(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrTaskGet, err)
	}

	return task, nil
}

func (s *rezipService) ListCompressed(ctx context.Context, page, pageSize int) (*models.FilePage, error) {
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%w: %v", ErrContextDone, ctx.Err())
	default:
	}

	if page < 1 || pageSize < 1 {
		return nil, ErrInvalidPage
	}
	pageSize = min(pageSize, MaxPageSize)

	entries, err := os.ReadDir(s.cfg.CompressedDir)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%w: %v", ErrListFailed, err)
	}

	files := make([]models.CompressedFile, 0, len(entries))
	for _, e := range entries {
		if !e.Type().IsRegular() || !s.validator.Allowed(e.Name()) {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		files = append(files, models.CompressedFile{
			Filename:  e.Name(),
			Size:      info.Size(),
			CreatedAt: info.ModTime(),
		})
	}

	sort.Slice(files, func(i, j int) bool {
		if !files[i].CreatedAt.Equal(files[j].CreatedAt) {
			return files[i].CreatedAt.After(files[j].CreatedAt)
		}
		return files[i].Filename < files[j].Filename
	})

	return &models.FilePage{
		Items:    paginate(files, page, pageSize),
		Page:     page,
		PageSize: pageSize,
		Total:    len(files),
	}, nil
}

func (s *rezipService) CompressedPath(ctx context.Context, filename string) (string, error) {
	select {
	case <-ctx.Done():
		return "", fmt.Errorf("%w: %v", ErrContextDone, ctx.Err())
	default:
	}

	if !s.validName(filename) {
		return "", fmt.Errorf("%w: %q", ErrInvalidName, filename)
	}

	path := filepath.Join(s.cfg.CompressedDir, filename)
	info, err := os.Stat(path)
	if err != nil || !info.Mode().IsRegular() {
		return "", fmt.Errorf("%w: %s", ErrFileNotFound, filename)
	}

	return path, nil
}

func (s *rezipService) CompressedInfo(ctx context.Context, filename string) (*models.ArchiveInfo, error) {
	path, err := s.CompressedPath(ctx, filename)
	if err != nil {
		return nil, err
	}

	info, err := archive.ListEntries(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrArchiveInfo, err)
	}

	return info, nil
}

func (s *rezipService) Formats() []string {
	return s.validator.Extensions()
}

func (s *rezipService) validate(req models.BatchRequest) error {
	if req.CompressionLevel < 0 || req.CompressionLevel > 9 {
		return fmt.Errorf("%w: %w: %d", upload.ErrValidation, ErrInvalidCompressionLevel, req.CompressionLevel)
	}
	return s.validator.Validate(req.Meta())
}

func (s *rezipService) uploadOne(ctx context.Context, f models.IncomingFile) (*models.UploadDescriptor, error) {
	if f.Open == nil {
		return nil, ErrUploadFailed
	}

	src, err := f.Open()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUploadFailed, err)
	}
	defer src.Close()

	return s.writer.Write(ctx, src, f.Name, f.ContentType)
}

func (s *rezipService) transformOne(ctx context.Context, desc *models.UploadDescriptor, req models.BatchRequest) models.TransformResult {
	out, err := s.rezipper.Rezip(ctx, models.TransformRequest{
		SourceName:       desc.OriginalName,
		SourcePath:       desc.StoredPath,
		OutputPath:       filepath.Join(s.cfg.CompressedDir, desc.StoredName),
		ExtractPassword:  req.ExtractPassword,
		CompressPassword: req.CompressPassword,
		CompressionLevel: req.CompressionLevel,
	})
	if err != nil {
		s.logger.Warn("не удалось перепаковать файл",
			zap.String("filename", desc.OriginalName),
			zap.Error(err),
		)
		return failure(desc.OriginalName, err)
	}

	res := models.TransformResult{
		FileName:   desc.OriginalName,
		Success:    true,
		OutputName: filepath.Base(out),
		OutputPath: out,
		Checksum:   desc.Checksum,
	}
	if info, err := os.Stat(out); err == nil {
		res.Size = info.Size()
	}

	return res
}

// forEach выполняет fn для каждого индекса не более чем в MaxParallelFiles
// горутинах. Паника внутри fn передается в onPanic для того же индекса.
func (s *rezipService) forEach(n int, fn func(i int), onPanic func(i int, err error)) {
	var g errgroup.Group
	g.SetLimit(s.cfg.MaxParallelFiles)

	for i := 0; i < n; i++ {
		g.Go(func() error {
			defer func() {
				if r := recover(); r != nil {
					s.logger.Error("паника при обработке файла",
						zap.Int("index", i),
						zap.Any("panic", r),
					)
					onPanic(i, fmt.Errorf("%w: %v", ErrUnexpectedRun, r))
				}
			}()
			fn(i)
			return nil
		})
	}

	g.Wait()
}

func (s *rezipService) validName(name string) bool {
	if name == "" || name == "." || name == ".." {
		return false
	}
	if strings.ContainsAny(name, `/\`) || filepath.Base(name) != name {
		return false
	}
	return s.validator.Allowed(name)
}

func failure(name string, err error) models.TransformResult {
	msg := err.Error()
	var fileErr *archive.FileError
	if errors.As(err, &fileErr) {
		msg = fileErr.Err.Error()
	}

	return models.TransformResult{
		FileName: name,
		Success:  false,
		Error:    msg,
	}
}

func newReport(results []models.TransformResult) *models.BatchReport {
	report := &models.BatchReport{
		Total:   len(results),
		Results: results,
	}
	for _, r := range results {
		if r.Success {
			report.Successful++
		} else {
			report.Failed++
		}
	}
	return report
}

func paginate[T any](items []T, page, pageSize int) []T {
	start := (page - 1) * pageSize
	if start >= len(items) {
		return []T{}
	}
	end := min(start+pageSize, len(items))
	return items[start:end]
}
