package inmem

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/sunr3d/rezip/internal/interfaces/infra"
	"github.com/sunr3d/rezip/models"
)

var _ infra.TaskStore = (*inmemDB)(nil)

// inmemDB хранит копии задач: фоновые обработчики и HTTP-запросы
// не делят между собой один и тот же *models.Task.
type inmemDB struct {
	logger *zap.Logger
	db     map[string]*models.Task
	mu     sync.RWMutex
	ttl    time.Duration
	now    func() time.Time
}

func New(log *zap.Logger, ttl time.Duration) infra.TaskStore {
	return &inmemDB{
		logger: log,
		db:     make(map[string]*models.Task),
		ttl:    ttl,
		now:    time.Now,
	}
}

func (db *inmemDB) SaveTask(ctx context.Context, task *models.Task) error {
	select {
	case <-ctx.Done():
		return fmt.Errorf("%w: %v", ErrContextDone, ctx.Err())
	default:
	}

	if task == nil {
		return ErrTaskNil
	}

	if task.ID == "" {
		return ErrTaskIDEmpty
	}

	db.mu.Lock()
	defer db.mu.Unlock()

	db.db[task.ID] = cloneTask(task)
	db.logger.Debug("задача сохранена",
		zap.String("task_id", task.ID),
		zap.String("status", string(task.Status)),
	)

	return nil
}

func (db *inmemDB) GetTask(ctx context.Context, id string) (*models.Task, error) {
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%w: %v", ErrContextDone, ctx.Err())
	default:
	}

	if id == "" {
		return nil, ErrTaskIDEmpty
	}

	db.mu.RLock()
	defer db.mu.RUnlock()

	task, exists := db.db[id]
	if !exists || db.expired(task) {
		return nil, ErrTaskNotFound
	}

	return cloneTask(task), nil
}

// CountTasksInProcess попутно удаляет задачи старше TTL.
func (db *inmemDB) CountTasksInProcess(ctx context.Context) (int, error) {
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%w: %v", ErrContextDone, ctx.Err())
	default:
	}

	db.mu.Lock()
	defer db.mu.Unlock()

	count := 0
	for id, task := range db.db {
		if db.expired(task) {
			delete(db.db, id)
			db.logger.Info("задача удалена по TTL", zap.String("task_id", id))
			continue
		}
		if task.InProcess() {
			count++
		}
	}

	return count, nil
}

func (db *inmemDB) DeleteTask(ctx context.Context, id string) error {
	select {
	case <-ctx.Done():
		return fmt.Errorf("%w: %v", ErrContextDone, ctx.Err())
	default:
	}

	if id == "" {
		return ErrTaskIDEmpty
	}

	db.mu.Lock()
	defer db.mu.Unlock()

	if _, exists := db.db[id]; !exists {
		return ErrTaskNotFound
	}

	delete(db.db, id)
	db.logger.Info("задача удалена", zap.String("task_id", id))

	return nil
}

func (db *inmemDB) expired(task *models.Task) bool {
	return db.ttl > 0 && db.now().Sub(task.UpdatedAt) > db.ttl
}

func cloneTask(t *models.Task) *models.Task {
	c := *t
	c.Files = append([]string(nil), t.Files...)
	c.Errors = append([]string(nil), t.Errors...)
	if t.Report != nil {
		r := *t.Report
		r.Results = append([]models.TransformResult(nil), t.Report.Results...)
		c.Report = &r
	}
	return &c
}
