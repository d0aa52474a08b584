package infra

import (
	"context"

	"github.com/sunr3d/rezip/models"
)

//go:generate go run github.com/vektra/mockery/v2@v2.53.2 --name=TaskStore --output=../../../mocks
type TaskStore interface {
	SaveTask(ctx context.Context, task *models.Task) error
	GetTask(ctx context.Context, id string) (*models.Task, error)
	CountTasksInProcess(ctx context.Context) (int, error)
	DeleteTask(ctx context.Context, id string) error
}
