package services

import (
	"context"

	"github.com/sunr3d/rezip/models"
)

//go:generate go run github.com/vektra/mockery/v2@v2.53.2 --name=RezipService --output=../../../mocks
type RezipService interface {
	ProcessBatch(ctx context.Context, req models.BatchRequest) (*models.BatchReport, error)
	SubmitBatch(ctx context.Context, req models.BatchRequest) (*models.Task, error)
	GetTask(ctx context.Context, id string) (*models.Task, error)

	ListCompressed(ctx context.Context, page, pageSize int) (*models.FilePage, error)
	CompressedPath(ctx context.Context, filename string) (string, error)
	CompressedInfo(ctx context.Context, filename string) (*models.ArchiveInfo, error)
	Formats() []string
}
