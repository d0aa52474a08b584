package models

import "time"

type TaskStatus string

const (
	TaskStatusPending    TaskStatus = "pending"
	TaskStatusProcessing TaskStatus = "processing"
	TaskStatusDone       TaskStatus = "done"
	TaskStatusFailed     TaskStatus = "failed"
)

// Task - фоновая обработка пакета файлов.
type Task struct {
	ID        string       `json:"id"`
	Status    TaskStatus   `json:"status"`
	Files     []string     `json:"files"`
	Report    *BatchReport `json:"report,omitempty"`
	Errors    []string     `json:"errors,omitempty"`
	CreatedAt time.Time    `json:"created_at"`
	UpdatedAt time.Time    `json:"updated_at"`
}

func (t *Task) InProcess() bool {
	return t.Status == TaskStatusPending || t.Status == TaskStatusProcessing
}
