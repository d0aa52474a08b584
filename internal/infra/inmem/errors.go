package inmem

import "errors"

var (
	ErrTaskNotFound = errors.New("задача не найдена")
	ErrTaskNil      = errors.New("задача не может быть nil")
	ErrTaskIDEmpty  = errors.New("ID задачи не может быть пустым")
	ErrContextDone  = errors.New("отмена контекста")
)
