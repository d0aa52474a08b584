package rezip_service

import "errors"

var (
	ErrContextDone = errors.New("отмена контекста")

	ErrServerBusy = errors.New("сервер занят, максимальное количество задач в обработке достигнуто")

	ErrInvalidCompressionLevel = errors.New("уровень сжатия должен быть в диапазоне 0-9")
	ErrAllFailed               = errors.New("не удалось обработать ни один файл")

	ErrTaskSave = errors.New("не удалось сохранить задачу")
	ErrTaskGet  = errors.New("не удалось получить задачу")

	ErrInvalidPage   = errors.New("номер страницы и размер страницы должны быть положительными")
	ErrInvalidName   = errors.New("некорректное имя файла")
	ErrFileNotFound  = errors.New("файл не найден")
	ErrListFailed    = errors.New("не удалось получить список файлов")
	ErrArchiveInfo   = errors.New("не удалось прочитать архив")
	ErrUploadFailed  = errors.New("не удалось открыть загружаемый файл")
	ErrUnexpectedRun = errors.New("непредвиденная ошибка обработки файла")
)
