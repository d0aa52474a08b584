package archive

import "errors"

var (
	ErrContextDone = errors.New("отмена контекста")

	ErrInvalidContainer = errors.New("файл не является корректным zip-архивом")
	ErrBadPassword      = errors.New("неверный или отсутствующий пароль архива")
	ErrExtractionFailed = errors.New("не удалось распаковать архив")
	ErrEmptyArchive     = errors.New("архив не содержит файлов")

	ErrSourceNotFound = errors.New("исходная директория не найдена")
	ErrBuildFailed    = errors.New("не удалось собрать архив")
	ErrInvalidLevel   = errors.New("уровень сжатия должен быть в диапазоне 0-9")
)

// FileError привязывает ошибку перепаковки к имени исходного файла.
type FileError struct {
	FileName string
	Err      error
}

func (e *FileError) Error() string {
	return e.FileName + ": " + e.Err.Error()
}

func (e *FileError) Unwrap() error {
	return e.Err
}
