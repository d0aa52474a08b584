package upload

import "errors"

var (
	ErrContextDone = errors.New("отмена контекста")

	// ErrValidation объединяет все ошибки отклонения пакета до записи на диск.
	ErrValidation = errors.New("ошибка валидации")

	ErrEmptyBatch        = errors.New("не передано ни одного файла")
	ErrDuplicateName     = errors.New("повторяющееся имя файла")
	ErrTooManyFiles      = errors.New("превышено количество файлов в запросе")
	ErrEmptyFilename     = errors.New("пустое имя файла")
	ErrUnsupportedType   = errors.New("неподдерживаемый тип файла")
	ErrSizeLimitExceeded = errors.New("превышен максимальный размер файла")

	ErrUnknownChecksum  = errors.New("неизвестный алгоритм контрольной суммы")
	ErrFileCreateFailed = errors.New("не удалось создать файл")
	ErrReadFailed       = errors.New("не удалось прочитать загружаемый файл")
	ErrWriteFailed      = errors.New("не удалось записать файл")
	ErrRenameFailed     = errors.New("не удалось переместить файл")
)
