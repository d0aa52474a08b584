package models

import (
	"io"
	"time"
)

// UploadDescriptor описывает файл, полностью записанный в директорию загрузок.
type UploadDescriptor struct {
	OriginalName      string    `json:"original_name"`
	StoredName        string    `json:"stored_name"`
	StoredPath        string    `json:"-"`
	Size              int64     `json:"size"`
	Checksum          string    `json:"checksum"`
	ChecksumAlgorithm string    `json:"checksum_algorithm"`
	ContentType       string    `json:"content_type"`
	UploadedAt        time.Time `json:"uploaded_at"`
}

// FileMeta - метаданные входящего файла, доступные до чтения тела.
// Size < 0 означает, что размер не передан клиентом.
type FileMeta struct {
	Name string
	Size int64
}

// IncomingFile - файл из запроса, тело которого еще не прочитано.
type IncomingFile struct {
	Name        string
	Size        int64
	ContentType string
	Open        func() (io.ReadCloser, error)
}

type BatchRequest struct {
	Files            []IncomingFile
	ExtractPassword  string
	CompressPassword string
	CompressionLevel int
}

func (r BatchRequest) Meta() []FileMeta {
	meta := make([]FileMeta, len(r.Files))
	for i, f := range r.Files {
		meta[i] = FileMeta{Name: f.Name, Size: f.Size}
	}
	return meta
}

func (r BatchRequest) Names() []string {
	names := make([]string, len(r.Files))
	for i, f := range r.Files {
		names[i] = f.Name
	}
	return names
}
