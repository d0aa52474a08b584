package models

import "time"

type ArchiveEntry struct {
	Path             string    `json:"path"`
	UncompressedSize uint64    `json:"uncompressed_size"`
	CompressedSize   uint64    `json:"compressed_size"`
	Method           string    `json:"method"`
	Encrypted        bool      `json:"encrypted"`
	ModifiedAt       time.Time `json:"modified_at"`
}

type ArchiveInfo struct {
	Filename  string         `json:"filename"`
	Entries   []ArchiveEntry `json:"entries"`
	FileCount int            `json:"file_count"`
	TotalSize uint64         `json:"total_size"`
}

// TransformRequest - параметры перепаковки одного архива.
// Пустой пароль означает отсутствие пароля.
type TransformRequest struct {
	SourceName       string
	SourcePath       string
	OutputPath       string
	ExtractPassword  string
	CompressPassword string
	CompressionLevel int
}

type TransformResult struct {
	FileName   string `json:"file_name"`
	Success    bool   `json:"success"`
	OutputName string `json:"output_name,omitempty"`
	OutputPath string `json:"-"`
	Size       int64  `json:"size,omitempty"`
	Checksum   string `json:"checksum,omitempty"`
	Error      string `json:"error,omitempty"`
}

type BatchReport struct {
	Total      int               `json:"total"`
	Successful int               `json:"successful"`
	Failed     int               `json:"failed"`
	Results    []TransformResult `json:"results"`
}

type CompressedFile struct {
	Filename  string    `json:"filename"`
	Size      int64     `json:"size"`
	CreatedAt time.Time `json:"created_at"`
}

type FilePage struct {
	Items    []CompressedFile `json:"items"`
	Page     int              `json:"page"`
	PageSize int              `json:"page_size"`
	Total    int              `json:"total"`
}
