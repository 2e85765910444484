package domain

import (
	"fmt"
	"time"
)

// Document is the metadata record of an uploaded file. The file itself lives
// in upload storage under StoragePath.
type Document struct {
	ID          string
	OwnerID     string
	Name        string
	Type        string // MIME type
	Size        int64  // bytes
	StoragePath string
	FileURL     string
	CreatedAt   time.Time
}

// SizeLabel renders Size in kilobytes with two decimals, e.g. "12.50 KB".
func (d Document) SizeLabel() string {
	return FormatSizeKB(d.Size)
}

func FormatSizeKB(size int64) string {
	return fmt.Sprintf("%.2f KB", float64(size)/1024)
}
