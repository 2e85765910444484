// Package storage persists uploaded files and maps them to public URLs.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"
)

var (
	ErrNilFileHeader = errors.New("storage: nil file header")
	ErrInvalidPath   = errors.New("storage: invalid path")
	ErrFileNotFound  = errors.New("storage: file not found")
	ErrInvalidConfig = errors.New("storage: invalid configuration")
)

// File describes a stored upload.
type File struct {
	Filename string // sanitized original name
	Size     int64
	MIMEType string
	Path     string // storage-relative, forward slashes
}

type Storage interface {
	// Save writes the upload under path, relative to the storage root.
	Save(ctx context.Context, fh *multipart.FileHeader, path string) (*File, error)

	// Delete removes a previously saved file.
	Delete(ctx context.Context, path string) error

	// URL is the public address of path.
	URL(path string) string
}

// SanitizeFilename strips directories and NUL bytes from a client-supplied
// filename.
func SanitizeFilename(filename string) string {
	filename = strings.ReplaceAll(filename, "\\", "/")
	filename = filepath.Base(filename)
	filename = strings.ReplaceAll(filename, "\x00", "")

	if filename == "." || filename == ".." || filename == "" || filename == "/" {
		filename = "unnamed"
	}
	return filename
}

// DetectMIMEType prefers the part's declared Content-Type and sniffs the
// first 512 bytes otherwise.
func DetectMIMEType(fh *multipart.FileHeader) (string, error) {
	if fh == nil {
		return "", ErrNilFileHeader
	}
	if ct := fh.Header.Get("Content-Type"); ct != "" && ct != "application/octet-stream" {
		return ct, nil
	}

	f, err := fh.Open()
	if err != nil {
		return "", fmt.Errorf("open upload: %w", err)
	}
	defer func() { _ = f.Close() }()

	buf := make([]byte, 512)
	n, err := f.Read(buf)
	if err != nil && err != io.EOF {
		return "", fmt.Errorf("read upload: %w", err)
	}
	return http.DetectContentType(buf[:n]), nil
}

func cleanKey(path string) (string, error) {
	path = strings.TrimPrefix(filepath.ToSlash(path), "/")
	if path == "" || strings.Contains(path, "..") {
		return "", fmt.Errorf("%w: %q", ErrInvalidPath, path)
	}
	return path, nil
}
