// Package storage holds the listing photo stores: Google Drive (interactive
// OAuth for uploads, service account for reads) and an S3 alternative.
package storage

import (
	"context"
	"errors"
	"io"
	"net/url"
	"path/filepath"
	"strings"
	"time"
)

var (
	// ErrNotAuthorized is returned by uploads before an admin granted Drive access.
	ErrNotAuthorized = errors.New("file store not authorized")
	ErrFileNotFound  = errors.New("file not found")
	ErrFileForbidden = errors.New("file access forbidden")
)

// FileMeta describes a stored photo.
type FileMeta struct {
	ID           string
	Name         string
	MimeType     string
	Size         int64
	ModifiedTime time.Time
}

// IFileUploader stores uploaded photos and returns their identifiers.
type IFileUploader interface {
	Upload(ctx context.Context, data []byte, filename string) (string, error)
	IsAuthorized() bool
}

// IFileReader reads stored photos back for the image proxy.
type IFileReader interface {
	FetchMetadata(ctx context.Context, id string) (*FileMeta, error)
	Open(ctx context.Context, id string) (io.ReadCloser, error)
}

// ContentTypeFor infers the upload content type from the file extension.
func ContentTypeFor(filename string) string {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".png":
		return "image/png"
	case ".gif":
		return "image/gif"
	default:
		return "image/jpeg"
	}
}

// PublicURL is the direct-view link of a publicly shared Drive file.
func PublicURL(id string) string {
	return "https://drive.google.com/uc?export=view&id=" + url.QueryEscape(id)
}
