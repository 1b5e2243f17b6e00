package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"google.golang.org/api/drive/v3"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
)

// driveReader reads photos with the read-only service account.
type driveReader struct {
	svc *drive.Service
}

// NewDriveReader creates the read client. opts normally come from gauth.ClientOptions.
func NewDriveReader(ctx context.Context, opts ...option.ClientOption) (IFileReader, error) {
	svc, err := drive.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create drive reader: %w", err)
	}
	return &driveReader{svc: svc}, nil
}

func (r *driveReader) FetchMetadata(ctx context.Context, id string) (*FileMeta, error) {
	f, err := r.svc.Files.Get(id).
		Fields("id, name, mimeType, size, modifiedTime").
		SupportsAllDrives(true).
		Context(ctx).
		Do()
	if err != nil {
		return nil, driveError(id, err)
	}
	meta := &FileMeta{ID: f.Id, Name: f.Name, MimeType: f.MimeType, Size: f.Size}
	if t, err := time.Parse(time.RFC3339, f.ModifiedTime); err == nil {
		meta.ModifiedTime = t
	}
	return meta, nil
}

func (r *driveReader) Open(ctx context.Context, id string) (io.ReadCloser, error) {
	resp, err := r.svc.Files.Get(id).SupportsAllDrives(true).Context(ctx).Download()
	if err != nil {
		return nil, driveError(id, err)
	}
	return resp.Body, nil
}

func driveError(id string, err error) error {
	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		switch gerr.Code {
		case http.StatusNotFound:
			return fmt.Errorf("%w: %s", ErrFileNotFound, id)
		case http.StatusForbidden:
			return fmt.Errorf("%w: %s", ErrFileForbidden, id)
		}
	}
	return fmt.Errorf("drive request for %s: %w", id, err)
}
