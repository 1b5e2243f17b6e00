package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"

	"google.golang.org/api/drive/v3"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
)

// driveUploader implements IFileUploader on the admin's own Drive quota.
type driveUploader struct {
	auth     *DriveAuth
	folderID string
	opts     []option.ClientOption
}

// NewDriveUploader creates the Drive upload client. Extra options are applied
// after the authorized HTTP client (tests point the endpoint elsewhere).
func NewDriveUploader(auth *DriveAuth, folderID string, opts ...option.ClientOption) IFileUploader {
	return &driveUploader{auth: auth, folderID: strings.TrimSpace(folderID), opts: opts}
}

func (u *driveUploader) IsAuthorized() bool {
	return u.auth.IsAuthorized()
}

// Upload creates the file, shares it with anyone holding the link and returns its id.
func (u *driveUploader) Upload(ctx context.Context, data []byte, filename string) (string, error) {
	if !u.auth.IsAuthorized() {
		return "", ErrNotAuthorized
	}
	client, err := u.auth.Client(ctx)
	if err != nil {
		return "", err
	}
	opts := append([]option.ClientOption{option.WithHTTPClient(client)}, u.opts...)
	svc, err := drive.NewService(ctx, opts...)
	if err != nil {
		return "", fmt.Errorf("failed to create drive client: %w", err)
	}

	mimeType := ContentTypeFor(filename)
	var parents []string
	if u.folderID != "" {
		parents = []string{u.folderID}
	}

	file, err := u.create(ctx, svc, data, filename, mimeType, parents)
	if err != nil && parents != nil && isStatus(err, http.StatusNotFound, http.StatusBadRequest) {
		log.Printf("Drive folder %s rejected (%v); retrying upload of %s without parent", u.folderID, err, filename)
		file, err = u.create(ctx, svc, data, filename, mimeType, nil)
	}
	if err != nil {
		return "", fmt.Errorf("failed to upload %s: %w", filename, err)
	}

	_, err = svc.Permissions.Create(file.Id, &drive.Permission{Role: "reader", Type: "anyone"}).
		SupportsAllDrives(true).
		Context(ctx).
		Do()
	if err != nil {
		return "", fmt.Errorf("failed to share %s: %w", file.Id, err)
	}

	log.Printf("Uploaded %s to Drive as %s (%d bytes)", filename, file.Id, len(data))
	return file.Id, nil
}

func (u *driveUploader) create(ctx context.Context, svc *drive.Service, data []byte, name, mimeType string, parents []string) (*drive.File, error) {
	return svc.Files.Create(&drive.File{Name: name, Parents: parents}).
		Media(bytes.NewReader(data), googleapi.ContentType(mimeType)).
		SupportsAllDrives(true).
		Fields("id").
		Context(ctx).
		Do()
}

func isStatus(err error, codes ...int) bool {
	var gerr *googleapi.Error
	if !errors.As(err, &gerr) {
		return false
	}
	for _, c := range codes {
		if gerr.Code == c {
			return true
		}
	}
	return false
}
