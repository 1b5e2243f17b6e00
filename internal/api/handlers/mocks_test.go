package handlers_test

import (
	"bytes"
	"context"
	"io"

	"github.com/stretchr/testify/mock"

	"github.com/Hsnnder/real-estatemvp/internal/geocode"
	"github.com/Hsnnder/real-estatemvp/internal/models"
	"github.com/Hsnnder/real-estatemvp/internal/storage"
)

// --- Mocks ---

// MockListingService
type MockListingService struct {
	mock.Mock
}

func (m *MockListingService) List(ctx context.Context, view models.View) ([]models.Listing, error) {
	args := m.Called(ctx, view)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Listing), args.Error(1)
}

func (m *MockListingService) ListFresh(ctx context.Context, view models.View) ([]models.Listing, error) {
	args := m.Called(ctx, view)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Listing), args.Error(1)
}

func (m *MockListingService) FindByID(ctx context.Context, id string, fresh bool) (*models.Listing, error) {
	args := m.Called(ctx, id, fresh)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Listing), args.Error(1)
}

func (m *MockListingService) Latest(ctx context.Context, fresh bool) (*models.Listing, error) {
	args := m.Called(ctx, fresh)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Listing), args.Error(1)
}

func (m *MockListingService) Featured(ctx context.Context, n int) ([]models.Listing, error) {
	args := m.Called(ctx, n)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Listing), args.Error(1)
}

func (m *MockListingService) Search(ctx context.Context, filter models.ListingFilter) ([]models.Listing, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Listing), args.Error(1)
}

func (m *MockListingService) Stats(ctx context.Context) (*models.ListingStats, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ListingStats), args.Error(1)
}

func (m *MockListingService) Add(ctx context.Context, fields models.ListingFields) (*models.Listing, error) {
	args := m.Called(ctx, fields)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Listing), args.Error(1)
}

func (m *MockListingService) UpdateByID(ctx context.Context, id string, patch models.ListingPatch) error {
	args := m.Called(ctx, id, patch)
	return args.Error(0)
}

func (m *MockListingService) SetStatus(ctx context.Context, id, status string) error {
	args := m.Called(ctx, id, status)
	return args.Error(0)
}

// MockContactService
type MockContactService struct {
	mock.Mock
}

func (m *MockContactService) Submit(ctx context.Context, form models.ContactForm, remoteIP string) (*models.ContactMessage, error) {
	args := m.Called(ctx, form, remoteIP)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ContactMessage), args.Error(1)
}

func (m *MockContactService) MarkSent(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockFileUploader
type MockFileUploader struct {
	mock.Mock
}

func (m *MockFileUploader) Upload(ctx context.Context, data []byte, filename string) (string, error) {
	args := m.Called(ctx, data, filename)
	return args.String(0), args.Error(1)
}

func (m *MockFileUploader) IsAuthorized() bool {
	args := m.Called()
	return args.Bool(0)
}

// MockFileReader
type MockFileReader struct {
	mock.Mock
}

func (m *MockFileReader) FetchMetadata(ctx context.Context, id string) (*storage.FileMeta, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*storage.FileMeta), args.Error(1)
}

// Open returns a fresh reader over the []byte passed to Return.
func (m *MockFileReader) Open(ctx context.Context, id string) (io.ReadCloser, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return io.NopCloser(bytes.NewReader(args.Get(0).([]byte))), args.Error(1)
}

// MockGeocoder
type MockGeocoder struct {
	mock.Mock
}

func (m *MockGeocoder) Resolve(ctx context.Context, address string) (*geocode.Coordinates, error) {
	args := m.Called(ctx, address)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*geocode.Coordinates), args.Error(1)
}

// MockDriveAuthorizer
type MockDriveAuthorizer struct {
	mock.Mock
}

func (m *MockDriveAuthorizer) AuthURL(state string) string {
	args := m.Called(state)
	return args.String(0)
}

func (m *MockDriveAuthorizer) Exchange(ctx context.Context, code string) error {
	args := m.Called(ctx, code)
	return args.Error(0)
}

// MockResizer
type MockResizer struct {
	mock.Mock
}

func (m *MockResizer) Resize(ctx context.Context, src []byte, width int) ([]byte, string, error) {
	args := m.Called(ctx, src, width)
	if args.Get(0) == nil {
		return nil, args.String(1), args.Error(2)
	}
	return args.Get(0).([]byte), args.String(1), args.Error(2)
}
