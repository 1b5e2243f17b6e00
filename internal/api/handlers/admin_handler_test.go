package handlers_test

import (
	"bytes"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/Hsnnder/real-estatemvp/internal/api/handlers"
	"github.com/Hsnnder/real-estatemvp/internal/auth"
	"github.com/Hsnnder/real-estatemvp/internal/geocode"
	"github.com/Hsnnder/real-estatemvp/internal/models"
	"github.com/Hsnnder/real-estatemvp/internal/services"
)

type adminMocks struct {
	listings  *MockListingService
	uploader  *MockFileUploader
	driveAuth *MockDriveAuthorizer
	geocoder  *MockGeocoder
}

func setupAdmin(t *testing.T) (*adminMocks, http.Handler) {
	t.Helper()
	m := &adminMocks{
		listings:  new(MockListingService),
		uploader:  new(MockFileUploader),
		driveAuth: new(MockDriveAuthorizer),
		geocoder:  new(MockGeocoder),
	}
	h := handlers.NewAdminHandler(testConfig(), m.listings, m.uploader, m.driveAuth, m.geocoder)

	r := newTestRouter()
	r.GET("/admin/login", h.LoginForm)
	r.POST("/admin/login", h.Login)
	r.GET("/admin/logout", h.Logout)
	r.GET("/admin", h.Dashboard)
	r.GET("/admin/properties", h.Properties)
	r.GET("/admin/properties/export.xlsx", h.Export)
	r.GET("/admin/property/add", h.AddForm)
	r.POST("/admin/property/add", h.Add)
	r.GET("/admin/property/edit/:id", h.EditForm)
	r.POST("/admin/property/edit/:id", h.Edit)
	r.POST("/admin/property/:id/status", h.SetStatus)
	r.GET("/admin/google/auth", h.GoogleAuth)
	r.GET("/admin/google/oauth2callback", h.GoogleCallback)
	return m, r
}

func multipartRequest(t *testing.T, target string, fields map[string]string, photos map[string][]byte) *http.Request {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	for name, data := range photos {
		fw, err := mw.CreateFormFile("photos", name)
		require.NoError(t, err)
		_, err = fw.Write(data)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, target, &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func TestAdminHandler_Login(t *testing.T) {
	_, r := setupAdmin(t)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, postForm("/admin/login", url.Values{"username": {"admin"}, "password": {"wrong"}}))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "Kullanıcı adı veya şifre hatalı!")

	w = httptest.NewRecorder()
	r.ServeHTTP(w, postForm("/admin/login", url.Values{"username": {"admin"}, "password": {"secret"}}))
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/admin", w.Header().Get("Location"))

	var session *http.Cookie
	for _, ck := range w.Result().Cookies() {
		if ck.Name == auth.SessionCookieName {
			session = ck
		}
	}
	require.NotNil(t, session)
	assert.True(t, session.HttpOnly)
	claims, err := auth.ValidateSessionToken(session.Value, testConfig().SessionSecret)
	require.NoError(t, err)
	assert.Equal(t, "admin", claims.Username)

	// An existing session skips the login form.
	req := httptest.NewRequest(http.MethodGet, "/admin/login", nil)
	req.AddCookie(session)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusFound, w.Code)
}

func TestAdminHandler_Logout_ClearsCookie(t *testing.T) {
	_, r := setupAdmin(t)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/admin/logout", nil))

	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/admin/login", w.Header().Get("Location"))
	assert.Contains(t, w.Header().Get("Set-Cookie"), auth.SessionCookieName+"=;")
}

func TestAdminHandler_Dashboard(t *testing.T) {
	m, r := setupAdmin(t)
	m.listings.On("Stats", mock.Anything).Return(&models.ListingStats{Total: 7, Active: 5, Sold: 1, Passive: 1}, nil)
	m.listings.On("List", mock.Anything, models.ViewAll).Return([]models.Listing{
		{ID: "1", CreatedAt: "2024-01-01T00:00:00.000Z"},
		{ID: "2", CreatedAt: "2024-03-01T00:00:00.000Z"},
	}, nil)
	m.uploader.On("IsAuthorized").Return(true)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/admin?drive_auth=success", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "dashboard total=7 drive=true flag=success 2 1", w.Body.String())
}

func TestAdminHandler_Properties_ShowsAllStatuses(t *testing.T) {
	m, r := setupAdmin(t)
	m.listings.On("List", mock.Anything, models.ViewAll).Return([]models.Listing{
		{ID: "1", Status: models.StatusActive},
		{ID: "2", Status: models.StatusSold},
	}, nil)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/admin/properties", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "1:Aktif")
	assert.Contains(t, w.Body.String(), "2:Satıldı")
}

func TestAdminHandler_Add_UploadsPhotosAndGeocodes(t *testing.T) {
	m, r := setupAdmin(t)
	m.uploader.On("Upload", mock.Anything, []byte("jpegdata"), mock.MatchedBy(func(name string) bool {
		return strings.HasPrefix(name, "property_") && strings.HasSuffix(name, "_salon.jpg")
	})).Return("drive-photo-1", nil)
	m.geocoder.On("Resolve", mock.Anything, "Konyaaltı, Antalya").Return(&geocode.Coordinates{Lat: 36.88, Lng: 30.7}, nil)
	m.listings.On("Add", mock.Anything, models.ListingFields{
		Title:     "Deniz manzaralı",
		Price:     "2500000",
		Rooms:     "3+1",
		PhotoIDs:  "drive-photo-1",
		Latitude:  "36.88",
		Longitude: "30.7",
		Address:   "Konyaaltı, Antalya",
	}).Return(&models.Listing{ID: "1"}, nil)

	req := multipartRequest(t, "/admin/property/add", map[string]string{
		"ilanBaslik": " Deniz manzaralı ",
		"price":      "2500000",
		"ilanOda":    "3+1",
		"address":    "Konyaaltı, Antalya",
	}, map[string][]byte{"salon.jpg": []byte("jpegdata")})
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/admin/properties?success=1", w.Header().Get("Location"))
	m.uploader.AssertExpectations(t)
	m.geocoder.AssertExpectations(t)
	m.listings.AssertExpectations(t)
}

func TestAdminHandler_Add_FailedUploadIsSkipped(t *testing.T) {
	m, r := setupAdmin(t)
	m.uploader.On("Upload", mock.Anything, mock.Anything, mock.Anything).Return("", errors.New("not authorized"))
	m.listings.On("Add", mock.Anything, mock.MatchedBy(func(f models.ListingFields) bool {
		return f.PhotoIDs == "" && f.Title == "Arsa"
	})).Return(nil, errors.New("sheets down"))

	req := multipartRequest(t, "/admin/property/add", map[string]string{
		"ilanBaslik": "Arsa",
		"latitude":   "36.1",
		"longitude":  "30.1",
	}, map[string][]byte{"a.png": []byte("png")})
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/admin/property/add?error=1", w.Header().Get("Location"))
	m.geocoder.AssertNotCalled(t, "Resolve", mock.Anything, mock.Anything)
}

func TestAdminHandler_Edit_PatchesOnlyPostedFields(t *testing.T) {
	m, r := setupAdmin(t)
	existing := &models.Listing{ID: "7", Title: "Eski", Price: "100", Latitude: "36.1", Longitude: "30.1", Status: models.StatusSold}
	m.listings.On("FindByID", mock.Anything, "7", true).Return(existing, nil)
	m.listings.On("UpdateByID", mock.Anything, "7", mock.MatchedBy(func(p models.ListingPatch) bool {
		return p.Price != nil && *p.Price == "200" &&
			p.Title == nil && p.Status == nil && p.PhotoIDs == nil && p.Latitude == nil
	})).Return(nil)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, postForm("/admin/property/edit/7", url.Values{"price": {"200"}}))

	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/admin/properties?updated=1", w.Header().Get("Location"))
	m.listings.AssertExpectations(t)
}

func TestAdminHandler_Edit_AppendsPhotos(t *testing.T) {
	m, r := setupAdmin(t)
	m.listings.On("FindByID", mock.Anything, "7", true).Return(&models.Listing{ID: "7", PhotoIDs: "a,b", Latitude: "1", Longitude: "2"}, nil)
	m.uploader.On("Upload", mock.Anything, mock.Anything, mock.Anything).Return("c", nil)
	m.listings.On("UpdateByID", mock.Anything, "7", mock.MatchedBy(func(p models.ListingPatch) bool {
		return p.PhotoIDs != nil && *p.PhotoIDs == "a,b,c"
	})).Return(nil)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, multipartRequest(t, "/admin/property/edit/7", nil, map[string][]byte{"yeni.jpg": []byte("x")}))

	assert.Equal(t, "/admin/properties?updated=1", w.Header().Get("Location"))
	m.listings.AssertExpectations(t)
}

func TestAdminHandler_Edit_NotFoundAndFailure(t *testing.T) {
	m, r := setupAdmin(t)
	m.listings.On("FindByID", mock.Anything, "404", true).Return(nil, services.ErrListingNotFound)
	m.listings.On("FindByID", mock.Anything, "8", true).Return(&models.Listing{ID: "8", Latitude: "1", Longitude: "2"}, nil)
	m.listings.On("UpdateByID", mock.Anything, "8", mock.Anything).Return(errors.New("quota"))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, postForm("/admin/property/edit/404", url.Values{"price": {"1"}}))
	assert.Equal(t, "/admin/properties?notfound=1", w.Header().Get("Location"))

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/admin/property/edit/404", nil))
	assert.Equal(t, "/admin/properties?notfound=1", w.Header().Get("Location"))

	w = httptest.NewRecorder()
	r.ServeHTTP(w, postForm("/admin/property/edit/8", url.Values{"price": {"1"}}))
	assert.Equal(t, "/admin/properties?update=0", w.Header().Get("Location"))
}

func TestAdminHandler_SetStatus(t *testing.T) {
	m, r := setupAdmin(t)
	m.listings.On("SetStatus", mock.Anything, "1", "Satıldı").Return(nil)
	m.listings.On("SetStatus", mock.Anything, "2", "sold").Return(services.ErrListingNotFound)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, postForm("/admin/property/1/status", url.Values{"status": {"Satıldı"}}))
	assert.Equal(t, "/admin/properties?updated=1", w.Header().Get("Location"))

	w = httptest.NewRecorder()
	r.ServeHTTP(w, postForm("/admin/property/2/status", url.Values{"status": {"sold"}}))
	assert.Equal(t, "/admin/properties?notfound=1", w.Header().Get("Location"))
}

func TestAdminHandler_Export(t *testing.T) {
	m, r := setupAdmin(t)
	m.listings.On("ListFresh", mock.Anything, models.ViewAll).Return([]models.Listing{{ID: "1", Title: "Ev"}}, nil)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/admin/properties/export.xlsx", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), ".xlsx")
	assert.True(t, bytes.HasPrefix(w.Body.Bytes(), []byte("PK")), "xlsx is a zip archive")
}

func TestAdminHandler_GoogleOAuthRoundTrip(t *testing.T) {
	m, r := setupAdmin(t)
	m.driveAuth.On("AuthURL", mock.AnythingOfType("string")).Return("https://accounts.google.com/o/oauth2/auth?x=1")
	m.driveAuth.On("Exchange", mock.Anything, "the-code").Return(nil)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/admin/google/auth", nil))
	require.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "https://accounts.google.com/o/oauth2/auth?x=1", w.Header().Get("Location"))

	var state *http.Cookie
	for _, ck := range w.Result().Cookies() {
		if ck.Name == handlers.OAuthStateCookie {
			state = ck
		}
	}
	require.NotNil(t, state)

	// Wrong state.
	req := httptest.NewRequest(http.MethodGet, "/admin/google/oauth2callback?code=the-code&state=forged", nil)
	req.AddCookie(state)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, "/admin?drive_auth=error", w.Header().Get("Location"))

	// Missing code.
	req = httptest.NewRequest(http.MethodGet, "/admin/google/oauth2callback?state="+state.Value, nil)
	req.AddCookie(state)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, "/admin?drive_auth=missing_code", w.Header().Get("Location"))

	req = httptest.NewRequest(http.MethodGet, "/admin/google/oauth2callback?code=the-code&state="+state.Value, nil)
	req.AddCookie(state)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, "/admin?drive_auth=success", w.Header().Get("Location"))
	m.driveAuth.AssertExpectations(t)
}

func TestAdminHandler_GoogleCallback_ExchangeFails(t *testing.T) {
	m, r := setupAdmin(t)
	m.driveAuth.On("Exchange", mock.Anything, "bad").Return(errors.New("invalid_grant"))

	req := httptest.NewRequest(http.MethodGet, "/admin/google/oauth2callback?code=bad&state=s1", nil)
	req.AddCookie(&http.Cookie{Name: handlers.OAuthStateCookie, Value: "s1"})
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, "/admin?drive_auth=fail", w.Header().Get("Location"))
}
