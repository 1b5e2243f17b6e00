package handlers_test

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/Hsnnder/real-estatemvp/internal/api/handlers"
	"github.com/Hsnnder/real-estatemvp/internal/models"
	"github.com/Hsnnder/real-estatemvp/internal/services"
)

func setupAPI() (*MockListingService, *gin.Engine) {
	gin.SetMode(gin.TestMode)
	listings := new(MockListingService)
	h := handlers.NewAPIHandler(listings)

	r := gin.New()
	r.GET("/api/properties", h.ListProperties)
	r.GET("/api/property/:id", h.GetProperty)
	r.GET("/api/properties/search", h.SearchProperties)
	r.GET("/api/properties/map", h.MapMarkers)
	return listings, r
}

func TestAPIHandler_ListProperties(t *testing.T) {
	listings, r := setupAPI()
	listings.On("List", mock.Anything, models.ViewActive).
		Return([]models.Listing{{ID: "1", Title: "Ev", Status: models.StatusActive}}, nil)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/properties", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	var body []map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.Len(t, body, 1)
	assert.Equal(t, "1", body[0]["ilanId"])
	assert.Equal(t, "Ev", body[0]["ilanBaslik"])
	assert.Equal(t, "active", body[0]["status"])
}

func TestAPIHandler_ListProperties_EmptyIsArray(t *testing.T) {
	listings, r := setupAPI()
	listings.On("List", mock.Anything, models.ViewActive).Return([]models.Listing(nil), nil)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/properties", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[]`, w.Body.String())
}

func TestAPIHandler_ListProperties_Error(t *testing.T) {
	listings, r := setupAPI()
	listings.On("List", mock.Anything, models.ViewActive).Return(nil, errors.New("sheets down"))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/properties", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"error":"Failed to fetch properties"}`, w.Body.String())
}

func TestAPIHandler_GetProperty(t *testing.T) {
	listings, r := setupAPI()
	listings.On("FindByID", mock.Anything, "1", false).Return(&models.Listing{ID: "1", Status: models.StatusActive}, nil)
	listings.On("FindByID", mock.Anything, "2", false).Return(&models.Listing{ID: "2", Status: models.StatusPassive}, nil)
	listings.On("FindByID", mock.Anything, "3", false).Return(nil, services.ErrListingNotFound)
	listings.On("FindByID", mock.Anything, "4", false).Return(nil, errors.New("timeout"))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/property/1", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	for _, id := range []string{"2", "3"} {
		w = httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/property/"+id, nil))
		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.JSONEq(t, `{"error":"Property not found"}`, w.Body.String())
	}

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/property/4", nil))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"error":"Failed to fetch property"}`, w.Body.String())
}

func TestAPIHandler_SearchProperties(t *testing.T) {
	listings, r := setupAPI()
	maxPrice := int64(3000000)
	listings.On("Search", mock.Anything, models.ListingFilter{PriceMax: &maxPrice, PropertyType: "Villa"}).
		Return([]models.Listing{{ID: "5"}}, nil)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/properties/search?price_max=3000000TL&propertyType=Villa", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"ilanId":"5"`)
	listings.AssertExpectations(t)
}

func TestAPIHandler_MapMarkers(t *testing.T) {
	listings, r := setupAPI()
	listings.On("List", mock.Anything, models.ViewActive).Return([]models.Listing{
		{ID: "1", Title: "Ev", Price: "100", Latitude: "36.8841", Longitude: "30.7056", PhotoIDs: "p1"},
		{ID: "2", Latitude: "999", Longitude: "30"},
	}, nil)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/properties/map", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	var markers []models.MapMarker
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &markers))
	require.Len(t, markers, 1)
	assert.Equal(t, "1", markers[0].ID)
	assert.Equal(t, "/propertyinfo/1", markers[0].URL)
	assert.Equal(t, "/img/p1/400", markers[0].Photo)
	assert.NotEmpty(t, markers[0].Geohash)
}
