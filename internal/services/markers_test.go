package services

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/Hsnnder/real-estatemvp/internal/models"
)

func TestBuildMarkers(t *testing.T) {
	listings := []models.Listing{
		{ID: "1", Title: "Daire", Price: "100", Latitude: "36.8841", Longitude: "30.7056", PhotoIDs: " p1 ,p2"},
		{ID: "2", Latitude: "36,9", Longitude: "30,6"},
		{ID: "3", Latitude: "", Longitude: "30"},
		{ID: "4", Latitude: "abc", Longitude: "30"},
		{ID: "5", Latitude: "95", Longitude: "30"},
	}

	markers := BuildMarkers(listings)
	require.Len(t, markers, 2)

	assert.Equal(t, "1", markers[0].ID)
	assert.Equal(t, 36.8841, markers[0].Lat)
	assert.Equal(t, "/propertyinfo/1", markers[0].URL)
	assert.Equal(t, "/img/p1/400", markers[0].Photo)
	assert.True(t, len(markers[0].Geohash) > 5)
	assert.Equal(t, "sw", markers[0].Geohash[:2])

	assert.Equal(t, 36.9, markers[1].Lat)
	assert.Equal(t, 30.6, markers[1].Lng)
	assert.Empty(t, markers[1].Photo)
}

func TestNewestFirst(t *testing.T) {
	listings := []models.Listing{
		{ID: "1", CreatedAt: "2024-01-01T00:00:00.000Z"},
		{ID: "1700000000000"},
		{ID: "3", CreatedAt: "2024-03-01T00:00:00.000Z"},
	}
	got := NewestFirst(listings, 2)
	require.Len(t, got, 2)
	assert.Equal(t, "3", got[0].ID)
	assert.Equal(t, "1", got[1].ID)
	assert.Equal(t, "1", listings[0].ID, "input untouched")
	assert.Len(t, NewestFirst(listings, -1), 3)
}

func TestWriteListingsXLSX(t *testing.T) {
	listings := []models.Listing{
		{ID: "1", Title: "Daire", Price: "2500000", Status: models.StatusActive},
		{ID: "2", Title: "Arsa", Status: models.StatusSold},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteListingsXLSX(&buf, listings))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("İlanlar")
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, models.ListingHeader, rows[0])
	assert.Equal(t, "Daire", rows[1][models.ColTitle])
	assert.Equal(t, "sold", rows[2][models.ColStatus])
}
