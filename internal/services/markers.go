package services

import (
	"math"
	"strconv"
	"strings"

	geohash "github.com/TomiHiltunen/geohash-golang"

	"github.com/Hsnnder/real-estatemvp/internal/models"
)

// ParseCoordinate reads a latitude or longitude cell. A decimal comma is accepted.
func ParseCoordinate(s string) (float64, bool) {
	s = strings.TrimSpace(strings.Replace(s, ",", ".", 1))
	if s == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

// BuildMarkers turns listings with usable coordinates into map markers.
// Listings without coordinates or with out-of-range values are left out.
func BuildMarkers(listings []models.Listing) []models.MapMarker {
	markers := make([]models.MapMarker, 0, len(listings))
	for i := range listings {
		l := &listings[i]
		lat, okLat := ParseCoordinate(l.Latitude)
		lng, okLng := ParseCoordinate(l.Longitude)
		if !okLat || !okLng || lat < -90 || lat > 90 || lng < -180 || lng > 180 {
			continue
		}
		m := models.MapMarker{
			ID:      l.ID,
			Title:   l.Title,
			Price:   l.Price,
			Lat:     lat,
			Lng:     lng,
			Geohash: geohash.Encode(lat, lng),
			URL:     "/propertyinfo/" + l.ID,
		}
		if photos := l.Photos(); len(photos) > 0 {
			m.Photo = "/img/" + photos[0] + "/400"
		}
		markers = append(markers, m)
	}
	return markers
}
