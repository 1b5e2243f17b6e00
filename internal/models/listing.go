package models

import (
	"strings"
)

// Status is the canonical lifecycle state of a listing.
type Status string

const (
	StatusActive  Status = "active"
	StatusSold    Status = "sold"
	StatusPassive Status = "passive"
)

// View selects which listings a read returns.
type View string

const (
	ViewActive View = "active"
	ViewAll    View = "all"
)

var statusSynonyms = map[string]Status{
	"active": StatusActive,
	"aktif":  StatusActive,
	"on":     StatusActive,
	"1":      StatusActive,
	"true":   StatusActive,

	"sold":    StatusSold,
	"satildi": StatusSold,
	"satıldı": StatusSold,
	"closed":  StatusSold,
	"kapandi": StatusSold,
	"kapandı": StatusSold,

	"passive":  StatusPassive,
	"pasif":    StatusPassive,
	"inactive": StatusPassive,
	"off":      StatusPassive,
	"0":        StatusPassive,
	"disabled": StatusPassive,
}

// NormalizeStatus maps free-text status input onto one of the canonical values.
// Anything unrecognized, including the empty string, is active.
func NormalizeStatus(raw string) Status {
	if s, ok := statusSynonyms[strings.ToLower(strings.TrimSpace(raw))]; ok {
		return s
	}
	return StatusActive
}

// Listing is one real-estate record, stored as a single spreadsheet row.
// JSON keys match the column names the sheet and the public API have always used.
type Listing struct {
	ID           string `json:"ilanId"`
	Title        string `json:"ilanBaslik"`
	Description  string `json:"ilanAciklama"`
	Price        string `json:"price"`
	Rooms        string `json:"ilanOda"`
	Bathrooms    string `json:"ilanBanyo"`
	Size         string `json:"ilanBoyut"`
	PropertyType string `json:"propertyType"`
	PhotoIDs     string `json:"photoIds"`
	Latitude     string `json:"latitude"`
	Longitude    string `json:"longitude"`
	Status       Status `json:"status"`
	CreatedAt    string `json:"createdAt"`
	Address      string `json:"address"`
}

// Photos splits the comma-joined photo identifiers, dropping blanks.
func (l *Listing) Photos() []string {
	var ids []string
	for _, id := range strings.Split(l.PhotoIDs, ",") {
		if id = strings.TrimSpace(id); id != "" {
			ids = append(ids, id)
		}
	}
	return ids
}

// HasCoordinates reports whether both latitude and longitude are filled in.
func (l *Listing) HasCoordinates() bool {
	return strings.TrimSpace(l.Latitude) != "" && strings.TrimSpace(l.Longitude) != ""
}

// ListingFields carries the caller-supplied values for a new listing.
// Identifier, status and creation time are assigned by the repository.
type ListingFields struct {
	Title        string
	Description  string
	Price        string
	Rooms        string
	Bathrooms    string
	Size         string
	PropertyType string
	PhotoIDs     string
	Latitude     string
	Longitude    string
	Address      string
}

// ListingPatch is a partial update. Nil fields keep the stored value.
type ListingPatch struct {
	Title        *string
	Description  *string
	Price        *string
	Rooms        *string
	Bathrooms    *string
	Size         *string
	PropertyType *string
	PhotoIDs     *string
	Latitude     *string
	Longitude    *string
	Status       *Status
	Address      *string
}

// ListingFilter holds the optional search criteria of the listing grid and the search API.
type ListingFilter struct {
	PriceMin     *int64
	PriceMax     *int64
	PropertyType string
	Rooms        string
}

// ListingStats summarizes the sheet for the admin dashboard.
type ListingStats struct {
	Total   int `json:"total"`
	Active  int `json:"active"`
	Sold    int `json:"sold"`
	Passive int `json:"passive"`
}

// MapMarker is a listing pin on the map page and the map API.
type MapMarker struct {
	ID      string  `json:"id"`
	Title   string  `json:"title"`
	Price   string  `json:"price"`
	Lat     float64 `json:"lat"`
	Lng     float64 `json:"lng"`
	Geohash string  `json:"geohash"`
	URL     string  `json:"url"`
	Photo   string  `json:"photo,omitempty"`
}
