package models

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ListingColumns is the number of spreadsheet columns (A through N) a listing occupies.
const ListingColumns = 14

// Column positions. The order is a contract with the backing sheet.
const (
	ColID = iota
	ColTitle
	ColDescription
	ColPrice
	ColRooms
	ColBathrooms
	ColSize
	ColPropertyType
	ColPhotoIDs
	ColLatitude
	ColLongitude
	ColStatus
	ColCreatedAt
	ColAddress
)

// ListingHeader is the header row written to a freshly created sheet.
var ListingHeader = []string{
	"ilanId", "ilanBaslik", "ilanAciklama", "price", "ilanOda", "ilanBanyo", "ilanBoyut",
	"propertyType", "photoIds", "latitude", "longitude", "status", "createdAt", "address",
}

// TimestampLayout formats creation timestamps as millisecond-precision UTC ISO-8601.
const TimestampLayout = "2006-01-02T15:04:05.000Z"

var (
	ErrMalformedRow = errors.New("malformed listing row")
	ErrBlankRow     = errors.New("blank listing row")
)

// DecodeListingRow maps positional cells onto a Listing.
// Trailing cells may be missing (the Sheets API trims empty ones); more than
// ListingColumns cells is a structural error.
func DecodeListingRow(cells []string) (Listing, error) {
	if len(cells) > ListingColumns {
		return Listing{}, fmt.Errorf("%w: %d cells, want at most %d", ErrMalformedRow, len(cells), ListingColumns)
	}
	blank := true
	for _, c := range cells {
		if strings.TrimSpace(c) != "" {
			blank = false
			break
		}
	}
	if blank {
		return Listing{}, ErrBlankRow
	}

	row := padRow(cells)
	return Listing{
		ID:           row[ColID],
		Title:        row[ColTitle],
		Description:  row[ColDescription],
		Price:        row[ColPrice],
		Rooms:        row[ColRooms],
		Bathrooms:    row[ColBathrooms],
		Size:         row[ColSize],
		PropertyType: row[ColPropertyType],
		PhotoIDs:     row[ColPhotoIDs],
		Latitude:     row[ColLatitude],
		Longitude:    row[ColLongitude],
		Status:       NormalizeStatus(row[ColStatus]),
		CreatedAt:    row[ColCreatedAt],
		Address:      row[ColAddress],
	}, nil
}

// Row encodes the listing back into its 14 positional cells.
func (l *Listing) Row() []string {
	row := make([]string, ListingColumns)
	row[ColID] = l.ID
	row[ColTitle] = l.Title
	row[ColDescription] = l.Description
	row[ColPrice] = l.Price
	row[ColRooms] = l.Rooms
	row[ColBathrooms] = l.Bathrooms
	row[ColSize] = l.Size
	row[ColPropertyType] = l.PropertyType
	row[ColPhotoIDs] = l.PhotoIDs
	row[ColLatitude] = l.Latitude
	row[ColLongitude] = l.Longitude
	row[ColStatus] = string(l.Status)
	row[ColCreatedAt] = l.CreatedAt
	row[ColAddress] = l.Address
	return row
}

// NewListingRow builds the row appended for a new listing.
func NewListingRow(id string, f ListingFields, now time.Time) []string {
	l := Listing{
		ID:           id,
		Title:        f.Title,
		Description:  f.Description,
		Price:        f.Price,
		Rooms:        f.Rooms,
		Bathrooms:    f.Bathrooms,
		Size:         f.Size,
		PropertyType: f.PropertyType,
		PhotoIDs:     f.PhotoIDs,
		Latitude:     f.Latitude,
		Longitude:    f.Longitude,
		Status:       StatusActive,
		CreatedAt:    now.UTC().Format(TimestampLayout),
		Address:      f.Address,
	}
	return l.Row()
}

// MergeListingRow overlays a patch on an existing row. Fields absent from the
// patch keep their current cell; the identifier is never rewritten and an empty
// creation timestamp is stamped with now.
func MergeListingRow(existing []string, patch ListingPatch, now time.Time) []string {
	row := padRow(existing)
	if len(row) > ListingColumns {
		row = row[:ListingColumns]
	}

	set := func(col int, v *string) {
		if v != nil {
			row[col] = *v
		}
	}
	set(ColTitle, patch.Title)
	set(ColDescription, patch.Description)
	set(ColPrice, patch.Price)
	set(ColRooms, patch.Rooms)
	set(ColBathrooms, patch.Bathrooms)
	set(ColSize, patch.Size)
	set(ColPropertyType, patch.PropertyType)
	set(ColPhotoIDs, patch.PhotoIDs)
	set(ColLatitude, patch.Latitude)
	set(ColLongitude, patch.Longitude)
	set(ColAddress, patch.Address)

	switch {
	case patch.Status != nil:
		row[ColStatus] = string(NormalizeStatus(string(*patch.Status)))
	case row[ColStatus] == "":
		row[ColStatus] = string(StatusActive)
	}
	if row[ColCreatedAt] == "" {
		row[ColCreatedAt] = now.UTC().Format(TimestampLayout)
	}
	return row
}

func padRow(cells []string) []string {
	n := len(cells)
	if n < ListingColumns {
		n = ListingColumns
	}
	row := make([]string, n)
	copy(row, cells)
	return row
}
