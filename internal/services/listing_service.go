package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/Hsnnder/real-estatemvp/internal/cache"
	"github.com/Hsnnder/real-estatemvp/internal/models"
	"github.com/Hsnnder/real-estatemvp/internal/sheet"
)

// ErrListingNotFound is returned when no row carries the requested identifier.
var ErrListingNotFound = errors.New("listing not found")

// IListingService defines the listing repository backed by the sheet.
type IListingService interface {
	List(ctx context.Context, view models.View) ([]models.Listing, error)
	ListFresh(ctx context.Context, view models.View) ([]models.Listing, error)
	FindByID(ctx context.Context, id string, fresh bool) (*models.Listing, error)
	Latest(ctx context.Context, fresh bool) (*models.Listing, error)
	Featured(ctx context.Context, n int) ([]models.Listing, error)
	Search(ctx context.Context, filter models.ListingFilter) ([]models.Listing, error)
	Stats(ctx context.Context) (*models.ListingStats, error)
	Add(ctx context.Context, fields models.ListingFields) (*models.Listing, error)
	UpdateByID(ctx context.Context, id string, patch models.ListingPatch) error
	SetStatus(ctx context.Context, id, status string) error
}

// listingService implements IListingService.
type listingService struct {
	rows  sheet.RowStore
	cache *cache.ListingCache
	now   func() time.Time
}

// NewListingService creates a new ListingService.
func NewListingService(rows sheet.RowStore, listingCache *cache.ListingCache) IListingService {
	if listingCache == nil {
		listingCache = cache.NewListingCache(nil, 0)
	}
	return &listingService{rows: rows, cache: listingCache, now: time.Now}
}

// List returns the listings of view, served from the cache while it is fresh.
func (s *listingService) List(ctx context.Context, view models.View) ([]models.Listing, error) {
	if cached, ok := s.cache.Get(ctx, view); ok {
		return cached, nil
	}
	listings, err := s.ListFresh(ctx, view)
	if err != nil {
		return nil, err
	}
	s.cache.Put(ctx, view, listings)
	return listings, nil
}

// ListFresh always reads the sheet and never touches the cache.
func (s *listingService) ListFresh(ctx context.Context, view models.View) ([]models.Listing, error) {
	rows, err := s.rows.ReadRows(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read listings: %w", err)
	}
	listings := make([]models.Listing, 0, len(rows))
	for i, row := range dataRows(rows) {
		l, err := models.DecodeListingRow(row)
		if err != nil {
			if !errors.Is(err, models.ErrBlankRow) {
				log.Printf("Skipping sheet row %d: %v", i+2, err)
			}
			continue
		}
		if view == models.ViewActive && l.Status != models.StatusActive {
			continue
		}
		listings = append(listings, l)
	}
	return listings, nil
}

// FindByID returns the first listing of the full table whose identifier equals id.
func (s *listingService) FindByID(ctx context.Context, id string, fresh bool) (*models.Listing, error) {
	var (
		listings []models.Listing
		err      error
	)
	if fresh {
		listings, err = s.ListFresh(ctx, models.ViewAll)
	} else {
		listings, err = s.List(ctx, models.ViewAll)
	}
	if err != nil {
		return nil, err
	}
	for i := range listings {
		if listings[i].ID == id {
			l := listings[i]
			return &l, nil
		}
	}
	return nil, ErrListingNotFound
}

// Latest returns the most recently created active listing. Listings without a
// usable creation time are only considered when none has one; then the last
// row wins.
func (s *listingService) Latest(ctx context.Context, fresh bool) (*models.Listing, error) {
	var (
		listings []models.Listing
		err      error
	)
	if fresh {
		listings, err = s.ListFresh(ctx, models.ViewActive)
	} else {
		listings, err = s.List(ctx, models.ViewActive)
	}
	if err != nil {
		return nil, err
	}
	if len(listings) == 0 {
		return nil, ErrListingNotFound
	}

	latest := -1
	var latestAt time.Time
	for i := range listings {
		t, ok := parseTimestamp(listings[i].CreatedAt)
		if !ok {
			continue
		}
		if latest == -1 || t.After(latestAt) {
			latest, latestAt = i, t
		}
	}
	if latest == -1 {
		latest = len(listings) - 1
	}
	l := listings[latest]
	return &l, nil
}

// Featured returns up to n active listings, newest first.
func (s *listingService) Featured(ctx context.Context, n int) ([]models.Listing, error) {
	listings, err := s.List(ctx, models.ViewActive)
	if err != nil {
		return nil, err
	}
	return NewestFirst(listings, n), nil
}

// Search filters the active listings.
func (s *listingService) Search(ctx context.Context, filter models.ListingFilter) ([]models.Listing, error) {
	listings, err := s.List(ctx, models.ViewActive)
	if err != nil {
		return nil, err
	}
	return FilterListings(listings, filter), nil
}

// Stats counts listings per status across the whole table.
func (s *listingService) Stats(ctx context.Context) (*models.ListingStats, error) {
	listings, err := s.List(ctx, models.ViewAll)
	if err != nil {
		return nil, err
	}
	stats := &models.ListingStats{Total: len(listings)}
	for _, l := range listings {
		switch l.Status {
		case models.StatusActive:
			stats.Active++
		case models.StatusSold:
			stats.Sold++
		case models.StatusPassive:
			stats.Passive++
		}
	}
	return stats, nil
}

// Add appends a new active listing stamped with the current time.
func (s *listingService) Add(ctx context.Context, fields models.ListingFields) (*models.Listing, error) {
	now := s.now()
	id := strconv.FormatInt(now.UnixMilli(), 10)
	row := models.NewListingRow(id, fields, now)

	if err := s.rows.AppendRow(ctx, row); err != nil {
		return nil, fmt.Errorf("failed to add listing: %w", err)
	}
	s.cache.Invalidate(ctx)

	l, err := models.DecodeListingRow(row)
	if err != nil {
		return nil, fmt.Errorf("failed to decode added listing: %w", err)
	}
	log.Printf("Listing %s added", id)
	return &l, nil
}

// UpdateByID merges patch into the first row whose identifier equals id and
// writes that row back in place. Concurrent updates of the same listing are
// last-writer-wins.
func (s *listingService) UpdateByID(ctx context.Context, id string, patch models.ListingPatch) error {
	rows, err := s.rows.ReadRows(ctx)
	if err != nil {
		return fmt.Errorf("failed to read listings for update: %w", err)
	}
	for i, row := range dataRows(rows) {
		if len(row) == 0 || row[models.ColID] != id {
			continue
		}
		rowNumber := i + 2 // 1-based, after the header
		merged := models.MergeListingRow(row, patch, s.now())
		if err := s.rows.UpdateRow(ctx, rowNumber, merged); err != nil {
			return fmt.Errorf("failed to update listing %s: %w", id, err)
		}
		s.cache.Invalidate(ctx)
		log.Printf("Listing %s updated (row %d)", id, rowNumber)
		return nil
	}
	return fmt.Errorf("update %s: %w", id, ErrListingNotFound)
}

// SetStatus normalizes status and stores it on the listing.
func (s *listingService) SetStatus(ctx context.Context, id, status string) error {
	normalized := models.NormalizeStatus(status)
	return s.UpdateByID(ctx, id, models.ListingPatch{Status: &normalized})
}

// FilterListings applies the price, property type and room filters.
func FilterListings(listings []models.Listing, filter models.ListingFilter) []models.Listing {
	out := make([]models.Listing, 0, len(listings))
	for _, l := range listings {
		if filter.PriceMin != nil || filter.PriceMax != nil {
			price, ok := ParseLeadingInt(l.Price)
			if !ok {
				continue
			}
			if filter.PriceMin != nil && price < *filter.PriceMin {
				continue
			}
			if filter.PriceMax != nil && price > *filter.PriceMax {
				continue
			}
		}
		if filter.PropertyType != "" && l.PropertyType != filter.PropertyType {
			continue
		}
		if filter.Rooms != "" && l.Rooms != filter.Rooms {
			continue
		}
		out = append(out, l)
	}
	return out
}

// ParseLeadingInt reads an optionally signed run of digits at the start of s,
// ignoring leading whitespace. "1500 TL" parses as 1500.
func ParseLeadingInt(s string) (int64, bool) {
	s = strings.TrimLeft(s, " \t\r\n")
	end := 0
	if end < len(s) && (s[end] == '-' || s[end] == '+') {
		end++
	}
	digits := end
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == digits {
		return 0, false
	}
	n, err := strconv.ParseInt(s[:end], 10, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}

// NewestFirst returns a sorted copy of listings, newest first, capped at n
// entries (n < 0 means all). The input slice is not modified.
func NewestFirst(listings []models.Listing, n int) []models.Listing {
	sorted := make([]models.Listing, len(listings))
	copy(sorted, listings)
	sort.SliceStable(sorted, func(i, j int) bool {
		return listingStamp(&sorted[i]) > listingStamp(&sorted[j])
	})
	if n >= 0 && len(sorted) > n {
		sorted = sorted[:n]
	}
	return sorted
}

func dataRows(rows [][]string) [][]string {
	if len(rows) <= 1 {
		return nil
	}
	return rows[1:]
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05",
	"2006-01-02",
	"02.01.2006 15:04:05",
	"02.01.2006",
	"1/2/2006 15:04:05",
}

func parseTimestamp(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// listingStamp orders listings by creation time, falling back to the numeric identifier.
func listingStamp(l *models.Listing) int64 {
	if t, ok := parseTimestamp(l.CreatedAt); ok {
		return t.UnixMilli()
	}
	if n, ok := ParseLeadingInt(l.ID); ok {
		return n
	}
	return 0
}
