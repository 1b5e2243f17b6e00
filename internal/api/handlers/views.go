package handlers

import (
	"html/template"
	"net/url"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/Hsnnder/real-estatemvp/internal/models"
	"github.com/Hsnnder/real-estatemvp/internal/services"
	"github.com/Hsnnder/real-estatemvp/internal/storage"
)

// TemplateFuncs are the helpers available to every page template.
func TemplateFuncs() template.FuncMap {
	return template.FuncMap{
		"photoURLs":   PhotoURLs,
		"firstPhoto":  firstPhoto,
		"thumbURL":    thumbURL,
		"driveURL":    storage.PublicURL,
		"statusLabel": statusLabel,
		"formatPrice": FormatPrice,
	}
}

// PhotoURLs maps the listing's photo ids onto the image proxy.
func PhotoURLs(l models.Listing) []string {
	ids := l.Photos()
	urls := make([]string, 0, len(ids))
	for _, id := range ids {
		urls = append(urls, "/img/"+url.PathEscape(id))
	}
	return urls
}

func firstPhoto(l models.Listing) string {
	if ids := l.Photos(); len(ids) > 0 {
		return ids[0]
	}
	return ""
}

func thumbURL(id string, width int) string {
	if id == "" {
		return ""
	}
	return "/img/" + url.PathEscape(id) + "/" + itoa(width)
}

func statusLabel(s models.Status) string {
	switch s {
	case models.StatusSold:
		return "Satıldı"
	case models.StatusPassive:
		return "Pasif"
	default:
		return "Aktif"
	}
}

// FormatPrice groups the leading integer of a price cell with dots ("2500000" -> "2.500.000").
// Cells that do not start with a number are returned as-is.
func FormatPrice(raw string) string {
	n, ok := services.ParseLeadingInt(raw)
	if !ok {
		return raw
	}
	neg := n < 0
	if neg {
		n = -n
	}
	digits := itoa64(n)
	var b strings.Builder
	for i, r := range digits {
		if i > 0 && (len(digits)-i)%3 == 0 {
			b.WriteByte('.')
		}
		b.WriteRune(r)
	}
	if neg {
		return "-" + b.String()
	}
	return b.String()
}

// listingFilter reads the price, property type and room filters of a listing query.
// Price bounds that do not start with a number are ignored.
func listingFilter(c *gin.Context) models.ListingFilter {
	var f models.ListingFilter
	if v := strings.TrimSpace(c.Query("price_min")); v != "" {
		if n, ok := services.ParseLeadingInt(v); ok {
			f.PriceMin = &n
		}
	}
	if v := strings.TrimSpace(c.Query("price_max")); v != "" {
		if n, ok := services.ParseLeadingInt(v); ok {
			f.PriceMax = &n
		}
	}
	f.PropertyType = c.Query("propertyType")
	f.Rooms = c.Query("rooms")
	return f
}

// flashRedirect builds "path?key=value" with the value path-escaped.
func flashRedirect(path, key, value string) string {
	return path + "?" + key + "=" + url.PathEscape(value)
}
