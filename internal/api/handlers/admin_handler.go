package handlers

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/Hsnnder/real-estatemvp/internal/auth"
	"github.com/Hsnnder/real-estatemvp/internal/config"
	"github.com/Hsnnder/real-estatemvp/internal/geocode"
	"github.com/Hsnnder/real-estatemvp/internal/models"
	"github.com/Hsnnder/real-estatemvp/internal/services"
	"github.com/Hsnnder/real-estatemvp/internal/storage"
)

const (
	// OAuthStateCookie carries the state of a pending Drive consent round trip.
	OAuthStateCookie = "drive_oauth_state"

	dashboardRecentCount = 5
	xlsxContentType      = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

// IDriveAuthorizer runs the interactive Drive consent flow.
type IDriveAuthorizer interface {
	AuthURL(state string) string
	Exchange(ctx context.Context, code string) error
}

// AdminHandler serves the admin panel.
type AdminHandler struct {
	cfg       *config.Config
	listings  services.IListingService
	uploader  storage.IFileUploader
	driveAuth IDriveAuthorizer
	geocoder  geocode.IGeocoder
	now       func() time.Time
}

// NewAdminHandler creates a new AdminHandler. uploader, driveAuth and geocoder may be nil.
func NewAdminHandler(cfg *config.Config, listings services.IListingService, uploader storage.IFileUploader, driveAuth IDriveAuthorizer, geocoder geocode.IGeocoder) *AdminHandler {
	return &AdminHandler{
		cfg:       cfg,
		listings:  listings,
		uploader:  uploader,
		driveAuth: driveAuth,
		geocoder:  geocoder,
		now:       time.Now,
	}
}

func (h *AdminHandler) page(title string, extra gin.H) gin.H {
	data := gin.H{"SiteName": h.cfg.SiteName, "Title": title}
	for k, v := range extra {
		data[k] = v
	}
	return data
}

// LoginForm handles GET /admin/login
func (h *AdminHandler) LoginForm(c *gin.Context) {
	if tok, err := c.Cookie(auth.SessionCookieName); err == nil && tok != "" {
		if _, err := auth.ValidateSessionToken(tok, h.cfg.SessionSecret); err == nil {
			c.Redirect(http.StatusFound, "/admin")
			return
		}
	}
	c.HTML(http.StatusOK, "admin_login.html", h.page("Admin Girişi", gin.H{"Error": ""}))
}

// Login handles POST /admin/login
func (h *AdminHandler) Login(c *gin.Context) {
	username := c.PostForm("username")
	password := c.PostForm("password")

	if !auth.CheckAdminCredentials(username, password, h.cfg.AdminUsername, h.cfg.AdminPassword) {
		log.Printf("Failed admin login from %s", c.ClientIP())
		c.HTML(http.StatusUnauthorized, "admin_login.html", h.page("Admin Girişi", gin.H{
			"Error": "Kullanıcı adı veya şifre hatalı!",
		}))
		return
	}

	token, err := auth.GenerateSessionToken(username, h.cfg.SessionSecret, h.cfg.SessionTTL)
	if err != nil {
		log.Printf("Error generating session token: %v", err)
		c.HTML(http.StatusInternalServerError, "admin_login.html", h.page("Admin Girişi", gin.H{
			"Error": "Beklenmedik hata",
		}))
		return
	}
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(auth.SessionCookieName, token, int(h.cfg.SessionTTL.Seconds()), "/", "", c.Request.TLS != nil, true)
	c.Redirect(http.StatusFound, "/admin")
}

// Logout handles GET /admin/logout
func (h *AdminHandler) Logout(c *gin.Context) {
	c.SetCookie(auth.SessionCookieName, "", -1, "/", "", false, true)
	c.Redirect(http.StatusFound, "/admin/login")
}

// Dashboard handles GET /admin
func (h *AdminHandler) Dashboard(c *gin.Context) {
	ctx := c.Request.Context()
	stats, err := h.listings.Stats(ctx)
	if err != nil {
		log.Printf("Error loading listing stats: %v", err)
		stats = &models.ListingStats{}
	}
	all, err := h.listings.List(ctx, models.ViewAll)
	if err != nil {
		log.Printf("Error loading listings for dashboard: %v", err)
	}
	c.HTML(http.StatusOK, "admin_dashboard.html", h.page("Yönetim Paneli", gin.H{
		"Stats":           stats,
		"Recent":          services.NewestFirst(all, dashboardRecentCount),
		"DriveAuthorized": h.uploader != nil && h.uploader.IsAuthorized(),
		"DriveOAuth":      h.driveAuth != nil,
		"DriveAuthFlag":   c.Query("drive_auth"),
	}))
}

// Properties handles GET /admin/properties
func (h *AdminHandler) Properties(c *gin.Context) {
	listings, err := h.listings.List(c.Request.Context(), models.ViewAll)
	if err != nil {
		log.Printf("Error loading listings for admin: %v", err)
		listings = nil
	}
	c.HTML(http.StatusOK, "admin_properties.html", h.page("İlanlar", gin.H{
		"Listings": services.NewestFirst(listings, -1),
		"Success":  c.Query("success") == "1",
		"Updated":  c.Query("updated") == "1",
		"Failed":   c.Query("update") == "0",
		"NotFound": c.Query("notfound") == "1",
	}))
}

// Export handles GET /admin/properties/export.xlsx
func (h *AdminHandler) Export(c *gin.Context) {
	listings, err := h.listings.ListFresh(c.Request.Context(), models.ViewAll)
	if err != nil {
		log.Printf("Error loading listings for export: %v", err)
		c.String(http.StatusInternalServerError, "Export failed")
		return
	}
	filename := fmt.Sprintf("ilanlar_%s.xlsx", h.now().Format("20060102"))
	c.Header("Content-Type", xlsxContentType)
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Status(http.StatusOK)
	if err := services.WriteListingsXLSX(c.Writer, listings); err != nil {
		log.Printf("Error writing listing export: %v", err)
	}
}

// AddForm handles GET /admin/property/add
func (h *AdminHandler) AddForm(c *gin.Context) {
	c.HTML(http.StatusOK, "admin_property_form.html", h.page("Yeni İlan", gin.H{
		"Action":  "add",
		"Listing": &models.Listing{},
		"Error":   c.Query("error") == "1",
	}))
}

// Add handles POST /admin/property/add
func (h *AdminHandler) Add(c *gin.Context) {
	ctx := c.Request.Context()
	fields := models.ListingFields{
		Title:        strings.TrimSpace(c.PostForm("ilanBaslik")),
		Description:  strings.TrimSpace(c.PostForm("ilanAciklama")),
		Price:        strings.TrimSpace(c.PostForm("price")),
		Rooms:        strings.TrimSpace(c.PostForm("ilanOda")),
		Bathrooms:    strings.TrimSpace(c.PostForm("ilanBanyo")),
		Size:         strings.TrimSpace(c.PostForm("ilanBoyut")),
		PropertyType: strings.TrimSpace(c.PostForm("propertyType")),
		Latitude:     strings.TrimSpace(c.PostForm("latitude")),
		Longitude:    strings.TrimSpace(c.PostForm("longitude")),
		Address:      strings.TrimSpace(c.PostForm("address")),
	}
	fields.PhotoIDs = strings.Join(h.uploadPhotos(c), ",")
	fields.Latitude, fields.Longitude = h.fillCoordinates(ctx, fields.Address, fields.Latitude, fields.Longitude)

	if _, err := h.listings.Add(ctx, fields); err != nil {
		log.Printf("Error adding listing: %v", err)
		c.Redirect(http.StatusFound, "/admin/property/add?error=1")
		return
	}
	c.Redirect(http.StatusFound, "/admin/properties?success=1")
}

// EditForm handles GET /admin/property/edit/:id
func (h *AdminHandler) EditForm(c *gin.Context) {
	listing, err := h.listings.FindByID(c.Request.Context(), c.Param("id"), true)
	if err != nil {
		if !errors.Is(err, services.ErrListingNotFound) {
			log.Printf("Error loading listing %s for edit: %v", c.Param("id"), err)
		}
		c.Redirect(http.StatusFound, "/admin/properties?notfound=1")
		return
	}
	c.HTML(http.StatusOK, "admin_property_form.html", h.page("İlan Düzenle", gin.H{
		"Action":  "edit",
		"Listing": listing,
	}))
}

// Edit handles POST /admin/property/edit/:id
// Only posted fields change. New photos are appended and the status is kept.
func (h *AdminHandler) Edit(c *gin.Context) {
	ctx := c.Request.Context()
	id := c.Param("id")

	existing, err := h.listings.FindByID(ctx, id, true)
	if err != nil {
		if !errors.Is(err, services.ErrListingNotFound) {
			log.Printf("Error loading listing %s for update: %v", id, err)
			c.Redirect(http.StatusFound, "/admin/properties?update=0")
			return
		}
		c.Redirect(http.StatusFound, "/admin/properties?notfound=1")
		return
	}

	var patch models.ListingPatch
	formFields := map[string]**string{
		"ilanBaslik":   &patch.Title,
		"ilanAciklama": &patch.Description,
		"price":        &patch.Price,
		"ilanOda":      &patch.Rooms,
		"ilanBanyo":    &patch.Bathrooms,
		"ilanBoyut":    &patch.Size,
		"propertyType": &patch.PropertyType,
		"latitude":     &patch.Latitude,
		"longitude":    &patch.Longitude,
		"address":      &patch.Address,
	}
	for key, dst := range formFields {
		if v, ok := c.GetPostForm(key); ok {
			v = strings.TrimSpace(v)
			*dst = &v
		}
	}

	if uploaded := h.uploadPhotos(c); len(uploaded) > 0 {
		combined := strings.Join(append(existing.Photos(), uploaded...), ",")
		patch.PhotoIDs = &combined
	}

	address, lat, lng := existing.Address, existing.Latitude, existing.Longitude
	if patch.Address != nil {
		address = *patch.Address
	}
	if patch.Latitude != nil {
		lat = *patch.Latitude
	}
	if patch.Longitude != nil {
		lng = *patch.Longitude
	}
	if newLat, newLng := h.fillCoordinates(ctx, address, lat, lng); newLat != lat || newLng != lng {
		patch.Latitude, patch.Longitude = &newLat, &newLng
	}

	if err := h.listings.UpdateByID(ctx, id, patch); err != nil {
		if errors.Is(err, services.ErrListingNotFound) {
			c.Redirect(http.StatusFound, "/admin/properties?notfound=1")
			return
		}
		log.Printf("Error updating listing %s: %v", id, err)
		c.Redirect(http.StatusFound, "/admin/properties?update=0")
		return
	}
	c.Redirect(http.StatusFound, "/admin/properties?updated=1")
}

// SetStatus handles POST /admin/property/:id/status
func (h *AdminHandler) SetStatus(c *gin.Context) {
	id := c.Param("id")
	err := h.listings.SetStatus(c.Request.Context(), id, c.PostForm("status"))
	switch {
	case err == nil:
		c.Redirect(http.StatusFound, "/admin/properties?updated=1")
	case errors.Is(err, services.ErrListingNotFound):
		c.Redirect(http.StatusFound, "/admin/properties?notfound=1")
	default:
		log.Printf("Error setting status of listing %s: %v", id, err)
		c.Redirect(http.StatusFound, "/admin/properties?update=0")
	}
}

// GoogleAuth handles GET /admin/google/auth
func (h *AdminHandler) GoogleAuth(c *gin.Context) {
	if h.driveAuth == nil {
		c.Redirect(http.StatusFound, "/admin?drive_auth=fail")
		return
	}
	state := uuid.NewString()
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(OAuthStateCookie, state, 600, "/admin", "", c.Request.TLS != nil, true)
	c.Redirect(http.StatusFound, h.driveAuth.AuthURL(state))
}

// GoogleCallback handles GET /admin/google/oauth2callback
func (h *AdminHandler) GoogleCallback(c *gin.Context) {
	if h.driveAuth == nil {
		c.Redirect(http.StatusFound, "/admin?drive_auth=fail")
		return
	}
	if oauthErr := c.Query("error"); oauthErr != "" {
		log.Printf("Drive OAuth error: %s", oauthErr)
		c.Redirect(http.StatusFound, "/admin?drive_auth=error")
		return
	}
	want, err := c.Cookie(OAuthStateCookie)
	c.SetCookie(OAuthStateCookie, "", -1, "/admin", "", false, true)
	if err != nil || want == "" || c.Query("state") != want {
		log.Printf("Drive OAuth state mismatch from %s", c.ClientIP())
		c.Redirect(http.StatusFound, "/admin?drive_auth=error")
		return
	}
	code := c.Query("code")
	if code == "" {
		c.Redirect(http.StatusFound, "/admin?drive_auth=missing_code")
		return
	}
	if err := h.driveAuth.Exchange(c.Request.Context(), code); err != nil {
		log.Printf("Drive OAuth callback failed: %v", err)
		c.Redirect(http.StatusFound, "/admin?drive_auth=fail")
		return
	}
	c.Redirect(http.StatusFound, "/admin?drive_auth=success")
}

// uploadPhotos stores the multipart "photos" files and returns their ids.
// Failures are logged and the photo is skipped.
func (h *AdminHandler) uploadPhotos(c *gin.Context) []string {
	form, err := c.MultipartForm()
	if err != nil || form == nil {
		return nil
	}
	files := form.File["photos"]
	if len(files) == 0 {
		return nil
	}
	if h.uploader == nil {
		log.Printf("Skipping %d photo(s): no file store configured", len(files))
		return nil
	}
	if len(files) > h.cfg.MaxPhotoCount {
		log.Printf("Ignoring %d photo(s) over the limit of %d", len(files)-h.cfg.MaxPhotoCount, h.cfg.MaxPhotoCount)
		files = files[:h.cfg.MaxPhotoCount]
	}

	var ids []string
	for _, fh := range files {
		if fh.Size > h.cfg.MaxPhotoBytes {
			log.Printf("Skipping photo %q: %d bytes exceeds limit", fh.Filename, fh.Size)
			continue
		}
		data, err := readUpload(fh)
		if err != nil {
			log.Printf("Skipping photo %q: %v", fh.Filename, err)
			continue
		}
		name := fmt.Sprintf("property_%d_%s", h.now().UnixMilli(), filepath.Base(fh.Filename))
		id, err := h.uploader.Upload(c.Request.Context(), data, name)
		if err != nil {
			log.Printf("Photo upload failed for %q: %v", fh.Filename, err)
			continue
		}
		ids = append(ids, id)
	}
	return ids
}

func readUpload(fh *multipart.FileHeader) ([]byte, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return io.ReadAll(f)
}

// fillCoordinates geocodes address when either coordinate is blank. On any
// failure the given coordinates are returned unchanged.
func (h *AdminHandler) fillCoordinates(ctx context.Context, address, lat, lng string) (string, string) {
	if h.geocoder == nil || strings.TrimSpace(address) == "" {
		return lat, lng
	}
	if strings.TrimSpace(lat) != "" && strings.TrimSpace(lng) != "" {
		return lat, lng
	}
	coords, err := h.geocoder.Resolve(ctx, address)
	if err != nil {
		if !errors.Is(err, geocode.ErrNotConfigured) {
			log.Printf("Geocoding %q failed: %v", address, err)
		}
		return lat, lng
	}
	return strconv.FormatFloat(coords.Lat, 'f', -1, 64), strconv.FormatFloat(coords.Lng, 'f', -1, 64)
}
