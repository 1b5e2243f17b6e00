package handlers

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Hsnnder/real-estatemvp/internal/config"
	"github.com/Hsnnder/real-estatemvp/internal/models"
	"github.com/Hsnnder/real-estatemvp/internal/services"
)

// FeaturedCount is the number of listings on the home page.
const FeaturedCount = 6

// PublicHandler serves the visitor-facing pages.
type PublicHandler struct {
	cfg      *config.Config
	listings services.IListingService
	contacts services.IContactService
}

// NewPublicHandler creates a new PublicHandler.
func NewPublicHandler(cfg *config.Config, listings services.IListingService, contacts services.IContactService) *PublicHandler {
	return &PublicHandler{cfg: cfg, listings: listings, contacts: contacts}
}

func (h *PublicHandler) page(c *gin.Context, extra gin.H) gin.H {
	data := gin.H{
		"SiteName": h.cfg.SiteName,
		"Path":     c.Request.URL.Path,
	}
	for k, v := range extra {
		data[k] = v
	}
	return data
}

func (h *PublicHandler) notFound(c *gin.Context, title string) {
	c.HTML(http.StatusNotFound, "404.html", h.page(c, gin.H{"Title": title}))
}

// Home handles GET / and GET /anasayfa
func (h *PublicHandler) Home(c *gin.Context) {
	featured, err := h.listings.Featured(c.Request.Context(), FeaturedCount)
	if err != nil {
		log.Printf("Error loading featured listings: %v", err)
		featured = nil
	}
	c.HTML(http.StatusOK, "anasayfa.html", h.page(c, gin.H{"Listings": featured}))
}

// Properties handles GET /properties
func (h *PublicHandler) Properties(c *gin.Context) {
	filter := listingFilter(c)
	listings, err := h.listings.Search(c.Request.Context(), filter)
	if err != nil {
		log.Printf("Error searching listings: %v", err)
		c.HTML(http.StatusInternalServerError, "404.html", h.page(c, gin.H{"Title": "Sunucu Hatası"}))
		return
	}
	c.HTML(http.StatusOK, "properties.html", h.page(c, gin.H{
		"Listings":     listings,
		"PriceMin":     c.Query("price_min"),
		"PriceMax":     c.Query("price_max"),
		"PropertyType": filter.PropertyType,
		"Rooms":        filter.Rooms,
	}))
}

// Property handles GET /property/:id, the legacy detail link, and GET /property/latest.
func (h *PublicHandler) Property(c *gin.Context) {
	id := c.Param("id")
	if id != "latest" {
		c.Redirect(http.StatusFound, "/propertyinfo/"+id)
		return
	}

	latest, err := h.listings.Latest(c.Request.Context(), c.Query("nocache") == "1")
	if err != nil {
		if !errors.Is(err, services.ErrListingNotFound) {
			log.Printf("Error loading latest listing: %v", err)
		}
		h.notFound(c, "İlan Bulunamadı")
		return
	}
	c.Redirect(http.StatusFound, "/propertyinfo/"+latest.ID)
}

// PropertyInfo handles GET /propertyinfo/:id
func (h *PublicHandler) PropertyInfo(c *gin.Context) {
	listing, err := h.listings.FindByID(c.Request.Context(), c.Param("id"), false)
	if err != nil {
		if errors.Is(err, services.ErrListingNotFound) {
			h.notFound(c, "İlan Bulunamadı")
			return
		}
		log.Printf("Error loading listing %s: %v", c.Param("id"), err)
		c.HTML(http.StatusInternalServerError, "404.html", h.page(c, gin.H{"Title": "Sunucu Hatası"}))
		return
	}
	if listing.Status != models.StatusActive {
		h.notFound(c, "İlan Bulunamadı")
		return
	}
	c.HTML(http.StatusOK, "propertyinfo.html", h.page(c, gin.H{
		"Listing": listing,
		"Photos":  PhotoURLs(*listing),
		"HasMap":  listing.HasCoordinates(),
	}))
}

// Maps handles GET /maps
func (h *PublicHandler) Maps(c *gin.Context) {
	listings, err := h.listings.List(c.Request.Context(), models.ViewActive)
	if err != nil {
		log.Printf("Error loading listings for map: %v", err)
		listings = nil
	}
	c.HTML(http.StatusOK, "maps.html", h.page(c, gin.H{
		"Markers": services.BuildMarkers(listings),
	}))
}

// ContactForm handles GET /contact
func (h *PublicHandler) ContactForm(c *gin.Context) {
	c.HTML(http.StatusOK, "contact.html", h.page(c, gin.H{
		"Success":          c.Query("success") == "1",
		"Error":            c.Query("error"),
		"TurnstileSiteKey": h.cfg.CloudflareTurnstileSiteKey,
	}))
}

// SubmitContact handles POST /contact
func (h *PublicHandler) SubmitContact(c *gin.Context) {
	var form models.ContactForm
	if err := c.ShouldBind(&form); err != nil {
		c.Redirect(http.StatusFound, flashRedirect("/contact", "error", "Eksik bilgi"))
		return
	}

	_, err := h.contacts.Submit(c.Request.Context(), form, c.ClientIP())
	switch {
	case err == nil:
		c.Redirect(http.StatusFound, "/contact?success=1")
	case errors.Is(err, services.ErrContactIncomplete):
		c.Redirect(http.StatusFound, flashRedirect("/contact", "error", "Eksik bilgi"))
	case errors.Is(err, services.ErrContactDelivery):
		log.Printf("Contact mail failed: %v", err)
		c.Redirect(http.StatusFound, flashRedirect("/contact", "error", "E-posta gönderilemedi"))
	default:
		log.Printf("Contact submission failed: %v", err)
		c.Redirect(http.StatusFound, flashRedirect("/contact", "error", "Beklenmedik hata"))
	}
}
