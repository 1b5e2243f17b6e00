package handlers

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Hsnnder/real-estatemvp/internal/models"
	"github.com/Hsnnder/real-estatemvp/internal/services"
)

// APIHandler serves the read-only JSON API over active listings.
type APIHandler struct {
	listings services.IListingService
}

// NewAPIHandler creates a new APIHandler.
func NewAPIHandler(listings services.IListingService) *APIHandler {
	return &APIHandler{listings: listings}
}

// ListProperties handles GET /api/properties
func (h *APIHandler) ListProperties(c *gin.Context) {
	listings, err := h.listings.List(c.Request.Context(), models.ViewActive)
	if err != nil {
		log.Printf("API: error listing properties: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch properties"})
		return
	}
	c.JSON(http.StatusOK, nonNil(listings))
}

// GetProperty handles GET /api/property/:id
func (h *APIHandler) GetProperty(c *gin.Context) {
	listing, err := h.listings.FindByID(c.Request.Context(), c.Param("id"), false)
	if err != nil {
		if errors.Is(err, services.ErrListingNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Property not found"})
			return
		}
		log.Printf("API: error fetching property %s: %v", c.Param("id"), err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch property"})
		return
	}
	if listing.Status != models.StatusActive {
		c.JSON(http.StatusNotFound, gin.H{"error": "Property not found"})
		return
	}
	c.JSON(http.StatusOK, listing)
}

// SearchProperties handles GET /api/properties/search
func (h *APIHandler) SearchProperties(c *gin.Context) {
	listings, err := h.listings.Search(c.Request.Context(), listingFilter(c))
	if err != nil {
		log.Printf("API: error searching properties: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to search properties"})
		return
	}
	c.JSON(http.StatusOK, nonNil(listings))
}

// MapMarkers handles GET /api/properties/map
func (h *APIHandler) MapMarkers(c *gin.Context) {
	listings, err := h.listings.List(c.Request.Context(), models.ViewActive)
	if err != nil {
		log.Printf("API: error loading map markers: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch map markers"})
		return
	}
	c.JSON(http.StatusOK, services.BuildMarkers(listings))
}

// nonNil keeps empty results encoded as [] rather than null.
func nonNil(listings []models.Listing) []models.Listing {
	if listings == nil {
		return []models.Listing{}
	}
	return listings
}
