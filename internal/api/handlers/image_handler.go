package handlers

import (
	"errors"
	"io"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Hsnnder/real-estatemvp/internal/config"
	"github.com/Hsnnder/real-estatemvp/internal/imaging"
	"github.com/Hsnnder/real-estatemvp/internal/storage"
)

// ImageHandler proxies stored listing photos, optionally resized.
type ImageHandler struct {
	reader   storage.IFileReader
	resizer  imaging.Resizer
	cacheAge time.Duration
}

// NewImageHandler creates a new ImageHandler. A nil reader answers every request
// with 500; a nil resizer serves originals for sized requests.
func NewImageHandler(cfg *config.Config, reader storage.IFileReader, resizer imaging.Resizer) *ImageHandler {
	age := cfg.ImageCacheAge
	if age <= 0 {
		age = 30 * 24 * time.Hour
	}
	return &ImageHandler{reader: reader, resizer: resizer, cacheAge: age}
}

// Original handles GET /img/:id
func (h *ImageHandler) Original(c *gin.Context) {
	meta, ok := h.metadata(c)
	if !ok {
		return
	}
	if notModified(c, meta) {
		c.Status(http.StatusNotModified)
		return
	}
	h.stream(c, meta)
}

// Resized handles GET /img/:id/:w
func (h *ImageHandler) Resized(c *gin.Context) {
	meta, ok := h.metadata(c)
	if !ok {
		return
	}
	if notModified(c, meta) {
		c.Status(http.StatusNotModified)
		return
	}
	if h.resizer == nil {
		h.stream(c, meta)
		return
	}

	width := imaging.ClampWidth(c.Param("w"))
	body, err := h.reader.Open(c.Request.Context(), meta.ID)
	if err != nil {
		h.openFailed(c, meta.ID, err)
		return
	}
	src, err := io.ReadAll(body)
	body.Close()
	if err != nil {
		log.Printf("Image %s: read failed: %v", meta.ID, err)
		c.String(http.StatusInternalServerError, "Stream error")
		return
	}

	out, contentType, err := h.resizer.Resize(c.Request.Context(), src, width)
	if err != nil {
		log.Printf("Image %s: resize to %d failed, serving original: %v", meta.ID, width, err)
		c.Data(http.StatusOK, contentTypeOf(meta), src)
		return
	}
	c.Data(http.StatusOK, contentType, out)
}

// metadata loads the file metadata and writes the caching headers. It writes
// the error response itself and returns false when the request is done.
func (h *ImageHandler) metadata(c *gin.Context) (*storage.FileMeta, bool) {
	id := c.Param("id")
	if id == "" {
		c.String(http.StatusBadRequest, "Missing file id")
		return nil, false
	}
	if h.reader == nil {
		c.String(http.StatusInternalServerError, "Drive not configured")
		return nil, false
	}

	meta, err := h.reader.FetchMetadata(c.Request.Context(), id)
	switch {
	case err == nil:
	case errors.Is(err, storage.ErrFileNotFound):
		c.String(http.StatusNotFound, "Not found")
		return nil, false
	case errors.Is(err, storage.ErrFileForbidden):
		c.String(http.StatusForbidden, "Forbidden")
		return nil, false
	default:
		log.Printf("Image %s: metadata error: %v", id, err)
		c.String(http.StatusInternalServerError, "Drive metadata failed")
		return nil, false
	}
	if meta.ID == "" {
		meta.ID = id
	}

	if !meta.ModifiedTime.IsZero() {
		c.Header("Last-Modified", meta.ModifiedTime.UTC().Format(http.TimeFormat))
	}
	c.Header("Cache-Control", "public, max-age="+strconv.FormatInt(int64(h.cacheAge/time.Second), 10)+", immutable")
	return meta, true
}

func (h *ImageHandler) stream(c *gin.Context, meta *storage.FileMeta) {
	body, err := h.reader.Open(c.Request.Context(), meta.ID)
	if err != nil {
		h.openFailed(c, meta.ID, err)
		return
	}
	defer body.Close()

	size := meta.Size
	if size <= 0 {
		size = -1
	}
	c.DataFromReader(http.StatusOK, size, contentTypeOf(meta), body, nil)
}

func (h *ImageHandler) openFailed(c *gin.Context, id string, err error) {
	switch {
	case errors.Is(err, storage.ErrFileNotFound):
		c.String(http.StatusNotFound, "Not found")
	case errors.Is(err, storage.ErrFileForbidden):
		c.String(http.StatusForbidden, "Forbidden")
	default:
		log.Printf("Image %s: download failed: %v", id, err)
		c.String(http.StatusInternalServerError, "Stream error")
	}
}

func notModified(c *gin.Context, meta *storage.FileMeta) bool {
	since := c.GetHeader("If-Modified-Since")
	if since == "" || meta.ModifiedTime.IsZero() {
		return false
	}
	t, err := http.ParseTime(since)
	if err != nil {
		return false
	}
	return !meta.ModifiedTime.Truncate(time.Second).After(t)
}

func contentTypeOf(meta *storage.FileMeta) string {
	if meta.MimeType != "" {
		return meta.MimeType
	}
	return "application/octet-stream"
}
