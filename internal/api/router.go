package api

import (
	"context"
	"embed"
	"encoding/json"
	"fmt"
	"html/template"
	"io/fs"
	"log"
	"net/http"
	"path/filepath"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"github.com/Hsnnder/real-estatemvp/internal/api/handlers"
	"github.com/Hsnnder/real-estatemvp/internal/api/middleware"
	"github.com/Hsnnder/real-estatemvp/internal/captcha"
	"github.com/Hsnnder/real-estatemvp/internal/config"
	"github.com/Hsnnder/real-estatemvp/internal/email"
	"github.com/Hsnnder/real-estatemvp/internal/geocode"
	"github.com/Hsnnder/real-estatemvp/internal/imaging"
	"github.com/Hsnnder/real-estatemvp/internal/services"
	"github.com/Hsnnder/real-estatemvp/internal/storage"
)

//go:embed templates/*.html
var templateFS embed.FS

//go:embed static
var staticFS embed.FS

// Dependencies are the components the routes are wired to. Uploader, Reader,
// DriveAuth, Geocoder and Resizer may be nil when the feature is not configured.
type Dependencies struct {
	Listings    services.IListingService
	Contacts    services.IContactService
	Uploader    storage.IFileUploader
	Reader      storage.IFileReader
	DriveAuth   handlers.IDriveAuthorizer
	Geocoder    geocode.IGeocoder
	Resizer     imaging.Resizer
	Captcha     captcha.ITurnstileVerifier
	RateLimiter *middleware.RateLimiterMiddleware
}

// LoadTemplates parses the page templates, from TEMPLATE_DIR when set and
// from the embedded copies otherwise.
func LoadTemplates(cfg *config.Config) (*template.Template, error) {
	t := template.New("").Funcs(handlers.TemplateFuncs())
	if cfg.TemplateDir != "" {
		return t.ParseGlob(filepath.Join(cfg.TemplateDir, "*.html"))
	}
	return t.ParseFS(templateFS, "templates/*.html")
}

// SetupRouter configures and returns the main Gin engine.
func SetupRouter(cfg *config.Config, deps Dependencies) (*gin.Engine, error) {
	tmpl, err := LoadTemplates(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}
	assets, err := fs.Sub(staticFS, "static")
	if err != nil {
		return nil, fmt.Errorf("failed to open static assets: %w", err)
	}

	if deps.RateLimiter == nil {
		deps.RateLimiter = middleware.NewRateLimiterMiddleware(cfg)
	}
	if deps.Captcha == nil {
		deps.Captcha = captcha.NewTurnstileVerifier(cfg)
	}

	r := gin.Default()
	r.SetHTMLTemplate(tmpl)
	// Photos are checked per file by the admin handlers; this only caps what is kept in memory.
	r.MaxMultipartMemory = 32 << 20
	r.StaticFS("/assets", http.FS(assets))

	publicHandler := handlers.NewPublicHandler(cfg, deps.Listings, deps.Contacts)
	adminHandler := handlers.NewAdminHandler(cfg, deps.Listings, deps.Uploader, deps.DriveAuth, deps.Geocoder)
	apiHandler := handlers.NewAPIHandler(deps.Listings)
	imageHandler := handlers.NewImageHandler(cfg, deps.Reader, deps.Resizer)

	r.GET("/ping", func(c *gin.Context) {
		c.String(http.StatusOK, "pong")
	})

	// Public pages
	r.GET("/", publicHandler.Home)
	r.GET("/anasayfa", publicHandler.Home)
	r.GET("/properties", publicHandler.Properties)
	r.GET("/property/:id", publicHandler.Property)
	r.GET("/propertyinfo/:id", publicHandler.PropertyInfo)
	r.GET("/maps", publicHandler.Maps)
	r.GET("/contact", publicHandler.ContactForm)
	r.POST("/contact",
		deps.RateLimiter.Limit(),
		middleware.CaptchaMiddleware(deps.Captcha, "/contact?error=Do%C4%9Frulama%20ba%C5%9Far%C4%B1s%C4%B1z"),
		publicHandler.SubmitContact)

	// Image proxy
	r.GET("/img/:id", imageHandler.Original)
	r.GET("/img/:id/:w", imageHandler.Resized)

	// JSON API
	apiGroup := r.Group("/api")
	apiGroup.Use(middleware.CORSMiddleware())
	{
		apiGroup.GET("/properties", apiHandler.ListProperties)
		apiGroup.GET("/properties/search", apiHandler.SearchProperties)
		apiGroup.GET("/properties/map", apiHandler.MapMarkers)
		apiGroup.GET("/property/:id", apiHandler.GetProperty)
		apiGroup.OPTIONS("/*path", func(c *gin.Context) {})
	}

	// Admin
	r.GET("/admin/login", adminHandler.LoginForm)
	r.POST("/admin/login", deps.RateLimiter.Limit(), adminHandler.Login)
	r.GET("/admin/logout", adminHandler.Logout)

	admin := r.Group("/admin")
	admin.Use(middleware.AdminSessionMiddleware(cfg.SessionSecret))
	{
		admin.GET("", adminHandler.Dashboard)
		admin.GET("/properties", adminHandler.Properties)
		admin.GET("/properties/export.xlsx", adminHandler.Export)
		admin.GET("/property/add", adminHandler.AddForm)
		admin.POST("/property/add", adminHandler.Add)
		admin.GET("/property/edit/:id", adminHandler.EditForm)
		admin.POST("/property/edit/:id", adminHandler.Edit)
		admin.POST("/property/:id/status", adminHandler.SetStatus)
		admin.GET("/google/auth", adminHandler.GoogleAuth)
		admin.GET("/google/oauth2callback", adminHandler.GoogleCallback)
	}

	r.NoRoute(func(c *gin.Context) {
		c.HTML(http.StatusNotFound, "404.html", gin.H{"SiteName": cfg.SiteName, "Title": "Sayfa Bulunamadı"})
	})

	return r, nil
}

// SetupServiceRouter configures the internal service engine used by end-to-end
// tests: it can stop the process and read back mocked emails from Redis.
func SetupServiceRouter(cfg *config.Config, rdb *redis.Client, shutdownChan chan<- struct{}) *gin.Engine {
	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery())

	r.POST("/api", func(c *gin.Context) {
		var req struct {
			Method    string          `json:"method"`
			Arguments json.RawMessage `json:"arguments"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Invalid request format"})
			return
		}

		switch req.Method {
		case "shutdown":
			fmt.Println("Received shutdown command via Service API")
			c.JSON(http.StatusOK, gin.H{"success": true, "result": "Shutdown initiated"})
			select {
			case shutdownChan <- struct{}{}:
				fmt.Println("Shutdown signal sent successfully.")
			default:
				fmt.Println("Shutdown channel already signaled or blocked.")
			}
		case "getTestEmail":
			if rdb == nil {
				c.JSON(http.StatusServiceUnavailable, gin.H{"success": false, "error": "Redis not configured"})
				return
			}
			var args []string // ["recipient"]
			if err := json.Unmarshal(req.Arguments, &args); err != nil || len(args) != 1 {
				c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Invalid arguments: expected JSON array [email]"})
				return
			}
			redisKey := email.RedisMailKey(args[0])

			var emailJSON string
			var getErr error
			found := false
			ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
			defer cancel()
			for i := 0; i < 10; i++ { // poll up to ~2 seconds
				emailJSON, getErr = rdb.Get(ctx, redisKey).Result()
				if getErr == nil {
					found = true
					rdb.Del(ctx, redisKey)
					break
				}
				if getErr != redis.Nil {
					log.Printf("Service API: Error getting key %s from Redis: %v", redisKey, getErr)
					c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Redis error"})
					return
				}
				time.Sleep(200 * time.Millisecond)
			}

			if !found {
				c.JSON(http.StatusNotFound, gin.H{"success": false, "error": fmt.Sprintf("Test email not found in Redis for key %s", redisKey)})
				return
			}

			var emailData map[string]interface{}
			if err := json.Unmarshal([]byte(emailJSON), &emailData); err != nil {
				log.Printf("Service API: Error unmarshalling email data from key %s: %v", redisKey, err)
				c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to parse stored email data"})
				return
			}
			c.JSON(http.StatusOK, gin.H{"success": true, "data": emailData})

		default:
			c.JSON(http.StatusNotFound, gin.H{"success": false, "error": fmt.Sprintf("Unknown service method: %s", req.Method)})
		}
	})
	return r
}
