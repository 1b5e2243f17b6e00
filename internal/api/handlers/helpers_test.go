package handlers_test

import (
	"html/template"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Hsnnder/real-estatemvp/internal/api/handlers"
	"github.com/Hsnnder/real-estatemvp/internal/config"
)

// stubTemplates renders just enough of each page for assertions.
const stubTemplates = `
{{define "anasayfa.html"}}home{{range .Listings}} {{.ID}}{{end}}{{end}}
{{define "properties.html"}}grid{{range .Listings}} {{.ID}}{{end}}{{end}}
{{define "propertyinfo.html"}}detail {{.Listing.ID}}{{range .Photos}} {{.}}{{end}} {{formatPrice .Listing.Price}}{{end}}
{{define "maps.html"}}map{{range .Markers}} {{.ID}}{{end}}{{end}}
{{define "contact.html"}}contact success={{.Success}} error={{.Error}}{{end}}
{{define "404.html"}}{{.Title}}{{end}}
{{define "admin_login.html"}}login {{.Error}}{{end}}
{{define "admin_dashboard.html"}}dashboard total={{.Stats.Total}} drive={{.DriveAuthorized}} flag={{.DriveAuthFlag}}{{range .Recent}} {{.ID}}{{end}}{{end}}
{{define "admin_properties.html"}}admin grid{{range .Listings}} {{.ID}}:{{statusLabel .Status}}{{end}}{{end}}
{{define "admin_property_form.html"}}form {{.Action}} {{.Listing.ID}}{{end}}
`

func newTestRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.SetHTMLTemplate(template.Must(template.New("").Funcs(handlers.TemplateFuncs()).Parse(stubTemplates)))
	return r
}

func testConfig() *config.Config {
	return &config.Config{
		SiteName:      "Test Emlak",
		AdminUsername: "admin",
		AdminPassword: "secret",
		SessionSecret: "test-session-secret",
		SessionTTL:    24 * time.Hour,
		MaxPhotoBytes: 20 * 1024 * 1024,
		MaxPhotoCount: 10,
		ImageCacheAge: 30 * 24 * time.Hour,
	}
}

func postForm(target string, values url.Values) *http.Request {
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(values.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req
}
