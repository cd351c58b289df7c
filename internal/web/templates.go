package web

import (
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"path/filepath"
	"time"

	"albumshop/internal/enrich"
	"albumshop/internal/shopapi"
	"albumshop/internal/views"
)

// Templates manages HTML template rendering.
type Templates struct {
	templates map[string]*template.Template
	funcs     template.FuncMap
}

// NewTemplates creates a template manager by loading templates from the
// given filesystem.
func NewTemplates(templatesFS fs.FS) (*Templates, error) {
	t := &Templates{
		templates: make(map[string]*template.Template),
		funcs:     defaultFuncs(),
	}

	if err := t.load(templatesFS); err != nil {
		return nil, err
	}
	return t, nil
}

// Render renders a page template inside the base layout.
func (t *Templates) Render(w io.Writer, page string, data any) error {
	tmpl, ok := t.templates[page]
	if !ok {
		return fmt.Errorf("template %q not found", page)
	}
	return tmpl.ExecuteTemplate(w, "base", data)
}

// load parses each page template together with the layouts.
func (t *Templates) load(templatesFS fs.FS) error {
	layouts, err := fs.Glob(templatesFS, "layouts/*.html")
	if err != nil {
		return fmt.Errorf("finding layouts: %w", err)
	}

	pages, err := fs.Glob(templatesFS, "pages/*.html")
	if err != nil {
		return fmt.Errorf("finding pages: %w", err)
	}

	for _, page := range pages {
		name := filepath.Base(page)
		name = name[:len(name)-len(".html")]

		files := append([]string{page}, layouts...)
		tmpl, err := template.New(name).Funcs(t.funcs).ParseFS(templatesFS, files...)
		if err != nil {
			return fmt.Errorf("parsing template %s: %w", name, err)
		}
		t.templates[name] = tmpl
	}

	return nil
}

// defaultFuncs returns the template function set.
func defaultFuncs() template.FuncMap {
	return template.FuncMap{
		// money formats a price as dollars with cents.
		"money": func(v float64) string {
			return fmt.Sprintf("$%.2f", v)
		},

		// formatDate formats a time as "Jan 2, 2006"
		"formatDate": func(t time.Time) string {
			return t.Format("Jan 2, 2006")
		},

		// formatDateTime formats a time as "Jan 2, 2006 15:04"
		"formatDateTime": func(t time.Time) string {
			return t.Format("Jan 2, 2006 15:04")
		},

		// add adds two integers (for 1-based indexing in loops)
		"add": func(a, b int) int {
			return a + b
		},
	}
}

// PageData contains common data passed to all page templates.
type PageData struct {
	Title       string
	Username    string // empty when anonymous
	IsAdmin     bool
	Flash       *FlashMessage
	CurrentPath string
}

// FlashMessage is a one-shot notification shown at the top of a page.
type FlashMessage struct {
	Type    string // "success" or "error"
	Message string
}

// HomePageData is the data for the home page.
type HomePageData struct {
	PageData
	Albums []shopapi.Album
}

// LoginPageData is the data for the login form.
type LoginPageData struct {
	PageData
	Email string
	Error string
}

// RegisterPageData is the data for the registration form.
type RegisterPageData struct {
	PageData
	Username string
	Email    string
	AsAdmin  bool
	Error    string
}

// AlbumPageData is the data for the album detail page.
type AlbumPageData struct {
	PageData
	Album   shopapi.Album
	Reviews []enrich.Review
}

// MyOrderRow is one of the viewer's orders joined with its album.
type MyOrderRow struct {
	Order shopapi.Order
	Album shopapi.Album // zero value when the album no longer exists
}

// MyOrdersPageData is the data for the viewer's order list.
type MyOrdersPageData struct {
	PageData
	Orders []MyOrderRow
}

// AllOrderRow is an order joined with its album and purchaser.
type AllOrderRow struct {
	Order    shopapi.Order
	Album    shopapi.Album
	Username string
}

// AllOrdersPageData is the data for the admin order list.
type AllOrdersPageData struct {
	PageData
	Orders []AllOrderRow
}

// DashboardPageData is the data for the admin dashboard.
type DashboardPageData struct {
	PageData
	Sales      []views.SalesPoint
	TopAlbums  []views.TopAlbum
	UserCounts []views.UserOrderCount
	Ratings    []views.AlbumRating
	Segments   []views.CatalogSegment
	Albums     []shopapi.Album
	LoadError  string
}

// AlbumFormPageData is the data for the create/edit album form.
type AlbumFormPageData struct {
	PageData
	Action string // form post target
	Album  shopapi.AlbumInput
	ID     int // zero when creating
	Error  string
}
