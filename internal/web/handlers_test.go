package web

import (
	"encoding/json"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"testing"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"albumshop/internal/shopapi"
	webfs "albumshop/web"
)

// fakeShop is an in-memory stand-in for the remote album shop API.
type fakeShop struct {
	mu          sync.Mutex
	validTokens map[string]bool
	adminTokens map[string]bool
	albums      []shopapi.Album
	reviews     []shopapi.Review
	orders      []shopapi.Order
	users       map[int]string
	orderCalls  int
}

func newFakeShop() *fakeShop {
	return &fakeShop{
		validTokens: make(map[string]bool),
		adminTokens: make(map[string]bool),
		users:       make(map[int]string),
		albums: []shopapi.Album{
			{ID: 1, Title: "Blue Train", Artist: "John Coltrane", Genre: "Jazz", Price: 19.99, Quantity: 3},
			{ID: 2, Title: "Kind of Blue", Artist: "Miles Davis", Genre: "Jazz", Price: 24.99, Quantity: 0},
		},
	}
}

func (f *fakeShop) token(r *http.Request) string {
	return strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
}

func (f *fakeShop) handler() http.Handler {
	r := chi.NewRouter()

	r.Post("/login", func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Email    string `json:"email"`
			Password string `json:"password"`
		}
		body, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(body, &req)

		f.mu.Lock()
		defer f.mu.Unlock()
		switch {
		case req.Email == "alice@example.com" && req.Password == "secret":
			f.validTokens["tok-alice"] = true
			writeJSON(w, http.StatusOK, map[string]string{"access_token": "tok-alice", "username": "alice"})
		case req.Email == "root@example.com" && req.Password == "secret":
			f.validTokens["tok-root"] = true
			f.adminTokens["tok-root"] = true
			writeJSON(w, http.StatusOK, map[string]string{"access_token": "tok-root", "username": "root"})
		default:
			writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "invalid credentials"})
		}
	})

	r.Post("/logout", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		delete(f.validTokens, f.token(r))
		f.mu.Unlock()
		writeJSON(w, http.StatusOK, map[string]string{"message": "logged out"})
	})

	r.Get("/protected", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		ok := f.validTokens[f.token(r)]
		f.mu.Unlock()
		if !ok {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "invalid token"})
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"message": "ok"})
	})

	r.Get("/admin-only", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		ok := f.adminTokens[f.token(r)]
		f.mu.Unlock()
		if !ok {
			writeJSON(w, http.StatusForbidden, map[string]string{"error": "admins only"})
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"message": "ok"})
	})

	r.Get("/albums/", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		writeJSON(w, http.StatusOK, f.albums)
	})

	r.Get("/albums/{id}", func(w http.ResponseWriter, r *http.Request) {
		id, _ := strconv.Atoi(chi.URLParam(r, "id"))
		f.mu.Lock()
		defer f.mu.Unlock()
		for _, a := range f.albums {
			if a.ID == id {
				writeJSON(w, http.StatusOK, a)
				return
			}
		}
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "album not found"})
	})

	r.Get("/reviews/album/{id}", func(w http.ResponseWriter, r *http.Request) {
		id, _ := strconv.Atoi(chi.URLParam(r, "id"))
		f.mu.Lock()
		defer f.mu.Unlock()
		out := []shopapi.Review{}
		for _, rv := range f.reviews {
			if rv.AlbumID == id {
				out = append(out, rv)
			}
		}
		writeJSON(w, http.StatusOK, out)
	})

	r.Get("/reviews/", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		writeJSON(w, http.StatusOK, f.reviews)
	})

	r.Get("/users/{id}", func(w http.ResponseWriter, r *http.Request) {
		id, _ := strconv.Atoi(chi.URLParam(r, "id"))
		f.mu.Lock()
		defer f.mu.Unlock()
		name, ok := f.users[id]
		if !ok {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "user not found"})
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"id": id, "username": name})
	})

	r.Get("/orders/", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		writeJSON(w, http.StatusOK, f.orders)
	})

	r.Get("/orders/my", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		writeJSON(w, http.StatusOK, f.orders)
	})

	r.Post("/orders/", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		f.orderCalls++
		f.mu.Unlock()
		writeJSON(w, http.StatusCreated, map[string]string{"message": "order created"})
	})

	return r
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// newTestApp starts the storefront against a fake shop API and returns
// the app's base URL plus the fake for assertions.
func newTestApp(t *testing.T) (*httptest.Server, *fakeShop) {
	t.Helper()

	shop := newFakeShop()
	api := httptest.NewServer(shop.handler())
	t.Cleanup(api.Close)

	templates, err := fs.Sub(webfs.TemplatesFS, "templates")
	if err != nil {
		t.Fatalf("templates sub fs: %v", err)
	}
	static, err := fs.Sub(webfs.StaticFS, "static")
	if err != nil {
		t.Fatalf("static sub fs: %v", err)
	}

	server, err := NewServer(ServerConfig{
		Addr:        "127.0.0.1:0",
		API:         shopapi.NewClient(api.URL),
		Sessions:    NewMemorySessions(),
		TemplatesFS: templates,
		StaticFS:    static,
		Log:         zap.NewNop().Sugar(),
	})
	if err != nil {
		t.Fatalf("creating server: %v", err)
	}

	app := httptest.NewServer(server.router)
	t.Cleanup(app.Close)
	return app, shop
}

// client returns an HTTP client that keeps cookies but does not follow
// redirects, so tests can assert on them.
func client(t *testing.T) *http.Client {
	t.Helper()
	return &http.Client{
		CheckRedirect: func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
}

func getPage(t *testing.T, c *http.Client, rawURL string, cookies []*http.Cookie) (*http.Response, string) {
	t.Helper()
	req, err := http.NewRequest(http.MethodGet, rawURL, nil)
	if err != nil {
		t.Fatalf("creating request: %v", err)
	}
	for _, ck := range cookies {
		req.AddCookie(ck)
	}
	resp, err := c.Do(req)
	if err != nil {
		t.Fatalf("GET %s: %v", rawURL, err)
	}
	body, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	if err != nil {
		t.Fatalf("reading body: %v", err)
	}
	return resp, string(body)
}

func postForm(t *testing.T, c *http.Client, rawURL string, form url.Values, cookies []*http.Cookie) *http.Response {
	t.Helper()
	req, err := http.NewRequest(http.MethodPost, rawURL, strings.NewReader(form.Encode()))
	if err != nil {
		t.Fatalf("creating request: %v", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	for _, ck := range cookies {
		req.AddCookie(ck)
	}
	resp, err := c.Do(req)
	if err != nil {
		t.Fatalf("POST %s: %v", rawURL, err)
	}
	resp.Body.Close()
	return resp
}

// login posts valid credentials and returns the session cookie.
func login(t *testing.T, c *http.Client, appURL, email string) *http.Cookie {
	t.Helper()
	resp := postForm(t, c, appURL+"/login", url.Values{
		"email":    {email},
		"password": {"secret"},
	}, nil)
	if resp.StatusCode != http.StatusSeeOther {
		t.Fatalf("login status = %d, want %d", resp.StatusCode, http.StatusSeeOther)
	}
	for _, ck := range resp.Cookies() {
		if ck.Name == sessionCookieName && ck.Value != "" {
			return ck
		}
	}
	t.Fatal("login response did not set a session cookie")
	return nil
}

func TestHome_Anonymous(t *testing.T) {
	app, _ := newTestApp(t)
	c := client(t)

	resp, body := getPage(t, c, app.URL+"/", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	if !strings.Contains(body, "Blue Train") {
		t.Error("home page missing album title")
	}
	if !strings.Contains(body, "Log In") {
		t.Error("anonymous home page missing login link")
	}
}

func TestLogin_OpensSession(t *testing.T) {
	app, _ := newTestApp(t)
	c := client(t)

	cookie := login(t, c, app.URL, "alice@example.com")

	resp, body := getPage(t, c, app.URL+"/", []*http.Cookie{cookie})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	if !strings.Contains(body, "alice") {
		t.Error("logged-in home page missing username")
	}
	if strings.Contains(body, `href="/login"`) {
		t.Error("logged-in home page still shows login link")
	}
}

func TestLogin_BadCredentials(t *testing.T) {
	app, _ := newTestApp(t)
	c := client(t)

	resp := postForm(t, c, app.URL+"/login", url.Values{
		"email":    {"alice@example.com"},
		"password": {"wrong"},
	}, nil)
	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want %d", resp.StatusCode, http.StatusUnprocessableEntity)
	}
	for _, ck := range resp.Cookies() {
		if ck.Name == sessionCookieName && ck.Value != "" {
			t.Error("failed login set a session cookie")
		}
	}
}

func TestRevokedToken_FailsClosed(t *testing.T) {
	app, shop := newTestApp(t)
	c := client(t)

	cookie := login(t, c, app.URL, "alice@example.com")

	// Revoke the token server-side; the next tier resolution must drop
	// the session rather than trust the cached login.
	shop.mu.Lock()
	delete(shop.validTokens, "tok-alice")
	shop.mu.Unlock()

	resp, _ := getPage(t, c, app.URL+"/orders/my", []*http.Cookie{cookie})
	if resp.StatusCode != http.StatusSeeOther {
		t.Fatalf("status = %d, want %d", resp.StatusCode, http.StatusSeeOther)
	}
	if loc := resp.Header.Get("Location"); loc != "/login" {
		t.Errorf("redirect location = %q, want /login", loc)
	}

	cleared := false
	for _, ck := range resp.Cookies() {
		if ck.Name == sessionCookieName && ck.MaxAge < 0 {
			cleared = true
		}
	}
	if !cleared {
		t.Error("revoked session cookie was not cleared")
	}
}

func TestAdminPages_RequireAdminTier(t *testing.T) {
	app, _ := newTestApp(t)
	c := client(t)

	// Anonymous viewers are sent to the login page.
	resp, _ := getPage(t, c, app.URL+"/admin", nil)
	if resp.StatusCode != http.StatusSeeOther {
		t.Fatalf("anonymous status = %d, want %d", resp.StatusCode, http.StatusSeeOther)
	}
	if loc := resp.Header.Get("Location"); loc != "/login" {
		t.Errorf("anonymous redirect = %q, want /login", loc)
	}

	// Authenticated non-admins are turned away.
	cookie := login(t, c, app.URL, "alice@example.com")
	resp, _ = getPage(t, c, app.URL+"/admin", []*http.Cookie{cookie})
	if resp.StatusCode != http.StatusSeeOther {
		t.Fatalf("user status = %d, want %d", resp.StatusCode, http.StatusSeeOther)
	}
	if loc := resp.Header.Get("Location"); loc != "/" {
		t.Errorf("user redirect = %q, want /", loc)
	}

	// Admins see the dashboard.
	cookie = login(t, c, app.URL, "root@example.com")
	resp, body := getPage(t, c, app.URL+"/admin", []*http.Cookie{cookie})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("admin status = %d, want 200", resp.StatusCode)
	}
	if !strings.Contains(body, "Dashboard") {
		t.Error("admin page missing dashboard heading")
	}
}

func TestPlaceOrder_RejectsOverStock(t *testing.T) {
	app, shop := newTestApp(t)
	c := client(t)

	cookie := login(t, c, app.URL, "alice@example.com")

	// Album 1 has 3 in stock.
	resp := postForm(t, c, app.URL+"/albums/1/order", url.Values{
		"quantity": {"10"},
	}, []*http.Cookie{cookie})
	if resp.StatusCode != http.StatusSeeOther {
		t.Fatalf("status = %d, want %d", resp.StatusCode, http.StatusSeeOther)
	}
	if loc := resp.Header.Get("Location"); loc != "/albums/1" {
		t.Errorf("redirect = %q, want /albums/1", loc)
	}

	shop.mu.Lock()
	calls := shop.orderCalls
	shop.mu.Unlock()
	if calls != 0 {
		t.Errorf("order API called %d times, want 0", calls)
	}
}

func TestPlaceOrder_Succeeds(t *testing.T) {
	app, shop := newTestApp(t)
	c := client(t)

	cookie := login(t, c, app.URL, "alice@example.com")

	resp := postForm(t, c, app.URL+"/albums/1/order", url.Values{
		"quantity": {"2"},
	}, []*http.Cookie{cookie})
	if resp.StatusCode != http.StatusSeeOther {
		t.Fatalf("status = %d, want %d", resp.StatusCode, http.StatusSeeOther)
	}
	if loc := resp.Header.Get("Location"); loc != "/orders/my" {
		t.Errorf("redirect = %q, want /orders/my", loc)
	}

	shop.mu.Lock()
	calls := shop.orderCalls
	shop.mu.Unlock()
	if calls != 1 {
		t.Errorf("order API called %d times, want 1", calls)
	}
}

func TestLogout_ClearsSessionEvenWhenAPIFails(t *testing.T) {
	app, shop := newTestApp(t)
	c := client(t)

	cookie := login(t, c, app.URL, "alice@example.com")

	// Make the remote logout fail.
	shop.mu.Lock()
	delete(shop.validTokens, "tok-alice")
	shop.mu.Unlock()

	resp := postForm(t, c, app.URL+"/logout", nil, []*http.Cookie{cookie})
	if resp.StatusCode != http.StatusSeeOther {
		t.Fatalf("status = %d, want %d", resp.StatusCode, http.StatusSeeOther)
	}

	cleared := false
	for _, ck := range resp.Cookies() {
		if ck.Name == sessionCookieName && ck.MaxAge < 0 {
			cleared = true
		}
	}
	if !cleared {
		t.Error("logout did not clear the session cookie")
	}
}

func TestAlbumDetail_ShowsEnrichedReviews(t *testing.T) {
	app, shop := newTestApp(t)
	c := client(t)

	shop.mu.Lock()
	shop.users[42] = "bob"
	shop.reviews = []shopapi.Review{
		{ID: 1, UserID: 42, AlbumID: 1, Rating: 5, Comment: "a classic"},
		{ID: 2, UserID: 99, AlbumID: 1, Rating: 3, Comment: "fine"},
	}
	shop.mu.Unlock()

	resp, body := getPage(t, c, app.URL+"/albums/1", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	if !strings.Contains(body, "bob") {
		t.Error("album page missing reviewer username")
	}
	// User 99 does not exist; the review still renders with a fallback.
	if !strings.Contains(body, "Unknown") {
		t.Error("album page missing fallback username for deleted user")
	}
	if !strings.Contains(body, "a classic") {
		t.Error("album page missing review comment")
	}
}

func TestAlbumDetail_NotFound(t *testing.T) {
	app, _ := newTestApp(t)
	c := client(t)

	resp, _ := getPage(t, c, app.URL+"/albums/999", nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", resp.StatusCode)
	}
}

func TestFlash_ShownOnceThenCleared(t *testing.T) {
	app, _ := newTestApp(t)
	c := client(t)

	resp := postForm(t, c, app.URL+"/login", url.Values{
		"email":    {"alice@example.com"},
		"password": {"secret"},
	}, nil)

	var sessionCookie, flashCookie *http.Cookie
	for _, ck := range resp.Cookies() {
		switch ck.Name {
		case sessionCookieName:
			sessionCookie = ck
		case flashCookieName:
			flashCookie = ck
		}
	}
	if flashCookie == nil {
		t.Fatal("login did not set a flash cookie")
	}

	_, body := getPage(t, c, app.URL+"/", []*http.Cookie{sessionCookie, flashCookie})
	if !strings.Contains(body, "Welcome back") {
		t.Error("first render missing flash message")
	}

	_, body = getPage(t, c, app.URL+"/", []*http.Cookie{sessionCookie})
	if strings.Contains(body, "Welcome back") {
		t.Error("flash message rendered twice")
	}
}

func TestDashboard_RendersAggregates(t *testing.T) {
	app, shop := newTestApp(t)
	c := client(t)

	shop.mu.Lock()
	shop.users[1] = "alice"
	shop.orders = []shopapi.Order{
		{ID: 1, UserID: 1, AlbumID: 1, Quantity: 2, TotalPrice: 39.98, OrderDate: orderDate(t, "2026-03-01T10:00:00")},
		{ID: 2, UserID: 1, AlbumID: 1, Quantity: 1, TotalPrice: 19.99, OrderDate: orderDate(t, "2026-03-02T11:30:00")},
	}
	shop.reviews = []shopapi.Review{
		{ID: 1, UserID: 1, AlbumID: 1, Rating: 4, Comment: "good"},
	}
	shop.mu.Unlock()

	cookie := login(t, c, app.URL, "root@example.com")
	resp, body := getPage(t, c, app.URL+"/admin", []*http.Cookie{cookie})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}

	for _, want := range []string{"2026-03-01", "2026-03-02", "Blue Train", "$39.98"} {
		if !strings.Contains(body, want) {
			t.Errorf("dashboard missing %q", want)
		}
	}
}

func orderDate(t *testing.T, s string) shopapi.Timestamp {
	t.Helper()
	var ts shopapi.Timestamp
	if err := ts.UnmarshalJSON([]byte(fmt.Sprintf("%q", s))); err != nil {
		t.Fatalf("parsing timestamp: %v", err)
	}
	return ts
}
