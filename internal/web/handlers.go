package web

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"albumshop/internal/authz"
	"albumshop/internal/enrich"
	"albumshop/internal/session"
	"albumshop/internal/shopapi"
)

const flashCookieName = "flash"

// viewer is the resolved state of the requesting browser: its session
// (nil when logged out) and the access tier derived for this request.
type viewer struct {
	sess *Session
	tier authz.Tier
	cred session.Credential
}

// resolveViewer derives the viewer's tier for this request. The tier is
// recomputed on every call; a credential the API rejects gets its
// session deleted and the cookie cleared, so the next request starts
// anonymous.
func (s *Server) resolveViewer(w http.ResponseWriter, r *http.Request) viewer {
	sess := s.sessions.GetFromRequest(r)

	store := session.NewMemoryStore()
	if sess != nil {
		_ = store.SetCredential(sess.Credential.Token, sess.Credential.Username)
	}

	tier := authz.New(store, s.api).Resolve(r.Context())

	if sess != nil && !store.IsPresent() {
		s.sessions.Delete(r.Context(), sess.ID)
		s.sessions.ClearCookie(w)
		sess = nil
	}

	v := viewer{sess: sess, tier: tier}
	if sess != nil {
		v.cred = sess.Credential
	}
	return v
}

// page builds the common template data for the viewer.
func (s *Server) page(w http.ResponseWriter, r *http.Request, v viewer, title string) PageData {
	return PageData{
		Title:       title,
		Username:    v.cred.Username,
		IsAdmin:     v.tier == authz.TierAdmin,
		Flash:       s.popFlash(w, r),
		CurrentPath: r.URL.Path,
	}
}

// render writes a page template, logging failures.
func (s *Server) render(w http.ResponseWriter, page string, data any) {
	if err := s.templates.Render(w, page, data); err != nil {
		s.log.Errorw("rendering template", "page", page, "error", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
	}
}

// setFlash queues a one-shot message for the next page render.
func (s *Server) setFlash(w http.ResponseWriter, kind, message string) {
	http.SetCookie(w, &http.Cookie{
		Name:     flashCookieName,
		Value:    url.QueryEscape(kind + "|" + message),
		Path:     "/",
		HttpOnly: true,
		MaxAge:   60,
	})
}

// popFlash reads and clears the pending flash message, if any.
func (s *Server) popFlash(w http.ResponseWriter, r *http.Request) *FlashMessage {
	cookie, err := r.Cookie(flashCookieName)
	if err != nil {
		return nil
	}

	http.SetCookie(w, &http.Cookie{
		Name:     flashCookieName,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		MaxAge:   -1,
	})

	raw, err := url.QueryUnescape(cookie.Value)
	if err != nil {
		return nil
	}
	kind, message, ok := strings.Cut(raw, "|")
	if !ok || message == "" {
		return nil
	}
	return &FlashMessage{Type: kind, Message: message}
}

// userMessage converts an API error into text safe to show on a page.
func userMessage(err error) string {
	var remote *shopapi.RemoteError
	if errors.As(err, &remote) {
		return remote.Message
	}
	var invalid *shopapi.ValidationError
	if errors.As(err, &invalid) {
		return invalid.Field + " " + invalid.Reason
	}
	var transport *shopapi.TransportError
	if errors.As(err, &transport) {
		return "the shop is unreachable, try again later"
	}
	return "something went wrong"
}

func idParam(r *http.Request) (int, error) {
	return strconv.Atoi(chi.URLParam(r, "id"))
}

// ============================================================================
// Public Pages
// ============================================================================

// Home renders the album catalog.
func (s *Server) Home(w http.ResponseWriter, r *http.Request) {
	v := s.resolveViewer(w, r)

	albums, err := s.api.ListAlbums(r.Context())
	if err != nil {
		s.log.Errorw("listing albums", "error", err)
	}

	data := HomePageData{
		PageData: s.page(w, r, v, "Albums"),
		Albums:   albums,
	}
	if err != nil {
		data.Flash = &FlashMessage{Type: "error", Message: userMessage(err)}
	}
	s.render(w, "home", data)
}

// AlbumDetail renders one album with its reviews.
func (s *Server) AlbumDetail(w http.ResponseWriter, r *http.Request) {
	v := s.resolveViewer(w, r)

	id, err := idParam(r)
	if err != nil {
		http.NotFound(w, r)
		return
	}

	album, err := s.api.GetAlbum(r.Context(), id)
	if err != nil {
		var remote *shopapi.RemoteError
		if errors.As(err, &remote) && remote.StatusCode == http.StatusNotFound {
			http.NotFound(w, r)
			return
		}
		s.setFlash(w, "error", userMessage(err))
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}

	reviews, err := s.api.ListAlbumReviews(r.Context(), id)
	if err != nil {
		s.log.Errorw("listing album reviews", "album_id", id, "error", err)
	}

	data := AlbumPageData{
		PageData: s.page(w, r, v, album.Title),
		Album:    album,
		Reviews:  enrich.Reviews(r.Context(), s.api, reviews),
	}
	s.render(w, "album", data)
}

// ============================================================================
// Auth
// ============================================================================

// LoginForm renders the login page.
func (s *Server) LoginForm(w http.ResponseWriter, r *http.Request) {
	v := s.resolveViewer(w, r)
	if v.tier.Satisfies(authz.TierAuthenticated) {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	s.render(w, "login", LoginPageData{PageData: s.page(w, r, v, "Log In")})
}

// Login authenticates against the API and opens a session.
func (s *Server) Login(w http.ResponseWriter, r *http.Request) {
	v := s.resolveViewer(w, r)

	email, password, err := parseLoginForm(r)
	if err == nil {
		var resp shopapi.LoginResponse
		resp, err = s.api.Login(r.Context(), email, password)
		if err == nil {
			sess, createErr := s.sessions.Create(r.Context(), session.Credential{
				Token:    resp.AccessToken,
				Username: resp.Username,
			})
			if createErr != nil {
				s.log.Errorw("creating session", "error", createErr)
				err = createErr
			} else {
				s.sessions.SetCookie(w, sess)
				s.setFlash(w, "success", "Welcome back, "+resp.Username)
				http.Redirect(w, r, "/", http.StatusSeeOther)
				return
			}
		}
	}

	data := LoginPageData{
		PageData: s.page(w, r, v, "Log In"),
		Email:    email,
		Error:    userMessage(err),
	}
	w.WriteHeader(http.StatusUnprocessableEntity)
	s.render(w, "login", data)
}

// RegisterForm renders the registration page.
func (s *Server) RegisterForm(w http.ResponseWriter, r *http.Request) {
	v := s.resolveViewer(w, r)
	if v.tier.Satisfies(authz.TierAuthenticated) {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	s.render(w, "register", RegisterPageData{PageData: s.page(w, r, v, "Register")})
}

// Register creates an account, then sends the user to the login page.
func (s *Server) Register(w http.ResponseWriter, r *http.Request) {
	v := s.resolveViewer(w, r)

	req, err := parseRegisterForm(r)
	if err == nil {
		err = s.api.Register(r.Context(), req)
	}
	if err == nil {
		s.setFlash(w, "success", "Account created, you can log in now")
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}

	data := RegisterPageData{
		PageData: s.page(w, r, v, "Register"),
		Username: req.Username,
		Email:    req.Email,
		AsAdmin:  req.Role == "admin",
		Error:    userMessage(err),
	}
	w.WriteHeader(http.StatusUnprocessableEntity)
	s.render(w, "register", data)
}

// Logout ends the session. The server-side token revocation is best
// effort; the local session is dropped regardless so the browser is
// logged out even when the API is unreachable.
func (s *Server) Logout(w http.ResponseWriter, r *http.Request) {
	sess := s.sessions.GetFromRequest(r)
	if sess != nil {
		if err := s.api.Logout(r.Context(), sess.Credential.Token); err != nil {
			s.log.Warnw("remote logout failed", "error", err)
		}
		s.sessions.Delete(r.Context(), sess.ID)
	}
	s.sessions.ClearCookie(w)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// ============================================================================
// Authenticated Actions
// ============================================================================

// requireUser resolves the viewer and redirects anonymous requests to
// the login page. The bool reports whether the handler may proceed.
func (s *Server) requireUser(w http.ResponseWriter, r *http.Request) (viewer, bool) {
	v := s.resolveViewer(w, r)
	if !v.tier.Satisfies(authz.TierAuthenticated) {
		s.setFlash(w, "error", "Please log in first")
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return v, false
	}
	return v, true
}

// PlaceOrder creates an order for the album.
func (s *Server) PlaceOrder(w http.ResponseWriter, r *http.Request) {
	v, ok := s.requireUser(w, r)
	if !ok {
		return
	}

	albumID, err := idParam(r)
	if err != nil {
		http.NotFound(w, r)
		return
	}
	albumPath := "/albums/" + strconv.Itoa(albumID)

	album, err := s.api.GetAlbum(r.Context(), albumID)
	if err != nil {
		s.setFlash(w, "error", userMessage(err))
		http.Redirect(w, r, albumPath, http.StatusSeeOther)
		return
	}

	quantity, err := parseOrderForm(r, album.Quantity)
	if err == nil {
		err = s.api.CreateOrder(r.Context(), v.cred.Token, albumID, quantity)
	}
	if err != nil {
		s.setFlash(w, "error", userMessage(err))
		http.Redirect(w, r, albumPath, http.StatusSeeOther)
		return
	}

	s.setFlash(w, "success", "Order placed")
	http.Redirect(w, r, "/orders/my", http.StatusSeeOther)
}

// CreateReview posts a review for the album.
func (s *Server) CreateReview(w http.ResponseWriter, r *http.Request) {
	v, ok := s.requireUser(w, r)
	if !ok {
		return
	}

	albumID, err := idParam(r)
	if err != nil {
		http.NotFound(w, r)
		return
	}
	albumPath := "/albums/" + strconv.Itoa(albumID)

	in, err := parseReviewForm(r, albumID)
	if err == nil {
		err = s.api.CreateReview(r.Context(), v.cred.Token, in)
	}
	if err != nil {
		s.setFlash(w, "error", userMessage(err))
	} else {
		s.setFlash(w, "success", "Review posted")
	}
	http.Redirect(w, r, albumPath, http.StatusSeeOther)
}

// UpdateReview edits one of the viewer's reviews. Ownership is enforced
// by the API; a foreign review yields a remote error shown as a flash.
func (s *Server) UpdateReview(w http.ResponseWriter, r *http.Request) {
	v, ok := s.requireUser(w, r)
	if !ok {
		return
	}

	reviewID, err := idParam(r)
	if err != nil {
		http.NotFound(w, r)
		return
	}
	albumID, _ := strconv.Atoi(r.FormValue("album_id"))

	in, err := parseReviewForm(r, albumID)
	if err == nil {
		err = s.api.UpdateReview(r.Context(), v.cred.Token, reviewID, in.Rating, in.Comment)
	}
	if err != nil {
		s.setFlash(w, "error", userMessage(err))
	} else {
		s.setFlash(w, "success", "Review updated")
	}
	http.Redirect(w, r, "/albums/"+strconv.Itoa(albumID), http.StatusSeeOther)
}

// DeleteReview removes one of the viewer's reviews.
func (s *Server) DeleteReview(w http.ResponseWriter, r *http.Request) {
	v, ok := s.requireUser(w, r)
	if !ok {
		return
	}

	reviewID, err := idParam(r)
	if err != nil {
		http.NotFound(w, r)
		return
	}
	albumID, _ := strconv.Atoi(r.FormValue("album_id"))

	if err := s.api.DeleteReview(r.Context(), v.cred.Token, reviewID); err != nil {
		s.setFlash(w, "error", userMessage(err))
	} else {
		s.setFlash(w, "success", "Review deleted")
	}

	target := "/albums/" + strconv.Itoa(albumID)
	if albumID == 0 {
		target = "/"
	}
	http.Redirect(w, r, target, http.StatusSeeOther)
}

// MyOrders renders the viewer's order history, joined with the album
// catalog so each row shows the title instead of a bare id.
func (s *Server) MyOrders(w http.ResponseWriter, r *http.Request) {
	v, ok := s.requireUser(w, r)
	if !ok {
		return
	}

	orders, err := s.api.ListMyOrders(r.Context(), v.cred.Token)
	if err != nil {
		s.setFlash(w, "error", userMessage(err))
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}

	albums := s.albumIndex(r.Context())

	rows := make([]MyOrderRow, len(orders))
	for i, o := range orders {
		rows[i] = MyOrderRow{Order: o, Album: albums[o.AlbumID]}
	}

	data := MyOrdersPageData{
		PageData: s.page(w, r, v, "My Orders"),
		Orders:   rows,
	}
	s.render(w, "my_orders", data)
}

// DeleteOrder cancels one of the viewer's orders.
func (s *Server) DeleteOrder(w http.ResponseWriter, r *http.Request) {
	v, ok := s.requireUser(w, r)
	if !ok {
		return
	}

	orderID, err := idParam(r)
	if err != nil {
		http.NotFound(w, r)
		return
	}

	if err := s.api.DeleteOrder(r.Context(), v.cred.Token, orderID); err != nil {
		s.setFlash(w, "error", userMessage(err))
	} else {
		s.setFlash(w, "success", "Order cancelled")
	}
	http.Redirect(w, r, "/orders/my", http.StatusSeeOther)
}

// albumIndex fetches the catalog as a map by id. Errors degrade to an
// empty map; rows referencing a missing album render with zero values.
func (s *Server) albumIndex(ctx context.Context) map[int]shopapi.Album {
	albums, err := s.api.ListAlbums(ctx)
	if err != nil {
		s.log.Errorw("listing albums for join", "error", err)
	}
	index := make(map[int]shopapi.Album, len(albums))
	for _, a := range albums {
		index[a.ID] = a
	}
	return index
}
