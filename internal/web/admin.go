package web

import (
	"net/http"
	"strconv"
	"sync"

	"albumshop/internal/authz"
	"albumshop/internal/enrich"
	"albumshop/internal/shopapi"
	"albumshop/internal/views"
)

// requireAdmin resolves the viewer and rejects anyone below the admin
// tier. A failed admin probe lands here as TierAuthenticated, so a
// flaky role check denies rather than grants.
func (s *Server) requireAdmin(w http.ResponseWriter, r *http.Request) (viewer, bool) {
	v := s.resolveViewer(w, r)
	if !v.tier.Satisfies(authz.TierAdmin) {
		if v.tier == authz.TierAnonymous {
			s.setFlash(w, "error", "Please log in first")
			http.Redirect(w, r, "/login", http.StatusSeeOther)
		} else {
			s.setFlash(w, "error", "Admin access required")
			http.Redirect(w, r, "/", http.StatusSeeOther)
		}
		return v, false
	}
	return v, true
}

// Dashboard renders the admin analytics page. Albums, orders and
// reviews are fetched concurrently; a partial failure renders the
// sections that did load plus a warning.
func (s *Server) Dashboard(w http.ResponseWriter, r *http.Request) {
	v, ok := s.requireAdmin(w, r)
	if !ok {
		return
	}

	var (
		albums  []shopapi.Album
		orders  []shopapi.Order
		reviews []shopapi.Review

		mu       sync.Mutex
		firstErr error
	)

	setErr := func(err error) {
		mu.Lock()
		if firstErr == nil {
			firstErr = err
		}
		mu.Unlock()
	}

	var wg sync.WaitGroup
	wg.Add(3)
	go func() {
		defer wg.Done()
		var err error
		if albums, err = s.api.ListAlbums(r.Context()); err != nil {
			setErr(err)
		}
	}()
	go func() {
		defer wg.Done()
		var err error
		if orders, err = s.api.ListOrders(r.Context(), v.cred.Token); err != nil {
			setErr(err)
		}
	}()
	go func() {
		defer wg.Done()
		var err error
		if reviews, err = s.api.ListReviews(r.Context(), v.cred.Token); err != nil {
			setErr(err)
		}
	}()
	wg.Wait()

	data := DashboardPageData{
		PageData:   s.page(w, r, v, "Dashboard"),
		Sales:      views.SalesOverTime(orders),
		TopAlbums:  views.TopSellingAlbums(albums, orders, views.DefaultTopAlbums),
		UserCounts: views.OrdersByUser(orders, views.DefaultTopUsers),
		Ratings:    views.AverageRatingPerAlbum(albums, reviews, views.DefaultTopRated),
		Segments:   views.SegmentCatalog(albums, reviews, views.DefaultSegments),
		Albums:     albums,
	}
	if firstErr != nil {
		s.log.Errorw("loading dashboard data", "error", firstErr)
		data.LoadError = userMessage(firstErr)
	}
	s.render(w, "admin", data)
}

// AllOrders renders every order in the shop with purchaser usernames.
func (s *Server) AllOrders(w http.ResponseWriter, r *http.Request) {
	v, ok := s.requireAdmin(w, r)
	if !ok {
		return
	}

	orders, err := s.api.ListOrders(r.Context(), v.cred.Token)
	if err != nil {
		s.setFlash(w, "error", userMessage(err))
		http.Redirect(w, r, "/admin", http.StatusSeeOther)
		return
	}

	albums := s.albumIndex(r.Context())
	enriched := enrich.Orders(r.Context(), s.api, orders)

	rows := make([]AllOrderRow, len(enriched))
	for i, o := range enriched {
		rows[i] = AllOrderRow{
			Order:    o.Order,
			Album:    albums[o.AlbumID],
			Username: o.Username,
		}
	}

	data := AllOrdersPageData{
		PageData: s.page(w, r, v, "All Orders"),
		Orders:   rows,
	}
	s.render(w, "all_orders", data)
}

// NewAlbumForm renders the album creation form.
func (s *Server) NewAlbumForm(w http.ResponseWriter, r *http.Request) {
	v, ok := s.requireAdmin(w, r)
	if !ok {
		return
	}

	data := AlbumFormPageData{
		PageData: s.page(w, r, v, "New Album"),
		Action:   "/admin/albums/new",
	}
	s.render(w, "album_form", data)
}

// CreateAlbum adds an album to the catalog.
func (s *Server) CreateAlbum(w http.ResponseWriter, r *http.Request) {
	v, ok := s.requireAdmin(w, r)
	if !ok {
		return
	}

	in, err := parseAlbumForm(r)
	if err == nil {
		err = s.api.CreateAlbum(r.Context(), v.cred.Token, in)
	}
	if err != nil {
		data := AlbumFormPageData{
			PageData: s.page(w, r, v, "New Album"),
			Action:   "/admin/albums/new",
			Album:    in,
			Error:    userMessage(err),
		}
		w.WriteHeader(http.StatusUnprocessableEntity)
		s.render(w, "album_form", data)
		return
	}

	s.setFlash(w, "success", "Album created")
	http.Redirect(w, r, "/admin", http.StatusSeeOther)
}

// EditAlbumForm renders the edit form prefilled with the album.
func (s *Server) EditAlbumForm(w http.ResponseWriter, r *http.Request) {
	v, ok := s.requireAdmin(w, r)
	if !ok {
		return
	}

	id, err := idParam(r)
	if err != nil {
		http.NotFound(w, r)
		return
	}

	album, err := s.api.GetAlbum(r.Context(), id)
	if err != nil {
		s.setFlash(w, "error", userMessage(err))
		http.Redirect(w, r, "/admin", http.StatusSeeOther)
		return
	}

	data := AlbumFormPageData{
		PageData: s.page(w, r, v, "Edit Album"),
		Action:   "/admin/albums/" + strconv.Itoa(id) + "/edit",
		ID:       id,
		Album: shopapi.AlbumInput{
			Title:       album.Title,
			Artist:      album.Artist,
			ReleaseDate: album.ReleaseDate,
			Genre:       album.Genre,
			Price:       album.Price,
			Quantity:    album.Quantity,
			ImageURL:    album.ImageURL,
		},
	}
	s.render(w, "album_form", data)
}

// UpdateAlbum saves edits to an album.
func (s *Server) UpdateAlbum(w http.ResponseWriter, r *http.Request) {
	v, ok := s.requireAdmin(w, r)
	if !ok {
		return
	}

	id, err := idParam(r)
	if err != nil {
		http.NotFound(w, r)
		return
	}

	in, err := parseAlbumForm(r)
	if err == nil {
		err = s.api.UpdateAlbum(r.Context(), v.cred.Token, id, in)
	}
	if err != nil {
		data := AlbumFormPageData{
			PageData: s.page(w, r, v, "Edit Album"),
			Action:   "/admin/albums/" + strconv.Itoa(id) + "/edit",
			ID:       id,
			Album:    in,
			Error:    userMessage(err),
		}
		w.WriteHeader(http.StatusUnprocessableEntity)
		s.render(w, "album_form", data)
		return
	}

	s.setFlash(w, "success", "Album updated")
	http.Redirect(w, r, "/albums/"+strconv.Itoa(id), http.StatusSeeOther)
}

// DeleteAlbum removes an album from the catalog.
func (s *Server) DeleteAlbum(w http.ResponseWriter, r *http.Request) {
	v, ok := s.requireAdmin(w, r)
	if !ok {
		return
	}

	id, err := idParam(r)
	if err != nil {
		http.NotFound(w, r)
		return
	}

	if err := s.api.DeleteAlbum(r.Context(), v.cred.Token, id); err != nil {
		s.setFlash(w, "error", userMessage(err))
	} else {
		s.setFlash(w, "success", "Album deleted")
	}
	http.Redirect(w, r, "/admin", http.StatusSeeOther)
}
