package web

import (
	"net/http"
	"strconv"
	"strings"

	"albumshop/internal/shopapi"
)

// Form parsing and the client-side checks run before any mutating API
// call: user-entered fields fail fast with a *shopapi.ValidationError
// instead of a round trip.

func parseLoginForm(r *http.Request) (email, password string, err error) {
	email = strings.TrimSpace(r.FormValue("email"))
	password = r.FormValue("password")

	if email == "" {
		return "", "", &shopapi.ValidationError{Field: "email", Reason: "must not be empty"}
	}
	if password == "" {
		return "", "", &shopapi.ValidationError{Field: "password", Reason: "must not be empty"}
	}
	return email, password, nil
}

func parseRegisterForm(r *http.Request) (shopapi.RegisterRequest, error) {
	req := shopapi.RegisterRequest{
		Username: strings.TrimSpace(r.FormValue("username")),
		Email:    strings.TrimSpace(r.FormValue("email")),
		Password: r.FormValue("password"),
		Role:     "user",
	}

	if req.Username == "" {
		return req, &shopapi.ValidationError{Field: "username", Reason: "must not be empty"}
	}
	if req.Email == "" {
		return req, &shopapi.ValidationError{Field: "email", Reason: "must not be empty"}
	}
	if req.Password == "" {
		return req, &shopapi.ValidationError{Field: "password", Reason: "must not be empty"}
	}

	if r.FormValue("as_admin") != "" {
		req.Role = "admin"
		req.AdminCode = r.FormValue("admin_code")
		if req.AdminCode == "" {
			return req, &shopapi.ValidationError{Field: "admin_code", Reason: "required for admin registration"}
		}
	}

	return req, nil
}

// parseOrderForm validates the requested quantity against the album's
// current stock.
func parseOrderForm(r *http.Request, stock int) (int, error) {
	quantity, err := strconv.Atoi(r.FormValue("quantity"))
	if err != nil {
		return 0, &shopapi.ValidationError{Field: "quantity", Reason: "must be a number"}
	}
	if quantity < 1 {
		return 0, &shopapi.ValidationError{Field: "quantity", Reason: "must be at least 1"}
	}
	if quantity > stock {
		return 0, &shopapi.ValidationError{Field: "quantity", Reason: "exceeds available stock"}
	}
	return quantity, nil
}

// parseReviewForm validates the rating range before posting.
func parseReviewForm(r *http.Request, albumID int) (shopapi.ReviewInput, error) {
	rating, err := strconv.Atoi(r.FormValue("rating"))
	if err != nil {
		return shopapi.ReviewInput{}, &shopapi.ValidationError{Field: "rating", Reason: "must be a number"}
	}
	if rating < 1 || rating > 5 {
		return shopapi.ReviewInput{}, &shopapi.ValidationError{Field: "rating", Reason: "must be between 1 and 5"}
	}

	return shopapi.ReviewInput{
		AlbumID: albumID,
		Rating:  rating,
		Comment: strings.TrimSpace(r.FormValue("comment")),
	}, nil
}

func parseAlbumForm(r *http.Request) (shopapi.AlbumInput, error) {
	in := shopapi.AlbumInput{
		Title:       strings.TrimSpace(r.FormValue("title")),
		Artist:      strings.TrimSpace(r.FormValue("artist")),
		ReleaseDate: strings.TrimSpace(r.FormValue("release_date")),
		Genre:       strings.TrimSpace(r.FormValue("genre")),
		ImageURL:    strings.TrimSpace(r.FormValue("image_url")),
	}

	if in.Title == "" {
		return in, &shopapi.ValidationError{Field: "title", Reason: "must not be empty"}
	}
	if in.Artist == "" {
		return in, &shopapi.ValidationError{Field: "artist", Reason: "must not be empty"}
	}

	price, err := strconv.ParseFloat(r.FormValue("price"), 64)
	if err != nil || price < 0 {
		return in, &shopapi.ValidationError{Field: "price", Reason: "must be a non-negative number"}
	}
	in.Price = price

	quantity, err := strconv.Atoi(r.FormValue("quantity"))
	if err != nil || quantity < 0 {
		return in, &shopapi.ValidationError{Field: "quantity", Reason: "must be a non-negative integer"}
	}
	in.Quantity = quantity

	return in, nil
}
