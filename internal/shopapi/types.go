package shopapi

import (
	"fmt"
	"time"
)

// Album is a catalog entry as returned by the API.
type Album struct {
	ID          int     `json:"id"`
	Title       string  `json:"title"`
	Artist      string  `json:"artist"`
	ReleaseDate string  `json:"release_date"`
	Genre       string  `json:"genre"`
	Price       float64 `json:"price"`
	Quantity    int     `json:"quantity"`
	ImageURL    string  `json:"image_url"`
}

// AlbumInput is the payload for creating or updating an album.
type AlbumInput struct {
	Title       string  `json:"title"`
	Artist      string  `json:"artist"`
	ReleaseDate string  `json:"release_date"`
	Genre       string  `json:"genre"`
	Price       float64 `json:"price"`
	Quantity    int     `json:"quantity"`
	ImageURL    string  `json:"image_url,omitempty"`
}

// Order references an album and the purchasing user by id.
// UserID is zero on /orders/my responses, which omit it.
type Order struct {
	ID         int       `json:"id"`
	UserID     int       `json:"user_id"`
	AlbumID    int       `json:"album_id"`
	Quantity   int       `json:"quantity"`
	TotalPrice float64   `json:"total_price"`
	OrderDate  Timestamp `json:"order_date"`
}

// Review is a user's rating and comment for an album.
type Review struct {
	ID      int    `json:"id"`
	UserID  int    `json:"user_id"`
	AlbumID int    `json:"album_id"`
	Rating  int    `json:"rating"`
	Comment string `json:"comment"`
}

// ReviewInput is the payload for creating a review.
type ReviewInput struct {
	AlbumID int    `json:"album_id"`
	Rating  int    `json:"rating"`
	Comment string `json:"comment"`
}

// User is the public profile shape from /users/:id.
type User struct {
	ID       int    `json:"id"`
	Username string `json:"username"`
	Role     string `json:"role,omitempty"`
}

// RegisterRequest is the payload for POST /register. AdminCode is only
// sent when registering with the admin role.
type RegisterRequest struct {
	Username  string `json:"username"`
	Email     string `json:"email"`
	Password  string `json:"password"`
	Role      string `json:"role"`
	AdminCode string `json:"admin_code,omitempty"`
}

// LoginResponse is the successful response from POST /login.
type LoginResponse struct {
	AccessToken string `json:"access_token"`
	Username    string `json:"username"`
}

// Timestamp wraps time.Time to accept the backend's timestamp format.
// The server emits naive ISO-8601 (datetime.isoformat(), no zone,
// fractional seconds optional); naive values are taken as UTC so that
// calendar-day grouping is reproducible across client timezones.
type Timestamp struct {
	time.Time
}

// naiveLayout matches ISO-8601 without a zone offset. The trailing
// nines make the fractional part optional when parsing.
const naiveLayout = "2006-01-02T15:04:05.999999999"

// UnmarshalJSON parses RFC 3339 or naive ISO-8601 timestamps.
func (t *Timestamp) UnmarshalJSON(data []byte) error {
	s := string(data)
	if s == "null" {
		return nil
	}
	if len(s) < 2 || s[0] != '"' || s[len(s)-1] != '"' {
		return fmt.Errorf("timestamp is not a JSON string: %s", s)
	}
	s = s[1 : len(s)-1]

	if parsed, err := time.Parse(time.RFC3339, s); err == nil {
		t.Time = parsed
		return nil
	}

	parsed, err := time.ParseInLocation(naiveLayout, s, time.UTC)
	if err != nil {
		return fmt.Errorf("parsing timestamp %q: %w", s, err)
	}
	t.Time = parsed
	return nil
}

// MarshalJSON emits RFC 3339 in UTC.
func (t Timestamp) MarshalJSON() ([]byte, error) {
	return []byte(`"` + t.UTC().Format(time.RFC3339) + `"`), nil
}
