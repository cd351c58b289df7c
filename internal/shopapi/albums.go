package shopapi

import (
	"context"
	"fmt"
	"net/http"
)

// ListAlbums fetches the full catalog. Public route.
func (c *Client) ListAlbums(ctx context.Context) ([]Album, error) {
	var albums []Album
	if err := c.do(ctx, "", http.MethodGet, "/albums/", nil, &albums); err != nil {
		return nil, err
	}
	return albums, nil
}

// GetAlbum fetches a single album by id. Public route.
func (c *Client) GetAlbum(ctx context.Context, id int) (Album, error) {
	var album Album
	if err := c.do(ctx, "", http.MethodGet, fmt.Sprintf("/albums/%d", id), nil, &album); err != nil {
		return Album{}, err
	}
	return album, nil
}

// CreateAlbum adds an album to the catalog. Admin token required.
// Callers re-fetch the catalog afterwards; the response body is not
// relied on.
func (c *Client) CreateAlbum(ctx context.Context, token string, in AlbumInput) error {
	return c.do(ctx, token, http.MethodPost, "/albums/", in, nil)
}

// UpdateAlbum replaces an album's fields. Admin token required.
func (c *Client) UpdateAlbum(ctx context.Context, token string, id int, in AlbumInput) error {
	return c.do(ctx, token, http.MethodPut, fmt.Sprintf("/albums/%d", id), in, nil)
}

// DeleteAlbum removes an album from the catalog. Admin token required.
func (c *Client) DeleteAlbum(ctx context.Context, token string, id int) error {
	return c.do(ctx, token, http.MethodDelete, fmt.Sprintf("/albums/%d", id), nil, nil)
}
