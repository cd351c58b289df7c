package shopapi

import (
	"context"
	"fmt"
	"net/http"
)

// ListReviews fetches every review in the shop.
func (c *Client) ListReviews(ctx context.Context, token string) ([]Review, error) {
	var reviews []Review
	if err := c.do(ctx, token, http.MethodGet, "/reviews/", nil, &reviews); err != nil {
		return nil, err
	}
	return reviews, nil
}

// ListAlbumReviews fetches the reviews for one album. Public route.
func (c *Client) ListAlbumReviews(ctx context.Context, albumID int) ([]Review, error) {
	var reviews []Review
	if err := c.do(ctx, "", http.MethodGet, fmt.Sprintf("/reviews/album/%d", albumID), nil, &reviews); err != nil {
		return nil, err
	}
	return reviews, nil
}

// ListUserReviews fetches the reviews written by one user. Public route.
func (c *Client) ListUserReviews(ctx context.Context, userID int) ([]Review, error) {
	var reviews []Review
	if err := c.do(ctx, "", http.MethodGet, fmt.Sprintf("/reviews/user/%d", userID), nil, &reviews); err != nil {
		return nil, err
	}
	return reviews, nil
}

// CreateReview posts a new review for an album.
func (c *Client) CreateReview(ctx context.Context, token string, in ReviewInput) error {
	return c.do(ctx, token, http.MethodPost, "/reviews/", in, nil)
}

// UpdateReview changes the rating and comment of an existing review.
func (c *Client) UpdateReview(ctx context.Context, token string, id, rating int, comment string) error {
	payload := struct {
		Rating  int    `json:"rating"`
		Comment string `json:"comment"`
	}{Rating: rating, Comment: comment}

	return c.do(ctx, token, http.MethodPut, fmt.Sprintf("/reviews/%d", id), payload, nil)
}

// DeleteReview removes a review.
func (c *Client) DeleteReview(ctx context.Context, token string, id int) error {
	return c.do(ctx, token, http.MethodDelete, fmt.Sprintf("/reviews/%d", id), nil, nil)
}
