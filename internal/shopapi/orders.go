package shopapi

import (
	"context"
	"fmt"
	"net/http"
)

// ListOrders fetches every order in the shop. Admin token required.
func (c *Client) ListOrders(ctx context.Context, token string) ([]Order, error) {
	var orders []Order
	if err := c.do(ctx, token, http.MethodGet, "/orders/", nil, &orders); err != nil {
		return nil, err
	}
	return orders, nil
}

// ListMyOrders fetches the orders placed by the token's owner.
func (c *Client) ListMyOrders(ctx context.Context, token string) ([]Order, error) {
	var orders []Order
	if err := c.do(ctx, token, http.MethodGet, "/orders/my", nil, &orders); err != nil {
		return nil, err
	}
	return orders, nil
}

// CreateOrder places an order for quantity copies of an album. The
// server computes the total price and decrements stock.
func (c *Client) CreateOrder(ctx context.Context, token string, albumID, quantity int) error {
	payload := struct {
		AlbumID  int `json:"album_id"`
		Quantity int `json:"quantity"`
	}{AlbumID: albumID, Quantity: quantity}

	return c.do(ctx, token, http.MethodPost, "/orders/", payload, nil)
}

// DeleteOrder removes an order. Users may delete their own orders;
// admins may delete any.
func (c *Client) DeleteOrder(ctx context.Context, token string, id int) error {
	return c.do(ctx, token, http.MethodDelete, fmt.Sprintf("/orders/%d", id), nil, nil)
}
