// Package enrich attaches display usernames to records that reference
// users by id. Lookups fan out concurrently and failures degrade to a
// placeholder per record; enrichment never fails a page render.
package enrich

import (
	"context"
	"sync"

	"albumshop/internal/shopapi"
)

// UnknownUsername is substituted when a user lookup fails or the user
// no longer exists.
const UnknownUsername = "Unknown"

// DefaultConcurrency bounds parallel user lookups.
const DefaultConcurrency = 5

// UserLookup abstracts the API client for testing.
type UserLookup interface {
	GetUser(ctx context.Context, id int) (shopapi.User, error)
}

// Order is an order with its purchaser's username attached.
type Order struct {
	shopapi.Order
	Username string
}

// Review is a review with its author's username attached.
type Review struct {
	shopapi.Review
	Username string
}

// Orders resolves a username for every order. Input order is
// preserved; a failed lookup affects only the records referencing that
// user.
func Orders(ctx context.Context, lookup UserLookup, orders []shopapi.Order) []Order {
	ids := make([]int, len(orders))
	for i, o := range orders {
		ids[i] = o.UserID
	}
	names := usernames(ctx, lookup, ids)

	enriched := make([]Order, len(orders))
	for i, o := range orders {
		enriched[i] = Order{Order: o, Username: names[o.UserID]}
	}
	return enriched
}

// Reviews resolves a username for every review, like Orders.
func Reviews(ctx context.Context, lookup UserLookup, reviews []shopapi.Review) []Review {
	ids := make([]int, len(reviews))
	for i, r := range reviews {
		ids[i] = r.UserID
	}
	names := usernames(ctx, lookup, ids)

	enriched := make([]Review, len(reviews))
	for i, r := range reviews {
		enriched[i] = Review{Review: r, Username: names[r.UserID]}
	}
	return enriched
}

// usernames resolves each distinct id once, with a bounded worker
// pool. Every id gets an entry: the username on success,
// UnknownUsername on any failure (including cancellation).
func usernames(ctx context.Context, lookup UserLookup, ids []int) map[int]string {
	distinct := make([]int, 0, len(ids))
	seen := make(map[int]bool, len(ids))
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			distinct = append(distinct, id)
		}
	}

	names := make(map[int]string, len(distinct))
	if len(distinct) == 0 {
		return names
	}

	var mu sync.Mutex
	workCh := make(chan int, len(distinct))
	for _, id := range distinct {
		workCh <- id
	}
	close(workCh)

	concurrency := DefaultConcurrency
	if len(distinct) < concurrency {
		concurrency = len(distinct)
	}

	var wg sync.WaitGroup
	for i := 0; i < concurrency; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for id := range workCh {
				name := UnknownUsername

				select {
				case <-ctx.Done():
				default:
					if user, err := lookup.GetUser(ctx, id); err == nil && user.Username != "" {
						name = user.Username
					}
				}

				mu.Lock()
				names[id] = name
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	return names
}
