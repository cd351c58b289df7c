// Package views derives the denormalized view models consumed by the
// admin dashboard and the order/review pages from raw API collections.
//
// Every function here is pure: no I/O, no shared state, identical
// output for identical input. Dashboard recomputation stays
// deterministic and independent of network timing.
package views

import (
	"math"
	"sort"

	"albumshop/internal/shopapi"
)

// Default truncation limits, matching what the dashboard displays.
const (
	DefaultTopAlbums = 10
	DefaultTopUsers  = 6
	DefaultTopRated  = 10
)

const dayFormat = "2006-01-02"

// SalesPoint is one calendar day's revenue.
type SalesPoint struct {
	Date  string // UTC day, "2006-01-02"
	Total float64
}

// TopAlbum is an album with its total copies sold.
type TopAlbum struct {
	Title     string
	TotalSold int
}

// UserOrderCount is a user with their number of orders.
type UserOrderCount struct {
	UserID int
	Count  int
}

// AlbumRating is an album's mean review rating and review count.
type AlbumRating struct {
	Title       string
	AvgRating   float64
	ReviewCount int
}

// SalesOverTime groups orders by UTC calendar day and sums total_price
// per day, rounded to 2 decimals. Results ascend by date. UTC
// truncation keeps the buckets reproducible across client timezones.
func SalesOverTime(orders []shopapi.Order) []SalesPoint {
	totals := make(map[string]float64)
	for _, o := range orders {
		day := o.OrderDate.UTC().Format(dayFormat)
		totals[day] += o.TotalPrice
	}

	days := make([]string, 0, len(totals))
	for day := range totals {
		days = append(days, day)
	}
	sort.Strings(days)

	points := make([]SalesPoint, 0, len(days))
	for _, day := range days {
		points = append(points, SalesPoint{Date: day, Total: round2(totals[day])})
	}
	return points
}

// TopSellingAlbums sums ordered quantity per album, drops albums with
// zero total, sorts descending by total and truncates to limit
// (DefaultTopAlbums when limit <= 0). An album nobody ordered is
// excluded, not shown as zero.
func TopSellingAlbums(albums []shopapi.Album, orders []shopapi.Order, limit int) []TopAlbum {
	if limit <= 0 {
		limit = DefaultTopAlbums
	}

	sold := make(map[int]int)
	for _, o := range orders {
		sold[o.AlbumID] += o.Quantity
	}

	var top []TopAlbum
	for _, a := range albums {
		if total := sold[a.ID]; total > 0 {
			top = append(top, TopAlbum{Title: a.Title, TotalSold: total})
		}
	}

	sort.SliceStable(top, func(i, j int) bool {
		return top[i].TotalSold > top[j].TotalSold
	})
	return truncate(top, limit)
}

// OrdersByUser counts orders per user, sorts descending by count and
// truncates to limit (DefaultTopUsers when limit <= 0). Ties keep
// first-seen order; there is no secondary key.
func OrdersByUser(orders []shopapi.Order, limit int) []UserOrderCount {
	if limit <= 0 {
		limit = DefaultTopUsers
	}

	index := make(map[int]int)
	var counts []UserOrderCount
	for _, o := range orders {
		i, seen := index[o.UserID]
		if !seen {
			index[o.UserID] = len(counts)
			counts = append(counts, UserOrderCount{UserID: o.UserID})
			i = len(counts) - 1
		}
		counts[i].Count++
	}

	sort.SliceStable(counts, func(i, j int) bool {
		return counts[i].Count > counts[j].Count
	})
	return truncate(counts, limit)
}

// AverageRatingPerAlbum computes the mean rating (2 decimals) and
// review count for each album with at least one review, sorted
// descending by average and truncated to limit (DefaultTopRated when
// limit <= 0). Unreviewed albums are excluded.
func AverageRatingPerAlbum(albums []shopapi.Album, reviews []shopapi.Review, limit int) []AlbumRating {
	if limit <= 0 {
		limit = DefaultTopRated
	}

	type acc struct {
		sum   int
		count int
	}
	byAlbum := make(map[int]acc)
	for _, r := range reviews {
		a := byAlbum[r.AlbumID]
		a.sum += r.Rating
		a.count++
		byAlbum[r.AlbumID] = a
	}

	var rated []AlbumRating
	for _, album := range albums {
		a, ok := byAlbum[album.ID]
		if !ok {
			continue
		}
		rated = append(rated, AlbumRating{
			Title:       album.Title,
			AvgRating:   round2(float64(a.sum) / float64(a.count)),
			ReviewCount: a.count,
		})
	}

	sort.SliceStable(rated, func(i, j int) bool {
		return rated[i].AvgRating > rated[j].AvgRating
	})
	return truncate(rated, limit)
}

func truncate[T any](s []T, limit int) []T {
	if len(s) > limit {
		return s[:limit]
	}
	return s
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
