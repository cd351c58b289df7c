package views

import (
	"fmt"
	"slices"
	"strings"

	"github.com/muesli/clusters"
	"github.com/muesli/kmeans"

	"albumshop/internal/shopapi"
)

// DefaultSegments is the number of catalog segments shown on the
// dashboard.
const DefaultSegments = 3

// CatalogSegment is a group of albums with similar price and rating,
// produced by k-means over (price, average rating).
type CatalogSegment struct {
	Name      string // dominant genre plus price band, e.g. "Rock · $8–$14"
	Albums    []shopapi.Album
	AvgPrice  float64
	AvgRating float64
}

// albumObservation wraps an Album to implement clusters.Observation.
type albumObservation struct {
	album  *shopapi.Album
	coords clusters.Coordinates
}

func (o albumObservation) Coordinates() clusters.Coordinates {
	return o.coords
}

func (o albumObservation) Distance(point clusters.Coordinates) float64 {
	return o.coords.Distance(point)
}

// SegmentCatalog groups the catalog into k price/quality segments.
// Ratings come from the same review aggregation the dashboard shows;
// unreviewed albums count as rating zero. Segments are returned sorted
// ascending by average price. With fewer than k albums, or when
// clustering fails, the whole catalog is returned as one segment.
func SegmentCatalog(albums []shopapi.Album, reviews []shopapi.Review, k int) []CatalogSegment {
	if len(albums) == 0 {
		return nil
	}
	if k <= 0 {
		k = DefaultSegments
	}
	if len(albums) < k || k < 2 {
		return []CatalogSegment{makeSegment(albums, avgRatingByAlbum(reviews))}
	}

	ratings := avgRatingByAlbum(reviews)

	// Normalize both axes to 0..1 so price does not dominate distance.
	maxPrice := 0.0
	for _, a := range albums {
		if a.Price > maxPrice {
			maxPrice = a.Price
		}
	}
	if maxPrice == 0 {
		maxPrice = 1
	}

	var obs clusters.Observations
	for i := range albums {
		a := &albums[i]
		obs = append(obs, albumObservation{
			album:  a,
			coords: clusters.Coordinates{a.Price / maxPrice, ratings[a.ID] / 5},
		})
	}

	km := kmeans.New()
	result, err := km.Partition(obs, k)
	if err != nil {
		return []CatalogSegment{makeSegment(albums, ratings)}
	}

	var segments []CatalogSegment
	for _, cluster := range result {
		var members []shopapi.Album
		for _, o := range cluster.Observations {
			if ao, ok := o.(albumObservation); ok {
				members = append(members, *ao.album)
			}
		}
		if len(members) == 0 {
			continue
		}
		segments = append(segments, makeSegment(members, ratings))
	}

	slices.SortFunc(segments, func(a, b CatalogSegment) int {
		switch {
		case a.AvgPrice < b.AvgPrice:
			return -1
		case a.AvgPrice > b.AvgPrice:
			return 1
		default:
			return 0
		}
	})
	return segments
}

// makeSegment computes a segment's stats and display name.
func makeSegment(members []shopapi.Album, ratings map[int]float64) CatalogSegment {
	minPrice := members[0].Price
	maxPrice := members[0].Price
	var priceSum, ratingSum float64
	genreCounts := make(map[string]int)

	for _, a := range members {
		if a.Price < minPrice {
			minPrice = a.Price
		}
		if a.Price > maxPrice {
			maxPrice = a.Price
		}
		priceSum += a.Price
		ratingSum += ratings[a.ID]
		genreCounts[a.Genre]++
	}

	return CatalogSegment{
		Name:      segmentName(dominantGenre(genreCounts), minPrice, maxPrice),
		Albums:    members,
		AvgPrice:  round2(priceSum / float64(len(members))),
		AvgRating: round2(ratingSum / float64(len(members))),
	}
}

// avgRatingByAlbum maps album id to mean rating; absent means zero.
func avgRatingByAlbum(reviews []shopapi.Review) map[int]float64 {
	sums := make(map[int]int)
	counts := make(map[int]int)
	for _, r := range reviews {
		sums[r.AlbumID] += r.Rating
		counts[r.AlbumID]++
	}

	avgs := make(map[int]float64, len(sums))
	for id, sum := range sums {
		avgs[id] = float64(sum) / float64(counts[id])
	}
	return avgs
}

// dominantGenre returns the most common genre, breaking ties
// alphabetically so names are stable.
func dominantGenre(counts map[string]int) string {
	best := ""
	bestCount := -1
	for genre, count := range counts {
		if count > bestCount || (count == bestCount && genre < best) {
			best = genre
			bestCount = count
		}
	}
	if best == "" {
		return "Mixed"
	}
	return best
}

func segmentName(genre string, minPrice, maxPrice float64) string {
	genre = strings.TrimSpace(genre)
	if genre == "" {
		genre = "Mixed"
	}
	return fmt.Sprintf("%s · $%.0f–%.0f", genre, minPrice, maxPrice)
}
