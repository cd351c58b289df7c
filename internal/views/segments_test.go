package views

import (
	"testing"

	"albumshop/internal/shopapi"
)

func TestSegmentCatalog_Empty(t *testing.T) {
	if got := SegmentCatalog(nil, nil, 3); got != nil {
		t.Errorf("SegmentCatalog(nil) = %+v, want nil", got)
	}
}

func TestSegmentCatalog_FewerAlbumsThanSegments(t *testing.T) {
	albums := []shopapi.Album{
		{ID: 1, Title: "A", Genre: "Rock", Price: 10},
		{ID: 2, Title: "B", Genre: "Rock", Price: 20},
	}

	segments := SegmentCatalog(albums, nil, 3)

	if len(segments) != 1 {
		t.Fatalf("got %d segments, want 1", len(segments))
	}
	if len(segments[0].Albums) != 2 {
		t.Errorf("segment holds %d albums, want 2", len(segments[0].Albums))
	}
	if segments[0].AvgPrice != 15 {
		t.Errorf("AvgPrice = %v, want 15", segments[0].AvgPrice)
	}
}

func TestSegmentCatalog_Invariants(t *testing.T) {
	albums := []shopapi.Album{
		{ID: 1, Title: "A", Genre: "Rock", Price: 5},
		{ID: 2, Title: "B", Genre: "Rock", Price: 6},
		{ID: 3, Title: "C", Genre: "Jazz", Price: 7},
		{ID: 4, Title: "D", Genre: "Jazz", Price: 24},
		{ID: 5, Title: "E", Genre: "Pop", Price: 25},
		{ID: 6, Title: "F", Genre: "Pop", Price: 26},
	}
	reviews := []shopapi.Review{
		{AlbumID: 1, Rating: 2},
		{AlbumID: 4, Rating: 5},
		{AlbumID: 5, Rating: 4},
	}

	segments := SegmentCatalog(albums, reviews, 2)

	if len(segments) == 0 || len(segments) > 2 {
		t.Fatalf("got %d segments, want 1..2", len(segments))
	}

	// Every album lands in exactly one segment.
	seen := make(map[int]int)
	for _, seg := range segments {
		if len(seg.Albums) == 0 {
			t.Error("empty segment returned")
		}
		if seg.Name == "" {
			t.Error("segment has no name")
		}
		for _, a := range seg.Albums {
			seen[a.ID]++
		}
	}
	if len(seen) != len(albums) {
		t.Errorf("segments cover %d albums, want %d", len(seen), len(albums))
	}
	for id, n := range seen {
		if n != 1 {
			t.Errorf("album %d appears in %d segments", id, n)
		}
	}

	// Segments ascend by average price.
	for i := 1; i < len(segments); i++ {
		if segments[i-1].AvgPrice > segments[i].AvgPrice {
			t.Errorf("segments not sorted by AvgPrice: %v then %v",
				segments[i-1].AvgPrice, segments[i].AvgPrice)
		}
	}
}

func TestDominantGenre(t *testing.T) {
	tests := []struct {
		name   string
		counts map[string]int
		want   string
	}{
		{"clear winner", map[string]int{"Rock": 3, "Jazz": 1}, "Rock"},
		{"tie breaks alphabetically", map[string]int{"Rock": 2, "Jazz": 2}, "Jazz"},
		{"empty", map[string]int{}, "Mixed"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := dominantGenre(tt.counts); got != tt.want {
				t.Errorf("dominantGenre() = %q, want %q", got, tt.want)
			}
		})
	}
}
