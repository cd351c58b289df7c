package enrich

import (
	"context"
	"sync/atomic"
	"testing"

	"albumshop/internal/shopapi"
)

// fakeLookup maps ids to usernames; ids in fail reject the lookup.
type fakeLookup struct {
	users map[int]string
	fail  map[int]bool
	calls atomic.Int32
}

func (f *fakeLookup) GetUser(_ context.Context, id int) (shopapi.User, error) {
	f.calls.Add(1)
	if f.fail[id] {
		return shopapi.User{}, &shopapi.RemoteError{StatusCode: 404, Message: "User not found"}
	}
	return shopapi.User{ID: id, Username: f.users[id]}, nil
}

func TestOrders(t *testing.T) {
	lookup := &fakeLookup{
		users: map[int]string{1: "alice", 2: "bob"},
	}
	orders := []shopapi.Order{
		{ID: 10, UserID: 1},
		{ID: 11, UserID: 2},
		{ID: 12, UserID: 1},
	}

	enriched := Orders(context.Background(), lookup, orders)

	if len(enriched) != 3 {
		t.Fatalf("got %d orders, want 3", len(enriched))
	}
	wantNames := []string{"alice", "bob", "alice"}
	for i, e := range enriched {
		if e.ID != orders[i].ID {
			t.Errorf("enriched[%d].ID = %d, input order not preserved", i, e.ID)
		}
		if e.Username != wantNames[i] {
			t.Errorf("enriched[%d].Username = %q, want %q", i, e.Username, wantNames[i])
		}
	}
}

func TestOrders_FailedLookupIsolated(t *testing.T) {
	lookup := &fakeLookup{
		users: map[int]string{1: "alice"},
		fail:  map[int]bool{7: true},
	}
	orders := []shopapi.Order{
		{ID: 10, UserID: 7},
		{ID: 11, UserID: 1},
	}

	enriched := Orders(context.Background(), lookup, orders)

	if enriched[0].Username != UnknownUsername {
		t.Errorf("failed lookup username = %q, want %q", enriched[0].Username, UnknownUsername)
	}
	if enriched[1].Username != "alice" {
		t.Errorf("sibling record username = %q, want alice", enriched[1].Username)
	}
}

func TestOrders_DistinctLookupPerUser(t *testing.T) {
	lookup := &fakeLookup{users: map[int]string{1: "alice"}}
	orders := []shopapi.Order{
		{UserID: 1}, {UserID: 1}, {UserID: 1}, {UserID: 1},
	}

	Orders(context.Background(), lookup, orders)

	if calls := lookup.calls.Load(); calls != 1 {
		t.Errorf("lookup called %d times for one distinct user, want 1", calls)
	}
}

func TestOrders_Empty(t *testing.T) {
	lookup := &fakeLookup{}
	enriched := Orders(context.Background(), lookup, nil)

	if len(enriched) != 0 {
		t.Errorf("got %d orders for empty input", len(enriched))
	}
	if lookup.calls.Load() != 0 {
		t.Error("lookup called for empty input")
	}
}

func TestOrders_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	lookup := &fakeLookup{users: map[int]string{1: "alice"}}
	enriched := Orders(ctx, lookup, []shopapi.Order{{UserID: 1}})

	// A cancelled context degrades to the placeholder, never an error.
	if enriched[0].Username != UnknownUsername {
		t.Errorf("Username = %q, want %q on cancelled context", enriched[0].Username, UnknownUsername)
	}
}

func TestReviews(t *testing.T) {
	lookup := &fakeLookup{
		users: map[int]string{3: "carol"},
		fail:  map[int]bool{4: true},
	}
	reviews := []shopapi.Review{
		{ID: 1, UserID: 3, Rating: 5},
		{ID: 2, UserID: 4, Rating: 2},
	}

	enriched := Reviews(context.Background(), lookup, reviews)

	if enriched[0].Username != "carol" {
		t.Errorf("enriched[0].Username = %q, want carol", enriched[0].Username)
	}
	if enriched[1].Username != UnknownUsername {
		t.Errorf("enriched[1].Username = %q, want %q", enriched[1].Username, UnknownUsername)
	}
	if enriched[1].Rating != 2 {
		t.Errorf("review fields not carried through: %+v", enriched[1])
	}
}

func TestReviews_MissingUsernameFallsBack(t *testing.T) {
	// A 2xx lookup with an empty username still gets the placeholder.
	lookup := &fakeLookup{users: map[int]string{5: ""}}
	enriched := Reviews(context.Background(), lookup, []shopapi.Review{{UserID: 5}})

	if enriched[0].Username != UnknownUsername {
		t.Errorf("Username = %q, want %q", enriched[0].Username, UnknownUsername)
	}
}
