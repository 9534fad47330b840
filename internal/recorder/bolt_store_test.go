package recorder

import (
	"path/filepath"
	"testing"
	"time"
)

func newTestStore(t *testing.T, opts Options) Store {
	t.Helper()
	store, err := NewStore("bbolt", filepath.Join(t.TempDir(), "exchanges.db"), opts)
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestSaveAndListExchangesPerCheck(t *testing.T) {
	store := newTestStore(t, Options{})

	exchanges := []Exchange{
		{ID: "e1", Suite: "users", Check: "user_by_id", Method: "GET", URL: "/users/1", StatusCode: 500, Failure: "status mismatch"},
		{ID: "e2", Suite: "users", Check: "user_by_id", Method: "GET", URL: "/users/1", StatusCode: 502, Failure: "status mismatch"},
		{ID: "e3", Suite: "posts", Check: "posts_list", Method: "GET", URL: "/posts", StatusCode: 404, Failure: "status mismatch"},
	}
	for _, ex := range exchanges {
		if err := store.SaveExchange(ex); err != nil {
			t.Fatalf("SaveExchange(%s): %v", ex.ID, err)
		}
	}

	got, err := store.ExchangesFor("user_by_id")
	if err != nil {
		t.Fatalf("ExchangesFor: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 exchanges for user_by_id, got %d", len(got))
	}
	for _, ex := range got {
		if ex.Check != "user_by_id" {
			t.Fatalf("wrong check in listing: %+v", ex)
		}
		if ex.RecordedAt.IsZero() {
			t.Fatalf("RecordedAt not stamped: %+v", ex)
		}
	}

	other, err := store.ExchangesFor("posts_list")
	if err != nil {
		t.Fatalf("ExchangesFor: %v", err)
	}
	if len(other) != 1 || other[0].ID != "e3" {
		t.Fatalf("posts_list listing wrong: %+v", other)
	}
}

func TestExpiredExchangesAreNotListed(t *testing.T) {
	// A nanosecond TTL truncates to the current second, so the entry is
	// already expired when read back.
	store := newTestStore(t, Options{ExchangeTTL: time.Nanosecond, CleanupInterval: time.Hour})

	if err := store.SaveExchange(Exchange{ID: "old", Check: "user_by_id"}); err != nil {
		t.Fatalf("SaveExchange: %v", err)
	}

	time.Sleep(10 * time.Millisecond)
	got, err := store.ExchangesFor("user_by_id")
	if err != nil {
		t.Fatalf("ExchangesFor: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("expired exchange listed: %+v", got)
	}
}

func TestNoneStoreIsInert(t *testing.T) {
	store, err := NewStore("none", "", Options{})
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	if err := store.SaveExchange(Exchange{ID: "x", Check: "c"}); err != nil {
		t.Fatalf("SaveExchange: %v", err)
	}
	got, err := store.ExchangesFor("c")
	if err != nil || got != nil {
		t.Fatalf("noop store should return nothing: %v %v", got, err)
	}
}

func TestNewStoreRejectsUnknownType(t *testing.T) {
	if _, err := NewStore("redis", "", Options{}); err == nil {
		t.Fatalf("expected error for unsupported type")
	}
}

func TestBBoltStoreRequiresPath(t *testing.T) {
	if _, err := NewStore("bbolt", " ", Options{}); err == nil {
		t.Fatalf("expected error for empty path")
	}
}
