package session

import (
	"testing"

	"github.com/talkincode/qsadmin/pkg/qsapi"
)

func TestFilterDisplayed_CaseInsensitive(t *testing.T) {
	users := []qsapi.User{
		{ID: 1, Email: "Alice@Example.com"},
		{ID: 2, Email: "bob@example.com"},
		{ID: 3, Email: "carol@other.net"},
	}

	got := FilterDisplayed(users, "EXAMPLE.COM", func(u qsapi.User) string { return u.Email })
	if len(got) != 2 {
		t.Fatalf("expected 2 matches, got %d", len(got))
	}
	if got[0].ID != 1 || got[1].ID != 2 {
		t.Fatalf("expected server order preserved, got %v", got)
	}
}

func TestFilterDisplayed_EmptyQueryReturnsAll(t *testing.T) {
	users := []qsapi.User{{ID: 1}, {ID: 2}}
	got := FilterDisplayed(users, "", func(u qsapi.User) string { return u.Email })
	if len(got) != 2 {
		t.Fatalf("expected all items back, got %d", len(got))
	}
}

func TestFilterDisplayed_DoesNotTouchTotal(t *testing.T) {
	var cache PageCache[qsapi.User]
	items := []qsapi.User{
		{ID: 1, Email: "a@x.com"},
		{ID: 2, Email: "b@y.com"},
	}
	cache.Store(PageParams{Page: 1, Limit: 20}, items, 57)

	narrowed := FilterDisplayed(cache.Items(), "a@x", func(u qsapi.User) string { return u.Email })
	if len(narrowed) != 1 {
		t.Fatalf("expected 1 displayed row, got %d", len(narrowed))
	}
	// The local filter narrows display only; the server count stands.
	if cache.Total() != 57 {
		t.Fatalf("total must stay the server's count, got %d", cache.Total())
	}
}

func TestPageCache_Invalidate(t *testing.T) {
	var cache PageCache[qsapi.User]
	cache.Store(PageParams{Page: 3}, []qsapi.User{{ID: 1}}, 1)
	if !cache.Valid() {
		t.Fatal("expected cache valid after store")
	}
	cache.Invalidate()
	if cache.Valid() || len(cache.Items()) != 0 {
		t.Fatal("expected empty cache after invalidate")
	}
}
