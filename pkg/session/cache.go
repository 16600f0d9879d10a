package session

import "strings"

// PageParams are the server-side query inputs that produced a cached page.
type PageParams struct {
	Page   int
	Limit  int
	Search string
	Status string
}

// PageCache holds the last fetched page of one listable entity kind together
// with the parameters that produced it. No background process refreshes it;
// the orchestrating caller decides when to re-fetch or invalidate.
type PageCache[T any] struct {
	valid  bool
	params PageParams
	items  []T
	total  int64
}

func (c *PageCache[T]) Store(params PageParams, items []T, total int64) {
	c.valid = true
	c.params = params
	c.items = items
	c.total = total
}

func (c *PageCache[T]) Valid() bool {
	return c.valid
}

// Items returns the cached page in server order.
func (c *PageCache[T]) Items() []T {
	return c.items
}

func (c *PageCache[T]) Params() PageParams {
	return c.params
}

// Total is the server-reported count across all pages, not the length of
// this one.
func (c *PageCache[T]) Total() int64 {
	return c.total
}

func (c *PageCache[T]) Invalidate() {
	var zero PageCache[T]
	*c = zero
}

// FilterDisplayed narrows an already-fetched page with a case-insensitive
// substring match over one display field. This is purely client-side: it
// never re-fetches and never changes the server-reported total, it only
// shrinks what is shown from the page in hand.
func FilterDisplayed[T any](items []T, query string, field func(T) string) []T {
	if query == "" {
		return items
	}
	q := strings.ToLower(query)
	out := make([]T, 0, len(items))
	for _, item := range items {
		if strings.Contains(strings.ToLower(field(item)), q) {
			out = append(out, item)
		}
	}
	return out
}
