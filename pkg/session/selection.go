package session

import "sort"

// ViewRow is one rendered row of an entity table: the id it displays and
// whether the operator has its checkbox ticked.
type ViewRow struct {
	ID       uint64 `json:"id"`
	Selected bool   `json:"selected"`
}

// SelectionSet tracks which entity ids of one kind the operator has marked.
// Membership is independent of whatever page or filter is currently on
// screen: pagination and re-fetches never empty it, only Clear does.
type SelectionSet struct {
	ids map[uint64]struct{}
}

func NewSelectionSet() *SelectionSet {
	return &SelectionSet{ids: make(map[uint64]struct{})}
}

// Toggle adds the id if absent, removes it if present.
func (s *SelectionSet) Toggle(id uint64) {
	if _, ok := s.ids[id]; ok {
		delete(s.ids, id)
	} else {
		s.ids[id] = struct{}{}
	}
}

func (s *SelectionSet) Add(id uint64) {
	s.ids[id] = struct{}{}
}

func (s *SelectionSet) Has(id uint64) bool {
	_, ok := s.ids[id]
	return ok
}

func (s *SelectionSet) Len() int {
	return len(s.ids)
}

// IDs returns the selected ids in ascending order for stable output.
func (s *SelectionSet) IDs() []uint64 {
	out := make([]uint64, 0, len(s.ids))
	for id := range s.ids {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Clear empties the set unconditionally. Called after a bulk mutation
// completes, successful or not, and on explicit operator action.
func (s *SelectionSet) Clear() {
	s.ids = make(map[uint64]struct{})
}

// ReconcileFromView replaces the set with exactly the ticked ids from the
// most recent view render, but only when that actually changes membership.
// The returned flag tells a reactive caller whether to redraw; an unchanged
// snapshot must never signal a refresh, or the render loop never settles.
func (s *SelectionSet) ReconcileFromView(rows []ViewRow) bool {
	next := make(map[uint64]struct{})
	for _, row := range rows {
		if row.Selected {
			next[row.ID] = struct{}{}
		}
	}

	if sameIDs(s.ids, next) {
		return false
	}
	s.ids = next
	return true
}

func sameIDs(a, b map[uint64]struct{}) bool {
	if len(a) != len(b) {
		return false
	}
	for id := range a {
		if _, ok := b[id]; !ok {
			return false
		}
	}
	return true
}
