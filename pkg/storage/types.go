package storage

import "time"

// Change captures one difference between two syncs of the remote user list.
type Change struct {
	OccurredAt time.Time

	UserID uint64
	Email  string
	Status string

	ChangeType string // added | updated | removed
}

// StatusStats is the per-status breakdown of the snapshot.
type StatusStats struct {
	Status    string
	UserCount int
}
