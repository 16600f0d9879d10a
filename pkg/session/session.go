// Package session holds all state scoped to one operator session: which rows
// are selected, the last fetched page per entity kind, and the local audit
// trail. None of it is shared across sessions and none of it survives the
// process.
package session

import (
	"github.com/talkincode/qsadmin/pkg/audit"
	"github.com/talkincode/qsadmin/pkg/qsapi"
)

// Session is the explicit context object passed to every operation that
// touches selection or cached pages. Concurrent operator connections each
// get their own instance; there is no process-wide singleton.
type Session struct {
	Users  *SelectionSet
	Orders *SelectionSet

	UserPage    PageCache[qsapi.User]
	OrderPage   PageCache[qsapi.Order]
	BalancePage PageCache[qsapi.UserBalance]

	Audit *audit.Recorder
}

func New() *Session {
	return &Session{
		Users:  NewSelectionSet(),
		Orders: NewSelectionSet(),
		Audit:  audit.NewRecorder(),
	}
}
