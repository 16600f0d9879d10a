package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/talkincode/qsadmin/internal/utils"
	"github.com/talkincode/qsadmin/pkg/audit"
	"github.com/talkincode/qsadmin/pkg/bulk"
	"github.com/talkincode/qsadmin/pkg/gateway"
	"github.com/talkincode/qsadmin/pkg/qsapi"
	"github.com/talkincode/qsadmin/pkg/session"
)

// userRow is one user with the session's selection flag attached, so the
// view can render checkboxes without a second round trip.
type userRow struct {
	qsapi.User
	Selected bool `json:"selected"`
}

type failureJSON struct {
	ID      uint64 `json:"id"`
	Status  int    `json:"status"`
	Message string `json:"message"`
}

type bulkJSON struct {
	SuccessCount int           `json:"success_count"`
	Failures     []failureJSON `json:"failures"`
}

func writeRemoteError(w http.ResponseWriter, err error) {
	var re *gateway.RemoteError
	if errors.As(err, &re) && re.Status != 0 {
		http.Error(w, re.Message, http.StatusBadGateway)
		return
	}
	http.Error(w, err.Error(), http.StatusInternalServerError)
}

func (s *Server) handleUsers(w http.ResponseWriter, r *http.Request) {
	sess := s.session(r)
	sess.mu.Lock()
	defer sess.mu.Unlock()

	q := r.URL.Query()
	page, _ := strconv.Atoi(q.Get("page"))
	limit, _ := strconv.Atoi(q.Get("limit"))

	opts := qsapi.UserListOptions{
		Page:   page,
		Limit:  limit,
		Search: q.Get("search"),
		Status: q.Get("status"),
	}

	result, err := s.API.GetUsers(r.Context(), opts)
	if err != nil {
		writeRemoteError(w, err)
		return
	}

	sess.UserPage.Store(session.PageParams{
		Page:   result.Page,
		Limit:  result.Limit,
		Search: opts.Search,
		Status: opts.Status,
	}, result.Data, result.Total)

	// The grep filter narrows what is displayed from this page only; the
	// total stays the server's count.
	displayed := session.FilterDisplayed(result.Data, q.Get("grep"), func(u qsapi.User) string {
		return u.Email
	})

	rows := make([]userRow, 0, len(displayed))
	for _, u := range displayed {
		u.APIKey = utils.MaskKey(u.APIKey)
		rows = append(rows, userRow{User: u, Selected: sess.Users.Has(u.ID)})
	}

	json.NewEncoder(w).Encode(map[string]interface{}{
		"data":  rows,
		"total": result.Total,
		"page":  result.Page,
		"limit": result.Limit,
	})
}

func (s *Server) handleOrders(w http.ResponseWriter, r *http.Request) {
	sess := s.session(r)
	sess.mu.Lock()
	defer sess.mu.Unlock()

	q := r.URL.Query()
	opts := qsapi.OrderListOptions{
		Symbol: q.Get("symbol"),
		Status: q.Get("status"),
		Side:   q.Get("side"),
		Type:   q.Get("type"),
	}

	orders, err := s.API.GetOrders(r.Context(), opts)
	if err != nil {
		writeRemoteError(w, err)
		return
	}

	sess.OrderPage.Store(session.PageParams{Status: opts.Status}, orders, int64(len(orders)))
	json.NewEncoder(w).Encode(orders)
}

type selectionRequest struct {
	Kind string            `json:"kind"` // users | orders
	Rows []session.ViewRow `json:"rows"`
}

func (s *Server) selectionFor(sess *liveSession, kind string) *session.SelectionSet {
	switch kind {
	case "orders":
		return sess.Orders
	default:
		return sess.Users
	}
}

// handleSelection applies one view snapshot to the session's selection set
// and tells the caller whether anything actually changed, so the view only
// redraws on a real change.
func (s *Server) handleSelection(w http.ResponseWriter, r *http.Request) {
	var req selectionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	sess := s.session(r)
	sess.mu.Lock()
	defer sess.mu.Unlock()

	set := s.selectionFor(sess, req.Kind)
	changed := set.ReconcileFromView(req.Rows)

	json.NewEncoder(w).Encode(map[string]interface{}{
		"changed":  changed,
		"selected": set.IDs(),
	})
}

func (s *Server) handleSelectionClear(w http.ResponseWriter, r *http.Request) {
	var req selectionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	sess := s.session(r)
	sess.mu.Lock()
	defer sess.mu.Unlock()

	s.selectionFor(sess, req.Kind).Clear()
	json.NewEncoder(w).Encode(map[string]interface{}{"selected": []uint64{}})
}

// handleBulkDelete deletes every currently selected user, one call per id.
// Partial failure is reported per id, successes land in the session audit
// trail, and the selection is cleared either way.
func (s *Server) handleBulkDelete(w http.ResponseWriter, r *http.Request) {
	sess := s.session(r)
	sess.mu.Lock()
	defer sess.mu.Unlock()

	ids := sess.Users.IDs()
	if len(ids) == 0 {
		http.Error(w, "no users selected", http.StatusBadRequest)
		return
	}

	result := bulk.Run(ids, 1, func(id uint64) error {
		return s.API.DeleteUser(r.Context(), id)
	})

	recordBulk(sess.Audit, "delete_user", nil, result, ids)
	sess.Users.Clear()

	json.NewEncoder(w).Encode(toBulkJSON(result))
}

func (s *Server) handleBulkCancel(w http.ResponseWriter, r *http.Request) {
	sess := s.session(r)
	sess.mu.Lock()
	defer sess.mu.Unlock()

	ids := sess.Orders.IDs()
	if len(ids) == 0 {
		http.Error(w, "no orders selected", http.StatusBadRequest)
		return
	}

	result := bulk.Run(ids, 1, func(id uint64) error {
		return s.API.CancelOrder(r.Context(), id)
	})

	recordBulk(sess.Audit, "cancel_order", nil, result, ids)
	sess.Orders.Clear()

	json.NewEncoder(w).Encode(toBulkJSON(result))
}

func (s *Server) handleAudit(w http.ResponseWriter, r *http.Request) {
	sess := s.session(r)
	sess.mu.Lock()
	defer sess.mu.Unlock()

	json.NewEncoder(w).Encode(sess.Audit.Entries())
}

// recordBulk appends one audit entry per successful mutation.
func recordBulk(rec *audit.Recorder, operation string, params map[string]string, result bulk.Result, ids []uint64) {
	failed := make(map[uint64]bool, len(result.Failures))
	for _, f := range result.Failures {
		failed[f.ID] = true
	}
	for _, id := range ids {
		if failed[id] {
			continue
		}
		if err := rec.Record(audit.Entry{
			Timestamp: time.Now(),
			Operation: operation,
			TargetID:  id,
			Params:    params,
			Outcome:   "ok",
		}); err != nil {
			utils.Log.Warn("audit record failed: ", err)
		}
	}
}

func toBulkJSON(result bulk.Result) bulkJSON {
	out := bulkJSON{SuccessCount: result.SuccessCount, Failures: []failureJSON{}}
	for _, f := range result.Failures {
		out.Failures = append(out.Failures, failureJSON{ID: f.ID, Status: f.Err.Status, Message: f.Err.Message})
	}
	return out
}
