package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/talkincode/qsadmin/pkg/audit"
	"github.com/talkincode/qsadmin/pkg/gateway"
	"github.com/talkincode/qsadmin/pkg/qsapi"
)

// newTestServer wires the admin API against a fake remote service.
func newTestServer(t *testing.T, remote http.HandlerFunc) http.Handler {
	t.Helper()
	ts := httptest.NewServer(remote)
	t.Cleanup(ts.Close)
	api := qsapi.New(gateway.New(ts.URL, gateway.Credential{Key: "k", Secret: "s"}))
	return New(api, "", "").Handler()
}

func postJSON(t *testing.T, h http.Handler, path, sessionID string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	buf, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	req := httptest.NewRequest("POST", path, bytes.NewReader(buf))
	if sessionID != "" {
		req.Header.Set("X-Session-ID", sessionID)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestHandleSelection_SignalsOnlyOnChange(t *testing.T) {
	h := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {})

	body := map[string]interface{}{
		"kind": "users",
		"rows": []map[string]interface{}{
			{"id": 5, "selected": true},
		},
	}

	var first, second struct {
		Changed  bool     `json:"changed"`
		Selected []uint64 `json:"selected"`
	}

	rec := postJSON(t, h, "/api/selection", "", body)
	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status %d", rec.Code)
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &first); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !first.Changed {
		t.Fatal("first snapshot must signal a change")
	}

	rec = postJSON(t, h, "/api/selection", "", body)
	if err := json.Unmarshal(rec.Body.Bytes(), &second); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if second.Changed {
		t.Fatal("identical snapshot must not signal a second change")
	}
	if len(second.Selected) != 1 || second.Selected[0] != 5 {
		t.Fatalf("expected selection {5}, got %v", second.Selected)
	}
}

func TestSessionsAreIsolated(t *testing.T) {
	h := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {})

	body := map[string]interface{}{
		"kind": "users",
		"rows": []map[string]interface{}{{"id": 1, "selected": true}},
	}
	postJSON(t, h, "/api/selection", "operator-a", body)

	// A different session must start empty.
	empty := map[string]interface{}{"kind": "users", "rows": []map[string]interface{}{}}
	rec := postJSON(t, h, "/api/selection", "operator-b", empty)

	var resp struct {
		Changed  bool     `json:"changed"`
		Selected []uint64 `json:"selected"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Changed {
		t.Fatal("empty snapshot over a fresh session must not signal a change")
	}
	if len(resp.Selected) != 0 {
		t.Fatalf("session b must not see session a's selection: %v", resp.Selected)
	}
}

func TestHandleBulkDelete_PartialFailure(t *testing.T) {
	h := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method == "DELETE" && r.URL.Path == "/v1/admin/users/2" {
			w.WriteHeader(http.StatusNotFound)
			w.Write([]byte(`{"error":"user not found"}`))
			return
		}
		w.Write([]byte(`{"message":"user deleted"}`))
	})

	postJSON(t, h, "/api/selection", "", map[string]interface{}{
		"kind": "users",
		"rows": []map[string]interface{}{
			{"id": 1, "selected": true},
			{"id": 2, "selected": true},
			{"id": 3, "selected": true},
		},
	})

	rec := postJSON(t, h, "/api/users/delete", "", map[string]interface{}{})
	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status %d: %s", rec.Code, rec.Body.String())
	}

	var result struct {
		SuccessCount int `json:"success_count"`
		Failures     []struct {
			ID      uint64 `json:"id"`
			Status  int    `json:"status"`
			Message string `json:"message"`
		} `json:"failures"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if result.SuccessCount != 2 {
		t.Fatalf("expected 2 successes, got %d", result.SuccessCount)
	}
	if len(result.Failures) != 1 || result.Failures[0].ID != 2 || result.Failures[0].Status != 404 {
		t.Fatalf("expected id 2 to fail with 404, got %+v", result.Failures)
	}

	// Selection is cleared after the bulk run, partial failure included.
	rec = postJSON(t, h, "/api/selection", "", map[string]interface{}{
		"kind": "users",
		"rows": []map[string]interface{}{},
	})
	var sel struct {
		Selected []uint64 `json:"selected"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &sel); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(sel.Selected) != 0 {
		t.Fatalf("selection must be empty after bulk delete, got %v", sel.Selected)
	}

	// Successes land in the session audit trail, newest first.
	req := httptest.NewRequest("GET", "/api/audit", nil)
	auditRec := httptest.NewRecorder()
	h.ServeHTTP(auditRec, req)

	var entries []audit.Entry
	if err := json.Unmarshal(auditRec.Body.Bytes(), &entries); err != nil {
		t.Fatalf("decode audit: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 audit entries, got %d", len(entries))
	}
	if entries[0].TargetID != 3 || entries[1].TargetID != 1 {
		t.Fatalf("expected audit newest first (3 then 1), got %+v", entries)
	}
}

func TestHandleBulkDelete_EmptySelection(t *testing.T) {
	h := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {})

	rec := postJSON(t, h, "/api/users/delete", "", map[string]interface{}{})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for empty selection, got %d", rec.Code)
	}
}

func TestHandleUsers_MasksKeysAndKeepsTotal(t *testing.T) {
	h := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"data":[
			{"id":1,"email":"alice@x.com","api_key":"qs_live_0123456789abcdef","status":"active","created_at":"2026-01-01T00:00:00Z","updated_at":"2026-01-01T00:00:00Z"},
			{"id":2,"email":"bob@y.com","api_key":"qs_live_fedcba9876543210","status":"active","created_at":"2026-01-02T00:00:00Z","updated_at":"2026-01-02T00:00:00Z"}
		],"total":44,"page":1,"limit":20}`))
	})

	req := httptest.NewRequest("GET", "/api/users?grep=alice", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	var resp struct {
		Data []struct {
			ID       uint64 `json:"id"`
			APIKey   string `json:"api_key"`
			Email    string `json:"email"`
			Selected bool   `json:"selected"`
		} `json:"data"`
		Total int64 `json:"total"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(resp.Data) != 1 || resp.Data[0].Email != "alice@x.com" {
		t.Fatalf("grep should narrow to alice's row, got %+v", resp.Data)
	}
	if resp.Data[0].APIKey != "qs_live_01..." {
		t.Fatalf("api key must be masked, got %q", resp.Data[0].APIKey)
	}
	// The local grep narrows display only; the server total stands.
	if resp.Total != 44 {
		t.Fatalf("total must stay the server count, got %d", resp.Total)
	}
}

func TestBasicAuth(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	t.Cleanup(ts.Close)
	api := qsapi.New(gateway.New(ts.URL, gateway.Credential{}))
	h := New(api, "admin", "secret").Handler()

	req := httptest.NewRequest("GET", "/api/audit", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without credentials, got %d", rec.Code)
	}

	req = httptest.NewRequest("GET", "/api/audit", nil)
	req.SetBasicAuth("admin", "secret")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 with credentials, got %d", rec.Code)
	}
}
