// Package server exposes a small authenticated JSON API that bridges a
// browser view to the admin core. Live lists are proxied straight from the
// remote service; selection and audit state live in per-session memory here
// and die with the process.
package server

import (
	"net/http"
	"sync"

	"github.com/talkincode/qsadmin/internal/utils"
	"github.com/talkincode/qsadmin/pkg/qsapi"
	"github.com/talkincode/qsadmin/pkg/session"
)

type Server struct {
	API      *qsapi.Client
	Username string
	Password string

	mu       sync.Mutex
	sessions map[string]*liveSession
}

// liveSession serializes operations on one operator session. Requests for
// different sessions never contend with each other.
type liveSession struct {
	mu sync.Mutex
	*session.Session
}

func New(api *qsapi.Client, user, pass string) *Server {
	return &Server{
		API:      api,
		Username: user,
		Password: pass,
		sessions: make(map[string]*liveSession),
	}
}

func (s *Server) Start(addr string) error {
	utils.Log.Info("Starting admin API on ", addr)
	return http.ListenAndServe(addr, s.Handler())
}

func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/users", s.basicAuth(s.handleUsers))
	mux.HandleFunc("GET /api/orders", s.basicAuth(s.handleOrders))
	mux.HandleFunc("POST /api/selection", s.basicAuth(s.handleSelection))
	mux.HandleFunc("POST /api/selection/clear", s.basicAuth(s.handleSelectionClear))
	mux.HandleFunc("POST /api/users/delete", s.basicAuth(s.handleBulkDelete))
	mux.HandleFunc("POST /api/orders/cancel", s.basicAuth(s.handleBulkCancel))
	mux.HandleFunc("GET /api/audit", s.basicAuth(s.handleAudit))

	return mux
}

// session returns the state for one operator connection, creating it on
// first use. Sessions are keyed by the X-Session-ID header so concurrent
// operators never share selection state.
func (s *Server) session(r *http.Request) *liveSession {
	key := r.Header.Get("X-Session-ID")
	if key == "" {
		key = "default"
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[key]
	if !ok {
		sess = &liveSession{Session: session.New()}
		s.sessions[key] = sess
	}
	return sess
}

func (s *Server) basicAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if s.Username == "" && s.Password == "" {
			next(w, r)
			return
		}
		user, pass, ok := r.BasicAuth()
		if !ok || user != s.Username || pass != s.Password {
			w.Header().Set("WWW-Authenticate", `Basic realm="Restricted"`)
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
		next(w, r)
	}
}
