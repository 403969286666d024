// Package api exposes the server's HTTP surface: the websocket endpoint,
// a liveness probe, and a small read-only REST view of live sessions for
// operators. Gameplay itself happens only over the websocket.
package api

import (
	"encoding/json"
	"net/http"
	"sort"

	"github.com/gorilla/mux"

	"seabattle/game/session"
)

// Server routes HTTP requests to the session registry and the websocket
// transport.
type Server struct {
	sessions  *session.Manager
	wsHandler http.HandlerFunc
	router    *mux.Router
}

// NewServer creates the HTTP server around the session manager. wsHandler
// serves the /ws endpoint.
func NewServer(sessions *session.Manager, wsHandler http.HandlerFunc) *Server {
	s := &Server{
		sessions:  sessions,
		wsHandler: wsHandler,
		router:    mux.NewRouter(),
	}
	s.setupRoutes()
	return s
}

// setupRoutes configures all HTTP routes.
func (s *Server) setupRoutes() {
	s.router.HandleFunc("/health", s.handleHealth).Methods("GET")

	api := s.router.PathPrefix("/api").Subrouter()
	api.HandleFunc("/sessions", s.handleListSessions).Methods("GET")
	api.HandleFunc("/sessions/{code}", s.handleGetSession).Methods("GET")

	s.router.HandleFunc("/ws", s.wsHandler)
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"status":   "ok",
		"sessions": s.sessions.Count(),
	})
}

func (s *Server) handleListSessions(w http.ResponseWriter, r *http.Request) {
	live := s.sessions.List()

	summaries := make([]session.Summary, 0, len(live))
	for _, sess := range live {
		summaries = append(summaries, sess.Snapshot())
	}
	sort.Slice(summaries, func(i, j int) bool {
		return summaries[i].CreatedAt.Before(summaries[j].CreatedAt)
	})

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"count":    len(summaries),
		"sessions": summaries,
	})
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	code := mux.Vars(r)["code"]

	sess, ok := s.sessions.GetSession(code)
	if !ok {
		respondError(w, http.StatusNotFound, "session not found")
		return
	}
	respondJSON(w, http.StatusOK, sess.Snapshot())
}
