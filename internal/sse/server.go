// Package sse keeps one server-sent event stream per connected browser tab.
package sse

import (
	"log/slog"
	"net/http"
	"sync"

	"github.com/julienschmidt/httprouter"
	gonanoid "github.com/matoous/go-nanoid/v2"
)

type Server struct {
	mux                 sync.RWMutex
	NewSessionHandler   func(session *Session)
	CloseSessionHandler func(session *Session)
	sessions            map[string]*Session
	logger              *slog.Logger
}

func New(logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}

	return &Server{
		sessions: make(map[string]*Session),
		logger:   logger,
	}
}

func (s *Server) HandleFunc() httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		id, err := gonanoid.New()
		if err != nil {
			s.logger.Error("new session id", "err", err)
			http.Error(w, "Internal server error.", http.StatusInternalServerError)
			return
		}

		session := newSession(id, s.logger)

		s.mux.Lock()
		s.sessions[id] = session
		s.mux.Unlock()

		session.Send(&Event{Name: SessionEvent, Data: id})

		if s.NewSessionHandler != nil {
			s.NewSessionHandler(session)
		}

		s.logger.Debug("session opened", "session", id)

		session.listen(w, r)

		s.mux.Lock()
		delete(s.sessions, id)
		s.mux.Unlock()

		if s.CloseSessionHandler != nil {
			s.CloseSessionHandler(session)
		}

		s.logger.Debug("session closed", "session", id)
	}
}

func (s *Server) Get(id string) (*Session, bool) {
	s.mux.RLock()
	defer s.mux.RUnlock()

	session, ok := s.sessions[id]

	return session, ok
}

func (s *Server) Len() int {
	s.mux.RLock()
	defer s.mux.RUnlock()
	return len(s.sessions)
}
