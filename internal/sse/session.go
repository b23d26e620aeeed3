package sse

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
)

const sessionBuffer = 64

type Session struct {
	id       string
	messages chan string
	done     chan struct{}
	once     sync.Once
	logger   *slog.Logger
}

func newSession(id string, logger *slog.Logger) *Session {
	return &Session{
		id:       id,
		messages: make(chan string, sessionBuffer),
		done:     make(chan struct{}),
		logger:   logger,
	}
}

func (s *Session) ID() string {
	return s.id
}

// Send queues e for the client. Events are written in the order they were
// sent; once the client is gone Send is a no-op.
func (s *Session) Send(e *Event) {
	data, err := json.Marshal(e.Data)
	if err != nil {
		s.logger.Error("encode sse event", "session", s.id, "event", e.Name, "err", err)
		return
	}

	message := fmt.Sprintf("event: %s\ndata: %s\n\n", e.Name, data)

	select {
	case s.messages <- message:
	case <-s.done:
	}
}

func (s *Session) close() {
	s.once.Do(func() { close(s.done) })
}

func (s *Session) listen(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	defer s.close()

	flusher, _ := w.(http.Flusher)
	if flusher != nil {
		flusher.Flush()
	}

	for {
		select {
		case message := <-s.messages:
			if _, err := fmt.Fprint(w, message); err != nil {
				return
			}
			if flusher != nil {
				flusher.Flush()
			}

		case <-r.Context().Done():
			return
		}
	}
}
