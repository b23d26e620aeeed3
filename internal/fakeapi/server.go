// Package fakeapi is an in-memory stand-in for the people and todos REST API.
// It serves the same routes and response shapes so the front end can be run
// and tested without the real backend.
package fakeapi

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/julienschmidt/httprouter"
)

type Collection struct {
	Name      string
	Fields    []string
	Clearable bool
}

// Request is one request received by the server, kept for assertions.
type Request struct {
	Method string
	Path   string
	Body   string
}

type Options struct {
	Collections []Collection
	Now         func() time.Time
	Logger      *slog.Logger
}

type Server struct {
	mux         sync.RWMutex
	collections map[string]*collection
	requests    []Request
	fault       int
	now         func() time.Time
	logger      *slog.Logger
	router      *httprouter.Router
}

type collection struct {
	Collection
	records []*record
}

type record struct {
	id        string
	fields    map[string]string
	timestamp time.Time
}

func (r *record) MarshalJSON() ([]byte, error) {
	doc := make(map[string]any, len(r.fields)+2)
	for key, value := range r.fields {
		doc[key] = value
	}
	doc["id"] = r.id
	doc["timestamp"] = r.timestamp

	return json.Marshal(doc)
}

func New(options Options) *Server {
	s := &Server{
		collections: make(map[string]*collection),
		now:         options.Now,
		logger:      options.Logger,
	}

	if s.now == nil {
		s.now = time.Now
	}

	if s.logger == nil {
		s.logger = slog.Default()
	}

	for _, c := range options.Collections {
		s.collections[c.Name] = &collection{Collection: c}
	}

	router := httprouter.New()
	router.GET("/api/:collection/", s.list())
	router.POST("/api/:collection/", s.create())
	router.DELETE("/api/:collection/", s.clear())
	router.PUT("/api/:collection/:id", s.update())
	router.DELETE("/api/:collection/:id", s.delete())
	router.GET("/health", func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		w.WriteHeader(http.StatusOK)
	})
	s.router = router

	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var body []byte
	if r.Body != nil {
		body, _ = readAll(r)
	}

	s.mux.Lock()
	s.requests = append(s.requests, Request{Method: r.Method, Path: r.URL.Path, Body: string(body)})
	fault := s.fault
	s.mux.Unlock()

	if fault != 0 {
		http.Error(w, http.StatusText(fault), fault)
		return
	}

	s.router.ServeHTTP(w, r)
}

// Fault makes every following request fail with status. Zero clears it.
func (s *Server) Fault(status int) {
	s.mux.Lock()
	defer s.mux.Unlock()
	s.fault = status
}

func (s *Server) Requests() []Request {
	s.mux.RLock()
	defer s.mux.RUnlock()
	return append([]Request(nil), s.requests...)
}

// Seed stores a record directly, bypassing HTTP. It returns the new id.
func (s *Server) Seed(name string, fields map[string]string) string {
	s.mux.Lock()
	defer s.mux.Unlock()

	c, ok := s.collections[name]
	if !ok {
		return ""
	}

	return s.insert(c, fields).id
}

// Records returns the stored records of a collection as JSON-ready maps.
func (s *Server) Records(name string) []map[string]any {
	s.mux.RLock()
	defer s.mux.RUnlock()

	c, ok := s.collections[name]
	if !ok {
		return nil
	}

	out := make([]map[string]any, 0, len(c.records))
	for _, r := range c.records {
		doc := map[string]any{"id": r.id, "timestamp": r.timestamp}
		for key, value := range r.fields {
			doc[key] = value
		}
		out = append(out, doc)
	}

	return out
}

func (s *Server) insert(c *collection, fields map[string]string) *record {
	r := &record{
		id:        uuid.NewString(),
		fields:    pick(c.Fields, fields),
		timestamp: s.now().UTC(),
	}
	c.records = append(c.records, r)

	return r
}

func (s *Server) lookup(p httprouter.Params) (*collection, bool) {
	c, ok := s.collections[p.ByName("collection")]
	return c, ok
}

func (s *Server) list() httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, p httprouter.Params) {
		s.mux.RLock()
		defer s.mux.RUnlock()

		c, ok := s.lookup(p)
		if !ok {
			http.Error(w, "Not found.", http.StatusNotFound)
			return
		}

		records := c.records
		if records == nil {
			records = []*record{}
		}

		s.writeJSON(w, http.StatusOK, records)
	}
}

func (s *Server) create() httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, p httprouter.Params) {
		input, err := decodeFields(r)
		if err != nil {
			http.Error(w, "Bad request.", http.StatusBadRequest)
			return
		}

		s.mux.Lock()
		defer s.mux.Unlock()

		c, ok := s.lookup(p)
		if !ok {
			http.Error(w, "Not found.", http.StatusNotFound)
			return
		}

		s.writeJSON(w, http.StatusCreated, s.insert(c, input))
	}
}

func (s *Server) update() httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, p httprouter.Params) {
		input, err := decodeFields(r)
		if err != nil {
			http.Error(w, "Bad request.", http.StatusBadRequest)
			return
		}

		s.mux.Lock()
		defer s.mux.Unlock()

		c, ok := s.lookup(p)
		if !ok {
			http.Error(w, "Not found.", http.StatusNotFound)
			return
		}

		for _, rec := range c.records {
			if rec.id == p.ByName("id") {
				rec.fields = pick(c.Fields, input)
				s.writeJSON(w, http.StatusOK, rec)
				return
			}
		}

		http.Error(w, "Not found.", http.StatusNotFound)
	}
}

func (s *Server) delete() httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, p httprouter.Params) {
		s.mux.Lock()
		defer s.mux.Unlock()

		c, ok := s.lookup(p)
		if !ok {
			http.Error(w, "Not found.", http.StatusNotFound)
			return
		}

		for i, rec := range c.records {
			if rec.id == p.ByName("id") {
				c.records = append(c.records[:i:i], c.records[i+1:]...)
				s.writeJSON(w, http.StatusOK, map[string]bool{"success": true})
				return
			}
		}

		http.Error(w, "Not found.", http.StatusNotFound)
	}
}

func (s *Server) clear() httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, p httprouter.Params) {
		s.mux.Lock()
		defer s.mux.Unlock()

		c, ok := s.lookup(p)
		if !ok {
			http.Error(w, "Not found.", http.StatusNotFound)
			return
		}

		if !c.Clearable {
			http.Error(w, "Method not allowed.", http.StatusMethodNotAllowed)
			return
		}

		c.records = nil
		s.writeJSON(w, http.StatusOK, map[string]bool{"success": true})
	}
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Add("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("write response", "err", err)
	}
}

func pick(allowed []string, input map[string]string) map[string]string {
	fields := make(map[string]string, len(allowed))
	for _, key := range allowed {
		fields[key] = input[key]
	}
	return fields
}
