// Package web hosts the people and todos manager page. Every connected tab
// gets its own bus and controllers; redraws and alerts reach the tab over
// server-sent events and user input comes back as small form posts.
package web

import (
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/julienschmidt/httprouter"

	"github.com/timada-org/tablesync/internal/bus"
	"github.com/timada-org/tablesync/internal/controller"
	"github.com/timada-org/tablesync/internal/entity"
	"github.com/timada-org/tablesync/internal/sse"
)

const (
	RenderEvent = "render"
	AlertEvent  = "alert"
)

var knownActions = map[string]bool{
	"create": true,
	"update": true,
	"delete": true,
	"clear":  true,
	"reset":  true,
	"select": true,
}

type RenderData struct {
	Entity string `json:"entity"`
	HTML   string `json:"html"`
}

type AlertData struct {
	Entity  string `json:"entity"`
	Message string `json:"message"`
}

// actions is what a tab can ask of a controller, whatever its record type.
type actions interface {
	SetField(name, value string) error
	Reset()
	Select(id string)
	Create()
	Update()
	Delete()
	ClearAll()
}

type tab struct {
	bus         *bus.Bus
	controllers map[string]actions
	clearable   map[string]bool
	closers     []func()
}

func (t *tab) close() {
	for _, closer := range t.closers {
		closer()
	}
	t.bus.Close()
}

type Options struct {
	// APIURL is the origin of the REST API, e.g. "http://localhost:8080".
	APIURL string
	Client *http.Client
	Logger *slog.Logger
	Now    func() time.Time
}

type Server struct {
	mux     sync.RWMutex
	options Options
	logger  *slog.Logger
	events  *sse.Server
	tabs    map[string]*tab
	router  *httprouter.Router
}

func New(options Options) *Server {
	logger := options.Logger
	if logger == nil {
		logger = slog.Default()
	}

	s := &Server{
		options: options,
		logger:  logger,
		events:  sse.New(logger),
		tabs:    make(map[string]*tab),
	}

	s.events.NewSessionHandler = s.open
	s.events.CloseSessionHandler = s.close

	router := httprouter.New()
	router.GET("/", s.page())
	router.GET("/health", s.health())
	router.GET("/events", s.events.HandleFunc())
	router.POST("/sessions/:session/:entity/:action", s.action())
	s.router = router

	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Tabs returns the number of connected tabs.
func (s *Server) Tabs() int {
	s.mux.RLock()
	defer s.mux.RUnlock()
	return len(s.tabs)
}

func (s *Server) open(session *sse.Session) {
	t := &tab{bus: bus.New(), controllers: make(map[string]actions), clearable: make(map[string]bool)}

	if err := mount(s, t, session, entity.People); err != nil {
		s.logger.Error("mount controller", "session", session.ID(), "entity", entity.People.Name, "err", err)
	}

	if err := mount(s, t, session, entity.Todos); err != nil {
		s.logger.Error("mount controller", "session", session.ID(), "entity", entity.Todos.Name, "err", err)
	}

	s.mux.Lock()
	s.tabs[session.ID()] = t
	s.mux.Unlock()
}

func (s *Server) close(session *sse.Session) {
	s.mux.Lock()
	t, ok := s.tabs[session.ID()]
	delete(s.tabs, session.ID())
	s.mux.Unlock()

	if ok {
		t.close()
	}
}

func mount[T any](s *Server, t *tab, session *sse.Session, e entity.Entity[T]) error {
	c, _, err := controller.Mount(e, controller.MountOptions{
		BaseURL: s.options.APIURL,
		Bus:     t.bus,
		Client:  s.options.Client,
		Logger:  s.logger.With("session", session.ID()),
		Now:     s.options.Now,
		Alerter: controller.AlertFunc(func(message string) {
			session.Send(&sse.Event{Name: AlertEvent, Data: AlertData{Entity: e.Name, Message: message}})
		}),
		OnRender: func(html string) {
			session.Send(&sse.Event{Name: RenderEvent, Data: RenderData{Entity: e.Name, HTML: html}})
		},
	})
	if err != nil {
		return err
	}

	t.controllers[e.Name] = c
	t.clearable[e.Name] = e.Clearable
	t.closers = append(t.closers, c.Close)

	return nil
}

func (s *Server) health() httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		w.WriteHeader(http.StatusOK)
	}
}

func (s *Server) action() httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, p httprouter.Params) {
		s.mux.RLock()
		t, ok := s.tabs[p.ByName("session")]
		s.mux.RUnlock()

		if !ok {
			http.Error(w, "Not found.", http.StatusNotFound)
			return
		}

		c, ok := t.controllers[p.ByName("entity")]
		if !ok {
			http.Error(w, "Bad request.", http.StatusBadRequest)
			return
		}

		action := p.ByName("action")
		if !knownActions[action] || (action == "clear" && !t.clearable[p.ByName("entity")]) {
			http.Error(w, "Bad request.", http.StatusBadRequest)
			return
		}

		if err := r.ParseForm(); err != nil {
			http.Error(w, "Bad request.", http.StatusBadRequest)
			return
		}

		for name, values := range r.PostForm {
			if name == "id" || len(values) == 0 {
				continue
			}

			if err := c.SetField(name, values[0]); err != nil {
				s.logger.Debug("ignored form value", "entity", p.ByName("entity"), "err", err)
			}
		}

		switch action {
		case "create":
			c.Create()
		case "update":
			c.Update()
		case "delete":
			c.Delete()
		case "clear":
			c.ClearAll()
		case "reset":
			c.Reset()
		case "select":
			c.Select(r.PostForm.Get("id"))
		}

		w.WriteHeader(http.StatusNoContent)
	}
}
