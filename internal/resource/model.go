// Package resource talks to the REST API on behalf of the front end. Every
// call returns immediately; results are announced on the notification bus.
package resource

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/timada-org/tablesync/internal/bus"
)

const (
	ReadSuccess  = "read_success"
	StateChanged = "state_changed"

	// UndefinedID is the path segment sent when no record is selected.
	UndefinedID = "undefined"
)

var (
	ErrStatus       = errors.New("unexpected response status")
	ErrNotClearable = errors.New("collection cannot be cleared")
)

// Topic returns the bus topic an entity publishes kind on, e.g.
// "people/state_changed".
func Topic(entity, kind string) *bus.Name {
	return bus.MustName(entity + "/" + kind)
}

type ModelOptions struct {
	// BaseURL is the API origin, e.g. "http://localhost:8080".
	BaseURL string
	// Entity is the topic prefix used on the bus.
	Entity string
	// Path is the collection path, e.g. "/api/todos/".
	Path      string
	Clearable bool
	Bus       *bus.Bus
	Client    *http.Client
	Logger    *slog.Logger
}

type Model[T any] struct {
	collection   string
	entity       string
	clearable    bool
	bus          *bus.Bus
	client       *http.Client
	logger       *slog.Logger
	readSuccess  *bus.Name
	stateChanged *bus.Name
}

func NewModel[T any](options ModelOptions) *Model[T] {
	m := &Model[T]{
		collection:   strings.TrimRight(options.BaseURL, "/") + "/" + strings.Trim(options.Path, "/") + "/",
		entity:       options.Entity,
		clearable:    options.Clearable,
		bus:          options.Bus,
		client:       options.Client,
		logger:       options.Logger,
		readSuccess:  Topic(options.Entity, ReadSuccess),
		stateChanged: Topic(options.Entity, StateChanged),
	}

	if m.client == nil {
		m.client = http.DefaultClient
	}

	if m.logger == nil {
		m.logger = slog.Default()
	}

	m.logger = m.logger.With("entity", options.Entity)

	return m
}

// ReadAll fetches the whole collection and publishes it on read_success.
func (m *Model[T]) ReadAll() {
	go func() {
		body, err := m.do(http.MethodGet, m.collection, nil)
		if err != nil {
			m.fail(http.MethodGet, m.collection, err)
			return
		}

		records, err := Decode[T](body)
		if err != nil {
			m.fail(http.MethodGet, m.collection, err)
			return
		}

		m.bus.Publish(&bus.Event{Topic: m.readSuccess, Data: records})
	}()
}

// Create posts fields as a new record.
func (m *Model[T]) Create(fields map[string]string) {
	m.write(http.MethodPost, m.collection, fields)
}

func (m *Model[T]) Update(id string, fields map[string]string) {
	m.write(http.MethodPut, m.record(id), fields)
}

func (m *Model[T]) Remove(id string) {
	m.write(http.MethodDelete, m.record(id), nil)
}

// ClearAll deletes every record of a clearable collection.
func (m *Model[T]) ClearAll() {
	if !m.clearable {
		m.fail(http.MethodDelete, m.collection, ErrNotClearable)
		return
	}

	m.write(http.MethodDelete, m.collection, nil)
}

// record returns the URL of one record. The id is always a single escaped
// path segment, so no id can address the bare collection.
func (m *Model[T]) record(id string) string {
	if id == "" {
		id = UndefinedID
	}

	return m.collection + url.PathEscape(id)
}

func (m *Model[T]) write(method, target string, fields map[string]string) {
	go func() {
		var payload []byte

		if fields != nil {
			var err error
			if payload, err = json.Marshal(fields); err != nil {
				m.fail(method, target, err)
				return
			}
		}

		if _, err := m.do(method, target, payload); err != nil {
			m.fail(method, target, err)
			return
		}

		m.bus.Publish(&bus.Event{Topic: m.stateChanged})
	}()
}

func (m *Model[T]) do(method, target string, payload []byte) ([]byte, error) {
	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequest(method, target, body)
	if err != nil {
		return nil, err
	}

	if payload != nil {
		req.Header.Set("Content-Type", "application/json; charset=utf-8")
	}

	if method == http.MethodGet {
		req.Header.Set("Accept", "application/json")
	}

	resp, err := m.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w %d: %s", ErrStatus, resp.StatusCode, bytes.TrimSpace(data))
	}

	return data, nil
}

func (m *Model[T]) fail(method, target string, err error) {
	m.logger.Error("request failed", "method", method, "url", target, "err", err)
}
