// Package controller keeps a rendered table in step with the REST API.
//
// A Controller reacts to user input by calling the data access model, and
// reacts to the model's bus notifications by redrawing: every successful
// write triggers a full read, and every read replaces the table body.
package controller

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/go-playground/validator/v10"

	"github.com/timada-org/tablesync/internal/bus"
	"github.com/timada-org/tablesync/internal/entity"
	"github.com/timada-org/tablesync/internal/resource"
)

var ErrUnknownField = errors.New("unknown field")

var validate = validator.New()

// DataAccess is the subset of resource.Model the controller drives.
type DataAccess interface {
	ReadAll()
	Create(fields map[string]string)
	Update(id string, fields map[string]string)
	Remove(id string)
	ClearAll()
}

// View redraws the table and returns the id of the row it selected.
type View[T any] interface {
	Render(records []T) string
}

// Alerter shows a blocking message to the user.
type Alerter interface {
	Alert(message string)
}

type AlertFunc func(message string)

func (f AlertFunc) Alert(message string) {
	f(message)
}

type Options[T any] struct {
	Entity  entity.Entity[T]
	Model   DataAccess
	View    View[T]
	Bus     *bus.Bus
	Alerter Alerter
	Logger  *slog.Logger
}

type Controller[T any] struct {
	mux           sync.Mutex
	entity        entity.Entity[T]
	model         DataAccess
	view          View[T]
	bus           *bus.Bus
	alerter       Alerter
	logger        *slog.Logger
	fields        map[string]string
	selected      string
	subscriptions []*bus.Subscription
}

// New binds the controller to the bus and starts the initial read.
func New[T any](options Options[T]) (*Controller[T], error) {
	c := &Controller[T]{
		entity:  options.Entity,
		model:   options.Model,
		view:    options.View,
		bus:     options.Bus,
		alerter: options.Alerter,
		logger:  options.Logger,
		fields:  make(map[string]string, len(options.Entity.Fields)),
	}

	if c.logger == nil {
		c.logger = slog.Default()
	}

	if c.alerter == nil {
		c.alerter = AlertFunc(func(message string) {
			c.logger.Warn("alert", "entity", c.entity.Name, "message", message)
		})
	}

	for _, name := range options.Entity.Fields {
		c.fields[name] = ""
	}

	if err := c.bind(); err != nil {
		c.Close()
		return nil, err
	}

	c.model.ReadAll()

	return c, nil
}

func (c *Controller[T]) bind() error {
	read, err := c.bus.Subscribe(resource.Topic(c.entity.Name, resource.ReadSuccess).String(), c.onReadSuccess)
	if err != nil {
		return fmt.Errorf("controller %s: %w", c.entity.Name, err)
	}
	c.subscriptions = append(c.subscriptions, read)

	changed, err := c.bus.Subscribe(resource.Topic(c.entity.Name, resource.StateChanged).String(), c.onStateChanged)
	if err != nil {
		return fmt.Errorf("controller %s: %w", c.entity.Name, err)
	}
	c.subscriptions = append(c.subscriptions, changed)

	return nil
}

func (c *Controller[T]) onReadSuccess(event *bus.Event) {
	records, ok := event.Data.([]T)
	if !ok {
		c.logger.Error("unexpected read payload", "entity", c.entity.Name, "type", fmt.Sprintf("%T", event.Data))
		return
	}

	selected := c.view.Render(records)

	c.mux.Lock()
	c.selected = selected
	c.mux.Unlock()
}

func (c *Controller[T]) onStateChanged(*bus.Event) {
	c.model.ReadAll()
}

// Close detaches the controller from the bus. Requests already in flight
// still complete but nothing reacts to them.
func (c *Controller[T]) Close() {
	for _, sub := range c.subscriptions {
		c.bus.Unsubscribe(sub)
	}
	c.subscriptions = nil
}

// SetField records the current value of an editable input.
func (c *Controller[T]) SetField(name, value string) error {
	c.mux.Lock()
	defer c.mux.Unlock()

	if _, ok := c.fields[name]; !ok {
		return fmt.Errorf("%w %q for %s", ErrUnknownField, name, c.entity.Name)
	}

	c.fields[name] = value

	return nil
}

func (c *Controller[T]) Fields() map[string]string {
	c.mux.Lock()
	defer c.mux.Unlock()
	return c.snapshot()
}

// Reset empties every editable input.
func (c *Controller[T]) Reset() {
	c.mux.Lock()
	defer c.mux.Unlock()

	for name := range c.fields {
		c.fields[name] = ""
	}
}

// Select is called when the user checks a row's selector.
func (c *Controller[T]) Select(id string) {
	c.mux.Lock()
	defer c.mux.Unlock()
	c.selected = id
}

func (c *Controller[T]) Selected() string {
	c.mux.Lock()
	defer c.mux.Unlock()
	return c.selected
}

func (c *Controller[T]) Create() {
	fields, ok := c.validFields()
	if !ok {
		c.alerter.Alert(c.entity.Alert)
		return
	}

	c.model.Create(fields)
}

// Update sends the inputs for the selected record. With nothing selected the
// request still goes out with an undefined id.
func (c *Controller[T]) Update() {
	fields, ok := c.validFields()
	if !ok {
		c.alerter.Alert(c.entity.Alert)
		return
	}

	c.model.Update(c.Selected(), fields)
}

func (c *Controller[T]) Delete() {
	c.model.Remove(c.Selected())
}

func (c *Controller[T]) ClearAll() {
	c.model.ClearAll()
}

// validFields checks that no editable input is empty. Whitespace counts as
// content.
func (c *Controller[T]) validFields() (map[string]string, bool) {
	c.mux.Lock()
	fields := c.snapshot()
	c.mux.Unlock()

	for _, name := range c.entity.Fields {
		if err := validate.Var(fields[name], "required"); err != nil {
			return nil, false
		}
	}

	return fields, true
}

func (c *Controller[T]) snapshot() map[string]string {
	fields := make(map[string]string, len(c.fields))
	for name, value := range c.fields {
		fields[name] = value
	}
	return fields
}
