package controller

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/timada-org/tablesync/internal/bus"
	"github.com/timada-org/tablesync/internal/entity"
	"github.com/timada-org/tablesync/internal/resource"
	"github.com/timada-org/tablesync/internal/view"
)

type MountOptions struct {
	BaseURL string
	Bus     *bus.Bus
	Client  *http.Client
	Alerter Alerter
	Logger  *slog.Logger
	Now     func() time.Time
	// OnRender receives the table body HTML after every redraw, starting
	// with the initial read.
	OnRender func(html string)
}

// Mount assembles the model, renderer and controller for one entity. The
// returned table is the render target the controller keeps up to date.
func Mount[T any](e entity.Entity[T], options MountOptions) (*Controller[T], *view.Table, error) {
	table := view.NewTable(e.Name + "Radios")
	if options.OnRender != nil {
		table.OnChange(options.OnRender)
	}

	model := resource.NewModel[T](resource.ModelOptions{
		BaseURL:   options.BaseURL,
		Entity:    e.Name,
		Path:      e.Path,
		Clearable: e.Clearable,
		Bus:       options.Bus,
		Client:    options.Client,
		Logger:    options.Logger,
	})

	renderer := view.NewRenderer(view.RendererOptions[T]{
		Table:  table,
		ID:     e.ID,
		Row:    e.Row,
		Now:    options.Now,
		Logger: options.Logger,
	})

	c, err := New(Options[T]{
		Entity:  e,
		Model:   model,
		View:    renderer,
		Bus:     options.Bus,
		Alerter: options.Alerter,
		Logger:  options.Logger,
	})
	if err != nil {
		return nil, nil, err
	}

	return c, table, nil
}
