// Package seed fills the REST API with fixture records. Records go through
// the same data access models as the front end, so a seed run also checks
// that every write is acknowledged on the bus.
package seed

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/timada-org/tablesync/internal/bus"
	"github.com/timada-org/tablesync/internal/entity"
	"github.com/timada-org/tablesync/internal/resource"
)

type Options struct {
	BaseURL string
	Client  *http.Client
	Logger  *slog.Logger
	// Reset clears the todos collection before anything is created.
	Reset bool
}

type Runner struct {
	options Options
	logger  *slog.Logger
}

func New(options Options) *Runner {
	logger := options.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Runner{options: options, logger: logger}
}

// Run creates every fixture record and waits until each write has been
// acknowledged. Failed requests are never acknowledged, so they surface as
// a context error.
func (r *Runner) Run(ctx context.Context, fixtures *Fixtures) error {
	b := bus.New()
	defer b.Close()

	changed := make(chan struct{})
	stop := make(chan struct{})
	defer close(stop)

	sub, err := b.Subscribe("+/"+resource.StateChanged, func(*bus.Event) {
		select {
		case changed <- struct{}{}:
		case <-stop:
		}
	})
	if err != nil {
		return err
	}
	defer b.Unsubscribe(sub)

	people := r.model(b, entity.People.Name, entity.People.Path, entity.People.Clearable)
	todos := r.model(b, entity.Todos.Name, entity.Todos.Path, entity.Todos.Clearable)

	if r.options.Reset {
		todos.ClearAll()

		if err := wait(ctx, changed, 1); err != nil {
			return fmt.Errorf("reset todos: %w", err)
		}

		r.logger.Info("todos cleared")
	}

	for _, p := range fixtures.People {
		people.Create(p.Fields())
	}

	for _, t := range fixtures.Todos {
		todos.Create(t.Fields())
	}

	if err := wait(ctx, changed, fixtures.Len()); err != nil {
		return fmt.Errorf("seed fixtures: %w", err)
	}

	r.logger.Info("fixtures seeded", "people", len(fixtures.People), "todos", len(fixtures.Todos))

	return nil
}

func (r *Runner) model(b *bus.Bus, name, path string, clearable bool) *resource.Model[map[string]any] {
	return resource.NewModel[map[string]any](resource.ModelOptions{
		BaseURL:   r.options.BaseURL,
		Entity:    name,
		Path:      path,
		Clearable: clearable,
		Bus:       b,
		Client:    r.options.Client,
		Logger:    r.logger,
	})
}

func wait(ctx context.Context, changed <-chan struct{}, n int) error {
	for done := 0; done < n; done++ {
		select {
		case <-changed:
		case <-ctx.Done():
			return fmt.Errorf("%d of %d writes acknowledged: %w", done, n, ctx.Err())
		}
	}
	return nil
}
