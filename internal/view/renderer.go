// Package view draws record collections into HTML table bodies.
package view

import (
	"log/slog"
	"time"
)

type Renderer[T any] struct {
	table  *Table
	id     func(record T) string
	row    func(position int, record T, now time.Time) []string
	now    func() time.Time
	logger *slog.Logger
}

type RendererOptions[T any] struct {
	Table *Table
	ID    func(record T) string
	// Row returns the display cells of a record; position starts at 1.
	Row    func(position int, record T, now time.Time) []string
	Now    func() time.Time
	Logger *slog.Logger
}

func NewRenderer[T any](options RendererOptions[T]) *Renderer[T] {
	r := &Renderer[T]{
		table:  options.Table,
		id:     options.ID,
		row:    options.Row,
		now:    options.Now,
		logger: options.Logger,
	}

	if r.now == nil {
		r.now = time.Now
	}

	if r.logger == nil {
		r.logger = slog.Default()
	}

	return r
}

// Render rebuilds the table body from records in the order given and checks
// the first row's selector. It returns the id of that row, or "" when the
// body is left empty.
func (r *Renderer[T]) Render(records []T) string {
	now := r.now()
	rows := make([]Row, 0, len(records))

	for i, record := range records {
		rows = append(rows, Row{
			ID:       r.id(record),
			Cells:    r.row(i+1, record, now),
			Selected: i == 0,
		})
	}

	if err := r.table.Replace(rows); err != nil {
		r.logger.Error("render table", "group", r.table.Group(), "err", err)
		return ""
	}

	if len(rows) == 0 {
		return ""
	}

	return rows[0].ID
}
