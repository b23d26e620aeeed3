// Package entity describes the record types the front end manages and how
// each one is read, written and drawn.
package entity

import (
	"strings"
	"time"
)

// Entity configures the generic CRUD-sync loop for one record type.
type Entity[T any] struct {
	// Name is the bus topic prefix and the key used by the web front end.
	Name string
	// Path is the REST collection path, with a trailing slash.
	Path string
	// Fields lists the editable fields in form order. They are the JSON keys
	// of create and update bodies.
	Fields []string
	// Columns are the table headings after the selector column.
	Columns []string
	// Clearable entities accept DELETE on the bare collection path.
	Clearable bool
	// Alert is shown when an editable field is empty on create or update.
	Alert string

	ID  func(record T) string
	Row func(position int, record T, now time.Time) []string
}

// Label returns a heading for the entity, e.g. "People".
func (e Entity[T]) Label() string {
	if e.Name == "" {
		return ""
	}
	return strings.ToUpper(e.Name[:1]) + e.Name[1:]
}
