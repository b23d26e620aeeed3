package view

import (
	"bytes"
	"html/template"
	"sync"
)

var bodyTemplate = template.Must(template.New("tbody").Parse(
	`{{range $i, $row := .Rows}}<tr>` +
		`<td class="select"><input type="radio" id="{{$.Group}}{{$i}}" value="{{$row.ID}}" name="{{$.Group}}"{{if $row.Selected}} checked{{end}}></td>` +
		`{{range $row.Cells}}<td>{{.}}</td>{{end}}` +
		`</tr>
{{end}}`))

type Row struct {
	ID       string
	Cells    []string
	Selected bool
}

// Table is the body of one HTML table. It is always replaced as a whole.
type Table struct {
	mux       sync.RWMutex
	group     string
	rows      []Row
	html      string
	observers []func(html string)
}

// NewTable creates an empty body whose selectors share the radio group name.
func NewTable(group string) *Table {
	return &Table{group: group}
}

func (t *Table) Group() string {
	return t.group
}

// OnChange registers fn to receive the new body HTML after every Replace.
func (t *Table) OnChange(fn func(html string)) {
	t.mux.Lock()
	defer t.mux.Unlock()
	t.observers = append(t.observers, fn)
}

func (t *Table) Replace(rows []Row) error {
	var buf bytes.Buffer
	err := bodyTemplate.Execute(&buf, struct {
		Group string
		Rows  []Row
	}{t.group, rows})
	if err != nil {
		return err
	}

	t.mux.Lock()
	t.rows = rows
	t.html = buf.String()
	html := t.html
	observers := append([]func(string){}, t.observers...)
	t.mux.Unlock()

	for _, fn := range observers {
		fn(html)
	}

	return nil
}

func (t *Table) Rows() []Row {
	t.mux.RLock()
	defer t.mux.RUnlock()

	rows := make([]Row, len(t.rows))
	copy(rows, t.rows)

	return rows
}

func (t *Table) HTML() string {
	t.mux.RLock()
	defer t.mux.RUnlock()
	return t.html
}

// Selected returns the id of the checked row, or "" when none is checked.
func (t *Table) Selected() string {
	t.mux.RLock()
	defer t.mux.RUnlock()

	for _, row := range t.rows {
		if row.Selected {
			return row.ID
		}
	}

	return ""
}
