package entity

import (
	"strconv"
	"time"

	"github.com/timada-org/tablesync/internal/view"
)

type Todo struct {
	ID        string    `json:"id" mapstructure:"id"`
	Name      string    `json:"name" mapstructure:"name"`
	Timestamp time.Time `json:"timestamp" mapstructure:"timestamp"`
}

var Todos = Entity[Todo]{
	Name:      "todos",
	Path:      "/api/todos/",
	Fields:    []string{"name"},
	Columns:   []string{"#", "Task", "Added"},
	Clearable: true,
	Alert:     "Problem with task name input",
	ID: func(t Todo) string {
		return t.ID
	},
	Row: func(position int, t Todo, now time.Time) []string {
		return []string{strconv.Itoa(position), t.Name, view.Ago(now.Sub(t.Timestamp))}
	},
}
