package entity

import (
	"time"
)

type Person struct {
	ID        string    `json:"id" mapstructure:"id"`
	FName     string    `json:"fname" mapstructure:"fname"`
	LName     string    `json:"lname" mapstructure:"lname"`
	Timestamp time.Time `json:"timestamp" mapstructure:"timestamp"`
}

var People = Entity[Person]{
	Name:    "people",
	Path:    "/api/people/",
	Fields:  []string{"fname", "lname"},
	Columns: []string{"First Name", "Last Name", "Created"},
	Alert:   "Problem with first or last name input",
	ID: func(p Person) string {
		return p.ID
	},
	Row: func(_ int, p Person, _ time.Time) []string {
		return []string{p.FName, p.LName, p.Timestamp.Format(time.RFC3339)}
	},
}
