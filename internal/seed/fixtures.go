package seed

import (
	_ "embed"
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

//go:embed fixtures.yml
var defaultFixtures []byte

var validate = validator.New()

type Person struct {
	FName string `yaml:"fname" validate:"required"`
	LName string `yaml:"lname" validate:"required"`
}

func (p Person) Fields() map[string]string {
	return map[string]string{"fname": p.FName, "lname": p.LName}
}

type Todo struct {
	Name string `yaml:"name" validate:"required"`
}

func (t Todo) Fields() map[string]string {
	return map[string]string{"name": t.Name}
}

type Fixtures struct {
	People []Person `yaml:"people" validate:"dive"`
	Todos  []Todo   `yaml:"todos" validate:"dive"`
}

func (f *Fixtures) Len() int {
	return len(f.People) + len(f.Todos)
}

// Parse reads fixtures from YAML. Every record must have all its fields.
func Parse(data []byte) (*Fixtures, error) {
	var f Fixtures
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse fixtures: %w", err)
	}

	if err := validate.Struct(&f); err != nil {
		return nil, fmt.Errorf("invalid fixtures: %w", err)
	}

	return &f, nil
}

func Default() *Fixtures {
	f, err := Parse(defaultFixtures)
	if err != nil {
		panic(err)
	}
	return f
}

// Load reads fixtures from path, or returns the defaults when path is empty.
func Load(path string) (*Fixtures, error) {
	if path == "" {
		return Default(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read fixtures: %w", err)
	}

	return Parse(data)
}
