package bus

import (
	"fmt"
	"regexp"
	"strings"
)

const maxTopicLength = 65535

var (
	nameRegex   = regexp.MustCompile(`^[^#+]+$`)
	filterRegex = regexp.MustCompile(`^(([^+#]*|\+)(/([^+#]*|\+))*(/#)?|#)$`)
)

// Name is a concrete topic an event is published on, e.g. "people/read_success".
type Name struct {
	value string
}

func NewName(value string) (*Name, error) {
	if err := checkLength("topic name", value); err != nil {
		return nil, err
	}

	if !nameRegex.MatchString(value) {
		return nil, fmt.Errorf("topic name: %q format is invalid", value)
	}

	return &Name{value}, nil
}

// MustName is NewName for topics known at compile time.
func MustName(value string) *Name {
	name, err := NewName(value)
	if err != nil {
		panic(err)
	}

	return name
}

func (n *Name) String() string {
	return n.value
}

// IsSystem reports whether the topic lives in the reserved "$" namespace,
// which wildcards at the first level never match.
func (n *Name) IsSystem() bool {
	return strings.HasPrefix(n.value, "$")
}

// Filter selects topic names using MQTT wildcards: "+" matches exactly one
// level and a trailing "#" matches the parent level and everything below it.
type Filter struct {
	value string
}

func NewFilter(value string) (*Filter, error) {
	if err := checkLength("topic filter", value); err != nil {
		return nil, err
	}

	if !filterRegex.MatchString(value) {
		return nil, fmt.Errorf("topic filter: %q format is invalid", value)
	}

	return &Filter{value}, nil
}

func (f *Filter) String() string {
	return f.value
}

func (f *Filter) Match(name *Name) bool {
	levels := strings.Split(name.value, "/")
	patterns := strings.Split(f.value, "/")

	if name.IsSystem() && patterns[0] != levels[0] {
		return false
	}

	for i, pattern := range patterns {
		if pattern == "#" {
			return true
		}

		if i >= len(levels) {
			return false
		}

		if pattern != "+" && pattern != levels[i] {
			return false
		}
	}

	return len(patterns) == len(levels)
}

func checkLength(kind, value string) error {
	if value == "" {
		return fmt.Errorf("%s: cannot be empty", kind)
	}

	if len(value) > maxTopicLength {
		return fmt.Errorf("%s: %q cannot have more than %d bytes", kind, value, maxTopicLength)
	}

	return nil
}
