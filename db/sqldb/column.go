package sqldb

import (
	"fmt"
	"regexp"
)

// optionally dotted: table.column
var regexIdentifier = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*(\.[A-Za-z_][A-Za-z0-9_]*)*$`)

// Column is an identifier checked against regexIdentifier, so it can be
// spliced into generated SQL. Entity tables, columns and ORDER BY items use it.
type Column struct {
	name string
}

func (c Column) Name() string { return c.name }

func NewColumn(name string) (Column, error) {
	if !regexIdentifier.MatchString(name) {
		return Column{}, fmt.Errorf("%w: %q", ErrInvalidIdentifier, name)
	}
	return Column{name: name}, nil
}

// NewColumnOrPanic is NewColumn for identifiers fixed at compile time.
func NewColumnOrPanic(name string) Column {
	c, err := NewColumn(name)
	if err != nil {
		panic(err)
	}
	return c
}
