// Package sortorder translates contact sort orders to and from
// comma-separated clauses, and orders records according to them.
//
// A clause lists field tokens with an optional direction:
//
//	FIRST_NAME ASC, ORG_DEPARTMENT, ADDR_STREET DESC
package sortorder

import (
	"log/slog"
	"strings"

	"github.com/emersion/go-contacts"
	"github.com/emersion/go-contacts/internal"
)

// Direction is a sort direction.
type Direction int

const (
	Ascending Direction = iota
	Descending
)

func (d Direction) String() string {
	if d == Descending {
		return "DESC"
	}
	return "ASC"
}

// BlankPolicy places records with a blank value for a key.
type BlankPolicy int

const (
	BlanksLast BlankPolicy = iota
	BlanksFirst
)

// Key is one sort criterion. String comparisons are always
// case-insensitive.
type Key struct {
	contacts.Field
	Direction Direction
	Blanks    BlankPolicy
}

// NewKey returns an ascending key sorting blanks last.
func NewKey(t contacts.FieldType, sub contacts.SubField) Key {
	return Key{Field: contacts.Field{Type: t, Sub: sub}}
}

// Spec is a list of keys applied in order: later keys only break ties left
// by earlier ones.
type Spec []Key

// Codec converts sort specs to and from clauses.
type Codec struct {
	// Registry resolves field tokens. If nil, contacts.DefaultRegistry is
	// used.
	Registry *contacts.Registry
	// Logger receives parsing diagnostics. If nil, slog.Default is used.
	Logger *slog.Logger
}

var defaultCodec Codec

// ParseClause parses a single "FIELD [ASC|DESC]" clause.
func ParseClause(s string) (Key, bool) {
	return defaultCodec.ParseClause(s)
}

// Encode formats spec as a clause list.
func Encode(spec Spec) string {
	return defaultCodec.Encode(spec)
}

// Decode parses a clause list. Invalid clauses are logged and dropped.
func Decode(s string) Spec {
	return defaultCodec.Decode(s)
}

func (c *Codec) registry() *contacts.Registry {
	if c.Registry != nil {
		return c.Registry
	}
	return contacts.DefaultRegistry()
}

func (c *Codec) logger() *slog.Logger {
	return internal.Logger(c.Logger, "sortorder")
}

// ParseClause parses a single "FIELD [ASC|DESC]" clause. The direction
// defaults to ascending. It returns false for unknown fields, unknown
// directions and clauses with more than two words.
func (c *Codec) ParseClause(s string) (Key, bool) {
	words := strings.Fields(strings.ToUpper(strings.TrimSpace(s)))
	if len(words) == 0 || len(words) > 2 {
		c.logger().Warn("invalid sort clause", "clause", s)
		return Key{}, false
	}

	field, ok := c.registry().Field(words[0])
	if !ok {
		c.logger().Warn("unknown sort field", "clause", s, "field", words[0])
		return Key{}, false
	}

	key := Key{Field: field}
	if len(words) == 2 {
		switch words[1] {
		case "ASC":
			key.Direction = Ascending
		case "DESC":
			key.Direction = Descending
		default:
			c.logger().Warn("invalid sort direction", "clause", s, "direction", words[1])
			return Key{}, false
		}
	}
	return key, true
}

// Encode formats spec as "FIELD DIRECTION" clauses joined by ", ". Keys
// whose field has no token are skipped.
func (c *Codec) Encode(spec Spec) string {
	reg := c.registry()
	l := make([]string, 0, len(spec))
	for _, key := range spec {
		tok, ok := reg.FieldToken(key.Field)
		if !ok {
			continue
		}
		l = append(l, tok+" "+key.Direction.String())
	}
	return strings.Join(l, ", ")
}

// Decode parses a comma-separated clause list. Invalid clauses are logged
// and dropped, the order of valid ones is kept.
func (c *Codec) Decode(s string) Spec {
	var spec Spec
	if strings.TrimSpace(s) == "" {
		return spec
	}
	for _, clause := range strings.Split(s, ",") {
		if key, ok := c.ParseClause(clause); ok {
			spec = append(spec, key)
		}
	}
	return spec
}
