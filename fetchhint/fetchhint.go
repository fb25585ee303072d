// Package fetchhint translates contact fetch hints to and from wire
// strings. A fetch hint restricts the detail types returned for each
// contact:
//
//	FIELDS:N,TEL,EMAIL
//
// An empty hint means that every detail is wanted.
package fetchhint

import (
	"log/slog"
	"slices"
	"strings"

	"github.com/emersion/go-vcard"

	"github.com/emersion/go-contacts"
	"github.com/emersion/go-contacts/internal"
)

const fieldsKey = "FIELDS"

// Hint is a set of detail types, kept in registry order.
type Hint []contacts.FieldType

// IsEmpty reports whether h places no restriction.
func (h Hint) IsEmpty() bool {
	return len(h) == 0
}

// Contains reports whether details of type t are requested. An empty hint
// requests everything.
func (h Hint) Contains(t contacts.FieldType) bool {
	return h.IsEmpty() || slices.Contains(h, t)
}

// Codec converts fetch hints to and from wire strings.
type Codec struct {
	// Registry resolves detail tokens. If nil, contacts.DefaultRegistry is
	// used.
	Registry *contacts.Registry
	// Logger receives parsing diagnostics. If nil, slog.Default is used.
	Logger *slog.Logger
}

var defaultCodec Codec

// New returns the hint holding types, deduplicated and in registry order.
// Types without a registry token are dropped.
func New(types ...contacts.FieldType) Hint {
	return defaultCodec.New(types...)
}

// Encode formats h as a wire string.
func Encode(h Hint) string {
	return defaultCodec.Encode(h)
}

// Decode parses a wire string.
func Decode(s string) Hint {
	return defaultCodec.Decode(s)
}

// ParseFieldNames resolves detail tokens, dropping unknown ones.
func ParseFieldNames(tokens []string) []contacts.FieldType {
	return defaultCodec.ParseFieldNames(tokens)
}

// Project returns card restricted to the properties requested by h.
func Project(h Hint, card vcard.Card) vcard.Card {
	return defaultCodec.Project(h, card)
}

func (c *Codec) registry() *contacts.Registry {
	if c.Registry != nil {
		return c.Registry
	}
	return contacts.DefaultRegistry()
}

func (c *Codec) logger() *slog.Logger {
	return internal.Logger(c.Logger, "fetchhint")
}

// New returns the hint holding types, deduplicated and in registry order.
// Types without a registry token are dropped.
func (c *Codec) New(types ...contacts.FieldType) Hint {
	reg := c.registry()
	var h Hint
	for _, t := range reg.DetailTypes() {
		if slices.Contains(types, t) {
			h = append(h, t)
		}
	}
	return h
}

// Encode formats h as "FIELDS:TOKEN,...". An empty hint encodes to "".
func (c *Codec) Encode(h Hint) string {
	reg := c.registry()
	var tokens []string
	for _, t := range c.New(h...) {
		if tok, ok := reg.DetailToken(t); ok {
			tokens = append(tokens, tok)
		}
	}
	if len(tokens) == 0 {
		return ""
	}
	return fieldsKey + ":" + strings.Join(tokens, ",")
}

// Decode parses ";"-separated "KEY:VALUE" groups. Only the FIELDS group is
// interpreted; other groups and unknown tokens are logged and ignored.
func (c *Codec) Decode(s string) Hint {
	s = strings.ReplaceAll(s, " ", "")
	if s == "" {
		return nil
	}

	var types []contacts.FieldType
	for _, group := range strings.Split(s, ";") {
		if group == "" {
			continue
		}
		kv := strings.Split(group, ":")
		if len(kv) != 2 {
			c.logger().Warn("invalid fetch hint group", "group", group)
			continue
		}
		if strings.ToUpper(kv[0]) != fieldsKey {
			c.logger().Warn("unknown fetch hint group", "key", kv[0])
			continue
		}
		types = append(types, c.ParseFieldNames(strings.Split(kv[1], ","))...)
	}
	return c.New(types...)
}

// ParseFieldNames resolves detail tokens, dropping unknown ones. The order
// of the input is kept.
func (c *Codec) ParseFieldNames(tokens []string) []contacts.FieldType {
	reg := c.registry()
	var types []contacts.FieldType
	for _, tok := range tokens {
		if tok == "" {
			continue
		}
		t, ok := reg.DetailType(tok)
		if !ok {
			c.logger().Warn("unknown fetch hint field", "field", tok)
			continue
		}
		types = append(types, t)
	}
	return types
}

// Project returns a card holding only the properties of the detail types
// requested by h, plus VERSION and UID. The returned card shares its fields
// with card. An empty hint returns card itself.
func (c *Codec) Project(h Hint, card vcard.Card) vcard.Card {
	if h.IsEmpty() {
		return card
	}

	reg := c.registry()
	out := make(vcard.Card)
	for _, k := range []string{vcard.FieldVersion, vcard.FieldUID} {
		if fields, ok := card[k]; ok {
			out[k] = fields
		}
	}
	for _, t := range h {
		for _, k := range reg.Properties(t) {
			if fields, ok := card[k]; ok {
				out[k] = fields
			}
		}
	}
	return out
}
