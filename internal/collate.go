package internal

import (
	"sync"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// Collator compares strings using the collation rules of a language,
// ignoring case. Unlike collate.Collator, it is safe for concurrent use.
type Collator struct {
	tag  language.Tag
	pool sync.Pool
}

// NewCollator returns a case-insensitive collator for tag.
func NewCollator(tag language.Tag) *Collator {
	c := &Collator{tag: tag}
	c.pool.New = func() interface{} {
		return collate.New(tag, collate.IgnoreCase)
	}
	return c
}

// Language returns the collation language.
func (c *Collator) Language() language.Tag {
	return c.tag
}

// Compare returns -1, 0 or 1 depending on whether a sorts before, equal to
// or after b.
func (c *Collator) Compare(a, b string) int {
	col := c.pool.Get().(*collate.Collator)
	defer c.pool.Put(col)
	return col.CompareString(a, b)
}
