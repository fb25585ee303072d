package sortorder

import (
	"cmp"
	"reflect"
	"slices"
	"sync"
	"time"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/language"

	"github.com/emersion/go-contacts"
	"github.com/emersion/go-contacts/internal"
)

var defaultCollator = sync.OnceValue(func() *internal.Collator {
	return internal.NewCollator(language.Und)
})

// Comparator orders records according to a Spec. It is safe for concurrent
// use.
type Comparator struct {
	Spec Spec

	collator *internal.Collator
}

// NewComparator returns a comparator for spec. Strings are collated with
// the rules of lang, ignoring case.
func NewComparator(spec Spec, lang language.Tag) *Comparator {
	return &Comparator{Spec: spec, collator: internal.NewCollator(lang)}
}

// Sort sorts recs with c. The sort is stable: records that compare equal
// keep their relative order.
func Sort[R contacts.Record](recs []R, c *Comparator) {
	slices.SortStableFunc(recs, func(a, b R) int {
		return c.Compare(a, b)
	})
}

// Less reports whether a sorts before b.
func (c *Comparator) Less(a, b contacts.Record) bool {
	return c.Compare(a, b) < 0
}

// Compare returns a negative number if a sorts before b, a positive number
// if a sorts after b, and zero if no key tells them apart.
//
// For each key only the first detail of the key's type is considered on
// each side, even when a record has several.
func (c *Comparator) Compare(a, b contacts.Record) int {
	for _, key := range c.Spec {
		if r := c.compareKey(key, a, b); r != 0 {
			return r
		}
	}
	return 0
}

func (c *Comparator) compareKey(key Key, a, b contacts.Record) int {
	da, db := a.Details(key.Type), b.Details(key.Type)
	if len(da) == 0 && len(db) == 0 {
		return 0
	}

	if key.Sub == contacts.SubFieldNone {
		// Only presence matters: records having different non-zero detail
		// counts are tied.
		switch {
		case len(da) == len(db):
			return 0
		case len(da) == 0:
			return blankOrder(key.Blanks, true)
		case len(db) == 0:
			return blankOrder(key.Blanks, false)
		}
		return 0
	}

	var va, vb interface{}
	if len(da) > 0 {
		va = da[0].Value(key.Sub)
	}
	if len(db) > 0 {
		vb = db[0].Value(key.Sub)
	}

	aBlank, bBlank := isBlank(va), isBlank(vb)
	switch {
	case aBlank && bBlank:
		return 0
	case aBlank:
		return blankOrder(key.Blanks, true)
	case bBlank:
		return blankOrder(key.Blanks, false)
	}

	r, directional := c.compareValues(va, vb)
	if directional && key.Direction == Descending {
		r = -r
	}
	return r
}

// blankOrder returns the order of a pair where exactly one side is blank.
// aBlank tells which one.
func blankOrder(policy BlankPolicy, aBlank bool) int {
	r := 1
	if policy == BlanksFirst {
		r = -1
	}
	if !aBlank {
		r = -r
	}
	return r
}

func isBlank(v interface{}) bool {
	switch v := v.(type) {
	case nil:
		return true
	case string:
		return v == ""
	case []string:
		return len(v) == 0
	case time.Time:
		return v.IsZero()
	}
	return false
}

// compareValues compares two non-blank values. directional is false when
// the result must not be reversed for descending keys.
func (c *Comparator) compareValues(a, b interface{}) (r int, directional bool) {
	switch a := a.(type) {
	case string:
		if b, ok := b.(string); ok {
			return c.compareStrings(a, b)
		}
		return 0, true
	case []string:
		b, ok := b.([]string)
		if !ok {
			return 0, true
		}
		for i := 0; i < len(a) && i < len(b); i++ {
			if r, directional := c.compareStrings(a[i], b[i]); r != 0 {
				return r, directional
			}
		}
		return cmp.Compare(len(a), len(b)), true
	case time.Time:
		if b, ok := b.(time.Time); ok {
			return a.Compare(b), true
		}
		return 0, true
	case bool:
		if b, ok := b.(bool); ok {
			return cmp.Compare(boolInt(a), boolInt(b)), true
		}
		return 0, true
	}

	va, vb := reflect.ValueOf(a), reflect.ValueOf(b)
	switch {
	case isSigned(va) && isSigned(vb):
		return cmp.Compare(va.Int(), vb.Int()), true
	case isUnsigned(va) && isUnsigned(vb):
		return cmp.Compare(va.Uint(), vb.Uint()), true
	case isNumber(va) && isNumber(vb):
		return cmp.Compare(toFloat(va), toFloat(vb)), true
	}
	return 0, true
}

// compareStrings sorts strings starting with a letter before the others,
// whatever the direction. Strings of the same class are collated.
func (c *Comparator) compareStrings(a, b string) (int, bool) {
	la, lb := startsWithLetter(a), startsWithLetter(b)
	if la != lb {
		if la {
			return -1, false
		}
		return 1, false
	}

	collator := c.collator
	if collator == nil {
		collator = defaultCollator()
	}
	return collator.Compare(a, b), true
}

func startsWithLetter(s string) bool {
	r, _ := utf8.DecodeRuneInString(s)
	return r != utf8.RuneError && unicode.IsLetter(r)
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func isSigned(v reflect.Value) bool {
	switch v.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return true
	}
	return false
}

func isUnsigned(v reflect.Value) bool {
	switch v.Kind() {
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return true
	}
	return false
}

func isNumber(v reflect.Value) bool {
	switch v.Kind() {
	case reflect.Float32, reflect.Float64:
		return true
	}
	return isSigned(v) || isUnsigned(v)
}

func toFloat(v reflect.Value) float64 {
	switch {
	case isSigned(v):
		return float64(v.Int())
	case isUnsigned(v):
		return float64(v.Uint())
	}
	return v.Float()
}
