package filter

import (
	"fmt"
	"strings"
	"time"

	"github.com/emersion/go-contacts"
	"github.com/emersion/go-contacts/internal"
)

// minFuzzyPhoneLen is the length below which phone numbers are compared
// literally instead of with the phone-number library.
const minFuzzyPhoneLen = 6

// Filter returns the records matching n, in input order. Soft-deleted
// records are recognized through contacts.Removable.
func Filter[R contacts.Record](n Node, recs []R) []R {
	out := make([]R, 0, len(recs))
	for _, rec := range recs {
		if Match(n, rec, contacts.RemovedAt(rec)) {
			out = append(out, rec)
		}
	}
	return out
}

// Match reports whether rec matches n. removed is the soft-deletion time of
// rec, or the zero time for a live record.
//
// Only IDSet and Changed nodes can match a soft-deleted record. When an
// Intersection holds a removed-since child, its other children evaluate rec
// as if it was live.
func Match(n Node, rec contacts.Record, removed time.Time) bool {
	switch n := n.(type) {
	case IDSet:
		id := rec.ID()
		for _, v := range n {
			if v == id {
				return true
			}
		}
		return false
	case Changed:
		return matchChanged(n, rec, removed)
	case Union:
		for _, child := range n {
			if Match(child, rec, removed) {
				return true
			}
		}
		return false
	case Intersection:
		tombstone := hasTombstone(n)
		for _, child := range n {
			childRemoved := removed
			if _, ok := child.(Changed); !ok && tombstone {
				childRemoved = time.Time{}
			}
			if !Match(child, rec, childRemoved) {
				return false
			}
		}
		return true
	}

	if !removed.IsZero() {
		return false
	}

	switch n := n.(type) {
	case nil, MatchAll:
		return true
	case FieldMatch:
		return matchField(n, rec)
	}
	return false
}

func hasTombstone(children []Node) bool {
	for _, child := range children {
		if IncludesRemoved(child) {
			return true
		}
	}
	return false
}

func matchChanged(c Changed, rec contacts.Record, removed time.Time) bool {
	var sub contacts.SubField
	switch c.Event {
	case EventRemoved:
		return !removed.IsZero() && !removed.Before(c.Since)
	case EventAdded:
		sub = contacts.TimestampCreated
	case EventChanged:
		sub = contacts.TimestampModified
	default:
		return false
	}

	if !removed.IsZero() {
		return false
	}
	for _, d := range rec.Details(contacts.FieldTimestamp) {
		if t, ok := d.Value(sub).(time.Time); ok && !t.Before(c.Since) {
			return true
		}
	}
	return false
}

func matchField(fm FieldMatch, rec contacts.Record) bool {
	details := rec.Details(fm.Type)
	if fm.Sub == contacts.SubFieldNone {
		return len(details) > 0
	}

	for _, d := range details {
		for _, s := range stringValues(d.Value(fm.Sub)) {
			var ok bool
			if fm.Flags&MatchPhoneNumber != 0 {
				ok = matchPhoneNumber(fm.Value, s, fm.Flags)
			} else {
				ok = matchText(fm.Value, s, fm.Flags)
			}
			if ok {
				return true
			}
		}
	}
	return false
}

func stringValues(v interface{}) []string {
	switch v := v.(type) {
	case nil:
		return nil
	case string:
		return []string{v}
	case []string:
		return v
	case time.Time:
		if v.IsZero() {
			return nil
		}
		return []string{v.Format(time.RFC3339)}
	default:
		return []string{fmt.Sprint(v)}
	}
}

func matchText(query, value string, flags MatchFlags) bool {
	if flags&MatchCaseSensitive == 0 {
		query = strings.ToLower(query)
		value = strings.ToLower(value)
	}

	switch flags.mode() {
	case MatchContains:
		return strings.Contains(value, query)
	case MatchStartsWith:
		return strings.HasPrefix(value, query)
	case MatchEndsWith:
		return strings.HasSuffix(value, query)
	default:
		return value == query
	}
}

func matchPhoneNumber(query, value string, flags MatchFlags) bool {
	a := internal.NormalizePhoneNumber(query)
	b := internal.NormalizePhoneNumber(value)
	if a == "" || b == "" {
		return false
	}

	switch flags.mode() {
	case MatchContains:
		return strings.Contains(b, a)
	case MatchStartsWith:
		return strings.HasPrefix(b, a)
	case MatchEndsWith:
		return strings.HasSuffix(b, a)
	}

	if len(a) < minFuzzyPhoneLen && len(b) < minFuzzyPhoneLen {
		return a == b
	}

	m := internal.ComparePhoneNumbers(a, b)
	if flags&MatchExactly != 0 {
		return m == internal.PhoneExactMatch
	}
	return m != internal.PhoneNoMatch
}
