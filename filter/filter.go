// Package filter translates contact predicate trees to and from a compact
// wire string and evaluates them against records.
package filter

import (
	"fmt"
	"strings"
	"time"

	"github.com/emersion/go-contacts"
)

// Node is a node of a predicate tree. It is one of MatchAll, MatchNone,
// Invalid, IDSet, FieldMatch, Union, Intersection or Changed. A nil Node
// is equivalent to MatchAll.
type Node interface {
	isNode()
}

// MatchAll is the default, empty filter. It matches every live record.
type MatchAll struct{}

// MatchNone matches no record.
type MatchNone struct{}

// Invalid marks a filter that could not be understood. It matches no
// record and makes the whole tree invalid.
type Invalid struct{}

// IDSet matches records whose ID is in the set, including soft-deleted
// ones.
type IDSet []string

// FieldMatch tests the values of one field. With Sub set to
// contacts.SubFieldNone it only tests whether the record has a detail of
// the given type.
type FieldMatch struct {
	Type  contacts.FieldType
	Sub   contacts.SubField
	Value string
	Flags MatchFlags
}

// Union matches records matching any child. An empty Union matches
// nothing.
type Union []Node

// Intersection matches records matching every child. An empty
// Intersection matches everything.
type Intersection []Node

// Changed is a change-log filter. With EventRemoved it matches records
// soft-deleted at or after Since, and is the only predicate able to see
// soft-deleted records through a field filter.
type Changed struct {
	Event Event
	Since time.Time
}

func (MatchAll) isNode()     {}
func (MatchNone) isNode()    {}
func (Invalid) isNode()      {}
func (IDSet) isNode()        {}
func (FieldMatch) isNode()   {}
func (Union) isNode()        {}
func (Intersection) isNode() {}
func (Changed) isNode()      {}

// MatchFlags controls how a FieldMatch compares values. At most one of
// MatchContains, MatchStartsWith, MatchEndsWith and MatchExactly should be
// set; without any of them the default comparison applies.
type MatchFlags uint32

const (
	MatchContains MatchFlags = 1 << iota
	MatchStartsWith
	MatchEndsWith
	MatchExactly
	MatchCaseSensitive
	MatchPhoneNumber
)

const matchModes = MatchContains | MatchStartsWith | MatchEndsWith | MatchExactly

func (f MatchFlags) mode() MatchFlags {
	return f & matchModes
}

func (f MatchFlags) String() string {
	var l []string
	switch {
	case f&MatchContains != 0:
		l = append(l, "contains")
	case f&MatchStartsWith != 0:
		l = append(l, "starts-with")
	case f&MatchEndsWith != 0:
		l = append(l, "ends-with")
	case f&MatchExactly != 0:
		l = append(l, "exactly")
	default:
		l = append(l, "equals")
	}
	if f&MatchCaseSensitive != 0 {
		l = append(l, "case-sensitive")
	}
	if f&MatchPhoneNumber != 0 {
		l = append(l, "phone-number")
	}
	return strings.Join(l, ",")
}

// Event is a change-log event kind.
type Event int

const (
	EventAdded Event = iota + 1
	EventChanged
	EventRemoved
)

func (ev Event) String() string {
	switch ev {
	case EventAdded:
		return "added"
	case EventChanged:
		return "changed"
	case EventRemoved:
		return "removed"
	}
	return fmt.Sprintf("event(%d)", int(ev))
}

// Presence returns a filter matching records with at least one detail of
// type t.
func Presence(t contacts.FieldType) FieldMatch {
	return FieldMatch{Type: t, Sub: contacts.SubFieldNone}
}

// RemovedSince returns a filter matching records soft-deleted at or after
// t.
func RemovedSince(t time.Time) Changed {
	return Changed{Event: EventRemoved, Since: t}
}

// IsValid reports whether no node of the tree is Invalid.
func IsValid(n Node) bool {
	switch n := n.(type) {
	case Invalid:
		return false
	case Union:
		return allValid(n)
	case Intersection:
		return allValid(n)
	}
	return true
}

func allValid(children []Node) bool {
	for _, child := range children {
		if !IsValid(child) {
			return false
		}
	}
	return true
}

// IsEmpty reports whether the tree only consists of MatchAll nodes and
// (possibly empty) unions and intersections of them.
//
// An empty Union is empty in this sense even though it matches nothing.
func IsEmpty(n Node) bool {
	switch n := n.(type) {
	case nil, MatchAll:
		return true
	case Union:
		return allEmpty(n)
	case Intersection:
		return allEmpty(n)
	}
	return false
}

func allEmpty(children []Node) bool {
	for _, child := range children {
		if !IsEmpty(child) {
			return false
		}
	}
	return true
}

// IncludesRemoved reports whether n is, at the top level, a filter on
// removed records.
func IncludesRemoved(n Node) bool {
	c, ok := n.(Changed)
	return ok && c.Event == EventRemoved
}

// String formats the tree for humans, naming fields by their wire tokens.
func String(n Node) string {
	var sb strings.Builder
	writeNode(&sb, contacts.DefaultRegistry(), n)
	return sb.String()
}

func writeNode(sb *strings.Builder, reg *contacts.Registry, n Node) {
	switch n := n.(type) {
	case nil, MatchAll:
		sb.WriteString("ALL")
	case MatchNone:
		sb.WriteString("NONE")
	case Invalid:
		sb.WriteString("INVALID")
	case IDSet:
		sb.WriteString("ID IN (")
		for i, id := range n {
			if i > 0 {
				sb.WriteString(", ")
			}
			fmt.Fprintf(sb, "%q", id)
		}
		sb.WriteString(")")
	case FieldMatch:
		if n.Sub == contacts.SubFieldNone {
			sb.WriteString("HAS ")
			if tok, ok := reg.DetailToken(n.Type); ok {
				sb.WriteString(tok)
			} else {
				sb.WriteString(n.Type.String())
			}
			return
		}
		if tok, ok := reg.FieldToken(contacts.Field{Type: n.Type, Sub: n.Sub}); ok {
			sb.WriteString(tok)
		} else {
			fmt.Fprintf(sb, "%v[%d]", n.Type, int(n.Sub))
		}
		fmt.Fprintf(sb, " %v %q", n.Flags, n.Value)
	case Union:
		writeChildren(sb, reg, "ANY", n)
	case Intersection:
		writeChildren(sb, reg, "EVERY", n)
	case Changed:
		fmt.Fprintf(sb, "%v SINCE %v", strings.ToUpper(n.Event.String()), n.Since.UTC().Format(time.RFC3339))
	default:
		fmt.Fprintf(sb, "%T", n)
	}
}

func writeChildren(sb *strings.Builder, reg *contacts.Registry, op string, children []Node) {
	sb.WriteString(op)
	sb.WriteString("(")
	for i, child := range children {
		if i > 0 {
			sb.WriteString(", ")
		}
		writeNode(sb, reg, child)
	}
	sb.WriteString(")")
}
