package filter

import (
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"google.golang.org/protobuf/encoding/protowire"

	"github.com/emersion/go-contacts"
	"github.com/emersion/go-contacts/internal"
)

// Wire layout: the base64 encoding of one node message. A node message is
// a sequence of protobuf-style fields; children are nested node messages.
const (
	fieldKind  protowire.Number = 1
	fieldID    protowire.Number = 2
	fieldType  protowire.Number = 3
	fieldSub   protowire.Number = 4
	fieldValue protowire.Number = 5
	fieldFlags protowire.Number = 6
	fieldChild protowire.Number = 7
	fieldEvent protowire.Number = 8
	fieldSince protowire.Number = 9
)

var errMissingKind = errors.New("filter: missing node kind")

const (
	kindMatchAll uint64 = iota + 1
	kindMatchNone
	kindInvalid
	kindIDSet
	kindFieldMatch
	kindUnion
	kindIntersection
	kindChanged
)

// Codec converts predicate trees to and from wire strings.
type Codec struct {
	// Logger receives decoding diagnostics. If nil, slog.Default is used.
	Logger *slog.Logger
}

var defaultCodec Codec

// Encode returns the wire string of n. The empty filter encodes to "".
func Encode(n Node) string {
	return defaultCodec.Encode(n)
}

// Decode parses a wire string. It never fails: malformed input is logged
// and decodes to MatchAll.
func Decode(s string) Node {
	return defaultCodec.Decode(s)
}

// Encode returns the wire string of n. The empty filter encodes to "".
func (c *Codec) Encode(n Node) string {
	switch n.(type) {
	case nil, MatchAll:
		return ""
	}
	return base64.StdEncoding.EncodeToString(appendNode(nil, n))
}

// Decode parses a wire string. It never fails: malformed input is logged
// and decodes to MatchAll.
func (c *Codec) Decode(s string) Node {
	s = strings.TrimSpace(s)
	if s == "" {
		return MatchAll{}
	}

	n, err := decodeString(s)
	if err != nil {
		internal.Logger(c.Logger, "filter").Warn("ignoring malformed filter", "filter", s, "error", err)
		return MatchAll{}
	}
	return n
}

func decodeString(s string) (Node, error) {
	b, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("filter: invalid base64: %v", err)
	}
	return decodeNode(b)
}

func appendKind(b []byte, kind uint64) []byte {
	b = protowire.AppendTag(b, fieldKind, protowire.VarintType)
	return protowire.AppendVarint(b, kind)
}

func appendVarint(b []byte, num protowire.Number, v uint64) []byte {
	b = protowire.AppendTag(b, num, protowire.VarintType)
	return protowire.AppendVarint(b, v)
}

func appendBytes(b []byte, num protowire.Number, v []byte) []byte {
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendBytes(b, v)
}

func appendChildren(b []byte, children []Node) []byte {
	for _, child := range children {
		b = appendBytes(b, fieldChild, appendNode(nil, child))
	}
	return b
}

func appendNode(b []byte, n Node) []byte {
	switch n := n.(type) {
	case nil, MatchAll:
		b = appendKind(b, kindMatchAll)
	case MatchNone:
		b = appendKind(b, kindMatchNone)
	case IDSet:
		b = appendKind(b, kindIDSet)
		for _, id := range n {
			b = appendBytes(b, fieldID, []byte(id))
		}
	case FieldMatch:
		b = appendKind(b, kindFieldMatch)
		b = appendVarint(b, fieldType, uint64(n.Type))
		b = appendVarint(b, fieldSub, protowire.EncodeZigZag(int64(n.Sub)))
		b = appendBytes(b, fieldValue, []byte(n.Value))
		b = appendVarint(b, fieldFlags, uint64(n.Flags))
	case Union:
		b = appendKind(b, kindUnion)
		b = appendChildren(b, n)
	case Intersection:
		b = appendKind(b, kindIntersection)
		b = appendChildren(b, n)
	case Changed:
		b = appendKind(b, kindChanged)
		b = appendVarint(b, fieldEvent, uint64(n.Event))
		if !n.Since.IsZero() {
			b = appendVarint(b, fieldSince, protowire.EncodeZigZag(n.Since.UnixNano()))
		}
	default:
		b = appendKind(b, kindInvalid)
	}
	return b
}

func decodeNode(b []byte) (Node, error) {
	var (
		kind     uint64
		hasKind  bool
		ids      = []string{}
		fm       FieldMatch
		children = []Node{}
		changed  Changed
	)
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return nil, protowire.ParseError(n)
		}
		b = b[n:]

		switch num {
		case fieldKind, fieldType, fieldSub, fieldFlags, fieldEvent, fieldSince:
			if typ != protowire.VarintType {
				return nil, fmt.Errorf("filter: field %v has wire type %v, want varint", num, typ)
			}
			var v uint64
			v, n = protowire.ConsumeVarint(b)
			if n < 0 {
				return nil, protowire.ParseError(n)
			}
			switch num {
			case fieldKind:
				kind, hasKind = v, true
			case fieldType:
				fm.Type = contacts.FieldType(v)
			case fieldSub:
				fm.Sub = contacts.SubField(protowire.DecodeZigZag(v))
			case fieldFlags:
				fm.Flags = MatchFlags(v)
			case fieldEvent:
				changed.Event = Event(v)
			case fieldSince:
				changed.Since = time.Unix(0, protowire.DecodeZigZag(v)).UTC()
			}
		case fieldID, fieldValue, fieldChild:
			if typ != protowire.BytesType {
				return nil, fmt.Errorf("filter: field %v has wire type %v, want bytes", num, typ)
			}
			var v []byte
			v, n = protowire.ConsumeBytes(b)
			if n < 0 {
				return nil, protowire.ParseError(n)
			}
			switch num {
			case fieldID:
				ids = append(ids, string(v))
			case fieldValue:
				fm.Value = string(v)
			case fieldChild:
				child, err := decodeNode(v)
				if err != nil {
					return nil, err
				}
				children = append(children, child)
			}
		default:
			n = protowire.ConsumeFieldValue(num, typ, b)
			if n < 0 {
				return nil, protowire.ParseError(n)
			}
		}
		b = b[n:]
	}

	if !hasKind {
		return nil, errMissingKind
	}

	switch kind {
	case kindMatchAll:
		return MatchAll{}, nil
	case kindMatchNone:
		return MatchNone{}, nil
	case kindIDSet:
		return IDSet(ids), nil
	case kindFieldMatch:
		return fm, nil
	case kindUnion:
		return Union(children), nil
	case kindIntersection:
		return Intersection(children), nil
	case kindChanged:
		return changed, nil
	default:
		return Invalid{}, nil
	}
}
