// Package contacts provides the record model shared by the contact query
// codecs: typed details, field identifiers and the field registry.
//
// Sub-packages translate contact queries to and from compact wire strings:
// filter for predicate trees, sortorder for sort clauses and record
// ordering, fetchhint for field projections.
package contacts

import (
	"time"
)

// FieldType is the kind of a Detail, roughly a vCard property group.
type FieldType int

const (
	FieldInvalid FieldType = iota
	FieldAddress
	FieldBirthday
	FieldDisplayLabel
	FieldEmail
	FieldGender
	FieldName
	FieldNickname
	FieldNote
	FieldOrganization
	FieldAvatar
	FieldPhoneNumber
	FieldURL
	FieldOnlineAccount
	FieldTimestamp
)

var fieldTypeNames = map[FieldType]string{
	FieldInvalid:       "invalid",
	FieldAddress:       "address",
	FieldBirthday:      "birthday",
	FieldDisplayLabel:  "display-label",
	FieldEmail:         "email",
	FieldGender:        "gender",
	FieldName:          "name",
	FieldNickname:      "nickname",
	FieldNote:          "note",
	FieldOrganization:  "organization",
	FieldAvatar:        "avatar",
	FieldPhoneNumber:   "phone-number",
	FieldURL:           "url",
	FieldOnlineAccount: "online-account",
	FieldTimestamp:     "timestamp",
}

func (t FieldType) String() string {
	if s, ok := fieldTypeNames[t]; ok {
		return s
	}
	return "unknown"
}

// SubField indexes a value inside a Detail. Its meaning depends on the
// detail's FieldType.
type SubField int

// SubFieldNone selects no value: a query on it only tests whether a detail
// of the type exists.
const SubFieldNone SubField = -1

// SubFieldValue is the only sub-field of single-valued details such as
// e-mail addresses, phone numbers or notes.
const SubFieldValue SubField = 0

// Name sub-fields.
const (
	NamePrefix SubField = iota
	NameFirst
	NameMiddle
	NameLast
	NameSuffix
)

// Organization sub-fields. OrgDepartment holds a []string.
const (
	OrgName SubField = iota
	OrgDepartment
	OrgLocation
	OrgRole
	OrgTitle
)

// Address sub-fields.
const (
	AddrStreet SubField = iota
	AddrLocality
	AddrRegion
	AddrPostcode
	AddrCountry
	AddrPostOfficeBox
)

// Online account sub-fields.
const (
	IMURI SubField = iota
	IMProtocol
)

// Timestamp sub-fields, both holding a time.Time.
const (
	TimestampCreated SubField = iota
	TimestampModified
)

// Field identifies one value of a record: a detail type and a sub-field.
type Field struct {
	Type FieldType
	Sub  SubField
}

// Detail is one typed attribute group of a record. A record may carry
// several details of the same type.
type Detail struct {
	Type   FieldType
	Values map[SubField]interface{}
}

// NewDetail returns a single-valued detail.
func NewDetail(t FieldType, value interface{}) Detail {
	return Detail{Type: t, Values: map[SubField]interface{}{SubFieldValue: value}}
}

// Value returns the value stored under sub, or nil.
func (d Detail) Value(sub SubField) interface{} {
	if d.Values == nil {
		return nil
	}
	return d.Values[sub]
}

// Record is a contact as seen by the query codecs. The codecs only read
// records, they never create or modify them.
type Record interface {
	ID() string
	// Details returns the details of the given type, in record order.
	Details(t FieldType) []Detail
}

// Removable is implemented by records that may be soft-deleted.
type Removable interface {
	// RemovedAt returns the deletion time, or the zero time for a live
	// record.
	RemovedAt() time.Time
}

// Contact is an in-memory Record.
type Contact struct {
	UID     string
	Removed time.Time
	Fields  []Detail
}

var (
	_ Record    = (*Contact)(nil)
	_ Removable = (*Contact)(nil)
)

func (c *Contact) ID() string {
	return c.UID
}

func (c *Contact) Details(t FieldType) []Detail {
	var l []Detail
	for _, d := range c.Fields {
		if d.Type == t {
			l = append(l, d)
		}
	}
	return l
}

func (c *Contact) RemovedAt() time.Time {
	return c.Removed
}

// RemovedAt returns the deletion time of rec, or the zero time when rec is
// live or cannot be soft-deleted.
func RemovedAt(rec Record) time.Time {
	if r, ok := rec.(Removable); ok {
		return r.RemovedAt()
	}
	return time.Time{}
}
