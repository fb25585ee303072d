package contacts

import (
	"strings"
	"sync"

	"github.com/emersion/go-vcard"
)

type detailToken struct {
	token string
	typ   FieldType
}

type fieldToken struct {
	token string
	field Field
}

// Detail tokens, used by fetch hints and presence filters.
var detailTokens = []detailToken{
	{"ADR", FieldAddress},
	{"BDAY", FieldBirthday},
	{"EMAIL", FieldEmail},
	{"FN", FieldDisplayLabel},
	{"GENDER", FieldGender},
	{"N", FieldName},
	{"NICKNAME", FieldNickname},
	{"NOTE", FieldNote},
	{"ORG", FieldOrganization},
	{"PHOTO", FieldAvatar},
	{"TEL", FieldPhoneNumber},
	{"URL", FieldURL},
}

// Field tokens, used by sort clauses and value filters. MIDLE_NAME is
// misspelled on the wire and existing callers depend on it.
var fieldTokens = []fieldToken{
	{"NAME_PREFIX", Field{FieldName, NamePrefix}},
	{"FIRST_NAME", Field{FieldName, NameFirst}},
	{"MIDLE_NAME", Field{FieldName, NameMiddle}},
	{"LAST_NAME", Field{FieldName, NameLast}},
	{"NAME_SUFFIX", Field{FieldName, NameSuffix}},
	{"FULL_NAME", Field{FieldDisplayLabel, SubFieldValue}},
	{"NICKNAME", Field{FieldNickname, SubFieldValue}},
	{"BIRTHDAY", Field{FieldBirthday, SubFieldValue}},
	{"PHOTO", Field{FieldAvatar, SubFieldValue}},
	{"ORG_ROLE", Field{FieldOrganization, OrgRole}},
	{"ORG_NAME", Field{FieldOrganization, OrgName}},
	{"ORG_DEPARTMENT", Field{FieldOrganization, OrgDepartment}},
	{"ORG_LOCATION", Field{FieldOrganization, OrgLocation}},
	{"ORG_TITLE", Field{FieldOrganization, OrgTitle}},
	{"EMAIL", Field{FieldEmail, SubFieldValue}},
	{"PHONE", Field{FieldPhoneNumber, SubFieldValue}},
	{"ADDR_STREET", Field{FieldAddress, AddrStreet}},
	{"ADDR_LOCALITY", Field{FieldAddress, AddrLocality}},
	{"ADDR_REGION", Field{FieldAddress, AddrRegion}},
	{"ADDR_COUNTRY", Field{FieldAddress, AddrCountry}},
	{"ADDR_POSTCODE", Field{FieldAddress, AddrPostcode}},
	{"ADDR_POST_OFFICE_BOX", Field{FieldAddress, AddrPostOfficeBox}},
	{"IM_URI", Field{FieldOnlineAccount, IMURI}},
	{"IM_PROTOCOL", Field{FieldOnlineAccount, IMProtocol}},
	{"URL", Field{FieldURL, SubFieldValue}},
}

var vcardProps = map[FieldType][]string{
	FieldAddress:       {vcard.FieldAddress},
	FieldBirthday:      {vcard.FieldBirthday},
	FieldDisplayLabel:  {vcard.FieldFormattedName},
	FieldEmail:         {vcard.FieldEmail},
	FieldGender:        {vcard.FieldGender},
	FieldName:          {vcard.FieldName},
	FieldNickname:      {vcard.FieldNickname},
	FieldNote:          {vcard.FieldNote},
	FieldOrganization:  {vcard.FieldOrganization, vcard.FieldTitle, vcard.FieldRole},
	FieldAvatar:        {vcard.FieldPhoto},
	FieldPhoneNumber:   {vcard.FieldTelephone},
	FieldURL:           {vcard.FieldURL},
	FieldOnlineAccount: {vcard.FieldIMPP},
	FieldTimestamp:     {vcard.FieldRevision},
}

// Registry maps upper-case wire tokens to detail types and fields. A
// Registry is immutable once built and safe for concurrent use.
type Registry struct {
	details     []detailToken
	fields      []fieldToken
	byDetail    map[string]FieldType
	detailNames map[FieldType]string
	byField     map[string]Field
	fieldNames  map[Field]string
	props       map[FieldType][]string
}

// NewRegistry builds the registry of wire tokens.
func NewRegistry() *Registry {
	r := &Registry{
		details:     detailTokens,
		fields:      fieldTokens,
		byDetail:    make(map[string]FieldType, len(detailTokens)),
		detailNames: make(map[FieldType]string, len(detailTokens)),
		byField:     make(map[string]Field, len(fieldTokens)),
		fieldNames:  make(map[Field]string, len(fieldTokens)),
		props:       vcardProps,
	}
	for _, dt := range detailTokens {
		r.byDetail[dt.token] = dt.typ
		r.detailNames[dt.typ] = dt.token
	}
	for _, ft := range fieldTokens {
		r.byField[ft.token] = ft.field
		r.fieldNames[ft.field] = ft.token
	}
	return r
}

// DefaultRegistry returns the process-wide registry. It is built on first
// use.
var DefaultRegistry = sync.OnceValue(NewRegistry)

// DetailType resolves a detail token such as "TEL". Lookups are
// case-insensitive and ignore surrounding spaces.
func (r *Registry) DetailType(token string) (FieldType, bool) {
	t, ok := r.byDetail[strings.ToUpper(strings.TrimSpace(token))]
	return t, ok
}

// DetailToken returns the wire token of a detail type.
func (r *Registry) DetailToken(t FieldType) (string, bool) {
	s, ok := r.detailNames[t]
	return s, ok
}

// DetailTypes returns the detail types known to the registry, in registry
// order.
func (r *Registry) DetailTypes() []FieldType {
	l := make([]FieldType, len(r.details))
	for i, dt := range r.details {
		l[i] = dt.typ
	}
	return l
}

// Field resolves a field token such as "FIRST_NAME".
func (r *Registry) Field(token string) (Field, bool) {
	f, ok := r.byField[strings.ToUpper(strings.TrimSpace(token))]
	return f, ok
}

// FieldToken returns the wire token of a field.
func (r *Registry) FieldToken(f Field) (string, bool) {
	s, ok := r.fieldNames[f]
	return s, ok
}

// FieldTokens returns all field tokens in registry order.
func (r *Registry) FieldTokens() []string {
	l := make([]string, len(r.fields))
	for i, ft := range r.fields {
		l[i] = ft.token
	}
	return l
}

// Properties returns the vCard property names carrying details of type t.
func (r *Registry) Properties(t FieldType) []string {
	return r.props[t]
}
