package sortorder

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/emersion/go-contacts"
)

func TestParseClause(t *testing.T) {
	for _, tc := range []struct {
		clause string
		want   Key
		ok     bool
	}{
		{"FIRST_NAME ASC", NewKey(contacts.FieldName, contacts.NameFirst), true},
		{"  first_name  ", NewKey(contacts.FieldName, contacts.NameFirst), true},
		{"ADDR_STREET DESC", Key{Field: contacts.Field{Type: contacts.FieldAddress, Sub: contacts.AddrStreet}, Direction: Descending}, true},
		{"phone desc", Key{Field: contacts.Field{Type: contacts.FieldPhoneNumber, Sub: contacts.SubFieldValue}, Direction: Descending}, true},
		{"FIRSTNAME ASC", Key{}, false},
		{"FIRST_NAME UP", Key{}, false},
		{"FIRST_NAME ASC URL", Key{}, false},
		{"", Key{}, false},
	} {
		t.Run(tc.clause, func(t *testing.T) {
			key, ok := ParseClause(tc.clause)
			require.Equal(t, tc.ok, ok)
			assert.Equal(t, tc.want, key)
		})
	}
}

func TestEncodeDecode(t *testing.T) {
	for _, tc := range []struct {
		name    string
		in      string
		wantLen int
		want    string
	}{
		{
			name:    "single",
			in:      "FIRST_NAME ASC",
			wantLen: 1,
			want:    "FIRST_NAME ASC",
		},
		{
			name:    "default-directions",
			in:      "FIRST_NAME ASC, ORG_DEPARTMENT, ADDR_STREET DESC, URL",
			wantLen: 4,
			want:    "FIRST_NAME ASC, ORG_DEPARTMENT ASC, ADDR_STREET DESC, URL ASC",
		},
		{
			name:    "unknown-field-dropped",
			in:      "FIRSTNAME ASC, URL",
			wantLen: 1,
			want:    "URL ASC",
		},
		{
			name:    "missing-comma",
			in:      "FIRST_NAME ASC URL",
			wantLen: 0,
			want:    "",
		},
		{
			name:    "empty",
			in:      "",
			wantLen: 0,
			want:    "",
		},
		{
			name:    "empty-clauses",
			in:      "LAST_NAME,,EMAIL DESC,",
			wantLen: 2,
			want:    "LAST_NAME ASC, EMAIL DESC",
		},
	} {
		t.Run(tc.name, func(t *testing.T) {
			spec := Decode(tc.in)
			require.Len(t, spec, tc.wantLen)
			assert.Equal(t, tc.want, Encode(spec))
			assert.Equal(t, spec, Decode(Encode(spec)))
		})
	}
}

func TestEncodeSkipsUnknownFields(t *testing.T) {
	spec := Spec{
		NewKey(contacts.FieldTimestamp, contacts.TimestampModified),
		NewKey(contacts.FieldName, contacts.NameLast),
	}
	assert.Equal(t, "LAST_NAME ASC", Encode(spec))
}

func TestDecodeLogs(t *testing.T) {
	var buf bytes.Buffer
	c := Codec{Logger: slog.New(slog.NewTextHandler(&buf, nil))}

	spec := c.Decode("NICK ASC, NICKNAME SIDEWAYS")
	assert.Empty(t, spec)
	assert.Contains(t, buf.String(), "unknown sort field")
	assert.Contains(t, buf.String(), "invalid sort direction")
	assert.Contains(t, buf.String(), "component=sortorder")
}
