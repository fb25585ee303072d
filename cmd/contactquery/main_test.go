package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/emersion/go-contacts"
	"github.com/emersion/go-contacts/filter"
)

const testCards = `BEGIN:VCARD
VERSION:4.0
UID:carla
FN:Carla Gopher
N:Gopher;Carla;;;
TEL:+1 650 253 0000
EMAIL:carla@example.com
END:VCARD
BEGIN:VCARD
VERSION:4.0
UID:alice
FN:Alice Gopher
N:Gopher;Alice;;;
EMAIL:alice@example.com
NOTE:first
END:VCARD
BEGIN:VCARD
VERSION:4.0
UID:bob
FN:Bob Arnold
N:Arnold;Bob;;;
END:VCARD
`

func run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetOut(&out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func uids(s string) []string {
	var l []string
	for _, line := range strings.Split(s, "\n") {
		line = strings.TrimSpace(line)
		if strings.HasPrefix(line, "UID:") {
			l = append(l, strings.TrimPrefix(line, "UID:"))
		}
	}
	return l
}

func TestQuery(t *testing.T) {
	email := filter.Encode(filter.Presence(contacts.FieldEmail))

	for _, tc := range []struct {
		name string
		args []string
		want []string
	}{
		{"all", []string{"query"}, []string{"carla", "alice", "bob"}},
		{"filter", []string{"query", "--filter", email}, []string{"carla", "alice"}},
		{"sort", []string{"query", "--sort", "LAST_NAME, FIRST_NAME DESC"}, []string{"bob", "carla", "alice"}},
		{"limit", []string{"query", "--sort", "FIRST_NAME", "--limit", "2"}, []string{"alice", "bob"}},
	} {
		t.Run(tc.name, func(t *testing.T) {
			out, err := run(t, testCards, tc.args...)
			require.NoError(t, err)
			assert.Equal(t, tc.want, uids(out))
		})
	}
}

func TestQueryFields(t *testing.T) {
	out, err := run(t, testCards, "query", "--fields", "FIELDS:TEL", "--filter",
		filter.Encode(filter.IDSet{"carla"}))
	require.NoError(t, err)
	assert.Contains(t, out, "TEL:+1 650 253 0000")
	assert.Contains(t, out, "UID:carla")
	assert.NotContains(t, out, "EMAIL")
	assert.NotContains(t, out, "FN:")
}

func TestQuerySortFromEnv(t *testing.T) {
	t.Setenv("CONTACTQUERY_SORT", "FIRST_NAME DESC")
	out, err := run(t, testCards, "query")
	require.NoError(t, err)
	assert.Equal(t, []string{"carla", "bob", "alice"}, uids(out))
}

func TestQueryRemoved(t *testing.T) {
	dir := t.TempDir()
	live := filepath.Join(dir, "live.vcf")
	gone := filepath.Join(dir, "gone.vcf")
	require.NoError(t, os.WriteFile(live, []byte(testCards), 0o644))
	require.NoError(t, os.WriteFile(gone, []byte(`BEGIN:VCARD
VERSION:4.0
UID:dave
FN:Dave Gopher
EMAIL:dave@example.com
END:VCARD
`), 0o644))
	removedAt := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, os.Chtimes(gone, removedAt, removedAt))

	out, err := run(t, "", "query", "--removed", gone, live)
	require.NoError(t, err)
	assert.Equal(t, []string{"carla", "alice", "bob"}, uids(out))

	out, err = run(t, "", "query", "--removed", gone, "--removed-since", "2024-04-01", live)
	require.NoError(t, err)
	assert.Equal(t, []string{"dave"}, uids(out))

	out, err = run(t, "", "query", "--removed", gone, "--removed-since", "2024-06-01T00:00:00Z", live)
	require.NoError(t, err)
	assert.Empty(t, uids(out))

	out, err = run(t, "", "query", "--removed", gone, "--filter",
		filter.Encode(filter.Intersection{filter.Presence(contacts.FieldEmail)}), live)
	require.NoError(t, err)
	assert.Equal(t, []string{"carla", "alice"}, uids(out))

	out, err = run(t, "", "query", "--removed", gone, "--filter", filter.Encode(filter.IDSet{"dave", "bob"}), live)
	require.NoError(t, err)
	assert.Equal(t, []string{"bob", "dave"}, uids(out))
}

func TestQueryInvalidFilter(t *testing.T) {
	_, err := run(t, testCards, "query", "--filter", filter.Encode(filter.Union{filter.Invalid{}}))
	assert.Error(t, err)
}

func TestFilterCommands(t *testing.T) {
	out, err := run(t, "", "filter", "presence", "tel")
	require.NoError(t, err)
	assert.Equal(t, filter.Presence(contacts.FieldPhoneNumber), filter.Decode(out))

	out, err = run(t, "", "filter", "match", "--starts-with", "--case-sensitive", "FIRST_NAME", "Al")
	require.NoError(t, err)
	assert.Equal(t, filter.FieldMatch{
		Type:  contacts.FieldName,
		Sub:   contacts.NameFirst,
		Value: "Al",
		Flags: filter.MatchStartsWith | filter.MatchCaseSensitive,
	}, filter.Decode(out))

	_, err = run(t, "", "filter", "match", "--contains", "--exactly", "FIRST_NAME", "Al")
	assert.Error(t, err)

	_, err = run(t, "", "filter", "match", "FIRSTNAME", "Al")
	assert.Error(t, err)

	ids, err := run(t, "", "filter", "ids", "1", "2")
	require.NoError(t, err)
	removed, err := run(t, "", "filter", "removed-since", "2024-01-01T00:00:00Z")
	require.NoError(t, err)
	assert.Equal(t, filter.RemovedSince(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)), filter.Decode(removed))

	out, err = run(t, "", "filter", "union", strings.TrimSpace(ids), strings.TrimSpace(removed))
	require.NoError(t, err)
	assert.Equal(t, filter.Union{
		filter.IDSet{"1", "2"},
		filter.RemovedSince(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)),
	}, filter.Decode(out))

	out, err = run(t, "", "filter", "intersect", strings.TrimSpace(ids))
	require.NoError(t, err)
	assert.Equal(t, filter.Intersection{filter.IDSet{"1", "2"}}, filter.Decode(out))

	out, err = run(t, "", "filter", "show", strings.TrimSpace(removed))
	require.NoError(t, err)
	assert.Equal(t, "REMOVED SINCE 2024-01-01T00:00:00Z\nvalid: true\nempty: false\nincludes removed: true\n", out)
}

func TestNormalizeCommands(t *testing.T) {
	out, err := run(t, "", "sort", "normalize", "first_name, ORG_DEPARTMENT DESC, BOGUS")
	require.NoError(t, err)
	assert.Equal(t, "FIRST_NAME ASC, ORG_DEPARTMENT DESC\n", out)

	out, err = run(t, "", "hint", "normalize", "FIELDS:TEL,N,BOGUS")
	require.NoError(t, err)
	assert.Equal(t, "FIELDS:N,TEL\n", out)
}

func TestInvalidConfig(t *testing.T) {
	_, err := run(t, "", "--log-level", "loud", "sort", "normalize", "URL")
	assert.Error(t, err)

	_, err = run(t, "", "--language", "not a language!", "sort", "normalize", "URL")
	assert.Error(t, err)
}
