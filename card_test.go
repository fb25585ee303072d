package contacts

import (
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/emersion/go-vcard"
)

const aliceData = `BEGIN:VCARD
VERSION:4.0
UID:urn:uuid:4fbe8971-0bc3-424c-9c26-36c3e1eff6b1
FN;PID=1.1:Alice Gopher
N:Gopher;Alice;Marie;Dr.;PhD
NICKNAME:Al
BDAY:1996-04-15
EMAIL;PID=1.1:alice@example.com
TEL;TYPE=cell:tel:+1-650-253-0000
TEL:555 0100
ADR:;;123 Main Street;Springfield;IL;62701;USA
ORG;X-LOCATION=Building 7:Example Corp.;Research;Go Team
TITLE:Engineer
ROLE:Maintainer
IMPP:xmpp:alice@example.com
URL:https://alice.example.com
GENDER:F
REV:19951031T222710Z
END:VCARD`

func newAO(t *testing.T, str string) *AddressObject {
	card, err := vcard.NewDecoder(strings.NewReader(str)).Decode()
	if err != nil {
		t.Fatal(err)
	}
	return &AddressObject{Path: "/alice.vcf", Card: card}
}

func TestAddressObjectDetails(t *testing.T) {
	alice := newAO(t, aliceData)

	if got, want := alice.ID(), "urn:uuid:4fbe8971-0bc3-424c-9c26-36c3e1eff6b1"; got != want {
		t.Errorf("ID() = %q, want %q", got, want)
	}

	for _, tc := range []struct {
		name string
		typ  FieldType
		want []Detail
	}{
		{
			name: "name",
			typ:  FieldName,
			want: []Detail{{Type: FieldName, Values: map[SubField]interface{}{
				NamePrefix: "Dr.",
				NameFirst:  "Alice",
				NameMiddle: "Marie",
				NameLast:   "Gopher",
				NameSuffix: "PhD",
			}}},
		},
		{
			name: "display-label",
			typ:  FieldDisplayLabel,
			want: []Detail{NewDetail(FieldDisplayLabel, "Alice Gopher")},
		},
		{
			name: "birthday",
			typ:  FieldBirthday,
			want: []Detail{NewDetail(FieldBirthday, time.Date(1996, 4, 15, 0, 0, 0, 0, time.UTC))},
		},
		{
			name: "phone-numbers",
			typ:  FieldPhoneNumber,
			want: []Detail{
				NewDetail(FieldPhoneNumber, "+1-650-253-0000"),
				NewDetail(FieldPhoneNumber, "555 0100"),
			},
		},
		{
			name: "address",
			typ:  FieldAddress,
			want: []Detail{{Type: FieldAddress, Values: map[SubField]interface{}{
				AddrStreet:        "123 Main Street",
				AddrLocality:      "Springfield",
				AddrRegion:        "IL",
				AddrPostcode:      "62701",
				AddrCountry:       "USA",
				AddrPostOfficeBox: "",
			}}},
		},
		{
			name: "organization",
			typ:  FieldOrganization,
			want: []Detail{{Type: FieldOrganization, Values: map[SubField]interface{}{
				OrgName:       "Example Corp.",
				OrgDepartment: []string{"Research", "Go Team"},
				OrgLocation:   "Building 7",
				OrgTitle:      "Engineer",
				OrgRole:       "Maintainer",
			}}},
		},
		{
			name: "online-account",
			typ:  FieldOnlineAccount,
			want: []Detail{{Type: FieldOnlineAccount, Values: map[SubField]interface{}{
				IMURI:      "alice@example.com",
				IMProtocol: "xmpp",
			}}},
		},
		{
			name: "gender",
			typ:  FieldGender,
			want: []Detail{NewDetail(FieldGender, "F")},
		},
		{
			name: "timestamp",
			typ:  FieldTimestamp,
			want: []Detail{{Type: FieldTimestamp, Values: map[SubField]interface{}{
				TimestampModified: time.Date(1995, 10, 31, 22, 27, 10, 0, time.UTC),
			}}},
		},
		{
			name: "missing",
			typ:  FieldNote,
			want: nil,
		},
	} {
		t.Run(tc.name, func(t *testing.T) {
			got := alice.Details(tc.typ)
			if !reflect.DeepEqual(got, tc.want) {
				t.Fatalf("invalid details:\ngot= %+v\nwant=%+v", got, tc.want)
			}
		})
	}
}

func TestAddressObjectIDFallback(t *testing.T) {
	ao := newAO(t, `BEGIN:VCARD
VERSION:4.0
FN:Nobody
END:VCARD`)
	if got, want := ao.ID(), "/alice.vcf"; got != want {
		t.Errorf("ID() = %q, want %q", got, want)
	}
}

func TestAddressObjectUnparsableBirthday(t *testing.T) {
	ao := newAO(t, `BEGIN:VCARD
VERSION:4.0
FN:Nobody
BDAY:--0415
END:VCARD`)
	got := ao.Details(FieldBirthday)
	want := []Detail{NewDetail(FieldBirthday, "--0415")}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("invalid details:\ngot= %+v\nwant=%+v", got, want)
	}
}

func TestAddressObjectGenderIdentity(t *testing.T) {
	for _, tc := range []struct {
		name   string
		gender string
		want   []Detail
	}{
		{"sex", "GENDER:M", []Detail{NewDetail(FieldGender, "M")}},
		{"sex-and-identity", "GENDER:O;intersex", []Detail{NewDetail(FieldGender, "O")}},
		{"identity-only", "GENDER:;non-binary", []Detail{NewDetail(FieldGender, "non-binary")}},
		{"none", "NOTE:no gender", nil},
	} {
		t.Run(tc.name, func(t *testing.T) {
			ao := newAO(t, "BEGIN:VCARD\nVERSION:4.0\nFN:Nobody\n"+tc.gender+"\nEND:VCARD")
			got := ao.Details(FieldGender)
			if !reflect.DeepEqual(got, tc.want) {
				t.Fatalf("invalid details:\ngot= %+v\nwant=%+v", got, tc.want)
			}
		})
	}
}

func TestContactDetails(t *testing.T) {
	c := &Contact{
		UID: "1",
		Fields: []Detail{
			NewDetail(FieldEmail, "a@example.com"),
			NewDetail(FieldPhoneNumber, "123"),
			NewDetail(FieldEmail, "b@example.com"),
		},
	}
	got := c.Details(FieldEmail)
	want := []Detail{
		NewDetail(FieldEmail, "a@example.com"),
		NewDetail(FieldEmail, "b@example.com"),
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("invalid details:\ngot= %+v\nwant=%+v", got, want)
	}
	if !RemovedAt(c).IsZero() {
		t.Errorf("RemovedAt() = %v, want zero", RemovedAt(c))
	}
}
