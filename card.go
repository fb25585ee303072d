package contacts

import (
	"strings"
	"time"

	"github.com/emersion/go-vcard"

	"github.com/emersion/go-contacts/internal"
)

// AddressObject is a Record backed by a vCard.
type AddressObject struct {
	Path    string
	ModTime time.Time
	ETag    string
	Card    vcard.Card

	// Created is the creation time, if known.
	Created time.Time
	// Removed is the soft-deletion time. It is zero for live objects.
	Removed time.Time
}

var (
	_ Record    = (*AddressObject)(nil)
	_ Removable = (*AddressObject)(nil)
)

// ID returns the UID property of the card, or the object path if the card
// has none.
func (ao *AddressObject) ID() string {
	if uid := ao.Card.Value(vcard.FieldUID); uid != "" {
		return uid
	}
	return ao.Path
}

func (ao *AddressObject) RemovedAt() time.Time {
	return ao.Removed
}

// Details derives the details of type t from the card properties.
func (ao *AddressObject) Details(t FieldType) []Detail {
	switch t {
	case FieldName:
		var l []Detail
		for _, n := range ao.Card.Names() {
			l = append(l, Detail{Type: t, Values: map[SubField]interface{}{
				NamePrefix: n.HonorificPrefix,
				NameFirst:  n.GivenName,
				NameMiddle: n.AdditionalName,
				NameLast:   n.FamilyName,
				NameSuffix: n.HonorificSuffix,
			}})
		}
		return l
	case FieldAddress:
		var l []Detail
		for _, addr := range ao.Card.Addresses() {
			l = append(l, Detail{Type: t, Values: map[SubField]interface{}{
				AddrStreet:        addr.StreetAddress,
				AddrLocality:      addr.Locality,
				AddrRegion:        addr.Region,
				AddrPostcode:      addr.PostalCode,
				AddrCountry:       addr.Country,
				AddrPostOfficeBox: addr.PostOfficeBox,
			}})
		}
		return l
	case FieldOrganization:
		return ao.organizations()
	case FieldOnlineAccount:
		var l []Detail
		for _, v := range ao.Card.Values(vcard.FieldIMPP) {
			proto, uri := "", v
			if i := strings.IndexByte(v, ':'); i > 0 {
				proto, uri = strings.ToLower(v[:i]), v[i+1:]
			}
			l = append(l, Detail{Type: t, Values: map[SubField]interface{}{
				IMURI:      uri,
				IMProtocol: proto,
			}})
		}
		return l
	case FieldPhoneNumber:
		var l []Detail
		for _, v := range ao.Card.Values(vcard.FieldTelephone) {
			l = append(l, NewDetail(t, strings.TrimPrefix(v, "tel:")))
		}
		return l
	case FieldBirthday:
		var l []Detail
		for _, v := range ao.Card.Values(vcard.FieldBirthday) {
			if bday, err := internal.ParseDateTime(vcard.FieldBirthday, v); err == nil {
				l = append(l, NewDetail(t, bday))
			} else {
				l = append(l, NewDetail(t, v))
			}
		}
		return l
	case FieldGender:
		sex, identity := ao.Card.Gender()
		if sex == "" && identity == "" {
			return nil
		}
		if sex == "" {
			return []Detail{NewDetail(t, identity)}
		}
		return []Detail{NewDetail(t, string(sex))}
	case FieldTimestamp:
		return ao.timestamps()
	case FieldDisplayLabel, FieldNickname, FieldAvatar, FieldEmail, FieldURL, FieldNote:
		var l []Detail
		for _, prop := range vcardProps[t] {
			for _, v := range ao.Card.Values(prop) {
				l = append(l, NewDetail(t, v))
			}
		}
		return l
	}
	return nil
}

// organizations pairs ORG, TITLE and ROLE properties by position. The
// organization location is carried by the X-LOCATION parameter of ORG.
func (ao *AddressObject) organizations() []Detail {
	orgs := ao.Card[vcard.FieldOrganization]
	titles := ao.Card.Values(vcard.FieldTitle)
	roles := ao.Card.Values(vcard.FieldRole)

	n := len(orgs)
	if len(titles) > n {
		n = len(titles)
	}
	if len(roles) > n {
		n = len(roles)
	}

	l := make([]Detail, 0, n)
	for i := 0; i < n; i++ {
		values := make(map[SubField]interface{})
		if i < len(orgs) {
			parts := strings.Split(orgs[i].Value, ";")
			values[OrgName] = parts[0]
			if len(parts) > 1 {
				values[OrgDepartment] = parts[1:]
			}
			if loc := orgs[i].Params.Get("X-LOCATION"); loc != "" {
				values[OrgLocation] = loc
			}
		}
		if i < len(titles) {
			values[OrgTitle] = titles[i]
		}
		if i < len(roles) {
			values[OrgRole] = roles[i]
		}
		l = append(l, Detail{Type: FieldOrganization, Values: values})
	}
	return l
}

func (ao *AddressObject) timestamps() []Detail {
	values := make(map[SubField]interface{})
	if !ao.Created.IsZero() {
		values[TimestampCreated] = ao.Created
	}
	modTime := ao.ModTime
	if rev := ao.Card.Value(vcard.FieldRevision); rev != "" {
		if t, err := internal.ParseDateTime(vcard.FieldRevision, rev); err == nil {
			modTime = t
		}
	}
	if !modTime.IsZero() {
		values[TimestampModified] = modTime
	}
	if len(values) == 0 {
		return nil
	}
	return []Detail{{Type: FieldTimestamp, Values: values}}
}
