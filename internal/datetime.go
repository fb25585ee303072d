package internal

import (
	"fmt"
	"strings"
	"time"

	"github.com/emersion/go-ical"
)

const basicDateLen = len("20060102")

// ParseDateTime parses a vCard DATE or DATE-TIME value, such as a BDAY or
// REV property. Both the basic ("19960415", "19951031T222710Z") and the
// extended ("1996-04-15", "1995-10-31T22:27:10Z") ISO 8601 forms are
// accepted. Floating times are interpreted in UTC.
func ParseDateTime(name, value string) (time.Time, error) {
	v := strings.TrimSpace(value)
	if strings.HasPrefix(v, "--") {
		return time.Time{}, fmt.Errorf("contacts: %v value %q has no year", name, value)
	}

	if i := strings.IndexByte(v, 'T'); i >= 0 {
		v = strings.ReplaceAll(v[:i], "-", "") + strings.ReplaceAll(v[i:], ":", "")
	} else {
		v = strings.ReplaceAll(v, "-", "")
	}

	prop := ical.NewProp(name)
	prop.Value = v
	if len(v) == basicDateLen {
		prop.Params.Set(ical.ParamValue, string(ical.ValueDate))
	} else {
		prop.Params.Set(ical.ParamValue, string(ical.ValueDateTime))
	}

	t, err := prop.DateTime(time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("contacts: invalid %v value %q: %v", name, value, err)
	}
	return t, nil
}
