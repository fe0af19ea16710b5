package models

import (
	"bytes"
	"testing"
)

func TestDataURIRoundTrip(t *testing.T) {
	m := &Media{ContentType: "image/png", Data: []byte{0x89, 'P', 'N', 'G', 0x00, 0xff}}

	uri := m.DataURI()
	if uri[:len("data:image/png;base64,")] != "data:image/png;base64," {
		t.Fatalf("unexpected prefix: %s", uri)
	}

	parsed, err := ParseDataURI(uri)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if parsed.ContentType != m.ContentType || !bytes.Equal(parsed.Data, m.Data) {
		t.Fatalf("round trip mismatch: %+v", parsed)
	}
}

func TestDataURIEmpty(t *testing.T) {
	var m *Media
	if m.DataURI() != "" {
		t.Fatalf("nil media should render empty")
	}
	if (&Media{ContentType: "image/png"}).DataURI() != "" {
		t.Fatalf("media without bytes should render empty")
	}
}

func TestParseDataURIRejectsMalformed(t *testing.T) {
	for _, s := range []string{"", "image/png;base64,AAAA", "data:image/png,AAAA", "data:image/png;base64,!!"} {
		if _, err := ParseDataURI(s); err == nil {
			t.Fatalf("expected error for %q", s)
		}
	}
}

func TestProfileUpdateAppliesOnlySuppliedFields(t *testing.T) {
	city := "Lagos"
	u := User{Name: "Ada", City: "Abuja", Country: "NG"}
	ProfileUpdate{City: &city}.Apply(&u)

	if u.City != "Lagos" || u.Name != "Ada" || u.Country != "NG" {
		t.Fatalf("unexpected user after update: %+v", u)
	}
}
