package models

import (
	"encoding/base64"
	"errors"
	"strings"
)

var ErrInvalidDataURI = errors.New("invalid data uri")

type Media struct {
	ContentType string
	Data        []byte
}

// DataURI renders m as data:<type>;base64,<payload>. A nil or empty media
// renders as "".
func (m *Media) DataURI() string {
	if m == nil || len(m.Data) == 0 {
		return ""
	}
	return "data:" + m.ContentType + ";base64," + base64.StdEncoding.EncodeToString(m.Data)
}

func (m *Media) Clone() *Media {
	if m == nil {
		return nil
	}
	data := make([]byte, len(m.Data))
	copy(data, m.Data)
	return &Media{ContentType: m.ContentType, Data: data}
}

func ParseDataURI(uri string) (*Media, error) {
	rest, ok := strings.CutPrefix(uri, "data:")
	if !ok {
		return nil, ErrInvalidDataURI
	}
	contentType, payload, ok := strings.Cut(rest, ";base64,")
	if !ok {
		return nil, ErrInvalidDataURI
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, ErrInvalidDataURI
	}
	return &Media{ContentType: contentType, Data: data}, nil
}
