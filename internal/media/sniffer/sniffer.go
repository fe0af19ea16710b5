package sniffer

import (
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

type Kind string

const (
	KindImage Kind = "image"
	KindVideo Kind = "video"
	KindOther Kind = "other"
)

const (
	mimeSVG         = "image/svg+xml"
	mimeOctetStream = "application/octet-stream"
)

type Result struct {
	MIME      string
	Extension string
	Kind      Kind
	// SVG is set when either the declared or the detected type is SVG.
	SVG bool
}

// Detect sniffs the payload's content type.
func Detect(data []byte) Result {
	m := mimetype.Detect(data)
	return newResult(baseType(m.String()), m.Extension())
}

// Resolve keeps the declared content type when there is one and falls back
// to sniffing otherwise.
func Resolve(declared string, data []byte) Result {
	sniffed := Detect(data)

	declared = baseType(declared)
	if declared == "" || declared == mimeOctetStream {
		return sniffed
	}

	ext := ""
	if m := mimetype.Lookup(declared); m != nil {
		ext = m.Extension()
	}
	result := newResult(declared, ext)
	result.SVG = result.SVG || sniffed.SVG
	return result
}

func newResult(mime, ext string) Result {
	ext = strings.TrimPrefix(ext, ".")
	if ext == "" {
		ext = "bin"
	}

	kind := KindOther
	switch {
	case strings.HasPrefix(mime, "image/"):
		kind = KindImage
	case strings.HasPrefix(mime, "video/"):
		kind = KindVideo
	}

	return Result{
		MIME:      mime,
		Extension: ext,
		Kind:      kind,
		SVG:       mime == mimeSVG,
	}
}

func baseType(contentType string) string {
	mime, _, _ := strings.Cut(contentType, ";")
	return strings.ToLower(strings.TrimSpace(mime))
}
