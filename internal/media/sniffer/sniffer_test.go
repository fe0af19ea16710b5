package sniffer

import "testing"

var pngHead = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n', 0, 0, 0, 0x0d, 'I', 'H', 'D', 'R'}

func TestDetectPNG(t *testing.T) {
	r := Detect(pngHead)
	if r.MIME != "image/png" || r.Extension != "png" || r.Kind != KindImage {
		t.Fatalf("unexpected result: %+v", r)
	}
}

func TestDetectSVG(t *testing.T) {
	r := Detect([]byte(`<svg xmlns="http://www.w3.org/2000/svg" width="1" height="1"></svg>`))
	if !r.SVG || r.MIME != "image/svg+xml" {
		t.Fatalf("expected svg, got %+v", r)
	}
}

func TestResolvePrefersDeclaredType(t *testing.T) {
	r := Resolve("image/jpeg; charset=binary", pngHead)
	if r.MIME != "image/jpeg" {
		t.Fatalf("expected declared type, got %+v", r)
	}
}

func TestResolveFallsBackToSniffing(t *testing.T) {
	for _, declared := range []string{"", "application/octet-stream"} {
		r := Resolve(declared, pngHead)
		if r.MIME != "image/png" {
			t.Fatalf("declared %q: expected sniffed png, got %+v", declared, r)
		}
	}
}

func TestResolveFlagsDisguisedSVG(t *testing.T) {
	r := Resolve("image/png", []byte(`<svg xmlns="http://www.w3.org/2000/svg"><script>alert(1)</script></svg>`))
	if !r.SVG {
		t.Fatalf("svg payload declared as png should still be flagged")
	}
}

func TestKindFollowsResolvedType(t *testing.T) {
	cases := map[string]Kind{
		"image/png":       KindImage,
		"video/mp4":       KindVideo,
		"text/plain":      KindOther,
		"application/pdf": KindOther,
	}
	for declared, want := range cases {
		if got := Resolve(declared, pngHead).Kind; got != want {
			t.Fatalf("declared %q: got kind %q, want %q", declared, got, want)
		}
	}
	if got := Resolve("", []byte("%PDF-1.4\n")).Kind; got != KindOther {
		t.Fatalf("sniffed pdf should not be an image, got %q", got)
	}
}
