package scanner

import "testing"

func TestScanSmartFields(t *testing.T) {
	line := `[2020-01-02] 10.0.0.1 "GET /" user@example.com https://example.com/path?q=1`
	matches := Scan(line, MaskAll)

	want := map[Kind]string{
		KindDate:  "2020-01-02",
		KindIP:    "10.0.0.1",
		KindQuoted: "GET /",
		KindEmail: "user@example.com",
		KindURL:   "https://example.com/path?q=1",
	}
	for k, v := range want {
		got, ok := Nth(matches, k, 1)
		if !ok {
			t.Errorf("kind %v: no match found", k)
			continue
		}
		if got != v {
			t.Errorf("kind %v: got %q, want %q", k, got, v)
		}
	}
}

func TestScanOrderingAndNoSharedOffsets(t *testing.T) {
	line := "10.0.0.1 10.0.0.2 10.0.0.3"
	matches := Scan(line, MaskAll)
	if len(matches) != 3 {
		t.Fatalf("got %d matches, want 3", len(matches))
	}
	lastFrom := -1
	for _, m := range matches {
		if m.From <= lastFrom {
			t.Fatalf("matches not in non-decreasing, non-colliding start order: %+v", matches)
		}
		lastFrom = m.From
	}
	if v, _ := Nth(matches, KindIP, 2); v != "10.0.0.2" {
		t.Errorf("2nd ip = %q, want 10.0.0.2", v)
	}
}

func TestScanMaskSelectsKinds(t *testing.T) {
	// The same line yields an IP match or a QUOTED match depending on
	// which kinds the mask enables; kinds left out of the mask are not
	// scanned.
	line := `"10.0.0.1"`
	ipOnly := Scan(line, Mask(0).With(KindIP))
	if len(ipOnly) != 1 {
		t.Fatalf("ip-only scan: got %d matches, want 1", len(ipOnly))
	}
	quotedOnly := Scan(line, Mask(0).With(KindQuoted))
	if len(quotedOnly) != 1 || quotedOnly[0].Value != "10.0.0.1" {
		t.Fatalf("quoted-only scan: got %+v", quotedOnly)
	}
}

func TestScanMissingKindReturnsNotFound(t *testing.T) {
	matches := Scan("no smart fields here", MaskAll)
	if _, ok := Nth(matches, KindIP, 1); ok {
		t.Error("expected no IP match")
	}
}
