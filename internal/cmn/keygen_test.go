package cmn

import "testing"

func TestGenAccessKeyLowerAlnum(t *testing.T) {
	k := GenAccessKey()
	if len(k) != 16 {
		t.Fatalf("len(GenAccessKey()) = %d, want 16", len(k))
	}
	assertLowerAlnum(t, k)
}

func TestGenSecretKeyLowerAlnum(t *testing.T) {
	k := GenSecretKey()
	if len(k) != 32 {
		t.Fatalf("len(GenSecretKey()) = %d, want 32", len(k))
	}
	assertLowerAlnum(t, k)
}

func assertLowerAlnum(t *testing.T, s string) {
	t.Helper()
	for _, r := range s {
		isLower := r >= 'a' && r <= 'z'
		isDigit := r >= '0' && r <= '9'
		if !isLower && !isDigit {
			t.Fatalf("key %q contains non-lowercase-alnum rune %q", s, r)
		}
	}
}
