package cmn

import (
	"strings"
	"sync"
	"time"

	"github.com/teris-io/shortid"
)

// keyAlphabet is the 64-symbol alphabet shortid requires, mirroring the
// teacher's cmn/shortid.go uuidABC in shape (size and composition). It
// includes uppercase letters, '-' and '_'; genLowerAlnum case-folds the
// generated output and drops every rune that is not a lowercase letter or
// digit, since §3 specifies auto-generated keys are lowercase
// alphanumeric only.
const keyAlphabet = "0123456789abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ-_"

var (
	keyGenOnce sync.Once
	keyGenSid  *shortid.Shortid
)

func keyGen() *shortid.Shortid {
	keyGenOnce.Do(func() {
		keyGenSid = shortid.MustNew(1, keyAlphabet, uint64(time.Now().UnixNano()))
	})
	return keyGenSid
}

// genLowerAlnum generates a case-folded lowercase alphanumeric string of
// exactly n characters by drawing shortid-generated strings and keeping
// only their alphanumeric runes, looping until n are collected — §3:
// "Keys are case-folded lowercase alphanumerics when auto-generated."
func genLowerAlnum(n int) string {
	var sb strings.Builder
	for sb.Len() < n {
		raw := keyGen().MustGenerate()
		for _, r := range strings.ToLower(raw) {
			if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
				sb.WriteRune(r)
				if sb.Len() == n {
					break
				}
			}
		}
	}
	return sb.String()[:n]
}

// GenAccessKey produces a fresh 16-char access key (§3 Token).
func GenAccessKey() string { return genLowerAlnum(16) }

// GenSecretKey produces a fresh 32-char secret key (§3 Token).
func GenSecretKey() string { return genLowerAlnum(32) }
