// Package scanner implements the smart-field scanner (§4.B): a
// multi-pattern pass over a raw log line that extracts typed substrings
// (IP, email, date, quoted string, URL) with their match offsets.
package scanner

import (
	"regexp"
	"sort"

	"github.com/minio/minsql/internal/cmn/debug"
)

// Kind identifies a smart-field pattern.
type Kind uint8

const (
	KindIP Kind = iota
	KindEmail
	KindDate
	KindQuoted
	KindURL

	numKinds = 5
)

func (k Kind) String() string {
	switch k {
	case KindIP:
		return "ip"
	case KindEmail:
		return "email"
	case KindDate:
		return "date"
	case KindQuoted:
		return "quoted"
	case KindURL:
		return "url"
	default:
		return "unknown"
	}
}

// ParseKind maps a smart-identifier suffix (e.g. "ip", "email") to a Kind.
func ParseKind(s string) (Kind, bool) {
	switch s {
	case "ip":
		return KindIP, true
	case "email":
		return KindEmail, true
	case "date":
		return KindDate, true
	case "quoted":
		return KindQuoted, true
	case "url":
		return KindURL, true
	default:
		return 0, false
	}
}

// Mask is a bitmask over the five Kinds, letting callers run only the
// patterns a query actually references (all five are compiled once at
// init regardless) (§4.B.ADD) — the same
// bitmask-flag idiom the teacher uses for cmn.FeatureFlags.
type Mask uint8

func (m Mask) Has(k Kind) bool { return m&(1<<k) != 0 }
func (m Mask) With(k Kind) Mask { return m | (1 << k) }

const MaskAll = Mask(1<<numKinds - 1)

// Match is one extracted substring, with its kind and half-open [From,To)
// byte offsets into the original line (§3 invariant / §8 property 3).
type Match struct {
	Kind  Kind
	From  int
	To    int
	Value string
}

// patterns are authoritative per §4.B's table. All are case-insensitive
// and compiled once at init, following the teacher's habit of
// package-level regexp.MustCompile rather than per-call compilation.
var patterns = [numKinds]*regexp.Regexp{
	KindIP: regexp.MustCompile(
		`(?i)\b(?:(?:25[0-5]|2[0-4][0-9]|1[0-9]{2}|[1-9]?[0-9])\.){3}(?:25[0-5]|2[0-4][0-9]|1[0-9]{2}|[1-9]?[0-9])\b`),
	KindEmail: regexp.MustCompile(
		`(?i)[A-Z0-9.!#$%&'*+\-=?^_` + "`" + `{|}~]+@[A-Z0-9.\-]+\.[A-Z]{2,4}`),
	KindDate: regexp.MustCompile(
		`(?i)(?:(?:19[7-9][0-9]|2[0-9]{3})[-/](?:0[1-9]|1[0-2])[-/](?:0[1-9]|[12][0-9]|3[01])` +
			`|(?:0[1-9]|[12][0-9]|3[01])[-/][A-Z]{3}[-/](?:19[7-9][0-9]|2[0-9]{3}))`),
	KindQuoted: regexp.MustCompile(`"[^"]*"|'[^']*'`),
	KindURL: regexp.MustCompile(
		`(?i)(?:https|ftp)://[^\s()\[\]]+`),
}

// Scan runs every pattern enabled in mask over line and returns the
// matches in non-decreasing start-offset order with the §4.B collision
// rule folded in as a post-pass: when two matches share a start offset,
// only the longer one survives.
func Scan(line string, mask Mask) []Match {
	var all []Match
	for k := Kind(0); k < numKinds; k++ {
		if !mask.Has(k) {
			continue
		}
		re := patterns[k]
		for _, loc := range re.FindAllStringIndex(line, -1) {
			from, to := loc[0], loc[1]
			val := line[from:to]
			if k == KindQuoted {
				// exclude surrounding quote characters
				val = val[1 : len(val)-1]
			}
			all = append(all, Match{Kind: k, From: from, To: to, Value: val})
		}
	}
	return resolveCollisions(all)
}

// resolveCollisions sorts by (From, -length) and drops any match whose
// start offset was already claimed by a longer one, producing the
// left-to-right, no-shared-start-offset ordering §8 property 3 requires.
func resolveCollisions(all []Match) []Match {
	sort.Slice(all, func(i, j int) bool {
		if all[i].From != all[j].From {
			return all[i].From < all[j].From
		}
		return (all[i].To - all[i].From) > (all[j].To - all[j].From) // longer first
	})
	out := all[:0:0]
	lastFrom := -1
	for _, m := range all {
		if m.From == lastFrom {
			continue // shorter/later match at a claimed start offset
		}
		out = append(out, m)
		lastFrom = m.From
	}
	for i := 1; i < len(out); i++ {
		debug.Assert(out[i].From > out[i-1].From, "scanner: shared or decreasing start offset", out[i-1], out[i])
	}
	return out
}

// Nth returns the value of the n-th (1-based) match of kind k, in
// left-to-right order, or ("", false) if there is no such occurrence
// (§4.F.c: "missing value" → None).
func Nth(matches []Match, k Kind, n int) (string, bool) {
	count := 0
	for _, m := range matches {
		if m.Kind != k {
			continue
		}
		count++
		if count == n {
			return m.Value, true
		}
	}
	return "", false
}
