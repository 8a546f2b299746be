// Package query implements the query parser/planner (§4.C) and, built on
// top of it, the filter evaluator (§4.D) and the streaming query executor
// (§4.F).
//
// The parser is hand-written rather than built on a vendored SQL engine:
// see SPEC_FULL.md §4.C.ADD for why. Its lexer accepts the MinSQL
// identifier grammar directly — identifiers may start with '@' or '$' —
// mirroring original_source/src/dialect.rs's custom sqlparser-rs Dialect.
package query

import (
	"fmt"
	"strings"
)

type tokenKind int

const (
	tokEOF tokenKind = iota
	tokIdent
	tokString
	tokStar
	tokComma
	tokSemicolon
	tokLParen
	tokRParen
	tokEq
	tokNeq
	tokKeyword
)

type token struct {
	kind tokenKind
	text string // literal text; for tokString this is the unquoted value
}

var keywords = map[string]bool{
	"select": true, "from": true, "where": true,
	"and": true, "or": true, "not": true,
	"like": true, "is": true, "null": true,
}

// isIdentStart mirrors the original Dialect: letters, '@', '$'.
func isIdentStart(ch byte) bool {
	return (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z') || ch == '@' || ch == '$'
}

// isIdentPart additionally allows digits and underscore (§4.C).
func isIdentPart(ch byte) bool {
	return isIdentStart(ch) || (ch >= '0' && ch <= '9') || ch == '_'
}

type lexer struct {
	src  string
	pos  int
	toks []token
}

func lex(src string) ([]token, error) {
	l := &lexer{src: src}
	for {
		l.skipSpace()
		if l.pos >= len(l.src) {
			l.toks = append(l.toks, token{kind: tokEOF})
			return l.toks, nil
		}
		ch := l.src[l.pos]
		switch {
		case ch == '*':
			l.toks = append(l.toks, token{kind: tokStar, text: "*"})
			l.pos++
		case ch == ',':
			l.toks = append(l.toks, token{kind: tokComma, text: ","})
			l.pos++
		case ch == ';':
			l.toks = append(l.toks, token{kind: tokSemicolon, text: ";"})
			l.pos++
		case ch == '(':
			l.toks = append(l.toks, token{kind: tokLParen, text: "("})
			l.pos++
		case ch == ')':
			l.toks = append(l.toks, token{kind: tokRParen, text: ")"})
			l.pos++
		case ch == '=':
			l.toks = append(l.toks, token{kind: tokEq, text: "="})
			l.pos++
		case ch == '<' && l.pos+1 < len(l.src) && l.src[l.pos+1] == '>':
			l.toks = append(l.toks, token{kind: tokNeq, text: "<>"})
			l.pos += 2
		case ch == '\'' || ch == '"':
			s, err := l.readQuoted(ch)
			if err != nil {
				return nil, err
			}
			l.toks = append(l.toks, token{kind: tokString, text: s})
		case isIdentStart(ch):
			start := l.pos
			l.pos++
			for l.pos < len(l.src) && isIdentPart(l.src[l.pos]) {
				l.pos++
			}
			word := l.src[start:l.pos]
			lower := strings.ToLower(word)
			if keywords[lower] {
				l.toks = append(l.toks, token{kind: tokKeyword, text: lower})
			} else {
				l.toks = append(l.toks, token{kind: tokIdent, text: word})
			}
		default:
			return nil, fmt.Errorf("unexpected character %q at position %d", ch, l.pos)
		}
	}
}

func (l *lexer) skipSpace() {
	for l.pos < len(l.src) && (l.src[l.pos] == ' ' || l.src[l.pos] == '\t' || l.src[l.pos] == '\n' || l.src[l.pos] == '\r') {
		l.pos++
	}
}

func (l *lexer) readQuoted(quote byte) (string, error) {
	start := l.pos
	l.pos++ // skip opening quote
	var sb strings.Builder
	for l.pos < len(l.src) {
		ch := l.src[l.pos]
		if ch == quote {
			l.pos++
			return sb.String(), nil
		}
		sb.WriteByte(ch)
		l.pos++
	}
	return "", fmt.Errorf("unterminated quoted string starting at position %d", start)
}
