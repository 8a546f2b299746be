package query

import (
	"fmt"
	"strings"

	"github.com/minio/minsql/internal/cmn"
)

// errUnsupported reports a statement that isn't the supported
// `SELECT ... FROM ... [WHERE ...]` form (§4.C).
func errUnsupported(format string, args ...interface{}) error {
	return cmn.Errf(cmn.KindBadRequest, nil, "UnsupportedQuery: "+format, args...)
}

type parser struct {
	toks []token
	pos  int
}

// Parse splits src on ';' into statements and parses each as a
// `SELECT ... FROM <log> [WHERE ...]` form, per §4.C. A non-SELECT form,
// or any trailing garbage, fails with UnsupportedQuery/BadRequest.
func Parse(src string) ([]*Statement, error) {
	toks, err := lex(src)
	if err != nil {
		return nil, cmn.Errf(cmn.KindBadRequest, err, "lex error")
	}
	p := &parser{toks: toks}

	var stmts []*Statement
	for {
		if p.at(tokEOF) {
			break
		}
		if p.at(tokSemicolon) {
			p.pos++
			continue
		}
		stmt, err := p.parseStatement()
		if err != nil {
			return nil, err
		}
		stmts = append(stmts, stmt)
	}
	if len(stmts) == 0 {
		return nil, errUnsupported("empty query")
	}
	return stmts, nil
}

func (p *parser) cur() token  { return p.toks[p.pos] }
func (p *parser) at(k tokenKind) bool { return p.cur().kind == k }

func (p *parser) atKeyword(w string) bool {
	return p.cur().kind == tokKeyword && p.cur().text == w
}

func (p *parser) expectKeyword(w string) error {
	if !p.atKeyword(w) {
		return errUnsupported("expected %q, got %q", w, p.cur().text)
	}
	p.pos++
	return nil
}

func (p *parser) parseStatement() (*Statement, error) {
	if !p.atKeyword("select") {
		return nil, errUnsupported("statement must begin with SELECT")
	}
	p.pos++

	projections, err := p.parseProjectionList()
	if err != nil {
		return nil, err
	}

	if err := p.expectKeyword("from"); err != nil {
		return nil, err
	}
	if !p.at(tokIdent) {
		return nil, errUnsupported("expected log name after FROM")
	}
	logName := p.cur().text
	p.pos++

	var where Predicate
	if p.atKeyword("where") {
		p.pos++
		where, err = p.parseOr()
		if err != nil {
			return nil, err
		}
	}

	if !p.at(tokSemicolon) && !p.at(tokEOF) {
		return nil, errUnsupported("unexpected token %q after statement", p.cur().text)
	}

	return &Statement{Projections: projections, Log: logName, Where: where}, nil
}

func (p *parser) parseProjectionList() ([]string, error) {
	if p.at(tokStar) {
		p.pos++
		return []string{"*"}, nil
	}
	var out []string
	for {
		if !p.at(tokIdent) {
			return nil, errUnsupported("expected a projected identifier, got %q", p.cur().text)
		}
		out = append(out, p.cur().text)
		p.pos++
		if p.at(tokComma) {
			p.pos++
			continue
		}
		break
	}
	return out, nil
}

func (p *parser) parseOr() (Predicate, error) {
	left, err := p.parseAnd()
	if err != nil {
		return nil, err
	}
	for p.atKeyword("or") {
		p.pos++
		right, err := p.parseAnd()
		if err != nil {
			return nil, err
		}
		left = &OrExpr{Left: left, Right: right}
	}
	return left, nil
}

func (p *parser) parseAnd() (Predicate, error) {
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	for p.atKeyword("and") {
		p.pos++
		right, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		left = &AndExpr{Left: left, Right: right}
	}
	return left, nil
}

func (p *parser) parseUnary() (Predicate, error) {
	if p.atKeyword("not") {
		p.pos++
		if !p.at(tokLParen) {
			return nil, errUnsupported("NOT must be followed by a parenthesized expression")
		}
		p.pos++
		inner, err := p.parseOr()
		if err != nil {
			return nil, err
		}
		if !p.at(tokRParen) {
			return nil, errUnsupported("expected ) to close NOT (...)")
		}
		p.pos++
		return &NotExpr{Inner: inner}, nil
	}
	return p.parsePrimary()
}

func (p *parser) parsePrimary() (Predicate, error) {
	if p.at(tokLParen) {
		p.pos++
		inner, err := p.parseOr()
		if err != nil {
			return nil, err
		}
		if !p.at(tokRParen) {
			return nil, errUnsupported("expected ) to close (...)")
		}
		p.pos++
		return inner, nil
	}
	if !p.at(tokIdent) {
		return nil, errUnsupported("expected an identifier in predicate, got %q", p.cur().text)
	}
	ident := p.cur().text
	p.pos++

	switch {
	case p.at(tokEq):
		p.pos++
		v, err := p.parseValue()
		if err != nil {
			return nil, err
		}
		return &Comparison{Ident: ident, Op: OpEq, Value: v}, nil
	case p.at(tokNeq):
		p.pos++
		v, err := p.parseValue()
		if err != nil {
			return nil, err
		}
		return &Comparison{Ident: ident, Op: OpNeq, Value: v}, nil
	case p.atKeyword("like"):
		p.pos++
		v, err := p.parseValue()
		if err != nil {
			return nil, err
		}
		return &Comparison{Ident: ident, Op: OpLike, Value: v}, nil
	case p.atKeyword("not"):
		p.pos++
		if err := p.expectKeyword("like"); err != nil {
			return nil, err
		}
		v, err := p.parseValue()
		if err != nil {
			return nil, err
		}
		return &Comparison{Ident: ident, Op: OpNotLike, Value: v}, nil
	case p.atKeyword("is"):
		p.pos++
		not := false
		if p.atKeyword("not") {
			not = true
			p.pos++
		}
		if err := p.expectKeyword("null"); err != nil {
			return nil, err
		}
		return &IsNull{Ident: ident, Not: not}, nil
	default:
		return nil, errUnsupported("expected comparison operator after %q, got %q", ident, p.cur().text)
	}
}

func (p *parser) parseValue() (string, error) {
	switch {
	case p.at(tokString):
		v := p.cur().text
		p.pos++
		return v, nil
	case p.at(tokIdent):
		v := p.cur().text
		p.pos++
		return v, nil
	default:
		return "", errUnsupported("expected a value, got %q", p.cur().text)
	}
}

// String renders a Statement back to readable SQL-ish text (the WHERE
// clause is elided as "..."), used for error messages and debug logging
// only.
func (s *Statement) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "SELECT %s FROM %s", strings.Join(s.Projections, ", "), s.Log)
	if s.Where != nil {
		sb.WriteString(" WHERE ...")
	}
	return sb.String()
}
