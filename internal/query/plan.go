package query

import (
	"regexp"
	"strconv"

	"github.com/minio/minsql/internal/cmn"
	"github.com/minio/minsql/internal/config"
	"github.com/minio/minsql/internal/scanner"
)

// LineIdent is the special identifier that always resolves to the
// entire raw line (§4.D).
const LineIdent = "$line"

var (
	positionalRe = regexp.MustCompile(`^\$([0-9]+)$`)
	smartRe      = regexp.MustCompile(`^\$(ip|email|date|url|quoted)([0-9]+)?$`)
)

// PositionalField is one ($<n>) reference, 1-based.
type PositionalField struct {
	Position int
	Alias    string
}

// SmartField is one ($<kind>[<n>]) reference, 1-based occurrence.
type SmartField struct {
	Kind     scanner.Kind
	Position int
	Alias    string
}

// Plan is the fully resolved, validated per-statement execution plan
// (§4.C).
type Plan struct {
	Log                string
	ReadAll            bool
	PositionalFields   []PositionalField
	SmartFields        []SmartField
	ScanFlags          scanner.Mask
	ProjectionsOrdered []string
	Predicate          Predicate
}

// classify reports what kind of reference an identifier is.
func classify(ident string) (positional *PositionalField, smart *SmartField, ok bool) {
	if m := positionalRe.FindStringSubmatch(ident); m != nil {
		n, _ := strconv.Atoi(m[1])
		if n >= 1 {
			return &PositionalField{Position: n, Alias: ident}, nil, true
		}
	}
	if m := smartRe.FindStringSubmatch(ident); m != nil {
		kind, _ := scanner.ParseKind(m[1])
		pos := 1
		if m[2] != "" {
			pos, _ = strconv.Atoi(m[2])
		}
		if pos >= 1 {
			return nil, &SmartField{Kind: kind, Position: pos, Alias: ident}, true
		}
	}
	return nil, nil, false
}

// fieldCollector accumulates positional/smart field references across
// projections and predicate identifiers, deduplicated by alias text but
// preserving first-seen order (§4.C).
type fieldCollector struct {
	seen       map[string]bool
	positional []PositionalField
	smart      []SmartField
	scanFlags  scanner.Mask
}

func newFieldCollector() *fieldCollector {
	return &fieldCollector{seen: make(map[string]bool)}
}

func (c *fieldCollector) add(ident string) {
	if ident == "*" || ident == LineIdent || c.seen[ident] {
		return
	}
	pf, sf, ok := classify(ident)
	if !ok {
		return
	}
	c.seen[ident] = true
	if pf != nil {
		c.positional = append(c.positional, *pf)
	}
	if sf != nil {
		c.smart = append(c.smart, *sf)
		c.scanFlags = c.scanFlags.With(sf.Kind)
	}
}

func (c *fieldCollector) walkPredicate(p Predicate) {
	switch n := p.(type) {
	case nil:
		return
	case *AndExpr:
		c.walkPredicate(n.Left)
		c.walkPredicate(n.Right)
	case *OrExpr:
		c.walkPredicate(n.Left)
		c.walkPredicate(n.Right)
	case *NotExpr:
		c.walkPredicate(n.Inner)
	case *Comparison:
		c.add(n.Ident)
	case *IsNull:
		c.add(n.Ident)
	}
}

// PlanStatement validates stmt against cfg (the referenced log must exist, §4.C)
// and builds its execution Plan.
func PlanStatement(stmt *Statement, cfg *config.Config) (*Plan, error) {
	if _, ok := cfg.Logs[stmt.Log]; !ok {
		return nil, cmn.NotFound("unknown log %q", stmt.Log)
	}

	fc := newFieldCollector()
	readAll := false
	for _, p := range stmt.Projections {
		if p == "*" {
			readAll = true
			continue
		}
		fc.add(p)
	}
	fc.walkPredicate(stmt.Where)

	return &Plan{
		Log:                stmt.Log,
		ReadAll:            readAll,
		PositionalFields:   fc.positional,
		SmartFields:        fc.smart,
		ScanFlags:          fc.scanFlags,
		ProjectionsOrdered: stmt.Projections,
		Predicate:          stmt.Where,
	}, nil
}

// PlanAll parses src and plans every statement, validating each against
// cfg. Returns on the first error (parse or validation), before any
// response bytes are written (§7: "parse/validation errors are surfaced
// before any response body bytes are written").
func PlanAll(src string, cfg *config.Config) ([]*Plan, error) {
	stmts, err := Parse(src)
	if err != nil {
		return nil, err
	}
	plans := make([]*Plan, 0, len(stmts))
	for _, s := range stmts {
		p, err := PlanStatement(s, cfg)
		if err != nil {
			return nil, err
		}
		plans = append(plans, p)
	}
	return plans, nil
}
