package query

import "strings"

// Values is the per-line projection map (§4.D): alias -> pointer to
// value, or a nil pointer meaning "not present in this line".
type Values map[string]*string

func (v Values) set(alias, value string) { s := value; v[alias] = &s }

func (v Values) resolve(ident, line string) (string, bool) {
	if ident == LineIdent {
		return line, true
	}
	p, ok := v[ident]
	if !ok || p == nil {
		return "", false
	}
	return *p, true
}

// Evaluate runs pred against line/values and reports whether the line
// passes (§4.D). A nil predicate always passes.
func Evaluate(pred Predicate, line string, values Values) bool {
	switch n := pred.(type) {
	case nil:
		return true
	case *AndExpr:
		return Evaluate(n.Left, line, values) && Evaluate(n.Right, line, values)
	case *OrExpr:
		return Evaluate(n.Left, line, values) || Evaluate(n.Right, line, values)
	case *NotExpr:
		return !Evaluate(n.Inner, line, values)
	case *Comparison:
		val, ok := values.resolve(n.Ident, line)
		switch n.Op {
		case OpEq:
			return ok && val == n.Value
		case OpNeq:
			return ok && val != n.Value
		case OpLike:
			return ok && strings.Contains(val, n.Value)
		case OpNotLike:
			// Absent value: documented as "false", consistent with the
			// other comparison operators' absent-identifier rule (§4.D
			// only states this explicitly for =, <>, LIKE; NOT LIKE is
			// treated the same way rather than defaulting to true).
			return ok && !strings.Contains(val, n.Value)
		default:
			return false
		}
	case *IsNull:
		_, ok := values.resolve(n.Ident, line)
		if n.Not {
			return ok
		}
		return !ok
	default:
		return false
	}
}
