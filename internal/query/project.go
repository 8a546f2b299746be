package query

import (
	"strings"

	"github.com/minio/minsql/internal/scanner"
)

// Project builds the alias -> value map for one raw line (§4.F steps
// a–c): positional extraction splits on single spaces; smart extraction
// runs the scanner with the plan's scan flags and picks the n-th
// occurrence of each referenced kind.
func Project(p *Plan, line string) Values {
	values := make(Values, len(p.PositionalFields)+len(p.SmartFields))

	if len(p.PositionalFields) > 0 {
		tokens := strings.Split(line, " ")
		for _, pf := range p.PositionalFields {
			if pf.Position-1 < len(tokens) {
				values.set(pf.Alias, tokens[pf.Position-1])
			}
		}
	}

	if len(p.SmartFields) > 0 {
		matches := scanner.Scan(line, p.ScanFlags)
		for _, sf := range p.SmartFields {
			if v, ok := scanner.Nth(matches, sf.Kind, sf.Position); ok {
				values.set(sf.Alias, v)
			}
		}
	}

	return values
}

// Format renders the output row for a passing line (§4.F.e): the raw
// line for SELECT *, otherwise the projected columns joined by a single
// space with missing values rendered as empty strings.
func Format(p *Plan, line string, values Values) string {
	if p.ReadAll {
		return line
	}
	cols := make([]string, len(p.ProjectionsOrdered))
	for i, alias := range p.ProjectionsOrdered {
		if alias == LineIdent {
			cols[i] = line
			continue
		}
		if v, ok := values.resolve(alias, line); ok {
			cols[i] = v
		}
	}
	return strings.Join(cols, " ")
}
