package query

import "testing"

func TestEvaluateScenarioS5(t *testing.T) {
	cfg := testConfig()
	stmts, err := Parse(`SELECT * FROM accesslog WHERE $ip='10.0.0.1' AND $line LIKE 'GET'`)
	if err != nil {
		t.Fatal(err)
	}
	plan, err := PlanStatement(stmts[0], cfg)
	if err != nil {
		t.Fatal(err)
	}

	line := `[2020-01-02] 10.0.0.1 "GET /"`
	values := Project(plan, line)
	if !Evaluate(plan.Predicate, line, values) {
		t.Error("expected line to pass filter")
	}

	line2 := `[2020-01-02] 10.0.0.2 "GET /"`
	values2 := Project(plan, line2)
	if Evaluate(plan.Predicate, line2, values2) {
		t.Error("expected line with different ip to fail filter")
	}
}

func TestEvaluateAbsentIdentifier(t *testing.T) {
	values := Values{}
	if Evaluate(&Comparison{Ident: "$1", Op: OpEq, Value: "x"}, "line", values) {
		t.Error("absent identifier should fail =")
	}
	if Evaluate(&Comparison{Ident: "$1", Op: OpNeq, Value: "x"}, "line", values) {
		t.Error("absent identifier should fail <>")
	}
	if !Evaluate(&IsNull{Ident: "$1"}, "line", values) {
		t.Error("absent identifier should satisfy IS NULL")
	}
	if Evaluate(&IsNull{Ident: "$1", Not: true}, "line", values) {
		t.Error("absent identifier should fail IS NOT NULL")
	}
}

func TestEvaluateLineIdentNeverNull(t *testing.T) {
	values := Values{}
	if !Evaluate(&IsNull{Ident: LineIdent, Not: true}, "hello", values) {
		t.Error("$line should always be present")
	}
}

func TestFormatSelectStarIsByteExact(t *testing.T) {
	cfg := testConfig()
	stmts, _ := Parse("SELECT * FROM accesslog")
	plan, _ := PlanStatement(stmts[0], cfg)
	line := `192.168.0.1 GET /a`
	if got := Format(plan, line, Values{}); got != line {
		t.Errorf("Format() = %q, want %q", got, line)
	}
}

func TestFormatProjectionMissingValuesEmpty(t *testing.T) {
	cfg := testConfig()
	stmts, _ := Parse("SELECT $1, $2 FROM accesslog")
	plan, _ := PlanStatement(stmts[0], cfg)
	line := "onlyone"
	values := Project(plan, line)
	got := Format(plan, line, values)
	if got != "onlyone " {
		t.Errorf("Format() = %q, want %q", got, "onlyone ")
	}
}
