// Package interp concretely evaluates the conditional program text produced
// by the lowering pipeline, using the same statement and expression grammar
// the symbolic execution engine compiles. It backs the fidelity tests and
// the verify tool: lowered text must reproduce the reference forward pass,
// and reported candidates must actually reach the adversarial return.
package interp

import (
	"errors"
	"fmt"
)

// ErrUndefinedVar is returned when a statement reads a variable no earlier
// statement assigned.
var ErrUndefinedVar = errors.New("undefined variable")

// ErrNoReturn is returned when execution falls off the end of the program.
var ErrNoReturn = errors.New("program ended without return")

// Program is a parsed statement sequence ready for evaluation.
type Program struct {
	stmts []stmt
}

// Parse lexes and parses src.
func Parse(src string) (*Program, error) {
	toks, err := lex(src)
	if err != nil {
		return nil, err
	}
	p := parser{toks: toks}
	var stmts []stmt
	for p.cur().kind != tokEOF {
		s, err := p.parseStmt()
		if err != nil {
			return nil, err
		}
		stmts = append(stmts, s)
	}
	return &Program{stmts: stmts}, nil
}

// Run executes the program against a copy of env and returns the value of
// the first executed return statement. Branch conditions follow C
// truthiness: any non-zero value takes the true arm.
func (p *Program) Run(env map[string]float64) (float64, error) {
	vars := make(map[string]float64, len(env))
	for k, v := range env {
		vars[k] = v
	}
	for _, s := range p.stmts {
		v, done, err := exec(s, vars)
		if err != nil {
			return 0, err
		}
		if done {
			return v, nil
		}
	}
	return 0, ErrNoReturn
}

func exec(s stmt, vars map[string]float64) (float64, bool, error) {
	switch s := s.(type) {
	case assignStmt:
		v, err := eval(s.expr, vars)
		if err != nil {
			return 0, false, err
		}
		vars[s.name] = v
		return 0, false, nil
	case returnStmt:
		v, err := eval(s.expr, vars)
		if err != nil {
			return 0, false, err
		}
		return v, true, nil
	case ifStmt:
		c, err := eval(s.cond, vars)
		if err != nil {
			return 0, false, err
		}
		if c != 0 {
			return exec(s.then, vars)
		}
		if s.els != nil {
			return exec(s.els, vars)
		}
		return 0, false, nil
	default:
		return 0, false, fmt.Errorf("unknown statement %T", s)
	}
}

func eval(n node, vars map[string]float64) (float64, error) {
	switch n := n.(type) {
	case numLit:
		return float64(n), nil
	case varRef:
		v, ok := vars[string(n)]
		if !ok {
			return 0, fmt.Errorf("%w: %s", ErrUndefinedVar, string(n))
		}
		return v, nil
	case unaryExpr:
		v, err := eval(n.x, vars)
		if err != nil {
			return 0, err
		}
		return -v, nil
	case binaryExpr:
		return evalBinary(n, vars)
	default:
		return 0, fmt.Errorf("unknown expression %T", n)
	}
}

func evalBinary(n binaryExpr, vars map[string]float64) (float64, error) {
	l, err := eval(n.l, vars)
	if err != nil {
		return 0, err
	}
	// Short-circuit before touching the right operand.
	switch n.op {
	case "&&":
		if l == 0 {
			return 0, nil
		}
		r, err := eval(n.r, vars)
		if err != nil {
			return 0, err
		}
		return boolVal(r != 0), nil
	case "||":
		if l != 0 {
			return 1, nil
		}
		r, err := eval(n.r, vars)
		if err != nil {
			return 0, err
		}
		return boolVal(r != 0), nil
	}
	r, err := eval(n.r, vars)
	if err != nil {
		return 0, err
	}
	switch n.op {
	case "+":
		return l + r, nil
	case "-":
		return l - r, nil
	case "*":
		return l * r, nil
	case "/":
		return l / r, nil
	case "<":
		return boolVal(l < r), nil
	case "<=":
		return boolVal(l <= r), nil
	case ">":
		return boolVal(l > r), nil
	case ">=":
		return boolVal(l >= r), nil
	case "==":
		return boolVal(l == r), nil
	case "!=":
		return boolVal(l != r), nil
	default:
		return 0, fmt.Errorf("unknown operator %q", n.op)
	}
}

func boolVal(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
