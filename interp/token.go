package interp

import "fmt"

type tokenKind int

const (
	tokEOF tokenKind = iota
	tokIdent
	tokNumber
	tokKeyword
	tokOp
	tokLParen
	tokRParen
	tokSemi
)

type token struct {
	kind tokenKind
	text string
	line int
}

func isIdentStart(c byte) bool {
	return c == '_' || c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z'
}

func isIdentChar(c byte) bool {
	return isIdentStart(c) || c >= '0' && c <= '9'
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

// lex splits src into tokens. Numbers are unsigned fixed-point decimals; a
// leading sign is an operator and exponent notation is not part of the
// grammar.
func lex(src string) ([]token, error) {
	var toks []token
	line := 1
	i := 0
	for i < len(src) {
		c := src[i]
		switch {
		case c == '\n':
			line++
			i++
		case c == ' ' || c == '\t' || c == '\r':
			i++
		case isIdentStart(c):
			j := i + 1
			for j < len(src) && isIdentChar(src[j]) {
				j++
			}
			text := src[i:j]
			kind := tokIdent
			if text == "if" || text == "else" || text == "return" {
				kind = tokKeyword
			}
			toks = append(toks, token{kind, text, line})
			i = j
		case isDigit(c):
			j := i
			for j < len(src) && isDigit(src[j]) {
				j++
			}
			if j < len(src) && src[j] == '.' {
				j++
				if j >= len(src) || !isDigit(src[j]) {
					return nil, fmt.Errorf("line %d: malformed number", line)
				}
				for j < len(src) && isDigit(src[j]) {
					j++
				}
			}
			toks = append(toks, token{tokNumber, src[i:j], line})
			i = j
		case c == '(':
			toks = append(toks, token{tokLParen, "(", line})
			i++
		case c == ')':
			toks = append(toks, token{tokRParen, ")", line})
			i++
		case c == ';':
			toks = append(toks, token{tokSemi, ";", line})
			i++
		default:
			if i+1 < len(src) {
				switch two := src[i : i+2]; two {
				case "&&", "||", "<=", ">=", "==", "!=":
					toks = append(toks, token{tokOp, two, line})
					i += 2
					continue
				}
			}
			switch c {
			case '+', '-', '*', '/', '<', '>', '=':
				toks = append(toks, token{tokOp, string(c), line})
				i++
			default:
				return nil, fmt.Errorf("line %d: unexpected character %q", line, c)
			}
		}
	}
	toks = append(toks, token{kind: tokEOF, line: line})
	return toks, nil
}
