package formula

import (
	"fmt"
	"strings"
	"unicode"
)

type tokenKind int

const (
	tokenEOF tokenKind = iota
	tokenNumber
	tokenIdent
	tokenString
	tokenOperator
	tokenLParen
	tokenRParen
	tokenLBracket
	tokenRBracket
)

type token struct {
	kind tokenKind
	text string
	pos  int
}

func (t token) String() string {
	if t.kind == tokenEOF {
		return "end of formula"
	}
	return fmt.Sprintf("%q at %d", t.text, t.pos)
}

func isIdentStart(r rune) bool {
	return r == '_' || unicode.IsLetter(r)
}

func isIdentPart(r rune) bool {
	return isIdentStart(r) || unicode.IsDigit(r)
}

func lex(src string) ([]token, error) {
	runes := []rune(src)
	tokens := make([]token, 0, len(runes)/2+1)

	for i := 0; i < len(runes); {
		r := runes[i]
		switch {
		case unicode.IsSpace(r):
			i++
		case unicode.IsDigit(r) || r == '.':
			start := i
			for i < len(runes) && (unicode.IsDigit(runes[i]) || runes[i] == '.') {
				i++
			}
			// exponent: 1e3, 2.5E-2
			if i < len(runes) && (runes[i] == 'e' || runes[i] == 'E') {
				j := i + 1
				if j < len(runes) && (runes[j] == '+' || runes[j] == '-') {
					j++
				}
				if j < len(runes) && unicode.IsDigit(runes[j]) {
					i = j
					for i < len(runes) && unicode.IsDigit(runes[i]) {
						i++
					}
				}
			}
			tokens = append(tokens, token{kind: tokenNumber, text: string(runes[start:i]), pos: start})
		case isIdentStart(r):
			start := i
			for i < len(runes) && isIdentPart(runes[i]) {
				i++
			}
			tokens = append(tokens, token{kind: tokenIdent, text: string(runes[start:i]), pos: start})
		case r == '\'' || r == '"':
			start := i
			i++
			var sb strings.Builder
			for i < len(runes) && runes[i] != r {
				sb.WriteRune(runes[i])
				i++
			}
			if i >= len(runes) {
				return nil, fmt.Errorf("%w: unterminated string at %d", ErrSyntax, start)
			}
			i++
			tokens = append(tokens, token{kind: tokenString, text: sb.String(), pos: start})
		case strings.ContainsRune("+-*/", r):
			tokens = append(tokens, token{kind: tokenOperator, text: string(r), pos: i})
			i++
		case r == '(':
			tokens = append(tokens, token{kind: tokenLParen, text: "(", pos: i})
			i++
		case r == ')':
			tokens = append(tokens, token{kind: tokenRParen, text: ")", pos: i})
			i++
		case r == '[':
			tokens = append(tokens, token{kind: tokenLBracket, text: "[", pos: i})
			i++
		case r == ']':
			tokens = append(tokens, token{kind: tokenRBracket, text: "]", pos: i})
			i++
		default:
			return nil, fmt.Errorf("%w: unexpected character %q at %d", ErrSyntax, r, i)
		}
	}

	return append(tokens, token{kind: tokenEOF, pos: len(runes)}), nil
}
