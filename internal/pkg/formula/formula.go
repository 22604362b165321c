// Package formula implements the closed arithmetic grammar calculated variables
// are declared in:
//
//	expr    = term { ("+" | "-") term }
//	term    = unary { ("*" | "/") unary }
//	unary   = ("-" | "+") unary | primary
//	primary = number | slug | "d[" quoted-slug "]" | "(" expr ")"
//
// Nothing else is accepted, so a formula can only read variable values and do
// arithmetic on them.
package formula

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
)

var (
	ErrSyntax           = errors.New("formula syntax error")
	ErrMissingReference = errors.New("formula reference has no value")
	ErrDivisionByZero   = errors.New("formula division by zero")
	ErrNotFinite        = errors.New("formula result is not finite")
)

// legacyNamespace is the name of the mapping in d['slug'] references.
const legacyNamespace = "d"

// Resolver returns the numeric value of a referenced slug.
type Resolver func(slug string) (float64, bool)

type Formula struct {
	src  string
	root node
	refs []string
}

// Parse compiles src. The returned Formula is immutable and safe for concurrent use.
func Parse(src string) (*Formula, error) {
	tokens, err := lex(src)
	if err != nil {
		return nil, err
	}

	p := &parser{tokens: tokens}
	if p.peek().kind == tokenEOF {
		return nil, fmt.Errorf("%w: empty formula", ErrSyntax)
	}

	root, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if tok := p.peek(); tok.kind != tokenEOF {
		return nil, fmt.Errorf("%w: unexpected %s", ErrSyntax, tok)
	}

	set := make(map[string]struct{})
	root.collect(set)
	refs := make([]string, 0, len(set))
	for slug := range set {
		refs = append(refs, slug)
	}
	sort.Strings(refs)

	return &Formula{src: src, root: root, refs: refs}, nil
}

func (f *Formula) String() string {
	return f.src
}

// References returns the sorted, de-duplicated slugs the formula reads.
func (f *Formula) References() []string {
	out := make([]string, len(f.refs))
	copy(out, f.refs)
	return out
}

func (f *Formula) Eval(resolve Resolver) (float64, error) {
	return f.root.eval(resolve)
}

type parser struct {
	tokens []token
	pos    int
}

func (p *parser) peek() token {
	return p.tokens[p.pos]
}

func (p *parser) next() token {
	tok := p.tokens[p.pos]
	if tok.kind != tokenEOF {
		p.pos++
	}
	return tok
}

func (p *parser) expect(kind tokenKind, what string) (token, error) {
	tok := p.next()
	if tok.kind != kind {
		return tok, fmt.Errorf("%w: expected %s, got %s", ErrSyntax, what, tok)
	}
	return tok, nil
}

func (p *parser) parseExpr() (node, error) {
	left, err := p.parseTerm()
	if err != nil {
		return nil, err
	}
	for {
		tok := p.peek()
		if tok.kind != tokenOperator || (tok.text != "+" && tok.text != "-") {
			return left, nil
		}
		p.next()
		right, err := p.parseTerm()
		if err != nil {
			return nil, err
		}
		left = binaryNode{op: tok.text[0], left: left, right: right}
	}
}

func (p *parser) parseTerm() (node, error) {
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	for {
		tok := p.peek()
		if tok.kind != tokenOperator || (tok.text != "*" && tok.text != "/") {
			return left, nil
		}
		p.next()
		right, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		left = binaryNode{op: tok.text[0], left: left, right: right}
	}
}

func (p *parser) parseUnary() (node, error) {
	tok := p.peek()
	if tok.kind == tokenOperator && (tok.text == "-" || tok.text == "+") {
		p.next()
		operand, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		if tok.text == "-" {
			return negNode{operand: operand}, nil
		}
		return operand, nil
	}
	return p.parsePrimary()
}

func (p *parser) parsePrimary() (node, error) {
	tok := p.next()
	switch tok.kind {
	case tokenNumber:
		v, err := strconv.ParseFloat(tok.text, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: bad number %s", ErrSyntax, tok)
		}
		return numberNode{value: v}, nil
	case tokenIdent:
		if tok.text == legacyNamespace && p.peek().kind == tokenLBracket {
			return p.parseLegacyRef()
		}
		return refNode{slug: tok.text}, nil
	case tokenLParen:
		inner, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(tokenRParen, "')'"); err != nil {
			return nil, err
		}
		return inner, nil
	default:
		return nil, fmt.Errorf("%w: unexpected %s", ErrSyntax, tok)
	}
}

func (p *parser) parseLegacyRef() (node, error) {
	p.next() // [
	slug, err := p.expect(tokenString, "quoted variable slug")
	if err != nil {
		return nil, err
	}
	if slug.text == "" {
		return nil, fmt.Errorf("%w: empty reference at %d", ErrSyntax, slug.pos)
	}
	if _, err := p.expect(tokenRBracket, "']'"); err != nil {
		return nil, err
	}
	return refNode{slug: slug.text}, nil
}
