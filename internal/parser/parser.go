// Package parser implements Oxylang's recursive-descent, Pratt-style
// parser: a token sequence in, a PROGRAM ast.Node out.
//
// Grounded on original_source/src/parser/parser.py for grammar shape and
// enriched with the declarations original_source's test program exercises
// but the distilled parser.py dropped (pointer/array declarators, unary
// forms, pre/post increment). The POW ambiguity spec.md flags is resolved
// here: '^' is wired into the precedence table (see precedence below)
// instead of being left unreachable.
package parser

import (
	"github.com/capfund/oxylang/internal/ast"
	"github.com/capfund/oxylang/internal/ierrors"
	"github.com/capfund/oxylang/internal/lexer"
	"github.com/capfund/oxylang/internal/token"
)

// precedence assigns a binding power to every binary operator token.
// Tier 0 (assignment) is handled specially below since it is the only
// right-associative tier; everything else is left-associative.
var precedence = map[token.Type]int{
	token.ASSIGN:       0,
	token.PLUS_ASSIGN:  0,
	token.MINUS_ASSIGN: 0,
	token.MULT_ASSIGN:  0,
	token.DIV_ASSIGN:   0,
	token.MOD_ASSIGN:   0,
	token.OR:           1,
	token.AND:          2,
	token.EQ:           3,
	token.NE:           3,
	token.LT:           4,
	token.LE:           4,
	token.GT:           4,
	token.GE:           4,
	token.PLUS:         5,
	token.MINUS:        5,
	token.ASTERISK:     6,
	token.SLASH:        6,
	token.MOD:          6,
	token.CARET:        7,
}

var assignOps = map[token.Type]bool{
	token.ASSIGN:       true,
	token.PLUS_ASSIGN:  true,
	token.MINUS_ASSIGN: true,
	token.MULT_ASSIGN:  true,
	token.DIV_ASSIGN:   true,
	token.MOD_ASSIGN:   true,
}

// Parser consumes a pre-lexed token sequence and produces an AST.
type Parser struct {
	tokens []token.Token
	pos    int
}

// Parse lexes src in full and parses it into a PROGRAM node.
func Parse(src string) (*ast.Node, error) {
	l := lexer.New(src)
	var toks []token.Token
	for {
		tok, err := l.NextToken()
		if err != nil {
			return nil, err
		}
		toks = append(toks, tok)
		if tok.Type == token.EOF {
			break
		}
	}
	return New(toks).ParseProgram()
}

// New creates a Parser over an already-lexed token sequence.
func New(tokens []token.Token) *Parser {
	return &Parser{tokens: tokens}
}

func (p *Parser) current() token.Token {
	return p.tokens[p.pos]
}

func (p *Parser) peek(offset int) token.Token {
	idx := p.pos + offset
	if idx >= len(p.tokens) {
		return p.tokens[len(p.tokens)-1]
	}
	return p.tokens[idx]
}

func (p *Parser) advance() token.Token {
	tok := p.current()
	if p.pos < len(p.tokens)-1 {
		p.pos++
	}
	return tok
}

func (p *Parser) eat(t token.Type) (token.Token, error) {
	tok := p.current()
	if tok.Type != t {
		return token.Token{}, ierrors.NewAt(ierrors.StageParse, tok.Line,
			"unexpected token: expected %s, found %s", t, tok.Type)
	}
	return p.advance(), nil
}

// ParseProgram parses the whole token stream into a PROGRAM node.
func (p *Parser) ParseProgram() (*ast.Node, error) {
	var decls []*ast.Node
	for p.current().Type != token.EOF {
		node, err := p.parseDeclarationOrStatement()
		if err != nil {
			return nil, err
		}
		decls = append(decls, node)
	}
	return &ast.Node{Kind: ast.PROGRAM, Children: decls}, nil
}

func (p *Parser) parseDeclarationOrStatement() (*ast.Node, error) {
	tok := p.current()

	switch tok.Type {
	case token.INCLUDE:
		p.advance()
		target, err := p.eat(token.IDENTIFIER)
		if err != nil {
			return nil, err
		}
		if _, err := p.eat(token.SEMICOLON); err != nil {
			return nil, err
		}
		return ast.New(ast.INCLUDE, target.Literal+".oxy"), nil

	case token.EXTERN:
		p.advance()
		name, err := p.eat(token.IDENTIFIER)
		if err != nil {
			return nil, err
		}
		if _, err := p.eat(token.SEMICOLON); err != nil {
			return nil, err
		}
		return ast.New(ast.EXTERN, name.Literal), nil

	case token.FN:
		return p.parseFnFunction()
	}

	if token.Types[tok.Type] {
		return p.parseTypedDeclaration()
	}

	return p.parseStatement()
}

func (p *Parser) parseFnFunction() (*ast.Node, error) {
	p.advance() // fn
	name, err := p.eat(token.IDENTIFIER)
	if err != nil {
		return nil, err
	}
	if _, err := p.eat(token.LPAREN); err != nil {
		return nil, err
	}
	params, err := p.parseParameters()
	if err != nil {
		return nil, err
	}
	if _, err := p.eat(token.RPAREN); err != nil {
		return nil, err
	}
	if _, err := p.eat(token.ARROW); err != nil {
		return nil, err
	}
	retType, err := p.parseTypeKeyword()
	if err != nil {
		return nil, err
	}
	body, err := p.parseBracedBlock()
	if err != nil {
		return nil, err
	}

	return &ast.Node{
		Kind:  ast.FUNCTION,
		Value: name.Literal,
		Children: []*ast.Node{
			ast.New(ast.TYPE, retType),
			{Kind: ast.PARAMS, Children: params},
			{Kind: ast.BODY, Children: body},
		},
	}, nil
}

// parseTypedDeclaration handles "TYPE [*] NAME (...) { ... }" function
// declarations and "TYPE [*] NAME ['['NUMBER']'] ['=' expr] ';'" variable
// declarations -- both begin the same way, with a type keyword.
func (p *Parser) parseTypedDeclaration() (*ast.Node, error) {
	baseType, err := p.parseTypeKeyword()
	if err != nil {
		return nil, err
	}

	isPtr := false
	if p.current().Type == token.ASTERISK {
		p.advance()
		isPtr = true
	}

	name, err := p.eat(token.IDENTIFIER)
	if err != nil {
		return nil, err
	}

	typeName := baseType
	if isPtr {
		typeName += "_PTR"
	}

	if p.current().Type == token.LPAREN {
		p.advance()
		params, err := p.parseParameters()
		if err != nil {
			return nil, err
		}
		if _, err := p.eat(token.RPAREN); err != nil {
			return nil, err
		}
		body, err := p.parseBracedBlock()
		if err != nil {
			return nil, err
		}
		return &ast.Node{
			Kind:  ast.FUNCTION,
			Value: name.Literal,
			Children: []*ast.Node{
				ast.New(ast.TYPE, typeName),
				{Kind: ast.PARAMS, Children: params},
				{Kind: ast.BODY, Children: body},
			},
		}, nil
	}

	var typeChildren []*ast.Node
	if p.current().Type == token.LBRACKET {
		p.advance()
		size, err := p.eat(token.NUMBER)
		if err != nil {
			return nil, err
		}
		if _, err := p.eat(token.RBRACKET); err != nil {
			return nil, err
		}
		typeChildren = append(typeChildren, ast.New(ast.ARRAY_SIZE, parseIntLiteral(size.Literal)))
	}
	typeNode := &ast.Node{Kind: ast.TYPE, Value: typeName, Children: typeChildren}

	var children []*ast.Node
	children = append(children, typeNode)

	if p.current().Type == token.ASSIGN {
		p.advance()
		init, err := p.parseExpression(0)
		if err != nil {
			return nil, err
		}
		children = append(children, init)
	}

	if _, err := p.eat(token.SEMICOLON); err != nil {
		return nil, err
	}

	return &ast.Node{Kind: ast.VAR_DECL, Value: name.Literal, Children: children}, nil
}

func (p *Parser) parseTypeKeyword() (string, error) {
	tok := p.current()
	if !token.Types[tok.Type] {
		return "", ierrors.NewAt(ierrors.StageParse, tok.Line, "unexpected token: expected type, found %s", tok.Type)
	}
	p.advance()
	return string(tok.Type), nil
}

func (p *Parser) parseParameters() ([]*ast.Node, error) {
	var params []*ast.Node
	for p.current().Type != token.RPAREN {
		typeName, err := p.parseTypeKeyword()
		if err != nil {
			return nil, err
		}
		if p.current().Type == token.ASTERISK {
			p.advance()
			typeName += "_PTR"
		}
		name, err := p.eat(token.IDENTIFIER)
		if err != nil {
			return nil, err
		}
		params = append(params, &ast.Node{
			Kind:     ast.PARAM,
			Value:    name.Literal,
			Children: []*ast.Node{ast.New(ast.TYPE, typeName)},
		})
		if p.current().Type == token.COMMA {
			p.advance()
		}
	}
	return params, nil
}

func (p *Parser) parseBracedBlock() ([]*ast.Node, error) {
	if _, err := p.eat(token.LBRACE); err != nil {
		return nil, err
	}
	var stmts []*ast.Node
	for p.current().Type != token.RBRACE {
		s, err := p.parseDeclarationOrStatement()
		if err != nil {
			return nil, err
		}
		stmts = append(stmts, s)
	}
	if _, err := p.eat(token.RBRACE); err != nil {
		return nil, err
	}
	return stmts, nil
}

func (p *Parser) parseStatement() (*ast.Node, error) {
	switch p.current().Type {
	case token.UNSAFE:
		p.advance()
		body, err := p.parseBracedBlock()
		if err != nil {
			return nil, err
		}
		return &ast.Node{Kind: ast.UNSAFE_BLOCK, Children: body}, nil

	case token.RET:
		p.advance()
		var children []*ast.Node
		if p.current().Type != token.SEMICOLON {
			expr, err := p.parseExpression(0)
			if err != nil {
				return nil, err
			}
			children = append(children, expr)
		}
		if _, err := p.eat(token.SEMICOLON); err != nil {
			return nil, err
		}
		return &ast.Node{Kind: ast.RETURN, Children: children}, nil

	case token.IF:
		return p.parseIf()

	case token.WHILE:
		return p.parseWhile()

	case token.FOR:
		return p.parseFor()

	case token.BREAK:
		p.advance()
		if _, err := p.eat(token.SEMICOLON); err != nil {
			return nil, err
		}
		return &ast.Node{Kind: ast.BREAK}, nil

	case token.CONTINUE:
		p.advance()
		if _, err := p.eat(token.SEMICOLON); err != nil {
			return nil, err
		}
		return &ast.Node{Kind: ast.CONTINUE}, nil
	}

	expr, err := p.parseExpression(0)
	if err != nil {
		return nil, err
	}
	if _, err := p.eat(token.SEMICOLON); err != nil {
		return nil, err
	}
	return expr, nil
}

func (p *Parser) parseIf() (*ast.Node, error) {
	p.advance() // if
	if _, err := p.eat(token.LPAREN); err != nil {
		return nil, err
	}
	cond, err := p.parseExpression(0)
	if err != nil {
		return nil, err
	}
	if _, err := p.eat(token.RPAREN); err != nil {
		return nil, err
	}
	then, err := p.parseBracedBlock()
	if err != nil {
		return nil, err
	}

	var els []*ast.Node
	if p.current().Type == token.ELSE {
		p.advance()
		els, err = p.parseBracedBlock()
		if err != nil {
			return nil, err
		}
	}

	return &ast.Node{
		Kind: ast.IF,
		Children: []*ast.Node{
			cond,
			{Kind: ast.THEN, Children: then},
			{Kind: ast.ELSE, Children: els},
		},
	}, nil
}

func (p *Parser) parseWhile() (*ast.Node, error) {
	p.advance() // while
	if _, err := p.eat(token.LPAREN); err != nil {
		return nil, err
	}
	cond, err := p.parseExpression(0)
	if err != nil {
		return nil, err
	}
	if _, err := p.eat(token.RPAREN); err != nil {
		return nil, err
	}
	body, err := p.parseBracedBlock()
	if err != nil {
		return nil, err
	}
	return &ast.Node{
		Kind:     ast.WHILE,
		Children: []*ast.Node{cond, {Kind: ast.BODY, Children: body}},
	}, nil
}

func (p *Parser) parseFor() (*ast.Node, error) {
	p.advance() // for
	if _, err := p.eat(token.LPAREN); err != nil {
		return nil, err
	}

	var init, cond, step *ast.Node
	var err error

	if p.current().Type != token.SEMICOLON {
		if init, err = p.parseExpression(0); err != nil {
			return nil, err
		}
	}
	if _, err := p.eat(token.SEMICOLON); err != nil {
		return nil, err
	}

	if p.current().Type != token.SEMICOLON {
		if cond, err = p.parseExpression(0); err != nil {
			return nil, err
		}
	}
	if _, err := p.eat(token.SEMICOLON); err != nil {
		return nil, err
	}

	if p.current().Type != token.RPAREN {
		if step, err = p.parseExpression(0); err != nil {
			return nil, err
		}
	}
	if _, err := p.eat(token.RPAREN); err != nil {
		return nil, err
	}

	body, err := p.parseBracedBlock()
	if err != nil {
		return nil, err
	}

	return &ast.Node{
		Kind:     ast.FOR,
		Children: []*ast.Node{init, cond, step, {Kind: ast.BODY, Children: body}},
	}, nil
}

// parseExpression implements precedence climbing: minPrec is the lowest
// binding power this call is willing to consume. Assignment (tier 0) is
// right-associative; every other tier is left-associative.
func (p *Parser) parseExpression(minPrec int) (*ast.Node, error) {
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}

	for {
		tok := p.current()
		prec, ok := precedence[tok.Type]
		if !ok || prec < minPrec {
			break
		}

		p.advance()
		nextMin := prec + 1
		if assignOps[tok.Type] {
			nextMin = prec // right-associative: same tier recurses at the same level
		}

		right, err := p.parseExpression(nextMin)
		if err != nil {
			return nil, err
		}
		left = &ast.Node{Kind: ast.BIN_OP, Value: string(tok.Type), Children: []*ast.Node{left, right}}
	}

	return left, nil
}

func (p *Parser) parseUnary() (*ast.Node, error) {
	switch p.current().Type {
	case token.MINUS:
		p.advance()
		operand, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return ast.New(ast.UNARY_MINUS, nil, operand), nil

	case token.AMP:
		p.advance()
		operand, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return ast.New(ast.ADDROF, nil, operand), nil

	case token.ASTERISK:
		p.advance()
		operand, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return ast.New(ast.DEREF, nil, operand), nil

	case token.INC:
		p.advance()
		operand, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return ast.New(ast.PRE_INC, nil, operand), nil

	case token.DEC:
		p.advance()
		operand, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return ast.New(ast.PRE_DEC, nil, operand), nil
	}

	return p.parsePostfix()
}

func (p *Parser) parsePostfix() (*ast.Node, error) {
	node, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}

	for {
		switch p.current().Type {
		case token.LBRACKET:
			p.advance()
			index, err := p.parseExpression(0)
			if err != nil {
				return nil, err
			}
			if _, err := p.eat(token.RBRACKET); err != nil {
				return nil, err
			}
			node = ast.New(ast.ARRAY_INDEX, nil, node, index)

		case token.INC:
			p.advance()
			node = ast.New(ast.POST_INC, nil, node)

		case token.DEC:
			p.advance()
			node = ast.New(ast.POST_DEC, nil, node)

		default:
			return node, nil
		}
	}
}

func (p *Parser) parsePrimary() (*ast.Node, error) {
	tok := p.current()

	switch tok.Type {
	case token.NUMBER:
		p.advance()
		return ast.New(ast.NUMBER, parseNumberLiteral(tok)), nil

	case token.STRING:
		p.advance()
		return ast.New(ast.STRING, tok.Literal), nil

	case token.CHAR_LIT:
		p.advance()
		r := []rune(tok.Literal)
		var code int64
		if len(r) > 0 {
			code = int64(r[0])
		}
		return ast.New(ast.CHAR_LIT, code), nil

	case token.IDENTIFIER:
		if p.peek(1).Type == token.LPAREN {
			return p.parseCall()
		}
		p.advance()
		return ast.New(ast.IDENTIFIER, tok.Literal), nil

	case token.LPAREN:
		p.advance()
		expr, err := p.parseExpression(0)
		if err != nil {
			return nil, err
		}
		if _, err := p.eat(token.RPAREN); err != nil {
			return nil, err
		}
		return expr, nil
	}

	return nil, ierrors.NewAt(ierrors.StageParse, tok.Line, "unexpected token: found %s", tok.Type)
}

func (p *Parser) parseCall() (*ast.Node, error) {
	name, err := p.eat(token.IDENTIFIER)
	if err != nil {
		return nil, err
	}
	if _, err := p.eat(token.LPAREN); err != nil {
		return nil, err
	}
	var args []*ast.Node
	for p.current().Type != token.RPAREN {
		arg, err := p.parseExpression(0)
		if err != nil {
			return nil, err
		}
		args = append(args, arg)
		if p.current().Type == token.COMMA {
			p.advance()
		}
	}
	if _, err := p.eat(token.RPAREN); err != nil {
		return nil, err
	}
	return &ast.Node{Kind: ast.CALL, Value: name.Literal, Children: args}, nil
}

func parseNumberLiteral(tok token.Token) *ast.NumberValue {
	if tok.IsFloat {
		return &ast.NumberValue{IsFloat: true, Float: parseFloatLiteral(tok.Literal)}
	}
	return &ast.NumberValue{Int: parseIntLiteral(tok.Literal)}
}

func parseIntLiteral(s string) int64 {
	var n int64
	for _, r := range s {
		if r < '0' || r > '9' {
			break
		}
		n = n*10 + int64(r-'0')
	}
	return n
}

func parseFloatLiteral(s string) float64 {
	var whole, frac int64
	var fracDigits int
	seenDot := false
	for _, r := range s {
		if r == '.' {
			seenDot = true
			continue
		}
		if r < '0' || r > '9' {
			break
		}
		if seenDot {
			frac = frac*10 + int64(r-'0')
			fracDigits++
		} else {
			whole = whole*10 + int64(r-'0')
		}
	}
	f := float64(whole)
	if fracDigits > 0 {
		div := 1.0
		for i := 0; i < fracDigits; i++ {
			div *= 10
		}
		f += float64(frac) / div
	}
	return f
}
