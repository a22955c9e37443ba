// ==============================================================================================
// FILE: parser/parser.go
// ==============================================================================================
// PACKAGE: parser
// PURPOSE: Builds the AST from a token vector using Pratt-style precedence
//          climbing for expressions and recursive descent for control flow,
//          with matched `end <keyword>` terminators. Parse failures are
//          collected rather than raised immediately, so a single pass can
//          report more than one problem.
// ==============================================================================================

package parser

import (
	"fmt"

	"eloquence/ast"
	"eloquence/token"
)

// precedence is the binary-operator priority table from spec §4.2. Higher
// binds tighter.
var precedence = map[token.TokenType]int{
	token.OR:         1,
	token.AND:        2,
	token.EQ:         3,
	token.N_EQ:       3,
	token.LESS:       3,
	token.GREATER:    3,
	token.LESS_EQ:    3,
	token.GREATER_EQ: 3,
	token.PLUS:       4,
	token.MINUS:      4,
	token.MULTIPLY:   5,
	token.DIVIDE:     5,
	token.MOD:        5,
	token.POW:        6,
}

var assignOps = map[token.TokenType]bool{
	token.ASSIGN:     true,
	token.PLUS_A:     true,
	token.MINUS_A:    true,
	token.MULTIPLY_A: true,
	token.DIVIDE_A:   true,
	token.MOD_A:      true,
	token.POW_A:      true,
}

// Parser walks a fixed token vector with a cursor; it never re-lexes.
type Parser struct {
	tokens []token.Token
	pos    int
	errors []string
}

// New builds a Parser over a token vector already terminated by EOFF.
func New(tokens []token.Token) *Parser {
	return &Parser{tokens: tokens}
}

// Errors reports every parse failure collected during the pass, in order.
func (p *Parser) Errors() []string { return p.errors }

func (p *Parser) errorf(format string, args ...interface{}) {
	p.errors = append(p.errors, fmt.Sprintf(format, args...))
}

func (p *Parser) cur() token.Token { return p.tokens[p.pos] }

func (p *Parser) peek() token.Token {
	if p.pos+1 < len(p.tokens) {
		return p.tokens[p.pos+1]
	}
	return p.tokens[len(p.tokens)-1]
}

// advance returns the current token and steps the cursor forward, unless
// already parked on the trailing EOFF.
func (p *Parser) advance() token.Token {
	t := p.cur()
	if t.Type != token.EOFF {
		p.pos++
	}
	return t
}

// Match advances and returns the current token if its kind is in kinds;
// otherwise returns a NIL-kind sentinel without advancing.
func (p *Parser) Match(kinds ...token.TokenType) token.Token {
	if oneOf(p.cur().Type, kinds) {
		return p.advance()
	}
	return token.Token{Type: token.NIL}
}

// Require is Match but records a parse error naming the token index when
// nothing matches.
func (p *Parser) Require(kinds ...token.TokenType) token.Token {
	if oneOf(p.cur().Type, kinds) {
		return p.advance()
	}
	p.errorf("parse error at token %d: expected %v, found %s %q", p.pos, kinds, p.cur().Type, p.cur().Literal)
	return token.Token{Type: token.NIL}
}

// Accept is Match reduced to a boolean.
func (p *Parser) Accept(kinds ...token.TokenType) bool {
	if oneOf(p.cur().Type, kinds) {
		p.advance()
		return true
	}
	return false
}

func oneOf(t token.TokenType, kinds []token.TokenType) bool {
	for _, k := range kinds {
		if t == k {
			return true
		}
	}
	return false
}

// ParseCode builds the root Block by calling ParseStatement until EOFF,
// returning the root block plus any parse errors collected along the way.
func ParseCode(toks []token.Token) (*ast.Block, []string) {
	p := New(toks)
	block := p.parseStatementsUntil(token.EOFF)
	return block, p.errors
}

// parseStatementsUntil reads statements until the current token's kind is
// one of terms (the terminator is left unconsumed) or EOFF is reached.
func (p *Parser) parseStatementsUntil(terms ...token.TokenType) *ast.Block {
	block := &ast.Block{}
	for p.cur().Type != token.EOFF && !oneOf(p.cur().Type, terms) {
		start := p.pos
		block.Statements = append(block.Statements, p.parseStatement())
		if p.pos == start {
			// parseStatement failed to consume anything; force progress so
			// a malformed file can't loop forever.
			p.advance()
		}
	}
	return block
}

// parseStatement dispatches on the leading token per spec §4.2.
func (p *Parser) parseStatement() ast.Node {
	switch p.cur().Type {
	case token.IF:
		return p.parseIf()
	case token.WHILE:
		return p.parseWhile()
	case token.FOR:
		return p.parseFor()
	case token.RETURN:
		return p.parseReturn()
	case token.BREAK:
		p.advance()
		return &ast.Break{}
	case token.CONTINUE:
		p.advance()
		return &ast.Continue{}
	case token.FUNCTION:
		return p.parseFunctionLiteral()
	case token.IDENTIFIER:
		if assignOps[p.peek().Type] {
			return p.parseAssignment()
		}
		return p.ParseBin(1)
	default:
		return p.ParseBin(1)
	}
}

func (p *Parser) parseAssignment() ast.Node {
	name := p.advance()
	op := p.advance()
	value := p.ParseBin(1)
	return &ast.Assignment{Name: name.Literal, Op: op.Type, Value: value}
}

// parseIf parses `if <cond> then <block> (else if <cond> then <block>)* (else <block>)? end if`.
func (p *Parser) parseIf() ast.Node {
	p.advance() // if
	cond := p.parseCondition(token.THEN)
	p.Require(token.THEN)
	thenBlock := p.parseStatementsUntil(token.ELSE, token.END)

	var elseIfs []ast.ElseIf
	for p.cur().Type == token.ELSE && p.peek().Type == token.IF {
		p.advance() // else
		p.advance() // if
		c := p.parseCondition(token.THEN)
		p.Require(token.THEN)
		b := p.parseStatementsUntil(token.ELSE, token.END)
		elseIfs = append(elseIfs, ast.ElseIf{Cond: c, Then: b})
	}

	var elseBlock *ast.Block
	if p.cur().Type == token.ELSE {
		p.advance()
		elseBlock = p.parseStatementsUntil(token.END)
	}

	p.Require(token.END)
	p.Require(token.IF)
	return &ast.If{Cond: cond, Then: thenBlock, ElseIfs: elseIfs, Else: elseBlock}
}

func (p *Parser) parseWhile() ast.Node {
	p.advance() // while
	cond := p.parseCondition(token.THEN)
	p.Require(token.THEN)
	body := p.parseStatementsUntil(token.END)
	p.Require(token.END)
	p.Require(token.WHILE)
	return &ast.While{Cond: cond, Body: body}
}

func (p *Parser) parseFor() ast.Node {
	p.advance() // for
	name := p.Require(token.IDENTIFIER)
	p.Require(token.IN)
	iterable := p.parseCondition(token.THEN)
	p.Require(token.THEN)
	body := p.parseStatementsUntil(token.END)
	p.Require(token.END)
	p.Require(token.FOR)
	return &ast.For{IterName: name.Literal, Iterable: iterable, Body: body}
}

// parseCondition parses the `<cond>`/`<iterable>` slot between a control-flow
// header and its `then` via ParseCodeUntil(terms), per spec §4.2. In practice
// this is a single expression statement; anything beyond that is undefined
// behavior (spec §9) and we hand back the whole block, whose value is that of
// its last statement.
func (p *Parser) parseCondition(terms ...token.TokenType) ast.Node {
	block := p.parseStatementsUntil(terms...)
	if len(block.Statements) == 1 {
		return block.Statements[0]
	}
	return block
}

func (p *Parser) parseReturn() ast.Node {
	p.advance() // return
	if p.cur().Type == token.END || p.cur().Type == token.ELSE || p.cur().Type == token.EOFF {
		return &ast.Return{}
	}
	return &ast.Return{Value: p.ParseBin(1)}
}

// parseFunctionLiteral parses `function ( <params> ) <block> end function`.
// Params are parsed via ParseBin per spec §4.2, then required to be bare
// variable references.
func (p *Parser) parseFunctionLiteral() ast.Node {
	p.advance() // function
	p.Require(token.L_S_BRACKET)

	var params []string
	if p.cur().Type != token.R_S_BRACKET {
		for {
			param := p.ParseBin(1)
			if v, ok := param.(*ast.Variable); ok {
				params = append(params, v.Name)
			} else {
				p.errorf("parse error at token %d: function parameter must be an identifier", p.pos)
			}
			if !p.Accept(token.COMMA) {
				break
			}
		}
	}
	p.Require(token.R_S_BRACKET)

	body := p.parseStatementsUntil(token.END)
	p.Require(token.END)
	p.Require(token.FUNCTION)
	return &ast.Function{Params: params, Body: body}
}

// ParseBin implements precedence-climbing: parse a unary operand, then while
// the next operator's priority is >= minPrio, consume it and recurse with
// minPrio+1, left-associatively folding into BinOp.
func (p *Parser) ParseBin(minPrio int) ast.Node {
	left := p.parseUnary()
	for {
		prio, ok := precedence[p.cur().Type]
		if !ok || prio < minPrio {
			return left
		}
		op := p.advance()
		right := p.ParseBin(prio + 1)
		left = &ast.BinOp{Op: op.Type, Literal: op.Literal, Left: left, Right: right}
	}
}

func (p *Parser) parseUnary() ast.Node {
	switch p.cur().Type {
	case token.MINUS, token.PLUS, token.NOT:
		op := p.advance()
		return &ast.UnaryOp{Op: op.Type, Literal: op.Literal, Operand: p.parseUnary()}
	default:
		return p.parsePrimary()
	}
}

// parsePrimary implements spec §4.2's Primary production.
func (p *Parser) parsePrimary() ast.Node {
	tok := p.cur()
	switch tok.Type {
	case token.NIL:
		p.advance()
		return &ast.Nil{Tok: tok}
	case token.NUMBER:
		p.advance()
		return &ast.Number{Tok: tok}
	case token.BOOL:
		p.advance()
		return &ast.Bool{Tok: tok}
	case token.STRING:
		p.advance()
		var node ast.Node = &ast.String{Tok: tok}
		if p.cur().Type == token.L_BRACKET {
			node = p.parseIndexOrSlice(node)
		}
		return node
	case token.IDENTIFIER:
		p.advance()
		if p.cur().Type == token.L_S_BRACKET {
			return p.parseCall(tok)
		}
		var node ast.Node = &ast.Variable{Tok: tok, Name: tok.Literal}
		if p.cur().Type == token.L_BRACKET {
			node = p.parseIndexOrSlice(node)
		}
		return node
	case token.L_S_BRACKET:
		p.advance()
		expr := p.ParseBin(1)
		p.Require(token.R_S_BRACKET)
		return expr
	case token.L_BRACKET:
		return p.parseListLiteral()
	case token.FUNCTION:
		return p.parseFunctionLiteral()
	default:
		p.errorf("parse error at token %d: unexpected token %s %q", p.pos, tok.Type, tok.Literal)
		p.advance()
		return &ast.Nil{Tok: tok}
	}
}

// parseCall parses `( args )` where each argument is a single primary, not a
// full expression (spec §4.2, §9 — preserved deliberately).
func (p *Parser) parseCall(name token.Token) ast.Node {
	p.Require(token.L_S_BRACKET)
	var args []ast.Node
	if p.cur().Type != token.R_S_BRACKET {
		for {
			args = append(args, p.parsePrimary())
			if !p.Accept(token.COMMA) {
				break
			}
		}
	}
	p.Require(token.R_S_BRACKET)
	return &ast.Call{Name: name.Literal, Object: &ast.Variable{Tok: name, Name: name.Literal}, Args: args}
}

func (p *Parser) parseListLiteral() ast.Node {
	p.Require(token.L_BRACKET)
	var elems []ast.Node
	if p.cur().Type != token.R_BRACKET {
		for {
			elems = append(elems, p.ParseBin(1))
			if !p.Accept(token.COMMA) {
				break
			}
		}
	}
	p.Require(token.R_BRACKET)
	return &ast.List{Elements: elems}
}

// parseIndexOrSlice parses the `[ start? (: end?)? ]` suffix following a
// string or variable primary. Omitted bounds are left as nil nodes; the
// evaluator supplies the defaults.
func (p *Parser) parseIndexOrSlice(object ast.Node) ast.Node {
	p.Require(token.L_BRACKET)

	var start ast.Node
	if p.cur().Type != token.COLON && p.cur().Type != token.R_BRACKET {
		start = p.ParseBin(1)
	}

	if p.Accept(token.COLON) {
		var end ast.Node
		if p.cur().Type != token.R_BRACKET {
			end = p.ParseBin(1)
		}
		p.Require(token.R_BRACKET)
		return &ast.Slice{Object: object, Start: start, End: end}
	}

	p.Require(token.R_BRACKET)
	if start == nil {
		p.errorf("parse error at token %d: missing index expression", p.pos)
		start = &ast.Nil{}
	}
	return &ast.Index{Object: object, Index: start}
}
