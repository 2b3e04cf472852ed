// Copyright 2024 The zb Authors
// SPDX-License-Identifier: MIT

// Package luaparse implements a recursive-descent parser for Lua and Luau
// source text, producing an internal/luaast tree. Its control structure
// mirrors a classic hand-written Lua parser: a single current token, one
// token of non-consuming lookahead for table-constructor disambiguation,
// and panic/recover for error propagation instead of threading an error
// return through every production.
package luaparse

import (
	"fmt"
	"strings"

	"lucerna.dev/lucerna/internal/luaast"
	"lucerna.dev/lucerna/internal/lualex"
)

// ParserError is returned by [Parse] when the source does not conform to
// the grammar. It carries file-local position information so that callers
// can render a caret diagnostic.
type ParserError struct {
	File     string
	Position lualex.Position
	Message  string
}

func (e *ParserError) Error() string {
	if e.File == "" {
		return fmt.Sprintf("%v: %s", e.Position, e.Message)
	}
	return fmt.Sprintf("%s:%v: %s", e.File, e.Position, e.Message)
}

// Option configures a [Parser].
type Option func(*config)

type config struct {
	preserveTokens bool
}

// PreserveTokens toggles preserve-tokens mode: every token the AST records
// retains its full leading and trailing trivia, for the token-based
// generator to replay (luagen.RetainLines documents what that replay
// does not reproduce). Without it, trivia is discarded
// as each token is read (literal forms such as number representation and
// string delimiter are preserved in the AST regardless).
func PreserveTokens(on bool) Option {
	return func(c *config) { c.preserveTokens = on }
}

// Parser holds state while parsing a single source buffer. The zero value
// is not usable; construct one with [NewParser].
type Parser struct {
	file           string
	src            string
	scanner        *lualex.Scanner
	preserveTokens bool

	tok lualex.Token
	err *ParserError
}

// NewParser returns a [Parser] ready to parse src, attributing diagnostics
// to file.
func NewParser(file, src string, opts ...Option) *Parser {
	var c config
	for _, opt := range opts {
		opt(&c)
	}
	p := &Parser{
		file:           file,
		src:            src,
		scanner:        lualex.NewScanner(src),
		preserveTokens: c.preserveTokens,
	}
	return p
}

// Parse parses src as a complete chunk and returns its [luaast.Block], or a
// [*ParserError] if src is not well-formed.
func Parse(file, src string, opts ...Option) (block *luaast.Block, err error) {
	p := NewParser(file, src, opts...)
	return p.Parse()
}

// Parse runs the parser and returns the resulting block.
func (p *Parser) Parse() (block *luaast.Block, err error) {
	defer func() {
		if r := recover(); r != nil {
			if _, ok := r.(bailout); !ok {
				panic(r)
			}
			block = nil
			err = p.err
		}
	}()
	p.next()
	b := p.parseBlock()
	p.expect(lualex.EOFToken)
	return b, nil
}

// bailout unwinds the parser to [Parser.Parse] after a diagnostic has been
// recorded in p.err.
type bailout struct{}

func (p *Parser) errorAt(pos lualex.Position, format string, args ...any) {
	if p.err == nil {
		p.err = &ParserError{File: p.file, Position: pos, Message: fmt.Sprintf(format, args...)}
	}
	panic(bailout{})
}

func (p *Parser) error(format string, args ...any) {
	p.errorAt(p.tok.Position, format, args...)
}

// next advances to the next token, clearing trivia when not in
// preserve-tokens mode.
func (p *Parser) next() {
	tok, err := p.scanner.Scan()
	if err != nil {
		p.errorAt(tok.Position, "%s", err)
	}
	if !p.preserveTokens {
		tok.LeadingTrivia = nil
		tok.TrailingTrivia = nil
	}
	p.tok = tok
}

// peekKind reports the kind of the token after the current one, without
// consuming it. The underlying scanner is copied by value so this never
// mutates parser state.
func (p *Parser) peekKind() lualex.TokenKind {
	cp := *p.scanner
	tok, err := cp.Scan()
	if err != nil {
		return lualex.ErrorToken
	}
	return tok.Kind
}

func (p *Parser) at(kind lualex.TokenKind) bool { return p.tok.Kind == kind }

func (p *Parser) expect(kind lualex.TokenKind) lualex.Token {
	if p.tok.Kind != kind {
		p.error("expected %v, found %v", kind, p.tok.Kind)
	}
	tok := p.tok
	p.next()
	return tok
}

// text returns the literal text of the current token.
func (p *Parser) text() string { return p.tok.Text(p.src) }

func (p *Parser) isBlockFollow() bool {
	switch p.tok.Kind {
	case lualex.EOFToken, lualex.EndToken, lualex.ElseToken, lualex.ElseifToken, lualex.UntilToken:
		return true
	}
	return false
}

func (p *Parser) skipSemi() {
	for p.at(lualex.SemiToken) {
		p.next()
	}
}

// parseBlock parses statements until a block-follow token, a `return`, a
// `break`, or a `continue`. The last of those three terminates the block
// and is stored as the block's [luaast.LastStatement].
func (p *Parser) parseBlock() *luaast.Block {
	block := &luaast.Block{}
	for !p.isBlockFollow() {
		switch p.tok.Kind {
		case lualex.SemiToken:
			p.next()
			continue
		case lualex.ReturnToken:
			block.Last = p.parseReturnStatement()
			p.skipSemi()
			return block
		case lualex.BreakToken:
			block.Last = &luaast.BreakStatement{Token: p.tok}
			p.next()
			p.skipSemi()
			return block
		case lualex.ContinueToken:
			block.Last = &luaast.ContinueStatement{Token: p.tok}
			p.next()
			p.skipSemi()
			return block
		}
		block.Statements = append(block.Statements, p.parseStatement())
		p.skipSemi()
	}
	return block
}

func (p *Parser) parseReturnStatement() *luaast.ReturnStatement {
	tok := p.expect(lualex.ReturnToken)
	stmt := &luaast.ReturnStatement{ReturnToken: tok}
	if p.isBlockFollow() || p.at(lualex.SemiToken) {
		return stmt
	}
	stmt.Expressions = p.parseExpressionList()
	return stmt
}

func (p *Parser) parseStatement() luaast.Statement {
	switch p.tok.Kind {
	case lualex.DoToken:
		return p.parseDoStatement()
	case lualex.WhileToken:
		return p.parseWhileStatement()
	case lualex.RepeatToken:
		return p.parseRepeatStatement()
	case lualex.IfToken:
		return p.parseIfStatement()
	case lualex.ForToken:
		return p.parseForStatement()
	case lualex.FunctionToken:
		return p.parseFunctionStatement()
	case lualex.LocalToken:
		return p.parseLocalStatement()
	case lualex.IdentifierToken:
		switch {
		case p.text() == "type" && p.peekKind() == lualex.IdentifierToken:
			return p.parseTypeDeclaration(false)
		case p.text() == "export" && p.peekKind() == lualex.IdentifierToken:
			p.next()
			if p.text() != "type" {
				p.error("expected 'type' after 'export'")
			}
			return p.parseTypeDeclaration(true)
		default:
			return p.parseExpressionStatement()
		}
	case lualex.DoubleColonToken:
		p.error("labels are not supported")
	}
	return p.parseExpressionStatement()
}

func (p *Parser) parseDoStatement() *luaast.DoStatement {
	tok := p.expect(lualex.DoToken)
	body := p.parseBlock()
	p.expect(lualex.EndToken)
	return &luaast.DoStatement{DoToken: tok, Block: body}
}

func (p *Parser) parseWhileStatement() *luaast.WhileStatement {
	tok := p.expect(lualex.WhileToken)
	cond := p.parseExpression()
	p.expect(lualex.DoToken)
	body := p.parseBlock()
	p.expect(lualex.EndToken)
	return &luaast.WhileStatement{WhileToken: tok, Condition: cond, Block: body}
}

func (p *Parser) parseRepeatStatement() *luaast.RepeatStatement {
	tok := p.expect(lualex.RepeatToken)
	body := p.parseBlock()
	p.expect(lualex.UntilToken)
	cond := p.parseExpression()
	return &luaast.RepeatStatement{RepeatToken: tok, Block: body, Condition: cond}
}

func (p *Parser) parseIfStatement() *luaast.IfStatement {
	tok := p.expect(lualex.IfToken)
	stmt := &luaast.IfStatement{IfToken: tok}
	cond := p.parseExpression()
	p.expect(lualex.ThenToken)
	stmt.Clauses = append(stmt.Clauses, luaast.IfClause{Condition: cond, Block: p.parseBlock()})
	for p.at(lualex.ElseifToken) {
		p.next()
		cond := p.parseExpression()
		p.expect(lualex.ThenToken)
		stmt.Clauses = append(stmt.Clauses, luaast.IfClause{Condition: cond, Block: p.parseBlock()})
	}
	if p.at(lualex.ElseToken) {
		p.next()
		stmt.Else = p.parseBlock()
	}
	p.expect(lualex.EndToken)
	return stmt
}

func (p *Parser) parseForStatement() luaast.Statement {
	forTok := p.expect(lualex.ForToken)
	name := p.parseIdentifier()
	switch p.tok.Kind {
	case lualex.AssignToken:
		p.next()
		start := p.parseExpression()
		p.expect(lualex.CommaToken)
		stop := p.parseExpression()
		var step luaast.Expression
		if p.at(lualex.CommaToken) {
			p.next()
			step = p.parseExpression()
		}
		p.expect(lualex.DoToken)
		body := p.parseBlock()
		p.expect(lualex.EndToken)
		return &luaast.NumericForStatement{
			ForToken: forTok, Variable: name, Start: start, Stop: stop, Step: step, Block: body,
		}
	case lualex.CommaToken, lualex.InToken:
		names := []*luaast.Identifier{name}
		for p.at(lualex.CommaToken) {
			p.next()
			names = append(names, p.parseIdentifier())
		}
		p.expect(lualex.InToken)
		exprs := p.parseExpressionList()
		p.expect(lualex.DoToken)
		body := p.parseBlock()
		p.expect(lualex.EndToken)
		return &luaast.GenericForStatement{ForToken: forTok, Names: names, Expressions: exprs, Block: body}
	default:
		p.error("expected '=' or 'in'")
		panic(bailout{})
	}
}

func (p *Parser) parseFunctionStatement() *luaast.FunctionStatement {
	tok := p.expect(lualex.FunctionToken)
	name := luaast.FunctionName{Base: p.parseIdentifier()}
	for p.at(lualex.DotToken) {
		p.next()
		name.Fields = append(name.Fields, p.parseIdentifier())
	}
	if p.at(lualex.ColonToken) {
		p.next()
		name.Method = p.parseIdentifier()
	}
	body := p.parseFunctionBody(name.Method != nil)
	return &luaast.FunctionStatement{FunctionToken: tok, Name: name, Body: body}
}

func (p *Parser) parseLocalStatement() luaast.Statement {
	localTok := p.expect(lualex.LocalToken)
	if p.at(lualex.FunctionToken) {
		p.next()
		name := p.parseIdentifier()
		body := p.parseFunctionBody(false)
		return &luaast.LocalFunctionStatement{Name: name, Body: body}
	}
	stmt := &luaast.LocalAssignStatement{LocalToken: localTok}
	stmt.Names = append(stmt.Names, p.parseLocalName())
	for p.at(lualex.CommaToken) {
		p.next()
		stmt.Names = append(stmt.Names, p.parseLocalName())
	}
	if p.at(lualex.AssignToken) {
		p.next()
		stmt.Values = p.parseExpressionList()
	}
	return stmt
}

func (p *Parser) parseLocalName() luaast.LocalName {
	name := luaast.LocalName{Name: p.parseIdentifier()}
	if p.at(lualex.LessToken) {
		p.next()
		attr := p.parseIdentifier()
		switch attr.Name {
		case "const":
			name.Attribute = luaast.ConstAttribute
		case "close":
			name.Attribute = luaast.CloseAttribute
		default:
			p.error("unknown attribute %q", attr.Name)
		}
		p.expect(lualex.GreaterToken)
	} else if p.at(lualex.ColonToken) {
		p.next()
		name.Type = p.parseType()
	}
	return name
}

func (p *Parser) parseTypeDeclaration(exported bool) *luaast.TypeDeclarationStatement {
	typeTok := p.expect(lualex.IdentifierToken) // "type"
	name := p.parseIdentifier()
	var generics []string
	if p.at(lualex.LessToken) {
		p.next()
		generics = append(generics, p.parseIdentifier().Name)
		for p.at(lualex.CommaToken) {
			p.next()
			generics = append(generics, p.parseIdentifier().Name)
		}
		p.expect(lualex.GreaterToken)
	}
	p.expect(lualex.AssignToken)
	def := p.parseType()
	return &luaast.TypeDeclarationStatement{
		TypeToken: typeTok, Exported: exported, Name: name, Generics: generics, Definition: def,
	}
}

// parseExpressionStatement parses a statement that starts with a prefix
// expression: either a bare call, an assignment, or a Luau compound
// assignment.
func (p *Parser) parseExpressionStatement() luaast.Statement {
	expr := p.parsePrimaryExpression()
	if call, ok := expr.(*luaast.CallExpression); ok && !p.at(lualex.CommaToken) && !p.at(lualex.AssignToken) && !isCompoundAssignToken(p.tok.Kind) {
		return &luaast.CallStatement{Call: call}
	}
	if op, ok := compoundOperatorFor(p.tok.Kind); ok {
		target, ok := expr.(luaast.Variable)
		if !ok {
			p.error("cannot assign to this expression")
		}
		tok := p.tok
		p.next()
		value := p.parseExpression()
		return &luaast.CompoundAssignStatement{Target: target, Operator: op, Token: tok, Value: value}
	}
	targets := []luaast.Variable{mustVariable(p, expr)}
	for p.at(lualex.CommaToken) {
		p.next()
		targets = append(targets, mustVariable(p, p.parsePrimaryExpression()))
	}
	assignTok := p.expect(lualex.AssignToken)
	values := p.parseExpressionList()
	return &luaast.AssignStatement{Targets: targets, AssignToken: assignTok, Values: values}
}

func mustVariable(p *Parser, expr luaast.Expression) luaast.Variable {
	v, ok := expr.(luaast.Variable)
	if !ok {
		p.error("cannot assign to this expression")
	}
	return v
}

func isCompoundAssignToken(kind lualex.TokenKind) bool {
	_, ok := compoundOperatorFor(kind)
	return ok
}

func compoundOperatorFor(kind lualex.TokenKind) (luaast.CompoundOperator, bool) {
	switch kind {
	case lualex.AddAssignToken:
		return luaast.CompoundAdd, true
	case lualex.SubAssignToken:
		return luaast.CompoundSub, true
	case lualex.MulAssignToken:
		return luaast.CompoundMul, true
	case lualex.DivAssignToken:
		return luaast.CompoundDiv, true
	case lualex.FloorDivAssignToken:
		return luaast.CompoundFloorDiv, true
	case lualex.ModAssignToken:
		return luaast.CompoundMod, true
	case lualex.PowAssignToken:
		return luaast.CompoundPow, true
	case lualex.ConcatAssignToken:
		return luaast.CompoundConcat, true
	}
	return 0, false
}

func (p *Parser) parseIdentifier() *luaast.Identifier {
	tok := p.expect(lualex.IdentifierToken)
	return &luaast.Identifier{Name: tok.Text(p.src), Token: tok}
}

func (p *Parser) parseFunctionBody(hasSelf bool) *luaast.FunctionBody {
	body := &luaast.FunctionBody{}
	if p.at(lualex.LessToken) {
		p.next()
		body.GenericParameters = append(body.GenericParameters, p.parseIdentifier().Name)
		for p.at(lualex.CommaToken) {
			p.next()
			body.GenericParameters = append(body.GenericParameters, p.parseIdentifier().Name)
		}
		p.expect(lualex.GreaterToken)
	}
	body.OpenParenToken = p.expect(lualex.LParenToken)
	for !p.at(lualex.RParenToken) {
		if p.at(lualex.VarargToken) {
			body.IsVariadic = true
			p.next()
			if p.at(lualex.ColonToken) {
				p.next()
				body.VariadicType = p.parseType()
			}
			break
		}
		name := p.parseIdentifier()
		param := luaast.Parameter{Name: name}
		if p.at(lualex.ColonToken) {
			p.next()
			param.Type = p.parseType()
		}
		body.Parameters = append(body.Parameters, param)
		if p.at(lualex.CommaToken) {
			p.next()
			continue
		}
		break
	}
	body.CloseParenToken = p.expect(lualex.RParenToken)
	if p.at(lualex.ColonToken) {
		p.next()
		body.ReturnType = p.parseType()
	} else if p.at(lualex.ThinArrowToken) {
		p.next()
		body.ReturnType = p.parseType()
	}
	body.Block = p.parseBlock()
	body.EndToken = p.expect(lualex.EndToken)
	return body
}

func (p *Parser) parseExpressionList() []luaast.Expression {
	list := []luaast.Expression{p.parseExpression()}
	for p.at(lualex.CommaToken) {
		p.next()
		list = append(list, p.parseExpression())
	}
	return list
}

func (p *Parser) parseExpression() luaast.Expression {
	return p.parseSubexpression(0)
}

// precedence returns the left and right binding power of a binary
// operator token, matching the Lua 5.4 reference parser's table; `^` and
// `..` are right-associative (right power lower than left).
func precedence(kind lualex.TokenKind) (left, right int, ok bool) {
	switch kind {
	case lualex.OrToken:
		return 1, 1, true
	case lualex.AndToken:
		return 2, 2, true
	case lualex.LessToken, lualex.GreaterToken, lualex.LessEqualToken, lualex.GreaterEqualToken,
		lualex.NotEqualToken, lualex.EqualToken:
		return 3, 3, true
	case lualex.BitOrToken:
		return 4, 4, true
	case lualex.BitXorToken:
		return 5, 5, true
	case lualex.BitAndToken:
		return 6, 6, true
	case lualex.LShiftToken, lualex.RShiftToken:
		return 7, 7, true
	case lualex.ConcatToken:
		return 9, 8, true
	case lualex.AddToken, lualex.SubToken:
		return 10, 10, true
	case lualex.MulToken, lualex.DivToken, lualex.FloorDivToken, lualex.ModToken:
		return 11, 11, true
	case lualex.PowToken:
		return 14, 13, true
	}
	return 0, 0, false
}

const unaryPrecedence = 12

func isUnaryToken(kind lualex.TokenKind) bool {
	switch kind {
	case lualex.SubToken, lualex.NotToken, lualex.LenToken, lualex.BitXorToken:
		return true
	}
	return false
}

func unaryOperatorFor(kind lualex.TokenKind) luaast.UnaryOperator {
	switch kind {
	case lualex.SubToken:
		return luaast.OpNegate
	case lualex.NotToken:
		return luaast.OpNot
	case lualex.LenToken:
		return luaast.OpLength
	case lualex.BitXorToken:
		return luaast.OpBitNot
	}
	panic("unreachable")
}

func binaryOperatorFor(kind lualex.TokenKind) luaast.BinaryOperator {
	switch kind {
	case lualex.AddToken:
		return luaast.OpAdd
	case lualex.SubToken:
		return luaast.OpSub
	case lualex.MulToken:
		return luaast.OpMul
	case lualex.DivToken:
		return luaast.OpDiv
	case lualex.FloorDivToken:
		return luaast.OpFloorDiv
	case lualex.ModToken:
		return luaast.OpMod
	case lualex.PowToken:
		return luaast.OpPow
	case lualex.ConcatToken:
		return luaast.OpConcat
	case lualex.EqualToken:
		return luaast.OpEqual
	case lualex.NotEqualToken:
		return luaast.OpNotEqual
	case lualex.LessToken:
		return luaast.OpLessThan
	case lualex.LessEqualToken:
		return luaast.OpLessEqual
	case lualex.GreaterToken:
		return luaast.OpGreaterThan
	case lualex.GreaterEqualToken:
		return luaast.OpGreaterEqual
	case lualex.AndToken:
		return luaast.OpAnd
	case lualex.OrToken:
		return luaast.OpOr
	case lualex.BitAndToken:
		return luaast.OpBitAnd
	case lualex.BitOrToken:
		return luaast.OpBitOr
	case lualex.BitXorToken:
		return luaast.OpBitXor
	case lualex.LShiftToken:
		return luaast.OpShiftLeft
	case lualex.RShiftToken:
		return luaast.OpShiftRight
	}
	panic("unreachable")
}

func (p *Parser) parseSubexpression(limit int) luaast.Expression {
	var expr luaast.Expression
	if isUnaryToken(p.tok.Kind) {
		op := unaryOperatorFor(p.tok.Kind)
		tok := p.tok
		p.next()
		operand := p.parseSubexpression(unaryPrecedence)
		expr = &luaast.UnaryExpression{Operator: op, Token: tok, Operand: operand}
	} else {
		expr = p.parseSimpleExpression()
	}
	for {
		left, right, ok := precedence(p.tok.Kind)
		if !ok || left <= limit {
			break
		}
		op := binaryOperatorFor(p.tok.Kind)
		tok := p.tok
		p.next()
		rhs := p.parseSubexpression(right)
		expr = &luaast.BinaryExpression{Left: expr, Operator: op, Token: tok, Right: rhs}
	}
	return expr
}

func (p *Parser) parseSimpleExpression() luaast.Expression {
	switch p.tok.Kind {
	case lualex.NilToken:
		tok := p.tok
		p.next()
		return &luaast.NilExpression{Token: tok}
	case lualex.TrueToken:
		tok := p.tok
		p.next()
		return &luaast.TrueExpression{Token: tok}
	case lualex.FalseToken:
		tok := p.tok
		p.next()
		return &luaast.FalseExpression{Token: tok}
	case lualex.NumberToken:
		return p.parseNumber()
	case lualex.StringToken:
		return p.parseShortString()
	case lualex.InterpStringSimpleToken, lualex.InterpStringBeginToken:
		return p.parseInterpolatedString()
	case lualex.VarargToken:
		tok := p.tok
		p.next()
		return &luaast.VarargExpression{Token: tok}
	case lualex.LBraceToken:
		return p.parseTableExpression()
	case lualex.FunctionToken:
		tok := p.expect(lualex.FunctionToken)
		return &luaast.FunctionExpression{FunctionToken: tok, Body: p.parseFunctionBody(false)}
	case lualex.IfToken:
		return p.parseIfExpression()
	default:
		return p.parsePrimaryExpression()
	}
}

func (p *Parser) parseIfExpression() *luaast.IfExpression {
	p.expect(lualex.IfToken)
	cond := p.parseExpression()
	p.expect(lualex.ThenToken)
	then := p.parseExpression()
	expr := &luaast.IfExpression{Condition: cond, Then: then}
	for p.at(lualex.ElseifToken) {
		p.next()
		c := p.parseExpression()
		p.expect(lualex.ThenToken)
		r := p.parseExpression()
		expr.ElseIfs = append(expr.ElseIfs, luaast.IfExpressionBranch{Condition: c, Result: r})
	}
	p.expect(lualex.ElseToken)
	expr.Else = p.parseExpression()
	return expr
}

// parsePrimaryExpression parses a prefix expression and any chain of
// field access, indexing, and call suffixes.
func (p *Parser) parsePrimaryExpression() luaast.Expression {
	var expr luaast.Expression
	switch p.tok.Kind {
	case lualex.LParenToken:
		open := p.expect(lualex.LParenToken)
		inner := p.parseExpression()
		closeTok := p.expect(lualex.RParenToken)
		expr = &luaast.ParenthesizedExpression{OpenToken: open, Inner: inner, CloseToken: closeTok}
	case lualex.IdentifierToken:
		expr = p.parseIdentifier()
	default:
		p.error("unexpected symbol near %q", p.text())
		panic(bailout{})
	}
	for {
		switch p.tok.Kind {
		case lualex.DotToken:
			dotTok := p.tok
			p.next()
			field := p.parseIdentifier()
			expr = &luaast.FieldVariable{Object: expr.(luaast.PrefixExpression), DotToken: dotTok, Field: field}
		case lualex.LBracketToken:
			open := p.expect(lualex.LBracketToken)
			key := p.parseExpression()
			closeTok := p.expect(lualex.RBracketToken)
			expr = &luaast.IndexVariable{Object: expr.(luaast.PrefixExpression), OpenToken: open, Key: key, CloseToken: closeTok}
		case lualex.ColonToken:
			colonTok := p.tok
			p.next()
			method := p.parseIdentifier()
			args := p.parseCallArguments()
			expr = &luaast.CallExpression{
				Callee: expr.(luaast.PrefixExpression), ColonToken: colonTok, Method: method.Name, Arguments: args,
			}
		case lualex.LParenToken, lualex.LBraceToken, lualex.StringToken:
			args := p.parseCallArguments()
			expr = &luaast.CallExpression{Callee: expr.(luaast.PrefixExpression), Arguments: args}
		default:
			return expr
		}
	}
}

func (p *Parser) parseCallArguments() luaast.Argument {
	switch p.tok.Kind {
	case lualex.LParenToken:
		open := p.expect(lualex.LParenToken)
		var items []luaast.Expression
		for !p.at(lualex.RParenToken) {
			items = append(items, p.parseExpression())
			if p.at(lualex.CommaToken) {
				p.next()
				continue
			}
			break
		}
		closeTok := p.expect(lualex.RParenToken)
		return &luaast.ExpressionListArgument{OpenToken: open, Items: items, CloseToken: closeTok}
	case lualex.LBraceToken:
		return &luaast.TableArgument{Table: p.parseTableExpression()}
	case lualex.StringToken:
		return &luaast.StringArgument{String: p.parseShortString()}
	default:
		p.error("function arguments expected")
		panic(bailout{})
	}
}

func (p *Parser) parseTableExpression() *luaast.TableExpression {
	open := p.expect(lualex.LBraceToken)
	table := &luaast.TableExpression{OpenToken: open}
	for !p.at(lualex.RBraceToken) {
		var entry luaast.TableEntry
		switch {
		case p.at(lualex.LBracketToken):
			p.next()
			key := p.parseExpression()
			p.expect(lualex.RBracketToken)
			p.expect(lualex.AssignToken)
			entry = luaast.TableEntry{Kind: luaast.IndexedEntry, Key: key, Value: p.parseExpression()}
		case p.at(lualex.IdentifierToken) && p.peekKind() == lualex.AssignToken:
			name := p.text()
			p.next()
			p.next()
			entry = luaast.TableEntry{Kind: luaast.NamedEntry, Name: name, Value: p.parseExpression()}
		default:
			entry = luaast.TableEntry{Kind: luaast.PositionalEntry, Value: p.parseExpression()}
		}
		table.Entries = append(table.Entries, entry)
		if p.at(lualex.CommaToken) || p.at(lualex.SemiToken) {
			p.next()
			continue
		}
		break
	}
	table.CloseToken = p.expect(lualex.RBraceToken)
	return table
}

func (p *Parser) parseNumber() *luaast.NumberExpression {
	tok := p.tok
	text := tok.Text(p.src)
	p.next()
	rep := luaast.DecimalRepresentation
	switch {
	case len(text) > 1 && text[0] == '0' && (text[1] == 'x' || text[1] == 'X'):
		rep = luaast.HexRepresentation
	case len(text) > 1 && text[0] == '0' && (text[1] == 'b' || text[1] == 'B'):
		rep = luaast.BinaryRepresentation
	}
	n := &luaast.NumberExpression{Representation: rep, Token: tok}
	// Luau permits `_` digit separators (e.g. `1_000_000`) that stock
	// Lua's numeral grammar does not; strip them before handing the text
	// to the shared lexical-rule parsers, which reject them outright.
	if strings.ContainsRune(text, '_') {
		text = strings.ReplaceAll(text, "_", "")
	}
	if i, err := lualex.ParseInt(text); err == nil {
		n.IsInteger = true
		n.IntegerValue = i
		n.Value = float64(i)
		return n
	}
	f, err := lualex.ParseNumber(text)
	if err != nil {
		p.errorAt(tok.Position, "malformed number near %q", text)
	}
	n.Value = f
	return n
}

func (p *Parser) parseShortString() *luaast.StringExpression {
	tok := p.tok
	p.next()
	value, delim, longEq, err := decodeString(tok.Text(p.src))
	if err != nil {
		p.errorAt(tok.Position, "%s", err)
	}
	return &luaast.StringExpression{Value: value, Delimiter: delim, LongBracketEq: longEq, Token: tok}
}

// parseInterpolatedString re-lexes a backtick token's content into its
// literal and embedded-expression segments.
func (p *Parser) parseInterpolatedString() *luaast.InterpolatedStringExpression {
	tok := p.tok
	p.next()
	segments, err := decodeInterpolatedString(p.file, tok, p.src, p.preserveTokens)
	if err != nil {
		if perr, ok := err.(*ParserError); ok {
			if p.err == nil {
				p.err = perr
			}
			panic(bailout{})
		}
		p.errorAt(tok.Position, "%s", err)
	}
	return &luaast.InterpolatedStringExpression{Segments: segments, Token: tok}
}

func (p *Parser) parseType() luaast.Type {
	return p.parseUnionType()
}

func (p *Parser) parseUnionType() luaast.Type {
	first := p.parseIntersectionType()
	if !p.at(lualex.BitOrToken) {
		return first
	}
	members := []luaast.Type{first}
	for p.at(lualex.BitOrToken) {
		p.next()
		members = append(members, p.parseIntersectionType())
	}
	return &luaast.UnionType{Members: members}
}

func (p *Parser) parseIntersectionType() luaast.Type {
	first := p.parsePostfixType()
	if !p.at(lualex.BitAndToken) {
		return first
	}
	members := []luaast.Type{first}
	for p.at(lualex.BitAndToken) {
		p.next()
		members = append(members, p.parsePostfixType())
	}
	return &luaast.IntersectionType{Members: members}
}

func (p *Parser) parsePostfixType() luaast.Type {
	t := p.parsePrimaryType()
	for p.at(lualex.QuestionToken) {
		p.next()
		t = &luaast.OptionalType{Inner: t}
	}
	return t
}

func (p *Parser) parsePrimaryType() luaast.Type {
	switch p.tok.Kind {
	case lualex.LParenToken:
		return p.parseParenOrFunctionType()
	case lualex.LBraceToken:
		return p.parseTableType()
	case lualex.IdentifierToken:
		if p.text() == "typeof" && p.peekKind() == lualex.LParenToken {
			p.next()
			p.next()
			expr := p.parseExpression()
			p.expect(lualex.RParenToken)
			return &luaast.TypeofType{Expression: expr}
		}
		name := p.parseNameType()
		if p.at(lualex.DotToken) {
			p.next()
			inner := p.parseNameType()
			return &luaast.FieldType{Module: name.Name, Name: inner}
		}
		return name
	default:
		p.error("expected type, found %v", p.tok.Kind)
		panic(bailout{})
	}
}

func (p *Parser) parseNameType() *luaast.NameType {
	name := p.expect(lualex.IdentifierToken).Text(p.src)
	t := &luaast.NameType{Name: name}
	if p.at(lualex.LessToken) {
		p.next()
		t.TypeParameters = append(t.TypeParameters, p.parseTypeOrPack())
		for p.at(lualex.CommaToken) {
			p.next()
			t.TypeParameters = append(t.TypeParameters, p.parseTypeOrPack())
		}
		p.expect(lualex.GreaterToken)
	}
	return t
}

func (p *Parser) parseTypeOrPack() luaast.Type {
	return p.parseType()
}

// parseParenOrFunctionType disambiguates `(T)` grouping from `(A, B) -> C`
// function types, both of which start with `(`.
func (p *Parser) parseParenOrFunctionType() luaast.Type {
	p.expect(lualex.LParenToken)
	var params []luaast.Type
	for !p.at(lualex.RParenToken) {
		params = append(params, p.parseType())
		if p.at(lualex.CommaToken) {
			p.next()
			continue
		}
		break
	}
	p.expect(lualex.RParenToken)
	if p.at(lualex.ThinArrowToken) {
		p.next()
		ret := p.parseType()
		return &luaast.FunctionType{Parameters: params, ReturnType: ret}
	}
	if len(params) == 1 {
		return &luaast.ParenthesizedType{Inner: params[0]}
	}
	p.error("expected '->' after parameter list")
	panic(bailout{})
}

func (p *Parser) parseTableType() luaast.Type {
	p.expect(lualex.LBraceToken)
	table := &luaast.TableType{}
	for !p.at(lualex.RBraceToken) {
		if p.at(lualex.LBracketToken) {
			p.next()
			key := p.parseType()
			p.expect(lualex.RBracketToken)
			p.expect(lualex.ColonToken)
			value := p.parseType()
			table.Indexer = &luaast.TableIndexerType{KeyType: key, ValueType: value}
		} else if p.at(lualex.IdentifierToken) && p.peekKind() == lualex.ColonToken {
			name := p.expect(lualex.IdentifierToken).Text(p.src)
			p.next()
			table.Properties = append(table.Properties, luaast.TablePropertyType{Name: name, Type: p.parseType()})
		} else {
			table.LiteralProperties = append(table.LiteralProperties, p.parseType())
		}
		if p.at(lualex.CommaToken) || p.at(lualex.SemiToken) {
			p.next()
			continue
		}
		break
	}
	p.expect(lualex.RBraceToken)
	return table
}
