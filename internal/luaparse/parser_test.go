// Copyright 2024 The zb Authors
// SPDX-License-Identifier: MIT

package luaparse

import (
	"testing"

	"lucerna.dev/lucerna/internal/luaast"
)

func TestParseLocalAssign(t *testing.T) {
	block, err := Parse("test.lua", `local x, y = 1, "hi"`)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(block.Statements) != 1 {
		t.Fatalf("got %d statements, want 1", len(block.Statements))
	}
	stmt, ok := block.Statements[0].(*luaast.LocalAssignStatement)
	if !ok {
		t.Fatalf("statement is %T, want *LocalAssignStatement", block.Statements[0])
	}
	if len(stmt.Names) != 2 || stmt.Names[0].Name.Name != "x" || stmt.Names[1].Name.Name != "y" {
		t.Errorf("Names = %#v", stmt.Names)
	}
	if len(stmt.Values) != 2 {
		t.Fatalf("got %d values, want 2", len(stmt.Values))
	}
	num, ok := stmt.Values[0].(*luaast.NumberExpression)
	if !ok || !num.IsInteger || num.IntegerValue != 1 {
		t.Errorf("Values[0] = %#v", stmt.Values[0])
	}
	str, ok := stmt.Values[1].(*luaast.StringExpression)
	if !ok || str.Value != "hi" {
		t.Errorf("Values[1] = %#v", stmt.Values[1])
	}
}

func TestParseIfElseif(t *testing.T) {
	block, err := Parse("test.lua", `
if a then
	return 1
elseif b then
	return 2
else
	return 3
end
`)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	stmt, ok := block.Statements[0].(*luaast.IfStatement)
	if !ok {
		t.Fatalf("statement is %T, want *IfStatement", block.Statements[0])
	}
	if len(stmt.Clauses) != 2 {
		t.Fatalf("got %d clauses, want 2", len(stmt.Clauses))
	}
	if stmt.Else == nil {
		t.Fatal("Else is nil, want a block")
	}
}

func TestParseBinaryPrecedence(t *testing.T) {
	block, err := Parse("test.lua", `return 1 + 2 * 3 ^ 4`)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	ret, ok := block.Last.(*luaast.ReturnStatement)
	if !ok {
		t.Fatalf("Last is %T, want *ReturnStatement", block.Last)
	}
	top, ok := ret.Expressions[0].(*luaast.BinaryExpression)
	if !ok || top.Operator != luaast.OpAdd {
		t.Fatalf("top expression = %#v, want top-level +", ret.Expressions[0])
	}
	rhs, ok := top.Right.(*luaast.BinaryExpression)
	if !ok || rhs.Operator != luaast.OpMul {
		t.Fatalf("right of + = %#v, want *", top.Right)
	}
	pow, ok := rhs.Right.(*luaast.BinaryExpression)
	if !ok || pow.Operator != luaast.OpPow {
		t.Fatalf("right of * = %#v, want ^", rhs.Right)
	}
}

func TestParseConcatRightAssociative(t *testing.T) {
	block, err := Parse("test.lua", `return "a" .. "b" .. "c"`)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	ret := block.Last.(*luaast.ReturnStatement)
	top := ret.Expressions[0].(*luaast.BinaryExpression)
	if top.Operator != luaast.OpConcat {
		t.Fatalf("top operator = %v, want concat", top.Operator)
	}
	if _, ok := top.Left.(*luaast.StringExpression); !ok {
		t.Errorf("left of top concat = %T, want string literal (right-associative)", top.Left)
	}
	if _, ok := top.Right.(*luaast.BinaryExpression); !ok {
		t.Errorf("right of top concat = %T, want nested concat", top.Right)
	}
}

func TestParseFunctionCallChain(t *testing.T) {
	block, err := Parse("test.lua", `a.b:c(1, 2).d = 3`)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	stmt, ok := block.Statements[0].(*luaast.AssignStatement)
	if !ok {
		t.Fatalf("statement is %T, want *AssignStatement", block.Statements[0])
	}
	field, ok := stmt.Targets[0].(*luaast.FieldVariable)
	if !ok || field.Field.Name != "d" {
		t.Fatalf("Targets[0] = %#v", stmt.Targets[0])
	}
	call, ok := field.Object.(*luaast.CallExpression)
	if !ok || call.Method != "c" {
		t.Fatalf("field object = %#v, want method call to c", field.Object)
	}
}

func TestParseTableConstructor(t *testing.T) {
	block, err := Parse("test.lua", `local t = {1, 2, x = 3, [k] = 4}`)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	stmt := block.Statements[0].(*luaast.LocalAssignStatement)
	table := stmt.Values[0].(*luaast.TableExpression)
	if len(table.Entries) != 4 {
		t.Fatalf("got %d entries, want 4", len(table.Entries))
	}
	if table.Entries[0].Kind != luaast.PositionalEntry {
		t.Errorf("Entries[0].Kind = %v", table.Entries[0].Kind)
	}
	if table.Entries[2].Kind != luaast.NamedEntry || table.Entries[2].Name != "x" {
		t.Errorf("Entries[2] = %#v", table.Entries[2])
	}
	if table.Entries[3].Kind != luaast.IndexedEntry {
		t.Errorf("Entries[3].Kind = %v", table.Entries[3].Kind)
	}
}

func TestParseFunctionWithTypes(t *testing.T) {
	block, err := Parse("test.lua", `
local function add(a: number, b: number): number
	return a + b
end
`)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	stmt := block.Statements[0].(*luaast.LocalFunctionStatement)
	if stmt.Name.Name != "add" {
		t.Errorf("Name = %q", stmt.Name.Name)
	}
	if len(stmt.Body.Parameters) != 2 {
		t.Fatalf("got %d parameters, want 2", len(stmt.Body.Parameters))
	}
	nameType, ok := stmt.Body.Parameters[0].Type.(*luaast.NameType)
	if !ok || nameType.Name != "number" {
		t.Errorf("param type = %#v", stmt.Body.Parameters[0].Type)
	}
	if stmt.Body.ReturnType == nil {
		t.Error("ReturnType is nil")
	}
}

func TestParseMethodStatement(t *testing.T) {
	block, err := Parse("test.lua", `
function obj:method(x)
	return x
end
`)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	stmt := block.Statements[0].(*luaast.FunctionStatement)
	if stmt.Name.Base.Name != "obj" || stmt.Name.Method == nil || stmt.Name.Method.Name != "method" {
		t.Fatalf("Name = %#v", stmt.Name)
	}
	if len(stmt.Body.Parameters) != 1 || stmt.Body.Parameters[0].Name.Name != "x" {
		t.Fatalf("Parameters = %#v, want only x (self stays implicit)", stmt.Body.Parameters)
	}
}

func TestParseGenericFor(t *testing.T) {
	block, err := Parse("test.lua", `
for k, v in pairs(t) do
	print(k, v)
end
`)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	stmt, ok := block.Statements[0].(*luaast.GenericForStatement)
	if !ok {
		t.Fatalf("statement is %T, want *GenericForStatement", block.Statements[0])
	}
	if len(stmt.Names) != 2 || stmt.Names[0].Name != "k" || stmt.Names[1].Name != "v" {
		t.Errorf("Names = %#v", stmt.Names)
	}
}

func TestParseNumericFor(t *testing.T) {
	block, err := Parse("test.lua", `for i = 1, 10, 2 do end`)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	stmt, ok := block.Statements[0].(*luaast.NumericForStatement)
	if !ok {
		t.Fatalf("statement is %T, want *NumericForStatement", block.Statements[0])
	}
	if stmt.Step == nil {
		t.Error("Step is nil, want an expression")
	}
}

func TestParseInterpolatedString(t *testing.T) {
	block, err := Parse("test.lua", "local s = `hello {name}, you are {age + 1} years old`")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	stmt := block.Statements[0].(*luaast.LocalAssignStatement)
	interp, ok := stmt.Values[0].(*luaast.InterpolatedStringExpression)
	if !ok {
		t.Fatalf("Values[0] is %T, want *InterpolatedStringExpression", stmt.Values[0])
	}
	if len(interp.Segments) != 5 {
		t.Fatalf("got %d segments, want 5: %#v", len(interp.Segments), interp.Segments)
	}
	if interp.Segments[0].Literal != "hello " {
		t.Errorf("Segments[0] = %#v", interp.Segments[0])
	}
	id, ok := interp.Segments[1].Expression.(*luaast.Identifier)
	if !ok || id.Name != "name" {
		t.Errorf("Segments[1].Expression = %#v", interp.Segments[1].Expression)
	}
	bin, ok := interp.Segments[3].Expression.(*luaast.BinaryExpression)
	if !ok || bin.Operator != luaast.OpAdd {
		t.Errorf("Segments[3].Expression = %#v", interp.Segments[3].Expression)
	}
}

func TestParseCompoundAssign(t *testing.T) {
	block, err := Parse("test.lua", `x += 1`)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	stmt, ok := block.Statements[0].(*luaast.CompoundAssignStatement)
	if !ok {
		t.Fatalf("statement is %T, want *CompoundAssignStatement", block.Statements[0])
	}
	if stmt.Operator != luaast.CompoundAdd {
		t.Errorf("Operator = %v", stmt.Operator)
	}
}

func TestParseTypeDeclaration(t *testing.T) {
	block, err := Parse("test.lua", `export type Point = { x: number, y: number }`)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	stmt, ok := block.Statements[0].(*luaast.TypeDeclarationStatement)
	if !ok {
		t.Fatalf("statement is %T, want *TypeDeclarationStatement", block.Statements[0])
	}
	if !stmt.Exported || stmt.Name.Name != "Point" {
		t.Errorf("stmt = %#v", stmt)
	}
	tableType, ok := stmt.Definition.(*luaast.TableType)
	if !ok || len(tableType.Properties) != 2 {
		t.Errorf("Definition = %#v", stmt.Definition)
	}
}

func TestParseErrorReportsPosition(t *testing.T) {
	_, err := Parse("broken.lua", "local x = =")
	if err == nil {
		t.Fatal("Parse succeeded, want an error")
	}
	perr, ok := err.(*ParserError)
	if !ok {
		t.Fatalf("err is %T, want *ParserError", err)
	}
	if perr.File != "broken.lua" {
		t.Errorf("File = %q", perr.File)
	}
	if perr.Position.Line != 1 {
		t.Errorf("Position.Line = %d, want 1", perr.Position.Line)
	}
}

func TestParsePreserveTokensRetainsTrivia(t *testing.T) {
	block, err := Parse("test.lua", "local x = 1 -- comment\n", PreserveTokens(true))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	stmt := block.Statements[0].(*luaast.LocalAssignStatement)
	num := stmt.Values[0].(*luaast.NumberExpression)
	if len(num.Token.TrailingTrivia) == 0 {
		t.Error("TrailingTrivia is empty, want the trailing comment to be retained")
	}
}

func TestParseWithoutPreserveTokensDropsTrivia(t *testing.T) {
	block, err := Parse("test.lua", "local x = 1 -- comment\n")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	stmt := block.Statements[0].(*luaast.LocalAssignStatement)
	num := stmt.Values[0].(*luaast.NumberExpression)
	if len(num.Token.TrailingTrivia) != 0 {
		t.Error("TrailingTrivia is non-empty, want trivia discarded by default")
	}
}

func TestParseLongBracketString(t *testing.T) {
	block, err := Parse("test.lua", "local s = [==[\nhello]==]")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	stmt := block.Statements[0].(*luaast.LocalAssignStatement)
	str := stmt.Values[0].(*luaast.StringExpression)
	if str.Value != "hello" {
		t.Errorf("Value = %q, want %q", str.Value, "hello")
	}
	if str.Delimiter != luaast.LongBracketDelimiter || str.LongBracketEq != 2 {
		t.Errorf("Delimiter = %v, LongBracketEq = %d", str.Delimiter, str.LongBracketEq)
	}
}
