// Copyright 2024 The zb Authors
// SPDX-License-Identifier: MIT

package luarules

import (
	"testing"

	"lucerna.dev/lucerna/internal/luaast"
	"lucerna.dev/lucerna/internal/luaparse"
)

// mustParse parses source and fails the test on error.
func mustParse(t *testing.T, source string) *luaast.Block {
	t.Helper()
	block, err := luaparse.Parse("test.lua", source)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	return block
}

func runRule(t *testing.T, rule Rule, block *luaast.Block, source string) {
	t.Helper()
	ctx := &Context{Path: "test.lua", Source: source}
	if errs := rule.Process(block, ctx); len(errs) > 0 {
		t.Fatalf("Process errors: %v", errs)
	}
}

// Spec §8 scenario 1.
func TestComputeExpressionFoldsArithmetic(t *testing.T) {
	block := mustParse(t, "return 1 + 2 + 5")
	runRule(t, &ComputeExpression{}, block, "return 1 + 2 + 5")

	ret, ok := block.Last.(*luaast.ReturnStatement)
	if !ok || len(ret.Expressions) != 1 {
		t.Fatalf("Last = %#v, want single-expression ReturnStatement", block.Last)
	}
	num, ok := ret.Expressions[0].(*luaast.NumberExpression)
	if !ok || !num.IsInteger || num.IntegerValue != 8 {
		t.Errorf("Expressions[0] = %#v, want integer 8", ret.Expressions[0])
	}
}

// Spec §8 scenario 2.
func TestConvertIndexToField(t *testing.T) {
	block := mustParse(t, `return var["field"]`)
	runRule(t, &ConvertIndexToField{}, block, `return var["field"]`)

	ret := block.Last.(*luaast.ReturnStatement)
	field, ok := ret.Expressions[0].(*luaast.FieldVariable)
	if !ok {
		t.Fatalf("Expressions[0] = %#v, want *FieldVariable", ret.Expressions[0])
	}
	obj, ok := field.Object.(*luaast.Identifier)
	if !ok || obj.Name != "var" {
		t.Errorf("field.Object = %#v, want Identifier(var)", field.Object)
	}
	if field.Field == nil || field.Field.Name != "field" {
		t.Errorf("field.Field = %#v, want Identifier(field)", field.Field)
	}

	block2 := mustParse(t, `return var[" bar"]`)
	runRule(t, &ConvertIndexToField{}, block2, `return var[" bar"]`)
	ret2 := block2.Last.(*luaast.ReturnStatement)
	index, ok := ret2.Expressions[0].(*luaast.IndexVariable)
	if !ok {
		t.Fatalf("Expressions[0] = %#v, want unchanged *IndexVariable", ret2.Expressions[0])
	}
	key, ok := index.Key.(*luaast.StringExpression)
	if !ok || key.Value != " bar" {
		t.Errorf("index.Key = %#v, want StringExpression(\" bar\")", index.Key)
	}
}

// Spec §8 scenario 3.
func TestRemoveCompoundAssignment(t *testing.T) {
	source := "a.counter += 1"
	block := mustParse(t, source)
	runRule(t, &RemoveCompoundAssignment{}, block, source)

	if len(block.Statements) != 1 {
		t.Fatalf("Statements = %#v, want 1 statement", block.Statements)
	}
	assign, ok := block.Statements[0].(*luaast.AssignStatement)
	if !ok || len(assign.Targets) != 1 || len(assign.Values) != 1 {
		t.Fatalf("Statements[0] = %#v, want single-target AssignStatement", block.Statements[0])
	}
	target, ok := assign.Targets[0].(*luaast.FieldVariable)
	if !ok || target.Field.Name != "counter" {
		t.Fatalf("Targets[0] = %#v, want FieldVariable(counter)", assign.Targets[0])
	}
	obj, ok := target.Object.(*luaast.Identifier)
	if !ok || obj.Name != "a" {
		t.Errorf("target.Object = %#v, want Identifier(a)", target.Object)
	}
	bin, ok := assign.Values[0].(*luaast.BinaryExpression)
	if !ok || bin.Operator != luaast.OpAdd {
		t.Fatalf("Values[0] = %#v, want BinaryExpression(+)", assign.Values[0])
	}
	left, ok := bin.Left.(*luaast.FieldVariable)
	if !ok || left.Field.Name != "counter" {
		t.Errorf("bin.Left = %#v, want FieldVariable(counter)", bin.Left)
	}
	right, ok := bin.Right.(*luaast.NumberExpression)
	if !ok || right.IntegerValue != 1 {
		t.Errorf("bin.Right = %#v, want integer 1", bin.Right)
	}
}

func TestRemoveCompoundAssignmentHoistsSideEffect(t *testing.T) {
	source := "getObject().counter += 1"
	block := mustParse(t, source)
	runRule(t, &RemoveCompoundAssignment{}, block, source)

	if len(block.Statements) != 1 {
		t.Fatalf("Statements = %#v, want 1 statement", block.Statements)
	}
	do, ok := block.Statements[0].(*luaast.DoStatement)
	if !ok {
		t.Fatalf("Statements[0] = %#v, want DoStatement", block.Statements[0])
	}
	if len(do.Block.Statements) != 2 {
		t.Fatalf("do.Block.Statements = %#v, want 2 statements", do.Block.Statements)
	}
	local, ok := do.Block.Statements[0].(*luaast.LocalAssignStatement)
	if !ok || len(local.Names) != 1 {
		t.Fatalf("do.Block.Statements[0] = %#v, want single-name LocalAssignStatement", do.Block.Statements[0])
	}
	call, ok := local.Values[0].(*luaast.CallExpression)
	if !ok {
		t.Fatalf("local.Values[0] = %#v, want CallExpression", local.Values[0])
	}
	callee, ok := call.Callee.(*luaast.Identifier)
	if !ok || callee.Name != "getObject" {
		t.Errorf("call.Callee = %#v, want Identifier(getObject)", call.Callee)
	}

	tempName := local.Names[0].Name.Name
	assign, ok := do.Block.Statements[1].(*luaast.AssignStatement)
	if !ok {
		t.Fatalf("do.Block.Statements[1] = %#v, want AssignStatement", do.Block.Statements[1])
	}
	target, ok := assign.Targets[0].(*luaast.FieldVariable)
	if !ok {
		t.Fatalf("Targets[0] = %#v, want FieldVariable", assign.Targets[0])
	}
	obj, ok := target.Object.(*luaast.Identifier)
	if !ok || obj.Name != tempName {
		t.Errorf("target.Object = %#v, want Identifier(%s)", target.Object, tempName)
	}
}

// Spec §8 scenario 4.
func TestRenameVariablesLocalAndReturn(t *testing.T) {
	source := "local foo return foo"
	block := mustParse(t, source)
	runRule(t, &RenameVariables{}, block, source)

	local, ok := block.Statements[0].(*luaast.LocalAssignStatement)
	if !ok || local.Names[0].Name.Name != "a" {
		t.Fatalf("Statements[0] = %#v, want local a", block.Statements[0])
	}
	ret, ok := block.Last.(*luaast.ReturnStatement)
	if !ok {
		t.Fatalf("Last = %#v, want ReturnStatement", block.Last)
	}
	id, ok := ret.Expressions[0].(*luaast.Identifier)
	if !ok || id.Name != "a" {
		t.Errorf("Expressions[0] = %#v, want Identifier(a)", ret.Expressions[0])
	}
}

func TestRenameVariablesFunctionDeclaration(t *testing.T) {
	source := "local foo function foo() end"
	block := mustParse(t, source)
	runRule(t, &RenameVariables{}, block, source)

	local := block.Statements[0].(*luaast.LocalAssignStatement)
	if local.Names[0].Name.Name != "a" {
		t.Errorf("local name = %q, want a", local.Names[0].Name.Name)
	}
	fn, ok := block.Statements[1].(*luaast.FunctionStatement)
	if !ok || fn.Name.Base.Name != "a" {
		t.Fatalf("Statements[1] = %#v, want function a", block.Statements[1])
	}
}

// Spec §8 scenario 5.
func TestInjectGlobalValue(t *testing.T) {
	rule := &InjectGlobalValue{Identifier: "VALUE", Value: []byte("true")}

	source := "return _G.VALUE"
	block := mustParse(t, source)
	runRule(t, rule, block, source)
	ret := block.Last.(*luaast.ReturnStatement)
	if _, ok := ret.Expressions[0].(*luaast.TrueExpression); !ok {
		t.Errorf("Expressions[0] = %#v, want TrueExpression", ret.Expressions[0])
	}

	source2 := "local _G return _G.VALUE"
	block2 := mustParse(t, source2)
	runRule(t, rule, block2, source2)
	ret2 := block2.Last.(*luaast.ReturnStatement)
	field, ok := ret2.Expressions[0].(*luaast.FieldVariable)
	if !ok || field.Field.Name != "VALUE" {
		t.Errorf("Expressions[0] = %#v, want untouched _G.VALUE field access", ret2.Expressions[0])
	}
}

func TestRemoveAttribute(t *testing.T) {
	source := "local x <const> = 1"
	block := mustParse(t, source)
	runRule(t, &RemoveAttribute{}, block, source)

	local := block.Statements[0].(*luaast.LocalAssignStatement)
	if local.Names[0].Attribute != luaast.NoAttribute {
		t.Errorf("Attribute = %v, want NoAttribute", local.Names[0].Attribute)
	}
}

func TestRemoveAttributeOnlyOneKind(t *testing.T) {
	source := "local x <const> = 1"
	block := mustParse(t, source)
	runRule(t, &RemoveAttribute{Attribute: "close"}, block, source)

	local := block.Statements[0].(*luaast.LocalAssignStatement)
	if local.Names[0].Attribute != luaast.ConstAttribute {
		t.Errorf("Attribute = %v, want unchanged ConstAttribute", local.Names[0].Attribute)
	}
}

func TestRemoveAssertions(t *testing.T) {
	source := "assert(true)"
	block := mustParse(t, source)
	runRule(t, &RemoveAssertions{}, block, source)

	if len(block.Statements) != 1 {
		t.Fatalf("Statements = %#v, want 1 statement", block.Statements)
	}
	do, ok := block.Statements[0].(*luaast.DoStatement)
	if !ok || len(do.Block.Statements) != 0 {
		t.Errorf("Statements[0] = %#v, want empty do-end", block.Statements[0])
	}
}

func TestRemoveAssertionsPreservesSideEffect(t *testing.T) {
	source := "assert(f())"
	block := mustParse(t, source)
	runRule(t, &RemoveAssertions{PreserveArgumentsSideEffects: true}, block, source)

	if len(block.Statements) != 1 {
		t.Fatalf("Statements = %#v, want 1 statement", block.Statements)
	}
	call, ok := block.Statements[0].(*luaast.CallStatement)
	if !ok {
		t.Fatalf("Statements[0] = %#v, want CallStatement", block.Statements[0])
	}
	callee, ok := call.Call.Callee.(*luaast.Identifier)
	if !ok || callee.Name != "f" {
		t.Errorf("call.Callee = %#v, want Identifier(f)", call.Call.Callee)
	}
}

func TestRemoveAssertionsSkipsShadowedAssert(t *testing.T) {
	source := "local assert = print assert(true)"
	block := mustParse(t, source)
	runRule(t, &RemoveAssertions{}, block, source)

	if len(block.Statements) != 2 {
		t.Fatalf("Statements = %#v, want unchanged 2 statements", block.Statements)
	}
	if _, ok := block.Statements[1].(*luaast.CallStatement); !ok {
		t.Errorf("Statements[1] = %#v, want untouched CallStatement", block.Statements[1])
	}
}

func TestRemoveGeneralizedIteration(t *testing.T) {
	source := "for k, v in t do end"
	block := mustParse(t, source)
	runRule(t, &RemoveGeneralizedIteration{}, block, source)

	loop := block.Statements[0].(*luaast.GenericForStatement)
	if len(loop.Expressions) != 1 {
		t.Fatalf("Expressions = %#v, want 1 expression", loop.Expressions)
	}
	call, ok := loop.Expressions[0].(*luaast.CallExpression)
	if !ok {
		t.Fatalf("Expressions[0] = %#v, want CallExpression", loop.Expressions[0])
	}
	callee, ok := call.Callee.(*luaast.Identifier)
	if !ok || callee.Name != "pairs" {
		t.Errorf("call.Callee = %#v, want Identifier(pairs)", call.Callee)
	}
	args, ok := call.Arguments.(*luaast.ExpressionListArgument)
	if !ok || len(args.Items) != 1 {
		t.Fatalf("call.Arguments = %#v, want single-item list", call.Arguments)
	}
	arg, ok := args.Items[0].(*luaast.Identifier)
	if !ok || arg.Name != "t" {
		t.Errorf("args.Items[0] = %#v, want Identifier(t)", args.Items[0])
	}
}

func TestRemoveGeneralizedIterationLeavesExplicitCall(t *testing.T) {
	source := "for k, v in pairs(t) do end"
	block := mustParse(t, source)
	runRule(t, &RemoveGeneralizedIteration{}, block, source)

	loop := block.Statements[0].(*luaast.GenericForStatement)
	call, ok := loop.Expressions[0].(*luaast.CallExpression)
	if !ok {
		t.Fatalf("Expressions[0] = %#v, want unchanged CallExpression", loop.Expressions[0])
	}
	if callee, ok := call.Callee.(*luaast.Identifier); !ok || callee.Name != "pairs" {
		t.Errorf("call.Callee = %#v, want Identifier(pairs)", call.Callee)
	}
}

func TestRemoveInterpolatedString(t *testing.T) {
	source := "return `a{b}c`"
	block := mustParse(t, source)
	runRule(t, &RemoveInterpolatedString{}, block, source)

	ret := block.Last.(*luaast.ReturnStatement)
	outer, ok := ret.Expressions[0].(*luaast.BinaryExpression)
	if !ok || outer.Operator != luaast.OpConcat {
		t.Fatalf("Expressions[0] = %#v, want concat BinaryExpression", ret.Expressions[0])
	}
	inner, ok := outer.Left.(*luaast.BinaryExpression)
	if !ok || inner.Operator != luaast.OpConcat {
		t.Fatalf("outer.Left = %#v, want nested concat BinaryExpression", outer.Left)
	}
	firstLiteral, ok := inner.Left.(*luaast.StringExpression)
	if !ok || firstLiteral.Value != "a" {
		t.Errorf("inner.Left = %#v, want StringExpression(a)", inner.Left)
	}
	middleCall, ok := inner.Right.(*luaast.CallExpression)
	if !ok {
		t.Fatalf("inner.Right = %#v, want CallExpression", inner.Right)
	}
	if callee, ok := middleCall.Callee.(*luaast.Identifier); !ok || callee.Name != "tostring" {
		t.Errorf("middleCall.Callee = %#v, want Identifier(tostring)", middleCall.Callee)
	}
	lastLiteral, ok := outer.Right.(*luaast.StringExpression)
	if !ok || lastLiteral.Value != "c" {
		t.Errorf("outer.Right = %#v, want StringExpression(c)", outer.Right)
	}
}

func TestRemoveInterpolatedStringEmpty(t *testing.T) {
	source := "return ``"
	block := mustParse(t, source)
	runRule(t, &RemoveInterpolatedString{}, block, source)

	ret := block.Last.(*luaast.ReturnStatement)
	str, ok := ret.Expressions[0].(*luaast.StringExpression)
	if !ok || str.Value != "" {
		t.Errorf("Expressions[0] = %#v, want empty StringExpression", ret.Expressions[0])
	}
}

func TestRemoveTypes(t *testing.T) {
	source := `
type Foo = number
local x: number = 1
local function f(a: string, ...: number): boolean
	return true
end
`
	block := mustParse(t, source)
	runRule(t, &RemoveTypes{}, block, source)

	for _, stmt := range block.Statements {
		if _, ok := stmt.(*luaast.TypeDeclarationStatement); ok {
			t.Fatalf("type declaration survived: %#v", stmt)
		}
	}
	local, ok := block.Statements[0].(*luaast.LocalAssignStatement)
	if !ok || local.Names[0].Type != nil {
		t.Fatalf("Statements[0] = %#v, want stripped local type", block.Statements[0])
	}
	fn, ok := block.Statements[1].(*luaast.LocalFunctionStatement)
	if !ok {
		t.Fatalf("Statements[1] = %#v, want LocalFunctionStatement", block.Statements[1])
	}
	if fn.Body.ReturnType != nil || fn.Body.VariadicType != nil {
		t.Errorf("Body = %#v, want return/variadic types stripped", fn.Body)
	}
	for _, p := range fn.Body.Parameters {
		if p.Type != nil {
			t.Errorf("parameter %q retained type %#v", p.Name.Name, p.Type)
		}
	}
}

func TestConvertLuauNumberBinaryToDecimal(t *testing.T) {
	num := &luaast.NumberExpression{
		Representation: luaast.BinaryRepresentation,
		IsInteger:      true,
		IntegerValue:   10,
		Value:          10,
	}
	block := luaast.NewBlock()
	block.Last = luaast.NewReturn(num)

	rule := &ConvertLuauNumber{name: "convert_luau_numbers"}
	runRule(t, rule, block, "")

	if num.Representation != luaast.DecimalRepresentation {
		t.Errorf("Representation = %v, want DecimalRepresentation", num.Representation)
	}
	if !num.Token.HasContent || num.Token.Content != "10" {
		t.Errorf("Token = %#v, want HasContent with Content \"10\"", num.Token)
	}
}

func TestConvertLuauNumberLeavesDecimalAlone(t *testing.T) {
	source := "return 10"
	block := mustParse(t, source)
	rule := &ConvertLuauNumber{name: "convert_luau_numbers"}
	runRule(t, rule, block, source)

	ret := block.Last.(*luaast.ReturnStatement)
	num := ret.Expressions[0].(*luaast.NumberExpression)
	if num.Representation != luaast.DecimalRepresentation || num.IntegerValue != 10 {
		t.Errorf("num = %#v, want unchanged decimal 10", num)
	}
}
