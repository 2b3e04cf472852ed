// Copyright 2024 The zb Authors
// SPDX-License-Identifier: MIT

// Package luavisit provides the default recursive visitor every rule
// composes with a [NodeProcessor], a scope-tracking extension for rules
// that need identifier resolution, and a path-addressed mutation engine
// for rules that want to queue statement-level edits instead of mutating
// the tree while they walk it.
package luavisit

import "lucerna.dev/lucerna/internal/luaast"

// NodeProcessor receives a hook call for each category of node the
// default visitor descends into. Embedding [BaseProcessor] gives every
// implementation a no-op default for hooks it does not care about,
// matching the common Go idiom for optional-method interfaces (the same
// shape as http.Handler middleware or ast.Visitor).
type NodeProcessor interface {
	ProcessBlock(*luaast.Block)
	ProcessStatement(*luaast.Statement)
	ProcessLastStatement(*luaast.LastStatement)
	ProcessExpression(*luaast.Expression)
	ProcessVariable(*luaast.Variable)
	ProcessVariableExpression(*luaast.VariableExpression)
	ProcessType(*luaast.Type)
	ProcessFunctionBody(*luaast.FunctionBody)
}

// BaseProcessor implements [NodeProcessor] with no-op hooks. Rules embed
// it and override only the hooks they need.
type BaseProcessor struct{}

func (BaseProcessor) ProcessBlock(*luaast.Block)                           {}
func (BaseProcessor) ProcessStatement(*luaast.Statement)                   {}
func (BaseProcessor) ProcessLastStatement(*luaast.LastStatement)           {}
func (BaseProcessor) ProcessExpression(*luaast.Expression)                 {}
func (BaseProcessor) ProcessVariable(*luaast.Variable)                     {}
func (BaseProcessor) ProcessVariableExpression(*luaast.VariableExpression) {}
func (BaseProcessor) ProcessType(*luaast.Type)                             {}
func (BaseProcessor) ProcessFunctionBody(*luaast.FunctionBody)             {}

// Visitor walks a Block in source order, calling proc's hooks before
// descending into each node's children ("process on enter", matching the
// teacher's own single-pass compiler traversal style rather than a
// separate enter/leave pair).
type Visitor struct {
	Processor NodeProcessor
}

// New returns a Visitor that drives proc.
func New(proc NodeProcessor) *Visitor {
	return &Visitor{Processor: proc}
}

// VisitBlock walks block and every statement, expression, and nested
// block it contains.
func (v *Visitor) VisitBlock(block *luaast.Block) {
	if block == nil {
		return
	}
	v.Processor.ProcessBlock(block)
	for i := range block.Statements {
		v.visitStatement(&block.Statements[i])
	}
	if block.Last != nil {
		v.Processor.ProcessLastStatement(&block.Last)
		v.visitLastStatementChildren(block.Last)
	}
}

func (v *Visitor) visitLastStatementChildren(last luaast.LastStatement) {
	if ret, ok := last.(*luaast.ReturnStatement); ok {
		for i := range ret.Expressions {
			v.visitExpression(&ret.Expressions[i])
		}
	}
}

func (v *Visitor) visitStatement(stmt *luaast.Statement) {
	v.Processor.ProcessStatement(stmt)
	switch s := (*stmt).(type) {
	case *luaast.AssignStatement:
		for i := range s.Targets {
			v.visitVariable(&s.Targets[i])
		}
		for i := range s.Values {
			v.visitExpression(&s.Values[i])
		}
	case *luaast.CompoundAssignStatement:
		v.visitVariable(&s.Target)
		v.visitExpression(&s.Value)
	case *luaast.LocalAssignStatement:
		for i := range s.Names {
			if s.Names[i].Type != nil {
				v.visitType(&s.Names[i].Type)
			}
		}
		for i := range s.Values {
			v.visitExpression(&s.Values[i])
		}
	case *luaast.LocalFunctionStatement:
		v.visitFunctionBody(s.Body)
	case *luaast.FunctionStatement:
		v.visitFunctionBody(s.Body)
	case *luaast.IfStatement:
		for i := range s.Clauses {
			v.visitExpression(&s.Clauses[i].Condition)
			v.VisitBlock(s.Clauses[i].Block)
		}
		if s.Else != nil {
			v.VisitBlock(s.Else)
		}
	case *luaast.WhileStatement:
		v.visitExpression(&s.Condition)
		v.VisitBlock(s.Block)
	case *luaast.RepeatStatement:
		v.VisitBlock(s.Block)
		v.visitExpression(&s.Condition)
	case *luaast.NumericForStatement:
		v.visitExpression(&s.Start)
		v.visitExpression(&s.Stop)
		if s.Step != nil {
			v.visitExpression(&s.Step)
		}
		v.VisitBlock(s.Block)
	case *luaast.GenericForStatement:
		for i := range s.Expressions {
			v.visitExpression(&s.Expressions[i])
		}
		v.VisitBlock(s.Block)
	case *luaast.DoStatement:
		v.VisitBlock(s.Block)
	case *luaast.CallStatement:
		var e luaast.Expression = s.Call
		v.visitExpression(&e)
		s.Call = e.(*luaast.CallExpression)
	case *luaast.TypeDeclarationStatement:
		v.visitType(&s.Definition)
	}
}

func (v *Visitor) visitVariable(variable *luaast.Variable) {
	v.Processor.ProcessVariable(variable)
	switch x := (*variable).(type) {
	case *luaast.FieldVariable:
		var e luaast.Expression = x.Object
		v.visitExpression(&e)
		x.Object = e.(luaast.PrefixExpression)
	case *luaast.IndexVariable:
		var e luaast.Expression = x.Object
		v.visitExpression(&e)
		x.Object = e.(luaast.PrefixExpression)
		v.visitExpression(&x.Key)
	}
}

func (v *Visitor) visitExpression(expr *luaast.Expression) {
	v.Processor.ProcessExpression(expr)
	switch x := (*expr).(type) {
	case *luaast.ParenthesizedExpression:
		v.visitExpression(&x.Inner)
	case *luaast.BinaryExpression:
		v.visitExpression(&x.Left)
		v.visitExpression(&x.Right)
	case *luaast.UnaryExpression:
		v.visitExpression(&x.Operand)
	case *luaast.IfExpression:
		v.visitExpression(&x.Condition)
		v.visitExpression(&x.Then)
		for i := range x.ElseIfs {
			v.visitExpression(&x.ElseIfs[i].Condition)
			v.visitExpression(&x.ElseIfs[i].Result)
		}
		v.visitExpression(&x.Else)
	case *luaast.FunctionExpression:
		v.visitFunctionBody(x.Body)
	case *luaast.CallExpression:
		var callee luaast.Expression = x.Callee
		v.visitExpression(&callee)
		x.Callee = callee.(luaast.PrefixExpression)
		v.visitArgument(x.Arguments)
	case *luaast.VariableExpression:
		v.Processor.ProcessVariableExpression(x)
		v.visitVariable(&x.Variable)
	case *luaast.TableExpression:
		for i := range x.Entries {
			if x.Entries[i].Key != nil {
				v.visitExpression(&x.Entries[i].Key)
			}
			v.visitExpression(&x.Entries[i].Value)
		}
	case *luaast.InterpolatedStringExpression:
		for i := range x.Segments {
			if x.Segments[i].Expression != nil {
				v.visitExpression(&x.Segments[i].Expression)
			}
		}
	case *luaast.Identifier:
		var variable luaast.Variable = x
		v.visitVariable(&variable)
	case *luaast.FieldVariable:
		var variable luaast.Variable = x
		v.visitVariable(&variable)
	case *luaast.IndexVariable:
		var variable luaast.Variable = x
		v.visitVariable(&variable)
	}
}

func (v *Visitor) visitArgument(arg luaast.Argument) {
	switch a := arg.(type) {
	case *luaast.ExpressionListArgument:
		for i := range a.Items {
			v.visitExpression(&a.Items[i])
		}
	case *luaast.TableArgument:
		var e luaast.Expression = a.Table
		v.visitExpression(&e)
		a.Table = e.(*luaast.TableExpression)
	}
}

func (v *Visitor) visitType(t *luaast.Type) {
	v.Processor.ProcessType(t)
	switch x := (*t).(type) {
	case *luaast.ArrayType:
		v.visitType(&x.Element)
	case *luaast.OptionalType:
		v.visitType(&x.Inner)
	case *luaast.UnionType:
		for i := range x.Members {
			v.visitType(&x.Members[i])
		}
	case *luaast.IntersectionType:
		for i := range x.Members {
			v.visitType(&x.Members[i])
		}
	case *luaast.ParenthesizedType:
		v.visitType(&x.Inner)
	case *luaast.TypeofType:
		v.visitExpression(&x.Expression)
	case *luaast.FunctionType:
		for i := range x.Parameters {
			v.visitType(&x.Parameters[i])
		}
		if x.VariadicParameter != nil {
			v.visitType(&x.VariadicParameter)
		}
		v.visitType(&x.ReturnType)
	case *luaast.TableType:
		for i := range x.Properties {
			v.visitType(&x.Properties[i].Type)
		}
		for i := range x.LiteralProperties {
			v.visitType(&x.LiteralProperties[i])
		}
		if x.Indexer != nil {
			v.visitType(&x.Indexer.KeyType)
			v.visitType(&x.Indexer.ValueType)
		}
	}
}

func (v *Visitor) visitFunctionBody(body *luaast.FunctionBody) {
	v.Processor.ProcessFunctionBody(body)
	for i := range body.Parameters {
		if body.Parameters[i].Type != nil {
			v.visitType(&body.Parameters[i].Type)
		}
	}
	if body.VariadicType != nil {
		v.visitType(&body.VariadicType)
	}
	if body.ReturnType != nil {
		v.visitType(&body.ReturnType)
	}
	v.VisitBlock(body.Block)
}
