// Copyright 2024 The zb Authors
// SPDX-License-Identifier: MIT

package luarules

import (
	"encoding/json"
	"fmt"
	"os"

	"lucerna.dev/lucerna/internal/luaast"
)

func init() {
	Register("inject_global_value", func(options json.RawMessage) (Rule, error) {
		r := &InjectGlobalValue{}
		if err := decodeOptions(options, r); err != nil {
			return nil, err
		}
		if r.Identifier == "" {
			return nil, fmt.Errorf("inject_global_value: identifier is required")
		}
		return r, nil
	})
}

// InjectGlobalValue replaces reads of a named global (as a bare
// identifier, `_G.NAME`, or `_G['NAME']`) with a literal, either a fixed
// configured value or the value of an environment variable read at
// processing time, falling back to a default if unset. It never rewrites
// a reference inside a scope where a local shadows the target name, or
// where `_G` itself is shadowed.
type InjectGlobalValue struct {
	Identifier string `json:"identifier"`
	// Exactly one of Value or EnvVariable should be set.
	Value       json.RawMessage `json:"value,omitempty"`
	EnvVariable string          `json:"env,omitempty"`
	Default     json.RawMessage `json:"default,omitempty"`
}

func (*InjectGlobalValue) Name() string { return "inject_global_value" }

func (r *InjectGlobalValue) Process(block *luaast.Block, ctx *Context) []string {
	literal, err := r.resolve()
	if err != nil {
		return []string{err.Error()}
	}
	if literal == nil {
		return nil
	}
	proc := &injectGlobalProcessor{name: r.Identifier, literal: literal}
	proc.pushFrame()
	proc.visitBlock(block)
	proc.popFrame()
	return nil
}

// resolve computes the literal to inject, or nil if the environment
// variable is unset and no default was configured (in which case the
// global is left alone entirely).
func (r *InjectGlobalValue) resolve() (luaast.Expression, error) {
	raw := r.Value
	if r.EnvVariable != "" {
		if v, ok := os.LookupEnv(r.EnvVariable); ok {
			return luaast.NewString(v), nil
		}
		raw = r.Default
	}
	if len(raw) == 0 {
		return nil, nil
	}
	return jsonValueToLiteral(raw)
}

func jsonValueToLiteral(raw json.RawMessage) (luaast.Expression, error) {
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, fmt.Errorf("inject_global_value: decode value: %w", err)
	}
	switch x := v.(type) {
	case nil:
		return luaast.NewNil(), nil
	case bool:
		return luaast.NewBool(x), nil
	case float64:
		return luaast.NewFloat(x), nil
	case string:
		return luaast.NewString(x), nil
	default:
		return nil, fmt.Errorf("inject_global_value: unsupported value type %T", v)
	}
}

// injectGlobalProcessor walks the tree with a self-contained traversal
// (like renamer) so it can track, at each point, whether name or `_G` is
// currently shadowed by a local.
type injectGlobalProcessor struct {
	name    string
	literal luaast.Expression
	frames  []map[string]bool
}

func (p *injectGlobalProcessor) pushFrame() { p.frames = append(p.frames, make(map[string]bool)) }
func (p *injectGlobalProcessor) popFrame()  { p.frames = p.frames[:len(p.frames)-1] }
func (p *injectGlobalProcessor) bind(name string) {
	p.frames[len(p.frames)-1][name] = true
}
func (p *injectGlobalProcessor) shadowed(name string) bool {
	for i := len(p.frames) - 1; i >= 0; i-- {
		if p.frames[i][name] {
			return true
		}
	}
	return false
}
func (p *injectGlobalProcessor) nested(fn func()) {
	p.pushFrame()
	fn()
	p.popFrame()
}

func (p *injectGlobalProcessor) visitBlock(block *luaast.Block) {
	if block == nil {
		return
	}
	for i := range block.Statements {
		p.visitStatement(&block.Statements[i])
	}
	if ret, ok := block.Last.(*luaast.ReturnStatement); ok {
		for i := range ret.Expressions {
			p.visitExpression(&ret.Expressions[i])
		}
	}
}

func (p *injectGlobalProcessor) visitStatement(stmt *luaast.Statement) {
	switch s := (*stmt).(type) {
	case *luaast.AssignStatement:
		for i := range s.Targets {
			p.visitVariableRead(&s.Targets[i])
		}
		for i := range s.Values {
			p.visitExpression(&s.Values[i])
		}
	case *luaast.CompoundAssignStatement:
		p.visitVariableRead(&s.Target)
		p.visitExpression(&s.Value)
	case *luaast.LocalAssignStatement:
		for i := range s.Values {
			p.visitExpression(&s.Values[i])
		}
		for _, n := range s.Names {
			p.bind(n.Name.Name)
		}
	case *luaast.LocalFunctionStatement:
		p.bind(s.Name.Name)
		p.visitFunctionBody(s.Body)
	case *luaast.FunctionStatement:
		p.visitFunctionBody(s.Body)
	case *luaast.IfStatement:
		for i := range s.Clauses {
			p.visitExpression(&s.Clauses[i].Condition)
			p.nested(func() { p.visitBlock(s.Clauses[i].Block) })
		}
		if s.Else != nil {
			p.nested(func() { p.visitBlock(s.Else) })
		}
	case *luaast.WhileStatement:
		p.visitExpression(&s.Condition)
		p.nested(func() { p.visitBlock(s.Block) })
	case *luaast.RepeatStatement:
		p.nested(func() {
			p.visitBlock(s.Block)
			p.visitExpression(&s.Condition)
		})
	case *luaast.NumericForStatement:
		p.visitExpression(&s.Start)
		p.visitExpression(&s.Stop)
		if s.Step != nil {
			p.visitExpression(&s.Step)
		}
		p.nested(func() {
			p.bind(s.Variable.Name)
			p.visitBlock(s.Block)
		})
	case *luaast.GenericForStatement:
		for i := range s.Expressions {
			p.visitExpression(&s.Expressions[i])
		}
		p.nested(func() {
			for _, n := range s.Names {
				p.bind(n.Name)
			}
			p.visitBlock(s.Block)
		})
	case *luaast.DoStatement:
		p.nested(func() { p.visitBlock(s.Block) })
	case *luaast.CallStatement:
		var e luaast.Expression = s.Call
		p.visitExpression(&e)
		s.Call = e.(*luaast.CallExpression)
	}
}

func (p *injectGlobalProcessor) visitFunctionBody(body *luaast.FunctionBody) {
	p.nested(func() {
		for _, param := range body.Parameters {
			p.bind(param.Name.Name)
		}
		p.visitBlock(body.Block)
	})
}

// visitVariableRead visits an assignment target, which may itself
// reference the global through an object/key sub-expression (e.g.
// `_G[NAME] = ...` as a target, though that is not itself injectable).
func (p *injectGlobalProcessor) visitVariableRead(variable *luaast.Variable) {
	switch x := (*variable).(type) {
	case *luaast.FieldVariable:
		var e luaast.Expression = x.Object
		p.visitExpression(&e)
		x.Object = e.(luaast.PrefixExpression)
	case *luaast.IndexVariable:
		var e luaast.Expression = x.Object
		p.visitExpression(&e)
		x.Object = e.(luaast.PrefixExpression)
		p.visitExpression(&x.Key)
	}
}

func (p *injectGlobalProcessor) visitExpression(expr *luaast.Expression) {
	if p.tryInject(expr) {
		return
	}
	switch x := (*expr).(type) {
	case *luaast.ParenthesizedExpression:
		p.visitExpression(&x.Inner)
	case *luaast.BinaryExpression:
		p.visitExpression(&x.Left)
		p.visitExpression(&x.Right)
	case *luaast.UnaryExpression:
		p.visitExpression(&x.Operand)
	case *luaast.IfExpression:
		p.visitExpression(&x.Condition)
		p.visitExpression(&x.Then)
		for i := range x.ElseIfs {
			p.visitExpression(&x.ElseIfs[i].Condition)
			p.visitExpression(&x.ElseIfs[i].Result)
		}
		p.visitExpression(&x.Else)
	case *luaast.FunctionExpression:
		p.visitFunctionBody(x.Body)
	case *luaast.CallExpression:
		var callee luaast.Expression = x.Callee
		p.visitExpression(&callee)
		x.Callee = callee.(luaast.PrefixExpression)
		p.visitArgument(x.Arguments)
	case *luaast.VariableExpression:
		p.visitVariableRead(&x.Variable)
	case *luaast.TableExpression:
		for i := range x.Entries {
			if x.Entries[i].Key != nil {
				p.visitExpression(&x.Entries[i].Key)
			}
			p.visitExpression(&x.Entries[i].Value)
		}
	case *luaast.InterpolatedStringExpression:
		for i := range x.Segments {
			if x.Segments[i].Expression != nil {
				p.visitExpression(&x.Segments[i].Expression)
			}
		}
	case *luaast.FieldVariable, *luaast.IndexVariable, *luaast.Identifier:
		var variable luaast.Variable = x.(luaast.Variable)
		p.visitVariableRead(&variable)
	}
}

// tryInject replaces *expr with the configured literal when it reads the
// target global, either as a bare identifier or through `_G`, and neither
// the target name nor `_G` is currently shadowed by a local.
func (p *injectGlobalProcessor) tryInject(expr *luaast.Expression) bool {
	switch x := (*expr).(type) {
	case *luaast.Identifier:
		if x.Name == p.name && !p.shadowed(p.name) {
			*expr = p.literal
			return true
		}
	case *luaast.FieldVariable:
		if base, ok := x.Object.(*luaast.Identifier); ok && base.Name == "_G" &&
			x.Field.Name == p.name && !p.shadowed("_G") {
			*expr = p.literal
			return true
		}
	case *luaast.IndexVariable:
		if base, ok := x.Object.(*luaast.Identifier); ok && base.Name == "_G" && !p.shadowed("_G") {
			if keyStr, ok := x.Key.(*luaast.StringExpression); ok && keyStr.Value == p.name {
				*expr = p.literal
				return true
			}
		}
	}
	return false
}
