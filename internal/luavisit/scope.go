// Copyright 2024 The zb Authors
// SPDX-License-Identifier: MIT

package luavisit

import "lucerna.dev/lucerna/internal/luaast"

// Scope is a chain of name bindings, one map per lexical scope, pushed on
// entry to a block or loop body and popped on exit. It is modeled after a
// scoped hash map: lookups walk outward from the innermost scope.
type Scope struct {
	frames []map[string]struct{}
}

// NewScope returns a Scope with one (global) frame already pushed.
func NewScope() *Scope {
	s := &Scope{}
	s.Push()
	return s
}

// Push opens a new nested scope.
func (s *Scope) Push() {
	s.frames = append(s.frames, make(map[string]struct{}))
}

// Pop closes the innermost scope.
func (s *Scope) Pop() {
	if len(s.frames) > 0 {
		s.frames = s.frames[:len(s.frames)-1]
	}
}

// InsertLocal binds name in the innermost scope.
func (s *Scope) InsertLocal(name string) {
	if len(s.frames) == 0 {
		s.Push()
	}
	s.frames[len(s.frames)-1][name] = struct{}{}
}

// Insert records an assignment target, at the innermost scope that
// already binds name, or the global frame if none does (matching Lua's
// implicit-global-on-first-assignment semantics).
func (s *Scope) Insert(name string) {
	for i := len(s.frames) - 1; i >= 0; i-- {
		if _, ok := s.frames[i][name]; ok {
			return
		}
	}
	if len(s.frames) == 0 {
		s.Push()
	}
	s.frames[0][name] = struct{}{}
}

// IsLocal reports whether name is bound by any enclosing non-global scope.
func (s *Scope) IsLocal(name string) bool {
	for i := len(s.frames) - 1; i >= 1; i-- {
		if _, ok := s.frames[i][name]; ok {
			return true
		}
	}
	return false
}

// ScopeProcessor extends [NodeProcessor] with scope transition hooks,
// fired by [ScopeVisitor] around every block and loop/function body.
type ScopeProcessor interface {
	NodeProcessor
	EnterScope(*Scope)
	ExitScope(*Scope)
}

// BaseScopeProcessor gives EnterScope/ExitScope no-op defaults, the same
// way [BaseProcessor] does for the plain hooks.
type BaseScopeProcessor struct {
	BaseProcessor
}

func (BaseScopeProcessor) EnterScope(*Scope) {}
func (BaseScopeProcessor) ExitScope(*Scope)  {}

// ScopeVisitor is the default visitor extended with a scope stack: it
// calls Push/Pop around every block that opens a new lexical scope,
// InsertLocal at every binding site (local declarations, function
// parameters, loop variables), and Insert at assignment targets. Unlike
// [Visitor], it walks the tree itself rather than delegating to one,
// since scope transitions must nest exactly with block entry/exit.
type ScopeVisitor struct {
	Processor ScopeProcessor
	Scope     *Scope
}

// NewScopeVisitor returns a ScopeVisitor with a fresh global scope.
func NewScopeVisitor(proc ScopeProcessor) *ScopeVisitor {
	return &ScopeVisitor{Processor: proc, Scope: NewScope()}
}

// VisitBlock walks block as the chunk's top level: no extra scope is
// pushed, since the root block shares the file's global frame.
func (v *ScopeVisitor) VisitBlock(block *luaast.Block) {
	v.visitBlockBody(block)
}

func (v *ScopeVisitor) visitBlockBody(block *luaast.Block) {
	if block == nil {
		return
	}
	v.Processor.ProcessBlock(block)
	for i := range block.Statements {
		v.visitStatement(&block.Statements[i])
	}
	if block.Last != nil {
		v.Processor.ProcessLastStatement(&block.Last)
		if ret, ok := block.Last.(*luaast.ReturnStatement); ok {
			for i := range ret.Expressions {
				v.visitExpression(&ret.Expressions[i])
			}
		}
	}
}

// nested pushes a new scope, runs fn, then pops it, firing Enter/ExitScope.
func (v *ScopeVisitor) nested(fn func()) {
	v.Scope.Push()
	v.Processor.EnterScope(v.Scope)
	fn()
	v.Processor.ExitScope(v.Scope)
	v.Scope.Pop()
}

func (v *ScopeVisitor) visitStatement(stmt *luaast.Statement) {
	v.Processor.ProcessStatement(stmt)
	switch s := (*stmt).(type) {
	case *luaast.AssignStatement:
		for i := range s.Targets {
			v.visitVariable(&s.Targets[i])
			if id, ok := s.Targets[i].(*luaast.Identifier); ok {
				v.Scope.Insert(id.Name)
			}
		}
		for i := range s.Values {
			v.visitExpression(&s.Values[i])
		}
	case *luaast.CompoundAssignStatement:
		v.visitVariable(&s.Target)
		v.visitExpression(&s.Value)
	case *luaast.LocalAssignStatement:
		for i := range s.Values {
			v.visitExpression(&s.Values[i])
		}
		for _, name := range s.Names {
			v.Scope.InsertLocal(name.Name.Name)
		}
	case *luaast.LocalFunctionStatement:
		v.Scope.InsertLocal(s.Name.Name)
		v.visitFunctionBody(s.Body)
	case *luaast.FunctionStatement:
		if s.Name.Method == nil && len(s.Name.Fields) == 0 {
			v.Scope.Insert(s.Name.Base.Name)
		}
		v.visitFunctionBody(s.Body)
	case *luaast.IfStatement:
		for i := range s.Clauses {
			v.visitExpression(&s.Clauses[i].Condition)
			v.nested(func() { v.visitBlockBody(s.Clauses[i].Block) })
		}
		if s.Else != nil {
			v.nested(func() { v.visitBlockBody(s.Else) })
		}
	case *luaast.WhileStatement:
		v.visitExpression(&s.Condition)
		v.nested(func() { v.visitBlockBody(s.Block) })
	case *luaast.RepeatStatement:
		v.nested(func() {
			v.visitBlockBody(s.Block)
			v.visitExpression(&s.Condition)
		})
	case *luaast.NumericForStatement:
		v.visitExpression(&s.Start)
		v.visitExpression(&s.Stop)
		if s.Step != nil {
			v.visitExpression(&s.Step)
		}
		v.nested(func() {
			v.Scope.InsertLocal(s.Variable.Name)
			v.visitBlockBody(s.Block)
		})
	case *luaast.GenericForStatement:
		for i := range s.Expressions {
			v.visitExpression(&s.Expressions[i])
		}
		v.nested(func() {
			for _, n := range s.Names {
				v.Scope.InsertLocal(n.Name)
			}
			v.visitBlockBody(s.Block)
		})
	case *luaast.DoStatement:
		v.nested(func() { v.visitBlockBody(s.Block) })
	case *luaast.CallStatement:
		var e luaast.Expression = s.Call
		v.visitExpression(&e)
		s.Call = e.(*luaast.CallExpression)
	case *luaast.TypeDeclarationStatement:
		v.visitType(&s.Definition)
	}
}

func (v *ScopeVisitor) visitFunctionBody(body *luaast.FunctionBody) {
	v.Processor.ProcessFunctionBody(body)
	v.nested(func() {
		for _, param := range body.Parameters {
			v.Scope.InsertLocal(param.Name.Name)
		}
		v.visitBlockBody(body.Block)
	})
}

func (v *ScopeVisitor) visitVariable(variable *luaast.Variable) {
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

func (v *ScopeVisitor) visitExpression(expr *luaast.Expression) {
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

func (v *ScopeVisitor) visitArgument(arg luaast.Argument) {
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

func (v *ScopeVisitor) visitType(t *luaast.Type) {
	v.Processor.ProcessType(t)
	if tf, ok := (*t).(*luaast.TypeofType); ok {
		v.visitExpression(&tf.Expression)
	}
}
