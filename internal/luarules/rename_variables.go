// Copyright 2024 The zb Authors
// SPDX-License-Identifier: MIT

package luarules

import (
	"encoding/json"

	"lucerna.dev/lucerna/internal/luaast"
)

func init() {
	Register("rename_variables", func(options json.RawMessage) (Rule, error) {
		r := &RenameVariables{}
		if err := decodeOptions(options, r); err != nil {
			return nil, err
		}
		return r, nil
	})
}

// RenameVariables renames every bound local (and, unless excluded,
// function) name to a short generated identifier, reusing generated
// names once their binding's scope has closed. Globals, table fields,
// and the implicit `self` of a method definition are never touched.
type RenameVariables struct {
	// Globals lists global names the permutator must never generate, in
	// addition to Lua/Luau keywords. The presets "$default" (the
	// standard library globals) and "$roblox" (default plus the Roblox
	// engine globals) may appear alongside explicit names.
	Globals []string `json:"globals,omitempty"`
	// ExcludeFunctionNames, when true, leaves the names bound by
	// `function name(...)` and `local function name(...)` untouched.
	ExcludeFunctionNames bool `json:"exclude_function_names,omitempty"`
}

func (*RenameVariables) Name() string { return "rename_variables" }

func (r *RenameVariables) Process(block *luaast.Block, ctx *Context) []string {
	excluded := map[string]bool{"self": true}
	for kw := range reservedWords {
		excluded[kw] = true
	}
	for _, name := range expandGlobalsPresets(r.Globals) {
		excluded[name] = true
	}
	rn := &renamer{
		perm:                 &permutator{excluded: excluded},
		excludeFunctionNames: r.ExcludeFunctionNames,
	}
	rn.pushFrame()
	rn.visitBlock(block)
	rn.popFrame()
	return nil
}

var reservedWords = map[string]bool{
	"and": true, "break": true, "continue": true, "do": true, "else": true,
	"elseif": true, "end": true, "false": true, "for": true, "function": true,
	"if": true, "in": true, "local": true, "nil": true, "not": true, "or": true,
	"repeat": true, "return": true, "then": true, "true": true, "until": true,
	"while": true,
}

var defaultGlobalsPreset = []string{
	"_G", "_VERSION", "assert", "collectgarbage", "dofile", "error",
	"getmetatable", "ipairs", "load", "loadfile", "loadstring", "next",
	"pairs", "pcall", "print", "rawequal", "rawget", "rawlen", "rawset",
	"require", "select", "setmetatable", "tonumber", "tostring", "type",
	"unpack", "xpcall", "bit32", "coroutine", "debug", "io", "math", "os",
	"package", "string", "table", "utf8",
}

var robloxGlobalsPreset = []string{
	"game", "workspace", "script", "shared", "plugin", "settings", "wait",
	"spawn", "delay", "tick", "time", "typeof", "task", "Instance", "Enum",
	"Vector2", "Vector3", "CFrame", "Color3", "UDim", "UDim2", "Rect",
	"BrickColor", "NumberSequence", "ColorSequence", "NumberRange",
	"Region3", "TweenInfo", "PhysicalProperties", "Ray", "Axes", "Faces",
	"Random", "DockWidgetPluginGuiInfo",
}

func expandGlobalsPresets(names []string) []string {
	var out []string
	for _, name := range names {
		switch name {
		case "$default":
			out = append(out, defaultGlobalsPreset...)
		case "$roblox":
			out = append(out, defaultGlobalsPreset...)
			out = append(out, robloxGlobalsPreset...)
		default:
			out = append(out, name)
		}
	}
	return out
}

// permutator yields successive short identifiers matching
// [A-Za-z_][A-Za-z0-9_]*, skipping excluded names, and allows names to be
// returned to the pool once their binding leaves scope.
type permutator struct {
	excluded map[string]bool
	next     int
	free     []string
}

const identFirstChars = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ_"
const identRestChars = identFirstChars + "0123456789"

func (p *permutator) take() string {
	if n := len(p.free); n > 0 {
		name := p.free[n-1]
		p.free = p.free[:n-1]
		return name
	}
	for {
		name := nthIdentifier(p.next)
		p.next++
		if !p.excluded[name] {
			return name
		}
	}
}

func (p *permutator) release(name string) {
	p.free = append(p.free, name)
}

// nthIdentifier returns the n'th shortest identifier in the generation
// order: length 1 over identFirstChars, then length 2 with a first
// character from identFirstChars and remaining characters from
// identRestChars, and so on.
func nthIdentifier(n int) string {
	first := len(identFirstChars)
	rest := len(identRestChars)
	if n < first {
		return string(identFirstChars[n])
	}
	n -= first
	length := 2
	count := first * rest
	for n >= count {
		n -= count
		length++
		count *= rest
	}
	digits := make([]byte, length)
	for i := length - 1; i >= 1; i-- {
		digits[i] = identRestChars[n%rest]
		n /= rest
	}
	digits[0] = identFirstChars[n]
	return string(digits)
}

// renamer walks the tree performing the same traversal shape as
// [lucerna.dev/lucerna/internal/luavisit.ScopeVisitor], but keeps its own
// frame stack of original-name to generated-name mappings, since renaming
// must distinguish a `local` declaration (always renamed) from a plain
// assignment to an undeclared name (a true global, left untouched) —
// a distinction the shared scope tracker does not make.
type renamer struct {
	perm                 *permutator
	excludeFunctionNames bool
	frames               []map[string]string
}

func (r *renamer) pushFrame() {
	r.frames = append(r.frames, make(map[string]string))
}

func (r *renamer) popFrame() {
	last := r.frames[len(r.frames)-1]
	for _, generated := range last {
		r.perm.release(generated)
	}
	r.frames = r.frames[:len(r.frames)-1]
}

func (r *renamer) declare(name string) string {
	if name == "self" || name == "_" {
		return name
	}
	generated := r.perm.take()
	r.frames[len(r.frames)-1][name] = generated
	return generated
}

func (r *renamer) lookup(name string) (string, bool) {
	for i := len(r.frames) - 1; i >= 0; i-- {
		if generated, ok := r.frames[i][name]; ok {
			return generated, true
		}
	}
	return name, false
}

func (r *renamer) renameIdentifier(id *luaast.Identifier) {
	if generated, ok := r.lookup(id.Name); ok {
		setIdentifierName(id, generated)
	}
}

func (r *renamer) nested(fn func()) {
	r.pushFrame()
	fn()
	r.popFrame()
}

func (r *renamer) visitBlock(block *luaast.Block) {
	if block == nil {
		return
	}
	for i := range block.Statements {
		r.visitStatement(&block.Statements[i])
	}
	if ret, ok := block.Last.(*luaast.ReturnStatement); ok {
		for i := range ret.Expressions {
			r.visitExpression(&ret.Expressions[i])
		}
	}
}

func (r *renamer) visitStatement(stmt *luaast.Statement) {
	switch s := (*stmt).(type) {
	case *luaast.AssignStatement:
		for i := range s.Targets {
			r.visitVariable(&s.Targets[i])
		}
		for i := range s.Values {
			r.visitExpression(&s.Values[i])
		}
	case *luaast.CompoundAssignStatement:
		r.visitVariable(&s.Target)
		r.visitExpression(&s.Value)
	case *luaast.LocalAssignStatement:
		for i := range s.Values {
			r.visitExpression(&s.Values[i])
		}
		for i := range s.Names {
			setIdentifierName(s.Names[i].Name, r.declare(s.Names[i].Name.Name))
		}
	case *luaast.LocalFunctionStatement:
		if r.excludeFunctionNames {
			r.declareIdentity(s.Name.Name)
		} else {
			setIdentifierName(s.Name, r.declare(s.Name.Name))
		}
		r.visitFunctionBody(s.Body)
	case *luaast.FunctionStatement:
		if s.Name.Method == nil && len(s.Name.Fields) == 0 {
			if r.excludeFunctionNames {
				// leave s.Name.Base untouched
			} else {
				r.renameIdentifier(s.Name.Base)
			}
		}
		r.visitFunctionBody(s.Body)
	case *luaast.IfStatement:
		for i := range s.Clauses {
			r.visitExpression(&s.Clauses[i].Condition)
			r.nested(func() { r.visitBlock(s.Clauses[i].Block) })
		}
		if s.Else != nil {
			r.nested(func() { r.visitBlock(s.Else) })
		}
	case *luaast.WhileStatement:
		r.visitExpression(&s.Condition)
		r.nested(func() { r.visitBlock(s.Block) })
	case *luaast.RepeatStatement:
		r.nested(func() {
			r.visitBlock(s.Block)
			r.visitExpression(&s.Condition)
		})
	case *luaast.NumericForStatement:
		r.visitExpression(&s.Start)
		r.visitExpression(&s.Stop)
		if s.Step != nil {
			r.visitExpression(&s.Step)
		}
		r.nested(func() {
			setIdentifierName(s.Variable, r.declare(s.Variable.Name))
			r.visitBlock(s.Block)
		})
	case *luaast.GenericForStatement:
		for i := range s.Expressions {
			r.visitExpression(&s.Expressions[i])
		}
		r.nested(func() {
			for i := range s.Names {
				setIdentifierName(s.Names[i], r.declare(s.Names[i].Name))
			}
			r.visitBlock(s.Block)
		})
	case *luaast.DoStatement:
		r.nested(func() { r.visitBlock(s.Block) })
	case *luaast.CallStatement:
		var e luaast.Expression = s.Call
		r.visitExpression(&e)
		s.Call = e.(*luaast.CallExpression)
	}
}

// declareIdentity records name mapping to itself, so a later lookup of a
// `local function` name still resolves (to its own, unrenamed, name)
// rather than falling through as an untouched global the next time it is
// referenced inside the function's own recursive calls.
func (r *renamer) declareIdentity(name string) {
	r.frames[len(r.frames)-1][name] = name
}

func (r *renamer) visitFunctionBody(body *luaast.FunctionBody) {
	r.nested(func() {
		for i := range body.Parameters {
			setIdentifierName(body.Parameters[i].Name, r.declare(body.Parameters[i].Name.Name))
		}
		r.visitBlock(body.Block)
	})
}

func (r *renamer) visitVariable(variable *luaast.Variable) {
	switch x := (*variable).(type) {
	case *luaast.Identifier:
		r.renameIdentifier(x)
	case *luaast.FieldVariable:
		var e luaast.Expression = x.Object
		r.visitExpression(&e)
		x.Object = e.(luaast.PrefixExpression)
	case *luaast.IndexVariable:
		var e luaast.Expression = x.Object
		r.visitExpression(&e)
		x.Object = e.(luaast.PrefixExpression)
		r.visitExpression(&x.Key)
	}
}

func (r *renamer) visitExpression(expr *luaast.Expression) {
	switch x := (*expr).(type) {
	case *luaast.ParenthesizedExpression:
		r.visitExpression(&x.Inner)
	case *luaast.BinaryExpression:
		r.visitExpression(&x.Left)
		r.visitExpression(&x.Right)
	case *luaast.UnaryExpression:
		r.visitExpression(&x.Operand)
	case *luaast.IfExpression:
		r.visitExpression(&x.Condition)
		r.visitExpression(&x.Then)
		for i := range x.ElseIfs {
			r.visitExpression(&x.ElseIfs[i].Condition)
			r.visitExpression(&x.ElseIfs[i].Result)
		}
		r.visitExpression(&x.Else)
	case *luaast.FunctionExpression:
		r.visitFunctionBody(x.Body)
	case *luaast.CallExpression:
		var callee luaast.Expression = x.Callee
		r.visitExpression(&callee)
		x.Callee = callee.(luaast.PrefixExpression)
		r.visitArgument(x.Arguments)
	case *luaast.VariableExpression:
		r.visitVariable(&x.Variable)
	case *luaast.TableExpression:
		for i := range x.Entries {
			if x.Entries[i].Key != nil {
				r.visitExpression(&x.Entries[i].Key)
			}
			r.visitExpression(&x.Entries[i].Value)
		}
	case *luaast.InterpolatedStringExpression:
		for i := range x.Segments {
			if x.Segments[i].Expression != nil {
				r.visitExpression(&x.Segments[i].Expression)
			}
		}
	case *luaast.Identifier:
		var variable luaast.Variable = x
		r.visitVariable(&variable)
	case *luaast.FieldVariable:
		var variable luaast.Variable = x
		r.visitVariable(&variable)
	case *luaast.IndexVariable:
		var variable luaast.Variable = x
		r.visitVariable(&variable)
	}
}

func (r *renamer) visitArgument(arg luaast.Argument) {
	switch a := arg.(type) {
	case *luaast.ExpressionListArgument:
		for i := range a.Items {
			r.visitExpression(&a.Items[i])
		}
	case *luaast.TableArgument:
		var e luaast.Expression = a.Table
		r.visitExpression(&e)
		a.Table = e.(*luaast.TableExpression)
	}
}
