// Copyright 2024 The zb Authors
// SPDX-License-Identifier: MIT

// Package luaeval implements a bounded abstract interpreter over a subset
// of Lua values, used by folding rules (internal/luarules) to decide
// whether an expression has a statically-known value without executing
// Lua. Any operand the evaluator cannot decide becomes [Unknown], which
// poisons every operation that touches it.
package luaeval

import "fmt"

// Kind discriminates the dynamic type of a [Value].
type Kind int

const (
	// Unknown means "cannot be decided" — the evaluator's escape hatch
	// for anything outside its bounded subset (function calls other than
	// whitelisted engine functions, reads of unresolved globals, etc.).
	Unknown Kind = iota
	Nil
	Boolean
	Number
	String
	Table
)

// Value is a single Lua value as understood by the virtual evaluator.
type Value struct {
	Kind    Kind
	Bool    bool
	Num     float64
	IsInt   bool
	Int     int64
	Str     string
	TableID int // valid when Kind == Table; indexes the State's table heap (see State.TableAt)
}

// UnknownValue is the single value representing an undecidable result.
var UnknownValue = Value{Kind: Unknown}

// NilValue is the Lua nil value.
var NilValue = Value{Kind: Nil}

// BoolValue wraps a boolean.
func BoolValue(b bool) Value { return Value{Kind: Boolean, Bool: b} }

// IntValue wraps an integer number.
func IntValue(n int64) Value { return Value{Kind: Number, IsInt: true, Int: n, Num: float64(n)} }

// FloatValue wraps a floating-point number.
func FloatValue(n float64) Value { return Value{Kind: Number, Num: n} }

// StringValue wraps a string.
func StringValue(s string) Value { return Value{Kind: String, Str: s} }

// Truthy reports whether the value is truthy in Lua's semantics (only
// nil and false are falsy). Unknown is never decidable as truthy/falsy;
// callers must check IsUnknown first.
func (v Value) Truthy() bool {
	return !(v.Kind == Nil || (v.Kind == Boolean && !v.Bool))
}

// IsUnknown reports whether v carries no decided value.
func (v Value) IsUnknown() bool { return v.Kind == Unknown }

func (v Value) String() string {
	switch v.Kind {
	case Unknown:
		return "<unknown>"
	case Nil:
		return "nil"
	case Boolean:
		return fmt.Sprintf("%v", v.Bool)
	case Number:
		if v.IsInt {
			return fmt.Sprintf("%d", v.Int)
		}
		return fmt.Sprintf("%g", v.Num)
	case String:
		return v.Str
	case Table:
		return fmt.Sprintf("<table %d>", v.TableID)
	default:
		return "<?>"
	}
}

// Tuple is a flat sequence of values with Lua's flatten/singleton
// coercion semantics: in a single-value context, only the first value is
// used (and a non-final expression in a list truncates to one value); in
// a multi-value context (the last item of a call argument list or return
// list), every value is used.
type Tuple struct {
	Values []Value
	// Open marks a Tuple built from a call or `...` whose result count is
	// not statically known; such a tuple can still be flattened but
	// should not be assumed to have exactly len(Values) results.
	Open bool
}

// Single returns a one-value Tuple.
func Single(v Value) Tuple { return Tuple{Values: []Value{v}} }

// First returns the tuple's first value, or nil if empty.
func (t Tuple) First() Value {
	if len(t.Values) == 0 {
		return NilValue
	}
	return t.Values[0]
}

// Table is a heap-allocated table: reference semantics mean assigning
// into an alias propagates to every other reference. An Unknown key
// write blurs the whole table's readability (per the spec's Table
// mutation invariant), tracked by the Opaque field.
type Table struct {
	Array   []Value
	Hash    map[string]Value
	Opaque  bool // true once an unknown-keyed write makes reads undecidable
}

// LocalVariable is one binding in a scope: Mutable is set the first time
// the variable is the target of a plain assignment (as opposed to its
// declaration), at which point its statically-known Value can no longer
// be trusted across the assignment.
type LocalVariable struct {
	Mutable bool
	Value   Value
}
