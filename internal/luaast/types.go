// Copyright 2024 The zb Authors
// SPDX-License-Identifier: MIT

package luaast

// Type is implemented by every Luau type-annotation variant. Type syntax
// is preserved and manipulable (e.g. by rule "remove_types") but is never
// verified: this module is not a type checker.
type Type interface {
	Node
	typeNode()
}

// NameType is a named type, optionally parameterized: `Name` or
// `Name<T, U>`.
type NameType struct {
	Name           string
	TypeParameters []Type
}

func (*NameType) nodeKind() string { return "NameType" }
func (*NameType) typeNode()        {}

// FieldType is a module-qualified type reference: `mod.Name`.
type FieldType struct {
	Module string
	Name   *NameType
}

func (*FieldType) nodeKind() string { return "FieldType" }
func (*FieldType) typeNode()        {}

// ArrayType is `{T}`.
type ArrayType struct{ Element Type }

func (*ArrayType) nodeKind() string { return "ArrayType" }
func (*ArrayType) typeNode()        {}

// OptionalType is `T?`.
type OptionalType struct{ Inner Type }

func (*OptionalType) nodeKind() string { return "OptionalType" }
func (*OptionalType) typeNode()        {}

// UnionType is `A | B | C`.
type UnionType struct{ Members []Type }

func (*UnionType) nodeKind() string { return "UnionType" }
func (*UnionType) typeNode()        {}

// IntersectionType is `A & B & C`.
type IntersectionType struct{ Members []Type }

func (*IntersectionType) nodeKind() string { return "IntersectionType" }
func (*IntersectionType) typeNode()        {}

// ParenthesizedType is `(T)`, used to disambiguate grouping in unions,
// intersections, and function types.
type ParenthesizedType struct{ Inner Type }

func (*ParenthesizedType) nodeKind() string { return "ParenthesizedType" }
func (*ParenthesizedType) typeNode()        {}

// TypeofType is `typeof(expr)`.
type TypeofType struct{ Expression Expression }

func (*TypeofType) nodeKind() string { return "TypeofType" }
func (*TypeofType) typeNode()        {}

// FunctionType is `(A, B) -> C`.
type FunctionType struct {
	GenericParameters []string
	Parameters        []Type
	VariadicParameter  Type // nil if not variadic
	ReturnType         Type
}

func (*FunctionType) nodeKind() string { return "FunctionType" }
func (*FunctionType) typeNode()        {}

// TablePropertyType is a named property of a [TableType]: `name: T`.
type TablePropertyType struct {
	Name string
	Type Type
}

// TableIndexerType is the optional `[K]: V` indexer signature of a
// [TableType].
type TableIndexerType struct {
	KeyType   Type
	ValueType Type
}

// TableType is `{ name: T, [K]: V, ... }`. LiteralProperties holds
// positional (array-like) member types declared without a name.
type TableType struct {
	Properties        []TablePropertyType
	LiteralProperties []Type
	Indexer           *TableIndexerType // nil if absent
}

func (*TableType) nodeKind() string { return "TableType" }
func (*TableType) typeNode()        {}

// TypePack is an ordinary, ordered pack of types used in a generic
// parameter list: `<T, U>`.
type TypePack struct{ Types []Type }

func (*TypePack) nodeKind() string { return "TypePack" }
func (*TypePack) typeNode()        {}

// GenericTypePack is `T...` used as a generic parameter.
type GenericTypePack struct{ Name string }

func (*GenericTypePack) nodeKind() string { return "GenericTypePack" }
func (*GenericTypePack) typeNode()        {}

// VariadicTypePack is `...T` used as a function's variadic parameter type.
type VariadicTypePack struct{ Element Type }

func (*VariadicTypePack) nodeKind() string { return "VariadicTypePack" }
func (*VariadicTypePack) typeNode()        {}
