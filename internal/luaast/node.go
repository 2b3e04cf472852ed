// Copyright 2024 The zb Authors
// SPDX-License-Identifier: MIT

// Package luaast defines the Lua/Luau abstract syntax tree: the data that
// every rule in package luarules manipulates, and the invariants that make
// parsing, rewriting, and regenerating source text safe.
//
// The tree is a sum-of-products design: [Statement], [LastStatement],
// [Expression], [Type], and [Variable] are sealed interfaces implemented
// only by the node types declared in this package. Code that needs to
// handle every variant does so with a type switch, which the Go compiler
// does not check for exhaustiveness.
package luaast

import "lucerna.dev/lucerna/internal/lualex"

// Token is a lexical element attached to an AST node, carrying its
// surrounding trivia. It is lualex's token type re-exported here so that
// callers working with the AST never need to import lualex directly.
type Token = lualex.Token

// A Node is any element of the syntax tree.
type Node interface {
	// nodeKind returns a stable identifier for the node's dynamic type,
	// used by the path model and by diagnostics.
	nodeKind() string
}

// Block is an ordered sequence of statements, optionally terminated by a
// last statement (return, break, or continue). The AST is owned by its
// enclosing Block: rules mutate a Block in place rather than rebuilding it.
type Block struct {
	Statements []Statement
	Last       LastStatement // nil if the block falls through
}

func (*Block) nodeKind() string { return "Block" }

// Statement is implemented by every statement variant.
type Statement interface {
	Node
	statementNode()
}

// LastStatement is implemented by the three statements that may only
// appear as the final statement of a Block.
type LastStatement interface {
	Node
	lastStatementNode()
}
