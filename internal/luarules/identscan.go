// Copyright 2024 The zb Authors
// SPDX-License-Identifier: MIT

package luarules

import (
	"lucerna.dev/lucerna/internal/luaast"
	"lucerna.dev/lucerna/internal/luavisit"
)

// setIdentifierName renames id in place, syncing its token so the
// retain-lines generator (which otherwise replays the original source
// span for any token it still considers valid) emits the new name
// instead of echoing the identifier's original text.
func setIdentifierName(id *luaast.Identifier, name string) {
	id.Name = name
	id.Token.HasContent = true
	id.Token.Content = name
}

// blockReferencesName reports whether name appears as an identifier
// anywhere in block, ignoring shadowing: a local redeclaring name still
// counts as a reference. This conservative over-approximation only ever
// costs a skipped optimization, never a wrong rewrite.
func blockReferencesName(block *luaast.Block, name string) bool {
	scanner := &identifierScanner{name: name}
	luavisit.New(scanner).VisitBlock(block)
	return scanner.found
}

type identifierScanner struct {
	luavisit.BaseProcessor
	name  string
	found bool
}

func (s *identifierScanner) ProcessExpression(expr *luaast.Expression) {
	if id, ok := (*expr).(*luaast.Identifier); ok && id.Name == s.name {
		s.found = true
	}
}

func (s *identifierScanner) ProcessVariable(variable *luaast.Variable) {
	if id, ok := (*variable).(*luaast.Identifier); ok && id.Name == s.name {
		s.found = true
	}
}

// declaresLocalName reports whether name is bound anywhere in block by a
// local variable, local function, or function parameter. It is not
// scope-precise (it doesn't check whether the binding is actually in
// scope at a given use site) but that only ever makes a rule more
// conservative, never unsafe: callers use it to recognize when a global
// the rule assumes is unshadowed (debug, assert, tostring, ...) might
// not be.
func declaresLocalName(block *luaast.Block, name string) bool {
	scanner := &localDeclarationScanner{name: name}
	luavisit.New(scanner).VisitBlock(block)
	return scanner.found
}

type localDeclarationScanner struct {
	luavisit.BaseProcessor
	name  string
	found bool
}

func (s *localDeclarationScanner) ProcessStatement(stmt *luaast.Statement) {
	switch st := (*stmt).(type) {
	case *luaast.LocalAssignStatement:
		for _, n := range st.Names {
			if n.Name.Name == s.name {
				s.found = true
			}
		}
	case *luaast.LocalFunctionStatement:
		if st.Name.Name == s.name {
			s.found = true
		}
	}
}

func (s *localDeclarationScanner) ProcessFunctionBody(body *luaast.FunctionBody) {
	for _, p := range body.Parameters {
		if p.Name.Name == s.name {
			s.found = true
		}
	}
}
