// Copyright 2024 The zb Authors
// SPDX-License-Identifier: MIT

package luagen

import "lucerna.dev/lucerna/internal/luaast"

// writeFunctionBody writes the `(...) ... end` tail shared by function
// statements and expressions. skipSelf suppresses an implicit leading
// "self" parameter for method definitions, which the parser never
// materializes as an explicit [luaast.Parameter] in the first place, so
// this flag is only documentation of that invariant at the call sites.
func (p *printer) writeFunctionBody(body *luaast.FunctionBody, _ bool) {
	if len(body.GenericParameters) > 0 {
		p.emit("<")
		for i, g := range body.GenericParameters {
			if i > 0 {
				p.emit(",")
				p.space()
			}
			p.emit(g)
		}
		p.emit(">")
	}
	p.token(body.OpenParenToken, "(")
	for i, param := range body.Parameters {
		if i > 0 {
			p.emit(",")
			p.space()
		}
		p.writeIdentifier(param.Name)
		if param.Type != nil {
			p.emit(":")
			p.space()
			p.writeType(param.Type)
		}
	}
	if body.IsVariadic {
		if len(body.Parameters) > 0 {
			p.emit(",")
			p.space()
		}
		p.emit("...")
		if body.VariadicType != nil {
			p.emit(":")
			p.space()
			p.writeType(body.VariadicType)
		}
	}
	p.token(body.CloseParenToken, ")")
	if body.ReturnType != nil {
		p.emit(":")
		p.space()
		p.writeType(body.ReturnType)
	}
	p.writeBlock(body.Block)
	p.newline()
	p.token(body.EndToken, "end")
}
