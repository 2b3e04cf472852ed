// Copyright 2024 The zb Authors
// SPDX-License-Identifier: MIT

package luagen

import "lucerna.dev/lucerna/internal/luaast"

func (p *printer) writeType(t luaast.Type) {
	switch x := t.(type) {
	case *luaast.NameType:
		p.emit(x.Name)
		if len(x.TypeParameters) > 0 {
			p.emit("<")
			for i, tp := range x.TypeParameters {
				if i > 0 {
					p.emit(",")
					p.space()
				}
				p.writeType(tp)
			}
			p.emit(">")
		}
	case *luaast.FieldType:
		p.emit(x.Module)
		p.emit(".")
		p.writeType(x.Name)
	case *luaast.ArrayType:
		p.emit("{")
		p.writeType(x.Element)
		p.emit("}")
	case *luaast.OptionalType:
		p.writeType(x.Inner)
		p.emit("?")
	case *luaast.UnionType:
		for i, m := range x.Members {
			if i > 0 {
				p.space()
				p.emit("|")
				p.space()
			}
			p.writeType(m)
		}
	case *luaast.IntersectionType:
		for i, m := range x.Members {
			if i > 0 {
				p.space()
				p.emit("&")
				p.space()
			}
			p.writeType(m)
		}
	case *luaast.ParenthesizedType:
		p.emit("(")
		p.writeType(x.Inner)
		p.emit(")")
	case *luaast.TypeofType:
		p.emit("typeof")
		p.emit("(")
		p.writeExpression(x.Expression)
		p.emit(")")
	case *luaast.FunctionType:
		if len(x.GenericParameters) > 0 {
			p.emit("<")
			for i, g := range x.GenericParameters {
				if i > 0 {
					p.emit(",")
					p.space()
				}
				p.emit(g)
			}
			p.emit(">")
		}
		p.emit("(")
		for i, param := range x.Parameters {
			if i > 0 {
				p.emit(",")
				p.space()
			}
			p.writeType(param)
		}
		if x.VariadicParameter != nil {
			if len(x.Parameters) > 0 {
				p.emit(",")
				p.space()
			}
			p.emit("...")
			p.writeType(x.VariadicParameter)
		}
		p.emit(")")
		p.space()
		p.emit("->")
		p.space()
		p.writeType(x.ReturnType)
	case *luaast.TableType:
		p.emit("{")
		p.space()
		wrote := false
		for _, lp := range x.LiteralProperties {
			if wrote {
				p.emit(",")
				p.space()
			}
			p.writeType(lp)
			wrote = true
		}
		for _, prop := range x.Properties {
			if wrote {
				p.emit(",")
				p.space()
			}
			p.emit(prop.Name)
			p.emit(":")
			p.space()
			p.writeType(prop.Type)
			wrote = true
		}
		if x.Indexer != nil {
			if wrote {
				p.emit(",")
				p.space()
			}
			p.emit("[")
			p.writeType(x.Indexer.KeyType)
			p.emit("]")
			p.emit(":")
			p.space()
			p.writeType(x.Indexer.ValueType)
		}
		p.space()
		p.emit("}")
	case *luaast.TypePack:
		for i, m := range x.Types {
			if i > 0 {
				p.emit(",")
				p.space()
			}
			p.writeType(m)
		}
	case *luaast.GenericTypePack:
		p.emit(x.Name)
		p.emit("...")
	case *luaast.VariadicTypePack:
		p.emit("...")
		p.writeType(x.Element)
	}
}
