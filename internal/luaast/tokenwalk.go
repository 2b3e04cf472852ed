// Copyright 2024 The zb Authors
// SPDX-License-Identifier: MIT

package luaast

import "reflect"

var tokenType = reflect.TypeOf(Token{})

// WalkTokens calls fn, by address, for every Token field reachable from
// node: the node's own tokens, any nested statements/expressions/types
// reached through pointer or interface fields, and every element of any
// slice along the way. Rules that rewrite trivia rather than structure
// (RemoveComments, RemoveSpaces, AppendTextComment) use this instead of
// a hand-written traversal per node kind, since token fields are
// scattered across every one of them.
func WalkTokens(node Node, fn func(*Token)) {
	walkTokenValue(reflect.ValueOf(node), fn)
}

func walkTokenValue(v reflect.Value, fn func(*Token)) {
	switch v.Kind() {
	case reflect.Ptr, reflect.Interface:
		if v.IsNil() {
			return
		}
		walkTokenValue(v.Elem(), fn)
	case reflect.Slice, reflect.Array:
		for i := 0; i < v.Len(); i++ {
			walkTokenValue(v.Index(i), fn)
		}
	case reflect.Struct:
		if v.Type() == tokenType {
			if v.CanAddr() {
				fn(v.Addr().Interface().(*Token))
			}
			return
		}
		for i := 0; i < v.NumField(); i++ {
			walkTokenValue(v.Field(i), fn)
		}
	}
}
