// Copyright 2024 The zb Authors
// SPDX-License-Identifier: MIT

package luaeval

// State holds the mutable bookkeeping a bounded evaluation run needs: a
// stack of local scopes, a global table, and a heap of by-reference
// tables shared across aliases.
type State struct {
	scopes  []map[string]*LocalVariable
	globals map[string]Value
	tables  []*Table
}

// NewState returns an empty execution state with one (outermost) local
// scope already pushed.
func NewState() *State {
	s := &State{globals: make(map[string]Value)}
	s.Push()
	return s
}

// Push opens a new nested local scope.
func (s *State) Push() {
	s.scopes = append(s.scopes, make(map[string]*LocalVariable))
}

// Pop closes the innermost local scope.
func (s *State) Pop() {
	if len(s.scopes) > 0 {
		s.scopes = s.scopes[:len(s.scopes)-1]
	}
}

// Declare binds name to value in the innermost scope as freshly
// declared (not yet reassigned).
func (s *State) Declare(name string, value Value) {
	s.scopes[len(s.scopes)-1][name] = &LocalVariable{Value: value}
}

// Lookup finds the nearest enclosing local binding for name, or reports
// ok == false if name is not a local (i.e. it is global).
func (s *State) Lookup(name string) (*LocalVariable, bool) {
	for i := len(s.scopes) - 1; i >= 0; i-- {
		if lv, ok := s.scopes[i][name]; ok {
			return lv, true
		}
	}
	return nil, false
}

// Read resolves an identifier read: a known, non-mutable local's value,
// Unknown for a mutable local (reassignment makes its value untrusted
// from this point on), or the global table's recorded value (Unknown if
// never recorded).
func (s *State) Read(name string) Value {
	if lv, ok := s.Lookup(name); ok {
		if lv.Mutable {
			return UnknownValue
		}
		return lv.Value
	}
	if v, ok := s.globals[name]; ok {
		return v
	}
	return UnknownValue
}

// Assign marks name mutable (if local) or records it in globals.
func (s *State) Assign(name string, value Value) {
	if lv, ok := s.Lookup(name); ok {
		lv.Mutable = true
		lv.Value = UnknownValue
		return
	}
	s.globals[name] = value
}

// NewTable allocates a fresh table and returns a Value referencing it.
func (s *State) NewTable() Value {
	s.tables = append(s.tables, &Table{Hash: make(map[string]Value)})
	return Value{Kind: Table, TableID: len(s.tables) - 1}
}

// TableAt returns the heap table a Value of Kind Table refers to.
func (s *State) TableAt(v Value) *Table {
	if v.Kind != Table || v.TableID < 0 || v.TableID >= len(s.tables) {
		return nil
	}
	return s.tables[v.TableID]
}
