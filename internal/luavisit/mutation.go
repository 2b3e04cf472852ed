// Copyright 2024 The zb Authors
// SPDX-License-Identifier: MIT

package luavisit

import "lucerna.dev/lucerna/internal/luaast"

// Span addresses a contiguous run of statements in one block: the
// statements at indices [Start, End) of the block reached by Path's steps
// (Path itself locates the block, not a single statement, since mutations
// operate on ranges).
type Span struct {
	Path  luaast.NodePath
	Start int
	End   int // exclusive
}

// EffectKind discriminates the two effects a mutation can emit.
type EffectKind int

const (
	StatementAdded EffectKind = iota
	StatementRemoved
)

// Effect is emitted when a mutation is applied, so that other pending
// mutations addressing the same block can rewrite their own spans to stay
// valid.
type Effect struct {
	Kind  EffectKind
	Block luaast.NodePath
	At    int
	Count int
}

// op is the internal representation of one queued mutation.
type op struct {
	kind    opKind
	span    Span
	content []luaast.Statement
	// insertAt, when kind is insertBefore/insertAfter, is the statement
	// index content is spliced next to (recomputed as effects land).
	insertAt int
	dropped  bool
}

type opKind int

const (
	opRemove opKind = iota
	opReplace
	opInsertBefore
	opInsertAfter
)

// Engine accumulates declarative mutations against a root block and
// applies them together, rewriting later ops' spans in response to the
// effects earlier ops emit so that the whole queue stays internally
// consistent regardless of application order.
type Engine struct {
	root *luaast.Block
	ops  []*op
}

// NewEngine returns a mutation engine operating on root.
func NewEngine(root *luaast.Block) *Engine {
	return &Engine{root: root}
}

// Remove deletes the statements named by span.
func (e *Engine) Remove(span Span) {
	e.ops = append(e.ops, &op{kind: opRemove, span: span})
}

// Replace substitutes the statements named by span with content.
func (e *Engine) Replace(span Span, content []luaast.Statement) {
	e.ops = append(e.ops, &op{kind: opReplace, span: span, content: content})
}

// InsertBefore splices content immediately before the statement at path.
func (e *Engine) InsertBefore(path luaast.NodePath, content []luaast.Statement) {
	e.ops = append(e.ops, &op{kind: opInsertBefore, span: Span{Path: path}, content: content})
}

// InsertAfter splices content immediately after the statement at path.
func (e *Engine) InsertAfter(path luaast.NodePath, content []luaast.Statement) {
	e.ops = append(e.ops, &op{kind: opInsertAfter, span: Span{Path: path}, content: content})
}

// Apply performs every queued mutation against the root block, in
// insertion order, and returns the accumulated effects. A mutation whose
// target no longer resolves (because an earlier mutation removed it) is
// silently dropped, per the spec's effect-rewrite contract.
func (e *Engine) Apply() []Effect {
	var effects []Effect
	for _, o := range e.ops {
		if o.dropped {
			continue
		}
		eff, ok := e.applyOne(o)
		if !ok {
			continue
		}
		effects = append(effects, eff)
		e.rewritePending(eff)
	}
	return effects
}

func (e *Engine) blockAt(path luaast.NodePath) (*luaast.Block, bool) {
	if len(path.Steps) == 0 {
		return e.root, true
	}
	n, ok := path.Resolve(e.root)
	if !ok {
		return nil, false
	}
	if b, ok := n.(*luaast.Block); ok {
		return b, true
	}
	return nil, false
}

func (e *Engine) applyOne(o *op) (Effect, bool) {
	switch o.kind {
	case opRemove, opReplace:
		block, ok := e.blockAt(o.span.Path)
		if !ok {
			return Effect{}, false
		}
		start, end := o.span.Start, o.span.End
		if start < 0 || end > len(block.Statements) || start > end {
			return Effect{}, false
		}
		removed := end - start
		added := len(o.content)
		next := make([]luaast.Statement, 0, len(block.Statements)-removed+added)
		next = append(next, block.Statements[:start]...)
		next = append(next, o.content...)
		next = append(next, block.Statements[end:]...)
		block.Statements = next
		// Report the net change: statements past the span move by
		// added-removed.
		if removed > added {
			return Effect{Kind: StatementRemoved, Block: o.span.Path, At: start + added, Count: removed - added}, true
		}
		if added > removed {
			return Effect{Kind: StatementAdded, Block: o.span.Path, At: start + removed, Count: added - removed}, true
		}
		return Effect{}, false
	case opInsertBefore, opInsertAfter:
		parentPath, index, ok := parentBlockPath(o.span.Path)
		if !ok {
			return Effect{}, false
		}
		block, ok := e.blockAt(parentPath)
		if !ok || index < 0 || index > len(block.Statements) {
			return Effect{}, false
		}
		at := index
		if o.kind == opInsertAfter {
			at = index + 1
		}
		next := make([]luaast.Statement, 0, len(block.Statements)+len(o.content))
		next = append(next, block.Statements[:at]...)
		next = append(next, o.content...)
		next = append(next, block.Statements[at:]...)
		block.Statements = next
		return Effect{Kind: StatementAdded, Block: parentPath, At: at, Count: len(o.content)}, true
	}
	return Effect{}, false
}

// parentBlockPath splits a statement path into the NodePath of its
// enclosing block and the statement's index within it.
func parentBlockPath(path luaast.NodePath) (luaast.NodePath, int, bool) {
	if len(path.Steps) == 0 {
		return luaast.NodePath{}, 0, false
	}
	last := path.Steps[len(path.Steps)-1]
	return luaast.NodePath{Steps: path.Steps[:len(path.Steps)-1]}, last.Index, true
}

// rewritePending adjusts every not-yet-applied op whose span lies in the
// same block as eff, shifting indices past the edit point and dropping
// ops whose addressed statements were removed outright.
func (e *Engine) rewritePending(eff Effect) {
	for _, o := range e.ops {
		if o.dropped {
			continue
		}
		switch o.kind {
		case opRemove, opReplace:
			if !samePath(o.span.Path, eff.Block) {
				continue
			}
			if eff.Kind == StatementRemoved && o.span.Start < eff.At+eff.Count && o.span.End > eff.At {
				o.dropped = true
				continue
			}
			shiftSpan(&o.span, eff)
		case opInsertBefore, opInsertAfter:
			parentPath, index, ok := parentBlockPath(o.span.Path)
			if !ok || !samePath(parentPath, eff.Block) {
				continue
			}
			newIndex := shiftIndex(index, eff)
			if newIndex < 0 {
				o.dropped = true
				continue
			}
			last := &o.span.Path.Steps[len(o.span.Path.Steps)-1]
			last.Index = newIndex
		}
	}
}

func shiftSpan(span *Span, eff Effect) {
	switch eff.Kind {
	case StatementRemoved:
		if span.Start >= eff.At+eff.Count {
			span.Start -= eff.Count
			span.End -= eff.Count
		} else if span.End <= eff.At {
			// unaffected
		} else {
			// overlaps the removed range entirely or partially: drop it by
			// collapsing to an empty, already-consumed span.
			span.Start = eff.At
			span.End = eff.At
		}
	case StatementAdded:
		if span.Start >= eff.At {
			span.Start += eff.Count
			span.End += eff.Count
		}
	}
}

func shiftIndex(index int, eff Effect) int {
	switch eff.Kind {
	case StatementRemoved:
		if index >= eff.At && index < eff.At+eff.Count {
			return -1
		}
		if index >= eff.At+eff.Count {
			return index - eff.Count
		}
		return index
	case StatementAdded:
		if index >= eff.At {
			return index + eff.Count
		}
		return index
	}
	return index
}

func samePath(a, b luaast.NodePath) bool {
	if len(a.Steps) != len(b.Steps) {
		return false
	}
	for i := range a.Steps {
		if a.Steps[i] != b.Steps[i] {
			return false
		}
	}
	return true
}
