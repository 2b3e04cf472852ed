// Copyright 2024 The zb Authors
// SPDX-License-Identifier: MIT

package luaworker

import (
	"context"
	"fmt"
	"sort"

	"github.com/google/uuid"
	"zombiezen.com/go/log"

	"lucerna.dev/lucerna/internal/luaast"
	"lucerna.dev/lucerna/internal/luaresource"
)

// node is one WorkerTree vertex: the WorkItem plus its graph edges. id is
// a diagnostic identifier, stable for the node's lifetime in the tree and
// written to the debug log when the node is added, so a node can be told
// apart from a later one with the same path.
type node struct {
	id   uuid.UUID
	item *WorkItem
	// dependsOn holds paths this node is currently suspended on
	// (edges required -> current, in the spec's terms, stored here as
	// the "current" node's outgoing requirement set).
	dependsOn map[string]bool
	// dependents holds paths of nodes that depend on this one, the
	// reverse edge, used by source_changed to find descendants to
	// restart.
	dependents map[string]bool
}

// WorkerTree is the multi-file scheduler: a directed graph of WorkItems
// ordered by require dependency, supporting incremental re-processing
// (§4.9, §3.5).
type WorkerTree struct {
	worker       *Worker
	nodes        map[string]*node
	configHash   [32]byte
	hasConfig    bool
	blockCache   map[string]*luaast.Block
	externalDeps map[string]bool
}

// NewWorkerTree returns an empty tree driven by worker.
func NewWorkerTree(worker *Worker) *WorkerTree {
	return &WorkerTree{
		worker:       worker,
		nodes:        make(map[string]*node),
		blockCache:   make(map[string]*luaast.Block),
		externalDeps: make(map[string]bool),
	}
}

// CyclicWorkError reports a require cycle discovered during Process: the
// set of work items still in progress when a pass made no forward
// progress, together with what each was still waiting on (§7, §9's
// "minimal list of unfinished items" resolution of the open question
// about diagnostic quality).
type CyclicWorkError struct {
	Unfinished map[string][]string
}

func (e *CyclicWorkError) Error() string {
	paths := make([]string, 0, len(e.Unfinished))
	for p := range e.Unfinished {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	msg := "cyclic work: "
	for i, p := range paths {
		if i > 0 {
			msg += ", "
		}
		msg += fmt.Sprintf("%s (needs %v)", p, e.Unfinished[p])
	}
	return msg
}

func (t *WorkerTree) ensureNode(sourcePath, outputPath string) *node {
	n, ok := t.nodes[sourcePath]
	if ok {
		return n
	}
	n = &node{
		id:         uuid.New(),
		item:       &WorkItem{SourcePath: sourcePath, OutputPath: outputPath},
		dependsOn:  make(map[string]bool),
		dependents: make(map[string]bool),
	}
	t.nodes[sourcePath] = n
	log.Debugf(context.Background(), "luaworker: added node %s for %s", n.id, sourcePath)
	return n
}

// CollectWork scans opts.Input and adds a node for every discovered
// .lua/.luau file, computing each one's output path relative to
// opts.Output.
func (t *WorkerTree) CollectWork(res luaresource.Resources, opts Options) error {
	paths, err := luaresource.CollectWork(res, opts.Input)
	if err != nil {
		return err
	}
	for _, p := range paths {
		out, err := ResolveOutputPath(res, p, outputForInput(opts, p))
		if err != nil {
			return err
		}
		t.ensureNode(p, out)
	}
	return nil
}

func outputForInput(opts Options, sourcePath string) string {
	if opts.Output == "" {
		return ""
	}
	if opts.Input == sourcePath {
		return opts.Output
	}
	// sourcePath was discovered under a directory input; mirror its
	// path under the output directory.
	rel := sourcePath
	if len(opts.Input) > 0 && len(sourcePath) >= len(opts.Input) && sourcePath[:len(opts.Input)] == opts.Input {
		rel = sourcePath[len(opts.Input):]
	}
	return luaresource.Normalize(opts.Output + "/" + rel)
}

// Process advances every node in the tree until all are Done or a
// require cycle is detected, per the §4.9 step-2 algorithm: topologically
// sort, advance each not-done node by one step, record new dependency
// edges for nodes that suspend, and fail if a full pass makes no
// progress.
func (t *WorkerTree) Process(failFast bool) error {
	if t.worker.Config != nil {
		hash := t.worker.Config.Hash()
		if !t.hasConfig || hash != t.configHash {
			t.resetAll()
			t.configHash = hash
			t.hasConfig = true
		}
	}

	for {
		order := t.topoOrder()
		doneBefore := 0
		for _, n := range t.nodes {
			if n.item.Status == Done {
				doneBefore++
			}
		}
		for _, path := range order {
			n := t.nodes[path]
			if n.item.Status == Done {
				continue
			}
			if err := t.worker.Advance(n.item, t.blockCache); err != nil {
				return err
			}
			switch n.item.Status {
			case Done:
				if len(n.item.Result.Errors) > 0 {
					log.Warnf(context.Background(), "luaworker: %s finished with %d error(s)", path, len(n.item.Result.Errors))
					if failFast {
						return fmt.Errorf("%s: %s", path, formatErrors(n.item.Result.Errors))
					}
				} else {
					t.blockCache[path] = n.item.Progress.Block
					log.Debugf(context.Background(), "luaworker: %s done", path)
				}
			case InProgress:
				required := n.item.Progress.RequiredPaths
				log.Debugf(context.Background(), "luaworker: %s suspended on %v", path, required)
				t.clearEdges(n)
				for _, dep := range required {
					if _, isNode := t.nodes[dep]; !isNode {
						depOut, err := ResolveOutputPath(t.worker.Resources, dep, "")
						if err != nil {
							return err
						}
						t.ensureNode(dep, depOut)
					}
					n.dependsOn[dep] = true
					t.nodes[dep].dependents[path] = true
				}
			}
		}
		if t.allDone() {
			return nil
		}
		doneAfter := 0
		for _, n := range t.nodes {
			if n.item.Status == Done {
				doneAfter++
			}
		}
		if doneAfter == doneBefore {
			return &CyclicWorkError{Unfinished: t.unfinishedRequirements()}
		}
	}
}

func (t *WorkerTree) clearEdges(n *node) {
	for dep := range n.dependsOn {
		if depNode, ok := t.nodes[dep]; ok {
			delete(depNode.dependents, n.item.SourcePath)
		}
		delete(n.dependsOn, dep)
	}
}

func (t *WorkerTree) allDone() bool {
	for _, n := range t.nodes {
		if n.item.Status != Done {
			return false
		}
	}
	return true
}

func (t *WorkerTree) unfinishedRequirements() map[string][]string {
	out := make(map[string][]string)
	for path, n := range t.nodes {
		if n.item.Status != Done {
			deps := make([]string, 0, len(n.dependsOn))
			for d := range n.dependsOn {
				deps = append(deps, d)
			}
			sort.Strings(deps)
			out[path] = deps
		}
	}
	return out
}

// topoOrder returns every node path ordered so that a node with an
// outstanding dependency edge never precedes the node it depends on;
// ties break by insertion (lexical path) order, matching §5's
// "ties are broken by insertion order" (paths are sorted here as a stable
// proxy for discovery order, since CollectWork inserts in lexical order).
func (t *WorkerTree) topoOrder() []string {
	paths := make([]string, 0, len(t.nodes))
	for p := range t.nodes {
		paths = append(paths, p)
	}
	sort.Strings(paths)

	visited := make(map[string]bool, len(paths))
	var order []string
	var visit func(string)
	visit = func(p string) {
		if visited[p] {
			return
		}
		visited[p] = true
		n := t.nodes[p]
		deps := make([]string, 0, len(n.dependsOn))
		for d := range n.dependsOn {
			deps = append(deps, d)
		}
		sort.Strings(deps)
		for _, d := range deps {
			visit(d)
		}
		order = append(order, p)
	}
	for _, p := range paths {
		visit(p)
	}
	return order
}

func (t *WorkerTree) resetAll() {
	for _, n := range t.nodes {
		n.item.Status = NotStarted
		n.item.Progress = nil
		n.item.Result = nil
		n.dependsOn = make(map[string]bool)
		n.dependents = make(map[string]bool)
	}
	t.blockCache = make(map[string]*luaast.Block)
}

// SourceChanged restarts path's node and every node that (transitively)
// depends on it, for file-watch incremental reprocessing.
func (t *WorkerTree) SourceChanged(path string) {
	n, ok := t.nodes[path]
	if !ok {
		return
	}
	seen := make(map[string]bool)
	var restart func(*node)
	restart = func(cur *node) {
		p := cur.item.SourcePath
		if seen[p] {
			return
		}
		seen[p] = true
		cur.item.Status = NotStarted
		cur.item.Progress = nil
		cur.item.Result = nil
		delete(t.blockCache, p)
		for dependent := range cur.dependents {
			if dn, ok := t.nodes[dependent]; ok {
				restart(dn)
			}
		}
	}
	restart(n)
}

// RemoveSource drops path's node entirely and returns its output path so
// the caller can delete the stale generated file.
func (t *WorkerTree) RemoveSource(path string) (outputPath string, ok bool) {
	n, ok := t.nodes[path]
	if !ok {
		return "", false
	}
	t.clearEdges(n)
	for dependent := range n.dependents {
		if dn, ok := t.nodes[dependent]; ok {
			delete(dn.dependsOn, path)
		}
	}
	delete(t.nodes, path)
	delete(t.blockCache, path)
	return n.item.OutputPath, true
}

// Items returns every WorkItem currently in the tree.
func (t *WorkerTree) Items() []*WorkItem {
	paths := make([]string, 0, len(t.nodes))
	for p := range t.nodes {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	items := make([]*WorkItem, len(paths))
	for i, p := range paths {
		items[i] = t.nodes[p].item
	}
	return items
}
