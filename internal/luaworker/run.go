// Copyright 2024 The zb Authors
// SPDX-License-Identifier: MIT

package luaworker

import (
	"context"
	"sync"

	"golang.org/x/sync/errgroup"

	"lucerna.dev/lucerna/internal/luaresource"
)

// Run collects every work item under opts.Input, processes the tree to
// completion, and writes every successful item's output, concurrently,
// to opts.Output (or in place). Files with a failing item are left
// unwritten (§7's "a failed process writes no partial output" rule); a
// CyclicWork error leaves every node in the cycle unwritten too. Run
// returns every item so a caller can build an exit-status summary, and
// an error only for a condition that stopped the whole run (fail-fast, a
// resource error during collection, or CyclicWork).
func Run(ctx context.Context, res luaresource.Resources, worker *Worker, opts Options) ([]*WorkItem, error) {
	if opts.GeneratorOverride != nil {
		overridden := *worker.Config
		overridden.Generator = *opts.GeneratorOverride
		worker = &Worker{Resources: worker.Resources, Config: &overridden, ProjectRoot: worker.ProjectRoot}
	}
	tree := NewWorkerTree(worker)
	if err := tree.CollectWork(res, opts); err != nil {
		return nil, err
	}
	if err := tree.Process(opts.FailFast); err != nil {
		items := tree.Items()
		if _, cyclic := err.(*CyclicWorkError); cyclic {
			if werr := writeResults(ctx, res, items); werr != nil {
				return items, werr
			}
		}
		return items, err
	}
	items := tree.Items()
	if err := writeResults(ctx, res, items); err != nil {
		return items, err
	}
	return items, nil
}

// writeResults is the "async worker" collaborator from §5: a bounded
// pool of goroutines awaiting only the resource backend's writes, never
// running a single work item's own rule pipeline concurrently with
// itself (that already finished, serially, in Worker.Advance).
func writeResults(ctx context.Context, res luaresource.Resources, items []*WorkItem) error {
	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(8)
	var mu sync.Mutex
	var firstErr error
	for _, item := range items {
		item := item
		if item.Result == nil || len(item.Result.Errors) > 0 {
			continue
		}
		group.Go(func() error {
			select {
			case <-groupCtx.Done():
				return groupCtx.Err()
			default:
			}
			if err := res.Write(item.OutputPath, item.Result.Output); err != nil {
				mu.Lock()
				if firstErr == nil {
					firstErr = err
				}
				mu.Unlock()
				return err
			}
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return firstErr
	}
	return nil
}
