// Copyright 2024 The zb Authors
// SPDX-License-Identifier: MIT

// Package luaworker drives one file's parse-rules-generate pipeline
// ([Worker]) and orchestrates many files with cross-file `require`
// dependencies ([WorkerTree]), including incremental re-processing on
// file-watch (§4.9). The dependency ordering and cycle detection follow
// a node/dependents-set shape adapted from a build-graph scheduler,
// applied here to require-graph predecessors instead of build inputs.
package luaworker

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"lucerna.dev/lucerna/internal/luaast"
	"lucerna.dev/lucerna/internal/luaconfig"
	"lucerna.dev/lucerna/internal/luagen"
	"lucerna.dev/lucerna/internal/luaparse"
	"lucerna.dev/lucerna/internal/luaresource"
	"lucerna.dev/lucerna/internal/luarules"
)

// Status is the coarse state of a [WorkItem].
type Status int

const (
	NotStarted Status = iota
	InProgress
	Done
)

// Progress is the suspended state of a work item between rule
// applications: the parsed block, the index of the next rule to run, the
// paths it is waiting on, the accumulated original source, and a running
// duration so resumed processing can report total elapsed time.
type Progress struct {
	Block         *luaast.Block
	NextRule      int
	RequiredPaths []string
	Source        string
	Elapsed       time.Duration
}

// Result is the terminal state of a [WorkItem]: either the generated
// output text, or the accumulated errors that prevented it.
type Result struct {
	Output string
	Errors []error
}

// WorkItem is the pipeline state for one input file (§3.5).
type WorkItem struct {
	SourcePath string
	OutputPath string

	Status   Status
	Progress *Progress
	Result   *Result

	// ExternalDependencies are paths read by a rule that are not
	// themselves work items (e.g. a data file inlined by the bundler),
	// tracked so a file watcher knows to retrigger this item.
	ExternalDependencies []string
}

// Options configures one processing run (§4.10).
type Options struct {
	Input              string
	Output             string
	Config             *luaconfig.Configuration
	ConfigPath         string
	FailFast           bool
	GeneratorOverride  *luagen.Parameters
}

// ResolveOutputPath implements §4.10's output-path rule for a single
// input file.
func ResolveOutputPath(res luaresource.Resources, input, output string) (string, error) {
	if output == "" {
		return input, nil
	}
	isDir, err := res.IsDirectory(output)
	if err != nil {
		if _, ok := err.(*luaresource.NotFoundError); !ok {
			return "", err
		}
		isDir = false
	}
	inputIsFile, err := res.IsFile(input)
	if err != nil {
		return "", err
	}
	if inputIsFile && isDir {
		return luaresource.Normalize(filepath.Join(output, filepath.Base(input))), nil
	}
	if filepath.Ext(output) != "" {
		return output, nil
	}
	exists, err := res.Exists(output)
	if err != nil {
		return "", err
	}
	existsAsFile, _ := res.IsFile(output)
	if exists && existsAsFile {
		return output, nil
	}
	if inputIsFile {
		return luaresource.Normalize(filepath.Join(output, filepath.Base(input))), nil
	}
	return output, nil
}

// Worker drives a single [WorkItem] through parse, optional bundling,
// each configured rule in order, and generation.
type Worker struct {
	Resources   luaresource.Resources
	Config      *luaconfig.Configuration
	ProjectRoot string
}

// Advance runs item forward by as much of the pipeline as it can without
// blocking: from NotStarted through parsing and every rule whose
// required paths (if any) are already present in blockCache, stopping
// either at completion (Status becomes Done) or at the first rule whose
// requirements are not yet satisfied (item.Progress.RequiredPaths is set
// and Status remains InProgress).
func (w *Worker) Advance(item *WorkItem, blockCache map[string]*luaast.Block) error {
	start := time.Now()
	if item.Status == NotStarted {
		source, err := w.Resources.Get(item.SourcePath)
		if err != nil {
			item.Status = Done
			item.Result = &Result{Errors: []error{err}}
			return nil
		}
		opts := []luaparse.Option{luaparse.PreserveTokens(w.usesRetainLines())}
		block, err := luaparse.Parse(item.SourcePath, source, opts...)
		if err != nil {
			item.Status = Done
			item.Result = &Result{Errors: []error{err}}
			return nil
		}
		item.Status = InProgress
		item.Progress = &Progress{Block: block, NextRule: 0, Source: source}
	}

	progress := item.Progress
	ctx := &luarules.Context{
		Path:        item.SourcePath,
		Resources:   w.Resources,
		Source:      progress.Source,
		ProjectRoot: w.ProjectRoot,
		BlockCache:  blockCache,
	}

	var errs []error
	for progress.NextRule < len(w.Config.Rules) {
		rule := w.Config.Rules[progress.NextRule]
		if reqRule, ok := rule.(luarules.RequireContentRule); ok {
			required := reqRule.RequireContent(ctx, progress.Block)
			if missing := missingPaths(required, blockCache); len(missing) > 0 {
				progress.RequiredPaths = missing
				progress.Elapsed += time.Since(start)
				return nil
			}
		}
		if msgs := rule.Process(progress.Block, ctx); len(msgs) > 0 {
			for _, msg := range msgs {
				errs = append(errs, &luarules.Error{File: item.SourcePath, Rule: rule.Name(), Index: progress.NextRule, Message: msg})
			}
		}
		progress.NextRule++
		progress.RequiredPaths = nil
	}

	output, err := luagen.Generate(progress.Block, progress.Source, w.Config.Generator)
	if err != nil {
		errs = append(errs, err)
	}

	item.Status = Done
	progress.Elapsed += time.Since(start)
	item.Result = &Result{Output: output, Errors: errs}
	return nil
}

func (w *Worker) usesRetainLines() bool {
	return w.Config.Generator.Style == luagen.RetainLines
}

func missingPaths(required []string, cache map[string]*luaast.Block) []string {
	var missing []string
	for _, p := range required {
		if _, ok := cache[p]; !ok {
			missing = append(missing, p)
		}
	}
	sort.Strings(missing)
	return missing
}

// formatErrors joins a work item's accumulated errors for a single
// summary line, used by callers that just need an exit status message.
func formatErrors(errs []error) string {
	parts := make([]string, len(errs))
	for i, err := range errs {
		parts[i] = err.Error()
	}
	return strings.Join(parts, "; ")
}
