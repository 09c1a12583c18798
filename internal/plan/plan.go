package plan

import (
	"fmt"
	"os"
	"path/filepath"

	"imgur-archiver/internal/album"
	"imgur-archiver/internal/model"
)

// Action is the per-file decision of a reconciliation pass.
type Action int

const (
	// ActionSkip means a regular file already exists at the destination
	// path with exactly the expected size.
	ActionSkip Action = iota
	// ActionFetch means the file is missing, partial, or size-mismatched
	// and must be transferred.
	ActionFetch
)

// Entry pairs a catalog file with its destination path and decision.
type Entry struct {
	File   model.RemoteFile
	Path   string
	Action Action
}

// Plan is the fetch/skip decision for every catalog entry, in catalog
// order. Built once per run and read-only afterwards.
type Plan struct {
	Dir     string
	Entries []Entry
}

// FetchCount returns the number of entries marked for transfer.
func (p Plan) FetchCount() int {
	n := 0
	for _, e := range p.Entries {
		if e.Action == ActionFetch {
			n++
		}
	}
	return n
}

// SkipCount returns the number of entries already present on disk.
func (p Plan) SkipCount() int {
	return len(p.Entries) - p.FetchCount()
}

// Build reconciles the destination directory against a catalog. A file
// is skipped only when a regular file of exactly the expected size sits
// at its destination path; everything else is fetched. The directory is
// created if absent. Only metadata is read, file contents are never
// inspected and existing files are never modified.
func Build(destDir string, catalog model.Catalog) (Plan, error) {
	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return Plan{}, fmt.Errorf("create destination directory: %w", err)
	}

	total := len(catalog.Files)
	entries := make([]Entry, 0, total)
	for _, f := range catalog.Files {
		path := filepath.Join(destDir, album.FileName(f.Position, total, f.Ext))
		action := ActionFetch
		if info, err := os.Stat(path); err == nil && info.Mode().IsRegular() && info.Size() == f.Size {
			action = ActionSkip
		}
		entries = append(entries, Entry{File: f, Path: path, Action: action})
	}

	return Plan{Dir: destDir, Entries: entries}, nil
}
