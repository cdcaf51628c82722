// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pipeline

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/pdiddy/paper-ingest/internal/ledger"
)

// processedDirName is where successfully ingested files are moved within
// the batch folder.
const processedDirName = "processed"

// Summary aggregates a batch run.
type Summary struct {
	Created    int
	Duplicates int
	Failed     int
	Failures   []Failure
}

// Failure pairs a file with the error it produced.
type Failure struct {
	Path string
	Err  error
}

// Total is the number of files attempted.
func (s *Summary) Total() int {
	return s.Created + s.Duplicates + s.Failed
}

// HasFailures reports whether any file failed.
func (s *Summary) HasFailures() bool {
	return s.Failed > 0
}

// ProcessFolder ingests every PDF in dir, moving successes (including
// duplicate skips) into dir/processed. source is the catalog Source label
// applied to every paper in the folder. Files already recorded in the
// ledger as done are skipped without touching the network. Failures are
// collected, not fatal: one broken PDF must not stop the batch.
func (p *Pipeline) ProcessFolder(ctx context.Context, dir string, recursive bool, source string, led *ledger.Ledger) (*Summary, error) {
	paths, err := listPDFs(dir, recursive)
	if err != nil {
		return nil, err
	}
	if len(paths) == 0 {
		fmt.Fprintf(p.out, "No PDF files found in %s\n", dir)
		return &Summary{}, nil
	}
	fmt.Fprintf(p.out, "Found %d PDF file(s) in %s\n", len(paths), dir)

	summary := &Summary{}
	for i, path := range paths {
		if err := ctx.Err(); err != nil {
			return summary, err
		}
		if i > 0 && p.cfg.Batch.PaperDelay > 0 {
			select {
			case <-time.After(p.cfg.Batch.PaperDelay):
			case <-ctx.Done():
				return summary, ctx.Err()
			}
		}

		fmt.Fprintf(p.out, "\n[%d/%d] %s\n", i+1, len(paths), filepath.Base(path))
		p.processOne(ctx, path, dir, source, led, summary)
	}

	fmt.Fprintf(p.out, "\nDone: %d added, %d duplicates, %d failed.\n",
		summary.Created, summary.Duplicates, summary.Failed)
	for _, f := range summary.Failures {
		fmt.Fprintf(p.out, "  failed: %s: %v\n", f.Path, f.Err)
	}
	return summary, nil
}

// processOne runs a single file and folds its outcome into the summary.
func (p *Pipeline) processOne(ctx context.Context, path, root, source string, led *ledger.Ledger, summary *Summary) {
	var hash string
	if led != nil {
		var err error
		hash, err = ledger.HashFile(path)
		if err != nil {
			p.log.Warn().Err(err).Str("path", path).Msg("hashing failed, processing anyway")
		} else if done, err := led.Done(hash); err != nil {
			p.log.Warn().Err(err).Msg("ledger lookup failed")
		} else if done {
			fmt.Fprintln(p.out, "Already processed, skipping.")
			summary.Duplicates++
			p.archive(path, root)
			return
		}
	}

	result, err := p.Process(ctx, Input{PDFPath: path, SourceLabel: source})
	if err != nil {
		summary.Failed++
		summary.Failures = append(summary.Failures, Failure{Path: path, Err: err})
		p.log.Error().Err(err).Str("path", path).Msg("paper failed")
		if led != nil && hash != "" {
			if lerr := led.Record(hash, path, ledger.OutcomeFailed, err.Error()); lerr != nil {
				p.log.Warn().Err(lerr).Msg("recording failure in ledger failed")
			}
		}
		return
	}

	outcome := ledger.OutcomeSucceeded
	if result.Outcome == OutcomeDuplicate {
		outcome = ledger.OutcomeDuplicate
		summary.Duplicates++
	} else {
		summary.Created++
	}
	if led != nil && hash != "" {
		if lerr := led.Record(hash, path, outcome, result.RecordID); lerr != nil {
			p.log.Warn().Err(lerr).Msg("recording success in ledger failed")
		}
	}
	p.archive(path, root)
}

// archive moves a finished file into the processed subfolder, preserving
// its path relative to the batch root. A failed move is logged and
// ignored; the ledger prevents rework either way.
func (p *Pipeline) archive(path, root string) {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		rel = filepath.Base(path)
	}
	dest := filepath.Join(root, processedDirName, rel)
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		p.log.Warn().Err(err).Msg("creating processed folder failed")
		return
	}
	if err := os.Rename(path, dest); err != nil {
		p.log.Warn().Err(err).Str("path", path).Msg("moving processed file failed")
	}
}

// listPDFs returns the PDFs in dir, sorted for a stable processing order.
// The processed subfolder is never descended into.
func listPDFs(dir string, recursive bool) ([]string, error) {
	var paths []string
	if recursive {
		err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				if d.Name() == processedDirName {
					return filepath.SkipDir
				}
				return nil
			}
			if isPDF(d.Name()) {
				paths = append(paths, path)
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("scanning %s: %w", dir, err)
		}
	} else {
		entries, err := os.ReadDir(dir)
		if err != nil {
			return nil, fmt.Errorf("scanning %s: %w", dir, err)
		}
		for _, e := range entries {
			if !e.IsDir() && isPDF(e.Name()) {
				paths = append(paths, filepath.Join(dir, e.Name()))
			}
		}
	}
	sort.Strings(paths)
	return paths, nil
}

func isPDF(name string) bool {
	return strings.EqualFold(filepath.Ext(name), ".pdf")
}
