// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/pdiddy/paper-ingest/internal/ledger"
)

// settleDelay gives a newly created file time to finish writing before
// the pipeline opens it. Browsers and download managers create the file
// first and stream into it.
const settleDelay = 2 * time.Second

// Watch processes the folder once, then keeps processing as files arrive,
// until ctx is cancelled. Filesystem events trigger a scan after a short
// settle delay; a periodic rescan catches events the watcher missed.
func (p *Pipeline) Watch(ctx context.Context, dir, source string, led *ledger.Ledger) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("starting watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("watching %s: %w", dir, err)
	}

	if _, err := p.ProcessFolder(ctx, dir, false, source, led); err != nil {
		return err
	}
	fmt.Fprintf(p.out, "\nWatching %s for new papers (Ctrl-C to stop)...\n", dir)

	interval := p.cfg.Batch.RescanInterval
	if interval <= 0 {
		interval = 30 * time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			if !isPDF(event.Name) {
				continue
			}
			select {
			case <-time.After(settleDelay):
			case <-ctx.Done():
				return ctx.Err()
			}
			if _, err := p.ProcessFolder(ctx, dir, false, source, led); err != nil {
				return err
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			p.log.Warn().Err(err).Msg("watcher error")

		case <-ticker.C:
			if _, err := p.ProcessFolder(ctx, dir, false, source, led); err != nil {
				return err
			}
		}
	}
}
