// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package deck

import (
	"context"
	"fmt"
	"log"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// debounce collapses editor write bursts into one reload.
const debounce = 150 * time.Millisecond

// Watch reloads the deck whenever its source file changes and delivers
// the fresh parse to onReload. Runs until ctx is canceled. Editors that
// replace the file (rename-over) are handled by watching the directory.
func Watch(ctx context.Context, path string, onReload func(*Deck)) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		w.Close()
		return fmt.Errorf("resolve deck path: %w", err)
	}
	if err := w.Add(filepath.Dir(abs)); err != nil {
		w.Close()
		return fmt.Errorf("watch deck dir: %w", err)
	}

	go func() {
		defer w.Close()

		var pending *time.Timer
		var pendingC <-chan time.Time
		for {
			select {
			case <-ctx.Done():
				return

			case ev, ok := <-w.Events:
				if !ok {
					return
				}
				if filepath.Clean(ev.Name) != abs {
					continue
				}
				if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Rename) {
					continue
				}
				if pending == nil {
					pending = time.NewTimer(debounce)
					pendingC = pending.C
				} else {
					pending.Reset(debounce)
				}

			case <-pendingC:
				pending = nil
				pendingC = nil
				d, err := Load(abs)
				if err != nil {
					// The editor may still be mid-save; the next event
					// retries.
					log.Printf("deck: reload %s: %v", abs, err)
					continue
				}
				onReload(d)

			case err, ok := <-w.Errors:
				if !ok {
					return
				}
				log.Printf("deck: watch error: %v", err)
			}
		}
	}()
	return nil
}
