// Package watchonce provides a bounded, single-shot "wait for the next
// filesystem settle" helper built on fsnotify. It is deliberately not a
// daemon: the engine has no long-running server, so this is a helper for
// interactive callers that want to wait for one batch of writes to finish
// before re-reading, then return. No command in cmd/lattice calls it.
package watchonce

import (
	"context"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce is how long Wait lets writes settle before returning,
// matching the debounce window the reference CLI uses for its own watch
// mode.
const DefaultDebounce = 500 * time.Millisecond

// Options controls what Wait watches for and how long it debounces.
type Options struct {
	// Dir is the directory to watch (non-recursively).
	Dir string
	// Suffixes restricts triggering events to files whose basename ends
	// in one of these; empty means any write triggers.
	Suffixes []string
	// Debounce is how long to wait after the last matching event before
	// returning. Zero uses DefaultDebounce.
	Debounce time.Duration
}

// Wait blocks until a single filesystem-settle event is observed under
// opts.Dir (a write followed by Debounce with no further writes), ctx is
// canceled, or an error occurs. It watches exactly one directory and
// returns after the first settled batch — callers that want to keep
// watching call Wait again.
func Wait(ctx context.Context, opts Options) error {
	debounce := opts.Debounce
	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	if err := watcher.Add(opts.Dir); err != nil {
		return err
	}

	var timer *time.Timer
	var timerC <-chan time.Time

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			if !matchesSuffix(event.Name, opts.Suffixes) {
				continue
			}
			if timer != nil {
				timer.Stop()
			}
			timer = time.NewTimer(debounce)
			timerC = timer.C

		case <-timerC:
			return nil

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			return err
		}
	}
}

func matchesSuffix(path string, suffixes []string) bool {
	if len(suffixes) == 0 {
		return true
	}
	base := filepath.Base(path)
	for _, s := range suffixes {
		if strings.HasSuffix(base, s) {
			return true
		}
	}
	return false
}
