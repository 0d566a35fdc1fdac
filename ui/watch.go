package ui

import (
	"fmt"
	"path/filepath"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/fsnotify/fsnotify"
	"golang.org/x/time/rate"
)

const defaultWatchInterval = 5 * time.Second

type (
	transcriptChangedMsg struct{}
	transcriptRetryMsg   struct{}
)

// transcriptWatcher reports writes to a transcript file. Editors often write
// a file several times per save, so re-summarizing is rate limited.
type transcriptWatcher struct {
	path     string
	interval time.Duration
	watcher  *fsnotify.Watcher
	limiter  *rate.Limiter
}

func newTranscriptWatcher(path string, interval time.Duration) (*transcriptWatcher, error) {
	if interval <= 0 {
		interval = defaultWatchInterval
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("unable to get absolute path: %w", err)
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("error creating fsnotify watcher: %w", err)
	}

	// Watch the directory, not the file, so atomic saves that replace the
	// file are still seen.
	dir := filepath.Dir(abs)
	if err := w.Add(dir); err != nil {
		_ = w.Close()
		return nil, fmt.Errorf("error adding dir to fsnotify watcher: %w", err)
	}
	log.Info("fsnotify watching dir", "dir", dir)

	tw := &transcriptWatcher{
		path:     abs,
		interval: interval,
		watcher:  w,
		// The initial load spends the only token.
		limiter: rate.NewLimiter(rate.Every(interval), 1),
	}
	tw.limiter.Allow()
	return tw, nil
}

// wait blocks until the transcript is written or created.
func (w *transcriptWatcher) wait() tea.Msg {
	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != w.path {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}

			log.Debug("fsnotify event", "file", event.Name, "event", event.Op)
			return transcriptChangedMsg{}
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			log.Debug("fsnotify error", "file", w.path, "error", err)
		}
	}
}

// allow reports whether a change may trigger a new summary now.
func (w *transcriptWatcher) allow() bool {
	return w.limiter.Allow()
}

func (w *transcriptWatcher) Close() error {
	if err := w.watcher.Close(); err != nil {
		return fmt.Errorf("unable to close watcher: %w", err)
	}
	return nil
}
