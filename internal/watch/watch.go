// Package watch posts a debounced refresh notification whenever the
// repository changes on disk. It is strictly an event source: the engine's
// single event loop does all the actual work.
package watch

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/interpretive-systems/stagium/internal/debounce"
	"github.com/interpretive-systems/stagium/internal/logging"
)

const debounceDelay = 350 * time.Millisecond

// Watcher observes the repository root and its .git directory.
type Watcher struct {
	fs  *fsnotify.Watcher
	deb *debounce.Debouncer
	log logging.Logger
}

// Start begins watching repoRoot. notify is invoked (debounced) from a
// background goroutine on every relevant filesystem event; it should do
// nothing but post one message into the event loop.
func Start(repoRoot string, notify func(), log logging.Logger) (*Watcher, error) {
	fs, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("fsnotify: %w", err)
	}
	for _, path := range watchPaths(repoRoot) {
		if err := fs.Add(path); err != nil {
			fs.Close()
			return nil, fmt.Errorf("watch %s: %w", path, err)
		}
		log.Debug("watching path", "path", path)
	}
	w := &Watcher{
		fs:  fs,
		deb: debounce.New(debounceDelay, notify),
		log: log,
	}
	go w.loop()
	return w, nil
}

// Close stops the watcher and drops any pending notification.
func (w *Watcher) Close() error {
	err := w.fs.Close()
	w.deb.Stop()
	return err
}

func (w *Watcher) loop() {
	for {
		select {
		case ev, ok := <-w.fs.Events:
			if !ok {
				return
			}
			if shouldIgnore(ev.Name) {
				continue
			}
			w.log.Debug("fs event", "op", ev.Op.String(), "name", ev.Name)
			w.deb.Trigger()
		case err, ok := <-w.fs.Errors:
			if !ok {
				return
			}
			w.log.Warn("watch error", "error", err)
		}
	}
}

// watchPaths returns the directories worth observing: the worktree root and
// the parts of .git that change when the index or refs move.
func watchPaths(repoRoot string) []string {
	paths := []string{repoRoot}
	gitDir := filepath.Join(repoRoot, ".git")
	if fi, err := os.Stat(gitDir); err == nil && fi.IsDir() {
		paths = append(paths, gitDir)
		for _, sub := range []string{"refs/heads"} {
			p := filepath.Join(gitDir, filepath.FromSlash(sub))
			if fi, err := os.Stat(p); err == nil && fi.IsDir() {
				paths = append(paths, p)
			}
		}
	}
	return paths
}

// shouldIgnore filters the churn git itself produces while we mutate the
// repository: lock files and object-database writes.
func shouldIgnore(name string) bool {
	base := filepath.Base(name)
	if strings.HasSuffix(base, ".lock") || base == "FETCH_HEAD" || base == "COMMIT_EDITMSG" {
		return true
	}
	sep := string(filepath.Separator)
	return strings.Contains(name, sep+".git"+sep+"objects"+sep)
}
