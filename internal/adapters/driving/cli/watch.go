package cli

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/custodia-labs/corpus/internal/core/ports/driving"
	"github.com/custodia-labs/corpus/internal/core/services"
	"github.com/custodia-labs/corpus/internal/logger"
)

// defaultWatchDebounce coalesces the burst of events an editor save produces.
const defaultWatchDebounce = 500 * time.Millisecond

var watchCmd = &cobra.Command{
	Use:   "watch [project-id] [dir]",
	Short: "Keep a project in step with a directory",
	Long: `Watches a directory and uploads and indexes files as they are created
or modified. A modified file replaces the document of the same name. A
removed file deletes its document. Use --initial to upload the files
already in the directory first. Runs until interrupted.`,
	Args: cobra.ExactArgs(2),
	RunE: runWatch,
}

var watchInitial bool

func init() {
	watchCmd.Flags().BoolVar(&watchInitial, "initial", false, "upload existing files before watching")
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	if documentService == nil || ingestionService == nil {
		return errors.New("document services not configured")
	}

	projectID, dir := args[0], args[1]
	ctx := cmd.Context()

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer fw.Close()
	if err := fw.Add(dir); err != nil {
		return fmt.Errorf("failed to watch %s: %w", dir, err)
	}

	queue := services.NewIngestQueue(ctx, ingestionService, ingestWorkers,
		services.WithQueueMetrics(appMetrics),
		services.WithResultHandler(func(r services.IngestResult) {
			if r.Err != nil {
				cmd.Printf("  %s: %s (%v)\n", r.DocumentID, r.Status, r.Err)
				return
			}
			cmd.Printf("  %s: %s\n", r.DocumentID, r.Status)
		}))
	defer queue.Close()

	w, err := newDirWatcher(ctx, projectID, documentService, queue, defaultWatchDebounce)
	if err != nil {
		return err
	}
	defer w.stop()

	if watchInitial {
		if err := w.syncExisting(ctx, dir); err != nil {
			return err
		}
	}

	cmd.Printf("Watching %s for project %s. Press Ctrl+C to stop.\n", dir, projectID)
	return w.run(ctx, fw)
}

// dirWatcher maps file events in one directory to document uploads and deletions.
type dirWatcher struct {
	projectID string
	documents driving.DocumentService
	queue     driving.IngestQueue
	debounce  time.Duration
	ctx       context.Context

	mu     sync.Mutex
	timers map[string]*time.Timer
	byName map[string]string

	// handling serialises uploads and deletions.
	handling sync.Mutex
}

func newDirWatcher(
	ctx context.Context,
	projectID string,
	documents driving.DocumentService,
	queue driving.IngestQueue,
	debounce time.Duration,
) (*dirWatcher, error) {
	docs, err := documents.List(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to list documents: %w", err)
	}

	// Oldest first, so the newest document wins for a repeated name.
	byName := make(map[string]string, len(docs))
	for i := range docs {
		byName[docs[i].Name] = docs[i].ID
	}

	return &dirWatcher{
		projectID: projectID,
		documents: documents,
		queue:     queue,
		debounce:  debounce,
		ctx:       ctx,
		timers:    make(map[string]*time.Timer),
		byName:    byName,
	}, nil
}

// run dispatches events until ctx is cancelled or the watcher closes.
func (w *dirWatcher) run(ctx context.Context, fw *fsnotify.Watcher) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-fw.Events:
			if !ok {
				return nil
			}
			w.handleEvent(ev)
		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			logger.Warn("Watch error: %v", err)
		}
	}
}

func (w *dirWatcher) handleEvent(ev fsnotify.Event) {
	if ignoredFile(ev.Name) {
		return
	}
	if ev.Has(fsnotify.Create) || ev.Has(fsnotify.Write) || ev.Has(fsnotify.Remove) || ev.Has(fsnotify.Rename) {
		logger.Debug("Watch event %s", ev)
		w.schedule(ev.Name)
	}
}

// schedule handles path once no further events arrive for it within the debounce window.
func (w *dirWatcher) schedule(path string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if t, ok := w.timers[path]; ok {
		t.Reset(w.debounce)
		return
	}
	w.timers[path] = time.AfterFunc(w.debounce, func() {
		w.mu.Lock()
		delete(w.timers, path)
		w.mu.Unlock()
		if err := w.handle(w.ctx, path); err != nil {
			logger.Warn("Watch %s: %v", path, err)
		}
	})
}

func (w *dirWatcher) stop() {
	w.mu.Lock()
	defer w.mu.Unlock()
	for path, t := range w.timers {
		t.Stop()
		delete(w.timers, path)
	}
}

// handle uploads path, replacing any document with the same name, or
// deletes that document when path no longer exists.
func (w *dirWatcher) handle(ctx context.Context, path string) error {
	w.handling.Lock()
	defer w.handling.Unlock()

	name := filepath.Base(path)
	info, err := os.Stat(path)
	if errors.Is(err, fs.ErrNotExist) {
		return w.remove(ctx, name)
	}
	if err != nil {
		return err
	}
	if !info.Mode().IsRegular() {
		return nil
	}

	if err := w.remove(ctx, name); err != nil {
		return err
	}
	doc, err := uploadFile(ctx, w.documents, w.projectID, path)
	if err != nil {
		return err
	}
	w.mu.Lock()
	w.byName[name] = doc.ID
	w.mu.Unlock()

	logger.Info("Watch: uploaded %s as %s", name, doc.ID)
	return w.queue.Submit(doc.ID)
}

func (w *dirWatcher) remove(ctx context.Context, name string) error {
	w.mu.Lock()
	id, ok := w.byName[name]
	w.mu.Unlock()
	if !ok {
		return nil
	}

	if err := w.documents.Delete(ctx, w.projectID, id); err != nil {
		return fmt.Errorf("failed to delete previous version of %s: %w", name, err)
	}
	w.mu.Lock()
	delete(w.byName, name)
	w.mu.Unlock()
	logger.Info("Watch: removed document %s (%s)", id, name)
	return nil
}

// syncExisting uploads every regular file in dir that has no document yet.
func (w *dirWatcher) syncExisting(ctx context.Context, dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", dir, err)
	}
	for _, e := range entries {
		if !e.Type().IsRegular() || ignoredFile(e.Name()) {
			continue
		}
		w.mu.Lock()
		_, known := w.byName[e.Name()]
		w.mu.Unlock()
		if known {
			continue
		}
		if err := w.handle(ctx, filepath.Join(dir, e.Name())); err != nil {
			return err
		}
	}
	return nil
}

// ignoredFile skips hidden files and editor temporaries.
func ignoredFile(path string) bool {
	name := filepath.Base(path)
	return strings.HasPrefix(name, ".") ||
		strings.HasSuffix(name, "~") ||
		strings.HasSuffix(name, ".swp") ||
		strings.HasSuffix(name, ".tmp")
}
