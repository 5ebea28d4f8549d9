// Package filesystem discovers markdown documents in a directory tree and
// watches the tree for changes.
package filesystem

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"

	"github.com/custodia-labs/pelagia/internal/core/domain"
	"github.com/custodia-labs/pelagia/internal/core/ports/driven"
	"github.com/custodia-labs/pelagia/internal/logger"
	"github.com/custodia-labs/pelagia/internal/slug"
)

// Ensure Connector implements the interfaces.
var (
	_ driven.CorpusLoader = (*Connector)(nil)
	_ driven.Watcher      = (*Connector)(nil)
)

// markdownExts are matched case-insensitively.
var markdownExts = map[string]bool{".md": true, ".markdown": true}

// Connector reads corpora from the local filesystem.
type Connector struct {
	mu       sync.Mutex
	closed   bool
	watchers []*fsnotify.Watcher
}

// New creates a filesystem connector.
func New() *Connector {
	return &Connector{}
}

// Load discovers the markdown files under root, reads them and rotates
// the order so that start comes first.
func (c *Connector) Load(ctx context.Context, root, start string) (*domain.Corpus, error) {
	root, err := ResolveRoot(root)
	if err != nil {
		return nil, err
	}

	startPath := start
	if !filepath.IsAbs(startPath) {
		startPath = filepath.Join(root, startPath)
	}
	if !IsMarkdownFile(startPath) {
		return nil, fmt.Errorf("start: %w: %s", domain.ErrNotMarkdown, startPath)
	}

	files, err := Discover(ctx, root)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("%w under: %s", domain.ErrEmptyCorpus, root)
	}

	files, err = Rotate(files, startPath)
	if err != nil {
		return nil, err
	}

	corpus := &domain.Corpus{Root: root, Documents: make([]domain.SourceDocument, 0, len(files))}
	for _, path := range files {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		doc, err := readDocument(root, path)
		if err != nil {
			return nil, err
		}
		corpus.Documents = append(corpus.Documents, doc)
	}
	logger.Debug("loaded %d documents from %s", len(corpus.Documents), root)
	return corpus, nil
}

// ResolveRoot returns the absolute, symlink-free form of a corpus folder.
func ResolveRoot(root string) (string, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return "", fmt.Errorf("%w: %s", domain.ErrCorpusMissing, root)
	}
	resolved, err := filepath.EvalSymlinks(abs)
	if err != nil {
		return "", fmt.Errorf("%w: %s", domain.ErrCorpusMissing, abs)
	}
	info, err := os.Stat(resolved)
	if err != nil || !info.IsDir() {
		return "", fmt.Errorf("%w: %s", domain.ErrCorpusMissing, resolved)
	}
	return resolved, nil
}

// Discover returns every markdown file under root, sorted by lowercased
// slash path. Symlinked files are included; symlinked directories are not
// descended into.
func Discover(ctx context.Context, root string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		if IsMarkdownFile(path) {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scan %s: %w", root, err)
	}

	sort.SliceStable(files, func(i, j int) bool {
		return sortKey(files[i]) < sortKey(files[j])
	})
	return files, nil
}

func sortKey(path string) string {
	return strings.ToLower(filepath.ToSlash(path))
}

// IsMarkdown reports whether path has a markdown extension.
func IsMarkdown(path string) bool {
	return markdownExts[strings.ToLower(filepath.Ext(path))]
}

// IsMarkdownFile reports whether path is a regular file, after following
// symlinks, with a markdown extension.
func IsMarkdownFile(path string) bool {
	if !IsMarkdown(path) {
		return false
	}
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}

// Rotate returns files reordered to begin at start. Paths are compared
// after resolving symlinks.
func Rotate(files []string, start string) ([]string, error) {
	target := resolved(start)
	for i, path := range files {
		if resolved(path) == target {
			rotated := make([]string, 0, len(files))
			rotated = append(rotated, files[i:]...)
			return append(rotated, files[:i]...), nil
		}
	}
	return nil, fmt.Errorf("%w: %s", domain.ErrStartNotFound, start)
}

func resolved(path string) string {
	if real, err := filepath.EvalSymlinks(path); err == nil {
		return real
	}
	return filepath.Clean(path)
}

// readDocument reads one file. Invalid UTF-8 is replaced rather than rejected.
func readDocument(root, path string) (domain.SourceDocument, error) {
	rel, err := slug.RelPath(root, path)
	if err != nil {
		return domain.SourceDocument{}, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return domain.SourceDocument{}, fmt.Errorf("read %s: %w", rel, err)
	}
	return domain.SourceDocument{
		RelPath: rel,
		AbsPath: path,
		Content: strings.ToValidUTF8(string(data), "\uFFFD"),
	}, nil
}

// Watch emits a change for every markdown file created, written, removed
// or renamed under root. New directories are added to the watch as they
// appear. The channel is closed when ctx is cancelled.
func (c *Connector) Watch(ctx context.Context, root string) (<-chan domain.Change, error) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil, errors.New("connector is closed")
	}
	c.mu.Unlock()

	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("root path error: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("root path error: %s is not a directory", root)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	if err := addTree(watcher, root); err != nil {
		_ = watcher.Close()
		return nil, err
	}

	c.mu.Lock()
	c.watchers = append(c.watchers, watcher)
	c.mu.Unlock()

	changes := make(chan domain.Change)
	go func() {
		defer close(changes)
		defer watcher.Close()

		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if event.Has(fsnotify.Create) {
					if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
						if err := addTree(watcher, event.Name); err != nil {
							logger.Warn("watch %s: %v", event.Name, err)
						}
						continue
					}
				}
				change := c.handleFsEvent(event)
				if change == nil {
					continue
				}
				select {
				case changes <- *change:
				case <-ctx.Done():
					return
				}
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				logger.Warn("watch: %v", err)
			}
		}
	}()

	return changes, nil
}

// handleFsEvent maps an fsnotify event to a change, or nil when the event
// does not concern a markdown file.
func (c *Connector) handleFsEvent(event fsnotify.Event) *domain.Change {
	if !IsMarkdown(event.Name) {
		return nil
	}

	switch {
	case event.Has(fsnotify.Remove), event.Has(fsnotify.Rename):
		return &domain.Change{Path: event.Name, Type: domain.ChangeDeleted}
	case event.Has(fsnotify.Create):
		return &domain.Change{Path: event.Name, Type: domain.ChangeCreated}
	case event.Has(fsnotify.Write):
		return &domain.Change{Path: event.Name, Type: domain.ChangeUpdated}
	default:
		return nil
	}
}

func addTree(watcher *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if err := watcher.Add(path); err != nil {
			return fmt.Errorf("watch %s: %w", path, err)
		}
		return nil
	})
}

// Close stops all watchers. Watch fails after Close.
func (c *Connector) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.closed = true
	var errs []error
	for _, w := range c.watchers {
		if err := w.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	c.watchers = nil
	return errors.Join(errs...)
}
