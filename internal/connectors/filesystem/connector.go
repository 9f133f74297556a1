// Package filesystem picks up financial documents from a local folder.
// It is the only built-in connector: statements are downloaded as text,
// markdown, or CSV exports and dropped into a directory for ingestion.
package filesystem

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"

	"github.com/finsight-labs/finsight-cli/internal/core/domain"
	"github.com/finsight-labs/finsight-cli/internal/core/ports/driven"
)

// Ensure Connector implements the interface.
var _ driven.Connector = (*Connector)(nil)

// mimeTypes maps supported file extensions to MIME types.
// Files with other extensions are ignored.
var mimeTypes = map[string]string{
	".txt": "text/plain",
	".md":  "text/markdown",
	".csv": "text/csv",
}

// Connector reads eligible files from a root directory.
type Connector struct {
	rootPath string

	mu      sync.Mutex
	watcher *fsnotify.Watcher
}

// New creates a filesystem connector rooted at the given path.
func New(rootPath string) *Connector {
	return &Connector{rootPath: rootPath}
}

// Type returns the connector type identifier.
func (c *Connector) Type() string {
	return "filesystem"
}

// Validate checks the root path exists and is a directory.
func (c *Connector) Validate(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	info, err := os.Stat(c.rootPath)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("root path %q does not exist", c.rootPath)
		}
		return fmt.Errorf("root path error: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("root path %q is not a directory", c.rootPath)
	}
	return nil
}

// Scan walks the root directory and emits every supported file.
// Hidden files and directories are skipped. Both channels close when
// the walk finishes or the context is cancelled.
func (c *Connector) Scan(ctx context.Context) (<-chan domain.RawDocument, <-chan error) {
	docs := make(chan domain.RawDocument)
	errs := make(chan error, 1)

	go func() {
		defer close(docs)
		defer close(errs)

		if err := c.Validate(ctx); err != nil {
			errs <- err
			return
		}

		_ = filepath.WalkDir(c.rootPath, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				sendErr(errs, err)
				return nil
			}
			if ctx.Err() != nil {
				return ctx.Err()
			}

			name := d.Name()
			if d.IsDir() {
				if isHidden(name) && path != c.rootPath {
					return filepath.SkipDir
				}
				return nil
			}
			if isHidden(name) {
				return nil
			}

			mime, ok := mimeTypes[strings.ToLower(filepath.Ext(name))]
			if !ok {
				return nil
			}

			content, err := os.ReadFile(path)
			if err != nil {
				sendErr(errs, fmt.Errorf("read %s: %w", path, err))
				return nil
			}

			select {
			case docs <- domain.RawDocument{
				URI:      path,
				MIMEType: mime,
				Content:  content,
			}:
			case <-ctx.Done():
				return ctx.Err()
			}
			return nil
		})
	}()

	return docs, errs
}

// Watch emits a change event for every supported file created, written,
// or removed under the root. Directories created while watching are
// added to the watch set. The channel closes when the context is
// cancelled or the connector is closed.
func (c *Connector) Watch(ctx context.Context) (<-chan domain.RawDocumentChange, error) {
	if err := c.Validate(ctx); err != nil {
		return nil, fmt.Errorf("root path error: %w", err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}

	// Watch the root and every existing subdirectory.
	err = filepath.WalkDir(c.rootPath, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if isHidden(d.Name()) && path != c.rootPath {
			return filepath.SkipDir
		}
		return watcher.Add(path)
	})
	if err != nil {
		watcher.Close()
		return nil, fmt.Errorf("watch %s: %w", c.rootPath, err)
	}

	c.mu.Lock()
	c.watcher = watcher
	c.mu.Unlock()

	changes := make(chan domain.RawDocumentChange)

	go func() {
		defer close(changes)

		for {
			select {
			case <-ctx.Done():
				return

			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				// New directories join the watch set so drops into
				// them are seen.
				if event.Op.Has(fsnotify.Create) {
					if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
						if !isHidden(filepath.Base(event.Name)) {
							_ = watcher.Add(event.Name)
						}
						continue
					}
				}
				change, ok := toChange(event)
				if !ok {
					continue
				}
				select {
				case changes <- change:
				case <-ctx.Done():
					return
				}

			case _, ok := <-watcher.Errors:
				if !ok {
					return
				}
				// Watcher errors are overflow notices; the next event
				// for an affected file re-synchronises state.
			}
		}
	}()

	return changes, nil
}

// toChange converts an fsnotify event to a document change.
// Returns false for events on unsupported or hidden files.
func toChange(event fsnotify.Event) (domain.RawDocumentChange, bool) {
	name := filepath.Base(event.Name)
	if isHidden(name) {
		return domain.RawDocumentChange{}, false
	}

	mime, supported := mimeTypes[strings.ToLower(filepath.Ext(name))]
	if !supported {
		return domain.RawDocumentChange{}, false
	}

	doc := domain.RawDocument{URI: event.Name, MIMEType: mime}

	switch {
	case event.Op.Has(fsnotify.Create):
		content, err := os.ReadFile(event.Name)
		if err != nil {
			return domain.RawDocumentChange{}, false
		}
		doc.Content = content
		return domain.RawDocumentChange{Type: domain.ChangeCreated, Document: doc}, true

	case event.Op.Has(fsnotify.Write):
		content, err := os.ReadFile(event.Name)
		if err != nil {
			return domain.RawDocumentChange{}, false
		}
		doc.Content = content
		return domain.RawDocumentChange{Type: domain.ChangeUpdated, Document: doc}, true

	case event.Op.Has(fsnotify.Remove), event.Op.Has(fsnotify.Rename):
		return domain.RawDocumentChange{Type: domain.ChangeDeleted, Document: doc}, true

	default:
		return domain.RawDocumentChange{}, false
	}
}

// Close stops any active watcher.
func (c *Connector) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.watcher != nil {
		err := c.watcher.Close()
		c.watcher = nil
		return err
	}
	return nil
}

// sendErr delivers err without blocking; only the first error is kept.
func sendErr(errs chan<- error, err error) {
	select {
	case errs <- err:
	default:
	}
}

// isHidden reports whether a file or directory name is dot-prefixed.
func isHidden(name string) bool {
	return strings.HasPrefix(name, ".") && name != "." && name != ".."
}
