package filesystem

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/finsight-labs/finsight-cli/internal/core/domain"
	"github.com/finsight-labs/finsight-cli/internal/core/ports/driven"
)

func TestNew(t *testing.T) {
	t.Run("creates connector with root path", func(t *testing.T) {
		connector := New("/tmp/statements")

		require.NotNil(t, connector)
		assert.Equal(t, "/tmp/statements", connector.rootPath)
	})

	t.Run("implements Connector interface", func(t *testing.T) {
		connector := New("/tmp")
		var _ driven.Connector = connector
	})
}

func TestConnector_Type(t *testing.T) {
	t.Run("returns filesystem type", func(t *testing.T) {
		connector := New("/tmp/statements")

		assert.Equal(t, "filesystem", connector.Type())
	})
}

func TestConnector_Validate(t *testing.T) {
	tests := []struct {
		name          string
		setup         func(t *testing.T) string
		expectError   bool
		errorContains string
	}{
		{
			name: "valid directory succeeds",
			setup: func(t *testing.T) string {
				return t.TempDir()
			},
			expectError: false,
		},
		{
			name: "non-existent path returns error",
			setup: func(t *testing.T) string {
				return "/non/existent/path/12345"
			},
			expectError:   true,
			errorContains: "does not exist",
		},
		{
			name: "file instead of directory returns error",
			setup: func(t *testing.T) string {
				dir := t.TempDir()
				path := filepath.Join(dir, "file.txt")
				require.NoError(t, os.WriteFile(path, []byte("content"), 0644))
				return path
			},
			expectError:   true,
			errorContains: "not a directory",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			connector := New(tt.setup(t))

			err := connector.Validate(context.Background())

			if tt.expectError {
				assert.Error(t, err)
				if tt.errorContains != "" {
					assert.Contains(t, err.Error(), tt.errorContains)
				}
			} else {
				assert.NoError(t, err)
			}
		})
	}

	t.Run("context cancellation", func(t *testing.T) {
		connector := New(t.TempDir())
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		err := connector.Validate(ctx)

		assert.Error(t, err)
		assert.Equal(t, context.Canceled, err)
	})
}

func TestConnector_Scan(t *testing.T) {
	t.Run("scans supported files from directory", func(t *testing.T) {
		tempDir := t.TempDir()

		require.NoError(t, os.WriteFile(filepath.Join(tempDir, "statement.txt"), []byte("content 1"), 0644))
		require.NoError(t, os.WriteFile(filepath.Join(tempDir, "notes.md"), []byte("# Notes"), 0644))
		require.NoError(t, os.WriteFile(filepath.Join(tempDir, "export.csv"), []byte("Date,Amount"), 0644))

		connector := New(tempDir)

		docsChan, errsChan := connector.Scan(context.Background())

		var docs []domain.RawDocument
		for doc := range docsChan {
			docs = append(docs, doc)
		}
		for err := range errsChan {
			t.Fatalf("unexpected error: %v", err)
		}

		assert.Len(t, docs, 3)
	})

	t.Run("skips unsupported extensions", func(t *testing.T) {
		tempDir := t.TempDir()

		require.NoError(t, os.WriteFile(filepath.Join(tempDir, "statement.txt"), []byte("keep"), 0644))
		require.NoError(t, os.WriteFile(filepath.Join(tempDir, "statement.pdf"), []byte("skip"), 0644))
		require.NoError(t, os.WriteFile(filepath.Join(tempDir, "photo.png"), []byte("skip"), 0644))
		require.NoError(t, os.WriteFile(filepath.Join(tempDir, "noext"), []byte("skip"), 0644))

		connector := New(tempDir)

		docsChan, _ := connector.Scan(context.Background())

		var docs []domain.RawDocument
		for doc := range docsChan {
			docs = append(docs, doc)
		}

		require.Len(t, docs, 1)
		assert.Contains(t, docs[0].URI, "statement.txt")
	})

	t.Run("skips hidden files", func(t *testing.T) {
		tempDir := t.TempDir()

		require.NoError(t, os.WriteFile(filepath.Join(tempDir, "visible.txt"), []byte("visible"), 0644))
		require.NoError(t, os.WriteFile(filepath.Join(tempDir, ".hidden.txt"), []byte("hidden"), 0644))

		connector := New(tempDir)

		docsChan, _ := connector.Scan(context.Background())

		var docs []domain.RawDocument
		for doc := range docsChan {
			docs = append(docs, doc)
		}

		require.Len(t, docs, 1)
		assert.Contains(t, docs[0].URI, "visible.txt")
	})

	t.Run("skips hidden directories", func(t *testing.T) {
		tempDir := t.TempDir()

		hiddenDir := filepath.Join(tempDir, ".archive")
		require.NoError(t, os.Mkdir(hiddenDir, 0755))
		require.NoError(t, os.WriteFile(filepath.Join(hiddenDir, "old.txt"), []byte("old"), 0644))
		require.NoError(t, os.WriteFile(filepath.Join(tempDir, "current.txt"), []byte("current"), 0644))

		connector := New(tempDir)

		docsChan, _ := connector.Scan(context.Background())

		var docs []domain.RawDocument
		for doc := range docsChan {
			docs = append(docs, doc)
		}

		require.Len(t, docs, 1)
		assert.Contains(t, docs[0].URI, "current.txt")
	})

	t.Run("walks subdirectories", func(t *testing.T) {
		tempDir := t.TempDir()

		nested := filepath.Join(tempDir, "2025", "january")
		require.NoError(t, os.MkdirAll(nested, 0755))
		require.NoError(t, os.WriteFile(filepath.Join(tempDir, "root.txt"), []byte("r"), 0644))
		require.NoError(t, os.WriteFile(filepath.Join(nested, "statement.csv"), []byte("Date,Amount"), 0644))

		connector := New(tempDir)

		docsChan, _ := connector.Scan(context.Background())

		var docs []domain.RawDocument
		for doc := range docsChan {
			docs = append(docs, doc)
		}

		assert.Len(t, docs, 2)
	})

	t.Run("sets MIME type and content", func(t *testing.T) {
		tempDir := t.TempDir()

		files := map[string]string{
			"statement.txt": "text/plain",
			"notes.md":      "text/markdown",
			"export.csv":    "text/csv",
		}
		for name := range files {
			require.NoError(t, os.WriteFile(filepath.Join(tempDir, name), []byte("content"), 0644))
		}

		connector := New(tempDir)

		docsChan, _ := connector.Scan(context.Background())

		docMap := make(map[string]domain.RawDocument)
		for doc := range docsChan {
			docMap[filepath.Base(doc.URI)] = doc
		}

		for name, expectedMIME := range files {
			doc, ok := docMap[name]
			require.True(t, ok, "missing document for %s", name)
			assert.Equal(t, expectedMIME, doc.MIMEType)
			assert.Equal(t, []byte("content"), doc.Content)
		}
	})

	t.Run("empty directory yields no documents", func(t *testing.T) {
		connector := New(t.TempDir())

		docsChan, errsChan := connector.Scan(context.Background())

		var docs []domain.RawDocument
		for doc := range docsChan {
			docs = append(docs, doc)
		}
		for range errsChan {
		}

		assert.Empty(t, docs)
	})

	t.Run("non-existent directory sends error", func(t *testing.T) {
		connector := New("/non/existent/path")

		docsChan, errsChan := connector.Scan(context.Background())

		for range docsChan {
		}

		select {
		case err := <-errsChan:
			require.Error(t, err)
			assert.Contains(t, err.Error(), "does not exist")
		case <-time.After(100 * time.Millisecond):
			t.Fatal("expected error for non-existent directory")
		}
	})

	t.Run("cancelled context closes channels", func(t *testing.T) {
		tempDir := t.TempDir()
		connector := New(tempDir)

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		docsChan, errsChan := connector.Scan(ctx)

		require.NotNil(t, docsChan)
		require.NotNil(t, errsChan)

		for range docsChan {
		}
		for range errsChan {
		}
	})

	t.Run("cancellation during walk stops early", func(t *testing.T) {
		tempDir := t.TempDir()

		for i := 0; i < 100; i++ {
			require.NoError(t, os.WriteFile(
				filepath.Join(tempDir, fmt.Sprintf("file%d.txt", i)),
				[]byte(fmt.Sprintf("content %d", i)),
				0644,
			))
		}

		connector := New(tempDir)
		ctx, cancel := context.WithCancel(context.Background())

		docsChan, errsChan := connector.Scan(ctx)

		go func() {
			time.Sleep(10 * time.Millisecond)
			cancel()
		}()

		for range docsChan {
		}
		for range errsChan {
		}
	})
}

func TestConnector_Watch(t *testing.T) {
	t.Run("emits created for new file", func(t *testing.T) {
		tempDir := t.TempDir()
		connector := New(tempDir)
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		changesChan, err := connector.Watch(ctx)
		require.NoError(t, err)
		require.NotNil(t, changesChan)

		testFile := filepath.Join(tempDir, "new-statement.txt")
		go func() {
			time.Sleep(50 * time.Millisecond)
			os.WriteFile(testFile, []byte("content"), 0644)
		}()

		select {
		case change := <-changesChan:
			assert.Equal(t, domain.ChangeCreated, change.Type)
			assert.Contains(t, change.Document.URI, "new-statement.txt")
			assert.Equal(t, "text/plain", change.Document.MIMEType)
			assert.Equal(t, []byte("content"), change.Document.Content)
		case <-time.After(500 * time.Millisecond):
			t.Fatal("timeout waiting for create event")
		}

		cancel()
		connector.Close()
	})

	t.Run("emits updated for modified file", func(t *testing.T) {
		tempDir := t.TempDir()
		testFile := filepath.Join(tempDir, "statement.txt")
		require.NoError(t, os.WriteFile(testFile, []byte("initial"), 0644))

		connector := New(tempDir)
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		changesChan, err := connector.Watch(ctx)
		require.NoError(t, err)

		go func() {
			time.Sleep(50 * time.Millisecond)
			os.WriteFile(testFile, []byte("modified"), 0644)
		}()

		select {
		case change := <-changesChan:
			assert.Equal(t, domain.ChangeUpdated, change.Type)
			assert.Contains(t, change.Document.URI, "statement.txt")
			assert.Equal(t, []byte("modified"), change.Document.Content)
		case <-time.After(500 * time.Millisecond):
			t.Fatal("timeout waiting for write event")
		}

		cancel()
		connector.Close()
	})

	t.Run("emits deleted for removed file", func(t *testing.T) {
		tempDir := t.TempDir()
		testFile := filepath.Join(tempDir, "to-delete.txt")
		require.NoError(t, os.WriteFile(testFile, []byte("delete me"), 0644))

		connector := New(tempDir)
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		changesChan, err := connector.Watch(ctx)
		require.NoError(t, err)

		go func() {
			time.Sleep(50 * time.Millisecond)
			os.Remove(testFile)
		}()

		select {
		case change := <-changesChan:
			assert.Equal(t, domain.ChangeDeleted, change.Type)
			assert.Contains(t, change.Document.URI, "to-delete.txt")
			assert.Empty(t, change.Document.Content)
		case <-time.After(500 * time.Millisecond):
			t.Fatal("timeout waiting for remove event")
		}

		cancel()
		connector.Close()
	})

	t.Run("ignores unsupported files", func(t *testing.T) {
		tempDir := t.TempDir()
		connector := New(tempDir)
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		changesChan, err := connector.Watch(ctx)
		require.NoError(t, err)

		go func() {
			time.Sleep(50 * time.Millisecond)
			os.WriteFile(filepath.Join(tempDir, "skip.pdf"), []byte("skip"), 0644)
			time.Sleep(50 * time.Millisecond)
			os.WriteFile(filepath.Join(tempDir, "keep.txt"), []byte("keep"), 0644)
		}()

		select {
		case change := <-changesChan:
			assert.Contains(t, change.Document.URI, "keep.txt")
		case <-time.After(500 * time.Millisecond):
			t.Fatal("timeout waiting for supported file event")
		}

		cancel()
		connector.Close()
	})

	t.Run("watches directories created while watching", func(t *testing.T) {
		tempDir := t.TempDir()
		connector := New(tempDir)
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		changesChan, err := connector.Watch(ctx)
		require.NoError(t, err)

		newDir := filepath.Join(tempDir, "2025")
		go func() {
			time.Sleep(50 * time.Millisecond)
			os.Mkdir(newDir, 0755)
			time.Sleep(100 * time.Millisecond)
			os.WriteFile(filepath.Join(newDir, "nested.txt"), []byte("nested"), 0644)
		}()

		select {
		case change := <-changesChan:
			assert.Equal(t, domain.ChangeCreated, change.Type)
			assert.Contains(t, change.Document.URI, "nested.txt")
		case <-time.After(time.Second):
			t.Fatal("timeout waiting for event in new directory")
		}

		cancel()
		connector.Close()
	})

	t.Run("returns error for non-existent directory", func(t *testing.T) {
		connector := New("/non/existent/path")

		changesChan, err := connector.Watch(context.Background())

		assert.Error(t, err)
		assert.Nil(t, changesChan)
		assert.Contains(t, err.Error(), "root path error")
	})

	t.Run("closes channel when context is cancelled", func(t *testing.T) {
		tempDir := t.TempDir()
		connector := New(tempDir)
		ctx, cancel := context.WithCancel(context.Background())

		changesChan, err := connector.Watch(ctx)
		require.NoError(t, err)

		cancel()

		select {
		case _, ok := <-changesChan:
			if ok {
				for range changesChan {
				}
			}
		case <-time.After(100 * time.Millisecond):
			t.Fatal("channel did not close after context cancellation")
		}

		connector.Close()
	})

	t.Run("closes channel when connector is closed", func(t *testing.T) {
		tempDir := t.TempDir()
		connector := New(tempDir)
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		changesChan, err := connector.Watch(ctx)
		require.NoError(t, err)

		require.NoError(t, connector.Close())

		select {
		case _, ok := <-changesChan:
			if ok {
				for range changesChan {
				}
			}
		case <-time.After(100 * time.Millisecond):
			t.Fatal("channel did not close after connector close")
		}
	})
}

func TestConnector_Close(t *testing.T) {
	t.Run("close without watch succeeds", func(t *testing.T) {
		connector := New("/tmp/statements")

		assert.NoError(t, connector.Close())
	})

	t.Run("close is idempotent", func(t *testing.T) {
		connector := New("/tmp/statements")

		assert.NoError(t, connector.Close())
		assert.NoError(t, connector.Close())
		assert.NoError(t, connector.Close())
	})
}

// TestToChange tests fsnotify event conversion with various event types.
func TestToChange(t *testing.T) {
	tests := []struct {
		name           string
		fileName       string
		setupFile      bool
		operation      fsnotify.Op
		expectedChange bool
		expectedType   domain.ChangeType
	}{
		{
			name:           "create file event",
			fileName:       "statement.txt",
			setupFile:      true,
			operation:      fsnotify.Create,
			expectedChange: true,
			expectedType:   domain.ChangeCreated,
		},
		{
			name:           "write file event",
			fileName:       "statement.txt",
			setupFile:      true,
			operation:      fsnotify.Write,
			expectedChange: true,
			expectedType:   domain.ChangeUpdated,
		},
		{
			name:           "remove file event",
			fileName:       "statement.txt",
			setupFile:      false,
			operation:      fsnotify.Remove,
			expectedChange: true,
			expectedType:   domain.ChangeDeleted,
		},
		{
			name:           "rename file event",
			fileName:       "statement.txt",
			setupFile:      false,
			operation:      fsnotify.Rename,
			expectedChange: true,
			expectedType:   domain.ChangeDeleted,
		},
		{
			name:           "chmod event is ignored",
			fileName:       "statement.txt",
			setupFile:      true,
			operation:      fsnotify.Chmod,
			expectedChange: false,
		},
		{
			name:           "hidden file is ignored",
			fileName:       ".hidden.txt",
			setupFile:      true,
			operation:      fsnotify.Create,
			expectedChange: false,
		},
		{
			name:           "unsupported extension is ignored",
			fileName:       "photo.png",
			setupFile:      true,
			operation:      fsnotify.Create,
			expectedChange: false,
		},
		{
			name:           "create of vanished file is dropped",
			fileName:       "gone.txt",
			setupFile:      false,
			operation:      fsnotify.Create,
			expectedChange: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tempDir := t.TempDir()
			eventPath := filepath.Join(tempDir, tt.fileName)
			if tt.setupFile {
				require.NoError(t, os.WriteFile(eventPath, []byte("content"), 0644))
			}

			change, ok := toChange(fsnotify.Event{Name: eventPath, Op: tt.operation})

			if !tt.expectedChange {
				assert.False(t, ok, "expected no change but got one")
				return
			}

			require.True(t, ok, "expected change but got none")
			assert.Equal(t, tt.expectedType, change.Type)
			assert.Equal(t, eventPath, change.Document.URI)

			if tt.expectedType != domain.ChangeDeleted {
				assert.Equal(t, []byte("content"), change.Document.Content)
			}
		})
	}

	t.Run("combined operations", func(t *testing.T) {
		tempDir := t.TempDir()
		testFile := filepath.Join(tempDir, "statement.txt")
		require.NoError(t, os.WriteFile(testFile, []byte("content"), 0644))

		change, ok := toChange(fsnotify.Event{
			Name: testFile,
			Op:   fsnotify.Write | fsnotify.Chmod,
		})

		require.True(t, ok)
		assert.Equal(t, domain.ChangeUpdated, change.Type)
	})
}

// TestIsHidden tests dot-prefix detection on file names.
func TestIsHidden(t *testing.T) {
	tests := []struct {
		name     string
		expected bool
	}{
		{".hidden", true},
		{".hidden.txt", true},
		{".git", true},
		{"statement.txt", false},
		{"file.hidden", false},
		{".", false},
		{"..", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, isHidden(tt.name))
		})
	}
}
