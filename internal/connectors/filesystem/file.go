package filesystem

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/finsight-labs/finsight-cli/internal/core/domain"
)

// ReadFile builds a raw document from a single file on disk.
// The file's extension must map to a supported MIME type.
func ReadFile(path string) (*domain.RawDocument, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("cannot access %s: %w", path, err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%s is a directory", path)
	}

	ext := strings.ToLower(filepath.Ext(path))
	mime, ok := mimeTypes[ext]
	if !ok {
		return nil, fmt.Errorf("%w: unsupported file extension %q (supported: %s)",
			domain.ErrUnsupportedFormat, ext, supportedExtensions())
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	return &domain.RawDocument{
		URI:      path,
		MIMEType: mime,
		Content:  content,
	}, nil
}

// supportedExtensions lists the recognised file extensions, sorted.
func supportedExtensions() string {
	exts := make([]string, 0, len(mimeTypes))
	for ext := range mimeTypes {
		exts = append(exts, ext)
	}
	sort.Strings(exts)
	return strings.Join(exts, ", ")
}
