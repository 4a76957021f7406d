// Package source loads documents from local files. Plain-text and
// Markdown files are read directly; HTML files go through visible-text
// extraction. Anything else is handed to the external text-extraction
// service via Client.
package source

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/lexigraph/lexigraph/internal/model"
)

// pageBreak separates pages inside a plain-text file (form feed, the
// marker OCR tools emit between scanned pages).
const pageBreak = "\f"

// Reader loads local files into documents.
type Reader struct {
	language string
}

// NewReader creates a reader that stamps documents with the given
// language tag.
func NewReader(language string) *Reader {
	return &Reader{language: language}
}

// Supported reports whether the reader can load the file directly.
func Supported(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".txt", ".md", ".html", ".htm":
		return true
	}
	return false
}

// ReadFile loads one file into a document. The cleaned path doubles as
// the document ID so re-ingesting the same file hits the same entries.
func (r *Reader) ReadFile(path string) (*model.Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	doc := &model.Document{
		ID:       filepath.Clean(path),
		Language: r.language,
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".txt", ".md":
		doc.Pages = splitPages(string(data))
	case ".html", ".htm":
		text, err := VisibleText(string(data))
		if err != nil {
			return nil, fmt.Errorf("parse html %s: %w", path, err)
		}
		doc.Pages = []model.Page{{Number: 1, Text: text}}
	default:
		return nil, fmt.Errorf("unsupported file type: %s", path)
	}

	return doc, nil
}

// splitPages breaks file content into pages on form feeds; a file
// without them is a single page.
func splitPages(content string) []model.Page {
	parts := strings.Split(content, pageBreak)
	pages := make([]model.Page, 0, len(parts))
	for i, part := range parts {
		pages = append(pages, model.Page{Number: i + 1, Text: part})
	}
	return pages
}

// Collect expands the given paths into a sorted, deduplicated file
// list. Directories are walked recursively. Without includeAll only
// supported files are kept: unsupported files inside directories are
// skipped silently, while an explicitly named unsupported file is an
// error. With includeAll (an extraction service is available) every
// regular file is admitted.
func Collect(paths []string, includeAll bool) ([]string, error) {
	seen := make(map[string]bool)
	var files []string

	add := func(path string) {
		path = filepath.Clean(path)
		if !seen[path] {
			seen[path] = true
			files = append(files, path)
		}
	}

	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			return nil, fmt.Errorf("stat %s: %w", path, err)
		}

		if !info.IsDir() {
			if !Supported(path) && !includeAll {
				return nil, fmt.Errorf("unsupported file type: %s", path)
			}
			add(path)
			continue
		}

		err = filepath.WalkDir(path, func(p string, d os.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if !d.IsDir() && (includeAll || Supported(p)) {
				add(p)
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("walk %s: %w", path, err)
		}
	}

	sort.Strings(files)
	return files, nil
}
