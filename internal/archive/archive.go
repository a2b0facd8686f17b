// File: internal/archive/archive.go

// Package archive extracts scannable text files from an uploaded project
// archive without touching disk. The filter chain mirrors what a developer
// would expect from a source checkout: vendored and VCS directories are
// skipped, binary files are ignored, and .gitignore entries found in the
// archive are honored.
package archive

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/go-git/go-git/v5/plumbing/format/gitignore"
	"go.uber.org/zap"

	"github.com/xkilldash9x/cyberhealth-cli/internal/config"
)

// File is one extracted archive entry.
type File struct {
	Path string
	Data []byte
}

// Extractor walks zip archives applying the scanner's file filters.
type Extractor struct {
	cfg    config.ScannerConfig
	logger *zap.Logger
}

func NewExtractor(cfg config.ScannerConfig, logger *zap.Logger) *Extractor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Extractor{cfg: cfg, logger: logger}
}

// Extract returns the text files from a zip archive held in memory.
// Entries under skip directories, entries ignored by in-archive .gitignore
// files, oversized entries and non-text extensions are all dropped.
func (e *Extractor) Extract(data []byte) ([]File, error) {
	reader, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("opening archive: %w", err)
	}

	matcher, err := e.ignoreMatcher(reader)
	if err != nil {
		return nil, err
	}

	var files []File
	for _, entry := range reader.File {
		if entry.FileInfo().IsDir() {
			continue
		}
		name := path.Clean(entry.Name)

		if e.inSkipDir(name) {
			continue
		}
		if !e.textExtension(name) {
			continue
		}
		if e.cfg.MaxFileBytes > 0 && entry.UncompressedSize64 > uint64(e.cfg.MaxFileBytes) {
			e.logger.Debug("Skipping oversized archive entry",
				zap.String("path", name),
				zap.Uint64("size", entry.UncompressedSize64))
			continue
		}
		if matcher != nil && matcher.Match(strings.Split(name, "/"), false) {
			continue
		}

		content, err := readEntry(entry)
		if err != nil {
			e.logger.Warn("Failed to read archive entry", zap.String("path", name), zap.Error(err))
			continue
		}
		files = append(files, File{Path: name, Data: content})
	}

	return files, nil
}

// ignoreMatcher builds a gitignore matcher from every .gitignore in the
// archive. Patterns apply relative to the directory holding the file.
func (e *Extractor) ignoreMatcher(reader *zip.Reader) (gitignore.Matcher, error) {
	var patterns []gitignore.Pattern

	for _, entry := range reader.File {
		name := path.Clean(entry.Name)
		if path.Base(name) != ".gitignore" || entry.FileInfo().IsDir() {
			continue
		}

		content, err := readEntry(entry)
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", name, err)
		}

		var domain []string
		if dir := path.Dir(name); dir != "." {
			domain = strings.Split(dir, "/")
		}
		for _, line := range strings.Split(string(content), "\n") {
			line = strings.TrimSpace(line)
			if line == "" || strings.HasPrefix(line, "#") {
				continue
			}
			patterns = append(patterns, gitignore.ParsePattern(line, domain))
		}
	}

	if len(patterns) == 0 {
		return nil, nil
	}
	return gitignore.NewMatcher(patterns), nil
}

func (e *Extractor) inSkipDir(name string) bool {
	segments := strings.Split(name, "/")
	for _, segment := range segments[:len(segments)-1] {
		for _, skip := range e.cfg.SkipDirs {
			if segment == skip {
				return true
			}
		}
	}
	return false
}

func (e *Extractor) textExtension(name string) bool {
	if len(e.cfg.TextExtensions) == 0 {
		return true
	}
	ext := strings.ToLower(path.Ext(name))
	base := strings.ToLower(path.Base(name))
	for _, allowed := range e.cfg.TextExtensions {
		if ext == allowed || base == allowed {
			return true
		}
	}
	return false
}

func readEntry(entry *zip.File) ([]byte, error) {
	rc, err := entry.Open()
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return io.ReadAll(rc)
}
