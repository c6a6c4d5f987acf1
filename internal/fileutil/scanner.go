package fileutil

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
)

// Errors returned by the Require helpers.
var (
	ErrMissing      = errors.New("missing")
	ErrEmpty        = errors.New("empty")
	ErrNotDirectory = errors.New("not a directory")
)

// ScanOptions configures the directory scanning behavior
type ScanOptions struct {
	// Pattern is a regex matched against file names without extension
	Pattern string
	// Extensions to include (case-insensitive, leading dot optional)
	Extensions []string
	// Recursive enables descending into subdirectories
	Recursive bool
	// ExcludeDirs are directory names never entered (e.g. "_build")
	ExcludeDirs []string
	// MaxDepth limits recursion depth (0 = unlimited, 1 = dir only)
	MaxDepth int
}

// ScanResult contains the results of a directory scan
type ScanResult struct {
	// Files are absolute paths of matched files, sorted
	Files []string
	// Errors are non-fatal errors hit while walking
	Errors []error
}

// ScanDirectory scans a directory for files matching the provided options
func ScanDirectory(dir string, opts ScanOptions) (*ScanResult, error) {
	if err := RequireDir(dir); err != nil {
		return nil, err
	}

	var pattern *regexp.Regexp
	if opts.Pattern != "" {
		var err error
		pattern, err = regexp.Compile(opts.Pattern)
		if err != nil {
			return nil, fmt.Errorf("invalid pattern: %w", err)
		}
	}

	exts := make(map[string]bool, len(opts.Extensions))
	for _, ext := range opts.Extensions {
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		exts[strings.ToLower(ext)] = true
	}

	excluded := make(map[string]bool, len(opts.ExcludeDirs))
	for _, name := range opts.ExcludeDirs {
		excluded[name] = true
	}

	result := &ScanResult{Files: []string{}}

	err := filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			result.Errors = append(result.Errors, fmt.Errorf("error accessing %s: %w", path, err))
			return nil
		}
		if path == dir {
			return nil
		}

		if d.IsDir() {
			if excluded[d.Name()] || strings.HasPrefix(d.Name(), ".") || !opts.Recursive {
				return filepath.SkipDir
			}
			if opts.MaxDepth > 0 {
				rel, _ := filepath.Rel(dir, path)
				if strings.Count(rel, string(filepath.Separator))+1 >= opts.MaxDepth {
					return filepath.SkipDir
				}
			}
			return nil
		}

		name := d.Name()
		if len(exts) > 0 && !exts[strings.ToLower(filepath.Ext(name))] {
			return nil
		}
		if pattern != nil && !pattern.MatchString(strings.TrimSuffix(name, filepath.Ext(name))) {
			return nil
		}

		abs, err := filepath.Abs(path)
		if err != nil {
			result.Errors = append(result.Errors, fmt.Errorf("failed to resolve path %s: %w", path, err))
			return nil
		}
		result.Files = append(result.Files, abs)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk directory: %w", err)
	}

	sort.Strings(result.Files)
	return result, nil
}

// Subdirectories returns the sorted names of dir's immediate,
// non-hidden subdirectories.
func Subdirectories(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("directory %s: %w", dir, ErrMissing)
		}
		return nil, fmt.Errorf("failed to read directory %s: %w", dir, err)
	}

	var names []string
	for _, e := range entries {
		if e.IsDir() && !strings.HasPrefix(e.Name(), ".") {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)
	return names, nil
}

// RequireFile returns nil when path exists and is a regular file.
func RequireFile(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("file %s: %w", path, ErrMissing)
		}
		return fmt.Errorf("failed to stat %s: %w", path, err)
	}
	if info.IsDir() {
		return fmt.Errorf("file %s is a directory: %w", path, ErrMissing)
	}
	return nil
}

// RequireNonEmpty returns nil when path is a regular file with content.
func RequireNonEmpty(path string) error {
	if err := RequireFile(path); err != nil {
		return err
	}
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("failed to stat %s: %w", path, err)
	}
	if info.Size() == 0 {
		return fmt.Errorf("file %s: %w", path, ErrEmpty)
	}
	return nil
}

// RequireDir returns nil when path exists and is a directory.
func RequireDir(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("directory %s: %w", path, ErrMissing)
		}
		return fmt.Errorf("failed to access directory: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("path %s: %w", path, ErrNotDirectory)
	}
	return nil
}

// IsEmptyDir reports whether dir holds no entries. A missing dir counts as
// empty.
func IsEmptyDir(dir string) (bool, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return true, nil
		}
		return false, fmt.Errorf("failed to read directory %s: %w", dir, err)
	}
	return len(entries) == 0, nil
}
