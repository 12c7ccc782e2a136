// Package fsutil provides file system utility functions.
package fsutil

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// InvalidDirectoryError reports a search root that is missing or is not a
// directory.
type InvalidDirectoryError struct {
	Path string
	Err  error
}

func (e *InvalidDirectoryError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("invalid directory %s: %v", e.Path, e.Err)
	}
	return fmt.Sprintf("invalid directory %s: not a directory", e.Path)
}

func (e *InvalidDirectoryError) Unwrap() error { return e.Err }

// FindFilesByExtension recursively searches the given root directory for all
// files ending with the specified extension. It returns a slice of their full
// paths. The order of the result is unspecified.
//
// A root that does not exist or is not a directory yields an
// *InvalidDirectoryError and no results.
func FindFilesByExtension(rootPath string, extension string) ([]string, error) {
	if extension == "" {
		panic("extension must not be empty")
	}

	info, err := os.Stat(rootPath)
	if err != nil {
		return nil, &InvalidDirectoryError{Path: rootPath, Err: err}
	}
	if !info.IsDir() {
		return nil, &InvalidDirectoryError{Path: rootPath}
	}

	var files []string
	err = filepath.WalkDir(rootPath, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.Type().IsRegular() && strings.HasSuffix(d.Name(), extension) {
			files = append(files, path)
		}
		return nil
	})

	if err != nil {
		return nil, err
	}

	return files, nil
}
