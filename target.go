// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package jtar

import (
	"fmt"
	"io"
	"io/fs"
	"path/filepath"
	"strings"

	securejoin "github.com/cyphar/filepath-securejoin"
)

//go:generate mockgen -destination=internal/mocks/mock_target.go -package=mocks github.com/mknecht/jtar Target

// Target specifies all function that are needed to be implemented to extract contents from an archive
type Target interface {
	// CreateDir creates the directory at path and all missing parents with the specified
	// mode. If the directory already exists, nothing is done.
	CreateDir(path string, mode fs.FileMode) error

	// CreateFile creates or truncates the file at path and copies src into it in chunks of
	// bufferSize bytes. The parent directory must exist. The size of the file must not
	// exceed maxSize, if maxSize < 0 the size is not limited. The number of written bytes
	// is returned, also in case of an error.
	CreateFile(path string, src io.Reader, mode fs.FileMode, maxSize int64, bufferSize int) (int64, error)

	// Lstat see docs for os.Lstat. Used to resolve symlinks below the target directory.
	Lstat(path string) (fs.FileInfo, error)

	// Readlink see docs for os.Readlink. Used to resolve symlinks below the target directory.
	Readlink(path string) (string, error)
}

// sanitizeName converts the untrusted entry name into a relative, platform
// specific path. Leading slashes and volume names are removed. Names that
// would leave the target directory fail with ErrPathTraversal.
func sanitizeName(name string, cfg *Config) (string, error) {
	// check if a name is provided
	if len(name) == 0 {
		return "", fmt.Errorf("%w: empty name", ErrPathTraversal)
	}

	// remove absolute path prefix
	if start := getStartOfAbsolutePath(name); len(start) > 0 {
		cfg.Logger().Debug("remove absolute path prefix", "name", name, "prefix", start)
		name = name[len(start):]
	}

	// adjust path to be os specific
	parts := strings.Split(name, "/")
	rel := filepath.Join(parts...)
	if len(rel) == 0 {
		rel = "."
	}

	if !filepath.IsLocal(rel) {
		return "", fmt.Errorf("%w: %s", ErrPathTraversal, name)
	}
	return rel, nil
}

// getStartOfAbsolutePath returns the absolute prefix of path, including
// repeated separators and a windows volume name.
func getStartOfAbsolutePath(path string) string {
	if strings.HasPrefix(path, "/") {
		return "/" + getStartOfAbsolutePath(path[1:])
	}
	if strings.HasPrefix(path, `\`) {
		return `\` + getStartOfAbsolutePath(path[1:])
	}
	if len(path) > 2 && path[1] == ':' && (path[2] == '/' || path[2] == '\\') {
		return path[0:3] + getStartOfAbsolutePath(path[3:])
	}
	return ""
}

// resolvePath returns the path of the entry name below dst. Symlinks that
// already exist below dst are resolved within dst.
func resolvePath(t Target, dst string, name string, cfg *Config) (string, error) {
	rel, err := sanitizeName(name, cfg)
	if err != nil {
		return "", err
	}
	if rel == "." {
		return dst, nil
	}
	path, err := securejoin.SecureJoinVFS(dst, rel, t)
	if err != nil {
		return "", fmt.Errorf("cannot resolve %s: %w", name, err)
	}
	return path, nil
}

// createDir creates the directory for the entry name below dst, including all
// missing parents.
func createDir(t Target, dst string, name string, mode fs.FileMode, cfg *Config) error {
	path, err := resolvePath(t, dst, name, cfg)
	if err != nil {
		return err
	}
	return t.CreateDir(path, mode)
}

// createFile creates the file for the entry name below dst with src as content.
// Missing parent directories are created with cfg.CreateDirMode(). An
// existing file is overwritten.
func createFile(t Target, dst string, name string, src io.Reader, mode fs.FileMode, maxSize int64, cfg *Config) (int64, error) {
	rel, err := sanitizeName(name, cfg)
	if err != nil {
		return 0, err
	}
	if rel == "." {
		return 0, fmt.Errorf("%w: file entry without name: %s", ErrPathTraversal, name)
	}

	// ensure the parent exists
	if dir := filepath.Dir(rel); dir != "." {
		dirPath, err := securejoin.SecureJoinVFS(dst, dir, t)
		if err != nil {
			return 0, fmt.Errorf("cannot resolve %s: %w", dir, err)
		}
		if err := t.CreateDir(dirPath, cfg.CreateDirMode()); err != nil {
			return 0, fmt.Errorf("cannot create directory: %w", err)
		}
	}

	path, err := securejoin.SecureJoinVFS(dst, rel, t)
	if err != nil {
		return 0, fmt.Errorf("cannot resolve %s: %w", name, err)
	}
	return t.CreateFile(path, src, mode, maxSize, cfg.BufferSize())
}
