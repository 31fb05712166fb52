// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package jtar

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"io/fs"
	"path"
	"path/filepath"
	"sort"
	"sync"
	"time"
)

// TargetMemory is an in-memory [Target]. Extracted files and directories are
// stored in a map of slash separated paths to entries and can be read through
// the [fs.FS] interface. Paths must be relative, so extract into "." or a
// relative target directory. Permissions are stored but not enforced.
type TargetMemory struct {
	files sync.Map // map[string]*memoryEntry
}

// NewTargetMemory creates an empty in-memory target.
func NewTargetMemory() *TargetMemory {
	return &TargetMemory{}
}

// memoryEntry is a file or directory of a [TargetMemory]
type memoryEntry struct {
	info *memoryFileInfo
	data []byte
}

// memoryPath converts p into a key of the in-memory target
func memoryPath(p string) (string, error) {
	key := filepath.ToSlash(filepath.Clean(p))
	if !fs.ValidPath(key) {
		return "", &fs.PathError{Op: "open", Path: p, Err: fs.ErrInvalid}
	}
	return key, nil
}

// CreateDir creates the directory at path and all missing parents with mode.
// If the directory already exists, nothing is done.
func (m *TargetMemory) CreateDir(p string, mode fs.FileMode) error {
	key, err := memoryPath(p)
	if err != nil {
		return err
	}

	// collect missing directories, deepest first
	var missing []string
	for dir := key; dir != "."; dir = path.Dir(dir) {
		if e, ok := m.load(dir); ok {
			if !e.info.IsDir() {
				return &fs.PathError{Op: "mkdir", Path: dir, Err: fs.ErrExist}
			}
			break
		}
		missing = append(missing, dir)
	}

	for i := len(missing) - 1; i >= 0; i-- {
		m.files.LoadOrStore(missing[i], &memoryEntry{
			info: &memoryFileInfo{name: path.Base(missing[i]), mode: mode.Perm() | fs.ModeDir, modTime: time.Now()},
		})
	}
	return nil
}

// CreateFile creates or replaces the file at path with the content of src. The
// parent directory must exist. If maxSize >= 0, more than maxSize bytes fail with
// [ErrMaxExtractionSizeExceeded].
func (m *TargetMemory) CreateFile(p string, src io.Reader, mode fs.FileMode, maxSize int64, bufferSize int) (int64, error) {
	key, err := memoryPath(p)
	if err != nil {
		return 0, err
	}
	if key == "." {
		return 0, &fs.PathError{Op: "open", Path: p, Err: fs.ErrInvalid}
	}

	// check parent and entry
	if parent := path.Dir(key); parent != "." {
		if e, ok := m.load(parent); !ok || !e.info.IsDir() {
			return 0, &fs.PathError{Op: "open", Path: p, Err: fs.ErrNotExist}
		}
	}
	if e, ok := m.load(key); ok && e.info.IsDir() {
		return 0, &fs.PathError{Op: "open", Path: p, Err: fs.ErrExist}
	}

	if bufferSize <= 0 {
		bufferSize = defaultBufferSize
	}

	// copy the content
	var buf bytes.Buffer
	w := bufio.NewWriterSize(limitWriter(&buf, maxSize), bufferSize)
	n, err := copyChunks(w, src, make([]byte, bufferSize))
	if err != nil {
		return n, err
	}
	if err := w.Flush(); err != nil {
		return n, fmt.Errorf("failed to write file: %w", err)
	}

	// last write wins
	m.files.Store(key, &memoryEntry{
		info: &memoryFileInfo{name: path.Base(key), size: int64(buf.Len()), mode: mode.Perm(), modTime: time.Now()},
		data: buf.Bytes(),
	})
	return n, nil
}

// Lstat returns the [fs.FileInfo] of the entry at path.
func (m *TargetMemory) Lstat(p string) (fs.FileInfo, error) {
	key, err := memoryPath(p)
	if err != nil {
		return nil, err
	}
	if key == "." {
		return rootInfo, nil
	}
	if e, ok := m.load(key); ok {
		return e.info, nil
	}
	return nil, &fs.PathError{Op: "lstat", Path: p, Err: fs.ErrNotExist}
}

// Readlink fails for every path, the in-memory target holds no symlinks.
func (m *TargetMemory) Readlink(p string) (string, error) {
	return "", &fs.PathError{Op: "readlink", Path: p, Err: fs.ErrInvalid}
}

// Open implements [fs.FS].
func (m *TargetMemory) Open(name string) (fs.File, error) {
	if !fs.ValidPath(name) {
		return nil, &fs.PathError{Op: "open", Path: name, Err: fs.ErrInvalid}
	}
	if name == "." {
		return &memoryFile{info: rootInfo}, nil
	}
	e, ok := m.load(name)
	if !ok {
		return nil, &fs.PathError{Op: "open", Path: name, Err: fs.ErrNotExist}
	}
	return &memoryFile{info: e.info, r: bytes.NewReader(e.data)}, nil
}

// ReadFile implements [fs.ReadFileFS].
func (m *TargetMemory) ReadFile(name string) ([]byte, error) {
	if !fs.ValidPath(name) {
		return nil, &fs.PathError{Op: "read", Path: name, Err: fs.ErrInvalid}
	}
	e, ok := m.load(name)
	if !ok {
		return nil, &fs.PathError{Op: "read", Path: name, Err: fs.ErrNotExist}
	}
	if e.info.IsDir() {
		return nil, &fs.PathError{Op: "read", Path: name, Err: fs.ErrInvalid}
	}
	return bytes.Clone(e.data), nil
}

// ReadDir implements [fs.ReadDirFS]. Entries are sorted by name.
func (m *TargetMemory) ReadDir(name string) ([]fs.DirEntry, error) {
	info, err := m.Lstat(name)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return nil, &fs.PathError{Op: "readdir", Path: name, Err: fs.ErrInvalid}
	}

	var entries []fs.DirEntry
	m.files.Range(func(key, value any) bool {
		if path.Dir(key.(string)) == name {
			entries = append(entries, fs.FileInfoToDirEntry(value.(*memoryEntry).info))
		}
		return true
	})
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Name() < entries[j].Name()
	})
	return entries, nil
}

func (m *TargetMemory) load(key string) (*memoryEntry, bool) {
	e, ok := m.files.Load(key)
	if !ok {
		return nil, false
	}
	return e.(*memoryEntry), true
}

// rootInfo describes the root of every in-memory target
var rootInfo = &memoryFileInfo{name: ".", mode: fs.ModeDir | 0755}

// memoryFile is an opened entry of a [TargetMemory]
type memoryFile struct {
	info *memoryFileInfo
	r    *bytes.Reader
}

func (f *memoryFile) Stat() (fs.FileInfo, error) {
	return f.info, nil
}

func (f *memoryFile) Read(p []byte) (int, error) {
	if f.info.IsDir() || f.r == nil {
		return 0, &fs.PathError{Op: "read", Path: f.info.name, Err: fs.ErrInvalid}
	}
	return f.r.Read(p)
}

func (f *memoryFile) Close() error {
	return nil
}

// memoryFileInfo is the [fs.FileInfo] of an in-memory entry
type memoryFileInfo struct {
	name    string
	size    int64
	mode    fs.FileMode
	modTime time.Time
}

func (fi *memoryFileInfo) Name() string       { return fi.name }
func (fi *memoryFileInfo) Size() int64        { return fi.size }
func (fi *memoryFileInfo) Mode() fs.FileMode  { return fi.mode }
func (fi *memoryFileInfo) ModTime() time.Time { return fi.modTime }
func (fi *memoryFileInfo) IsDir() bool        { return fi.mode.IsDir() }
func (fi *memoryFileInfo) Sys() any           { return nil }
