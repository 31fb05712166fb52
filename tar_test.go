package jtar

import (
	"archive/tar"
	"bytes"
	"errors"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"github.com/klauspost/compress/gzip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// archiveContent describes an entry of a test archive
type archiveContent struct {
	Name       string
	Content    []byte
	Mode       fs.FileMode
	Filetype   byte
	Linktarget string
}

// packTar creates a tar archive with content
func packTar(t *testing.T, content []archiveContent) []byte {
	t.Helper()

	buf := bytes.NewBuffer([]byte{})
	tw := tar.NewWriter(buf)
	for _, c := range content {
		mode := c.Mode
		if mode == 0 {
			mode = 0644
		}
		hdr := &tar.Header{
			Name:     c.Name,
			Mode:     int64(mode),
			Size:     int64(len(c.Content)),
			Linkname: c.Linktarget,
			Typeflag: c.Filetype,
		}
		if c.Filetype != tar.TypeReg {
			hdr.Size = 0
		}
		require.NoError(t, tw.WriteHeader(hdr), "error writing tar header")
		if hdr.Size > 0 {
			_, err := tw.Write(c.Content)
			require.NoError(t, err, "error writing tar data")
		}
	}
	require.NoError(t, tw.Close())
	return buf.Bytes()
}

// compressGzip compresses data with gzip
func compressGzip(t *testing.T, data []byte) []byte {
	t.Helper()

	buf := bytes.NewBuffer([]byte{})
	gw := gzip.NewWriter(buf)
	_, err := gw.Write(data)
	require.NoError(t, err)
	require.NoError(t, gw.Close())
	return buf.Bytes()
}

// writeTestFile writes data to name in dir and returns the path
func writeTestFile(t *testing.T, dir string, name string, data []byte) string {
	t.Helper()

	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, data, 0644))
	return path
}

// tartestContent is a directory with five regular files
var tartestContent = []archiveContent{
	{Name: "tartest/", Filetype: tar.TypeDir, Mode: 0755},
	{Name: "tartest/one", Content: []byte("one\n"), Filetype: tar.TypeReg},
	{Name: "tartest/two", Content: []byte("two\n"), Filetype: tar.TypeReg},
	{Name: "tartest/four", Content: []byte("four\n"), Filetype: tar.TypeReg},
	{Name: "tartest/five", Content: []byte("five\n"), Filetype: tar.TypeReg},
	{Name: "tartest/six", Content: []byte("six\n"), Filetype: tar.TypeReg},
}

func TestIsTar(t *testing.T) {
	tests := []struct {
		name   string
		header []byte
		want   bool
	}{
		{
			name:   "tar archive",
			header: packTar(t, []archiveContent{{Name: "test", Content: []byte("foobar"), Filetype: tar.TypeReg}}),
			want:   true,
		},
		{
			name:   "gzip stream",
			header: compressGzip(t, []byte("foobar")),
			want:   false,
		},
		{
			name:   "too short",
			header: []byte("ustar"),
			want:   false,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, isTar(tc.header))
		})
	}
}

func TestTarWalker(t *testing.T) {
	data := packTar(t, []archiveContent{
		{Name: "dir/", Filetype: tar.TypeDir, Mode: 0750},
		{Name: "dir/file", Content: []byte("foobar content"), Filetype: tar.TypeReg, Mode: 0640},
		{Name: "empty", Filetype: tar.TypeReg},
		{Name: "link", Filetype: tar.TypeSymlink, Linktarget: "dir/file"},
	})

	w := newTarWalker(bytes.NewReader(data))
	assert.Equal(t, "tar", w.Type())

	expected := []struct {
		name      string
		isDir     bool
		isRegular bool
		size      int64
		content   string
	}{
		{name: "dir/", isDir: true},
		{name: "dir/file", isRegular: true, size: 14, content: "foobar content"},
		{name: "empty", isRegular: true},
		{name: "link"},
	}

	for _, e := range expected {
		ae, err := w.Next()
		require.NoError(t, err)
		assert.Equal(t, e.name, ae.Name())
		assert.Equal(t, e.isDir, ae.IsDir(), "IsDir of %s", e.name)
		assert.Equal(t, e.isRegular, ae.IsRegular(), "IsRegular of %s", e.name)
		assert.Equal(t, e.size, ae.Size())

		if e.isRegular {
			r, err := ae.Open()
			require.NoError(t, err)
			content, err := io.ReadAll(r)
			require.NoError(t, err)
			assert.Equal(t, e.content, string(content))
		}
	}

	// end of archive
	_, err := w.Next()
	assert.ErrorIs(t, err, io.EOF)
}

func TestTarEntryReaderInvalidated(t *testing.T) {
	data := packTar(t, []archiveContent{
		{Name: "first", Content: []byte("first content"), Filetype: tar.TypeReg},
		{Name: "second", Content: []byte("second content"), Filetype: tar.TypeReg},
	})

	w := newTarWalker(bytes.NewReader(data))
	first, err := w.Next()
	require.NoError(t, err)
	r, err := first.Open()
	require.NoError(t, err)

	// partial read is fine
	buf := make([]byte, 5)
	_, err = r.Read(buf)
	require.NoError(t, err)

	// move on
	second, err := w.Next()
	require.NoError(t, err)
	assert.Equal(t, "second", second.Name())

	_, err = r.Read(buf)
	assert.ErrorIs(t, err, ErrEntryInvalidated)

	// the reader of the current entry is not affected
	r2, err := second.Open()
	require.NoError(t, err)
	content, err := io.ReadAll(r2)
	require.NoError(t, err)
	assert.Equal(t, "second content", string(content))
}

func TestTarEntryReaderBoundary(t *testing.T) {
	data := packTar(t, []archiveContent{
		{Name: "first", Content: []byte("abc"), Filetype: tar.TypeReg},
		{Name: "second", Content: []byte("def"), Filetype: tar.TypeReg},
	})

	w := newTarWalker(bytes.NewReader(data))
	ae, err := w.Next()
	require.NoError(t, err)
	r, err := ae.Open()
	require.NoError(t, err)

	buf := make([]byte, 1024)
	n, err := io.ReadFull(r, buf)
	assert.Equal(t, 3, n)
	assert.ErrorIs(t, err, io.ErrUnexpectedEOF)
	assert.Equal(t, "abc", string(buf[:n]))

	// further reads return end of data
	n, err = r.Read(buf)
	assert.Equal(t, 0, n)
	assert.ErrorIs(t, err, io.EOF)
}

func TestTarWalkerDecodeErrors(t *testing.T) {
	valid := packTar(t, []archiveContent{
		{Name: "file", Content: bytes.Repeat([]byte("x"), 1024), Filetype: tar.TypeReg},
	})

	// corrupt the name in the first header
	badChecksum := bytes.Clone(valid)
	badChecksum[0] = 'X'

	// cut the stream within the content of the entry
	truncated := bytes.Clone(valid[:512+100])

	// garbage after the terminator
	trailing := append(bytes.Clone(valid), []byte("trailing garbage after the archive")...)

	tests := []struct {
		name        string
		data        []byte
		expectedErr error
	}{
		{
			name:        "bad checksum",
			data:        badChecksum,
			expectedErr: tar.ErrHeader,
		},
		{
			name:        "truncated stream",
			data:        truncated,
			expectedErr: io.ErrUnexpectedEOF,
		},
		{
			name: "trailing garbage is ignored",
			data: trailing,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			w := newTarWalker(bytes.NewReader(tc.data))
			var err error
			for err == nil {
				var ae archiveEntry
				if ae, err = w.Next(); err != nil {
					break
				}
				r, _ := ae.Open()
				_, err = io.Copy(io.Discard, r)
			}

			if tc.expectedErr == nil {
				assert.ErrorIs(t, err, io.EOF)
				return
			}
			assert.True(t, errors.Is(err, tc.expectedErr), "expected %v, got %v", tc.expectedErr, err)
		})
	}
}
