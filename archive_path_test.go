package jtar

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckArchivePath(t *testing.T) {
	dir := t.TempDir()
	archive := writeTestFile(t, dir, "archive.tar", packTar(t, tartestContent))
	unreadable := writeTestFile(t, dir, "unreadable.tar", []byte("secret"))
	require.NoError(t, os.Chmod(unreadable, 0000))

	tests := []struct {
		name        string
		path        string
		expectedErr error
		skip        bool
	}{
		{
			name: "regular file",
			path: archive,
		},
		{
			name:        "missing file",
			path:        filepath.Join(dir, "missing.tar"),
			expectedErr: ErrArchiveNotExist,
		},
		{
			name:        "directory",
			path:        dir,
			expectedErr: ErrArchiveNotRegular,
		},
		{
			name:        "unreadable file",
			path:        unreadable,
			expectedErr: ErrArchiveNotReadable,
			skip:        os.Geteuid() == 0,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if tc.skip {
				t.Skip("permissions are not enforced for this user")
			}

			abs, err := checkArchivePath(tc.path)
			if tc.expectedErr == nil {
				require.NoError(t, err)
				assert.True(t, filepath.IsAbs(abs))
				return
			}

			assert.ErrorIs(t, err, tc.expectedErr)
			assert.ErrorIs(t, err, ErrInvalidArgument)

			var pathErr *ArchivePathError
			require.True(t, errors.As(err, &pathErr))
			assert.True(t, filepath.IsAbs(pathErr.Path))
			assert.Contains(t, err.Error(), pathErr.Path)
		})
	}
}

func TestCheckArchivePathRelative(t *testing.T) {
	dir := t.TempDir()
	writeTestFile(t, dir, "archive.tar", packTar(t, tartestContent))
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(wd) })

	abs, err := checkArchivePath("archive.tar")
	require.NoError(t, err)
	assert.Equal(t, "archive.tar", filepath.Base(abs))
	assert.True(t, filepath.IsAbs(abs))
}
