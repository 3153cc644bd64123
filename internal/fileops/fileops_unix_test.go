//go:build unix

package fileops

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sys/unix"
)

func TestMove_CrossDeviceFallback(t *testing.T) {
	orig := rename
	rename = func(oldpath, newpath string) error {
		return &os.LinkError{Op: "rename", Old: oldpath, New: newpath, Err: unix.EXDEV}
	}
	t.Cleanup(func() { rename = orig })

	dir := t.TempDir()
	src := filepath.Join(dir, "a.epub")
	dst := filepath.Join(dir, "b.epub")
	writeFile(t, src, "book")

	require.NoError(t, Move(src, dst))
	assert.False(t, Exists(src))
	data, err := os.ReadFile(dst)
	require.NoError(t, err)
	assert.Equal(t, "book", string(data))
}

func TestMove_OtherRenameErrors(t *testing.T) {
	orig := rename
	rename = func(oldpath, newpath string) error {
		return &os.LinkError{Op: "rename", Old: oldpath, New: newpath, Err: unix.EACCES}
	}
	t.Cleanup(func() { rename = orig })

	dir := t.TempDir()
	src := filepath.Join(dir, "a.epub")
	writeFile(t, src, "book")

	err := Move(src, filepath.Join(dir, "b.epub"))
	require.Error(t, err)
	assert.True(t, Exists(src))
	assert.False(t, Exists(filepath.Join(dir, "b.epub")))
}
