package security

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateWithinRoot(t *testing.T) {
	root := t.TempDir()
	v := NewPathValidator([]string{root}, false)

	path := filepath.Join(root, "invoices.json")
	require.NoError(t, os.WriteFile(path, []byte("{}"), 0644))

	resolved, err := v.Validate(path)
	require.NoError(t, err)
	assert.True(t, filepath.IsAbs(resolved))
}

func TestValidateRejectsTraversal(t *testing.T) {
	root := t.TempDir()
	v := NewPathValidator([]string{root}, false)

	_, err := v.Validate(filepath.Join(root, "..", "etc", "passwd"))
	assert.Error(t, err)
}

func TestValidateRejectsNullByte(t *testing.T) {
	root := t.TempDir()
	v := NewPathValidator([]string{root}, false)

	_, err := v.Validate(root + "/bad\x00name")
	assert.Error(t, err)
}

func TestValidateRejectsSymlinkEscape(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("symlinks require privileges on windows")
	}

	root := t.TempDir()
	outside := t.TempDir()
	link := filepath.Join(root, "escape")
	require.NoError(t, os.Symlink(outside, link))

	v := NewPathValidator([]string{root}, false)
	_, err := v.Validate(filepath.Join(link, "file.txt"))
	assert.Error(t, err)
}

func TestValidateAllowsNewFiles(t *testing.T) {
	root := t.TempDir()
	v := NewPathValidator([]string{root}, false)

	resolved, err := v.Validate(filepath.Join(root, "reports", "new.html"))
	require.NoError(t, err)
	assert.Contains(t, resolved, "new.html")
}
