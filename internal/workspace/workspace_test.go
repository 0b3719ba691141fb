package workspace

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T) *Client {
	t.Helper()
	c, err := New(t.TempDir())
	require.NoError(t, err)
	return c
}

func TestScopedClientConfinesToSubdirectory(t *testing.T) {
	c := newTestClient(t)

	scoped, err := c.Scoped("runs/abc")
	require.NoError(t, err)

	_, err = scoped.Write("report.html", "<html></html>")
	require.NoError(t, err)

	content, err := c.Read("runs/abc/report.html", 0, 0)
	require.NoError(t, err)
	assert.Equal(t, "<html></html>", content)

	// The scoped client cannot see the parent workspace
	_, err = scoped.Read("../outside.txt", 0, 0)
	assert.ErrorIs(t, err, ErrAccessDenied)
}

func TestScopedRejectsEscapingDirectory(t *testing.T) {
	c := newTestClient(t)

	_, err := c.Scoped("../elsewhere")
	assert.ErrorIs(t, err, ErrAccessDenied)
}

func TestListEmptyWorkspace(t *testing.T) {
	c := newTestClient(t)

	entries, err := c.List(".")
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestWriteThenReadRoundTrip(t *testing.T) {
	c := newTestClient(t)

	content := "invoice,total\nINV-001,120.50\n"
	result, err := c.Write("reports/summary.csv", content)
	require.NoError(t, err)
	assert.True(t, result.Created)
	assert.Equal(t, len(content), result.Bytes)

	got, err := c.Read("reports/summary.csv", 0, 0)
	require.NoError(t, err)
	assert.Equal(t, content, got)
}

func TestWriteOverwriteProducesDiff(t *testing.T) {
	c := newTestClient(t)

	_, err := c.Write("a.txt", "hello\n")
	require.NoError(t, err)

	result, err := c.Write("a.txt", "goodbye\n")
	require.NoError(t, err)
	assert.False(t, result.Created)
	assert.NotEmpty(t, result.Diff)
}

func TestReadMissingFileIsNotFound(t *testing.T) {
	c := newTestClient(t)

	_, err := c.Read("does-not-exist.txt", 0, 0)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestTraversalIsAccessDenied(t *testing.T) {
	c := newTestClient(t)

	_, err := c.Read("../etc/passwd", 0, 0)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrAccessDenied)

	_, err = c.Write("../../escape.txt", "nope")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrAccessDenied)
}

func TestReadLineRange(t *testing.T) {
	c := newTestClient(t)

	_, err := c.Write("lines.txt", "one\ntwo\nthree\nfour\n")
	require.NoError(t, err)

	got, err := c.Read("lines.txt", 1, 2)
	require.NoError(t, err)
	assert.Equal(t, "two\nthree", got)
}

func TestDeleteFile(t *testing.T) {
	c := newTestClient(t)

	_, err := c.Write("gone.txt", "x")
	require.NoError(t, err)
	require.NoError(t, c.Delete("gone.txt"))

	err = c.Delete("gone.txt")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestGrepWithGlob(t *testing.T) {
	c := newTestClient(t)

	_, err := c.Write("src/a.go", "package a\nvar total = 10\n")
	require.NoError(t, err)
	_, err = c.Write("docs/b.md", "total is here too\n")
	require.NoError(t, err)

	matches, err := c.Grep("total", "**/*.go")
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, "src/a.go", matches[0].Path)
	assert.Equal(t, 2, matches[0].Line)
}
