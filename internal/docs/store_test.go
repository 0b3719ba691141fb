package docs

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDocumentsLoadsJSONFiles(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "inv1.json"), []byte(`{"total": 12.5}`), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("ignored"), 0644))

	s, err := NewStore(dir)
	require.NoError(t, err)
	defer s.Close()

	docs, err := s.Documents()
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, "inv1.json", docs[0].Filename)
}

func TestDocumentsSkipsMalformedFiles(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "bad.json"), []byte(`{not json`), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "good.json"), []byte(`[]`), 0644))

	s, err := NewStore(dir)
	require.NoError(t, err)
	defer s.Close()

	docs, err := s.Documents()
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, "good.json", docs[0].Filename)
}

func TestInvalidateReloads(t *testing.T) {
	dir := t.TempDir()
	s, err := NewStore(dir)
	require.NoError(t, err)
	defer s.Close()

	docs, err := s.Documents()
	require.NoError(t, err)
	assert.Empty(t, docs)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "new.json"), []byte(`{}`), 0644))
	s.Invalidate()

	docs, err = s.Documents()
	require.NoError(t, err)
	assert.Len(t, docs, 1)
}

func TestPromptDataPlaceholder(t *testing.T) {
	s, err := NewStore(t.TempDir())
	require.NoError(t, err)
	defer s.Close()

	data, err := s.PromptData()
	require.NoError(t, err)
	assert.Equal(t, "No invoice data has been processed yet.", data)
}
