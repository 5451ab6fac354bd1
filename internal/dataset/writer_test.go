package dataset

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriter_AppendReadAndManifest(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "dataset.jsonl")

	w, err := NewWriter(path)
	require.NoError(t, err)
	require.NoError(t, w.Append(Entry{Instruction: "i", Input: "a", Output: `{"identifiers":[]}`}, "a.swift"))
	require.NoError(t, w.Append(Entry{Instruction: "i", Input: "b"}, "sub/b.swift"))
	require.NoError(t, w.Close())

	entries, err := ReadEntries(path)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "a", entries[0].Input)
	assert.Equal(t, "b", entries[1].Input)
	assert.Empty(t, entries[1].Output)

	done := ProcessedKeys(path)
	assert.Contains(t, done, "a.swift")
	assert.Contains(t, done, "sub/b.swift")

	// Reopening appends rather than truncating.
	w, err = NewWriter(path)
	require.NoError(t, err)
	require.NoError(t, w.Append(Entry{Instruction: "i", Input: "c"}, "c.swift"))
	require.NoError(t, w.Close())

	entries, err = ReadEntries(path)
	require.NoError(t, err)
	assert.Len(t, entries, 3)
	assert.Len(t, ProcessedKeys(path), 3)
}

func TestWriter_OmitsEmptyOutputField(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dataset.jsonl")
	w, err := NewWriter(path)
	require.NoError(t, err)
	require.NoError(t, w.Append(Entry{Instruction: "i", Input: "x"}, "x.swift"))
	require.NoError(t, w.Close())

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotContains(t, string(raw), `"output"`)
}

func TestProcessedKeys_MissingManifest(t *testing.T) {
	done := ProcessedKeys(filepath.Join(t.TempDir(), "never-written.jsonl"))
	assert.Empty(t, done)
}

func TestReadEntries_SkipsMalformedLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dataset.jsonl")
	content := `{"instruction":"i","input":"one"}
not json at all

{"instruction":"i","input":"two"}
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	entries, err := ReadEntries(path)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "one", entries[0].Input)
	assert.Equal(t, "two", entries[1].Input)
}
