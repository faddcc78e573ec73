package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Adithya-Monish-Kumar-K/wordtree/internal/indexer/consumer"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func writeText(t *testing.T, name, text string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(text), 0o644))
	return path
}

func TestIndexCommand(t *testing.T) {
	path := writeText(t, "fox.txt", "the quick fox\njumps over the lazy fox\n")

	out, err := execute(t, "index", path, "--variant", "both", "-s", "fox", "-s", "cat", "--inorder")
	require.NoError(t, err)

	assert.Contains(t, out, "2 lines, 8 words")
	assert.Contains(t, out, `BST "fox": (1,3) (2,5)`)
	assert.Contains(t, out, `AVL "fox": (1,3) (2,5)`)
	assert.Contains(t, out, `AVL "cat": not found`)
	assert.Contains(t, out, "jumps: (2,1)\n")
}

func TestIndexCommandDelete(t *testing.T) {
	path := writeText(t, "abc.txt", "alfa bravo alfa")

	out, err := execute(t, "index", path, "--variant", "avl", "--delete", "alfa", "-s", "alfa")
	require.NoError(t, err)
	assert.Contains(t, out, `delete "alfa": true`)
	assert.Contains(t, out, `AVL "alfa": not found`)
}

func TestIndexCommandErrors(t *testing.T) {
	_, err := execute(t, "index", filepath.Join(t.TempDir(), "missing.txt"))
	assert.Error(t, err)

	_, err = execute(t, "index", writeText(t, "empty.txt", ""))
	assert.Error(t, err)

	_, err = execute(t, "index", writeText(t, "x.txt", "x"), "--variant", "trie")
	assert.Error(t, err)
}

func TestCompressDecompressCommands(t *testing.T) {
	text := "abracadabra, abracadabra, abracadabra\n"
	in := writeText(t, "magic.txt", text)
	dir := filepath.Dir(in)

	out, err := execute(t, "compress", in)
	require.NoError(t, err)
	container := filepath.Join(dir, "magic.huff")
	assert.Contains(t, out, container)
	assert.FileExists(t, container)

	out, err = execute(t, "decompress", container)
	require.NoError(t, err)
	restored := filepath.Join(dir, "magic_decomp.txt")
	assert.Contains(t, out, restored)

	data, err := os.ReadFile(restored)
	require.NoError(t, err)
	assert.Equal(t, text, string(data))
}

func TestDecompressRejectsGarbage(t *testing.T) {
	in := writeText(t, "junk.huff", "not a container")
	_, err := execute(t, "decompress", in, "-o", filepath.Join(t.TempDir(), "out.txt"))
	assert.Error(t, err)
}

func TestReportCommandJSON(t *testing.T) {
	path := writeText(t, "doc.txt", "uno dos tres\ncuatro cinco uno\n")

	out, err := execute(t, "report", path, "--json", "--repetitions", "3", "-w", "uno")
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &decoded))
	assert.NotEmpty(t, decoded)
}

func TestExplicitMissingConfigFails(t *testing.T) {
	path := writeText(t, "a.txt", "a")
	_, err := execute(t, "--config", filepath.Join(t.TempDir(), "nope.yaml"), "index", path)
	assert.Error(t, err)
}

func TestTextEventsKeepOrder(t *testing.T) {
	first := writeText(t, "one.txt", "first")
	second := writeText(t, "two.txt", "second")

	events, err := textEvents([]string{first, second})
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, events[0].Key, events[1].Key)

	doc, ok := events[1].Value.(consumer.TextEvent)
	require.True(t, ok)
	assert.Equal(t, "second", doc.Text)
	assert.Contains(t, doc.DocumentID, "/1-two.txt")

	_, err = textEvents([]string{filepath.Join(t.TempDir(), "missing")})
	assert.Error(t, err)
}
