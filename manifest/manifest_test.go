package manifest

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddAndMarshal(t *testing.T) {
	m := New()
	m.Add("a.txt", "id-a", "text/plain")
	m.Add("b.png", "id-b", "image/png")

	data, err := m.Marshal()
	require.NoError(t, err)

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, Kind, decoded["manifest"])
	assert.Equal(t, Version, decoded["version"])
	paths := decoded["paths"].(map[string]interface{})
	assert.Len(t, paths, 2)
}

func TestBuildTransactionTagsContentType(t *testing.T) {
	m := New()
	m.Add("a.txt", "id-a", "text/plain")

	tx, err := m.BuildTransaction()
	require.NoError(t, err)
	require.Len(t, tx.Tags, 1)
	assert.Equal(t, "Content-Type", string(tx.Tags[0].Name))
	assert.Equal(t, ContentType, string(tx.Tags[0].Value))
}

func TestWriteURLSidecar(t *testing.T) {
	m := New()
	m.Add("a.txt", "id-a", "text/plain")

	dir := t.TempDir()
	sidecar := filepath.Join(dir, "sidecar.json")
	require.NoError(t, WriteURLSidecar(sidecar, "https://arweave.net", "manifest-id", m))

	var decoded map[string]URLPair
	data, err := os.ReadFile(sidecar)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(data, &decoded))
	entry := decoded["a.txt"]
	assert.Equal(t, "https://arweave.net/id-a", entry.DirectURL)
	assert.Equal(t, "https://arweave.net/manifest-id/a.txt", entry.ManifestURL)
}
