package duckdb

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bactgen/clusterid/internal/clstr"
)

func openInMemory(t *testing.T) *Store {
	t.Helper()
	s, err := Open("")
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestOpenClose(t *testing.T) {
	s := openInMemory(t)
	assert.NotNil(t, s.DB())
}

func TestWriteAndLookupIndex(t *testing.T) {
	s := openInMemory(t)

	idx := make(clstr.Index)
	idx.Add("sampleX", "TetA_1545", "0")
	idx.Add("sampleX", "Aac6-Iaa_760", "140")
	idx.Add("sampleY", "FloR_1212", "7")

	require.NoError(t, s.WriteIndex(idx))

	id, ok, err := s.LookupCluster("sampleX", "Aac6-Iaa_760")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "140", id)

	id, ok, err = s.LookupCluster("sampleY", "FloR_1212")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "7", id)

	n, err := s.Count()
	require.NoError(t, err)
	assert.Equal(t, 3, n)
}

func TestLookupClusterMissing(t *testing.T) {
	s := openInMemory(t)

	_, ok, err := s.LookupCluster("sampleX", "TetA_1545")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestWriteEmptyIndex(t *testing.T) {
	s := openInMemory(t)

	require.NoError(t, s.WriteIndex(make(clstr.Index)))

	n, err := s.Count()
	require.NoError(t, err)
	assert.Equal(t, 0, n)
}

func TestWriteMetadata(t *testing.T) {
	s := openInMemory(t)

	require.NoError(t, s.WriteMetadata("nucl.clstr"))

	var source string
	err := s.DB().QueryRow(`SELECT value FROM export_metadata WHERE key = 'source'`).Scan(&source)
	require.NoError(t, err)
	assert.Equal(t, "nucl.clstr", source)
}

func TestOpenOnDisk(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "clusters.duckdb")

	s, err := Open(path)
	require.NoError(t, err)
	defer s.Close()

	idx := make(clstr.Index)
	idx.Add("sampleX", "TetA_1545", "0")
	require.NoError(t, s.WriteIndex(idx))

	id, ok, err := s.LookupCluster("sampleX", "TetA_1545")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "0", id)
}
