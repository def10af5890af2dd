package pathbatch

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sizerFromMap(sizes map[string]int64) FileSizer {
	return func(path string) (int64, error) {
		n, ok := sizes[path]
		if !ok {
			return 0, fmt.Errorf("no size for %s", path)
		}
		return n, nil
	}
}

func TestChunkPacksUnderBudget(t *testing.T) {
	sizes := map[string]int64{"a": 10, "b": 10, "c": 10}
	batches, err := Chunk([]string{"a", "b", "c"}, 25, sizerFromMap(sizes))
	require.NoError(t, err)
	require.Len(t, batches, 2)
	assert.Equal(t, []string{"a", "b"}, batches[0].Paths)
	assert.Equal(t, int64(20), batches[0].TotalSize)
	assert.Equal(t, []string{"c"}, batches[1].Paths)
}

func TestChunkSingleOversizedFileGetsOwnBatch(t *testing.T) {
	sizes := map[string]int64{"big": 100, "small": 5}
	batches, err := Chunk([]string{"big", "small"}, 25, sizerFromMap(sizes))
	require.NoError(t, err)
	require.Len(t, batches, 2)
	assert.Equal(t, []string{"big"}, batches[0].Paths)
	assert.Equal(t, []string{"small"}, batches[1].Paths)
}

func TestChunkSumOfBatchesEqualsSumOfInputs(t *testing.T) {
	sizes := map[string]int64{"a": 7, "b": 13, "c": 22, "d": 1}
	paths := []string{"a", "b", "c", "d"}
	batches, err := Chunk(paths, 20, sizerFromMap(sizes))
	require.NoError(t, err)

	var total int64
	for _, b := range batches {
		total += b.TotalSize
	}
	assert.Equal(t, int64(43), total)
}

func TestChunkEmptyInput(t *testing.T) {
	batches, err := Chunk(nil, 100, sizerFromMap(nil))
	require.NoError(t, err)
	assert.Empty(t, batches)
}

func TestChunkPropagatesSizerError(t *testing.T) {
	_, err := Chunk([]string{"missing"}, 100, sizerFromMap(nil))
	assert.Error(t, err)
}
