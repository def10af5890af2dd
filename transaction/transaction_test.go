package transaction

import (
	"bytes"
	"crypto/sha256"
	"testing"

	"github.com/liteseed/arloader/signer"
	"github.com/liteseed/arloader/tag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testKeyPath = "../signer/testdata/signer.json"

func TestNewSetsFormatAndChunks(t *testing.T) {
	tx, err := New([]byte("hello"), nil, "0", nil)
	require.NoError(t, err)
	assert.Equal(t, Format, tx.Format)
	assert.Equal(t, "5", tx.DataSize)
	require.Len(t, tx.Chunks, 1)
	require.Len(t, tx.Proofs, 1)
}

func TestNewEmptyDataHasNoChunks(t *testing.T) {
	tx, err := New(nil, nil, "0", nil)
	require.NoError(t, err)
	assert.Equal(t, "0", tx.DataSize)
	assert.Nil(t, tx.Chunks)
	assert.Nil(t, tx.DataRoot)
}

func TestSignSetsIDAndSignature(t *testing.T) {
	s, err := signer.FromPath(testKeyPath)
	require.NoError(t, err)

	tx, err := New([]byte("hello"), nil, "0", []tag.Tag{tag.New("Content-Type", "text/plain")})
	require.NoError(t, err)
	tx.LastTx = []byte("anchor-placeholder")

	require.NoError(t, tx.Sign(s))

	assert.NotEmpty(t, tx.ID)
	assert.NotEmpty(t, tx.Signature)
	assert.Equal(t, s.Owner(), tx.Owner)

	sum := sha256.Sum256(tx.Signature)
	assert.True(t, bytes.Equal(sum[:], tx.ID))
}

func TestSignThenVerifySucceeds(t *testing.T) {
	s, err := signer.FromPath(testKeyPath)
	require.NoError(t, err)

	tx, err := New([]byte("payload for verification"), nil, "0", nil)
	require.NoError(t, err)
	tx.LastTx = []byte("some-anchor")
	tx.Reward = "1234"

	require.NoError(t, tx.Sign(s))
	assert.NoError(t, tx.Verify())
}

func TestVerifyRejectsTamperedReward(t *testing.T) {
	s, err := signer.FromPath(testKeyPath)
	require.NoError(t, err)

	tx, err := New([]byte("payload"), nil, "0", nil)
	require.NoError(t, err)
	tx.Reward = "100"

	require.NoError(t, tx.Sign(s))

	tx.Reward = "999"
	assert.Error(t, tx.Verify())
}

func TestGetChunkReturnsMatchingBytes(t *testing.T) {
	data := bytes.Repeat([]byte{0x5, 0x7}, ChunkSize)
	tx, err := New(data, nil, "0", nil)
	require.NoError(t, err)
	require.NotEmpty(t, tx.Chunks)

	chunk, err := tx.GetChunk(0, data)
	require.NoError(t, err)
	assert.Equal(t, tx.DataRoot, chunk.DataRoot)
	assert.NotEmpty(t, chunk.Chunk)
}

func TestGetChunkRejectsUnpreparedOrOutOfRange(t *testing.T) {
	tx := &Transaction{}
	_, err := tx.GetChunk(0, []byte("x"))
	assert.Error(t, err)

	tx2, err := New([]byte("small"), nil, "0", nil)
	require.NoError(t, err)
	_, err = tx2.GetChunk(5, []byte("small"))
	assert.Error(t, err)
}

func TestCalculateRewardBaselineOnly(t *testing.T) {
	reward := CalculateReward(ChunkSize, 1000, 500, 1.0)
	assert.Equal(t, "1000", reward)
}

func TestCalculateRewardMultipleChunks(t *testing.T) {
	reward := CalculateReward(ChunkSize*3, 1000, 500, 1.0)
	assert.Equal(t, "2000", reward)
}

func TestCalculateRewardAppliesMultiplier(t *testing.T) {
	reward := CalculateReward(ChunkSize, 1000, 500, 1.5)
	assert.Equal(t, "1500", reward)
}
