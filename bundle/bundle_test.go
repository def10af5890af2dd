package bundle

import (
	"testing"

	"github.com/liteseed/arloader/dataitem"
	"github.com/liteseed/arloader/signer"
	"github.com/liteseed/arloader/tag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testKeyPath = "../signer/testdata/signer.json"

func signedItems(t *testing.T, s *signer.Signer, n int) []dataitem.DataItem {
	t.Helper()
	items := make([]dataitem.DataItem, n)
	for i := 0; i < n; i++ {
		d, err := dataitem.New([]byte("item payload"), nil, nil, []tag.Tag{tag.New("idx", fmtInt(i))})
		require.NoError(t, err)
		require.NoError(t, d.Sign(s))
		items[i] = *d
	}
	return items
}

func fmtInt(i int) string {
	digits := "0123456789"
	if i == 0 {
		return "0"
	}
	out := []byte{}
	for i > 0 {
		out = append([]byte{digits[i%10]}, out...)
		i /= 10
	}
	return string(out)
}

func TestEmptyBundleLayout(t *testing.T) {
	b, err := New(nil)
	require.NoError(t, err)
	assert.Len(t, b.Raw, countHeaderSize)

	ok, err := Verify(b.Raw)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	s, err := signer.FromPath(testKeyPath)
	require.NoError(t, err)

	items := signedItems(t, s, 5)

	b, err := New(items)
	require.NoError(t, err)
	require.Len(t, b.Headers, 5)

	ok, err := Verify(b.Raw)
	require.NoError(t, err)
	assert.True(t, ok)

	decoded, err := Decode(b.Raw)
	require.NoError(t, err)
	require.Len(t, decoded.Items, 5)

	for i, item := range decoded.Items {
		assert.Equal(t, items[i].ID, item.ID)
		assert.Equal(t, items[i].Data, item.Data)
		assert.Equal(t, items[i].Tags, item.Tags)
		assert.NoError(t, item.Verify())
	}
}

func TestDecodeRejectsTruncatedHeader(t *testing.T) {
	_, err := Decode([]byte{1, 2, 3})
	assert.Error(t, err)
}

func TestDecodeRejectsTruncatedBody(t *testing.T) {
	s, err := signer.FromPath(testKeyPath)
	require.NoError(t, err)

	items := signedItems(t, s, 2)
	b, err := New(items)
	require.NoError(t, err)

	truncated := b.Raw[:len(b.Raw)-10]
	_, err = Decode(truncated)
	assert.Error(t, err)
}

func TestOuterIndexIDIsAuthoritative(t *testing.T) {
	s, err := signer.FromPath(testKeyPath)
	require.NoError(t, err)

	items := signedItems(t, s, 1)
	b, err := New(items)
	require.NoError(t, err)

	decoded, err := Decode(b.Raw)
	require.NoError(t, err)
	assert.Equal(t, b.Headers[0].ID, decoded.Items[0].ID)
}
