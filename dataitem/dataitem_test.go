package dataitem

import (
	"bytes"
	"testing"

	"github.com/liteseed/arloader/b64"
	"github.com/liteseed/arloader/signer"
	"github.com/liteseed/arloader/tag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testKeyPath = "../signer/testdata/signer.json"

func TestNewRejectsBadTargetAnchorLength(t *testing.T) {
	_, err := New([]byte("x"), b64.B64("short"), nil, nil)
	assert.Error(t, err)

	_, err = New([]byte("x"), nil, b64.B64("short"), nil)
	assert.Error(t, err)
}

func TestSignThenVerifySucceeds(t *testing.T) {
	s, err := signer.FromPath(testKeyPath)
	require.NoError(t, err)

	d, err := New([]byte("hello data item"), nil, nil, []tag.Tag{tag.New("Content-Type", "text/plain")})
	require.NoError(t, err)

	require.NoError(t, d.Sign(s))
	assert.NoError(t, d.Verify())
	assert.Len(t, d.Signature, SignatureSize)
	assert.Len(t, d.Owner, OwnerSize)
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	s, err := signer.FromPath(testKeyPath)
	require.NoError(t, err)

	target := bytes.Repeat([]byte{0x01}, TargetSize)
	anchor := bytes.Repeat([]byte{0x02}, AnchorSize)

	d, err := New([]byte("payload bytes"), target, anchor, []tag.Tag{
		tag.New("App-Name", "arloader"),
		tag.New("App-Version", "1.0.0"),
	})
	require.NoError(t, err)
	require.NoError(t, d.Sign(s))

	raw, err := d.Encode()
	require.NoError(t, err)

	decoded, err := Decode(raw)
	require.NoError(t, err)

	assert.Equal(t, d.ID, decoded.ID)
	assert.Equal(t, d.Signature, decoded.Signature)
	assert.Equal(t, d.Owner, decoded.Owner)
	assert.Equal(t, d.Target, decoded.Target)
	assert.Equal(t, d.Anchor, decoded.Anchor)
	assert.Equal(t, d.Tags, decoded.Tags)
	assert.Equal(t, d.Data, decoded.Data)
	assert.NoError(t, decoded.Verify())
}

func TestEncodeDecodeRoundTripNoTargetAnchorNoTags(t *testing.T) {
	s, err := signer.FromPath(testKeyPath)
	require.NoError(t, err)

	d, err := New([]byte("no optional fields"), nil, nil, nil)
	require.NoError(t, err)
	require.NoError(t, d.Sign(s))

	raw, err := d.Encode()
	require.NoError(t, err)

	decoded, err := Decode(raw)
	require.NoError(t, err)
	assert.Equal(t, d.ID, decoded.ID)
	assert.Empty(t, decoded.Target)
	assert.Empty(t, decoded.Anchor)
	assert.Empty(t, decoded.Tags)
}

func TestVerifyRejectsTamperedData(t *testing.T) {
	s, err := signer.FromPath(testKeyPath)
	require.NoError(t, err)

	d, err := New([]byte("original"), nil, nil, nil)
	require.NoError(t, err)
	require.NoError(t, d.Sign(s))

	d.Data = b64.B64("tampered")
	assert.Error(t, d.Verify())
}

func TestEncodeRejectsUnsigned(t *testing.T) {
	d, err := New([]byte("x"), nil, nil, nil)
	require.NoError(t, err)
	_, err = d.Encode()
	assert.Error(t, err)
}
