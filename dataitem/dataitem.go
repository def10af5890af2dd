package dataitem

import (
	"crypto/sha256"
	"encoding/binary"
	"fmt"

	"github.com/liteseed/arloader/b64"
	"github.com/liteseed/arloader/deephash"
	"github.com/liteseed/arloader/signer"
	"github.com/liteseed/arloader/tag"
)

// New builds an unsigned data item over data. target and anchor must each
// be either nil or exactly 32 bytes.
func New(data []byte, target, anchor b64.B64, tags []tag.Tag) (*DataItem, error) {
	if target != nil && len(target) != TargetSize {
		return nil, fmt.Errorf("dataitem: target must be %d bytes, got %d", TargetSize, len(target))
	}
	if anchor != nil && len(anchor) != AnchorSize {
		return nil, fmt.Errorf("dataitem: anchor must be %d bytes, got %d", AnchorSize, len(anchor))
	}
	return &DataItem{
		SignatureType: SignatureTypeRSA,
		Target:        target,
		Anchor:        anchor,
		Tags:          tags,
		Data:          b64.B64(data),
	}, nil
}

// Sign fills in Owner from s, computes the deep hash over the signing
// input, signs it, and derives ID = SHA-256(signature).
func (d *DataItem) Sign(s *signer.Signer) error {
	d.Owner = s.Owner()

	digest, err := d.deepHash()
	if err != nil {
		return err
	}

	sig, err := s.Sign(digest[:])
	if err != nil {
		return fmt.Errorf("dataitem: sign: %w", err)
	}

	id := sha256.Sum256(sig)
	d.Signature = b64.B64(sig)
	d.ID = b64.B64(id[:])
	return nil
}

// Verify recomputes the deep hash and checks Signature against Owner, then
// checks id/tag/anchor invariants an ANS-104 reader enforces.
func (d *DataItem) Verify() error {
	id := sha256.Sum256(d.Signature)
	if !b64.Equal(b64.B64(id[:]), d.ID) {
		return fmt.Errorf("dataitem: id does not match sha256(signature)")
	}

	digest, err := d.deepHash()
	if err != nil {
		return err
	}
	if err := signer.VerifyWithOwner(d.Owner, digest[:], d.Signature); err != nil {
		return err
	}

	if len(d.Tags) > tag.MaxTags {
		return fmt.Errorf("dataitem: %d tags exceeds the %d tag limit", len(d.Tags), tag.MaxTags)
	}
	if d.Anchor != nil && len(d.Anchor) != AnchorSize {
		return fmt.Errorf("dataitem: anchor must be %d bytes", AnchorSize)
	}
	if d.Target != nil && len(d.Target) != TargetSize {
		return fmt.Errorf("dataitem: target must be %d bytes", TargetSize)
	}
	return nil
}

// deepHash builds the deep-hash input §6 specifies for a data item:
// [ ascii("dataitem"), ascii("1"), ascii(signature_type), owner, target,
//   anchor, serialized_tag_bytes, data ]
// serialized_tag_bytes is the raw Avro tag encoding, not the length-prefixed
// on-wire tag section.
func (d *DataItem) deepHash() (deephash.Digest, error) {
	avroTags, err := tag.SerializeAvro(d.Tags)
	if err != nil {
		return deephash.Digest{}, fmt.Errorf("dataitem: serialize tags: %w", err)
	}

	chunks := deephash.List{
		deephash.Blob("dataitem"),
		deephash.Blob("1"),
		deephash.Blob(fmt.Sprint(d.SignatureType)),
		deephash.Blob(d.Owner),
		deephash.Blob(d.Target),
		deephash.Blob(d.Anchor),
		deephash.Blob(avroTags),
		deephash.Blob(d.Data),
	}
	return deephash.Hash(chunks), nil
}

// Encode serializes a signed data item to its on-wire binary layout:
//
//	2   bytes  little-endian u16  signature_type
//	512 bytes                     signature
//	512 bytes                     owner
//	1   byte                      target_present
//	[32 bytes                     target]
//	1   byte                      anchor_present
//	[32 bytes                     anchor]
//	8   bytes  little-endian u64  tag_count
//	8   bytes  little-endian u64  tag_bytes_len
//	tag_bytes_len bytes           Avro tag encoding
//	remaining bytes                data
func (d *DataItem) Encode() ([]byte, error) {
	if len(d.Signature) != SignatureSize {
		return nil, fmt.Errorf("dataitem: signature must be %d bytes, got %d", SignatureSize, len(d.Signature))
	}
	if len(d.Owner) != OwnerSize {
		return nil, fmt.Errorf("dataitem: owner must be %d bytes, got %d", OwnerSize, len(d.Owner))
	}

	tagSection, err := tag.EncodeSection(d.Tags)
	if err != nil {
		return nil, fmt.Errorf("dataitem: encode tags: %w", err)
	}

	size := 2 + SignatureSize + OwnerSize + 1 + 1 + len(tagSection) + len(d.Data)
	if d.Target != nil {
		size += TargetSize
	}
	if d.Anchor != nil {
		size += AnchorSize
	}

	out := make([]byte, 0, size)
	var typeBuf [2]byte
	binary.LittleEndian.PutUint16(typeBuf[:], uint16(d.SignatureType))
	out = append(out, typeBuf[:]...)
	out = append(out, d.Signature...)
	out = append(out, d.Owner...)

	if d.Target != nil {
		out = append(out, 1)
		out = append(out, d.Target...)
	} else {
		out = append(out, 0)
	}

	if d.Anchor != nil {
		out = append(out, 1)
		out = append(out, d.Anchor...)
	} else {
		out = append(out, 0)
	}

	out = append(out, tagSection...)
	out = append(out, d.Data...)
	return out, nil
}

// Decode parses a data item's on-wire binary layout. The caller is
// responsible for any bundle-level id substitution (§4.C6); Decode itself
// reports whatever id is embedded (sha256 of the parsed signature).
func Decode(raw []byte) (*DataItem, error) {
	if len(raw) < 2+SignatureSize+OwnerSize+2 {
		return nil, fmt.Errorf("dataitem: raw data too small to be a data item")
	}

	signatureType := int(binary.LittleEndian.Uint16(raw[0:2]))
	cursor := 2

	signature := b64.B64(raw[cursor : cursor+SignatureSize])
	cursor += SignatureSize

	owner := b64.B64(raw[cursor : cursor+OwnerSize])
	cursor += OwnerSize

	var target b64.B64
	targetPresent := raw[cursor]
	cursor++
	if targetPresent == 1 {
		if cursor+TargetSize > len(raw) {
			return nil, fmt.Errorf("dataitem: truncated target field")
		}
		target = b64.B64(raw[cursor : cursor+TargetSize])
		cursor += TargetSize
	}

	var anchor b64.B64
	anchorPresent := raw[cursor]
	cursor++
	if anchorPresent == 1 {
		if cursor+AnchorSize > len(raw) {
			return nil, fmt.Errorf("dataitem: truncated anchor field")
		}
		anchor = b64.B64(raw[cursor : cursor+AnchorSize])
		cursor += AnchorSize
	}

	tags, cursor, err := tag.DecodeSection(raw, cursor)
	if err != nil {
		return nil, fmt.Errorf("dataitem: decode tags: %w", err)
	}

	data := b64.B64(raw[cursor:])

	id := sha256.Sum256(signature)

	return &DataItem{
		SignatureType: signatureType,
		Signature:     signature,
		ID:            b64.B64(id[:]),
		Owner:         owner,
		Target:        target,
		Anchor:        anchor,
		Tags:          tags,
		Data:          data,
	}, nil
}
