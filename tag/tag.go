// Package tag implements the network's two tag flavors and the
// length-prefixed Avro-style binary encoding data-item tags use on the
// wire, per the data-item binary layout.
package tag

import (
	"encoding/binary"
	"fmt"

	"github.com/linkedin/goavro/v2"
)

// MaxTags is the largest tag list a data item's bundle section will admit.
const MaxTags = 128

const avroTagSchema = `
{
	"type": "array",
	"items": {
		"type": "record",
		"name": "Tag",
		"fields": [
			{ "name": "name", "type": "bytes" },
			{ "name": "value", "type": "bytes" }
		]
	}
}`

var avroCodec = mustCodec(avroTagSchema)

func mustCodec(schema string) *goavro.Codec {
	codec, err := goavro.NewCodec(schema)
	if err != nil {
		panic(fmt.Sprintf("tag: invalid avro schema: %v", err))
	}
	return codec
}

// SerializeAvro encodes tags into the raw Avro-style binary blob used both
// as the on-wire tag section's payload and, unprefixed, as the
// `serialized_tag_bytes` element of a data item's deep-hash input. An
// empty tag list serializes to nil, matching an absent tag section.
func SerializeAvro(tags []Tag) ([]byte, error) {
	if len(tags) == 0 {
		return nil, nil
	}
	if len(tags) > MaxTags {
		return nil, fmt.Errorf("tag: %d tags exceeds the %d tag limit", len(tags), MaxTags)
	}

	native := make([]map[string]any, len(tags))
	for i, t := range tags {
		native[i] = map[string]any{"name": []byte(t.Name), "value": []byte(t.Value)}
	}

	data, err := avroCodec.BinaryFromNative(nil, native)
	if err != nil {
		return nil, fmt.Errorf("tag: encode avro: %w", err)
	}
	return data, nil
}

// DeserializeAvro decodes a raw Avro-style binary blob (as produced by
// SerializeAvro) back into a tag list.
func DeserializeAvro(data []byte) ([]Tag, error) {
	if len(data) == 0 {
		return nil, nil
	}

	native, _, err := avroCodec.NativeFromBinary(data)
	if err != nil {
		return nil, fmt.Errorf("tag: decode avro: %w", err)
	}

	items, ok := native.([]any)
	if !ok {
		return nil, fmt.Errorf("tag: unexpected avro native type %T", native)
	}

	tags := make([]Tag, 0, len(items))
	for _, v := range items {
		record, ok := v.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("tag: unexpected avro record type %T", v)
		}
		tags = append(tags, Tag{
			Name:  string(record["name"].([]byte)),
			Value: string(record["value"].([]byte)),
		})
	}
	return tags, nil
}

// EncodeSection builds the full on-wire tag section: an 8-byte
// little-endian tag_count, an 8-byte little-endian tag_bytes_len, and the
// Avro-encoded tag bytes, so a reader can skip the section without
// parsing Avro.
func EncodeSection(tags []Tag) ([]byte, error) {
	avroBytes, err := SerializeAvro(tags)
	if err != nil {
		return nil, err
	}

	section := make([]byte, 16+len(avroBytes))
	binary.LittleEndian.PutUint64(section[0:8], uint64(len(tags)))
	binary.LittleEndian.PutUint64(section[8:16], uint64(len(avroBytes)))
	copy(section[16:], avroBytes)
	return section, nil
}

// DecodeSection parses a tag section starting at offset in data, returning
// the decoded tags and the offset immediately following the section.
func DecodeSection(data []byte, offset int) ([]Tag, int, error) {
	if offset+16 > len(data) {
		return nil, offset, fmt.Errorf("tag: truncated tag section header")
	}

	tagCount := binary.LittleEndian.Uint64(data[offset : offset+8])
	tagBytesLen := binary.LittleEndian.Uint64(data[offset+8 : offset+16])
	cursor := offset + 16

	if tagCount > MaxTags {
		return nil, cursor, fmt.Errorf("tag: %d tags exceeds the %d tag limit", tagCount, MaxTags)
	}
	if tagCount == 0 || tagBytesLen == 0 {
		return nil, cursor, nil
	}

	end := cursor + int(tagBytesLen)
	if end > len(data) {
		return nil, cursor, fmt.Errorf("tag: truncated tag section body")
	}

	tags, err := DeserializeAvro(data[cursor:end])
	if err != nil {
		return nil, cursor, err
	}
	if len(tags) != int(tagCount) {
		return nil, cursor, fmt.Errorf("tag: section declared %d tags, decoded %d", tagCount, len(tags))
	}
	return tags, end, nil
}
