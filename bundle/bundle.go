package bundle

import (
	"encoding/binary"
	"fmt"

	"github.com/liteseed/arloader/b64"
	"github.com/liteseed/arloader/dataitem"
)

const headerEntrySize = 8 + HeaderPadding + ItemIDSize // 64
const countHeaderSize = 8 + HeaderPadding              // 32

// New encodes a group of already-signed data items into a bundle. Item
// order in items is preserved in both the item index and the body
// concatenation.
func New(items []dataitem.DataItem) (*Bundle, error) {
	headers := make([]ItemHeader, len(items))
	bodies := make([][]byte, len(items))

	for i, item := range items {
		raw, err := item.Encode()
		if err != nil {
			return nil, fmt.Errorf("bundle: encode item %d: %w", i, err)
		}
		headers[i] = ItemHeader{Size: len(raw), ID: item.ID}
		bodies[i] = raw
	}

	n := len(items)
	totalBody := 0
	for _, b := range bodies {
		totalBody += len(b)
	}

	raw := make([]byte, 0, countHeaderSize+n*headerEntrySize+totalBody)
	raw = append(raw, encodeCountHeader(n)...)
	for _, h := range headers {
		raw = append(raw, encodeItemHeader(h)...)
	}
	for _, b := range bodies {
		raw = append(raw, b...)
	}

	return &Bundle{
		Headers: headers,
		Items:   items,
		Raw:     raw,
	}, nil
}

func encodeCountHeader(n int) []byte {
	buf := make([]byte, countHeaderSize)
	binary.LittleEndian.PutUint64(buf[:8], uint64(n))
	return buf
}

func encodeItemHeader(h ItemHeader) []byte {
	buf := make([]byte, headerEntrySize)
	binary.LittleEndian.PutUint64(buf[:8], uint64(h.Size))
	copy(buf[8+HeaderPadding:], h.ID)
	return buf
}

// Decode parses a bundle's binary envelope, verifying each item's
// signature and tag invariants along the way. Per §4.C6, a successfully
// verified item's id is then overwritten with the outer index's id: the
// outer index is authoritative, since it is what the network's indexers
// address. This means a malformed inner id that still verifies against
// its own signature is silently accepted — intentional per the network's
// own bundle spec, not a bug in this client.
func Decode(data []byte) (*Bundle, error) {
	if len(data) < countHeaderSize {
		return nil, fmt.Errorf("bundle: truncated count header")
	}

	n := int(binary.LittleEndian.Uint64(data[:8]))
	cursor := countHeaderSize

	indexEnd := cursor + n*headerEntrySize
	if indexEnd > len(data) {
		return nil, fmt.Errorf("bundle: truncated item index for %d items", n)
	}

	headers := make([]ItemHeader, n)
	for i := 0; i < n; i++ {
		entry := data[cursor : cursor+headerEntrySize]
		size := int(binary.LittleEndian.Uint64(entry[:8]))
		id := b64.B64(append([]byte{}, entry[8+HeaderPadding:headerEntrySize]...))
		headers[i] = ItemHeader{Size: size, ID: id}
		cursor += headerEntrySize
	}

	items := make([]dataitem.DataItem, n)
	for i, h := range headers {
		if cursor+h.Size > len(data) {
			return nil, fmt.Errorf("bundle: item %d body truncated", i)
		}
		item, err := dataitem.Decode(data[cursor : cursor+h.Size])
		if err != nil {
			return nil, fmt.Errorf("bundle: decode item %d: %w", i, err)
		}
		if err := item.Verify(); err != nil {
			return nil, fmt.Errorf("bundle: item %d failed verification: %w", i, err)
		}
		item.ID = h.ID
		items[i] = *item
		cursor += h.Size
	}

	return &Bundle{
		Headers: headers,
		Items:   items,
		Raw:     data,
	}, nil
}

// Verify reports whether data's declared item sizes exactly account for
// its total length, without decoding or signature-checking any item. It
// is a cheap structural sanity check; Decode performs the full
// cryptographic verification.
func Verify(data []byte) (bool, error) {
	if len(data) < countHeaderSize {
		return false, fmt.Errorf("bundle: truncated count header")
	}
	n := int(binary.LittleEndian.Uint64(data[:8]))

	indexEnd := countHeaderSize + n*headerEntrySize
	if indexEnd > len(data) {
		return false, fmt.Errorf("bundle: truncated item index for %d items", n)
	}

	total := 0
	for i := 0; i < n; i++ {
		off := countHeaderSize + i*headerEntrySize
		total += int(binary.LittleEndian.Uint64(data[off : off+8]))
	}

	return len(data) == countHeaderSize+n*headerEntrySize+total, nil
}
