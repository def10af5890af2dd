// Package deephash implements the network's canonical "deep hash" digest:
// a recursive hash over a heterogeneous tree whose nodes are either blobs
// (byte strings) or ordered lists of further nodes. Transaction and
// DataItem signing both reduce to building one of these trees and hashing
// it with Hash.
//
// The algorithm (all hashing is SHA-384):
//
//	DH(blob b)  = H( H("blob") ‖ H(ascii(len(b))) ‖ H(b) )
//	DH(list xs) = fold over xs with
//	              acc0     = H( H("list") ‖ H(ascii(len(xs))) )
//	              acc(i+1) = H( acc(i) ‖ DH(xs[i]) )
//	              result   = acc(len(xs))
package deephash

import (
	"crypto/sha512"
	"fmt"
	"io"
)

// Size is the digest length in bytes (SHA-384 output).
const Size = 48

// Digest is a deep-hash result.
type Digest [Size]byte

// Chunk is a node of the deep-hash input tree: either a Blob or a List.
// Modeled as a closed sum type per the design note that the recursion is
// a Blob | List<Self> value, not an open interface for third parties to
// implement.
type Chunk interface {
	chunk()
}

// Blob is a leaf node: a raw byte string.
type Blob []byte

func (Blob) chunk() {}

// List is an interior node: an ordered sequence of further chunks.
type List []Chunk

func (List) chunk() {}

// Hash computes the deep hash of a chunk tree.
func Hash(c Chunk) Digest {
	switch v := c.(type) {
	case Blob:
		return hashBlob(v)
	case List:
		return hashList(v)
	default:
		panic(fmt.Sprintf("deephash: unknown chunk type %T", c))
	}
}

func hashBlob(b Blob) Digest {
	tagHash := sha512.Sum384([]byte("blob"))
	lenHash := sha512.Sum384([]byte(fmt.Sprint(len(b))))
	dataHash := sha512.Sum384(b)
	return sha512.Sum384(append(append(tagHash[:], lenHash[:]...), dataHash[:]...))
}

func hashList(xs List) Digest {
	tagHash := sha512.Sum384([]byte("list"))
	lenHash := sha512.Sum384([]byte(fmt.Sprint(len(xs))))
	acc := sha512.Sum384(append(tagHash[:], lenHash[:]...))
	for _, x := range xs {
		h := Hash(x)
		acc = sha512.Sum384(append(acc[:], h[:]...))
	}
	return acc
}

// HashReader computes the deep hash of a single large blob without holding
// it entirely in memory, streaming it through SHA-384 in the reader's
// natural read-size pieces. size must equal the exact number of bytes the
// reader will yield; it is only used for the "blob" tag, not for chunking
// (the network's own 256 KiB leaf chunking is a distinct concern, see
// package merkle).
func HashReader(r io.Reader, size int64) (Digest, error) {
	tagHash := sha512.Sum384([]byte("blob"))
	lenHash := sha512.Sum384([]byte(fmt.Sprint(size)))

	h := sha512.New384()
	if _, err := io.Copy(h, r); err != nil {
		return Digest{}, fmt.Errorf("deephash: stream blob: %w", err)
	}
	dataHash := h.Sum(nil)
	return sha512.Sum384(append(append(tagHash[:], lenHash[:]...), dataHash...)), nil
}

// HashListWithStreamedTail computes the deep hash of a list whose final
// element is a large blob read from r (size bytes) rather than held in
// memory, with head holding the deep-hash chunks preceding it in the list.
// This lets DataItem/Transaction signing avoid buffering multi-gigabyte
// payloads just to run them through Hash.
func HashListWithStreamedTail(head []Chunk, r io.Reader, size int64) (Digest, error) {
	total := len(head) + 1
	tagHash := sha512.Sum384([]byte("list"))
	lenHash := sha512.Sum384([]byte(fmt.Sprint(total)))
	acc := sha512.Sum384(append(tagHash[:], lenHash[:]...))

	for _, x := range head {
		h := Hash(x)
		acc = sha512.Sum384(append(acc[:], h[:]...))
	}

	tailHash, err := HashReader(r, size)
	if err != nil {
		return Digest{}, err
	}
	acc = sha512.Sum384(append(acc[:], tailHash[:]...))
	return acc, nil
}
