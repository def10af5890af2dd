// Package merkle builds the network's Merkle tree over a transaction
// payload: it splits the payload into ≤256 KiB leaves, builds a binary
// tree over them with SHA-384 node identities, and resolves a flat proof
// per leaf that a verifier can replay to reach the tree's data root.
//
// Leaf content hashing (the per-chunk data_hash) stays SHA-256, matching
// the network's wire format for Chunk.data_hash; only the tree's internal
// node identities use SHA-384, per this client's hashing policy.
package merkle

import (
	"bytes"
	"crypto/sha256"
	"crypto/sha512"
	"encoding/binary"
	"errors"
	"fmt"
	"math"
)

const (
	// ChunkSize is the maximum (and typical) leaf size, 256 KiB.
	ChunkSize = 256 * 1024
	// MinChunkSize is the floor a rebalanced trailing pair must clear.
	MinChunkSize = 32 * 1024
	// HashSize is the width of a SHA-256 data_hash and of a note field.
	HashSize = 32
	// NodeIDSize is the width of a SHA-384 node identity.
	NodeIDSize = 48
)

// NodeType distinguishes a tree node's position.
type NodeType int

const (
	Leaf NodeType = iota
	Branch
)

// Chunk is one leaf of the tree, produced by splitting a payload.
type Chunk struct {
	DataHash     []byte // SHA-256 of the chunk's raw bytes
	MinByteRange int
	MaxByteRange int
}

// Proof is the flat, replayable path from a leaf to the tree's root.
type Proof struct {
	Offset int // leaf's MaxByteRange - 1
	Proof  []byte
}

// Node is an interior or leaf node of the tree.
type Node struct {
	ID           []byte // SHA-384 node identity
	DataHash     []byte // only set on leaves
	ByteRange    int    // only meaningful on branches: left child's MaxByteRange
	MaxByteRange int
	Type         NodeType
	Left         *Node
	Right        *Node
}

// Tree is the result of chunking and hashing a payload: its data root,
// the leaves, and one proof per leaf, in the same order.
type Tree struct {
	DataRoot []byte
	Chunks   []Chunk
	Proofs   []Proof
}

// Generate chunks data, builds the tree, and resolves proofs, discarding
// the spurious trailing empty leaf/proof produced when len(data) is an
// exact multiple of ChunkSize.
func Generate(data []byte) (*Tree, error) {
	chunks, err := splitChunks(data)
	if err != nil {
		return nil, err
	}
	leaves, err := generateLeaves(chunks)
	if err != nil {
		return nil, err
	}
	root, err := buildLayer(leaves)
	if err != nil {
		return nil, err
	}
	proofs := generateProofs(root, nil)

	if len(chunks) > 0 {
		last := chunks[len(chunks)-1]
		if last.MaxByteRange == last.MinByteRange {
			chunks = chunks[:len(chunks)-1]
			proofs = proofs[:len(proofs)-1]
		}
	}

	return &Tree{
		DataRoot: root.ID,
		Chunks:   chunks,
		Proofs:   proofs,
	}, nil
}

// splitChunks implements the leaf-splitting rule of §4.C2, including the
// rebalance that kicks in when the final split would leave a remainder
// smaller than MinChunkSize: the remaining bytes are instead split in two
// at ceil(remaining length / 2), so both of the last two chunks clear the
// floor.
// This must match the network's reference client exactly, or proofs built
// from a rebalanced tree will fail to verify.
func splitChunks(data []byte) ([]Chunk, error) {
	chunks := []Chunk{}
	rest := data
	cursor := 0

	for len(rest) >= ChunkSize {
		chunkSize := ChunkSize
		byteLength := len(rest)

		nextChunkSize := byteLength - ChunkSize
		if nextChunkSize > 0 && nextChunkSize < MinChunkSize {
			chunkSize = int(math.Ceil(float64(byteLength) / 2))
		}

		chunk := rest[:chunkSize]
		hash := sha256.Sum256(chunk)
		cursor += len(chunk)
		chunks = append(chunks, Chunk{
			DataHash:     hash[:],
			MinByteRange: cursor - len(chunk),
			MaxByteRange: cursor,
		})
		rest = rest[chunkSize:]
	}

	hash := sha256.Sum256(rest)
	chunks = append(chunks, Chunk{
		DataHash:     hash[:],
		MinByteRange: cursor,
		MaxByteRange: cursor + len(rest),
	})
	return chunks, nil
}

func generateLeaves(chunks []Chunk) ([]*Node, error) {
	leaves := make([]*Node, 0, len(chunks))
	for _, c := range chunks {
		id := hash384(hash384(c.DataHash), hash384(noteBE32(c.MaxByteRange)))
		leaves = append(leaves, &Node{
			ID:           id,
			DataHash:     c.DataHash,
			MaxByteRange: c.MaxByteRange,
			Type:         Leaf,
		})
	}
	return leaves, nil
}

// buildLayer pairs nodes left-to-right, promoting an odd tail unchanged,
// until a single root remains.
func buildLayer(nodes []*Node) (*Node, error) {
	if len(nodes) == 0 {
		return nil, errors.New("merkle: cannot build a tree over zero leaves")
	}
	for len(nodes) > 1 {
		next := make([]*Node, 0, (len(nodes)+1)/2)
		for i := 0; i < len(nodes); i += 2 {
			if i+1 < len(nodes) {
				next = append(next, hashBranch(nodes[i], nodes[i+1]))
			} else {
				next = append(next, nodes[i])
			}
		}
		nodes = next
	}
	return nodes[0], nil
}

func hashBranch(left, right *Node) *Node {
	id := hash384(hash384(left.ID), hash384(right.ID), hash384(noteBE32(left.MaxByteRange)))
	return &Node{
		ID:           id,
		ByteRange:    left.MaxByteRange,
		MaxByteRange: right.MaxByteRange,
		Left:         left,
		Right:        right,
		Type:         Branch,
	}
}

// generateProofs walks the tree depth-first, accumulating the root-to-leaf
// path bytes, and emits one Proof per leaf in left-to-right order.
func generateProofs(node *Node, path []byte) []Proof {
	switch node.Type {
	case Leaf:
		p := append(append([]byte{}, path...), node.DataHash...)
		p = append(p, noteBE32(node.MaxByteRange)...)
		return []Proof{{Offset: node.MaxByteRange - 1, Proof: p}}
	default:
		partial := append(append([]byte{}, path...), node.Left.ID...)
		partial = append(partial, node.Right.ID...)
		partial = append(partial, noteBE32(node.ByteRange)...)
		proofs := generateProofs(node.Left, partial)
		proofs = append(proofs, generateProofs(node.Right, partial)...)
		return proofs
	}
}

// VerifyProof replays a single leaf's proof bytes bottom-up and reports
// whether it reconstructs dataRoot. leafBytes is the raw chunk content;
// its SHA-256 must equal the data_hash embedded in the proof.
func VerifyProof(proof Proof, dataRoot []byte, leafBytes []byte) error {
	body := proof.Proof
	if len(body) < HashSize+HashSize {
		return errors.New("merkle: proof too short")
	}

	leafSegment := body[len(body)-(HashSize+HashSize):]
	interior := body[:len(body)-(HashSize+HashSize)]

	dataHash := leafSegment[:HashSize]
	note := leafSegment[HashSize:]

	leafHash := sha256.Sum256(leafBytes)
	if !bytes.Equal(leafHash[:], dataHash) {
		return errors.New("merkle: leaf content does not match proof data_hash")
	}

	current := hash384(hash384(dataHash), hash384(note))

	if len(interior)%(NodeIDSize*2+HashSize) != 0 {
		return errors.New("merkle: malformed proof interior segment length")
	}
	segSize := NodeIDSize*2 + HashSize
	for i := len(interior) - segSize; i >= 0; i -= segSize {
		seg := interior[i : i+segSize]
		left := seg[:NodeIDSize]
		right := seg[NodeIDSize : NodeIDSize*2]
		leftNote := seg[NodeIDSize*2:]

		if !bytes.Equal(current, left) && !bytes.Equal(current, right) {
			return fmt.Errorf("merkle: proof node at depth %d does not match either child", i/segSize)
		}
		current = hash384(hash384(left), hash384(right), hash384(leftNote))
	}

	if !bytes.Equal(current, dataRoot) {
		return errors.New("merkle: reconstructed root does not match data_root")
	}
	return nil
}

func hash384(parts ...[]byte) []byte {
	h := sha512.New384()
	for _, p := range parts {
		h.Write(p)
	}
	return h.Sum(nil)
}

// noteBE32 encodes x as a 32-byte big-endian unsigned integer, the "note"
// field embedded alongside node ids in every proof segment.
func noteBE32(x int) []byte {
	buf := make([]byte, 32)
	binary.BigEndian.PutUint64(buf[24:], uint64(x))
	return buf
}
