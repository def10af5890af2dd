package transaction

import (
	"crypto/sha256"
	"errors"
	"fmt"

	"github.com/liteseed/arloader/b64"
	"github.com/liteseed/arloader/deephash"
	"github.com/liteseed/arloader/merkle"
	"github.com/liteseed/arloader/signer"
	"github.com/liteseed/arloader/tag"
)

// New builds an unsigned format-2 transaction over data. target and
// quantity are only meaningful for AR-transfer transactions; pass nil and
// "0" for a data-only transaction. Tags are converted to their
// transaction-tag (B64) flavor.
//
// New calls PrepareChunks internally, so DataSize/DataRoot/Chunks/Proofs
// are populated before the caller signs.
func New(data []byte, target b64.B64, quantity string, tags []tag.Tag) (*Transaction, error) {
	if quantity == "" {
		quantity = "0"
	}
	tx := &Transaction{
		Format:   Format,
		Target:   target,
		Quantity: quantity,
		Data:     b64.B64(data),
		Tags:     tag.ToTransactionTags(tags),
		Reward:   "0",
	}
	if err := tx.PrepareChunks(data); err != nil {
		return nil, err
	}
	return tx, nil
}

// PrepareChunks splits data into the Merkle tree C2 describes and fills in
// DataSize, DataRoot, Chunks, and Proofs. It must run before signing.
func (tx *Transaction) PrepareChunks(data []byte) error {
	tx.DataSize = fmt.Sprint(len(data))
	if len(data) == 0 {
		tx.DataRoot = nil
		tx.Chunks = nil
		tx.Proofs = nil
		return nil
	}

	tree, err := merkle.Generate(data)
	if err != nil {
		return fmt.Errorf("transaction: prepare chunks: %w", err)
	}
	tx.DataRoot = tree.DataRoot
	tx.Chunks = tree.Chunks
	tx.Proofs = tree.Proofs
	return nil
}

// Sign fills in Owner from s, computes the deep hash over the signature
// input, signs it, and derives ID = SHA-256(signature).
func (tx *Transaction) Sign(s *signer.Signer) error {
	tx.Owner = s.Owner()

	digest, err := tx.deepHash()
	if err != nil {
		return err
	}

	sig, err := s.Sign(digest[:])
	if err != nil {
		return fmt.Errorf("transaction: sign: %w", err)
	}

	id := sha256.Sum256(sig)
	tx.ID = b64.B64(id[:])
	tx.Signature = b64.B64(sig)
	return nil
}

// Verify recomputes the deep hash and checks Signature against Owner.
func (tx *Transaction) Verify() error {
	digest, err := tx.deepHash()
	if err != nil {
		return err
	}
	return signer.VerifyWithOwner(tx.Owner, digest[:], tx.Signature)
}

// deepHash builds the deep-hash input §6 specifies for a transaction:
// [ ascii("2"), owner, target, data, ascii(data_size), ascii(reward),
//   last_tx, [ [tag.name, tag.value] for tag in tags ] ]
func (tx *Transaction) deepHash() (deephash.Digest, error) {
	if tx.Format != Format {
		return deephash.Digest{}, errors.New("transaction: only format 2 is supported")
	}

	tagList := make(deephash.List, len(tx.Tags))
	for i, t := range tx.Tags {
		tagList[i] = deephash.List{deephash.Blob(t.Name), deephash.Blob(t.Value)}
	}

	chunks := deephash.List{
		deephash.Blob("2"),
		deephash.Blob(tx.Owner),
		deephash.Blob(tx.Target),
		deephash.Blob(tx.Data),
		deephash.Blob(tx.DataSize),
		deephash.Blob(tx.Reward),
		deephash.Blob(tx.LastTx),
		tagList,
	}
	return deephash.Hash(chunks), nil
}

// GetChunk returns the /chunk POST body for leaf i of data, which must be
// the same bytes PrepareChunks was called with.
func (tx *Transaction) GetChunk(i int, data []byte) (*ChunkBody, error) {
	if tx.Chunks == nil {
		return nil, errors.New("transaction: chunks have not been prepared")
	}
	if i < 0 || i >= len(tx.Chunks) {
		return nil, fmt.Errorf("transaction: chunk index %d out of range", i)
	}

	chunk := tx.Chunks[i]
	proof := tx.Proofs[i]

	return &ChunkBody{
		DataRoot: tx.DataRoot,
		DataSize: tx.DataSize,
		DataPath: b64.B64(proof.Proof),
		Offset:   fmt.Sprint(proof.Offset),
		Chunk:    b64.B64(data[chunk.MinByteRange:chunk.MaxByteRange]),
	}, nil
}
