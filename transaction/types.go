// Package transaction implements the network's format-2 single-data
// transaction: construction, signing, verification, and chunk extraction
// for chunked POST submission.
package transaction

import (
	"github.com/liteseed/arloader/b64"
	"github.com/liteseed/arloader/merkle"
	"github.com/liteseed/arloader/tag"
)

// Format is the only transaction format this client produces or accepts.
const Format = 2

// Transaction is a format-2 transaction: its signable fields plus the
// client-only Chunks/Proofs derived from PrepareChunks.
type Transaction struct {
	Format    int                  `json:"format"`
	ID        b64.B64              `json:"id"`
	LastTx    b64.B64              `json:"last_tx"`
	Owner     b64.B64              `json:"owner"`
	Tags      []tag.TransactionTag `json:"tags"`
	Target    b64.B64              `json:"target"`
	Quantity  string               `json:"quantity"`
	Data      b64.B64              `json:"data"`
	Reward    string               `json:"reward"`
	Signature b64.B64              `json:"signature"`
	DataSize  string               `json:"data_size"`
	DataRoot  b64.B64              `json:"data_root"`

	Chunks []merkle.Chunk `json:"-"`
	Proofs []merkle.Proof `json:"-"`
}

// ChunkBody is the JSON body posted to /chunk: one leaf plus the proof
// path needed to verify it against the transaction's data_root.
type ChunkBody struct {
	DataRoot b64.B64 `json:"data_root"`
	DataSize string  `json:"data_size"`
	DataPath b64.B64 `json:"data_path"`
	Offset   string  `json:"offset"`
	Chunk    b64.B64 `json:"chunk"`
}
