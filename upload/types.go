// Package upload implements the orchestrator (C9): bounded-concurrency
// streams of whole-file and bundle uploads, switching between whole-tx and
// chunked-tx posting per §4.C9.
package upload

import (
	"time"

	"github.com/liteseed/arloader/gateway"
	"github.com/liteseed/arloader/pathbatch"
	"github.com/liteseed/arloader/signer"
	"github.com/liteseed/arloader/status"
)

// MaxTxData is the threshold between whole-body and chunked posting,
// 10*10^6 bytes per §6's retry/timing constants.
const MaxTxData = 10 * 1000 * 1000

// ChunkConcurrency is the internal chunk-POST concurrency for a single
// whole-file chunked upload, per §4.C9.
const ChunkConcurrency = 100

// Config bundles an Orchestrator's collaborators and tunables. It plays
// the role the teacher's client.New(gateway string) constructor plays for
// gateway.Client: a small option struct rather than a package-global.
type Config struct {
	Gateway *gateway.Client
	Signer  *signer.Signer
	Status  *status.Store

	// Buffer bounds file/bundle concurrency for the two stream families.
	Buffer int
	// BundleSize is the target batch size C8's chunker packs toward.
	BundleSize int64
	// RewardMultiplier scales the base/incremental reward formula's
	// output (SUPPLEMENTED FEATURES item 2); 1.0 applies no scaling.
	RewardMultiplier float64
	// LastTx, when set, is used as every built transaction's anchor
	// instead of fetching a fresh one from the gateway per transaction.
	LastTx string
}

// Result is one completed upload, emitted in completion order (not
// submission order) per §5. ManifestID is only set for a bundle upload: it
// is the id of the C11 manifest transaction posted alongside the bundle,
// mapping each input path to its data item id and content type.
type Result struct {
	Path          string
	TransactionID string
	ContentType   string
	ManifestID    string
	Err           error
}

// Sizer resolves a path to its size, the same abstraction pathbatch.FileSizer
// uses, reused here so the orchestrator needs no direct filesystem import
// beyond reading file bytes.
type Sizer = pathbatch.FileSizer

func nowRFC3339() string {
	return time.Now().UTC().Format(time.RFC3339)
}
