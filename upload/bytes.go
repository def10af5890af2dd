package upload

import (
	"fmt"

	"github.com/liteseed/arloader/status"
	"github.com/liteseed/arloader/tag"
	"github.com/liteseed/arloader/transaction"
)

// UploadBytes is the single-call convenience helper SUPPLEMENTED FEATURES
// item 1 names: price lookup, transaction build, sign, post, and (if a
// Store is configured) a status write, all in one call, mirroring the
// original client's upload_raw_data. statusKey, when non-empty, is the
// sidecar key to write the resulting status under; pass "" to skip the
// status write entirely.
func (o *Orchestrator) UploadBytes(data []byte, contentType string, tags []tag.Tag, statusKey string) (*transaction.Transaction, error) {
	allTags := append([]tag.Tag{tag.New("Content-Type", contentType)}, tags...)

	tx, err := transaction.New(data, nil, "0", allTags)
	if err != nil {
		return nil, fmt.Errorf("upload: build transaction: %w", err)
	}

	if err := o.prepareAndPost(tx, data, ChunkConcurrency); err != nil {
		return nil, err
	}

	if o.cfg.Status != nil && statusKey != "" {
		st := &status.Status{
			ID:           tx.ID.Encode(),
			Status:       status.Submitted,
			ContentType:  contentType,
			Reward:       tx.Reward,
			LastModified: nowRFC3339(),
		}
		if err := o.cfg.Status.WriteStatus(statusKey, st); err != nil {
			log.Warn("write status failed", "key", statusKey, "err", err)
		}
	}

	return tx, nil
}
