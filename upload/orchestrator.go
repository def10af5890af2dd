package upload

import (
	"fmt"
	"sync"

	"github.com/inconshreveable/log15"
	"github.com/liteseed/arloader/b64"
	"github.com/liteseed/arloader/bundle"
	"github.com/liteseed/arloader/contenttype"
	"github.com/liteseed/arloader/dataitem"
	"github.com/liteseed/arloader/manifest"
	"github.com/liteseed/arloader/pathbatch"
	"github.com/liteseed/arloader/status"
	"github.com/liteseed/arloader/tag"
	"github.com/liteseed/arloader/transaction"
	"github.com/panjf2000/ants/v2"
)

var log = log15.New("component", "upload")

// FileReader reads the full contents of path, the only filesystem
// primitive the orchestrator needs beyond pathbatch.FileSizer.
type FileReader func(path string) ([]byte, error)

// Orchestrator runs the two streaming upload families C9 names.
type Orchestrator struct {
	cfg Config
}

// New builds an Orchestrator from cfg. Buffer defaults to 1 if unset.
func New(cfg Config) *Orchestrator {
	if cfg.Buffer <= 0 {
		cfg.Buffer = 1
	}
	return &Orchestrator{cfg: cfg}
}

func (o *Orchestrator) anchor() (string, error) {
	if o.cfg.LastTx != "" {
		return o.cfg.LastTx, nil
	}
	return o.cfg.Gateway.Anchor()
}

// UploadFilesStream uploads each path as its own transaction, bounded to
// cfg.Buffer concurrent uploads. Results arrive in completion order.
func (o *Orchestrator) UploadFilesStream(paths []string, read FileReader, typer contenttype.Typer) <-chan Result {
	out := make(chan Result, len(paths))

	var wg sync.WaitGroup
	pool, _ := ants.NewPoolWithFunc(o.cfg.Buffer, func(arg interface{}) {
		defer wg.Done()
		path := arg.(string)
		out <- o.uploadFile(path, read, typer)
	})

	go func() {
		defer pool.Release()
		for _, p := range paths {
			wg.Add(1)
			if err := pool.Invoke(p); err != nil {
				wg.Done()
				out <- Result{Path: p, Err: fmt.Errorf("upload: schedule: %w", err)}
			}
		}
		wg.Wait()
		close(out)
	}()

	return out
}

func (o *Orchestrator) uploadFile(path string, read FileReader, typer contenttype.Typer) Result {
	data, err := read(path)
	if err != nil {
		return Result{Path: path, Err: fmt.Errorf("upload: read %s: %w", path, err)}
	}

	contentType := contenttype.DefaultType
	if typer != nil {
		contentType = typer.TypeOf(path)
	}

	tx, err := transaction.New(data, nil, "0", []tag.Tag{tag.New("Content-Type", contentType)})
	if err != nil {
		return Result{Path: path, Err: fmt.Errorf("upload: build transaction for %s: %w", path, err)}
	}

	if err := o.prepareAndPost(tx, data, ChunkConcurrency); err != nil {
		return Result{Path: path, ContentType: contentType, Err: err}
	}

	if o.cfg.Status != nil {
		st := &status.Status{
			ID:           tx.ID.Encode(),
			Status:       status.Submitted,
			FilePath:     path,
			ContentType:  contentType,
			Reward:       tx.Reward,
			LastModified: nowRFC3339(),
		}
		if err := o.cfg.Status.WriteStatus(status.FileKey(path), st); err != nil {
			log.Warn("write status failed", "path", path, "err", err)
		}
	}

	return Result{Path: path, TransactionID: tx.ID.Encode(), ContentType: contentType}
}

// prepareAndPost fills in anchor/reward, signs tx, and posts it whole or
// chunked depending on data size, per §4.C9. chunkConcurrency bounds the
// chunk POSTs if a chunked post is needed.
func (o *Orchestrator) prepareAndPost(tx *transaction.Transaction, data []byte, chunkConcurrency int) error {
	anchor, err := o.anchor()
	if err != nil {
		return fmt.Errorf("upload: anchor: %w", err)
	}
	lastTx, err := b64.Decode(anchor)
	if err != nil {
		return fmt.Errorf("upload: decode anchor: %w", err)
	}
	tx.LastTx = lastTx

	reward, err := priceReward(o.cfg.Gateway, int64(len(data)), o.cfg.RewardMultiplier)
	if err != nil {
		return fmt.Errorf("upload: price: %w", err)
	}
	tx.Reward = reward

	if err := tx.Sign(o.cfg.Signer); err != nil {
		return fmt.Errorf("upload: sign: %w", err)
	}

	if int64(len(data)) > MaxTxData {
		posted := *tx
		posted.Data = nil
		if err := o.cfg.Gateway.PostTransaction(&posted); err != nil {
			return fmt.Errorf("upload: post transaction: %w", err)
		}
		return o.postChunked(tx, data, chunkConcurrency)
	}

	if err := o.cfg.Gateway.PostTransaction(tx); err != nil {
		return fmt.Errorf("upload: post transaction: %w", err)
	}
	return nil
}

// postChunked posts each of tx's chunks, bounded by concurrency.
func (o *Orchestrator) postChunked(tx *transaction.Transaction, data []byte, concurrency int) error {
	if concurrency <= 0 {
		concurrency = 1
	}
	n := len(tx.Chunks)
	if n == 0 {
		return nil
	}

	errs := make([]error, n)
	var wg sync.WaitGroup
	pool, _ := ants.NewPoolWithFunc(concurrency, func(arg interface{}) {
		defer wg.Done()
		i := arg.(int)
		chunk, err := tx.GetChunk(i, data)
		if err != nil {
			errs[i] = fmt.Errorf("upload: get chunk %d: %w", i, err)
			return
		}
		if err := o.cfg.Gateway.PostChunk(chunk); err != nil {
			errs[i] = fmt.Errorf("upload: post chunk %d: %w", i, err)
		}
	})
	defer pool.Release()

	for i := 0; i < n; i++ {
		wg.Add(1)
		if err := pool.Invoke(i); err != nil {
			wg.Done()
			errs[i] = fmt.Errorf("upload: schedule chunk %d: %w", i, err)
		}
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}

// UploadBundlesStream groups paths into C8 batches targeting cfg.BundleSize,
// builds and posts one outer bundle transaction per batch, and emits one
// Result per batch (Path is left empty; TransactionID is the outer
// transaction's id). Concurrency between batches and within a batch's
// chunk POSTs follows §4.C9's bundles_buffer/chunks_buffer interaction.
func (o *Orchestrator) UploadBundlesStream(paths []string, read FileReader, sizer Sizer, typer contenttype.Typer) <-chan Result {
	bundlesBuffer, chunksBuffer := o.concurrencyBounds()

	batches, err := pathbatch.Chunk(paths, o.cfg.BundleSize, sizer)
	if err != nil {
		out := make(chan Result, 1)
		out <- Result{Err: fmt.Errorf("upload: batch paths: %w", err)}
		close(out)
		return out
	}

	out := make(chan Result, len(batches))
	var wg sync.WaitGroup
	pool, _ := ants.NewPoolWithFunc(bundlesBuffer, func(arg interface{}) {
		defer wg.Done()
		b := arg.(pathbatch.Batch)
		out <- o.uploadBundle(b, read, typer, chunksBuffer)
	})

	go func() {
		defer pool.Release()
		for _, b := range batches {
			wg.Add(1)
			if err := pool.Invoke(b); err != nil {
				wg.Done()
				out <- Result{Err: fmt.Errorf("upload: schedule batch: %w", err)}
			}
		}
		wg.Wait()
		close(out)
	}()

	return out
}

func (o *Orchestrator) concurrencyBounds() (bundlesBuffer, chunksBuffer int) {
	if o.cfg.BundleSize > MaxTxData {
		return 1, o.cfg.Buffer * 20
	}
	return o.cfg.Buffer, 1
}

func (o *Orchestrator) uploadBundle(batch pathbatch.Batch, read FileReader, typer contenttype.Typer, chunksBuffer int) Result {
	items := make([]dataitem.DataItem, len(batch.Paths))
	contentTypes := make([]string, len(batch.Paths))
	itemErrs := make([]error, len(batch.Paths))

	var wg sync.WaitGroup
	pool, _ := ants.NewPoolWithFunc(len(batch.Paths), func(arg interface{}) {
		defer wg.Done()
		i := arg.(int)
		path := batch.Paths[i]

		data, err := read(path)
		if err != nil {
			itemErrs[i] = fmt.Errorf("upload: read %s: %w", path, err)
			return
		}
		contentType := contenttype.DefaultType
		if typer != nil {
			contentType = typer.TypeOf(path)
		}
		contentTypes[i] = contentType

		item, err := dataitem.New(data, nil, nil, []tag.Tag{tag.New("Content-Type", contentType)})
		if err != nil {
			itemErrs[i] = fmt.Errorf("upload: build data item for %s: %w", path, err)
			return
		}
		if err := item.Sign(o.cfg.Signer); err != nil {
			itemErrs[i] = fmt.Errorf("upload: sign data item for %s: %w", path, err)
			return
		}
		items[i] = *item
	})
	for i := range batch.Paths {
		wg.Add(1)
		if err := pool.Invoke(i); err != nil {
			wg.Done()
			itemErrs[i] = fmt.Errorf("upload: schedule item %d: %w", i, err)
		}
	}
	wg.Wait()
	pool.Release()

	for _, err := range itemErrs {
		if err != nil {
			return Result{Err: err}
		}
	}

	b, err := bundle.New(items)
	if err != nil {
		return Result{Err: fmt.Errorf("upload: encode bundle: %w", err)}
	}

	tx, err := transaction.New(b.Raw, nil, "0", []tag.Tag{
		tag.New("Bundle-Format", "binary"),
		tag.New("Bundle-Version", "2.0.0"),
	})
	if err != nil {
		return Result{Err: fmt.Errorf("upload: build outer transaction: %w", err)}
	}

	if err := o.prepareAndPost(tx, b.Raw, chunksBuffer); err != nil {
		return Result{Err: fmt.Errorf("upload: bundle: %w", err)}
	}

	m := manifest.New()
	filePaths := make(map[string]status.FileEntry, len(items))
	for i, item := range items {
		m.Add(batch.Paths[i], item.ID.Encode(), contentTypes[i])
		filePaths[batch.Paths[i]] = status.FileEntry{ID: item.ID.Encode(), ContentType: contentTypes[i]}
	}

	manifestID, err := o.postManifest(m, chunksBuffer)
	if err != nil {
		return Result{Err: fmt.Errorf("upload: manifest: %w", err)}
	}

	if o.cfg.Status != nil {
		bs := &status.BundleStatus{
			Status: status.Status{
				ID:           tx.ID.Encode(),
				Status:       status.Submitted,
				Reward:       tx.Reward,
				LastModified: nowRFC3339(),
			},
			NumberOfFiles: len(items),
			DataSize:      int64(len(b.Raw)),
			FilePaths:     filePaths,
		}
		if err := o.cfg.Status.WriteBundleStatus(status.BundleKey(tx.ID.Encode()), bs); err != nil {
			log.Warn("write bundle status failed", "id", tx.ID.Encode(), "err", err)
		}
	}

	return Result{TransactionID: tx.ID.Encode(), ManifestID: manifestID}
}

// postManifest marshals m into its own Format-2 transaction tagged as a
// path manifest (§4.C11) and posts it the same way a bundle's outer
// transaction is posted, returning the manifest transaction's id.
func (o *Orchestrator) postManifest(m *manifest.Manifest, chunkConcurrency int) (string, error) {
	data, err := m.Marshal()
	if err != nil {
		return "", fmt.Errorf("marshal: %w", err)
	}

	tx, err := transaction.New(data, nil, "0", []tag.Tag{tag.New("Content-Type", manifest.ContentType)})
	if err != nil {
		return "", fmt.Errorf("build transaction: %w", err)
	}

	if err := o.prepareAndPost(tx, data, chunkConcurrency); err != nil {
		return "", fmt.Errorf("post: %w", err)
	}
	return tx.ID.Encode(), nil
}

