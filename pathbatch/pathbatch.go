// Package pathbatch implements the greedy path chunker (C8): packing
// input file paths into size-bounded batches for bundle upload.
package pathbatch

import "fmt"

// FileSizer resolves a path to its size in bytes, the only filesystem
// fact this package needs; callers typically pass os.Stat wrapped to this
// shape, keeping pathbatch itself free of any filesystem dependency.
type FileSizer func(path string) (int64, error)

// Batch is a group of paths and the sum of their sizes.
type Batch struct {
	Paths     []string
	TotalSize int64
}

// Chunk greedily folds paths into batches bounded by budget: it
// accumulates paths while runningTotal+nextSize <= budget, and on
// overflow flushes the current batch and starts a new one with the
// triggering file as its first member. A single file larger than budget
// becomes its own oversized batch rather than being rejected.
func Chunk(paths []string, budget int64, size FileSizer) ([]Batch, error) {
	var batches []Batch
	var current Batch

	for _, p := range paths {
		n, err := size(p)
		if err != nil {
			return nil, fmt.Errorf("pathbatch: stat %s: %w", p, err)
		}

		if len(current.Paths) > 0 && current.TotalSize+n > budget {
			batches = append(batches, current)
			current = Batch{}
		}

		current.Paths = append(current.Paths, p)
		current.TotalSize += n
	}

	if len(current.Paths) > 0 {
		batches = append(batches, current)
	}
	return batches, nil
}
