// Package status implements the durable sidecar store (C10): per-file and
// per-bundle JSON records keyed by a stable hash of the absolute file path,
// updated from gateway status lookups and queryable in bulk.
package status

import (
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/inconshreveable/log15"
	"github.com/liteseed/arloader/gateway"
	"github.com/shopspring/decimal"
	"github.com/tidwall/gjson"
	"lukechampine.com/blake3"
)

var log = log15.New("component", "status")

// ErrNotFound is returned when a sidecar does not exist for the given key.
var ErrNotFound = errors.New("status: sidecar not found")

// Store reads and writes sidecar files under a single log_dir, per §4.C10.
// One Store serves one upload campaign; the orchestrator never spawns two
// uploads of the same file concurrently, so writes to a given key are not
// otherwise synchronized here.
type Store struct {
	dir string
}

// New returns a Store rooted at logDir, creating it if necessary.
func New(logDir string) (*Store, error) {
	if err := os.MkdirAll(logDir, 0o755); err != nil {
		return nil, fmt.Errorf("status: create log dir: %w", err)
	}
	return &Store{dir: logDir}, nil
}

// FileKey is BLAKE3(utf8(absolutePath)) hex, the sidecar filename stem for
// a per-file Status record (§3 invariant).
func FileKey(absolutePath string) string {
	sum := blake3.Sum256([]byte(absolutePath))
	return hex.EncodeToString(sum[:])
}

// BundleKey is the sidecar filename stem for a per-bundle BundleStatus
// record: the outer transaction id itself.
func BundleKey(transactionID string) string {
	return transactionID
}

func (s *Store) path(key string) string {
	return filepath.Join(s.dir, key+".json")
}

// WriteStatus whole-file-replaces the sidecar for key.
func (s *Store) WriteStatus(key string, st *Status) error {
	return s.write(key, st)
}

// WriteBundleStatus whole-file-replaces the bundle sidecar for key.
func (s *Store) WriteBundleStatus(key string, bs *BundleStatus) error {
	return s.write(key, bs)
}

func (s *Store) write(key string, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("status: marshal %s: %w", key, err)
	}
	if err := os.WriteFile(s.path(key), data, 0o644); err != nil {
		return fmt.Errorf("status: write %s: %w", key, err)
	}
	return nil
}

// ReadStatus loads the sidecar for key.
func (s *Store) ReadStatus(key string) (*Status, error) {
	data, err := s.read(key)
	if err != nil {
		return nil, err
	}
	var st Status
	if err := json.Unmarshal(data, &st); err != nil {
		return nil, fmt.Errorf("status: decode %s: %w", key, err)
	}
	return &st, nil
}

// ReadBundleStatus loads the bundle sidecar for key.
func (s *Store) ReadBundleStatus(key string) (*BundleStatus, error) {
	data, err := s.read(key)
	if err != nil {
		return nil, err
	}
	var bs BundleStatus
	if err := json.Unmarshal(data, &bs); err != nil {
		return nil, fmt.Errorf("status: decode %s: %w", key, err)
	}
	return &bs, nil
}

func (s *Store) read(key string) ([]byte, error) {
	data, err := os.ReadFile(s.path(key))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("status: read %s: %w", key, err)
	}
	return data, nil
}

// UpdateStatus reads the sidecar for key, queries the gateway for the
// transaction's current status, updates status/raw_status/last_modified,
// and writes the sidecar back. Per §4.C10/§7, NotFound and Pending are
// data outcomes, not propagated errors.
func (s *Store) UpdateStatus(client *gateway.Client, key string) (*Status, error) {
	st, err := s.ReadStatus(key)
	if err != nil {
		return nil, err
	}

	txStatus, statusErr := client.Status(st.ID)
	switch {
	case statusErr == nil:
		st.Status = Confirmed
		st.RawStatus = &RawStatus{
			BlockHeight:           txStatus.BlockHeight,
			BlockIndepHash:        txStatus.BlockIndepHash,
			NumberOfConfirmations: txStatus.NumberOfConfirmations,
		}
	case errors.Is(statusErr, gateway.ErrPending):
		st.Status = Pending
		st.RawStatus = nil
	case errors.Is(statusErr, gateway.ErrNotFound):
		st.Status = NotFound
		st.RawStatus = nil
	default:
		log.Warn("status update failed", "id", st.ID, "err", statusErr)
		return nil, fmt.Errorf("status: update %s: %w", st.ID, statusErr)
	}

	st.LastModified = time.Now().UTC().Format(time.RFC3339)
	if err := s.WriteStatus(key, st); err != nil {
		return nil, err
	}
	return st, nil
}

// FilterStatuses returns the sidecar records under the store whose Status
// matches one of codes and whose NumberOfConfirmations (when present) is
// at most maxConfirmations. maxConfirmations <= 0 means unbounded.
func (s *Store) FilterStatuses(codes []Code, maxConfirmations int64) ([]Status, error) {
	want := make(map[Code]bool, len(codes))
	for _, c := range codes {
		want[c] = true
	}

	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("status: list %s: %w", s.dir, err)
	}

	var out []Status
	for _, e := range entries {
		if e.IsDir() || filepath.Ext(e.Name()) != ".json" {
			continue
		}
		key := e.Name()[:len(e.Name())-len(".json")]
		st, err := s.ReadStatus(key)
		if err != nil {
			continue
		}
		if len(want) > 0 && !want[st.Status] {
			continue
		}
		if maxConfirmations > 0 {
			if st.RawStatus != nil && st.RawStatus.NumberOfConfirmations > maxConfirmations {
				continue
			}
		}
		out = append(out, *st)
	}
	return out, nil
}

// Summarize counts statuses by Code and totals their rewards, as the
// original client's status-report tooling does (SUPPLEMENTED FEATURES
// item 3). Reward strings are summed with decimal arithmetic to avoid
// float drift across many small winston amounts. Status records carry no
// data size, so TotalDataSize is left at zero.
func Summarize(statuses []Status) Summary {
	sum := Summary{CountByStatus: map[Code]int{}}
	totalReward := decimal.Zero
	for _, st := range statuses {
		sum.CountByStatus[st.Status]++
		if st.Reward != "" {
			if r, err := decimal.NewFromString(st.Reward); err == nil {
				totalReward = totalReward.Add(r)
			}
		}
	}
	sum.TotalReward = totalReward.String()
	return sum
}

// ParseGatewayStatusJSON tolerantly extracts the three confirmation
// fields from a raw status GET body, for callers that already hold the
// bytes (e.g. replaying a cached response) rather than calling
// gateway.Client.Status directly.
func ParseGatewayStatusJSON(body []byte) RawStatus {
	return RawStatus{
		BlockHeight:           gjson.GetBytes(body, "block_height").Int(),
		BlockIndepHash:        gjson.GetBytes(body, "block_indep_hash").String(),
		NumberOfConfirmations: gjson.GetBytes(body, "number_of_confirmations").Int(),
	}
}
