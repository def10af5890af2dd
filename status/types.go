package status

// Code is the lifecycle state of a submitted transaction, per spec §3/§7.
type Code string

const (
	Submitted Code = "Submitted"
	Pending   Code = "Pending"
	NotFound  Code = "NotFound"
	Confirmed Code = "Confirmed"
)

// RawStatus mirrors the network's confirmation payload from a status GET,
// kept verbatim alongside the classified Code.
type RawStatus struct {
	BlockHeight           int64  `json:"block_height,omitempty"`
	BlockIndepHash        string `json:"block_indep_hash,omitempty"`
	NumberOfConfirmations int64  `json:"number_of_confirmations,omitempty"`
}

// Status is the per-file/transaction sidecar record (§3, §4.C10).
type Status struct {
	ID           string     `json:"id"`
	Status       Code       `json:"status"`
	FilePath     string     `json:"file_path,omitempty"`
	ContentType  string     `json:"content_type,omitempty"`
	Reward       string     `json:"reward,omitempty"`
	LastModified string     `json:"last_modified"`
	RawStatus    *RawStatus `json:"raw_status,omitempty"`
}

// FileEntry is one member of a BundleStatus's file_paths map.
type FileEntry struct {
	ID          string `json:"id"`
	ContentType string `json:"content_type,omitempty"`
}

// BundleStatus is a Status plus the per-bundle bookkeeping §3 describes:
// file count, aggregate data size, and the path→{id,content_type} map.
type BundleStatus struct {
	Status
	NumberOfFiles int                  `json:"number_of_files"`
	DataSize      int64                `json:"data_size"`
	FilePaths     map[string]FileEntry `json:"file_paths"`
}

// Summary aggregates a set of Status records by Code, as the
// filter_statuses/status-report tooling in the original client does
// (spec.md §4.C10, SUPPLEMENTED FEATURES item 3).
type Summary struct {
	CountByStatus map[Code]int
	TotalReward   string
	TotalDataSize int64
}
