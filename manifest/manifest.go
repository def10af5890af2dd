// Package manifest implements C11: aggregating per-file upload results
// into a path→id mapping document, itself posted as its own transaction
// so a gateway can serve path-addressed URLs for a bundle.
package manifest

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/liteseed/arloader/b64"
	"github.com/liteseed/arloader/tag"
	"github.com/liteseed/arloader/transaction"
)

// Kind is the manifest document's declared type, per §4.C11.
const Kind = "arweave/paths"

// Version is the manifest document's declared schema version.
const Version = "0.1.0"

// ContentType is the tag value a manifest transaction is posted with so
// gateways recognize it as a path manifest.
const ContentType = "application/x.arweave-manifest+json"

// PathEntry is one member of a Manifest's Paths map.
type PathEntry struct {
	ID          string `json:"id"`
	ContentType string `json:"content_type,omitempty"`
}

// Manifest is the `{manifest, version, paths}` document §4.C11 describes.
type Manifest struct {
	ManifestKind string               `json:"manifest"`
	Version      string               `json:"version"`
	Paths        map[string]PathEntry `json:"paths"`
}

// New builds an empty Manifest ready to accumulate path entries.
func New() *Manifest {
	return &Manifest{ManifestKind: Kind, Version: Version, Paths: map[string]PathEntry{}}
}

// Add records path's data item id and content type.
func (m *Manifest) Add(path, id, contentType string) {
	m.Paths[path] = PathEntry{ID: id, ContentType: contentType}
}

// Marshal renders the manifest as its canonical JSON bytes.
func (m *Manifest) Marshal() ([]byte, error) {
	return json.Marshal(m)
}

// BuildTransaction wraps the manifest's JSON bytes in a Format-2
// transaction tagged as a path manifest, ready to sign and post via C4/C7.
func (m *Manifest) BuildTransaction() (*transaction.Transaction, error) {
	data, err := m.Marshal()
	if err != nil {
		return nil, fmt.Errorf("manifest: marshal: %w", err)
	}
	tags := []tag.Tag{tag.New("Content-Type", ContentType)}
	tx, err := transaction.New(data, b64.B64{}, "0", tags)
	if err != nil {
		return nil, fmt.Errorf("manifest: build transaction: %w", err)
	}
	return tx, nil
}

// URLPair is the two gateway URLs a manifest upload records per file,
// per §4.C11 and SUPPLEMENTED FEATURES item 4.
type URLPair struct {
	DirectURL   string `json:"direct_url"`
	ManifestURL string `json:"manifest_url"`
}

// WriteURLSidecar persists, for each file in the manifest, its direct
// `{gateway}/{file_id}` URL and its manifest-relative
// `{gateway}/{manifest_id}/{file_path}` URL, as a JSON document at
// sidecarPath.
func WriteURLSidecar(sidecarPath, gatewayURL, manifestID string, m *Manifest) error {
	out := make(map[string]URLPair, len(m.Paths))
	for path, entry := range m.Paths {
		out[path] = URLPair{
			DirectURL:   fmt.Sprintf("%s/%s", gatewayURL, entry.ID),
			ManifestURL: fmt.Sprintf("%s/%s/%s", gatewayURL, manifestID, path),
		}
	}

	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return fmt.Errorf("manifest: marshal url sidecar: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(sidecarPath), 0o755); err != nil {
		return fmt.Errorf("manifest: create sidecar dir: %w", err)
	}
	if err := os.WriteFile(sidecarPath, data, 0o644); err != nil {
		return fmt.Errorf("manifest: write url sidecar: %w", err)
	}
	return nil
}
