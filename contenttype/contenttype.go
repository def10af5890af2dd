// Package contenttype provides the narrow content-type collaborator this
// client assumes (§1's "ContentTyper"): MIME sniffing and extension tables
// are explicitly out of scope, so this package only defines the interface
// and a minimal default that falls back to application/octet-stream.
package contenttype

import (
	"path/filepath"
	"strings"
)

// DefaultType is returned when a path's extension is unknown.
const DefaultType = "application/octet-stream"

// Typer resolves a file path to a MIME content type. Real sniffing
// (magic-byte detection, an extension database) is a caller concern;
// this client only needs something that satisfies this interface.
type Typer interface {
	TypeOf(path string) string
}

// ExtensionTyper is a minimal Typer driven by a fixed suffix table. It
// exists so packages in this module have something to construct and pass
// around in tests and examples without pulling in a MIME-sniffing library.
type ExtensionTyper struct {
	byExt map[string]string
}

// NewExtensionTyper builds an ExtensionTyper seeded with a small set of
// common extensions, and any overrides given in extra.
func NewExtensionTyper(extra map[string]string) *ExtensionTyper {
	t := &ExtensionTyper{byExt: map[string]string{
		".json": "application/json",
		".txt":  "text/plain",
		".html": "text/html",
		".png":  "image/png",
		".jpg":  "image/jpeg",
		".jpeg": "image/jpeg",
		".gif":  "image/gif",
		".pdf":  "application/pdf",
		".mp4":  "video/mp4",
		".svg":  "image/svg+xml",
	}}
	for ext, mime := range extra {
		t.byExt[ext] = mime
	}
	return t
}

// TypeOf returns the content type for path's extension, or DefaultType.
func (t *ExtensionTyper) TypeOf(path string) string {
	ext := strings.ToLower(filepath.Ext(path))
	if mime, ok := t.byExt[ext]; ok {
		return mime
	}
	return DefaultType
}
