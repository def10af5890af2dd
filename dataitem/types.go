// Package dataitem implements a bundle member (ANS-104 data item): its own
// signing envelope, tag schema, and on-wire binary layout, independent of
// the outer transaction that eventually carries it.
package dataitem

import (
	"github.com/liteseed/arloader/b64"
	"github.com/liteseed/arloader/tag"
)

// SignatureTypeRSA is the only signature type this client produces or
// verifies: RSA-PSS with a 512-byte signature and 512-byte modulus.
const SignatureTypeRSA = 1

// TargetSize and AnchorSize are the fixed widths of the optional fields
// when present.
const (
	TargetSize    = 32
	AnchorSize    = 32
	SignatureSize = 512
	OwnerSize     = 512
)

// DataItem is a bundle member: its own signature and id, carried inside a
// Bundle rather than posted as an independent network transaction.
type DataItem struct {
	SignatureType int     `json:"signature_type"`
	Signature     b64.B64 `json:"signature"`
	ID            b64.B64 `json:"id"`
	Owner         b64.B64 `json:"owner"`
	Target        b64.B64 `json:"target"`
	Anchor        b64.B64 `json:"anchor"`
	Tags          []tag.Tag `json:"tags"`
	Data          b64.B64 `json:"data"`
}
