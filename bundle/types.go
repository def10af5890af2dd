// Package bundle implements the ANS-104 outer bundle binary envelope: a
// count header, one length+id header per item, then the concatenated
// item bodies, per §4.C6.
package bundle

import (
	"github.com/liteseed/arloader/b64"
	"github.com/liteseed/arloader/dataitem"
)

// HeaderPadding is the zero padding following each length field, both in
// the bundle's own count header and in each item-index entry.
const HeaderPadding = 24

// ItemIDSize is the width of an item id in the item index.
const ItemIDSize = 32

// ItemHeader is one entry of the bundle's item index: the byte length of
// the corresponding item body, and that item's id.
type ItemHeader struct {
	Size int
	ID   b64.B64
}

// Bundle is a decoded or constructed outer bundle: its item index plus the
// data items themselves, in the same order.
type Bundle struct {
	Headers []ItemHeader
	Items   []dataitem.DataItem
	Raw     []byte
}
