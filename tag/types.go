package tag

import "github.com/liteseed/arloader/b64"

// Tag is a data-item tag: a UTF-8 (name, value) pair, serialized with the
// compact Avro-style binary encoding described in the data-item binary
// layout.
//
// Example:
//
//	t := tag.New("Content-Type", "application/json")
type Tag struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// New constructs a data-item tag from a UTF-8 name/value pair.
func New(name, value string) Tag {
	return Tag{Name: name, Value: value}
}

// TransactionTag is a transaction tag: both fields travel on the wire as
// B64, unlike a data-item Tag's raw UTF-8 fields.
type TransactionTag struct {
	Name  b64.B64 `json:"name"`
	Value b64.B64 `json:"value"`
}

// NewTransactionTag builds a TransactionTag from a UTF-8 name/value pair,
// the same pure conversion a data-item Tag uses, just base64url encoded
// rather than kept as text.
func NewTransactionTag(name, value string) TransactionTag {
	return TransactionTag{Name: b64.B64(name), Value: b64.B64(value)}
}

// ToTransactionTags converts a data-item tag list into its transaction-tag
// equivalent, base64url-encoding each field.
func ToTransactionTags(tags []Tag) []TransactionTag {
	out := make([]TransactionTag, len(tags))
	for i, t := range tags {
		out[i] = NewTransactionTag(t.Name, t.Value)
	}
	return out
}
