// Package b64 provides the canonical Base64URL byte-string type used on the
// wire for every binary field of a transaction or data item.
//
// The network encodes all binary fields (signatures, owners, ids, tags,
// payloads) as unpadded, URL-safe base64 as specified by RFC 4648 §5. This
// package gives that convention a single Go type so that encoding/decoding
// logic, and the JSON (un)marshaling that rides on top of it, lives in one
// place instead of being repeated at every call site.
package b64

import "encoding/base64"

// B64 is a byte string whose canonical textual form is unpadded, URL-safe
// base64. Equality is defined on the underlying bytes, not on the encoded
// text: two B64 values are equal iff bytes.Equal reports them equal.
//
// The zero value is the empty byte string, which encodes to the empty
// string.
type B64 []byte

// Encode renders b as an unpadded base64url string.
//
// Example:
//
//	b := b64.B64("Hello, Arweave!")
//	fmt.Println(b.Encode())
//	// Output: SGVsbG8sIEFyd2VhdmUh
func (b B64) Encode() string {
	if len(b) == 0 {
		return ""
	}
	return base64.RawURLEncoding.EncodeToString(b)
}

// Decode parses an unpadded base64url string into a B64 value.
//
// Example:
//
//	b, err := b64.Decode("SGVsbG8sIEFyd2VhdmUh")
//	if err != nil {
//		log.Fatal(err)
//	}
//	fmt.Println(string(b))
//	// Output: Hello, Arweave!
func Decode(s string) (B64, error) {
	if s == "" {
		return B64{}, nil
	}
	raw, err := base64.RawURLEncoding.DecodeString(s)
	if err != nil {
		return nil, err
	}
	return B64(raw), nil
}

// MustDecode is like Decode but panics on malformed input. Intended for
// fixtures and constants known to be valid at compile time, never for
// network-sourced data.
func MustDecode(s string) B64 {
	b, err := Decode(s)
	if err != nil {
		panic(err)
	}
	return b
}

// String implements fmt.Stringer by returning the base64url encoding.
func (b B64) String() string {
	return b.Encode()
}

// MarshalJSON encodes b as a JSON string holding its base64url text, the
// format the gateway expects for every binary transaction/data-item field.
func (b B64) MarshalJSON() ([]byte, error) {
	return []byte(`"` + b.Encode() + `"`), nil
}

// UnmarshalJSON decodes a JSON string containing base64url text into b.
func (b *B64) UnmarshalJSON(data []byte) error {
	if len(data) < 2 || data[0] != '"' || data[len(data)-1] != '"' {
		return &base64.CorruptInputError{}
	}
	decoded, err := Decode(string(data[1 : len(data)-1]))
	if err != nil {
		return err
	}
	*b = decoded
	return nil
}

// Equal reports whether a and b hold identical bytes.
func Equal(a, b B64) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
