package signer

import (
	"crypto"
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha256"
	"fmt"

	"github.com/liteseed/arloader/b64"
)

// saltLength is fixed at the hash size, matching the network's RSA-PSS
// signatures across every client implementation; verifiers that used
// rsa.PSSSaltLengthAuto would reject signatures produced any other way.
const saltLength = sha256.Size

// Sign produces an RSA-PSS/SHA-256 signature over digest. digest is a deep
// hash (48 bytes) or any other pre-image, not itself a SHA-256 sum; Sign
// reduces it with sha256.Sum256 before calling rsa.SignPSS, since PSS
// requires an mHash exactly hLen (32) bytes wide.
func (s *Signer) Sign(digest []byte) ([]byte, error) {
	hashed := sha256.Sum256(digest)
	sig, err := rsa.SignPSS(rand.Reader, s.PrivateKey, crypto.SHA256, hashed[:], &rsa.PSSOptions{
		SaltLength: saltLength,
		Hash:       crypto.SHA256,
	})
	if err != nil {
		return nil, fmt.Errorf("signer: sign: %w", err)
	}
	return sig, nil
}

// Verify checks an RSA-PSS/SHA-256 signature against digest using the
// signer's own public key.
func (s *Signer) Verify(digest, signature []byte) error {
	return Verify(s.PublicKey, digest, signature)
}

// Verify checks an RSA-PSS/SHA-256 signature against digest using an
// arbitrary public key, as used to validate a transaction or data item
// received from the network. digest is reduced with sha256.Sum256 first,
// matching Sign.
func Verify(publicKey *rsa.PublicKey, digest, signature []byte) error {
	hashed := sha256.Sum256(digest)
	err := rsa.VerifyPSS(publicKey, crypto.SHA256, hashed[:], signature, &rsa.PSSOptions{
		SaltLength: saltLength,
		Hash:       crypto.SHA256,
	})
	if err != nil {
		return fmt.Errorf("signer: verify: %w", err)
	}
	return nil
}

// VerifyWithOwner checks a signature against an owner's base64url-encoded
// modulus directly, without requiring the caller to reconstruct the
// *rsa.PublicKey first.
func VerifyWithOwner(owner b64.B64, digest, signature []byte) error {
	return Verify(PublicKeyFromOwner(owner), digest, signature)
}
