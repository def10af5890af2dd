// Package signer provides the RSA key management and signing operations
// this client treats as the `Crypto` collaborator: the primitives
// themselves (RSA-PSS, SHA-256) are standard-library operations, but the
// wallet identity (address, owner bytes, key loading) and the Sign/Verify
// contract every other package depends on live here.
//
// Example usage:
//
//	// Create a new signer with a generated key
//	s, err := signer.New()
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	// Load a signer from a JWK wallet file
//	s, err := signer.FromPath("wallet.json")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	fmt.Printf("Wallet address: %s\n", s.Address)
package signer

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha256"
	"fmt"
	"math/big"
	"os"

	"github.com/everFinance/gojwk"
	"github.com/liteseed/arloader/b64"
)

// KeyBits is the RSA modulus size the network expects of a wallet key.
const KeyBits = 4096

// Signer is a wallet's cryptographic identity: its RSA key pair and the
// address derived from the public key.
type Signer struct {
	Address    string
	PublicKey  *rsa.PublicKey
	PrivateKey *rsa.PrivateKey
}

// New generates a fresh RSA key pair and wraps it as a Signer.
func New() (*Signer, error) {
	key, err := rsa.GenerateKey(rand.Reader, KeyBits)
	if err != nil {
		return nil, fmt.Errorf("signer: generate key: %w", err)
	}
	return FromPrivateKey(key), nil
}

// FromPath loads a JWK-formatted wallet key from a file on disk.
func FromPath(path string) (*Signer, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("signer: read key file: %w", err)
	}
	return FromJWK(b)
}

// FromJWK parses JWK-formatted RSA key data into a Signer.
func FromJWK(data []byte) (*Signer, error) {
	key, err := gojwk.Unmarshal(data)
	if err != nil {
		return nil, fmt.Errorf("signer: parse jwk: %w", err)
	}

	rawPrivate, err := key.DecodePrivateKey()
	if err != nil {
		return nil, fmt.Errorf("signer: decode private key: %w", err)
	}
	privateKey, ok := rawPrivate.(*rsa.PrivateKey)
	if !ok {
		return nil, fmt.Errorf("signer: jwk did not contain an RSA private key")
	}

	return FromPrivateKey(privateKey), nil
}

// FromPrivateKey wraps an already-loaded RSA private key as a Signer,
// deriving the public key and wallet address.
func FromPrivateKey(privateKey *rsa.PrivateKey) *Signer {
	publicKey := &privateKey.PublicKey
	return &Signer{
		Address:    AddressFromPublicKey(publicKey),
		PublicKey:  publicKey,
		PrivateKey: privateKey,
	}
}

// Owner returns the base64url-encoded RSA modulus: the `owner` field of
// every transaction and data item this signer produces.
func (s *Signer) Owner() b64.B64 {
	return b64.B64(s.PublicKey.N.Bytes())
}

// Generate creates a fresh network-compatible RSA key and returns it
// JWK-encoded, suitable for writing out as a new wallet file.
func Generate() ([]byte, error) {
	key, err := rsa.GenerateKey(rand.Reader, KeyBits)
	if err != nil {
		return nil, fmt.Errorf("signer: generate key: %w", err)
	}
	jwk, err := gojwk.PrivateKey(key)
	if err != nil {
		return nil, fmt.Errorf("signer: encode jwk: %w", err)
	}
	return gojwk.Marshal(jwk)
}

// AddressFromPublicKey derives a wallet address from an RSA public key:
// the base64url encoding of the SHA-256 hash of the modulus bytes.
func AddressFromPublicKey(p *rsa.PublicKey) string {
	hash := sha256.Sum256(p.N.Bytes())
	return b64.B64(hash[:]).Encode()
}

// PublicKeyFromOwner reconstructs an RSA public key from an owner's
// base64url-encoded modulus, as found in the `owner` field of a
// transaction or data item received from the network. The public
// exponent is always 65537, the only value the network's wallets use.
func PublicKeyFromOwner(owner b64.B64) *rsa.PublicKey {
	return &rsa.PublicKey{
		N: new(big.Int).SetBytes(owner),
		E: 65537,
	}
}

// AddressFromOwner derives a wallet address directly from an owner field.
func AddressFromOwner(owner b64.B64) string {
	return AddressFromPublicKey(PublicKeyFromOwner(owner))
}
