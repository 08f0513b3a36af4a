package solana

import (
	"crypto/ed25519"
	"crypto/rand"
	"fmt"

	"filippo.io/edwards25519"
	"github.com/mr-tron/base58"
)

// Signer produces ed25519 signatures over transaction messages. Callers
// that keep keys in external custody implement this themselves; Keypair
// is the in-process implementation.
type Signer interface {
	// PublicKey returns the base58-encoded public key.
	PublicKey() string

	// Sign signs the raw message bytes.
	Sign(message []byte) ([]byte, error)
}

// Keypair is an in-memory ed25519 keypair.
type Keypair struct {
	pub  ed25519.PublicKey
	priv ed25519.PrivateKey
}

// NewKeypair generates a random keypair.
func NewKeypair() (*Keypair, error) {
	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return nil, fmt.Errorf("generate keypair: %w", err)
	}
	return &Keypair{pub: pub, priv: priv}, nil
}

// KeypairFromBytes restores a keypair from a 64-byte secret key
// (seed followed by public key, the common wallet export format).
func KeypairFromBytes(secret []byte) (*Keypair, error) {
	if len(secret) != ed25519.PrivateKeySize {
		return nil, fmt.Errorf("secret key must be %d bytes, got %d", ed25519.PrivateKeySize, len(secret))
	}
	priv := ed25519.PrivateKey(append([]byte(nil), secret...))
	return &Keypair{pub: priv.Public().(ed25519.PublicKey), priv: priv}, nil
}

// KeypairFromSeed restores a keypair from a 32-byte seed.
func KeypairFromSeed(seed []byte) (*Keypair, error) {
	if len(seed) != ed25519.SeedSize {
		return nil, fmt.Errorf("seed must be %d bytes, got %d", ed25519.SeedSize, len(seed))
	}
	priv := ed25519.NewKeyFromSeed(seed)
	return &Keypair{pub: priv.Public().(ed25519.PublicKey), priv: priv}, nil
}

// PublicKey returns the base58-encoded public key.
func (k *Keypair) PublicKey() string {
	return base58.Encode(k.pub)
}

// Sign signs the raw message bytes.
func (k *Keypair) Sign(message []byte) ([]byte, error) {
	return ed25519.Sign(k.priv, message), nil
}

// Compile-time interface check.
var _ Signer = (*Keypair)(nil)

// ValidateAddress checks that s is a base58-encoded 32-byte value.
// Program-derived addresses pass this check; use ValidatePublicKey for
// addresses that must be signable.
func ValidateAddress(s string) error {
	if s == "" {
		return fmt.Errorf("address is empty")
	}
	raw, err := base58.Decode(s)
	if err != nil {
		return fmt.Errorf("decode address: %w", err)
	}
	if len(raw) != ed25519.PublicKeySize {
		return fmt.Errorf("address must decode to %d bytes, got %d", ed25519.PublicKeySize, len(raw))
	}
	return nil
}

// ValidatePublicKey checks that s is a valid ed25519 public key, i.e. a
// canonical point on the curve. Only such keys can sign transactions.
func ValidatePublicKey(s string) error {
	if err := ValidateAddress(s); err != nil {
		return err
	}
	raw, _ := base58.Decode(s)
	if _, err := new(edwards25519.Point).SetBytes(raw); err != nil {
		return fmt.Errorf("address is not a valid ed25519 point: %w", err)
	}
	return nil
}
