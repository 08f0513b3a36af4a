package solana

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"

	"github.com/mr-tron/base58"
)

const signatureSize = 64

// ErrSignerNotRequired is returned by Transaction.Sign when the signer's
// public key is not among the transaction's required signers.
var ErrSignerNotRequired = errors.New("signer is not a required signer of this transaction")

// Transaction is a decoded Solana transaction envelope: the signature
// table plus the raw message bytes. The message itself is kept opaque;
// only the static account keys needed to place signatures are parsed.
type Transaction struct {
	signatures [][]byte
	message    []byte
	signerKeys []string // base58, first numRequiredSignatures static keys
}

// ParseTransaction decodes a base64 transaction envelope. Both legacy and
// v0 message formats are supported.
func ParseTransaction(encoded string) (*Transaction, error) {
	raw, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, fmt.Errorf("decode transaction base64: %w", err)
	}

	numSigs, n, err := decodeShortvec(raw)
	if err != nil {
		return nil, fmt.Errorf("read signature count: %w", err)
	}
	offset := n

	if len(raw) < offset+numSigs*signatureSize {
		return nil, fmt.Errorf("transaction truncated: %d signatures do not fit in %d bytes", numSigs, len(raw))
	}

	sigs := make([][]byte, numSigs)
	for i := 0; i < numSigs; i++ {
		sigs[i] = append([]byte(nil), raw[offset:offset+signatureSize]...)
		offset += signatureSize
	}

	message := append([]byte(nil), raw[offset:]...)
	signerKeys, err := parseSignerKeys(message)
	if err != nil {
		return nil, err
	}
	if len(signerKeys) != numSigs {
		return nil, fmt.Errorf("signature table has %d slots but message requires %d signers", numSigs, len(signerKeys))
	}

	return &Transaction{
		signatures: sigs,
		message:    message,
		signerKeys: signerKeys,
	}, nil
}

// parseSignerKeys extracts the base58 keys of the required signers from
// the message prefix. Layout: optional version byte (high bit set), a
// 3-byte header, then a shortvec of 32-byte static account keys, of which
// the first header[0] must sign.
func parseSignerKeys(message []byte) ([]string, error) {
	if len(message) == 0 {
		return nil, errors.New("empty transaction message")
	}

	offset := 0
	if message[0]&0x80 != 0 {
		// Versioned message; only v0 exists today.
		if version := message[0] & 0x7f; version != 0 {
			return nil, fmt.Errorf("unsupported transaction version %d", version)
		}
		offset = 1
	}

	if len(message) < offset+3 {
		return nil, errors.New("transaction message shorter than header")
	}
	numRequired := int(message[offset])
	offset += 3

	numKeys, n, err := decodeShortvec(message[offset:])
	if err != nil {
		return nil, fmt.Errorf("read account key count: %w", err)
	}
	offset += n

	if numRequired > numKeys {
		return nil, fmt.Errorf("message requires %d signers but has %d account keys", numRequired, numKeys)
	}
	if len(message) < offset+numKeys*32 {
		return nil, errors.New("transaction message truncated in account keys")
	}

	keys := make([]string, numRequired)
	for i := 0; i < numRequired; i++ {
		keys[i] = base58.Encode(message[offset+i*32 : offset+(i+1)*32])
	}
	return keys, nil
}

// SignerKeys returns the base58 public keys that must sign, in signature
// table order.
func (t *Transaction) SignerKeys() []string {
	return append([]string(nil), t.signerKeys...)
}

// Message returns the raw message bytes that signatures cover.
func (t *Transaction) Message() []byte {
	return append([]byte(nil), t.message...)
}

// Sign places the signer's signature into its slot in the signature
// table. Returns ErrSignerNotRequired when the signer is not listed.
func (t *Transaction) Sign(signer Signer) error {
	pub := signer.PublicKey()
	for i, key := range t.signerKeys {
		if key != pub {
			continue
		}
		sig, err := signer.Sign(t.message)
		if err != nil {
			return fmt.Errorf("sign message: %w", err)
		}
		if len(sig) != signatureSize {
			return fmt.Errorf("signer produced %d-byte signature, want %d", len(sig), signatureSize)
		}
		t.signatures[i] = sig
		return nil
	}
	return ErrSignerNotRequired
}

// Signature returns the base58 fee-payer signature, which doubles as the
// transaction's identifier, or "" when still unsigned.
func (t *Transaction) Signature() string {
	if len(t.signatures) == 0 || isZero(t.signatures[0]) {
		return ""
	}
	return base58.Encode(t.signatures[0])
}

// Serialize re-encodes the envelope as base64.
func (t *Transaction) Serialize() string {
	var buf bytes.Buffer
	buf.Write(encodeShortvec(len(t.signatures)))
	for _, sig := range t.signatures {
		buf.Write(sig)
	}
	buf.Write(t.message)
	return base64.StdEncoding.EncodeToString(buf.Bytes())
}

func isZero(b []byte) bool {
	for _, v := range b {
		if v != 0 {
			return false
		}
	}
	return true
}

// decodeShortvec reads a compact-u16 length prefix. Returns the value and
// the number of bytes consumed.
func decodeShortvec(data []byte) (int, int, error) {
	value := 0
	for i := 0; i < 3; i++ {
		if i >= len(data) {
			return 0, 0, errors.New("shortvec truncated")
		}
		b := data[i]
		value |= int(b&0x7f) << (7 * i)
		if b&0x80 == 0 {
			return value, i + 1, nil
		}
	}
	return 0, 0, errors.New("shortvec longer than 3 bytes")
}

// encodeShortvec writes a compact-u16 length prefix.
func encodeShortvec(value int) []byte {
	var out []byte
	for {
		b := byte(value & 0x7f)
		value >>= 7
		if value == 0 {
			out = append(out, b)
			return out
		}
		out = append(out, b|0x80)
	}
}
