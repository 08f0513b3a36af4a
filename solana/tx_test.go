package solana

import (
	"bytes"
	"crypto/ed25519"
	"encoding/base64"
	"errors"
	"testing"

	"github.com/mr-tron/base58"
)

func decodeKey(t *testing.T, s string) []byte {
	t.Helper()
	raw, err := base58.Decode(s)
	if err != nil {
		t.Fatalf("decode key %q: %v", s, err)
	}
	return raw
}

// buildEnvelope assembles a minimal unsigned transaction envelope around
// the given message.
func buildEnvelope(t *testing.T, message []byte, numSigs int) string {
	t.Helper()
	var buf bytes.Buffer
	buf.Write(encodeShortvec(numSigs))
	buf.Write(make([]byte, numSigs*signatureSize))
	buf.Write(message)
	return base64.StdEncoding.EncodeToString(buf.Bytes())
}

// buildMessage assembles a message with the given signer keys followed by
// one non-signer key, a blockhash and no instructions.
func buildMessage(t *testing.T, versioned bool, signerKeys ...[]byte) []byte {
	t.Helper()
	var buf bytes.Buffer
	if versioned {
		buf.WriteByte(0x80)
	}
	buf.Write([]byte{byte(len(signerKeys)), 0, 1})
	buf.Write(encodeShortvec(len(signerKeys) + 1))
	for _, key := range signerKeys {
		buf.Write(key)
	}
	buf.Write(bytes.Repeat([]byte{0x11}, 32)) // non-signer key
	buf.Write(bytes.Repeat([]byte{0x22}, 32)) // blockhash
	buf.Write(encodeShortvec(0))              // instructions
	if versioned {
		buf.Write(encodeShortvec(0)) // address table lookups
	}
	return buf.Bytes()
}

func TestParseSignSerializeLegacy(t *testing.T) {
	kp, err := NewKeypair()
	if err != nil {
		t.Fatalf("generate keypair: %v", err)
	}

	pub, _ := base58.Decode(kp.PublicKey())
	message := buildMessage(t, false, pub)
	encoded := buildEnvelope(t, message, 1)

	tx, err := ParseTransaction(encoded)
	if err != nil {
		t.Fatalf("ParseTransaction failed: %v", err)
	}

	keys := tx.SignerKeys()
	if len(keys) != 1 || keys[0] != kp.PublicKey() {
		t.Fatalf("unexpected signer keys: %v", keys)
	}
	if sig := tx.Signature(); sig != "" {
		t.Errorf("unsigned transaction should have empty signature, got %q", sig)
	}

	if err := tx.Sign(kp); err != nil {
		t.Fatalf("Sign failed: %v", err)
	}
	if tx.Signature() == "" {
		t.Fatal("expected signature after signing")
	}

	// Round-trip and verify the signature covers the message bytes.
	reparsed, err := ParseTransaction(tx.Serialize())
	if err != nil {
		t.Fatalf("reparse failed: %v", err)
	}
	sigRaw, err := base58.Decode(reparsed.Signature())
	if err != nil {
		t.Fatalf("decode signature: %v", err)
	}
	if !ed25519.Verify(ed25519.PublicKey(pub), reparsed.Message(), sigRaw) {
		t.Error("signature does not verify over message bytes")
	}
	if !bytes.Equal(reparsed.Message(), message) {
		t.Error("message bytes changed across round trip")
	}
}

func TestParseSignV0(t *testing.T) {
	kp, err := NewKeypair()
	if err != nil {
		t.Fatalf("generate keypair: %v", err)
	}

	pub, _ := base58.Decode(kp.PublicKey())
	encoded := buildEnvelope(t, buildMessage(t, true, pub), 1)

	tx, err := ParseTransaction(encoded)
	if err != nil {
		t.Fatalf("ParseTransaction failed: %v", err)
	}
	if err := tx.Sign(kp); err != nil {
		t.Fatalf("Sign failed: %v", err)
	}

	sigRaw, _ := base58.Decode(tx.Signature())
	if !ed25519.Verify(ed25519.PublicKey(pub), tx.Message(), sigRaw) {
		t.Error("v0 signature does not verify")
	}
}

func TestSignWrongSigner(t *testing.T) {
	owner, _ := NewKeypair()
	stranger, _ := NewKeypair()

	pub, _ := base58.Decode(owner.PublicKey())
	tx, err := ParseTransaction(buildEnvelope(t, buildMessage(t, false, pub), 1))
	if err != nil {
		t.Fatalf("ParseTransaction failed: %v", err)
	}

	if err := tx.Sign(stranger); !errors.Is(err, ErrSignerNotRequired) {
		t.Errorf("expected ErrSignerNotRequired, got %v", err)
	}
}

func TestParseTransactionErrors(t *testing.T) {
	tests := []struct {
		name    string
		encoded string
	}{
		{"bad base64", "not-base64!!!"},
		{"empty", base64.StdEncoding.EncodeToString(nil)},
		{"truncated signatures", base64.StdEncoding.EncodeToString([]byte{2, 0, 0})},
		{"sig count mismatch", func() string {
			// Two signature slots but a message requiring one signer.
			message := []byte{1, 0, 1}
			message = append(message, encodeShortvec(1)...)
			message = append(message, bytes.Repeat([]byte{0x33}, 32)...)
			message = append(message, bytes.Repeat([]byte{0x22}, 32)...)
			message = append(message, encodeShortvec(0)...)
			var buf bytes.Buffer
			buf.Write(encodeShortvec(2))
			buf.Write(make([]byte, 2*signatureSize))
			buf.Write(message)
			return base64.StdEncoding.EncodeToString(buf.Bytes())
		}()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ParseTransaction(tt.encoded); err == nil {
				t.Error("expected parse error")
			}
		})
	}
}

func TestShortvecRoundTrip(t *testing.T) {
	for _, value := range []int{0, 1, 127, 128, 200, 16383, 16384} {
		encoded := encodeShortvec(value)
		decoded, n, err := decodeShortvec(encoded)
		if err != nil {
			t.Fatalf("decode %d: %v", value, err)
		}
		if decoded != value || n != len(encoded) {
			t.Errorf("round trip %d: got %d (consumed %d of %d)", value, decoded, n, len(encoded))
		}
	}
}
