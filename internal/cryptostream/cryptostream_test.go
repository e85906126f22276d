package cryptostream

import (
	"bytes"
	"testing"
)

func TestEncryptFileNameRoundTrip(t *testing.T) {
	password := []byte("correct horse battery staple")

	encoded, err := EncryptFileName("quarterly-report.xlsx", password)
	if err != nil {
		t.Fatalf("EncryptFileName() failed: %v", err)
	}

	decoded, err := DecryptFileName(encoded, password)
	if err != nil {
		t.Fatalf("DecryptFileName() failed: %v", err)
	}

	if decoded != "quarterly-report.xlsx" {
		t.Errorf("expected round-trip name %q, got %q", "quarterly-report.xlsx", decoded)
	}
}

func TestDecryptFileNameWrongPassword(t *testing.T) {
	encoded, err := EncryptFileName("secret.txt", []byte("pw1"))
	if err != nil {
		t.Fatalf("EncryptFileName() failed: %v", err)
	}

	if _, err := DecryptFileName(encoded, []byte("pw2")); err == nil {
		t.Error("expected decryption under the wrong password to fail")
	}
}

func TestEncryptIsDeterministicAcrossCalls(t *testing.T) {
	// Each call derives a fresh encryptor with counter 0 from the same
	// password-derived key and nonce prefix, so encrypting the same
	// plaintext under the same password twice produces the same ciphertext.
	a, err := EncryptFileName("same-name", []byte("pw"))
	if err != nil {
		t.Fatalf("first EncryptFileName() failed: %v", err)
	}
	b, err := EncryptFileName("same-name", []byte("pw"))
	if err != nil {
		t.Fatalf("second EncryptFileName() failed: %v", err)
	}
	if a != b {
		t.Errorf("expected deterministic ciphertext for identical (name, password), got %q and %q", a, b)
	}
}

func TestStreamRoundTripMultiChunk(t *testing.T) {
	password := []byte("stream-password")

	plaintext := bytes.Repeat([]byte{0x5a}, PlaintextChunkSize*2+37)
	chunks := [][]byte{
		plaintext[:PlaintextChunkSize],
		plaintext[PlaintextChunkSize : PlaintextChunkSize*2],
		plaintext[PlaintextChunkSize*2:],
	}

	enc, err := NewEncryptor(password)
	if err != nil {
		t.Fatalf("NewEncryptor() failed: %v", err)
	}

	var ciphertext []byte
	for i, chunk := range chunks {
		var sealed []byte
		var sealErr error
		if i == len(chunks)-1 {
			sealed, sealErr = enc.EncryptLast(chunk)
		} else {
			sealed, sealErr = enc.EncryptNext(chunk)
		}
		if sealErr != nil {
			t.Fatalf("seal chunk %d failed: %v", i, sealErr)
		}
		ciphertext = append(ciphertext, sealed...)
	}

	dec, err := NewDecryptor(password)
	if err != nil {
		t.Fatalf("NewDecryptor() failed: %v", err)
	}

	var plainOut []byte
	offset := 0
	for i := range chunks {
		size := len(chunks[i]) + 16
		frame := ciphertext[offset : offset+size]
		offset += size

		var opened []byte
		var openErr error
		if i == len(chunks)-1 {
			opened, openErr = dec.DecryptLast(frame)
		} else {
			opened, openErr = dec.DecryptNext(frame)
		}
		if openErr != nil {
			t.Fatalf("open chunk %d failed: %v", i, openErr)
		}
		plainOut = append(plainOut, opened...)
	}

	if !bytes.Equal(plainOut, plaintext) {
		t.Error("round-tripped plaintext does not match original")
	}
}

func TestStreamRoundTripEmptyFile(t *testing.T) {
	password := []byte("empty-file-password")

	enc, err := NewEncryptor(password)
	if err != nil {
		t.Fatalf("NewEncryptor() failed: %v", err)
	}
	sealed, err := enc.EncryptLast(nil)
	if err != nil {
		t.Fatalf("EncryptLast() failed: %v", err)
	}
	if len(sealed) != 16 {
		t.Errorf("expected empty-chunk ciphertext length 16 (tag only), got %d", len(sealed))
	}

	dec, err := NewDecryptor(password)
	if err != nil {
		t.Fatalf("NewDecryptor() failed: %v", err)
	}
	opened, err := dec.DecryptLast(sealed)
	if err != nil {
		t.Fatalf("DecryptLast() failed: %v", err)
	}
	if len(opened) != 0 {
		t.Errorf("expected empty plaintext, got %d bytes", len(opened))
	}
}

// TestDecryptBase64URLRealFixture decrypts a ciphertext produced by the
// original arsync implementation (custom_crypto.rs's own
// test_encrypt_decrypt fixture), rather than only round-tripping this
// package's own encryptor against itself. This is the bit-exactness check
// spec.md §4.1 calls for: it would have caught the terminal-chunk nonce
// flag byte being 0x80 instead of RustCrypto's 0x01, which self-round-trip
// tests can never catch since Encryptor/Decryptor here always agree with
// each other regardless of which flag byte they share.
func TestDecryptBase64URLRealFixture(t *testing.T) {
	const fixture = "YVY-359tgDPNDJsyaoEC_Ay0qEcZ5PlwddCnslO4xvkGcocEjM9M6e367GDfN4oP21wCYAMb2Cq532MylqhLWCVz1USKpv6Rk6NBJE_C-rE="
	password := []byte("isonlypass")

	plain, err := DecryptBase64URL(fixture, password)
	if err != nil {
		t.Fatalf("DecryptBase64URL() on real arsync fixture failed: %v", err)
	}

	if len(plain) != 64 {
		t.Fatalf("expected a 64-byte alphanumeric sync password, got %d bytes", len(plain))
	}
	for _, b := range plain {
		isAlnum := (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z') || (b >= '0' && b <= '9')
		if !isAlnum {
			t.Fatalf("decrypted fixture contains non-alphanumeric byte %q", b)
		}
	}
}

func TestEncryptAfterLastFails(t *testing.T) {
	enc, err := NewEncryptor([]byte("pw"))
	if err != nil {
		t.Fatalf("NewEncryptor() failed: %v", err)
	}
	if _, err := enc.EncryptLast([]byte("a")); err != nil {
		t.Fatalf("EncryptLast() failed: %v", err)
	}
	if _, err := enc.EncryptNext([]byte("b")); err == nil {
		t.Error("expected encrypting after the final chunk to fail")
	}
}
