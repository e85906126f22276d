// Package cryptostream implements the streaming AES-256-GCM construction
// used to encrypt file contents and names for a sync password: a BE32
// STREAM cipher (Rogaway/Bellare-style nonce construction) keyed and seeded
// deterministically from the password itself, so that neither a key file
// nor a stored nonce is ever needed.
//
// The key is the ASCII-hex encoding of MD5(password), used directly as a
// 32-byte AES-256 key; the nonce prefix is the first 7 bytes of the same
// MD5 digest. Each chunk's 12-byte GCM nonce is nonce-prefix || BE32(counter)
// || flag, where flag is 0x00 for an interior chunk and 0x01 for the final
// chunk of a stream. This mirrors RustCrypto's EncryptorBE32/DecryptorBE32
// construction bit-for-bit, since passbooks and encrypted names created by
// one implementation must decrypt under the other.
package cryptostream

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/md5"
	"encoding/base64"
	"encoding/hex"
	"fmt"

	"github.com/adrive/adrive-sync/internal/constants"
)

const (
	nonceSize       = 12
	noncePrefixSize = nonceSize - 5
)

// deriveKeyAndPrefix computes the AES-256 key and 7-byte nonce prefix for a
// password, per the MD5-derivation scheme above.
func deriveKeyAndPrefix(password []byte) (key []byte, noncePrefix []byte) {
	digest := md5.Sum(password)
	keyHex := hex.EncodeToString(digest[:])
	return []byte(keyHex), digest[:noncePrefixSize]
}

// Encryptor produces a BE32 stream of AES-256-GCM chunks for one password.
type Encryptor struct {
	aead        cipher.AEAD
	noncePrefix []byte
	counter     uint32
	done        bool
}

// NewEncryptor builds a stream encryptor keyed by password.
func NewEncryptor(password []byte) (*Encryptor, error) {
	aead, noncePrefix, err := newAEAD(password)
	if err != nil {
		return nil, err
	}
	return &Encryptor{aead: aead, noncePrefix: noncePrefix}, nil
}

func newAEAD(password []byte) (cipher.AEAD, []byte, error) {
	key, noncePrefix := deriveKeyAndPrefix(password)
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, nil, fmt.Errorf("cryptostream: create cipher: %w", err)
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, nil, fmt.Errorf("cryptostream: create gcm: %w", err)
	}
	return aead, noncePrefix, nil
}

func (e *Encryptor) nonce(last bool) []byte {
	n := make([]byte, nonceSize)
	copy(n, e.noncePrefix)
	n[noncePrefixSize] = byte(e.counter >> 24)
	n[noncePrefixSize+1] = byte(e.counter >> 16)
	n[noncePrefixSize+2] = byte(e.counter >> 8)
	n[noncePrefixSize+3] = byte(e.counter)
	if last {
		n[nonceSize-1] = 0x01
	}
	return n
}

// EncryptNext seals one interior chunk. It must not be called again after
// EncryptLast.
func (e *Encryptor) EncryptNext(chunk []byte) ([]byte, error) {
	if e.done {
		return nil, fmt.Errorf("cryptostream: encrypt after final chunk")
	}
	out := e.aead.Seal(nil, e.nonce(false), chunk, nil)
	e.counter++
	return out, nil
}

// EncryptLast seals the final chunk of the stream (possibly empty).
func (e *Encryptor) EncryptLast(chunk []byte) ([]byte, error) {
	if e.done {
		return nil, fmt.Errorf("cryptostream: encrypt after final chunk")
	}
	out := e.aead.Seal(nil, e.nonce(true), chunk, nil)
	e.done = true
	return out, nil
}

// Decryptor consumes a BE32 stream of AES-256-GCM chunks for one password.
type Decryptor struct {
	aead        cipher.AEAD
	noncePrefix []byte
	counter     uint32
	done        bool
}

// NewDecryptor builds a stream decryptor keyed by password.
func NewDecryptor(password []byte) (*Decryptor, error) {
	aead, noncePrefix, err := newAEAD(password)
	if err != nil {
		return nil, err
	}
	return &Decryptor{aead: aead, noncePrefix: noncePrefix}, nil
}

func (d *Decryptor) nonce(last bool) []byte {
	n := make([]byte, nonceSize)
	copy(n, d.noncePrefix)
	n[noncePrefixSize] = byte(d.counter >> 24)
	n[noncePrefixSize+1] = byte(d.counter >> 16)
	n[noncePrefixSize+2] = byte(d.counter >> 8)
	n[noncePrefixSize+3] = byte(d.counter)
	if last {
		n[nonceSize-1] = 0x01
	}
	return n
}

// DecryptNext opens one interior chunk.
func (d *Decryptor) DecryptNext(chunk []byte) ([]byte, error) {
	if d.done {
		return nil, fmt.Errorf("cryptostream: decrypt after final chunk")
	}
	out, err := d.aead.Open(nil, d.nonce(false), chunk, nil)
	if err != nil {
		return nil, fmt.Errorf("cryptostream: decrypt chunk %d: %w", d.counter, err)
	}
	d.counter++
	return out, nil
}

// DecryptLast opens the final chunk of the stream (possibly empty).
func (d *Decryptor) DecryptLast(chunk []byte) ([]byte, error) {
	if d.done {
		return nil, fmt.Errorf("cryptostream: decrypt after final chunk")
	}
	out, err := d.aead.Open(nil, d.nonce(true), chunk, nil)
	if err != nil {
		return nil, fmt.Errorf("cryptostream: decrypt final chunk: %w", err)
	}
	d.done = true
	return out, nil
}

// EncryptBytes encrypts buf as a single-chunk stream (buf is the last and
// only chunk). Used for short values like filenames and passbook fields.
func EncryptBytes(buf, password []byte) ([]byte, error) {
	enc, err := NewEncryptor(password)
	if err != nil {
		return nil, err
	}
	return enc.EncryptLast(buf)
}

// DecryptBytes decrypts a value produced by EncryptBytes.
func DecryptBytes(buf, password []byte) ([]byte, error) {
	dec, err := NewDecryptor(password)
	if err != nil {
		return nil, err
	}
	return dec.DecryptLast(buf)
}

// EncryptToBase64URL encrypts buf as a single chunk and base64url-encodes
// the result, matching the passbook and filename wire encoding.
func EncryptToBase64URL(buf, password []byte) (string, error) {
	sealed, err := EncryptBytes(buf, password)
	if err != nil {
		return "", err
	}
	return base64.URLEncoding.EncodeToString(sealed), nil
}

// DecryptBase64URL decodes and decrypts a value produced by
// EncryptToBase64URL.
func DecryptBase64URL(s string, password []byte) ([]byte, error) {
	sealed, err := base64.URLEncoding.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("cryptostream: decode base64url: %w", err)
	}
	return DecryptBytes(sealed, password)
}

// EncryptFileName encrypts a plaintext file or folder name for storage on
// the remote side.
func EncryptFileName(name string, password []byte) (string, error) {
	return EncryptToBase64URL([]byte(name), password)
}

// DecryptFileName decrypts a remote entry name back to its plaintext form.
func DecryptFileName(encoded string, password []byte) (string, error) {
	plain, err := DecryptBase64URL(encoded, password)
	if err != nil {
		return "", err
	}
	return string(plain), nil
}

// PlaintextChunkSize and CiphertextChunkSize re-export the protocol's fixed
// chunk sizes for callers that stream file contents in chunks.
const (
	PlaintextChunkSize  = constants.PlaintextChunkSize
	CiphertextChunkSize = constants.CiphertextChunkSize
)
