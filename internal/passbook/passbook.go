// Package passbook implements the per-folder key-wrapping protocol: a
// reserved remote file named "passbook" that wraps a random SyncPassword
// under the user-supplied PasswordInput, so file content and names can be
// encrypted with a key that never needs to be typed twice and never
// appears on the wire in plaintext.
package passbook

import (
	"bytes"
	"crypto/rand"
	"fmt"
	"math/big"

	"github.com/BurntSushi/toml"

	"github.com/adrive/adrive-sync/internal/constants"
	"github.com/adrive/adrive-sync/internal/cryptostream"
	"github.com/adrive/adrive-sync/internal/synerr"
)

// testPlaintext is the known plaintext a passbook's test_encrypted field
// must decrypt to under the correct PasswordInput.
const testPlaintext = "test"

// File is the TOML-serialized shape stored as the remote "passbook" entry.
type File struct {
	KeyEncrypted  string `toml:"key_encrypted"`
	TestEncrypted string `toml:"test_encrypted"`
}

// Marshal serializes f as TOML.
func Marshal(f File) ([]byte, error) {
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(f); err != nil {
		return nil, fmt.Errorf("passbook: encode toml: %w", err)
	}
	return buf.Bytes(), nil
}

// Unmarshal parses raw TOML bytes into a File.
func Unmarshal(raw []byte) (File, error) {
	var f File
	if err := toml.Unmarshal(raw, &f); err != nil {
		return File{}, synerr.New(synerr.Password, "parse passbook toml", err)
	}
	return f, nil
}

// CheckPassword verifies passwordInput against a downloaded passbook and
// returns the unwrapped SyncPassword on success.
func CheckPassword(raw []byte, passwordInput []byte) (syncPassword []byte, err error) {
	f, err := Unmarshal(raw)
	if err != nil {
		return nil, err
	}

	testPlain, err := cryptostream.DecryptBase64URL(f.TestEncrypted, passwordInput)
	if err != nil {
		return nil, synerr.New(synerr.Password, "decrypt passbook test field", err)
	}
	if string(testPlain) != testPlaintext {
		return nil, synerr.New(synerr.Password, "verify passbook", fmt.Errorf("wrong password"))
	}

	syncPassword, err = cryptostream.DecryptBase64URL(f.KeyEncrypted, passwordInput)
	if err != nil {
		return nil, synerr.New(synerr.Password, "decrypt passbook key field", err)
	}
	return syncPassword, nil
}

// CreatePassword generates a fresh SyncPassword and wraps it under
// passwordInput, returning both the random password and the TOML bytes to
// upload as the root "passbook" entry.
func CreatePassword(passwordInput []byte) (syncPassword []byte, raw []byte, err error) {
	syncPassword, err = generateSyncPassword()
	if err != nil {
		return nil, nil, err
	}

	keyEncrypted, err := cryptostream.EncryptToBase64URL(syncPassword, passwordInput)
	if err != nil {
		return nil, nil, synerr.New(synerr.Crypto, "wrap sync password", err)
	}
	testEncrypted, err := cryptostream.EncryptFileName(testPlaintext, passwordInput)
	if err != nil {
		return nil, nil, synerr.New(synerr.Crypto, "encrypt passbook test field", err)
	}

	raw, err = Marshal(File{KeyEncrypted: keyEncrypted, TestEncrypted: testEncrypted})
	if err != nil {
		return nil, nil, err
	}
	return syncPassword, raw, nil
}

// generateSyncPassword produces a random 64-byte printable ASCII string,
// matching the original implementation's alphanumeric alphabet.
func generateSyncPassword() ([]byte, error) {
	const alphabet = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

	out := make([]byte, constants.SyncPasswordLength)
	for i := range out {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(alphabet))))
		if err != nil {
			return nil, synerr.New(synerr.Crypto, "generate sync password", err)
		}
		out[i] = alphabet[n.Int64()]
	}
	return out, nil
}
