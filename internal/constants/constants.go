// Package constants holds the fixed values the sync protocol itself defines:
// the reserved passbook name and the chunk/tag sizes of the streaming cipher.
// These are wire-format constants, not tunables.
package constants

const (
	// PassbookName is the reserved root-level remote entry name that holds
	// the encrypted sync password. No user file or folder may use this name.
	PassbookName = "passbook"

	// PlaintextChunkSize is the size of one plaintext chunk fed to the
	// streaming encryptor, except possibly the last.
	PlaintextChunkSize = 1 << 20 // 1 MiB

	// GCMTagSize is the AES-256-GCM authentication tag appended to every
	// encrypted chunk.
	GCMTagSize = 16

	// CiphertextChunkSize is the size of one encrypted chunk on the wire,
	// except possibly the last.
	CiphertextChunkSize = PlaintextChunkSize + GCMTagSize

	// HashPassBufferSize is the read buffer size used while hashing a file
	// whose contents will be encrypted before upload.
	HashPassBufferSize = PlaintextChunkSize

	// HashPlainBufferSize is the read buffer size used while hashing a file
	// that will be uploaded unencrypted.
	HashPlainBufferSize = 1 << 10 // 1 KiB

	// PutChannelDepth is the depth of the producer/consumer channel that
	// feeds encrypted chunks to the HTTP request body during an upload.
	PutChannelDepth = 16

	// SyncPasswordLength is the length in bytes of a generated sync
	// password stored (encrypted) in the passbook.
	SyncPasswordLength = 64

	// TmpSuffix is appended to a download's local path while it is in
	// flight; the file is renamed into place only after a full, verified
	// download.
	TmpSuffix = ".tmp"
)
