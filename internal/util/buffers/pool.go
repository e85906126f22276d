// Package buffers provides reusable byte buffers for the transfer and
// crypto pipeline, sized to the protocol's two fixed chunk sizes so the hot
// upload/download path doesn't allocate per chunk.
package buffers

import (
	"sync"

	"github.com/adrive/adrive-sync/internal/constants"
)

var (
	// plaintextPool provides 1 MiB buffers for reading/encrypting file
	// content one chunk at a time.
	plaintextPool = &sync.Pool{
		New: func() interface{} {
			buf := make([]byte, constants.PlaintextChunkSize)
			return &buf
		},
	}

	// ciphertextPool provides (1 MiB + 16)-byte buffers for reading and
	// decrypting downloaded chunks.
	ciphertextPool = &sync.Pool{
		New: func() interface{} {
			buf := make([]byte, constants.CiphertextChunkSize)
			return &buf
		},
	}
)

// GetPlaintextBuffer retrieves a PlaintextChunkSize buffer from the pool.
// The buffer must be returned with PutPlaintextBuffer when done.
func GetPlaintextBuffer() *[]byte {
	return plaintextPool.Get().(*[]byte)
}

// PutPlaintextBuffer returns a buffer to the pool, clearing it first since
// it may hold decrypted file contents.
func PutPlaintextBuffer(buf *[]byte) {
	if buf != nil && len(*buf) == constants.PlaintextChunkSize {
		clear(*buf)
		plaintextPool.Put(buf)
	}
}

// GetCiphertextBuffer retrieves a CiphertextChunkSize buffer from the pool.
func GetCiphertextBuffer() *[]byte {
	return ciphertextPool.Get().(*[]byte)
}

// PutCiphertextBuffer returns a buffer to the pool, clearing it first.
func PutCiphertextBuffer(buf *[]byte) {
	if buf != nil && len(*buf) == constants.CiphertextChunkSize {
		clear(*buf)
		ciphertextPool.Put(buf)
	}
}
