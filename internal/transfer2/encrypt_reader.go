package transfer2

import (
	"fmt"
	"io"
	"os"

	"github.com/adrive/adrive-sync/internal/constants"
	"github.com/adrive/adrive-sync/internal/cryptostream"
)

// encResult is one produced chunk (or the terminal error) on the
// producer/consumer channel between the file reader and the HTTP PUT body.
type encResult struct {
	data []byte
	err  error
}

// encryptingReader streams a local file's content through the crypto
// pipeline one 1 MiB chunk at a time, handing ciphertext to its Read
// caller (the HTTP request body) as it's produced. The channel between
// the producer goroutine and this reader is the bounded
// producer/consumer link the design calls for: the producer runs ahead of
// the consumer by at most PutChannelDepth chunks.
type encryptingReader struct {
	file    *os.File
	results chan encResult
	done    chan struct{}
	pending []byte
	err     error
}

func newEncryptingReader(f *os.File, syncPassword []byte) (*encryptingReader, error) {
	r := &encryptingReader{
		file:    f,
		results: make(chan encResult, constants.PutChannelDepth),
		done:    make(chan struct{}),
	}
	go r.produce(syncPassword)
	return r, nil
}

func (r *encryptingReader) produce(syncPassword []byte) {
	defer close(r.results)

	enc, err := cryptostream.NewEncryptor(syncPassword)
	if err != nil {
		r.emit(encResult{err: fmt.Errorf("transfer2: create encryptor: %w", err)})
		return
	}

	// Accumulate reads into buf[position:] until it is either exactly full
	// (an interior chunk) or the source is exhausted (the terminal chunk,
	// 0 to PlaintextChunkSize-1 bytes). A single Read can return fewer
	// bytes than requested without signalling EOF, so the boundary must be
	// tracked by position, not by a single call's return value.
	buf := make([]byte, constants.PlaintextChunkSize)
	position := 0
	for {
		n, readErr := r.file.Read(buf[position:])
		position += n

		if readErr == io.EOF {
			sealed, sealErr := enc.EncryptLast(buf[:position])
			if sealErr != nil {
				r.emit(encResult{err: fmt.Errorf("transfer2: encrypt final chunk: %w", sealErr)})
				return
			}
			r.emit(encResult{data: sealed})
			return
		}
		if readErr != nil {
			r.emit(encResult{err: fmt.Errorf("transfer2: read file: %w", readErr)})
			return
		}

		if position == len(buf) {
			sealed, sealErr := enc.EncryptNext(buf[:position])
			if sealErr != nil {
				r.emit(encResult{err: fmt.Errorf("transfer2: encrypt chunk: %w", sealErr)})
				return
			}
			if !r.emit(encResult{data: sealed}) {
				return
			}
			position = 0
		}
	}
}

// emit sends res on the results channel unless the reader has been closed,
// returning false if the send was abandoned.
func (r *encryptingReader) emit(res encResult) bool {
	select {
	case r.results <- res:
		return true
	case <-r.done:
		return false
	}
}

func (r *encryptingReader) Read(p []byte) (int, error) {
	if r.err != nil {
		return 0, r.err
	}

	for len(r.pending) == 0 {
		res, ok := <-r.results
		if !ok {
			return 0, io.EOF
		}
		if res.err != nil {
			r.err = res.err
			return 0, r.err
		}
		r.pending = res.data
	}

	n := copy(p, r.pending)
	r.pending = r.pending[n:]
	return n, nil
}

func (r *encryptingReader) Close() error {
	close(r.done)
	return r.file.Close()
}
