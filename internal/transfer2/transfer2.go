// Package transfer2 implements the per-file upload and download engine:
// hash-and-size, begin/PUT/complete for uploads, and fetch/decrypt/rename
// for downloads. It is named transfer2 because it replaces an earlier,
// multi-file queue-based transfer manager that this module's concurrency
// model (one file at a time, producer/consumer only within that file) has
// no use for.
package transfer2

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/adrive/adrive-sync/internal/constants"
	"github.com/adrive/adrive-sync/internal/cryptostream"
	"github.com/adrive/adrive-sync/internal/progress"
	"github.com/adrive/adrive-sync/internal/remote"
	"github.com/adrive/adrive-sync/internal/synerr"
	"github.com/adrive/adrive-sync/internal/util/buffers"
)

// UploadFile uploads localPath as name under parentID, encrypting content
// with syncPassword if non-nil.
func UploadFile(ctx context.Context, adapter remote.Adapter, driveID, parentID, name string, localPath string, mtime, ctime time.Time, syncPassword []byte, reporter progress.Reporter) error {
	sha1Hex, size, err := hashAndSize(localPath, syncPassword)
	if err != nil {
		return err
	}

	result, err := adapter.BeginUpload(ctx, driveID, parentID, name, size, sha1Hex, mtime, ctime)
	if err != nil {
		return synerr.New(synerr.Remote, fmt.Sprintf("begin upload %s", name), err)
	}
	if result.RapidUpload {
		return nil
	}
	if result.Exist {
		return synerr.New(synerr.Consistency, fmt.Sprintf("upload %s", name), fmt.Errorf("file already exists"))
	}

	reporter.Start(size, name)
	defer reporter.Finish()

	body, bodyErr := openTransferBody(localPath, syncPassword)
	if bodyErr != nil {
		return bodyErr
	}
	defer body.Close()

	reading := progress.NewReader(body, reporter)
	if err := adapter.PutPart(ctx, result.Session, reading, size); err != nil {
		return synerr.New(synerr.Remote, fmt.Sprintf("PUT %s", name), err)
	}

	if err := adapter.CompleteUpload(ctx, driveID, result.Session.FileID, result.Session.UploadID); err != nil {
		return synerr.New(synerr.Remote, fmt.Sprintf("complete upload %s", name), err)
	}
	return nil
}

// hashAndSize streams localPath through SHA-1, over ciphertext if
// syncPassword is set, returning the hex digest and the reported size.
func hashAndSize(localPath string, syncPassword []byte) (sha1Hex string, size int64, err error) {
	f, err := os.Open(localPath)
	if err != nil {
		return "", 0, synerr.New(synerr.LocalIO, "open for hashing", err)
	}
	defer f.Close()

	hasher := sha1.New()

	if syncPassword == nil {
		// The struct wrapper hides f's WriteTo so the 1 KiB buffer is used.
		n, err := io.CopyBuffer(hasher, struct{ io.Reader }{f}, make([]byte, constants.HashPlainBufferSize))
		if err != nil {
			return "", 0, synerr.New(synerr.LocalIO, "read for hashing", err)
		}
		return hex.EncodeToString(hasher.Sum(nil)), n, nil
	}

	enc, err := cryptostream.NewEncryptor(syncPassword)
	if err != nil {
		return "", 0, synerr.New(synerr.Crypto, "create encryptor", err)
	}

	bufPtr := buffers.GetPlaintextBuffer()
	defer buffers.PutPlaintextBuffer(bufPtr)
	buf := *bufPtr

	// Accumulate reads into buf[position:] until it is either exactly full
	// (an interior chunk) or the source is exhausted (the terminal chunk).
	// A single Read can return fewer bytes than requested without
	// signalling EOF, so the chunk boundary must be tracked by position,
	// not by a single call's return value.
	var total int64
	position := 0
	for {
		n, readErr := f.Read(buf[position:])
		position += n

		if readErr == io.EOF {
			sealed, sealErr := enc.EncryptLast(buf[:position])
			if sealErr != nil {
				return "", 0, synerr.New(synerr.Crypto, "encrypt final chunk for hashing", sealErr)
			}
			hasher.Write(sealed)
			total += int64(len(sealed))
			break
		}
		if readErr != nil {
			return "", 0, synerr.New(synerr.LocalIO, "read for hashing", readErr)
		}

		if position == len(buf) {
			sealed, sealErr := enc.EncryptNext(buf[:position])
			if sealErr != nil {
				return "", 0, synerr.New(synerr.Crypto, "encrypt chunk for hashing", sealErr)
			}
			hasher.Write(sealed)
			total += int64(len(sealed))
			position = 0
		}
	}

	return hex.EncodeToString(hasher.Sum(nil)), total, nil
}

// openTransferBody returns a ReadCloser producing the bytes to PUT: plain
// file content, or a streaming encryptor over it.
func openTransferBody(localPath string, syncPassword []byte) (io.ReadCloser, error) {
	f, err := os.Open(localPath)
	if err != nil {
		return nil, synerr.New(synerr.LocalIO, "open for upload", err)
	}
	if syncPassword == nil {
		return f, nil
	}
	return newEncryptingReader(f, syncPassword)
}

// DownloadFile downloads fileID to localPath via a .tmp file and atomic
// rename, decrypting with syncPassword if non-nil.
func DownloadFile(ctx context.Context, adapter remote.Adapter, driveID, fileID string, localPath string, syncPassword []byte, reporter progress.Reporter) error {
	url, err := adapter.GetDownloadURL(ctx, driveID, fileID)
	if err != nil {
		return synerr.New(synerr.Remote, "get download url", err)
	}

	tmpPath := localPath + constants.TmpSuffix
	if err := fetchToFile(ctx, url, tmpPath, syncPassword, reporter); err != nil {
		return err
	}

	if err := os.Rename(tmpPath, localPath); err != nil {
		return synerr.New(synerr.LocalIO, "rename downloaded file into place", err)
	}
	return nil
}
