package transfer2

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/adrive/adrive-sync/internal/cryptostream"
	"github.com/adrive/adrive-sync/internal/progress"
	"github.com/adrive/adrive-sync/internal/remote"
	"github.com/adrive/adrive-sync/internal/synerr"
	"github.com/adrive/adrive-sync/internal/util/buffers"
)

// fetchToFile streams url to tmpPath, decrypting with syncPassword if set.
// The .tmp file is left in place on any error; only a fully successful
// fetch is eligible for the caller's atomic rename.
func fetchToFile(ctx context.Context, url, tmpPath string, syncPassword []byte, reporter progress.Reporter) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return synerr.New(synerr.Remote, "build download request", err)
	}

	resp, err := remote.NewHTTPClient().Do(req)
	if err != nil {
		return synerr.New(synerr.Remote, "download", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return synerr.New(synerr.Remote, "download", fmt.Errorf("unexpected status %d", resp.StatusCode))
	}

	out, err := os.OpenFile(tmpPath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return synerr.New(synerr.LocalIO, "create tmp file", err)
	}
	defer out.Close()

	reporter.Start(resp.ContentLength, tmpPath)
	defer reporter.Finish()
	reading := progress.NewReader(resp.Body, reporter)

	if syncPassword == nil {
		if _, err := io.Copy(out, reading); err != nil {
			return synerr.New(synerr.LocalIO, "write tmp file", err)
		}
		return nil
	}

	return decryptStream(reading, out, syncPassword)
}

// decryptStream fills a (1 MiB + 16)-byte buffer exactly before decrypting
// each frame, per the chunk framing invariant: the terminal frame is
// whatever remains when the source is exhausted.
func decryptStream(src io.Reader, dst io.Writer, syncPassword []byte) error {
	dec, err := cryptostream.NewDecryptor(syncPassword)
	if err != nil {
		return synerr.New(synerr.Crypto, "create decryptor", err)
	}

	bufPtr := buffers.GetCiphertextBuffer()
	defer buffers.PutCiphertextBuffer(bufPtr)
	buf := *bufPtr

	filled := 0
	for {
		n, readErr := src.Read(buf[filled:])
		filled += n

		if filled == len(buf) {
			plain, decErr := dec.DecryptNext(buf[:filled])
			if decErr != nil {
				return synerr.New(synerr.Crypto, "decrypt chunk", decErr)
			}
			if _, err := dst.Write(plain); err != nil {
				return synerr.New(synerr.LocalIO, "write decrypted chunk", err)
			}
			filled = 0
		}

		if readErr == io.EOF {
			plain, decErr := dec.DecryptLast(buf[:filled])
			if decErr != nil {
				return synerr.New(synerr.Crypto, "decrypt final chunk", decErr)
			}
			if _, err := dst.Write(plain); err != nil {
				return synerr.New(synerr.LocalIO, "write decrypted final chunk", err)
			}
			return nil
		}
		if readErr != nil {
			return synerr.New(synerr.LocalIO, "read ciphertext stream", readErr)
		}
	}
}
