package remote

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/hashicorp/go-retryablehttp"

	"github.com/adrive/adrive-sync/internal/logging"
)

// retryLogAdapter satisfies retryablehttp.Logger (a bare Printf) over
// internal/logging.Logger, so the client's request-tracing output goes
// through the same structured logger as everything else instead of a
// second, unconfigured log path.
type retryLogAdapter struct {
	logger *logging.Logger
}

func (a retryLogAdapter) Printf(format string, args ...interface{}) {
	a.logger.Debugf(format, args...)
}

// NewHTTPClient returns the standard *http.Client every backend and the
// transfer engine use for PUT/GET against presigned URLs. It is built on
// go-retryablehttp for its request-logging and transport plumbing, but
// RetryMax is 0: the design is explicit that the transfer engine does not
// retry, so a failed PUT or GET is reported to the caller rather than
// retried silently underneath it.
func NewHTTPClient() *http.Client {
	c := retryablehttp.NewClient()
	c.RetryMax = 0
	c.Logger = retryLogAdapter{logger: logging.NewDefaultCLILogger()}
	return c.StandardClient()
}

// PutViaHTTP streams body to a presigned PUT URL. Both backends share this:
// the façade's PutPart contract is "HTTP PUT streaming body" regardless of
// which cloud issued the presigned URL.
func PutViaHTTP(ctx context.Context, url string, body io.Reader, size int64) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, url, body)
	if err != nil {
		return fmt.Errorf("remote: build PUT request: %w", err)
	}
	req.ContentLength = size

	resp, err := NewHTTPClient().Do(req)
	if err != nil {
		return fmt.Errorf("remote: PUT: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("remote: PUT returned status %d", resp.StatusCode)
	}
	return nil
}
