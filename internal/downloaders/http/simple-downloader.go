package pullhttp

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/tanq16/pdfpull/internal/utils"
)

// openStream issues the GET request. The caller owns the returned body.
func openStream(ctx context.Context, link string, client utils.HTTPDoer) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, link, nil)
	if err != nil {
		return nil, fmt.Errorf("error creating GET request: %v", err)
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("error executing GET request: %v", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		resp.Body.Close()
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}
	return resp, nil
}

// copyBody moves the response body into out chunk by chunk. Each chunk
// is written before it is counted, so onChunk only ever reports bytes that
// were accepted by out.
func copyBody(body io.Reader, out io.Writer, onChunk func(n int)) error {
	buffer := make([]byte, utils.DefaultBufferSize)
	for {
		bytesRead, readErr := body.Read(buffer)
		if bytesRead > 0 {
			written, writeErr := out.Write(buffer[:bytesRead])
			if written > 0 {
				onChunk(written)
			}
			if writeErr != nil {
				return fmt.Errorf("%w: %v", utils.ErrWrite, writeErr)
			}
		}
		if readErr != nil {
			if readErr == io.EOF {
				return nil
			}
			return fmt.Errorf("%w: error reading response body: %v", utils.ErrTransfer, readErr)
		}
	}
}
