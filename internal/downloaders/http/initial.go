package pullhttp

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/tanq16/pdfpull/internal/utils"
)

// probeSize issues a HEAD request and returns the declared Content-Length,
// or utils.UnknownSize when the server does not send a usable one.
func probeSize(ctx context.Context, link string, client utils.HTTPDoer) (int64, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, link, nil)
	if err != nil {
		return 0, fmt.Errorf("error creating HEAD request: %v", err)
	}
	resp, err := client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("error executing HEAD request: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return 0, fmt.Errorf("URL not found (404)")
	} else if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return 0, fmt.Errorf("server returned status %d", resp.StatusCode)
	}
	return parseContentLength(resp.Header.Get("Content-Length")), nil
}

func parseContentLength(value string) int64 {
	value = strings.TrimSpace(value)
	if value == "" {
		return utils.UnknownSize
	}
	size, err := strconv.ParseInt(value, 10, 64)
	if err != nil || size < 0 {
		return utils.UnknownSize
	}
	return size
}
