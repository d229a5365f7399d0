package utils

import (
	"net"
	"net/http"
	"time"
)

type HTTPClientConfig struct {
	KATimeout time.Duration
	UserAgent string
}

type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

type PullHTTPClient struct {
	client *http.Client
	config HTTPClientConfig
}

// NewPullHTTPClient builds a client without an overall request timeout; a
// stalled body read blocks until the server gives up.
func NewPullHTTPClient(cfg HTTPClientConfig) *PullHTTPClient {
	if cfg.KATimeout == 0 {
		cfg.KATimeout = 90 * time.Second
	}
	transport := &http.Transport{
		Proxy: nil,
		DialContext: (&net.Dialer{
			Timeout:   30 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		IdleConnTimeout:     cfg.KATimeout,
		MaxIdleConns:        10,
		TLSHandshakeTimeout: 10 * time.Second,
		DisableCompression:  true,
	}
	return &PullHTTPClient{
		client: &http.Client{
			Transport: transport,
		},
		config: cfg,
	}
}

func (c *PullHTTPClient) Do(req *http.Request) (*http.Response, error) {
	if c.config.UserAgent != "" {
		req.Header.Set("User-Agent", c.config.UserAgent)
	} else {
		req.Header.Set("User-Agent", ToolUserAgent)
	}
	return c.client.Do(req)
}
