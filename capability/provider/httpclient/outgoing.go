// Package httpclient implements the OutgoingHTTP capability contract on
// net/http. Each request carries its own timeout bounds; the provider
// honors all three rather than hanging past any of them.
package httpclient

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"

	"github.com/corral-dev/corral-host-sdk/capability"
	"github.com/corral-dev/corral-host-sdk/netutil"
)

// OutgoingHTTP performs guest-originated HTTP requests.
type OutgoingHTTP struct {
	insecure bool
}

// Option configures an OutgoingHTTP provider.
type Option func(*OutgoingHTTP)

// WithInsecureTLS disables certificate verification. For embedders talking
// to self-signed test endpoints only.
func WithInsecureTLS() Option {
	return func(p *OutgoingHTTP) {
		p.insecure = true
	}
}

// New returns an OutgoingHTTP provider.
func New(opts ...Option) *OutgoingHTTP {
	p := &OutgoingHTTP{}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

var _ capability.OutgoingHTTP = (*OutgoingHTTP)(nil)

// Handle implements capability.OutgoingHTTP. The connect timeout bounds the
// dial, the first-byte timeout bounds the wait for response headers, and
// the between-bytes timeout bounds each gap in the response body stream.
// Timeouts surface as capability.TimeoutError; the provider never retries.
func (p *OutgoingHTTP) Handle(ctx context.Context, req capability.OutgoingHTTPRequest) (*http.Response, error) {
	if req.Request == nil || req.Request.URL == nil {
		return nil, fmt.Errorf("outgoing request missing URL: %w", capability.ErrMalformed)
	}

	// The transport is rebuilt per call because the dial and header
	// timeouts arrive per request, so connections are not reused across
	// calls. TODO: cache transports keyed by (UseTLS, timeout tuple) if
	// outgoing traffic becomes hot.
	dialer := &net.Dialer{Timeout: req.ConnectTimeout}
	transport := &http.Transport{
		DialContext:           dialer.DialContext,
		ResponseHeaderTimeout: req.FirstByteTimeout,
		ForceAttemptHTTP2:     true,
	}
	if req.UseTLS {
		cfg := netutil.TLSConfig()
		if p.insecure {
			cfg = netutil.InsecureTLSConfig()
		}
		transport.TLSClientConfig = cfg
	}
	defer transport.CloseIdleConnections()

	r := req.Request.Clone(ctx)
	if req.UseTLS {
		r.URL.Scheme = "https"
	} else {
		r.URL.Scheme = "http"
	}
	if req.Authority != "" {
		r.URL.Host = req.Authority
		r.Host = req.Authority
	}

	resp, err := transport.RoundTrip(r)
	if err != nil {
		var netErr net.Error
		if errors.As(err, &netErr) && netErr.Timeout() {
			return nil, &capability.TimeoutError{Op: "outgoing http request"}
		}
		return nil, fmt.Errorf("outgoing http request failed: %w", err)
	}

	if req.BetweenBytesTimeout > 0 {
		resp.Body = netutil.NewIdleTimeoutReader(resp.Body, req.BetweenBytesTimeout)
	}
	return resp, nil
}
