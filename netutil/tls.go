// Package netutil provides the network plumbing shared by the HTTP-facing
// providers and the OCI fetcher: TLS defaults, bounded reads, idle-timeout
// reads, and a retrying transport.
package netutil

import (
	"crypto/tls"
)

// TLSConfig returns the TLS configuration used for provider connections:
// TLS 1.2 minimum with a modern cipher suite selection.
func TLSConfig() *tls.Config {
	return &tls.Config{
		MinVersion: tls.VersionTLS12,
		CipherSuites: []uint16{
			tls.TLS_ECDHE_ECDSA_WITH_AES_256_GCM_SHA384,
			tls.TLS_ECDHE_RSA_WITH_AES_256_GCM_SHA384,
			tls.TLS_ECDHE_ECDSA_WITH_AES_128_GCM_SHA256,
			tls.TLS_ECDHE_RSA_WITH_AES_128_GCM_SHA256,
			tls.TLS_ECDHE_ECDSA_WITH_CHACHA20_POLY1305_SHA256,
			tls.TLS_ECDHE_RSA_WITH_CHACHA20_POLY1305_SHA256,
		},
	}
}

// InsecureTLSConfig returns TLSConfig with certificate verification
// disabled. Only for embedders talking to self-signed test endpoints.
func InsecureTLSConfig() *tls.Config {
	cfg := TLSConfig()
	cfg.InsecureSkipVerify = true
	return cfg
}
