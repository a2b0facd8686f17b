// File: internal/network/httpclient.go
package network

import (
	"crypto/tls"
	"net"
	"net/http"
	"time"

	"go.uber.org/zap"
	"golang.org/x/net/http2"
)

// Constants for default optimized TCP/HTTP settings.
const (
	DefaultDialTimeout           = 5 * time.Second
	DefaultKeepAliveInterval     = 15 * time.Second
	DefaultTLSHandshakeTimeout   = 5 * time.Second
	DefaultResponseHeaderTimeout = 10 * time.Second
	DefaultRequestTimeout        = 30 * time.Second

	// Connection pool configuration tuned for batched advisory and registry
	// lookups: a small number of hosts, each queried repeatedly.
	DefaultMaxIdleConns        = 50
	DefaultMaxIdleConnsPerHost = 10
	DefaultMaxConnsPerHost     = 20
	DefaultIdleConnTimeout     = 30 * time.Second
)

// ClientConfig holds the configuration for the HTTP client and transport layers.
type ClientConfig struct {
	// Timeout settings
	RequestTimeout        time.Duration // Overall client timeout
	TLSHandshakeTimeout   time.Duration
	ResponseHeaderTimeout time.Duration

	// Connection pool settings
	MaxIdleConns        int
	MaxIdleConnsPerHost int
	MaxConnsPerHost     int
	IdleConnTimeout     time.Duration

	// Protocol settings
	ForceHTTP2 bool

	// Logger
	Logger *zap.Logger
}

// Client is a wrapper around the standard http.Client.
//
// By embedding the standard client, we inherit all its methods (like Do, Get,
// Post), allowing it to be used as a drop in replacement. It is safe for
// concurrent use by multiple goroutines.
//
// The caller is responsible for closing the Response.Body after consuming it.
type Client struct {
	*http.Client
}

// NewDefaultClientConfig creates a configuration suited to the external
// lookup services the scanner talks to (OSV, package registries).
func NewDefaultClientConfig() *ClientConfig {
	return &ClientConfig{
		RequestTimeout:        DefaultRequestTimeout,
		TLSHandshakeTimeout:   DefaultTLSHandshakeTimeout,
		ResponseHeaderTimeout: DefaultResponseHeaderTimeout,
		MaxIdleConns:          DefaultMaxIdleConns,
		MaxIdleConnsPerHost:   DefaultMaxIdleConnsPerHost,
		MaxConnsPerHost:       DefaultMaxConnsPerHost,
		IdleConnTimeout:       DefaultIdleConnTimeout,
		ForceHTTP2:            true, // Prefer H2 by default for performance.
		Logger:                zap.NewNop(),
	}
}

// NewHTTPTransport creates and configures an http.Transport based on the provided configuration.
func NewHTTPTransport(config *ClientConfig) *http.Transport {
	if config == nil {
		config = NewDefaultClientConfig()
	}
	if config.Logger == nil {
		config.Logger = zap.NewNop()
	}

	dialer := &net.Dialer{
		Timeout:   DefaultDialTimeout,
		KeepAlive: DefaultKeepAliveInterval,
	}

	transport := &http.Transport{
		DialContext:           dialer.DialContext,
		TLSClientConfig:       defaultTLSConfig(),
		TLSHandshakeTimeout:   config.TLSHandshakeTimeout,
		MaxIdleConns:          config.MaxIdleConns,
		MaxIdleConnsPerHost:   config.MaxIdleConnsPerHost,
		MaxConnsPerHost:       config.MaxConnsPerHost,
		IdleConnTimeout:       config.IdleConnTimeout,
		ResponseHeaderTimeout: config.ResponseHeaderTimeout,
		ForceAttemptHTTP2:     config.ForceHTTP2,
	}

	if config.ForceHTTP2 {
		// http2.ConfigureTransport modifies the transport in place to add HTTP/2 support.
		if err := http2.ConfigureTransport(transport); err != nil {
			config.Logger.Warn("Failed to configure HTTP/2 transport, falling back to HTTP/1.1", zap.Error(err))
		}
	}

	return transport
}

// NewClient creates our custom client wrapper using the configured transport.
func NewClient(config *ClientConfig) *Client {
	if config == nil {
		config = NewDefaultClientConfig()
	}

	return &Client{
		Client: &http.Client{
			Transport: NewHTTPTransport(config),
			Timeout:   config.RequestTimeout,
		},
	}
}

// defaultTLSConfig sets up the TLS configuration with strong defaults.
func defaultTLSConfig() *tls.Config {
	return &tls.Config{
		// Enforce TLS 1.2 as the minimum version.
		MinVersion: tls.VersionTLS12,
		// Enable a session resumption cache for performance on subsequent connections.
		ClientSessionCache: tls.NewLRUClientSessionCache(64),
	}
}
