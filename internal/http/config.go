package http

import (
	"time"

	httpPkg "github.com/NamanBalaji/mcfetch/pkg/http"
)

type Option func(*Downloader)

// WithClient replaces the transport client built from the connect timeout.
func WithClient(client *httpPkg.Client) Option {
	return func(d *Downloader) {
		if client != nil {
			d.client = client
		}
	}
}

// WithHeaders adds headers to every probe and ranged request.
func WithHeaders(headers map[string]string) Option {
	return func(d *Downloader) {
		d.headers = headers
	}
}

// WithReadTimeout overrides the stall timeout taken from the config.
func WithReadTimeout(timeout time.Duration) Option {
	return func(d *Downloader) {
		if timeout > 0 {
			d.readTimeout = timeout
		}
	}
}

// WithConnectTimeout overrides the connect timeout taken from the config and
// rebuilds the default client with it.
func WithConnectTimeout(timeout time.Duration) Option {
	return func(d *Downloader) {
		if timeout > 0 {
			d.connectTimeout = timeout
			d.client = httpPkg.NewClient(timeout)
		}
	}
}

func WithRetryDelay(retryDelay time.Duration) Option {
	return func(d *Downloader) {
		d.retryDelay = retryDelay
	}
}
