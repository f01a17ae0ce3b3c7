package odata

import (
	"net/http"

	"github.com/okian/sfscore/pkg/logger"
)

// Option applies a configuration option to the Client.
type Option func(*Client)

// WithToken sets the bearer token sent on every call. Empty means anonymous.
func WithToken(token string) Option {
	return func(c *Client) {
		c.token = token
	}
}

// WithCompanyID sets the value of the company header. Empty omits the header.
func WithCompanyID(id string) Option {
	return func(c *Client) {
		c.companyID = id
	}
}

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithPreviewLimit caps the body preview of non-JSON responses, in characters.
func WithPreviewLimit(n int) Option {
	return func(c *Client) {
		if n > 0 {
			c.previewLimit = n
		}
	}
}

// WithLogger sets a custom logger for the client.
func WithLogger(l logger.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}
