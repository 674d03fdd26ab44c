package acme

import "log/slog"

// Option configures a Client during initialization.
type Option func(*Client)

// WithClientFactory sets a custom ACME client factory. This is primarily
// useful for testing with fake clients, but can also swap directories
// (e.g. staging vs production).
func WithClientFactory(factory ClientFactory) Option {
	return func(c *Client) {
		c.factory = factory
	}
}

// WithHTTP01Address selects the bind address for the internal HTTP-01
// challenge server (host:port split by the caller). Defaults to all
// interfaces on port 80.
func WithHTTP01Address(host, port string) Option {
	return func(c *Client) {
		c.http01Host = host
		if port != "" {
			c.http01Port = port
		}
	}
}

// WithoutChallengeServer skips HTTP-01 provider setup entirely. Used when
// the surrounding gateway serves the challenge path itself.
func WithoutChallengeServer() Option {
	return func(c *Client) {
		c.skipChallenge = true
	}
}

// WithLogger sets the logger used by the client.
func WithLogger(log *slog.Logger) Option {
	return func(c *Client) {
		if log != nil {
			c.log = log
		}
	}
}
