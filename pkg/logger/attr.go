package logger

import (
	"log/slog"
	"time"
)

// Attribute helpers use the empty Attr pattern for nil safety, so calls like
// log.Error("renewal failed", logger.Error(err)) need no explicit nil checks.

// Error creates an attribute for a single error under the key "error".
// Returns an empty Attr for nil errors.
func Error(err error) slog.Attr {
	if err == nil {
		return slog.Attr{}
	}
	return slog.Any("error", err)
}

// Component creates an attribute for component names.
func Component(name string) slog.Attr {
	return slog.String("component", name)
}

// Host creates an attribute for the hostname a certificate operation targets.
func Host(host string) slog.Attr {
	if host == "" {
		return slog.Attr{}
	}
	return slog.String("host", host)
}

// Account creates an attribute for the derived ACME account name.
func Account(name string) slog.Attr {
	if name == "" {
		return slog.Attr{}
	}
	return slog.String("account", name)
}

// StorageMode creates an attribute for the configured storage backend.
func StorageMode(mode string) slog.Attr {
	return slog.String("storage_mode", mode)
}

// Count creates a generic counter attribute.
func Count(key string, n int) slog.Attr {
	return slog.Int(key, n)
}

// Elapsed calculates and logs the duration since the start time.
func Elapsed(start time.Time) slog.Attr {
	return slog.Duration("elapsed", time.Since(start))
}

// ExpiresAt creates an attribute for a certificate expiry timestamp.
func ExpiresAt(t time.Time) slog.Attr {
	if t.IsZero() {
		return slog.Attr{}
	}
	return slog.Time("expires_at", t)
}
