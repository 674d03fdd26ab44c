// Package logger provides slog attribute helpers for the certificate
// renewal engine. All helpers return an empty Attr for zero values, so call
// sites never need nil checks.
package logger
