// Package log provides structured logging with automatic masking of
// credential material.
//
// The delivery stage of tpaudit handles OAuth client secrets, authorization
// codes and access/refresh tokens. SecureHandler wraps any slog.Handler and
// masks attributes that look like such material, so callers can log freely
// without leaking credentials into terminal scrollback or log files.
package log
