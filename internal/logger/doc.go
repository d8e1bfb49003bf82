// Package logger separates gitpile's internal debug logging from the
// messages shown to the operator.
//
// Internal messages (Info, Warning, Error) go to an optional slog-backed
// debug log file. User-facing messages (InfoToUser, WarningToUser, Success,
// StatusMessage) are written to the injected stdout/stderr writers so
// commands remain scriptable: result artifacts on stdout, diagnostics on
// stderr.
package logger
