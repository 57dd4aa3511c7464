// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 ModKit Contributors

// Package errutil bridges internal coded errors to the boolean ABI
// surface: failures are logged with their structured context, then
// flattened to a bare false.
package errutil

import (
	"log/slog"

	"github.com/samber/oops"
)

// LogError logs an error with structured context if it is an oops error.
// For oops errors it extracts the code and context map; for standard
// errors it logs the error string.
func LogError(logger *slog.Logger, msg string, err error) {
	if logger == nil {
		logger = slog.Default()
	}
	oopsErr, ok := oops.AsOops(err)
	if !ok {
		logger.Error(msg, "error", err)
		return
	}

	attrs := []any{"error", oopsErr.Error()}
	if code, ok := oopsErr.Code().(string); ok && code != "" {
		attrs = append(attrs, "code", code)
	}
	if ctx := oopsErr.Context(); len(ctx) > 0 {
		attrs = append(attrs, "context", ctx)
	}
	logger.Error(msg, attrs...)
}

// Flatten converts an internal error to the ABI's pass/fail form: nil
// reports true, anything else is logged through LogError and reports
// false. The protocol carries no structured reason in-band, so the log
// line is the only place the code and context survive.
func Flatten(logger *slog.Logger, msg string, err error) bool {
	if err == nil {
		return true
	}
	LogError(logger, msg, err)
	return false
}
