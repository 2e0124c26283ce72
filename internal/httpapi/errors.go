// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Iris Backend Contributors

package httpapi

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/samber/oops"

	"github.com/Projet-EDP-Iris/irisBackend/pkg/errutil"
)

// ErrBadRequest is returned for bodies that cannot be decoded at all.
var ErrBadRequest = oops.Code("REQUEST_INVALID").Errorf("invalid request body")

// statusByCode maps oops error codes to HTTP statuses. Codes not listed
// here are unexpected internal failures and map to 500.
var statusByCode = map[string]int{
	"REQUEST_INVALID":          http.StatusBadRequest,
	"ACCOUNT_INVALID_EMAIL":    http.StatusBadRequest,
	"ACCOUNT_INVALID_PASSWORD": http.StatusBadRequest,
	"ACCOUNT_INVALID_ROLE":     http.StatusBadRequest,
	"AUTH_UNAUTHENTICATED":     http.StatusUnauthorized,
	"AUTH_INVALID_CREDENTIALS": http.StatusUnauthorized,
	"AUTH_INVALID_TOKEN":       http.StatusUnauthorized,
	"AUTH_FORBIDDEN":           http.StatusForbidden,
	"ACCOUNT_ROLE_RESTRICTED":  http.StatusForbidden,
	"ACCOUNT_NOT_FOUND":        http.StatusNotFound,
	"ACCOUNT_EMAIL_TAKEN":      http.StatusConflict,
}

// errorBody is the JSON error envelope: {"detail": "..."}.
type errorBody struct {
	Detail string `json:"detail"`
}

// statusForError resolves an error to an HTTP status via its oops code.
func statusForError(err error) int {
	if oopsErr, ok := oops.AsOops(err); ok {
		if code, isString := oopsErr.Code().(string); isString {
			if status, known := statusByCode[code]; known {
				return status
			}
		}
	}
	return http.StatusInternalServerError
}

// writeError maps err to a status and writes the JSON error envelope.
// Internal failures are logged with full context and surfaced to the caller
// as a generic message, never exposing internal detail.
func writeError(w http.ResponseWriter, logger *slog.Logger, err error) {
	status := statusForError(err)

	detail := err.Error()
	if status == http.StatusInternalServerError {
		errutil.LogError(logger, "request failed", err)
		detail = "internal server error"
	}
	if status == http.StatusUnauthorized {
		w.Header().Set("WWW-Authenticate", "Bearer")
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	//nolint:errcheck // error response write failure is not recoverable
	json.NewEncoder(w).Encode(errorBody{Detail: detail})
}
