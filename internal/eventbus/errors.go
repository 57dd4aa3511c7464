// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 ModKit Contributors

package eventbus

import (
	"reflect"

	"github.com/samber/oops"
)

// Error codes for event bus failures. The public ABI surface flattens
// these to a bare success boolean; the codes exist for logging and
// diagnostics on the host side.
const (
	CodeUnknownEventID            = "UNKNOWN_EVENT_ID"
	CodeCallbackSignatureMismatch = "CALLBACK_SIGNATURE_MISMATCH"
	CodeDuplicateRegistration     = "DUPLICATE_REGISTRATION"
	CodeUnknownHandle             = "UNKNOWN_HANDLE"
)

func errUnknownEventID(eventID string) error {
	return oops.Code(CodeUnknownEventID).
		With("event", eventID).
		Errorf("event id not in catalog: %s", eventID)
}

func errSignatureMismatch(eventID string, want, got reflect.Type) error {
	builder := oops.Code(CodeCallbackSignatureMismatch).
		With("event", eventID).
		With("want", typeName(want))
	return builder.
		With("got", typeName(got)).
		Errorf("listener callback did not match the signature for %s", eventID)
}

func errDuplicateListener(eventID string) error {
	return oops.Code(CodeDuplicateRegistration).
		With("event", eventID).
		Errorf("listener already registered for %s", eventID)
}

func errUnknownListener(eventID string) error {
	return oops.Code(CodeUnknownHandle).
		With("event", eventID).
		Errorf("listener not registered for %s", eventID)
}

func typeName(t reflect.Type) string {
	if t == nil {
		return "nil"
	}
	return t.String()
}
