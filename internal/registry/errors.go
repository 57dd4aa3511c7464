// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 ModKit Contributors

package registry

import "github.com/samber/oops"

// Error codes for registry failures. The public ABI surface flattens
// these to a bare success boolean; the codes exist for logging and
// diagnostics on the host side.
const (
	CodeDuplicateRegistration    = "DUPLICATE_REGISTRATION"
	CodeUnknownHandle            = "UNKNOWN_HANDLE"
	CodeParentNotRegistered      = "PARENT_NOT_REGISTERED"
	CodeModuleOwnershipViolation = "MODULE_OWNERSHIP_VIOLATION"
	CodeInvalidName              = "INVALID_NAME"
	CodeCapacityMismatch         = "ENUMERATION_CAPACITY_MISMATCH"
)

func errNilHandle(kind string) error {
	return oops.Code(CodeUnknownHandle).
		With("kind", kind).
		Errorf("nil %s handle", kind)
}

func errInvalidName(name string) error {
	return oops.Code(CodeInvalidName).
		With("name", name).
		Errorf("plugin display name must not be empty")
}

func errDuplicatePlugin(name string) error {
	return oops.Code(CodeDuplicateRegistration).
		With("plugin", name).
		Errorf("plugin instance already registered")
}

func errDuplicateName(name string) error {
	return oops.Code(CodeDuplicateRegistration).
		With("name", name).
		Errorf("plugin name already taken: %s", name)
}

func errUnknownPlugin() error {
	return oops.Code(CodeUnknownHandle).
		Errorf("plugin instance not registered")
}

func errOwnsModules(name string, modules int) error {
	return oops.Code(CodeModuleOwnershipViolation).
		With("plugin", name).
		With("modules", modules).
		Errorf("plugin %s still owns %d registered modules", name, modules)
}

func errParentNotRegistered() error {
	return oops.Code(CodeParentNotRegistered).
		Errorf("parent plugin not registered")
}

func errDuplicateModule(owner string) error {
	return oops.Code(CodeDuplicateRegistration).
		With("owner", owner).
		Errorf("module instance already registered")
}

func errUnknownModule() error {
	return oops.Code(CodeUnknownHandle).
		Errorf("module instance not registered")
}

func errNilCount() error {
	return oops.Code(CodeCapacityMismatch).
		Errorf("enumeration count pointer must not be nil")
}

func errCapacityMismatch(kind string, got, want int) error {
	return oops.Code(CodeCapacityMismatch).
		With("kind", kind).
		With("got", got).
		With("want", want).
		Errorf("enumeration capacity %d does not match current %s count %d", got, kind, want)
}
