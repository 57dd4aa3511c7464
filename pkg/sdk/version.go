// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 ModKit Contributors

package sdk

import (
	"fmt"

	"github.com/Masterminds/semver/v3"
)

// versionString is the canonical SDK version. The major number changes on
// any ABI-breaking edit (method set, payload layout, signatures); the
// minor number changes on additive, backward-compatible ones.
const versionString = "1.0.0"

var parsedVersion = semver.MustParse(versionString)

// Version is the SDK version this package was built against.
var Version = VersionInfo{
	Major: int(parsedVersion.Major()),
	Minor: int(parsedVersion.Minor()),
}

// VersionInfo carries the major/minor pair exchanged in the load
// handshake.
type VersionInfo struct {
	Major int
	Minor int
}

// Compatible reports whether two components can interoperate: major
// versions must be exactly equal. Minor differences are safe to ignore;
// they represent additive capability only.
func (v VersionInfo) Compatible(other VersionInfo) bool {
	return v.Major == other.Major
}

func (v VersionInfo) String() string {
	return fmt.Sprintf("%d.%d", v.Major, v.Minor)
}

// LoadInfo is the handshake record the host hands to an extension's entry
// point at load time.
type LoadInfo struct {
	// Version is the host's SDK version.
	Version VersionInfo

	// Host is the host's registry implementation. Do not store or use it
	// before checking compatibility; go through [Bind].
	Host Host
}

// Bind performs the version-gated handshake. It returns the host
// reference only when the handshake's major version exactly matches the
// version this package was compiled against; on mismatch the reference
// must be treated as invalid, since major differences imply incompatible
// method layouts or signatures.
func Bind(info *LoadInfo) (Host, bool) {
	if info == nil || info.Host == nil {
		return nil, false
	}
	if !Version.Compatible(info.Version) {
		return nil, false
	}
	return info.Host, true
}

// Extension is the entry-point contract the loader invokes after mapping
// an extension into the process.
type Extension interface {
	// OnLoad receives the handshake. The extension must go through
	// [Bind] before retaining the host reference and must report false
	// on a version mismatch, in which case the loader discards it.
	OnLoad(info *LoadInfo) bool

	// OnUnload is called before the extension is discarded. The
	// extension must unregister its plugins, modules, and listeners
	// here.
	OnUnload()
}
