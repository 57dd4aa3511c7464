// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 ModKit Contributors

// Package sdk defines the versioned contract between the ModKit host and
// independently compiled extensions loaded into its address space.
//
// The surface is deliberately small and frozen per major version: a
// capability query primitive ([Querier]) through which any interface can
// grow optional functionality without changing its fixed method set, a
// fixed catalog of string-identified events with typed payloads, the host
// registry interface ([Host]), and the load-time version handshake
// ([LoadInfo], [Bind]).
//
// # ABI stability
//
// Method sets and payload layouts in this package are frozen within a major
// version. Any breaking edit (removing or reordering a method, changing a
// payload field type) requires a major version bump; additive changes bump
// the minor version only. Extensions must go through [Bind] before using a
// host reference and must refuse to bind on a major mismatch.
//
// # Threading
//
// All registry, query, and dispatch operations are synchronous and assume
// single-thread affinity: the host drives them from its own control loop,
// and callers that introduce concurrency must serialize externally. No call
// in this package suspends or runs asynchronously.
//
// # Ownership
//
// The host never owns plugin or module instances, nor listener callbacks;
// it holds non-owning references for routing and enumeration only. An
// extension must unregister a handle before discarding it, and must not use
// a handle after its unload lifecycle event has fired.
package sdk
