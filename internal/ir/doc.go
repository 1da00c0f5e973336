// Package ir provides the constrained value types used as the wire form of
// sequence elements and batch documents.
//
// This package contains value types and their encodings only. All other
// internal packages may import ir; ir imports nothing internal.
//
// Key design constraints:
//   - NO float types anywhere - use int64 for numbers
//   - Element objects are IRObjects with camelCase keys matching the wire format
//   - Canonical JSON (RFC 8785) is the only encoding used for hashing
package ir
