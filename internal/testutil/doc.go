// Package testutil provides deterministic doubles shared by tests of the
// store, remote, cli and harness packages.
package testutil
