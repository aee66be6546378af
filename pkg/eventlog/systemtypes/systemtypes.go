// Package systemtypes holds the built-in catalog of system event types.
//
// The catalog is embedded in the binary and built into a registry once, when
// the package is initialised. A malformed catalog panics at start-up rather
// than failing individual calls later.
package systemtypes

import (
	"bytes"
	_ "embed"

	"github.com/randalmurphal/eventlog/pkg/eventlog/eventtype"
)

// Built-in event type ids.
const (
	Project           = "$project"
	User              = "$user"
	Team              = "$team"
	UserSignedIn      = "$user.signed_in"
	UserSignedOut     = "$user.signed_out"
	TeamMemberAdded   = "$team.member_added"
	TeamMemberRemoved = "$team.member_removed"
	PermissionGranted = "$permission.granted"
	PermissionRevoked = "$permission.revoked"
	Session           = "$session"
)

//go:embed catalog.yaml
var catalog []byte

var registry = mustLoad()

func mustLoad() *eventtype.Registry {
	r, err := eventtype.LoadSeed(bytes.NewReader(catalog))
	if err != nil {
		panic("systemtypes: invalid embedded catalog: " + err.Error())
	}
	return r
}

// Registry returns the process-wide registry of built-in event types.
// It is read-only and shared by all callers.
func Registry() *eventtype.Registry {
	return registry
}

// Catalog returns a copy of the embedded catalog source.
func Catalog() []byte {
	return bytes.Clone(catalog)
}
