package profile

import "errors"

var (
	// ErrIncorrectProfile indicates the tool or toolchain profile JSON
	// failed schema validation. Fatal for that profile's load (§7.i).
	ErrIncorrectProfile = errors.New("incorrect profile")
	// ErrAmbiguousBinary indicates a binary name maps to more than one tool
	// profile within a toolchain profile, violating the C3 invariant.
	ErrAmbiguousBinary = errors.New("binary maps to more than one tool profile")
	// ErrNoToolchainMatch indicates auto-detection found no candidate
	// toolchain profile that matched any compile-database entry.
	ErrNoToolchainMatch = errors.New("no candidate toolchain profile matched")
)
