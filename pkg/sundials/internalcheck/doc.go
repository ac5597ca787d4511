// Package internalcheck holds repository policy tests.
//
// The tests load the module's packages with golang.org/x/tools/go/packages
// and fail on code that breaks a rule the rest of the tree relies on: only
// internal/native talks to C, sentinel errors carry their package prefix,
// and library packages never print directly.
//
// # Internal Use Only
//
// This package has no API. It exists for its tests.
package internalcheck
