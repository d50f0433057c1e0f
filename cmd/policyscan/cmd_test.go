package main

import (
	"testing"
)

// useLocalBundle points the persistent flags at a bundle file (or the
// embedded bundle when path is empty) and restores them after the test.
func useLocalBundle(t *testing.T, path string) {
	t.Helper()
	prevLocal, prevPath, prevTenant := flagLocalBundle, flagBundlePath, flagTenant
	flagLocalBundle = true
	flagBundlePath = path
	flagTenant = ""
	t.Cleanup(func() {
		flagLocalBundle, flagBundlePath, flagTenant = prevLocal, prevPath, prevTenant
	})
}
