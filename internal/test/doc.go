// Package test contains helper functions shared by the package tests of the
// emulator. None of it is used outside of _test.go files.
package test
