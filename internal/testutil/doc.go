// Package testutil provides builders shared by the package test suites.
// Not part of the public API.
package testutil
