// Package mocks provides hand-written mock implementations of the store and
// service interfaces for use in tests. Each mock exposes function fields for
// per-test customization and falls back to simple in-memory defaults when a
// function is not set.
package mocks
