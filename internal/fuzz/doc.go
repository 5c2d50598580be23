// Package fuzztests houses Go fuzz harnesses for program ingestion and the
// block passes. The harnesses guard against panics on arbitrary input and
// check the pass invariants from internal/testkit on every program that
// decodes and validates.
package fuzztests
