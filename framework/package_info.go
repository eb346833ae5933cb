// Package framework contains the test harness infrastructure for running accessibility test
// suites outside of "go test".
//
// The general model is:
//
// 1. The TestHarness owns one audit engine, usually axe-core in a browser page, and the
// document that test markup is mounted into.
//
// 2. There is a general notion of a test context which is similar to Go's *testing.T,
// allowing pieces of test logic to be associated with a test identifier and to accumulate
// success/failure results. Context implements require.TestingT, so testify assertions work
// with it.
//
// The domain-specific code that knows what is being tested, such as the suite package, decides
// which markup to audit and which comparator to apply.
package framework
