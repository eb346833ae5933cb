package framework

import (
	"fmt"
	"io"
	"strings"
)

// Results is the outcome of a test run.
type Results struct {
	Tests    []TestResult
	Failures []TestResult
}

type TestResult struct {
	TestID  TestID
	Errors  []error
	Skipped bool
}

func (r Results) OK() bool {
	return len(r.Failures) == 0
}

// Passed returns the number of tests that ran and did not fail.
func (r Results) Passed() int {
	n := 0
	for _, t := range r.Tests {
		if !t.Skipped {
			n++
		}
	}
	return n - len(r.Failures)
}

// TestID identifies a test by the names of its enclosing groups and its own name.
type TestID struct {
	Path []string
}

// Plus returns the ID of a subtest.
func (t TestID) Plus(name string) TestID {
	return TestID{Path: append(append([]string(nil), t.Path...), name)}
}

func (t TestID) String() string {
	return strings.Join(t.Path, "/")
}

type TestFailure struct {
	ID  TestID
	Err error
}

func (f TestFailure) Error() string {
	return fmt.Sprintf("[%s]: %s", f.ID, f.Err)
}

// PrintResults writes a summary of the run, listing each failed test.
func PrintResults(out io.Writer, results Results) {
	if results.OK() {
		fmt.Fprintf(out, "All tests passed (%d)\n", results.Passed())
		return
	}
	fmt.Fprintf(out, "FAILED TESTS (%d of %d):\n", len(results.Failures), len(results.Failures)+results.Passed())
	for _, f := range results.Failures {
		fmt.Fprintf(out, "* %s\n", f.TestID)
	}
}
