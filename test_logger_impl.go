package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"

	"github.com/launchdarkly/axe-contract-tests/framework"
	"github.com/launchdarkly/axe-contract-tests/logging"
)

var (
	colorTestName = color.New(color.Bold)
	colorFailed   = color.New(color.FgRed, color.Bold)
	colorSkipped  = color.New(color.FgYellow)
	colorDebug    = color.New(color.FgHiBlack)
)

type ConsoleTestLogger struct {
	DebugOutputOnFailure bool
	DebugOutputOnSuccess bool
}

func (c *ConsoleTestLogger) TestStarted(id framework.TestID) {
	fmt.Println(colorTestName.Sprintf("[%s]", id))
}

func (c *ConsoleTestLogger) TestError(id framework.TestID, err error) {
	for _, line := range strings.Split(err.Error(), "\n") {
		fmt.Printf("  %s\n", line)
	}
}

func (c *ConsoleTestLogger) TestFinished(id framework.TestID, failed bool, debugOutput logging.CapturedOutput) {
	if failed {
		fmt.Printf("  %s\n", colorFailed.Sprintf("FAILED: %s", id))
	}
	if len(debugOutput) > 0 &&
		((failed && c.DebugOutputOnFailure) || (!failed && c.DebugOutputOnSuccess)) {
		debugOutput.Dump(os.Stdout, colorDebug.Sprint("    DEBUG "))
	}
}

func (c *ConsoleTestLogger) TestSkipped(id framework.TestID, reason string) {
	if reason == "" {
		fmt.Printf("  %s\n", colorSkipped.Sprintf("SKIPPED: %s", id))
	} else {
		fmt.Printf("  %s\n", colorSkipped.Sprintf("SKIPPED: %s (%s)", id, reason))
	}
}
