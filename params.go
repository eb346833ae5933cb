package main

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/alessio/shellescape"
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/launchdarkly/axe-contract-tests/browser"
	"github.com/launchdarkly/axe-contract-tests/framework"
	"github.com/launchdarkly/axe-contract-tests/report"
)

type commandParams struct {
	suitePaths []string
	configPath string
	browserURL string
	axeSource  string
	colorMode  string
	filters    framework.RegexFilters
	debug      bool
	debugAll   bool
}

func (c *commandParams) addFlags(cmd *cobra.Command) {
	fs := cmd.Flags()
	fs.StringVar(&c.configPath, "config", "", "YAML file with the base axe configuration for all suites")
	fs.StringVar(&c.browserURL, "browser-url", "", "DevTools URL of a running browser (default: launch one)")
	fs.StringVar(&c.axeSource, "axe-source", "", "URL or file path of axe.min.js (default: "+browser.DefaultAxeSource+")")
	fs.StringVar(&c.colorMode, "color", "auto", `colorize output: "auto", "always", or "never"`)
	fs.Var(&c.filters.MustMatch, "run", "regex pattern(s) to select tests to run")
	fs.Var(&c.filters.MustNotMatch, "skip", "regex pattern(s) to select tests not to run")
	fs.BoolVar(&c.debug, "debug", false, "enable debug logging for failed tests")
	fs.BoolVar(&c.debugAll, "debug-all", false, "enable debug logging for all tests")
}

func (c *commandParams) validate(args []string) error {
	if len(args) == 0 {
		return errors.New("at least one suite file or directory is required")
	}
	c.suitePaths = args
	switch c.colorMode {
	case "auto":
	case "always":
		color.NoColor = false
	case "never":
		color.NoColor = true
	default:
		return fmt.Errorf("invalid --color value %q", c.colorMode)
	}
	return nil
}

func (c *commandParams) reportStyle() report.Style {
	if color.NoColor {
		return report.StylePlain
	}
	return report.StyleColor
}

// rerunCommand returns a command line that runs only the given tests again with the same
// settings.
func (c *commandParams) rerunCommand(failures []framework.TestResult) string {
	var cmd commandBuilder
	cmd.add(commandName)
	cmd.add(c.suitePaths...)
	if c.configPath != "" {
		cmd.add("--config", c.configPath)
	}
	if c.browserURL != "" {
		cmd.add("--browser-url", c.browserURL)
	}
	if c.axeSource != "" {
		cmd.add("--axe-source", c.axeSource)
	}
	ids := make([]string, 0, len(failures))
	for _, f := range failures {
		ids = append(ids, regexp.QuoteMeta(f.TestID.String()))
	}
	cmd.add("--run", "^("+strings.Join(ids, "|")+")$")
	if c.debug || c.debugAll {
		cmd.add("--debug")
	}
	return cmd.String()
}

type commandBuilder []string

func (b *commandBuilder) add(args ...string) {
	for _, a := range args {
		*b = append(*b, shellescape.Quote(a))
	}
}

func (b commandBuilder) String() string {
	return strings.Join(b, " ")
}
