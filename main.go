package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/launchdarkly/axe-contract-tests/axe"
	"github.com/launchdarkly/axe-contract-tests/framework"
	"github.com/launchdarkly/axe-contract-tests/logging"
	"github.com/launchdarkly/axe-contract-tests/suite"
)

const commandName = "axe-contract-tests"

// errTestsFailed makes the process exit with a failure status after the results were printed.
var errTestsFailed = errors.New("some tests failed")

func main() {
	var params commandParams
	rootCmd := &cobra.Command{
		Use:   commandName + " [flags] SUITE...",
		Short: "Run accessibility test suites with axe-core in a browser",
		Long: `Runs each case of the given YAML suite files (or directories of them) by mounting its
markup into a browser page, auditing it with axe-core, and checking the violations.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := params.validate(args); err != nil {
				return err
			}
			return run(params)
		},
	}
	params.addFlags(rootCmd)

	if err := rootCmd.Execute(); err != nil {
		if !errors.Is(err, errTestsFailed) {
			fmt.Fprintln(os.Stderr, err)
		}
		os.Exit(1)
	}
}

func run(params commandParams) error {
	mainDebugLogger := logging.NullLogger()
	if params.debugAll {
		zapConfig := zap.NewDevelopmentConfig()
		zapConfig.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		zapConfig.DisableStacktrace = true
		z, err := zapConfig.Build()
		if err != nil {
			return fmt.Errorf("could not create logger: %w", err)
		}
		defer func() { _ = z.Sync() }()
		mainDebugLogger = logging.Zap(z)
	}

	var baseConfig axe.Config
	if params.configPath != "" {
		cfg, err := axe.LoadConfig(params.configPath)
		if err != nil {
			return err
		}
		baseConfig = cfg
	}
	suites, err := suite.LoadAll(params.suitePaths...)
	if err != nil {
		return err
	}

	harness, err := framework.NewTestHarness(
		framework.HarnessConfig{
			BrowserURL: params.browserURL,
			AxeSource:  params.axeSource,
			Config:     baseConfig,
		},
		mainDebugLogger,
		os.Stdout,
	)
	if err != nil {
		return fmt.Errorf("browser error: %w", err)
	}
	defer func() { _ = harness.Close() }()

	fmt.Println()
	framework.PrintFilterDescription(os.Stdout, params.filters)

	fmt.Println("Running test suites")

	testLogger := &ConsoleTestLogger{
		DebugOutputOnFailure: params.debug || params.debugAll,
		DebugOutputOnSuccess: params.debugAll,
	}

	runner := suite.Runner{Harness: harness, Style: params.reportStyle()}
	results := runner.Run(suites, params.filters.AsFilter, testLogger)

	fmt.Println()
	framework.PrintResults(os.Stdout, results)
	if !results.OK() {
		fmt.Println()
		fmt.Println("To run only the failed tests again:")
		fmt.Printf("  %s\n", params.rerunCommand(results.Failures))
		return errTestsFailed
	}
	return nil
}
