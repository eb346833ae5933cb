package axe

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/launchdarkly/axe-contract-tests/engine"
	"github.com/launchdarkly/axe-contract-tests/results"
)

// Config is the configuration for an Auditor.
//
// In YAML, every key other than globalOptions and impactLevels is a runner option:
//
//	globalOptions:
//	  branding: {application: my-app}
//	impactLevels: [serious, critical]
//	rules:
//	  region: {enabled: false}
type Config struct {
	// GlobalOptions is passed once to the engine's Configure.
	GlobalOptions engine.Spec `yaml:"globalOptions,omitempty" json:"globalOptions,omitempty"`

	// ImpactLevels, if set, restricts which violations count toward a failure. It can be
	// overridden per call with the impactLevels option.
	ImpactLevels []results.Impact `yaml:"impactLevels,omitempty" json:"impactLevels,omitempty"`

	// RunnerOptions are the default per-run options. Options passed to Audit are merged
	// over them.
	RunnerOptions Options `yaml:",inline" json:"-"`
}

// LoadConfig reads a YAML configuration file.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}
	cfg, err := ParseConfig(data)
	if err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// ParseConfig decodes YAML configuration.
func ParseConfig(data []byte) (Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("malformed configuration: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks the impact levels and normalizes their spelling. It also rewrites nested
// option maps as plain map[string]interface{} values, since a YAML decoder gives them the type
// of the enclosing map.
func (c *Config) Validate() error {
	for i, level := range c.ImpactLevels {
		parsed, err := results.ParseImpact(string(level))
		if err != nil {
			return err
		}
		c.ImpactLevels[i] = parsed
	}
	if c.GlobalOptions != nil {
		global, err := MergeOptions(Options(c.GlobalOptions))
		if err != nil {
			return err
		}
		c.GlobalOptions = engine.Spec(global)
	}
	if c.RunnerOptions != nil {
		runner, err := MergeOptions(c.RunnerOptions)
		if err != nil {
			return err
		}
		c.RunnerOptions = runner
	}
	return nil
}

// runnerDefaults returns the configured options, with the typed impact filter folded in.
func (c Config) runnerDefaults() (Options, error) {
	base, err := MergeOptions(c.RunnerOptions)
	if err != nil {
		return nil, err
	}
	if len(c.ImpactLevels) > 0 {
		base, err = MergeOptions(base, WithImpactLevels(c.ImpactLevels...))
		if err != nil {
			return nil, err
		}
	}
	return base, nil
}

// MergeConfig layers override over base. Global and runner options are deep-merged; the
// override's impact levels replace the base's if it has any.
func MergeConfig(base, override Config) (Config, error) {
	global, err := MergeOptions(Options(base.GlobalOptions), Options(override.GlobalOptions))
	if err != nil {
		return Config{}, err
	}
	runner, err := MergeOptions(base.RunnerOptions, override.RunnerOptions)
	if err != nil {
		return Config{}, err
	}
	ret := Config{
		GlobalOptions: engine.Spec(global),
		ImpactLevels:  base.ImpactLevels,
		RunnerOptions: runner,
	}
	if len(override.ImpactLevels) > 0 {
		ret.ImpactLevels = override.ImpactLevels
	}
	ret.ImpactLevels = append([]results.Impact(nil), ret.ImpactLevels...)
	return ret, nil
}
