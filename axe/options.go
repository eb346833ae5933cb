package axe

import (
	"fmt"
	"reflect"

	"dario.cat/mergo"

	"github.com/launchdarkly/axe-contract-tests/results"
)

// OptionImpactLevels is the options key for the impact filter. It is understood by this
// package and is never passed to the engine.
const OptionImpactLevels = results.ToolOptionImpactLevels

// Options are per-run engine options such as "rules", "runOnly", or "resultTypes". Apart from
// "impactLevels", keys are passed to the engine without interpretation.
type Options map[string]interface{}

// EffectiveConfig is the result of merging configured and per-call options.
type EffectiveConfig struct {
	// Options are passed to the engine.
	Options Options
	// ImpactLevels, if not empty, restricts which violations count toward a failure.
	ImpactLevels []results.Impact
}

// MergeOptions deep-merges the sources from left to right into a new Options: later sources
// win on key collisions, nested maps are combined, and lists are replaced rather than
// concatenated. None of the sources is modified.
func MergeOptions(sources ...Options) (Options, error) {
	merged := Options{}
	for _, src := range sources {
		if len(src) == 0 {
			continue
		}
		normalized, _ := normalize(reflect.ValueOf(map[string]interface{}(src))).(map[string]interface{})
		if err := mergo.Merge(&merged, Options(normalized), mergo.WithOverride); err != nil {
			return nil, fmt.Errorf("could not merge options: %w", err)
		}
	}
	return merged, nil
}

// Effective merges the sources and separates the impact filter from the engine options.
func Effective(sources ...Options) (EffectiveConfig, error) {
	merged, err := MergeOptions(sources...)
	if err != nil {
		return EffectiveConfig{}, err
	}
	levels, err := results.ImpactLevelsFromOption(merged[OptionImpactLevels])
	if err != nil {
		return EffectiveConfig{}, fmt.Errorf("invalid %s option: %w", OptionImpactLevels, err)
	}
	delete(merged, OptionImpactLevels)
	return EffectiveConfig{Options: merged, ImpactLevels: levels}, nil
}

// normalize deep-copies a value, turning every string-keyed map into map[string]interface{}
// and every slice into []interface{}, so that merging never aliases or mixes container types.
func normalize(v reflect.Value) interface{} {
	if !v.IsValid() {
		return nil
	}
	switch v.Kind() {
	case reflect.Interface, reflect.Ptr:
		if v.IsNil() {
			return nil
		}
		if v.Kind() == reflect.Interface {
			return normalize(v.Elem())
		}
		return v.Interface()
	case reflect.Map:
		if v.IsNil() || v.Type().Key().Kind() != reflect.String {
			return v.Interface()
		}
		ret := make(map[string]interface{}, v.Len())
		iter := v.MapRange()
		for iter.Next() {
			ret[iter.Key().String()] = normalize(iter.Value())
		}
		return ret
	case reflect.Slice:
		if v.IsNil() || v.Type().Elem().Kind() == reflect.Uint8 {
			return v.Interface()
		}
		ret := make([]interface{}, v.Len())
		for i := range ret {
			ret[i] = normalize(v.Index(i))
		}
		return ret
	default:
		return v.Interface()
	}
}

// DisableRules returns options that turn off the given rules.
func DisableRules(ids ...string) Options {
	rules := make(map[string]interface{}, len(ids))
	for _, id := range ids {
		rules[id] = map[string]interface{}{"enabled": false}
	}
	return Options{"rules": rules}
}

// RunOnlyTags returns options that limit the audit to rules with any of the given tags, such
// as "wcag2a" or "best-practice".
func RunOnlyTags(tags ...string) Options {
	values := make([]interface{}, 0, len(tags))
	for _, t := range tags {
		values = append(values, t)
	}
	return Options{"runOnly": map[string]interface{}{"type": "tag", "values": values}}
}

// WithImpactLevels returns options that set the impact filter.
func WithImpactLevels(levels ...results.Impact) Options {
	values := make([]interface{}, 0, len(levels))
	for _, l := range levels {
		values = append(values, string(l))
	}
	return Options{OptionImpactLevels: values}
}
