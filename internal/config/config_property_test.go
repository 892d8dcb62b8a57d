// Package config provides property-based tests for configuration
// round-trip consistency.
package config

import (
	"testing"
	"time"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

func genFarmConfig() gopter.Gen {
	return gopter.CombineGens(
		gen.OneConstOf("http://localhost:8082", "https://farm.example.com", "http://10.0.0.5:9000"),
		gen.Identifier(),
		gen.Identifier(),
		gen.Bool(),
		gen.Int64Range(0, int64(time.Minute)),
		gen.Int64Range(0, int64(time.Hour)),
	).Map(func(values []interface{}) FarmConfig {
		return FarmConfig{
			URL:            values[0].(string),
			Username:       values[1].(string),
			Password:       values[2].(string),
			SkipTLSVerify:  values[3].(bool),
			RequestTimeout: Duration(values[4].(int64)),
			CacheTTL:       Duration(values[5].(int64)),
		}
	})
}

func genDefaultsConfig() gopter.Gen {
	return gopter.CombineGens(
		gen.Identifier(),
		gen.Identifier(),
		gen.IntRange(0, 100),
		gen.IntRange(1, 1000),
	).Map(func(values []interface{}) DefaultsConfig {
		return DefaultsConfig{
			Pool:      values[0].(string),
			Group:     values[1].(string),
			Priority:  values[2].(int),
			ChunkSize: values[3].(int),
		}
	})
}

// TestConfigRoundTripProperty checks that serializing any valid config
// and parsing it back yields an equivalent config.
func TestConfigRoundTripProperty(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100

	properties := gopter.NewProperties(parameters)

	properties.Property("config round-trip preserves data", prop.ForAll(
		func(farm FarmConfig, defaults DefaultsConfig) bool {
			cfg := DefaultConfig()
			cfg.Farm = farm
			cfg.Defaults = defaults

			data, err := cfg.Serialize()
			if err != nil {
				return false
			}
			parsed, err := ParseConfig(data)
			if err != nil {
				return false
			}
			return cfg.Farm == parsed.Farm && cfg.Defaults == parsed.Defaults
		},
		genFarmConfig(),
		genDefaultsConfig(),
	))

	properties.TestingRun(t)
}
