/*
Package config provides type-safe configuration extraction from map[string]any.

# Overview

config wraps a map[string]any and provides typed accessor methods that handle
missing keys and type mismatches gracefully by returning default values.
Graph definitions, engine settings, and action payloads all arrive as decoded
YAML/JSON maps, and the accessors replace the verbose type assertions and nil
checks that extracting values from those maps would otherwise require.

# Basic Usage

Create a Config from any map and extract values with defaults:

	cfg := config.New(map[string]any{
	    "model":           "claude-sonnet-4",
	    "max_transitions": 8,
	    "temperature":     0.2,
	    "timeout":         "30s",
	})

	model := cfg.String("model", "claude-3-haiku")       // "claude-sonnet-4"
	limit := cfg.Int("max_transitions", 10)              // 8
	temp := cfg.Float("temperature", 0.0)                // 0.2
	timeout := cfg.Duration("timeout", 10*time.Second)   // 30s
	missing := cfg.String("missing", "default")          // "default"

# Type Coercion

Duration handles multiple input types:
  - string: parsed with time.ParseDuration ("30s", "1h30m")
  - int/float64: interpreted as seconds
  - time.Duration: used directly

Numeric types handle reasonable conversions:
  - int from float64 (only when there is no fractional part)
  - float64 from int

All methods return the default value if:
  - The key is missing
  - The value cannot be converted to the requested type
  - The conversion would lose precision (e.g., float to int with fraction)

# Struct Decoding

Decode unmarshals the whole map into a struct via mapstructure tags,
with weak typing so "3" fills an int field:

	type EngineSettings struct {
	    Model          string        `mapstructure:"model"`
	    MaxTransitions int           `mapstructure:"max_transitions"`
	    Timeout        time.Duration `mapstructure:"timeout"`
	}

	var settings EngineSettings
	if err := cfg.Decode(&settings); err != nil {
	    log.Fatal(err)
	}

# File Loading

Load configuration from YAML or JSON files:

	cfg, err := config.FromFile("engine.yaml")
	if err != nil {
	    log.Fatal(err)
	}

	// Or load from bytes
	cfg, err = config.FromYAML(yamlBytes)
	cfg, err = config.FromJSON(jsonBytes)

# Thread Safety

Config is safe for concurrent read access. The underlying map is not
modified after creation. However, if the original map is modified
externally, behavior is undefined.
*/
package config
