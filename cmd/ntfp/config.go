package main

import (
	"fmt"
	"os"
	"strings"

	ntfp "github.com/Observarun/geo-ntfp"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"
)

const envPrefix = "NTFP_"

// loadConfig layers the run configuration: built-in defaults, then the
// YAML config file, then NTFP_* environment variables, then explicitly
// set flags. Double underscores in env names select nested keys
// (NTFP_COLUMNS__YEAR -> columns.year).
func loadConfig(flags *pflag.FlagSet, cfgFile string) (ntfp.Config, error) {
	var cfg ntfp.Config
	k := koanf.New(".")

	def := ntfp.DefaultConfig()
	if err := k.Load(confmap.Provider(map[string]interface{}{
		"target_wkt":            def.TargetWkt,
		"target_extent":         def.TargetExtent,
		"pixel_size":            def.PixelSize,
		"buffer_distance":       def.BufferDistance,
		"columns.country_id":    def.Columns.CountryID,
		"columns.country_label": def.Columns.CountryLabel,
		"columns.country_name":  def.Columns.CountryName,
		"columns.year":          def.Columns.Year,
	}, "."), nil); err != nil {
		return cfg, fmt.Errorf("failed to load defaults: %w", err)
	}

	if cfgFile == "" {
		for _, name := range []string{"ntfp.yaml", "ntfp.yml"} {
			if _, err := os.Stat(name); err == nil {
				cfgFile = name
				break
			}
		}
	}
	if cfgFile != "" {
		if err := k.Load(file.Provider(cfgFile), yaml.Parser()); err != nil {
			return cfg, fmt.Errorf("error reading config file %s: %w", cfgFile, err)
		}
	}

	if err := k.Load(env.Provider(envPrefix, ".", func(s string) string {
		key := strings.ToLower(strings.TrimPrefix(s, envPrefix))
		return strings.ReplaceAll(key, "__", ".")
	}), nil); err != nil {
		return cfg, fmt.Errorf("failed to load env vars: %w", err)
	}

	if flags != nil {
		if err := k.Load(posflag.ProviderWithFlag(flags, ".", k, func(f *pflag.Flag) (string, interface{}) {
			if !f.Changed {
				return "", nil
			}
			key := strings.ReplaceAll(f.Name, "-", "_")
			switch key {
			case "config":
				return "", nil
			case "year":
				// --year is a shorthand for the nested column key
				return "columns.year", posflag.FlagVal(flags, f)
			}
			return key, posflag.FlagVal(flags, f)
		}), nil); err != nil {
			return cfg, fmt.Errorf("failed to load flags: %w", err)
		}
	}

	if err := k.Unmarshal("", &cfg); err != nil {
		return cfg, fmt.Errorf("unable to decode config: %w", err)
	}
	return cfg, nil
}
