// Package config loads the simulator configuration from YAML or JSON files
// with environment overrides.
package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/enoplan/bessim/core/alert"
	coremetrics "github.com/enoplan/bessim/core/metrics"
	"github.com/enoplan/bessim/core/model"
	"github.com/enoplan/bessim/infra/mqtt"
)

type Config struct {
	Input       InputConfig             `json:"input"`
	Battery     model.BatteryConfig     `json:"battery"`
	PeakShaving model.PeakShavingConfig `json:"peak_shaving"`
	Tariffs     model.Tariffs           `json:"tariffs"`
	Metrics     coremetrics.Config      `json:"metrics"`
	MQTT        mqtt.Config             `json:"mqtt"`
	Alerts      alert.Thresholds        `json:"alerts"`
	Logging     LoggingConfig           `json:"logging"`
}

func Load(path string) (*Config, error) {
	k := koanf.New(".")
	ext := strings.ToLower(filepath.Ext(path))
	var parser koanf.Parser
	switch ext {
	case ".yaml", ".yml":
		parser = yaml.Parser()
	case ".json":
		parser = json.Parser()
	default:
		return nil, fmt.Errorf("unsupported config format: %s", ext)
	}
	if err := k.Load(file.Provider(path), parser); err != nil {
		return nil, err
	}
	// Optional environment overrides
	if err := k.Load(env.Provider("BESSIM_", ".", func(s string) string {
		s = strings.TrimPrefix(strings.ToLower(s), "bessim_")
		return strings.ReplaceAll(s, "__", ".")
	}), nil); err != nil {
		return nil, err
	}
	var cfg Config
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "json"}); err != nil {
		return nil, err
	}
	cfg.Input.SetDefaults()
	cfg.Battery.SetDefaults()
	cfg.PeakShaving.SetDefaults()
	cfg.Metrics.SetDefaults()
	cfg.MQTT.SetDefaults()
	cfg.Alerts.SetDefaults()
	cfg.Logging.SetDefaults()
	for _, v := range []interface{ Validate() error }{
		&cfg.Input, &cfg.Battery, &cfg.PeakShaving, &cfg.Tariffs,
		&cfg.Metrics, &cfg.MQTT, &cfg.Logging,
	} {
		if err := v.Validate(); err != nil {
			return nil, err
		}
	}
	return &cfg, nil
}
