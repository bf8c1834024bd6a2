package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// defaults mirrors the config knobs that have a sane default so a minimal
// config file stays small.
var defaults = map[string]interface{}{
	"control_column":    "time",
	"parallelism_mode":  string(ParallelismLocal),
	"parallel_count":    4,
	"cluster_parallel":  8,
	"multisim":          4,
	"job_limit":         0,
	"poll_interval":     "2s",
	"per_sim_walltime":  "10m",
	"max_retries":       3,
	"scheduler_kind":    "shell",
	"objective":         1,
	"log_base":          10.0,
	"smoothing":         1,
	"crossover_swap_rate": 0.5,
	"max_parents":       0,
	"keep_top_k_parents": 0,
	"bootstrap_count":   0,
	"bootstrap_chi":     0.0,
	"bootstrap_retries": 3,
}

// Load reads a FitConfig from path (YAML or JSON, by extension), applying
// defaults and FITCTL_* environment overrides.
func Load(path string) (*FitConfig, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetEnvPrefix("FITCTL")
	v.AutomaticEnv()

	for k, val := range defaults {
		v.SetDefault(k, val)
	}

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}

	var cfg FitConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("config: unmarshal %s: %w", path, err)
	}
	cfg.HasMaxObjFuncValue = v.IsSet("max_objfunc_value")

	if cfg.OutputDir == "" {
		cfg.OutputDir = filepath.Join(filepath.Dir(path), cfg.JobName)
	}
	return &cfg, nil
}

// Snapshot writes cfg as a per-generation config snapshot, used by the
// generation controller for resume (spec §4.7) and loaded back by
// LoadSnapshot.
func Snapshot(path string, cfg *FitConfig) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	b, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("config: marshal snapshot: %w", err)
	}
	return os.WriteFile(path, b, 0o644)
}

// LoadSnapshot loads a per-generation config snapshot written by
// Snapshot.
func LoadSnapshot(path string) (*FitConfig, error) {
	return Load(path)
}
