package config

import (
	"os"

	"github.com/netfit/fitctl/internal/ferrors"
)

// Validate checks cfg for the configuration errors enumerated in spec §7
// and returns a single *ferrors.MultiConfigError aggregating everything
// found, or nil if cfg is usable.
func Validate(cfg *FitConfig) error {
	var errs []*ferrors.ConfigError
	add := func(field, msg string) {
		errs = append(errs, &ferrors.ConfigError{Field: field, Msg: msg})
	}

	if cfg.JobName == "" {
		add("job_name", "required")
	}
	if cfg.TemplateModelPath == "" {
		add("template_model_path", "required")
	} else if _, err := os.Stat(cfg.TemplateModelPath); err != nil {
		add("template_model_path", "file not found: "+cfg.TemplateModelPath)
	}
	if len(cfg.ReferenceDataPaths) == 0 {
		add("reference_data_paths", "at least one reference file is required")
	}
	for _, p := range cfg.ReferenceDataPaths {
		if _, err := os.Stat(p); err != nil {
			add("reference_data_paths", "file not found: "+p)
		}
	}
	if cfg.OutputDir == "" {
		add("output_dir", "required")
	}
	if cfg.SimulatorPath == "" {
		add("simulator_path", "required")
	}
	if cfg.Generations <= 0 {
		add("generations", "must be positive")
	}
	if cfg.PopulationSize <= 0 {
		add("population_size", "must be positive")
	}
	if cfg.Smoothing <= 0 {
		add("smoothing", "must be at least 1")
	}
	switch cfg.Objective {
	case ObjectiveAbsolute, ObjectiveSD, ObjectiveRelative, ObjectiveColumnMean:
	default:
		add("objective", "must be one of 1,2,3,4")
	}
	switch cfg.ParallelismMode {
	case ParallelismLocal:
		if cfg.LocalWorkers <= 0 {
			add("parallel_count", "must be positive in local mode")
		}
	case ParallelismCluster:
		if cfg.ClusterParallel <= 0 {
			add("cluster_parallel", "must be positive in cluster mode")
		}
		if cfg.ClusterMultisim <= 0 {
			add("multisim", "must be positive in cluster mode")
		}
	default:
		add("parallelism_mode", "must be 'local' or 'cluster'")
	}
	if cfg.PerSimWalltime <= 0 {
		add("per_sim_walltime", "must be positive")
	}
	if cfg.MaxRetries < 0 {
		add("max_retries", "must be non-negative")
	}
	if cfg.BootstrapCount < 0 {
		add("bootstrap_count", "must be non-negative")
	}
	if cfg.CrossoverSwapRate < 0 || cfg.CrossoverSwapRate > 1 {
		add("crossover_swap_rate", "must be in [0,1]")
	}
	if cfg.KeepTopKParents < 0 {
		add("keep_top_k_parents", "must be non-negative")
	}
	if cfg.KeepTopKParents > cfg.PopulationSize {
		add("keep_top_k_parents", "cannot exceed population_size")
	}
	if cfg.LogTransformSim && cfg.LogBase <= 1 {
		add("log_base", "must be > 1 when log_transform_sim_data is set")
	}

	if len(cfg.Variables) == 0 {
		add("variables", "at least one variable spec is required")
	}
	for _, v := range cfg.Variables {
		validateVariableSpec(v, add)
	}

	if len(errs) == 0 {
		return nil
	}
	return &ferrors.MultiConfigError{Errs: errs}
}

func validateVariableSpec(v VariableSpec, add func(field, msg string)) {
	field := "variables[" + v.Name + "]"
	if v.Name == "" {
		add("variables", "variable spec missing name")
		return
	}
	switch v.Kind {
	case KindFixed:
		// Value defaults to zero, which is legal.
	case KindList:
		if len(v.Values) == 0 {
			add(field, "list requires at least one value")
		}
	case KindStaticList:
		if len(v.Values) == 0 {
			add(field, "static_list requires at least one value")
		}
	case KindLinear, KindLog:
		if v.Steps <= 0 {
			add(field, "steps must be positive")
		}
		if v.Steps == 1 && v.First != v.Last {
			add(field, "steps=1 requires first == last")
		}
		if v.Kind == KindLog {
			if v.First <= 0 || v.Last <= 0 {
				add(field, "log spacing requires first and last > 0")
			}
			if v.Base != 0 && v.Base <= 1 {
				add(field, "base must be > 1")
			}
		}
	case KindRandom:
		if v.Last <= v.First {
			add(field, "last must be greater than first")
		}
	case KindLogUniform:
		if v.Min <= 0 || v.Max <= 0 {
			add(field, "min and max must be > 0")
		}
		if v.Max <= v.Min {
			add(field, "max must be greater than min")
		}
	case KindLogNormRandom:
		if v.Mean <= 0 {
			add(field, "mean must be > 0")
		}
		if v.StdDev < 0 {
			add(field, "stddev must be non-negative")
		}
	default:
		add(field, "unknown variable kind: "+v.Kind)
	}
}
