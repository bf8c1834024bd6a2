// Package config loads and validates the FitConfig that drives one
// fitting job (spec §3), via viper over YAML/JSON with FITCTL_*
// environment overrides.
package config

import "time"

// VariableSpec is one declarative parameter-generator spec (spec §4.1).
// Kind selects which fields are meaningful.
type VariableSpec struct {
	Kind     string    `mapstructure:"kind" yaml:"kind"`
	Name     string    `mapstructure:"name" yaml:"name"`
	Value    float64   `mapstructure:"value,omitempty" yaml:"value,omitempty"`
	Values   []float64 `mapstructure:"values,omitempty" yaml:"values,omitempty"`
	First    float64   `mapstructure:"first,omitempty" yaml:"first,omitempty"`
	Last     float64   `mapstructure:"last,omitempty" yaml:"last,omitempty"`
	Steps    int       `mapstructure:"steps,omitempty" yaml:"steps,omitempty"`
	Mantissa float64   `mapstructure:"mantissa,omitempty" yaml:"mantissa,omitempty"`
	Base     float64   `mapstructure:"base,omitempty" yaml:"base,omitempty"`
	Min      float64   `mapstructure:"min,omitempty" yaml:"min,omitempty"`
	Max      float64   `mapstructure:"max,omitempty" yaml:"max,omitempty"`
	Mean     float64   `mapstructure:"mean,omitempty" yaml:"mean,omitempty"`
	StdDev   float64   `mapstructure:"stddev,omitempty" yaml:"stddev,omitempty"`
}

// Variable-spec kind identifiers (spec §4.1).
const (
	KindFixed         = "fixed"
	KindList          = "list"
	KindStaticList    = "static_list"
	KindLinear        = "linear"
	KindLog           = "log"
	KindRandom        = "random"
	KindLogUniform    = "loguniform"
	KindLogNormRandom = "lognormrandom"
)

// MutationSpec controls one parameter's jitter probability and magnitude
// (spec §4.6 step 9). The "default" key in MutationSpecs is the fallback
// used for any parameter without its own entry.
type MutationSpec struct {
	Prob float64 `mapstructure:"prob" yaml:"prob"`
	Pct  float64 `mapstructure:"pct" yaml:"pct"`
}

// DefaultMutationKey is the fallback key in FitConfig.MutationSpecs.
const DefaultMutationKey = "default"

// ParallelismMode selects the run executor strategy.
type ParallelismMode string

const (
	ParallelismLocal   ParallelismMode = "local"
	ParallelismCluster ParallelismMode = "cluster"
)

// ObjectiveFunction selects the scorer residual variant (spec §4.5).
type ObjectiveFunction int

const (
	ObjectiveAbsolute   ObjectiveFunction = 1
	ObjectiveSD         ObjectiveFunction = 2
	ObjectiveRelative   ObjectiveFunction = 3
	ObjectiveColumnMean ObjectiveFunction = 4
)

// FitConfig is the immutable snapshot of one fitting job's configuration
// (spec §3). A modified copy is materialized per generation for
// restart/resume.
type FitConfig struct {
	JobName            string   `mapstructure:"job_name" yaml:"job_name"`
	TemplateModelPath  string   `mapstructure:"template_model_path" yaml:"template_model_path"`
	ReferenceDataPaths []string `mapstructure:"reference_data_paths" yaml:"reference_data_paths"`
	ControlColumn      string   `mapstructure:"control_column" yaml:"control_column"`
	OutputDir          string   `mapstructure:"output_dir" yaml:"output_dir"`
	SimulatorPath      string   `mapstructure:"simulator_path" yaml:"simulator_path"`
	DeterministicODE   bool     `mapstructure:"deterministic_ode" yaml:"deterministic_ode"`

	Generations    int `mapstructure:"generations" yaml:"generations"`
	PopulationSize int `mapstructure:"population_size" yaml:"population_size"`
	Smoothing      int `mapstructure:"smoothing" yaml:"smoothing"`

	Objective          ObjectiveFunction `mapstructure:"objective" yaml:"objective"`
	DivideByInit       bool              `mapstructure:"divide_by_init" yaml:"divide_by_init"`
	LogTransformSim    bool              `mapstructure:"log_transform_sim_data" yaml:"log_transform_sim_data"`
	LogBase            float64           `mapstructure:"log_base" yaml:"log_base"`
	StandardizeSimData bool              `mapstructure:"standardize_sim_data" yaml:"standardize_sim_data"`
	StandardizeExpData bool              `mapstructure:"standardize_exp_data" yaml:"standardize_exp_data"`

	ParallelismMode ParallelismMode `mapstructure:"parallelism_mode" yaml:"parallelism_mode"`
	LocalWorkers    int             `mapstructure:"parallel_count" yaml:"parallel_count"`
	ClusterParallel int             `mapstructure:"cluster_parallel" yaml:"cluster_parallel"`
	ClusterMultisim int             `mapstructure:"multisim" yaml:"multisim"`
	JobLimit        int             `mapstructure:"job_limit" yaml:"job_limit"`
	PollInterval    time.Duration   `mapstructure:"poll_interval" yaml:"poll_interval"`
	PerSimWalltime  time.Duration   `mapstructure:"per_sim_walltime" yaml:"per_sim_walltime"`
	MaxRetries      int             `mapstructure:"max_retries" yaml:"max_retries"`
	SchedulerKind   string          `mapstructure:"scheduler_kind" yaml:"scheduler_kind"`

	BootstrapCount   int     `mapstructure:"bootstrap_count" yaml:"bootstrap_count"`
	BootstrapChi     float64 `mapstructure:"bootstrap_chi" yaml:"bootstrap_chi"`
	BootstrapRetries int     `mapstructure:"bootstrap_retries" yaml:"bootstrap_retries"`

	Variables             []VariableSpec          `mapstructure:"variables" yaml:"variables"`
	MutationSpecs         map[string]MutationSpec `mapstructure:"mutation_specs" yaml:"mutation_specs"`
	CrossoverSwapRate     float64                 `mapstructure:"crossover_swap_rate" yaml:"crossover_swap_rate"`
	StopWhenStalled       bool                    `mapstructure:"stop_when_stalled" yaml:"stop_when_stalled"`
	MinObjFuncValue       float64                 `mapstructure:"min_objfunc_value" yaml:"min_objfunc_value"`
	MaxObjFuncValue       float64                 `mapstructure:"max_objfunc_value" yaml:"max_objfunc_value"`
	HasMaxObjFuncValue    bool                    `mapstructure:"-" yaml:"has_max_objfunc_value"`
	KeepTopKParents       int                     `mapstructure:"keep_top_k_parents" yaml:"keep_top_k_parents"`
	MaxParents            int                     `mapstructure:"max_parents" yaml:"max_parents"`
	ForceDifferentParents bool                    `mapstructure:"force_different_parents" yaml:"force_different_parents"`
	FirstGenPermutations  int                     `mapstructure:"first_gen_permutations" yaml:"first_gen_permutations"`

	DeleteOutputsAfterScoring bool  `mapstructure:"delete_outputs_after_scoring" yaml:"delete_outputs_after_scoring"`
	Seed                      int64 `mapstructure:"seed" yaml:"seed"`

	// StatusAddr, if set, starts the gRPC progress/status service
	// (internal/statussvc, spec_full §2 item 15) listening on this
	// address for the duration of the fit. Empty disables it.
	StatusAddr string `mapstructure:"status_addr" yaml:"status_addr"`
}

// ParamSchema returns the ordered parameter names declared by Variables,
// in first-declaration order, de-duplicated.
func (c *FitConfig) ParamSchema() []string {
	seen := make(map[string]bool)
	var out []string
	for _, v := range c.Variables {
		if seen[v.Name] {
			continue
		}
		seen[v.Name] = true
		out = append(out, v.Name)
	}
	return out
}

// EffectiveFirstGenSize returns the population size used for generation
// 1, honoring the first-generation oversize override (spec §4.7).
func (c *FitConfig) EffectiveFirstGenSize() int {
	if c.FirstGenPermutations > c.PopulationSize {
		return c.FirstGenPermutations
	}
	return c.PopulationSize
}

// MutationFor returns the MutationSpec for name, falling back to
// DefaultMutationKey, and false if neither is present.
func (c *FitConfig) MutationFor(name string) (MutationSpec, bool) {
	if m, ok := c.MutationSpecs[name]; ok {
		return m, true
	}
	if m, ok := c.MutationSpecs[DefaultMutationKey]; ok {
		return m, true
	}
	return MutationSpec{}, false
}
