package config

import "testing"

func TestValidateMissingRequiredFields(t *testing.T) {
	cfg := &FitConfig{}
	err := Validate(cfg)
	if err == nil {
		t.Fatal("expected validation error for empty config")
	}
	multi, ok := err.(interface{ Unwrap() []error })
	if !ok {
		t.Fatalf("expected a multi-error, got %T", err)
	}
	if len(multi.Unwrap()) == 0 {
		t.Fatal("expected at least one aggregated error")
	}
}

func TestValidateVariableSpecs(t *testing.T) {
	cases := []struct {
		name    string
		spec    VariableSpec
		wantErr bool
	}{
		{"fixed ok", VariableSpec{Kind: KindFixed, Name: "k"}, false},
		{"list empty", VariableSpec{Kind: KindList, Name: "k"}, true},
		{"linear ok", VariableSpec{Kind: KindLinear, Name: "k", First: 0, Last: 1, Steps: 5}, false},
		{"linear zero steps", VariableSpec{Kind: KindLinear, Name: "k", Steps: 0}, true},
		{"log non-positive", VariableSpec{Kind: KindLog, Name: "k", First: 0, Last: 1, Steps: 3}, true},
		{"random inverted", VariableSpec{Kind: KindRandom, Name: "k", First: 1, Last: 0}, true},
		{"loguniform ok", VariableSpec{Kind: KindLogUniform, Name: "k", Min: 0.1, Max: 10}, false},
		{"loguniform inverted", VariableSpec{Kind: KindLogUniform, Name: "k", Min: 10, Max: 0.1}, true},
		{"unknown kind", VariableSpec{Kind: "bogus", Name: "k"}, true},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got := false
			validateVariableSpec(c.spec, func(field, msg string) {
				got = true
			})
			if got != c.wantErr {
				t.Errorf("validateVariableSpec(%+v): got error=%v, want %v", c.spec, got, c.wantErr)
			}
		})
	}
}

func TestParamSchemaDedup(t *testing.T) {
	cfg := &FitConfig{Variables: []VariableSpec{
		{Kind: KindFixed, Name: "a"},
		{Kind: KindList, Name: "b", Values: []float64{1, 2}},
		{Kind: KindFixed, Name: "a"},
	}}
	schema := cfg.ParamSchema()
	if len(schema) != 2 {
		t.Fatalf("expected 2 unique names, got %v", schema)
	}
	if schema[0] != "a" || schema[1] != "b" {
		t.Errorf("expected [a b], got %v", schema)
	}
}

func TestMutationForFallback(t *testing.T) {
	cfg := &FitConfig{MutationSpecs: map[string]MutationSpec{
		"default": {Prob: 0.1, Pct: 0.2},
		"k1":      {Prob: 0.5, Pct: 0.3},
	}}
	m, ok := cfg.MutationFor("k1")
	if !ok || m.Prob != 0.5 {
		t.Errorf("expected k1-specific spec, got %+v ok=%v", m, ok)
	}
	m, ok = cfg.MutationFor("k2")
	if !ok || m.Prob != 0.1 {
		t.Errorf("expected default fallback, got %+v ok=%v", m, ok)
	}
}
