package paramgen

import (
	"math"
	"math/rand"
	"testing"

	"github.com/netfit/fitctl/internal/config"
)

// S1 — Linear generator.
func TestLinearGeneratorS1(t *testing.T) {
	vals, err := linearValues(0.0, 1.0, 5)
	if err != nil {
		t.Fatalf("linearValues: %v", err)
	}
	want := []float64{0.0, 0.25, 0.5, 0.75, 1.0}
	for i, w := range want {
		if math.Abs(vals[i]-w) > 1e-12 {
			t.Errorf("index %d: got %v want %v", i, vals[i], w)
		}
	}
	if vals[len(vals)-1] != 1.0 {
		t.Errorf("last value must be exactly 1.0, got %v", vals[len(vals)-1])
	}
}

func TestCartesianProduct(t *testing.T) {
	specs := []config.VariableSpec{
		{Kind: config.KindList, Name: "a", Values: []float64{1, 2}},
		{Kind: config.KindList, Name: "b", Values: []float64{10, 20, 30}},
	}
	rng := rand.New(rand.NewSource(1))
	vecs, schema, err := Generate(specs, 6, rng)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if len(vecs) != 6 {
		t.Fatalf("expected 6 vectors (2x3 cartesian), got %d", len(vecs))
	}
	if len(schema) != 2 {
		t.Fatalf("expected schema of 2, got %v", schema)
	}
}

func TestStaticListZip(t *testing.T) {
	specs := []config.VariableSpec{
		{Kind: config.KindList, Name: "a", Values: []float64{1, 2, 3}},
		{Kind: config.KindStaticList, Name: "b", Values: []float64{10, 20, 30}},
	}
	rng := rand.New(rand.NewSource(1))
	vecs, _, err := Generate(specs, 3, rng)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if len(vecs) != 3 {
		t.Fatalf("zip must preserve working-set size, got %d vectors", len(vecs))
	}
	if vecs[1][1] != 20 {
		t.Errorf("expected zipped b=20 at index 1, got %v", vecs[1][1])
	}
}

func TestStaticListArityMismatch(t *testing.T) {
	specs := []config.VariableSpec{
		{Kind: config.KindList, Name: "a", Values: []float64{1, 2, 3}},
		{Kind: config.KindStaticList, Name: "b", Values: []float64{10, 20}},
	}
	rng := rand.New(rand.NewSource(1))
	if _, _, err := Generate(specs, 3, rng); err == nil {
		t.Fatal("expected arity mismatch error")
	}
}

func TestFixedAppliesToEveryVector(t *testing.T) {
	specs := []config.VariableSpec{
		{Kind: config.KindList, Name: "a", Values: []float64{1, 2, 3, 4}},
		{Kind: config.KindFixed, Name: "k", Value: 7},
	}
	rng := rand.New(rand.NewSource(1))
	vecs, schema, err := Generate(specs, 4, rng)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	kIdx := indexOf(schema, "k")
	for i, v := range vecs {
		if v[kIdx] != 7 {
			t.Errorf("vector %d: expected fixed k=7, got %v", i, v[kIdx])
		}
	}
}

func TestTruncatesToPopulationSize(t *testing.T) {
	specs := []config.VariableSpec{
		{Kind: config.KindList, Name: "a", Values: []float64{1, 2, 3, 4, 5}},
	}
	rng := rand.New(rand.NewSource(1))
	vecs, _, err := Generate(specs, 3, rng)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if len(vecs) != 3 {
		t.Fatalf("expected truncation to 3, got %d", len(vecs))
	}
}

func TestInsufficientRowsIsError(t *testing.T) {
	specs := []config.VariableSpec{
		{Kind: config.KindList, Name: "a", Values: []float64{1, 2}},
	}
	rng := rand.New(rand.NewSource(1))
	if _, _, err := Generate(specs, 5, rng); err == nil {
		t.Fatal("expected error when fewer rows than population size were produced")
	}
}

func TestRandomExpandsEmptyWorkingSetToTargetSize(t *testing.T) {
	specs := []config.VariableSpec{
		{Kind: config.KindRandom, Name: "a", First: 0, Last: 1},
	}
	rng := rand.New(rand.NewSource(42))
	vecs, _, err := Generate(specs, 8, rng)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if len(vecs) != 8 {
		t.Fatalf("expected 8 vectors, got %d", len(vecs))
	}
	for _, v := range vecs {
		if v[0] < 0 || v[0] >= 1 {
			t.Errorf("value out of [0,1): %v", v[0])
		}
	}
}

func TestLogUniformRange(t *testing.T) {
	specs := []config.VariableSpec{
		{Kind: config.KindLogUniform, Name: "a", Min: 0.01, Max: 100},
	}
	rng := rand.New(rand.NewSource(7))
	vecs, _, err := Generate(specs, 20, rng)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	for _, v := range vecs {
		if v[0] < 0.01 || v[0] > 100 {
			t.Errorf("value out of [0.01,100]: %v", v[0])
		}
	}
}
