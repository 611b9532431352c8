package simulator

import (
	"errors"
	"math"
	"reflect"
	"testing"
)

func seeded(s uint64) *uint64 { return &s }

func TestSimulate_Shape(t *testing.T) {
	p := Params{Spot: 100, Sigma: 0.2, Rate: 0.03, Dt: 1.0 / 252, Steps: 10, Paths: 7, Seed: seeded(5)}
	paths, err := Simulate(p)
	if err != nil {
		t.Fatalf("simulate: %v", err)
	}
	if len(paths) != 7 {
		t.Fatalf("expected 7 paths, got %d", len(paths))
	}
	for i, path := range paths {
		if len(path) != 11 {
			t.Fatalf("path %d: expected 11 prices, got %d", i, len(path))
		}
		if path[0] != 100 {
			t.Errorf("path %d: first price %g, want spot", i, path[0])
		}
		for k, s := range path {
			if s <= 0 || math.IsNaN(s) {
				t.Fatalf("path %d step %d: invalid price %g", i, k, s)
			}
		}
	}
}

func TestSimulate_Deterministic(t *testing.T) {
	// More paths than one chunk, so sub-stream seeding is exercised too.
	p := Params{Spot: 50, Sigma: 0.25, Rate: 0.01, Dt: 1.0 / 252, Steps: 5, Paths: 2*ChunkSize + 100, Seed: seeded(42)}
	a, err := Simulate(p)
	if err != nil {
		t.Fatalf("simulate: %v", err)
	}
	b, err := Simulate(p)
	if err != nil {
		t.Fatalf("simulate again: %v", err)
	}
	if !reflect.DeepEqual(a, b) {
		t.Fatal("same seed produced different path sets")
	}
}

func TestSimulate_SeedsDiffer(t *testing.T) {
	p := Params{Spot: 50, Sigma: 0.25, Rate: 0.01, Dt: 1.0 / 252, Steps: 5, Paths: 4}
	p.Seed = seeded(1)
	a, _ := Simulate(p)
	p.Seed = seeded(2)
	b, _ := Simulate(p)
	if reflect.DeepEqual(a, b) {
		t.Fatal("different seeds produced identical path sets")
	}
}

func TestSimulate_AntitheticPairsMirrorDiffusion(t *testing.T) {
	p := Params{Spot: 100, Sigma: 0.3, Rate: 0.05, Dt: 1.0 / 252, Steps: 20, Paths: 10, Antithetic: true, Seed: seeded(7)}
	paths, err := Simulate(p)
	if err != nil {
		t.Fatalf("simulate: %v", err)
	}

	// For each pair, the log-increments must be symmetric around the drift:
	// ln(a_k/a_{k-1}) + ln(b_k/b_{k-1}) = 2 * (r - sigma^2/2) * dt.
	drift2 := 2 * (p.Rate - 0.5*p.Sigma*p.Sigma) * p.Dt
	for pair := 0; pair < len(paths); pair += 2 {
		a, b := paths[pair], paths[pair+1]
		for k := 1; k <= p.Steps; k++ {
			got := math.Log(a[k]/a[k-1]) + math.Log(b[k]/b[k-1])
			if math.Abs(got-drift2) > 1e-9 {
				t.Fatalf("pair %d step %d: increments not antithetic (%g vs %g)", pair/2, k, got, drift2)
			}
		}
	}
}

func TestParams_Validate(t *testing.T) {
	valid := Params{Spot: 100, Sigma: 0.2, Rate: 0.03, Dt: 1.0 / 252, Steps: 10, Paths: 4}

	tests := []struct {
		name   string
		mutate func(*Params)
		want   error
	}{
		{"valid", func(*Params) {}, nil},
		{"zero spot", func(p *Params) { p.Spot = 0 }, ErrInvalidSpot},
		{"negative spot", func(p *Params) { p.Spot = -10 }, ErrInvalidSpot},
		{"zero steps", func(p *Params) { p.Steps = 0 }, ErrInvalidParams},
		{"zero paths", func(p *Params) { p.Paths = 0 }, ErrInvalidParams},
		{"negative sigma", func(p *Params) { p.Sigma = -0.1 }, ErrInvalidParams},
		{"zero dt", func(p *Params) { p.Dt = 0 }, ErrInvalidParams},
		{"antithetic odd paths", func(p *Params) { p.Antithetic = true; p.Paths = 1 }, ErrInvalidParams},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := valid
			tt.mutate(&p)
			err := p.Validate()
			if tt.want == nil {
				if err != nil {
					t.Errorf("unexpected error: %v", err)
				}
				return
			}
			if !errors.Is(err, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, err)
			}
		})
	}
}

func TestRunChunk_MatchesSimulate(t *testing.T) {
	p := Params{Spot: 80, Sigma: 0.15, Rate: 0.02, Dt: 1.0 / 252, Steps: 8, Paths: ChunkSize + 6, Seed: seeded(11)}
	want, err := Simulate(p)
	if err != nil {
		t.Fatalf("simulate: %v", err)
	}

	// Run chunks out of order; collected paths must still match chunk-wise.
	var got [][]float64
	for _, idx := range []int{1, 0} {
		var chunk [][]float64
		RunChunk(p, *p.Seed, idx, func(path []float64) {
			owned := make([]float64, len(path))
			copy(owned, path)
			chunk = append(chunk, owned)
		})
		if idx == 0 {
			got = append(chunk, got...)
		} else {
			got = append(got, chunk...)
		}
	}
	if !reflect.DeepEqual(want, got) {
		t.Fatal("chunk-wise generation does not reproduce the path set")
	}
}
