package metrics

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/mat"
)

func TestGetScorer(t *testing.T) {
	tests := []struct {
		name            string
		greaterIsBetter bool
	}{
		{"r2", true},
		{"mean_squared_error", false},
		{"mean_absolute_error", false},
		{"neg_mean_squared_error", true},
		{"neg_mean_absolute_error", true},
		{"accuracy", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := GetScorer(tt.name)
			if err != nil {
				t.Fatal(err)
			}
			if s.Name != tt.name {
				t.Errorf("Name = %v, want %v", s.Name, tt.name)
			}
			if s.GreaterIsBetter != tt.greaterIsBetter {
				t.Errorf("GreaterIsBetter = %v, want %v", s.GreaterIsBetter, tt.greaterIsBetter)
			}
		})
	}
}

func TestGetScorerMSEAlias(t *testing.T) {
	s, err := GetScorer("mse")
	if err != nil {
		t.Fatal(err)
	}
	if s.Name != "mean_squared_error" {
		t.Errorf("alias should resolve to mean_squared_error, got %v", s.Name)
	}
}

func TestGetScorerUnknown(t *testing.T) {
	if _, err := GetScorer("nope"); err == nil {
		t.Error("expected error for unknown scorer")
	}
}

func TestScorerScore(t *testing.T) {
	yTrue := mat.NewVecDense(4, []float64{1, 2, 3, 4})
	yPred := mat.NewVecDense(4, []float64{1.5, 2.5, 2.5, 3.5})

	s, err := GetScorer("mean_squared_error")
	if err != nil {
		t.Fatal(err)
	}
	got, err := s.Score(yTrue, yPred)
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(got-0.25) > 1e-10 {
		t.Errorf("Score() = %v, want 0.25", got)
	}
}

func TestNegatedScorerFlipsSign(t *testing.T) {
	yTrue := mat.NewVecDense(4, []float64{1, 2, 3, 4})
	yPred := mat.NewVecDense(4, []float64{1.5, 2.5, 2.5, 3.5})

	for _, name := range []string{"neg_mean_squared_error", "neg_mean_absolute_error"} {
		neg, err := GetScorer(name)
		if err != nil {
			t.Fatal(err)
		}
		raw, err := GetScorer(name[len("neg_"):])
		if err != nil {
			t.Fatal(err)
		}
		nv, err := neg.Score(yTrue, yPred)
		if err != nil {
			t.Fatal(err)
		}
		rv, err := raw.Score(yTrue, yPred)
		if err != nil {
			t.Fatal(err)
		}
		if math.Abs(nv+rv) > 1e-12 {
			t.Errorf("%s = %v, want %v", name, nv, -rv)
		}
		if nv > 0 {
			t.Errorf("%s should be non-positive, got %v", name, nv)
		}
	}
}

func TestUninitializedScorer(t *testing.T) {
	var s Scorer
	if _, err := s.Score(mat.NewVecDense(1, []float64{1}), mat.NewVecDense(1, []float64{1})); err == nil {
		t.Error("expected error from zero-value scorer")
	}
}
