package features

import "testing"

func TestSummarizeEmpty(t *testing.T) {
	s := Summarize(nil)
	if !s.Empty() {
		t.Fatal("expected empty summary")
	}
	for _, st := range []Stat{StatMin, StatMax, StatMean, StatStd} {
		if _, ok := s.Value(st); ok {
			t.Fatalf("expected %s to be absent", st)
		}
	}
}

func TestSummarizeSingleValue(t *testing.T) {
	s := Summarize([]float64{5.0})
	std, ok := s.Value(StatStd)
	if !ok || std != 0.0 {
		t.Fatalf("expected std 0.0 present, got %v (ok=%v)", std, ok)
	}
	if s.Min != 5.0 || s.Max != 5.0 || s.Mean != 5.0 {
		t.Fatalf("expected 5.0 for min/max/mean, got %+v", s)
	}
}

func TestSummarizeSampleStd(t *testing.T) {
	s := Summarize([]float64{1, 2, 3, 4, 5})
	if s.Mean != 3.0 {
		t.Fatalf("expected mean 3.0, got %v", s.Mean)
	}
	if s.Std != 1.6 {
		t.Fatalf("expected sample std 1.6, got %v", s.Std)
	}
	if s.Min != 1 || s.Max != 5 || s.Count != 5 {
		t.Fatalf("unexpected summary %+v", s)
	}
}

func TestSummarizeOrderIndependent(t *testing.T) {
	a := Summarize([]float64{3.3, 1.1, 2.2})
	b := Summarize([]float64{1.1, 2.2, 3.3})
	if a != b {
		t.Fatalf("expected identical summaries, got %+v vs %+v", a, b)
	}
}

func TestRoundHalfToEven(t *testing.T) {
	cases := map[float64]float64{
		1.25:  1.2,
		1.35:  1.4,
		-0.04: -0.0,
		98.66: 98.7,
	}
	for in, want := range cases {
		if got := round1(in); got != want {
			t.Errorf("round1(%v) = %v, want %v", in, got, want)
		}
	}
}
