package pmi

import (
	"math"
	"testing"
)

func TestPMIBasic(t *testing.T) {
	calc := NewCalculator(1.0)

	nAB := int64(8)
	nA := int64(10)
	nB := int64(10)
	N := int64(20)

	pmi := calc.PMI(nAB, nA, nB, N)
	if pmi <= 0 {
		t.Errorf("PMI for strong association should be positive, got %f", pmi)
	}
}

func TestPMIIndependent(t *testing.T) {
	calc := NewCalculator(1.0)

	N := int64(100)
	nA := int64(50)
	nB := int64(50)
	nAB := int64(25)

	pmi := calc.PMI(nAB, nA, nB, N)
	if math.Abs(pmi) > 0.5 {
		t.Errorf("PMI for independent terms should be near 0, got %f", pmi)
	}
}

func TestPMINegative(t *testing.T) {
	calc := NewCalculator(1.0)

	N := int64(100)
	nA := int64(50)
	nB := int64(50)
	nAB := int64(5)

	pmi := calc.PMI(nAB, nA, nB, N)
	if pmi >= 0 {
		t.Errorf("PMI for anti-correlated terms should be negative, got %f", pmi)
	}
}

func TestPMISmoothingPreventsNegInf(t *testing.T) {
	// NewCalculator treats epsilon <= 0 as 1.0, so a tiny epsilon stands in
	// for the (nearly) unsmoothed case.
	calc1 := NewCalculator(1e-9)
	calc2 := NewCalculator(1.0)

	N := int64(100)
	nA := int64(10)
	nB := int64(10)
	nAB := int64(0)

	pmi1 := calc1.PMI(nAB, nA, nB, N)
	pmi2 := calc2.PMI(nAB, nA, nB, N)

	if math.IsInf(pmi2, -1) {
		t.Error("smoothing should prevent -Inf")
	}
	if pmi1 > pmi2 {
		t.Error("smoothing should increase PMI for rare events")
	}
}

func TestNPMIRange(t *testing.T) {
	calc := NewCalculator(1.0)

	testCases := []struct{ nAB, nA, nB, N int64 }{
		{50, 50, 50, 100},
		{0, 50, 50, 100},
		{10, 20, 20, 100},
	}

	for _, tc := range testCases {
		npmi := calc.NPMI(tc.nAB, tc.nA, tc.nB, tc.N)
		if npmi < -1.0 || npmi > 1.0 {
			t.Errorf("NPMI out of range [-1, 1]: %f for case %+v", npmi, tc)
		}
	}
}

func TestEPMIScalesByWeight(t *testing.T) {
	calc := NewCalculator(1.0)

	N := int64(100)
	nA := int64(20)
	nB := int64(20)
	nAB := int64(15)

	weight := 0.5
	epmi := calc.EPMI(nAB, nA, nB, N, weight)
	expected := calc.PMI(nAB, nA, nB, N) * weight

	if math.Abs(epmi-expected) > 0.001 {
		t.Errorf("EPMI should be PMI * weight, got %f, expected %f", epmi, expected)
	}
}

func TestPMIZeroCorpus(t *testing.T) {
	calc := NewCalculator(1.0)
	if pmi := calc.PMI(0, 0, 0, 0); pmi != 0 {
		t.Error("PMI with zero corpus size should return 0")
	}
}

func TestPMIEpsilonDefault(t *testing.T) {
	calc := NewCalculator(-1.0)

	pmi := calc.PMI(5, 10, 10, 100)
	if math.IsNaN(pmi) {
		t.Error("PMI should not be NaN with negative epsilon (should default to 1.0)")
	}
}

func TestPMISymmetry(t *testing.T) {
	calc := NewCalculator(1.0)

	N := int64(100)
	nA := int64(20)
	nB := int64(15)
	nAB := int64(10)

	pmi1 := calc.PMI(nAB, nA, nB, N)
	pmi2 := calc.PMI(nAB, nB, nA, N)

	if math.Abs(pmi1-pmi2) > 0.0001 {
		t.Errorf("PMI should be symmetric, got %f and %f", pmi1, pmi2)
	}
}

func TestSalienceCommonTokenIsLow(t *testing.T) {
	calc := NewCalculator(1.0)

	common := calc.Salience(900, 1000)
	rare := calc.Salience(2, 1000)

	if common >= rare {
		t.Errorf("common token should have lower salience than rare token: common=%f rare=%f", common, rare)
	}
}

func TestSalienceZeroCorpus(t *testing.T) {
	calc := NewCalculator(1.0)
	if s := calc.Salience(0, 0); s != 0 {
		t.Errorf("Salience with zero corpus should be 0, got %f", s)
	}
}
