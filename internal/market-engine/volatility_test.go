package marketengine

import (
	"math"
	"testing"

	"pgregory.net/rapid"
)

func TestNewVolatilityState_SeededFromInitialPrice(t *testing.T) {
	p := DefaultParams()
	st := NewVolatilityState(250, p)
	if st.Variance != p.Sigma0*p.Sigma0 {
		t.Errorf("expected variance %v, got %v", p.Sigma0*p.Sigma0, st.Variance)
	}
	if math.Abs(st.FundamentalLog-math.Log(250)) > 1e-12 {
		t.Errorf("expected fundamental log(250), got %v", st.FundamentalLog)
	}
	if st.Sentiment != 0 || st.LastReturn != 0 {
		t.Error("expected zero sentiment and last return")
	}
}

func TestNextVariance_GarchRecurrence(t *testing.T) {
	p := DefaultParams()
	got := NextVariance(1e-5, 0.01, false, p)
	want := p.GarchW + p.GarchA*0.01*0.01 + p.GarchB*1e-5
	if math.Abs(got-want) > 1e-18 {
		t.Errorf("expected %v, got %v", want, got)
	}
}

func TestNextVariance_StaysPositive(t *testing.T) {
	p := DefaultParams()
	rapid.Check(t, func(t *rapid.T) {
		v := rapid.Float64Range(0, 1).Draw(t, "variance")
		stable := rapid.Bool().Draw(t, "stablecoin")
		returns := rapid.SliceOfN(rapid.Float64Range(-5, 5), 1, 500).Draw(t, "returns")

		for _, r := range returns {
			v = NextVariance(v, r, stable, p)
			if !(v > 0) {
				t.Fatalf("variance not strictly positive: %v", v)
			}
		}
	})
}

func TestNextVariance_StablecoinNeverAbovePlain(t *testing.T) {
	p := DefaultParams()
	rapid.Check(t, func(t *rapid.T) {
		v := rapid.Float64Range(0, 1).Draw(t, "variance")
		r := rapid.Float64Range(-1, 1).Draw(t, "return")

		if s, n := NextVariance(v, r, true, p), NextVariance(v, r, false, p); s > n {
			t.Fatalf("stablecoin variance %v exceeds plain %v", s, n)
		}
	})
}

func TestNextVariance_NonFiniteFallsBack(t *testing.T) {
	p := DefaultParams()
	if v := NextVariance(math.Inf(1), 0, false, p); math.IsInf(v, 0) || v <= 0 {
		t.Errorf("expected finite positive variance, got %v", v)
	}
}

func TestAR1_Clipped(t *testing.T) {
	if got := ar1(0.019, 1, 0.01, 0.02); got != 0.02 {
		t.Errorf("expected clip at 0.02, got %v", got)
	}
	if got := ar1(-0.019, 1, -0.01, 0.02); got != -0.02 {
		t.Errorf("expected clip at -0.02, got %v", got)
	}
}
