package blend

import "testing"

func TestRuleFactors(t *testing.T) {
	s := Pixel{R: 200, G: 100, B: 0, A: 200}
	d := Pixel{R: 0, G: 50, B: 250, A: 255}

	tests := []struct {
		rule Rule
		want Pixel
	}{
		{RuleClear, Pixel{}},
		{RuleSrc, s},
		{RuleDst, d},
		// Da is 255, so S*Da is S and S*(1-Da) vanishes.
		{RuleSrcIn, s},
		{RuleSrcOut, Pixel{}},
		{RuleAdd, Pixel{200, 150, 250, 255}},
		// D * (1 - Sa) with 1 - Sa = 55.
		{RuleDstOut, Pixel{0, 11, 54, 55}},
	}
	for _, tt := range tests {
		fs, fd := tt.rule.Factors()
		if got := Apply(fs, fd, s, d); got != tt.want {
			t.Errorf("rule %d: got %+v, want %+v", tt.rule, got, tt.want)
		}
	}
}

func TestRuleNoneIsAlphaBlend(t *testing.T) {
	fs, fd := RuleNone.Factors()
	if fs != FactorSrcAlpha || fd != FactorInvSrcAlpha {
		t.Errorf("RuleNone = %v/%v", fs, fd)
	}
}

func TestSrcAlphaSat(t *testing.T) {
	got := Apply(FactorSrcAlphaSat, FactorOne, Pixel{255, 255, 255, 200}, Pixel{0, 0, 0, 100})
	// min(200, 155) = 155 for color, 1 for alpha.
	if got.R != 155 || got.A != 255 {
		t.Errorf("got %+v", got)
	}
}

func TestReadsDestination(t *testing.T) {
	if ReadsDestination(FactorOne, FactorZero) {
		t.Error("copy reads destination")
	}
	if !ReadsDestination(FactorSrcAlpha, FactorInvSrcAlpha) {
		t.Error("alpha blend does not read destination")
	}
	if !ReadsDestination(FactorDstAlpha, FactorZero) {
		t.Error("dst alpha factor does not read destination")
	}
}
