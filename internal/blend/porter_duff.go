package blend

// Rule is a Porter-Duff compositing rule.
type Rule uint8

// Porter-Duff rules. RuleNone selects classic alpha blending.
const (
	RuleNone Rule = iota
	RuleClear
	RuleSrc
	RuleSrcOver
	RuleDstOver
	RuleSrcIn
	RuleDstIn
	RuleSrcOut
	RuleDstOut
	RuleSrcAtop
	RuleDstAtop
	RuleAdd
	RuleXor
	RuleDst
)

// Factors returns the source and destination factors implementing a rule on
// premultiplied colors.
func (r Rule) Factors() (src, dst Factor) {
	switch r {
	case RuleClear:
		return FactorZero, FactorZero
	case RuleSrc:
		return FactorOne, FactorZero
	case RuleSrcOver:
		return FactorOne, FactorInvSrcAlpha
	case RuleDstOver:
		return FactorInvDstAlpha, FactorOne
	case RuleSrcIn:
		return FactorDstAlpha, FactorZero
	case RuleDstIn:
		return FactorZero, FactorSrcAlpha
	case RuleSrcOut:
		return FactorInvDstAlpha, FactorZero
	case RuleDstOut:
		return FactorZero, FactorInvSrcAlpha
	case RuleSrcAtop:
		return FactorDstAlpha, FactorInvSrcAlpha
	case RuleDstAtop:
		return FactorInvDstAlpha, FactorSrcAlpha
	case RuleAdd:
		return FactorOne, FactorOne
	case RuleXor:
		return FactorInvDstAlpha, FactorInvSrcAlpha
	case RuleDst:
		return FactorZero, FactorOne
	default:
		return FactorSrcAlpha, FactorInvSrcAlpha
	}
}
