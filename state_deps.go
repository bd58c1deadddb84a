package gfxcard

// stateInvalidation maps state changes to the functions whose check result
// they can change. Clip, color and color keys are absent: drivers must
// accept any value and only need SetState to program them.
var stateInvalidation = []struct {
	mod     StateModFlags
	recheck AccelMask
}{
	{ModDestination | ModSrcBlend | ModDstBlend | ModRenderOptions | ModMatrix, AccelAll},
	{ModSource | ModBlittingFlags | ModSourceMask | ModSourceMaskVals, AccelAllBlit},
	{ModSource2, AccelBlit2},
	{ModDrawingFlags, AccelAllDraw},
}

// invalidated returns the functions to recheck after the given changes.
func invalidated(mod StateModFlags) AccelMask {
	var m AccelMask
	for _, dep := range stateInvalidation {
		if mod&dep.mod != 0 {
			m |= dep.recheck
		}
	}
	return m
}
