package gfxcard

import "github.com/gogpu/gfxcard/surface"

// StateCheck reports whether accel can be done by the hardware in the
// current state. accel must name exactly one function and the state must
// be locked.
//
// The driver is only asked when the answer is not known yet: each state
// change clears the check results it can affect, and the driver's answer
// is remembered until then. Changes are handed on to ModifiedHW so the
// next SetState programs them.
func (c *Card) StateCheck(s *State, accel AccelMask) bool {
	if !accel.single() {
		panic("gfxcard: StateCheck needs exactly one function, got " + accel.String())
	}
	if s.destination == nil {
		panic("gfxcard: state has no destination")
	}
	c.stats.checks.Add(1)

	w, h := s.destination.Size()
	s.clampClip(w, h)

	if c.opts.softwareOnly || c.closed.Load() {
		return false
	}
	if s.destination.NumBuffers() == 0 {
		return false
	}
	if accel.Blitting() {
		if s.source == nil {
			return false
		}
		if s.blittingFlags.masked() && s.sourceMask == nil {
			return false
		}
		if s.usesSource2(accel) && s.source2 == nil {
			return false
		}
	}

	if recheck := invalidated(s.modified); recheck != 0 {
		s.checked &^= recheck
	}
	s.accel &= s.checked

	if s.checked&accel == 0 {
		c.stats.driverChecks.Add(1)
		got := c.driver.CheckState(s, accel) & c.caps.Accel & c.primitives
		s.accel |= got
		s.checked |= accel | got
	}

	s.modHW |= s.modified
	s.modified = 0

	if s.accel&accel == 0 {
		return false
	}
	return c.reachable(s, accel)
}

// reachable checks whether the engine can access the buffers involved.
func (c *Card) reachable(s *State, accel AccelMask) bool {
	flags := c.caps.Flags
	if s.destination.Policy(s.to, s.toEye) == surface.PolicySystemOnly {
		if flags&CCFWriteSysMem == 0 {
			return false
		}
		if s.access(accel)&surface.AccessRead != 0 && flags&CCFReadSysMem == 0 {
			return false
		}
	}
	if accel.Blitting() && flags&CCFReadSysMem == 0 {
		if s.source.Policy(s.from, s.fromEye) == surface.PolicySystemOnly {
			return false
		}
		if s.blittingFlags.masked() && s.sourceMask.Policy(surface.RoleFront, surface.EyeLeft) == surface.PolicySystemOnly {
			return false
		}
		if s.usesSource2(accel) && s.source2.Policy(surface.RoleFront, surface.EyeLeft) == surface.PolicySystemOnly {
			return false
		}
	}
	return true
}
