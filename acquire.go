package gfxcard

import "github.com/gogpu/gfxcard/surface"

// lockChain takes buffer locks in order and releases them in reverse if
// the chain is abandoned before commit.
type lockChain struct {
	s    *State
	held []chainLock
	log  func(msg string, args ...any)
}

type chainLock struct {
	surface Surface
	lock    *surface.BufferLock
	flag    stateFlags
}

func (c *lockChain) lock(srf Surface, role surface.BufferRole, eye surface.Eye,
	accessor surface.Accessor, access surface.AccessFlags, l *surface.BufferLock, flag stateFlags) bool {
	if err := srf.LockBuffer2(role, srf.Flips(), eye, accessor, access, l); err != nil {
		c.log("gfxcard: buffer lock failed", "accessor", accessor, "err", err)
		return false
	}
	c.held = append(c.held, chainLock{surface: srf, lock: l, flag: flag})
	return true
}

// commit hands the locks over to the state.
func (c *lockChain) commit() {
	for _, h := range c.held {
		c.s.flags |= h.flag
	}
	c.held = nil
}

// unwind releases everything not committed.
func (c *lockChain) unwind() {
	for i := len(c.held) - 1; i >= 0; i-- {
		h := c.held[i]
		if err := h.surface.UnlockBuffer(h.lock); err != nil {
			c.log("gfxcard: buffer unlock failed", "err", err)
		}
	}
	c.held = nil
}

// lockBuffers locks destination, source, mask and source2 as accel needs
// them, in that order. On failure nothing stays locked.
func (c *Card) lockBuffers(s *State, accel AccelMask, accessor surface.Accessor) bool {
	chain := lockChain{s: s, log: c.log.Debug}
	defer chain.unwind()

	if !chain.lock(s.destination, s.to, s.toEye, accessor, s.access(accel), &s.dst, stateDestinationLocked) {
		return false
	}
	if accel.Blitting() {
		if !chain.lock(s.source, s.from, s.fromEye, accessor, surface.AccessRead, &s.src, stateSourceLocked) {
			return false
		}
		if s.blittingFlags.masked() &&
			!chain.lock(s.sourceMask, surface.RoleFront, surface.EyeLeft, accessor, surface.AccessRead, &s.srcMask, stateSourceMaskLocked) {
			return false
		}
		if s.usesSource2(accel) &&
			!chain.lock(s.source2, surface.RoleFront, surface.EyeLeft, accessor, surface.AccessRead, &s.src2, stateSource2Locked) {
			return false
		}
	}
	chain.commit()
	return true
}

// unlockBuffers releases the buffers locked by lockBuffers, attaching
// fence to them when it is not nil.
func (c *Card) unlockBuffers(s *State, fence surface.Fence) {
	unlock := func(srf Surface, l *surface.BufferLock, flag stateFlags) {
		if s.flags&flag == 0 {
			return
		}
		l.Fence = fence
		if err := srf.UnlockBuffer(l); err != nil {
			c.log.Warn("gfxcard: buffer unlock failed", "err", err)
		}
		s.flags &^= flag
	}
	unlock(s.destination, &s.dst, stateDestinationLocked)
	unlock(s.source, &s.src, stateSourceLocked)
	unlock(s.sourceMask, &s.srcMask, stateSourceMaskLocked)
	unlock(s.source2, &s.src2, stateSource2Locked)
}

// StateAcquire locks the buffers for accel, takes the hardware lock and
// programs the hardware. It returns false with nothing held if any step
// fails. Every successful call must be followed by StateRelease.
func (c *Card) StateAcquire(s *State, accel AccelMask) bool {
	if !c.lockBuffers(s, accel, surface.AccessorGPU) {
		return false
	}
	if err := c.Lock(LockNone); err != nil {
		c.log.Warn("gfxcard: hardware lock failed, drawing in software", "err", err)
		c.unlockBuffers(s, nil)
		return false
	}

	sh := &c.shared
	if !sh.binding.Holds(s) {
		s.modHW |= ModAll
		s.set = 0
		sh.binding = bind(s)
		c.stats.switches.Add(1)
	}

	if id := s.dst.Allocation.ID; sh.lastAllocation != id {
		sh.lastAllocation = id
		c.emitCommands()
	}

	if s.modHW != 0 || s.set&accel == 0 {
		c.stats.setStates.Add(1)
		s.set = c.driver.SetState(s, accel)
	}
	s.modHW = 0
	return true
}

// StateRelease finishes an accelerated operation started by StateAcquire.
func (c *Card) StateRelease(s *State) {
	if !c.opts.deferEmit {
		c.emitCommands()
	}
	c.shared.serial++
	s.serial = c.shared.serial
	c.shared.pendingOps = true
	c.Unlock()

	c.unlockBuffers(s, serialFence{card: c, serial: s.serial})
}

// gAcquire prepares the software renderer for accel: pending engine work
// is finished and the buffers are locked for the CPU.
func (c *Card) gAcquire(s *State, accel AccelMask) bool {
	if c.opts.hardwareOnly {
		c.log.Debug("gfxcard: software fallback disabled", "accel", accel)
		return false
	}
	if s.destination == nil {
		panic("gfxcard: state has no destination")
	}
	w, h := s.destination.Size()
	s.clampClip(w, h)
	if s.clip.Empty() {
		return false
	}
	if accel.Blitting() && (s.source == nil ||
		(s.blittingFlags.masked() && s.sourceMask == nil) ||
		(s.usesSource2(accel) && s.source2 == nil)) {
		return false
	}

	c.syncPending()

	c.soft.Lock()
	if !c.lockBuffers(s, accel, surface.AccessorCPU) {
		c.soft.Unlock()
		return false
	}
	return true
}

// gRelease ends software rendering started by gAcquire.
func (c *Card) gRelease(s *State) {
	c.unlockBuffers(s, nil)
	c.soft.Unlock()
}
