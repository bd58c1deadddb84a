// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package surface

import (
	"fmt"
	"image"
	"sync"
	"sync/atomic"

	"github.com/gogpu/gputypes"
)

var surfaceIDs atomic.Uint64

// Manager creates surfaces from a video and a system pool.
type Manager struct {
	video  Pool
	system Pool
}

// NewManager creates a manager. A nil video pool forces every surface into
// system memory; a nil system pool is replaced by NewSystemPool.
func NewManager(video, system Pool) *Manager {
	if system == nil {
		system = NewSystemPool()
	}
	return &Manager{video: video, system: system}
}

// NewSurface creates a surface and allocates its buffers.
func (m *Manager) NewSurface(cfg Config) (*Surface, error) {
	cfg, err := cfg.normalized()
	if err != nil {
		return nil, err
	}
	s := &Surface{
		id:      surfaceIDs.Add(1),
		manager: m,
		config:  cfg,
	}
	s.cond = sync.NewCond(&s.mu)
	if err := s.allocate(); err != nil {
		return nil, err
	}
	return s, nil
}

// pools returns the pools to try, in order, for a policy.
func (m *Manager) pools(p Policy) []Pool {
	switch p {
	case PolicySystemOnly:
		return []Pool{m.system}
	case PolicyVideoOnly:
		if m.video == nil {
			return nil
		}
		return []Pool{m.video}
	case PolicyVideoHigh:
		if m.video == nil {
			return []Pool{m.system}
		}
		return []Pool{m.video, m.system}
	default:
		if m.video == nil {
			return []Pool{m.system}
		}
		return []Pool{m.system, m.video}
	}
}

// Surface is a set of pixel buffers with a common size and format.
//
// All methods are safe for concurrent use.
type Surface struct {
	id      uint64
	manager *Manager

	mu        sync.Mutex
	cond      *sync.Cond
	config    Config
	buffers   [2][]*Buffer
	flips     uint32
	destroyed bool
}

// ID returns the process-unique surface id.
func (s *Surface) ID() uint64 { return s.id }

// Config returns the surface configuration.
func (s *Surface) Config() Config {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.config
}

// Size returns the surface dimensions.
func (s *Surface) Size() (width, height int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.config.Width, s.config.Height
}

// Format returns the pixel format.
func (s *Surface) Format() gputypes.TextureFormat {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.config.Format
}

// NumBuffers returns the number of allocated buffers per eye. It is zero
// while the surface is suspended or after Destroy.
func (s *Surface) NumBuffers() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.buffers[EyeLeft])
}

// Flips returns the flip counter.
func (s *Surface) Flips() uint32 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.flips
}

// Flip advances the flip counter, rotating buffer roles.
func (s *Surface) Flip() {
	s.mu.Lock()
	s.flips++
	s.mu.Unlock()
}

// Policy returns the residency policy of the buffer with the given role.
func (s *Surface) Policy(role BufferRole, eye Eye) Policy {
	s.mu.Lock()
	defer s.mu.Unlock()
	if b := s.bufferLocked(role, s.flips, eye); b != nil {
		return b.policy
	}
	return s.config.Policy
}

// Buffer returns the buffer with the given role, or nil while suspended.
func (s *Surface) Buffer(role BufferRole, eye Eye) *Buffer {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.bufferLocked(role, s.flips, eye)
}

func (s *Surface) bufferLocked(role BufferRole, flips uint32, eye Eye) *Buffer {
	bufs := s.buffers[eye&1]
	if len(bufs) == 0 {
		return nil
	}
	return bufs[(uint32(role)+flips)%uint32(len(bufs))]
}

// allocate creates the buffers. Caller holds no lock or is constructing s.
func (s *Surface) allocate() error {
	cfg := s.config
	rowBytes := cfg.Width * BytesPerPixel(cfg.Format)
	pools := s.manager.pools(cfg.Policy)
	if len(pools) == 0 {
		return fmt.Errorf("%w: no pool for %v", ErrOutOfMemory, cfg.Policy)
	}

	eyes := 1
	if cfg.Stereo {
		eyes = 2
	}
	var allocated [2][]*Buffer
	for e := range eyes {
		for i := range cfg.Buffers {
			var (
				alloc *Allocation
				err   error
			)
			for _, p := range pools {
				if alloc, err = p.Allocate(rowBytes, cfg.Height); err == nil {
					break
				}
			}
			if err != nil {
				freeBuffers(allocated)
				return err
			}
			allocated[e] = append(allocated[e], &Buffer{
				surface: s,
				index:   i,
				eye:     Eye(e),
				policy:  cfg.Policy,
				alloc:   alloc,
			})
		}
	}

	s.mu.Lock()
	s.buffers = allocated
	s.mu.Unlock()
	return nil
}

func freeBuffers(bufs [2][]*Buffer) {
	for _, eye := range bufs {
		for _, b := range eye {
			b.alloc.pool.Free(b.alloc)
		}
	}
}

// Suspend frees all buffers after waiting for outstanding locks and
// queued accelerator work.
func (s *Surface) Suspend() {
	s.mu.Lock()
	for {
		for s.lockedLocked() {
			s.cond.Wait()
		}
		if !s.waitFencesLocked(s.allBuffersLocked()...) {
			break
		}
	}
	bufs := s.buffers
	s.buffers = [2][]*Buffer{}
	s.mu.Unlock()
	freeBuffers(bufs)
}

// Resume reallocates the buffers of a suspended surface.
func (s *Surface) Resume() error {
	s.mu.Lock()
	if s.destroyed {
		s.mu.Unlock()
		return ErrDestroyed
	}
	if len(s.buffers[EyeLeft]) > 0 {
		s.mu.Unlock()
		return nil
	}
	s.mu.Unlock()
	return s.allocate()
}

// Destroy frees all buffers. Further locks fail with ErrDestroyed.
func (s *Surface) Destroy() {
	s.Suspend()
	s.mu.Lock()
	s.destroyed = true
	s.cond.Broadcast()
	s.mu.Unlock()
}

func (s *Surface) allBuffersLocked() []*Buffer {
	var all []*Buffer
	for _, eye := range s.buffers {
		all = append(all, eye...)
	}
	return all
}

// waitFencesLocked waits for the fences attached to bufs with s.mu
// released and reports whether there were any. Fences attached again
// while waiting are kept.
func (s *Surface) waitFencesLocked(bufs ...*Buffer) bool {
	type pending struct {
		b   *Buffer
		f   Fence
		gen uint64
	}
	var ps []pending
	for _, b := range bufs {
		if b.fence != nil {
			ps = append(ps, pending{b, b.fence, b.fenceGen})
		}
	}
	if len(ps) == 0 {
		return false
	}

	s.mu.Unlock()
	for _, p := range ps {
		p.f.Wait()
	}
	s.mu.Lock()

	for _, p := range ps {
		if p.b.fenceGen == p.gen {
			p.b.fence = nil
		}
	}
	return true
}

func (s *Surface) lockedLocked() bool {
	for _, eye := range s.buffers {
		for _, b := range eye {
			if b.locked() {
				return true
			}
		}
	}
	return false
}

// Image copies the front buffer into an RGBA image.
func (s *Surface) Image() (*image.RGBA, error) {
	var lock BufferLock
	if err := s.LockBuffer2(RoleFront, s.Flips(), EyeLeft, AccessorCPU, AccessRead, &lock); err != nil {
		return nil, err
	}
	defer func() { _ = s.UnlockBuffer(&lock) }()

	w, h := s.Size()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := range h {
		src := lock.Pix[y*lock.Pitch:]
		dst := img.Pix[y*img.Stride:]
		for x := range w {
			d := dst[x*4 : x*4+4]
			switch lock.Format {
			case gputypes.TextureFormatBGRA8Unorm:
				p := src[x*4 : x*4+4]
				d[0], d[1], d[2], d[3] = p[2], p[1], p[0], p[3]
			case gputypes.TextureFormatRGBA8Unorm:
				copy(d, src[x*4:x*4+4])
			case gputypes.TextureFormatR8Unorm:
				d[0], d[1], d[2], d[3] = 0xff, 0xff, 0xff, src[x]
			}
		}
	}
	return img, nil
}

// LockBuffer2 locks the buffer selected by role, flip count and eye for the
// accessor. It blocks while another accessor holds a conflicting lock. CPU
// locks also wait for accelerator work attached to the buffer.
func (s *Surface) LockBuffer2(role BufferRole, flips uint32, eye Eye, accessor Accessor, access AccessFlags, lock *BufferLock) error {
	if accessor == AccessorNone || accessor >= numAccessors {
		return fmt.Errorf("surface: invalid accessor %d", accessor)
	}
	if eye == EyeRight && !s.Config().Stereo {
		return fmt.Errorf("%w: right eye of a mono surface", ErrInvalidConfig)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for {
		if s.destroyed {
			return ErrDestroyed
		}
		b := s.bufferLocked(role, flips, eye)
		if b == nil {
			return ErrSuspended
		}
		if accessor == AccessorCPU && s.waitFencesLocked(b) {
			continue
		}
		if !b.conflicts(accessor, access) {
			b.hold(accessor, access)
			*lock = BufferLock{
				Buffer:     b,
				Allocation: b.alloc,
				Accessor:   accessor,
				Access:     access,
				Pix:        b.alloc.Pix,
				Pitch:      b.alloc.Pitch,
				Format:     s.config.Format,
				Width:      s.config.Width,
				Height:     s.config.Height,
			}
			return nil
		}
		s.cond.Wait()
	}
}

// UnlockBuffer releases a lock obtained by LockBuffer2 and clears it.
func (s *Surface) UnlockBuffer(lock *BufferLock) error {
	if lock.Buffer == nil {
		return ErrNotLocked
	}
	if lock.Buffer.surface != s {
		return fmt.Errorf("%w: lock belongs to another surface", ErrNotLocked)
	}

	s.mu.Lock()
	b := lock.Buffer
	b.drop(lock.Accessor, lock.Access)
	if lock.Fence != nil {
		b.fence = lock.Fence
		b.fenceGen++
	}
	s.cond.Broadcast()
	s.mu.Unlock()

	*lock = BufferLock{}
	return nil
}
