// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package surface provides the pixel buffers the graphics core draws into.
//
// A Surface owns one or more buffers (front, back, idle) per eye. Each buffer
// is backed by an Allocation taken from a Pool: video memory pools model
// accelerator-visible memory, the system pool hands out shared anonymous
// memory that the CPU and secondary processes can map.
//
// # Locking
//
// Every access to pixel memory happens through a BufferLock obtained with
// Surface.LockBuffer2 and returned with Surface.UnlockBuffer. Locks are taken
// on behalf of an Accessor (the CPU or the GPU). Several locks by the same
// accessor may coexist; a lock by another accessor waits while a conflicting
// lock (any write involved) is held.
//
// A GPU lock may leave a Fence behind for work the engine has not finished.
// CPU locks and Suspend wait for it before touching or freeing the memory.
//
//	m := surface.NewManager(surface.NewVideoPool(8<<20, 64), surface.NewSystemPool())
//	s, err := m.NewSurface(surface.Config{Width: 640, Height: 480, Format: gputypes.TextureFormatBGRA8Unorm})
//	if err != nil {
//	    return err
//	}
//	var lock surface.BufferLock
//	if err := s.LockBuffer2(surface.RoleBack, s.Flips(), surface.EyeLeft, surface.AccessorCPU, surface.AccessWrite, &lock); err != nil {
//	    return err
//	}
//	defer s.UnlockBuffer(&lock)
//
// # Suspension
//
// Suspend releases all buffers of a surface (for example while the display
// is switched away). A suspended surface reports zero buffers and refuses
// locks with ErrSuspended until Resume allocates fresh buffers.
package surface
