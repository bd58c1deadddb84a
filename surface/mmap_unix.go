// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

//go:build unix

package surface

import "golang.org/x/sys/unix"

// mapShared maps n bytes of anonymous memory shared with child processes.
func mapShared(n int) ([]byte, error) {
	if n == 0 {
		return nil, nil
	}
	return unix.Mmap(-1, 0, n, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_SHARED|unix.MAP_ANON)
}

func unmapShared(b []byte) {
	if len(b) == 0 {
		return
	}
	_ = unix.Munmap(b)
}
