// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

//go:build !unix

package surface

func mapShared(n int) ([]byte, error) {
	return make([]byte, n), nil
}

func unmapShared([]byte) {}
