// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package surface

import (
	"errors"
	"fmt"

	"github.com/gogpu/gputypes"
)

var (
	// ErrSuspended is returned when locking a surface without buffers.
	ErrSuspended = errors.New("surface: suspended")

	// ErrDestroyed is returned when using a destroyed surface.
	ErrDestroyed = errors.New("surface: destroyed")

	// ErrOutOfMemory is returned by pools that cannot satisfy an allocation.
	ErrOutOfMemory = errors.New("surface: out of pool memory")

	// ErrUnsupportedFormat is returned for pixel formats without a known size.
	ErrUnsupportedFormat = errors.New("surface: unsupported pixel format")

	// ErrInvalidConfig is returned for impossible surface configurations.
	ErrInvalidConfig = errors.New("surface: invalid configuration")

	// ErrNotLocked is returned when unlocking a lock this surface did not grant.
	ErrNotLocked = errors.New("surface: buffer not locked")
)

// Accessor identifies who touches pixel memory.
type Accessor uint8

const (
	// AccessorNone is the zero value and never holds locks.
	AccessorNone Accessor = iota
	// AccessorCPU is the software renderer and application code.
	AccessorCPU
	// AccessorGPU is the accelerator.
	AccessorGPU
	// AccessorLayer0 is the primary display layer (scanout).
	AccessorLayer0

	numAccessors
)

// String returns the accessor name.
func (a Accessor) String() string {
	switch a {
	case AccessorCPU:
		return "cpu"
	case AccessorGPU:
		return "gpu"
	case AccessorLayer0:
		return "layer0"
	default:
		return "none"
	}
}

// AccessFlags describe how a lock uses the buffer.
type AccessFlags uint8

const (
	// AccessRead allows reading pixels.
	AccessRead AccessFlags = 1 << iota
	// AccessWrite allows writing pixels.
	AccessWrite
)

// Policy is the residency policy of a buffer.
type Policy uint8

const (
	// PolicyVideoLow prefers system memory but may live in video memory.
	PolicyVideoLow Policy = iota
	// PolicyVideoHigh prefers video memory and falls back to system memory.
	PolicyVideoHigh
	// PolicyVideoOnly requires video memory.
	PolicyVideoOnly
	// PolicySystemOnly never leaves system memory.
	PolicySystemOnly
)

// String returns the policy name.
func (p Policy) String() string {
	switch p {
	case PolicyVideoLow:
		return "video-low"
	case PolicyVideoHigh:
		return "video-high"
	case PolicyVideoOnly:
		return "video-only"
	case PolicySystemOnly:
		return "system-only"
	default:
		return fmt.Sprintf("policy(%d)", uint8(p))
	}
}

// BufferRole selects a buffer relative to the current flip count.
type BufferRole uint8

const (
	// RoleFront is the displayed buffer.
	RoleFront BufferRole = iota
	// RoleBack is the buffer being rendered.
	RoleBack
	// RoleIdle is the third buffer of triple buffered surfaces.
	RoleIdle
)

// Eye selects the view of stereo surfaces.
type Eye uint8

const (
	// EyeLeft is the only eye of mono surfaces.
	EyeLeft Eye = iota
	// EyeRight is the second view of stereo surfaces.
	EyeRight
)

// Config describes a surface.
type Config struct {
	Width, Height int

	// Format is the pixel format. Undefined selects BGRA8.
	Format gputypes.TextureFormat

	// Buffers is the number of buffers per eye (1 to 3). Zero means 1.
	Buffers int

	// Policy is the residency policy of all buffers.
	Policy Policy

	// Stereo allocates a second set of buffers for EyeRight.
	Stereo bool
}

// BytesPerPixel returns the pixel size of the formats the core can address,
// or 0 if the format is not supported.
func BytesPerPixel(format gputypes.TextureFormat) int {
	switch format {
	case gputypes.TextureFormatRGBA8Unorm, gputypes.TextureFormatBGRA8Unorm:
		return 4
	case gputypes.TextureFormatR8Unorm:
		return 1
	default:
		return 0
	}
}

func (c Config) normalized() (Config, error) {
	if c.Format == gputypes.TextureFormatUndefined {
		c.Format = gputypes.TextureFormatBGRA8Unorm
	}
	if c.Buffers == 0 {
		c.Buffers = 1
	}
	if c.Width <= 0 || c.Height <= 0 || c.Buffers < 0 || c.Buffers > 3 {
		return c, fmt.Errorf("%w: %dx%d with %d buffers", ErrInvalidConfig, c.Width, c.Height, c.Buffers)
	}
	if BytesPerPixel(c.Format) == 0 {
		return c, fmt.Errorf("%w: %v", ErrUnsupportedFormat, c.Format)
	}
	return c, nil
}
