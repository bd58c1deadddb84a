package gfxcard

import (
	"log/slog"
	"time"

	"github.com/gogpu/gpucontext"
)

// CardOption configures a Card during creation.
//
// Example:
//
//	card, err := gfxcard.Open(
//	    gfxcard.WithDriverName("virtual"),
//	    gfxcard.WithLockTimeout(time.Second),
//	)
type CardOption func(*cardOptions)

// cardOptions holds optional configuration for Card creation.
type cardOptions struct {
	driverName   string
	registry     *Registry
	lockTimeout  time.Duration
	softwareOnly bool
	hardwareOnly bool
	deferEmit    bool
	provider     gpucontext.DeviceProvider
	logger       *slog.Logger
}

// defaultOptions returns the default card options.
func defaultOptions() cardOptions {
	return cardOptions{
		registry: globalRegistry,
	}
}

// WithDriverName makes Open use the named driver instead of probing.
func WithDriverName(name string) CardOption {
	return func(o *cardOptions) {
		o.driverName = name
	}
}

// WithRegistry makes Open look drivers up in r instead of the global
// registry.
func WithRegistry(r *Registry) CardOption {
	return func(o *cardOptions) {
		o.registry = r
	}
}

// WithLockTimeout bounds how long acquiring the hardware lock may block.
// An operation that times out is drawn in software. Zero waits forever.
func WithLockTimeout(d time.Duration) CardOption {
	return func(o *cardOptions) {
		o.lockTimeout = d
	}
}

// WithSoftwareOnly disables all acceleration.
func WithSoftwareOnly() CardOption {
	return func(o *cardOptions) {
		o.softwareOnly = true
	}
}

// WithHardwareOnly disables the software fallback. Operations the
// hardware cannot do are dropped.
func WithHardwareOnly() CardOption {
	return func(o *cardOptions) {
		o.hardwareOnly = true
	}
}

// WithDeferredEmit keeps queued commands in the driver after each
// operation. They are emitted on Flush, Sync, a destination change or
// before software rendering.
func WithDeferredEmit() CardOption {
	return func(o *cardOptions) {
		o.deferEmit = true
	}
}

// WithDeviceProvider shares an externally created GPU device. The
// provider's surface format becomes the card's primary format.
func WithDeviceProvider(p gpucontext.DeviceProvider) CardOption {
	return func(o *cardOptions) {
		o.provider = p
	}
}

// WithLogger sets the logger of this card and its driver. Without it the
// package logger is used.
func WithLogger(l *slog.Logger) CardOption {
	return func(o *cardOptions) {
		o.logger = l
	}
}
