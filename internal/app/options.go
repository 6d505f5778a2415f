package app

import (
	"time"

	"github.com/okian/tcxview/internal/domain/view"
	"github.com/okian/tcxview/pkg/logger"
)

// Option applies a configuration option to the Controller.
type Option func(*Controller)

// WithSettings sets the engine tunables.
func WithSettings(s view.Settings) Option {
	return func(c *Controller) {
		c.settings = s
	}
}

// WithQueueSize sets the maximum number of pending events.
func WithQueueSize(size int) Option {
	return func(c *Controller) {
		if size > 0 {
			c.queueSize = size
		}
	}
}

// WithLogger sets a custom logger for the controller.
func WithLogger(l logger.Logger) Option {
	return func(c *Controller) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithClock replaces time.Now, used for the initial calendar cursor.
func WithClock(now func() time.Time) Option {
	return func(c *Controller) {
		if now != nil {
			c.now = now
		}
	}
}
