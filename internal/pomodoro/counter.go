package pomodoro

import (
	"log/slog"

	"github.com/sadopc/biome/internal/store"
)

// Counter is the weekly tally of completed work sessions. It is separate
// from the session count that drives long-break cadence.
type Counter struct {
	kv     store.KV
	logger *slog.Logger
	value  int
}

func NewCounter(kv store.KV, logger *slog.Logger) *Counter {
	if logger == nil {
		logger = slog.Default()
	}
	c := &Counter{kv: kv, logger: logger.With("component", "pomodoro-counter")}
	c.value = store.Load(kv, store.KeyPomodoroCount, 0, c.logger)
	if c.value < 0 {
		c.value = 0
	}
	return c
}

func (c *Counter) Value() int { return c.value }

func (c *Counter) Increment() int {
	c.value++
	_ = store.Save(c.kv, store.KeyPomodoroCount, c.value, c.logger)
	return c.value
}

// Reset zeroes the counter and returns the value it held.
func (c *Counter) Reset() int {
	prev := c.value
	c.value = 0
	_ = store.Save(c.kv, store.KeyPomodoroCount, c.value, c.logger)
	return prev
}
