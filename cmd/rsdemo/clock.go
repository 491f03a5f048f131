package main

import (
	"time"

	"github.com/loov/hrtime"
)

// clock paces the event loop and measures frame times.
type clock struct {
	fps    int
	ticker *time.Ticker
	last   time.Duration
	frames int
	total  time.Duration
}

func newClock(fps int) *clock {
	interval := time.Nanosecond
	if fps > 0 {
		interval = time.Second / time.Duration(fps)
	}
	return &clock{
		fps:    fps,
		ticker: time.NewTicker(interval),
		last:   hrtime.Now(),
	}
}

// C delivers one tick per frame.
func (c *clock) C() <-chan time.Time { return c.ticker.C }

// Frame records the end of a frame and returns its duration.
func (c *clock) Frame() time.Duration {
	now := hrtime.Now()
	d := now - c.last
	c.last = now
	c.frames++
	c.total += d
	return d
}

// Average is the mean frame time so far.
func (c *clock) Average() time.Duration {
	if c.frames == 0 {
		return 0
	}
	return c.total / time.Duration(c.frames)
}

func (c *clock) Stop() { c.ticker.Stop() }
