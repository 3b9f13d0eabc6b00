// Package notify holds the transient notification shown to a visitor.
package notify

import (
	"sync"
	"time"

	"souvenir-shop/internal/schedule"
)

// DefaultTTL is how long a notification stays visible.
const DefaultTTL = 3 * time.Second

type Severity string

const (
	Success Severity = "success"
	Error   Severity = "error"
)

// Notification is one message. Seq increases with every Show on a channel.
type Notification struct {
	Message  string   `json:"message"`
	Severity Severity `json:"severity"`
	Seq      uint64   `json:"seq"`
}

// Channel shows at most one notification at a time. A new notification replaces the
// current one, and only the timer of the current notification can dismiss it.
// Safe for concurrent use.
type Channel struct {
	mu      sync.Mutex
	sched   schedule.Scheduler
	ttl     time.Duration
	seq     uint64
	current *Notification
	timer   schedule.Timer
}

// NewChannel builds a channel. A nil scheduler uses the runtime timer; a non-positive ttl
// uses DefaultTTL.
func NewChannel(sched schedule.Scheduler, ttl time.Duration) *Channel {
	if sched == nil {
		sched = schedule.Real{}
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Channel{sched: sched, ttl: ttl}
}

// Show replaces the visible notification and schedules its dismissal.
func (c *Channel) Show(message string, severity Severity) Notification {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.timer != nil {
		c.timer.Stop()
	}
	c.seq++
	n := Notification{Message: message, Severity: severity, Seq: c.seq}
	c.current = &n
	seq := c.seq
	c.timer = c.sched.AfterFunc(c.ttl, func() { c.expire(seq) })
	return n
}

func (c *Channel) expire(seq uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.current == nil || c.current.Seq != seq {
		return
	}
	c.current = nil
	c.timer = nil
}

// Current returns the visible notification, if any.
func (c *Channel) Current() (Notification, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.current == nil {
		return Notification{}, false
	}
	return *c.current, true
}

// Dismiss hides the visible notification immediately.
func (c *Channel) Dismiss() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
	c.current = nil
}
