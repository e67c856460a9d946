package dashboard

import (
	"sync"
	"time"
)

// DefaultNotifyTimeout is how long a notification stays visible.
const DefaultNotifyTimeout = 4 * time.Second

// Notifier holds one notification at a time. A new message replaces the
// current one and restarts the dismiss timer.
type Notifier struct {
	mu       sync.Mutex
	timeout  time.Duration
	current  Notification
	gen      uint64
	timer    *time.Timer
	onChange func()
}

// NewNotifier creates a notifier. onChange is called, without any lock
// held, whenever the slot changes.
func NewNotifier(timeout time.Duration, onChange func()) *Notifier {
	if timeout <= 0 {
		timeout = DefaultNotifyTimeout
	}
	if onChange == nil {
		onChange = func() {}
	}
	return &Notifier{timeout: timeout, onChange: onChange}
}

// Notify shows msg and schedules its dismissal.
func (n *Notifier) Notify(sev Severity, msg string) {
	n.mu.Lock()
	n.gen++
	gen := n.gen
	n.current = Notification{Visible: true, Severity: sev, Message: msg}
	if n.timer != nil {
		n.timer.Stop()
	}
	n.timer = time.AfterFunc(n.timeout, func() { n.expire(gen) })
	n.mu.Unlock()

	n.onChange()
}

// Dismiss hides the current notification early.
func (n *Notifier) Dismiss() {
	n.mu.Lock()
	if !n.current.Visible {
		n.mu.Unlock()
		return
	}
	n.gen++
	n.current = Notification{}
	if n.timer != nil {
		n.timer.Stop()
		n.timer = nil
	}
	n.mu.Unlock()

	n.onChange()
}

// Current returns the slot's contents.
func (n *Notifier) Current() Notification {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.current
}

// Stop cancels the pending dismissal without notifying.
func (n *Notifier) Stop() {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.gen++
	if n.timer != nil {
		n.timer.Stop()
		n.timer = nil
	}
}

func (n *Notifier) expire(gen uint64) {
	n.mu.Lock()
	// a newer message or a dismissal already replaced this one
	if gen != n.gen {
		n.mu.Unlock()
		return
	}
	n.current = Notification{}
	n.timer = nil
	n.mu.Unlock()

	n.onChange()
}
