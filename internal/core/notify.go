package core

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Rorical/RoriKB/internal/models"
)

const NotificationTTL = 5 * time.Second

// Notifier holds the single visible notification. Each one hides itself
// after the TTL unless dismissed first; dismissing is keyed by ID, so a late
// timer or a repeated dismiss never touches a newer notification.
type Notifier struct {
	mu       sync.Mutex
	current  *models.Notification
	timer    *time.Timer
	ttl      time.Duration
	onChange func()
	stopped  bool
}

func NewNotifier(ttl time.Duration, onChange func()) *Notifier {
	if onChange == nil {
		onChange = func() {}
	}
	return &Notifier{ttl: ttl, onChange: onChange}
}

// Show replaces the current notification and starts its timer.
func (n *Notifier) Show(text string, severity models.Severity) models.Notification {
	note := models.Notification{
		ID:       uuid.NewString(),
		Text:     text,
		Severity: severity,
	}

	n.mu.Lock()
	if n.timer != nil {
		n.timer.Stop()
		n.timer = nil
	}
	n.current = &note
	if !n.stopped && n.ttl > 0 {
		id := note.ID
		n.timer = time.AfterFunc(n.ttl, func() { n.Dismiss(id) })
	}
	n.mu.Unlock()

	n.onChange()
	return note
}

// Dismiss hides notification id if it is still the visible one and reports
// whether anything changed.
func (n *Notifier) Dismiss(id string) bool {
	n.mu.Lock()
	if n.current == nil || n.current.ID != id {
		n.mu.Unlock()
		return false
	}
	n.current = nil
	if n.timer != nil {
		n.timer.Stop()
		n.timer = nil
	}
	n.mu.Unlock()

	n.onChange()
	return true
}

func (n *Notifier) Current() *models.Notification {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.current == nil {
		return nil
	}
	note := *n.current
	return &note
}

// Stop cancels the pending timer. The current notification stays visible.
func (n *Notifier) Stop() {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.stopped = true
	if n.timer != nil {
		n.timer.Stop()
		n.timer = nil
	}
}
