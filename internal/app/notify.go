package app

import "sync"

// Severity classifies a user-facing notification.
type Severity int

const (
	// SeverityInfo is for routine status messages.
	SeverityInfo Severity = iota

	// SeverityWarn is for recoverable problems worth surfacing.
	SeverityWarn

	// SeverityError is for failed operations.
	SeverityError
)

// String returns the severity name.
func (s Severity) String() string {
	switch s {
	case SeverityInfo:
		return "info"
	case SeverityWarn:
		return "warn"
	case SeverityError:
		return "error"
	default:
		return "unknown"
	}
}

// Notification is a message destined for the user, not the log.
type Notification struct {
	Severity Severity
	Message  string
}

// Observer is called for each published notification.
type Observer func(n Notification)

// Subscription represents an active observer subscription.
type Subscription struct {
	id       uint64
	notifier *Notifier
}

// Unsubscribe removes this subscription.
func (s *Subscription) Unsubscribe() {
	if s.notifier != nil {
		s.notifier.unsubscribe(s.id)
	}
}

// Notifier fans notifications out to subscribed observers. Delivery
// is synchronous on the publishing goroutine.
type Notifier struct {
	mu        sync.RWMutex
	observers map[uint64]Observer
	nextID    uint64
}

// NewNotifier creates an empty notifier.
func NewNotifier() *Notifier {
	return &Notifier{observers: make(map[uint64]Observer)}
}

// Subscribe registers an observer for all notifications.
func (n *Notifier) Subscribe(obs Observer) *Subscription {
	n.mu.Lock()
	defer n.mu.Unlock()

	n.nextID++
	id := n.nextID
	n.observers[id] = obs
	return &Subscription{id: id, notifier: n}
}

func (n *Notifier) unsubscribe(id uint64) {
	n.mu.Lock()
	defer n.mu.Unlock()
	delete(n.observers, id)
}

// Publish delivers a notification to all observers.
func (n *Notifier) Publish(severity Severity, message string) {
	n.mu.RLock()
	observers := make([]Observer, 0, len(n.observers))
	for _, obs := range n.observers {
		observers = append(observers, obs)
	}
	n.mu.RUnlock()

	note := Notification{Severity: severity, Message: message}
	for _, obs := range observers {
		obs(note)
	}
}
