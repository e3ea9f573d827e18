package notifications

import (
	"context"
	"errors"
	"sync"
	"time"
)

// ErrSuppressed is returned by Dedup when a message was dropped as a repeat.
var ErrSuppressed = errors.New("notification suppressed as duplicate")

// Dedup drops a notification identical to the previous one of the same kind
// sent less than Window ago. Test notifications always pass through.
type Dedup struct {
	next   Service
	window time.Duration
	now    func() time.Time

	mu   sync.Mutex
	last map[string]sent
}

type sent struct {
	key string
	at  time.Time
}

// NewDedup wraps next.
func NewDedup(next Service, window time.Duration) *Dedup {
	return &Dedup{next: next, window: window, now: time.Now, last: make(map[string]sent)}
}

func (d *Dedup) NotifyMatches(ctx context.Context, summary Summary) error {
	if d.suppress("matches", matchesMessage(summary).key()) {
		return ErrSuppressed
	}
	err := d.next.NotifyMatches(ctx, summary)
	d.record("matches", matchesMessage(summary).key(), err)
	return err
}

func (d *Dedup) NotifyError(ctx context.Context, err error, label string) error {
	key := errorMessage(err, label).key()
	if d.suppress("error", key) {
		return ErrSuppressed
	}
	sendErr := d.next.NotifyError(ctx, err, label)
	d.record("error", key, sendErr)
	return sendErr
}

func (d *Dedup) TestNotification(ctx context.Context) error {
	return d.next.TestNotification(ctx)
}

func (d *Dedup) suppress(kind, key string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	prev, ok := d.last[kind]
	return ok && prev.key == key && d.now().Sub(prev.at) < d.window
}

// record remembers a delivered message; failed sends are retried next time.
func (d *Dedup) record(kind, key string, err error) {
	if err != nil {
		return
	}
	d.mu.Lock()
	d.last[kind] = sent{key: key, at: d.now()}
	d.mu.Unlock()
}
