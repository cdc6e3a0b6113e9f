package pubsub

import (
	"sync"

	"github.com/google/uuid"

	"thermostat_dashboard/internal/models"
)

// subscriptionBuffer bounds how many undelivered snapshots a subscriber may
// hold; only the freshest snapshots matter, so overflow drops the oldest.
const subscriptionBuffer = 8

// Feed is an in-process change feed for thermostat records. Writers publish
// full record snapshots; each subscriber owns an independent channel.
type Feed struct {
	mu   sync.Mutex
	subs map[int]map[string]*Subscription
}

// Subscription is one listener's handle on a record's change feed.
// C is closed by Unsubscribe.
type Subscription struct {
	ID string
	C  chan models.ThermostatRecord

	feed     *Feed
	recordID int
	once     sync.Once
}

func NewFeed() *Feed {
	return &Feed{subs: make(map[int]map[string]*Subscription)}
}

// Subscribe attaches a new listener to the record's change feed. The listener
// observes only changes published after it attaches; there is no replay.
func (f *Feed) Subscribe(recordID int) *Subscription {
	sub := &Subscription{
		ID:       uuid.NewString(),
		C:        make(chan models.ThermostatRecord, subscriptionBuffer),
		feed:     f,
		recordID: recordID,
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.subs[recordID] == nil {
		f.subs[recordID] = make(map[string]*Subscription)
	}
	f.subs[recordID][sub.ID] = sub
	return sub
}

// Unsubscribe detaches the listener and closes its channel. Safe to call more
// than once.
func (s *Subscription) Unsubscribe() {
	s.once.Do(func() {
		s.feed.mu.Lock()
		defer s.feed.mu.Unlock()
		delete(s.feed.subs[s.recordID], s.ID)
		close(s.C)
	})
}

// Publish fans the snapshot out to every subscriber of the record without
// blocking: a subscriber that has fallen behind loses its oldest snapshot.
func (f *Feed) Publish(recordID int, rec models.ThermostatRecord) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, sub := range f.subs[recordID] {
		select {
		case sub.C <- rec:
		default:
			select {
			case <-sub.C:
			default:
			}
			select {
			case sub.C <- rec:
			default:
			}
		}
	}
}

// SubscriberCount reports how many listeners are attached to a record.
func (f *Feed) SubscriberCount(recordID int) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.subs[recordID])
}
