package intelinfo

import "sync"

// Feed holds the announcement list a view renders, newest first, and
// applies push events to it: prepend on create, filter-remove on delete.
// It is safe for concurrent use, since the initial fetch and the channel
// read loop run on separate goroutines.
//
// Matching the reference behavior, a duplicate new_announcement push
// produces a duplicate entry; no de-duplication by id is performed.
type Feed struct {
	mu      sync.Mutex
	items   []Announcement
	pending []PushEvent
	seeded  bool
	buffer  bool
}

// FeedOption configures a Feed.
type FeedOption func(*Feed)

// WithBufferUntilSeed holds push events aside until Seed installs the
// initial fetch result, then replays them in arrival order. Without this
// option pushes apply immediately, even before the initial fetch resolves,
// and a later Seed overwrites them.
func WithBufferUntilSeed() FeedOption {
	return func(f *Feed) {
		f.buffer = true
	}
}

// NewFeed constructs an empty feed.
func NewFeed(opts ...FeedOption) *Feed {
	f := &Feed{}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Seed installs the initial announcement list, replacing whatever is held.
// Buffered push events, if any, are replayed on top of it.
func (f *Feed) Seed(items []Announcement) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.items = append([]Announcement(nil), items...)
	f.seeded = true
	for _, event := range f.pending {
		f.apply(event)
	}
	f.pending = nil
}

// Apply reconciles one push event into the list. Unknown event types and
// undecodable payloads leave the list unchanged.
func (f *Feed) Apply(event PushEvent) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.buffer && !f.seeded {
		f.pending = append(f.pending, event)
		return
	}
	f.apply(event)
}

func (f *Feed) apply(event PushEvent) {
	switch event.Type {
	case EventNewAnnouncement:
		a, err := event.Announcement()
		if err != nil {
			return
		}
		f.items = append([]Announcement{*a}, f.items...)
	case EventDeleteAnnouncement:
		id, err := event.DeletedID()
		if err != nil {
			return
		}
		kept := make([]Announcement, 0, len(f.items))
		for _, a := range f.items {
			if a.ID != id {
				kept = append(kept, a)
			}
		}
		f.items = kept
	}
}

// Items returns a copy of the current list.
func (f *Feed) Items() []Announcement {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]Announcement(nil), f.items...)
}

// Len returns the number of announcements currently held.
func (f *Feed) Len() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.items)
}
