// Package directory holds an in-memory view of the event collection as last
// fetched from the store. It never talks to the store itself: callers write
// through the store and then mirror the change here or reload.
package directory

import (
	"sync"

	"virtualevents/internal/calendar"
	"virtualevents/internal/domain"
)

// Directory is safe for concurrent use. Events are kept in arrival order.
type Directory struct {
	mu     sync.RWMutex
	events []*domain.Event
}

// New returns an empty Directory.
func New() *Directory {
	return &Directory{}
}

// Load replaces the whole set.
func (d *Directory) Load(events []*domain.Event) {
	loaded := make([]*domain.Event, 0, len(events))
	for _, e := range events {
		if e != nil {
			loaded = append(loaded, e.Clone())
		}
	}
	d.mu.Lock()
	d.events = loaded
	d.mu.Unlock()
}

// All returns copies of every event in arrival order.
func (d *Directory) All() []*domain.Event {
	return d.filter(func(*domain.Event) bool { return true })
}

// Get returns a copy of the event with the given id.
func (d *Directory) Get(id string) (*domain.Event, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if i := d.index(id); i >= 0 {
		return d.events[i].Clone(), true
	}
	return nil, false
}

// EventsOn returns the events whose date normalises to key.
func (d *Directory) EventsOn(key string) []*domain.Event {
	return d.filter(func(e *domain.Event) bool {
		k, ok := calendar.Normalize(e.Date)
		return ok && k == key
	})
}

// Involving returns the events username organizes or attends.
func (d *Directory) Involving(username string) []*domain.Event {
	return d.filter(func(e *domain.Event) bool { return e.Involves(username) })
}

// Add appends an event, replacing any existing entry with the same id in place.
func (d *Directory) Add(e *domain.Event) {
	if e == nil {
		return
	}
	cp := e.Clone()
	d.mu.Lock()
	defer d.mu.Unlock()
	if i := d.index(cp.ID); i >= 0 && cp.ID != "" {
		d.events[i] = cp
		return
	}
	d.events = append(d.events, cp)
}

// Remove drops the event with the given id. Unknown ids are ignored.
func (d *Directory) Remove(id string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if i := d.index(id); i >= 0 {
		d.events = append(d.events[:i:i], d.events[i+1:]...)
	}
}

// Update applies patch to the event with the given id. Unknown ids are ignored.
func (d *Directory) Update(id string, patch domain.EventPatch) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if i := d.index(id); i >= 0 {
		patch.Apply(d.events[i])
	}
}

// Len returns the number of events.
func (d *Directory) Len() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.events)
}

func (d *Directory) filter(keep func(*domain.Event) bool) []*domain.Event {
	d.mu.RLock()
	defer d.mu.RUnlock()
	out := make([]*domain.Event, 0)
	for _, e := range d.events {
		if keep(e) {
			out = append(out, e.Clone())
		}
	}
	return out
}

// index must be called with mu held.
func (d *Directory) index(id string) int {
	for i, e := range d.events {
		if e.ID == id {
			return i
		}
	}
	return -1
}
