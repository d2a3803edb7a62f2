package event

import (
	"sync"
)

// History keeps the last events in arrival order.
type History struct {
	mx    sync.RWMutex
	items []*Event
	next  int
	full  bool
}

func NewHistory(size int) *History {
	if size < 1 {
		size = 1
	}

	return &History{items: make([]*Event, size)}
}

func (h *History) Add(ev *Event) {
	h.mx.Lock()
	defer h.mx.Unlock()

	h.items[h.next] = ev
	h.next = (h.next + 1) % len(h.items)

	if h.next == 0 {
		h.full = true
	}
}

func (h *History) Len() int {
	h.mx.RLock()
	defer h.mx.RUnlock()

	if h.full {
		return len(h.items)
	}

	return h.next
}

// Snapshot returns stored events, oldest first.
func (h *History) Snapshot() []*Event {
	h.mx.RLock()
	defer h.mx.RUnlock()

	if !h.full {
		res := make([]*Event, h.next)
		copy(res, h.items[:h.next])

		return res
	}

	res := make([]*Event, 0, len(h.items))
	res = append(res, h.items[h.next:]...)
	res = append(res, h.items[:h.next]...)

	return res
}
