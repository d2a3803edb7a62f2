package callbacks

import (
	"sync"
	"sync/atomic"
)

// Callback is a named set of subscribers. A subscriber returning false is removed.
type Callback[V any] struct {
	callbacks sync.Map
	count     atomic.Int32
}

func New[V any]() *Callback[V] {
	return &Callback[V]{
		callbacks: sync.Map{},
	}
}

// AddMessage calls every subscriber in the caller goroutine and returns how many were called.
// Subscribers must not block: event order of a single producer is kept only this way.
func (p *Callback[V]) AddMessage(msg V) int {
	n := 0

	p.callbacks.Range(func(key, value any) bool {
		if fn, ok := value.(func(msg V) bool); ok {
			n++

			if !fn(msg) {
				p.RemoveCallback(key.(string))
			}
		}

		return true
	})

	return n
}

func (p *Callback[V]) SubscribeNamed(name string, fn func(msg V) bool) {
	if _, loaded := p.callbacks.Swap(name, fn); !loaded {
		p.count.Add(1)
	}
}

func (p *Callback[V]) RemoveCallback(name string) bool {
	_, found := p.callbacks.LoadAndDelete(name)
	if found {
		p.count.Add(-1)
	}

	return found
}

func (p *Callback[V]) Count() int {
	return int(p.count.Load())
}
