package pico

import (
	"errors"
	"reflect"
	"sync"

	"github.com/junioryono/pico/internal/goid"
)

// cyclicGuard detects re-entrant resolution of the same adapter on the
// same goroutine. Each adapter owns its own guards.
type cyclicGuard struct {
	mu     sync.Mutex
	active map[int64]struct{}
}

func newCyclicGuard() *cyclicGuard {
	return &cyclicGuard{active: make(map[int64]struct{})}
}

// observe runs fn unless the calling goroutine is already inside observe for
// this guard. Cycle errors passing through are extended with impl so the
// chain reads from the outermost request inwards.
func (g *cyclicGuard) observe(impl reflect.Type, fn func() (any, error)) (any, error) {
	id := goid.Get()

	g.mu.Lock()
	if _, ok := g.active[id]; ok {
		g.mu.Unlock()
		return nil, CyclicDependencyError{Chain: []reflect.Type{impl}}
	}
	g.active[id] = struct{}{}
	g.mu.Unlock()

	defer func() {
		g.mu.Lock()
		delete(g.active, id)
		g.mu.Unlock()
	}()

	v, err := fn()
	if err != nil {
		var cyclic CyclicDependencyError
		if errors.As(err, &cyclic) {
			chain := make([]reflect.Type, 0, len(cyclic.Chain)+1)
			chain = append(chain, impl)
			return nil, CyclicDependencyError{Chain: append(chain, cyclic.Chain...)}
		}
		return nil, err
	}
	return v, nil
}

// reentrantMutex is a mutex the owning goroutine may lock repeatedly.
type reentrantMutex struct {
	mu    sync.Mutex
	cond  *sync.Cond
	owner int64
	depth int
}

func newReentrantMutex() *reentrantMutex {
	m := &reentrantMutex{}
	m.cond = sync.NewCond(&m.mu)
	return m
}

func (m *reentrantMutex) Lock() {
	id := goid.Get()

	m.mu.Lock()
	defer m.mu.Unlock()

	for m.depth > 0 && m.owner != id {
		m.cond.Wait()
	}
	m.owner = id
	m.depth++
}

func (m *reentrantMutex) Unlock() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.depth--
	if m.depth == 0 {
		m.owner = 0
		m.cond.Signal()
	}
}
