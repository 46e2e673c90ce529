package pico

import "time"

// ComponentMonitor observes component instantiation and method invocation.
// Implementations must be safe for concurrent use.
type ComponentMonitor interface {
	Instantiating(ctor *Constructor)
	Instantiated(ctor *Constructor, instance any, duration time.Duration)
	InstantiationFailed(ctor *Constructor, err error)

	Invoking(method string, instance any)
	Invoked(method string, instance any, duration time.Duration)
	InvocationFailed(method string, instance any, err error)
}

// NullMonitor ignores every event. It is the default monitor.
type NullMonitor struct{}

var _ ComponentMonitor = NullMonitor{}

func (NullMonitor) Instantiating(*Constructor)                    {}
func (NullMonitor) Instantiated(*Constructor, any, time.Duration) {}
func (NullMonitor) InstantiationFailed(*Constructor, error)       {}
func (NullMonitor) Invoking(string, any)                          {}
func (NullMonitor) Invoked(string, any, time.Duration)            {}
func (NullMonitor) InvocationFailed(string, any, error)           {}
