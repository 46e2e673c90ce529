package pico

// ContainerOption configures a container created by New.
type ContainerOption interface {
	apply(*containerOptions)
}

// containerOptions holds container configuration.
type containerOptions struct {
	parent    Container
	factory   ComponentAdapterFactory
	lifecycle LifecycleManager
	monitor   ComponentMonitor
}

// containerOptionFunc adapts a function to ContainerOption.
type containerOptionFunc func(*containerOptions)

func (f containerOptionFunc) apply(opts *containerOptions) {
	f(opts)
}

// WithParent makes the container a child of parent. Lookups that fail
// locally continue in parent. The parent does not cascade lifecycle calls
// to the container unless it is added with AddChildContainer.
func WithParent(parent Container) ContainerOption {
	return containerOptionFunc(func(opts *containerOptions) {
		opts.parent = parent
	})
}

// WithFactory sets the factory used by RegisterComponentImplementation.
func WithFactory(factory ComponentAdapterFactory) ContainerOption {
	return containerOptionFunc(func(opts *containerOptions) {
		opts.factory = factory
	})
}

// WithLifecycleManager replaces the manager driving Start, Stop and Dispose.
func WithLifecycleManager(manager LifecycleManager) ContainerOption {
	return containerOptionFunc(func(opts *containerOptions) {
		opts.lifecycle = manager
	})
}

// WithMonitor sets the monitor notified about instantiation and lifecycle
// invocations. It applies to the default factory and lifecycle manager.
func WithMonitor(monitor ComponentMonitor) ContainerOption {
	return containerOptionFunc(func(opts *containerOptions) {
		opts.monitor = monitor
	})
}

func newContainerOptions(opts []ContainerOption) *containerOptions {
	options := &containerOptions{monitor: NullMonitor{}}
	for _, opt := range opts {
		if opt != nil {
			opt.apply(options)
		}
	}

	if options.monitor == nil {
		options.monitor = NullMonitor{}
	}
	if options.factory == nil {
		options.factory = NewDefaultFactory(WithAdapterMonitor(options.monitor))
	}
	if options.lifecycle == nil {
		options.lifecycle = NewDefaultLifecycleManager(options.monitor)
	}
	return options
}

// AdapterOption configures adapters created by the injection adapters and factories.
type AdapterOption interface {
	applyAdapter(*adapterOptions)
}

type adapterOptions struct {
	monitor ComponentMonitor
}

type adapterOptionFunc func(*adapterOptions)

func (f adapterOptionFunc) applyAdapter(opts *adapterOptions) {
	f(opts)
}

// WithAdapterMonitor sets the monitor notified when the adapter instantiates its component.
func WithAdapterMonitor(monitor ComponentMonitor) AdapterOption {
	return adapterOptionFunc(func(opts *adapterOptions) {
		if monitor != nil {
			opts.monitor = monitor
		}
	})
}

func newAdapterOptions(opts []AdapterOption) *adapterOptions {
	options := &adapterOptions{monitor: NullMonitor{}}
	for _, opt := range opts {
		if opt != nil {
			opt.applyAdapter(options)
		}
	}
	return options
}
