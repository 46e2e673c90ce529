package pico

// ComponentAdapterFactory creates the adapters a container uses for
// RegisterComponentImplementation.
type ComponentAdapterFactory interface {
	CreateComponentAdapter(key, impl any, params []Parameter) (ComponentAdapter, error)
}

// ComponentAdapterFactoryFunc adapts a function to ComponentAdapterFactory.
type ComponentAdapterFactoryFunc func(key, impl any, params []Parameter) (ComponentAdapter, error)

func (f ComponentAdapterFactoryFunc) CreateComponentAdapter(key, impl any, params []Parameter) (ComponentAdapter, error) {
	return f(key, impl, params)
}

// ConstructorInjectionFactory creates ConstructorInjectionAdapters.
type ConstructorInjectionFactory struct {
	opts []AdapterOption
}

// NewConstructorInjectionFactory returns a factory passing opts to every adapter.
func NewConstructorInjectionFactory(opts ...AdapterOption) *ConstructorInjectionFactory {
	return &ConstructorInjectionFactory{opts: opts}
}

func (f *ConstructorInjectionFactory) CreateComponentAdapter(key, impl any, params []Parameter) (ComponentAdapter, error) {
	return NewConstructorInjectionAdapter(key, impl, params, f.opts...)
}

// SetterInjectionFactory creates SetterInjectionAdapters.
type SetterInjectionFactory struct {
	opts []AdapterOption
}

// NewSetterInjectionFactory returns a factory passing opts to every adapter.
func NewSetterInjectionFactory(opts ...AdapterOption) *SetterInjectionFactory {
	return &SetterInjectionFactory{opts: opts}
}

func (f *SetterInjectionFactory) CreateComponentAdapter(key, impl any, params []Parameter) (ComponentAdapter, error) {
	return NewSetterInjectionAdapter(key, impl, params, f.opts...)
}

// DecoratingFactory wraps every adapter of its delegate factory with decorate.
type DecoratingFactory struct {
	delegate ComponentAdapterFactory
	decorate func(ComponentAdapter) ComponentAdapter
}

func (f *DecoratingFactory) CreateComponentAdapter(key, impl any, params []Parameter) (ComponentAdapter, error) {
	adapter, err := f.delegate.CreateComponentAdapter(key, impl, params)
	if err != nil {
		return nil, err
	}
	return f.decorate(adapter), nil
}

// NewCachingFactory wraps the adapters of delegate in CachingAdapters.
// A nil delegate means constructor injection.
func NewCachingFactory(delegate ComponentAdapterFactory) *DecoratingFactory {
	if delegate == nil {
		delegate = NewConstructorInjectionFactory()
	}
	return &DecoratingFactory{
		delegate: delegate,
		decorate: func(a ComponentAdapter) ComponentAdapter { return NewCachingAdapter(a) },
	}
}

// NewSynchronizedFactory wraps the adapters of delegate in SynchronizedAdapters.
// A nil delegate means the default factory.
func NewSynchronizedFactory(delegate ComponentAdapterFactory) *DecoratingFactory {
	if delegate == nil {
		delegate = NewDefaultFactory()
	}
	return &DecoratingFactory{
		delegate: delegate,
		decorate: func(a ComponentAdapter) ComponentAdapter { return NewSynchronizedAdapter(a) },
	}
}

// NewDefaultFactory returns caching constructor injection, the factory
// containers use unless configured otherwise.
func NewDefaultFactory(opts ...AdapterOption) ComponentAdapterFactory {
	return NewCachingFactory(NewConstructorInjectionFactory(opts...))
}
