// Package pico provides a small inversion-of-control container for Go.
// Components are registered under keys, built through their constructors
// and driven through a start, stop and dispose lifecycle.
//
// # Overview
//
// pico resolves dependencies by looking at the parameters of constructor
// functions. The library provides:
//   - Constructor injection that picks the greediest satisfiable constructor
//   - Setter injection through SetXxx methods
//   - Keys of any comparable value, including reflect.Type
//   - Explicit parameters: constants, keyed components and collections
//   - Slice and map injection of every matching component
//   - Container hierarchies where children see their ancestors
//   - Lifecycle management in dependency order
//   - Cyclic dependency detection with the full chain in the error
//
// # Basic Usage
//
// Create a container, register implementations and resolve:
//
//	c := pico.New()
//	c.RegisterImplementation(NewLogger)
//	c.RegisterImplementation(NewUserService)
//
//	users, err := pico.Get[*UserService](c)
//
// Implementations registered with RegisterImplementation are keyed by the
// type their constructor returns. Use RegisterComponentImplementation to
// choose the key, for example an interface type:
//
//	c.RegisterComponentImplementation(pico.TypeOf[Cache](), NewRedisCache)
//
// Pre-built values are registered with RegisterInstance or
// RegisterComponentInstance.
//
// # Constructors
//
// A constructor is any function returning a single value, optionally
// followed by an error. An implementation may offer several constructors:
//
//	c.RegisterImplementation(pico.Implement(NewServer, NewServerWithTLS))
//
// The container uses the constructor with the most parameters it can
// satisfy. Two satisfiable constructors of the same size are reported as a
// TooManySatisfiableConstructorsError. A reflect.Type can stand in for a
// constructor that allocates the zero value.
//
// # Parameters
//
// By default every argument is resolved by type. Explicit parameters
// override that for one registration:
//
//	c.RegisterComponentImplementation("reports", NewUserService,
//	    pico.ComponentKey("replica"),
//	    pico.Constant(reportLogger),
//	)
//
// Slice and map arguments collect every component assignable to their
// element type. Maps are keyed by component key. A component is never
// injected into itself.
//
// # Caching
//
// Containers created with New cache every component, so each key yields one
// shared instance. Use WithFactory(NewConstructorInjectionFactory()) for a
// new instance per lookup, or NewCaching with a SetterInjectionFactory for
// cached setter injection.
//
// # Hierarchies
//
// A child container resolves what it cannot find locally from its parent.
// Components owned by the parent are always built by the parent, so they
// never depend on a child's registrations:
//
//	request := app.MakeChildContainer()
//	request.RegisterInstance(reqCtx)
//
// # Lifecycle
//
// Components implementing Startable are started in the order they were
// first instantiated and stopped in reverse. Disposable components are
// disposed in reverse order. Start fails at the first error; Stop and
// Dispose visit every component and report all failures in a
// LifecycleError. Lifecycle calls cascade to attached child containers.
//
//	if err := c.Start(); err != nil {
//	    log.Fatal(err)
//	}
//	defer c.Dispose()
//
// # Monitoring
//
// A ComponentMonitor observes instantiations and lifecycle invocations.
// The monitor subpackage logs them with zerolog:
//
//	c := pico.New(pico.WithMonitor(monitor.New(logger)))
//
// # Error Handling
//
// Errors are typed values that can be matched with errors.As, and most wrap
// a sentinel that can be matched with errors.Is:
//
//	if pico.IsNotFound(err) {
//	    // handle missing component
//	}
//
//	var cycle pico.CyclicDependencyError
//	if errors.As(err, &cycle) {
//	    fmt.Println(cycle.Chain)
//	}
//
// # Thread Safety
//
// Registration, lookup and instantiation are safe for concurrent use.
// Wrap adapters with NewSynchronizedFactory to serialize instantiation of
// each component.
package pico
