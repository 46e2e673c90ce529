// Package chi provides pico integration for the Chi router.
//
// The middleware gives every request its own child container. Components
// registered there see the application container as their parent, are
// started before the handler runs, and are stopped and disposed once the
// response is written.
//
// Example usage:
//
//	app := pico.New()
//	app.RegisterImplementation(NewUserRepository)
//
//	r := chi.NewRouter()
//	r.Use(picochi.ContainerMiddleware(app,
//	    picochi.WithRegistration(func(c pico.MutableContainer, r *http.Request) error {
//	        _, err := c.RegisterImplementation(NewUserController)
//	        return err
//	    }),
//	))
//
//	r.Get("/users/{id}", picochi.Handle((*UserController).GetByID))
package chi

import (
	"context"
	"errors"
	"net/http"

	"github.com/junioryono/pico"
	"github.com/rs/zerolog/log"
)

// ErrNoContainer is returned by FromContext when no request container is attached.
var ErrNoContainer = errors.New("no request container in context")

type contextKey struct{}

// WithContainer returns a copy of ctx carrying c.
func WithContainer(ctx context.Context, c pico.MutableContainer) context.Context {
	return context.WithValue(ctx, contextKey{}, c)
}

// FromContext returns the request container attached by ContainerMiddleware.
func FromContext(ctx context.Context) (pico.MutableContainer, error) {
	c, ok := ctx.Value(contextKey{}).(pico.MutableContainer)
	if !ok || c == nil {
		return nil, ErrNoContainer
	}
	return c, nil
}

// Config holds the configuration for the container middleware.
type Config struct {
	// ErrorHandler is called when the request container cannot be prepared.
	// If nil, a default handler returning 500 Internal Server Error is used.
	ErrorHandler func(http.ResponseWriter, *http.Request, error)

	// CloseErrorHandler is called when stopping or disposing the request
	// container fails. If nil, errors are logged with zerolog.
	CloseErrorHandler func(error)

	// Registrations run against the request container before it is started.
	Registrations []func(pico.MutableContainer, *http.Request) error
}

// Option configures the container middleware.
type Option func(*Config)

// WithErrorHandler sets the handler for request container failures.
func WithErrorHandler(h func(http.ResponseWriter, *http.Request, error)) Option {
	return func(c *Config) {
		c.ErrorHandler = h
	}
}

// WithCloseErrorHandler sets the handler for stop and dispose failures.
func WithCloseErrorHandler(h func(error)) Option {
	return func(c *Config) {
		c.CloseErrorHandler = h
	}
}

// WithRegistration adds a function that registers request components.
// Registrations run in the order they are added.
func WithRegistration(fn func(pico.MutableContainer, *http.Request) error) Option {
	return func(c *Config) {
		c.Registrations = append(c.Registrations, fn)
	}
}

func defaultConfig() *Config {
	return &Config{
		ErrorHandler: func(w http.ResponseWriter, r *http.Request, err error) {
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		},
		CloseErrorHandler: func(err error) {
			log.Error().Err(err).Msg("failed to close request container")
		},
	}
}

// ContainerMiddleware creates a Chi middleware that makes a child of parent
// for each request. The *http.Request is registered in the child, the
// configured registrations run, and the child is started and attached to the
// request context. After the handler returns the child is stopped, disposed
// and detached from parent.
func ContainerMiddleware(parent pico.MutableContainer, opts ...Option) func(http.Handler) http.Handler {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			child := parent.MakeChildContainer()
			started := false

			defer func() {
				if started {
					if err := child.Stop(); err != nil {
						cfg.CloseErrorHandler(err)
					}
				}
				if err := child.Dispose(); err != nil {
					cfg.CloseErrorHandler(err)
				}
				parent.RemoveChildContainer(child)
			}()

			r = r.WithContext(WithContainer(r.Context(), child))

			if _, err := child.RegisterInstance(r); err != nil {
				cfg.ErrorHandler(w, r, err)
				return
			}
			for _, register := range cfg.Registrations {
				if err := register(child, r); err != nil {
					cfg.ErrorHandler(w, r, err)
					return
				}
			}

			if err := child.Start(); err != nil {
				cfg.ErrorHandler(w, r, err)
				return
			}
			started = true

			next.ServeHTTP(w, r)
		})
	}
}

// HandlerConfig holds configuration for the Handle wrapper.
type HandlerConfig struct {
	// PanicRecovery enables panic recovery in the handler.
	PanicRecovery bool

	// PanicHandler is called when a panic occurs (if PanicRecovery is true).
	PanicHandler func(http.ResponseWriter, *http.Request, any)

	// ContainerErrorHandler is called when no request container is attached.
	ContainerErrorHandler func(http.ResponseWriter, *http.Request, error)

	// ResolutionErrorHandler is called when the controller cannot be resolved.
	ResolutionErrorHandler func(http.ResponseWriter, *http.Request, error)
}

// HandlerOption configures the Handle wrapper.
type HandlerOption func(*HandlerConfig)

// WithPanicRecovery enables or disables panic recovery in the handler.
func WithPanicRecovery(enabled bool) HandlerOption {
	return func(c *HandlerConfig) {
		c.PanicRecovery = enabled
	}
}

// WithPanicHandler sets the handler for panics.
func WithPanicHandler(h func(http.ResponseWriter, *http.Request, any)) HandlerOption {
	return func(c *HandlerConfig) {
		c.PanicHandler = h
	}
}

// WithContainerErrorHandler sets the handler for a missing request container.
func WithContainerErrorHandler(h func(http.ResponseWriter, *http.Request, error)) HandlerOption {
	return func(c *HandlerConfig) {
		c.ContainerErrorHandler = h
	}
}

// WithResolutionErrorHandler sets the handler for controller resolution failures.
func WithResolutionErrorHandler(h func(http.ResponseWriter, *http.Request, error)) HandlerOption {
	return func(c *HandlerConfig) {
		c.ResolutionErrorHandler = h
	}
}

func defaultHandlerConfig() *HandlerConfig {
	return &HandlerConfig{
		PanicHandler: func(w http.ResponseWriter, r *http.Request, v any) {
			log.Error().Interface("panic", v).Str("path", r.URL.Path).Msg("panic in handler")
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		},
		ContainerErrorHandler: func(w http.ResponseWriter, r *http.Request, err error) {
			log.Error().Err(err).Str("path", r.URL.Path).Msg("no request container")
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		},
		ResolutionErrorHandler: func(w http.ResponseWriter, r *http.Request, err error) {
			log.Error().Err(err).Str("path", r.URL.Path).Msg("failed to resolve controller")
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		},
	}
}

// Handle wraps a controller method. The controller T is resolved by type
// from the request container.
//
// Example:
//
//	r.Get("/users/{id}", picochi.Handle((*UserController).GetByID))
func Handle[T any](method func(T, http.ResponseWriter, *http.Request), opts ...HandlerOption) http.HandlerFunc {
	cfg := defaultHandlerConfig()
	for _, opt := range opts {
		opt(cfg)
	}

	return func(w http.ResponseWriter, r *http.Request) {
		if cfg.PanicRecovery {
			defer func() {
				if v := recover(); v != nil {
					cfg.PanicHandler(w, r, v)
				}
			}()
		}

		c, err := FromContext(r.Context())
		if err != nil {
			cfg.ContainerErrorHandler(w, r, err)
			return
		}

		controller, err := pico.Get[T](c)
		if err != nil {
			cfg.ResolutionErrorHandler(w, r, err)
			return
		}

		method(controller, w, r)
	}
}
