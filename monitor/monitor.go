// Package monitor provides zerolog-backed component monitors for pico containers.
package monitor

import (
	"fmt"
	"io"
	"time"

	"github.com/junioryono/pico"
	"github.com/rs/zerolog"
)

// Standard field keys.
const (
	FieldComponent   = "component"
	FieldConstructor = "constructor"
	FieldMethod      = "method"
	FieldDuration    = "duration_ms"
)

// Logger reports container events to a zerolog.Logger. Successful events are
// logged at debug level and failures at error level.
type Logger struct {
	logger zerolog.Logger
}

var _ pico.ComponentMonitor = (*Logger)(nil)

// New creates a monitor writing to logger.
func New(logger zerolog.Logger) *Logger {
	return &Logger{logger: logger.With().Str("logger", "pico").Logger()}
}

// NewConsole creates a monitor writing human readable lines to w.
func NewConsole(w io.Writer) *Logger {
	zl := zerolog.New(zerolog.ConsoleWriter{Out: w, NoColor: true, TimeFormat: time.RFC3339}).
		With().Timestamp().Logger()
	return New(zl)
}

func (l *Logger) Instantiating(ctor *pico.Constructor) {
	l.logger.Debug().
		Str(FieldComponent, ctor.Result.String()).
		Str(FieldConstructor, ctor.String()).
		Msg("instantiating component")
}

func (l *Logger) Instantiated(ctor *pico.Constructor, _ any, duration time.Duration) {
	l.logger.Debug().
		Str(FieldComponent, ctor.Result.String()).
		Str(FieldConstructor, ctor.String()).
		Int64(FieldDuration, duration.Milliseconds()).
		Msg("instantiated component")
}

func (l *Logger) InstantiationFailed(ctor *pico.Constructor, err error) {
	l.logger.Error().
		Err(err).
		Str(FieldComponent, ctor.Result.String()).
		Str(FieldConstructor, ctor.String()).
		Msg("component instantiation failed")
}

func (l *Logger) Invoking(method string, instance any) {
	l.logger.Debug().
		Str(FieldComponent, typeName(instance)).
		Str(FieldMethod, method).
		Msg("invoking method")
}

func (l *Logger) Invoked(method string, instance any, duration time.Duration) {
	l.logger.Debug().
		Str(FieldComponent, typeName(instance)).
		Str(FieldMethod, method).
		Int64(FieldDuration, duration.Milliseconds()).
		Msg("invoked method")
}

func (l *Logger) InvocationFailed(method string, instance any, err error) {
	l.logger.Error().
		Err(err).
		Str(FieldComponent, typeName(instance)).
		Str(FieldMethod, method).
		Msg("method invocation failed")
}

func typeName(v any) string {
	return fmt.Sprintf("%T", v)
}
