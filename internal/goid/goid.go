// Package goid exposes the identifier of the calling goroutine.
package goid

import (
	"fmt"
	"runtime"
	"strconv"
	"strings"
)

// Get returns the current goroutine ID.
// It is used to key per-goroutine state such as resolution guards and
// reentrant locks. It panics if the runtime's stack header cannot be parsed.
func Get() int64 {
	var buf [64]byte
	n := runtime.Stack(buf[:], false)
	id, err := parse(buf[:n])
	if err != nil {
		panic(err)
	}
	return id
}

// parse reads the ID from a stack header of the form "goroutine 18 [running]:".
func parse(stack []byte) (int64, error) {
	fields := strings.Fields(strings.TrimPrefix(string(stack), "goroutine "))
	if len(fields) == 0 {
		return 0, fmt.Errorf("goid: empty stack header")
	}
	id, err := strconv.ParseInt(fields[0], 10, 64)
	if err != nil {
		return 0, fmt.Errorf("goid: unexpected stack header %q: %w", fields[0], err)
	}
	return id, nil
}
