// Package scripting provides a sandboxed GopherLua environment for
// location-level combat hooks. It has no dependency on combat domain
// packages; the engine consults hooks through a narrow interface.
package scripting

import (
	"context"
	"sync/atomic"

	lua "github.com/yuin/gopher-lua"
)

// DefaultInstructionLimit is the maximum number of Lua opcodes a sandboxed
// state may execute when no override is configured. The count covers the
// state's whole life (script loading and every hook call together) and is
// not reset between calls.
const DefaultInstructionLimit = 100_000

// countingContext is a context.Context that cancels itself after Done() has
// been called limit times. GopherLua's main loop calls Done() once per
// opcode, making this an exact instruction-count limit.
type countingContext struct {
	context.Context
	cancel    context.CancelFunc
	remaining *atomic.Int64
}

// Done returns the underlying cancellation channel. Each call decrements the
// remaining counter; when it reaches zero the cancel function fires,
// terminating the Lua VM on the next opcode boundary.
func (c *countingContext) Done() <-chan struct{} {
	if c.remaining.Add(-1) <= 0 {
		c.cancel()
	}
	return c.Context.Done()
}

// newCountingContext returns a context that cancels after limit calls to Done().
// Precondition: limit > 0; panics if limit <= 0.
func newCountingContext(limit int) (context.Context, context.CancelFunc) {
	if limit <= 0 {
		panic("newCountingContext: limit must be > 0")
	}
	base, cancel := context.WithCancel(context.Background())
	rem := &atomic.Int64{}
	rem.Store(int64(limit))
	return &countingContext{
		Context:   base,
		cancel:    cancel,
		remaining: rem,
	}, cancel
}

// NewSandboxedState creates a GopherLua LState with:
//   - Only safe stdlib loaded: base, table, string, math
//   - Dangerous globals removed: dofile, loadfile, load, loadstring,
//     collectgarbage, require, module, newproxy, setfenv, getfenv, _printregs
//   - Execution limited to at most instLimit Lua opcodes
//
// Precondition: instLimit >= 0; 0 uses DefaultInstructionLimit.
// Postcondition: Returns a non-nil LState and a CancelFunc the caller must
// invoke to prevent goroutine leaks. The caller owns the LState and must
// call L.Close() when done.
func NewSandboxedState(instLimit int) (*lua.LState, context.CancelFunc) {
	limit := instLimit
	if limit <= 0 {
		limit = DefaultInstructionLimit
	}

	L := lua.NewState(lua.Options{SkipOpenLibs: true})

	// Open only safe standard libraries.
	lua.OpenBase(L)
	lua.OpenTable(L)
	lua.OpenString(L)
	lua.OpenMath(L)

	// Strip dangerous globals left by OpenBase.
	for _, name := range []string{
		"dofile", "loadfile", "load", "loadstring",
		"collectgarbage", "require",
		"module", "newproxy",
		"setfenv", "getfenv",
		"_printregs",
	} {
		L.SetGlobal(name, lua.LNil)
	}

	ctx, cancel := newCountingContext(limit)
	L.SetContext(ctx)

	return L, cancel
}
