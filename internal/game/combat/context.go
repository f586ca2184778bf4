package combat

import (
	"time"

	"github.com/google/uuid"
	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"

	"github.com/industry-digital/flux-engine/internal/game/dice"
)

// ScriptHooks is the surface the combat core uses to consult Lua hooks.
// A nil ScriptHooks disables all hook evaluation.
type ScriptHooks interface {
	// CallHook calls a named Lua function for the given location.
	// Returns (LNil, nil) when the function is not defined.
	CallHook(locationID, hook string, args ...lua.LValue) (lua.LValue, error)
}

// DeclaredError is one error surfaced to the host, attached to its trace.
type DeclaredError struct {
	Message string
	Trace   string
	At      time.Time
}

// Context is the execution context owning the event sink and ambient
// collaborators (randomness, clock, id generation, logging, script hooks).
//
// A Context belongs to exactly one session; per the scheduling model all
// access is single-threaded cooperative, so no locking is performed.
type Context struct {
	logger *zap.Logger
	src    dice.Source
	now    func() time.Time
	uniqid func() string
	hooks  ScriptHooks

	events  []Event
	errors  []DeclaredError
	eventID map[string]bool
}

// ContextOption customizes a Context at construction.
type ContextOption func(*Context)

// WithClock substitutes the timestamp source.
func WithClock(now func() time.Time) ContextOption {
	return func(c *Context) { c.now = now }
}

// WithUniqid substitutes the trace/id generator.
func WithUniqid(gen func() string) ContextOption {
	return func(c *Context) { c.uniqid = gen }
}

// WithScriptHooks attaches a Lua hook manager.
func WithScriptHooks(h ScriptHooks) ContextOption {
	return func(c *Context) { c.hooks = h }
}

// NewContext creates an execution context.
//
// Precondition: logger and src must be non-nil.
func NewContext(logger *zap.Logger, src dice.Source, opts ...ContextOption) *Context {
	if logger == nil {
		panic("combat.NewContext: logger must not be nil")
	}
	if src == nil {
		panic("combat.NewContext: src must not be nil")
	}
	c := &Context{
		logger:  logger,
		src:     src,
		now:     time.Now,
		uniqid:  func() string { return uuid.NewString() },
		eventID: make(map[string]bool),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Logger returns the context logger.
func (c *Context) Logger() *zap.Logger { return c.logger }

// Uniqid returns a fresh unique id for traces and events.
func (c *Context) Uniqid() string { return c.uniqid() }

// Timestamp returns the current time.
func (c *Context) Timestamp() time.Time { return c.now() }

// Random returns a deterministic-capable float in [0, 1).
func (c *Context) Random() float64 {
	return float64(c.src.Intn(1_000_000_000)) / 1_000_000_000
}

// Roll parses and evaluates a dice expression with the context's Source.
func (c *Context) Roll(expr string) (dice.RollResult, error) {
	return dice.RollExpr(expr, c.src)
}

// Hooks returns the attached script hooks, or nil.
func (c *Context) Hooks() ScriptHooks { return c.hooks }

// DeclareEvent assigns the event an id if absent, appends it to the sink,
// and returns the stored event.
//
// Precondition: e.Kind must be non-empty.
// Duplicate event ids indicate a programming bug and panic.
func (c *Context) DeclareEvent(e Event) Event {
	if e.ID == "" {
		e.ID = c.uniqid()
	}
	if c.eventID[e.ID] {
		panic("combat: duplicate event id " + e.ID)
	}
	c.eventID[e.ID] = true
	c.events = append(c.events, e)
	c.logger.Debug("event declared",
		zap.String("kind", string(e.Kind)),
		zap.String("trace", e.Trace),
		zap.String("actor", e.Actor),
		zap.Int("round", e.Round),
		zap.Int("turn", e.Turn),
	)
	return e
}

// DeclareError records a user-visible failure attached to its trace.
func (c *Context) DeclareError(message, trace string) {
	c.errors = append(c.errors, DeclaredError{Message: message, Trace: trace, At: c.now()})
	c.logger.Warn("error declared",
		zap.String("message", message),
		zap.String("trace", trace),
	)
}

// DeclaredEvents returns all events matching filter, or every event when
// filter is nil. The returned slice is a copy.
func (c *Context) DeclaredEvents(filter func(Event) bool) []Event {
	out := make([]Event, 0, len(c.events))
	for _, e := range c.events {
		if filter == nil || filter(e) {
			out = append(out, e)
		}
	}
	return out
}

// DeclaredErrors returns a copy of all declared errors.
func (c *Context) DeclaredErrors() []DeclaredError {
	out := make([]DeclaredError, len(c.errors))
	copy(out, c.errors)
	return out
}
