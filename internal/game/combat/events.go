package combat

// EventKind names one wire-level event type.
type EventKind string

const (
	EventSessionStarted       EventKind = "combat:session:started"
	EventSessionStatusChanged EventKind = "combat:session:status:changed"
	EventSessionEnded         EventKind = "combat:session:ended"
	EventRoundStarted         EventKind = "combat:round:started"
	EventTurnStarted          EventKind = "combat:turn:started"
	EventTurnEnded            EventKind = "combat:turn:ended"
	EventCombatantDied        EventKind = "combatant:did:die"
	EventCombatantAttacked    EventKind = "combatant:did:attack"
	EventActorMoved           EventKind = "actor:did:move"
	EventActorDied            EventKind = "actor:did:die"
)

// Event is one emitted combat event. The event log of a session is totally
// ordered; all events of one operation share a trace.
type Event struct {
	ID        string
	Kind      EventKind
	SessionID string
	Trace     string
	Round     int
	Turn      int
	Actor     string
	Payload   map[string]any
}
