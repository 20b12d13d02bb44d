package lifecycle

// State is a step in a notification's path through the engine.
type State string

const (
	StateCreated       State = "created"
	StateScheduled     State = "scheduled"
	StateTriggered     State = "triggered"
	StateImmediate     State = "immediate"
	StatePolicyCheck   State = "policy_check"
	StateDeferred      State = "deferred"
	StatePolicyRecheck State = "policy_recheck"
	StateDispatched    State = "dispatched"
	StateDropped       State = "dropped"
)

// Terminal reports whether no further transitions leave s.
func (s State) Terminal() bool {
	return s == StateDispatched || s == StateDropped
}

// Event moves a notification from one state to the next.
type Event string

const (
	EventSchedule Event = "schedule"
	EventTrigger  Event = "trigger"
	EventSendNow  Event = "send_now"
	EventEvaluate Event = "evaluate"
	EventDefer    Event = "defer"
	EventDrain    Event = "drain"
	EventDispatch Event = "dispatch"
	EventDrop     Event = "drop"
)

// DropReason explains why a notification reached StateDropped.
type DropReason string

const (
	ReasonPolicyBlocked    DropReason = "policy_blocked"
	ReasonCategoryDisabled DropReason = "category_disabled"
	ReasonExpired          DropReason = "expired"
	ReasonQueueFull        DropReason = "queue_full"
	ReasonCancelled        DropReason = "cancelled"
	ReasonChannelFailed    DropReason = "channel_failed"
	ReasonNoRecipient      DropReason = "no_recipient"
	ReasonBackpressure     DropReason = "backpressure"
)

// DropReasons lists every drop reason.
var DropReasons = []DropReason{
	ReasonPolicyBlocked,
	ReasonCategoryDisabled,
	ReasonExpired,
	ReasonQueueFull,
	ReasonCancelled,
	ReasonChannelFailed,
	ReasonNoRecipient,
	ReasonBackpressure,
}

// Transition is one edge of the lifecycle graph.
type Transition struct {
	From  State
	Event Event
	To    State
}

// Transitions is the full lifecycle graph. Scheduled may be re-entered only
// from Scheduled itself, which covers rescheduling a pending id.
var Transitions = []Transition{
	{StateCreated, EventSchedule, StateScheduled},
	{StateScheduled, EventSchedule, StateScheduled},
	{StateScheduled, EventTrigger, StateTriggered},
	{StateScheduled, EventDrop, StateDropped},

	{StateCreated, EventSendNow, StateImmediate},

	{StateTriggered, EventEvaluate, StatePolicyCheck},
	{StateTriggered, EventDrop, StateDropped},
	{StateImmediate, EventEvaluate, StatePolicyCheck},
	{StateImmediate, EventDrop, StateDropped},

	{StatePolicyCheck, EventDispatch, StateDispatched},
	{StatePolicyCheck, EventDefer, StateDeferred},
	{StatePolicyCheck, EventDrop, StateDropped},

	{StateDeferred, EventDrain, StatePolicyRecheck},
	{StateDeferred, EventDefer, StateDeferred},
	{StateDeferred, EventDrop, StateDropped},

	{StatePolicyRecheck, EventDispatch, StateDispatched},
	{StatePolicyRecheck, EventDefer, StateDeferred},
	{StatePolicyRecheck, EventDrop, StateDropped},
}

type graph map[State]map[Event]State

func newGraph(transitions []Transition) graph {
	g := make(graph)
	for _, t := range transitions {
		if g[t.From] == nil {
			g[t.From] = make(map[Event]State)
		}
		g[t.From][t.Event] = t.To
	}
	return g
}

func (g graph) next(from State, ev Event) (State, bool) {
	to, ok := g[from][ev]
	return to, ok
}
