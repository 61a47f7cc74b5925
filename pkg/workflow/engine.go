package workflow

import (
	"context"
	"fmt"
	"log"

	"ai-shopping-be/pkg/store"
)

// maxSteps bounds one run. The longest legitimate path is nine steps,
// so hitting the ceiling always means a wiring bug, never load.
const maxSteps = 15

// Handler executes one step. It returns the state update to apply and
// the routing label picking the outgoing transition; DefaultRoute takes
// the step's default edge. A returned error aborts the whole run.
type Handler func(ctx context.Context, state *store.TurnState) (*store.Update, string, error)

// Engine walks a fixed step graph over the turn state, applying each
// handler's update before following its transition. The graph is built
// once at startup and validated for totality before any run.
type Engine struct {
	handlers    map[Step]Handler
	transitions map[Step]map[string]Step
	sessions    store.SessionStore
	logger      *log.Logger

	// OnStep, when set, is called before each handler runs. Used to
	// publish step progress events; failures there must not affect runs.
	OnStep func(sessionID string, step Step)
}

func NewEngine(sessions store.SessionStore, logger *log.Logger) *Engine {
	return &Engine{
		handlers:    make(map[Step]Handler),
		transitions: make(map[Step]map[string]Step),
		sessions:    sessions,
		logger:      logger,
	}
}

func (e *Engine) Register(step Step, handler Handler) {
	e.handlers[step] = handler
}

// AddTransition wires an outgoing edge. Use DefaultRoute for the edge
// taken when the handler returns no label.
func (e *Engine) AddTransition(from Step, label string, to Step) {
	if e.transitions[from] == nil {
		e.transitions[from] = make(map[string]Step)
	}
	e.transitions[from][label] = to
}

// Validate checks the graph is total: every registered step has a
// default outgoing edge, every edge target is registered or terminal,
// and every step with edges has a handler.
func (e *Engine) Validate() error {
	for step := range e.handlers {
		edges, ok := e.transitions[step]
		if !ok {
			return fmt.Errorf("step %q has no outgoing transitions", step)
		}
		if _, ok := edges[DefaultRoute]; !ok {
			return fmt.Errorf("step %q has no default transition", step)
		}
	}
	for from, edges := range e.transitions {
		if _, ok := e.handlers[from]; !ok {
			return fmt.Errorf("transition source %q has no handler", from)
		}
		for label, to := range edges {
			if to == StepEnd {
				continue
			}
			if _, ok := e.handlers[to]; !ok {
				return fmt.Errorf("transition %q -[%s]-> %q targets unregistered step", from, label, to)
			}
		}
	}
	return nil
}

// Run executes the graph from start until StepEnd, then checkpoints the
// final state. The state passed in is mutated in place.
func (e *Engine) Run(ctx context.Context, state *store.TurnState, start Step) error {
	current := start
	for steps := 0; current != StepEnd; steps++ {
		if steps >= maxSteps {
			return fmt.Errorf("%w: aborted at %q after %d steps", ErrStepLimitExceeded, current, steps)
		}

		handler, ok := e.handlers[current]
		if !ok {
			return fmt.Errorf("%w: no handler for %q", ErrUnknownStep, current)
		}

		if e.OnStep != nil {
			e.OnStep(state.SessionID, current)
		}
		e.logger.Printf("[WORKFLOW] session=%s step=%s", state.SessionID, current)

		update, route, err := invoke(ctx, handler, state)
		if err != nil {
			return fmt.Errorf("step %q: %w", current, err)
		}
		if update != nil {
			update.StepMarker = string(current)
			state.Apply(update)
		}

		next, ok := e.transitions[current][route]
		if !ok {
			// A labeled route with no edge falls back to the default edge.
			next, ok = e.transitions[current][DefaultRoute]
			if !ok {
				return fmt.Errorf("%w: no transition from %q via %q", ErrUnknownStep, current, route)
			}
		}
		current = next
	}

	if err := e.sessions.Save(ctx, state); err != nil {
		return fmt.Errorf("checkpoint session %s: %w", state.SessionID, err)
	}
	return nil
}

// invoke runs one handler with a recover so a panicking handler aborts
// the run like a returned error instead of taking down the caller.
func invoke(ctx context.Context, handler Handler, state *store.TurnState) (update *store.Update, route string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("handler panicked: %v", r)
		}
	}()
	return handler(ctx, state)
}
