package rules

import (
	"context"
	"runtime"

	"github.com/hashicorp/go-hclog"
	"golang.org/x/sync/errgroup"

	"github.com/jokarl/taxrules/internal/types"
)

// Engine resolves events against the tables of a registry
type Engine struct {
	registry    *Registry
	policy      types.UnmatchedPolicy
	concurrency int
	disabled    map[string]bool
	logger      hclog.Logger
}

// NewEngine creates a new Engine with the given registry
func NewEngine(registry *Registry) *Engine {
	return &Engine{
		registry:    registry,
		policy:      types.PolicyWarn,
		concurrency: runtime.GOMAXPROCS(0),
		disabled:    make(map[string]bool),
		logger:      hclog.NewNullLogger(),
	}
}

// NewDefaultEngine creates an Engine with the default registry
func NewDefaultEngine() *Engine {
	return NewEngine(DefaultRegistry)
}

// SetPolicy sets the policy applied to unmatched events
func (e *Engine) SetPolicy(p types.UnmatchedPolicy) {
	e.policy = p
}

// Policy returns the unmatched policy
func (e *Engine) Policy() types.UnmatchedPolicy {
	return e.policy
}

// SetConcurrency bounds the number of events resolved in parallel
func (e *Engine) SetConcurrency(n int) {
	if n < 1 {
		n = 1
	}
	e.concurrency = n
}

// SetLogger sets the logger used for unmatched events
func (e *Engine) SetLogger(l hclog.Logger) {
	e.logger = l.Named("engine")
}

// DisableProtocol makes every event of the protocol unmatched
func (e *Engine) DisableProtocol(protocol string) {
	e.disabled[protocol] = true
}

// EnableProtocol reverts DisableProtocol
func (e *Engine) EnableProtocol(protocol string) {
	delete(e.disabled, protocol)
}

// ResolveEvent resolves a single event
func (e *Engine) ResolveEvent(ev types.Event) *types.Resolution {
	if e.disabled[ev.Counterparty] {
		return types.NewUnmatched(ev, types.ReasonProtocolDisabled)
	}
	s, reason := e.registry.Lookup(ev.Key())
	if reason != types.ReasonNone {
		return types.NewUnmatched(ev, reason)
	}
	return types.NewMatched(ev, s)
}

// Resolve resolves all events and returns the computed result.
// Results keep the input order. Tables are only read, so events are
// resolved in parallel without locking.
func (e *Engine) Resolve(ctx context.Context, source string, events []types.Event) (*types.ResolveResult, error) {
	resolutions := make([]*types.Resolution, len(events))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(e.concurrency)
	for i := range events {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			resolutions[i] = e.ResolveEvent(events[i])
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	result := types.NewResolveResult(source, e.policy)
	for _, res := range resolutions {
		result.AddResolution(res)
		if !res.Matched && e.policy != types.PolicyIgnore {
			e.logger.Warn("no treatment rule for event",
				"identifier", res.Event.Identifier,
				"key", res.Event.Key().String(),
				"reason", string(res.Reason))
		}
	}
	result.Compute()

	e.logger.Debug("resolved events", "source", source,
		"total", result.Summary.Total,
		"matched", result.Summary.Matched,
		"unmatched", result.Summary.Unmatched)

	return result, nil
}
