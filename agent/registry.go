package agent

import (
	"context"

	"go.uber.org/zap"

	"github.com/innovate-ai/voxagent/types"
)

// Registry routes queries to the processor for the requested agent
// variant. Unknown selectors land on the default agent.
type Registry struct {
	processors map[types.AgentType]Processor
	logger     *zap.Logger
}

// NewRegistry builds a registry over the given processors.
func NewRegistry(logger *zap.Logger, processors ...Processor) *Registry {
	if logger == nil {
		logger = zap.NewNop()
	}
	m := make(map[types.AgentType]Processor, len(processors))
	for _, p := range processors {
		m[p.Type()] = p
	}
	return &Registry{
		processors: m,
		logger:     logger.With(zap.String("component", "agent_registry")),
	}
}

// Catalog lists the assistant variants for clients.
func (r *Registry) Catalog() []types.Agent { return types.AgentCatalog() }

// Resolve returns the processor for the selector, falling back to the
// default agent for unknown values.
func (r *Registry) Resolve(selector string) (Processor, types.AgentType, error) {
	t := types.ParseAgentType(selector)
	if p, ok := r.processors[t]; ok {
		return p, t, nil
	}
	if p, ok := r.processors[types.AgentDefault]; ok {
		r.logger.Warn("agent type not registered, using default", zap.String("requested", selector))
		return p, types.AgentDefault, nil
	}
	return nil, t, types.NewError(types.ErrConfiguration, "no default agent registered")
}

// Process resolves and runs the query in one step.
func (r *Registry) Process(ctx context.Context, selector string, in Input) (*Result, types.AgentType, error) {
	p, t, err := r.Resolve(selector)
	if err != nil {
		return nil, t, err
	}
	res, err := p.Process(types.WithAgentType(ctx, t), in)
	return res, t, err
}
