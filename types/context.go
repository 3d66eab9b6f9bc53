package types

import "context"

// contextKey is used for storing values in context.Context.
type contextKey string

const (
	keyRequestID contextKey = "request_id"
	keySessionID contextKey = "session_id"
	keyAgentType contextKey = "agent_type"
)

// WithRequestID adds the request ID to context.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, keyRequestID, requestID)
}

// RequestID extracts the request ID from context.
func RequestID(ctx context.Context) (string, bool) {
	v, ok := ctx.Value(keyRequestID).(string)
	return v, ok && v != ""
}

// WithSessionID adds the client session ID to context.
func WithSessionID(ctx context.Context, sessionID string) context.Context {
	return context.WithValue(ctx, keySessionID, sessionID)
}

// SessionID extracts the client session ID from context.
func SessionID(ctx context.Context) (string, bool) {
	v, ok := ctx.Value(keySessionID).(string)
	return v, ok && v != ""
}

// WithAgentType records the agent variant handling the request.
func WithAgentType(ctx context.Context, t AgentType) context.Context {
	return context.WithValue(ctx, keyAgentType, t)
}

// AgentTypeFrom extracts the agent variant from context.
func AgentTypeFrom(ctx context.Context) (AgentType, bool) {
	v, ok := ctx.Value(keyAgentType).(AgentType)
	return v, ok && v != ""
}
