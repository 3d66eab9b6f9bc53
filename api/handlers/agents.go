package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/innovate-ai/voxagent/types"
)

// AgentCatalog lists the assistant variants for clients.
type AgentCatalog interface {
	Catalog() []types.Agent
}

// AgentsHandler serves the assistant catalog.
type AgentsHandler struct {
	catalog AgentCatalog
	logger  *zap.Logger
}

// NewAgentsHandler builds the handler.
func NewAgentsHandler(catalog AgentCatalog, logger *zap.Logger) *AgentsHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AgentsHandler{
		catalog: catalog,
		logger:  logger.With(zap.String("component", "agents_handler")),
	}
}

// HandleList serves GET /api/agents.
func (h *AgentsHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusOK, h.catalog.Catalog())
}
