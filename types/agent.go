package types

import "fmt"

// AgentType identifies one of the assistant variants exposed by the service.
type AgentType string

const (
	AgentDefault     AgentType = "default"
	AgentWebSearch   AgentType = "web_search"
	AgentComputerUse AgentType = "computer_use"
	AgentFileSearch  AgentType = "file_search"
)

// ParseAgentType maps a wire string to an AgentType. Unknown or empty
// values fall back to AgentDefault so a request never fails on a bad
// agent selector.
func ParseAgentType(s string) AgentType {
	switch AgentType(s) {
	case AgentWebSearch, AgentComputerUse, AgentFileSearch:
		return AgentType(s)
	default:
		return AgentDefault
	}
}

// Valid reports whether t is one of the known agent types.
func (t AgentType) Valid() bool {
	switch t {
	case AgentDefault, AgentWebSearch, AgentComputerUse, AgentFileSearch:
		return true
	}
	return false
}

func (t AgentType) String() string { return string(t) }

// Agent describes one assistant variant as presented to clients.
type Agent struct {
	Type        AgentType `json:"type"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Icon        string    `json:"icon"`
}

// DefaultIcon returns the static icon path for an agent type.
func DefaultIcon(t AgentType) string {
	return fmt.Sprintf("/static/icons/%s-icon.svg", t)
}

// AgentCatalog returns the four assistant variants in presentation order.
func AgentCatalog() []Agent {
	return []Agent{
		{
			Type:        AgentDefault,
			Name:        "Assistant IA",
			Description: "Asistente de IA de propósito general con capacidades de conversación",
			Icon:        DefaultIcon(AgentDefault),
		},
		{
			Type:        AgentWebSearch,
			Name:        "Búsqueda Web",
			Description: "Asistente de IA que puede buscar en la web la información más reciente",
			Icon:        DefaultIcon(AgentWebSearch),
		},
		{
			Type:        AgentComputerUse,
			Name:        "Uso de Computadora",
			Description: "Asistente de IA que puede realizar tareas en tu computadora",
			Icon:        DefaultIcon(AgentComputerUse),
		},
		{
			Type:        AgentFileSearch,
			Name:        "Búsqueda de Archivos",
			Description: "Asistente de IA que puede buscar en tus documentos subidos",
			Icon:        DefaultIcon(AgentFileSearch),
		},
	}
}
