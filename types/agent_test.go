package types

import "testing"

func TestParseAgentType(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want AgentType
	}{
		{"default", AgentDefault},
		{"web_search", AgentWebSearch},
		{"computer_use", AgentComputerUse},
		{"file_search", AgentFileSearch},
		{"", AgentDefault},
		{"DEFAULT", AgentDefault},
		{"websearch", AgentDefault},
		{"garbage", AgentDefault},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			t.Parallel()
			if got := ParseAgentType(tt.in); got != tt.want {
				t.Fatalf("ParseAgentType(%q) = %s, want %s", tt.in, got, tt.want)
			}
		})
	}
}

func TestAgentCatalog(t *testing.T) {
	t.Parallel()

	catalog := AgentCatalog()
	if len(catalog) != 4 {
		t.Fatalf("expected 4 agents, got %d", len(catalog))
	}

	order := []AgentType{AgentDefault, AgentWebSearch, AgentComputerUse, AgentFileSearch}
	for i, a := range catalog {
		if a.Type != order[i] {
			t.Fatalf("position %d: expected %s, got %s", i, order[i], a.Type)
		}
		if !a.Type.Valid() {
			t.Fatalf("catalog entry %s not valid", a.Type)
		}
		if a.Name == "" || a.Description == "" {
			t.Fatalf("catalog entry %s missing name or description", a.Type)
		}
		if want := DefaultIcon(a.Type); a.Icon != want {
			t.Fatalf("catalog entry %s icon = %s, want %s", a.Type, a.Icon, want)
		}
	}
}

func TestDefaultIcon(t *testing.T) {
	t.Parallel()

	if got := DefaultIcon(AgentWebSearch); got != "/static/icons/web_search-icon.svg" {
		t.Fatalf("unexpected icon path %s", got)
	}
}

func TestContextHelpers(t *testing.T) {
	t.Parallel()

	ctx := t.Context()

	ctx = WithRequestID(ctx, "r1")
	if got, ok := RequestID(ctx); !ok || got != "r1" {
		t.Fatalf("RequestID mismatch: %v %v", got, ok)
	}

	ctx = WithSessionID(ctx, "s1")
	if got, ok := SessionID(ctx); !ok || got != "s1" {
		t.Fatalf("SessionID mismatch: %v %v", got, ok)
	}

	ctx = WithAgentType(ctx, AgentWebSearch)
	if got, ok := AgentTypeFrom(ctx); !ok || got != AgentWebSearch {
		t.Fatalf("AgentTypeFrom mismatch: %v %v", got, ok)
	}
}
