package tools

import (
	"fmt"
	"strings"
	"sync"
)

// NotFoundError is returned when a tool name is not registered.
type NotFoundError struct {
	Name string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("tool not registered: %s", e.Name)
}

// Registry manages the collection of available tools.
// Registration order is preserved: listings and the serialized catalog
// present tools in the order they were registered.
type Registry struct {
	tools map[string]Tool
	order []string
	mu    sync.RWMutex
}

// NewRegistry creates a new tool registry.
func NewRegistry() *Registry {
	return &Registry{
		tools: make(map[string]Tool),
	}
}

// Register adds a tool to the registry.
func (r *Registry) Register(tool Tool) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	name := tool.Name()
	if _, exists := r.tools[name]; exists {
		return fmt.Errorf("tool already registered: %s", name)
	}

	r.tools[name] = tool
	r.order = append(r.order, name)
	return nil
}

// Get retrieves a tool by name.
func (r *Registry) Get(name string) (Tool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	tool, ok := r.tools[name]
	if !ok {
		return nil, &NotFoundError{Name: name}
	}
	return tool, nil
}

// Has reports whether a tool name is registered.
func (r *Registry) Has(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, ok := r.tools[name]
	return ok
}

// List returns all registered tools in registration order.
func (r *Registry) List() []Tool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	tools := make([]Tool, 0, len(r.order))
	for _, name := range r.order {
		tools = append(tools, r.tools[name])
	}
	return tools
}

// Names returns the names of all registered tools in registration order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, len(r.order))
	copy(names, r.order)
	return names
}

// Catalog renders the registered tools as a numbered listing with their
// parameter schemas, for inclusion in a decision prompt.
func (r *Registry) Catalog() string {
	var sb strings.Builder
	for i, tool := range r.List() {
		if i > 0 {
			sb.WriteString("\n")
		}
		fmt.Fprintf(&sb, "%d. %s: %s\n", i+1, tool.Name(), tool.Description())
		params := tool.Params()
		if len(params) == 0 {
			sb.WriteString("   Parameters: none\n")
			continue
		}
		sb.WriteString("   Parameters:\n")
		for _, p := range params {
			req := "optional"
			if p.Required {
				req = "required"
			}
			fmt.Fprintf(&sb, "   - %s (%s, %s): %s", p.Name, p.Type, req, p.Description)
			if p.Default != nil {
				fmt.Fprintf(&sb, " (default: %v)", p.Default)
			}
			sb.WriteString("\n")
		}
	}
	return sb.String()
}
