package driven

import "context"

// Tool is a named external capability the orchestrator can invoke from
// its Acting state. All tools are treated polymorphically: the
// orchestrator never branches on tool identity beyond argument
// marshalling, and resolves implementations through a registry built at
// startup.
type Tool interface {
	// Name is the identifier the reasoning loop uses to select the tool.
	Name() string

	// Description documents the tool for the planning prompt.
	Description() string

	// Invoke executes the tool with structured arguments and returns a
	// textual observation. Errors are recovered by the orchestrator as
	// empty observations; they never abort a memo request.
	Invoke(ctx context.Context, args map[string]any) (string, error)
}
