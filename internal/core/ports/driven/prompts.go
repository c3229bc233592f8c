package driven

// PromptStore provides access to LLM prompt templates.
// Implementations may load prompts from user-editable files and fall back
// to built-in defaults.
type PromptStore interface {
	// Load returns the prompt for the given name.
	// Returns domain.ErrNotFound when neither an override nor a default exists.
	Load(name string) (string, error)

	// Reload clears any cached prompts, forcing fresh loads on next access.
	Reload()
}

// Well-known prompt names.
const (
	// PromptAgentSystem is the orchestrator's system instruction.
	// This prompt has no format placeholders.
	PromptAgentSystem = "agent_system"
)
