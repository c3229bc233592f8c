package domain

// Names of the tools offered to the generation model.
const (
	SearchToolName     = "sec_10k_search"
	CalculatorToolName = "calculator"
)

// ToolDefinition describes a callable action to the generation model.
type ToolDefinition struct {
	// Name is the stable identifier the model uses to select the tool.
	Name string

	// Description is the natural-language usage guidance shown to the model.
	Description string

	// Parameters is a JSON Schema object describing the arguments.
	Parameters map[string]any
}

// StringParameter returns a JSON Schema object with one required string property.
func StringParameter(name, description string) map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			name: map[string]any{
				"type":        "string",
				"description": description,
			},
		},
		"required": []string{name},
	}
}
