// Package file provides file-based implementations of driven port interfaces.
// These adapters persist data under the user's ~/.finrag directory.
//
// Adapters:
//   - ConfigStore: TOML configuration at ~/.finrag/config.toml
//   - PromptStore: editable prompt overrides in ~/.finrag/prompts/
package file
