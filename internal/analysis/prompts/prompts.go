// Package prompts builds the structured-extraction requests sent to the
// semantic-analysis oracle: a system/user instruction pair plus a strict
// json_schema the payload must satisfy.
package prompts

// Prompt is one fully-assembled oracle request.
type Prompt struct {
	System     string
	User       string
	SchemaName string
	Schema     map[string]any
}
