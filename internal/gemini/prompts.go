package gemini

import "strings"

// buildSummaryInstruction composes the system instruction for a summary
// call from the fixed task description, the optional style directive, and
// the optional persona.
func buildSummaryInstruction(task, style, persona string) string {
	var b strings.Builder
	b.WriteString(task)
	if style != "" {
		b.WriteString("\nStyle: ")
		b.WriteString(style)
	}
	if persona != "" {
		b.WriteString("\nRole: ")
		b.WriteString(persona)
	}
	return b.String()
}
