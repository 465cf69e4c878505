package promptstyle

import "strings"

const marker = "LESSONPLAN_PROMPT_STYLE_V1"

// ApplySystem prepends a short guidance block to system prompts. A prompt
// already carrying the block is returned unchanged.
func ApplySystem(system string, mode string) string {
	base := strings.TrimSpace(system)
	if base == "" || strings.Contains(base, marker) {
		return base
	}

	var b strings.Builder
	b.WriteString(marker)
	b.WriteString("\nYou are a careful assistant for classroom teachers.")
	b.WriteString("\nFollow the system and user instructions precisely.")
	b.WriteString("\nUse the provided calendar, targets and game as grounding; do not invent unrelated topics.")
	if strings.EqualFold(strings.TrimSpace(mode), "json") {
		b.WriteString("\nReturn a single JSON object that conforms to the schema and contains no extra keys.")
	} else {
		b.WriteString("\nBe concise and structured when helpful.")
	}
	b.WriteString("\n---\n")
	b.WriteString(base)
	return b.String()
}
