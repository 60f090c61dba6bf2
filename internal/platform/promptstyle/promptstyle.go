package promptstyle

import "strings"

const marker = "[oyster-style:v2]"

type Mode string

const (
	// ModeJSON is for schema-constrained responses.
	ModeJSON Mode = "json"
	// ModeText is for prose that may later be read aloud by speech synthesis.
	ModeText Mode = "text"
)

var common = []string{
	"You design learning material for Oyster AI course enrichment.",
	"Stay within the course outline and the learner's request you are given.",
	"Never invent URLs, sources or citations.",
}

var byMode = map[Mode][]string{
	ModeJSON: {
		"Respond with exactly one JSON object matching the schema. No extra keys, no prose around it.",
		"Every string field must be non-empty.",
	},
	ModeText: {
		"Respond in plain prose paragraphs with no markdown, headings, bullet points or emoji.",
		"Write so the text sounds natural when read aloud.",
	},
}

// ApplySystem prefixes system with house guidance for mode. Already-styled
// prompts and blank prompts are returned unchanged apart from trimming.
func ApplySystem(system string, mode Mode) string {
	base := strings.TrimSpace(system)
	if base == "" || strings.HasPrefix(base, marker) {
		return base
	}
	lines, ok := byMode[mode]
	if !ok {
		lines = byMode[ModeText]
	}

	var b strings.Builder
	b.WriteString(marker)
	for _, l := range common {
		b.WriteString("\n")
		b.WriteString(l)
	}
	for _, l := range lines {
		b.WriteString("\n")
		b.WriteString(l)
	}
	b.WriteString("\n\n")
	b.WriteString(base)
	return b.String()
}
