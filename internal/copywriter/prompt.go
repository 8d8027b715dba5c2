package copywriter

import (
	"strings"

	"github.com/xeitosa/socialai/internal/artist"
	"github.com/xeitosa/socialai/internal/provider"
)

const mediaNote = "\n(Analyze the attached media and incorporate it into the copy)"

// BuildPrompt assembles the generation prompt. Part order is fixed: persona,
// keywords, example header, one part per example, the user task, then the
// media reference and its note when file is non-nil.
func BuildPrompt(p artist.Persona, instructions string, file *provider.File) []provider.Part {
	parts := []provider.Part{
		provider.TextPart("SYSTEM PERSONA:\n" + p.BasePrompt + "\n"),
		provider.TextPart("MANDATORY KEYWORDS (Include some of these naturally):\n" + strings.Join(p.Keywords, ", ") + "\n"),
		provider.TextPart("STYLE EXAMPLES (Few-shot learning):\n"),
	}
	for _, ex := range p.FewShotExamples {
		parts = append(parts, provider.TextPart("- "+ex))
	}
	parts = append(parts, provider.TextPart("\nUSER TASK:\n"+instructions))

	if file != nil {
		parts = append(parts, provider.FilePart(file), provider.TextPart(mediaNote))
	}
	return parts
}
