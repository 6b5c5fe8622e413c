package advisor

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/dgallion1/docchunk/internal/chunker"
	"github.com/dgallion1/docchunk/internal/doctree"
)

const (
	previewSections    = 10
	previewChars       = 300
	contextBudget      = 8000
	instructionsBudget = 600
)

const strategyFormat = `Return JSON format:
{
  "strategy": "by_level" | "custom_boundaries",
  "level": 2,
  "boundaries": [0, 150, 300],
  "reasoning": "Brief explanation"
}`

// buildStrategyPrompt includes document statistics, the outline and a
// preview of the first sections.
func buildStrategyPrompt(text string, s doctree.Structure, minTokens, maxTokens int) string {
	var previews []string
	for _, h := range s.Headings[:min(len(s.Headings), previewSections)] {
		preview, _ := chunker.SectionPreview(text, h, previewChars)
		previews = append(previews, fmt.Sprintf("%s %s:\n%s\n", strings.Repeat("#", h.Level), h.Title, preview))
	}
	previewBlock := "(No section previews available)"
	if len(previews) > 0 {
		previewBlock = strings.Join(previews, "\n")
	}

	var sb strings.Builder
	sb.WriteString("You are a document chunking expert optimizing for RAG (Retrieval-Augmented Generation) systems.\n")
	sb.WriteString("Document statistics:\n")
	fmt.Fprintf(&sb, "- Total tokens: %d\n", s.TotalTokens)
	fmt.Fprintf(&sb, "- Total lines: %d\n", s.TotalLines)
	fmt.Fprintf(&sb, "- Heading levels present: %d to %d\n\n", s.MinLevel, s.MaxLevel)
	sb.WriteString(chunker.Hierarchy(s))
	sb.WriteString("\n\nSample Content from Sections:\n")
	sb.WriteString(previewBlock)
	sb.WriteString("\n\nRAG Requirements:\n")
	fmt.Fprintf(&sb, "- Minimum tokens per chunk: %d\n", minTokens)
	fmt.Fprintf(&sb, "- Maximum tokens per chunk: %d\n", maxTokens)
	sb.WriteString("- Goal: Optimize for embedding-based semantic retrieval\n\n")
	sb.WriteString("Task: Analyze this document and decide the optimal chunking strategy.\n")
	sb.WriteString("Considerations:\n")
	sb.WriteString("1. Semantic coherence: keep related content together.\n")
	sb.WriteString("2. Retrieval quality: chunks should be self-contained for embedding search.\n")
	fmt.Fprintf(&sb, "3. Token limits: each chunk must be within %d-%d tokens.\n", minTokens, maxTokens)
	sb.WriteString("4. Document structure: use natural document boundaries when possible.\n\n")
	sb.WriteString("For structured documents, choose a heading level (1-6) to chunk by.\n")
	sb.WriteString("For unstructured documents, provide custom line boundaries.\n\n")
	sb.WriteString(strategyFormat)
	return sb.String()
}

// buildStructureOnlyPrompt is used when previews would not fit the context.
func buildStructureOnlyPrompt(s doctree.Structure, minTokens, maxTokens int) string {
	var sb strings.Builder
	sb.WriteString("You are a document chunking expert optimizing for RAG (Retrieval-Augmented Generation) systems.\n")
	sb.WriteString("The document is too large to include full content. Use the structure information to decide a chunking strategy.\n\n")
	sb.WriteString(chunker.Hierarchy(s))
	sb.WriteString("\n\nConstraints:\n")
	fmt.Fprintf(&sb, "- Minimum tokens per chunk: %d\n", minTokens)
	fmt.Fprintf(&sb, "- Maximum tokens per chunk: %d\n", maxTokens)
	sb.WriteString("- Goal: Optimize for embedding-based semantic retrieval.\n\n")
	sb.WriteString(strategyFormat)
	return sb.String()
}

// fitsContext estimates whether the outline and previews fit the context budget.
func fitsContext(text string, s doctree.Structure) bool {
	total := chunker.EstimateTokens(chunker.Hierarchy(s)) + instructionsBudget
	for _, h := range s.Headings[:min(len(s.Headings), previewSections)] {
		preview, _ := chunker.SectionPreview(text, h, previewChars)
		total += chunker.EstimateTokens(preview)
	}
	return total < contextBudget
}

// buildOperationsPrompt asks for merge operations over the chunk schema.
// Chunk content is never included.
func buildOperationsPrompt(schema []doctree.SchemaEntry, minTokens, maxTokens int, language string) (string, error) {
	data, err := json.MarshalIndent(schema, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal schema: %w", err)
	}
	if language == "" {
		language = "auto"
	}

	var sb strings.Builder
	sb.WriteString("You are reviewing chunk boundaries for a RAG (Retrieval-Augmented Generation) index.\n")
	fmt.Fprintf(&sb, "Document language: %s\n", language)
	fmt.Fprintf(&sb, "Target tokens per chunk: %d-%d\n\n", minTokens, maxTokens)
	sb.WriteString("Chunks (id, title, heading level, token count):\n")
	sb.Write(data)
	sb.WriteString("\n\nPropose merges of adjacent chunks that are too small or continue the same topic.\n")
	sb.WriteString("Ranges are 1-based chunk ids, inclusive. Never merge past the maximum token count.\n\n")
	sb.WriteString(`Return JSON format:
{
  "operations": [{"type": "merge", "range": [2, 3]}]
}
Return {"operations": []} when no change is needed.`)
	return sb.String(), nil
}
