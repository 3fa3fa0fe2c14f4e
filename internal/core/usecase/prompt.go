package usecase

import (
	"fmt"
	"strings"

	"github.com/vmelnikov/insurance-assistant/internal/core/domain"
)

const groundedInstructions = `You are an insurance assistant answering questions about specific policy documents.

Rules:
1. Answer using ONLY the policy excerpts provided below. Do not use outside or trained knowledge.
2. When you use an excerpt, cite its policy ID and clause type.
3. Do not invent premium amounts, coverage limits, company names, policy IDs or websites.
4. If the answer cannot be derived from the excerpts, say "I don't know based on the available policy documents" and advise contacting the insurance provider.
5. Structure the answer clearly: direct answer first, then specific details, then next steps.`

const generalInstructions = `You are an insurance assistant. No policy documents are available for this question.

Rules:
1. Do not state or invent any specific policy terms, premium amounts, limits, company names or websites.
2. You may give general insurance guidance only, and must say that it is general guidance.
3. If the question needs policy specifics, say you don't have that information and advise contacting the insurance provider.`

// buildPrompt assembles the full backend prompt: system instructions,
// retrieved excerpts (grounded mode only), a bounded slice of recent
// conversation turns, then the current question.
func buildPrompt(query string, chunks []domain.RetrievedChunk, history []domain.Message, maxTurns int) string {
	var b strings.Builder

	if len(chunks) > 0 {
		b.WriteString(groundedInstructions)
		b.WriteString("\n\nPOLICY EXCERPTS:\n")
		for i, rc := range chunks {
			c := rc.Chunk
			fmt.Fprintf(&b, "\n[Excerpt %d]\nPolicy ID: %s\nPolicy Type: %s\nClause Type: %s\nRegion: %s\nContent: %s\n",
				i+1, c.PolicyID, c.PolicyType, c.ClauseType, c.Region, c.Text)
		}
	} else {
		b.WriteString(generalInstructions)
	}

	if recent := recentHistory(history, maxTurns); len(recent) > 0 {
		b.WriteString("\nCONVERSATION SO FAR:\n")
		for _, msg := range recent {
			label := "User"
			if msg.Role == domain.RoleAssistant {
				label = "Assistant"
			}
			fmt.Fprintf(&b, "%s: %s\n", label, msg.Text)
		}
	}

	fmt.Fprintf(&b, "\nUSER'S QUESTION: %s\n\nAnswer now:", query)
	return b.String()
}

// recentHistory keeps the last maxTurns exchanges (a turn is a user message
// plus the assistant reply).
func recentHistory(history []domain.Message, maxTurns int) []domain.Message {
	if maxTurns <= 0 {
		return nil
	}
	keep := maxTurns * 2
	if len(history) <= keep {
		return history
	}
	return history[len(history)-keep:]
}
