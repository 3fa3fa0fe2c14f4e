package usecase

import (
	"fmt"
	"strings"

	"github.com/vmelnikov/insurance-assistant/internal/core/domain"
)

// FallbackAnswer is the deterministic last line of defense: a rule-based
// answer keyed by query classification. It is total and never returns an
// empty string, for any input including the empty query.
func FallbackAnswer(query string) string {
	class := domain.ClassifyQuery(query)

	switch class.Topic {
	case domain.TopicGreeting:
		return "Hello! I'm your insurance assistant. I can help you understand health, car and bike insurance policies, explain coverage and exclusions, or compare options. What would you like to know?"

	case domain.TopicHealth:
		return strings.Join([]string{
			"Here's what to look at when choosing health insurance:",
			"- Coverage scope: hospitalization, surgery, outpatient treatment and medication.",
			"- Exclusions: pre-existing conditions often have waiting periods.",
			"- Limits: check the maximum annual payout and per-claim caps.",
			"- Eligibility: age and medical history affect both acceptance and premium.",
			"",
			"To get exact pricing and eligibility, please contact the insurance provider directly.",
			"Would you like to know what a specific health policy covers, or compare the available plans?",
		}, "\n")

	case domain.TopicCar:
		return strings.Join([]string{
			"Here's what matters most in car insurance:",
			"- Liability coverage: damage you cause to others, usually required by law.",
			"- Collision and comprehensive: damage to your own vehicle, theft and weather.",
			"- Deductible: the amount you pay before the insurer pays the rest.",
			"- Exclusions: racing, commercial use and unlisted drivers are commonly excluded.",
			"",
			"For exact premiums and eligibility, please contact the insurance provider directly.",
			"Would you like details on full coverage versus liability-only options?",
		}, "\n")

	case domain.TopicBike:
		return strings.Join([]string{
			"Here's what to check in bike and motorcycle insurance:",
			"- Theft protection: most policies require an approved lock or secure storage.",
			"- Damage coverage: accidents, vandalism and transport damage.",
			"- Limits: payout caps usually depend on the declared value of the bike.",
			"- Exclusions: wear and tear and unattended-unlocked situations are typically excluded.",
			"",
			"For exact pricing, please contact the insurance provider directly.",
			"Would you like to know more about theft protection or accident coverage?",
		}, "\n")

	case domain.TopicComparison:
		return strings.Join([]string{
			"When comparing insurance policies, weigh these dimensions:",
			"- Coverage breadth: what events and costs are actually included.",
			"- Exclusions: the situations where the policy will not pay.",
			"- Limits and deductibles: caps on payouts and your own share of costs.",
			"- Premium: cheaper plans usually mean narrower coverage or higher deductibles.",
			"",
			"Tell me which policies or policy types you want to compare and I'll walk through the differences.",
		}, "\n")
	}

	if class.SpecificInsurance() {
		return strings.Join([]string{
			"I can help with that. The available policies cover health, car and bike insurance, including:",
			"- What each policy covers and excludes.",
			"- Coverage limits and deductibles.",
			"- Which policy type fits your situation.",
			"",
			"For exact eligibility and pricing, please contact the insurance provider directly.",
			"Could you tell me which type of insurance you're interested in?",
		}, "\n")
	}

	return "I'm an insurance assistant and can best help with questions about health, car and bike insurance policies: coverage, exclusions, limits and comparisons. Could you tell me what kind of insurance you're interested in?"
}

// fallbackWithContext prefers grounding the fallback in retrieved policy text
// when any is available, so a backend outage still yields a document-based
// answer instead of generic guidance.
func fallbackWithContext(query string, chunks []domain.RetrievedChunk) string {
	if len(chunks) == 0 {
		return FallbackAnswer(query)
	}

	top := chunks[0].Chunk
	excerpt := truncateRunes(top.Text, 500)

	return fmt.Sprintf(
		"Based on the available %s insurance policies, here's what I found:\n\n%s\n\nFor complete details about eligibility, pricing, and to purchase a policy, please contact the insurance provider directly.",
		top.PolicyType, excerpt,
	)
}

func truncateRunes(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit]) + "..."
}
