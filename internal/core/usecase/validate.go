package usecase

import (
	"strings"

	"github.com/vmelnikov/insurance-assistant/internal/core/domain"
)

// Rejection signatures for model output that is a non-answer: filler the
// backend emits when it has nothing to say, or transport noise leaking into
// the response body. Matching is case-insensitive substring.
var boilerplateSignatures = []string{
	"i'm here to help",
	"i am here to help",
	"how can i assist you",
	"how may i assist you",
	"connection was interrupted",
	"connection interrupted",
	"as an ai language model",
	"as an ai model",
	"i cannot process your request",
	"an error occurred",
}

const nearEmptyThreshold = 10

// validateAnswer is the single authority deciding whether a raw backend
// answer may reach the user. It returns the rejection reason, or ok=true.
// A specific insurance question raises the bar: anything shorter than
// minChars is treated as an evasion and rejected.
func validateAnswer(answer string, class domain.QueryClass, minChars int) (reason string, ok bool) {
	trimmed := strings.TrimSpace(answer)
	if len(trimmed) < nearEmptyThreshold {
		return "empty", false
	}

	lower := strings.ToLower(trimmed)
	for _, sig := range boilerplateSignatures {
		if strings.Contains(lower, sig) {
			return "boilerplate", false
		}
	}

	if class.SpecificInsurance() && len([]rune(trimmed)) < minChars {
		return "too_short", false
	}
	return "", true
}
