package domain

import "strings"

// QueryTopic is the closed tag set produced by query classification.
type QueryTopic string

const (
	TopicHealth     QueryTopic = "health"
	TopicCar        QueryTopic = "car"
	TopicBike       QueryTopic = "bike"
	TopicComparison QueryTopic = "comparison"
	TopicGreeting   QueryTopic = "greeting"
	TopicUnknown    QueryTopic = "unknown"
)

// QueryClass is the full classification of one query string.
type QueryClass struct {
	Topic           QueryTopic
	InsuranceIntent bool
	HelpIntent      bool
}

// SpecificInsurance reports whether the query is a concrete insurance question,
// which raises the bar for acceptable model answers.
func (c QueryClass) SpecificInsurance() bool {
	switch c.Topic {
	case TopicHealth, TopicCar, TopicBike, TopicComparison:
		return true
	}
	return c.InsuranceIntent
}

// Keyword vocabularies are fixed: classification must stay a pure, total,
// deterministic function of the query string alone.
var (
	healthKeywords = []string{"health", "medical", "hospital", "hospitalization", "hospitalisation", "doctor", "treatment", "illness", "surgery"}
	carKeywords    = []string{"car", "auto", "vehicle", "automobile", "collision", "driving"}
	bikeKeywords   = []string{"bike", "bicycle", "motorcycle", "two-wheeler", "scooter"}
	compKeywords   = []string{"compare", "comparison", "difference", "versus", "vs", "better", "best"}
	greetKeywords  = []string{"hi", "hello", "hey", "greetings", "good morning", "good afternoon", "good evening", "thanks", "thank you"}
	insurKeywords  = []string{"insurance", "policy", "policies", "coverage", "cover", "covered", "premium", "premiums", "claim", "claims", "insure", "deductible", "exclusion", "exclusions"}
	helpKeywords   = []string{"help", "assist", "need", "want", "looking for", "recommend", "suggest"}
)

// ClassifyQuery maps a raw query onto the closed topic set. It is total:
// every input, including the empty string, yields a result.
func ClassifyQuery(query string) QueryClass {
	normalized, tokens := normalizeQuery(query)

	match := func(keywords []string) bool {
		for _, kw := range keywords {
			if strings.ContainsAny(kw, " -") {
				if strings.Contains(normalized, strings.ReplaceAll(kw, "-", " ")) {
					return true
				}
				continue
			}
			if _, ok := tokens[kw]; ok {
				return true
			}
		}
		return false
	}

	class := QueryClass{
		Topic:           TopicUnknown,
		InsuranceIntent: match(insurKeywords),
		HelpIntent:      match(helpKeywords),
	}

	// Topic precedence: comparison spans concrete types, so it wins;
	// greeting applies only when nothing insurance-shaped was said.
	switch {
	case match(compKeywords):
		class.Topic = TopicComparison
	case match(healthKeywords):
		class.Topic = TopicHealth
	case match(carKeywords):
		class.Topic = TopicCar
	case match(bikeKeywords):
		class.Topic = TopicBike
	case match(greetKeywords) && !class.InsuranceIntent:
		class.Topic = TopicGreeting
	}
	return class
}

func normalizeQuery(s string) (string, map[string]struct{}) {
	var b strings.Builder
	for _, r := range s {
		switch {
		case r >= 'A' && r <= 'Z':
			b.WriteRune(r - 'A' + 'a')
		case (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9'):
			b.WriteRune(r)
		default:
			b.WriteRune(' ')
		}
	}
	normalized := strings.Join(strings.Fields(b.String()), " ")

	tokens := make(map[string]struct{})
	for _, tok := range strings.Fields(normalized) {
		tokens[tok] = struct{}{}
	}
	return normalized, tokens
}
