package usecase

import (
	"fmt"
	"sort"
	"strings"

	"github.com/vmelnikov/insurance-assistant/internal/core/domain"
)

// Suggester ranks the static policy catalog against retrieval evidence.
// Catalog declaration order is the tie-break, which keeps suggestions
// deterministic for equal scores.
type Suggester struct {
	policies []domain.Policy
	limit    int
}

func NewSuggester(policies []domain.Policy, limit int) *Suggester {
	if limit <= 0 {
		limit = 3
	}
	return &Suggester{
		policies: policies,
		limit:    limit,
	}
}

// Suggest scores catalog policies referenced by the retrieved chunks:
// chunk count times average similarity, plus a bonus when the policy type
// matches the query's detected topic. With no catalog policy referenced it
// degrades to matching policy types against the query alone.
func (s *Suggester) Suggest(query string, chunks []domain.RetrievedChunk) []domain.PolicySuggestion {
	queryTypes := detectPolicyTypes(query)

	type scored struct {
		policy   domain.Policy
		score    float64
		count    int
		clauses  []domain.ClauseType
		catalogN int
	}

	var candidates []scored
	for i, policy := range s.policies {
		count := 0
		sum := 0.0
		var clauses []domain.ClauseType
		seen := make(map[domain.ClauseType]struct{})
		for _, rc := range chunks {
			if rc.Chunk.PolicyID != policy.PolicyID {
				continue
			}
			count++
			sum += rc.Score
			if _, dup := seen[rc.Chunk.ClauseType]; !dup {
				seen[rc.Chunk.ClauseType] = struct{}{}
				clauses = append(clauses, rc.Chunk.ClauseType)
			}
		}
		if count == 0 {
			continue
		}

		score := float64(count) * (sum / float64(count))
		if queryTypes[policy.PolicyType] {
			score += 0.5
		}
		candidates = append(candidates, scored{
			policy:   policy,
			score:    score,
			count:    count,
			clauses:  clauses,
			catalogN: i,
		})
	}

	if len(candidates) == 0 {
		return s.suggestByQueryType(queryTypes)
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].score != candidates[j].score {
			return candidates[i].score > candidates[j].score
		}
		return candidates[i].catalogN < candidates[j].catalogN
	})
	if len(candidates) > s.limit {
		candidates = candidates[:s.limit]
	}

	out := make([]domain.PolicySuggestion, 0, len(candidates))
	for _, c := range candidates {
		out = append(out, domain.PolicySuggestion{
			PolicyID:   c.policy.PolicyID,
			PolicyType: c.policy.PolicyType,
			Title:      fmt.Sprintf("%s - %s", c.policy.CompanyName, c.policy.Title),
			Reason:     matchedReason(c.policy, c.count, c.clauses),
			WebsiteURL: c.policy.Website,
		})
	}
	return out
}

// suggestByQueryType serves queries where retrieval produced no catalog
// evidence: the detected policy types alone pick the candidates, in catalog
// order.
func (s *Suggester) suggestByQueryType(queryTypes map[string]bool) []domain.PolicySuggestion {
	if len(queryTypes) == 0 {
		return nil
	}

	var out []domain.PolicySuggestion
	for _, policy := range s.policies {
		if !queryTypes[policy.PolicyType] {
			continue
		}
		out = append(out, domain.PolicySuggestion{
			PolicyID:   policy.PolicyID,
			PolicyType: policy.PolicyType,
			Title:      fmt.Sprintf("%s - %s", policy.CompanyName, policy.Title),
			Reason: fmt.Sprintf("Suggested: %s - %s. Check %s for eligibility and pricing.",
				policy.CompanyName, policy.Description, policy.Website),
			WebsiteURL: policy.Website,
		})
		if len(out) == s.limit {
			break
		}
	}
	return out
}

func matchedReason(policy domain.Policy, count int, clauses []domain.ClauseType) string {
	clauseWords := make([]string, 0, len(clauses))
	for _, c := range clauses {
		clauseWords = append(clauseWords, string(c))
	}
	return fmt.Sprintf("Recommended based on %d matching %s clause(s): %s - %s. Visit %s for details.",
		count, strings.Join(clauseWords, "/"), policy.CompanyName, policy.Description, policy.Website)
}

// detectPolicyTypes maps the query topic onto catalog policy types. A
// comparison query spans all concrete types.
func detectPolicyTypes(query string) map[string]bool {
	class := domain.ClassifyQuery(query)
	switch class.Topic {
	case domain.TopicHealth:
		return map[string]bool{"health": true}
	case domain.TopicCar:
		return map[string]bool{"car": true}
	case domain.TopicBike:
		return map[string]bool{"bike": true}
	case domain.TopicComparison:
		return map[string]bool{"health": true, "car": true, "bike": true}
	default:
		return nil
	}
}
