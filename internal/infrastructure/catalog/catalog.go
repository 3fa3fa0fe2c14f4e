package catalog

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/vmelnikov/insurance-assistant/internal/core/domain"
)

// Catalog is the static set of sellable policies, loaded once at startup.
// Declaration order in the source file is preserved; it is the tie-break
// for equally scored suggestions.
type Catalog struct {
	policies []domain.Policy
	byType   map[string][]domain.Policy
}

type catalogFile struct {
	Policies []domain.Policy `yaml:"policies"`
}

// Load reads the YAML catalog at path and validates every record.
func Load(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog %s: %w", path, err)
	}

	var file catalogFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse catalog %s: %w", path, err)
	}
	return New(file.Policies)
}

// New builds a catalog from an already loaded policy list.
func New(policies []domain.Policy) (*Catalog, error) {
	seen := make(map[string]struct{}, len(policies))
	byType := make(map[string][]domain.Policy)
	for i, p := range policies {
		if strings.TrimSpace(p.PolicyID) == "" {
			return nil, fmt.Errorf("catalog entry %d: missing policy_id", i)
		}
		if _, dup := seen[p.PolicyID]; dup {
			return nil, fmt.Errorf("catalog entry %d: duplicate policy_id %q", i, p.PolicyID)
		}
		if strings.TrimSpace(p.PolicyType) == "" {
			return nil, fmt.Errorf("catalog entry %q: missing policy_type", p.PolicyID)
		}
		seen[p.PolicyID] = struct{}{}
		byType[p.PolicyType] = append(byType[p.PolicyType], p)
	}

	return &Catalog{
		policies: append([]domain.Policy(nil), policies...),
		byType:   byType,
	}, nil
}

// All returns the catalog in declaration order.
func (c *Catalog) All() []domain.Policy {
	return c.policies
}

// ByType returns policies of the given type in declaration order.
func (c *Catalog) ByType(policyType string) []domain.Policy {
	return c.byType[policyType]
}

// ByID looks up a single policy.
func (c *Catalog) ByID(policyID string) (domain.Policy, bool) {
	for _, p := range c.policies {
		if p.PolicyID == policyID {
			return p, true
		}
	}
	return domain.Policy{}, false
}

// Len reports the number of catalog entries.
func (c *Catalog) Len() int {
	return len(c.policies)
}
