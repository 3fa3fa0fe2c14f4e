package domain

// Policy is one record of the static catalog loaded at startup.
// The catalog is read-only at runtime; declaration order is meaningful
// (it breaks suggestion-score ties).
type Policy struct {
	PolicyID    string `json:"policy_id" yaml:"policy_id"`
	PolicyType  string `json:"policy_type" yaml:"policy_type"`
	Title       string `json:"title" yaml:"title"`
	CompanyName string `json:"company_name" yaml:"company_name"`
	Website     string `json:"website" yaml:"website"`
	Description string `json:"description" yaml:"description"`
}

// PolicySuggestion is a ranked recommendation derived per query.
// WebsiteURL always comes from the catalog record, never from model output.
type PolicySuggestion struct {
	PolicyID   string `json:"policy_id"`
	PolicyType string `json:"policy_type"`
	Title      string `json:"title"`
	Reason     string `json:"reason"`
	WebsiteURL string `json:"website_url"`
}
