package domain

// ClauseType tags what kind of policy clause a chunk mostly contains.
type ClauseType string

const (
	ClauseCoverage  ClauseType = "coverage"
	ClauseExclusion ClauseType = "exclusion"
	ClauseLimit     ClauseType = "limit"
	ClauseGeneral   ClauseType = "general"
)

// PolicyDocument is a raw source document before chunking.
type PolicyDocument struct {
	PolicyID   string `json:"policy_id"`
	PolicyType string `json:"policy_type"`
	Region     string `json:"region"`
	Title      string `json:"title"`
	Text       string `json:"terms_and_conditions"`
}

// Chunk is an immutable slice of a policy document's text plus provenance.
// ChunkIndex is zero-based within the parent document.
type Chunk struct {
	ChunkID    string     `json:"chunk_id"`
	Text       string     `json:"text"`
	PolicyID   string     `json:"policy_id"`
	PolicyType string     `json:"policy_type"`
	Region     string     `json:"region"`
	ClauseType ClauseType `json:"clause_type"`
	ChunkIndex int        `json:"chunk_index"`
}

// RetrievedChunk pairs a chunk with its query similarity. Score is cosine
// similarity over unit vectors: higher is better, range [-1, 1].
type RetrievedChunk struct {
	Chunk Chunk   `json:"chunk"`
	Score float64 `json:"score"`
}

// SearchFilter restricts retrieval by chunk metadata. Empty fields match all.
type SearchFilter struct {
	PolicyType string
	Region     string
}

func (f SearchFilter) IsZero() bool {
	return f.PolicyType == "" && f.Region == ""
}

func (f SearchFilter) Matches(c Chunk) bool {
	if f.PolicyType != "" && c.PolicyType != f.PolicyType {
		return false
	}
	if f.Region != "" && c.Region != f.Region {
		return false
	}
	return true
}
